package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountKind identifies which balance bucket of a member an account is.
type AccountKind string

const (
	AccountKindWallet       AccountKind = "wallet"
	AccountKindEquityWallet AccountKind = "equity_wallet"
)

// IsValid reports whether k is a known account kind.
func (k AccountKind) IsValid() bool {
	switch k {
	case AccountKindWallet, AccountKindEquityWallet:
		return true
	}
	return false
}

// DefaultCurrency is used for accounts created lazily by the first mutation.
const DefaultCurrency = "NGN"

// Account is a member's balance bucket. There is at most one account per
// (tenant, owner, kind).
type Account struct {
	ID        string
	TenantID  string
	OwnerID   string
	Kind      AccountKind
	Currency  string
	Balance   decimal.Decimal
	Version   int64
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewAccount returns an active account with a zero balance.
func NewAccount(id, tenantID, ownerID string, kind AccountKind, currency string, now time.Time) *Account {
	if currency == "" {
		currency = DefaultCurrency
	}

	return &Account{
		ID:        id,
		TenantID:  tenantID,
		OwnerID:   ownerID,
		Kind:      kind,
		Currency:  currency,
		Balance:   decimal.Zero,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ValidateDebit checks if the account can be debited by amount.
func (a *Account) ValidateDebit(amount decimal.Decimal) error {
	if !a.IsActive {
		return ErrAccountInactive
	}
	if amount.GreaterThan(a.Balance) {
		return ErrInsufficientFunds
	}
	return nil
}

// ValidateCredit checks if the account can be credited.
func (a *Account) ValidateCredit() error {
	if !a.IsActive {
		return ErrAccountInactive
	}
	return nil
}

// ApplyDebit returns new balance after debit.
func (a *Account) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Sub(amount)
}

// ApplyCredit returns new balance after credit.
func (a *Account) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(amount)
}
