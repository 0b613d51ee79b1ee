package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RefundSource is the pool a refund is paid out of.
type RefundSource string

const (
	RefundSourceWallet           RefundSource = "wallet"
	RefundSourceContribution     RefundSource = "contribution"
	RefundSourceInvestmentReturn RefundSource = "investment_return"
	RefundSourceEquityWallet     RefundSource = "equity_wallet"
)

// RefundSources lists every source in a stable order.
var RefundSources = []RefundSource{
	RefundSourceWallet,
	RefundSourceContribution,
	RefundSourceInvestmentReturn,
	RefundSourceEquityWallet,
}

// IsValid reports whether s is a known source.
func (s RefundSource) IsValid() bool {
	switch s {
	case RefundSourceWallet, RefundSourceContribution, RefundSourceInvestmentReturn, RefundSourceEquityWallet:
		return true
	}
	return false
}

// AccountKind returns the account backing the source. Derived sources
// (contribution, investment_return) have no physical account.
func (s RefundSource) AccountKind() (AccountKind, bool) {
	switch s {
	case RefundSourceWallet:
		return AccountKindWallet, true
	case RefundSourceEquityWallet:
		return AccountKindEquityWallet, true
	}
	return "", false
}

// RefundStatusProcessed is the only status a refund ever has.
const RefundStatusProcessed = "processed"

// Refund is the append-only record of money returned to a member.
type Refund struct {
	CreatedAt      time.Time
	Metadata       map[string]any
	JournalEntryID *string
	ID             string
	TenantID       string
	MemberID       string
	Source         RefundSource
	Reason         string
	Notes          string
	ProcessedBy    string
	Reference      string
	Status         string
	Amount         decimal.Decimal
}
