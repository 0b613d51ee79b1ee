package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EntryType is the direction of a journal entry.
type EntryType string

const (
	EntryTypeCredit EntryType = "credit"
	EntryTypeDebit  EntryType = "debit"
)

// Reference types recorded on journal entries.
const (
	ReferenceTypeRefund     = "refund"
	ReferenceTypeTopUp      = "top_up"
	ReferenceTypeWithdrawal = "withdrawal"
)

// JournalEntry is an immutable record of one balance change on an account.
type JournalEntry struct {
	CreatedAt      time.Time
	Metadata       map[string]any
	ID             string
	TenantID       string
	AccountID      string
	Type           EntryType
	Reference      string
	ReferenceType  string
	Description    string
	CreatedBy      string
	Amount         decimal.Decimal
	BalanceBefore  decimal.Decimal
	BalanceAfter   decimal.Decimal
	AccountVersion int64
}

// Verify checks that the balance snapshots agree with the amount and type.
func (e *JournalEntry) Verify() error {
	if !e.Amount.IsPositive() {
		return fmt.Errorf("%w: entry %s has non-positive amount %s", ErrBrokenJournal, e.ID, e.Amount)
	}

	var expected decimal.Decimal
	switch e.Type {
	case EntryTypeCredit:
		expected = e.BalanceBefore.Add(e.Amount)
	case EntryTypeDebit:
		expected = e.BalanceBefore.Sub(e.Amount)
	default:
		return fmt.Errorf("%w: entry %s has unknown type %q", ErrBrokenJournal, e.ID, e.Type)
	}

	if !expected.Equal(e.BalanceAfter) {
		return fmt.Errorf("%w: entry %s expected balance_after %s, got %s",
			ErrBrokenJournal, e.ID, expected, e.BalanceAfter)
	}

	if e.BalanceAfter.IsNegative() {
		return fmt.Errorf("%w: entry %s leaves a negative balance", ErrBrokenJournal, e.ID)
	}

	return nil
}

// SignedAmount returns the amount as a signed change to the balance.
func (e *JournalEntry) SignedAmount() decimal.Decimal {
	if e.Type == EntryTypeDebit {
		return e.Amount.Neg()
	}
	return e.Amount
}
