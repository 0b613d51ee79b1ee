package postgres

import (
	"context"

	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/infrastructure/postgres/generated"
	"github.com/iho/coopledger/internal/usecase"
)

// JournalRepository implements usecase.JournalRepository.
type JournalRepository struct {
	db generated.DBTX
}

// NewJournalRepository creates a new JournalRepository.
func NewJournalRepository(db generated.DBTX) *JournalRepository {
	return &JournalRepository{db: db}
}

// Create appends an entry. Entries are never updated.
func (r *JournalRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error {
	metadata, err := marshalJSON(entry.Metadata)
	if err != nil {
		return err
	}

	err = queries(r.db, tx).CreateJournalEntry(ctx, generated.CreateJournalEntryParams{
		ID:             entry.ID,
		TenantID:       entry.TenantID,
		AccountID:      entry.AccountID,
		EntryType:      string(entry.Type),
		Amount:         decimalToNumeric(entry.Amount),
		BalanceBefore:  decimalToNumeric(entry.BalanceBefore),
		BalanceAfter:   decimalToNumeric(entry.BalanceAfter),
		AccountVersion: entry.AccountVersion,
		Reference:      entry.Reference,
		ReferenceType:  entry.ReferenceType,
		Description:    entry.Description,
		Metadata:       metadata,
		CreatedBy:      entry.CreatedBy,
		CreatedAt:      timeToPgTimestamptz(entry.CreatedAt),
	})

	return translate(err, nil, nil)
}

// GetByID retrieves an entry by ID.
func (r *JournalRepository) GetByID(ctx context.Context, id string) (*domain.JournalEntry, error) {
	row, err := queries(r.db, nil).GetJournalEntryByID(ctx, id)
	if err != nil {
		return nil, translate(err, domain.ErrEntryNotFound, nil)
	}

	return rowToJournalEntry(row), nil
}

// ListByAccount lists an account's entries, newest first.
func (r *JournalRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.JournalEntry, error) {
	rows, err := queries(r.db, nil).ListJournalEntriesByAccount(ctx, generated.ListJournalEntriesByAccountParams{
		AccountID: accountID,
		Limit:     int32(limit),
		Offset:    int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToJournalEntries(rows), nil
}

// History returns every entry of the account in version order.
func (r *JournalRepository) History(ctx context.Context, accountID string) ([]*domain.JournalEntry, error) {
	rows, err := queries(r.db, nil).ListJournalHistory(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return rowsToJournalEntries(rows), nil
}

func rowsToJournalEntries(rows []generated.JournalEntry) []*domain.JournalEntry {
	entries := make([]*domain.JournalEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, rowToJournalEntry(row))
	}

	return entries
}

func rowToJournalEntry(row generated.JournalEntry) *domain.JournalEntry {
	return &domain.JournalEntry{
		ID:             row.ID,
		TenantID:       row.TenantID,
		AccountID:      row.AccountID,
		Type:           domain.EntryType(row.EntryType),
		Amount:         numericToDecimal(row.Amount),
		BalanceBefore:  numericToDecimal(row.BalanceBefore),
		BalanceAfter:   numericToDecimal(row.BalanceAfter),
		AccountVersion: row.AccountVersion,
		Reference:      row.Reference,
		ReferenceType:  row.ReferenceType,
		Description:    row.Description,
		Metadata:       unmarshalJSON(row.Metadata),
		CreatedBy:      row.CreatedBy,
		CreatedAt:      row.CreatedAt.Time,
	}
}
