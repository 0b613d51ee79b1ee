package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createJournalEntry = `-- name: CreateJournalEntry :exec
INSERT INTO journal_entries (id, tenant_id, account_id, entry_type, amount, balance_before, balance_after, account_version, reference, reference_type, description, metadata, created_by, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
`

type CreateJournalEntryParams struct {
	ID             string             `json:"id"`
	TenantID       string             `json:"tenant_id"`
	AccountID      string             `json:"account_id"`
	EntryType      string             `json:"entry_type"`
	Amount         pgtype.Numeric     `json:"amount"`
	BalanceBefore  pgtype.Numeric     `json:"balance_before"`
	BalanceAfter   pgtype.Numeric     `json:"balance_after"`
	AccountVersion int64              `json:"account_version"`
	Reference      string             `json:"reference"`
	ReferenceType  string             `json:"reference_type"`
	Description    string             `json:"description"`
	Metadata       []byte             `json:"metadata"`
	CreatedBy      string             `json:"created_by"`
	CreatedAt      pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateJournalEntry(ctx context.Context, arg CreateJournalEntryParams) error {
	_, err := q.db.Exec(ctx, createJournalEntry,
		arg.ID,
		arg.TenantID,
		arg.AccountID,
		arg.EntryType,
		arg.Amount,
		arg.BalanceBefore,
		arg.BalanceAfter,
		arg.AccountVersion,
		arg.Reference,
		arg.ReferenceType,
		arg.Description,
		arg.Metadata,
		arg.CreatedBy,
		arg.CreatedAt,
	)
	return err
}

const getJournalEntryByID = `-- name: GetJournalEntryByID :one
SELECT id, tenant_id, account_id, entry_type, amount, balance_before, balance_after, account_version, reference, reference_type, description, metadata, created_by, created_at FROM journal_entries WHERE id = $1
`

func (q *Queries) GetJournalEntryByID(ctx context.Context, id string) (JournalEntry, error) {
	row := q.db.QueryRow(ctx, getJournalEntryByID, id)
	var i JournalEntry
	err := row.Scan(
		&i.ID,
		&i.TenantID,
		&i.AccountID,
		&i.EntryType,
		&i.Amount,
		&i.BalanceBefore,
		&i.BalanceAfter,
		&i.AccountVersion,
		&i.Reference,
		&i.ReferenceType,
		&i.Description,
		&i.Metadata,
		&i.CreatedBy,
		&i.CreatedAt,
	)
	return i, err
}

const listJournalEntriesByAccount = `-- name: ListJournalEntriesByAccount :many
SELECT id, tenant_id, account_id, entry_type, amount, balance_before, balance_after, account_version, reference, reference_type, description, metadata, created_by, created_at FROM journal_entries
WHERE account_id = $1
ORDER BY account_version DESC
LIMIT $2 OFFSET $3
`

type ListJournalEntriesByAccountParams struct {
	AccountID string `json:"account_id"`
	Limit     int32  `json:"limit"`
	Offset    int32  `json:"offset"`
}

func (q *Queries) ListJournalEntriesByAccount(ctx context.Context, arg ListJournalEntriesByAccountParams) ([]JournalEntry, error) {
	rows, err := q.db.Query(ctx, listJournalEntriesByAccount, arg.AccountID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []JournalEntry{}
	for rows.Next() {
		var i JournalEntry
		if err := rows.Scan(
			&i.ID,
			&i.TenantID,
			&i.AccountID,
			&i.EntryType,
			&i.Amount,
			&i.BalanceBefore,
			&i.BalanceAfter,
			&i.AccountVersion,
			&i.Reference,
			&i.ReferenceType,
			&i.Description,
			&i.Metadata,
			&i.CreatedBy,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listJournalHistory = `-- name: ListJournalHistory :many
SELECT id, tenant_id, account_id, entry_type, amount, balance_before, balance_after, account_version, reference, reference_type, description, metadata, created_by, created_at FROM journal_entries
WHERE account_id = $1
ORDER BY account_version ASC
`

func (q *Queries) ListJournalHistory(ctx context.Context, accountID string) ([]JournalEntry, error) {
	rows, err := q.db.Query(ctx, listJournalHistory, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []JournalEntry{}
	for rows.Next() {
		var i JournalEntry
		if err := rows.Scan(
			&i.ID,
			&i.TenantID,
			&i.AccountID,
			&i.EntryType,
			&i.Amount,
			&i.BalanceBefore,
			&i.BalanceAfter,
			&i.AccountVersion,
			&i.Reference,
			&i.ReferenceType,
			&i.Description,
			&i.Metadata,
			&i.CreatedBy,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
