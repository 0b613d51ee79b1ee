package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createRefund = `-- name: CreateRefund :exec
INSERT INTO refunds (id, tenant_id, member_id, source, amount, reason, notes, processed_by, reference, journal_entry_id, status, metadata, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
`

type CreateRefundParams struct {
	ID             string             `json:"id"`
	TenantID       string             `json:"tenant_id"`
	MemberID       string             `json:"member_id"`
	Source         string             `json:"source"`
	Amount         pgtype.Numeric     `json:"amount"`
	Reason         string             `json:"reason"`
	Notes          string             `json:"notes"`
	ProcessedBy    string             `json:"processed_by"`
	Reference      string             `json:"reference"`
	JournalEntryID pgtype.Text        `json:"journal_entry_id"`
	Status         string             `json:"status"`
	Metadata       []byte             `json:"metadata"`
	CreatedAt      pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateRefund(ctx context.Context, arg CreateRefundParams) error {
	_, err := q.db.Exec(ctx, createRefund,
		arg.ID,
		arg.TenantID,
		arg.MemberID,
		arg.Source,
		arg.Amount,
		arg.Reason,
		arg.Notes,
		arg.ProcessedBy,
		arg.Reference,
		arg.JournalEntryID,
		arg.Status,
		arg.Metadata,
		arg.CreatedAt,
	)
	return err
}

const getRefundByID = `-- name: GetRefundByID :one
SELECT id, tenant_id, member_id, source, amount, reason, notes, processed_by, reference, journal_entry_id, status, metadata, created_at FROM refunds
WHERE tenant_id = $1 AND id = $2
`

type GetRefundByIDParams struct {
	TenantID string `json:"tenant_id"`
	ID       string `json:"id"`
}

func (q *Queries) GetRefundByID(ctx context.Context, arg GetRefundByIDParams) (Refund, error) {
	row := q.db.QueryRow(ctx, getRefundByID, arg.TenantID, arg.ID)
	var i Refund
	err := row.Scan(
		&i.ID,
		&i.TenantID,
		&i.MemberID,
		&i.Source,
		&i.Amount,
		&i.Reason,
		&i.Notes,
		&i.ProcessedBy,
		&i.Reference,
		&i.JournalEntryID,
		&i.Status,
		&i.Metadata,
		&i.CreatedAt,
	)
	return i, err
}

const listRefundsByMember = `-- name: ListRefundsByMember :many
SELECT id, tenant_id, member_id, source, amount, reason, notes, processed_by, reference, journal_entry_id, status, metadata, created_at FROM refunds
WHERE tenant_id = $1 AND member_id = $2 AND ($3::text = '' OR source = $3::text)
ORDER BY created_at DESC, id DESC
LIMIT $4 OFFSET $5
`

type ListRefundsByMemberParams struct {
	TenantID string `json:"tenant_id"`
	MemberID string `json:"member_id"`
	Source   string `json:"source"`
	Limit    int32  `json:"limit"`
	Offset   int32  `json:"offset"`
}

func (q *Queries) ListRefundsByMember(ctx context.Context, arg ListRefundsByMemberParams) ([]Refund, error) {
	rows, err := q.db.Query(ctx, listRefundsByMember,
		arg.TenantID,
		arg.MemberID,
		arg.Source,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Refund{}
	for rows.Next() {
		var i Refund
		if err := rows.Scan(
			&i.ID,
			&i.TenantID,
			&i.MemberID,
			&i.Source,
			&i.Amount,
			&i.Reason,
			&i.Notes,
			&i.ProcessedBy,
			&i.Reference,
			&i.JournalEntryID,
			&i.Status,
			&i.Metadata,
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

const sumRefundsBySource = `-- name: SumRefundsBySource :one
SELECT COALESCE(SUM(amount), 0)::NUMERIC AS total FROM refunds
WHERE tenant_id = $1 AND member_id = $2 AND source = $3
`

type SumRefundsBySourceParams struct {
	TenantID string `json:"tenant_id"`
	MemberID string `json:"member_id"`
	Source   string `json:"source"`
}

func (q *Queries) SumRefundsBySource(ctx context.Context, arg SumRefundsBySourceParams) (pgtype.Numeric, error) {
	row := q.db.QueryRow(ctx, sumRefundsBySource, arg.TenantID, arg.MemberID, arg.Source)
	var total pgtype.Numeric
	err := row.Scan(&total)
	return total, err
}
