package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createContribution = `-- name: CreateContribution :exec
INSERT INTO contributions (id, tenant_id, member_id, amount, contribution_type, payment_method, payment_date, notes, status, created_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`

type CreateContributionParams struct {
	ID               string             `json:"id"`
	TenantID         string             `json:"tenant_id"`
	MemberID         string             `json:"member_id"`
	Amount           pgtype.Numeric     `json:"amount"`
	ContributionType string             `json:"contribution_type"`
	PaymentMethod    string             `json:"payment_method"`
	PaymentDate      pgtype.Date        `json:"payment_date"`
	Notes            string             `json:"notes"`
	Status           string             `json:"status"`
	CreatedBy        string             `json:"created_by"`
	CreatedAt        pgtype.Timestamptz `json:"created_at"`
	UpdatedAt        pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) CreateContribution(ctx context.Context, arg CreateContributionParams) error {
	_, err := q.db.Exec(ctx, createContribution,
		arg.ID,
		arg.TenantID,
		arg.MemberID,
		arg.Amount,
		arg.ContributionType,
		arg.PaymentMethod,
		arg.PaymentDate,
		arg.Notes,
		arg.Status,
		arg.CreatedBy,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const getContributionForUpdate = `-- name: GetContributionForUpdate :one
SELECT id, tenant_id, member_id, amount, contribution_type, payment_method, payment_date, notes, status, created_by, reviewed_by, reviewed_at, created_at, updated_at FROM contributions
WHERE tenant_id = $1 AND id = $2
FOR UPDATE
`

type GetContributionForUpdateParams struct {
	TenantID string `json:"tenant_id"`
	ID       string `json:"id"`
}

func (q *Queries) GetContributionForUpdate(ctx context.Context, arg GetContributionForUpdateParams) (Contribution, error) {
	row := q.db.QueryRow(ctx, getContributionForUpdate, arg.TenantID, arg.ID)
	var i Contribution
	err := row.Scan(
		&i.ID,
		&i.TenantID,
		&i.MemberID,
		&i.Amount,
		&i.ContributionType,
		&i.PaymentMethod,
		&i.PaymentDate,
		&i.Notes,
		&i.Status,
		&i.CreatedBy,
		&i.ReviewedBy,
		&i.ReviewedAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const updateContributionStatus = `-- name: UpdateContributionStatus :exec
UPDATE contributions SET status = $2, reviewed_by = $3, reviewed_at = $4, updated_at = $4 WHERE id = $1
`

type UpdateContributionStatusParams struct {
	ID         string             `json:"id"`
	Status     string             `json:"status"`
	ReviewedBy pgtype.Text        `json:"reviewed_by"`
	ReviewedAt pgtype.Timestamptz `json:"reviewed_at"`
}

func (q *Queries) UpdateContributionStatus(ctx context.Context, arg UpdateContributionStatusParams) error {
	_, err := q.db.Exec(ctx, updateContributionStatus,
		arg.ID,
		arg.Status,
		arg.ReviewedBy,
		arg.ReviewedAt,
	)
	return err
}

const sumApprovedContributions = `-- name: SumApprovedContributions :one
SELECT COALESCE(SUM(amount), 0)::NUMERIC AS total FROM contributions
WHERE tenant_id = $1 AND member_id = $2 AND status = 'approved'
`

type SumApprovedContributionsParams struct {
	TenantID string `json:"tenant_id"`
	MemberID string `json:"member_id"`
}

func (q *Queries) SumApprovedContributions(ctx context.Context, arg SumApprovedContributionsParams) (pgtype.Numeric, error) {
	row := q.db.QueryRow(ctx, sumApprovedContributions, arg.TenantID, arg.MemberID)
	var total pgtype.Numeric
	err := row.Scan(&total)
	return total, err
}

const createInvestmentReturn = `-- name: CreateInvestmentReturn :exec
INSERT INTO investment_returns (id, tenant_id, member_id, amount, description, status, paid_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

type CreateInvestmentReturnParams struct {
	ID          string             `json:"id"`
	TenantID    string             `json:"tenant_id"`
	MemberID    string             `json:"member_id"`
	Amount      pgtype.Numeric     `json:"amount"`
	Description string             `json:"description"`
	Status      string             `json:"status"`
	PaidAt      pgtype.Timestamptz `json:"paid_at"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateInvestmentReturn(ctx context.Context, arg CreateInvestmentReturnParams) error {
	_, err := q.db.Exec(ctx, createInvestmentReturn,
		arg.ID,
		arg.TenantID,
		arg.MemberID,
		arg.Amount,
		arg.Description,
		arg.Status,
		arg.PaidAt,
		arg.CreatedAt,
	)
	return err
}

const sumApprovedInvestmentReturns = `-- name: SumApprovedInvestmentReturns :one
SELECT COALESCE(SUM(amount), 0)::NUMERIC AS total FROM investment_returns
WHERE tenant_id = $1 AND member_id = $2 AND status = 'approved'
`

type SumApprovedInvestmentReturnsParams struct {
	TenantID string `json:"tenant_id"`
	MemberID string `json:"member_id"`
}

func (q *Queries) SumApprovedInvestmentReturns(ctx context.Context, arg SumApprovedInvestmentReturnsParams) (pgtype.Numeric, error) {
	row := q.db.QueryRow(ctx, sumApprovedInvestmentReturns, arg.TenantID, arg.MemberID)
	var total pgtype.Numeric
	err := row.Scan(&total)
	return total, err
}
