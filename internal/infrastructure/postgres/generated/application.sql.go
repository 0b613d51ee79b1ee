package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createLoan = `-- name: CreateLoan :exec
INSERT INTO loans (id, tenant_id, member_id, amount, interest_rate, tenure_months, purpose, status, created_by, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

type CreateLoanParams struct {
	ID           string             `json:"id"`
	TenantID     string             `json:"tenant_id"`
	MemberID     string             `json:"member_id"`
	Amount       pgtype.Numeric     `json:"amount"`
	InterestRate pgtype.Numeric     `json:"interest_rate"`
	TenureMonths int32              `json:"tenure_months"`
	Purpose      string             `json:"purpose"`
	Status       string             `json:"status"`
	CreatedBy    string             `json:"created_by"`
	CreatedAt    pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateLoan(ctx context.Context, arg CreateLoanParams) error {
	_, err := q.db.Exec(ctx, createLoan,
		arg.ID,
		arg.TenantID,
		arg.MemberID,
		arg.Amount,
		arg.InterestRate,
		arg.TenureMonths,
		arg.Purpose,
		arg.Status,
		arg.CreatedBy,
		arg.CreatedAt,
	)
	return err
}

const createMortgage = `-- name: CreateMortgage :exec
INSERT INTO mortgages (id, tenant_id, member_id, property_id, provider, amount, interest_rate, tenure_years, monthly_payment, status, created_by, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`

type CreateMortgageParams struct {
	ID             string             `json:"id"`
	TenantID       string             `json:"tenant_id"`
	MemberID       string             `json:"member_id"`
	PropertyID     pgtype.Text        `json:"property_id"`
	Provider       string             `json:"provider"`
	Amount         pgtype.Numeric     `json:"amount"`
	InterestRate   pgtype.Numeric     `json:"interest_rate"`
	TenureYears    int32              `json:"tenure_years"`
	MonthlyPayment pgtype.Numeric     `json:"monthly_payment"`
	Status         string             `json:"status"`
	CreatedBy      string             `json:"created_by"`
	CreatedAt      pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateMortgage(ctx context.Context, arg CreateMortgageParams) error {
	_, err := q.db.Exec(ctx, createMortgage,
		arg.ID,
		arg.TenantID,
		arg.MemberID,
		arg.PropertyID,
		arg.Provider,
		arg.Amount,
		arg.InterestRate,
		arg.TenureYears,
		arg.MonthlyPayment,
		arg.Status,
		arg.CreatedBy,
		arg.CreatedAt,
	)
	return err
}

const createProperty = `-- name: CreateProperty :exec
INSERT INTO properties (id, tenant_id, name, property_type, location, price, size, status, created_by, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

type CreatePropertyParams struct {
	ID           string             `json:"id"`
	TenantID     string             `json:"tenant_id"`
	Name         string             `json:"name"`
	PropertyType string             `json:"property_type"`
	Location     string             `json:"location"`
	Price        pgtype.Numeric     `json:"price"`
	Size         string             `json:"size"`
	Status       string             `json:"status"`
	CreatedBy    string             `json:"created_by"`
	CreatedAt    pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateProperty(ctx context.Context, arg CreatePropertyParams) error {
	_, err := q.db.Exec(ctx, createProperty,
		arg.ID,
		arg.TenantID,
		arg.Name,
		arg.PropertyType,
		arg.Location,
		arg.Price,
		arg.Size,
		arg.Status,
		arg.CreatedBy,
		arg.CreatedAt,
	)
	return err
}
