package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/infrastructure/postgres/generated"
	"github.com/iho/coopledger/internal/usecase"
)

// ContributionRepository implements usecase.ContributionRepository.
type ContributionRepository struct {
	db generated.DBTX
}

// NewContributionRepository creates a new ContributionRepository.
func NewContributionRepository(db generated.DBTX) *ContributionRepository {
	return &ContributionRepository{db: db}
}

// Create inserts a contribution.
func (r *ContributionRepository) Create(ctx context.Context, tx usecase.Transaction, c *domain.Contribution) error {
	err := queries(r.db, tx).CreateContribution(ctx, generated.CreateContributionParams{
		ID:               c.ID,
		TenantID:         c.TenantID,
		MemberID:         c.MemberID,
		Amount:           decimalToNumeric(c.Amount),
		ContributionType: c.Type,
		PaymentMethod:    c.PaymentMethod,
		PaymentDate:      timeToPgDate(c.PaymentDate),
		Notes:            c.Notes,
		Status:           string(c.Status),
		CreatedBy:        c.CreatedBy,
		CreatedAt:        timeToPgTimestamptz(c.CreatedAt),
		UpdatedAt:        timeToPgTimestamptz(c.UpdatedAt),
	})

	return translate(err, nil, nil)
}

// GetByIDForUpdate retrieves a tenant's contribution with a FOR UPDATE lock.
func (r *ContributionRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, tenantID, id string) (*domain.Contribution, error) {
	row, err := queries(r.db, tx).GetContributionForUpdate(ctx, generated.GetContributionForUpdateParams{
		TenantID: tenantID,
		ID:       id,
	})
	if err != nil {
		return nil, translate(err, domain.ErrContributionNotFound, nil)
	}

	return &domain.Contribution{
		ID:            row.ID,
		TenantID:      row.TenantID,
		MemberID:      row.MemberID,
		Amount:        numericToDecimal(row.Amount),
		Type:          row.ContributionType,
		PaymentMethod: row.PaymentMethod,
		PaymentDate:   row.PaymentDate.Time,
		Notes:         row.Notes,
		Status:        domain.InflowStatus(row.Status),
		CreatedBy:     row.CreatedBy,
		ReviewedBy:    row.ReviewedBy.String,
		ReviewedAt:    optionalTime(row.ReviewedAt),
		CreatedAt:     row.CreatedAt.Time,
		UpdatedAt:     row.UpdatedAt.Time,
	}, nil
}

// UpdateStatus records a review decision.
func (r *ContributionRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.InflowStatus, reviewedBy string, reviewedAt time.Time) error {
	return queries(r.db, tx).UpdateContributionStatus(ctx, generated.UpdateContributionStatusParams{
		ID:         id,
		Status:     string(status),
		ReviewedBy: pgtype.Text{String: reviewedBy, Valid: reviewedBy != ""},
		ReviewedAt: timeToPgTimestamptz(reviewedAt),
	})
}

// SumApproved totals a member's approved contributions.
func (r *ContributionRepository) SumApproved(ctx context.Context, tx usecase.Transaction, tenantID, memberID string) (decimal.Decimal, error) {
	total, err := queries(r.db, tx).SumApprovedContributions(ctx, generated.SumApprovedContributionsParams{
		TenantID: tenantID,
		MemberID: memberID,
	})
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(total), nil
}

// InvestmentReturnRepository implements usecase.InvestmentReturnRepository.
type InvestmentReturnRepository struct {
	db generated.DBTX
}

// NewInvestmentReturnRepository creates a new InvestmentReturnRepository.
func NewInvestmentReturnRepository(db generated.DBTX) *InvestmentReturnRepository {
	return &InvestmentReturnRepository{db: db}
}

// Create inserts an investment return.
func (r *InvestmentReturnRepository) Create(ctx context.Context, tx usecase.Transaction, ret *domain.InvestmentReturn) error {
	err := queries(r.db, tx).CreateInvestmentReturn(ctx, generated.CreateInvestmentReturnParams{
		ID:          ret.ID,
		TenantID:    ret.TenantID,
		MemberID:    ret.MemberID,
		Amount:      decimalToNumeric(ret.Amount),
		Description: ret.Description,
		Status:      string(ret.Status),
		PaidAt:      timeToPgTimestamptz(ret.PaidAt),
		CreatedAt:   timeToPgTimestamptz(ret.CreatedAt),
	})

	return translate(err, nil, nil)
}

// SumApproved totals a member's approved investment returns.
func (r *InvestmentReturnRepository) SumApproved(ctx context.Context, tx usecase.Transaction, tenantID, memberID string) (decimal.Decimal, error) {
	total, err := queries(r.db, tx).SumApprovedInvestmentReturns(ctx, generated.SumApprovedInvestmentReturnsParams{
		TenantID: tenantID,
		MemberID: memberID,
	})
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(total), nil
}
