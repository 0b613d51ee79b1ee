package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/infrastructure/postgres/generated"
	"github.com/iho/coopledger/internal/usecase"
)

// RefundRepository implements usecase.RefundRepository.
type RefundRepository struct {
	db generated.DBTX
}

// NewRefundRepository creates a new RefundRepository.
func NewRefundRepository(db generated.DBTX) *RefundRepository {
	return &RefundRepository{db: db}
}

// Create inserts a refund. References are unique per tenant.
func (r *RefundRepository) Create(ctx context.Context, tx usecase.Transaction, refund *domain.Refund) error {
	metadata, err := marshalJSON(refund.Metadata)
	if err != nil {
		return err
	}

	err = queries(r.db, tx).CreateRefund(ctx, generated.CreateRefundParams{
		ID:             refund.ID,
		TenantID:       refund.TenantID,
		MemberID:       refund.MemberID,
		Source:         string(refund.Source),
		Amount:         decimalToNumeric(refund.Amount),
		Reason:         refund.Reason,
		Notes:          refund.Notes,
		ProcessedBy:    refund.ProcessedBy,
		Reference:      refund.Reference,
		JournalEntryID: stringToPgText(refund.JournalEntryID),
		Status:         refund.Status,
		Metadata:       metadata,
		CreatedAt:      timeToPgTimestamptz(refund.CreatedAt),
	})

	return translate(err, nil, fmt.Errorf("%w: refund reference %q already used", domain.ErrConflict, refund.Reference))
}

// GetByID retrieves a tenant's refund.
func (r *RefundRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.Refund, error) {
	row, err := queries(r.db, nil).GetRefundByID(ctx, generated.GetRefundByIDParams{
		TenantID: tenantID,
		ID:       id,
	})
	if err != nil {
		return nil, translate(err, domain.ErrRefundNotFound, nil)
	}

	return rowToRefund(row), nil
}

// ListByMember lists a member's refunds, newest first. An empty source
// lists every source.
func (r *RefundRepository) ListByMember(ctx context.Context, tenantID, memberID string, source domain.RefundSource, limit, offset int) ([]*domain.Refund, error) {
	rows, err := queries(r.db, nil).ListRefundsByMember(ctx, generated.ListRefundsByMemberParams{
		TenantID: tenantID,
		MemberID: memberID,
		Source:   string(source),
		Limit:    int32(limit),
		Offset:   int32(offset),
	})
	if err != nil {
		return nil, err
	}

	refunds := make([]*domain.Refund, 0, len(rows))
	for _, row := range rows {
		refunds = append(refunds, rowToRefund(row))
	}

	return refunds, nil
}

// SumBySource totals everything refunded to a member from source.
func (r *RefundRepository) SumBySource(ctx context.Context, tx usecase.Transaction, tenantID, memberID string, source domain.RefundSource) (decimal.Decimal, error) {
	total, err := queries(r.db, tx).SumRefundsBySource(ctx, generated.SumRefundsBySourceParams{
		TenantID: tenantID,
		MemberID: memberID,
		Source:   string(source),
	})
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(total), nil
}

func rowToRefund(row generated.Refund) *domain.Refund {
	return &domain.Refund{
		ID:             row.ID,
		TenantID:       row.TenantID,
		MemberID:       row.MemberID,
		Source:         domain.RefundSource(row.Source),
		Amount:         numericToDecimal(row.Amount),
		Reason:         row.Reason,
		Notes:          row.Notes,
		ProcessedBy:    row.ProcessedBy,
		Reference:      row.Reference,
		JournalEntryID: optionalString(row.JournalEntryID),
		Status:         row.Status,
		Metadata:       unmarshalJSON(row.Metadata),
		CreatedAt:      row.CreatedAt.Time,
	}
}
