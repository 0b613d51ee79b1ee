package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/coopledger/internal/domain"
)

// AvailabilityUseCase computes how much a member can still be refunded
// from each source. Nothing here is cached: every call reads storage.
type AvailabilityUseCase struct {
	accountRepo      AccountRepository
	refundRepo       RefundRepository
	contributionRepo ContributionRepository
	returnRepo       InvestmentReturnRepository
	logger           zerolog.Logger
}

// NewAvailabilityUseCase creates a new AvailabilityUseCase.
func NewAvailabilityUseCase(
	accountRepo AccountRepository,
	refundRepo RefundRepository,
	contributionRepo ContributionRepository,
	returnRepo InvestmentReturnRepository,
	logger zerolog.Logger,
) *AvailabilityUseCase {
	return &AvailabilityUseCase{
		accountRepo:      accountRepo,
		refundRepo:       refundRepo,
		contributionRepo: contributionRepo,
		returnRepo:       returnRepo,
		logger:           logger.With().Str("component", "availability").Logger(),
	}
}

// AvailabilitySummary is a member's refundable amount per source together
// with what has already been refunded from it.
type AvailabilitySummary struct {
	Available map[domain.RefundSource]decimal.Decimal
	Refunded  map[domain.RefundSource]decimal.Decimal
	MemberID  string
}

// TotalAvailable sums the availability of every source.
func (s *AvailabilitySummary) TotalAvailable() decimal.Decimal {
	total := decimal.Zero
	for _, v := range s.Available {
		total = total.Add(v)
	}
	return total
}

// Available returns the amount available to refund from source.
func (uc *AvailabilityUseCase) Available(ctx context.Context, tenantID, memberID string, source domain.RefundSource) (decimal.Decimal, error) {
	if tenantID == "" {
		return decimal.Zero, domain.ErrMissingTenant
	}

	if memberID == "" {
		return decimal.Zero, domain.NewValidationError("member_id", "is required")
	}

	amount, err := uc.AvailableTx(ctx, nil, tenantID, memberID, source)
	if err != nil {
		return decimal.Zero, surface(uc.logger, "availability.available", err)
	}

	return amount, nil
}

// AvailableTx is Available on the caller's transaction. A nil tx reads
// outside of one.
func (uc *AvailabilityUseCase) AvailableTx(ctx context.Context, tx Transaction, tenantID, memberID string, source domain.RefundSource) (decimal.Decimal, error) {
	if kind, ok := source.AccountKind(); ok {
		account, err := uc.accountRepo.GetByOwner(ctx, tx, tenantID, memberID, kind)
		if errors.Is(err, domain.ErrAccountNotFound) {
			return decimal.Zero, nil
		}
		if err != nil {
			return decimal.Zero, err
		}
		return account.Balance, nil
	}

	var (
		inflow decimal.Decimal
		err    error
	)

	switch source {
	case domain.RefundSourceContribution:
		inflow, err = uc.contributionRepo.SumApproved(ctx, tx, tenantID, memberID)
	case domain.RefundSourceInvestmentReturn:
		inflow, err = uc.returnRepo.SumApproved(ctx, tx, tenantID, memberID)
	default:
		return decimal.Zero, domain.ErrInvalidSource
	}
	if err != nil {
		return decimal.Zero, err
	}

	refunded, err := uc.refundRepo.SumBySource(ctx, tx, tenantID, memberID, source)
	if err != nil {
		return decimal.Zero, err
	}

	return decimal.Max(decimal.Zero, inflow.Sub(refunded)), nil
}

// Summary returns availability for every source.
func (uc *AvailabilityUseCase) Summary(ctx context.Context, tenantID, memberID string) (*AvailabilitySummary, error) {
	if tenantID == "" {
		return nil, domain.ErrMissingTenant
	}

	summary, err := uc.SummaryTx(ctx, nil, tenantID, memberID)
	if err != nil {
		return nil, surface(uc.logger, "availability.summary", err)
	}

	return summary, nil
}

// SummaryTx is Summary on the caller's transaction.
func (uc *AvailabilityUseCase) SummaryTx(ctx context.Context, tx Transaction, tenantID, memberID string) (*AvailabilitySummary, error) {
	summary := &AvailabilitySummary{
		MemberID:  memberID,
		Available: make(map[domain.RefundSource]decimal.Decimal, len(domain.RefundSources)),
		Refunded:  make(map[domain.RefundSource]decimal.Decimal, len(domain.RefundSources)),
	}

	for _, source := range domain.RefundSources {
		available, err := uc.AvailableTx(ctx, tx, tenantID, memberID, source)
		if err != nil {
			return nil, err
		}

		refunded, err := uc.refundRepo.SumBySource(ctx, tx, tenantID, memberID, source)
		if err != nil {
			return nil, err
		}

		summary.Available[source] = available
		summary.Refunded[source] = refunded
	}

	return summary, nil
}
