package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/coopledger/internal/domain"
)

// ContributionUseCase handles the review of imported contributions.
type ContributionUseCase struct {
	txManager        TransactionManager
	contributionRepo ContributionRepository
	rec              recorder
	logger           zerolog.Logger
}

// NewContributionUseCase creates a new ContributionUseCase.
func NewContributionUseCase(
	txManager TransactionManager,
	contributionRepo ContributionRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	logger zerolog.Logger,
) *ContributionUseCase {
	return &ContributionUseCase{
		txManager:        txManager,
		contributionRepo: contributionRepo,
		rec:              recorder{outboxRepo: outboxRepo, auditRepo: auditRepo, idGen: idGen},
		logger:           logger.With().Str("component", "contribution").Logger(),
	}
}

// ReviewInput approves or rejects a pending contribution.
type ReviewInput struct {
	TenantID       string              `validate:"required"`
	ActorID        string              `validate:"required"`
	ContributionID string              `validate:"required"`
	Status         domain.InflowStatus `validate:"oneof=approved rejected"`
}

// Review moves a pending contribution to approved or rejected. Approved
// contributions count towards the member's refundable contribution balance.
func (uc *ContributionUseCase) Review(ctx context.Context, input ReviewInput) (*domain.Contribution, error) {
	if err := domain.ValidateScope(input.TenantID, input.ActorID); err != nil {
		return nil, err
	}

	if err := domain.ValidateStruct(input); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, surface(uc.logger, "contribution.begin", err)
	}
	defer tx.Rollback(ctx)

	contribution, err := uc.review(ctx, tx, input)
	if err != nil {
		return nil, surface(uc.logger, "contribution.review", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, surface(uc.logger, "contribution.commit", err)
	}

	return contribution, nil
}

func (uc *ContributionUseCase) review(ctx context.Context, tx Transaction, input ReviewInput) (*domain.Contribution, error) {
	contribution, err := uc.contributionRepo.GetByIDForUpdate(ctx, tx, input.TenantID, input.ContributionID)
	if err != nil {
		return nil, err
	}

	if !contribution.Status.CanTransitionTo(input.Status) {
		return nil, fmt.Errorf("%w: contribution is %s", domain.ErrInvalidTransition, contribution.Status)
	}

	before := contribution.Status
	now := time.Now().UTC()

	if err := uc.contributionRepo.UpdateStatus(ctx, tx, contribution.ID, input.Status, input.ActorID, now); err != nil {
		return nil, err
	}

	contribution.Status = input.Status
	contribution.ReviewedBy = input.ActorID
	contribution.ReviewedAt = &now
	contribution.UpdatedAt = now

	payload := domain.ContributionReviewedEvent{
		ContributionID: contribution.ID,
		MemberID:       contribution.MemberID,
		Status:         string(contribution.Status),
		Amount:         contribution.Amount.String(),
		ReviewedBy:     input.ActorID,
	}
	if err := uc.rec.event(ctx, tx, input.TenantID, domain.AggregateTypeContribution, contribution.ID, domain.EventTypeContributionReviewed, payload, now); err != nil {
		return nil, err
	}

	err = uc.rec.audit(ctx, tx, auditRecord{
		tenantID:     input.TenantID,
		actorID:      input.ActorID,
		action:       domain.AuditActionContributionReview,
		resourceType: domain.ResourceTypeContribution,
		resourceID:   contribution.ID,
		before:       map[string]string{"status": string(before)},
		after:        payload,
	}, now)
	if err != nil {
		return nil, err
	}

	return contribution, nil
}
