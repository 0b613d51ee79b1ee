package usecase

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/infrastructure/metrics"
)

// RefundUseCase handles refund business logic.
type RefundUseCase struct {
	txManager    TransactionManager
	accountRepo  AccountRepository
	memberRepo   MemberRepository
	refundRepo   RefundRepository
	mutator      *BalanceMutator
	availability *AvailabilityUseCase
	rec          recorder
	idGen        IDGenerator
	logger       zerolog.Logger
	metrics      *metrics.Metrics
	now          func() time.Time
}

// NewRefundUseCase creates a new RefundUseCase.
func NewRefundUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	memberRepo MemberRepository,
	refundRepo RefundRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	mutator *BalanceMutator,
	availability *AvailabilityUseCase,
	idGen IDGenerator,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *RefundUseCase {
	return &RefundUseCase{
		txManager:    txManager,
		accountRepo:  accountRepo,
		memberRepo:   memberRepo,
		refundRepo:   refundRepo,
		mutator:      mutator,
		availability: availability,
		rec:          recorder{outboxRepo: outboxRepo, auditRepo: auditRepo, idGen: idGen},
		idGen:        idGen,
		logger:       logger.With().Str("component", "refund").Logger(),
		metrics:      m,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// RefundInput represents input for processing a refund.
type RefundInput struct {
	Metadata    map[string]any
	TenantID    string              `validate:"required"`
	ActorID     string              `validate:"required"`
	MemberID    string              `validate:"required"`
	Source      domain.RefundSource `validate:"refund_source"`
	Reason      string              `validate:"required,max=255"`
	Notes       string              `validate:"max=1000"`
	Reference   string              `validate:"max=100"`
	Amount      decimal.Decimal     `validate:"amount"`
	AutoApprove bool
}

// Validate performs the checks that need no storage.
func (in RefundInput) Validate() error {
	if err := domain.ValidateScope(in.TenantID, in.ActorID); err != nil {
		return err
	}

	if !in.Amount.IsPositive() {
		return domain.ErrInvalidAmount
	}

	if !in.Source.IsValid() {
		return domain.ErrInvalidSource
	}

	if err := domain.ValidateStruct(in); err != nil {
		return err
	}

	return domain.ValidateMetadata(in.Metadata)
}

// RefundResult is a committed refund and the member's availability after it.
type RefundResult struct {
	Refund  *domain.Refund
	Summary *AvailabilitySummary
}

// ProcessRefund validates availability, debits account-backed sources and
// records the refund, all in one transaction.
func (uc *RefundUseCase) ProcessRefund(ctx context.Context, input RefundInput) (*RefundResult, error) {
	result, err := uc.processRefund(ctx, input)
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.RefundErrors.WithLabelValues(errorReason(err)).Inc()
		}
		return nil, err
	}

	if uc.metrics != nil {
		amount, _ := result.Refund.Amount.Float64()
		uc.metrics.RefundsProcessed.WithLabelValues(string(result.Refund.Source)).Inc()
		uc.metrics.RefundAmount.WithLabelValues(string(result.Refund.Source)).Observe(amount)
	}

	return result, nil
}

func (uc *RefundUseCase) processRefund(ctx context.Context, input RefundInput) (*RefundResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, surface(uc.logger, "refund.begin", err)
	}
	defer tx.Rollback(txCtx)

	refund, err := uc.ProcessRefundTx(txCtx, tx, input)
	if err != nil {
		return nil, surface(uc.logger, "refund.process", err)
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, surface(uc.logger, "refund.commit", err)
	}

	uc.logger.Info().
		Str("tenant_id", refund.TenantID).
		Str("member_id", refund.MemberID).
		Str("refund_id", refund.ID).
		Str("source", string(refund.Source)).
		Str("amount", refund.Amount.String()).
		Str("actor_id", refund.ProcessedBy).
		Msg("refund processed")

	result := &RefundResult{Refund: refund}

	// The refund is committed; a failed re-read only costs the caller the summary.
	summary, err := uc.availability.Summary(ctx, input.TenantID, input.MemberID)
	if err != nil {
		uc.logger.Warn().Err(err).Str("refund_id", refund.ID).Msg("summary after refund failed")
		return result, nil
	}
	result.Summary = summary

	return result, nil
}

// ProcessRefundTx runs the refund on the caller's transaction without
// committing it. Input must already be validated.
func (uc *RefundUseCase) ProcessRefundTx(ctx context.Context, tx Transaction, input RefundInput) (*domain.Refund, error) {
	var account *domain.Account

	// Lock first so availability cannot change under us.
	if kind, ok := input.Source.AccountKind(); ok {
		locked, err := uc.accountRepo.GetByOwnerForUpdate(ctx, tx, input.TenantID, input.MemberID, kind)
		switch {
		case err == nil:
			account = locked
		case !isNotFound(err):
			return nil, err
		default:
			// No account yet: an unknown member is NotFound, a known one has nothing to refund.
			if _, err := uc.memberRepo.LockForUpdate(ctx, tx, input.TenantID, input.MemberID); err != nil {
				return nil, err
			}
		}
	} else if _, err := uc.memberRepo.LockForUpdate(ctx, tx, input.TenantID, input.MemberID); err != nil {
		return nil, err
	}

	available, err := uc.availability.AvailableTx(ctx, tx, input.TenantID, input.MemberID, input.Source)
	if err != nil {
		return nil, err
	}

	if input.Amount.GreaterThan(available) {
		return nil, fmt.Errorf("%w: requested %s from %s, available %s",
			domain.ErrInsufficientBalance, input.Amount.StringFixed(2), input.Source, available.StringFixed(2))
	}

	reference := input.Reference
	if reference == "" {
		reference = "RF-" + ulid.Make().String()
	}

	refund := &domain.Refund{
		ID:          uc.idGen.Generate(),
		TenantID:    input.TenantID,
		MemberID:    input.MemberID,
		Source:      input.Source,
		Amount:      input.Amount,
		Reason:      input.Reason,
		Notes:       input.Notes,
		ProcessedBy: input.ActorID,
		Reference:   reference,
		Status:      domain.RefundStatusProcessed,
		Metadata:    refundMetadata(input),
		CreatedAt:   uc.now(),
	}

	if account != nil {
		entry, err := uc.mutator.ApplyLocked(ctx, tx, account, MutationInput{
			TenantID:      input.TenantID,
			ActorID:       input.ActorID,
			OwnerID:       input.MemberID,
			Kind:          account.Kind,
			SignedAmount:  input.Amount.Neg(),
			Reference:     reference,
			ReferenceType: domain.ReferenceTypeRefund,
			Description:   "Refund: " + input.Reason,
		})
		if err != nil {
			return nil, err
		}
		refund.JournalEntryID = &entry.ID
	}

	if err := uc.refundRepo.Create(ctx, tx, refund); err != nil {
		return nil, err
	}

	payload := domain.RefundProcessedEvent{
		RefundID:    refund.ID,
		MemberID:    refund.MemberID,
		Source:      string(refund.Source),
		Amount:      refund.Amount.String(),
		Reference:   refund.Reference,
		ProcessedBy: refund.ProcessedBy,
	}
	if refund.JournalEntryID != nil {
		payload.JournalEntryID = *refund.JournalEntryID
	}

	if err := uc.rec.event(ctx, tx, refund.TenantID, domain.AggregateTypeRefund, refund.ID, domain.EventTypeRefundProcessed, payload, refund.CreatedAt); err != nil {
		return nil, err
	}

	err = uc.rec.audit(ctx, tx, auditRecord{
		tenantID:     refund.TenantID,
		actorID:      refund.ProcessedBy,
		action:       domain.AuditActionRefundProcess,
		resourceType: domain.ResourceTypeRefund,
		resourceID:   refund.ID,
		after:        payload,
	}, refund.CreatedAt)
	if err != nil {
		return nil, err
	}

	return refund, nil
}

func refundMetadata(input RefundInput) map[string]any {
	if input.Metadata == nil && !input.AutoApprove {
		return nil
	}

	metadata := make(map[string]any, len(input.Metadata)+1)
	maps.Copy(metadata, input.Metadata)
	if input.AutoApprove {
		metadata["auto_approve"] = true
	}

	return metadata
}

// GetRefund retrieves a refund by ID.
func (uc *RefundUseCase) GetRefund(ctx context.Context, tenantID, id string) (*domain.Refund, error) {
	if tenantID == "" {
		return nil, domain.ErrMissingTenant
	}

	refund, err := uc.refundRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, surface(uc.logger, "refund.get", err)
	}

	return refund, nil
}

// ListRefundsInput filters a member's refunds. An empty Source lists all.
type ListRefundsInput struct {
	TenantID string
	MemberID string
	Source   domain.RefundSource
	Limit    int
	Offset   int
}

// ListRefunds returns a member's refunds, newest first.
func (uc *RefundUseCase) ListRefunds(ctx context.Context, input ListRefundsInput) ([]*domain.Refund, error) {
	if input.TenantID == "" {
		return nil, domain.ErrMissingTenant
	}

	if input.Source != "" && !input.Source.IsValid() {
		return nil, domain.ErrInvalidSource
	}

	limit, offset := domain.ClampPagination(input.Limit, input.Offset)

	refunds, err := uc.refundRepo.ListByMember(ctx, input.TenantID, input.MemberID, input.Source, limit, offset)
	if err != nil {
		return nil, surface(uc.logger, "refund.list", err)
	}

	return refunds, nil
}
