package usecase

import (
	"context"
	"time"

	"github.com/iho/coopledger/internal/domain"
)

// recorder writes the outbox event and audit log that accompany every
// money-moving change, on the caller's transaction.
type recorder struct {
	outboxRepo OutboxRepository
	auditRepo  AuditRepository
	idGen      IDGenerator
}

type auditRecord struct {
	tenantID     string
	actorID      string
	action       domain.AuditAction
	resourceType string
	resourceID   string
	before       any
	after        any
}

func (r recorder) event(ctx context.Context, tx Transaction, tenantID, aggregateType, aggregateID, eventType string, payload any, now time.Time) error {
	if r.outboxRepo == nil {
		return nil
	}

	return r.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            r.idGen.Generate(),
		TenantID:      tenantID,
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Payload:       domain.MarshalState(payload),
		CreatedAt:     now,
	})
}

func (r recorder) audit(ctx context.Context, tx Transaction, rec auditRecord, now time.Time) error {
	if r.auditRepo == nil {
		return nil
	}

	return r.auditRepo.CreateTx(ctx, tx, &domain.AuditLog{
		ID:           r.idGen.Generate(),
		TenantID:     rec.tenantID,
		ActorID:      rec.actorID,
		Action:       rec.action,
		ResourceType: rec.resourceType,
		ResourceID:   rec.resourceID,
		BeforeState:  domain.MarshalState(rec.before),
		AfterState:   domain.MarshalState(rec.after),
		Status:       domain.AuditStatusSuccess,
		CreatedAt:    now,
	})
}
