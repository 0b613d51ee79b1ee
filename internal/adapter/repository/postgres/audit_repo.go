package postgres

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/infrastructure/postgres/generated"
	"github.com/iho/coopledger/internal/usecase"
)

const defaultAuditPageSize = 50

// AuditRepository implements audit log persistence
type AuditRepository struct {
	db generated.DBTX
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db generated.DBTX) *AuditRepository {
	return &AuditRepository{db: db}
}

// CreateTx inserts a new audit log entry on tx, or on its own when tx is nil.
func (r *AuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}

	var beforeStateJSON, afterStateJSON []byte
	var err error

	if log.BeforeState != nil {
		beforeStateJSON, err = json.Marshal(log.BeforeState)
		if err != nil {
			return err
		}
	}

	if log.AfterState != nil {
		afterStateJSON, err = json.Marshal(log.AfterState)
		if err != nil {
			return err
		}
	}

	return queries(r.db, tx).CreateAuditLog(ctx, generated.CreateAuditLogParams{
		ID:           log.ID,
		TenantID:     log.TenantID,
		ActorID:      log.ActorID,
		Action:       string(log.Action),
		ResourceType: log.ResourceType,
		ResourceID:   log.ResourceID,
		BeforeState:  beforeStateJSON,
		AfterState:   afterStateJSON,
		Status:       string(log.Status),
		ErrorMessage: log.ErrorMessage,
		CreatedAt:    timeToPgTimestamptz(log.CreatedAt),
	})
}

// List retrieves a tenant's audit logs with filtering, newest first.
func (r *AuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultAuditPageSize
	}

	rows, err := queries(r.db, nil).ListAuditLogs(ctx, generated.ListAuditLogsParams{
		TenantID:     filter.TenantID,
		ActorID:      filter.ActorID,
		ResourceType: filter.ResourceType,
		ResourceID:   filter.ResourceID,
		Limit:        int32(limit),
		Offset:       int32(filter.Offset),
	})
	if err != nil {
		return nil, err
	}

	logs := make([]*domain.AuditLog, 0, len(rows))
	for _, row := range rows {
		logs = append(logs, &domain.AuditLog{
			ID:           row.ID,
			TenantID:     row.TenantID,
			ActorID:      row.ActorID,
			Action:       domain.AuditAction(row.Action),
			ResourceType: row.ResourceType,
			ResourceID:   row.ResourceID,
			BeforeState:  unmarshalJSON(row.BeforeState),
			AfterState:   unmarshalJSON(row.AfterState),
			Status:       domain.AuditStatus(row.Status),
			ErrorMessage: row.ErrorMessage,
			CreatedAt:    row.CreatedAt.Time,
		})
	}

	return logs, nil
}
