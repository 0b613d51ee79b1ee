package domain

import (
	"encoding/json"
	"time"
)

// AuditLog is the trail entry written alongside every money-moving change.
type AuditLog struct {
	ID           string
	TenantID     string
	ActorID      string // who performed the action
	Action       AuditAction
	ResourceType string // account, refund, contribution
	ResourceID   string
	BeforeState  JSON
	AfterState   JSON
	Status       AuditStatus
	ErrorMessage string
	CreatedAt    time.Time
}

// JSON is a loosely typed JSON object.
type JSON map[string]any

// AuditAction represents different types of auditable actions
type AuditAction string

const (
	AuditActionAccountOpen        AuditAction = "account.open"
	AuditActionAccountCredit      AuditAction = "account.credit"
	AuditActionAccountDebit       AuditAction = "account.debit"
	AuditActionAccountDeactivate  AuditAction = "account.deactivate"
	AuditActionRefundProcess      AuditAction = "refund.process"
	AuditActionContributionReview AuditAction = "contribution.review"
	AuditActionImport             AuditAction = "import.run"
)

// AuditStatus represents the status of an audited action
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
)

// Audit resource types.
const (
	ResourceTypeAccount      = "account"
	ResourceTypeRefund       = "refund"
	ResourceTypeContribution = "contribution"
	ResourceTypeImport       = "import"
)

// MarshalState converts a domain object to JSON for audit logging
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal state"}
	}

	return result
}

// AuditFilter defines filters for querying audit logs
type AuditFilter struct {
	TenantID     string
	ActorID      string
	ResourceType string
	ResourceID   string
	Limit        int
	Offset       int
}
