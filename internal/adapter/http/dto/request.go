package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/usecase"
)

// OpenAccountRequest represents a request to open a member account.
type OpenAccountRequest struct {
	OwnerID  string `json:"owner_id"`
	Kind     string `json:"kind"`
	Currency string `json:"currency"`
}

// ToUseCaseInput converts to use case input.
func (r *OpenAccountRequest) ToUseCaseInput(tenantID, actorID string) usecase.OpenAccountInput {
	return usecase.OpenAccountInput{
		TenantID: tenantID,
		ActorID:  actorID,
		OwnerID:  r.OwnerID,
		Kind:     domain.AccountKind(r.Kind),
		Currency: r.Currency,
	}
}

// AdjustBalanceRequest credits or debits a member account.
type AdjustBalanceRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Reference   string          `json:"reference,omitempty"`
	Description string          `json:"description,omitempty"`
	Metadata    map[string]any  `json:"metadata,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *AdjustBalanceRequest) ToUseCaseInput(tenantID, actorID, memberID string, kind domain.AccountKind) usecase.AdjustBalanceInput {
	return usecase.AdjustBalanceInput{
		Metadata:    r.Metadata,
		TenantID:    tenantID,
		ActorID:     actorID,
		OwnerID:     memberID,
		Kind:        kind,
		Reference:   r.Reference,
		Description: r.Description,
		Amount:      r.Amount,
	}
}

// RefundRequest represents a request to refund a member.
type RefundRequest struct {
	Source      string          `json:"source"`
	Amount      decimal.Decimal `json:"amount"`
	Reason      string          `json:"reason"`
	Notes       string          `json:"notes,omitempty"`
	Reference   string          `json:"reference,omitempty"`
	AutoApprove bool            `json:"auto_approve,omitempty"`
	Metadata    map[string]any  `json:"metadata,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *RefundRequest) ToUseCaseInput(tenantID, actorID, memberID string) usecase.RefundInput {
	return usecase.RefundInput{
		Metadata:    r.Metadata,
		TenantID:    tenantID,
		ActorID:     actorID,
		MemberID:    memberID,
		Source:      domain.RefundSource(r.Source),
		Reason:      r.Reason,
		Notes:       r.Notes,
		Reference:   r.Reference,
		Amount:      r.Amount,
		AutoApprove: r.AutoApprove,
	}
}

// ReviewRequest approves or rejects a contribution.
type ReviewRequest struct {
	Status string `json:"status"`
}

// ToUseCaseInput converts to use case input.
func (r *ReviewRequest) ToUseCaseInput(tenantID, actorID, contributionID string) usecase.ReviewInput {
	return usecase.ReviewInput{
		TenantID:       tenantID,
		ActorID:        actorID,
		ContributionID: contributionID,
		Status:         domain.InflowStatus(r.Status),
	}
}
