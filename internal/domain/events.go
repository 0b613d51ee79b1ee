package domain

import "time"

// Event types
const (
	EventTypeAccountCredited      = "account.credited"
	EventTypeAccountDebited       = "account.debited"
	EventTypeRefundProcessed      = "refund.processed"
	EventTypeContributionReviewed = "contribution.reviewed"
)

// Aggregate types
const (
	AggregateTypeAccount      = "account"
	AggregateTypeRefund       = "refund"
	AggregateTypeContribution = "contribution"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	TenantID      string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// BalanceChangedEvent payload
type BalanceChangedEvent struct {
	AccountID     string `json:"account_id"`
	OwnerID       string `json:"owner_id"`
	Kind          string `json:"kind"`
	EntryID       string `json:"entry_id"`
	Amount        string `json:"amount"`
	BalanceBefore string `json:"balance_before"`
	BalanceAfter  string `json:"balance_after"`
	Reference     string `json:"reference"`
	ReferenceType string `json:"reference_type"`
}

// RefundProcessedEvent payload
type RefundProcessedEvent struct {
	RefundID       string `json:"refund_id"`
	MemberID       string `json:"member_id"`
	Source         string `json:"source"`
	Amount         string `json:"amount"`
	Reference      string `json:"reference"`
	JournalEntryID string `json:"journal_entry_id,omitempty"`
	ProcessedBy    string `json:"processed_by"`
}

// ContributionReviewedEvent payload
type ContributionReviewedEvent struct {
	ContributionID string `json:"contribution_id"`
	MemberID       string `json:"member_id"`
	Status         string `json:"status"`
	Amount         string `json:"amount"`
	ReviewedBy     string `json:"reviewed_by"`
}
