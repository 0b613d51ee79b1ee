package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"owner_id"`
	Kind      string          `json:"kind"`
	Currency  string          `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
	Version   int64           `json:"version"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:        a.ID,
		OwnerID:   a.OwnerID,
		Kind:      string(a.Kind),
		Currency:  a.Currency,
		Balance:   a.Balance,
		Version:   a.Version,
		IsActive:  a.IsActive,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse represents a list of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
}

// JournalEntryResponse represents a journal entry in API responses.
type JournalEntryResponse struct {
	ID             string          `json:"id"`
	AccountID      string          `json:"account_id"`
	Type           string          `json:"type"`
	Amount         decimal.Decimal `json:"amount"`
	BalanceBefore  decimal.Decimal `json:"balance_before"`
	BalanceAfter   decimal.Decimal `json:"balance_after"`
	AccountVersion int64           `json:"account_version"`
	Reference      string          `json:"reference,omitempty"`
	ReferenceType  string          `json:"reference_type,omitempty"`
	Description    string          `json:"description,omitempty"`
	Metadata       map[string]any  `json:"metadata,omitempty"`
	CreatedBy      string          `json:"created_by"`
	CreatedAt      time.Time       `json:"created_at"`
}

// JournalEntryFromDomain converts a domain entry to response.
func JournalEntryFromDomain(e *domain.JournalEntry) *JournalEntryResponse {
	return &JournalEntryResponse{
		ID:             e.ID,
		AccountID:      e.AccountID,
		Type:           string(e.Type),
		Amount:         e.Amount,
		BalanceBefore:  e.BalanceBefore,
		BalanceAfter:   e.BalanceAfter,
		AccountVersion: e.AccountVersion,
		Reference:      e.Reference,
		ReferenceType:  e.ReferenceType,
		Description:    e.Description,
		Metadata:       e.Metadata,
		CreatedBy:      e.CreatedBy,
		CreatedAt:      e.CreatedAt,
	}
}

// JournalEntriesFromDomain converts domain entries to responses.
func JournalEntriesFromDomain(entries []*domain.JournalEntry) []*JournalEntryResponse {
	result := make([]*JournalEntryResponse, len(entries))
	for i, e := range entries {
		result[i] = JournalEntryFromDomain(e)
	}
	return result
}

// ListEntriesResponse represents a page of journal entries.
type ListEntriesResponse struct {
	Entries []*JournalEntryResponse `json:"entries"`
	Limit   int                     `json:"limit"`
	Offset  int                     `json:"offset"`
}

// RefundResponse represents a refund in API responses.
type RefundResponse struct {
	ID             string          `json:"id"`
	MemberID       string          `json:"member_id"`
	Source         string          `json:"source"`
	Amount         decimal.Decimal `json:"amount"`
	Reason         string          `json:"reason"`
	Notes          string          `json:"notes,omitempty"`
	Reference      string          `json:"reference"`
	Status         string          `json:"status"`
	ProcessedBy    string          `json:"processed_by"`
	JournalEntryID *string         `json:"journal_entry_id,omitempty"`
	Metadata       map[string]any  `json:"metadata,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// RefundFromDomain converts domain refund to response.
func RefundFromDomain(r *domain.Refund) *RefundResponse {
	return &RefundResponse{
		ID:             r.ID,
		MemberID:       r.MemberID,
		Source:         string(r.Source),
		Amount:         r.Amount,
		Reason:         r.Reason,
		Notes:          r.Notes,
		Reference:      r.Reference,
		Status:         r.Status,
		ProcessedBy:    r.ProcessedBy,
		JournalEntryID: r.JournalEntryID,
		Metadata:       r.Metadata,
		CreatedAt:      r.CreatedAt,
	}
}

// RefundsFromDomain converts domain refunds to responses.
func RefundsFromDomain(refunds []*domain.Refund) []*RefundResponse {
	result := make([]*RefundResponse, len(refunds))
	for i, r := range refunds {
		result[i] = RefundFromDomain(r)
	}
	return result
}

// ProcessRefundResponse is the refund together with the member's availability
// after it was applied.
type ProcessRefundResponse struct {
	Refund       *RefundResponse       `json:"refund"`
	Availability *AvailabilityResponse `json:"availability,omitempty"`
}

// AvailabilityResponse lists what a member can still be refunded per source.
type AvailabilityResponse struct {
	MemberID       string                     `json:"member_id"`
	Available      map[string]decimal.Decimal `json:"available"`
	Refunded       map[string]decimal.Decimal `json:"refunded"`
	TotalAvailable decimal.Decimal            `json:"total_available"`
}

// AvailabilityFromSummary converts an availability summary to response.
func AvailabilityFromSummary(s *usecase.AvailabilitySummary) *AvailabilityResponse {
	if s == nil {
		return nil
	}

	resp := &AvailabilityResponse{
		MemberID:       s.MemberID,
		Available:      make(map[string]decimal.Decimal, len(s.Available)),
		Refunded:       make(map[string]decimal.Decimal, len(s.Refunded)),
		TotalAvailable: s.TotalAvailable(),
	}
	for source, amount := range s.Available {
		resp.Available[string(source)] = amount
	}
	for source, amount := range s.Refunded {
		resp.Refunded[string(source)] = amount
	}
	return resp
}

// SourceAvailabilityResponse is the availability of a single source.
type SourceAvailabilityResponse struct {
	MemberID  string          `json:"member_id"`
	Source    string          `json:"source"`
	Available decimal.Decimal `json:"available"`
}

// ContributionResponse represents a contribution in API responses.
type ContributionResponse struct {
	ID            string          `json:"id"`
	MemberID      string          `json:"member_id"`
	Amount        decimal.Decimal `json:"amount"`
	Type          string          `json:"type"`
	PaymentMethod string          `json:"payment_method"`
	PaymentDate   string          `json:"payment_date"`
	Status        string          `json:"status"`
	ReviewedBy    string          `json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time      `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ContributionFromDomain converts domain contribution to response.
func ContributionFromDomain(c *domain.Contribution) *ContributionResponse {
	return &ContributionResponse{
		ID:            c.ID,
		MemberID:      c.MemberID,
		Amount:        c.Amount,
		Type:          c.Type,
		PaymentMethod: c.PaymentMethod,
		PaymentDate:   c.PaymentDate.Format(time.DateOnly),
		Status:        string(c.Status),
		ReviewedBy:    c.ReviewedBy,
		ReviewedAt:    c.ReviewedAt,
		CreatedAt:     c.CreatedAt,
	}
}

// ImportRowErrorResponse describes a rejected CSV line.
type ImportRowErrorResponse struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// ImportResultResponse summarises a bulk import.
type ImportResultResponse struct {
	BatchID    string                   `json:"batch_id"`
	Kind       string                   `json:"kind"`
	Total      int                      `json:"total"`
	Successful int                      `json:"successful"`
	Failed     int                      `json:"failed"`
	Errors     []ImportRowErrorResponse `json:"errors"`
}

// ImportResultFromDomain converts an import result to response.
func ImportResultFromDomain(r *domain.ImportResult) *ImportResultResponse {
	resp := &ImportResultResponse{
		BatchID:    r.BatchID,
		Kind:       string(r.Kind),
		Total:      r.Total,
		Successful: r.Successful,
		Failed:     r.Failed,
		Errors:     make([]ImportRowErrorResponse, len(r.Errors)),
	}
	for i, e := range r.Errors {
		resp.Errors[i] = ImportRowErrorResponse{Line: e.Line, Message: e.Message}
	}
	return resp
}

// BrokenLinkResponse is a journal entry that does not chain to its predecessor.
type BrokenLinkResponse struct {
	EntryID string `json:"entry_id"`
	Reason  string `json:"reason"`
}

// ReconciliationResponse is the outcome of replaying one account's journal.
type ReconciliationResponse struct {
	AccountID         string               `json:"account_id"`
	OwnerID           string               `json:"owner_id"`
	Kind              string               `json:"kind"`
	RecordedBalance   decimal.Decimal      `json:"recorded_balance"`
	CalculatedBalance decimal.Decimal      `json:"calculated_balance"`
	Difference        decimal.Decimal      `json:"difference"`
	EntryCount        int                  `json:"entry_count"`
	IsReconciled      bool                 `json:"is_reconciled"`
	BrokenLinks       []BrokenLinkResponse `json:"broken_links,omitempty"`
	LastChecked       time.Time            `json:"last_checked"`
}

// ReconciliationFromResult converts a reconciliation result to response.
func ReconciliationFromResult(r *usecase.ReconciliationResult) *ReconciliationResponse {
	resp := &ReconciliationResponse{
		AccountID:         r.AccountID,
		OwnerID:           r.OwnerID,
		Kind:              string(r.Kind),
		RecordedBalance:   r.RecordedBalance,
		CalculatedBalance: r.CalculatedBalance,
		Difference:        r.Difference,
		EntryCount:        r.EntryCount,
		IsReconciled:      r.IsReconciled,
		LastChecked:       r.LastChecked,
	}
	for _, link := range r.BrokenLinks {
		resp.BrokenLinks = append(resp.BrokenLinks, BrokenLinkResponse{EntryID: link.EntryID, Reason: link.Reason})
	}
	return resp
}

// ReconciliationReportResponse summarises a tenant-wide reconciliation.
type ReconciliationReportResponse struct {
	TenantID           string                    `json:"tenant_id"`
	TotalAccounts      int                       `json:"total_accounts"`
	ReconciledAccounts int                       `json:"reconciled_accounts"`
	Discrepancies      []*ReconciliationResponse `json:"discrepancies"`
	CheckedAt          time.Time                 `json:"checked_at"`
}

// ReportFromDomain converts a reconciliation report to response.
func ReportFromDomain(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	resp := &ReconciliationReportResponse{
		TenantID:           r.TenantID,
		TotalAccounts:      r.TotalAccounts,
		ReconciledAccounts: r.ReconciledAccounts,
		Discrepancies:      make([]*ReconciliationResponse, len(r.Discrepancies)),
		CheckedAt:          r.CheckedAt,
	}
	for i, d := range r.Discrepancies {
		resp.Discrepancies[i] = ReconciliationFromResult(d)
	}
	return resp
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}
