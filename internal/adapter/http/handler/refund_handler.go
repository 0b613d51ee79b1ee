package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/coopledger/internal/adapter/http/dto"
	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/usecase"
)

// RefundService processes and reads refunds.
type RefundService interface {
	ProcessRefund(ctx context.Context, input usecase.RefundInput) (*usecase.RefundResult, error)
	GetRefund(ctx context.Context, tenantID, id string) (*domain.Refund, error)
	ListRefunds(ctx context.Context, input usecase.ListRefundsInput) ([]*domain.Refund, error)
}

// AvailabilityService reports what a member can be refunded.
type AvailabilityService interface {
	Summary(ctx context.Context, tenantID, memberID string) (*usecase.AvailabilitySummary, error)
	Available(ctx context.Context, tenantID, memberID string, source domain.RefundSource) (decimal.Decimal, error)
}

// RefundHandler handles refund and availability HTTP requests.
type RefundHandler struct {
	refundUC       RefundService
	availabilityUC AvailabilityService
}

// NewRefundHandler creates a new RefundHandler.
func NewRefundHandler(refundUC RefundService, availabilityUC AvailabilityService) *RefundHandler {
	return &RefundHandler{refundUC: refundUC, availabilityUC: availabilityUC}
}

// Create refunds a member from one source.
func (h *RefundHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.RefundRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid request body", err.Error())
		return
	}

	tenantID, actorID := scope(r)
	result, err := h.refundUC.ProcessRefund(r.Context(), req.ToUseCaseInput(tenantID, actorID, chi.URLParam(r, "memberID")))
	if err != nil {
		writeDomainError(w, "failed to process refund", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ProcessRefundResponse{
		Refund:       dto.RefundFromDomain(result.Refund),
		Availability: dto.AvailabilityFromSummary(result.Summary),
	})
}

// Get retrieves a refund by ID.
func (h *RefundHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := scope(r)

	refund, err := h.refundUC.GetRefund(r.Context(), tenantID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to get refund", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RefundFromDomain(refund))
}

// ListByMember lists a member's refunds, optionally filtered by ?source=.
func (h *RefundHandler) ListByMember(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := scope(r)

	refunds, err := h.refundUC.ListRefunds(r.Context(), usecase.ListRefundsInput{
		TenantID: tenantID,
		MemberID: chi.URLParam(r, "memberID"),
		Source:   domain.RefundSource(r.URL.Query().Get("source")),
		Limit:    parseIntQuery(r, "limit", 0),
		Offset:   parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, "failed to list refunds", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"refunds": dto.RefundsFromDomain(refunds)})
}

// Summary reports the member's availability for every source.
func (h *RefundHandler) Summary(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := scope(r)

	summary, err := h.availabilityUC.Summary(r.Context(), tenantID, chi.URLParam(r, "memberID"))
	if err != nil {
		writeDomainError(w, "failed to compute availability", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AvailabilityFromSummary(summary))
}

// Available reports the member's availability for a single source.
func (h *RefundHandler) Available(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := scope(r)
	memberID := chi.URLParam(r, "memberID")
	source := domain.RefundSource(chi.URLParam(r, "source"))

	amount, err := h.availabilityUC.Available(r.Context(), tenantID, memberID, source)
	if err != nil {
		writeDomainError(w, "failed to compute availability", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SourceAvailabilityResponse{
		MemberID:  memberID,
		Source:    string(source),
		Available: amount,
	})
}
