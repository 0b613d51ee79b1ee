package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/coopledger/internal/adapter/http/dto"
	"github.com/iho/coopledger/internal/usecase"
)

// ReconciliationService replays journals against recorded balances.
type ReconciliationService interface {
	ReconcileAccount(ctx context.Context, tenantID, accountID string) (*usecase.ReconciliationResult, error)
	GenerateReport(ctx context.Context, tenantID string) (*usecase.ReconciliationReport, error)
}

// ReconciliationHandler handles reconciliation HTTP requests.
type ReconciliationHandler struct {
	reconciliationUC ReconciliationService
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(reconciliationUC ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{reconciliationUC: reconciliationUC}
}

// Account reconciles one account.
func (h *ReconciliationHandler) Account(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := scope(r)

	result, err := h.reconciliationUC.ReconcileAccount(r.Context(), tenantID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to reconcile account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromResult(result))
}

// Report reconciles every account of the tenant.
func (h *ReconciliationHandler) Report(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := scope(r)

	report, err := h.reconciliationUC.GenerateReport(r.Context(), tenantID)
	if err != nil {
		writeDomainError(w, "failed to generate reconciliation report", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReportFromDomain(report))
}
