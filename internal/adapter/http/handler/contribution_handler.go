package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/coopledger/internal/adapter/http/dto"
	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/usecase"
)

// ContributionService reviews imported contributions.
type ContributionService interface {
	Review(ctx context.Context, input usecase.ReviewInput) (*domain.Contribution, error)
}

// ContributionHandler handles contribution HTTP requests.
type ContributionHandler struct {
	contributionUC ContributionService
}

// NewContributionHandler creates a new ContributionHandler.
func NewContributionHandler(contributionUC ContributionService) *ContributionHandler {
	return &ContributionHandler{contributionUC: contributionUC}
}

// Review approves or rejects a pending contribution.
func (h *ContributionHandler) Review(w http.ResponseWriter, r *http.Request) {
	var req dto.ReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid request body", err.Error())
		return
	}

	tenantID, actorID := scope(r)
	contribution, err := h.contributionUC.Review(r.Context(), req.ToUseCaseInput(tenantID, actorID, chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, "failed to review contribution", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ContributionFromDomain(contribution))
}
