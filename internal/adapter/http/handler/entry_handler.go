package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/coopledger/internal/adapter/http/dto"
	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/usecase"
)

// JournalService reads journal entries.
type JournalService interface {
	ListEntries(ctx context.Context, input usecase.ListEntriesInput) ([]*domain.JournalEntry, error)
	GetEntry(ctx context.Context, tenantID, id string) (*domain.JournalEntry, error)
}

// EntryHandler handles journal entry HTTP requests.
type EntryHandler struct {
	journalUC JournalService
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(journalUC JournalService) *EntryHandler {
	return &EntryHandler{journalUC: journalUC}
}

// ListByAccount lists an account's entries, newest first.
func (h *EntryHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := scope(r)
	limit, offset := domain.ClampPagination(parseIntQuery(r, "limit", 0), parseIntQuery(r, "offset", 0))

	entries, err := h.journalUC.ListEntries(r.Context(), usecase.ListEntriesInput{
		TenantID:  tenantID,
		AccountID: chi.URLParam(r, "id"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		writeDomainError(w, "failed to list entries", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListEntriesResponse{
		Entries: dto.JournalEntriesFromDomain(entries),
		Limit:   limit,
		Offset:  offset,
	})
}

// Get retrieves a single entry.
func (h *EntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := scope(r)

	entry, err := h.journalUC.GetEntry(r.Context(), tenantID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to get entry", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.JournalEntryFromDomain(entry))
}
