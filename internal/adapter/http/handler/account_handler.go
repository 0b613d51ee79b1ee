package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/coopledger/internal/adapter/http/dto"
	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/usecase"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	OpenAccount(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error)
	GetAccount(ctx context.Context, tenantID, id string) (*domain.Account, error)
	ListAccounts(ctx context.Context, tenantID, ownerID string) ([]*domain.Account, error)
	Deactivate(ctx context.Context, tenantID, actorID, id string) (*domain.Account, error)
}

// BalanceService credits and debits member accounts.
type BalanceService interface {
	Credit(ctx context.Context, input usecase.AdjustBalanceInput) (*domain.JournalEntry, error)
	Debit(ctx context.Context, input usecase.AdjustBalanceInput) (*domain.JournalEntry, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accountUC AccountService
	balanceUC BalanceService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService, balanceUC BalanceService) *AccountHandler {
	return &AccountHandler{accountUC: accountUC, balanceUC: balanceUC}
}

// Open opens a member account.
func (h *AccountHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req dto.OpenAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid request body", err.Error())
		return
	}

	tenantID, actorID := scope(r)
	account, err := h.accountUC.OpenAccount(r.Context(), req.ToUseCaseInput(tenantID, actorID))
	if err != nil {
		writeDomainError(w, "failed to open account", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get retrieves an account by ID.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := scope(r)

	account, err := h.accountUC.GetAccount(r.Context(), tenantID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to get account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// Deactivate closes an account to further mutations.
func (h *AccountHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	tenantID, actorID := scope(r)

	account, err := h.accountUC.Deactivate(r.Context(), tenantID, actorID, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "failed to deactivate account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// ListByMember lists a member's accounts.
func (h *AccountHandler) ListByMember(w http.ResponseWriter, r *http.Request) {
	tenantID, _ := scope(r)

	accounts, err := h.accountUC.ListAccounts(r.Context(), tenantID, chi.URLParam(r, "memberID"))
	if err != nil {
		writeDomainError(w, "failed to list accounts", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAccountsResponse{Accounts: dto.AccountsFromDomain(accounts)})
}

// Credit adds funds to a member account, opening it if needed.
func (h *AccountHandler) Credit(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, h.balanceUC.Credit, "failed to credit account")
}

// Debit removes funds from a member account.
func (h *AccountHandler) Debit(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, h.balanceUC.Debit, "failed to debit account")
}

func (h *AccountHandler) adjust(
	w http.ResponseWriter,
	r *http.Request,
	op func(context.Context, usecase.AdjustBalanceInput) (*domain.JournalEntry, error),
	message string,
) {
	var req dto.AdjustBalanceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid request body", err.Error())
		return
	}

	tenantID, actorID := scope(r)
	kind := domain.AccountKind(chi.URLParam(r, "kind"))

	entry, err := op(r.Context(), req.ToUseCaseInput(tenantID, actorID, chi.URLParam(r, "memberID"), kind))
	if err != nil {
		writeDomainError(w, message, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.JournalEntryFromDomain(entry))
}
