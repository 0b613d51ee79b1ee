package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/iho/coopledger/internal/domain"
)

// JournalUseCase exposes the read side of the transaction journal.
type JournalUseCase struct {
	accountRepo AccountRepository
	journalRepo JournalRepository
	logger      zerolog.Logger
}

// NewJournalUseCase creates a new JournalUseCase.
func NewJournalUseCase(accountRepo AccountRepository, journalRepo JournalRepository, logger zerolog.Logger) *JournalUseCase {
	return &JournalUseCase{
		accountRepo: accountRepo,
		journalRepo: journalRepo,
		logger:      logger.With().Str("component", "journal").Logger(),
	}
}

// ListEntriesInput represents input for listing entries.
type ListEntriesInput struct {
	TenantID  string
	AccountID string
	Limit     int
	Offset    int
}

// ListEntries lists an account's entries, newest first.
func (uc *JournalUseCase) ListEntries(ctx context.Context, input ListEntriesInput) ([]*domain.JournalEntry, error) {
	if input.TenantID == "" {
		return nil, domain.ErrMissingTenant
	}

	account, err := uc.accountRepo.GetByID(ctx, input.AccountID)
	if err != nil {
		return nil, surface(uc.logger, "journal.list", err)
	}

	if account.TenantID != input.TenantID {
		return nil, domain.ErrAccountNotFound
	}

	limit, offset := domain.ClampPagination(input.Limit, input.Offset)

	entries, err := uc.journalRepo.ListByAccount(ctx, input.AccountID, limit, offset)
	if err != nil {
		return nil, surface(uc.logger, "journal.list", err)
	}

	return entries, nil
}

// GetEntry retrieves a journal entry by ID.
func (uc *JournalUseCase) GetEntry(ctx context.Context, tenantID, id string) (*domain.JournalEntry, error) {
	if tenantID == "" {
		return nil, domain.ErrMissingTenant
	}

	entry, err := uc.journalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, surface(uc.logger, "journal.get", err)
	}

	if entry.TenantID != tenantID {
		return nil, domain.ErrEntryNotFound
	}

	return entry, nil
}
