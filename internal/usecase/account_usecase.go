package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/infrastructure/metrics"
)

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	rec         recorder
	idGen       IDGenerator
	logger      zerolog.Logger
	metrics     *metrics.Metrics
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		rec:         recorder{auditRepo: auditRepo, idGen: idGen},
		idGen:       idGen,
		logger:      logger.With().Str("component", "account").Logger(),
		metrics:     m,
	}
}

// OpenAccountInput represents input for opening an account.
type OpenAccountInput struct {
	TenantID string             `validate:"required"`
	ActorID  string             `validate:"required"`
	OwnerID  string             `validate:"required,max=64"`
	Kind     domain.AccountKind `validate:"account_kind"`
	Currency string             `validate:"omitempty,len=3"`
}

// OpenAccount explicitly opens a member account. Opening a second account
// of the same kind for the same member is a conflict.
func (uc *AccountUseCase) OpenAccount(ctx context.Context, input OpenAccountInput) (*domain.Account, error) {
	if err := domain.ValidateScope(input.TenantID, input.ActorID); err != nil {
		return nil, err
	}

	if err := domain.ValidateStruct(input); err != nil {
		return nil, err
	}

	account := domain.NewAccount(uc.idGen.Generate(), input.TenantID, input.OwnerID, input.Kind,
		strings.ToUpper(input.Currency), time.Now().UTC())

	err := uc.inTx(ctx, "account.open", func(ctx context.Context, tx Transaction) error {
		if err := uc.accountRepo.Create(ctx, tx, account); err != nil {
			return err
		}

		return uc.rec.audit(ctx, tx, auditRecord{
			tenantID:     account.TenantID,
			actorID:      input.ActorID,
			action:       domain.AuditActionAccountOpen,
			resourceType: domain.ResourceTypeAccount,
			resourceID:   account.ID,
			after:        accountSnapshot(account),
		}, account.CreatedAt)
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AccountsOpened.Inc()
	}

	return account, nil
}

// GetAccount retrieves an account by ID within the tenant.
func (uc *AccountUseCase) GetAccount(ctx context.Context, tenantID, id string) (*domain.Account, error) {
	if tenantID == "" {
		return nil, domain.ErrMissingTenant
	}

	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, surface(uc.logger, "account.get", err)
	}

	// Accounts of other tenants do not exist for the caller.
	if account.TenantID != tenantID {
		return nil, domain.ErrAccountNotFound
	}

	return account, nil
}

// GetMemberAccount retrieves a member's account of the given kind.
func (uc *AccountUseCase) GetMemberAccount(ctx context.Context, tenantID, ownerID string, kind domain.AccountKind) (*domain.Account, error) {
	if tenantID == "" {
		return nil, domain.ErrMissingTenant
	}

	if !kind.IsValid() {
		return nil, domain.ErrInvalidAccountKind
	}

	account, err := uc.accountRepo.GetByOwner(ctx, nil, tenantID, ownerID, kind)
	if err != nil {
		return nil, surface(uc.logger, "account.get_member", err)
	}

	return account, nil
}

// ListAccounts lists a member's accounts.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, tenantID, ownerID string) ([]*domain.Account, error) {
	if tenantID == "" {
		return nil, domain.ErrMissingTenant
	}

	accounts, err := uc.accountRepo.ListByOwner(ctx, tenantID, ownerID)
	if err != nil {
		return nil, surface(uc.logger, "account.list", err)
	}

	return accounts, nil
}

// Deactivate closes an account for further mutations. It is never deleted,
// so its journal stays intact. Deactivating twice is a no-op.
func (uc *AccountUseCase) Deactivate(ctx context.Context, tenantID, actorID, id string) (*domain.Account, error) {
	if err := domain.ValidateScope(tenantID, actorID); err != nil {
		return nil, err
	}

	current, err := uc.GetAccount(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	var account *domain.Account
	err = uc.inTx(ctx, "account.deactivate", func(ctx context.Context, tx Transaction) error {
		locked, err := uc.accountRepo.GetByOwnerForUpdate(ctx, tx, tenantID, current.OwnerID, current.Kind)
		if err != nil {
			return err
		}
		account = locked

		if !locked.IsActive {
			return nil
		}

		before := accountSnapshot(locked)
		now := time.Now().UTC()

		if err := uc.accountRepo.SetActive(ctx, tx, locked.ID, false, now); err != nil {
			return err
		}
		locked.IsActive = false
		locked.UpdatedAt = now

		return uc.rec.audit(ctx, tx, auditRecord{
			tenantID:     tenantID,
			actorID:      actorID,
			action:       domain.AuditActionAccountDeactivate,
			resourceType: domain.ResourceTypeAccount,
			resourceID:   locked.ID,
			before:       before,
			after:        accountSnapshot(locked),
		}, now)
	})
	if err != nil {
		return nil, err
	}

	return account, nil
}

func (uc *AccountUseCase) inTx(ctx context.Context, op string, fn func(ctx context.Context, tx Transaction) error) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return surface(uc.logger, op, err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, tx); err != nil {
		return surface(uc.logger, op, err)
	}

	return surface(uc.logger, op, tx.Commit(ctx))
}
