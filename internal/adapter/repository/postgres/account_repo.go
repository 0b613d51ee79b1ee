package postgres

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/infrastructure/postgres/generated"
	"github.com/iho/coopledger/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	db generated.DBTX
}

// NewAccountRepository creates a new AccountRepository. db is usually a *pgxpool.Pool.
func NewAccountRepository(db generated.DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts an account. A second account of the same kind for the
// same owner fails with domain.ErrAccountExists.
func (r *AccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	err := queries(r.db, tx).CreateAccount(ctx, generated.CreateAccountParams(accountParams(account)))

	return translate(err, nil, domain.ErrAccountExists)
}

// CreateIfAbsent inserts the account unless one already exists for
// (tenant, owner, kind).
func (r *AccountRepository) CreateIfAbsent(ctx context.Context, tx usecase.Transaction, account *domain.Account) (bool, error) {
	n, err := queries(r.db, tx).CreateAccountIfAbsent(ctx, accountParams(account))
	if err != nil {
		return false, err
	}

	return n == 1, nil
}

func accountParams(account *domain.Account) generated.CreateAccountIfAbsentParams {
	return generated.CreateAccountIfAbsentParams{
		ID:        account.ID,
		TenantID:  account.TenantID,
		OwnerID:   account.OwnerID,
		Kind:      string(account.Kind),
		Currency:  account.Currency,
		Balance:   decimalToNumeric(account.Balance),
		Version:   account.Version,
		IsActive:  account.IsActive,
		CreatedAt: timeToPgTimestamptz(account.CreatedAt),
		UpdatedAt: timeToPgTimestamptz(account.UpdatedAt),
	}
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	row, err := queries(r.db, nil).GetAccountByID(ctx, id)
	if err != nil {
		return nil, translate(err, domain.ErrAccountNotFound, nil)
	}

	return rowToAccount(row), nil
}

// GetByOwner retrieves a member's account of the given kind.
func (r *AccountRepository) GetByOwner(ctx context.Context, tx usecase.Transaction, tenantID, ownerID string, kind domain.AccountKind) (*domain.Account, error) {
	row, err := queries(r.db, tx).GetAccountByOwner(ctx, generated.GetAccountByOwnerParams{
		TenantID: tenantID,
		OwnerID:  ownerID,
		Kind:     string(kind),
	})
	if err != nil {
		return nil, translate(err, domain.ErrAccountNotFound, nil)
	}

	return rowToAccount(row), nil
}

// GetByOwnerForUpdate retrieves a member's account with a FOR UPDATE lock.
func (r *AccountRepository) GetByOwnerForUpdate(ctx context.Context, tx usecase.Transaction, tenantID, ownerID string, kind domain.AccountKind) (*domain.Account, error) {
	row, err := queries(r.db, tx).GetAccountByOwnerForUpdate(ctx, generated.GetAccountByOwnerForUpdateParams{
		TenantID: tenantID,
		OwnerID:  ownerID,
		Kind:     string(kind),
	})
	if err != nil {
		return nil, translate(err, domain.ErrAccountNotFound, nil)
	}

	return rowToAccount(row), nil
}

// UpdateBalance writes the new balance and bumps the account version.
func (r *AccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	return queries(r.db, tx).UpdateAccountBalance(ctx, generated.UpdateAccountBalanceParams{
		ID:        id,
		Balance:   decimalToNumeric(balance),
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
}

// SetActive opens or closes an account for mutations.
func (r *AccountRepository) SetActive(ctx context.Context, tx usecase.Transaction, id string, active bool, updatedAt time.Time) error {
	return queries(r.db, tx).SetAccountActive(ctx, generated.SetAccountActiveParams{
		ID:        id,
		IsActive:  active,
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
}

// ListByOwner lists every account of a member.
func (r *AccountRepository) ListByOwner(ctx context.Context, tenantID, ownerID string) ([]*domain.Account, error) {
	rows, err := queries(r.db, nil).ListAccountsByOwner(ctx, generated.ListAccountsByOwnerParams{
		TenantID: tenantID,
		OwnerID:  ownerID,
	})
	if err != nil {
		return nil, err
	}

	return rowsToAccounts(rows), nil
}

// ListByTenant lists a tenant's accounts in id order.
func (r *AccountRepository) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*domain.Account, error) {
	rows, err := queries(r.db, nil).ListAccountsByTenant(ctx, generated.ListAccountsByTenantParams{
		TenantID: tenantID,
		Limit:    int32(limit),
		Offset:   int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToAccounts(rows), nil
}

func rowsToAccounts(rows []generated.Account) []*domain.Account {
	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, rowToAccount(row))
	}

	return accounts
}

func rowToAccount(row generated.Account) *domain.Account {
	return &domain.Account{
		ID:        row.ID,
		TenantID:  row.TenantID,
		OwnerID:   row.OwnerID,
		Kind:      domain.AccountKind(row.Kind),
		Currency:  row.Currency,
		Balance:   numericToDecimal(row.Balance),
		Version:   row.Version,
		IsActive:  row.IsActive,
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
}
