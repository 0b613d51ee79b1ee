package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/coopledger/internal/domain"
)

// Read methods that take a Transaction accept nil to read outside of one.

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, tx Transaction, account *domain.Account) error
	// CreateIfAbsent reports false when the (tenant, owner, kind) account already exists.
	CreateIfAbsent(ctx context.Context, tx Transaction, account *domain.Account) (bool, error)
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByOwner(ctx context.Context, tx Transaction, tenantID, ownerID string, kind domain.AccountKind) (*domain.Account, error)
	GetByOwnerForUpdate(ctx context.Context, tx Transaction, tenantID, ownerID string, kind domain.AccountKind) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	SetActive(ctx context.Context, tx Transaction, id string, active bool, updatedAt time.Time) error
	ListByOwner(ctx context.Context, tenantID, ownerID string) ([]*domain.Account, error)
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*domain.Account, error)
}

// JournalRepository defines data access for journal entries.
type JournalRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.JournalEntry) error
	GetByID(ctx context.Context, id string) (*domain.JournalEntry, error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.JournalEntry, error)
	// History returns every entry of the account, oldest first.
	History(ctx context.Context, accountID string) ([]*domain.JournalEntry, error)
}

// RefundRepository defines data access for refunds.
type RefundRepository interface {
	Create(ctx context.Context, tx Transaction, refund *domain.Refund) error
	GetByID(ctx context.Context, tenantID, id string) (*domain.Refund, error)
	ListByMember(ctx context.Context, tenantID, memberID string, source domain.RefundSource, limit, offset int) ([]*domain.Refund, error)
	SumBySource(ctx context.Context, tx Transaction, tenantID, memberID string, source domain.RefundSource) (decimal.Decimal, error)
}

// ContributionRepository defines data access for contributions.
type ContributionRepository interface {
	Create(ctx context.Context, tx Transaction, contribution *domain.Contribution) error
	GetByIDForUpdate(ctx context.Context, tx Transaction, tenantID, id string) (*domain.Contribution, error)
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.InflowStatus, reviewedBy string, reviewedAt time.Time) error
	SumApproved(ctx context.Context, tx Transaction, tenantID, memberID string) (decimal.Decimal, error)
}

// InvestmentReturnRepository defines data access for investment returns.
type InvestmentReturnRepository interface {
	Create(ctx context.Context, tx Transaction, inflow *domain.InvestmentReturn) error
	SumApproved(ctx context.Context, tx Transaction, tenantID, memberID string) (decimal.Decimal, error)
}

// MemberRepository defines data access for members.
type MemberRepository interface {
	GetByID(ctx context.Context, tenantID, id string) (*domain.Member, error)
	// FindByReference resolves a member by id or member number.
	FindByReference(ctx context.Context, tenantID, ref string) (*domain.Member, error)
	LockForUpdate(ctx context.Context, tx Transaction, tenantID, id string) (*domain.Member, error)
}

// LoanRepository defines data access for loans.
type LoanRepository interface {
	Create(ctx context.Context, tx Transaction, loan *domain.Loan) error
}

// MortgageRepository defines data access for mortgages.
type MortgageRepository interface {
	Create(ctx context.Context, tx Transaction, mortgage *domain.Mortgage) error
}

// PropertyRepository defines data access for properties.
type PropertyRepository interface {
	Create(ctx context.Context, tx Transaction, property *domain.Property) error
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	// Savepoint starts a nested transaction. Rolling it back undoes only the
	// work done since the savepoint.
	Savepoint(ctx context.Context) (Transaction, error)
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	// Get returns ok=false on a miss.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Locker provides a lease-based mutual exclusion lock shared between processes.
type Locker interface {
	// Acquire returns ok=false when someone else holds the lock.
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, key, token string) error
}

// IdempotencyPending is stored under a claimed key until its first request
// completes.
const IdempotencyPending = "processing"

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Delete drops a key whose request did not complete successfully.
	Delete(ctx context.Context, key string) error
}

// Retrier re-runs read-only work on transient database errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}
