package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/infrastructure/metrics"
)

// BalanceMutator is the only component allowed to change an account balance.
// Every change is journaled with before and after snapshots.
type BalanceMutator struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	journalRepo JournalRepository
	rec         recorder
	idGen       IDGenerator
	logger      zerolog.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
}

// NewBalanceMutator creates a new BalanceMutator.
func NewBalanceMutator(
	txManager TransactionManager,
	accountRepo AccountRepository,
	journalRepo JournalRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *BalanceMutator {
	return &BalanceMutator{
		txManager:   txManager,
		accountRepo: accountRepo,
		journalRepo: journalRepo,
		rec:         recorder{outboxRepo: outboxRepo, auditRepo: auditRepo, idGen: idGen},
		idGen:       idGen,
		logger:      logger.With().Str("component", "balance_mutator").Logger(),
		metrics:     m,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// MutationInput describes one signed change to a member's account.
// A positive SignedAmount credits, a negative one debits.
type MutationInput struct {
	Metadata      map[string]any
	TenantID      string             `validate:"required"`
	ActorID       string             `validate:"required"`
	OwnerID       string             `validate:"required"`
	Kind          domain.AccountKind `validate:"account_kind"`
	Reference     string             `validate:"max=100"`
	ReferenceType string             `validate:"max=50"`
	Description   string             `validate:"max=255"`
	SignedAmount  decimal.Decimal
}

func (in MutationInput) validate() error {
	if err := domain.ValidateStruct(in); err != nil {
		return err
	}

	if in.SignedAmount.IsZero() {
		return domain.ErrInvalidAmount
	}

	if err := domain.ValidateAmount(in.SignedAmount.Abs()); err != nil {
		return err
	}

	return domain.ValidateMetadata(in.Metadata)
}

// Apply locks the (tenant, owner, kind) account inside tx, creating it with a
// zero balance when it does not exist yet, and applies the change.
func (m *BalanceMutator) Apply(ctx context.Context, tx Transaction, input MutationInput) (*domain.JournalEntry, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	account, err := m.lockOrCreate(ctx, tx, input.TenantID, input.OwnerID, input.Kind)
	if err != nil {
		return nil, err
	}

	return m.ApplyLocked(ctx, tx, account, input)
}

func (m *BalanceMutator) lockOrCreate(ctx context.Context, tx Transaction, tenantID, ownerID string, kind domain.AccountKind) (*domain.Account, error) {
	account, err := m.accountRepo.GetByOwnerForUpdate(ctx, tx, tenantID, ownerID, kind)
	if err == nil {
		return account, nil
	}

	if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}

	fresh := domain.NewAccount(m.idGen.Generate(), tenantID, ownerID, kind, domain.DefaultCurrency, m.now())

	created, err := m.accountRepo.CreateIfAbsent(ctx, tx, fresh)
	if err != nil {
		return nil, err
	}

	if created && m.metrics != nil {
		m.metrics.AccountsOpened.Inc()
	}

	// Whoever won the insert race, the row exists now.
	return m.accountRepo.GetByOwnerForUpdate(ctx, tx, tenantID, ownerID, kind)
}

// ApplyLocked applies the change to an account the caller has already locked
// inside tx. The account is updated in place on success.
func (m *BalanceMutator) ApplyLocked(ctx context.Context, tx Transaction, account *domain.Account, input MutationInput) (*domain.JournalEntry, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	amount := input.SignedAmount.Abs()
	entryType := domain.EntryTypeCredit
	eventType := domain.EventTypeAccountCredited
	action := domain.AuditActionAccountCredit

	var newBalance decimal.Decimal
	if input.SignedAmount.IsNegative() {
		if err := account.ValidateDebit(amount); err != nil {
			return nil, err
		}
		entryType = domain.EntryTypeDebit
		eventType = domain.EventTypeAccountDebited
		action = domain.AuditActionAccountDebit
		newBalance = account.ApplyDebit(amount)
	} else {
		if err := account.ValidateCredit(); err != nil {
			return nil, err
		}
		newBalance = account.ApplyCredit(amount)
	}

	now := m.now()
	before := accountSnapshot(account)

	entry := &domain.JournalEntry{
		ID:             m.idGen.Generate(),
		TenantID:       account.TenantID,
		AccountID:      account.ID,
		Type:           entryType,
		Amount:         amount,
		BalanceBefore:  account.Balance,
		BalanceAfter:   newBalance,
		AccountVersion: account.Version + 1,
		Reference:      input.Reference,
		ReferenceType:  input.ReferenceType,
		Description:    input.Description,
		Metadata:       input.Metadata,
		CreatedBy:      input.ActorID,
		CreatedAt:      now,
	}

	if err := m.journalRepo.Create(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := m.accountRepo.UpdateBalance(ctx, tx, account.ID, newBalance, now); err != nil {
		return nil, err
	}

	account.Balance = newBalance
	account.Version++
	account.UpdatedAt = now

	payload := domain.BalanceChangedEvent{
		AccountID:     account.ID,
		OwnerID:       account.OwnerID,
		Kind:          string(account.Kind),
		EntryID:       entry.ID,
		Amount:        amount.String(),
		BalanceBefore: entry.BalanceBefore.String(),
		BalanceAfter:  entry.BalanceAfter.String(),
		Reference:     entry.Reference,
		ReferenceType: entry.ReferenceType,
	}
	if err := m.rec.event(ctx, tx, account.TenantID, domain.AggregateTypeAccount, account.ID, eventType, payload, now); err != nil {
		return nil, err
	}

	err := m.rec.audit(ctx, tx, auditRecord{
		tenantID:     account.TenantID,
		actorID:      input.ActorID,
		action:       action,
		resourceType: domain.ResourceTypeAccount,
		resourceID:   account.ID,
		before:       before,
		after:        accountSnapshot(account),
	}, now)
	if err != nil {
		return nil, err
	}

	if m.metrics != nil {
		m.metrics.BalanceMutations.WithLabelValues(string(account.Kind), string(entryType)).Inc()
	}

	return entry, nil
}

// AdjustBalanceInput is a standalone top-up or withdrawal. Amount is always
// positive; the method picks the direction.
type AdjustBalanceInput struct {
	Metadata    map[string]any
	TenantID    string
	ActorID     string
	OwnerID     string
	Kind        domain.AccountKind
	Reference   string
	Description string
	Amount      decimal.Decimal
}

// Credit tops up a member's account in its own transaction.
func (m *BalanceMutator) Credit(ctx context.Context, input AdjustBalanceInput) (*domain.JournalEntry, error) {
	if !input.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	return m.run(ctx, input, input.Amount, domain.ReferenceTypeTopUp, "TU-")
}

// Debit withdraws from a member's account in its own transaction.
func (m *BalanceMutator) Debit(ctx context.Context, input AdjustBalanceInput) (*domain.JournalEntry, error) {
	if !input.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	return m.run(ctx, input, input.Amount.Neg(), domain.ReferenceTypeWithdrawal, "WD-")
}

func (m *BalanceMutator) run(ctx context.Context, input AdjustBalanceInput, signed decimal.Decimal, referenceType, prefix string) (*domain.JournalEntry, error) {
	start := time.Now()

	reference := input.Reference
	if reference == "" {
		reference = prefix + ulid.Make().String()
	}

	entry, err := m.transact(ctx, MutationInput{
		TenantID:      input.TenantID,
		ActorID:       input.ActorID,
		OwnerID:       input.OwnerID,
		Kind:          input.Kind,
		SignedAmount:  signed,
		Reference:     reference,
		ReferenceType: referenceType,
		Description:   input.Description,
		Metadata:      input.Metadata,
	})
	if err != nil {
		if m.metrics != nil {
			m.metrics.MutationErrors.WithLabelValues(errorReason(err)).Inc()
		}
		return nil, err
	}

	if m.metrics != nil {
		m.metrics.MutationDuration.Observe(time.Since(start).Seconds())
	}

	m.logger.Debug().
		Str("tenant_id", input.TenantID).
		Str("account_id", entry.AccountID).
		Str("type", string(entry.Type)).
		Str("amount", entry.Amount.String()).
		Msg("balance mutated")

	return entry, nil
}

func (m *BalanceMutator) transact(ctx context.Context, input MutationInput) (*domain.JournalEntry, error) {
	if err := domain.ValidateScope(input.TenantID, input.ActorID); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := m.txManager.Begin(ctx)
	if err != nil {
		return nil, surface(m.logger, "balance.begin", err)
	}
	defer tx.Rollback(ctx)

	entry, err := m.Apply(ctx, tx, input)
	if err != nil {
		return nil, surface(m.logger, "balance.apply", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, surface(m.logger, "balance.commit", err)
	}

	return entry, nil
}

type accountState struct {
	ID       string `json:"id"`
	OwnerID  string `json:"owner_id"`
	Kind     string `json:"kind"`
	Balance  string `json:"balance"`
	Version  int64  `json:"version"`
	IsActive bool   `json:"is_active"`
}

func accountSnapshot(a *domain.Account) accountState {
	return accountState{
		ID:       a.ID,
		OwnerID:  a.OwnerID,
		Kind:     string(a.Kind),
		Balance:  a.Balance.String(),
		Version:  a.Version,
		IsActive: a.IsActive,
	}
}
