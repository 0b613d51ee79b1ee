package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/infrastructure/metrics"
)

// reconcilePageSize is how many accounts a report reads per page.
const reconcilePageSize = 100

// ReconciliationUseCase replays account journals against recorded balances.
// It never writes.
type ReconciliationUseCase struct {
	accountRepo AccountRepository
	journalRepo JournalRepository
	retrier     Retrier
	logger      zerolog.Logger
	metrics     *metrics.Metrics
}

// NewReconciliationUseCase creates a new reconciliation use case. retrier may be nil.
func NewReconciliationUseCase(
	accountRepo AccountRepository,
	journalRepo JournalRepository,
	retrier Retrier,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		accountRepo: accountRepo,
		journalRepo: journalRepo,
		retrier:     retrier,
		logger:      logger.With().Str("component", "reconciliation").Logger(),
		metrics:     m,
	}
}

// BrokenLink is an entry that does not follow from its predecessor.
type BrokenLink struct {
	EntryID string
	Reason  string
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	AccountID         string
	OwnerID           string
	Kind              domain.AccountKind
	RecordedBalance   decimal.Decimal
	CalculatedBalance decimal.Decimal
	Difference        decimal.Decimal
	BrokenLinks       []BrokenLink
	EntryCount        int
	IsReconciled      bool
	LastChecked       time.Time
}

// ReconcileAccount replays the account's journal oldest first and compares
// the result with the recorded balance.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, tenantID, accountID string) (*ReconciliationResult, error) {
	if tenantID == "" {
		return nil, domain.ErrMissingTenant
	}

	var result *ReconciliationResult
	err := uc.retry(ctx, func() error {
		account, err := uc.accountRepo.GetByID(ctx, accountID)
		if err != nil {
			return err
		}

		if account.TenantID != tenantID {
			return domain.ErrAccountNotFound
		}

		result, err = uc.reconcile(ctx, account)
		return err
	})
	if err != nil {
		return nil, surface(uc.logger, "reconciliation.account", err)
	}

	return result, nil
}

func (uc *ReconciliationUseCase) reconcile(ctx context.Context, account *domain.Account) (*ReconciliationResult, error) {
	entries, err := uc.journalRepo.History(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	result := Replay(account, entries)
	result.LastChecked = time.Now().UTC()

	if uc.metrics != nil {
		uc.metrics.ReconciledAccounts.Inc()
		if !result.IsReconciled {
			uc.metrics.JournalMismatches.Inc()
		}
	}

	return result, nil
}

// Replay walks entries oldest first. Each entry must start from the balance
// the previous one left, and its own snapshots must agree with its amount.
func Replay(account *domain.Account, entries []*domain.JournalEntry) *ReconciliationResult {
	result := &ReconciliationResult{
		AccountID:       account.ID,
		OwnerID:         account.OwnerID,
		Kind:            account.Kind,
		RecordedBalance: account.Balance,
		EntryCount:      len(entries),
	}

	running := decimal.Zero
	for _, entry := range entries {
		if !entry.BalanceBefore.Equal(running) {
			result.BrokenLinks = append(result.BrokenLinks, BrokenLink{
				EntryID: entry.ID,
				Reason:  "balance_before " + entry.BalanceBefore.String() + " does not match previous balance " + running.String(),
			})
		}

		if err := entry.Verify(); err != nil {
			result.BrokenLinks = append(result.BrokenLinks, BrokenLink{EntryID: entry.ID, Reason: err.Error()})
		}

		running = running.Add(entry.SignedAmount())
	}

	result.CalculatedBalance = running
	result.Difference = account.Balance.Sub(running)
	result.IsReconciled = result.Difference.IsZero() && len(result.BrokenLinks) == 0

	return result
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	TenantID           string
	TotalAccounts      int
	ReconciledAccounts int
	Discrepancies      []*ReconciliationResult
	CheckedAt          time.Time
}

// GenerateReport reconciles every account of the tenant.
func (uc *ReconciliationUseCase) GenerateReport(ctx context.Context, tenantID string) (*ReconciliationReport, error) {
	if tenantID == "" {
		return nil, domain.ErrMissingTenant
	}

	report := &ReconciliationReport{
		TenantID:      tenantID,
		Discrepancies: make([]*ReconciliationResult, 0),
	}

	for offset := 0; ; offset += reconcilePageSize {
		var accounts []*domain.Account
		err := uc.retry(ctx, func() error {
			var err error
			accounts, err = uc.accountRepo.ListByTenant(ctx, tenantID, reconcilePageSize, offset)
			return err
		})
		if err != nil {
			return nil, surface(uc.logger, "reconciliation.report", err)
		}

		for _, account := range accounts {
			var result *ReconciliationResult
			err := uc.retry(ctx, func() error {
				var err error
				result, err = uc.reconcile(ctx, account)
				return err
			})
			if err != nil {
				return nil, surface(uc.logger, "reconciliation.report", err)
			}

			report.TotalAccounts++
			if result.IsReconciled {
				report.ReconciledAccounts++
			} else {
				report.Discrepancies = append(report.Discrepancies, result)
			}
		}

		if len(accounts) < reconcilePageSize {
			break
		}
	}

	report.CheckedAt = time.Now().UTC()

	if len(report.Discrepancies) > 0 {
		uc.logger.Warn().
			Str("tenant_id", tenantID).
			Int("discrepancies", len(report.Discrepancies)).
			Msg("journal discrepancies found")
	}

	return report, nil
}

func (uc *ReconciliationUseCase) retry(ctx context.Context, op func() error) error {
	if uc.retrier == nil {
		return op()
	}
	return uc.retrier.Retry(ctx, op)
}
