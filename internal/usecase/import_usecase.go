package usecase

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/infrastructure/metrics"
)

// ImportConfig holds the static limits applied to uploads.
type ImportConfig struct {
	Rules   domain.ImportRules
	MaxRows int
	LockTTL time.Duration
}

// ImportUseCase turns CSV uploads into records, isolating failures per row.
type ImportUseCase struct {
	txManager        TransactionManager
	memberRepo       MemberRepository
	contributionRepo ContributionRepository
	loanRepo         LoanRepository
	mortgageRepo     MortgageRepository
	propertyRepo     PropertyRepository
	auditRepo        AuditRepository
	refunds          *RefundUseCase
	locker           Locker
	cache            Cache
	idGen            IDGenerator
	rules            domain.ImportRules
	maxRows          int
	lockTTL          time.Duration
	logger           zerolog.Logger
	metrics          *metrics.Metrics
	now              func() time.Time
}

// ImportRepositories groups the stores an import writes to.
type ImportRepositories struct {
	Members       MemberRepository
	Contributions ContributionRepository
	Loans         LoanRepository
	Mortgages     MortgageRepository
	Properties    PropertyRepository
	Audit         AuditRepository
}

// NewImportUseCase creates a new ImportUseCase. locker and cache may be nil.
func NewImportUseCase(
	txManager TransactionManager,
	repos ImportRepositories,
	refunds *RefundUseCase,
	locker Locker,
	cache Cache,
	idGen IDGenerator,
	cfg ImportConfig,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *ImportUseCase {
	if cfg.MaxRows <= 0 {
		cfg.MaxRows = DefaultImportMaxRows
	}

	if cfg.LockTTL <= 0 {
		cfg.LockTTL = DefaultImportLockTTL
	}

	return &ImportUseCase{
		txManager:        txManager,
		memberRepo:       repos.Members,
		contributionRepo: repos.Contributions,
		loanRepo:         repos.Loans,
		mortgageRepo:     repos.Mortgages,
		propertyRepo:     repos.Properties,
		auditRepo:        repos.Audit,
		refunds:          refunds,
		locker:           locker,
		cache:            cache,
		idGen:            idGen,
		rules:            cfg.Rules,
		maxRows:          cfg.MaxRows,
		lockTTL:          cfg.LockTTL,
		logger:           logger.With().Str("component", "import").Logger(),
		metrics:          m,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// ImportInput is one CSV upload.
type ImportInput struct {
	Reader   io.Reader
	TenantID string
	ActorID  string
	Kind     domain.ImportKind

	batchID string
}

type csvRow struct {
	fields   []string
	parseErr string
	line     int
}

// Import reads the upload and persists every valid row. Only failures that
// stop the whole upload are returned as errors; row problems are reported in
// the result.
func (uc *ImportUseCase) Import(ctx context.Context, input ImportInput) (*domain.ImportResult, error) {
	if err := domain.ValidateScope(input.TenantID, input.ActorID); err != nil {
		return nil, err
	}

	if !input.Kind.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidImportKind, input.Kind)
	}

	if input.Reader == nil {
		return nil, domain.NewValidationError("file", "is required")
	}

	rows, err := readRows(input.Reader, len(domain.ImportColumns[input.Kind]), uc.maxRows)
	if err != nil {
		return nil, surface(uc.logger, "import.read", err)
	}

	release, err := uc.lock(ctx, input)
	if err != nil {
		return nil, err
	}
	defer release()

	input.batchID = uuid.NewString()
	result := &domain.ImportResult{
		BatchID: input.batchID,
		Kind:    input.Kind,
		Total:   len(rows),
		Errors:  []domain.ImportRowError{},
	}

	start := time.Now()
	plan := uc.planner(input.Kind, input, newMemberResolver(uc.memberRepo, uc.cache, uc.logger, input.TenantID))

	if input.Kind == domain.ImportKindRefund {
		uc.importAtomically(ctx, input, rows, plan, result)
	} else {
		uc.importEach(ctx, rows, plan, result)
	}

	uc.observe(input.Kind, result, time.Since(start))
	uc.recordAudit(ctx, input, result)

	uc.logger.Info().
		Str("tenant_id", input.TenantID).
		Str("actor_id", input.ActorID).
		Str("kind", string(input.Kind)).
		Str("batch_id", result.BatchID).
		Int("total", result.Total).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Msg("import finished")

	return result, nil
}

// lock makes sure only one import per tenant and kind runs at a time.
func (uc *ImportUseCase) lock(ctx context.Context, input ImportInput) (func(), error) {
	if uc.locker == nil {
		return func() {}, nil
	}

	key := fmt.Sprintf("import:%s:%s", input.TenantID, input.Kind)

	token, ok, err := uc.locker.Acquire(ctx, key, uc.lockTTL)
	if err != nil {
		return nil, surface(uc.logger, "import.lock", err)
	}

	if !ok {
		return nil, domain.ErrImportInProgress
	}

	return func() {
		// The request context may already be done; the lease must still go.
		if err := uc.locker.Release(context.WithoutCancel(ctx), key, token); err != nil {
			uc.logger.Warn().Err(err).Str("key", key).Msg("failed to release import lock")
		}
	}, nil
}

// importEach commits every row in its own transaction.
func (uc *ImportUseCase) importEach(ctx context.Context, rows []csvRow, plan rowPlanner, result *domain.ImportResult) {
	for _, row := range rows {
		if row.parseErr != "" {
			result.RecordFailure(row.line, row.parseErr)
			continue
		}

		save, err := plan(ctx, row.fields)
		if err != nil {
			result.RecordFailure(row.line, uc.rowMessage(err))
			continue
		}

		if err := uc.commitRow(ctx, save); err != nil {
			result.RecordFailure(row.line, uc.rowMessage(err))
			continue
		}

		result.RecordSuccess()
	}
}

func (uc *ImportUseCase) commitRow(ctx context.Context, save rowPlan) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := save(ctx, tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// importAtomically runs the whole batch in one transaction. Business errors
// roll back only their row through a savepoint; anything else rolls back
// the batch.
func (uc *ImportUseCase) importAtomically(ctx context.Context, input ImportInput, rows []csvRow, plan rowPlanner, result *domain.ImportResult) {
	ctx, cancel := context.WithTimeout(ctx, ImportTransactionTimeout)
	defer cancel()

	abort := func(line int, err error) {
		uc.logger.Error().Err(err).
			Str("tenant_id", input.TenantID).
			Str("batch_id", result.BatchID).
			Int("line", line).
			Msg("import rolled back")

		if uc.metrics != nil {
			uc.metrics.ImportsAborted.WithLabelValues(string(input.Kind)).Inc()
		}

		cause := surface(uc.logger, "import.refund", err)
		if line > 0 {
			result.Abort(fmt.Sprintf("batch rolled back at line %d: %v", line, cause))
			return
		}
		result.Abort("batch rolled back: " + cause.Error())
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		abort(0, err)
		return
	}
	defer tx.Rollback(ctx)

	for _, row := range rows {
		if row.parseErr != "" {
			result.RecordFailure(row.line, row.parseErr)
			continue
		}

		save, err := plan(ctx, row.fields)
		if err != nil {
			if !domain.IsClassified(err) {
				abort(row.line, err)
				return
			}
			result.RecordFailure(row.line, uc.rowMessage(err))
			continue
		}

		sp, err := tx.Savepoint(ctx)
		if err != nil {
			abort(row.line, err)
			return
		}

		if err := save(ctx, sp); err != nil {
			if rbErr := sp.Rollback(ctx); rbErr != nil {
				abort(row.line, errors.Join(err, rbErr))
				return
			}
			if !domain.IsClassified(err) {
				abort(row.line, err)
				return
			}
			result.RecordFailure(row.line, uc.rowMessage(err))
			continue
		}

		if err := sp.Commit(ctx); err != nil {
			abort(row.line, err)
			return
		}

		result.RecordSuccess()
	}

	if err := tx.Commit(ctx); err != nil {
		abort(0, err)
	}
}

// rowMessage is the text reported for a rejected row. Infrastructure faults
// are logged and reported without their cause.
func (uc *ImportUseCase) rowMessage(err error) string {
	return surface(uc.logger, "import.row", err).Error()
}

func (uc *ImportUseCase) observe(kind domain.ImportKind, result *domain.ImportResult, elapsed time.Duration) {
	if uc.metrics == nil {
		return
	}

	uc.metrics.ImportRows.WithLabelValues(string(kind), "success").Add(float64(result.Successful))
	uc.metrics.ImportRows.WithLabelValues(string(kind), "failure").Add(float64(result.Failed))
	uc.metrics.ImportDuration.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
}

// recordAudit leaves a trail of who imported what. It never fails the import.
func (uc *ImportUseCase) recordAudit(ctx context.Context, input ImportInput, result *domain.ImportResult) {
	if uc.auditRepo == nil {
		return
	}

	rec := recorder{auditRepo: uc.auditRepo, idGen: uc.idGen}

	err := func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		err = rec.audit(ctx, tx, auditRecord{
			tenantID:     input.TenantID,
			actorID:      input.ActorID,
			action:       domain.AuditActionImport,
			resourceType: domain.ResourceTypeImport,
			resourceID:   result.BatchID,
			after: map[string]any{
				"kind":       string(result.Kind),
				"total":      result.Total,
				"successful": result.Successful,
				"failed":     result.Failed,
			},
		}, uc.now())
		if err != nil {
			return err
		}

		return tx.Commit(ctx)
	}()
	if err != nil {
		uc.logger.Warn().Err(err).Str("batch_id", result.BatchID).Msg("failed to audit import")
	}
}

// readRows parses the upload. The first record is the header and must have
// the expected number of columns. Blank rows are skipped and not counted.
// Line numbers are 1-indexed and include the header.
func readRows(r io.Reader, columns, maxRows int) ([]csvRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, domain.NewValidationError("file", "is empty")
	}
	if domain.IsClassified(err) {
		return nil, err
	}
	if err != nil {
		return nil, domain.NewValidationError("file", "has an unreadable header: "+err.Error())
	}

	if len(header) != columns {
		return nil, domain.NewValidationError("file",
			fmt.Sprintf("header has %d columns, expected %d", len(header), columns))
	}

	var rows []csvRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			rows = append(rows, csvRow{line: parseErr.StartLine, parseErr: parseErr.Err.Error()})
		} else if domain.IsClassified(err) {
			return nil, err
		} else if err != nil {
			return nil, domain.NewValidationError("file", "could not be read: "+err.Error())
		} else {
			if isBlank(record) {
				continue
			}

			line, _ := reader.FieldPos(0)
			row := csvRow{line: line, fields: record}
			if len(record) != columns {
				row.parseErr = fmt.Sprintf("expected %d columns, got %d", columns, len(record))
			}
			rows = append(rows, row)
		}

		if len(rows) > maxRows {
			return nil, fmt.Errorf("%w (%d)", domain.ErrImportTooLarge, maxRows)
		}
	}

	return rows, nil
}

func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
