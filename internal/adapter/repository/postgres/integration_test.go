//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/iho/coopledger/internal/adapter/repository/postgres"
	"github.com/iho/coopledger/internal/domain"
	infra "github.com/iho/coopledger/internal/infrastructure/postgres"
	"github.com/iho/coopledger/internal/usecase"
)

const (
	tenant = "coop-lagos"
	admin  = "admin-1"
)

type stack struct {
	pool          *pgxpool.Pool
	mutator       *usecase.BalanceMutator
	availability  *usecase.AvailabilityUseCase
	refunds       *usecase.RefundUseCase
	imports       *usecase.ImportUseCase
	recon         *usecase.ReconciliationUseCase
	contributions *usecase.ContributionUseCase
}

func newStack(t *testing.T) *stack {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("ledger"),
		tcpostgres.WithUsername("ledger"),
		tcpostgres.WithPassword("ledger"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	logger := zerolog.Nop()
	require.NoError(t, infra.RunMigrations(dsn, "../../../infrastructure/postgres/migrations", logger))

	pool, err := infra.NewPoolWithConfig(ctx, infra.PoolConfig{DatabaseURL: dsn, MaxConns: 20, ConnectRetries: 5, Logger: logger})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	txm := postgres.NewTxManager(pool)
	ids := postgres.NewULIDGenerator()
	accounts := postgres.NewAccountRepository(pool)
	journal := postgres.NewJournalRepository(pool)
	refunds := postgres.NewRefundRepository(pool)
	contributions := postgres.NewContributionRepository(pool)
	members := postgres.NewMemberRepository(pool)
	outbox := postgres.NewOutboxRepository(pool)
	audit := postgres.NewAuditRepository(pool)

	s := &stack{pool: pool}
	s.mutator = usecase.NewBalanceMutator(txm, accounts, journal, outbox, audit, ids, logger, nil)
	s.availability = usecase.NewAvailabilityUseCase(accounts, refunds, contributions, postgres.NewInvestmentReturnRepository(pool), logger)
	s.refunds = usecase.NewRefundUseCase(txm, accounts, members, refunds, outbox, audit, s.mutator, s.availability, ids, logger, nil)
	s.imports = usecase.NewImportUseCase(txm, usecase.ImportRepositories{
		Members:       members,
		Contributions: contributions,
		Loans:         postgres.NewLoanRepository(pool),
		Mortgages:     postgres.NewMortgageRepository(pool),
		Properties:    postgres.NewPropertyRepository(pool),
		Audit:         audit,
	}, s.refunds, nil, nil, ids, usecase.ImportConfig{Rules: domain.DefaultImportRules()}, logger, nil)
	s.recon = usecase.NewReconciliationUseCase(accounts, journal, postgres.NewRetrier(logger), logger, nil)
	s.contributions = usecase.NewContributionUseCase(txm, contributions, outbox, audit, ids, logger)

	return s
}

func (s *stack) addMember(t *testing.T, id, number string) {
	t.Helper()
	_, err := s.pool.Exec(context.Background(),
		`INSERT INTO members (id, tenant_id, member_number, first_name) VALUES ($1, $2, $3, $4)`,
		id, tenant, number, "Member "+number)
	require.NoError(t, err)
}

func (s *stack) credit(t *testing.T, member, amount string) {
	t.Helper()
	_, err := s.mutator.Credit(context.Background(), usecase.AdjustBalanceInput{
		TenantID: tenant,
		ActorID:  admin,
		OwnerID:  member,
		Kind:     domain.AccountKindWallet,
		Amount:   decimal.RequireFromString(amount),
	})
	require.NoError(t, err)
}

func TestIntegration_ConcurrentRefundsNeverOverdraw(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	s.addMember(t, "m-1", "M-0001")
	s.credit(t, "m-1", "1000")

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.refunds.ProcessRefund(ctx, usecase.RefundInput{
				TenantID: tenant,
				ActorID:  admin,
				MemberID: "m-1",
				Source:   domain.RefundSourceWallet,
				Amount:   decimal.NewFromInt(300),
				Reason:   "partial exit",
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, succeeded)

	available, err := s.availability.Available(ctx, tenant, "m-1", domain.RefundSourceWallet)
	require.NoError(t, err)
	assert.True(t, available.Equal(decimal.NewFromInt(100)), "available %s", available)

	report, err := s.recon.GenerateReport(ctx, tenant)
	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalAccounts)
	assert.Empty(t, report.Discrepancies)
}

func TestIntegration_ContributionRefund(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	s.addMember(t, "m-1", "M-0001")

	csv := "Member ID,Amount,Type,Payment Method,Payment Date,Notes\n" +
		"M-0001,30000,monthly,bank_transfer,2024-01-31,\n" +
		"M-0001,20000,monthly,bank_transfer,2024-02-29,\n"
	result, err := s.imports.Import(ctx, usecase.ImportInput{
		Reader:   strings.NewReader(csv),
		TenantID: tenant,
		ActorID:  admin,
		Kind:     domain.ImportKindContribution,
	})
	require.NoError(t, err)
	require.Equal(t, 2, result.Successful)

	rows, err := s.pool.Query(ctx, `SELECT id FROM contributions WHERE tenant_id = $1`, tenant)
	require.NoError(t, err)
	var ids []string
	for rows.Next() {
		var id string
		require.NoError(t, rows.Scan(&id))
		ids = append(ids, id)
	}
	rows.Close()
	require.Len(t, ids, 2)

	for _, id := range ids {
		_, err := s.contributions.Review(ctx, usecase.ReviewInput{
			TenantID: tenant, ActorID: admin, ContributionID: id, Status: domain.InflowStatusApproved,
		})
		require.NoError(t, err)
	}

	refund, err := s.refunds.ProcessRefund(ctx, usecase.RefundInput{
		TenantID: tenant,
		ActorID:  admin,
		MemberID: "m-1",
		Source:   domain.RefundSourceContribution,
		Amount:   decimal.NewFromInt(20000),
		Reason:   "exit",
	})
	require.NoError(t, err)
	assert.Nil(t, refund.Refund.JournalEntryID)
	require.NotNil(t, refund.Summary)
	assert.True(t, refund.Summary.Available[domain.RefundSourceContribution].Equal(decimal.NewFromInt(30000)))
}

func TestIntegration_RefundImportKeepsGoodRows(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	s.addMember(t, "m-1", "M-0001")
	s.addMember(t, "m-2", "M-0002")
	s.credit(t, "m-1", "500")
	s.credit(t, "m-2", "500")

	csv := "Member ID,Source,Amount,Reason,Notes\n" +
		"M-0001,wallet,100,exit,\n" +
		"M-0002,wallet,9999,exit,\n" +
		"M-0001,wallet,50,exit,\n"
	result, err := s.imports.Import(ctx, usecase.ImportInput{
		Reader:   strings.NewReader(csv),
		TenantID: tenant,
		ActorID:  admin,
		Kind:     domain.ImportKindRefund,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Successful)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 3, result.Errors[0].Line)

	available, err := s.availability.Available(ctx, tenant, "m-1", domain.RefundSourceWallet)
	require.NoError(t, err)
	assert.True(t, available.Equal(decimal.NewFromInt(350)), fmt.Sprintf("available %s", available))

	other, err := s.availability.Available(ctx, tenant, "m-2", domain.RefundSourceWallet)
	require.NoError(t, err)
	assert.True(t, other.Equal(decimal.NewFromInt(500)), fmt.Sprintf("available %s", other))

	report, err := s.recon.GenerateReport(ctx, tenant)
	require.NoError(t, err)
	assert.Empty(t, report.Discrepancies)
}
