package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/coopledger/internal/adapter/http"
	"github.com/iho/coopledger/internal/adapter/http/handler"
	"github.com/iho/coopledger/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/coopledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/coopledger/internal/adapter/repository/redis"
	"github.com/iho/coopledger/internal/infrastructure/config"
	"github.com/iho/coopledger/internal/infrastructure/eventpublisher"
	"github.com/iho/coopledger/internal/infrastructure/kafka"
	"github.com/iho/coopledger/internal/infrastructure/logger"
	"github.com/iho/coopledger/internal/infrastructure/metrics"
	"github.com/iho/coopledger/internal/infrastructure/postgres"
	"github.com/iho/coopledger/internal/infrastructure/redis"
	"github.com/iho/coopledger/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "coopledger-server"})
	log.Logger = appLogger

	if err := run(cfg, appLogger); err != nil {
		appLogger.Fatal().Err(err).Msg("server exited")
	}
}

func run(cfg *config.Config, appLogger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.AutoMigrate {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, appLogger); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectRetries: cfg.DatabaseConnectRetries,
		Logger:         appLogger,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	appLogger.Info().Msg("connected to postgres")

	rules, err := cfg.ImportRules()
	if err != nil {
		return err
	}

	m := metrics.New()

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	idGen := postgresRepo.NewULIDGenerator()
	accountRepo := postgresRepo.NewAccountRepository(pool)
	journalRepo := postgresRepo.NewJournalRepository(pool)
	refundRepo := postgresRepo.NewRefundRepository(pool)
	contributionRepo := postgresRepo.NewContributionRepository(pool)
	memberRepo := postgresRepo.NewMemberRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)

	var outboxRepo usecase.OutboxRepository = postgresRepo.NewNullOutboxRepository()
	if cfg.OutboxEnabled {
		outboxRepo = postgresRepo.NewOutboxRepository(pool)
	}

	routerCfg := httpAdapter.RouterConfig{
		IdempotencyTTL: cfg.IdempotencyTTL,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:         appLogger,
	}

	var (
		locker usecase.Locker
		cache  usecase.Cache
	)

	// Redis is optional; without it imports run unlocked and uncached.
	redisClient, err := connectRedis(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		locker = redisRepo.NewLocker(redisClient)
		cache = redisRepo.NewCache(redisClient)
		routerCfg.IdempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
	}

	// Initialize use cases
	mutator := usecase.NewBalanceMutator(txManager, accountRepo, journalRepo, outboxRepo, auditRepo, idGen, appLogger, m)
	accountUC := usecase.NewAccountUseCase(txManager, accountRepo, auditRepo, idGen, appLogger, m)
	journalUC := usecase.NewJournalUseCase(accountRepo, journalRepo, appLogger)
	availabilityUC := usecase.NewAvailabilityUseCase(accountRepo, refundRepo, contributionRepo,
		postgresRepo.NewInvestmentReturnRepository(pool), appLogger)
	refundUC := usecase.NewRefundUseCase(txManager, accountRepo, memberRepo, refundRepo, outboxRepo, auditRepo,
		mutator, availabilityUC, idGen, appLogger, m)
	contributionUC := usecase.NewContributionUseCase(txManager, contributionRepo, outboxRepo, auditRepo, idGen, appLogger)
	importUC := usecase.NewImportUseCase(txManager, usecase.ImportRepositories{
		Members:       memberRepo,
		Contributions: contributionRepo,
		Loans:         postgresRepo.NewLoanRepository(pool),
		Mortgages:     postgresRepo.NewMortgageRepository(pool),
		Properties:    postgresRepo.NewPropertyRepository(pool),
		Audit:         auditRepo,
	}, refundUC, locker, cache, idGen, usecase.ImportConfig{
		Rules:   rules,
		MaxRows: cfg.ImportMaxRows,
		LockTTL: cfg.ImportLockTTL,
	}, appLogger, m)
	reconciliationUC := usecase.NewReconciliationUseCase(accountRepo, journalRepo, postgresRepo.NewRetrier(appLogger), appLogger, m)

	// Initialize handlers
	routerCfg.AccountHandler = handler.NewAccountHandler(accountUC, mutator)
	routerCfg.EntryHandler = handler.NewEntryHandler(journalUC)
	routerCfg.RefundHandler = handler.NewRefundHandler(refundUC, availabilityUC)
	routerCfg.ContributionHandler = handler.NewContributionHandler(contributionUC)
	routerCfg.ImportHandler = handler.NewImportHandler(importUC, handler.DefaultMaxUploadBytes)
	routerCfg.ReconciliationHandler = handler.NewReconciliationHandler(reconciliationUC)
	routerCfg.HealthHandler = handler.NewHealthHandler(pool, redisClient)

	if cfg.RateLimitRPS > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		routerCfg.RateLimiter = limiter
		go cleanupLimiters(ctx, limiter)
	}

	if cfg.OutboxEnabled {
		publisher, closer, err := newPublisher(cfg, appLogger)
		if err != nil {
			return err
		}
		defer closer.Close()

		relay := eventpublisher.NewEventPublisher(eventpublisher.Config{
			OutboxRepo: outboxRepo,
			Publisher:  publisher,
			Logger:     appLogger,
			Metrics:    m,
			BatchSize:  cfg.OutboxBatchSize,
			Interval:   cfg.OutboxInterval,
			Retention:  cfg.OutboxRetention,
		})
		go func() {
			if err := relay.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				appLogger.Error().Err(err).Msg("outbox relay stopped")
			}
		}()
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      httpAdapter.NewRouter(routerCfg),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	appLogger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	appLogger.Info().Msg("server stopped")
	return nil
}

func connectRedis(ctx context.Context, cfg *config.Config, appLogger zerolog.Logger) (*goredis.Client, error) {
	if cfg.RedisURL == "" {
		appLogger.Warn().Msg("REDIS_URL not set; idempotency, import locks and cache disabled")
		return nil, nil
	}

	client, err := redis.NewClientWithConfig(ctx, redis.ClientConfig{
		RedisURL:       cfg.RedisURL,
		ConnectRetries: cfg.DatabaseConnectRetries,
		Logger:         appLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	appLogger.Info().Msg("connected to redis")
	return client, nil
}

// newPublisher picks Kafka when brokers are configured and the log otherwise.
func newPublisher(cfg *config.Config, appLogger zerolog.Logger) (eventpublisher.Publisher, io.Closer, error) {
	if len(cfg.KafkaBrokers) == 0 {
		return eventpublisher.NewLogPublisher(appLogger), nopCloser{}, nil
	}

	producer, err := kafka.NewSyncProducer(cfg.KafkaBrokers)
	if err != nil {
		return nil, nil, err
	}
	publisher := kafka.NewPublisher(producer, cfg.KafkaTopic, appLogger)
	return publisher, publisher, nil
}

func cleanupLimiters(ctx context.Context, limiter *middleware.RateLimiter) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.CleanupLimiters(10 * time.Minute)
		}
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
