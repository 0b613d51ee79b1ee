package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/coopledger/internal/adapter/http/handler"
	"github.com/iho/coopledger/internal/adapter/http/middleware"
	"github.com/iho/coopledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler        *handler.AccountHandler
	EntryHandler          *handler.EntryHandler
	RefundHandler         *handler.RefundHandler
	ContributionHandler   *handler.ContributionHandler
	ImportHandler         *handler.ImportHandler
	ReconciliationHandler *handler.ReconciliationHandler
	HealthHandler         *handler.HealthHandler

	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	AllowedOrigins   []string
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Metrics)
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{
				"Accept", "Content-Type",
				middleware.TenantHeader, middleware.ActorHeader, middleware.IdempotencyKeyHeader,
			},
			ExposedHeaders: []string{"X-Idempotency-Replay", "X-Request-Id"},
			MaxAge:         300,
		}))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RequireTenant)
		if cfg.IdempotencyStore != nil {
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger).Wrap)
		}

		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Open)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Post("/{id}/deactivate", cfg.AccountHandler.Deactivate)
			r.Get("/{id}/entries", cfg.EntryHandler.ListByAccount)
			r.Get("/{id}/reconcile", cfg.ReconciliationHandler.Account)
		})

		r.Route("/members/{memberID}", func(r chi.Router) {
			r.Get("/accounts", cfg.AccountHandler.ListByMember)
			r.Post("/accounts/{kind}/credit", cfg.AccountHandler.Credit)
			r.Post("/accounts/{kind}/debit", cfg.AccountHandler.Debit)
			r.Get("/availability", cfg.RefundHandler.Summary)
			r.Get("/availability/{source}", cfg.RefundHandler.Available)
			r.Post("/refunds", cfg.RefundHandler.Create)
			r.Get("/refunds", cfg.RefundHandler.ListByMember)
		})

		r.Get("/refunds/{id}", cfg.RefundHandler.Get)
		r.Get("/entries/{id}", cfg.EntryHandler.Get)
		r.Post("/contributions/{id}/review", cfg.ContributionHandler.Review)
		r.Post("/imports/{kind}", cfg.ImportHandler.Upload)
		r.Get("/reconciliation/report", cfg.ReconciliationHandler.Report)
	})

	return r
}
