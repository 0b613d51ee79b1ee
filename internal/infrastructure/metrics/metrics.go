package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Account metrics
	AccountsOpened   prometheus.Counter
	BalanceMutations *prometheus.CounterVec
	MutationErrors   *prometheus.CounterVec
	MutationDuration prometheus.Histogram

	// Refund metrics
	RefundsProcessed *prometheus.CounterVec
	RefundAmount     *prometheus.HistogramVec
	RefundErrors     *prometheus.CounterVec

	// Import metrics
	ImportRows     *prometheus.CounterVec
	ImportDuration *prometheus.HistogramVec
	ImportsAborted *prometheus.CounterVec

	// Reconciliation metrics
	ReconciledAccounts prometheus.Counter
	JournalMismatches  prometheus.Counter

	// Outbox metrics
	OutboxPublished prometheus.Counter
	OutboxFailures  prometheus.Counter
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		AccountsOpened: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coopledger_accounts_opened_total",
			Help: "Total number of member accounts opened, explicitly or lazily",
		}),
		BalanceMutations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "coopledger_balance_mutations_total",
			Help: "Total number of committed balance mutations",
		}, []string{"kind", "type"}),
		MutationErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "coopledger_balance_mutation_errors_total",
			Help: "Total number of rejected or failed balance mutations",
		}, []string{"reason"}),
		MutationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "coopledger_balance_mutation_duration_seconds",
			Help:    "Duration of standalone credit and debit transactions",
			Buckets: prometheus.DefBuckets,
		}),

		RefundsProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "coopledger_refunds_processed_total",
			Help: "Total number of refunds processed",
		}, []string{"source"}),
		RefundAmount: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "coopledger_refund_amount",
			Help:    "Refund amounts",
			Buckets: []float64{1000, 10000, 50000, 100000, 500000, 1000000, 10000000},
		}, []string{"source"}),
		RefundErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "coopledger_refund_errors_total",
			Help: "Total number of rejected or failed refunds",
		}, []string{"reason"}),

		ImportRows: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "coopledger_import_rows_total",
			Help: "Imported CSV rows by outcome",
		}, []string{"kind", "outcome"}),
		ImportDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "coopledger_import_duration_seconds",
			Help:    "Duration of bulk imports",
			Buckets: []float64{.1, .5, 1, 5, 10, 30, 60, 120},
		}, []string{"kind"}),
		ImportsAborted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "coopledger_imports_aborted_total",
			Help: "Imports rolled back as a whole",
		}, []string{"kind"}),

		ReconciledAccounts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coopledger_reconciled_accounts_total",
			Help: "Accounts replayed by reconciliation",
		}),
		JournalMismatches: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coopledger_journal_mismatches_total",
			Help: "Accounts whose journal does not replay to the recorded balance",
		}),

		OutboxPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coopledger_outbox_published_total",
			Help: "Outbox events published",
		}),
		OutboxFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coopledger_outbox_failures_total",
			Help: "Outbox events that failed to publish",
		}),
	}
}
