package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	// Replace global default registry to allow test inspection.
	prometheus.DefaultRegisterer = registry
	prometheus.DefaultGatherer = registry

	m := New()

	if m.BalanceMutations == nil || m.RefundsProcessed == nil || m.ImportRows == nil {
		t.Fatalf("expected key metrics to be initialized: %+v", m)
	}

	m.RefundsProcessed.WithLabelValues("wallet").Inc()
	m.ImportRows.WithLabelValues("contribution", "success").Add(2)

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	names := make(map[string]bool, len(metricFamilies))
	for _, mf := range metricFamilies {
		names[mf.GetName()] = true
	}

	for _, want := range []string{"coopledger_refunds_processed_total", "coopledger_import_rows_total"} {
		if !names[want] {
			t.Errorf("expected %s to be registered, got %v", want, names)
		}
	}
}
