package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestIncOutcome(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewInventoryMetrics(reg)

	m.IncOutcome("reserve", OutcomeOK)
	m.IncOutcome("reserve", OutcomeOK)
	m.IncOutcome("reserve", OutcomeRejected)
	m.IncOutcome("", "")

	if got := testutil.ToFloat64(m.outcomes.WithLabelValues("reserve", OutcomeOK)); got != 2 {
		t.Fatalf("reserve/ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.outcomes.WithLabelValues("reserve", OutcomeRejected)); got != 1 {
		t.Fatalf("reserve/rejected = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.outcomes.WithLabelValues("unknown", "unknown")); got != 1 {
		t.Fatalf("unknown/unknown = %v, want 1", got)
	}
}

func TestObserveMutation(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewInventoryMetrics(reg)

	m.ObserveMutation("reduce", 25*time.Millisecond)

	count := testutil.CollectAndCount(m.duration, "stock_mutation_duration_seconds")
	if count == 0 {
		t.Fatal("expected histogram series to be collected")
	}
}

func TestNilSafety(t *testing.T) {
	t.Parallel()

	var m *InventoryMetrics
	m.IncOutcome("reserve", OutcomeOK)
	m.ObserveMutation("reserve", time.Millisecond)

	empty := NewInventoryMetrics(nil)
	empty.IncOutcome("reserve", OutcomeOK)
	empty.ObserveMutation("reserve", time.Millisecond)
}
