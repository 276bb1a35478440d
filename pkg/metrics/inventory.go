package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for stock mutations.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

// InventoryMetrics records stock mutation outcomes and latency.
type InventoryMetrics struct {
	duration *prometheus.HistogramVec
	outcomes *prometheus.CounterVec
}

// NewInventoryMetrics registers the inventory metrics on the provided registerer.
func NewInventoryMetrics(reg prometheus.Registerer) *InventoryMetrics {
	if reg == nil {
		return &InventoryMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stock_mutation_duration_seconds",
		Help:    "Duration of conditional stock mutations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_mutation_outcomes_total",
		Help: "Stock mutation results by operation and outcome.",
	}, []string{"op", "outcome"})
	reg.MustRegister(duration, outcomes)
	return &InventoryMetrics{
		duration: duration,
		outcomes: outcomes,
	}
}

// ObserveMutation records the duration of the named mutation.
func (m *InventoryMetrics) ObserveMutation(op string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(op)).Observe(duration.Seconds())
}

// IncOutcome increments the outcome counter for the named mutation.
func (m *InventoryMetrics) IncOutcome(op, outcome string) {
	if m == nil || m.outcomes == nil {
		return
	}
	m.outcomes.WithLabelValues(normalizeLabel(op), normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
