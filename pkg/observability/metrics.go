package observability

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/powerset/pkg/domain"
)

const namespace = "powerset"

// Metrics groups the collectors exported by the engine.
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	dfaStates  prometheus.Histogram
	blowup     prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
// Pass prometheus.DefaultRegisterer to expose them through promhttp.Handler.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Total number of engine operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Duration of engine operations",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"operation"},
		),
		dfaStates: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "dfa_states",
				Help:      "Number of states produced by subset construction, dead state included",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		blowup: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "dfa_blowup_ratio",
				Help:      "Ratio of DFA states to NFA states",
				Buckets:   []float64{0.5, 1, 1.5, 2, 4, 8, 16, 64},
			},
		),
	}
	reg.MustRegister(m.operations, m.duration, m.dfaStates, m.blowup)
	return m
}

// Observe records one operation that started at start and finished with err.
func (m *Metrics) Observe(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, Outcome(err)).Inc()
	m.duration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// ObserveConversion records the sizes of a subset construction.
func (m *Metrics) ObserveConversion(nfaStates, dfaStates int) {
	if m == nil {
		return
	}
	m.dfaStates.Observe(float64(dfaStates))
	if nfaStates > 0 {
		m.blowup.Observe(float64(dfaStates) / float64(nfaStates))
	}
}

// Outcome classifies err into a low cardinality label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrMalformedEncoding):
		return "malformed"
	case errors.Is(err, domain.ErrUndefinedReference):
		return "undefined_reference"
	case errors.Is(err, domain.ErrInvalidAlphabetSymbol):
		return "invalid_symbol"
	case errors.Is(err, domain.ErrNotDeterministic):
		return "not_deterministic"
	case errors.Is(err, domain.ErrMachineNotFound):
		return "not_found"
	default:
		return "error"
	}
}
