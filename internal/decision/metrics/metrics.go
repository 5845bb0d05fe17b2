package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the decision module.
type Metrics struct {
	// Verdicts by decision and the strategy that produced them
	Decisions *prometheus.CounterVec

	// Fallbacks to the rule strategy by cause
	Fallbacks *prometheus.CounterVec

	// Overall evaluation latency
	EvaluateLatency prometheus.Histogram
}

// New creates a new Metrics instance with all decision module metrics registered.
func New() *Metrics {
	return &Metrics{
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "choreographer_decision_verdicts_total",
			Help: "Total consent verdicts by decision and strategy",
		}, []string{"decision", "strategy"}),

		Fallbacks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "choreographer_decision_fallbacks_total",
			Help: "Total fallbacks from delegated reasoning to rules by reason",
		}, []string{"reason"}), // reason: "error", "circuit_open"

		EvaluateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "choreographer_decision_evaluate_duration_seconds",
			Help:    "Duration of trigger evaluation including delegated reasoning",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 2.5, 5, 10, 20},
		}),
	}
}

// IncrementDecision records a verdict.
func (m *Metrics) IncrementDecision(decision, strategy string) {
	if m != nil {
		m.Decisions.WithLabelValues(decision, strategy).Inc()
	}
}

// IncrementFallback records a fallback to the rules.
func (m *Metrics) IncrementFallback(reason string) {
	if m != nil {
		m.Fallbacks.WithLabelValues(reason).Inc()
	}
}

// ObserveEvaluateLatency records the total evaluation duration.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}
