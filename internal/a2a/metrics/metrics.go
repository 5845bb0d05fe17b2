package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for agent-to-agent messaging.
type Metrics struct {
	// Sends by destination, kind and delivery outcome
	Sends *prometheus.CounterVec

	// Receives by kind and response status
	Receives *prometheus.CounterVec

	// Round-trip send latency by destination
	SendLatency *prometheus.HistogramVec

	// Replayed message ids acknowledged without processing
	Duplicates prometheus.Counter
}

// New creates a new Metrics instance with all A2A metrics registered.
func New() *Metrics {
	return &Metrics{
		Sends: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "choreographer_a2a_sends_total",
			Help: "Total A2A sends by destination agent, message kind and outcome",
		}, []string{"to_agent", "kind", "outcome"}),

		Receives: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "choreographer_a2a_receives_total",
			Help: "Total A2A envelopes received by message kind and response status",
		}, []string{"kind", "status"}),

		SendLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "choreographer_a2a_send_duration_seconds",
			Help:    "Duration of A2A sends including downstream processing",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"to_agent"}),

		Duplicates: promauto.NewCounter(prometheus.CounterOpts{
			Name: "choreographer_a2a_duplicates_total",
			Help: "Total A2A envelopes acknowledged as duplicates",
		}),
	}
}

// IncrementSend records a send outcome.
func (m *Metrics) IncrementSend(toAgent, kind, outcome string) {
	if m != nil {
		m.Sends.WithLabelValues(toAgent, kind, outcome).Inc()
	}
}

// IncrementReceive records a receive status.
func (m *Metrics) IncrementReceive(kind, status string) {
	if m != nil {
		m.Receives.WithLabelValues(kind, status).Inc()
	}
}

// ObserveSendLatency records the duration of one send.
func (m *Metrics) ObserveSendLatency(toAgent string, d time.Duration) {
	if m != nil {
		m.SendLatency.WithLabelValues(toAgent).Observe(d.Seconds())
	}
}

// IncrementDuplicate records a replayed message.
func (m *Metrics) IncrementDuplicate() {
	if m != nil {
		m.Duplicates.Inc()
	}
}
