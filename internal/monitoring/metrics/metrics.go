package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the monitoring loop.
type Metrics struct {
	Cycles    *prometheus.CounterVec
	Triggers  *prometheus.CounterVec
	Forwarded *prometheus.CounterVec
}

// New creates and registers the monitoring metrics.
func New() *Metrics {
	return &Metrics{
		Cycles: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "choreographer_monitoring_cycles_total",
			Help: "Monitoring cycles by mode",
		}, []string{"mode"}), // mode: "live", "demo"

		Triggers: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "choreographer_monitoring_triggers_total",
			Help: "Consent triggers detected by type",
		}, []string{"type"}),

		Forwarded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "choreographer_monitoring_forwarded_total",
			Help: "Validation requests sent by delivery status",
		}, []string{"status"}),
	}
}

func (m *Metrics) IncrementCycle(mode string) {
	if m != nil {
		m.Cycles.WithLabelValues(mode).Inc()
	}
}

func (m *Metrics) IncrementTrigger(triggerType string) {
	if m != nil {
		m.Triggers.WithLabelValues(triggerType).Inc()
	}
}

func (m *Metrics) IncrementForwarded(status string) {
	if m != nil {
		m.Forwarded.WithLabelValues(status).Inc()
	}
}
