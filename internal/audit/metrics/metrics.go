package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the audit ledger and its exporter.
type Metrics struct {
	// Entries appended by decision
	Appended *prometheus.CounterVec

	// Failed write-through saves
	PersistFailures prometheus.Counter

	// Retained ledger entries
	LedgerSize prometheus.Gauge

	// Export outcomes
	Exported       prometheus.Counter
	ExportFailures prometheus.Counter
	ExportDropped  prometheus.Counter
}

// New creates a new Metrics instance with all audit metrics registered.
func New() *Metrics {
	return &Metrics{
		Appended: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "choreographer_audit_entries_appended_total",
			Help: "Total audit entries appended by decision",
		}, []string{"decision"}),
		PersistFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "choreographer_audit_persist_failures_total",
			Help: "Total failed audit ledger saves",
		}),
		LedgerSize: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "choreographer_audit_ledger_entries",
			Help: "Number of entries currently retained in the audit ledger",
		}),
		Exported: promauto.NewCounter(prometheus.CounterOpts{
			Name: "choreographer_audit_exported_total",
			Help: "Total audit entries published to the export sink",
		}),
		ExportFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "choreographer_audit_export_failures_total",
			Help: "Total audit entries the export sink refused",
		}),
		ExportDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "choreographer_audit_export_dropped_total",
			Help: "Total audit entries dropped because the export buffer was full",
		}),
	}
}

func (m *Metrics) IncrementAppended(decision string) {
	if m != nil {
		m.Appended.WithLabelValues(decision).Inc()
	}
}

func (m *Metrics) IncrementPersistFailure() {
	if m != nil {
		m.PersistFailures.Inc()
	}
}

func (m *Metrics) SetLedgerSize(n int) {
	if m != nil {
		m.LedgerSize.Set(float64(n))
	}
}

func (m *Metrics) IncrementExported() {
	if m != nil {
		m.Exported.Inc()
	}
}

func (m *Metrics) IncrementExportFailure() {
	if m != nil {
		m.ExportFailures.Inc()
	}
}

func (m *Metrics) IncrementExportDropped() {
	if m != nil {
		m.ExportDropped.Inc()
	}
}
