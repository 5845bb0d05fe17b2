package audit

import (
	"context"
	"log/slog"

	"choreographer/internal/audit/metrics"
	"choreographer/internal/domain"
)

// DefaultExportBuffer bounds entries waiting to be exported.
const DefaultExportBuffer = 256

// Publisher ships a recorded entry to an external sink.
type Publisher interface {
	Publish(ctx context.Context, entry domain.AuditEntry) error
}

// Exporter fans appended entries out to a Publisher off the request path.
// When the buffer is full the entry is dropped and counted.
type Exporter struct {
	inbox     chan domain.AuditEntry
	publisher Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// NewExporter creates an exporter. A non-positive buffer uses the default.
func NewExporter(publisher Publisher, buffer int, logger *slog.Logger, m *metrics.Metrics) *Exporter {
	if buffer <= 0 {
		buffer = DefaultExportBuffer
	}
	return &Exporter{
		inbox:     make(chan domain.AuditEntry, buffer),
		publisher: publisher,
		logger:    logger,
		metrics:   m,
	}
}

// Offer enqueues entry without blocking and reports whether it was accepted.
func (e *Exporter) Offer(entry domain.AuditEntry) bool {
	select {
	case e.inbox <- entry:
		return true
	default:
		e.metrics.IncrementExportDropped()
		return false
	}
}

// Run publishes queued entries until ctx is cancelled. Publish errors are
// logged and counted; the loop continues.
func (e *Exporter) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case entry := <-e.inbox:
			if err := e.publisher.Publish(ctx, entry); err != nil {
				e.metrics.IncrementExportFailure()
				e.logger.WarnContext(ctx, "audit export failed",
					"trigger_id", entry.TriggerData.TriggerID,
					"error", err,
				)
				continue
			}
			e.metrics.IncrementExported()
		}
	}
}
