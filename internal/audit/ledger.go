// Package audit records consent verdicts in a bounded, persisted ledger and
// serves them to operators.
package audit

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"choreographer/internal/audit/metrics"
	"choreographer/internal/domain"
)

// DefaultCapacity is the number of most recent entries the ledger keeps.
const DefaultCapacity = 100

var tracer = otel.Tracer("choreographer/audit")

// Ledger is the single owner of the audit sequence. All mutation happens
// under one writer lock; persistence is write-through.
type Ledger struct {
	mu       sync.Mutex
	entries  []domain.AuditEntry
	store    Store
	capacity int
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// LedgerOption configures a Ledger.
type LedgerOption func(*Ledger)

// WithCapacity overrides the retention bound.
func WithCapacity(n int) LedgerOption {
	return func(l *Ledger) {
		if n > 0 {
			l.capacity = n
		}
	}
}

// WithLedgerMetrics sets the metrics collector.
func WithLedgerMetrics(m *metrics.Metrics) LedgerOption {
	return func(l *Ledger) {
		l.metrics = m
	}
}

// NewLedger loads the persisted sequence. A load failure is logged and the
// ledger starts empty.
func NewLedger(ctx context.Context, store Store, logger *slog.Logger, opts ...LedgerOption) *Ledger {
	l := &Ledger{
		store:    store,
		capacity: DefaultCapacity,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(l)
	}

	entries, err := store.Load(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load audit ledger, starting empty", "error", err)
		entries = nil
	}
	if len(entries) > l.capacity {
		entries = entries[len(entries)-l.capacity:]
	}
	l.entries = entries
	l.metrics.SetLedgerSize(len(l.entries))
	logger.InfoContext(ctx, "audit ledger loaded", "entries", len(l.entries))
	return l
}

// Append adds entry, persists the sequence, then truncates to capacity and
// persists again if it grew past the bound. Persistence failures are logged;
// the in-memory sequence is authoritative.
func (l *Ledger) Append(ctx context.Context, entry domain.AuditEntry) {
	ctx, span := tracer.Start(ctx, "audit.append")
	defer span.End()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, entry)
	l.persist(ctx)

	if len(l.entries) > l.capacity {
		kept := make([]domain.AuditEntry, l.capacity)
		copy(kept, l.entries[len(l.entries)-l.capacity:])
		l.entries = kept
		l.persist(ctx)
	}

	span.SetAttributes(attribute.Int("audit.ledger_size", len(l.entries)))
	l.metrics.IncrementAppended(string(entry.ValidationResult.Decision))
	l.metrics.SetLedgerSize(len(l.entries))
}

// persist writes the whole sequence; callers hold mu.
func (l *Ledger) persist(ctx context.Context) {
	if err := l.store.Save(ctx, l.entries); err != nil {
		l.metrics.IncrementPersistFailure()
		l.logger.ErrorContext(ctx, "failed to persist audit ledger",
			"entries", len(l.entries),
			"error", err,
		)
	}
}

// All returns a copy of the sequence, most recent last.
func (l *Ledger) All() []domain.AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.AuditEntry(nil), l.entries...)
}

// Len returns the number of retained entries.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
