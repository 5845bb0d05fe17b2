package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"choreographer/internal/a2a"
	"choreographer/internal/domain"
)

// UnknownSource labels entries whose sender did not identify itself.
const UnknownSource = "Unknown"

// Service is the AuditAgent: it turns verdicts into ledger entries.
type Service struct {
	ledger   *Ledger
	exporter *Exporter
	logger   *slog.Logger
	now      func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithExporter forwards every recorded entry to e.
func WithExporter(e *Exporter) ServiceOption {
	return func(s *Service) {
		s.exporter = e
	}
}

// WithClock overrides the time source used for missing timestamps.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates an audit service over ledger.
func NewService(ledger *Ledger, logger *slog.Logger, opts ...ServiceOption) *Service {
	s := &Service{ledger: ledger, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record derives regulatory notes and appends the entry.
func (s *Service) Record(ctx context.Context, req a2a.AuditLogRequest) domain.AuditEntry {
	now := s.now()
	result := req.ValidationResult.Normalized()
	trigger := req.TriggerData.Normalize(now)

	ts := req.Timestamp
	if ts.IsZero() {
		ts = domain.At(now)
	}
	source := req.SourceAgent
	if source == "" {
		source = UnknownSource
	}

	entry := domain.AuditEntry{
		Timestamp:        ts,
		ValidationResult: result,
		TriggerData:      trigger,
		SourceAgent:      source,
		RegulatoryNotes:  Notes(result, trigger),
	}
	s.ledger.Append(ctx, entry)
	if s.exporter != nil {
		s.exporter.Offer(entry)
	}

	s.logger.InfoContext(ctx, "audit entry recorded",
		"type", trigger.DisplayType(),
		"user_id", trigger.UserID,
		"decision", result.Decision,
		"source_agent", source,
	)
	return entry
}

// Logs returns the retained entries, most recent last.
func (s *Service) Logs() []domain.AuditEntry {
	return s.ledger.All()
}

// HandleAuditLogRequest adapts Record to the A2A receiver.
func (s *Service) HandleAuditLogRequest(ctx context.Context, _ a2a.Envelope, msg a2a.Message) (map[string]any, error) {
	req, ok := msg.(a2a.AuditLogRequest)
	if !ok {
		return nil, fmt.Errorf("unexpected message %T", msg)
	}
	s.Record(ctx, req)
	return map[string]any{"message": "Audit log recorded via A2A"}, nil
}
