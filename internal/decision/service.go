package decision

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"choreographer/internal/a2a"
	"choreographer/internal/domain"
)

// Evaluator produces a verdict that never fails.
type Evaluator interface {
	Evaluate(ctx context.Context, trigger domain.ConsentTrigger) domain.ValidationResult
}

// Outcome is the verdict and the id of the audit message sent for it.
type Outcome struct {
	Result         domain.ValidationResult
	AuditMessageID string
	AuditDelivered bool
}

// Service is the ValidationAgent: it evaluates triggers and forwards each
// verdict to the AuditAgent.
type Service struct {
	engine Evaluator
	sender a2a.Sender
	logger *slog.Logger
	now    func() time.Time
}

// NewService wires the engine to the outbound sender.
func NewService(engine Evaluator, sender a2a.Sender, logger *slog.Logger) *Service {
	return &Service{engine: engine, sender: sender, logger: logger, now: time.Now}
}

// Validate evaluates trigger and forwards an audit_log_request using
// correlationID as its message id. A failed forward is logged; the verdict
// is still returned.
func (s *Service) Validate(ctx context.Context, trigger domain.ConsentTrigger, correlationID string) Outcome {
	trigger = trigger.Normalize(s.now())
	result := s.engine.Evaluate(ctx, trigger)

	s.logger.InfoContext(ctx, "consent trigger evaluated",
		"trigger_id", trigger.TriggerID,
		"type", trigger.Type,
		"decision", result.Decision,
		"confidence", result.Confidence,
		"ai_processed", result.AIProcessed,
	)

	d := s.sender.Send(ctx, domain.AgentAudit, a2a.AuditLogRequest{
		ValidationResult: result,
		TriggerData:      trigger,
		SourceAgent:      string(domain.AgentValidation),
		Timestamp:        domain.At(s.now()),
	}, correlationID)
	if !d.Delivered() {
		s.logger.WarnContext(ctx, "audit forward failed",
			"message_id", d.MessageID,
			"status", d.Status,
			"reason", d.Reason,
			"error", d.Err,
		)
	}

	return Outcome{Result: result, AuditMessageID: d.MessageID, AuditDelivered: d.Delivered()}
}

// HandleValidationRequest adapts Validate to the A2A receiver.
func (s *Service) HandleValidationRequest(ctx context.Context, env a2a.Envelope, msg a2a.Message) (map[string]any, error) {
	req, ok := msg.(a2a.ValidationRequest)
	if !ok {
		return nil, fmt.Errorf("unexpected message %T", msg)
	}
	out := s.Validate(ctx, req.Trigger, env.MessageID)
	return map[string]any{
		"result":           out.Result,
		"audit_message_id": out.AuditMessageID,
	}, nil
}
