package filequeue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"choreographer/internal/a2a"
	"choreographer/internal/domain"
)

// Sender delivers A2A envelopes through the queue. Delivered means enqueued;
// the receiver's verdict is not observed.
type Sender struct {
	self   domain.AgentName
	queue  *Queue
	logger *slog.Logger
	now    func() time.Time
}

// NewSender creates a queue-backed a2a.Sender for self.
func NewSender(self domain.AgentName, queue *Queue, logger *slog.Logger) *Sender {
	return &Sender{self: self, queue: queue, logger: logger, now: time.Now}
}

func (s *Sender) Send(ctx context.Context, to domain.AgentName, msg a2a.Message, correlationID string) a2a.Delivery {
	env, err := a2a.NewEnvelope(s.self, to, msg, correlationID, s.now())
	if err != nil {
		return a2a.Delivery{MessageID: correlationID, Status: a2a.StatusRejected, Reason: "payload could not be encoded", Err: err}
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return a2a.Delivery{MessageID: env.MessageID, Status: a2a.StatusRejected, Reason: "envelope could not be encoded", Err: err}
	}

	if _, err := s.queue.Send(ctx, to, raw); err != nil {
		s.logger.ErrorContext(ctx, "failed to enqueue a2a message",
			"message_id", env.MessageID,
			"to_agent", to,
			"error", err,
		)
		return a2a.Delivery{MessageID: env.MessageID, Status: a2a.StatusUnreachable, Err: fmt.Errorf("enqueue: %w", err)}
	}

	s.logger.InfoContext(ctx, "a2a message enqueued",
		"message_id", env.MessageID,
		"to_agent", to,
		"kind", env.MessageType,
	)
	return a2a.Delivery{MessageID: env.MessageID, Status: a2a.StatusDelivered}
}
