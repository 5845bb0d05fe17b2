package filequeue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"choreographer/internal/a2a"
	"choreographer/internal/domain"
)

// DefaultDrainInterval is how often a Drainer polls the queue.
const DefaultDrainInterval = 5 * time.Second

// Receiver is the local inbound side fed by the drainer.
type Receiver interface {
	Receive(ctx context.Context, env a2a.Envelope) a2a.Response
}

// Drainer periodically consumes messages addressed to one agent.
type Drainer struct {
	queue    *Queue
	self     domain.AgentName
	receiver Receiver
	interval time.Duration
	logger   *slog.Logger
}

// NewDrainer creates a drainer. A non-positive interval uses the default.
func NewDrainer(queue *Queue, self domain.AgentName, receiver Receiver, interval time.Duration, logger *slog.Logger) *Drainer {
	if interval <= 0 {
		interval = DefaultDrainInterval
	}
	return &Drainer{queue: queue, self: self, receiver: receiver, interval: interval, logger: logger}
}

// Run drains until ctx is cancelled. Drain errors are logged and the loop
// continues.
func (d *Drainer) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		if _, err := d.DrainOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			d.logger.ErrorContext(ctx, "queue drain failed", "agent", d.self, "error", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// DrainOnce processes every pending message and returns how many envelopes
// reached the receiver.
func (d *Drainer) DrainOnce(ctx context.Context) (int, error) {
	msgs, err := d.queue.GetMessages(ctx, d.self)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, m := range msgs {
		var env a2a.Envelope
		if err := json.Unmarshal(m.Payload, &env); err != nil {
			d.logger.WarnContext(ctx, "discarding undecodable queued message",
				"queue_id", m.ID,
				"error", err,
			)
			continue
		}
		resp := d.receiver.Receive(ctx, env)
		processed++
		if resp.Status != a2a.ResponseAccepted {
			d.logger.WarnContext(ctx, "queued message not accepted",
				"message_id", env.MessageID,
				"status", resp.Status,
				"reason", resp.Reason,
			)
		}
	}
	return processed, nil
}
