package a2a

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"choreographer/internal/a2a/metrics"
	"choreographer/internal/domain"
)

// ResponseStatus is the receiver's verdict on an envelope.
type ResponseStatus string

const (
	ResponseAccepted ResponseStatus = "accepted"
	ResponseRejected ResponseStatus = "rejected"
	ResponseError    ResponseStatus = "error"
)

// Response is the body returned to the sender. Extra carries handler specific
// fields that are flattened into the top-level object.
type Response struct {
	Status    ResponseStatus
	MessageID string
	Reason    string
	Duplicate bool
	Extra     map[string]any
}

func (r Response) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Extra)+4)
	for k, v := range r.Extra {
		out[k] = v
	}
	out["status"] = r.Status
	out["message_id"] = r.MessageID
	if r.Reason != "" {
		out["reason"] = r.Reason
	}
	if r.Duplicate {
		out["duplicate"] = true
	}
	return json.Marshal(out)
}

// HandlerFunc processes a decoded message. The returned map is merged into
// an accepted Response; a returned error becomes status "error".
type HandlerFunc func(ctx context.Context, env Envelope, msg Message) (map[string]any, error)

// Receiver validates inbound envelopes and dispatches them synchronously.
type Receiver struct {
	self     domain.AgentName
	handlers map[MessageKind]HandlerFunc
	deduper  Deduper
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// ReceiverOption configures a Receiver.
type ReceiverOption func(*Receiver)

// WithDeduper enables replay detection keyed by message id.
func WithDeduper(d Deduper) ReceiverOption {
	return func(r *Receiver) {
		r.deduper = d
	}
}

// WithReceiverLogger sets the logger.
func WithReceiverLogger(logger *slog.Logger) ReceiverOption {
	return func(r *Receiver) {
		r.logger = logger
	}
}

// WithReceiverMetrics sets the metrics collector.
func WithReceiverMetrics(m *metrics.Metrics) ReceiverOption {
	return func(r *Receiver) {
		r.metrics = m
	}
}

// NewReceiver creates a receiver for self.
func NewReceiver(self domain.AgentName, opts ...ReceiverOption) *Receiver {
	r := &Receiver{
		self:     self,
		handlers: make(map[MessageKind]HandlerFunc),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handle registers fn for kind, replacing any previous handler.
func (r *Receiver) Handle(kind MessageKind, fn HandlerFunc) {
	r.handlers[kind] = fn
}

// Self returns the agent this receiver answers for.
func (r *Receiver) Self() domain.AgentName {
	return r.self
}

// Receive checks protocol, addressing, kind and payload in that order, then
// invokes the handler before returning.
func (r *Receiver) Receive(ctx context.Context, env Envelope) Response {
	resp := r.receive(ctx, env)
	r.metrics.IncrementReceive(string(env.MessageType), string(resp.Status))
	return resp
}

func (r *Receiver) receive(ctx context.Context, env Envelope) Response {
	if env.ProtocolVersion != ProtocolVersion {
		return r.reject(ctx, env, "Unsupported protocol")
	}
	if env.ToAgent != r.self {
		return r.reject(ctx, env, "Message not for this agent")
	}
	handler, ok := r.handlers[env.MessageType]
	if !ok {
		return r.reject(ctx, env, fmt.Sprintf("Unknown message type: %s", env.MessageType))
	}
	msg, err := DecodePayload(env.MessageType, env.Payload)
	if err != nil {
		return r.reject(ctx, env, fmt.Sprintf("Invalid payload: %s", err))
	}

	if r.deduper != nil && env.MessageID != "" {
		first, err := r.deduper.MarkSeen(ctx, r.self, env.MessageID)
		if err != nil {
			r.logger.WarnContext(ctx, "dedupe check failed, processing anyway",
				"message_id", env.MessageID,
				"error", err,
			)
		} else if !first {
			r.metrics.IncrementDuplicate()
			r.logger.InfoContext(ctx, "duplicate a2a message acknowledged",
				"message_id", env.MessageID,
				"from_agent", env.FromAgent,
			)
			return Response{Status: ResponseAccepted, MessageID: env.MessageID, Duplicate: true}
		}
	}

	extra, err := handler(ctx, env, msg)
	if err != nil {
		if r.deduper != nil && env.MessageID != "" {
			if ferr := r.deduper.Forget(ctx, r.self, env.MessageID); ferr != nil {
				r.logger.WarnContext(ctx, "failed to forget message id", "message_id", env.MessageID, "error", ferr)
			}
		}
		r.logger.ErrorContext(ctx, "a2a handler failed",
			"message_id", env.MessageID,
			"kind", env.MessageType,
			"error", err,
		)
		return Response{Status: ResponseError, MessageID: env.MessageID, Reason: err.Error()}
	}

	r.logger.InfoContext(ctx, "a2a message processed",
		"message_id", env.MessageID,
		"from_agent", env.FromAgent,
		"kind", env.MessageType,
	)
	return Response{Status: ResponseAccepted, MessageID: env.MessageID, Extra: extra}
}

func (r *Receiver) reject(ctx context.Context, env Envelope, reason string) Response {
	r.logger.WarnContext(ctx, "a2a message rejected",
		"message_id", env.MessageID,
		"from_agent", env.FromAgent,
		"to_agent", env.ToAgent,
		"reason", reason,
	)
	return Response{Status: ResponseRejected, MessageID: env.MessageID, Reason: reason}
}
