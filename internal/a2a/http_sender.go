package a2a

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"choreographer/internal/a2a/metrics"
	"choreographer/internal/domain"
)

// DefaultTimeout bounds a single delivery, including downstream processing
// on the receiving agent.
const DefaultTimeout = 10 * time.Second

var tracer = otel.Tracer("choreographer/a2a")

// HTTPSender posts envelopes to statically configured agent endpoints.
type HTTPSender struct {
	self      domain.AgentName
	endpoints map[domain.AgentName]string
	client    *http.Client
	logger    *slog.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// Option configures an HTTPSender.
type Option func(*HTTPSender)

// WithHTTPClient replaces the HTTP client (its Timeout is the per-call budget).
func WithHTTPClient(c *http.Client) Option {
	return func(s *HTTPSender) {
		s.client = c
	}
}

// WithTimeout sets the per-call timeout on the default client.
func WithTimeout(d time.Duration) Option {
	return func(s *HTTPSender) {
		if d > 0 {
			s.client = &http.Client{Timeout: d}
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *HTTPSender) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *HTTPSender) {
		s.metrics = m
	}
}

// WithClock overrides the time source used for envelope timestamps and ids.
func WithClock(now func() time.Time) Option {
	return func(s *HTTPSender) {
		s.now = now
	}
}

// NewHTTPSender creates a sender for self using the endpoint table.
func NewHTTPSender(self domain.AgentName, endpoints map[domain.AgentName]string, opts ...Option) *HTTPSender {
	s := &HTTPSender{
		self:      self,
		endpoints: endpoints,
		client:    &http.Client{Timeout: DefaultTimeout},
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type receiveReply struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// Send performs one synchronous POST. Failures are logged and reported in the
// Delivery; they are never retried.
func (s *HTTPSender) Send(ctx context.Context, to domain.AgentName, msg Message, correlationID string) Delivery {
	start := s.now()
	env, err := NewEnvelope(s.self, to, msg, correlationID, start)
	if err != nil {
		return s.finish(ctx, to, msg.Kind(), start, Delivery{
			MessageID: correlationID,
			Status:    StatusRejected,
			Reason:    "payload could not be encoded",
			Err:       err,
		})
	}

	ctx, span := tracer.Start(ctx, "a2a.send", trace.WithAttributes(
		attribute.String("a2a.message_id", env.MessageID),
		attribute.String("a2a.to_agent", string(to)),
		attribute.String("a2a.kind", string(env.MessageType)),
	))
	defer span.End()

	d := s.post(ctx, to, env)
	if !d.Delivered() {
		span.SetStatus(codes.Error, string(d.Status))
	}
	return s.finish(ctx, to, env.MessageType, start, d)
}

func (s *HTTPSender) post(ctx context.Context, to domain.AgentName, env Envelope) Delivery {
	d := Delivery{MessageID: env.MessageID}

	endpoint, ok := s.endpoints[to]
	if !ok || endpoint == "" {
		d.Status = StatusUnreachable
		d.Err = fmt.Errorf("no endpoint configured for agent %s", to)
		return d
	}

	body, err := json.Marshal(env)
	if err != nil {
		d.Status = StatusRejected
		d.Err = fmt.Errorf("encode envelope: %w", err)
		return d
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		d.Status = StatusUnreachable
		d.Err = fmt.Errorf("build request: %w", err)
		return d
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		d.Status = StatusUnreachable
		d.Err = err
		return d
	}
	defer func() { _ = resp.Body.Close() }()

	var reply receiveReply
	decodeErr := json.NewDecoder(resp.Body).Decode(&reply)

	if resp.StatusCode != http.StatusOK {
		d.Status = StatusUnreachable
		d.Err = fmt.Errorf("HTTP %d", resp.StatusCode)
		if decodeErr == nil && reply.Reason != "" {
			d.Reason = reply.Reason
		}
		return d
	}
	if decodeErr != nil {
		d.Status = StatusRejected
		d.Reason = "unreadable response"
		d.Err = decodeErr
		return d
	}
	if reply.Status != string(ResponseAccepted) {
		d.Status = StatusRejected
		d.Reason = reply.Reason
		if d.Reason == "" {
			d.Reason = "unknown"
		}
		return d
	}
	d.Status = StatusDelivered
	return d
}

func (s *HTTPSender) finish(ctx context.Context, to domain.AgentName, kind MessageKind, start time.Time, d Delivery) Delivery {
	s.metrics.IncrementSend(string(to), string(kind), string(d.Status))
	s.metrics.ObserveSendLatency(string(to), s.now().Sub(start))

	switch d.Status {
	case StatusDelivered:
		s.logger.InfoContext(ctx, "a2a message delivered",
			"message_id", d.MessageID,
			"to_agent", to,
			"kind", kind,
		)
	case StatusRejected:
		s.logger.WarnContext(ctx, "a2a message rejected",
			"message_id", d.MessageID,
			"to_agent", to,
			"kind", kind,
			"reason", d.Reason,
			"error", d.Err,
		)
	default:
		s.logger.ErrorContext(ctx, "a2a message undeliverable",
			"message_id", d.MessageID,
			"to_agent", to,
			"kind", kind,
			"error", d.Err,
		)
	}
	return d
}
