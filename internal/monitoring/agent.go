package monitoring

import (
	"context"
	"log/slog"
	"time"

	"choreographer/internal/a2a"
	"choreographer/internal/domain"
	"choreographer/internal/monitoring/metrics"
)

// DefaultInterval is the pause between monitoring cycles.
const DefaultInterval = 30 * time.Second

// Source supplies one cycle's worth of bank data.
type Source interface {
	PollTransactions(ctx context.Context) ([]ActivityRecord, error)
	PollUsers(ctx context.Context) ([]User, error)
}

// CycleReport summarises one monitoring cycle.
type CycleReport struct {
	Demo      bool
	Triggers  int
	Delivered int
}

// Sent is a trigger and the delivery of the request carrying it.
type Sent struct {
	Trigger  domain.ConsentTrigger
	Delivery a2a.Delivery
}

// Agent is the MonitoringAgent.
type Agent struct {
	source   Source
	detector *Detector
	sender   a2a.Sender
	demo     *DemoGenerator
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// AgentOption configures an Agent.
type AgentOption func(*Agent)

// WithDemoGenerator replaces the time-seeded demo generator.
func WithDemoGenerator(g *DemoGenerator) AgentOption {
	return func(a *Agent) { a.demo = g }
}

// WithMetrics attaches metrics.
func WithMetrics(m *metrics.Metrics) AgentOption {
	return func(a *Agent) { a.metrics = m }
}

// NewAgent wires the source, detector and sender.
func NewAgent(source Source, detector *Detector, sender a2a.Sender, logger *slog.Logger, opts ...AgentOption) *Agent {
	a := &Agent{
		source:   source,
		detector: detector,
		sender:   sender,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.demo == nil {
		a.demo = NewDemoGenerator(uint64(a.now().UnixNano()))
	}
	return a
}

// RunCycle polls, detects and forwards. When the bank cannot be polled one
// demo trigger is sent instead.
func (a *Agent) RunCycle(ctx context.Context) CycleReport {
	records, txErr := a.source.PollTransactions(ctx)
	users, userErr := a.source.PollUsers(ctx)

	if txErr != nil || userErr != nil {
		a.logger.WarnContext(ctx, "bank polling failed, using demo mode",
			"transactions_error", txErr,
			"users_error", userErr,
		)
		a.metrics.IncrementCycle("demo")
		sent := a.Send(ctx, a.demo.Fallback())
		report := CycleReport{Demo: true, Triggers: 1}
		if sent.Delivery.Delivered() {
			report.Delivered = 1
		}
		return report
	}

	a.metrics.IncrementCycle("live")
	triggers := a.detector.Detect(records, users)
	report := CycleReport{Triggers: len(triggers)}
	for _, t := range triggers {
		a.metrics.IncrementTrigger(string(t.Type))
		if a.Send(ctx, t).Delivery.Delivered() {
			report.Delivered++
		}
	}
	return report
}

// Run executes a cycle immediately and then every interval until ctx is
// done. Cycles never overlap.
func (a *Agent) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultInterval
	}
	a.logger.InfoContext(ctx, "monitoring loop started", "interval", interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		report := a.RunCycle(ctx)
		a.logger.InfoContext(ctx, "monitoring cycle complete",
			"demo", report.Demo,
			"triggers", report.Triggers,
			"delivered", report.Delivered,
		)
		select {
		case <-ctx.Done():
			a.logger.InfoContext(ctx, "monitoring loop stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// TriggerDemo sends one canned open-banking request.
func (a *Agent) TriggerDemo(ctx context.Context) Sent {
	return a.Send(ctx, a.demo.OpenBanking())
}

// Send forwards t to the ValidationAgent as a consent_validation_request.
func (a *Agent) Send(ctx context.Context, t domain.ConsentTrigger) Sent {
	d := a.sender.Send(ctx, domain.AgentValidation, a2a.ValidationRequest{Trigger: t}, "")
	a.metrics.IncrementForwarded(string(d.Status))
	a.logger.InfoContext(ctx, "consent validation request sent",
		"message_id", d.MessageID,
		"type", t.Type,
		"status", d.Status,
	)
	return Sent{Trigger: t, Delivery: d}
}
