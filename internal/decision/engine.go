// Package decision evaluates consent triggers against PSD3 criteria, either
// through a delegated reasoner or the deterministic rule scorer.
package decision

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"choreographer/internal/decision/metrics"
	"choreographer/internal/domain"
	"choreographer/pkg/platform/circuit"
)

const (
	StrategyRules     = "rules"
	StrategyReasoning = "reasoning"
)

// Strategy produces a verdict for one trigger.
type Strategy interface {
	Name() string
	Evaluate(ctx context.Context, trigger domain.ConsentTrigger) (domain.ValidationResult, error)
}

var tracer = otel.Tracer("choreographer/decision")

// Engine tries the delegated strategy first and falls back to the rules on
// any failure. Evaluate never fails.
type Engine struct {
	delegated Strategy
	fallback  RuleStrategy
	breaker   *circuit.Breaker
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithDelegated enables delegated reasoning.
func WithDelegated(s Strategy) EngineOption {
	return func(e *Engine) {
		e.delegated = s
	}
}

// WithBreaker guards the delegated strategy; while open it is skipped.
func WithBreaker(b *circuit.Breaker) EngineOption {
	return func(e *Engine) {
		e.breaker = b
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// NewEngine builds an engine. Without WithDelegated only the rules run.
func NewEngine(logger *slog.Logger, opts ...EngineOption) *Engine {
	e := &Engine{logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	if e.delegated != nil && e.breaker == nil {
		e.breaker = circuit.New(StrategyReasoning)
	}
	return e
}

// Evaluate returns a verdict for trigger.
func (e *Engine) Evaluate(ctx context.Context, trigger domain.ConsentTrigger) domain.ValidationResult {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "decision.evaluate", trace.WithAttributes(
		attribute.String("trigger.type", string(trigger.Type)),
		attribute.String("trigger.id", trigger.TriggerID),
	))
	defer span.End()

	result, strategy := e.evaluate(ctx, trigger)

	span.SetAttributes(
		attribute.String("decision.strategy", strategy),
		attribute.String("decision.verdict", string(result.Decision)),
	)
	e.metrics.IncrementDecision(string(result.Decision), strategy)
	e.metrics.ObserveEvaluateLatency(time.Since(start))
	return result
}

func (e *Engine) evaluate(ctx context.Context, trigger domain.ConsentTrigger) (domain.ValidationResult, string) {
	if e.delegated == nil {
		return EvaluateRules(trigger), StrategyRules
	}
	if !e.breaker.Allow() {
		e.metrics.IncrementFallback("circuit_open")
		return EvaluateRules(trigger), StrategyRules
	}

	result, err := e.delegated.Evaluate(ctx, trigger)
	if err != nil {
		_, change := e.breaker.RecordFailure()
		if change.Opened {
			e.logger.WarnContext(ctx, "delegated reasoning disabled after repeated failures",
				"strategy", e.delegated.Name(),
			)
		}
		e.metrics.IncrementFallback("error")
		e.logger.WarnContext(ctx, "delegated reasoning failed, using rules",
			"trigger_id", trigger.TriggerID,
			"error", err,
		)
		return EvaluateRules(trigger), StrategyRules
	}

	_, change := e.breaker.RecordSuccess()
	if change.Closed {
		e.logger.InfoContext(ctx, "delegated reasoning restored", "strategy", e.delegated.Name())
	}
	return result, e.delegated.Name()
}
