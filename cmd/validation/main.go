// Command validation runs the ValidationAgent: it evaluates consent triggers
// and forwards each verdict to the AuditAgent.
package main

import (
	"context"
	"fmt"
	"os"

	"choreographer/internal/a2a"
	a2aMetrics "choreographer/internal/a2a/metrics"
	"choreographer/internal/decision"
	"choreographer/internal/decision/adapters"
	decisionHandler "choreographer/internal/decision/handler"
	decisionMetrics "choreographer/internal/decision/metrics"
	"choreographer/internal/domain"
	"choreographer/internal/platform/app"
	"choreographer/internal/platform/config"
	"choreographer/internal/platform/logger"
	"choreographer/internal/platform/metrics"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "validation agent:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(string(domain.AgentValidation), cfg.LogLevel)
	agent := app.New(domain.AgentValidation, cfg, log, metrics.New(), a2aMetrics.New())

	opts := []decision.EngineOption{decision.WithMetrics(decisionMetrics.New())}
	if cfg.Reasoning.APIKey != "" {
		reasoner, err := adapters.NewGeminiReasoner(ctx, cfg.Reasoning.APIKey, cfg.Reasoning.Model)
		if err != nil {
			log.Warn("delegated reasoning unavailable, using rules only", "error", err)
		} else {
			opts = append(opts, decision.WithDelegated(decision.NewReasoningStrategy(reasoner, cfg.Reasoning.Timeout)))
			log.Info("delegated reasoning enabled", "model", cfg.Reasoning.Model)
		}
	}
	engine := decision.NewEngine(log, opts...)
	service := decision.NewService(engine, agent.Sender(), log)

	receiver, err := agent.Receiver(ctx)
	if err != nil {
		return err
	}
	receiver.Handle(a2a.KindConsentValidationRequest, service.HandleValidationRequest)
	decisionHandler.New(service, log).Register(agent.Router)

	return agent.Run(ctx)
}
