// Command monitoring runs the MonitoringAgent: it polls the bank, detects
// consent triggers and sends them to the ValidationAgent.
package main

import (
	"context"
	"fmt"
	"os"

	a2aMetrics "choreographer/internal/a2a/metrics"
	"choreographer/internal/domain"
	"choreographer/internal/monitoring"
	monitoringHandler "choreographer/internal/monitoring/handler"
	monitoringMetrics "choreographer/internal/monitoring/metrics"
	"choreographer/internal/platform/app"
	"choreographer/internal/platform/config"
	"choreographer/internal/platform/logger"
	"choreographer/internal/platform/metrics"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "monitoring agent:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(string(domain.AgentMonitoring), cfg.LogLevel)
	agent := app.New(domain.AgentMonitoring, cfg, log, metrics.New(), a2aMetrics.New())

	mc := cfg.Monitoring
	poller := monitoring.NewPoller(monitoring.PollerConfig{
		TransactionsURL: mc.TransactionsURL,
		UsersURL:        mc.UsersURL,
		Accounts:        mc.Accounts,
		Users:           mc.Users,
	}, monitoring.NewTokenSource(mc.MockToken, mc.JWTSigningKey), nil, log)

	monitor := monitoring.NewAgent(poller, monitoring.NewDetector(log), agent.Sender(), log,
		monitoring.WithMetrics(monitoringMetrics.New()),
	)
	monitoringHandler.New(monitor, log).Register(agent.Router)
	agent.Go(func(ctx context.Context) error { return monitor.Run(ctx, mc.Interval) })

	return agent.Run(ctx)
}
