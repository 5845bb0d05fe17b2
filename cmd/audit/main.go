// Command audit runs the AuditAgent: it records verdicts in the ledger and
// optionally exports them to Kafka.
package main

import (
	"context"
	"fmt"
	"os"

	"choreographer/internal/a2a"
	a2aMetrics "choreographer/internal/a2a/metrics"
	"choreographer/internal/audit"
	auditHandler "choreographer/internal/audit/handler"
	auditMetrics "choreographer/internal/audit/metrics"
	"choreographer/internal/domain"
	"choreographer/internal/platform/app"
	"choreographer/internal/platform/config"
	"choreographer/internal/platform/kafka"
	"choreographer/internal/platform/logger"
	"choreographer/internal/platform/metrics"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "audit agent:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(string(domain.AgentAudit), cfg.LogLevel)
	agent := app.New(domain.AgentAudit, cfg, log, metrics.New(), a2aMetrics.New())
	am := auditMetrics.New()

	ledger := audit.NewLedger(ctx, audit.NewFileStore(cfg.Audit.LogFile), log, audit.WithLedgerMetrics(am))
	var opts []audit.ServiceOption

	producer, err := kafka.New(ctx, cfg.Kafka)
	if err != nil {
		return err
	}
	if producer != nil {
		exporter := audit.NewExporter(audit.NewKafkaPublisher(producer), audit.DefaultExportBuffer, log, am)
		opts = append(opts, audit.WithExporter(exporter))
		agent.Go(exporter.Run)
		agent.OnClose(func() error { producer.Close(); return nil })
		log.Info("audit export enabled", "topic", producer.Topic())
	}
	service := audit.NewService(ledger, log, opts...)

	receiver, err := agent.Receiver(ctx)
	if err != nil {
		return err
	}
	receiver.Handle(a2a.KindAuditLogRequest, service.HandleAuditLogRequest)
	auditHandler.New(service, log).Register(agent.Router)

	return agent.Run(ctx)
}
