// Package app holds the process wiring shared by the three agent binaries.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"choreographer/internal/a2a"
	a2aHandler "choreographer/internal/a2a/handler"
	a2aMetrics "choreographer/internal/a2a/metrics"
	"choreographer/internal/a2a/filequeue"
	"choreographer/internal/domain"
	"choreographer/internal/platform/config"
	"choreographer/internal/platform/httpserver"
	"choreographer/internal/platform/metrics"
	"choreographer/internal/platform/redis"
	"choreographer/pkg/platform/middleware/metadata"
)

// Task is a long-running activity that returns when ctx is done.
type Task func(ctx context.Context) error

// Agent is the shared skeleton of one agent process.
type Agent struct {
	Name    domain.AgentName
	Config  config.Config
	Logger  *slog.Logger
	Router  chi.Router
	Metrics *a2aMetrics.Metrics

	queue   *filequeue.Queue
	closers []func() error
	tasks   []Task
}

// New builds the router with the common middleware and /metrics endpoint.
// Metrics may be nil in tests.
func New(name domain.AgentName, cfg config.Config, logger *slog.Logger, httpMetrics *metrics.Metrics, m *a2aMetrics.Metrics) *Agent {
	r := chi.NewRouter()
	r.Use(metadata.RequestMetadata)
	r.Use(middleware.Recoverer)
	r.Use(httpMetrics.Middleware)
	r.Handle("/metrics", metrics.Handler())

	return &Agent{Name: name, Config: cfg, Logger: logger, Router: r, Metrics: m}
}

// Queue returns the shared file queue, creating it on first use.
func (a *Agent) Queue() *filequeue.Queue {
	if a.queue == nil {
		q := a.Config.Queue
		a.queue = filequeue.New(q.File,
			filequeue.WithLease(q.LeaseTTL, q.AcquireTimeout),
			filequeue.WithLogger(a.Logger),
		)
	}
	return a.queue
}

// Sender returns the outbound transport selected by A2A_TRANSPORT.
func (a *Agent) Sender() a2a.Sender {
	if a.Config.A2A.Transport == config.TransportFile {
		return filequeue.NewSender(a.Name, a.Queue(), a.Logger)
	}
	return a2a.NewHTTPSender(a.Name, a.Config.A2A.Endpoints,
		a2a.WithTimeout(a.Config.A2A.Timeout),
		a2a.WithLogger(a.Logger),
		a2a.WithMetrics(a.Metrics),
	)
}

// Receiver builds the inbound side, mounts POST /a2a and, for the file
// transport, schedules a drainer. Duplicate detection uses Redis when
// REDIS_URL is set and memory otherwise.
func (a *Agent) Receiver(ctx context.Context) (*a2a.Receiver, error) {
	var deduper a2a.Deduper = a2a.NewMemoryDeduper(a2a.DefaultDedupeTTL, nil)
	rc, err := redis.New(ctx, a.Config.Redis)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	if rc != nil {
		a.OnClose(rc.Close)
		deduper = a2a.NewRedisDeduper(rc.Client, a2a.DefaultDedupeTTL)
		a.Logger.Info("redis deduplication enabled")
	}

	receiver := a2a.NewReceiver(a.Name,
		a2a.WithDeduper(deduper),
		a2a.WithReceiverLogger(a.Logger),
		a2a.WithReceiverMetrics(a.Metrics),
	)
	a2aHandler.New(receiver, a.Logger).Register(a.Router)

	if a.Config.A2A.Transport == config.TransportFile {
		d := filequeue.NewDrainer(a.Queue(), a.Name, receiver, a.Config.Queue.DrainInterval, a.Logger)
		a.Go(d.Run)
	}
	return receiver, nil
}

// Go schedules a task to run alongside the HTTP server.
func (a *Agent) Go(t Task) {
	a.tasks = append(a.tasks, t)
}

// OnClose registers cleanup run after every task has stopped.
func (a *Agent) OnClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

// Run serves HTTP and runs every task until SIGINT or SIGTERM, or until one
// of them fails.
func (a *Agent) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.run(ctx, httpserver.New(a.Config.Addr, a.Router))
}

func (a *Agent) run(ctx context.Context, srv *http.Server) error {
	a.Logger.Info("agent starting", "addr", a.Config.Addr, "transport", a.Config.A2A.Transport)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return httpserver.Run(gctx, srv, a.Logger) })
	for _, t := range a.tasks {
		g.Go(func() error { return t(gctx) })
	}
	err := g.Wait()

	for i := len(a.closers) - 1; i >= 0; i-- {
		if cerr := a.closers[i](); cerr != nil {
			a.Logger.Warn("cleanup failed", "error", cerr)
		}
	}
	a.Logger.Info("agent stopped")
	return err
}
