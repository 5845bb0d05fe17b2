// Package filequeue is the shared-file alternate transport: one JSON array of
// addressed messages guarded by a lease lock.
package filequeue

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"choreographer/internal/domain"
	"choreographer/pkg/platform/jsonfile"
)

// Message is one queued item.
type Message struct {
	To        domain.AgentName `json:"to"`
	Payload   json.RawMessage  `json:"payload"`
	Timestamp domain.Timestamp `json:"timestamp"`
	ID        string           `json:"id"`
}

// Queue appends to and drains a single queue file.
type Queue struct {
	path   string
	mu     sync.Mutex
	lock   *LeaseLock
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Queue.
type Option func(*Queue)

// WithLease overrides the lease ttl and acquire timeout.
func WithLease(ttl, acquireTimeout time.Duration) Option {
	return func(q *Queue) {
		q.lock = NewLeaseLock(q.path+".lock", ttl, acquireTimeout)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(q *Queue) {
		q.logger = logger
	}
}

// WithClock overrides the time source for message timestamps.
func WithClock(now func() time.Time) Option {
	return func(q *Queue) {
		q.now = now
	}
}

// New creates a queue over path; the lock file is path + ".lock".
func New(path string, opts ...Option) *Queue {
	q := &Queue{
		path:   path,
		logger: slog.Default(),
		now:    time.Now,
	}
	q.lock = NewLeaseLock(path+".lock", DefaultLeaseTTL, DefaultAcquireTimeout)
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Send appends a message for to and returns its queue id.
func (q *Queue) Send(ctx context.Context, to domain.AgentName, payload json.RawMessage) (string, error) {
	now := q.now()
	sum := sha256.Sum256(payload)
	msg := Message{
		To:        to,
		Payload:   payload,
		Timestamp: domain.At(now),
		ID:        fmt.Sprintf("%d_%s", now.UnixNano(), hex.EncodeToString(sum[:6])),
	}

	err := q.update(ctx, func(queue []Message) ([]Message, error) {
		return append(queue, msg), nil
	})
	if err != nil {
		return "", err
	}
	q.logger.DebugContext(ctx, "queued message", "to_agent", to, "queue_id", msg.ID)
	return msg.ID, nil
}

// GetMessages removes and returns every message addressed to forAgent, in
// queue order, leaving the rest untouched.
func (q *Queue) GetMessages(ctx context.Context, forAgent domain.AgentName) ([]Message, error) {
	var mine []Message
	err := q.update(ctx, func(queue []Message) ([]Message, error) {
		remaining := make([]Message, 0, len(queue))
		for _, m := range queue {
			if m.To == forAgent {
				mine = append(mine, m)
			} else {
				remaining = append(remaining, m)
			}
		}
		if len(mine) == 0 {
			return nil, errUnchanged
		}
		return remaining, nil
	})
	if err != nil {
		return nil, err
	}
	if len(mine) > 0 {
		q.logger.InfoContext(ctx, "drained queued messages", "agent", forAgent, "count", len(mine))
	}
	return mine, nil
}

// errUnchanged lets an update skip the rewrite.
var errUnchanged = errors.New("queue unchanged")

// update runs fn over the queue under both the in-process mutex and the
// file lease, then rewrites the whole file.
func (q *Queue) update(ctx context.Context, fn func([]Message) ([]Message, error)) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	lease, err := q.lock.Acquire(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := lease.Release(); err != nil {
			q.logger.WarnContext(ctx, "failed to release queue lease", "error", err)
		}
	}()

	var queue []Message
	if _, err := jsonfile.Read(q.path, &queue); err != nil {
		return fmt.Errorf("load queue: %w", err)
	}

	next, err := fn(queue)
	if errors.Is(err, errUnchanged) {
		return nil
	}
	if err != nil {
		return err
	}
	if next == nil {
		next = []Message{}
	}
	return jsonfile.Write(q.path, next)
}
