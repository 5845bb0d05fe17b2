package a2a

import (
	"context"
	"sync"
	"time"

	"choreographer/internal/domain"
)

// Deduper remembers message ids an agent has already processed.
type Deduper interface {
	// MarkSeen records id and reports whether this is its first sighting.
	MarkSeen(ctx context.Context, agent domain.AgentName, id string) (bool, error)
	// Forget removes id so a later redelivery is processed again.
	Forget(ctx context.Context, agent domain.AgentName, id string) error
}

// DefaultDedupeTTL is how long a processed id is remembered.
const DefaultDedupeTTL = 24 * time.Hour

type seenKey struct {
	agent domain.AgentName
	id    string
}

// MemoryDeduper is an in-process Deduper with lazy expiry.
type MemoryDeduper struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	seen map[seenKey]time.Time
}

// NewMemoryDeduper creates a MemoryDeduper. A non-positive ttl uses the default.
func NewMemoryDeduper(ttl time.Duration, now func() time.Time) *MemoryDeduper {
	if ttl <= 0 {
		ttl = DefaultDedupeTTL
	}
	if now == nil {
		now = time.Now
	}
	return &MemoryDeduper{ttl: ttl, now: now, seen: make(map[seenKey]time.Time)}
}

func (d *MemoryDeduper) MarkSeen(_ context.Context, agent domain.AgentName, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	key := seenKey{agent: agent, id: id}
	if expires, ok := d.seen[key]; ok && now.Before(expires) {
		return false, nil
	}
	d.seen[key] = now.Add(d.ttl)
	d.sweep(now)
	return true, nil
}

func (d *MemoryDeduper) Forget(_ context.Context, agent domain.AgentName, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, seenKey{agent: agent, id: id})
	return nil
}

// sweep drops expired ids once the table grows; callers hold mu.
func (d *MemoryDeduper) sweep(now time.Time) {
	if len(d.seen) < 1024 {
		return
	}
	for k, expires := range d.seen {
		if !now.Before(expires) {
			delete(d.seen, k)
		}
	}
}
