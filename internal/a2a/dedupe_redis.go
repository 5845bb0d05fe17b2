package a2a

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"choreographer/internal/domain"
)

// RedisDeduper shares replay detection across agent replicas.
type RedisDeduper struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisDeduper creates a RedisDeduper. A non-positive ttl uses the default.
func NewRedisDeduper(client redis.UniversalClient, ttl time.Duration) *RedisDeduper {
	if ttl <= 0 {
		ttl = DefaultDedupeTTL
	}
	return &RedisDeduper{client: client, ttl: ttl}
}

func seenRedisKey(agent domain.AgentName, id string) string {
	return fmt.Sprintf("a2a:seen:%s:%s", agent, id)
}

func (d *RedisDeduper) MarkSeen(ctx context.Context, agent domain.AgentName, id string) (bool, error) {
	ok, err := d.client.SetNX(ctx, seenRedisKey(agent, id), 1, d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

func (d *RedisDeduper) Forget(ctx context.Context, agent domain.AgentName, id string) error {
	if err := d.client.Del(ctx, seenRedisKey(agent, id)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
