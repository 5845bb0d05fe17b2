//go:build integration

// Package containers starts throwaway backing services for integration tests.
// Each constructor terminates its container when the test finishes.
package containers

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

const redisImage = "redis:7-alpine"

// Redis is a running Redis with a connected client for assertions.
type Redis struct {
	URL    string
	Client *redis.Client
}

// NewRedisContainer starts Redis for the dedupe and client tests.
func NewRedisContainer(t *testing.T) *Redis {
	t.Helper()
	ctx := context.Background()

	c, err := tcredis.Run(ctx, redisImage)
	must(t, err, "start redis")
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	url, err := c.ConnectionString(ctx)
	must(t, err, "redis connection string")
	opts, err := redis.ParseURL(url)
	must(t, err, "parse redis URL")

	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	must(t, client.Ping(ctx).Err(), "ping redis")

	return &Redis{URL: url, Client: client}
}

func must(t *testing.T, err error, what string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: %v", what, err)
	}
}
