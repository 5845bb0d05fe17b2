//go:build integration

package a2a

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"choreographer/internal/domain"
	"choreographer/pkg/testutil/containers"
)

func TestRedisDeduper(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()
	d := NewRedisDeduper(rc.Client, time.Minute)

	first, err := d.MarkSeen(ctx, domain.AgentAudit, "m-1")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := d.MarkSeen(ctx, domain.AgentAudit, "m-1")
	require.NoError(t, err)
	assert.False(t, again)

	ttl, err := rc.Client.PTTL(ctx, "a2a:seen:AuditAgent:m-1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, d.Forget(ctx, domain.AgentAudit, "m-1"))
	afterForget, err := d.MarkSeen(ctx, domain.AgentAudit, "m-1")
	require.NoError(t, err)
	assert.True(t, afterForget)
}
