package filequeue

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"choreographer/internal/domain"
	"choreographer/pkg/testutil"
)

func newQueue(t *testing.T) (*Queue, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agent_messages.json")
	return New(path, WithLogger(testutil.DiscardLogger())), path
}

func TestQueue_SendAndGet(t *testing.T) {
	ctx := context.Background()
	q, _ := newQueue(t)

	_, err := q.Send(ctx, domain.AgentValidation, json.RawMessage(`{"n":1}`))
	require.NoError(t, err)
	_, err = q.Send(ctx, domain.AgentAudit, json.RawMessage(`{"n":2}`))
	require.NoError(t, err)
	_, err = q.Send(ctx, domain.AgentValidation, json.RawMessage(`{"n":3}`))
	require.NoError(t, err)

	got, err := q.GetMessages(ctx, domain.AgentValidation)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.JSONEq(t, `{"n":1}`, string(got[0].Payload))
	assert.JSONEq(t, `{"n":3}`, string(got[1].Payload))
	assert.NotEmpty(t, got[0].ID)

	again, err := q.GetMessages(ctx, domain.AgentValidation)
	require.NoError(t, err)
	assert.Empty(t, again, "messages are consumed")

	audit, err := q.GetMessages(ctx, domain.AgentAudit)
	require.NoError(t, err)
	require.Len(t, audit, 1)
	assert.JSONEq(t, `{"n":2}`, string(audit[0].Payload))
}

func TestQueue_MissingFileIsEmpty(t *testing.T) {
	q, _ := newQueue(t)
	got, err := q.GetMessages(context.Background(), domain.AgentAudit)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestQueue_CorruptFileIsAnError(t *testing.T) {
	q, path := newQueue(t)
	require.NoError(t, writeRaw(path, "{not json"))

	_, err := q.GetMessages(context.Background(), domain.AgentAudit)
	assert.Error(t, err)
}

func TestQueue_ConcurrentWritersLoseNothing(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "agent_messages.json")
	// Two queues over one file stand in for two processes.
	a := New(path, WithLogger(testutil.DiscardLogger()))
	b := New(path, WithLogger(testutil.DiscardLogger()))

	const perWriter = 20
	var wg sync.WaitGroup
	for i, q := range []*Queue{a, b} {
		wg.Add(1)
		go func(i int, q *Queue) {
			defer wg.Done()
			for n := 0; n < perWriter; n++ {
				_, err := q.Send(ctx, domain.AgentAudit, json.RawMessage(fmt.Sprintf(`{"w":%d,"n":%d}`, i, n)))
				assert.NoError(t, err)
			}
		}(i, q)
	}
	wg.Wait()

	got, err := a.GetMessages(ctx, domain.AgentAudit)
	require.NoError(t, err)
	assert.Len(t, got, 2*perWriter)
}
