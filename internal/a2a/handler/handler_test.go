package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"choreographer/internal/a2a"
	"choreographer/internal/domain"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	receiver := a2a.NewReceiver(domain.AgentAudit,
		a2a.WithReceiverLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	receiver.Handle(a2a.KindAuditLogRequest, func(ctx context.Context, env a2a.Envelope, msg a2a.Message) (map[string]any, error) {
		return map[string]any{"logged": true}, nil
	})

	r := chi.NewRouter()
	New(receiver, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	return r
}

func post(t *testing.T, h http.Handler, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/a2a", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec, out
}

func TestHandleReceive(t *testing.T) {
	h := newRouter(t)

	t.Run("accepted envelope returns handler fields", func(t *testing.T) {
		rec, out := post(t, h, `{
			"protocol_version": "A2A/1.0",
			"message_id": "m-1",
			"from_agent": "ValidationAgent",
			"to_agent": "AuditAgent",
			"message_type": "audit_log_request",
			"timestamp": 1700000000.5,
			"payload": {"validation_result": {"decision": "APPROVE", "confidence": 0.9}, "trigger_data": {"type": "other"}}
		}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "accepted", out["status"])
		assert.Equal(t, "m-1", out["message_id"])
		assert.Equal(t, true, out["logged"])
	})

	t.Run("misaddressed envelope is rejected with 200", func(t *testing.T) {
		rec, out := post(t, h, `{
			"protocol_version": "A2A/1.0",
			"message_id": "m-2",
			"to_agent": "ValidationAgent",
			"message_type": "audit_log_request",
			"payload": {}
		}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "rejected", out["status"])
		assert.Equal(t, "Message not for this agent", out["reason"])
	})

	t.Run("malformed JSON is a bad request", func(t *testing.T) {
		rec, out := post(t, h, `{not json`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "rejected", out["status"])
		assert.Equal(t, "Invalid envelope", out["reason"])
	})
}
