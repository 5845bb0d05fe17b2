package a2a

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"choreographer/internal/domain"
)

func TestNewEnvelope(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	msg := ValidationRequest{Trigger: domain.ConsentTrigger{
		TriggerID: "t-1",
		Type:      domain.TriggerHighValueTransaction,
		UserID:    "alice",
		Amount:    7500,
	}}

	t.Run("generates a message id from sender and payload", func(t *testing.T) {
		env, err := NewEnvelope(domain.AgentMonitoring, domain.AgentValidation, msg, "", now)
		require.NoError(t, err)

		assert.Equal(t, ProtocolVersion, env.ProtocolVersion)
		assert.Equal(t, KindConsentValidationRequest, env.MessageType)
		assert.True(t, strings.HasPrefix(env.MessageID, "MonitoringAgent_"))
		assert.Equal(t, "application/json", env.Headers.ContentType)

		var trigger domain.ConsentTrigger
		require.NoError(t, json.Unmarshal(env.Payload, &trigger))
		assert.Equal(t, "t-1", trigger.TriggerID)
	})

	t.Run("keeps a supplied correlation id", func(t *testing.T) {
		env, err := NewEnvelope(domain.AgentValidation, domain.AgentAudit, msg, "corr-9", now)
		require.NoError(t, err)
		assert.Equal(t, "corr-9", env.MessageID)
	})
}

func TestNewMessageID(t *testing.T) {
	now := time.Unix(1700000000, 42)

	a := NewMessageID(domain.AgentMonitoring, []byte(`{"a":1}`), now)
	b := NewMessageID(domain.AgentMonitoring, []byte(`{"a":2}`), now)
	c := NewMessageID(domain.AgentMonitoring, []byte(`{"a":1}`), now.Add(time.Nanosecond))

	assert.NotEqual(t, a, b, "payload must discriminate ids at the same instant")
	assert.NotEqual(t, a, c)
	assert.Equal(t, "MonitoringAgent_1700000000000000042_"+a[len(a)-12:], a)
}

func TestEnvelopeUnmarshalLegacyProtocolKey(t *testing.T) {
	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(`{"protocol":"A2A/1.0","message_id":"x","to_agent":"AuditAgent"}`), &env))

	assert.Equal(t, ProtocolVersion, env.ProtocolVersion)
	assert.Equal(t, "x", env.MessageID)
	assert.Equal(t, domain.AgentAudit, env.ToAgent)
}

func TestDecodePayload(t *testing.T) {
	t.Run("validation request decodes the bare trigger", func(t *testing.T) {
		msg, err := DecodePayload(KindConsentValidationRequest, json.RawMessage(`{"type":"international_transfer","amount":10}`))
		require.NoError(t, err)

		req, ok := msg.(ValidationRequest)
		require.True(t, ok)
		assert.Equal(t, domain.TriggerInternationalTransfer, req.Trigger.Type)
	})

	t.Run("audit request normalises the verdict", func(t *testing.T) {
		msg, err := DecodePayload(KindAuditLogRequest, json.RawMessage(`{"validation_result":{"decision":"approve","confidence":3}}`))
		require.NoError(t, err)

		req := msg.(AuditLogRequest)
		assert.Equal(t, domain.DecisionApprove, req.ValidationResult.Decision)
		assert.True(t, req.ValidationResult.Valid)
		assert.Equal(t, 1.0, req.ValidationResult.Confidence)
	})

	t.Run("rejects", func(t *testing.T) {
		tests := []struct {
			name string
			kind MessageKind
			raw  string
		}{
			{name: "empty payload", kind: KindAuditLogRequest, raw: ``},
			{name: "null payload", kind: KindAuditLogRequest, raw: `null`},
			{name: "wrong shape", kind: KindConsentValidationRequest, raw: `[1,2]`},
			{name: "negative amount", kind: KindConsentValidationRequest, raw: `{"amount":-1}`},
			{name: "negative audited amount", kind: KindAuditLogRequest, raw: `{"validation_result":{"decision":"REJECT"},"trigger_data":{"amount":-7500}}`},
			{name: "unknown kind", kind: "status_ping", raw: `{}`},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := DecodePayload(tt.kind, json.RawMessage(tt.raw))
				assert.Error(t, err)
			})
		}
	})

	t.Run("unknown kind wraps ErrUnknownKind", func(t *testing.T) {
		_, err := DecodePayload("status_ping", json.RawMessage(`{}`))
		assert.ErrorIs(t, err, ErrUnknownKind)
	})
}
