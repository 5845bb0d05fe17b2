// Package a2a defines the agent-to-agent envelope, the closed set of message
// kinds it can carry, and the send/receive contract between agents.
package a2a

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"choreographer/internal/domain"
)

// ProtocolVersion is the only envelope version agents accept.
const ProtocolVersion = "A2A/1.0"

// Headers are advisory; nothing routes on them.
type Headers struct {
	ContentType string `json:"content_type"`
	Priority    string `json:"priority"`
}

// Envelope wraps every payload exchanged between agents.
type Envelope struct {
	ProtocolVersion string           `json:"protocol_version"`
	MessageID       string           `json:"message_id"`
	FromAgent       domain.AgentName `json:"from_agent"`
	ToAgent         domain.AgentName `json:"to_agent"`
	MessageType     MessageKind      `json:"message_type"`
	Timestamp       domain.Timestamp `json:"timestamp"`
	Payload         json.RawMessage  `json:"payload"`
	Headers         Headers          `json:"headers"`
}

// UnmarshalJSON accepts the legacy "protocol" key as an alias for
// protocol_version.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	type plain Envelope
	var aux struct {
		plain
		Protocol string `json:"protocol"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*e = Envelope(aux.plain)
	if e.ProtocolVersion == "" {
		e.ProtocolVersion = aux.Protocol
	}
	return nil
}

// NewEnvelope encodes msg and addresses it. An empty messageID is replaced by
// a generated one.
func NewEnvelope(from, to domain.AgentName, msg Message, messageID string, now time.Time) (Envelope, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", msg.Kind(), err)
	}
	if messageID == "" {
		messageID = NewMessageID(from, payload, now)
	}
	return Envelope{
		ProtocolVersion: ProtocolVersion,
		MessageID:       messageID,
		FromAgent:       from,
		ToAgent:         to,
		MessageType:     msg.Kind(),
		Timestamp:       domain.At(now),
		Payload:         payload,
		Headers: Headers{
			ContentType: "application/json",
			Priority:    "normal",
		},
	}, nil
}

// NewMessageID combines the sender identity, a nanosecond timestamp and a
// digest of the payload.
func NewMessageID(sender domain.AgentName, payload []byte, now time.Time) string {
	sum := sha256.Sum256(payload)
	return fmt.Sprintf("%s_%d_%s", sender, now.UnixNano(), hex.EncodeToString(sum[:6]))
}
