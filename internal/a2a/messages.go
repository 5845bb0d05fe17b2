package a2a

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"choreographer/internal/domain"
)

// MessageKind is the discriminant of the envelope payload.
type MessageKind string

const (
	KindConsentValidationRequest MessageKind = "consent_validation_request"
	KindAuditLogRequest          MessageKind = "audit_log_request"
)

// ErrUnknownKind is returned for discriminants outside the closed set.
var ErrUnknownKind = errors.New("unknown message kind")

// Message is implemented by every payload variant.
type Message interface {
	Kind() MessageKind
}

// ValidationRequest asks the ValidationAgent to evaluate a trigger. On the
// wire the payload is the trigger object itself.
type ValidationRequest struct {
	Trigger domain.ConsentTrigger
}

func (ValidationRequest) Kind() MessageKind { return KindConsentValidationRequest }

func (r ValidationRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Trigger)
}

func (r *ValidationRequest) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &r.Trigger)
}

// AuditLogRequest asks the AuditAgent to record a verdict.
type AuditLogRequest struct {
	ValidationResult domain.ValidationResult `json:"validation_result"`
	TriggerData      domain.ConsentTrigger   `json:"trigger_data"`
	SourceAgent      string                  `json:"source_agent"`
	Timestamp        domain.Timestamp        `json:"timestamp"`
}

func (AuditLogRequest) Kind() MessageKind { return KindAuditLogRequest }

// DecodePayload decodes raw into the variant selected by kind and checks the
// variant's schema.
func DecodePayload(kind MessageKind, raw json.RawMessage) (Message, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, errors.New("payload is required")
	}

	switch kind {
	case KindConsentValidationRequest:
		var req ValidationRequest
		if err := json.Unmarshal(trimmed, &req); err != nil {
			return nil, err
		}
		if err := req.Trigger.Validate(); err != nil {
			return nil, err
		}
		return req, nil
	case KindAuditLogRequest:
		var req AuditLogRequest
		if err := json.Unmarshal(trimmed, &req); err != nil {
			return nil, err
		}
		if err := req.TriggerData.Validate(); err != nil {
			return nil, err
		}
		req.ValidationResult = req.ValidationResult.Normalized()
		return req, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
}
