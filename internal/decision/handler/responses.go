package handler

import (
	"choreographer/internal/decision"
	"choreographer/internal/domain"
)

// ValidateResponse is the HTTP response body for POST /validate.
type ValidateResponse struct {
	Status         string                  `json:"status"`
	Result         domain.ValidationResult `json:"result"`
	AuditMessageID string                  `json:"audit_message_id"`
	AuditDelivered bool                    `json:"audit_delivered"`
}

// FromOutcome maps a service outcome to its response body.
func FromOutcome(out decision.Outcome) ValidateResponse {
	return ValidateResponse{
		Status:         "validated",
		Result:         out.Result,
		AuditMessageID: out.AuditMessageID,
		AuditDelivered: out.AuditDelivered,
	}
}
