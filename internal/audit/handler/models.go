package handler

import (
	"choreographer/internal/a2a"
	"choreographer/internal/domain"
	dErrors "choreographer/pkg/domain-errors"
)

// AuditRequest is the HTTP request body for POST /audit.
type AuditRequest struct {
	a2a.AuditLogRequest
}

// Validate implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *AuditRequest) Validate() error {
	if r.ValidationResult.Decision == "" {
		return dErrors.New(dErrors.CodeValidation, "validation_result.decision is required")
	}
	return r.TriggerData.Validate()
}

// LogsResponse is the HTTP response body for GET /logs.
type LogsResponse struct {
	Logs  []domain.AuditEntry `json:"logs"`
	Count int                 `json:"count"`
}
