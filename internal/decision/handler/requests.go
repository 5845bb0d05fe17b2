package handler

import (
	"choreographer/internal/domain"
)

// ValidateRequest is the HTTP request body for POST /validate: the trigger
// object itself.
type ValidateRequest struct {
	domain.ConsentTrigger
}

// Validate implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *ValidateRequest) Validate() error {
	return r.ConsentTrigger.Validate()
}
