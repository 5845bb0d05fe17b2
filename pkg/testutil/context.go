package testutil

import (
	"net/http"
	"time"

	"choreographer/pkg/requestcontext"
)

// WithRequestID adds a request ID to the request context, as the metadata
// middleware would.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}

// WithTime pins the request-scoped clock.
func WithTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
