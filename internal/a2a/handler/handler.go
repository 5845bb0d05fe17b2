// Package handler exposes an agent's A2A receiver over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"choreographer/internal/a2a"
	"choreographer/pkg/platform/httputil"
	"choreographer/pkg/requestcontext"
)

const maxEnvelopeBytes = 1 << 20

// Receiver is the inbound side of the A2A contract.
type Receiver interface {
	Receive(ctx context.Context, env a2a.Envelope) a2a.Response
}

// Handler serves POST /a2a.
type Handler struct {
	receiver Receiver
	logger   *slog.Logger
}

// New constructs an A2A handler.
func New(receiver Receiver, logger *slog.Logger) *Handler {
	return &Handler{receiver: receiver, logger: logger}
}

// Register mounts the A2A endpoint on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/a2a", h.HandleReceive)
}

// HandleReceive decodes the envelope and answers with the receiver's verdict.
// Every verdict is returned with 200; only an undecodable envelope gets 400.
func (h *Handler) HandleReceive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	var env a2a.Envelope
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEnvelopeBytes)).Decode(&env); err != nil {
		h.logger.WarnContext(ctx, "failed to decode a2a envelope",
			"request_id", requestID,
			"peer", requestcontext.Peer(ctx),
			"error", err,
		)
		httputil.WriteJSON(w, http.StatusBadRequest, a2a.Response{
			Status: a2a.ResponseRejected,
			Reason: "Invalid envelope",
		})
		return
	}

	resp := h.receiver.Receive(ctx, env)
	httputil.WriteJSON(w, http.StatusOK, resp)
}
