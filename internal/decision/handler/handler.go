package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"choreographer/internal/decision"
	"choreographer/internal/domain"
	"choreographer/pkg/platform/httputil"
	"choreographer/pkg/requestcontext"
)

// Service defines the interface for validation operations.
type Service interface {
	Validate(ctx context.Context, trigger domain.ConsentTrigger, correlationID string) decision.Outcome
}

// Handler wires ValidationAgent endpoints to the decision service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a validation handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts validation endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.HandleHealth)
	r.Post("/validate", h.HandleValidate)
}

// HandleHealth handles GET /health.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"agent":  string(domain.AgentValidation),
	})
}

// HandleValidate handles POST /validate with a bare trigger body.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[ValidateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	out := h.service.Validate(ctx, req.ConsentTrigger, "")

	h.logger.InfoContext(ctx, "direct validation completed",
		"request_id", requestID,
		"decision", out.Result.Decision,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromOutcome(out))
}
