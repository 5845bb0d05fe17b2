package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"choreographer/internal/domain"
	"choreographer/internal/monitoring"
	"choreographer/pkg/platform/httputil"
	"choreographer/pkg/requestcontext"
)

// Agent defines the monitoring operations exposed over HTTP.
type Agent interface {
	TriggerDemo(ctx context.Context) monitoring.Sent
}

// Handler wires MonitoringAgent endpoints.
type Handler struct {
	agent  Agent
	logger *slog.Logger
}

// New constructs a monitoring handler.
func New(agent Agent, logger *slog.Logger) *Handler {
	return &Handler{agent: agent, logger: logger}
}

// Register mounts monitoring endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.HandleHealth)
	r.Post("/trigger-consent", h.HandleTriggerConsent)
}

// HandleHealth handles GET /health.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"agent":  string(domain.AgentMonitoring),
	})
}

// TriggerResponse is returned by POST /trigger-consent.
type TriggerResponse struct {
	Status    string                `json:"status"`
	Trigger   domain.ConsentTrigger `json:"trigger"`
	MessageID string                `json:"message_id"`
	Delivery  string                `json:"delivery"`
	Message   string                `json:"message"`
}

// HandleTriggerConsent handles POST /trigger-consent. The request succeeds
// whatever happened to the delivery; the outcome is reported in the body.
func (h *Handler) HandleTriggerConsent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sent := h.agent.TriggerDemo(ctx)

	h.logger.InfoContext(ctx, "demo consent triggered",
		"request_id", requestcontext.RequestID(ctx),
		"type", sent.Trigger.Type,
		"message_id", sent.Delivery.MessageID,
	)

	httputil.WriteJSON(w, http.StatusOK, TriggerResponse{
		Status:    "success",
		Trigger:   sent.Trigger,
		MessageID: sent.Delivery.MessageID,
		Delivery:  string(sent.Delivery.Status),
		Message:   "Consent trigger sent to validation agent",
	})
}
