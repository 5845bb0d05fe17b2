package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"choreographer/internal/a2a"
	"choreographer/internal/domain"
	"choreographer/pkg/platform/httputil"
	"choreographer/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/audit-mocks.go -package=mocks Service

// Service defines the interface for audit operations.
type Service interface {
	Record(ctx context.Context, req a2a.AuditLogRequest) domain.AuditEntry
	Logs() []domain.AuditEntry
}

// Handler wires AuditAgent endpoints to the audit service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an audit handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts audit endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.HandleHealth)
	r.Get("/logs", h.HandleLogs)
	r.Post("/audit", h.HandleAudit)
}

// HandleHealth handles GET /health.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"agent":  string(domain.AgentAudit),
	})
}

// HandleLogs handles GET /logs.
func (h *Handler) HandleLogs(w http.ResponseWriter, r *http.Request) {
	logs := h.service.Logs()
	if logs == nil {
		logs = []domain.AuditEntry{}
	}
	httputil.WriteJSON(w, http.StatusOK, LogsResponse{Logs: logs, Count: len(logs)})
}

// HandleAudit handles POST /audit with a bare audit_log_request payload.
func (h *Handler) HandleAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[AuditRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	entry := h.service.Record(ctx, req.AuditLogRequest)
	h.logger.InfoContext(ctx, "audit received over http",
		"request_id", requestID,
		"decision", entry.ValidationResult.Decision,
	)
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "received",
		"message": "Audit log recorded",
	})
}
