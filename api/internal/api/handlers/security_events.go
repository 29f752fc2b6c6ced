package handlers

import (
	"log/slog"
	"net/http"

	"github.com/irgordon/keyward/api/internal/api/httputil"
	"github.com/irgordon/keyward/api/internal/core/domain"
)

type SecurityEventHandler struct {
	Events domain.SecurityEventRepository
	Logger *slog.Logger
}

func NewSecurityEventHandler(events domain.SecurityEventRepository, logger *slog.Logger) *SecurityEventHandler {
	return &SecurityEventHandler{Events: events, Logger: logger}
}

type securityEventPage struct {
	Events []domain.SecurityEvent `json:"events"`
	Offset int                    `json:"offset"`
	Limit  int                    `json:"limit"`
}

// List handles GET /api/admin/security-events, newest first.
func (h *SecurityEventHandler) List(w http.ResponseWriter, r *http.Request) {
	offset, limit, err := httputil.ParsePagination(r)
	if err != nil {
		httputil.HandleBadRequest(w, err, h.Logger)
		return
	}

	events, err := h.Events.List(r.Context(), limit, offset)
	if err != nil {
		httputil.HandleError(w, err, h.Logger)
		return
	}
	if events == nil {
		events = []domain.SecurityEvent{}
	}

	httputil.WriteJSON(w, http.StatusOK, envelope{
		Data: securityEventPage{Events: events, Offset: offset, Limit: limit},
	})
}
