package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/irgordon/keyward/api/internal/api/httputil"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	DB     Pinger
	Logger *slog.Logger
}

func NewHealthHandler(db Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{DB: db, Logger: logger}
}

// Check handles GET /api/health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	// 🛡️ SLA: Use a tight timeout for health checks
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.DB.Ping(ctx); err != nil {
		h.Logger.Error("health check failed: database unreachable", slog.Any("error", err))
		httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "unhealthy",
			"database": "unreachable",
		})
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"status":   "healthy",
		"database": "ok",
	})
}
