package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/kvetinski/fintech-account/internal/logging"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbStatus, status := "ok", http.StatusOK
	if err := h.db.Ping(ctx); err != nil {
		logging.FromContext(r.Context()).Warn("readiness check failed: database unreachable", "error", err)
		dbStatus, status = "down", http.StatusServiceUnavailable
	}

	respondJSON(w, r, status, map[string]any{
		"status":    dbStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    map[string]string{"database": dbStatus},
	})
}
