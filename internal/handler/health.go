package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/foyerhq/foyer/internal/models"
	"github.com/foyerhq/foyer/internal/store"
)

const version = "1.0.0"

// HealthHandler handles GET /health with a storage connectivity check.
type HealthHandler struct {
	store store.Store
}

func NewHealthHandler(s store.Store) *HealthHandler {
	return &HealthHandler{store: s}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"server": "ok"}
	overallStatus := "healthy"

	// Short timeout so a stuck dependency doesn't block the probe
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		checks["store"] = "unavailable: " + err.Error()
		overallStatus = "degraded"
	} else {
		checks["store"] = "ok"
	}

	statusCode := http.StatusOK
	if overallStatus == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	models.WriteJSON(w, statusCode, models.HealthResponse{
		Status:  overallStatus,
		Version: version,
		Checks:  checks,
	})
}
