package handler

import (
	"context"
	"net/http"
	"time"
)

// DatabaseChecker is the subset of the database used by health checks.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles liveness and readiness requests.
type HealthHandler struct {
	db DatabaseChecker
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(db DatabaseChecker) *HealthHandler {
	return &HealthHandler{db: db}
}

// Root handles GET / - a liveness check with service info.
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "userhub user management API is running",
	})
}

// Health handles GET /health - liveness, no dependencies touched.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "userhub",
	})
}

// Ready handles GET /ready - readiness including a database ping.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"reason": "database unreachable",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
