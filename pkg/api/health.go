package api

import (
	"context"
	"net/http"
	"time"

	"github.com/vendora/gatekeeper/pkg/httputil"
)

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// HealthHandler serves liveness and readiness probes. Liveness always
// passes while the process runs; readiness runs every registered check.
type HealthHandler struct {
	checks map[string]HealthCheck
}

// NewHealthHandler creates a health handler with named dependency checks.
func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	if checks == nil {
		checks = map[string]HealthCheck{}
	}
	return &HealthHandler{checks: checks}
}

// Register mounts the probe endpoints on mux-compatible routers.
func (h *HealthHandler) Register(mount func(path string, handler http.HandlerFunc)) {
	mount("/healthz", h.live)
	mount("/readyz", h.ready)
}

func (h *HealthHandler) live(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, map[string]string{"status": "ok"})
}

func (h *HealthHandler) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	results := map[string]string{}
	healthy := true
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			healthy = false
		} else {
			results[name] = "ok"
		}
	}
	if !healthy {
		httputil.WriteJSON(w, http.StatusServiceUnavailable, results)
		return
	}
	httputil.WriteSuccess(w, results)
}
