package handlers

import (
	"net/http"
	"time"

	"github.com/saltyorg/foodquery/internal/monitor"
)

// HealthReporter exposes the latest store probe
type HealthReporter interface {
	Status() monitor.Status
	NextProbe() time.Time
}

type healthResponse struct {
	Status    string          `json:"status"`
	Version   VersionInfo     `json:"version"`
	Store     *monitor.Status `json:"store,omitempty"`
	NextProbe *time.Time      `json:"next_probe,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// Health handles GET /healthz. It answers 503 while the last probe failed
// so a load balancer can drain the instance.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:  "ok",
		Version: h.versionInfo,
	}

	if h.health == nil {
		h.jsonResponse(w, http.StatusOK, resp)
		return
	}

	status := h.health.Status()
	resp.Store = &status
	if next := h.health.NextProbe(); !next.IsZero() {
		resp.NextProbe = &next
	}

	if !status.Healthy {
		resp.Status = "degraded"
		resp.Error = status.Error
		h.jsonResponse(w, http.StatusServiceUnavailable, resp)
		return
	}

	h.jsonResponse(w, http.StatusOK, resp)
}
