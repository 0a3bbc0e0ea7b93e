package handlers

import (
	"net/http"
	"time"

	"bitrix-lead-relay/internal/models"
)

// serviceName identifies the relay in health responses.
const serviceName = "bitrix-lead-relay"

// HealthHandler reports liveness and configuration readiness. It never
// probes the CRM: a probe would create real traffic against the account's
// API quota.
type HealthHandler struct {
	version            string
	stage              string
	upstreamConfigured bool
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(version, stage string, upstreamConfigured bool) *HealthHandler {
	return &HealthHandler{
		version:            version,
		stage:              stage,
		upstreamConfigured: upstreamConfigured,
	}
}

// Handle processes health check requests.
func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	response := models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   serviceName,
		Version:   h.version,
		Stage:     h.stage,
		Upstream:  "configured",
	}

	status := http.StatusOK
	if !h.upstreamConfigured {
		response.Status = "degraded"
		response.Upstream = "not configured"
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, response)
}
