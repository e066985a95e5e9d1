package handler

import (
	"net/http"

	"github.com/dfagundes/huddle/internal/model"
)

// HealthHandler handles health and readiness endpoints
type HealthHandler struct {
	registry *model.Registry
	version  string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(registry *model.Registry, version string) *HealthHandler {
	return &HealthHandler{
		registry: registry,
		version:  version,
	}
}

// HealthResponse represents the health response
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Accounts int    `json:"accounts,omitempty"`
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: h.version,
	})
}

// Ready handles GET /ready. The service is ready when at least one account
// has a complete credential triple; unconfigured accounts only degrade.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	configured := 0
	for _, account := range h.registry.Accounts() {
		if account.Configured() {
			configured++
		}
	}

	if configured == 0 {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:  "no accounts configured",
			Version: h.version,
		})
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:   "ready",
		Version:  h.version,
		Accounts: configured,
	})
}
