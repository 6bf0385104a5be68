package handlers

import (
	"net/http"

	"github.com/kozaktomas/facegate/internal/extractor"
)

// HealthHandler reports service and descriptor-backend health.
type HealthHandler struct {
	extractor *extractor.Client
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(client *extractor.Client) *HealthHandler {
	return &HealthHandler{extractor: client}
}

// Get handles GET /api/v1/health
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	extractorStatus := "ok"
	if h.extractor != nil {
		if err := h.extractor.Health(r.Context()); err != nil {
			extractorStatus = "unavailable"
		}
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"extractor": extractorStatus,
	})
}
