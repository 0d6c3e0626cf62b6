// ABOUTME: HTTP handler for the health endpoint
// ABOUTME: Reports service status and which optional dependencies are configured

package handlers

import (
	"net/http"
)

// Health returns API health status including configured dependencies.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":        "ok",
		"reasoner":      "configured",
		"config_source": "not_configured",
	}

	if h.cfg != nil && h.cfg.ConfigSourceConfigured() {
		resp["config_source"] = "configured"
	}

	h.writeJSON(w, http.StatusOK, resp)
}
