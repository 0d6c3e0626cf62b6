// ABOUTME: HTTP handler for the scenario catalog endpoint
// ABOUTME: Lists the registered failure scenarios with their summaries

package handlers

import (
	"net/http"

	"github.com/dbimpact/db-impact-analyzer/scenarios"
)

// ListScenarios returns the scenario catalog.
// HTTP method validation handled by Go 1.22+ router pattern matching.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"scenarios": scenarios.List(),
	})
}
