// ABOUTME: Declarative route table for API endpoints
// ABOUTME: Defines all routes with their HTTP methods and handlers

package handlers

import "net/http"

// Route defines an API endpoint with its HTTP method and handler.
type Route struct {
	Method  string           // HTTP method (GET, POST, etc.)
	Path    string           // URL path (e.g., "/api/v1/health")
	Handler http.HandlerFunc // Handler function
}

// Routes returns all API routes for registration.
func (h *Handler) Routes() []Route {
	return []Route{
		// Health & Status
		{Method: http.MethodGet, Path: "/api/v1/health", Handler: h.Health},

		// Scenario catalog
		{Method: http.MethodGet, Path: "/api/v1/scenarios", Handler: h.ListScenarios},

		// Analysis
		{Method: http.MethodPost, Path: "/api/v1/analyze", Handler: h.Analyze},
		{Method: http.MethodPost, Path: "/api/v1/analyze/single", Handler: h.AnalyzeSingle},
		{Method: http.MethodPost, Path: "/api/v1/analyze/batch", Handler: h.AnalyzeBatch},
		{Method: http.MethodPost, Path: "/api/v1/analyze/whatif", Handler: h.AnalyzeWhatIf},
	}
}
