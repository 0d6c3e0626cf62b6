// ABOUTME: HTTP handlers for impact analyzer API endpoints
// ABOUTME: Provides the shared handler state and JSON response helpers

package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dbimpact/db-impact-analyzer/cache"
	"github.com/dbimpact/db-impact-analyzer/config"
	"github.com/dbimpact/db-impact-analyzer/models"
)

// maxRequestBodySize limits JSON request bodies to 1MB to prevent DOS attacks
const maxRequestBodySize = 1 << 20 // 1MB

// Engine runs impact analyses. *services.Analyzer is the production
// implementation; tests substitute stubs.
type Engine interface {
	Analyze(ctx context.Context, req models.AnalysisRequest) (models.ImpactResult, error)
	AnalyzeBatch(ctx context.Context, req models.BatchRequest) (models.BatchResult, error)
	WhatIf(ctx context.Context, req models.WhatIfRequest) (models.WhatIfResult, error)
}

type Handler struct {
	cfg    *config.Config
	cache  *cache.Cache
	engine Engine
}

func NewHandler(cfg *config.Config, cache *cache.Cache, engine Engine) *Handler {
	return &Handler{
		cfg:    cfg,
		cache:  cache,
		engine: engine,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	h.writeJSON(w, code, models.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// writeAnalysisError maps the failure taxonomy onto HTTP statuses and keeps
// the machine-readable kind in the envelope.
func (h *Handler) writeAnalysisError(w http.ResponseWriter, err error) {
	kind := models.ErrorKind(err)
	code := http.StatusInternalServerError
	switch kind {
	case "validation":
		code = http.StatusBadRequest
	case "not_found":
		code = http.StatusNotFound
	case "permission_denied":
		code = http.StatusUnauthorized
	case "rate_limited":
		code = http.StatusTooManyRequests
	}
	h.writeJSON(w, code, models.ErrorResponse{
		Error: err.Error(),
		Kind:  kind,
		Code:  code,
	})
}

// decodeBody decodes a JSON request body with the size cap applied. A false
// return means the error response has already been written.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if err.Error() == "http: request body too large" {
			h.writeError(w, "Request body too large", http.StatusBadRequest)
			return false
		}
		h.writeError(w, "Invalid JSON", http.StatusBadRequest)
		return false
	}
	return true
}
