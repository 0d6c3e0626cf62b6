// ABOUTME: HTTP handlers for single, batch, and what-if analysis endpoints
// ABOUTME: Includes the unified endpoint that routes by request shape

package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/dbimpact/db-impact-analyzer/models"
)

// AnalyzeSingle runs one analysis against the database's current
// configuration. Results are cached per identifier and scenario.
func (h *Handler) AnalyzeSingle(w http.ResponseWriter, r *http.Request) {
	var req models.AnalysisRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	h.runSingle(w, r, req)
}

func (h *Handler) runSingle(w http.ResponseWriter, r *http.Request, req models.AnalysisRequest) {
	if err := req.Validate(); err != nil {
		h.writeAnalysisError(w, err)
		return
	}

	key := fmt.Sprintf("analysis:%s:%s", req.DBIdentifier, req.Scenario)
	cached, err := h.cache.GetOrCompute(key, func() (any, error) {
		return h.engine.Analyze(r.Context(), req)
	})
	if err != nil {
		h.writeAnalysisError(w, err)
		return
	}

	result, ok := cached.(models.ImpactResult)
	if !ok {
		slog.Error("Cache returned unexpected type", "key", key)
		h.writeError(w, "Internal error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// AnalyzeBatch runs one scenario against many databases. Batch results are
// not cached; the per-item analyses go through the engine directly.
func (h *Handler) AnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	var req models.BatchRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	h.runBatch(w, r, req)
}

func (h *Handler) runBatch(w http.ResponseWriter, r *http.Request, req models.BatchRequest) {
	result, err := h.engine.AnalyzeBatch(r.Context(), req)
	if err != nil {
		h.writeAnalysisError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// AnalyzeWhatIf runs a baseline-vs-modified comparison. Never cached: the
// overrides make each request unique.
func (h *Handler) AnalyzeWhatIf(w http.ResponseWriter, r *http.Request) {
	var req models.WhatIfRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	h.runWhatIf(w, r, req)
}

func (h *Handler) runWhatIf(w http.ResponseWriter, r *http.Request, req models.WhatIfRequest) {
	result, err := h.engine.WhatIf(r.Context(), req)
	if err != nil {
		h.writeAnalysisError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// analyzeProbe holds every field any analysis request shape can carry, so
// one decode can discriminate between them.
type analyzeProbe struct {
	DBIdentifier    string         `json:"db_identifier"`
	DBIdentifiers   []string       `json:"db_identifiers"`
	Scenario        string         `json:"scenario"`
	ConfigOverrides map[string]any `json:"config_overrides"`
}

// Analyze is the unified entrypoint. The request shape picks the operation:
// db_identifiers selects batch, config_overrides selects what-if, and a bare
// db_identifier selects single analysis.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeError(w, "Request body too large", http.StatusBadRequest)
		return
	}

	var probe analyzeProbe
	if err := json.Unmarshal(body, &probe); err != nil {
		h.writeError(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	switch {
	case probe.DBIdentifiers != nil:
		h.runBatch(w, r, models.BatchRequest{
			DBIdentifiers: probe.DBIdentifiers,
			Scenario:      probe.Scenario,
		})
	case probe.ConfigOverrides != nil:
		h.runWhatIf(w, r, models.WhatIfRequest{
			DBIdentifier:    probe.DBIdentifier,
			Scenario:        probe.Scenario,
			ConfigOverrides: probe.ConfigOverrides,
		})
	default:
		h.runSingle(w, r, models.AnalysisRequest{
			DBIdentifier: probe.DBIdentifier,
			Scenario:     probe.Scenario,
		})
	}
}
