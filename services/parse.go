// ABOUTME: Strict parser for reasoning model output
// ABOUTME: Extracts the JSON object and validates every required field

package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dbimpact/db-impact-analyzer/models"
)

// impactWire mirrors the required response schema with pointer fields so a
// missing key is distinguishable from a zero value.
type impactWire struct {
	SLAViolation   *bool    `json:"sla_violation"`
	RTOViolation   *bool    `json:"rto_violation"`
	RPOViolation   *bool    `json:"rpo_violation"`
	OutageMinutes  *int     `json:"expected_outage_time_minutes"`
	Severity       *string  `json:"business_severity"`
	Why            []string `json:"why"`
	Recommendation []string `json:"recommendations"`
	Confidence     *float64 `json:"confidence"`
}

// ParseImpact extracts and validates the impact assessment from raw model
// output. Models sometimes wrap the JSON in prose or code fences, so the
// parse works on the substring between the first '{' and the last '}'.
func ParseImpact(raw string) (models.ImpactResult, error) {
	var result models.ImpactResult

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return result, fmt.Errorf("no JSON object found in model output: %w", models.ErrMalformedResponse)
	}

	var wire impactWire
	if err := json.Unmarshal([]byte(raw[start:end+1]), &wire); err != nil {
		return result, fmt.Errorf("decode model output: %w", models.ErrMalformedResponse)
	}

	missing := missingFields(wire)
	if len(missing) > 0 {
		return result, fmt.Errorf("model output missing required fields %v: %w", missing, models.ErrMalformedResponse)
	}

	severity := models.Severity(*wire.Severity)
	if !severity.Valid() {
		return result, fmt.Errorf("invalid business_severity %q: %w", *wire.Severity, models.ErrMalformedResponse)
	}
	if *wire.OutageMinutes < 0 {
		return result, fmt.Errorf("negative expected_outage_time_minutes %d: %w", *wire.OutageMinutes, models.ErrMalformedResponse)
	}
	if *wire.Confidence < 0 || *wire.Confidence > 1 {
		return result, fmt.Errorf("confidence %v out of range [0,1]: %w", *wire.Confidence, models.ErrMalformedResponse)
	}

	result = models.ImpactResult{
		SLAViolation:          *wire.SLAViolation,
		RTOViolation:          *wire.RTOViolation,
		RPOViolation:          *wire.RPOViolation,
		ExpectedOutageMinutes: *wire.OutageMinutes,
		Severity:              severity,
		Why:                   wire.Why,
		Recommendations:       wire.Recommendation,
		Confidence:            *wire.Confidence,
	}
	return result, nil
}

func missingFields(wire impactWire) []string {
	var missing []string
	if wire.SLAViolation == nil {
		missing = append(missing, "sla_violation")
	}
	if wire.RTOViolation == nil {
		missing = append(missing, "rto_violation")
	}
	if wire.RPOViolation == nil {
		missing = append(missing, "rpo_violation")
	}
	if wire.OutageMinutes == nil {
		missing = append(missing, "expected_outage_time_minutes")
	}
	if wire.Severity == nil {
		missing = append(missing, "business_severity")
	}
	if wire.Why == nil {
		missing = append(missing, "why")
	}
	if wire.Recommendation == nil {
		missing = append(missing, "recommendations")
	}
	if wire.Confidence == nil {
		missing = append(missing, "confidence")
	}
	return missing
}
