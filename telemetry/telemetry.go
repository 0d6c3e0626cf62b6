// ABOUTME: Telemetry emitter interface with log-backed and no-op implementations
// ABOUTME: Records are fire-and-forget; emission failures never reach callers

package telemetry

import (
	"log/slog"

	"github.com/dbimpact/db-impact-analyzer/models"
)

// AnalysisRecord captures one completed single analysis.
type AnalysisRecord struct {
	AnalysisID   string
	DBIdentifier string
	Scenario     string
	Severity     models.Severity
	SLAViolation bool
	RTOViolation bool
	RPOViolation bool
	DurationMS   int64
}

// BatchRecord captures one completed batch run, including the violation
// counts across its success items.
type BatchRecord struct {
	BatchID           string
	Scenario          string
	TotalCount        int
	CriticalCount     int
	HighCount         int
	MediumCount       int
	LowCount          int
	ErrorCount        int
	SLAViolationCount int
	RTOViolationCount int
	RPOViolationCount int
	DurationMS        int64
}

// WhatIfRecord captures one completed what-if comparison. DurationMS covers
// both the baseline and the modified analysis.
type WhatIfRecord struct {
	AnalysisID            string
	DBIdentifier          string
	Scenario              string
	SeverityImproved      bool
	RTOReductionMinutes   int
	SLAViolationPrevented bool
	RTOViolationPrevented bool
	RPOViolationPrevented bool
	DurationMS            int64
}

// Emitter is the capability interface for the telemetry sink. Implementations
// may fail; callers emit asynchronously and swallow errors locally.
type Emitter interface {
	EmitAnalysis(rec AnalysisRecord) error
	EmitBatch(rec BatchRecord) error
	EmitWhatIf(rec WhatIfRecord) error
}

// LogEmitter writes records to structured logs. It stands in for an external
// metrics backend in deployments without one.
type LogEmitter struct{}

func (LogEmitter) EmitAnalysis(rec AnalysisRecord) error {
	slog.Info("telemetry analysis",
		"analysis_id", rec.AnalysisID,
		"db", rec.DBIdentifier,
		"scenario", rec.Scenario,
		"severity", rec.Severity,
		"sla_violation", rec.SLAViolation,
		"rto_violation", rec.RTOViolation,
		"rpo_violation", rec.RPOViolation,
		"duration_ms", rec.DurationMS,
	)
	return nil
}

func (LogEmitter) EmitBatch(rec BatchRecord) error {
	slog.Info("telemetry batch",
		"batch_id", rec.BatchID,
		"scenario", rec.Scenario,
		"total", rec.TotalCount,
		"critical", rec.CriticalCount,
		"high", rec.HighCount,
		"medium", rec.MediumCount,
		"low", rec.LowCount,
		"errors", rec.ErrorCount,
		"sla_violations", rec.SLAViolationCount,
		"rto_violations", rec.RTOViolationCount,
		"rpo_violations", rec.RPOViolationCount,
		"duration_ms", rec.DurationMS,
	)
	return nil
}

func (LogEmitter) EmitWhatIf(rec WhatIfRecord) error {
	slog.Info("telemetry whatif",
		"analysis_id", rec.AnalysisID,
		"db", rec.DBIdentifier,
		"scenario", rec.Scenario,
		"severity_improved", rec.SeverityImproved,
		"rto_reduction_minutes", rec.RTOReductionMinutes,
		"sla_prevented", rec.SLAViolationPrevented,
		"rto_prevented", rec.RTOViolationPrevented,
		"rpo_prevented", rec.RPOViolationPrevented,
		"duration_ms", rec.DurationMS,
	)
	return nil
}

// NopEmitter discards all records. Useful for tests and the local CLI.
type NopEmitter struct{}

func (NopEmitter) EmitAnalysis(AnalysisRecord) error { return nil }
func (NopEmitter) EmitBatch(BatchRecord) error       { return nil }
func (NopEmitter) EmitWhatIf(WhatIfRecord) error     { return nil }

var (
	_ Emitter = LogEmitter{}
	_ Emitter = NopEmitter{}
)
