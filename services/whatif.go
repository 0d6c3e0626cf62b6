// ABOUTME: What-if orchestrator comparing baseline and hypothetical configurations
// ABOUTME: Resolves the baseline once and computes an improvement summary

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dbimpact/db-impact-analyzer/models"
	"github.com/dbimpact/db-impact-analyzer/scenarios"
	"github.com/dbimpact/db-impact-analyzer/telemetry"
)

// WhatIf runs the scenario twice, once against the database's current
// configuration and once against that configuration with the overrides
// applied, and summarizes the difference. The baseline is resolved exactly
// once; both analyses see the same snapshot.
func (a *Analyzer) WhatIf(ctx context.Context, req models.WhatIfRequest) (models.WhatIfResult, error) {
	if err := req.Validate(); err != nil {
		return models.WhatIfResult{}, err
	}
	// Check the scenario before touching the config source so a bad request
	// never costs a describe call.
	if !scenarios.Exists(req.Scenario) {
		return models.WhatIfResult{}, fmt.Errorf("%w: unknown scenario %q", models.ErrValidation, req.Scenario)
	}
	started := time.Now()

	baseline, err := a.resolver.Resolve(ctx, req.DBIdentifier)
	if err != nil {
		return models.WhatIfResult{}, err
	}

	modified, err := baseline.WithOverrides(req.ConfigOverrides)
	if err != nil {
		return models.WhatIfResult{}, err
	}

	analysisReq := models.AnalysisRequest{
		DBIdentifier: req.DBIdentifier,
		Scenario:     req.Scenario,
	}

	baseResult, err := a.analyze(ctx, analysisReq, &baseline, false, nil)
	if err != nil {
		return models.WhatIfResult{}, err
	}

	whatIfResult, err := a.analyze(ctx, analysisReq, &modified, true, &baseline)
	if err != nil {
		return models.WhatIfResult{}, err
	}

	summary := summarizeImprovement(baseResult, whatIfResult)

	a.emitAsync(func() error {
		return a.emitter.EmitWhatIf(telemetry.WhatIfRecord{
			AnalysisID:            uuid.New().String(),
			DBIdentifier:          req.DBIdentifier,
			Scenario:              req.Scenario,
			SeverityImproved:      summary.SeverityImproved,
			RTOReductionMinutes:   summary.RTOReductionMinutes,
			SLAViolationPrevented: summary.SLAViolationPrevented,
			RTOViolationPrevented: summary.RTOViolationPrevented,
			RPOViolationPrevented: summary.RPOViolationPrevented,
			DurationMS:            time.Since(started).Milliseconds(),
		})
	})

	return models.WhatIfResult{
		BaselineAnalysis:   baseResult,
		WhatIfAnalysis:     whatIfResult,
		ImprovementSummary: summary,
	}, nil
}

// summarizeImprovement derives the comparison fields. RTOReductionMinutes is
// baseline minus modified and goes negative when the change makes recovery
// slower. A violation counts as prevented only when the baseline had it and
// the modified run does not.
func summarizeImprovement(baseline, modified models.ImpactResult) models.ImprovementSummary {
	return models.ImprovementSummary{
		SeverityImproved:      modified.Severity.Rank() < baseline.Severity.Rank(),
		SeverityChange:        fmt.Sprintf("%s -> %s", baseline.Severity, modified.Severity),
		RTOReductionMinutes:   baseline.ExpectedOutageMinutes - modified.ExpectedOutageMinutes,
		SLAViolationPrevented: baseline.SLAViolation && !modified.SLAViolation,
		RTOViolationPrevented: baseline.RTOViolation && !modified.RTOViolation,
		RPOViolationPrevented: baseline.RPOViolation && !modified.RPOViolation,
	}
}
