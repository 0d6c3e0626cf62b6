// ABOUTME: Core analysis engine orchestrating resolve, prompt, infer, parse
// ABOUTME: Telemetry records are emitted asynchronously after each success

package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dbimpact/db-impact-analyzer/models"
	"github.com/dbimpact/db-impact-analyzer/scenarios"
	"github.com/dbimpact/db-impact-analyzer/telemetry"
)

// Analyzer runs impact analyses. All dependencies are injected so tests can
// substitute doubles for the reasoner and the config source.
type Analyzer struct {
	resolver *Resolver
	docs     ContextStore
	reasoner Reasoner
	emitter  telemetry.Emitter
}

func NewAnalyzer(resolver *Resolver, docs ContextStore, reasoner Reasoner, emitter telemetry.Emitter) *Analyzer {
	if emitter == nil {
		emitter = telemetry.NopEmitter{}
	}
	return &Analyzer{
		resolver: resolver,
		docs:     docs,
		reasoner: reasoner,
		emitter:  emitter,
	}
}

// Analyze runs one analysis against the database's current configuration.
func (a *Analyzer) Analyze(ctx context.Context, req models.AnalysisRequest) (models.ImpactResult, error) {
	if err := req.Validate(); err != nil {
		return models.ImpactResult{}, err
	}
	return a.analyze(ctx, req, nil, false, nil)
}

// analyze is the shared pipeline. A non-nil supplied config skips resolution,
// which is how what-if runs an analysis against a hypothetical state. When
// whatIf is true, baseline feeds the prompt's configuration-delta block.
func (a *Analyzer) analyze(
	ctx context.Context,
	req models.AnalysisRequest,
	supplied *models.DatabaseConfig,
	whatIf bool,
	baseline *models.DatabaseConfig,
) (models.ImpactResult, error) {
	started := time.Now()

	scenario, err := scenarios.Lookup(req.Scenario)
	if err != nil {
		return models.ImpactResult{}, fmt.Errorf("%w: unknown scenario %q", models.ErrValidation, req.Scenario)
	}

	var cfg models.DatabaseConfig
	if supplied != nil {
		cfg = *supplied
	} else {
		cfg, err = a.resolver.Resolve(ctx, req.DBIdentifier)
		if err != nil {
			return models.ImpactResult{}, err
		}
	}

	businessContext, err := a.docs.LoadDocuments()
	if err != nil {
		return models.ImpactResult{}, fmt.Errorf("%w: %v", models.ErrServiceUnavailable, err)
	}

	prompt := BuildPrompt(req, cfg, scenario, businessContext, whatIf, baseline)

	raw, err := a.reasoner.Infer(ctx, prompt)
	if err != nil {
		return models.ImpactResult{}, err
	}

	result, err := ParseImpact(raw)
	if err != nil {
		return models.ImpactResult{}, err
	}

	a.emitAsync(func() error {
		return a.emitter.EmitAnalysis(telemetry.AnalysisRecord{
			AnalysisID:   uuid.New().String(),
			DBIdentifier: req.DBIdentifier,
			Scenario:     req.Scenario,
			Severity:     result.Severity,
			SLAViolation: result.SLAViolation,
			RTOViolation: result.RTOViolation,
			RPOViolation: result.RPOViolation,
			DurationMS:   time.Since(started).Milliseconds(),
		})
	})

	return result, nil
}

// emitAsync runs the emission off the request path. Emission failures are
// logged and dropped; they never affect the analysis outcome.
func (a *Analyzer) emitAsync(emit func() error) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Warn("Telemetry emitter panicked", "panic", r)
			}
		}()
		if err := emit(); err != nil {
			slog.Warn("Telemetry emission failed", "error", err)
		}
	}()
}
