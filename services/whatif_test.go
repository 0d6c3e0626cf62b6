// ABOUTME: Tests for the what-if orchestrator
// ABOUTME: Covers override overlay, improvement summary, and single baseline resolution

package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dbimpact/db-impact-analyzer/models"
	"github.com/dbimpact/db-impact-analyzer/telemetry"
)

// whatIfReasoner answers CRITICAL for the baseline prompt and LOW for the
// hypothetical one.
func whatIfReasoner() *stubReasoner {
	return &stubReasoner{respond: func(prompt string) (string, error) {
		if strings.Contains(prompt, "WHAT-IF ANALYSIS") {
			return severityOutput("LOW", 3, false), nil
		}
		return severityOutput("CRITICAL", 90, true), nil
	}}
}

func TestWhatIf_ImprovementSummary(t *testing.T) {
	reasoner := whatIfReasoner()
	a := newTestAnalyzer(reasoner)

	result, err := a.WhatIf(context.Background(), models.WhatIfRequest{
		DBIdentifier:    "prod-orders-db-01",
		Scenario:        "primary_db_failure",
		ConfigOverrides: map[string]any{"multi_az": true},
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.BaselineAnalysis.Severity != models.SeverityCritical {
		t.Errorf("Baseline severity = %s, want CRITICAL", result.BaselineAnalysis.Severity)
	}
	if result.WhatIfAnalysis.Severity != models.SeverityLow {
		t.Errorf("What-if severity = %s, want LOW", result.WhatIfAnalysis.Severity)
	}

	summary := result.ImprovementSummary
	if !summary.SeverityImproved {
		t.Error("Expected severity_improved true")
	}
	if summary.SeverityChange != "CRITICAL -> LOW" {
		t.Errorf("severity_change = %q, want %q", summary.SeverityChange, "CRITICAL -> LOW")
	}
	if summary.RTOReductionMinutes != 87 {
		t.Errorf("rto_reduction_minutes = %d, want 87", summary.RTOReductionMinutes)
	}
	if !summary.SLAViolationPrevented || !summary.RTOViolationPrevented || !summary.RPOViolationPrevented {
		t.Error("Expected all violations prevented")
	}
}

func TestWhatIf_PromptsSeeCorrectConfigs(t *testing.T) {
	reasoner := whatIfReasoner()
	a := newTestAnalyzer(reasoner)

	_, err := a.WhatIf(context.Background(), models.WhatIfRequest{
		DBIdentifier:    "prod-orders-db-01",
		Scenario:        "primary_db_failure",
		ConfigOverrides: map[string]any{"multi_az": true},
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	prompts := reasoner.seen()
	if len(prompts) != 2 {
		t.Fatalf("Expected 2 inferences, got %d", len(prompts))
	}

	baselinePrompt, whatIfPrompt := prompts[0], prompts[1]
	if !strings.Contains(baselinePrompt, "Multi-AZ: false") {
		t.Error("Baseline prompt should show multi_az false")
	}
	if strings.Contains(baselinePrompt, "WHAT-IF ANALYSIS") {
		t.Error("Baseline prompt should not carry a delta block")
	}
	if !strings.Contains(whatIfPrompt, "Multi-AZ: true") {
		t.Error("What-if prompt should show multi_az true")
	}
	if !strings.Contains(whatIfPrompt, "multi_az: false -> true") {
		t.Error("What-if prompt should list the override delta")
	}
	// Untouched fields carry over from the baseline
	if !strings.Contains(whatIfPrompt, "Backup Retention: 1 days") {
		t.Error("What-if prompt should keep non-overridden baseline fields")
	}
}

func TestWhatIf_RegressionYieldsNegativeReduction(t *testing.T) {
	// The hypothetical makes things worse: baseline 10 minutes, modified 45.
	reasoner := &stubReasoner{respond: func(prompt string) (string, error) {
		if strings.Contains(prompt, "WHAT-IF ANALYSIS") {
			return severityOutput("HIGH", 45, true), nil
		}
		return severityOutput("MEDIUM", 10, false), nil
	}}
	a := newTestAnalyzer(reasoner)

	result, err := a.WhatIf(context.Background(), models.WhatIfRequest{
		DBIdentifier:    "prod-users-db",
		Scenario:        "primary_db_failure",
		ConfigOverrides: map[string]any{"multi_az": false},
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	summary := result.ImprovementSummary
	if summary.SeverityImproved {
		t.Error("Expected severity_improved false for a regression")
	}
	if summary.SeverityChange != "MEDIUM -> HIGH" {
		t.Errorf("severity_change = %q, want %q", summary.SeverityChange, "MEDIUM -> HIGH")
	}
	if summary.RTOReductionMinutes != -35 {
		t.Errorf("rto_reduction_minutes = %d, want -35", summary.RTOReductionMinutes)
	}
	if summary.SLAViolationPrevented {
		t.Error("A newly introduced violation is not prevention")
	}
}

func TestWhatIf_BaselineResolvedOnce(t *testing.T) {
	source := &fakeSource{cfg: models.DatabaseConfig{
		Identifier:          "remote-db",
		Engine:              "postgres",
		InstanceClass:       "db.m5.large",
		BackupRetentionDays: 7,
		PITREnabled:         true,
		AllocatedStorage:    100,
		MaxAllocatedStorage: 100,
		ReadReplicas:        []string{},
	}}
	a := NewAnalyzer(NewResolver(source), stubDocs{text: "docs"}, whatIfReasoner(), telemetry.NopEmitter{})

	_, err := a.WhatIf(context.Background(), models.WhatIfRequest{
		DBIdentifier:    "remote-db",
		Scenario:        "primary_db_failure",
		ConfigOverrides: map[string]any{"multi_az": true},
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if source.calls != 1 {
		t.Errorf("Expected exactly 1 describe call, got %d", source.calls)
	}
}

func TestWhatIf_UnknownScenarioSkipsResolve(t *testing.T) {
	source := &fakeSource{}
	a := NewAnalyzer(NewResolver(source), stubDocs{text: "docs"}, whatIfReasoner(), telemetry.NopEmitter{})

	_, err := a.WhatIf(context.Background(), models.WhatIfRequest{
		DBIdentifier:    "remote-db",
		Scenario:        "meteor_strike",
		ConfigOverrides: map[string]any{"multi_az": true},
	})
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("Expected ErrValidation, got %v", err)
	}
	if source.calls != 0 {
		t.Errorf("Expected no describe calls for an unknown scenario, got %d", source.calls)
	}
}

func TestWhatIf_DisallowedOverride(t *testing.T) {
	a := newTestAnalyzer(whatIfReasoner())

	_, err := a.WhatIf(context.Background(), models.WhatIfRequest{
		DBIdentifier:    "prod-orders-db-01",
		Scenario:        "primary_db_failure",
		ConfigOverrides: map[string]any{"engine": "oracle"},
	})
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("Expected ErrValidation for disallowed override, got %v", err)
	}
}

func TestWhatIf_EmptyOverrides(t *testing.T) {
	a := newTestAnalyzer(whatIfReasoner())

	_, err := a.WhatIf(context.Background(), models.WhatIfRequest{
		DBIdentifier:    "prod-orders-db-01",
		Scenario:        "primary_db_failure",
		ConfigOverrides: map[string]any{},
	})
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("Expected ErrValidation for empty overrides, got %v", err)
	}
}
