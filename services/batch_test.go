// ABOUTME: Tests for the batch orchestrator
// ABOUTME: Covers per-item isolation, severity ordering, and aggregate counts

package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dbimpact/db-impact-analyzer/models"
)

func TestAnalyzeBatch_MixedResults(t *testing.T) {
	// prod-orders-db-01 and prod-users-db resolve from seeds; the third
	// identifier does not exist anywhere.
	reasoner := &stubReasoner{respond: func(prompt string) (string, error) {
		if strings.Contains(prompt, "prod-users-db") {
			return severityOutput("LOW", 4, false), nil
		}
		return severityOutput("CRITICAL", 90, true), nil
	}}
	a := newTestAnalyzer(reasoner)

	result, err := a.AnalyzeBatch(context.Background(), models.BatchRequest{
		DBIdentifiers: []string{"prod-users-db", "missing-db", "prod-orders-db-01"},
		Scenario:      "primary_db_failure",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.TotalCount != 3 {
		t.Fatalf("Expected total_count 3, got %d", result.TotalCount)
	}
	if result.CriticalCount != 1 || result.LowCount != 1 {
		t.Errorf("Unexpected counts: critical=%d low=%d", result.CriticalCount, result.LowCount)
	}

	// Ordering: CRITICAL first, then LOW, error last
	if result.Results[0].DBIdentifier != "prod-orders-db-01" {
		t.Errorf("Expected CRITICAL item first, got %s", result.Results[0].DBIdentifier)
	}
	if result.Results[1].DBIdentifier != "prod-users-db" {
		t.Errorf("Expected LOW item second, got %s", result.Results[1].DBIdentifier)
	}
	last := result.Results[2]
	if last.DBIdentifier != "missing-db" || last.Status != "error" {
		t.Errorf("Expected error item last, got %+v", last)
	}
	if last.Analysis != nil || last.Error == "" {
		t.Errorf("Error item should carry a message and no analysis: %+v", last)
	}
}

func TestAnalyzeBatch_SizeBounds(t *testing.T) {
	a := newTestAnalyzer(&stubReasoner{respond: func(string) (string, error) {
		return criticalOutput(), nil
	}})

	_, err := a.AnalyzeBatch(context.Background(), models.BatchRequest{
		DBIdentifiers: nil,
		Scenario:      "primary_db_failure",
	})
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("Empty batch: expected ErrValidation, got %v", err)
	}

	tooMany := make([]string, models.MaxBatchSize+1)
	for i := range tooMany {
		tooMany[i] = "prod-orders-db-01"
	}
	_, err = a.AnalyzeBatch(context.Background(), models.BatchRequest{
		DBIdentifiers: tooMany,
		Scenario:      "primary_db_failure",
	})
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("Oversized batch: expected ErrValidation, got %v", err)
	}
}

func TestAnalyzeBatch_UnknownScenarioFailsValidation(t *testing.T) {
	reasoner := &stubReasoner{respond: func(string) (string, error) {
		return criticalOutput(), nil
	}}
	a := newTestAnalyzer(reasoner)

	_, err := a.AnalyzeBatch(context.Background(), models.BatchRequest{
		DBIdentifiers: []string{"prod-orders-db-01", "prod-users-db"},
		Scenario:      "meteor_strike",
	})
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("Expected ErrValidation before dispatch, got %v", err)
	}
	if n := len(reasoner.seen()); n != 0 {
		t.Errorf("Expected no analyses dispatched, got %d", n)
	}
}

func TestAnalyzeBatch_InvalidIdentifierIsolated(t *testing.T) {
	a := newTestAnalyzer(&stubReasoner{respond: func(string) (string, error) {
		return criticalOutput(), nil
	}})

	result, err := a.AnalyzeBatch(context.Background(), models.BatchRequest{
		DBIdentifiers: []string{"prod-orders-db-01", "_bad_identifier_"},
		Scenario:      "primary_db_failure",
	})
	if err != nil {
		t.Fatalf("Expected batch to complete, got %v", err)
	}

	statuses := map[string]string{}
	for _, item := range result.Results {
		statuses[item.DBIdentifier] = item.Status
	}
	if statuses["prod-orders-db-01"] != "success" {
		t.Error("Valid identifier should succeed despite a bad sibling")
	}
	if statuses["_bad_identifier_"] != "error" {
		t.Error("Invalid identifier should produce an error item")
	}
}
