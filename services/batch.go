// ABOUTME: Batch orchestrator fanning analyses across a bounded worker pool
// ABOUTME: Per-item failures are isolated; results sort by severity, errors last

package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dbimpact/db-impact-analyzer/models"
	"github.com/dbimpact/db-impact-analyzer/scenarios"
	"github.com/dbimpact/db-impact-analyzer/telemetry"
)

// batchPoolSize caps concurrent analyses so a large batch cannot saturate
// the reasoning endpoint.
const batchPoolSize = 10

// AnalyzeBatch runs one scenario against many databases concurrently. One
// item failing never aborts the batch; the failure is recorded on that item
// and the rest proceed.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, req models.BatchRequest) (models.BatchResult, error) {
	if err := req.Validate(); err != nil {
		return models.BatchResult{}, err
	}
	// The scenario is shared across every item, so an unknown one fails the
	// whole request up front rather than surfacing N identical item errors.
	if !scenarios.Exists(req.Scenario) {
		return models.BatchResult{}, fmt.Errorf("%w: unknown scenario %q", models.ErrValidation, req.Scenario)
	}
	started := time.Now()

	var (
		mu    sync.Mutex
		items []models.BatchItem
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchPoolSize)
	for _, id := range req.DBIdentifiers {
		id := id
		g.Go(func() error {
			item := models.BatchItem{DBIdentifier: id}
			result, err := a.Analyze(gctx, models.AnalysisRequest{
				DBIdentifier: id,
				Scenario:     req.Scenario,
			})
			if err != nil {
				item.Status = "error"
				item.Error = err.Error()
			} else {
				item.Status = "success"
				item.Analysis = &result
			}
			mu.Lock()
			items = append(items, item)
			mu.Unlock()
			return nil
		})
	}
	// Workers never return errors; Wait only synchronizes completion.
	_ = g.Wait()

	sort.SliceStable(items, func(i, j int) bool {
		return itemSortRank(items[i]) < itemSortRank(items[j])
	})

	out := models.BatchResult{
		TotalCount: len(items),
		Results:    items,
	}
	var slaCount, rtoCount, rpoCount, errCount int
	for _, item := range items {
		if item.Analysis == nil {
			errCount++
			continue
		}
		switch item.Analysis.Severity {
		case models.SeverityCritical:
			out.CriticalCount++
		case models.SeverityHigh:
			out.HighCount++
		case models.SeverityMedium:
			out.MediumCount++
		case models.SeverityLow:
			out.LowCount++
		}
		if item.Analysis.SLAViolation {
			slaCount++
		}
		if item.Analysis.RTOViolation {
			rtoCount++
		}
		if item.Analysis.RPOViolation {
			rpoCount++
		}
	}

	a.emitAsync(func() error {
		return a.emitter.EmitBatch(telemetry.BatchRecord{
			BatchID:           uuid.New().String(),
			Scenario:          req.Scenario,
			TotalCount:        out.TotalCount,
			CriticalCount:     out.CriticalCount,
			HighCount:         out.HighCount,
			MediumCount:       out.MediumCount,
			LowCount:          out.LowCount,
			ErrorCount:        errCount,
			SLAViolationCount: slaCount,
			RTOViolationCount: rtoCount,
			RPOViolationCount: rpoCount,
			DurationMS:        time.Since(started).Milliseconds(),
		})
	})

	return out, nil
}

// itemSortRank orders batch output most severe first, with failed items after
// every successful one.
func itemSortRank(item models.BatchItem) int {
	if item.Analysis == nil {
		return models.Severity("").SortRank() + 1
	}
	return item.Analysis.Severity.SortRank()
}
