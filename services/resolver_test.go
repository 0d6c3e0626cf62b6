// ABOUTME: Tests for the config resolver
// ABOUTME: Covers seed directory hits, isolation of returned copies, and misses

package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dbimpact/db-impact-analyzer/models"
)

// fakeSource records describe calls and returns a canned response.
type fakeSource struct {
	cfg   models.DatabaseConfig
	err   error
	calls int
}

func (f *fakeSource) Describe(ctx context.Context, identifier string) (models.DatabaseConfig, error) {
	f.calls++
	return f.cfg, f.err
}

func TestResolve_SeedHit(t *testing.T) {
	source := &fakeSource{}
	r := NewResolver(source)

	cfg, err := r.Resolve(context.Background(), "prod-orders-db-01")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Engine != "mysql" || cfg.MultiAZ {
		t.Errorf("Unexpected seed config: engine=%s multi_az=%t", cfg.Engine, cfg.MultiAZ)
	}
	if source.calls != 0 {
		t.Errorf("Seed hit should not reach the external source, got %d calls", source.calls)
	}
}

func TestResolve_SeedReturnsIndependentCopy(t *testing.T) {
	r := NewResolver(nil)

	first, err := r.Resolve(context.Background(), "prod-users-db")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	first.MultiAZ = false
	first.ReadReplicas[0] = "mutated"

	second, err := r.Resolve(context.Background(), "prod-users-db")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !second.MultiAZ {
		t.Error("Mutation of a resolved config leaked back into the seed directory")
	}
	if second.ReadReplicas[0] != "prod-users-db-replica-1" {
		t.Error("Mutation of resolved replica slice leaked back into the seed directory")
	}
}

func TestResolve_MissWithoutSource(t *testing.T) {
	r := NewResolver(nil)

	_, err := r.Resolve(context.Background(), "unknown-db")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestResolve_MissFallsThroughToSource(t *testing.T) {
	source := &fakeSource{cfg: models.DatabaseConfig{
		Identifier: "remote-db",
		Engine:     "postgres",
	}}
	r := NewResolver(source)

	cfg, err := r.Resolve(context.Background(), "remote-db")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.Engine != "postgres" {
		t.Errorf("Expected source config, got engine %s", cfg.Engine)
	}
	if source.calls != 1 {
		t.Errorf("Expected 1 source call, got %d", source.calls)
	}
}

func TestResolve_SourceErrorKeepsTaxonomy(t *testing.T) {
	source := &fakeSource{err: models.ErrPermissionDenied}
	r := NewResolver(source)

	_, err := r.Resolve(context.Background(), "remote-db")
	if !errors.Is(err, models.ErrPermissionDenied) {
		t.Errorf("Expected ErrPermissionDenied to survive wrapping, got %v", err)
	}
}
