// ABOUTME: Config resolver with in-memory seed directory and external describe fallback
// ABOUTME: Normalizes source data and maps source failures onto the error taxonomy

package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dbimpact/db-impact-analyzer/models"
)

// ConfigSource is the boundary to the external database-description API.
// Implementations map their own error taxonomy onto models.ErrNotFound,
// models.ErrPermissionDenied, and models.ErrTimeout.
type ConfigSource interface {
	Describe(ctx context.Context, identifier string) (models.DatabaseConfig, error)
}

// Resolver produces a normalized DatabaseConfig for an identifier. A fast
// in-memory seed directory is consulted first; on miss, one bounded describe
// call goes to the external source. No retry at this layer.
type Resolver struct {
	seeds  map[string]models.DatabaseConfig
	source ConfigSource
}

// NewResolver creates a resolver over the built-in seed directory and an
// optional external source. A nil source limits resolution to seeds.
func NewResolver(source ConfigSource) *Resolver {
	return &Resolver{
		seeds:  seedDirectory(),
		source: source,
	}
}

// Resolve returns the configuration snapshot for identifier, failing with
// ErrNotFound, ErrPermissionDenied, or ErrTimeout.
func (r *Resolver) Resolve(ctx context.Context, identifier string) (models.DatabaseConfig, error) {
	if cfg, ok := r.seeds[identifier]; ok {
		slog.Debug("Config resolved from seed directory", "db", identifier)
		return cfg.Clone(), nil
	}

	if r.source == nil {
		return models.DatabaseConfig{}, fmt.Errorf("%w: database %q (no external config source configured)", models.ErrNotFound, identifier)
	}

	cfg, err := r.source.Describe(ctx, identifier)
	if err != nil {
		return models.DatabaseConfig{}, fmt.Errorf("describe %q: %w", identifier, err)
	}
	slog.Debug("Config resolved from external source", "db", identifier)
	return cfg, nil
}

// seedDirectory returns the built-in fixtures used for local evaluation and
// demos, keeping those identifiers off the external source entirely.
func seedDirectory() map[string]models.DatabaseConfig {
	return map[string]models.DatabaseConfig{
		"prod-orders-db-01": {
			Identifier:          "prod-orders-db-01",
			Engine:              "mysql",
			EngineVersion:       "8.0.35",
			InstanceClass:       "db.m5.large",
			MultiAZ:             false,
			BackupRetentionDays: 1,
			PITREnabled:         false,
			AllocatedStorage:    100,
			MaxAllocatedStorage: 100,
			ReadReplicas:        []string{},
			StorageEncrypted:    true,
		},
		"prod-users-db": {
			Identifier:          "prod-users-db",
			Engine:              "postgres",
			EngineVersion:       "15.4",
			InstanceClass:       "db.m5.xlarge",
			MultiAZ:             true,
			BackupRetentionDays: 7,
			PITREnabled:         true,
			AllocatedStorage:    200,
			MaxAllocatedStorage: 500,
			ReadReplicas:        []string{"prod-users-db-replica-1"},
			StorageEncrypted:    true,
		},
	}
}
