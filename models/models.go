// ABOUTME: Data models for database configs, analysis requests, and impact results
// ABOUTME: JSON-serializable structures shared across resolver, engine, and API layers

package models

import (
	"fmt"
	"regexp"
	"sort"
)

// identifierPattern matches managed database identifiers: 1-63 chars,
// alphanumeric and hyphens, must start with a letter.
var identifierPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9-]{0,62}$`)

// MaxBatchSize is the largest number of identifiers accepted in one batch.
const MaxBatchSize = 50

// DatabaseConfig is a normalized snapshot of one managed database instance.
// Values are never mutated in place; a what-if config is a new value derived
// via WithOverrides on a copy of the baseline.
type DatabaseConfig struct {
	Identifier              string   `json:"identifier"`
	Engine                  string   `json:"engine"`
	EngineVersion           string   `json:"engine_version,omitempty"`
	InstanceClass           string   `json:"instance_class"`
	MultiAZ                 bool     `json:"multi_az"`
	BackupRetentionDays     int      `json:"backup_retention_days"`
	PITREnabled             bool     `json:"pitr_enabled"`
	AllocatedStorage        int      `json:"allocated_storage"`
	MaxAllocatedStorage     int      `json:"max_allocated_storage"`
	ReadReplicas            []string `json:"read_replicas"`
	StorageEncrypted        bool     `json:"storage_encrypted"`
	AutoMinorVersionUpgrade bool     `json:"auto_minor_version_upgrade"`
}

// Clone returns a deep copy, so overlays never alias the baseline's slices.
func (c DatabaseConfig) Clone() DatabaseConfig {
	out := c
	if c.ReadReplicas != nil {
		out.ReadReplicas = append([]string(nil), c.ReadReplicas...)
	}
	return out
}

// mutableFields is the allow-list of config fields a what-if request may override.
var mutableFields = map[string]bool{
	"multi_az":                   true,
	"backup_retention_days":      true,
	"storage_encrypted":          true,
	"instance_class":             true,
	"allocated_storage":          true,
	"max_allocated_storage":      true,
	"read_replicas":              true,
	"auto_minor_version_upgrade": true,
}

// MutableFields returns the sorted override allow-list for error messages and docs.
func MutableFields() []string {
	fields := make([]string, 0, len(mutableFields))
	for f := range mutableFields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// ValidateOverrides checks that overrides is non-empty and every key is on the
// allow-list. Returns ErrValidation wrapped with the offending key.
func ValidateOverrides(overrides map[string]any) error {
	if len(overrides) == 0 {
		return fmt.Errorf("%w: config_overrides must not be empty", ErrValidation)
	}
	for key := range overrides {
		if !mutableFields[key] {
			return fmt.Errorf("%w: field %q is not overridable (allowed: %v)", ErrValidation, key, MutableFields())
		}
	}
	return nil
}

// WithOverrides returns a new config derived by overlaying overrides on a copy
// of the receiver. Fields not mentioned retain their baseline values. Override
// keys must already have passed ValidateOverrides; values of the wrong type
// fail with ErrValidation. Numeric values accept both int and float64 since
// JSON decoding produces float64.
func (c DatabaseConfig) WithOverrides(overrides map[string]any) (DatabaseConfig, error) {
	out := c.Clone()
	for key, val := range overrides {
		switch key {
		case "multi_az":
			b, ok := val.(bool)
			if !ok {
				return DatabaseConfig{}, typeError(key, "bool", val)
			}
			out.MultiAZ = b
		case "storage_encrypted":
			b, ok := val.(bool)
			if !ok {
				return DatabaseConfig{}, typeError(key, "bool", val)
			}
			out.StorageEncrypted = b
		case "auto_minor_version_upgrade":
			b, ok := val.(bool)
			if !ok {
				return DatabaseConfig{}, typeError(key, "bool", val)
			}
			out.AutoMinorVersionUpgrade = b
		case "instance_class":
			s, ok := val.(string)
			if !ok {
				return DatabaseConfig{}, typeError(key, "string", val)
			}
			out.InstanceClass = s
		case "backup_retention_days":
			n, err := asInt(key, val)
			if err != nil {
				return DatabaseConfig{}, err
			}
			out.BackupRetentionDays = n
		case "allocated_storage":
			n, err := asInt(key, val)
			if err != nil {
				return DatabaseConfig{}, err
			}
			out.AllocatedStorage = n
		case "max_allocated_storage":
			n, err := asInt(key, val)
			if err != nil {
				return DatabaseConfig{}, err
			}
			out.MaxAllocatedStorage = n
		case "read_replicas":
			replicas, err := asStringSlice(key, val)
			if err != nil {
				return DatabaseConfig{}, err
			}
			out.ReadReplicas = replicas
		default:
			return DatabaseConfig{}, fmt.Errorf("%w: field %q is not overridable", ErrValidation, key)
		}
	}
	return out, nil
}

func typeError(key, want string, got any) error {
	return fmt.Errorf("%w: override %q must be %s, got %T", ErrValidation, key, want, got)
}

func asInt(key string, val any) (int, error) {
	switch v := val.(type) {
	case int:
		return v, nil
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("%w: override %q must be an integer, got %v", ErrValidation, key, v)
		}
		return int(v), nil
	default:
		return 0, typeError(key, "integer", val)
	}
}

func asStringSlice(key string, val any) ([]string, error) {
	switch v := val.(type) {
	case []string:
		return append([]string(nil), v...), nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: override %q must be a list of strings, got element %T", ErrValidation, key, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, typeError(key, "list of strings", val)
	}
}

// AnalysisRequest asks for one failure-impact analysis of one database.
type AnalysisRequest struct {
	DBIdentifier string `json:"db_identifier"`
	Scenario     string `json:"scenario"`
}

// Validate checks identifier syntax. Scenario existence is checked by the
// engine against the registry.
func (r AnalysisRequest) Validate() error {
	if !identifierPattern.MatchString(r.DBIdentifier) {
		return fmt.Errorf("%w: db_identifier must start with a letter and contain only alphanumerics and hyphens (1-63 chars)", ErrValidation)
	}
	if r.Scenario == "" {
		return fmt.Errorf("%w: scenario is required", ErrValidation)
	}
	return nil
}

// BatchRequest asks for concurrent analyses of several databases under one scenario.
type BatchRequest struct {
	DBIdentifiers []string `json:"db_identifiers"`
	Scenario      string   `json:"scenario"`
}

// Validate enforces the batch size bounds. Per-identifier syntax errors are
// captured as per-item failures at dispatch, not rejected up front.
func (r BatchRequest) Validate() error {
	if len(r.DBIdentifiers) == 0 {
		return fmt.Errorf("%w: at least one database identifier required", ErrValidation)
	}
	if len(r.DBIdentifiers) > MaxBatchSize {
		return fmt.Errorf("%w: batch size %d exceeds maximum of %d", ErrValidation, len(r.DBIdentifiers), MaxBatchSize)
	}
	if r.Scenario == "" {
		return fmt.Errorf("%w: scenario is required", ErrValidation)
	}
	return nil
}

// WhatIfRequest asks for a baseline-vs-modified comparative analysis.
type WhatIfRequest struct {
	DBIdentifier    string         `json:"db_identifier"`
	Scenario        string         `json:"scenario"`
	ConfigOverrides map[string]any `json:"config_overrides"`
}

// Validate checks identifier syntax and the override allow-list.
func (r WhatIfRequest) Validate() error {
	base := AnalysisRequest{DBIdentifier: r.DBIdentifier, Scenario: r.Scenario}
	if err := base.Validate(); err != nil {
		return err
	}
	return ValidateOverrides(r.ConfigOverrides)
}

// ImpactResult is the validated structured outcome of one analysis. It is
// produced whole or not at all; partially populated results never escape the
// response parser.
type ImpactResult struct {
	SLAViolation          bool     `json:"sla_violation"`
	RTOViolation          bool     `json:"rto_violation"`
	RPOViolation          bool     `json:"rpo_violation"`
	ExpectedOutageMinutes int      `json:"expected_outage_time_minutes"`
	Severity              Severity `json:"business_severity"`
	Why                   []string `json:"why"`
	Recommendations       []string `json:"recommendations"`
	Confidence            float64  `json:"confidence"`
}

// BatchItem is one per-database outcome inside a BatchResult.
// Status is "success" (Analysis set) or "error" (Error set).
type BatchItem struct {
	DBIdentifier string        `json:"db_identifier"`
	Status       string        `json:"status"`
	Analysis     *ImpactResult `json:"analysis,omitempty"`
	Error        string        `json:"error,omitempty"`
}

// BatchResult aggregates a batch run. TotalCount always equals len(Results);
// the severity counters sum to the number of success items.
type BatchResult struct {
	TotalCount    int         `json:"total_count"`
	CriticalCount int         `json:"critical_count"`
	HighCount     int         `json:"high_count"`
	MediumCount   int         `json:"medium_count"`
	LowCount      int         `json:"low_count"`
	Results       []BatchItem `json:"results"`
}

// ImprovementSummary compares a baseline analysis against a what-if analysis.
// RTOReductionMinutes may be negative when the hypothetical change makes
// recovery slower.
type ImprovementSummary struct {
	SeverityImproved      bool   `json:"severity_improved"`
	SeverityChange        string `json:"severity_change"`
	RTOReductionMinutes   int    `json:"rto_reduction_minutes"`
	SLAViolationPrevented bool   `json:"sla_violation_prevented"`
	RTOViolationPrevented bool   `json:"rto_violation_prevented"`
	RPOViolationPrevented bool   `json:"rpo_violation_prevented"`
}

// WhatIfResult carries both analyses and their computed delta.
type WhatIfResult struct {
	BaselineAnalysis   ImpactResult       `json:"baseline_analysis"`
	WhatIfAnalysis     ImpactResult       `json:"what_if_analysis"`
	ImprovementSummary ImprovementSummary `json:"improvement_summary"`
}

// ErrorResponse is the JSON error envelope returned by the API.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Code  int    `json:"code"`
}
