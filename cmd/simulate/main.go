// ABOUTME: CLI for running impact analyses without the HTTP server
// ABOUTME: Wires the analysis engine directly and prints JSON to stdout

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dbimpact/db-impact-analyzer/config"
	"github.com/dbimpact/db-impact-analyzer/logger"
	"github.com/dbimpact/db-impact-analyzer/models"
	"github.com/dbimpact/db-impact-analyzer/scenarios"
	"github.com/dbimpact/db-impact-analyzer/services"
	"github.com/dbimpact/db-impact-analyzer/telemetry"
)

func main() {
	logger.Init("simulate")

	root := &cobra.Command{
		Use:   "simulate",
		Short: "Database failure impact simulator",
		Long: `Simulate runs database failure impact analyses from the command line,
using the same engine as the HTTP API. Results print as indented JSON.`,
	}
	root.SilenceUsage = true

	root.AddCommand(newAnalyzeCmd())
	root.AddCommand(newWhatIfCmd())
	root.AddCommand(newScenariosCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// buildEngine wires an analyzer from the environment, with telemetry off for
// interactive use.
func buildEngine() (*services.Analyzer, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	var source services.ConfigSource
	if cfg.ConfigSourceConfigured() {
		source = services.NewDescribeClient(cfg.ConfigSourceURL, cfg.ConfigSourceRegion, cfg.ConfigSourceToken)
	}
	resolver := services.NewResolver(source)
	docs := services.NewDocsStore(cfg.DocsDir)
	reasoner := services.NewInferenceClient(cfg.ReasonerURL, cfg.ReasonerAPIKey, cfg.ReasonerModel)

	return services.NewAnalyzer(resolver, docs, reasoner, telemetry.NopEmitter{}), nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newAnalyzeCmd() *cobra.Command {
	var dbs []string
	var scenario string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze failure impact for one or more databases",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := buildEngine()
			if err != nil {
				return err
			}

			if len(dbs) == 1 {
				result, err := engine.Analyze(cmd.Context(), models.AnalysisRequest{
					DBIdentifier: dbs[0],
					Scenario:     scenario,
				})
				if err != nil {
					return err
				}
				return printJSON(result)
			}

			result, err := engine.AnalyzeBatch(cmd.Context(), models.BatchRequest{
				DBIdentifiers: dbs,
				Scenario:      scenario,
			})
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().StringSliceVar(&dbs, "db", nil, "Database identifier (repeatable for batch)")
	cmd.Flags().StringVar(&scenario, "scenario", "primary_db_failure", "Failure scenario to simulate")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func newWhatIfCmd() *cobra.Command {
	var db string
	var scenario string
	var sets []string

	cmd := &cobra.Command{
		Use:   "whatif",
		Short: "Compare current configuration against a hypothetical change",
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides, err := parseOverrides(sets)
			if err != nil {
				return err
			}

			engine, err := buildEngine()
			if err != nil {
				return err
			}

			result, err := engine.WhatIf(cmd.Context(), models.WhatIfRequest{
				DBIdentifier:    db,
				Scenario:        scenario,
				ConfigOverrides: overrides,
			})
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&db, "db", "", "Database identifier")
	cmd.Flags().StringVar(&scenario, "scenario", "primary_db_failure", "Failure scenario to simulate")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Configuration override as field=value (repeatable)")
	_ = cmd.MarkFlagRequired("db")
	_ = cmd.MarkFlagRequired("set")

	return cmd
}

func newScenariosCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List available failure scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(scenarios.List())
		},
	}
}

// parseOverrides turns field=value pairs into typed override values. Booleans
// and integers are detected; everything else stays a string.
func parseOverrides(sets []string) (map[string]any, error) {
	overrides := make(map[string]any, len(sets))
	for _, s := range sets {
		field, value, ok := strings.Cut(s, "=")
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid override %q, expected field=value", s)
		}
		switch {
		case value == "true" || value == "false":
			overrides[field] = value == "true"
		default:
			if n, err := strconv.Atoi(value); err == nil {
				overrides[field] = n
			} else {
				overrides[field] = value
			}
		}
	}
	return overrides, nil
}
