// ABOUTME: Entry point for the database impact analyzer service
// ABOUTME: Provides HTTP API for failure impact analysis backed by a reasoning model

package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/dbimpact/db-impact-analyzer/cache"
	"github.com/dbimpact/db-impact-analyzer/config"
	"github.com/dbimpact/db-impact-analyzer/handlers"
	"github.com/dbimpact/db-impact-analyzer/logger"
	"github.com/dbimpact/db-impact-analyzer/middleware"
	"github.com/dbimpact/db-impact-analyzer/services"
	"github.com/dbimpact/db-impact-analyzer/telemetry"
)

func main() {
	// Initialize structured logging
	logger.Init("db-impact-analyzer")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting DB Impact Analyzer")
	slog.Info("Reasoner configured", "url", cfg.ReasonerURL, "model", cfg.ReasonerModel)
	if cfg.ConfigSourceConfigured() {
		slog.Info("Config source configured", "url", cfg.ConfigSourceURL, "region", cfg.ConfigSourceRegion)
	} else {
		slog.Warn("Config source not configured, resolving seed databases only")
	}

	// Initialize cache
	cacheTTL := time.Duration(cfg.CacheTTL) * time.Second
	c := cache.New(cacheTTL)
	slog.Info("Cache initialized", "ttl", cacheTTL)

	// Wire the analysis engine
	var source services.ConfigSource
	if cfg.ConfigSourceConfigured() {
		source = services.NewDescribeClient(cfg.ConfigSourceURL, cfg.ConfigSourceRegion, cfg.ConfigSourceToken)
	}
	resolver := services.NewResolver(source)
	docs := services.NewDocsStore(cfg.DocsDir)
	reasoner := services.NewInferenceClient(cfg.ReasonerURL, cfg.ReasonerAPIKey, cfg.ReasonerModel)

	var emitter telemetry.Emitter = telemetry.LogEmitter{}
	if cfg.TelemetryMode == "none" {
		emitter = telemetry.NopEmitter{}
	}

	analyzer := services.NewAnalyzer(resolver, docs, reasoner, emitter)

	// Initialize handlers
	h := handlers.NewHandler(cfg, c, analyzer)

	// Shared middleware stack
	var limiter *middleware.RateLimiter
	if cfg.RateLimitEnabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimitDefault)
	}
	open := []middleware.Middleware{
		middleware.LogRequest,
		middleware.CORS(cfg.CORSAllowedOrigins),
		middleware.RateLimit(limiter, middleware.ClientIP),
	}
	keyed := append(append([]middleware.Middleware{}, open...), middleware.RequireAPIKey(cfg.APIKey))

	// Register routes; the health endpoint stays reachable without a key so
	// load balancers can probe it.
	mux := http.NewServeMux()
	for _, route := range h.Routes() {
		stack := keyed
		if route.Path == "/api/v1/health" {
			stack = open
		}
		mux.HandleFunc(route.Method+" "+route.Path, middleware.Chain(route.Handler, stack...))
	}

	// Start server
	addr := ":" + cfg.Port
	slog.Info("Server listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
