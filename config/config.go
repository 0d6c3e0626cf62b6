// ABOUTME: Configuration loader for the impact analyzer service
// ABOUTME: Loads settings from environment variables with defaults, .env supported

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port               string
	APIKey             string   // shared key required on /api routes (empty = open)
	CacheTTL           int      // seconds, analysis result cache (default 600)
	CORSAllowedOrigins []string // allowed CORS origins (empty = block all cross-origin)

	// Rate Limiting
	RateLimitEnabled bool // Enable rate limiting (default: true)
	RateLimitDefault int  // Requests per minute per client (default: 100)

	// Business documents
	DocsDir string // directory holding SLA.md, RTO_RPO_POLICY.md, INCIDENT_HISTORY.md

	// Config source (optional; seeds-only resolution if unset)
	ConfigSourceURL    string
	ConfigSourceToken  string
	ConfigSourceRegion string

	// Reasoning endpoint
	ReasonerURL    string
	ReasonerAPIKey string
	ReasonerModel  string

	// Telemetry
	TelemetryMode string // log, none (default: log)
}

// ConfigSourceConfigured returns true if the external describe API is set up.
func (c *Config) ConfigSourceConfigured() bool {
	return c.ConfigSourceURL != ""
}

func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		APIKey:             os.Getenv("API_KEY"),
		CacheTTL:           getEnvInt("CACHE_TTL", 600),
		CORSAllowedOrigins: getEnvStringList("CORS_ALLOWED_ORIGINS"),

		RateLimitEnabled: getEnvBool("RATE_LIMIT_ENABLED", true),
		RateLimitDefault: getEnvInt("RATE_LIMIT_DEFAULT", 100),

		DocsDir: getEnv("DOCS_DIR", "docs"),

		ConfigSourceURL:    ensureScheme(os.Getenv("CONFIG_SOURCE_URL")),
		ConfigSourceToken:  os.Getenv("CONFIG_SOURCE_TOKEN"),
		ConfigSourceRegion: getEnv("CONFIG_SOURCE_REGION", "us-east-1"),

		ReasonerURL:    ensureScheme(os.Getenv("REASONER_URL")),
		ReasonerAPIKey: os.Getenv("REASONER_API_KEY"),
		ReasonerModel:  getEnv("REASONER_MODEL", "claude-sonnet-4-20250514"),

		TelemetryMode: getEnv("TELEMETRY_MODE", "log"),
	}

	// Validate required fields
	if cfg.ReasonerURL == "" {
		return nil, fmt.Errorf("REASONER_URL is required")
	}
	if cfg.ReasonerAPIKey == "" {
		return nil, fmt.Errorf("REASONER_API_KEY is required")
	}

	if cfg.CacheTTL < 1 {
		return nil, fmt.Errorf("CACHE_TTL must be positive, got %d", cfg.CacheTTL)
	}
	if cfg.RateLimitDefault < 1 || cfg.RateLimitDefault > 10000 {
		return nil, fmt.Errorf("RATE_LIMIT_DEFAULT must be between 1 and 10000, got %d", cfg.RateLimitDefault)
	}
	switch cfg.TelemetryMode {
	case "log", "none":
	default:
		return nil, fmt.Errorf("TELEMETRY_MODE must be log or none, got %q", cfg.TelemetryMode)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvStringList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// ensureScheme adds https:// prefix if the URL has no scheme
func ensureScheme(url string) string {
	if url == "" {
		return url
	}
	if !strings.Contains(url, "://") {
		return "https://" + url
	}
	return url
}
