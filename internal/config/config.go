// Package config provides configuration management for the application.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the application. It is loaded
// once at startup and treated as read-only afterwards.
type Config struct {
	// HTTP server
	Port  int
	Stage string

	// Upstream CRM
	BitrixWebhookURL string
	UpstreamTimeout  time.Duration

	// Inbound authentication
	WebhookSecret string

	// Mapping
	MappingFile string

	// Duplicate-delivery guard (0 disables)
	DedupTTL time.Duration

	// Inbound rate limiting (0 disables)
	RateLimitRPS   int
	RateLimitBurst int

	// Application
	LogLevel       string
	ServiceVersion string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	_ = godotenv.Load()

	rps := getEnvInt("RATE_LIMIT_RPS", 0)

	cfg := &Config{
		Port:  getEnvInt("PORT", 8080),
		Stage: getEnv("STAGE", "dev"),

		BitrixWebhookURL: getEnv("BITRIX_WEBHOOK_URL", ""),
		UpstreamTimeout:  time.Duration(getEnvInt("UPSTREAM_TIMEOUT_SECONDS", 30)) * time.Second,

		WebhookSecret: getEnv("WEBHOOK_SECRET", ""),

		MappingFile: getEnv("MAPPING_FILE", ""),

		DedupTTL: time.Duration(getEnvInt("DEDUP_TTL_SECONDS", 0)) * time.Second,

		RateLimitRPS:   rps,
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 2*rps),

		LogLevel:       getEnv("LOG_LEVEL", "info"),
		ServiceVersion: getEnv("SERVICE_VERSION", "1.0.0"),
	}

	return cfg, nil
}

// IsProduction reports whether the service runs in the production stage.
// The unauthenticated test endpoint is only mounted when this is false.
func (c *Config) IsProduction() bool {
	return c.Stage == "production"
}

// StartupWarnings validates the loaded configuration and returns the
// warnings to emit once at process start. The service still starts with
// warnings present; requests that depend on the missing piece fail
// individually.
func (c *Config) StartupWarnings() []string {
	var warnings []string

	if c.WebhookSecret == "" {
		warnings = append(warnings, "WEBHOOK_SECRET is not set: inbound signature verification is disabled, /webhook accepts unsigned requests")
	}
	if c.BitrixWebhookURL == "" {
		warnings = append(warnings, "BITRIX_WEBHOOK_URL is not set: lead forwarding will fail until it is configured")
	}
	if !c.IsProduction() {
		warnings = append(warnings, "stage is not production: the unauthenticated /test/bitrix/lead endpoint is mounted")
	}

	return warnings
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an environment variable as int or returns a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
