package e2e

import (
	"os"
	"strconv"
	"time"
)

// Config holds the configuration for E2E tests
type Config struct {
	// Prefix starts the name of every group, field and event the tests create.
	Prefix  string
	Timeout time.Duration
	Cleanup bool
	// SiteURL overrides the configured site for the SharePoint tests.
	SiteURL string
}

// LoadConfig loads E2E test configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Prefix:  getEnvOrDefault("PNP_E2E_PREFIX", "pnp-e2e"),
		Timeout: getTimeoutFromEnv("PNP_E2E_TIMEOUT", 120*time.Second),
		Cleanup: getBoolFromEnv("PNP_E2E_CLEANUP", true),
		SiteURL: os.Getenv("PNP_E2E_SITE_URL"),
	}
}

// getEnvOrDefault returns environment variable value or default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getTimeoutFromEnv parses timeout from environment variable
func getTimeoutFromEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

// getBoolFromEnv parses boolean from environment variable
func getBoolFromEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	result, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return result
}

// maskSensitive masks sensitive information for logging
func maskSensitive(s string) string {
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "****" + s[len(s)-4:]
}
