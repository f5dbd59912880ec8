package config

import (
	"os"
	"strconv"

	"cbctsurvey/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Analysis AnalysisConfig
}

// ServerConfig holds the results-server settings
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds the optional results-store connection settings.
// An empty URL disables archival; the pipeline itself never needs it.
type DatabaseConfig struct {
	URL string
}

// AnalysisConfig holds statistical defaults
type AnalysisConfig struct {
	Confidence    float64 // Wald CI level for odds ratios
	PositiveLevel string  // outcome level coded 1
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Database: DatabaseConfig{
			URL: getEnvOrDefault("DATABASE_URL", ""),
		},
		Analysis: AnalysisConfig{
			Confidence:    getEnvFloatOrDefault("CI_CONFIDENCE", 0.95),
			PositiveLevel: getEnvOrDefault("OUTCOME_POSITIVE", "Yes"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Analysis.Confidence <= 0 || config.Analysis.Confidence >= 1 {
		return errors.ConfigInvalid("CI_CONFIDENCE must be in (0,1)")
	}
	if config.Analysis.PositiveLevel == "" {
		return errors.ConfigInvalid("OUTCOME_POSITIVE cannot be empty")
	}
	return nil
}

// Helper functions for environment variable parsing

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
