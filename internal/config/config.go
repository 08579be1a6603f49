package config

import (
	"os"
	"strconv"
	"strings"

	"segstats/adapters/stats/toolkit"
	"segstats/domain/stats"
	"segstats/internal/errors"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Data     DataConfig
	Analysis AnalysisConfig
	Server   ServerConfig
	Logging  LoggingConfig
	Metrics  MetricsConfig
}

// DataConfig locates the customer table
type DataConfig struct {
	File        string
	Sheet       string
	Categorical []string
}

// AnalysisConfig holds the defaults the analyses run with
type AnalysisConfig struct {
	SegmentColumn string
	Seed          int64
	Alternative   stats.Alternative
	Workers       int
	Degenerate    toolkit.DegeneratePolicy
	Yates         bool
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// LoggingConfig holds the LOG_LEVEL name
type LoggingConfig struct {
	Level string
}

// MetricsConfig toggles the /metrics endpoint
type MetricsConfig struct {
	Enabled bool
}

// Load reads a .env file when present, then the environment, and validates the result.
func Load() (*Config, error) {
	return LoadFiles(".env")
}

// LoadFiles is Load with explicit env files; missing files are skipped.
// Variables already set in the environment win over file values.
func LoadFiles(files ...string) (*Config, error) {
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return nil, errors.Wrapf(err, "failed to load %s", file)
		}
	}

	alternative, err := stats.ParseAlternative(getEnvOrDefault("ALTERNATIVE", string(stats.TwoSided)))
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err)
	}
	degenerate, err := toolkit.ParseDegeneratePolicy(getEnvOrDefault("DEGENERATE_POLICY", "fail"))
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err)
	}

	config := &Config{
		Data: DataConfig{
			File:        getEnvOrDefault("DATA_FILE", ""),
			Sheet:       getEnvOrDefault("DATA_SHEET", ""),
			Categorical: getEnvListOrDefault("CATEGORICAL_COLUMNS", nil),
		},
		Analysis: AnalysisConfig{
			SegmentColumn: getEnvOrDefault("SEGMENT_COLUMN", "cluster"),
			Seed:          getEnvInt64OrDefault("SEED", 42),
			Alternative:   alternative,
			Workers:       getEnvIntOrDefault("WORKERS", 4),
			Degenerate:    degenerate,
			Yates:         getEnvBoolOrDefault("YATES_CORRECTION", true),
		},
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "debug"),
		},
		Logging: LoggingConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "INFO"),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBoolOrDefault("METRICS_ENABLED", true),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Data.File == "" {
		return errors.ConfigInvalid("DATA_FILE is required")
	}
	if config.Analysis.SegmentColumn == "" {
		return errors.ConfigInvalid("SEGMENT_COLUMN cannot be empty")
	}
	if config.Analysis.Workers < 1 {
		return errors.ConfigInvalid("WORKERS must be at least 1")
	}
	if _, err := strconv.Atoi(config.Server.Port); err != nil {
		return errors.ConfigInvalid("PORT must be numeric")
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

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
