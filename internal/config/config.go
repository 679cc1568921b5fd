// Package config reads the runtime configuration from the environment.
// The CLI loads a .env file first when one is present, so every key can
// live there or in the process environment.
package config

import (
	"os"
	"strconv"
	"strings"

	"goreg/domain/core"
	"goreg/domain/model"
)

// Config is the complete application configuration.
type Config struct {
	Output  OutputConfig
	Preview PreviewConfig
}

// OutputConfig controls how tables are rendered.
type OutputConfig struct {
	Decimals   int
	StatKeys   []string
	ShowTStats bool
}

// PreviewConfig controls the file preview.
type PreviewConfig struct {
	Rows int
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	config := &Config{
		Output: OutputConfig{
			Decimals:   getEnvIntOrDefault("GOREG_DECIMALS", 3),
			StatKeys:   getEnvListOrDefault("GOREG_STAT_KEYS", model.DefaultStatKeys),
			ShowTStats: getEnvBoolOrDefault("GOREG_SHOW_TSTATS", false),
		},
		Preview: PreviewConfig{
			Rows: getEnvIntOrDefault("GOREG_PREVIEW_ROWS", 10),
		},
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Output.Decimals < 1 || config.Output.Decimals > 10 {
		return core.SpecificationError("GOREG_DECIMALS must be between 1 and 10, got %d", config.Output.Decimals)
	}
	if config.Preview.Rows < 1 {
		return core.SpecificationError("GOREG_PREVIEW_ROWS must be positive, got %d", config.Preview.Rows)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
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

// getEnvListOrDefault splits a comma-separated value, dropping empty
// entries. The default slice is copied so callers cannot mutate it.
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return append([]string(nil), defaultValue...)
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), defaultValue...)
	}
	return out
}
