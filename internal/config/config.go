// Package config loads the runtime configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Slack settings
	SlackWebhookURL string

	// Region and feed settings
	Region            string // ISO geo code, e.g. "DK"
	SourcesConfigPath string
	ResultLimit       int // max rows in the posted message

	// Seen-set settings
	StoreBackend          string // file | postgres | none
	StoreMode             string // additive | replace
	SeenFilePath          string
	DatabaseURL           string
	DegradeOnStoreFailure bool

	// Message settings
	Timezone                 string
	MessageLayout            string // blocks | table
	SortMode                 string // feed | volume
	AlwaysNotify             bool
	CompactVolumeInThousands bool

	// App settings
	Debug          bool
	RequestTimeout time.Duration

	// Monitoring settings
	EnableHTTPMonitoring bool
	MonitoringPort       int
}

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		Region:                   "DK",
		SourcesConfigPath:        "configs/sources.yaml",
		ResultLimit:              10,
		StoreBackend:             "file",
		StoreMode:                "replace",
		SeenFilePath:             "seen_trends.json",
		DegradeOnStoreFailure:    true,
		Timezone:                 "Europe/Copenhagen",
		MessageLayout:            "blocks",
		SortMode:                 "feed",
		CompactVolumeInThousands: true,
		RequestTimeout:           30 * time.Second,
		MonitoringPort:           8080,
	}

	// Load from environment
	cfg.SlackWebhookURL = os.Getenv("SLACK_WEBHOOK_URL")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	cfg.Region = getEnvOrDefault("TREND_REGION", cfg.Region)
	cfg.SourcesConfigPath = getEnvOrDefault("SOURCES_CONFIG_PATH", cfg.SourcesConfigPath)
	cfg.ResultLimit = getEnvIntOrDefault("RESULT_LIMIT", cfg.ResultLimit)

	cfg.StoreBackend = getEnvOrDefault("STORE_BACKEND", cfg.StoreBackend)
	cfg.StoreMode = getEnvOrDefault("STORE_MODE", cfg.StoreMode)
	cfg.SeenFilePath = getEnvOrDefault("SEEN_FILE_PATH", cfg.SeenFilePath)
	cfg.DegradeOnStoreFailure = getEnvBoolOrDefault("DEGRADE_ON_STORE_FAILURE", cfg.DegradeOnStoreFailure)

	cfg.Timezone = getEnvOrDefault("TIMEZONE", cfg.Timezone)
	cfg.MessageLayout = getEnvOrDefault("MESSAGE_LAYOUT", cfg.MessageLayout)
	cfg.SortMode = getEnvOrDefault("SORT_MODE", cfg.SortMode)
	cfg.AlwaysNotify = getEnvBoolOrDefault("ALWAYS_NOTIFY", false)
	cfg.CompactVolumeInThousands = getEnvBoolOrDefault("COMPACT_VOLUME_IN_THOUSANDS", cfg.CompactVolumeInThousands)

	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.RequestTimeout = d
		}
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	cfg.EnableHTTPMonitoring = getEnvBoolOrDefault("ENABLE_HTTP_MONITORING", false)
	cfg.MonitoringPort = getEnvIntOrDefault("MONITORING_PORT", cfg.MonitoringPort)

	return cfg, cfg.Validate()
}

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

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.SlackWebhookURL == "" {
		return fmt.Errorf("SLACK_WEBHOOK_URL is required")
	}
	switch c.StoreBackend {
	case "file", "postgres", "none":
	default:
		return fmt.Errorf("STORE_BACKEND must be 'file', 'postgres' or 'none'")
	}
	if c.StoreBackend == "postgres" && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required when STORE_BACKEND is 'postgres'")
	}
	if c.StoreMode != "additive" && c.StoreMode != "replace" {
		return fmt.Errorf("STORE_MODE must be 'additive' or 'replace'")
	}
	if c.MessageLayout != "blocks" && c.MessageLayout != "table" {
		return fmt.Errorf("MESSAGE_LAYOUT must be 'blocks' or 'table'")
	}
	if c.SortMode != "feed" && c.SortMode != "volume" {
		return fmt.Errorf("SORT_MODE must be 'feed' or 'volume'")
	}
	if c.ResultLimit <= 0 {
		return fmt.Errorf("RESULT_LIMIT must be positive")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE %q is not a valid IANA zone: %w", c.Timezone, err)
	}
	return nil
}
