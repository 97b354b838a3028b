package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SLACK_WEBHOOK_URL", "https://hooks.slack.com/services/T/B/x")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Region != "DK" {
		t.Errorf("Region = %q", cfg.Region)
	}
	if cfg.StoreBackend != "file" || cfg.StoreMode != "replace" {
		t.Errorf("store defaults = %q/%q", cfg.StoreBackend, cfg.StoreMode)
	}
	if cfg.ResultLimit != 10 {
		t.Errorf("ResultLimit = %d", cfg.ResultLimit)
	}
	if cfg.Timezone != "Europe/Copenhagen" {
		t.Errorf("Timezone = %q", cfg.Timezone)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
	if !cfg.DegradeOnStoreFailure {
		t.Error("DegradeOnStoreFailure should default to true")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SLACK_WEBHOOK_URL", "https://hooks.slack.com/services/T/B/x")
	t.Setenv("TREND_REGION", "SE")
	t.Setenv("STORE_MODE", "additive")
	t.Setenv("MESSAGE_LAYOUT", "table")
	t.Setenv("SORT_MODE", "volume")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("ALWAYS_NOTIFY", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Region != "SE" || cfg.StoreMode != "additive" {
		t.Errorf("overrides not applied: %q/%q", cfg.Region, cfg.StoreMode)
	}
	if cfg.MessageLayout != "table" || cfg.SortMode != "volume" {
		t.Errorf("layout/sort = %q/%q", cfg.MessageLayout, cfg.SortMode)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout)
	}
	if !cfg.AlwaysNotify {
		t.Error("AlwaysNotify not applied")
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		env    map[string]string
		errSub string
	}{
		{"missing webhook", map[string]string{"SLACK_WEBHOOK_URL": ""}, "SLACK_WEBHOOK_URL"},
		{
			"bad store mode",
			map[string]string{"SLACK_WEBHOOK_URL": "x", "STORE_MODE": "merge"},
			"STORE_MODE",
		},
		{
			"postgres without url",
			map[string]string{"SLACK_WEBHOOK_URL": "x", "STORE_BACKEND": "postgres"},
			"DATABASE_URL",
		},
		{
			"bad timezone",
			map[string]string{"SLACK_WEBHOOK_URL": "x", "TIMEZONE": "Mars/Olympus"},
			"TIMEZONE",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.errSub) {
				t.Errorf("error %q does not mention %s", err, tc.errSub)
			}
		})
	}
}
