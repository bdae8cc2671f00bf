package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfigFile(t, "upstream:\n  base_url: http://localhost:8090\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Session.ExpiryMargin != 300 {
		t.Errorf("expected default expiry margin 300, got %d", cfg.Session.ExpiryMargin)
	}
	if cfg.Session.WatchInterval != 1000 {
		t.Errorf("expected default watch interval 1000, got %d", cfg.Session.WatchInterval)
	}
	if !cfg.Database.WALMode {
		t.Error("expected WAL mode enabled by default")
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
upstream:
  base_url: https://api.sofra.example
session:
  expiry_margin: 120
  watch_interval: 500
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Upstream.BaseURL != "https://api.sofra.example" {
		t.Errorf("base URL not overridden: %s", cfg.Upstream.BaseURL)
	}
	if got := cfg.ExpiryMargin(); got != 2*time.Minute {
		t.Errorf("expected 2m expiry margin, got %v", got)
	}
	if got := cfg.WatchInterval(); got != 500*time.Millisecond {
		t.Errorf("expected 500ms watch interval, got %v", got)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, "upstream:\n  base_url: http://from-file:8090\n")

	t.Setenv("SOFRA_UPSTREAM_BASE_URL", "http://from-env:9000")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Upstream.BaseURL != "http://from-env:9000" {
		t.Errorf("env override not applied: %s", cfg.Upstream.BaseURL)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(_ *Config) {}, false},
		{"empty base URL", func(c *Config) { c.Upstream.BaseURL = "" }, true},
		{"bad scheme", func(c *Config) { c.Upstream.BaseURL = "ftp://x" }, true},
		{"empty db path", func(c *Config) { c.Database.Path = "" }, true},
		{"negative margin", func(c *Config) { c.Session.ExpiryMargin = -1 }, true},
		{"tiny watch interval", func(c *Config) { c.Session.WatchInterval = 10 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}
