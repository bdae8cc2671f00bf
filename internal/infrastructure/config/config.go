package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the Sofra admin session client.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Upstream Upstream `yaml:"upstream"`
	Database Database `yaml:"database"`
	Session  Session  `yaml:"session"`
	Logging  Logging  `yaml:"logging"`
}

// Upstream contains connection settings for the Sofra service.
type Upstream struct {
	// BaseURL is the root URL of the upstream service, e.g. "https://api.sofra.example".
	BaseURL string `yaml:"base_url"`

	// Timeout is the HTTP client timeout in seconds. Zero means the
	// net/http default — the session layer imposes no request timeout of
	// its own; the expiry scheduler is a token-lifetime timeout, not a
	// request timeout.
	Timeout int `yaml:"timeout"`
}

// Database contains SQLite settings for the local vault store.
type Database struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// Session contains session lifecycle tuning.
type Session struct {
	// ExpiryMargin is how long before the token's literal deadline the
	// session is treated as expired, in seconds. Forced logout fires this
	// far ahead of exp to avoid racing in-flight requests.
	ExpiryMargin int `yaml:"expiry_margin"`

	// WatchInterval is the cross-context logout poll interval in
	// milliseconds. Logout triggered outside the coordinator's own paths
	// propagates to the evaluator within at most one interval.
	WatchInterval int `yaml:"watch_interval"`
}

// Logging contains logging settings.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: SOFRA_SECTION_KEY
// For example: SOFRA_UPSTREAM_BASE_URL, SOFRA_DATABASE_PATH
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration without reading any file,
// with environment overrides applied. Used when no config file exists yet.
func Default() *Config {
	cfg := defaultConfig()
	applyEnvOverrides(cfg)
	return cfg
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Upstream: Upstream{
			BaseURL: "http://localhost:8090",
		},
		Database: Database{
			Path:        "./data/sofra-session.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Session: Session{
			ExpiryMargin:  300,
			WatchInterval: 1000,
		},
		Logging: Logging{
			Level:  "info",
			Format: "json",
			Output: "stderr",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: SOFRA_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SOFRA_UPSTREAM_BASE_URL"); v != "" {
		cfg.Upstream.BaseURL = v
	}
	if v := os.Getenv("SOFRA_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("SOFRA_SESSION_EXPIRY_MARGIN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Session.ExpiryMargin = n
		}
	}
	if v := os.Getenv("SOFRA_SESSION_WATCH_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Session.WatchInterval = n
		}
	}
	if v := os.Getenv("SOFRA_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	if c.Upstream.BaseURL == "" {
		errs = append(errs, "upstream.base_url is required")
	} else if !strings.HasPrefix(c.Upstream.BaseURL, "http://") && !strings.HasPrefix(c.Upstream.BaseURL, "https://") {
		errs = append(errs, "upstream.base_url must start with http:// or https://")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.Session.ExpiryMargin < 0 {
		errs = append(errs, "session.expiry_margin must not be negative")
	}

	const minWatchInterval = 100
	if c.Session.WatchInterval < minWatchInterval {
		errs = append(errs, "session.watch_interval must be at least 100ms")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// UpstreamTimeout returns the upstream HTTP timeout as a Duration.
func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.Upstream.Timeout) * time.Second
}

// ExpiryMargin returns the session expiry safety margin as a Duration.
func (c *Config) ExpiryMargin() time.Duration {
	return time.Duration(c.Session.ExpiryMargin) * time.Second
}

// WatchInterval returns the cross-context poll interval as a Duration.
func (c *Config) WatchInterval() time.Duration {
	return time.Duration(c.Session.WatchInterval) * time.Millisecond
}
