// Package config loads the command-line tool's YAML configuration file and
// overlays environment variables for credentials.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Guliveer/twitch-helix-go/internal/constants"
)

// Environment variables that override the file.
const (
	EnvClientID     = "TWITCH_CLIENT_ID"
	EnvClientSecret = "TWITCH_CLIENT_SECRET"
	EnvBaseURL      = "HELIX_BASE_URL"
	EnvTokenURL     = "HELIX_TOKEN_URL"
	EnvLogLevel     = "HELIX_LOG_LEVEL"
)

// DefaultConfigFile is read when no path is given and the file exists.
const DefaultConfigFile = "helix.yaml"

// LoadEnvFile loads KEY=VALUE pairs from path into the environment without
// overriding variables that are already set. A missing file is not an
// error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	return nil
}

// Load reads the configuration from path, applies defaults and then the
// environment overrides. An empty path uses DefaultConfigFile if present
// and otherwise starts from defaults alone.
func Load(path string) (*Config, error) {
	var cfg Config

	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Timeout == 0 {
		cfg.Timeout = constants.DefaultHTTPTimeout
	}
	if cfg.MaxRetries == nil {
		n := constants.DefaultMaxRetries
		cfg.MaxRetries = &n
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = constants.DefaultRetryBackoff
	}
	if cfg.MaxBackoff == 0 {
		cfg.MaxBackoff = constants.DefaultMaxBackoff
	}
	if cfg.SafetyMargin == 0 {
		cfg.SafetyMargin = constants.DefaultSafetyMargin
	}
	if cfg.TokenTimeout == 0 {
		cfg.TokenTimeout = constants.DefaultTokenTimeout
	}
	if cfg.RequestsPerMinute == 0 {
		cfg.RequestsPerMinute = constants.DefaultRequestsPerMinute
	}
	if cfg.MaxScanPages == 0 {
		cfg.MaxScanPages = constants.DefaultMaxScanPages
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// applyEnvOverrides overlays environment variables. Credentials are
// normally supplied this way rather than stored in the file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvClientID); v != "" {
		cfg.ClientID = v
	}
	if v := os.Getenv(EnvClientSecret); v != "" {
		cfg.ClientSecret = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv(EnvTokenURL); v != "" {
		cfg.TokenURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
}

// Validate checks the configuration for common errors.
func Validate(cfg *Config) error {
	if cfg.ClientID == "" {
		return fmt.Errorf("client_id is required (or set %s)", EnvClientID)
	}
	if cfg.ClientSecret == "" {
		return fmt.Errorf("client_secret is required (or set %s)", EnvClientSecret)
	}

	for name, d := range map[string]time.Duration{
		"timeout":       cfg.Timeout,
		"retry_backoff": cfg.RetryBackoff,
		"max_backoff":   cfg.MaxBackoff,
		"safety_margin": cfg.SafetyMargin,
		"token_timeout": cfg.TokenTimeout,
	} {
		if d < 0 {
			return fmt.Errorf("%s must not be negative, got %s", name, d)
		}
	}
	if (cfg.MaxRetries != nil && *cfg.MaxRetries < 0) || cfg.RequestsPerMinute < 0 || cfg.MaxScanPages < 0 || cfg.BatchWorkers < 0 {
		return fmt.Errorf("max_retries, requests_per_minute, max_scan_pages and batch_workers must not be negative")
	}
	if cfg.MaxBackoff < cfg.RetryBackoff {
		return fmt.Errorf("max_backoff (%s) must not be shorter than retry_backoff (%s)", cfg.MaxBackoff, cfg.RetryBackoff)
	}

	switch strings.ToUpper(cfg.Log.Level) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", cfg.Log.Level)
	}

	return nil
}
