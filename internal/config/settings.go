package config

import (
	"time"

	helix "github.com/Guliveer/twitch-helix-go"
)

// Config is the full configuration of the command-line tool. Durations are
// written the way time.ParseDuration reads them, e.g. "15s" or "10m".
type Config struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`

	BaseURL  string `yaml:"base_url"`
	TokenURL string `yaml:"token_url"`

	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is a pointer so that an explicit 0 turns retries off while
	// an absent key keeps the default.
	MaxRetries   *int          `yaml:"max_retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
	MaxBackoff   time.Duration `yaml:"max_backoff"`
	SafetyMargin time.Duration `yaml:"safety_margin"`
	TokenTimeout time.Duration `yaml:"token_timeout"`

	RequestsPerMinute int  `yaml:"requests_per_minute"`
	DisableRateLimit  bool `yaml:"disable_rate_limit"`
	MaxScanPages      int  `yaml:"max_scan_pages"`
	BatchWorkers      int  `yaml:"batch_workers"`

	// UserCacheTTL of zero keeps the library default; negative disables it.
	UserCacheTTL time.Duration `yaml:"user_cache_ttl"`

	Log LogConfig `yaml:"log"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
	// Colored forces colour on or off. When unset, colour is used only on a
	// terminal.
	Colored *bool `yaml:"colored,omitempty"`
}

// Options builds the client options described by the configuration.
func (c *Config) Options() *helix.Options {
	opts := &helix.Options{
		ClientID:          c.ClientID,
		ClientSecret:      c.ClientSecret,
		BaseURL:           c.BaseURL,
		TokenURL:          c.TokenURL,
		Timeout:           c.Timeout,
		RetryBackoff:      c.RetryBackoff,
		MaxBackoff:        c.MaxBackoff,
		SafetyMargin:      c.SafetyMargin,
		TokenTimeout:      c.TokenTimeout,
		RequestsPerMinute: c.RequestsPerMinute,
		DisableRateLimit:  c.DisableRateLimit,
		MaxScanPages:      c.MaxScanPages,
		BatchWorkers:      c.BatchWorkers,
		UserCacheTTL:      c.UserCacheTTL,
	}
	if c.MaxRetries != nil {
		opts.MaxRetries = *c.MaxRetries
		opts.DisableRetries = *c.MaxRetries == 0
	}
	return opts
}
