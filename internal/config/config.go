// Package config defines the server configuration and its loading hooks.
//
// Conventions:
// - New() returns a Config populated with defaults.
// - Load(ctx) layers .env, an optional YAML file and SAMEMEAN_ env vars on top.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// CatalogPath points at a YAML dataset table replacing the embedded one.
	// Empty means the embedded table.
	CatalogPath string `koanf:"catalog_path"`

	// StrictConsistency makes startup fail when authored statistics disagree
	// with the bin-derived ones by more than ConsistencyTolerance.
	StrictConsistency bool `koanf:"strict_consistency"`

	// ConsistencyTolerance is the absolute difference allowed between authored
	// and derived mean/median/sd.
	ConsistencyTolerance float64 `koanf:"consistency_tolerance"`

	// SessionTTLSeconds is the idle lifetime of a widget session.
	SessionTTLSeconds int `koanf:"session_ttl_seconds"`

	// MaxSessions bounds the number of sessions held in memory.
	MaxSessions int `koanf:"max_sessions"`

	// SessionCookie names the cookie carrying the session id.
	SessionCookie string `koanf:"session_cookie"`

	// CleanupIntervalSeconds controls how often expired sessions are reclaimed.
	CleanupIntervalSeconds int `koanf:"cleanup_interval_seconds"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		LogFormat:              "text",
		Addr:                   ":9080",
		CatalogPath:            "",
		StrictConsistency:      false,
		ConsistencyTolerance:   0.5,
		SessionTTLSeconds:      1800,
		MaxSessions:            10_000,
		SessionCookie:          "samemean_session",
		CleanupIntervalSeconds: 60,
	}
}

// SessionTTL returns SessionTTLSeconds as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSeconds) * time.Second
}

// CleanupInterval returns CleanupIntervalSeconds as a duration.
func (c *Config) CleanupInterval() time.Duration {
	return time.Duration(c.CleanupIntervalSeconds) * time.Second
}

// Validate checks the values the server cannot run without.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.SessionTTLSeconds <= 0:
		return fmt.Errorf("%w: session_ttl_seconds must be positive", ErrInvalidConfig)
	case c.MaxSessions <= 0:
		return fmt.Errorf("%w: max_sessions must be positive", ErrInvalidConfig)
	case c.SessionCookie == "":
		return fmt.Errorf("%w: session_cookie must not be empty", ErrInvalidConfig)
	case c.CleanupIntervalSeconds <= 0:
		return fmt.Errorf("%w: cleanup_interval_seconds must be positive", ErrInvalidConfig)
	case c.ConsistencyTolerance < 0:
		return fmt.Errorf("%w: consistency_tolerance must not be negative", ErrInvalidConfig)
	}
	return nil
}
