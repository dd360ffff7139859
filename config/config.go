// Package config loads SDK configuration from an optional YAML file and
// environment variables. Environment variables win over the file; both win
// over the built-in defaults. Configuration is read once at startup.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix for configuration environment variables.
// HOTSPOT_BASE_URL maps to the base_url key, and so on.
const EnvPrefix = "HOTSPOT_"

// Backend selects which data-access implementation the SDK wires up.
const (
	BackendLive = "live"
	BackendSim  = "sim"
)

// Config is the complete SDK configuration.
type Config struct {
	// Backend is "live" (REST) or "sim" (in-memory).
	Backend string `koanf:"backend"`

	// BaseURL is the data API root, e.g. https://api.example.com/v1.
	BaseURL string `koanf:"base_url"`

	// IdentityURL is the identity-provider root. Defaults to BaseURL.
	IdentityURL string `koanf:"identity_url"`

	// RequestTimeout bounds one HTTP attempt, not the whole retry loop.
	RequestTimeout time.Duration `koanf:"request_timeout"`

	// MaxAttempts caps the retry loop, first try included.
	MaxAttempts int `koanf:"max_attempts"`

	// MetricsEnabled turns on Prometheus instrumentation.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// StorageDir holds the persisted session. Empty disables persistence.
	StorageDir string `koanf:"storage_dir"`

	// SimLatencyMax is the upper bound of the simulated backend's
	// artificial latency. Zero disables it.
	SimLatencyMax time.Duration `koanf:"sim_latency_max"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Backend:        BackendSim,
		RequestTimeout: 15 * time.Second,
		MaxAttempts:    4,
		SimLatencyMax:  120 * time.Millisecond,
	}
}

// Load reads configuration from path (skipped when empty) and the
// environment, layered over Default.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// HOTSPOT_BASE_URL -> base_url. Single-level keys only, so underscores
	// inside a name survive the mapping.
	transform := func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", transform), nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints and fills derived defaults.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendLive, BackendSim:
	default:
		return fmt.Errorf("config: unknown backend %q", c.Backend)
	}
	if c.Backend == BackendLive && c.BaseURL == "" {
		return fmt.Errorf("config: base_url is required for the live backend")
	}
	if c.IdentityURL == "" {
		c.IdentityURL = c.BaseURL
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("config: max_attempts must be at least 1, got %d", c.MaxAttempts)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("config: request_timeout must be positive, got %s", c.RequestTimeout)
	}
	return nil
}
