// Package config loads the engine's runtime configuration from a TOML file.
// Every field has a default matching the published rate card, so a missing
// file or a partial file is fine.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the full runtime configuration.
type Config struct {
	Engine EngineConfig `toml:"engine"`
	Audit  AuditConfig  `toml:"audit"`
	Serve  ServeConfig  `toml:"serve"`
}

// EngineConfig tunes the rules engine.
type EngineConfig struct {
	// ReferenceCurrency is the common basis for fee and cashback-threshold
	// calculations before conversion into an account's native currency.
	ReferenceCurrency string `toml:"reference_currency"`

	// MinimumAge gates savings withdrawals.
	MinimumAge int `toml:"minimum_age"`

	// BusinessLimit is the initial spending and deposit limit of a business
	// account, in reference-currency units.
	BusinessLimit float64 `toml:"business_limit"`

	// Seed drives IBAN and card-number generation so runs are reproducible.
	Seed int64 `toml:"seed"`
}

// AuditConfig controls the optional SQLite audit sink.
type AuditConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// ServeConfig controls the read-only report server.
type ServeConfig struct {
	Addr    string `toml:"addr"`
	Metrics bool   `toml:"metrics"`
}

// DefaultConfig returns the reference defaults.
func DefaultConfig() Config {
	return Config{
		Engine: EngineConfig{
			ReferenceCurrency: "RON",
			MinimumAge:        21,
			BusinessLimit:     500,
			Seed:              1,
		},
		Audit: AuditConfig{
			Enabled: false,
			Path:    "minte-audit.db",
		},
		Serve: ServeConfig{
			Addr:    "127.0.0.1:8432",
			Metrics: true,
		},
	}
}

// Load reads a TOML file over the defaults. A missing file returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Engine.ReferenceCurrency == "" {
		return cfg, fmt.Errorf("config %s: reference_currency must not be empty", path)
	}
	return cfg, nil
}
