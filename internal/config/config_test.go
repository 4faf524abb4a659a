package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Engine.ReferenceCurrency != "RON" {
		t.Errorf("reference currency = %q, want RON", cfg.Engine.ReferenceCurrency)
	}
	if cfg.Engine.MinimumAge != 21 {
		t.Errorf("minimum age = %d, want 21", cfg.Engine.MinimumAge)
	}
	if cfg.Engine.BusinessLimit != 500 {
		t.Errorf("business limit = %v, want 500", cfg.Engine.BusinessLimit)
	}
	if cfg.Audit.Enabled {
		t.Error("audit enabled by default")
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.ReferenceCurrency != "RON" {
		t.Errorf("reference currency = %q, want default", cfg.Engine.ReferenceCurrency)
	}
}

func TestLoad_PartialFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minte.toml")
	content := `
[engine]
reference_currency = "EUR"
seed = 42

[audit]
enabled = true
path = "audit.db"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.ReferenceCurrency != "EUR" {
		t.Errorf("reference currency = %q, want EUR", cfg.Engine.ReferenceCurrency)
	}
	if cfg.Engine.Seed != 42 {
		t.Errorf("seed = %d, want 42", cfg.Engine.Seed)
	}
	if !cfg.Audit.Enabled || cfg.Audit.Path != "audit.db" {
		t.Errorf("audit = %+v", cfg.Audit)
	}
	// Untouched sections keep their defaults.
	if cfg.Engine.MinimumAge != 21 {
		t.Errorf("minimum age = %d, want default 21", cfg.Engine.MinimumAge)
	}
	if cfg.Serve.Addr != "127.0.0.1:8432" {
		t.Errorf("serve addr = %q, want default", cfg.Serve.Addr)
	}
}

func TestLoad_EmptyReferenceCurrencyRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minte.toml")
	if err := os.WriteFile(path, []byte("[engine]\nreference_currency = \"\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load accepted an empty reference currency")
	}
}
