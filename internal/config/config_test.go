package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":8085" || cfg.Data.Provider != "yahoo" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marketlens.toml")
	content := `
[server]
addr = ":9000"

[data]
provider = "binance"

[analysis]
default_range = "6mo"

[[narrator.models]]
provider = "anthropic"
model = "claude-sonnet-4-20250514"
enabled = true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("addr = %s", cfg.Server.Addr)
	}
	if cfg.Data.Provider != "binance" {
		t.Errorf("provider = %s", cfg.Data.Provider)
	}
	if cfg.Analysis.DefaultRange != "6mo" {
		t.Errorf("range = %s", cfg.Analysis.DefaultRange)
	}
	// Unset fields keep their defaults.
	if cfg.Analysis.Benchmark != "SPY" || cfg.Data.TimeoutSeconds != 30 {
		t.Errorf("defaults lost: %+v", cfg)
	}
	if len(cfg.Narrator.Models) != 1 || !cfg.Narrator.Models[0].Enabled {
		t.Errorf("narrator models = %+v", cfg.Narrator.Models)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/marketlens.toml"); err == nil {
		t.Fatal("expected error")
	}
}
