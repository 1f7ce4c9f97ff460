// Package config loads the TOML configuration file and applies defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Server   Server   `toml:"server"`
	Data     Data     `toml:"data"`
	Analysis Analysis `toml:"analysis"`
	Narrator Narrator `toml:"narrator"`
	Log      Log      `toml:"log"`
}

type Server struct {
	Addr            string `toml:"addr"`
	ShutdownSeconds int    `toml:"shutdown_seconds"`
}

type Data struct {
	// Provider selects the default bar source: "yahoo" or "binance".
	Provider       string `toml:"provider"`
	CachePath      string `toml:"cache_path"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	BinanceBaseURL string `toml:"binance_base_url"`
	BinanceAPIKey  string `toml:"binance_api_key"`
	BinanceSecret  string `toml:"binance_secret"`
}

type Analysis struct {
	DefaultRange       string  `toml:"default_range"`
	Benchmark          string  `toml:"benchmark"`
	HedgeAllocationPct float64 `toml:"hedge_allocation_pct"`
	DivergenceLookback int     `toml:"divergence_lookback"`
	DivergenceMinGap   int     `toml:"divergence_min_gap"`
}

type NarratorModel struct {
	ID       string            `toml:"id"`
	Provider string            `toml:"provider"`
	APIURL   string            `toml:"api_url"`
	APIKey   string            `toml:"api_key"`
	Model    string            `toml:"model"`
	Enabled  bool              `toml:"enabled"`
	Headers  map[string]string `toml:"headers"`
}

type Narrator struct {
	TimeoutSeconds int             `toml:"timeout_seconds"`
	Models         []NarratorModel `toml:"models"`
}

type Log struct {
	Level string `toml:"level"`
}

// Default is the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: Server{Addr: ":8085", ShutdownSeconds: 10},
		Data: Data{
			Provider:       "yahoo",
			CachePath:      "marketlens.db",
			TimeoutSeconds: 30,
		},
		Analysis: Analysis{
			DefaultRange:       "1y",
			Benchmark:          "SPY",
			HedgeAllocationPct: 20,
			DivergenceLookback: 5,
			DivergenceMinGap:   3,
		},
		Narrator: Narrator{TimeoutSeconds: 60},
		Log:      Log{Level: "info"},
	}
}

// Load reads path and overlays it on the defaults. An empty path returns
// the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg.normalized(), nil
}

func (c Config) normalized() Config {
	d := Default()
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.Server.ShutdownSeconds <= 0 {
		c.Server.ShutdownSeconds = d.Server.ShutdownSeconds
	}
	if c.Data.Provider == "" {
		c.Data.Provider = d.Data.Provider
	}
	if c.Data.TimeoutSeconds <= 0 {
		c.Data.TimeoutSeconds = d.Data.TimeoutSeconds
	}
	if c.Analysis.DefaultRange == "" {
		c.Analysis.DefaultRange = d.Analysis.DefaultRange
	}
	if c.Analysis.Benchmark == "" {
		c.Analysis.Benchmark = d.Analysis.Benchmark
	}
	if c.Analysis.HedgeAllocationPct <= 0 {
		c.Analysis.HedgeAllocationPct = d.Analysis.HedgeAllocationPct
	}
	if c.Analysis.DivergenceLookback <= 0 {
		c.Analysis.DivergenceLookback = d.Analysis.DivergenceLookback
	}
	if c.Analysis.DivergenceMinGap <= 0 {
		c.Analysis.DivergenceMinGap = d.Analysis.DivergenceMinGap
	}
	if c.Narrator.TimeoutSeconds <= 0 {
		c.Narrator.TimeoutSeconds = d.Narrator.TimeoutSeconds
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	return c
}

// DataTimeout returns the data fetch timeout as a duration.
func (c Config) DataTimeout() time.Duration {
	return time.Duration(c.Data.TimeoutSeconds) * time.Second
}

// NarratorTimeout returns the narration timeout as a duration.
func (c Config) NarratorTimeout() time.Duration {
	return time.Duration(c.Narrator.TimeoutSeconds) * time.Second
}
