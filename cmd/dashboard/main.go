// Command dashboard runs the analytics HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketlens/internal/analysis/divergence"
	"marketlens/internal/config"
	"marketlens/internal/dashboard"
	"marketlens/internal/gateway/binance"
	"marketlens/internal/gateway/provider"
	"marketlens/internal/gateway/yahoo"
	"marketlens/internal/logger"
	"marketlens/internal/market"
	"marketlens/internal/store"
	"marketlens/internal/transport/api"
)

func main() {
	cfgPath := flag.String("config", "", "path to the TOML config file")
	addr := flag.String("addr", "", "listen address, overrides the config")
	flag.Parse()

	if err := run(*cfgPath, *addr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfgPath, addr string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	logger.SetLevel(cfg.Log.Level)
	if addr != "" {
		cfg.Server.Addr = addr
	}

	src, err := buildSource(cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	narrator, err := buildNarrator(cfg)
	if err != nil {
		return err
	}

	defaultRange, err := market.ParseRange(cfg.Analysis.DefaultRange)
	if err != nil {
		return fmt.Errorf("config default_range: %w", err)
	}

	dash, err := dashboard.New(src, narrator, dashboard.Options{
		Divergence: divergence.Params{
			Lookback:    cfg.Analysis.DivergenceLookback,
			MinDistance: cfg.Analysis.DivergenceMinGap,
		},
	})
	if err != nil {
		return err
	}

	server, err := api.NewServer(api.Config{
		Addr:            cfg.Server.Addr,
		ShutdownTimeout: time.Duration(cfg.Server.ShutdownSeconds) * time.Second,
		DefaultRange:    defaultRange,
		Benchmark:       cfg.Analysis.Benchmark,
		Dashboard:       dash,
		Source:          src,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return server.Start(ctx)
}

// buildSource wires the configured provider behind the sqlite bar cache.
func buildSource(cfg config.Config) (market.Source, error) {
	var inner market.Source
	switch cfg.Data.Provider {
	case "yahoo":
		inner = yahoo.NewSource(cfg.DataTimeout())
	case "binance":
		inner = binance.New(binance.Config{
			APIKey:      cfg.Data.BinanceAPIKey,
			SecretKey:   cfg.Data.BinanceSecret,
			BaseURL:     cfg.Data.BinanceBaseURL,
			HTTPTimeout: cfg.DataTimeout(),
		})
	default:
		return nil, fmt.Errorf("unknown data provider %q", cfg.Data.Provider)
	}

	// An empty cache path keeps caching in-process only.
	if cfg.Data.CachePath == "" {
		return store.NewCachedSource(inner, store.NewMemory()), nil
	}
	bars, err := store.NewSQLite(cfg.Data.CachePath)
	if err != nil {
		logger.Warnf("bar cache disabled: %v", err)
		return inner, nil
	}
	return store.NewCachedSource(inner, bars), nil
}

func buildNarrator(cfg config.Config) (provider.Narrator, error) {
	models := make([]provider.Config, len(cfg.Narrator.Models))
	for i, m := range cfg.Narrator.Models {
		models[i] = provider.Config{
			ID:       m.ID,
			Provider: m.Provider,
			APIURL:   m.APIURL,
			APIKey:   m.APIKey,
			Model:    m.Model,
			Enabled:  m.Enabled,
			Headers:  m.Headers,
		}
	}
	return provider.Build(models, cfg.NarratorTimeout())
}
