// Command analyze runs one-shot analyses from the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"marketlens/internal/analysis/hedge"
	"marketlens/internal/analysis/portfolio"
	"marketlens/internal/config"
	"marketlens/internal/dashboard"
	"marketlens/internal/gateway/binance"
	"marketlens/internal/gateway/provider"
	"marketlens/internal/gateway/yahoo"
	"marketlens/internal/logger"
	"marketlens/internal/market"
	"marketlens/internal/pretty"
	"marketlens/internal/render"
	"marketlens/internal/report"
)

const usage = `usage: analyze [-config file] <command> [flags]

commands:
  symbol    -symbol AAPL [-range 1y] [-chart out.html] [-png out.png] [-narrate]
  hedge     -ticker AAPL [-range 1y] [-top 5]
  simulate  -ticker AAPL -hedge GLD [-pct 20] [-range 1y]
  metrics   -alloc SPY:60,AGG:40 [-benchmark SPY] [-range 1y]
  backtest  -alloc SPY:60,AGG:40 [-years 5]
  generate  [-profile Moderate] [-horizon Medium] [-amount 10000]
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("analyze", flag.ExitOnError)
	cfgPath := global.String("config", "", "path to the TOML config file")
	global.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	if err := global.Parse(args); err != nil {
		return err
	}
	rest := global.Args()
	if len(rest) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("missing command")
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	logger.SetLevel(cfg.Log.Level)

	src, err := buildSource(cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	now := time.Now()

	switch rest[0] {
	case "symbol":
		return runSymbol(ctx, cfg, src, rest[1:], now)
	case "hedge":
		return runHedge(ctx, src, rest[1:], now)
	case "simulate":
		return runSimulate(ctx, cfg, src, rest[1:], now)
	case "metrics":
		return runMetrics(ctx, cfg, src, rest[1:], now)
	case "backtest":
		return runBacktest(ctx, src, rest[1:], now)
	case "generate":
		return runGenerate(rest[1:])
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", rest[0])
	}
}

func buildSource(cfg config.Config) (market.Source, error) {
	switch cfg.Data.Provider {
	case "yahoo":
		return yahoo.NewSource(cfg.DataTimeout()), nil
	case "binance":
		return binance.New(binance.Config{
			APIKey:      cfg.Data.BinanceAPIKey,
			SecretKey:   cfg.Data.BinanceSecret,
			BaseURL:     cfg.Data.BinanceBaseURL,
			HTTPTimeout: cfg.DataTimeout(),
		}), nil
	}
	return nil, fmt.Errorf("unknown data provider %q", cfg.Data.Provider)
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

func parseRangeFlag(raw string) (market.Range, error) {
	return market.ParseRange(raw)
}

func runSymbol(ctx context.Context, cfg config.Config, src market.Source, args []string, now time.Time) error {
	fs := flag.NewFlagSet("symbol", flag.ExitOnError)
	symbol := fs.String("symbol", "", "ticker to analyze")
	rangeRaw := fs.String("range", cfg.Analysis.DefaultRange, "lookback range: 6mo, 1y or 2y")
	chartOut := fs.String("chart", "", "write the chart page to this HTML file")
	pngOut := fs.String("png", "", "write a PNG screenshot of the chart")
	narrate := fs.Bool("narrate", false, "print the written summary")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *symbol == "" {
		return fmt.Errorf("symbol: -symbol required")
	}
	rng, err := parseRangeFlag(*rangeRaw)
	if err != nil {
		return err
	}

	narrator, err := buildNarrator(cfg)
	if err != nil {
		return err
	}
	svc, err := dashboard.New(src, narrator, dashboard.Options{})
	if err != nil {
		return err
	}
	a, err := svc.Analyze(ctx, *symbol, rng, now)
	if err != nil {
		return err
	}
	if ys, ok := src.(*yahoo.Source); ok {
		if q, qerr := ys.Quote(ctx, *symbol); qerr == nil {
			fmt.Printf("%s (%s) %.2f %+.2f%%  mkt cap %s\n",
				q.Symbol, q.Name, q.Price, q.ChangePct, pretty.FormatMarketCap(float64(q.MarketCap)))
		} else {
			logger.Debugf("quote %s: %v", *symbol, qerr)
		}
	}
	pretty.AnalysisTable(os.Stdout, a)

	if *narrate {
		var images []provider.Image
		if narrator != nil {
			capturer := &report.Capturer{}
			img, cerr := capturer.ChartImage(ctx, render.SymbolPage(a), "daily candlestick chart with EMA overlays and divergence marks")
			if cerr != nil {
				logger.Debugf("chart capture for narration: %v", cerr)
			} else {
				images = append(images, img)
			}
		}
		fmt.Println()
		fmt.Println(svc.Narrate(ctx, a, images...))
	}
	if *chartOut != "" {
		f, err := os.Create(*chartOut)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := render.SymbolPage(a).Render(f); err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
		fmt.Printf("chart written to %s\n", *chartOut)
	}
	if *pngOut != "" {
		capturer := &report.Capturer{}
		png, err := capturer.CapturePNG(ctx, render.SymbolPage(a))
		if err != nil {
			return err
		}
		if err := os.WriteFile(*pngOut, png, 0o644); err != nil {
			return err
		}
		fmt.Printf("screenshot written to %s\n", *pngOut)
	}
	return nil
}

func runHedge(ctx context.Context, src market.Source, args []string, now time.Time) error {
	fs := flag.NewFlagSet("hedge", flag.ExitOnError)
	ticker := fs.String("ticker", "", "position to hedge")
	rangeRaw := fs.String("range", "1y", "lookback range")
	top := fs.Int("top", 0, "only print the best N candidates")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *ticker == "" {
		return fmt.Errorf("hedge: -ticker required")
	}
	rng, err := parseRangeFlag(*rangeRaw)
	if err != nil {
		return err
	}
	ranking, err := hedge.RankHedges(ctx, src, *ticker, rng, now, nil)
	if err != nil {
		return err
	}
	pretty.HedgeTable(os.Stdout, ranking, *top)
	for sym, ferr := range ranking.Failures {
		logger.Warnf("skipped %s: %v", sym, ferr)
	}
	fmt.Println()
	fmt.Println(hedge.FallbackAnalysis(*ticker, "", 1, ranking.TopHedges(3)))
	return nil
}

func runSimulate(ctx context.Context, cfg config.Config, src market.Source, args []string, now time.Time) error {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	ticker := fs.String("ticker", "", "position to hedge")
	hedgeSym := fs.String("hedge", "", "hedge instrument")
	pct := fs.Float64("pct", cfg.Analysis.HedgeAllocationPct, "hedge allocation percent")
	rangeRaw := fs.String("range", "1y", "lookback range")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *ticker == "" || *hedgeSym == "" {
		return fmt.Errorf("simulate: -ticker and -hedge required")
	}
	rng, err := parseRangeFlag(*rangeRaw)
	if err != nil {
		return err
	}
	sim, err := hedge.Analyze(ctx, src, *ticker, *hedgeSym, *pct, rng, now)
	if err != nil {
		return err
	}
	pretty.SimulationTable(os.Stdout, sim)
	return nil
}

func runMetrics(ctx context.Context, cfg config.Config, src market.Source, args []string, now time.Time) error {
	fs := flag.NewFlagSet("metrics", flag.ExitOnError)
	allocRaw := fs.String("alloc", "", "allocations as SYMBOL:WEIGHT,...")
	benchmark := fs.String("benchmark", cfg.Analysis.Benchmark, "benchmark symbol for beta")
	rangeRaw := fs.String("range", cfg.Analysis.DefaultRange, "lookback range")
	if err := fs.Parse(args); err != nil {
		return err
	}
	allocs, err := parseAllocations(*allocRaw)
	if err != nil {
		return err
	}
	rng, err := parseRangeFlag(*rangeRaw)
	if err != nil {
		return err
	}
	m, err := portfolio.ComputeMetrics(ctx, src, allocs, *benchmark, rng, now)
	if err != nil {
		return err
	}
	pretty.AllocationsTable(os.Stdout, allocs)
	pretty.MetricsTable(os.Stdout, m)
	return nil
}

func runBacktest(ctx context.Context, src market.Source, args []string, now time.Time) error {
	fs := flag.NewFlagSet("backtest", flag.ExitOnError)
	allocRaw := fs.String("alloc", "", "allocations as SYMBOL:WEIGHT,...")
	years := fs.Int("years", 5, "lookback in whole years")
	chartOut := fs.String("chart", "", "write the value curve to this HTML file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	allocs, err := parseAllocations(*allocRaw)
	if err != nil {
		return err
	}
	result, err := portfolio.Backtest(ctx, src, allocs, *years, now)
	if err != nil {
		return err
	}
	pretty.BacktestTable(os.Stdout, result)
	if *chartOut != "" {
		f, err := os.Create(*chartOut)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := render.BacktestPage(result).Render(f); err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
		fmt.Printf("chart written to %s\n", *chartOut)
	}
	return nil
}

func runGenerate(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	profile := fs.String("profile", "Moderate", "risk profile name")
	horizon := fs.String("horizon", "Medium", "investment horizon name")
	amount := fs.Float64("amount", 10000, "total to invest")
	if err := fs.Parse(args); err != nil {
		return err
	}
	p := portfolio.GenerateCustom(*profile, *horizon, *amount)
	fmt.Printf("%s / %s — %.0f%% equity, %.0f%% bonds, %.0f%% alternatives\n",
		p.RiskProfile, p.Horizon, p.EquityPct, p.BondPct, p.AlternativePct)
	pretty.AllocationsTable(os.Stdout, p.Allocations)
	return nil
}

// parseAllocations reads baskets like "SPY:60,AGG:40".
func parseAllocations(raw string) (portfolio.Allocations, error) {
	if raw == "" {
		return nil, fmt.Errorf("-alloc required, e.g. SPY:60,AGG:40")
	}
	var allocs portfolio.Allocations
	for _, part := range strings.Split(raw, ",") {
		sym, weightRaw, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			return nil, fmt.Errorf("bad allocation %q, want SYMBOL:WEIGHT", part)
		}
		weight, err := strconv.ParseFloat(weightRaw, 64)
		if err != nil {
			return nil, fmt.Errorf("bad weight in %q: %w", part, err)
		}
		allocs = append(allocs, portfolio.Allocation{Symbol: strings.ToUpper(sym), Weight: weight})
	}
	if err := allocs.Validate(); err != nil {
		return nil, err
	}
	return allocs, nil
}
