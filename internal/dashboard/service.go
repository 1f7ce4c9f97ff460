// Package dashboard composes the per-symbol analytics into the views the
// HTTP API and the CLI render.
package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"marketlens/internal/analysis/divergence"
	"marketlens/internal/analysis/indicator"
	"marketlens/internal/analysis/seriesutil"
	"marketlens/internal/analysis/volprofile"
	"marketlens/internal/gateway/provider"
	"marketlens/internal/logger"
	"marketlens/internal/market"
)

const (
	// recentDivergenceAge marks divergences whose reference extremum falls
	// inside this window as actionable.
	recentDivergenceAge = 30 * 24 * time.Hour

	analyzeConcurrency = 4
)

// Options tunes the composed analysis. Zero values select the defaults.
type Options struct {
	Divergence divergence.Params
	Report     indicator.ReportSettings
	// EMAPeriods feed the momentum classifier. Empty selects 20 and 50.
	EMAPeriods []int
}

func (o Options) withDefaults() Options {
	if len(o.EMAPeriods) == 0 {
		o.EMAPeriods = []int{20, 50}
	}
	return o
}

// Service runs the full analysis pipeline against one data source.
type Service struct {
	src      market.Source
	narrator provider.Narrator
	opts     Options
}

// New builds a Service. narrator may be nil; Narrate then falls back to the
// deterministic template.
func New(src market.Source, narrator provider.Narrator, opts Options) (*Service, error) {
	if src == nil {
		return nil, fmt.Errorf("dashboard: nil market source")
	}
	return &Service{src: src, narrator: narrator, opts: opts.withDefaults()}, nil
}

// Momentum is the classification of the latest bar plus its display fields.
type Momentum struct {
	State       indicator.MomentumState `json:"state"`
	Description string                  `json:"description"`
	Color       string                  `json:"color"`
}

// Analysis is the composed per-symbol view.
type Analysis struct {
	Symbol      string                  `json:"symbol"`
	Range       market.Range            `json:"range"`
	AsOf        time.Time               `json:"as_of"`
	Bars        market.Series           `json:"bars"`
	LatestClose float64                 `json:"latest_close"`
	Momentum    Momentum                `json:"momentum"`
	Oscillator  indicator.Snapshot      `json:"oscillator"`
	Bullish     []divergence.Divergence `json:"bullish_divergences"`
	Bearish     []divergence.Divergence `json:"bearish_divergences"`
	// RecentBullish/RecentBearish report whether any divergence's
	// reference point falls inside the recency window.
	RecentBullish bool                `json:"recent_bullish"`
	RecentBearish bool                `json:"recent_bearish"`
	Profile       *volprofile.Profile `json:"profile,omitempty"`
	Levels        []volprofile.Level  `json:"levels,omitempty"`
	Report        indicator.Report    `json:"report"`
}

// Analyze fetches the symbol's bars over the range and runs every engine on
// them. now anchors the range window and the recency checks.
func (s *Service) Analyze(ctx context.Context, symbol string, rng market.Range, now time.Time) (*Analysis, error) {
	if symbol == "" {
		return nil, fmt.Errorf("dashboard: empty symbol")
	}
	start := rng.Window(now)
	bars, err := s.src.FetchDaily(ctx, symbol, start, now)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", symbol, err)
	}
	return s.analyzeBars(symbol, rng, now, bars)
}

func (s *Service) analyzeBars(symbol string, rng market.Range, now time.Time, bars market.Series) (*Analysis, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("%s: empty series: %w", symbol, market.ErrNoData)
	}
	closes := bars.Closes()
	a := &Analysis{
		Symbol:      symbol,
		Range:       rng,
		AsOf:        now,
		Bars:        bars,
		LatestClose: closes[len(closes)-1],
	}

	state := indicator.ClassifyMomentum(closes, momentumEMAs(closes, s.opts.EMAPeriods))
	a.Momentum = Momentum{State: state, Description: state.Description(), Color: state.Color()}

	a.Oscillator, _ = indicator.ComputeSnapshot(closes)

	rsi := indicator.RSISeries(closes, 14)
	osc := make(market.ValueSeries, len(bars))
	for i, b := range bars {
		osc[i] = market.ValuePoint{Timestamp: b.Timestamp, Value: rsi[i]}
	}
	a.Bullish = divergence.FindBullish(bars, osc, s.opts.Divergence)
	a.Bearish = divergence.FindBearish(bars, osc, s.opts.Divergence)
	for _, d := range a.Bullish {
		if d.Recent(now, recentDivergenceAge) {
			a.RecentBullish = true
		}
	}
	for _, d := range a.Bearish {
		if d.Recent(now, recentDivergenceAge) {
			a.RecentBearish = true
		}
	}

	a.Profile = volprofile.Build(bars)
	a.Levels = volprofile.LiquidityLevels(a.Profile, a.LatestClose)

	rep, err := indicator.BuildReport(symbol, bars, s.opts.Report)
	if err != nil {
		// Short histories still get momentum/profile output.
		logger.Debugf("indicator report %s: %v", symbol, err)
	}
	a.Report = rep

	return a, nil
}

// momentumEMAs builds the classifier's EMA inputs, one series per
// configured period the history can cover. Uses the first-close-seeded
// smoothing so every point is defined from the first bar on.
func momentumEMAs(closes []float64, periods []int) map[int][]float64 {
	emas := make(map[int][]float64, len(periods))
	for _, p := range periods {
		if len(closes) >= p {
			emas[p] = seriesutil.EMA(closes, p)
		}
	}
	return emas
}

// Watchlist is the result of analyzing several symbols. Failed symbols land
// in Failures instead of being dropped.
type Watchlist struct {
	Analyses []*Analysis      `json:"analyses"`
	Failures map[string]error `json:"-"`
}

// AnalyzeMany runs Analyze over symbols with bounded concurrency. Results
// keep the requested symbol order; per-symbol errors go to Failures.
func (s *Service) AnalyzeMany(ctx context.Context, symbols []string, rng market.Range, now time.Time) (*Watchlist, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("dashboard: no symbols")
	}

	var mu sync.Mutex
	bySymbol := make(map[string]*Analysis, len(symbols))
	out := &Watchlist{Failures: map[string]error{}}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(analyzeConcurrency)
	for _, sym := range symbols {
		sym := sym
		g.Go(func() error {
			a, err := s.Analyze(gctx, sym, rng, now)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Warnf("analyze %s: %v", sym, err)
				out.Failures[sym] = err
				return nil
			}
			bySymbol[sym] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, sym := range symbols {
		if a, ok := bySymbol[sym]; ok {
			out.Analyses = append(out.Analyses, a)
		}
	}
	return out, nil
}
