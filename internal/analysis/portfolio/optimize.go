package portfolio

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"marketlens/internal/analysis/seriesutil"
	"marketlens/internal/market"
)

// OptimizeOptions constrain the search. Zero values mean unconstrained.
type OptimizeOptions struct {
	TargetReturn  float64 // minimum expected annual return, percent
	MaxVolatility float64 // maximum expected volatility, percent
	Trials        int     // random weight draws, default 10000
	Seed          int64   // rng seed, default time-based
}

// OptimizedPortfolio is the best basket the random search found.
type OptimizedPortfolio struct {
	Allocations        Allocations `json:"allocations"`
	ExpectedReturn     float64     `json:"expected_return"`
	ExpectedVolatility float64     `json:"expected_volatility"`
	SharpeRatio        float64     `json:"sharpe_ratio"`
}

const optimizeYears = 2

// Optimize searches random weight vectors for the best Sharpe ratio over
// two years of history, subject to the options' constraints. When no draw
// satisfies the constraints it falls back to equal weights.
func Optimize(ctx context.Context, src market.Source, symbols []string, opt OptimizeOptions, now time.Time) (*OptimizedPortfolio, error) {
	if len(symbols) < 2 {
		return nil, fmt.Errorf("optimization needs at least two symbols, got %d", len(symbols))
	}
	if opt.Trials <= 0 {
		opt.Trials = 10000
	}
	if opt.Seed == 0 {
		opt.Seed = now.UnixNano()
	}

	start := market.YearsWindow(now, optimizeYears)
	panel, err := market.FetchPanel(ctx, src, symbols, start, now)
	if err != nil {
		return nil, fmt.Errorf("fetch optimization panel: %w", err)
	}
	for sym, ferr := range panel.Failures {
		return nil, fmt.Errorf("fetch %s: %w", sym, ferr)
	}

	streams := make([]market.ValueSeries, len(symbols))
	for i, sym := range symbols {
		streams[i] = panel.Closes[sym].Returns()
	}
	streams = alignAll(streams)
	if len(streams[0]) < 2 {
		return nil, fmt.Errorf("symbols share no trading days: %w", market.ErrNoData)
	}

	n := len(symbols)
	expected := make([]float64, n)
	cov := make([][]float64, n)
	for i := range streams {
		expected[i] = seriesutil.Mean(streams[i].Values()) * tradingDays
		cov[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			c := seriesutil.SampleCov(streams[i].Values(), streams[j].Values()) * tradingDays
			cov[i][j], cov[j][i] = c, c
		}
	}

	rng := rand.New(rand.NewSource(opt.Seed))
	bestSharpe := math.Inf(-1)
	var bestWeights []float64
	weights := make([]float64, n)

	for t := 0; t < opt.Trials; t++ {
		var sum float64
		for i := range weights {
			weights[i] = rng.Float64()
			sum += weights[i]
		}
		for i := range weights {
			weights[i] /= sum
		}

		ret := dot(weights, expected)
		vol := math.Sqrt(quadraticForm(weights, cov))
		if opt.TargetReturn > 0 && ret*100 < opt.TargetReturn {
			continue
		}
		if opt.MaxVolatility > 0 && vol*100 > opt.MaxVolatility {
			continue
		}

		sharpe := 0.0
		if vol > 0 {
			sharpe = ret / vol
		}
		if sharpe > bestSharpe {
			bestSharpe = sharpe
			bestWeights = append([]float64(nil), weights...)
		}
	}

	if bestWeights == nil {
		bestWeights = make([]float64, n)
		for i := range bestWeights {
			bestWeights[i] = 1 / float64(n)
		}
		vol := math.Sqrt(quadraticForm(bestWeights, cov))
		bestSharpe = 0
		if vol > 0 {
			bestSharpe = dot(bestWeights, expected) / vol
		}
	}

	allocs := make(Allocations, n)
	for i, sym := range symbols {
		allocs[i] = Allocation{Symbol: sym, Weight: math.Round(bestWeights[i]*1000) / 10}
	}
	return &OptimizedPortfolio{
		Allocations:        allocs,
		ExpectedReturn:     dot(bestWeights, expected) * 100,
		ExpectedVolatility: math.Sqrt(quadraticForm(bestWeights, cov)) * 100,
		SharpeRatio:        bestSharpe,
	}, nil
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func quadraticForm(w []float64, m [][]float64) float64 {
	var sum float64
	for i := range w {
		for j := range w {
			sum += w[i] * m[i][j] * w[j]
		}
	}
	return sum
}
