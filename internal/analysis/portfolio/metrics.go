package portfolio

import (
	"context"
	"fmt"
	"math"
	"time"

	"marketlens/internal/analysis/seriesutil"
	"marketlens/internal/market"
)

const (
	tradingDays = 252

	// DefaultBenchmark is the market proxy used for beta when the caller
	// does not name one.
	DefaultBenchmark = "SPY"

	// minBetaOverlap is the fewest aligned observations a beta estimate
	// needs; below it the basket is assumed to move with the market.
	minBetaOverlap = 30
)

// Metrics summarizes a basket's risk/return profile. Return, volatility,
// drawdown and total return are percentages; Sharpe, beta and the mean
// correlation are ratios.
type Metrics struct {
	AnnualReturn   float64 `json:"annual_return"`
	Volatility     float64 `json:"volatility"`
	SharpeRatio    float64 `json:"sharpe_ratio"`
	MaxDrawdown    float64 `json:"max_drawdown"`
	Beta           float64 `json:"beta"`
	AvgCorrelation float64 `json:"avg_correlation"`
	TotalReturn    float64 `json:"total_return"`
}

// ComputeMetrics fetches the basket's constituents plus the benchmark over
// the range and computes the metrics. An empty benchmark means
// DefaultBenchmark. A constituent that cannot be fetched fails the whole
// computation; a benchmark that cannot be fetched only degrades beta
// to 1.
func ComputeMetrics(ctx context.Context, src market.Source, allocs Allocations, benchmark string, rng market.Range, now time.Time) (*Metrics, error) {
	if err := allocs.Validate(); err != nil {
		return nil, err
	}
	if benchmark == "" {
		benchmark = DefaultBenchmark
	}

	start := rng.Window(now)
	panel, err := market.FetchPanel(ctx, src, append(allocs.Symbols(), benchmark), start, now)
	if err != nil {
		return nil, fmt.Errorf("fetch basket panel: %w", err)
	}

	blended, streams, err := weightedReturns(panel, allocs)
	if err != nil {
		return nil, err
	}

	m := baseMetrics(blended.Values())
	m.Beta = betaAgainst(blended, panel.Closes[benchmark])
	m.AvgCorrelation = meanPairwiseCorrelation(streams)
	return m, nil
}

// baseMetrics computes the return/volatility/drawdown block shared with
// the backtester. Annualization compounds the arithmetic mean daily
// return.
// Volatility and Sharpe need at least two observations; shorter streams
// report them as zero instead of NaN.
func baseMetrics(returns []float64) *Metrics {
	m := &Metrics{}
	if len(returns) == 0 {
		return m
	}

	annualReturn := math.Pow(1+seriesutil.Mean(returns), tradingDays) - 1
	curve := cumulative(returns)
	m.AnnualReturn = annualReturn * 100
	m.MaxDrawdown = maxDrawdown(curve) * 100
	m.TotalReturn = (curve[len(curve)-1] - 1) * 100

	if len(returns) >= 2 {
		vol := seriesutil.SampleStd(returns) * math.Sqrt(tradingDays)
		m.Volatility = vol * 100
		if vol > 0 {
			m.SharpeRatio = annualReturn / vol
		}
	}
	return m
}

// betaAgainst regresses the basket's returns on the benchmark's. Sample
// covariance over sample variance, so the benchmark's own beta is exactly
// one. Falls back to 1 on short overlap, zero variance or a missing
// benchmark.
func betaAgainst(portfolio market.ValueSeries, benchmarkCloses market.ValueSeries) float64 {
	if len(benchmarkCloses) == 0 {
		return 1
	}
	a, b := seriesutil.Align(portfolio, benchmarkCloses.Returns())
	if len(a) <= minBetaOverlap {
		return 1
	}
	variance := seriesutil.SampleVar(b.Values())
	if variance <= 0 || math.IsNaN(variance) {
		return 1
	}
	return seriesutil.SampleCov(a.Values(), b.Values()) / variance
}

// meanPairwiseCorrelation averages the correlation over every constituent
// pair. Pairs without a defined correlation are skipped; baskets with
// fewer than two usable pairs report zero.
func meanPairwiseCorrelation(streams []market.ValueSeries) float64 {
	var sum float64
	var n int
	for i := 0; i < len(streams); i++ {
		for j := i + 1; j < len(streams); j++ {
			c := seriesutil.Pearson(streams[i].Values(), streams[j].Values())
			if math.IsNaN(c) {
				continue
			}
			sum += c
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
