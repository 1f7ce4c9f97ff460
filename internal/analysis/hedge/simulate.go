package hedge

import (
	"context"
	"fmt"
	"math"
	"time"

	"marketlens/internal/analysis/seriesutil"
	"marketlens/internal/market"
)

const tradingDays = 252

// Simulation compares the standalone position against the position
// blended with one hedge. Volatilities, returns and the reduction are
// percentages.
type Simulation struct {
	Ticker              string  `json:"ticker"`
	HedgeSymbol         string  `json:"hedge_symbol"`
	HedgeAllocationPct  float64 `json:"hedge_allocation_pct"`
	Correlation         float64 `json:"correlation"`
	OriginalVolatility  float64 `json:"original_volatility"`
	HedgedVolatility    float64 `json:"hedged_volatility"`
	VolatilityReduction float64 `json:"volatility_reduction"`
	OriginalReturn      float64 `json:"original_return"`
	HedgedReturn        float64 `json:"hedged_return"`
	OriginalSharpe      float64 `json:"original_sharpe"`
	HedgedSharpe        float64 `json:"hedged_sharpe"`
}

// SimulateBlend computes the blend metrics from already aligned daily
// return streams. allocationPct is the hedge's share of the portfolio in
// percent.
func SimulateBlend(tickerReturns, hedgeReturns []float64, allocationPct float64) (*Simulation, error) {
	if len(tickerReturns) != len(hedgeReturns) {
		return nil, fmt.Errorf("return streams not aligned: %d vs %d", len(tickerReturns), len(hedgeReturns))
	}
	if len(tickerReturns) < 2 {
		return nil, fmt.Errorf("%d aligned returns, need at least 2", len(tickerReturns))
	}
	if allocationPct < 0 || allocationPct > 100 {
		return nil, fmt.Errorf("hedge allocation %.1f%% out of [0, 100]", allocationPct)
	}

	hedgeWeight := allocationPct / 100
	blended := make([]float64, len(tickerReturns))
	for i := range tickerReturns {
		blended[i] = tickerReturns[i]*(1-hedgeWeight) + hedgeReturns[i]*hedgeWeight
	}

	origVol, origRet := annualize(tickerReturns)
	blendVol, blendRet := annualize(blended)

	// Zero-variance streams have no defined correlation; report 0
	// rather than NaN so the result survives JSON encoding.
	corr := seriesutil.Pearson(tickerReturns, hedgeReturns)
	if math.IsNaN(corr) {
		corr = 0
	}

	sim := &Simulation{
		HedgeAllocationPct: allocationPct,
		Correlation:        corr,
		OriginalVolatility: origVol * 100,
		HedgedVolatility:   blendVol * 100,
		OriginalReturn:     origRet * 100,
		HedgedReturn:       blendRet * 100,
		OriginalSharpe:     sharpe(origRet, origVol),
		HedgedSharpe:       sharpe(blendRet, blendVol),
	}
	if origVol > 0 {
		sim.VolatilityReduction = (origVol - blendVol) / origVol * 100
	}
	return sim, nil
}

// Analyze fetches both symbols, aligns their daily returns and simulates
// the blend over the given range.
func Analyze(ctx context.Context, src market.Source, ticker, hedgeSymbol string, allocationPct float64, rng market.Range, now time.Time) (*Simulation, error) {
	start := rng.Window(now)
	panel, err := market.FetchPanel(ctx, src, []string{ticker, hedgeSymbol}, start, now)
	if err != nil {
		return nil, fmt.Errorf("fetch blend panel: %w", err)
	}
	for sym, ferr := range panel.Failures {
		return nil, fmt.Errorf("fetch %s: %w", sym, ferr)
	}

	a, b := seriesutil.Align(panel.Closes[ticker].Returns(), panel.Closes[hedgeSymbol].Returns())
	sim, err := SimulateBlend(a.Values(), b.Values(), allocationPct)
	if err != nil {
		return nil, err
	}
	sim.Ticker = ticker
	sim.HedgeSymbol = hedgeSymbol
	return sim, nil
}

// annualize turns a daily return stream into annualized volatility and
// geometric annualized return.
func annualize(returns []float64) (vol, ret float64) {
	vol = seriesutil.SampleStd(returns) * math.Sqrt(tradingDays)
	growth := 1.0
	for _, r := range returns {
		growth *= 1 + r
	}
	ret = math.Pow(growth, tradingDays/float64(len(returns))) - 1
	return vol, ret
}

func sharpe(ret, vol float64) float64 {
	if vol <= 0 {
		return 0
	}
	return ret / vol
}
