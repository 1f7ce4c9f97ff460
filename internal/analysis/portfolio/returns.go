package portfolio

import (
	"fmt"
	"time"

	"marketlens/internal/market"
)

// alignAll keeps only the timestamps present in every series, preserving
// ascending order.
func alignAll(series []market.ValueSeries) []market.ValueSeries {
	if len(series) == 0 {
		return nil
	}
	counts := make(map[time.Time]int)
	for _, s := range series {
		for _, p := range s {
			counts[p.Timestamp]++
		}
	}
	out := make([]market.ValueSeries, len(series))
	for i, s := range series {
		filtered := make(market.ValueSeries, 0, len(s))
		for _, p := range s {
			if counts[p.Timestamp] == len(series) {
				filtered = append(filtered, p)
			}
		}
		out[i] = filtered
	}
	return out
}

// weightedReturns builds the basket's daily return series from the panel,
// along with the aligned per-constituent return streams it was blended
// from. Every constituent must be present in the panel.
func weightedReturns(panel *market.Panel, allocs Allocations) (market.ValueSeries, []market.ValueSeries, error) {
	streams := make([]market.ValueSeries, len(allocs))
	for i, alloc := range allocs {
		closes, ok := panel.Closes[alloc.Symbol]
		if !ok {
			err := panel.Failures[alloc.Symbol]
			if err == nil {
				err = market.ErrNoData
			}
			return nil, nil, fmt.Errorf("constituent %s: %w", alloc.Symbol, err)
		}
		streams[i] = closes.Returns()
	}

	streams = alignAll(streams)
	n := len(streams[0])
	if n == 0 {
		return nil, nil, fmt.Errorf("constituents share no trading days: %w", market.ErrNoData)
	}

	weights := allocs.fractions()
	blended := make(market.ValueSeries, n)
	for i := 0; i < n; i++ {
		var sum float64
		for j, s := range streams {
			sum += s[i].Value * weights[j]
		}
		blended[i] = market.ValuePoint{Timestamp: streams[0][i].Timestamp, Value: sum}
	}
	return blended, streams, nil
}

// cumulative compounds a daily return stream into a growth curve starting
// at 1.
func cumulative(returns []float64) []float64 {
	out := make([]float64, len(returns))
	acc := 1.0
	for i, r := range returns {
		acc *= 1 + r
		out[i] = acc
	}
	return out
}

// maxDrawdown is the deepest peak-to-trough decline of a growth curve,
// as a negative fraction.
func maxDrawdown(curve []float64) float64 {
	var worst float64
	peak := 0.0
	for _, v := range curve {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			if dd := (v - peak) / peak; dd < worst {
				worst = dd
			}
		}
	}
	return worst
}
