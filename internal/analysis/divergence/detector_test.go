package divergence

import (
	"testing"
	"time"

	"marketlens/internal/market"
)

var testBase = time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time { return testBase.AddDate(0, 0, n) }

// barsFromLows builds a series whose lows are the given values; highs sit
// well above so only the lows shape matters.
func barsFromLows(lows []float64) market.Series {
	out := make(market.Series, len(lows))
	for i, lo := range lows {
		out[i] = market.Bar{
			Timestamp: day(i),
			Open:      lo + 5,
			High:      lo + 10,
			Low:       lo,
			Close:     lo + 5,
			Volume:    1000,
		}
	}
	return out
}

func barsFromHighs(highs []float64) market.Series {
	out := make(market.Series, len(highs))
	for i, hi := range highs {
		out[i] = market.Bar{
			Timestamp: day(i),
			Open:      hi - 5,
			High:      hi,
			Low:       hi - 10,
			Close:     hi - 5,
			Volume:    1000,
		}
	}
	return out
}

func flatOscillator(n int, level float64, overrides map[int]float64) market.ValueSeries {
	out := make(market.ValueSeries, n)
	for i := range out {
		v := level
		if ov, ok := overrides[i]; ok {
			v = ov
		}
		out[i] = market.ValuePoint{Timestamp: day(i), Value: v}
	}
	return out
}

func TestFindBullishLowerLowHigherLow(t *testing.T) {
	lows := make([]float64, 21)
	for i := range lows {
		lows[i] = 110
	}
	lows[5] = 100
	lows[15] = 90
	bars := barsFromLows(lows)
	osc := flatOscillator(21, 50, map[int]float64{5: 25, 15: 35})

	divs := FindBullish(bars, osc, Params{Lookback: 5, MinDistance: 3})
	if len(divs) != 1 {
		t.Fatalf("expected exactly one divergence, got %d", len(divs))
	}
	d := divs[0]
	if d.Kind != Bullish {
		t.Fatalf("expected bullish, got %s", d.Kind)
	}
	if !d.AnchorDate.Equal(day(5)) || !d.ReferenceDate.Equal(day(15)) {
		t.Fatalf("wrong anchor/reference: %v / %v", d.AnchorDate, d.ReferenceDate)
	}
	if d.AnchorPrice != 100 || d.ReferencePrice != 90 {
		t.Fatalf("wrong prices: %f / %f", d.AnchorPrice, d.ReferencePrice)
	}
	if d.AnchorOscillator != 25 || d.ReferenceOscillator != 35 {
		t.Fatalf("wrong oscillator values: %f / %f", d.AnchorOscillator, d.ReferenceOscillator)
	}
}

func TestFindBullishNoDivergenceWhenOscillatorConfirms(t *testing.T) {
	lows := make([]float64, 21)
	for i := range lows {
		lows[i] = 110
	}
	lows[5] = 100
	lows[15] = 90
	bars := barsFromLows(lows)
	// Oscillator also makes a lower low: trend confirmed, no divergence.
	osc := flatOscillator(21, 50, map[int]float64{5: 35, 15: 25})

	if divs := FindBullish(bars, osc, Params{Lookback: 5, MinDistance: 3}); len(divs) != 0 {
		t.Fatalf("expected no divergence, got %d", len(divs))
	}
}

func TestFindBearishHigherHighLowerHigh(t *testing.T) {
	highs := make([]float64, 21)
	for i := range highs {
		highs[i] = 90
	}
	highs[5] = 100
	highs[15] = 110
	bars := barsFromHighs(highs)
	osc := flatOscillator(21, 50, map[int]float64{5: 80, 15: 70})

	divs := FindBearish(bars, osc, Params{Lookback: 5, MinDistance: 3})
	if len(divs) != 1 {
		t.Fatalf("expected exactly one divergence, got %d", len(divs))
	}
	if divs[0].Kind != Bearish {
		t.Fatalf("expected bearish, got %s", divs[0].Kind)
	}
	if !divs[0].ReferenceDate.Equal(day(15)) {
		t.Fatalf("wrong reference date: %v", divs[0].ReferenceDate)
	}
}

func TestMinDistanceSkipsClosePairs(t *testing.T) {
	lows := []float64{5, 4, 1, 3, 0.5, 4, 5}
	bars := barsFromLows(lows)
	osc := flatOscillator(7, 10, map[int]float64{2: 20, 4: 30})

	if divs := FindBullish(bars, osc, Params{Lookback: 1, MinDistance: 3}); len(divs) != 0 {
		t.Fatalf("pair below min distance must be skipped, got %d", len(divs))
	}
	if divs := FindBullish(bars, osc, Params{Lookback: 1, MinDistance: 2}); len(divs) != 1 {
		t.Fatalf("expected one divergence with relaxed distance, got %d", len(divs))
	}
}

func TestAlignmentShiftsExtremaWindow(t *testing.T) {
	lows := make([]float64, 21)
	for i := range lows {
		lows[i] = 110
	}
	lows[5] = 100
	lows[15] = 90
	bars := barsFromLows(lows)
	// Oscillator warm-up: first two days missing. In the aligned frame the
	// first dip sits within the edge window and is excluded.
	osc := flatOscillator(21, 50, map[int]float64{5: 25, 15: 35})[2:]

	if divs := FindBullish(bars, osc, Params{Lookback: 5, MinDistance: 3}); len(divs) != 0 {
		t.Fatalf("edge-window extremum must not pair, got %d", len(divs))
	}
}

func TestShortSeriesYieldsNothing(t *testing.T) {
	bars := barsFromLows([]float64{5, 4, 3})
	osc := flatOscillator(3, 10, nil)
	if divs := FindBullish(bars, osc, Params{}); divs != nil {
		t.Fatalf("expected nil for short series, got %v", divs)
	}
}

func TestRecent(t *testing.T) {
	d := Divergence{ReferenceDate: day(15)}
	maxAge := 10 * 24 * time.Hour
	if !d.Recent(day(20), maxAge) {
		t.Fatal("five days old must be recent")
	}
	if d.Recent(day(30), maxAge) {
		t.Fatal("fifteen days old must not be recent")
	}
}
