package divergence

import (
	"time"

	"marketlens/internal/analysis/seriesutil"
	"marketlens/internal/market"
)

// Kind labels the direction of a detected divergence.
type Kind string

const (
	Bullish Kind = "bullish"
	Bearish Kind = "bearish"
)

// Divergence is a pair of local price extrema whose oscillator disagrees with
// the price direction. Anchor is the earlier extremum, Reference the later.
type Divergence struct {
	Kind                Kind      `json:"kind"`
	AnchorDate          time.Time `json:"anchor_date"`
	AnchorPrice         float64   `json:"anchor_price"`
	AnchorOscillator    float64   `json:"anchor_oscillator"`
	ReferenceDate       time.Time `json:"reference_date"`
	ReferencePrice      float64   `json:"reference_price"`
	ReferenceOscillator float64   `json:"reference_oscillator"`
}

// Recent reports whether the divergence's reference point falls within
// maxAge of now.
func (d Divergence) Recent(now time.Time, maxAge time.Duration) bool {
	return now.Sub(d.ReferenceDate) <= maxAge
}

// Params tunes extrema detection. Zero values select the defaults the
// dashboard uses.
type Params struct {
	Lookback    int // extrema window half-width
	MinDistance int // minimum bar gap between compared extrema
}

func (p Params) withDefaults() Params {
	if p.Lookback <= 0 {
		p.Lookback = 5
	}
	if p.MinDistance <= 0 {
		p.MinDistance = 3
	}
	return p
}

// FindBullish detects lower-low price / higher-low oscillator pairs over the
// lows of the bar series. Results are in chronological order of the
// reference extremum; overlapping windows are not deduplicated.
func FindBullish(bars market.Series, oscillator market.ValueSeries, p Params) []Divergence {
	p = p.withDefaults()
	price, osc := seriesutil.Align(bars.LowSeries(), oscillator)
	return scan(price, osc, p, Bullish)
}

// FindBearish is the mirror of FindBullish over the highs: higher-high price
// with a lower-high oscillator.
func FindBearish(bars market.Series, oscillator market.ValueSeries, p Params) []Divergence {
	p = p.withDefaults()
	price, osc := seriesutil.Align(bars.HighSeries(), oscillator)
	return scan(price, osc, p, Bearish)
}

func scan(price, osc market.ValueSeries, p Params, kind Kind) []Divergence {
	if len(price) < p.Lookback*2 {
		return nil
	}
	values := price.Values()
	var extrema []int
	if kind == Bullish {
		extrema = seriesutil.LocalMinima(values, p.Lookback)
	} else {
		extrema = seriesutil.LocalMaxima(values, p.Lookback)
	}

	var out []Divergence
	for i := 1; i < len(extrema); i++ {
		a, b := extrema[i-1], extrema[i]
		if b-a < p.MinDistance {
			continue
		}
		var hit bool
		if kind == Bullish {
			hit = values[b] < values[a] && osc[b].Value > osc[a].Value
		} else {
			hit = values[b] > values[a] && osc[b].Value < osc[a].Value
		}
		if !hit {
			continue
		}
		out = append(out, Divergence{
			Kind:                kind,
			AnchorDate:          price[a].Timestamp,
			AnchorPrice:         values[a],
			AnchorOscillator:    osc[a].Value,
			ReferenceDate:       price[b].Timestamp,
			ReferencePrice:      values[b],
			ReferenceOscillator: osc[b].Value,
		})
	}
	return out
}
