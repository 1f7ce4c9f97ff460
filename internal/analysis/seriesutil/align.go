package seriesutil

import (
	"marketlens/internal/market"
)

// Align re-indexes two value series to the intersection of their timestamps,
// preserving ascending order. Both inputs must already be ascending and
// timestamp-unique. The returned series have equal length.
func Align(a, b market.ValueSeries) (market.ValueSeries, market.ValueSeries) {
	outA := make(market.ValueSeries, 0, min(len(a), len(b)))
	outB := make(market.ValueSeries, 0, min(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Timestamp.Before(b[j].Timestamp):
			i++
		case b[j].Timestamp.Before(a[i].Timestamp):
			j++
		default:
			outA = append(outA, a[i])
			outB = append(outB, b[j])
			i++
			j++
		}
	}
	return outA, outB
}
