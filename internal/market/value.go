package market

import "time"

// ValuePoint is one timestamped scalar of a derived series (indicator,
// return, portfolio value).
type ValuePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// ValueSeries is an ascending, timestamp-unique scalar series.
type ValueSeries []ValuePoint

func (v ValueSeries) Values() []float64 {
	out := make([]float64, len(v))
	for i, p := range v {
		out[i] = p.Value
	}
	return out
}

func (v ValueSeries) Timestamps() []time.Time {
	out := make([]time.Time, len(v))
	for i, p := range v {
		out[i] = p.Timestamp
	}
	return out
}

// Returns computes the day-over-day percentage change series. The first
// point is dropped, matching a pct_change-then-dropna pipeline.
func (v ValueSeries) Returns() ValueSeries {
	if len(v) < 2 {
		return nil
	}
	out := make(ValueSeries, 0, len(v)-1)
	for i := 1; i < len(v); i++ {
		prev := v[i-1].Value
		if prev == 0 {
			// Undefined change off a zero base; skip the point.
			continue
		}
		out = append(out, ValuePoint{
			Timestamp: v[i].Timestamp,
			Value:     (v[i].Value - prev) / prev,
		})
	}
	return out
}
