package market

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrUnorderedSeries marks a series whose timestamps are not strictly ascending.
	ErrUnorderedSeries = errors.New("series timestamps not strictly ascending")
	// ErrInvalidBar marks a bar with non-finite or impossible OHLCV values.
	ErrInvalidBar = errors.New("invalid bar")
	// ErrNoData means the provider had nothing for the requested symbol.
	ErrNoData = errors.New("no data for symbol")
)

// Bar is one sampled time point of a symbol.
type Bar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// Series is an ascending, timestamp-unique sequence of bars.
type Series []Bar

// Validate rejects truly invalid input: negative or non-finite prices,
// high < low, and unordered or duplicate timestamps. Short or empty series
// are normal inputs and pass.
func (s Series) Validate() error {
	var prev time.Time
	for i, b := range s {
		for _, v := range []float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: bar %d has non-finite value", ErrInvalidBar, i)
			}
		}
		if b.Open < 0 || b.High < 0 || b.Low < 0 || b.Close < 0 || b.Volume < 0 {
			return fmt.Errorf("%w: bar %d has negative value", ErrInvalidBar, i)
		}
		if b.High < b.Low || b.High < b.Open || b.High < b.Close || b.Low > b.Open || b.Low > b.Close {
			return fmt.Errorf("%w: bar %d violates high/low bounds", ErrInvalidBar, i)
		}
		if i > 0 && !b.Timestamp.After(prev) {
			return fmt.Errorf("%w: bar %d", ErrUnorderedSeries, i)
		}
		prev = b.Timestamp
	}
	return nil
}

func (s Series) Closes() []float64  { return s.extract(func(b Bar) float64 { return b.Close }) }
func (s Series) Opens() []float64   { return s.extract(func(b Bar) float64 { return b.Open }) }
func (s Series) Highs() []float64   { return s.extract(func(b Bar) float64 { return b.High }) }
func (s Series) Lows() []float64    { return s.extract(func(b Bar) float64 { return b.Low }) }
func (s Series) Volumes() []float64 { return s.extract(func(b Bar) float64 { return b.Volume }) }

func (s Series) extract(f func(Bar) float64) []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = f(b)
	}
	return out
}

// CloseSeries returns the closes as a timestamped value series.
func (s Series) CloseSeries() ValueSeries {
	out := make(ValueSeries, len(s))
	for i, b := range s {
		out[i] = ValuePoint{Timestamp: b.Timestamp, Value: b.Close}
	}
	return out
}

// LowSeries returns the lows as a timestamped value series.
func (s Series) LowSeries() ValueSeries {
	out := make(ValueSeries, len(s))
	for i, b := range s {
		out[i] = ValuePoint{Timestamp: b.Timestamp, Value: b.Low}
	}
	return out
}

// HighSeries returns the highs as a timestamped value series.
func (s Series) HighSeries() ValueSeries {
	out := make(ValueSeries, len(s))
	for i, b := range s {
		out[i] = ValuePoint{Timestamp: b.Timestamp, Value: b.High}
	}
	return out
}
