package indicator

import (
	"math"

	"marketlens/internal/analysis/seriesutil"
)

const (
	rsiPeriod  = 14
	macdFast   = 12
	macdSlow   = 26
	macdSignal = 9
)

// Snapshot holds the oscillator values at the latest bar. RSI is undefined
// (RSIDefined false) until the warm-up window has elapsed.
type Snapshot struct {
	RSI        float64 `json:"rsi"`
	RSIDefined bool    `json:"rsi_defined"`
	MACD       float64 `json:"macd"`
	Signal     float64 `json:"signal"`
	Histogram  float64 `json:"histogram"`
}

// RSISeries computes the rolling-mean RSI: average gain and average absolute
// loss over the trailing period, rs = gain/loss, rsi = 100 - 100/(1+rs), and
// 100 outright when the window holds no losses. A rolling mean of `period`
// deltas needs period+1 bars, so indices 0..period are NaN.
func RSISeries(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	for i := range out {
		out[i] = math.NaN()
	}
	if period <= 0 || len(closes) < period+1 {
		return out
	}
	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}
	var gainSum, lossSum float64
	for i := 1; i < len(closes); i++ {
		gainSum += gains[i]
		lossSum += losses[i]
		if i > period {
			gainSum -= gains[i-period]
			lossSum -= losses[i-period]
		}
		if i < period {
			continue
		}
		avgGain := gainSum / float64(period)
		avgLoss := lossSum / float64(period)
		if avgLoss == 0 {
			out[i] = 100
			continue
		}
		rs := avgGain / avgLoss
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

// MACDSeries computes the MACD line (ema12-ema26), its signal (ema9 of the
// line) and the histogram (line - signal) over seeded EMAs.
func MACDSeries(closes []float64) (macd, signal, histogram []float64) {
	fast := seriesutil.EMA(closes, macdFast)
	slow := seriesutil.EMA(closes, macdSlow)
	macd = make([]float64, len(closes))
	for i := range macd {
		macd[i] = fast[i] - slow[i]
	}
	signal = seriesutil.EMA(macd, macdSignal)
	histogram = make([]float64, len(closes))
	for i := range histogram {
		histogram[i] = macd[i] - signal[i]
	}
	return macd, signal, histogram
}

// ComputeSnapshot returns the latest oscillator values for a close series.
// ok is false when the series is empty.
func ComputeSnapshot(closes []float64) (Snapshot, bool) {
	if len(closes) == 0 {
		return Snapshot{}, false
	}
	macd, signal, hist := MACDSeries(closes)
	rsi := RSISeries(closes, rsiPeriod)
	last := len(closes) - 1
	snap := Snapshot{
		MACD:      macd[last],
		Signal:    signal[last],
		Histogram: hist[last],
	}
	if seriesutil.IsFinite(rsi[last]) {
		snap.RSI = rsi[last]
		snap.RSIDefined = true
	}
	return snap, true
}
