package indicator

import (
	"fmt"
	"math"

	"github.com/markcheno/go-talib"

	"marketlens/internal/market"
)

// ReportSettings tunes the extended indicator report. Zero values select the
// dashboard defaults.
type ReportSettings struct {
	EMAFast  int     `json:"ema_fast,omitempty"`
	EMAMid   int     `json:"ema_mid,omitempty"`
	EMASlow  int     `json:"ema_slow,omitempty"`
	EMALong  int     `json:"ema_long,omitempty"`
	RSIOver  float64 `json:"rsi_overbought,omitempty"`
	RSIUnder float64 `json:"rsi_oversold,omitempty"`
}

func (s ReportSettings) withDefaults() ReportSettings {
	if s.EMAFast <= 0 {
		s.EMAFast = 20
	}
	if s.EMAMid <= 0 {
		s.EMAMid = 50
	}
	if s.EMASlow <= 0 {
		s.EMASlow = 100
	}
	if s.EMALong <= 0 {
		s.EMALong = 200
	}
	if s.RSIOver == 0 {
		s.RSIOver = 70
	}
	if s.RSIUnder == 0 {
		s.RSIUnder = 30
	}
	return s
}

// ReportValue is one indicator line of the report.
type ReportValue struct {
	Latest float64   `json:"latest"`
	Series []float64 `json:"series,omitempty"`
	State  string    `json:"state,omitempty"`
	Note   string    `json:"note,omitempty"`
}

// Report is the extended per-symbol indicator set shown on the analysis tab
// and summarized for the narrative generator.
type Report struct {
	Symbol    string      `json:"symbol"`
	Count     int         `json:"count"`
	EMAFast   ReportValue `json:"ema_fast"`
	EMAMid    ReportValue `json:"ema_mid"`
	EMASlow   ReportValue `json:"ema_slow"`
	EMALong   ReportValue `json:"ema_long"`
	RSI       ReportValue `json:"rsi"`
	MACD      ReportValue `json:"macd"`
	ROC       ReportValue `json:"roc"`
	StochK    ReportValue `json:"stoch_k"`
	WilliamsR ReportValue `json:"williams_r"`
	ATR       ReportValue `json:"atr"`
	OBV       ReportValue `json:"obv"`
}

// reportMinBars is the fewest bars the oscillator block (MACD with its
// signal line being the longest warm-up) can be computed from.
const reportMinBars = 40

// BuildReport computes the extended indicator report from daily bars. EMA
// lines whose period exceeds the available history degrade to an
// "insufficient" state instead of failing the whole report.
func BuildReport(symbol string, bars market.Series, cfg ReportSettings) (Report, error) {
	rep := Report{Symbol: symbol, Count: len(bars)}
	if len(bars) < reportMinBars {
		return rep, fmt.Errorf("%d bars for %s, report needs %d", len(bars), symbol, reportMinBars)
	}
	cfg = cfg.withDefaults()
	closes := bars.Closes()
	highs := bars.Highs()
	lows := bars.Lows()
	volumes := bars.Volumes()
	lastClose := closes[len(closes)-1]

	emaLine := func(period int) ReportValue {
		if len(closes) < period {
			return ReportValue{State: "insufficient", Note: fmt.Sprintf("EMA%d needs %d bars", period, period)}
		}
		series := trimLeadingZeros(sanitizeSeries(talib.Ema(closes, period)))
		latest := lastValid(series)
		return ReportValue{
			Latest: latest,
			Series: series,
			State:  relativeState(lastClose, latest),
			Note:   fmt.Sprintf("EMA%d vs price", period),
		}
	}
	rep.EMAFast = emaLine(cfg.EMAFast)
	rep.EMAMid = emaLine(cfg.EMAMid)
	rep.EMASlow = emaLine(cfg.EMASlow)
	rep.EMALong = emaLine(cfg.EMALong)

	rsiSeries := sanitizeSeries(talib.Rsi(closes, 14))
	rsiVal := lastValid(rsiSeries)
	rsiState := "neutral"
	switch {
	case rsiVal >= cfg.RSIOver:
		rsiState = "overbought"
	case rsiVal <= cfg.RSIUnder:
		rsiState = "oversold"
	}
	rep.RSI = ReportValue{
		Latest: rsiVal,
		Series: rsiSeries,
		State:  rsiState,
		Note:   fmt.Sprintf("period=14 thresholds=%.1f/%.1f", cfg.RSIUnder, cfg.RSIOver),
	}

	macd, signal, hist := talib.Macd(closes, 12, 26, 9)
	macdSeries := sanitizeSeries(macd)
	signalSeries := sanitizeSeries(signal)
	histSeries := sanitizeSeries(hist)
	rep.MACD = ReportValue{
		Latest: lastValid(macdSeries),
		Series: histSeries,
		State:  polarityState(lastValid(histSeries)),
		Note:   fmt.Sprintf("signal=%.4f hist=%.4f", lastValid(signalSeries), lastValid(histSeries)),
	}

	rocSeries := sanitizeSeries(talib.Roc(closes, 9))
	rep.ROC = ReportValue{
		Latest: lastValid(rocSeries),
		Series: rocSeries,
		State:  polarityState(lastValid(rocSeries)),
		Note:   "period=9",
	}

	k, d := talib.Stoch(highs, lows, closes, 14, 3, talib.SMA, 3, talib.SMA)
	kSeries := sanitizeSeries(k)
	rep.StochK = ReportValue{
		Latest: lastValid(kSeries),
		Series: kSeries,
		State:  stochasticState(lastValid(kSeries)),
		Note:   fmt.Sprintf("d=%.2f", lastValid(sanitizeSeries(d))),
	}

	will := sanitizeSeries(talib.WillR(highs, lows, closes, 14))
	rep.WilliamsR = ReportValue{
		Latest: lastValid(will),
		Series: will,
		State:  stochasticState(-lastValid(will)),
		Note:   "period=14",
	}

	atrSeries := sanitizeSeries(talib.Atr(highs, lows, closes, 14))
	rep.ATR = ReportValue{
		Latest: lastValid(atrSeries),
		Series: atrSeries,
		State:  "volatility",
		Note:   "period=14",
	}

	obv := sanitizeSeries(talib.Obv(closes, volumes))
	rep.OBV = ReportValue{
		Latest: lastValid(obv),
		Series: obv,
		State:  polarityState(lastValid(rocSeries)),
		Note:   "volume thrust",
	}

	return rep, nil
}

func sanitizeSeries(src []float64) []float64 {
	out := make([]float64, 0, len(src))
	for _, v := range src {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, round4(v))
	}
	return out
}

func trimLeadingZeros(series []float64) []float64 {
	start := 0
	for start < len(series) && math.Abs(series[start]) <= 1e-9 {
		start++
	}
	return series[start:]
}

func lastValid(series []float64) float64 {
	for i := len(series) - 1; i >= 0; i-- {
		if !math.IsNaN(series[i]) && !math.IsInf(series[i], 0) {
			return series[i]
		}
	}
	return 0
}

func relativeState(price, ref float64) string {
	if ref == 0 {
		return "unknown"
	}
	switch {
	case price > ref*1.002:
		return "above"
	case price < ref*0.998:
		return "below"
	default:
		return "touch"
	}
}

func polarityState(v float64) string {
	switch {
	case v > 0:
		return "positive"
	case v < 0:
		return "negative"
	default:
		return "flat"
	}
}

func stochasticState(v float64) string {
	switch {
	case v >= 80:
		return "overbought"
	case v <= 20:
		return "oversold"
	default:
		return "neutral"
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
