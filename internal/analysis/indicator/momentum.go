package indicator

import (
	"sort"
)

// MomentumState is the discrete momentum classification of the latest bar.
type MomentumState string

const (
	InsufficientData       MomentumState = "INSUFFICIENT_DATA"
	FullyBullish           MomentumState = "FULLY_BULLISH"
	FullyBearish           MomentumState = "FULLY_BEARISH"
	RecentlyTurnedBullish  MomentumState = "RECENTLY_TURNED_BULLISH"
	RecentlyTurnedBearish  MomentumState = "RECENTLY_TURNED_BEARISH"
	StartingToFlipBullish  MomentumState = "STARTING_TO_FLIP_BULLISH"
	StartingToFlipBearish  MomentumState = "STARTING_TO_FLIP_BEARISH"
	Bullish                MomentumState = "BULLISH"
	Bearish                MomentumState = "BEARISH"
	Neutral                MomentumState = "NEUTRAL"
)

type stateInfo struct {
	description string
	color       string
}

var stateInfos = map[MomentumState]stateInfo{
	InsufficientData:      {"Not enough data to calculate momentum", "#888888"},
	FullyBullish:          {"Strong upward momentum across all indicators", "#39FF14"},
	FullyBearish:          {"Strong downward momentum across all indicators", "#FF3366"},
	RecentlyTurnedBullish: {"MACD just crossed bullish, momentum shifting up", "#00FF88"},
	RecentlyTurnedBearish: {"MACD just crossed bearish, momentum shifting down", "#FF6B35"},
	StartingToFlipBullish: {"Early signs of bullish reversal forming", "#FFE600"},
	StartingToFlipBearish: {"Early signs of bearish reversal forming", "#FF9500"},
	Bullish:               {"Positive momentum, trend favors upside", "#00FFFF"},
	Bearish:               {"Negative momentum, trend favors downside", "#FF00FF"},
	Neutral:               {"Mixed signals, no clear momentum direction", "#888888"},
}

// Description returns the fixed human-readable text for the state.
func (s MomentumState) Description() string { return stateInfos[s].description }

// Color returns the display color associated with the state.
func (s MomentumState) Color() string { return stateInfos[s].color }

const momentumMinBars = 50

// ClassifyMomentum derives the momentum state from the close series and an
// optional map of EMA series keyed by period. Rules are evaluated in strict
// priority order; the first match wins. Without EMA input the fully
// bullish/bearish states cannot fire, since they require the price-vs-EMA leg.
func ClassifyMomentum(closes []float64, emas map[int][]float64) MomentumState {
	if len(closes) < momentumMinBars {
		return InsufficientData
	}

	macd, signal, hist := MACDSeries(closes)
	rsi := RSISeries(closes, rsiPeriod)
	n := len(closes)

	curRSI := rsi[n-1]
	curMACD := macd[n-1]
	curSignal := signal[n-1]
	curHist := hist[n-1]
	prevHist := 0.0
	if n > 1 {
		prevHist = hist[n-2]
	}

	histIncreasing := n >= 3 && hist[n-1] > hist[n-2] && hist[n-2] > hist[n-3]
	histDecreasing := n >= 3 && hist[n-1] < hist[n-2] && hist[n-2] < hist[n-3]

	// Crossovers over the trailing window, excluding the latest bar itself.
	recentBullCross := false
	recentBearCross := false
	for off := 5; off >= 2; off-- {
		i := n - off
		if i-1 < 0 {
			continue
		}
		if macd[i-1] < signal[i-1] && macd[i] > signal[i] {
			recentBullCross = true
		}
		if macd[i-1] > signal[i-1] && macd[i] < signal[i] {
			recentBearCross = true
		}
	}

	emaBullish, emaBearish := false, false
	if short, ok := shortestEMA(emas); ok && len(short) > 0 {
		if closes[n-1] > short[len(short)-1] {
			emaBullish = true
		} else {
			emaBearish = true
		}
	}

	switch {
	case curRSI > 60 && curMACD > curSignal && curHist > 0 && histIncreasing && emaBullish:
		return FullyBullish
	case curRSI < 40 && curMACD < curSignal && curHist < 0 && histDecreasing && emaBearish:
		return FullyBearish
	case recentBullCross && curRSI > 50:
		return RecentlyTurnedBullish
	case recentBearCross && curRSI < 50:
		return RecentlyTurnedBearish
	case curMACD < curSignal && curHist > prevHist && curRSI > 45:
		return StartingToFlipBullish
	case curMACD > curSignal && curHist < prevHist && curRSI < 55:
		return StartingToFlipBearish
	case curRSI > 50 && curMACD > curSignal:
		return Bullish
	case curRSI < 50 && curMACD < curSignal:
		return Bearish
	}
	return Neutral
}

func shortestEMA(emas map[int][]float64) ([]float64, bool) {
	if len(emas) == 0 {
		return nil, false
	}
	periods := make([]int, 0, len(emas))
	for p := range emas {
		periods = append(periods, p)
	}
	sort.Ints(periods)
	return emas[periods[0]], true
}
