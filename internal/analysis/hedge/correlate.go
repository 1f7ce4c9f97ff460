package hedge

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"marketlens/internal/analysis/seriesutil"
	"marketlens/internal/market"
)

// Score grades how well a candidate hedges the position. Lower
// correlation grades better.
type Score string

const (
	ScoreExcellent      Score = "EXCELLENT"
	ScoreVeryGood       Score = "VERY GOOD"
	ScoreGood           Score = "GOOD"
	ScoreModerate       Score = "MODERATE"
	ScoreLow            Score = "LOW"
	ScoreNotRecommended Score = "NOT RECOMMENDED"
)

// ScoreCorrelation maps a correlation coefficient onto a hedge grade.
func ScoreCorrelation(corr float64) Score {
	switch {
	case corr <= -0.5:
		return ScoreExcellent
	case corr <= -0.2:
		return ScoreVeryGood
	case corr <= 0:
		return ScoreGood
	case corr <= 0.3:
		return ScoreModerate
	case corr <= 0.6:
		return ScoreLow
	default:
		return ScoreNotRecommended
	}
}

var scoreColors = map[Score]string{
	ScoreExcellent:      "#39FF14",
	ScoreVeryGood:       "#00FFFF",
	ScoreGood:           "#7B68EE",
	ScoreModerate:       "#FFD700",
	ScoreLow:            "#FF8C00",
	ScoreNotRecommended: "#FF3366",
}

func (s Score) Color() string {
	if c, ok := scoreColors[s]; ok {
		return c
	}
	return "#888888"
}

// Candidate is one universe asset scored against the position.
type Candidate struct {
	Asset
	Correlation float64 `json:"correlation"`
	Score       Score   `json:"score"`
}

// Ranking holds the scored candidates, ascending by correlation, plus
// any symbols that could not be scored and why.
type Ranking struct {
	Ticker     string           `json:"ticker"`
	Candidates []Candidate      `json:"candidates"`
	Failures   map[string]error `json:"-"`
}

// minOverlap is the fewest aligned return observations accepted for a
// correlation estimate.
const minOverlap = 20

// RankHedges scores each hedge symbol against the ticker over the given
// range. A nil or empty symbols slice means the whole built-in universe.
// Symbols that fail to fetch or lack overlapping history are reported in
// the ranking's Failures rather than silently dropped.
func RankHedges(ctx context.Context, src market.Source, ticker string, rng market.Range, now time.Time, symbols []string) (*Ranking, error) {
	if len(symbols) == 0 {
		symbols = UniverseSymbols()
	}

	start := rng.Window(now)
	panel, err := market.FetchPanel(ctx, src, append([]string{ticker}, symbols...), start, now)
	if err != nil {
		return nil, fmt.Errorf("fetch hedge panel: %w", err)
	}

	ranking := &Ranking{Ticker: ticker, Failures: make(map[string]error)}
	for sym, ferr := range panel.Failures {
		if sym == ticker {
			return nil, fmt.Errorf("fetch %s: %w", ticker, ferr)
		}
		ranking.Failures[sym] = ferr
	}

	base, ok := panel.Closes[ticker]
	if !ok {
		return nil, fmt.Errorf("fetch %s: %w", ticker, market.ErrNoData)
	}
	baseReturns := base.Returns()

	for _, sym := range symbols {
		closes, ok := panel.Closes[sym]
		if !ok {
			continue // already in Failures
		}
		a, b := seriesutil.Align(baseReturns, closes.Returns())
		if len(a) < minOverlap {
			ranking.Failures[sym] = fmt.Errorf("%d overlapping returns, need %d", len(a), minOverlap)
			continue
		}
		corr := seriesutil.Pearson(a.Values(), b.Values())
		if math.IsNaN(corr) {
			ranking.Failures[sym] = fmt.Errorf("zero return variance over %d observations", len(a))
			continue
		}
		ranking.Candidates = append(ranking.Candidates, Candidate{
			Asset:       lookupAsset(sym),
			Correlation: corr,
			Score:       ScoreCorrelation(corr),
		})
	}

	sort.SliceStable(ranking.Candidates, func(i, j int) bool {
		return ranking.Candidates[i].Correlation < ranking.Candidates[j].Correlation
	})
	return ranking, nil
}

// TopHedges filters the ranking down to usable hedges (correlation below
// 0.5) and returns at most n of the best ones.
func (r *Ranking) TopHedges(n int) []Candidate {
	var out []Candidate
	for _, c := range r.Candidates {
		if c.Correlation < 0.5 {
			out = append(out, c)
		}
		if len(out) == n {
			break
		}
	}
	return out
}
