package hedge

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"marketlens/internal/market"
)

type fakeSource struct {
	series map[string]market.Series
	errs   map[string]error
}

func (f *fakeSource) FetchDaily(_ context.Context, symbol string, _, _ time.Time) (market.Series, error) {
	if err, ok := f.errs[symbol]; ok {
		return nil, err
	}
	return f.series[symbol], nil
}

func (f *fakeSource) Close() error { return nil }

var hedgeBase = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

// seriesFromReturns builds a daily close series that realizes the given
// return stream.
func seriesFromReturns(start float64, returns []float64) market.Series {
	out := make(market.Series, 0, len(returns)+1)
	price := start
	add := func(i int, p float64) {
		out = append(out, market.Bar{
			Timestamp: hedgeBase.AddDate(0, 0, i),
			Open:      p, High: p, Low: p, Close: p,
			Volume: 1000,
		})
	}
	add(0, price)
	for i, r := range returns {
		price *= 1 + r
		add(i+1, price)
	}
	return out
}

func testReturns(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		if i%2 == 0 {
			out[i] = 0.01 + 0.001*float64(i%5)
		} else {
			out[i] = -0.012 - 0.001*float64(i%3)
		}
	}
	return out
}

func negated(returns []float64) []float64 {
	out := make([]float64, len(returns))
	for i, r := range returns {
		out[i] = -r
	}
	return out
}

func TestScoreCorrelation(t *testing.T) {
	cases := []struct {
		corr float64
		want Score
	}{
		{-0.9, ScoreExcellent},
		{-0.5, ScoreExcellent},
		{-0.49, ScoreVeryGood},
		{-0.2, ScoreVeryGood},
		{-0.01, ScoreGood},
		{0, ScoreGood},
		{0.3, ScoreModerate},
		{0.5, ScoreLow},
		{0.6, ScoreLow},
		{0.61, ScoreNotRecommended},
	}
	for _, c := range cases {
		if got := ScoreCorrelation(c.corr); got != c.want {
			t.Errorf("ScoreCorrelation(%f) = %s, want %s", c.corr, got, c.want)
		}
	}
}

func TestRankHedges(t *testing.T) {
	rets := testReturns(30)
	src := &fakeSource{
		series: map[string]market.Series{
			"AAPL": seriesFromReturns(200, rets),
			"NEG":  seriesFromReturns(50, negated(rets)),
			"SAME": seriesFromReturns(80, rets),
		},
		errs: map[string]error{"BAD": errors.New("upstream down")},
	}

	now := hedgeBase.AddDate(0, 0, 40)
	ranking, err := RankHedges(context.Background(), src, "AAPL", market.Range("1y"), now, []string{"NEG", "SAME", "BAD"})
	if err != nil {
		t.Fatalf("RankHedges: %v", err)
	}

	if len(ranking.Candidates) != 2 {
		t.Fatalf("got %d candidates, want 2", len(ranking.Candidates))
	}
	neg, same := ranking.Candidates[0], ranking.Candidates[1]
	if neg.Symbol != "NEG" || same.Symbol != "SAME" {
		t.Fatalf("wrong ascending order: %s, %s", neg.Symbol, same.Symbol)
	}
	if math.Abs(neg.Correlation+1) > 1e-6 {
		t.Errorf("negated returns correlation = %f, want -1", neg.Correlation)
	}
	if neg.Score != ScoreExcellent {
		t.Errorf("negated score = %s, want %s", neg.Score, ScoreExcellent)
	}
	if math.Abs(same.Correlation-1) > 1e-6 {
		t.Errorf("identical returns correlation = %f, want 1", same.Correlation)
	}
	if same.Score != ScoreNotRecommended {
		t.Errorf("identical score = %s, want %s", same.Score, ScoreNotRecommended)
	}
	if _, ok := ranking.Failures["BAD"]; !ok {
		t.Error("failed symbol must be reported")
	}
	if neg.Name != "NEG" || neg.Category != "Other" {
		t.Errorf("unknown symbol metadata = %q/%q", neg.Name, neg.Category)
	}
}

func TestRankHedgesTickerFailure(t *testing.T) {
	src := &fakeSource{errs: map[string]error{"AAPL": errors.New("upstream down")}}
	now := hedgeBase.AddDate(0, 0, 40)
	if _, err := RankHedges(context.Background(), src, "AAPL", market.Range("1y"), now, []string{"GLD"}); err == nil {
		t.Fatal("expected error when the position itself cannot be fetched")
	}
}

func TestTopHedges(t *testing.T) {
	r := &Ranking{Candidates: []Candidate{
		{Asset: Asset{Symbol: "A"}, Correlation: -0.8},
		{Asset: Asset{Symbol: "B"}, Correlation: 0.1},
		{Asset: Asset{Symbol: "C"}, Correlation: 0.49},
		{Asset: Asset{Symbol: "D"}, Correlation: 0.7},
	}}
	top := r.TopHedges(2)
	if len(top) != 2 || top[0].Symbol != "A" || top[1].Symbol != "B" {
		t.Fatalf("unexpected top hedges: %+v", top)
	}
	all := r.TopHedges(10)
	if len(all) != 3 {
		t.Fatalf("correlation >= 0.5 must be excluded, got %d", len(all))
	}
}

func TestSimulateBlendPerfectHedge(t *testing.T) {
	rets := testReturns(40)
	sim, err := SimulateBlend(rets, negated(rets), 50)
	if err != nil {
		t.Fatalf("SimulateBlend: %v", err)
	}
	if sim.HedgedVolatility > 1e-9 {
		t.Errorf("50/50 with a perfect inverse must cancel, vol = %f", sim.HedgedVolatility)
	}
	if math.Abs(sim.VolatilityReduction-100) > 1e-6 {
		t.Errorf("volatility reduction = %f, want 100", sim.VolatilityReduction)
	}
	if sim.HedgedSharpe != 0 {
		t.Errorf("zero-volatility sharpe = %f, want 0", sim.HedgedSharpe)
	}
	if math.Abs(sim.Correlation+1) > 1e-9 {
		t.Errorf("correlation = %f, want -1", sim.Correlation)
	}
}

func TestSimulateBlendFullAllocation(t *testing.T) {
	rets := testReturns(40)
	hedge := negated(rets)
	sim, err := SimulateBlend(rets, hedge, 100)
	if err != nil {
		t.Fatalf("SimulateBlend: %v", err)
	}
	only, err := SimulateBlend(hedge, hedge, 0)
	if err != nil {
		t.Fatalf("SimulateBlend: %v", err)
	}
	if math.Abs(sim.HedgedVolatility-only.OriginalVolatility) > 1e-9 {
		t.Errorf("100%% allocation vol = %f, want %f", sim.HedgedVolatility, only.OriginalVolatility)
	}
	if math.Abs(sim.HedgedReturn-only.OriginalReturn) > 1e-9 {
		t.Errorf("100%% allocation return = %f, want %f", sim.HedgedReturn, only.OriginalReturn)
	}
}

func TestSimulateBlendFlatStream(t *testing.T) {
	flat := make([]float64, 10)
	sim, err := SimulateBlend(flat, testReturns(10), 30)
	if err != nil {
		t.Fatalf("SimulateBlend: %v", err)
	}
	if sim.Correlation != 0 {
		t.Errorf("zero-variance ticker: correlation = %f, want 0", sim.Correlation)
	}
	if math.IsNaN(sim.OriginalSharpe) || math.IsNaN(sim.HedgedSharpe) {
		t.Errorf("flat stream produced NaN sharpe: %+v", sim)
	}
}

func TestSimulateBlendValidation(t *testing.T) {
	if _, err := SimulateBlend([]float64{0.1}, []float64{0.1, 0.2}, 20); err == nil {
		t.Error("mismatched lengths must fail")
	}
	if _, err := SimulateBlend([]float64{0.1}, []float64{0.1}, 20); err == nil {
		t.Error("single observation must fail")
	}
	if _, err := SimulateBlend(testReturns(10), testReturns(10), 120); err == nil {
		t.Error("allocation above 100 percent must fail")
	}
}

func TestFallbackAnalysis(t *testing.T) {
	top := []Candidate{
		{Asset: Asset{Symbol: "GLD", Name: "SPDR Gold Shares", Description: "Physical gold"}, Correlation: -0.6, Score: ScoreExcellent},
	}
	out := FallbackAnalysis("AAPL", "Technology", 1.2, top)
	for _, want := range []string{"AAPL", "Technology", "GLD", "EXCELLENT", "more volatile"} {
		if !strings.Contains(out, want) {
			t.Errorf("analysis missing %q", want)
		}
	}
	if empty := FallbackAnalysis("AAPL", "", 1, nil); !strings.Contains(empty, "No correlations") {
		t.Errorf("empty ranking message = %q", empty)
	}
}

func TestAnalyze(t *testing.T) {
	rets := testReturns(30)
	src := &fakeSource{series: map[string]market.Series{
		"AAPL": seriesFromReturns(200, rets),
		"GLD":  seriesFromReturns(180, negated(rets)),
	}}
	now := hedgeBase.AddDate(0, 0, 40)
	sim, err := Analyze(context.Background(), src, "AAPL", "GLD", 20, market.Range("6mo"), now)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if sim.Ticker != "AAPL" || sim.HedgeSymbol != "GLD" {
		t.Fatalf("labels not carried: %+v", sim)
	}
	if sim.HedgedVolatility >= sim.OriginalVolatility {
		t.Errorf("inverse hedge must reduce volatility: %f >= %f", sim.HedgedVolatility, sim.OriginalVolatility)
	}
}
