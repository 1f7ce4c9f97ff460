package pretty

import (
	"strings"
	"testing"

	"marketlens/internal/analysis/hedge"
	"marketlens/internal/analysis/portfolio"
)

func TestFormatMarketCap(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{2.5e12, "$2.50T"},
		{1e12, "$1.00T"},
		{340e9, "$340.00B"},
		{75e6, "$75.00M"},
		{999999, "$999999"},
		{0, "$0"},
	}
	for _, tc := range cases {
		if got := FormatMarketCap(tc.in); got != tc.want {
			t.Errorf("FormatMarketCap(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTrimTo(t *testing.T) {
	if got := TrimTo("hello world", 5); got != "hello..." {
		t.Errorf("got %q", got)
	}
	if got := TrimTo("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := TrimTo("anything", 0); got != "anything" {
		t.Errorf("got %q", got)
	}
}

func TestHedgeTable(t *testing.T) {
	r := &hedge.Ranking{
		Ticker: "AAPL",
		Candidates: []hedge.Candidate{
			{Asset: hedge.Asset{Symbol: "GLD", Name: "SPDR Gold Shares", Category: "Precious Metals"}, Correlation: -0.62, Score: hedge.ScoreExcellent},
			{Asset: hedge.Asset{Symbol: "TLT", Name: "iShares 20+ Year Treasury", Category: "Fixed Income"}, Correlation: -0.21, Score: hedge.ScoreVeryGood},
		},
	}
	var b strings.Builder
	HedgeTable(&b, r, 1)
	out := b.String()
	if !strings.Contains(out, "GLD") || !strings.Contains(out, "AAPL") {
		t.Errorf("table missing symbols:\n%s", out)
	}
	if strings.Contains(out, "TLT") {
		t.Errorf("row cap ignored:\n%s", out)
	}
}

func TestBacktestTableIncludesYears(t *testing.T) {
	r := &portfolio.BacktestResult{
		InitialValue: 10000,
		FinalValue:   12000,
		TotalReturn:  20,
		Years: []portfolio.YearReturn{
			{Year: 2023, Return: 8.5},
			{Year: 2024, Return: 10.6},
		},
	}
	var b strings.Builder
	BacktestTable(&b, r)
	out := b.String()
	for _, want := range []string{"$12000", "2023", "10.6%"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}
