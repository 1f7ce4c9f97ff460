// Package pretty renders the CLI tables and display formatting.
package pretty

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"marketlens/internal/analysis/hedge"
	"marketlens/internal/analysis/portfolio"
	"marketlens/internal/dashboard"
)

// FormatMarketCap renders a dollar value in compact T/B/M notation.
func FormatMarketCap(v float64) string {
	switch {
	case v >= 1e12:
		return fmt.Sprintf("$%.2fT", v/1e12)
	case v >= 1e9:
		return fmt.Sprintf("$%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("$%.2fM", v/1e6)
	default:
		return fmt.Sprintf("$%.0f", v)
	}
}

// TrimTo caps a string at max runes, appending an ellipsis when cut.
func TrimTo(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

// HedgeTable prints the ranked hedge candidates, best first. n caps the
// row count; n <= 0 prints everything.
func HedgeTable(w io.Writer, r *hedge.Ranking, n int) {
	t := newTable(w)
	t.SetTitle(fmt.Sprintf("Hedge candidates for %s", r.Ticker))
	t.AppendHeader(table.Row{"Symbol", "Name", "Category", "Correlation", "Score"})
	for i, c := range r.Candidates {
		if n > 0 && i == n {
			break
		}
		t.AppendRow(table.Row{c.Symbol, TrimTo(c.Name, 28), c.Category, fmt.Sprintf("%+.3f", c.Correlation), c.Score})
	}
	if len(r.Failures) > 0 {
		t.AppendFooter(table.Row{"", "", "", "skipped", fmt.Sprintf("%d", len(r.Failures))})
	}
	t.Render()
}

// SimulationTable prints a hedged-blend simulation side by side.
func SimulationTable(w io.Writer, s *hedge.Simulation) {
	t := newTable(w)
	t.SetTitle(fmt.Sprintf("%s hedged %.0f%% with %s", s.Ticker, s.HedgeAllocationPct, s.HedgeSymbol))
	t.AppendHeader(table.Row{"", "Original", "Hedged"})
	t.AppendRows([]table.Row{
		{"Annual volatility", pct(s.OriginalVolatility), pct(s.HedgedVolatility)},
		{"Annual return", pct(s.OriginalReturn), pct(s.HedgedReturn)},
		{"Sharpe ratio", fmt.Sprintf("%.2f", s.OriginalSharpe), fmt.Sprintf("%.2f", s.HedgedSharpe)},
	})
	t.AppendFooter(table.Row{"Volatility reduction", "", pct(s.VolatilityReduction)})
	t.Render()
}

// MetricsTable prints portfolio risk metrics.
func MetricsTable(w io.Writer, m *portfolio.Metrics) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRows([]table.Row{
		{"Annual return", pct(m.AnnualReturn)},
		{"Volatility", pct(m.Volatility)},
		{"Sharpe ratio", fmt.Sprintf("%.2f", m.SharpeRatio)},
		{"Max drawdown", pct(m.MaxDrawdown)},
		{"Beta", fmt.Sprintf("%.2f", m.Beta)},
		{"Avg correlation", fmt.Sprintf("%.2f", m.AvgCorrelation)},
		{"Total return", pct(m.TotalReturn)},
	})
	t.Render()
}

// BacktestTable prints the backtest summary with its per-year breakdown.
func BacktestTable(w io.Writer, r *portfolio.BacktestResult) {
	t := newTable(w)
	t.SetTitle(fmt.Sprintf("Backtest %s — %s", r.Start.Format("2006-01-02"), r.End.Format("2006-01-02")))
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRows([]table.Row{
		{"Initial value", fmt.Sprintf("$%.0f", r.InitialValue)},
		{"Final value", fmt.Sprintf("$%.0f", r.FinalValue)},
		{"Total return", pct(r.TotalReturn)},
		{"CAGR", pct(r.CAGR)},
		{"Volatility", pct(r.Volatility)},
		{"Sharpe ratio", fmt.Sprintf("%.2f", r.SharpeRatio)},
		{"Max drawdown", pct(r.MaxDrawdown)},
		{"Positive years", fmt.Sprintf("%d of %d", r.PositiveYears, r.TotalYears)},
	})
	t.Render()

	if len(r.Years) == 0 {
		return
	}
	yt := newTable(w)
	yt.AppendHeader(table.Row{"Year", "Return"})
	for _, y := range r.Years {
		yt.AppendRow(table.Row{y.Year, pct(y.Return)})
	}
	yt.Render()
}

// AllocationsTable prints a basket with optional dollar amounts.
func AllocationsTable(w io.Writer, a portfolio.Allocations) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Symbol", "Category", "Weight", "Amount"})
	for _, al := range a {
		amount := ""
		if al.Amount > 0 {
			amount = fmt.Sprintf("$%.2f", al.Amount)
		}
		t.AppendRow(table.Row{al.Symbol, al.Category, pct(al.Weight), amount})
	}
	t.Render()
}

// AnalysisTable prints the composed symbol analysis for the CLI.
func AnalysisTable(w io.Writer, a *dashboard.Analysis) {
	t := newTable(w)
	t.SetTitle(fmt.Sprintf("%s — %.2f", a.Symbol, a.LatestClose))
	t.AppendHeader(table.Row{"Field", "Value"})
	rows := []table.Row{
		{"Momentum", fmt.Sprintf("%s (%s)", a.Momentum.State, a.Momentum.Description)},
	}
	if a.Oscillator.RSIDefined {
		rows = append(rows, table.Row{"RSI(14)", fmt.Sprintf("%.1f", a.Oscillator.RSI)})
	}
	rows = append(rows,
		table.Row{"MACD", fmt.Sprintf("%.4f / signal %.4f", a.Oscillator.MACD, a.Oscillator.Signal)},
		table.Row{"Divergences", fmt.Sprintf("%d bullish, %d bearish", len(a.Bullish), len(a.Bearish))},
	)
	if a.Profile != nil {
		rows = append(rows,
			table.Row{"POC", fmt.Sprintf("%.2f", a.Profile.POC)},
			table.Row{"Value area", fmt.Sprintf("%.2f – %.2f", a.Profile.ValueAreaLow, a.Profile.ValueAreaHigh)},
		)
	}
	t.AppendRows(rows)
	t.Render()

	if len(a.Levels) > 0 {
		lt := newTable(w)
		lt.AppendHeader(table.Row{"Level", "Kind", "Delta"})
		for _, lv := range a.Levels {
			lt.AppendRow(table.Row{fmt.Sprintf("%.2f", lv.Price), string(lv.Kind), fmt.Sprintf("%+.1f%%", lv.DeltaPct)})
		}
		lt.Render()
	}
}

func pct(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}
