// Package render builds the echarts pages for symbol analysis and backtest
// results.
package render

import (
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/markcheno/go-talib"

	"marketlens/internal/analysis/divergence"
	"marketlens/internal/analysis/portfolio"
	"marketlens/internal/dashboard"
)

const dateLayout = "2006-01-02"

var emaOverlayPeriods = []int{20, 50, 200}

// SymbolPage lays out the candlestick chart with EMA overlays and divergence
// marks, the RSI pane and the volume profile for one analysis.
func SymbolPage(a *dashboard.Analysis) *components.Page {
	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	page.PageTitle = fmt.Sprintf("%s — marketlens", a.Symbol)
	page.AddCharts(candlestick(a), rsiPane(a), profileBars(a))
	return page
}

func candlestick(a *dashboard.Analysis) *charts.Kline {
	kline := charts.NewKLine()
	kline.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s daily", a.Symbol),
			Subtitle: fmt.Sprintf("%s — %s", a.Momentum.State, a.Momentum.Description),
		}),
		charts.WithYAxisOpts(opts.YAxis{Scale: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
		charts.WithInitializationOpts(opts.Initialization{Width: "1100px", Height: "520px"}),
	)

	x := make([]string, len(a.Bars))
	candles := make([]opts.KlineData, len(a.Bars))
	for i, b := range a.Bars {
		x[i] = b.Timestamp.Format(dateLayout)
		candles[i] = opts.KlineData{Value: [4]float64{b.Open, b.Close, b.Low, b.High}}
	}
	kline.SetXAxis(x).AddSeries("price", candles, divergenceMarks(a)...)

	closes := a.Bars.Closes()
	for _, period := range emaOverlayPeriods {
		if len(closes) < period {
			continue
		}
		ema := talib.Ema(closes, period)
		points := make([]opts.LineData, len(ema))
		for i, v := range ema {
			if i < period-1 {
				points[i] = opts.LineData{Value: nil}
				continue
			}
			points[i] = opts.LineData{Value: v}
		}
		line := charts.NewLine()
		line.SetXAxis(x).AddSeries(fmt.Sprintf("EMA%d", period), points,
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
		kline.Overlap(line)
	}
	return kline
}

func divergenceMarks(a *dashboard.Analysis) []charts.SeriesOpts {
	var marks []opts.MarkPointNameCoordItem
	add := func(divs []divergence.Divergence, label string, y func(divergence.Divergence) float64) {
		for _, d := range divs {
			marks = append(marks, opts.MarkPointNameCoordItem{
				Name:       label,
				Coordinate: []interface{}{d.ReferenceDate.Format(dateLayout), y(d)},
			})
		}
	}
	add(a.Bullish, "bullish divergence", func(d divergence.Divergence) float64 { return d.ReferencePrice })
	add(a.Bearish, "bearish divergence", func(d divergence.Divergence) float64 { return d.ReferencePrice })
	if len(marks) == 0 {
		return nil
	}
	return []charts.SeriesOpts{charts.WithMarkPointNameCoordItemOpts(marks...)}
}

func rsiPane(a *dashboard.Analysis) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "RSI(14)"}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 100}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithInitializationOpts(opts.Initialization{Width: "1100px", Height: "240px"}),
	)
	x := make([]string, 0, len(a.Bars))
	points := make([]opts.LineData, 0, len(a.Bars))
	for i, v := range a.Report.RSI.Series {
		if i >= len(a.Bars) {
			break
		}
		x = append(x, a.Bars[i].Timestamp.Format(dateLayout))
		points = append(points, opts.LineData{Value: v})
	}
	line.SetXAxis(x).AddSeries("rsi", points)
	return line
}

func profileBars(a *dashboard.Analysis) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Volume profile"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithInitializationOpts(opts.Initialization{Width: "1100px", Height: "420px"}),
	)
	if a.Profile == nil {
		return bar
	}
	levels := make([]string, len(a.Profile.Bins))
	volumes := make([]opts.BarData, len(a.Profile.Bins))
	for i, b := range a.Profile.Bins {
		levels[i] = fmt.Sprintf("%.2f", b.Level)
		volumes[i] = opts.BarData{Value: b.Volume}
	}
	bar.SetXAxis(levels).AddSeries("volume", volumes)
	bar.XYReversal()
	return bar
}

// BacktestPage charts the simulated value curve of a backtest.
func BacktestPage(r *portfolio.BacktestResult) *components.Page {
	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	page.PageTitle = "Backtest — marketlens"

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "Portfolio value",
			Subtitle: fmt.Sprintf("%.0f → %.0f (%.1f%% total, %.1f%% CAGR)",
				r.InitialValue, r.FinalValue, r.TotalReturn, r.CAGR),
		}),
		charts.WithYAxisOpts(opts.YAxis{Scale: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
		charts.WithInitializationOpts(opts.Initialization{Width: "1100px", Height: "480px"}),
	)
	x := make([]string, len(r.Values))
	points := make([]opts.LineData, len(r.Values))
	for i, p := range r.Values {
		x[i] = p.Timestamp.Format(dateLayout)
		points[i] = opts.LineData{Value: p.Value}
	}
	line.SetXAxis(x).AddSeries("value", points,
		charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: opts.Float(0.2)}))
	page.AddCharts(line)
	return page
}
