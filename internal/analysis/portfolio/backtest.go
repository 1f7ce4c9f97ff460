package portfolio

import (
	"context"
	"fmt"
	"math"
	"time"

	"marketlens/internal/market"
)

// InitialValue is the cash the backtest starts with.
const InitialValue = 10000

// YearReturn is one calendar year's compounded return, in percent.
type YearReturn struct {
	Year   int     `json:"year"`
	Return float64 `json:"return"`
}

// BacktestResult replays the basket over history from a fixed starting
// value. Percent fields follow the Metrics conventions.
type BacktestResult struct {
	Start         time.Time          `json:"start"`
	End           time.Time          `json:"end"`
	InitialValue  float64            `json:"initial_value"`
	FinalValue    float64            `json:"final_value"`
	TotalReturn   float64            `json:"total_return"`
	CAGR          float64            `json:"cagr"`
	Volatility    float64            `json:"volatility"`
	SharpeRatio   float64            `json:"sharpe_ratio"`
	MaxDrawdown   float64            `json:"max_drawdown"`
	BestYear      float64            `json:"best_year"`
	WorstYear     float64            `json:"worst_year"`
	PositiveYears int                `json:"positive_years"`
	TotalYears    int                `json:"total_years"`
	Years         []YearReturn       `json:"years"`
	Values        market.ValueSeries `json:"values"`
}

// Backtest replays the basket over the trailing number of years ending at
// now.
func Backtest(ctx context.Context, src market.Source, allocs Allocations, years int, now time.Time) (*BacktestResult, error) {
	if err := allocs.Validate(); err != nil {
		return nil, err
	}
	if years < 1 {
		return nil, fmt.Errorf("backtest needs at least one year, got %d", years)
	}

	start := market.YearsWindow(now, years)
	panel, err := market.FetchPanel(ctx, src, allocs.Symbols(), start, now)
	if err != nil {
		return nil, fmt.Errorf("fetch backtest panel: %w", err)
	}

	blended, _, err := weightedReturns(panel, allocs)
	if err != nil {
		return nil, err
	}

	base := baseMetrics(blended.Values())
	values := make(market.ValueSeries, len(blended))
	acc := float64(InitialValue)
	for i, p := range blended {
		acc *= 1 + p.Value
		values[i] = market.ValuePoint{Timestamp: p.Timestamp, Value: acc}
	}
	final := values[len(values)-1].Value

	yearly := yearlyReturns(blended)
	best, worst := math.Inf(-1), math.Inf(1)
	positive := 0
	for _, y := range yearly {
		if y.Return > best {
			best = y.Return
		}
		if y.Return < worst {
			worst = y.Return
		}
		if y.Return > 0 {
			positive++
		}
	}

	return &BacktestResult{
		Start:         values[0].Timestamp,
		End:           values[len(values)-1].Timestamp,
		InitialValue:  InitialValue,
		FinalValue:    final,
		TotalReturn:   (final/InitialValue - 1) * 100,
		CAGR:          (math.Pow(final/InitialValue, 1/float64(years)) - 1) * 100,
		Volatility:    base.Volatility,
		SharpeRatio:   base.SharpeRatio,
		MaxDrawdown:   base.MaxDrawdown,
		BestYear:      best,
		WorstYear:     worst,
		PositiveYears: positive,
		TotalYears:    len(yearly),
		Years:         yearly,
		Values:        values,
	}, nil
}

// yearlyReturns compounds the daily returns within each calendar year, in
// percent, ascending by year.
func yearlyReturns(returns market.ValueSeries) []YearReturn {
	var out []YearReturn
	for _, p := range returns {
		year := p.Timestamp.Year()
		if len(out) == 0 || out[len(out)-1].Year != year {
			out = append(out, YearReturn{Year: year, Return: 1})
		}
		out[len(out)-1].Return *= 1 + p.Value
	}
	for i := range out {
		out[i].Return = (out[i].Return - 1) * 100
	}
	return out
}
