package market

import (
	"context"
	"fmt"
	"time"
)

// Range selects the lookback window for a history fetch.
type Range string

const (
	Range6Mo Range = "6mo"
	Range1Y  Range = "1y"
	Range2Y  Range = "2y"
)

// ParseRange accepts the period strings the API exposes. An empty string
// defaults to one year.
func ParseRange(s string) (Range, error) {
	switch Range(s) {
	case Range6Mo, Range1Y, Range2Y:
		return Range(s), nil
	case "":
		return Range1Y, nil
	}
	return "", fmt.Errorf("unknown range %q", s)
}

// Window returns the start time of the range relative to now.
func (r Range) Window(now time.Time) time.Time {
	switch r {
	case Range6Mo:
		return now.AddDate(0, -6, 0)
	case Range2Y:
		return now.AddDate(-2, 0, 0)
	default:
		return now.AddDate(-1, 0, 0)
	}
}

// YearsWindow returns the start time for a backtest lookback in whole years.
func YearsWindow(now time.Time, years int) time.Time {
	if years <= 0 {
		years = 1
	}
	return now.AddDate(0, 0, -years*365)
}

// Source abstracts the external market data provider. Implementations do all
// I/O here; the analytics engines never fetch.
type Source interface {
	// FetchDaily returns the daily bars for symbol between start and end,
	// ascending by timestamp.
	FetchDaily(ctx context.Context, symbol string, start, end time.Time) (Series, error)
	// Close releases underlying resources.
	Close() error
}
