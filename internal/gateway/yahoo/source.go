// Package yahoo fetches daily equity and ETF history from Yahoo Finance.
package yahoo

import (
	"context"
	"fmt"
	"time"

	"github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/equity"

	"marketlens/internal/market"
)

const defaultTimeout = 30 * time.Second

// Source implements market.Source over the Yahoo Finance chart API.
type Source struct {
	timeout time.Duration
}

func NewSource(timeout time.Duration) *Source {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Source{timeout: timeout}
}

// FetchDaily returns the symbol's daily bars in [start, end], ascending.
func (s *Source) FetchDaily(ctx context.Context, symbol string, start, end time.Time) (market.Series, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type result struct {
		bars market.Series
		err  error
	}
	ch := make(chan result, 1)

	// finance-go has no context support, so the fetch runs in its own
	// goroutine and the caller can still bail out on ctx.
	go func() {
		bars, err := fetchChart(symbol, start, end)
		ch <- result{bars, err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("fetch %s: %w", symbol, ctx.Err())
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("fetch %s: %w", symbol, r.err)
		}
		return r.bars, nil
	}
}

func fetchChart(symbol string, start, end time.Time) (market.Series, error) {
	iter := chart.Get(&chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	})

	var bars market.Series
	for iter.Next() {
		b := iter.Bar()
		bars = append(bars, market.Bar{
			Timestamp: time.Unix(int64(b.Timestamp), 0).UTC().Truncate(24 * time.Hour),
			Open:      b.Open.InexactFloat64(),
			High:      b.High.InexactFloat64(),
			Low:       b.Low.InexactFloat64(),
			Close:     b.Close.InexactFloat64(),
			Volume:    float64(b.Volume),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, market.ErrNoData
	}
	if err := bars.Validate(); err != nil {
		return nil, err
	}
	return bars, nil
}

// Quote is a delayed snapshot of the instrument.
type Quote struct {
	Symbol    string    `json:"symbol"`
	Name      string    `json:"name"`
	Exchange  string    `json:"exchange"`
	Price     float64   `json:"price"`
	ChangePct float64   `json:"change_pct"`
	Volume    float64   `json:"volume"`
	MarketCap int64     `json:"market_cap"`
	Updated   time.Time `json:"updated"`
}

// Quote fetches the instrument's current quote.
func (s *Source) Quote(ctx context.Context, symbol string) (*Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type result struct {
		q   *finance.Equity
		err error
	}
	ch := make(chan result, 1)
	go func() {
		q, err := equity.Get(symbol)
		ch <- result{q, err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("quote %s: %w", symbol, ctx.Err())
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("quote %s: %w", symbol, r.err)
		}
		if r.q == nil {
			return nil, fmt.Errorf("quote %s: %w", symbol, market.ErrNoData)
		}
		q := &Quote{
			Symbol:    r.q.Symbol,
			Name:      r.q.ShortName,
			Exchange:  r.q.FullExchangeName,
			Price:     r.q.RegularMarketPrice,
			ChangePct: r.q.RegularMarketChangePercent,
			Volume:    float64(r.q.RegularMarketVolume),
			MarketCap: r.q.MarketCap,
			Updated:   time.Now().UTC(),
		}
		if r.q.RegularMarketTime != 0 {
			q.Updated = time.Unix(int64(r.q.RegularMarketTime), 0).UTC()
		}
		return q, nil
	}
}

func (s *Source) Close() error { return nil }
