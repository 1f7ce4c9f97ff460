package market

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const panelFetchConcurrency = 8

// Panel holds daily close series for several symbols over a common window.
type Panel struct {
	Closes map[string]ValueSeries
	// Failures records symbols the provider returned nothing for, so callers
	// can tell "no signal" from "no data".
	Failures map[string]error
}

// Symbols returns the successfully fetched symbols in sorted order.
func (p *Panel) Symbols() []string {
	out := make([]string, 0, len(p.Closes))
	for s := range p.Closes {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// FetchPanel loads daily closes for all symbols concurrently. Per-symbol
// fetch errors do not abort the panel; they are collected in Failures.
func FetchPanel(ctx context.Context, src Source, symbols []string, start, end time.Time) (*Panel, error) {
	panel := &Panel{
		Closes:   make(map[string]ValueSeries, len(symbols)),
		Failures: make(map[string]error),
	}
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(panelFetchConcurrency)
	for _, sym := range symbols {
		sym := sym
		g.Go(func() error {
			series, err := src.FetchDaily(gctx, sym, start, end)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				panel.Failures[sym] = err
			case len(series) == 0:
				panel.Failures[sym] = ErrNoData
			default:
				panel.Closes[sym] = series.CloseSeries()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return panel, nil
}
