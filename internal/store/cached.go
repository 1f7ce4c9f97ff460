package store

import (
	"context"
	"time"

	"marketlens/internal/logger"
	"marketlens/internal/market"
)

// CachedSource serves daily bars from a BarStore when the cached window
// covers the request, falling back to the inner source and writing what
// it fetched.
type CachedSource struct {
	inner market.Source
	bars  BarStore

	// headSlack/tailSlack absorb weekends and holidays: the cache counts
	// as covering when its first bar is within headSlack of the window
	// start and its last bar within tailSlack of the window end.
	headSlack time.Duration
	tailSlack time.Duration
}

func NewCachedSource(inner market.Source, bars BarStore) *CachedSource {
	return &CachedSource{
		inner:     inner,
		bars:      bars,
		headSlack: 7 * 24 * time.Hour,
		tailSlack: 4 * 24 * time.Hour,
	}
}

func (c *CachedSource) FetchDaily(ctx context.Context, symbol string, start, end time.Time) (market.Series, error) {
	cached, err := c.bars.Get(ctx, symbol, start, end)
	if err == nil && c.covers(cached, start, end) {
		logger.Debugf("[store] cache hit %s (%d bars)", symbol, len(cached))
		return cached, nil
	}

	fetched, err := c.inner.FetchDaily(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}
	if perr := c.bars.Put(ctx, symbol, fetched); perr != nil {
		logger.Warnf("[store] cache write for %s failed: %v", symbol, perr)
	}
	return fetched, nil
}

func (c *CachedSource) covers(bars market.Series, start, end time.Time) bool {
	if len(bars) == 0 {
		return false
	}
	if bars[0].Timestamp.Sub(start) > c.headSlack {
		return false
	}
	return end.Sub(bars[len(bars)-1].Timestamp) <= c.tailSlack
}

func (c *CachedSource) Close() error {
	if err := c.bars.Close(); err != nil {
		return err
	}
	return c.inner.Close()
}
