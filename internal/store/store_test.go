package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"marketlens/internal/market"
)

var storeBase = time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC)

func sampleBars(n int, offset int) market.Series {
	out := make(market.Series, n)
	for i := range out {
		price := 100 + float64(offset+i)
		out[i] = market.Bar{
			Timestamp: storeBase.AddDate(0, 0, offset+i),
			Open:      price, High: price + 1, Low: price - 1, Close: price,
			Volume: 1000,
		}
	}
	return out
}

func TestMemoryPutMergesByTimestamp(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	if err := s.Put(ctx, "AAPL", sampleBars(5, 0)); err != nil {
		t.Fatal(err)
	}
	// Overlapping write: days 3..7, day 3 and 4 overwritten.
	if err := s.Put(ctx, "AAPL", sampleBars(5, 3)); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(ctx, "AAPL", storeBase, storeBase.AddDate(0, 0, 30))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 8 {
		t.Fatalf("got %d bars, want 8", len(got))
	}
	for i := 1; i < len(got); i++ {
		if !got[i-1].Timestamp.Before(got[i].Timestamp) {
			t.Fatal("bars not ascending")
		}
	}

	window, err := s.Get(ctx, "AAPL", storeBase.AddDate(0, 0, 2), storeBase.AddDate(0, 0, 4))
	if err != nil {
		t.Fatal(err)
	}
	if len(window) != 3 {
		t.Fatalf("window returned %d bars, want 3", len(window))
	}
}

func TestMemoryPutRequiresSymbol(t *testing.T) {
	if err := NewMemory().Put(context.Background(), "", sampleBars(1, 0)); err == nil {
		t.Fatal("expected error")
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.db")
	s, err := NewSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.Put(ctx, "SPY", sampleBars(10, 0)); err != nil {
		t.Fatal(err)
	}
	// Idempotent overwrite.
	if err := s.Put(ctx, "SPY", sampleBars(10, 0)); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(ctx, "SPY", storeBase.AddDate(0, 0, 2), storeBase.AddDate(0, 0, 5))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 4 {
		t.Fatalf("got %d bars, want 4", len(got))
	}
	if got[0].Close != 102 || got[0].Timestamp != storeBase.AddDate(0, 0, 2) {
		t.Fatalf("unexpected first bar: %+v", got[0])
	}

	if other, _ := s.Get(ctx, "QQQ", storeBase, storeBase.AddDate(0, 0, 30)); len(other) != 0 {
		t.Fatalf("unrelated symbol returned %d bars", len(other))
	}
}

type countingSource struct {
	calls int
	bars  market.Series
}

func (c *countingSource) FetchDaily(context.Context, string, time.Time, time.Time) (market.Series, error) {
	c.calls++
	return c.bars, nil
}

func (c *countingSource) Close() error { return nil }

func TestCachedSourceServesSecondRequestFromCache(t *testing.T) {
	inner := &countingSource{bars: sampleBars(30, 0)}
	cached := NewCachedSource(inner, NewMemory())
	ctx := context.Background()
	start, end := storeBase, storeBase.AddDate(0, 0, 29)

	first, err := cached.FetchDaily(ctx, "AAPL", start, end)
	if err != nil {
		t.Fatal(err)
	}
	second, err := cached.FetchDaily(ctx, "AAPL", start, end)
	if err != nil {
		t.Fatal(err)
	}
	if inner.calls != 1 {
		t.Fatalf("inner fetched %d times, want 1", inner.calls)
	}
	if len(first) != len(second) {
		t.Fatalf("cache returned %d bars, fetch returned %d", len(second), len(first))
	}
}

func TestCachedSourceRefetchesStaleWindow(t *testing.T) {
	inner := &countingSource{bars: sampleBars(30, 0)}
	cached := NewCachedSource(inner, NewMemory())
	ctx := context.Background()

	if _, err := cached.FetchDaily(ctx, "AAPL", storeBase, storeBase.AddDate(0, 0, 29)); err != nil {
		t.Fatal(err)
	}
	// The cached series ends 10 days before the new window's end.
	if _, err := cached.FetchDaily(ctx, "AAPL", storeBase, storeBase.AddDate(0, 0, 39)); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 2 {
		t.Fatalf("inner fetched %d times, want 2", inner.calls)
	}
}
