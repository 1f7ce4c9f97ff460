// Package store caches daily bars so repeated analyses do not refetch
// identical history.
package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"marketlens/internal/market"
)

// BarStore reads and writes per-symbol daily bar series.
type BarStore interface {
	// Put merges bars into the symbol's series, overwriting bars that
	// share a timestamp.
	Put(ctx context.Context, symbol string, bars market.Series) error
	// Get returns the stored bars within [start, end], ascending.
	Get(ctx context.Context, symbol string, start, end time.Time) (market.Series, error)
	Close() error
}

// MemoryBarStore is the in-process implementation.
type MemoryBarStore struct {
	mu   sync.RWMutex
	data map[string]market.Series
}

func NewMemory() *MemoryBarStore {
	return &MemoryBarStore{data: make(map[string]market.Series)}
}

func (s *MemoryBarStore) Put(_ context.Context, symbol string, bars market.Series) error {
	if symbol == "" {
		return errors.New("symbol is required")
	}
	if len(bars) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	byTS := make(map[time.Time]market.Bar, len(s.data[symbol])+len(bars))
	for _, b := range s.data[symbol] {
		byTS[b.Timestamp] = b
	}
	for _, b := range bars {
		byTS[b.Timestamp] = b
	}
	merged := make(market.Series, 0, len(byTS))
	for _, b := range byTS {
		merged = append(merged, b)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Timestamp.Before(merged[j].Timestamp) })
	s.data[symbol] = merged
	return nil
}

func (s *MemoryBarStore) Get(_ context.Context, symbol string, start, end time.Time) (market.Series, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out market.Series
	for _, b := range s.data[symbol] {
		if b.Timestamp.Before(start) || b.Timestamp.After(end) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *MemoryBarStore) Close() error { return nil }
