// Package binance fetches daily crypto history from Binance spot.
package binance

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2"

	"marketlens/internal/logger"
	"marketlens/internal/market"
)

// klinePageLimit is Binance's maximum klines per request.
const klinePageLimit = 1000

// Config holds the Binance source parameters. Public market data needs no
// credentials.
type Config struct {
	APIKey      string
	SecretKey   string
	BaseURL     string
	HTTPTimeout time.Duration
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.HTTPTimeout <= 0 {
		out.HTTPTimeout = 15 * time.Second
	}
	return out
}

// Source implements market.Source over the Binance klines API.
type Source struct {
	cfg    Config
	client *binance.Client
}

func New(cfg Config) *Source {
	final := cfg.withDefaults()
	client := binance.NewClient(final.APIKey, final.SecretKey)
	if final.BaseURL != "" {
		client.BaseURL = final.BaseURL
	}
	client.HTTPClient.Timeout = final.HTTPTimeout
	return &Source{cfg: final, client: client}
}

// FetchDaily returns the pair's daily bars in [start, end], ascending.
// Symbols are normalized to Binance pair notation, so "btc-usd" fetches
// BTCUSDT.
func (s *Source) FetchDaily(ctx context.Context, symbol string, start, end time.Time) (market.Series, error) {
	pair := normalizePair(symbol)
	if pair == "" {
		return nil, fmt.Errorf("symbol is required")
	}

	var bars market.Series
	from := start.UnixMilli()
	until := end.UnixMilli()
	for from < until {
		logger.Debugf("[binance] klines %s from=%d", pair, from)
		page, err := s.client.NewKlinesService().
			Symbol(pair).
			Interval("1d").
			StartTime(from).
			EndTime(until).
			Limit(klinePageLimit).
			Do(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", pair, err)
		}
		if len(page) == 0 {
			break
		}
		for _, k := range page {
			bars = append(bars, market.Bar{
				Timestamp: time.UnixMilli(k.OpenTime).UTC(),
				Open:      parsePrice(k.Open),
				High:      parsePrice(k.High),
				Low:       parsePrice(k.Low),
				Close:     parsePrice(k.Close),
				Volume:    parsePrice(k.Volume),
			})
		}
		if len(page) < klinePageLimit {
			break
		}
		from = page[len(page)-1].CloseTime + 1
	}

	if len(bars) == 0 {
		return nil, market.ErrNoData
	}
	if err := bars.Validate(); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pair, err)
	}
	return bars, nil
}

func (s *Source) Close() error { return nil }

// normalizePair maps dashboard symbols onto Binance pair notation:
// uppercase, no separator, USD quoted as USDT.
func normalizePair(symbol string) string {
	pair := strings.ToUpper(strings.TrimSpace(symbol))
	pair = strings.NewReplacer("-", "", "/", "").Replace(pair)
	if strings.HasSuffix(pair, "USD") {
		pair += "T"
	}
	return pair
}

func parsePrice(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
