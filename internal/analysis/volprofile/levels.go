package volprofile

import (
	"math"
	"sort"
	"strconv"
)

// LevelKind tags where a liquidity level came from.
type LevelKind string

const (
	LevelRound         LevelKind = "round"
	LevelPOC           LevelKind = "poc"
	LevelValueAreaHigh LevelKind = "vah"
	LevelValueAreaLow  LevelKind = "val"
)

// Level is one price of interest near the current price.
type Level struct {
	Price    float64   `json:"price"`
	Kind     LevelKind `json:"kind"`
	DeltaPct float64   `json:"delta_pct"` // signed percent distance from current price
}

const maxLevels = 8

// LiquidityLevels picks the round-number prices near currentPrice plus the
// profile's POC and value-area bounds, keeping the maxLevels closest by
// absolute percent distance.
//
// The round-number step is two orders of magnitude below the price's integer
// digit count, so a price of 43250 steps by 1000 and a price of 95 steps
// by 1.
func LiquidityLevels(p *Profile, currentPrice float64) []Level {
	if p == nil || currentPrice <= 0 {
		return nil
	}

	base := roundBase(currentPrice)
	nearest := math.Round(currentPrice/base) * base

	var levels []Level
	for i := -5; i <= 5; i++ {
		price := nearest + float64(i)*base
		if price <= 0 {
			continue
		}
		levels = append(levels, level(price, LevelRound, currentPrice))
	}
	levels = append(levels,
		level(p.POC, LevelPOC, currentPrice),
		level(p.ValueAreaHigh, LevelValueAreaHigh, currentPrice),
		level(p.ValueAreaLow, LevelValueAreaLow, currentPrice),
	)

	sort.SliceStable(levels, func(i, j int) bool {
		return math.Abs(levels[i].DeltaPct) < math.Abs(levels[j].DeltaPct)
	})
	if len(levels) > maxLevels {
		levels = levels[:maxLevels]
	}
	return levels
}

func level(price float64, kind LevelKind, current float64) Level {
	return Level{
		Price:    price,
		Kind:     kind,
		DeltaPct: (price - current) / current * 100,
	}
}

// roundBase is 10^(digits-2) where digits counts the integer digits of the
// price. Sub-dollar prices get a base of 0.1.
func roundBase(price float64) float64 {
	digits := len(strconv.Itoa(int(price)))
	return math.Pow(10, float64(digits-2))
}
