// Package volprofile builds price-level volume distributions for daily bars:
// the point of control, the 70% value area, and nearby liquidity levels.
package volprofile

import (
	"math"
	"sort"

	"marketlens/internal/market"
)

const (
	defaultBins     = 50
	minProfileBars  = 20
	valueAreaVolume = 0.70
)

// Bin is one price level of the profile, keyed by its rounded level.
type Bin struct {
	Level  float64 `json:"level"`
	Volume float64 `json:"volume"`
}

// Profile is the volume-at-price distribution for a bar series.
type Profile struct {
	Bins          []Bin   `json:"bins"` // ascending by level
	POC           float64 `json:"poc"`
	ValueAreaHigh float64 `json:"value_area_high"`
	ValueAreaLow  float64 `json:"value_area_low"`
	BinSize       float64 `json:"bin_size"`
	TotalVolume   float64 `json:"total_volume"`

	valueArea []float64 // greedy selection, ascending
}

// ValueAreaLevels returns the levels selected into the value area,
// ascending. The set is volume-greedy and is not required to be contiguous.
func (p *Profile) ValueAreaLevels() []float64 {
	out := make([]float64, len(p.valueArea))
	copy(out, p.valueArea)
	return out
}

// Build computes the profile over the full series. Each bar's volume is
// spread evenly across the bins its high-low range touches. Returns nil
// when fewer than minProfileBars bars are available.
func Build(bars market.Series) *Profile {
	if len(bars) < minProfileBars {
		return nil
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, b := range bars {
		if b.Low < lo {
			lo = b.Low
		}
		if b.High > hi {
			hi = b.High
		}
	}

	binSize := (hi - lo) / defaultBins
	volumeAt := make(map[float64]float64)
	var total float64

	for _, b := range bars {
		total += b.Volume
		if binSize <= 0 {
			// Flat range: everything lands in one bin.
			volumeAt[b.Close] += b.Volume
			continue
		}
		// A bar touches floor((high-low)/binSize)+1 levels, stepping one
		// bin at a time up from its low.
		levels := int((b.High-b.Low)/binSize) + 1
		share := b.Volume / float64(levels)
		for i := 0; i < levels; i++ {
			level := b.Low + float64(i)*binSize
			volumeAt[binKey(level, binSize)] += share
		}
	}
	if len(volumeAt) == 0 {
		return nil
	}

	bins := make([]Bin, 0, len(volumeAt))
	for level, vol := range volumeAt {
		bins = append(bins, Bin{Level: level, Volume: vol})
	}
	sort.Slice(bins, func(i, j int) bool { return bins[i].Level < bins[j].Level })

	p := &Profile{
		Bins:        bins,
		BinSize:     binSize,
		TotalVolume: total,
	}
	p.POC = pocOf(bins)
	p.computeValueArea()
	return p
}

// binKey snaps a price level onto the bin grid the way the distribution is
// keyed: round(level/binSize)*binSize.
func binKey(level, binSize float64) float64 {
	return math.Round(level/binSize) * binSize
}

func pocOf(bins []Bin) float64 {
	best := bins[0]
	for _, b := range bins[1:] {
		if b.Volume > best.Volume {
			best = b
		}
	}
	return best.Level
}

// computeValueArea picks bins greedily by descending volume until 70% of
// total volume is covered, then bounds the area by the min and max selected
// levels. Gaps inside the bounds are allowed.
func (p *Profile) computeValueArea() {
	byVolume := make([]Bin, len(p.Bins))
	copy(byVolume, p.Bins)
	sort.SliceStable(byVolume, func(i, j int) bool { return byVolume[i].Volume > byVolume[j].Volume })

	target := p.TotalVolume * valueAreaVolume
	var covered float64
	for _, b := range byVolume {
		p.valueArea = append(p.valueArea, b.Level)
		covered += b.Volume
		if covered >= target {
			break
		}
	}

	p.ValueAreaLow, p.ValueAreaHigh = p.valueArea[0], p.valueArea[0]
	for _, l := range p.valueArea[1:] {
		if l < p.ValueAreaLow {
			p.ValueAreaLow = l
		}
		if l > p.ValueAreaHigh {
			p.ValueAreaHigh = l
		}
	}
	sort.Float64s(p.valueArea)
}
