package seriesutil

import (
	"math"
	"testing"
	"time"

	"marketlens/internal/market"
)

func TestLocalMinima(t *testing.T) {
	// Minimum at index 3, edges excluded with window 2.
	values := []float64{5, 4, 3, 1, 3, 4, 5, 4, 3}
	mins := LocalMinima(values, 2)
	if len(mins) != 1 || mins[0] != 3 {
		t.Fatalf("expected [3], got %v", mins)
	}
}

func TestLocalMinimaEdgesExcluded(t *testing.T) {
	values := []float64{0, 1, 2, 3, 4, 5, 6}
	if mins := LocalMinima(values, 2); len(mins) != 0 {
		t.Fatalf("edge minimum must be excluded, got %v", mins)
	}
}

func TestLocalMaximaPlateauNotDeduplicated(t *testing.T) {
	values := []float64{1, 2, 5, 5, 2, 1, 0, 0, 0}
	maxs := LocalMaxima(values, 2)
	if len(maxs) != 2 || maxs[0] != 2 || maxs[1] != 3 {
		t.Fatalf("expected adjacent plateau indices [2 3], got %v", maxs)
	}
}

func TestLocalExtremaShortSeries(t *testing.T) {
	if got := LocalMinima([]float64{1, 2, 3}, 2); got != nil {
		t.Fatalf("expected nil for short series, got %v", got)
	}
}

func TestEMASeedIsFirstValue(t *testing.T) {
	values := []float64{10, 11, 12, 13}
	out := EMA(values, 3)
	if out[0] != 10 {
		t.Fatalf("seed must be first value, got %f", out[0])
	}
	// alpha = 0.5 for span 3
	want := 0.5*11 + 0.5*10
	if math.Abs(out[1]-want) > 1e-12 {
		t.Fatalf("expected %f, got %f", want, out[1])
	}
}

func TestEMAConstantSeries(t *testing.T) {
	values := []float64{7, 7, 7, 7, 7}
	for i, v := range EMA(values, 4) {
		if v != 7 {
			t.Fatalf("constant series must stay constant, got %f at %d", v, i)
		}
	}
}

func TestSMAWarmup(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	out := SMA(values, 3)
	if !math.IsNaN(out[0]) || !math.IsNaN(out[1]) {
		t.Fatal("first window-1 points must be NaN")
	}
	if out[2] != 2 || out[3] != 3 || out[4] != 4 {
		t.Fatalf("unexpected rolling means: %v", out[2:])
	}
}

func TestAlign(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	day := func(n int) time.Time { return base.AddDate(0, 0, n) }
	a := market.ValueSeries{
		{Timestamp: day(0), Value: 1},
		{Timestamp: day(1), Value: 2},
		{Timestamp: day(3), Value: 3},
	}
	b := market.ValueSeries{
		{Timestamp: day(1), Value: 20},
		{Timestamp: day(2), Value: 30},
		{Timestamp: day(3), Value: 40},
	}
	ga, gb := Align(a, b)
	if len(ga) != 2 || len(gb) != 2 {
		t.Fatalf("expected 2 common points, got %d/%d", len(ga), len(gb))
	}
	if !ga[0].Timestamp.Equal(day(1)) || !ga[1].Timestamp.Equal(day(3)) {
		t.Fatalf("unexpected timestamps: %v", ga.Timestamps())
	}
	if ga[1].Value != 3 || gb[1].Value != 40 {
		t.Fatalf("values not preserved: %v %v", ga, gb)
	}
}

func TestAlignDisjoint(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	a := market.ValueSeries{{Timestamp: base, Value: 1}}
	b := market.ValueSeries{{Timestamp: base.AddDate(0, 0, 1), Value: 2}}
	ga, gb := Align(a, b)
	if len(ga) != 0 || len(gb) != 0 {
		t.Fatalf("expected empty intersection, got %v %v", ga, gb)
	}
}
