package indicator

import (
	"math"
	"testing"
)

func risingCloses(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func TestRSIUndefinedShortSeries(t *testing.T) {
	for _, n := range []int{0, 1, 5, 13} {
		rsi := RSISeries(risingCloses(n, 100, 1), 14)
		for i, v := range rsi {
			if !math.IsNaN(v) {
				t.Fatalf("n=%d: expected NaN at %d, got %f", n, i, v)
			}
		}
	}
}

func TestRSIAllGainsIsHundred(t *testing.T) {
	rsi := RSISeries(risingCloses(30, 100, 1), 14)
	last := rsi[len(rsi)-1]
	if last != 100 {
		t.Fatalf("all positive deltas must give RSI 100, got %f", last)
	}
}

func TestRSIWarmupBoundary(t *testing.T) {
	rsi := RSISeries(risingCloses(20, 100, 1), 14)
	if !math.IsNaN(rsi[13]) {
		t.Fatalf("index 13 must be undefined, got %f", rsi[13])
	}
	if math.IsNaN(rsi[14]) {
		t.Fatal("index 14 must be defined")
	}
}

func TestRSIBalancedMoves(t *testing.T) {
	// Alternating +1/-1 deltas: average gain equals average loss, rs=1, rsi=50.
	closes := make([]float64, 31)
	closes[0] = 100
	for i := 1; i < len(closes); i++ {
		if i%2 == 1 {
			closes[i] = closes[i-1] + 1
		} else {
			closes[i] = closes[i-1] - 1
		}
	}
	rsi := RSISeries(closes, 14)
	if math.Abs(rsi[len(rsi)-1]-50) > 1e-9 {
		t.Fatalf("balanced deltas must give RSI 50, got %f", rsi[len(rsi)-1])
	}
}

func TestMACDHistogramIdentity(t *testing.T) {
	closes := make([]float64, 120)
	for i := range closes {
		closes[i] = 100 + 10*math.Sin(float64(i)/7)
	}
	macd, signal, hist := MACDSeries(closes)
	for i := range closes {
		if math.Abs(hist[i]-(macd[i]-signal[i])) > 1e-12 {
			t.Fatalf("histogram != macd-signal at %d", i)
		}
	}
}

func TestComputeSnapshotEmpty(t *testing.T) {
	if _, ok := ComputeSnapshot(nil); ok {
		t.Fatal("empty series must not produce a snapshot")
	}
}

func TestComputeSnapshotShortSeriesHasNoRSI(t *testing.T) {
	snap, ok := ComputeSnapshot(risingCloses(10, 50, 1))
	if !ok {
		t.Fatal("expected snapshot")
	}
	if snap.RSIDefined {
		t.Fatal("RSI must be undefined for 10 bars")
	}
}
