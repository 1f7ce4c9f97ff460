package seriesutil

// LocalMinima returns the indices i where values[i] equals the minimum of the
// closed window [i-window, i+window]. Indices within window of either edge are
// excluded. Plateaus can yield adjacent qualifying indices; they are reported
// as-is, not deduplicated.
func LocalMinima(values []float64, window int) []int {
	return localExtrema(values, window, false)
}

// LocalMaxima is the mirror of LocalMinima for window maxima.
func LocalMaxima(values []float64, window int) []int {
	return localExtrema(values, window, true)
}

func localExtrema(values []float64, window int, isMax bool) []int {
	if window <= 0 || len(values) < window*2+1 {
		return nil
	}
	var out []int
	for i := window; i < len(values)-window; i++ {
		center := values[i]
		qualifies := true
		for j := i - window; j <= i+window; j++ {
			if isMax && values[j] > center {
				qualifies = false
				break
			}
			if !isMax && values[j] < center {
				qualifies = false
				break
			}
		}
		if qualifies {
			out = append(out, i)
		}
	}
	return out
}
