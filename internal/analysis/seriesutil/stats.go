package seriesutil

import "math"

// Mean of values. Returns NaN for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// SampleStd is the sample standard deviation (n-1 denominator).
// Returns NaN for fewer than two values.
func SampleStd(values []float64) float64 {
	return math.Sqrt(SampleVar(values))
}

// SampleVar is the sample variance (n-1 denominator).
func SampleVar(values []float64) float64 {
	if len(values) < 2 {
		return math.NaN()
	}
	m := Mean(values)
	var ss float64
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return ss / float64(len(values)-1)
}

// SampleCov is the sample covariance of two equal-length slices
// (n-1 denominator).
func SampleCov(a, b []float64) float64 {
	if len(a) != len(b) || len(a) < 2 {
		return math.NaN()
	}
	ma, mb := Mean(a), Mean(b)
	var ss float64
	for i := range a {
		ss += (a[i] - ma) * (b[i] - mb)
	}
	return ss / float64(len(a)-1)
}

// Pearson is the sample correlation coefficient of two equal-length
// slices. Returns NaN when either side has zero variance.
func Pearson(a, b []float64) float64 {
	sa, sb := SampleStd(a), SampleStd(b)
	if sa == 0 || sb == 0 {
		return math.NaN()
	}
	return SampleCov(a, b) / (sa * sb)
}
