package aggregate

import "math"

// Mean returns the arithmetic mean of values. ok is false for an empty
// slice; the zero value must not be read as a real mean.
func Mean(values []float64) (mean float64, ok bool) {
	if len(values) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

// SampleStdDev returns the sample standard deviation (n-1 denominator).
// ok is false when fewer than two values are given.
func SampleStdDev(values []float64) (sd float64, ok bool) {
	n := len(values)
	if n < 2 {
		return 0, false
	}
	mean, _ := Mean(values)
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1)), true
}

// Round rounds v half-away-from-zero to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
