// Package analytics turns raw health entities into the scalar statistics,
// zone models, date-range resolutions and chart-ready projections the
// dashboard renders. Every function here is pure: no I/O, no mutation of
// inputs, total over well-typed input including empty collections.
package analytics

// Average returns the arithmetic mean of xs, or 0 for an empty slice.
// Callers must pre-filter entities whose underlying optional field was
// absent; an empty result is a valid "nothing recorded" answer, not an error.
func Average(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return Sum(xs) / float64(len(xs))
}

// Sum returns the sum of xs; 0 for an empty slice.
func Sum(xs []float64) float64 {
	var total float64
	for _, x := range xs {
		total += x
	}
	return total
}

// Max returns the largest value in xs, or 0 for an empty slice.
func Max(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

// Min returns the smallest value in xs, or 0 for an empty slice.
func Min(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}
