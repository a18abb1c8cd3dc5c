package analytics

import (
	"math"
	"sort"
)

// scoreBins is the number of quantile bins requested for each RFM metric.
const scoreBins = 5

// quantileBoundaries computes the interior empirical quantile boundaries
// that split values into up to n equal-population bins (for n=5 the
// 20/40/60/80th percentiles), using linear interpolation between order
// statistics. Duplicate boundaries produced by heavy value repetition are
// dropped, so the returned slice may hold fewer than n-1 cut points, down
// to zero when every value is identical.
func quantileBoundaries(values []float64, n int) []float64 {
	if len(values) == 0 || n < 2 {
		return nil
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	boundaries := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		q := percentile(sorted, float64(i)/float64(n))
		if len(boundaries) == 0 || q > boundaries[len(boundaries)-1] {
			boundaries = append(boundaries, q)
		}
	}

	// A boundary equal to the minimum value produces an unreachable empty
	// first bin; drop it so bin zero is always populated.
	for len(boundaries) > 0 && boundaries[0] <= sorted[0] {
		boundaries = boundaries[1:]
	}

	return boundaries
}

// percentile returns the q-th quantile (0 < q < 1) of pre-sorted values,
// interpolating linearly between adjacent order statistics.
func percentile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	frac := pos - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// binIndex returns the zero-based bin a value falls into given interior
// boundaries. Bins are right-closed: a value equal to a boundary belongs to
// the bin below it.
func binIndex(v float64, boundaries []float64) int {
	idx := 0
	for _, b := range boundaries {
		if v > b {
			idx++
		}
	}
	return idx
}

// directScore maps a bin index to an ordinal score where the bin holding
// the smallest values scores 1. Used for frequency and monetary.
func directScore(bin int) int {
	return bin + 1
}

// invertedScore maps a bin index to an ordinal score where the bin holding
// the smallest values scores the maximum 5. Used for recency, where small
// means recent. When bins collapse, the achievable range shrinks from the
// bottom: the most recent customers always keep score 5.
func invertedScore(bin int) int {
	return scoreBins - bin
}
