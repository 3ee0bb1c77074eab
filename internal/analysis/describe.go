package analysis

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Distribution is a descriptive summary of a set of measurements.
type Distribution struct {
	Count  int
	Mean   float64
	Median float64
	StdDev float64
	Min    float64
	Max    float64
	P5     float64
	P25    float64
	P75    float64
	P95    float64
}

// Describe summarizes values. StdDev is the population standard deviation.
// ok is false for empty input.
func Describe(values []float64) (Distribution, bool) {
	if len(values) == 0 {
		return Distribution{}, false
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	mean, std := stat.PopMeanStdDev(sorted, nil)
	return Distribution{
		Count:  len(sorted),
		Mean:   mean,
		Median: percentile(sorted, 50),
		StdDev: std,
		Min:    floats.Min(sorted),
		Max:    floats.Max(sorted),
		P5:     percentile(sorted, 5),
		P25:    percentile(sorted, 25),
		P75:    percentile(sorted, 75),
		P95:    percentile(sorted, 95),
	}, true
}

// percentile interpolates linearly between the closest ranks of sorted.
func percentile(sorted []float64, p float64) float64 {
	switch len(sorted) {
	case 0:
		return 0
	case 1:
		return sorted[0]
	}

	p = math.Max(0, math.Min(100, p)) / 100
	idx := p * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}
