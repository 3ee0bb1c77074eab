package analysis

import (
	"cmp"
	"math"
	"slices"
)

// minBDPoints is the fewest curve points BD-rate is computed from.
const minBDPoints = 4

// BDRate returns the Bjøntegaard delta rate of test against reference, in
// percent. Both curves are (bpp, metric) points; rates are compared at equal
// metric values, so the metric may be a distortion or a quality score. Log10
// rate is integrated over the overlapping metric range; a negative result
// means test needs fewer bits for the same quality. ok is false when either
// curve has fewer than four usable points or the ranges do not overlap.
func BDRate(reference, test []CurvePoint) (float64, bool) {
	ref := logRateCurve(reference)
	tst := logRateCurve(test)
	if len(ref) < minBDPoints || len(tst) < minBDPoints {
		return 0, false
	}

	lo := math.Max(ref[0].q, tst[0].q)
	hi := math.Min(ref[len(ref)-1].q, tst[len(tst)-1].q)
	if lo >= hi {
		return 0, false
	}

	avgRef := integrate(ref, lo, hi) / (hi - lo)
	avgTest := integrate(tst, lo, hi) / (hi - lo)
	return (math.Pow(10, avgTest-avgRef) - 1) * 100, true
}

type qr struct {
	q, r float64
}

// logRateCurve keeps finite points with positive bpp as (quality, log10 bpp)
// sorted by quality.
func logRateCurve(points []CurvePoint) []qr {
	out := make([]qr, 0, len(points))
	for _, p := range points {
		if !(p.BPP > 0) || math.IsInf(p.BPP, 0) || math.IsNaN(p.Metric) || math.IsInf(p.Metric, 0) {
			continue
		}
		out = append(out, qr{q: p.Metric, r: math.Log10(p.BPP)})
	}
	slices.SortStableFunc(out, func(a, b qr) int { return cmp.Compare(a.q, b.q) })
	return out
}

// integrate applies the trapezoidal rule to the piecewise-linear curve
// restricted to [lo, hi].
func integrate(curve []qr, lo, hi float64) float64 {
	var area float64
	for i := 1; i < len(curve); i++ {
		a, b := curve[i-1], curve[i]
		if b.q <= a.q {
			continue
		}
		x0 := math.Max(a.q, lo)
		x1 := math.Min(b.q, hi)
		if x0 >= x1 {
			continue
		}
		lerp := func(x float64) float64 {
			return a.r + (b.r-a.r)*(x-a.q)/(b.q-a.q)
		}
		area += (lerp(x0) + lerp(x1)) / 2 * (x1 - x0)
	}
	return area
}
