package analysis

import (
	"math"
	"slices"

	"github.com/gwlsn/aqreport/internal/results"
	"gonum.org/v1/gonum/stat"
)

// GroupSummary holds the per-scale means of one AQ scale group.
type GroupSummary struct {
	Scale           float64
	Count           int
	MeanBPP         float64
	MeanDSSIM       float64
	MeanSSIMULACRA2 float64
	MeanFileSize    float64

	// RDEfficiency is MeanDSSIM * MeanBPP: the product of the group means,
	// not the mean of per-row products.
	RDEfficiency float64
}

// NewGroupSummary builds a summary from group means and derives RDEfficiency.
func NewGroupSummary(scale float64, count int, bpp, dssim, ssim2, fileSize float64) GroupSummary {
	return GroupSummary{
		Scale:           scale,
		Count:           count,
		MeanBPP:         bpp,
		MeanDSSIM:       dssim,
		MeanSSIMULACRA2: ssim2,
		MeanFileSize:    fileSize,
		RDEfficiency:    dssim * bpp,
	}
}

// Summaries maps AQ scale to its GroupSummary, sorted ascending by scale.
type Summaries []GroupSummary

// Get returns the summary for scale.
func (s Summaries) Get(scale float64) (GroupSummary, bool) {
	i, found := slices.BinarySearchFunc(s, scale, func(g GroupSummary, v float64) int {
		switch {
		case g.Scale < v:
			return -1
		case g.Scale > v:
			return 1
		}
		return 0
	})
	if !found {
		return GroupSummary{}, false
	}
	return s[i], true
}

// Scales returns the keys in order.
func (s Summaries) Scales() []float64 {
	out := make([]float64, len(s))
	for i, g := range s {
		out[i] = g.Scale
	}
	return out
}

// Summarize groups rows by exact AQ scale and averages each metric over the
// rows where it is present. Rows with an absent scale belong to no group.
func Summarize(t *results.Table) Summaries {
	scales := t.Scales()
	out := make(Summaries, 0, len(scales))
	for _, scale := range scales {
		rows := t.WithScale(scale)
		out = append(out, NewGroupSummary(scale, len(rows),
			meanOf(rows, func(r results.Row) float64 { return r.BPP }),
			meanOf(rows, func(r results.Row) float64 { return r.DSSIM }),
			meanOf(rows, func(r results.Row) float64 { return r.SSIMULACRA2 }),
			meanOf(rows, func(r results.Row) float64 { return r.FileSize }),
		))
	}
	return out
}

// OptimalScale returns the scale with the lowest RDEfficiency. NaN
// efficiencies are skipped and ties go to the smaller scale. ok is false
// when no group has a usable efficiency.
func OptimalScale(s Summaries) (scale float64, ok bool) {
	best := math.Inf(1)
	for _, g := range s {
		if math.IsNaN(g.RDEfficiency) {
			continue
		}
		if !ok || g.RDEfficiency < best {
			best, scale, ok = g.RDEfficiency, g.Scale, true
		}
	}
	return scale, ok
}

// DistanceOptimum is the best AQ scale at one target distance.
type DistanceOptimum struct {
	Distance float64
	Scale    float64
	OK       bool
}

// OptimalScaleByDistance picks, for each distinct distance, the scale whose
// rows have the lowest mean per-row dssim*bpp. Unlike GroupSummary this is a
// mean of products.
func OptimalScaleByDistance(t *results.Table) []DistanceOptimum {
	distances := t.Distances()
	out := make([]DistanceOptimum, 0, len(distances))
	for _, d := range distances {
		part := results.NewTable(rowsWhere(t.Rows, func(r results.Row) bool { return r.Distance == d }))

		opt := DistanceOptimum{Distance: d}
		best := math.Inf(1)
		for _, scale := range part.Scales() {
			rd := meanOf(part.WithScale(scale), results.Row.RD)
			if math.IsNaN(rd) {
				continue
			}
			if !opt.OK || rd < best {
				best, opt.Scale, opt.OK = rd, scale, true
			}
		}
		out = append(out, opt)
	}
	return out
}

// meanOf averages key over rows, skipping absent values. Returns NaN when
// nothing is left.
func meanOf(rows []results.Row, key func(results.Row) float64) float64 {
	vals := make([]float64, 0, len(rows))
	for _, r := range rows {
		if v := key(r); !results.IsAbsent(v) {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return math.NaN()
	}
	return stat.Mean(vals, nil)
}

func rowsWhere(rows []results.Row, keep func(results.Row) bool) []results.Row {
	var out []results.Row
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
