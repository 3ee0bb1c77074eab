package analysis

import (
	"math"

	"github.com/gwlsn/aqreport/internal/results"
)

// Metric selects the distortion or quality column of a row.
type Metric int

const (
	MetricDSSIM Metric = iota
	MetricSSIMULACRA2
)

// Value returns the metric's value for r.
func (m Metric) Value(r results.Row) float64 {
	if m == MetricSSIMULACRA2 {
		return r.SSIMULACRA2
	}
	return r.DSSIM
}

func (m Metric) String() string {
	if m == MetricSSIMULACRA2 {
		return "ssimulacra2"
	}
	return "dssim"
}

// CurvePoint is the mean bpp and mean metric of one scale at one distance.
type CurvePoint struct {
	Distance float64
	BPP      float64
	Metric   float64
}

// DistanceCurve averages bpp and the metric per distance for the rows of one
// scale, ordered by distance. Rows with an absent distance are ignored.
func DistanceCurve(t *results.Table, scale float64, m Metric) []CurvePoint {
	part := results.NewTable(t.WithScale(scale))
	distances := part.Distances()
	out := make([]CurvePoint, 0, len(distances))
	for _, d := range distances {
		rows := rowsWhere(part.Rows, func(r results.Row) bool { return r.Distance == d })
		out = append(out, CurvePoint{
			Distance: d,
			BPP:      meanOf(rows, func(r results.Row) float64 { return r.BPP }),
			Metric:   meanOf(rows, m.Value),
		})
	}
	return out
}

// RDValues returns the finite per-row dssim*bpp values of one scale.
func RDValues(t *results.Table, scale float64) []float64 {
	var out []float64
	for _, r := range t.WithScale(scale) {
		rd := r.RD()
		if math.IsNaN(rd) || math.IsInf(rd, 0) {
			continue
		}
		out = append(out, rd)
	}
	return out
}
