// Package results models a tuning-sweep results table: one row per encode
// of one image at one (distance, AQ scale) setting.
package results

import (
	"math"
	"slices"
)

// Recognized column names.
const (
	ColImage       = "image"
	ColDistance    = "distance"
	ColAQScale     = "aq_scale"
	ColAQMean      = "aq_mean"
	ColFileSize    = "file_size"
	ColBPP         = "bpp"
	ColDSSIM       = "dssim"
	ColSSIMULACRA2 = "ssimulacra2"
)

// Columns lists the recognized columns in file order.
var Columns = []string{
	ColImage, ColDistance, ColAQScale, ColAQMean,
	ColFileSize, ColBPP, ColDSSIM, ColSSIMULACRA2,
}

// Absent marks a missing or non-numeric value.
var Absent = math.NaN()

// IsAbsent reports whether v is the absent marker.
func IsAbsent(v float64) bool {
	return math.IsNaN(v)
}

// Row is one measurement from the sweep.
type Row struct {
	Image       string
	Distance    float64
	AQScale     float64
	AQMean      float64
	FileSize    float64
	BPP         float64
	DSSIM       float64
	SSIMULACRA2 float64
}

// RD returns the per-row rate-distortion product dssim*bpp.
func (r Row) RD() float64 {
	return r.DSSIM * r.BPP
}

// Table is the loaded results, read-only after Load.
type Table struct {
	Path    string
	Rows    []Row
	columns map[string]bool
}

// NewTable builds a table from rows, marking every recognized column present.
func NewTable(rows []Row) *Table {
	cols := make(map[string]bool, len(Columns))
	for _, c := range Columns {
		cols[c] = true
	}
	return &Table{Rows: rows, columns: cols}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// HasColumn reports whether the header contained the named column.
func (t *Table) HasColumn(name string) bool {
	return t.columns[name]
}

// Images returns the number of distinct non-empty image identifiers.
func (t *Table) Images() int {
	seen := make(map[string]struct{})
	for _, r := range t.Rows {
		if r.Image != "" {
			seen[r.Image] = struct{}{}
		}
	}
	return len(seen)
}

// Distances returns the sorted distinct non-absent distances.
func (t *Table) Distances() []float64 {
	return t.distinct(func(r Row) float64 { return r.Distance })
}

// Scales returns the sorted distinct non-absent AQ scales.
func (t *Table) Scales() []float64 {
	return t.distinct(func(r Row) float64 { return r.AQScale })
}

// WithScale returns the rows whose AQ scale equals scale, in table order.
func (t *Table) WithScale(scale float64) []Row {
	var out []Row
	for _, r := range t.Rows {
		if r.AQScale == scale {
			out = append(out, r)
		}
	}
	return out
}

func (t *Table) distinct(key func(Row) float64) []float64 {
	seen := make(map[float64]struct{})
	var out []float64
	for _, r := range t.Rows {
		v := key(r)
		if IsAbsent(v) {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}
