package analysis

import (
	"cmp"
	"iter"
	"math"
	"slices"

	"github.com/gwlsn/aqreport/internal/results"
)

// ParetoFront yields the non-dominated (bpp, dssim) rows for one AQ scale.
//
// Rows are stable-sorted ascending by bpp and scanned with a running minimum
// dssim starting at +Inf; a row is yielded iff its dssim is strictly lower
// than every dssim yielded before it. Rows with an absent bpp are dropped and
// rows with an absent dssim never qualify. The front is computed when the
// sequence is iterated, so each iteration recomputes it.
func ParetoFront(t *results.Table, scale float64) iter.Seq[results.Row] {
	return func(yield func(results.Row) bool) {
		rows := slices.DeleteFunc(t.WithScale(scale), func(r results.Row) bool {
			return results.IsAbsent(r.BPP)
		})
		slices.SortStableFunc(rows, func(a, b results.Row) int {
			return cmp.Compare(a.BPP, b.BPP)
		})

		minDSSIM := math.Inf(1)
		for _, r := range rows {
			if r.DSSIM < minDSSIM {
				minDSSIM = r.DSSIM
				if !yield(r) {
					return
				}
			}
		}
	}
}

// Front collects ParetoFront into a slice.
func Front(t *results.Table, scale float64) []results.Row {
	return slices.Collect(ParetoFront(t, scale))
}
