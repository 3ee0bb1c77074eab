package report

import (
	"fmt"
	"path/filepath"

	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/gwlsn/aqreport/internal/analysis"
	"github.com/gwlsn/aqreport/internal/results"
)

// ParetoComparison writes pareto_comparison.png with the (bpp, dssim) Pareto
// front of each configured scale. Scales with no rows are skipped.
func ParetoComparison(t *results.Table, dir string, opts Options) (string, error) {
	p := newPlot(
		"Pareto Fronts by AQ Scale\n(Lower-left is better)",
		"Bits per pixel (bpp)",
		"DSSIM (lower is better)",
	)

	for i, scale := range opts.paretoScales() {
		front := analysis.Front(t, scale)
		pts := finiteXYs(len(front), func(j int) (float64, float64) {
			return front[j].BPP, front[j].DSSIM
		}, true)
		if len(pts) == 0 {
			continue
		}

		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return "", fmt.Errorf("%s: front for scale %.2f: %w", FileParetoComparison, scale, err)
		}
		c := plotutil.Color(i)
		line.Color = c
		line.Width = vg.Points(2)
		points.Color = c
		points.Shape = draw.CircleGlyph{}
		points.Radius = vg.Points(3)
		p.Add(line, points)
		p.Legend.Add(scaleLabel(scale), line, points)
	}

	placeLegend(p, true)
	useLogY(p)

	fig := newFigure(10*vg.Inch, 8*vg.Inch, opts.DPI)
	fig.draw(p)

	path := filepath.Join(dir, FileParetoComparison)
	if err := fig.save(path); err != nil {
		return "", err
	}
	return path, nil
}
