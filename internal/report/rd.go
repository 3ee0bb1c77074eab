package report

import (
	"fmt"
	"image/color"
	"path/filepath"

	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/gwlsn/aqreport/internal/analysis"
	"github.com/gwlsn/aqreport/internal/results"
)

var meanLineColor = color.RGBA{R: 214, G: 39, B: 40, A: 255}

// RDEfficiency writes rd_efficiency.png: one box per AQ scale of the per-row
// dssim*bpp values, with a dashed line through the per-scale means.
func RDEfficiency(t *results.Table, dir string, opts Options) (string, error) {
	p := newPlot(
		"Rate-Distortion Efficiency by AQ Scale",
		"AQ Scale",
		"Rate-Distortion (DSSIM * bpp, lower is better)",
	)
	p.X.Tick.Label.Font.Size = vg.Points(10)

	scales := t.Scales()
	colors := scaleColors(len(scales))
	names := make([]string, len(scales))
	var means plotter.XYs
	for i, scale := range scales {
		names[i] = fmt.Sprintf("%.2f", scale)

		vals := analysis.RDValues(t, scale)
		dist, ok := analysis.Describe(vals)
		if !ok {
			continue
		}
		box, err := plotter.NewBoxPlot(vg.Points(28), float64(i), plotter.Values(vals))
		if err != nil {
			return "", fmt.Errorf("%s: box for scale %s: %w", FileRDEfficiency, names[i], err)
		}
		box.FillColor = withAlpha(colors[i], 0.7)
		p.Add(box)
		means = append(means, plotter.XY{X: float64(i), Y: dist.Mean})
	}

	if len(means) > 0 {
		line, points, err := plotter.NewLinePoints(means)
		if err != nil {
			return "", fmt.Errorf("%s: mean line: %w", FileRDEfficiency, err)
		}
		line.Color = meanLineColor
		line.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}
		points.Color = meanLineColor
		points.Shape = draw.BoxGlyph{}
		points.Radius = vg.Points(3)
		p.Add(line, points)
		p.Legend.Add("Mean", line, points)
	}

	if len(names) > 0 {
		p.NominalX(names...)
		p.X.Min = -0.5
		p.X.Max = float64(len(names)) - 0.5
	}
	placeLegend(p, true)

	fig := newFigure(10*vg.Inch, 6*vg.Inch, opts.DPI)
	fig.draw(p)

	path := filepath.Join(dir, FileRDEfficiency)
	if err := fig.save(path); err != nil {
		return "", err
	}
	return path, nil
}
