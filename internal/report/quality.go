package report

import (
	"fmt"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/gwlsn/aqreport/internal/analysis"
	"github.com/gwlsn/aqreport/internal/results"
)

// qualityChart is a two-panel figure of bpp against one metric: every row
// on the left, per-distance means on the right, one series per AQ scale.
type qualityChart struct {
	file     string
	metric   analysis.Metric
	name     string // axis wording for the metric
	logY     bool
	topRight bool // legend corner; bottom right otherwise
}

var (
	dssimChart = qualityChart{
		file:     FileBPPvsDSSIM,
		metric:   analysis.MetricDSSIM,
		name:     "DSSIM",
		logY:     true,
		topRight: true,
	}
	ssim2Chart = qualityChart{
		file:   FileBPPvsSSIM2,
		metric: analysis.MetricSSIMULACRA2,
		name:   "SSIMULACRA2",
	}
)

// BPPvsDSSIM writes bpp_vs_dssim.png. DSSIM is drawn on a log axis and
// non-positive values are left out.
func BPPvsDSSIM(t *results.Table, dir string, opts Options) (string, error) {
	return dssimChart.render(t, dir, opts)
}

// BPPvsSSIM2 writes bpp_vs_ssim2.png.
func BPPvsSSIM2(t *results.Table, dir string, opts Options) (string, error) {
	return ssim2Chart.render(t, dir, opts)
}

func (c qualityChart) direction() string {
	if c.metric == analysis.MetricDSSIM {
		return "lower is better"
	}
	return "higher is better"
}

func (c qualityChart) render(t *results.Table, dir string, opts Options) (string, error) {
	all := newPlot(
		fmt.Sprintf("BPP vs %s for all images", c.name),
		"Bits per pixel (bpp)",
		fmt.Sprintf("%s (%s)", c.name, c.direction()),
	)
	avg := newPlot(
		fmt.Sprintf("Average BPP vs %s by AQ scale", c.name),
		"Average BPP",
		fmt.Sprintf("Average %s (%s)", c.name, c.direction()),
	)

	scales := t.Scales()
	colors := scaleColors(len(scales))
	for i, scale := range scales {
		label := scaleLabel(scale)

		rows := t.WithScale(scale)
		pts := finiteXYs(len(rows), func(j int) (float64, float64) {
			return rows[j].BPP, c.metric.Value(rows[j])
		}, c.logY)
		if len(pts) > 0 {
			s, err := plotter.NewScatter(pts)
			if err != nil {
				return "", fmt.Errorf("%s: scatter for %s: %w", c.file, label, err)
			}
			s.GlyphStyle.Color = withAlpha(colors[i], 0.5)
			s.GlyphStyle.Shape = draw.CircleGlyph{}
			s.GlyphStyle.Radius = vg.Points(2.5)
			all.Add(s)
			all.Legend.Add(label, s)
		}

		curve := analysis.DistanceCurve(t, scale, c.metric)
		means := finiteXYs(len(curve), func(j int) (float64, float64) {
			return curve[j].BPP, curve[j].Metric
		}, c.logY)
		if len(means) > 0 {
			line, points, err := plotter.NewLinePoints(means)
			if err != nil {
				return "", fmt.Errorf("%s: means for %s: %w", c.file, label, err)
			}
			line.Color = colors[i]
			line.Width = vg.Points(1.5)
			points.Color = colors[i]
			points.Shape = draw.CircleGlyph{}
			points.Radius = vg.Points(4)
			avg.Add(line, points)
			avg.Legend.Add(label, line, points)
		}
	}

	for _, p := range []*plot.Plot{all, avg} {
		placeLegend(p, c.topRight)
		if c.logY {
			useLogY(p)
		}
	}

	fig := newFigure(14*vg.Inch, 6*vg.Inch, opts.DPI)
	fig.draw(all, avg)

	path := filepath.Join(dir, c.file)
	if err := fig.save(path); err != nil {
		return "", err
	}
	return path, nil
}
