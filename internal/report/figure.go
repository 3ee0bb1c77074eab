package report

import (
	"fmt"
	"image/color"
	"math"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// figure is one output image: a raster canvas that plots are drawn onto and
// that is encoded to PNG by save.
type figure struct {
	canvas *vgimg.Canvas
	dc     draw.Canvas
}

func newFigure(w, h vg.Length, dpi int) *figure {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	c := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(dpi))
	return &figure{canvas: c, dc: draw.New(c)}
}

// draw lays the plots out side by side with aligned axes.
func (f *figure) draw(plots ...*plot.Plot) {
	pad := vg.Points(8)
	if len(plots) == 1 {
		plots[0].Draw(draw.Crop(f.dc, pad, -pad, pad, -pad))
		return
	}

	tiles := draw.Tiles{
		Rows:      1,
		Cols:      len(plots),
		PadX:      vg.Points(24),
		PadTop:    pad,
		PadBottom: pad,
		PadLeft:   pad,
		PadRight:  pad,
	}
	canvases := plot.Align([][]*plot.Plot{plots}, tiles, f.dc)
	for j, p := range plots {
		p.Draw(canvases[0][j])
	}
}

// save writes the figure to path as PNG. The file is closed before return.
func (f *figure) save(path string) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	if _, err := (vgimg.PngCanvas{Canvas: f.canvas}).WriteTo(file); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel

	grid := plotter.NewGrid()
	grid.Vertical.Color = color.Gray{Y: 220}
	grid.Horizontal.Color = color.Gray{Y: 220}
	p.Add(grid)
	return p
}

// placeLegend puts the legend in the upper or lower right corner.
func placeLegend(p *plot.Plot, top bool) {
	p.Legend.Top = top
	p.Legend.Left = false
	p.Legend.XOffs = -vg.Points(6)
	if top {
		p.Legend.YOffs = -vg.Points(6)
	} else {
		p.Legend.YOffs = vg.Points(6)
	}
	p.Legend.TextStyle.Font.Size = vg.Points(8)
}

// useLogY switches the y axis to log scale once data are added. Plots with
// no positive data keep the linear axis.
func useLogY(p *plot.Plot) {
	if math.IsInf(p.Y.Min, 0) || math.IsInf(p.Y.Max, 0) || p.Y.Min <= 0 {
		return
	}
	if p.Y.Min == p.Y.Max {
		p.Y.Min /= 2
		p.Y.Max *= 2
	}
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
}

// The ends of the luminance map are near black and near white.
const (
	paletteLow  = 0.15
	paletteHigh = 0.85
)

// scaleColors spreads n colors over a sequential palette, one per AQ scale
// in ascending order.
func scaleColors(n int) []color.Color {
	cmap := moreland.ExtendedKindlmann()
	cmap.SetMin(0)
	cmap.SetMax(1)

	out := make([]color.Color, n)
	for i := range out {
		frac := 0.0
		if n > 1 {
			frac = float64(i) / float64(n-1)
		}
		c, err := cmap.At(paletteLow + (paletteHigh-paletteLow)*frac)
		if err != nil {
			c = plotutil.Color(i)
		}
		out[i] = c
	}
	return out
}

func withAlpha(c color.Color, alpha float64) color.Color {
	r, g, b, _ := c.RGBA()
	return color.NRGBA{
		R: uint8(r >> 8),
		G: uint8(g >> 8),
		B: uint8(b >> 8),
		A: uint8(math.Round(alpha * 255)),
	}
}

// finiteXYs keeps points with finite coordinates, and positive y when
// positiveY is set.
func finiteXYs(n int, xy func(i int) (float64, float64), positiveY bool) plotter.XYs {
	out := make(plotter.XYs, 0, n)
	for i := range n {
		x, y := xy(i)
		if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}
		if positiveY && y <= 0 {
			continue
		}
		out = append(out, plotter.XY{X: x, Y: y})
	}
	return out
}

func scaleLabel(scale float64) string {
	return fmt.Sprintf("AQ=%.2f", scale)
}
