// Package report renders the analysis of a results table as PNG charts and
// console text.
package report

import (
	"github.com/gwlsn/aqreport/internal/logger"
	"github.com/gwlsn/aqreport/internal/results"
)

// Output file names, written into the output directory.
const (
	FileBPPvsDSSIM       = "bpp_vs_dssim.png"
	FileBPPvsSSIM2       = "bpp_vs_ssim2.png"
	FileRDEfficiency     = "rd_efficiency.png"
	FileParetoComparison = "pareto_comparison.png"
)

// DefaultDPI is the raster density used when Options.DPI is unset.
const DefaultDPI = 150

// DefaultParetoScales are the scales compared when Options.ParetoScales is
// empty.
var DefaultParetoScales = []float64{0.25, 0.5, 1.0, 1.5, 2.0}

// Options controls chart rendering.
type Options struct {
	DPI          int
	ParetoScales []float64
}

func (o Options) paretoScales() []float64 {
	if len(o.ParetoScales) == 0 {
		return DefaultParetoScales
	}
	return o.ParetoScales
}

// Reporter renders one chart into dir and returns the written path.
type Reporter func(t *results.Table, dir string, opts Options) (string, error)

// Reporters lists the charts in the order RenderAll writes them.
var Reporters = []Reporter{
	BPPvsDSSIM,
	BPPvsSSIM2,
	RDEfficiency,
	ParetoComparison,
}

// RenderAll runs every reporter in order. It stops at the first failure and
// returns the paths written so far; those files are left in place.
func RenderAll(t *results.Table, dir string, opts Options) ([]string, error) {
	written := make([]string, 0, len(Reporters))
	for _, render := range Reporters {
		path, err := render(t, dir, opts)
		if err != nil {
			return written, err
		}
		logger.Debug("Chart written", "path", path)
		written = append(written, path)
	}
	return written, nil
}
