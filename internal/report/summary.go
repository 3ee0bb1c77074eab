package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/gwlsn/aqreport/internal/analysis"
	"github.com/gwlsn/aqreport/internal/results"
)

// Summary is everything the console summary prints.
type Summary struct {
	Rows      int
	Images    int
	Distances []float64
	Scales    []float64

	Groups     analysis.Summaries
	Optimal    float64
	OptimalOK  bool
	ByDistance []analysis.DistanceOptimum

	RD []ScaleDistribution

	ReferenceScale float64
	BDRates        []ScaleBDRate
}

// ScaleDistribution is the spread of per-row dssim*bpp for one scale.
type ScaleDistribution struct {
	Scale float64
	analysis.Distribution
	OK bool
}

// ScaleBDRate is the BD-rate of one scale's per-distance curve against the
// reference scale, for each metric.
type ScaleBDRate struct {
	Scale         float64
	DSSIM         float64
	DSSIMOK       bool
	SSIMULACRA2   float64
	SSIMULACRA2OK bool
}

// BuildSummary assembles the summary of t from its group means and
// per-distance optima. BD-rates are only computed when referenceScale is one
// of the table's scales.
func BuildSummary(t *results.Table, groups analysis.Summaries, byDistance []analysis.DistanceOptimum, referenceScale float64) Summary {
	s := Summary{
		Rows:           t.Len(),
		Images:         t.Images(),
		Distances:      t.Distances(),
		Scales:         t.Scales(),
		Groups:         groups,
		ByDistance:     byDistance,
		ReferenceScale: referenceScale,
	}
	s.Optimal, s.OptimalOK = analysis.OptimalScale(groups)

	for _, scale := range s.Scales {
		d, ok := analysis.Describe(analysis.RDValues(t, scale))
		s.RD = append(s.RD, ScaleDistribution{Scale: scale, Distribution: d, OK: ok})
	}

	if _, ok := groups.Get(referenceScale); !ok {
		return s
	}
	refDSSIM := analysis.DistanceCurve(t, referenceScale, analysis.MetricDSSIM)
	refSSIM2 := analysis.DistanceCurve(t, referenceScale, analysis.MetricSSIMULACRA2)
	for _, scale := range s.Scales {
		if scale == referenceScale {
			continue
		}
		r := ScaleBDRate{Scale: scale}
		r.DSSIM, r.DSSIMOK = analysis.BDRate(refDSSIM, analysis.DistanceCurve(t, scale, analysis.MetricDSSIM))
		r.SSIMULACRA2, r.SSIMULACRA2OK = analysis.BDRate(refSSIM2, analysis.DistanceCurve(t, scale, analysis.MetricSSIMULACRA2))
		s.BDRates = append(s.BDRates, r)
	}
	return s
}

// PrintSummary writes s as human-readable text. Means are rounded to four
// decimals and rd_efficiency to six; absent values print as NaN.
func PrintSummary(w io.Writer, s Summary) error {
	var b strings.Builder

	b.WriteString("\n=== AQ Tuning Results Summary ===\n\n")
	fmt.Fprintf(&b, "Rows: %d\n", s.Rows)
	fmt.Fprintf(&b, "Images: %d\n", s.Images)
	fmt.Fprintf(&b, "Distances: %s\n", FormatList(s.Distances))
	fmt.Fprintf(&b, "AQ scales: %s\n\n", FormatList(s.Scales))

	b.WriteString("Average metrics by AQ scale:\n")
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "aq_scale\tcount\tbpp\tdssim\tssimulacra2\tfile_size\trd_efficiency\t")
	for _, g := range s.Groups {
		fmt.Fprintf(tw, "%s\t%d\t%.4f\t%.4f\t%.4f\t%.4f\t%.6f\t\n",
			formatScale(g.Scale), g.Count, g.MeanBPP, g.MeanDSSIM,
			g.MeanSSIMULACRA2, g.MeanFileSize, g.RDEfficiency)
	}
	tw.Flush()

	if s.OptimalOK {
		fmt.Fprintf(&b, "\nOptimal AQ scale (min RD): %s\n", formatScale(s.Optimal))
	} else {
		b.WriteString("\nOptimal AQ scale (min RD): n/a\n")
	}

	b.WriteString("\nOptimal AQ scale by distance:\n")
	for _, d := range s.ByDistance {
		best := "n/a"
		if d.OK {
			best = formatScale(d.Scale)
		}
		fmt.Fprintf(&b, "  distance=%s: AQ=%s\n", formatScale(d.Distance), best)
	}

	if len(s.RD) > 0 {
		b.WriteString("\nRate-distortion (dssim*bpp) distribution by AQ scale:\n")
		tw = tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "aq_scale\tcount\tmean\tstd\tp5\tp25\tmedian\tp75\tp95\t")
		for _, d := range s.RD {
			if !d.OK {
				fmt.Fprintf(tw, "%s\t0\t\t\t\t\t\t\t\t\n", formatScale(d.Scale))
				continue
			}
			fmt.Fprintf(tw, "%s\t%d\t%.6f\t%.6f\t%.6f\t%.6f\t%.6f\t%.6f\t%.6f\t\n",
				formatScale(d.Scale), d.Count, d.Mean, d.StdDev,
				d.P5, d.P25, d.Median, d.P75, d.P95)
		}
		tw.Flush()
	}

	if len(s.BDRates) > 0 {
		fmt.Fprintf(&b, "\nBD-rate vs AQ=%s (negative saves bits):\n", formatScale(s.ReferenceScale))
		tw = tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "aq_scale\tdssim\tssimulacra2\t")
		for _, r := range s.BDRates {
			fmt.Fprintf(tw, "%s\t%s\t%s\t\n", formatScale(r.Scale),
				formatPercent(r.DSSIM, r.DSSIMOK), formatPercent(r.SSIMULACRA2, r.SSIMULACRA2OK))
		}
		tw.Flush()
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// FormatList renders sorted values as "[a, b, c]".
func FormatList(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = formatScale(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatScale(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatPercent(v float64, ok bool) string {
	if !ok {
		return "n/a"
	}
	return fmt.Sprintf("%+.2f%%", v)
}

// jsonFloat encodes NaN and infinities as null.
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

func optional(v float64, ok bool) *jsonFloat {
	if !ok {
		return nil
	}
	f := jsonFloat(v)
	return &f
}

type jsonGroup struct {
	Scale           jsonFloat `json:"aq_scale"`
	Count           int       `json:"count"`
	MeanBPP         jsonFloat `json:"bpp"`
	MeanDSSIM       jsonFloat `json:"dssim"`
	MeanSSIMULACRA2 jsonFloat `json:"ssimulacra2"`
	MeanFileSize    jsonFloat `json:"file_size"`
	RDEfficiency    jsonFloat `json:"rd_efficiency"`
}

type jsonDistanceOptimum struct {
	Distance jsonFloat  `json:"distance"`
	Scale    *jsonFloat `json:"aq_scale"`
}

type jsonDistribution struct {
	Scale  jsonFloat  `json:"aq_scale"`
	Count  int        `json:"count"`
	Mean   *jsonFloat `json:"mean"`
	StdDev *jsonFloat `json:"std"`
	Min    *jsonFloat `json:"min"`
	P5     *jsonFloat `json:"p5"`
	P25    *jsonFloat `json:"p25"`
	Median *jsonFloat `json:"median"`
	P75    *jsonFloat `json:"p75"`
	P95    *jsonFloat `json:"p95"`
	Max    *jsonFloat `json:"max"`
}

type jsonBDRate struct {
	Scale       jsonFloat  `json:"aq_scale"`
	DSSIM       *jsonFloat `json:"dssim_percent"`
	SSIMULACRA2 *jsonFloat `json:"ssimulacra2_percent"`
}

type jsonSummary struct {
	Rows           int                   `json:"rows"`
	Images         int                   `json:"images"`
	Distances      []jsonFloat           `json:"distances"`
	Scales         []jsonFloat           `json:"aq_scales"`
	Groups         []jsonGroup           `json:"groups"`
	Optimal        *jsonFloat            `json:"optimal_aq_scale"`
	ByDistance     []jsonDistanceOptimum `json:"optimal_by_distance"`
	RD             []jsonDistribution    `json:"rd_distribution"`
	ReferenceScale jsonFloat             `json:"reference_aq_scale"`
	BDRates        []jsonBDRate          `json:"bd_rate"`
}

func toJSONFloats(values []float64) []jsonFloat {
	out := make([]jsonFloat, len(values))
	for i, v := range values {
		out[i] = jsonFloat(v)
	}
	return out
}

// PrintSummaryJSON writes s as indented JSON. Absent values are null.
func PrintSummaryJSON(w io.Writer, s Summary) error {
	out := jsonSummary{
		Rows:           s.Rows,
		Images:         s.Images,
		Distances:      toJSONFloats(s.Distances),
		Scales:         toJSONFloats(s.Scales),
		Groups:         make([]jsonGroup, 0, len(s.Groups)),
		Optimal:        optional(s.Optimal, s.OptimalOK),
		ByDistance:     make([]jsonDistanceOptimum, 0, len(s.ByDistance)),
		RD:             make([]jsonDistribution, 0, len(s.RD)),
		ReferenceScale: jsonFloat(s.ReferenceScale),
		BDRates:        make([]jsonBDRate, 0, len(s.BDRates)),
	}
	for _, g := range s.Groups {
		out.Groups = append(out.Groups, jsonGroup{
			Scale:           jsonFloat(g.Scale),
			Count:           g.Count,
			MeanBPP:         jsonFloat(g.MeanBPP),
			MeanDSSIM:       jsonFloat(g.MeanDSSIM),
			MeanSSIMULACRA2: jsonFloat(g.MeanSSIMULACRA2),
			MeanFileSize:    jsonFloat(g.MeanFileSize),
			RDEfficiency:    jsonFloat(g.RDEfficiency),
		})
	}
	for _, d := range s.ByDistance {
		out.ByDistance = append(out.ByDistance, jsonDistanceOptimum{
			Distance: jsonFloat(d.Distance),
			Scale:    optional(d.Scale, d.OK),
		})
	}
	for _, d := range s.RD {
		out.RD = append(out.RD, jsonDistribution{
			Scale:  jsonFloat(d.Scale),
			Count:  d.Count,
			Mean:   optional(d.Mean, d.OK),
			StdDev: optional(d.StdDev, d.OK),
			Min:    optional(d.Min, d.OK),
			P5:     optional(d.P5, d.OK),
			P25:    optional(d.P25, d.OK),
			Median: optional(d.Median, d.OK),
			P75:    optional(d.P75, d.OK),
			P95:    optional(d.P95, d.OK),
			Max:    optional(d.Max, d.OK),
		})
	}
	for _, r := range s.BDRates {
		out.BDRates = append(out.BDRates, jsonBDRate{
			Scale:       jsonFloat(r.Scale),
			DSSIM:       optional(r.DSSIM, r.DSSIMOK),
			SSIMULACRA2: optional(r.SSIMULACRA2, r.SSIMULACRA2OK),
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
