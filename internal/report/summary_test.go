package report

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/gwlsn/aqreport/internal/analysis"
	"github.com/gwlsn/aqreport/internal/results"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSummary(t *results.Table, reference float64) Summary {
	return BuildSummary(t, analysis.Summarize(t), analysis.OptimalScaleByDistance(t), reference)
}

func TestBuildSummary(t *testing.T) {
	tbl := sweepTable()
	s := buildSummary(tbl, 1.0)

	assert.Equal(t, 18, s.Rows)
	assert.Equal(t, 2, s.Images)
	assert.Equal(t, []float64{0.5, 1.0, 2.0}, s.Distances)
	assert.Equal(t, []float64{0.5, 1.0, 2.0}, s.Scales)
	require.Len(t, s.Groups, 3)
	require.True(t, s.OptimalOK)
	require.Len(t, s.ByDistance, 3)

	require.Len(t, s.RD, 3)
	for _, d := range s.RD {
		assert.True(t, d.OK)
		assert.Equal(t, 6, d.Count)
	}

	// Three distances per curve is below the BD-rate minimum
	require.Len(t, s.BDRates, 2)
	for _, r := range s.BDRates {
		assert.NotEqual(t, 1.0, r.Scale)
		assert.False(t, r.DSSIMOK)
		assert.False(t, r.SSIMULACRA2OK)
	}
}

func TestBuildSummaryBDRate(t *testing.T) {
	var rows []results.Row
	for _, d := range []float64{0.5, 1, 2, 3} {
		bpp := 4 / d
		rows = append(rows,
			results.Row{Distance: d, AQScale: 1, BPP: bpp, DSSIM: 0.01 * d, SSIMULACRA2: 90 - 5*d},
			results.Row{Distance: d, AQScale: 2, BPP: bpp / 2, DSSIM: 0.01 * d, SSIMULACRA2: 90 - 5*d},
		)
	}
	s := buildSummary(results.NewTable(rows), 1)

	require.Len(t, s.BDRates, 1)
	r := s.BDRates[0]
	assert.Equal(t, 2.0, r.Scale)
	require.True(t, r.DSSIMOK)
	require.True(t, r.SSIMULACRA2OK)
	assert.InDelta(t, -50, r.DSSIM, 1e-9)
	assert.InDelta(t, -50, r.SSIMULACRA2, 1e-9)
}

func TestBuildSummaryUnknownReference(t *testing.T) {
	s := buildSummary(sweepTable(), 0.75)
	assert.Empty(t, s.BDRates)
}

func TestPrintSummary(t *testing.T) {
	tbl := results.NewTable([]results.Row{
		{Image: "a", Distance: 1, AQScale: 1.0, BPP: 2.0, DSSIM: 0.01, SSIMULACRA2: 80, FileSize: 1000},
		{Image: "b", Distance: 1, AQScale: 2.0, BPP: 1.0, DSSIM: 0.03, SSIMULACRA2: results.Absent, FileSize: 500},
	})

	var buf bytes.Buffer
	require.NoError(t, PrintSummary(&buf, buildSummary(tbl, 1.0)))
	out := buf.String()

	assert.Contains(t, out, "=== AQ Tuning Results Summary ===")
	assert.Contains(t, out, "Rows: 2")
	assert.Contains(t, out, "Images: 2")
	assert.Contains(t, out, "Distances: [1]")
	assert.Contains(t, out, "AQ scales: [1, 2]")
	assert.Contains(t, out, "rd_efficiency")
	assert.Contains(t, out, "0.020000")
	assert.Contains(t, out, "0.030000")
	assert.Contains(t, out, "2.0000")
	assert.Contains(t, out, "NaN", "absent ssimulacra2 mean")
	assert.Contains(t, out, "Optimal AQ scale (min RD): 1\n")
	assert.Contains(t, out, "  distance=1: AQ=1\n")
}

func TestPrintSummaryNoOptimum(t *testing.T) {
	tbl := results.NewTable([]results.Row{
		{Distance: 1, AQScale: 1.0, BPP: results.Absent, DSSIM: 0.01},
	})

	var buf bytes.Buffer
	require.NoError(t, PrintSummary(&buf, buildSummary(tbl, 1.0)))

	out := buf.String()
	assert.Contains(t, out, "Optimal AQ scale (min RD): n/a")
	assert.Contains(t, out, "distance=1: AQ=n/a")
}

func TestPrintSummaryJSON(t *testing.T) {
	tbl := results.NewTable([]results.Row{
		{Image: "a", Distance: 1, AQScale: 1.0, BPP: 2.0, DSSIM: 0.01, SSIMULACRA2: results.Absent, FileSize: 1000},
		{Image: "b", Distance: 2, AQScale: 1.0, BPP: results.Absent, DSSIM: 0.02, SSIMULACRA2: results.Absent, FileSize: 900},
	})

	var buf bytes.Buffer
	require.NoError(t, PrintSummaryJSON(&buf, buildSummary(tbl, 1.0)))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got), buf.String())

	assert.Equal(t, 2.0, got["rows"])
	assert.Equal(t, []any{1.0, 2.0}, got["distances"])
	assert.Equal(t, 1.0, got["optimal_aq_scale"])

	groups := got["groups"].([]any)
	require.Len(t, groups, 1)
	g := groups[0].(map[string]any)
	assert.Nil(t, g["ssimulacra2"], "NaN means encode as null")
	assert.InDelta(t, 0.015, g["dssim"].(float64), 1e-12)

	byDistance := got["optimal_by_distance"].([]any)
	require.Len(t, byDistance, 2)
	assert.Nil(t, byDistance[1].(map[string]any)["aq_scale"])

	assert.Empty(t, got["bd_rate"])
}

func TestJSONFloat(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		b, err := json.Marshal(jsonFloat(v))
		require.NoError(t, err)
		assert.Equal(t, "null", string(b))
	}

	b, err := json.Marshal(jsonFloat(0.25))
	require.NoError(t, err)
	assert.Equal(t, "0.25", string(b))
}

func TestFormatList(t *testing.T) {
	assert.Equal(t, "[]", FormatList(nil))
	assert.Equal(t, "[0.25, 1, 1.5]", FormatList([]float64{0.25, 1, 1.5}))
	assert.False(t, strings.Contains(FormatList([]float64{2}), "2.0"))
}
