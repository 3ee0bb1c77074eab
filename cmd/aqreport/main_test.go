package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gwlsn/aqreport/internal/report"
	"github.com/gwlsn/aqreport/internal/results"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeSweep writes a small sweep: 2 images x 4 distances x 3 scales.
func writeSweep(t *testing.T, dir string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("image,distance,aq_scale,aq_mean,file_size,bpp,dssim,ssimulacra2\n")
	for _, img := range []string{"kodim01.png", "kodim02.png"} {
		for di, d := range []float64{0.5, 1, 2, 3} {
			for si, s := range []float64{0.5, 1, 2} {
				bpp := 4/d - 0.05*float64(si)
				dssim := 0.001 * d * (1 + 0.1*float64(si))
				fmt.Fprintf(&b, "%s,%g,%g,0.9,%d,%g,%g,%g\n",
					img, d, s, int(bpp*50000), bpp, dssim, 90-5*float64(di)-float64(si))
			}
		}
	}
	path := filepath.Join(dir, "results.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0644))
	return path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv("AQREPORT_CONFIG", "")
	t.Setenv("AQREPORT_LOG_LEVEL", "error")
	t.Setenv("AQREPORT_ENGINE", "")
	t.Setenv("AQREPORT_DPI", "")

	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no arguments", nil, "accepts between 1 and 2 arg(s)"},
		{"too many arguments", []string{"a", "b", "c"}, "accepts between 1 and 2 arg(s)"},
		{"unknown flag", []string{"--nope", "a.csv"}, "unknown flag"},
		{"invalid engine", []string{"--engine", "duckdb", "a.csv"}, "invalid engine"},
		{"invalid format", []string{"--format", "xml", "a.csv"}, "invalid format"},
		{"invalid dpi", []string{"--dpi", "0", "a.csv"}, "invalid dpi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := runCLI(t, tt.args...)
			assert.Equal(t, ExitUsage, code)
			assert.Contains(t, stderr, tt.wantErr)
			assert.Contains(t, stderr, "Usage:")
			assert.Empty(t, stdout)
		})
	}
}

func TestMissingInputFile(t *testing.T) {
	code, _, stderr := runCLI(t, filepath.Join(t.TempDir(), "missing.csv"))
	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr, "results file unreadable")
	assert.NotContains(t, stderr, "Usage:")
}

func TestMalformedInputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("image,bpp\na.png,1.0,extra\n"), 0644))

	code, _, stderr := runCLI(t, path)
	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr, "not a delimited table")
}

func TestRunWritesChartsNextToInput(t *testing.T) {
	dir := t.TempDir()
	input := writeSweep(t, dir)

	code, stdout, stderr := runCLI(t, "--dpi", "30", input)
	require.Equal(t, ExitSuccess, code, stderr)

	assert.Contains(t, stdout, "Loading results from: "+input)
	assert.Contains(t, stdout, "Loaded 24 data points")
	assert.Contains(t, stdout, "Images: 2")
	assert.Contains(t, stdout, "Distances: [0.5, 1, 2, 3]")
	assert.Contains(t, stdout, "AQ scales: [0.5, 1, 2]")
	assert.Contains(t, stdout, "=== AQ Tuning Results Summary ===")
	assert.Contains(t, stdout, "Optimal AQ scale (min RD):")
	assert.Contains(t, stdout, "BD-rate vs AQ=1")
	assert.Contains(t, stdout, "Generating plots in: "+dir)
	assert.Contains(t, stdout, "Plots saved:")

	for _, name := range []string{
		report.FileBPPvsDSSIM, report.FileBPPvsSSIM2,
		report.FileRDEfficiency, report.FileParetoComparison,
	} {
		assert.FileExists(t, filepath.Join(dir, name))
		assert.Contains(t, stdout, "  - "+name)
	}
}

func TestRunCreatesOutputDirectory(t *testing.T) {
	input := writeSweep(t, t.TempDir())
	out := filepath.Join(t.TempDir(), "charts", "run1")

	code, _, stderr := runCLI(t, "--dpi", "30", input, out)
	require.Equal(t, ExitSuccess, code, stderr)
	assert.FileExists(t, filepath.Join(out, report.FileParetoComparison))
}

func TestRunJSONKeepsStdoutParseable(t *testing.T) {
	input := writeSweep(t, t.TempDir())

	code, stdout, stderr := runCLI(t, "--dpi", "30", "--format", "json", input)
	require.Equal(t, ExitSuccess, code, stderr)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &got), stdout)
	assert.Equal(t, 24.0, got["rows"])
	assert.Contains(t, stderr, "Plots saved:")
}

func TestEnginesPrintTheSameSummary(t *testing.T) {
	input := writeSweep(t, t.TempDir())

	summaryOf := func(engine string) string {
		code, stdout, stderr := runCLI(t, "--dpi", "30", "--engine", engine, input, t.TempDir())
		require.Equal(t, ExitSuccess, code, stderr)
		start := strings.Index(stdout, "=== AQ Tuning Results Summary ===")
		end := strings.Index(stdout, "Generating plots in:")
		require.True(t, start >= 0 && end > start, stdout)
		return stdout[start:end]
	}

	assert.Equal(t, summaryOf("memory"), summaryOf("sqlite"))
}

func TestConfigFileAndEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	input := writeSweep(t, dir)
	cfgPath := filepath.Join(dir, "aqreport.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("format: json\ndpi: 30\nreference_scale: 2\n"), 0644))

	// Config file selects JSON
	code, stdout, stderr := runCLI(t, "--config", cfgPath, input)
	require.Equal(t, ExitSuccess, code, stderr)
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &got), stdout)
	assert.Equal(t, 2.0, got["reference_aq_scale"])

	// Flag overrides the file
	code, stdout, stderr = runCLI(t, "--config", cfgPath, "--format", "table", input)
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stdout, "=== AQ Tuning Results Summary ===")
}

func TestUnreadableConfigFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	input := writeSweep(t, dir)
	cfgPath := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("dpi: [unterminated\n"), 0644))

	code, stdout, stderr := runCLI(t, "--config", cfgPath, "--dpi", "30", input)
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stdout, "=== AQ Tuning Results Summary ===")
}

func TestExitCodeMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"usage error", &UsageError{Err: errors.New("bad")}, true},
		{"wrapped usage error", fmt.Errorf("context: %w", &UsageError{Err: errors.New("bad")}), true},
		{"file error", fmt.Errorf("%w: x", results.ErrFile), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var usageErr *UsageError
			assert.Equal(t, tt.want, errors.As(tt.err, &usageErr))
		})
	}

	u := &UsageError{Err: results.ErrFormat}
	assert.ErrorIs(t, u, results.ErrFormat)
	assert.Equal(t, results.ErrFormat.Error(), u.Error())
}
