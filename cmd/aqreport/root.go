package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	aqreport "github.com/gwlsn/aqreport"
	"github.com/gwlsn/aqreport/internal/config"
	"github.com/gwlsn/aqreport/internal/logger"
	"github.com/gwlsn/aqreport/internal/report"
	"github.com/gwlsn/aqreport/internal/results"
	"github.com/gwlsn/aqreport/internal/store"
)

type rootOptions struct {
	configPath string
	engine     string
	format     string
	logLevel   string
	dpi        int
}

func newRootCommand() *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:   "aqreport <results_table_path> [output_directory]",
		Short: "Summarize and chart an AQ tuning sweep",
		Long: `aqreport reads the results table of an adaptive-quantization tuning sweep
(one row per encode: image, distance, aq_scale, aq_mean, file_size, bpp,
dssim, ssimulacra2), prints per-scale averages and optimal scales, and writes
four PNG charts into the output directory.

The output directory defaults to the directory containing the results table.`,
		Version:       aqreport.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.RangeArgs(1, 2)(cmd, args); err != nil {
				return &UsageError{Err: err}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, opts)
			if err != nil {
				return err
			}
			return analyze(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, args)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &UsageError{Err: err}
	})

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "Path to YAML config file (env AQREPORT_CONFIG)")
	f.StringVar(&opts.engine, "engine", "", "Aggregation engine: "+strings.Join(config.ValidEngines, "|"))
	f.StringVar(&opts.format, "format", "", "Summary format: "+strings.Join(config.ValidFormats, "|"))
	f.StringVar(&opts.logLevel, "log-level", "", "Log level: debug|info|warn|error")
	f.IntVar(&opts.dpi, "dpi", 0, "Chart resolution in dots per inch")

	return cmd
}

func execute(args []string, stdout, stderr io.Writer) error {
	rootCmd := newRootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.Execute()
	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		fmt.Fprint(stderr, rootCmd.UsageString())
	}
	return err
}

// resolveConfig layers defaults, the config file, AQREPORT_* variables and
// flags, then initializes the logger.
func resolveConfig(cmd *cobra.Command, opts rootOptions) (*config.Config, error) {
	path := opts.configPath
	if path == "" {
		path = os.Getenv("AQREPORT_CONFIG")
	}

	cfg, err := config.Load(path)
	if err != nil {
		// Initialize logger with default level for this warning
		logger.Init("info")
		logger.Warn("Could not load config", "path", path, "error", err)
		cfg = config.DefaultConfig()
	}
	cfg.ApplyEnv()

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("engine") {
		if !config.IsValidEngine(opts.engine) {
			return nil, &UsageError{Err: fmt.Errorf("invalid engine %q (valid: %s)",
				opts.engine, strings.Join(config.ValidEngines, ", "))}
		}
		cfg.Engine = opts.engine
	}
	if flags.Changed("format") {
		if !config.IsValidFormat(opts.format) {
			return nil, &UsageError{Err: fmt.Errorf("invalid format %q (valid: %s)",
				opts.format, strings.Join(config.ValidFormats, ", "))}
		}
		cfg.Format = opts.format
	}
	if flags.Changed("dpi") {
		if opts.dpi <= 0 {
			return nil, &UsageError{Err: fmt.Errorf("invalid dpi %d (must be positive)", opts.dpi)}
		}
		cfg.DPI = opts.dpi
	}

	logger.Init(cfg.LogLevel)
	logger.Debug("Configuration resolved",
		"config", path,
		"engine", cfg.Engine,
		"format", cfg.Format,
		"dpi", cfg.DPI)
	return cfg, nil
}

// analyze loads the table, prints the summary and writes the charts.
// Progress lines go to stdout, or to stderr when the summary is JSON so that
// stdout stays parseable.
func analyze(stdout, stderr io.Writer, cfg *config.Config, args []string) error {
	input := args[0]
	outDir := filepath.Dir(input)
	if len(args) > 1 {
		outDir = args[1]
	}

	progress := stdout
	if cfg.Format == "json" {
		progress = stderr
	}

	fmt.Fprintf(progress, "Loading results from: %s\n", input)
	tbl, err := results.Load(input)
	if err != nil {
		return err
	}
	fmt.Fprintf(progress, "Loaded %s data points\n", humanize.Comma(int64(tbl.Len())))
	fmt.Fprintf(progress, "Images: %d\n", tbl.Images())
	fmt.Fprintf(progress, "Distances: %s\n", report.FormatList(tbl.Distances()))
	fmt.Fprintf(progress, "AQ scales: %s\n", report.FormatList(tbl.Scales()))

	summary, err := summarize(tbl, cfg)
	if err != nil {
		return err
	}
	if cfg.Format == "json" {
		err = report.PrintSummaryJSON(stdout, summary)
	} else {
		err = report.PrintSummary(stdout, summary)
	}
	if err != nil {
		return fmt.Errorf("print summary: %w", err)
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	fmt.Fprintf(progress, "\nGenerating plots in: %s\n", outDir)
	written, err := report.RenderAll(tbl, outDir, report.Options{
		DPI:          cfg.DPI,
		ParetoScales: cfg.ParetoScales,
	})
	if err != nil {
		return fmt.Errorf("render charts: %w", err)
	}

	fmt.Fprintln(progress, "\nPlots saved:")
	for _, path := range written {
		fmt.Fprintf(progress, "  - %s\n", filepath.Base(path))
	}
	return nil
}

// summarize aggregates with the configured engine.
func summarize(tbl *results.Table, cfg *config.Config) (report.Summary, error) {
	engine, err := store.Open(cfg.Engine)
	if err != nil {
		return report.Summary{}, fmt.Errorf("open %s engine: %w", cfg.Engine, err)
	}
	defer engine.Close()

	if err := engine.Insert(tbl); err != nil {
		return report.Summary{}, fmt.Errorf("insert results: %w", err)
	}
	groups, err := engine.Summarize()
	if err != nil {
		return report.Summary{}, err
	}
	byDistance, err := engine.OptimalByDistance()
	if err != nil {
		return report.Summary{}, err
	}
	logger.Debug("Aggregated results", "engine", cfg.Engine, "groups", len(groups))

	return report.BuildSummary(tbl, groups, byDistance, cfg.ReferenceScale), nil
}
