package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// LogLevel is one of debug, info, warn, error (default info)
	LogLevel string `yaml:"log_level"`

	// DPI is the raster density of the written charts (default 150)
	DPI int `yaml:"dpi"`

	// ParetoScales are the AQ scales drawn on the Pareto comparison chart
	ParetoScales []float64 `yaml:"pareto_scales"`

	// ReferenceScale is the AQ scale other scales are compared against
	// when computing BD-rate in the console summary (default 1.0)
	ReferenceScale float64 `yaml:"reference_scale"`

	// Engine selects the aggregation backend: "memory" or "sqlite"
	Engine string `yaml:"engine"`

	// Format selects the console summary format: "table" or "json"
	Format string `yaml:"format"`
}

// DefaultParetoScales are the scales compared on the Pareto chart.
var DefaultParetoScales = []float64{0.25, 0.5, 1.0, 1.5, 2.0}

const (
	DefaultDPI            = 150
	DefaultReferenceScale = 1.0
)

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LogLevel:       "info",
		DPI:            DefaultDPI,
		ParetoScales:   append([]float64(nil), DefaultParetoScales...),
		ReferenceScale: DefaultReferenceScale,
		Engine:         DefaultEngine,
		Format:         DefaultFormat,
	}
}

// Load reads config from a YAML file, applying defaults for missing values.
// An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// No config file - use defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults replaces empty or invalid values with defaults.
func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.DPI <= 0 {
		c.DPI = DefaultDPI
	}
	if len(c.ParetoScales) == 0 {
		c.ParetoScales = append([]float64(nil), DefaultParetoScales...)
	}
	if c.ReferenceScale <= 0 {
		c.ReferenceScale = DefaultReferenceScale
	}
	c.Engine = ValidateEngine(c.Engine)
	c.Format = ValidateFormat(c.Format)
}

// ApplyEnv overrides values from AQREPORT_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("AQREPORT_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("AQREPORT_ENGINE"); v != "" {
		c.Engine = ValidateEngine(strings.ToLower(v))
	}
	if v := os.Getenv("AQREPORT_DPI"); v != "" {
		if dpi, err := strconv.Atoi(v); err == nil && dpi > 0 {
			c.DPI = dpi
		}
	}
}
