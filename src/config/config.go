// Package config holds the report settings read from YAML, .env files and EXPPLOTS_* variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/idsgame-lab/ExperimentReports/src/ingest"
	"github.com/idsgame-lab/ExperimentReports/src/logging"
	"github.com/idsgame-lab/ExperimentReports/src/plotting"
	"github.com/idsgame-lab/ExperimentReports/src/results"
)

// Environment variables that override the file settings.
const (
	EnvOutputDir = "EXPPLOTS_OUTPUT_DIR"
	EnvLogLevel  = "EXPPLOTS_LOG_LEVEL"
	EnvFormat    = "EXPPLOTS_FORMAT"
	EnvParallel  = "EXPPLOTS_PARALLEL"
)

// DotEnvFiles are tried in order by LoadDotEnv when no files are given.
var DotEnvFiles = []string{".env", "../.env"}

// ReportConfig describes one report run.
type ReportConfig struct {
	TrainSource string `yaml:"train_source"`
	EvalSource  string `yaml:"eval_source"`

	LogFrequency     int `yaml:"log_frequency"`
	EvalFrequency    int `yaml:"eval_frequency"`
	EvalLogFrequency int `yaml:"eval_log_frequency"`
	EvalEpisodes     int `yaml:"eval_episodes"`

	OutputDir  string `yaml:"output_dir"`
	Simulation bool   `yaml:"simulation"`

	Format          string `yaml:"format"`
	Parallel        int    `yaml:"parallel"`
	ContinueOnError bool   `yaml:"continue_on_error"`
	Caption         string `yaml:"caption"`
	Width           int    `yaml:"width"`
	Height          int    `yaml:"height"`

	LogLevel string `yaml:"log_level"`

	// Sheet and Table select the worksheet or database table of xlsx/sqlite sources.
	Sheet string `yaml:"sheet"`
	Table string `yaml:"table"`
}

// Default returns the settings used for anything a file does not set.
func Default() *ReportConfig {
	return &ReportConfig{
		LogFrequency:  1,
		EvalFrequency: 1,
		EvalEpisodes:  1,
		OutputDir:     ".",
		Format:        "png",
		Parallel:      1,
		Width:         plotting.DefaultWidth,
		Height:        plotting.DefaultHeight,
		LogLevel:      "info",
		Table:         ingest.DefaultTable,
	}
}

// Load reads the YAML file at path over Default(). An empty path yields the defaults.
// Unknown keys are rejected. The result is not validated.
func Load(path string) (*ReportConfig, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config '%s': %w", path, err)
	}
	return cfg, nil
}

// LoadDotEnv loads the first readable file of files (DotEnvFiles when empty) into the
// process environment. Variables already set are kept. It returns the file used, or "".
func LoadDotEnv(files ...string) string {
	if len(files) == 0 {
		files = DotEnvFiles
	}
	for _, f := range files {
		if err := godotenv.Load(f); err == nil {
			logging.Debugf("loaded environment from %s", f)
			return f
		}
	}
	return ""
}

// ApplyEnv overrides settings from EXPPLOTS_* variables found by lookup (usually os.LookupEnv).
func (c *ReportConfig) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvOutputDir); ok && v != "" {
		c.OutputDir = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvFormat); ok && v != "" {
		c.Format = strings.ToLower(v)
	}
	if v, ok := lookup(EnvParallel); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %q is not an integer", EnvParallel, v)
		}
		c.Parallel = n
	}
	return nil
}

// Validate checks that the settings describe a runnable report.
func (c *ReportConfig) Validate() error {
	if c.TrainSource == "" {
		return fmt.Errorf("train source cannot be empty")
	}
	if c.EvalSource == "" {
		return fmt.Errorf("eval source cannot be empty")
	}
	if c.LogFrequency <= 0 {
		return fmt.Errorf("log frequency must be greater than 0")
	}
	if c.EvalFrequency <= 0 {
		return fmt.Errorf("eval frequency must be greater than 0")
	}
	if c.EvalLogFrequency < 0 {
		return fmt.Errorf("eval log frequency cannot be negative")
	}
	if c.EvalEpisodes <= 0 {
		return fmt.Errorf("eval episodes must be greater than 0")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output dir cannot be empty")
	}
	if !slices.Contains(plotting.Formats, c.Format) {
		return fmt.Errorf("invalid format %q (want one of %s)", c.Format, strings.Join(plotting.Formats, ", "))
	}
	if c.Parallel <= 0 {
		return fmt.Errorf("parallel must be greater than 0")
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid chart size %dx%d", c.Width, c.Height)
	}
	if _, ok := logging.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return nil
}

// Params converts the settings into report parameters.
func (c *ReportConfig) Params() results.ReportParams {
	return results.ReportParams{
		TrainSource:      c.TrainSource,
		EvalSource:       c.EvalSource,
		LogFrequency:     c.LogFrequency,
		EvalFrequency:    c.EvalFrequency,
		EvalLogFrequency: c.EvalLogFrequency,
		EvalEpisodes:     c.EvalEpisodes,
		OutputDir:        c.OutputDir,
		Simulation:       c.Simulation,
		Ingest:           c.IngestOptions(),
	}
}

// IngestOptions returns the source selection options.
func (c *ReportConfig) IngestOptions() []ingest.Option {
	var opts []ingest.Option
	if c.Sheet != "" {
		opts = append(opts, ingest.WithSheet(c.Sheet))
	}
	if c.Table != "" {
		opts = append(opts, ingest.WithTable(c.Table))
	}
	return opts
}

// DispatchOptions returns the chart output options.
func (c *ReportConfig) DispatchOptions() []results.Option {
	return []results.Option{
		results.WithFormat(c.Format),
		results.WithParallelism(c.Parallel),
		results.WithContinueOnError(c.ContinueOnError),
		results.WithCaption(c.Caption),
		results.WithChartSize(c.Width, c.Height),
	}
}
