// Package main provides the expplots CLI: chart the logs of a training/evaluation run.
package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idsgame-lab/ExperimentReports/src/config"
	"github.com/idsgame-lab/ExperimentReports/src/ingest"
	"github.com/idsgame-lab/ExperimentReports/src/logging"
	"github.com/idsgame-lab/ExperimentReports/src/plotting"
	"github.com/idsgame-lab/ExperimentReports/src/results"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		logLevel string
		envFile  string
	)
	rootCmd := &cobra.Command{
		Use:          "expplots",
		Short:        "Render line charts from experiment training and evaluation logs",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envFile != "" {
				if config.LoadDotEnv(envFile) == "" {
					return fmt.Errorf("cannot load env file %s", envFile)
				}
			} else {
				config.LoadDotEnv()
			}
			if logLevel != "" && !logging.SetLogLevel(logLevel) {
				return fmt.Errorf("invalid log level %q (debug|info|warn|error)", logLevel)
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load environment from this file instead of .env")

	rootCmd.AddCommand(newReportCmd(), newChartCmd(), newColumnsCmd())
	return rootCmd
}

// reportFlag copies one flag value onto the loaded config when the flag was given.
type reportFlag struct {
	name  string
	apply func(dst, src *config.ReportConfig)
}

var reportFlags = []reportFlag{
	{"train", func(d, s *config.ReportConfig) { d.TrainSource = s.TrainSource }},
	{"eval", func(d, s *config.ReportConfig) { d.EvalSource = s.EvalSource }},
	{"log-frequency", func(d, s *config.ReportConfig) { d.LogFrequency = s.LogFrequency }},
	{"eval-frequency", func(d, s *config.ReportConfig) { d.EvalFrequency = s.EvalFrequency }},
	{"eval-log-frequency", func(d, s *config.ReportConfig) { d.EvalLogFrequency = s.EvalLogFrequency }},
	{"eval-episodes", func(d, s *config.ReportConfig) { d.EvalEpisodes = s.EvalEpisodes }},
	{"output-dir", func(d, s *config.ReportConfig) { d.OutputDir = s.OutputDir }},
	{"simulation", func(d, s *config.ReportConfig) { d.Simulation = s.Simulation }},
	{"format", func(d, s *config.ReportConfig) { d.Format = s.Format }},
	{"parallel", func(d, s *config.ReportConfig) { d.Parallel = s.Parallel }},
	{"continue-on-error", func(d, s *config.ReportConfig) { d.ContinueOnError = s.ContinueOnError }},
	{"caption", func(d, s *config.ReportConfig) { d.Caption = s.Caption }},
	{"width", func(d, s *config.ReportConfig) { d.Width = s.Width }},
	{"height", func(d, s *config.ReportConfig) { d.Height = s.Height }},
	{"sheet", func(d, s *config.ReportConfig) { d.Sheet = s.Sheet }},
	{"table", func(d, s *config.ReportConfig) { d.Table = s.Table }},
}

func newReportCmd() *cobra.Command {
	var configPath string
	fl := config.Default()
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Chart every recorded series of a training and an evaluation log",
		Long: `report loads the training and evaluation logs (csv, xlsx or sqlite) and writes one
chart per recorded series to <output-dir>/plots/<series>_<train|simulation|eval>.<format>.

Settings come from --config (YAML), then EXPPLOTS_* environment variables, then flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
				return err
			}
			for _, f := range reportFlags {
				if cmd.Flags().Changed(f.name) {
					f.apply(cfg, fl)
				}
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid settings: %w", err)
			}
			if !cmd.Flags().Changed("log-level") {
				logging.SetLogLevel(cfg.LogLevel)
			}

			dir, err := results.EnsurePlotsDir(cfg.OutputDir)
			if err != nil {
				return err
			}
			logging.Debugf("writing charts to %s", dir)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			return results.GenerateReports(ctx, cfg.Params(), cfg.DispatchOptions()...)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "YAML settings file")
	f.StringVar(&fl.TrainSource, "train", "", "Training log (csv, xlsx, sqlite)")
	f.StringVar(&fl.EvalSource, "eval", "", "Evaluation log (csv, xlsx, sqlite)")
	f.IntVar(&fl.LogFrequency, "log-frequency", fl.LogFrequency, "Episodes between training log rows")
	f.IntVar(&fl.EvalFrequency, "eval-frequency", fl.EvalFrequency, "Episodes between evaluations")
	f.IntVar(&fl.EvalLogFrequency, "eval-log-frequency", fl.EvalLogFrequency, "Episodes between evaluation log rows (informational)")
	f.IntVar(&fl.EvalEpisodes, "eval-episodes", fl.EvalEpisodes, "Episodes per evaluation")
	f.StringVarP(&fl.OutputDir, "output-dir", "o", fl.OutputDir, "Directory that receives plots/")
	f.BoolVar(&fl.Simulation, "simulation", false, "Label the training log as a simulation run")
	f.StringVar(&fl.Format, "format", fl.Format, "Chart format: "+strings.Join(plotting.Formats, ", "))
	f.IntVar(&fl.Parallel, "parallel", fl.Parallel, "Charts rendered concurrently")
	f.BoolVar(&fl.ContinueOnError, "continue-on-error", false, "Keep rendering after a failed chart")
	f.StringVar(&fl.Caption, "caption", "", "Footnote burned into PNG charts")
	f.IntVar(&fl.Width, "width", fl.Width, "Chart width in pixels")
	f.IntVar(&fl.Height, "height", fl.Height, "Chart height in pixels")
	f.StringVar(&fl.Sheet, "sheet", "", "Worksheet of xlsx logs (default: first)")
	f.StringVar(&fl.Table, "table", fl.Table, "Table of sqlite logs")
	return cmd
}

func newChartCmd() *cobra.Command {
	var (
		step           float64
		title, out     string
		xlabel, ylabel string
		xlims, ylims   string
		logScale       bool
		noSmooth       bool
		caption        string
		width, height  int
		sheet, table   string
	)
	cmd := &cobra.Command{
		Use:   "chart <source> <column>",
		Short: "Chart a single column of a log",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, column := args[0], args[1]
			tbl, err := ingest.Load(source, ingest.WithSheet(sheet), ingest.WithTable(table))
			if err != nil {
				return err
			}
			y, ok := tbl.Float(column)
			if !ok {
				return fmt.Errorf("column %q not in %s (have: %s)", column, source, strings.Join(tbl.Columns(), ", "))
			}
			if title == "" {
				title = column
			}
			if ylabel == "" {
				ylabel = column
			}
			if out == "" {
				out = column + ".png"
			}

			opts := []plotting.Option{
				plotting.WithStep(step),
				plotting.WithSmoothing(!noSmooth),
				plotting.WithSize(width, height),
				plotting.WithCaption(caption),
			}
			if xlims != "" {
				lo, hi, err := parseLimits(xlims)
				if err != nil {
					return fmt.Errorf("--xlims: %w", err)
				}
				opts = append(opts, plotting.WithXLims(lo, hi))
			}
			if ylims != "" {
				lo, hi, err := parseLimits(ylims)
				if err != nil {
					return fmt.Errorf("--ylims: %w", err)
				}
				opts = append(opts, plotting.WithYLims(lo, hi))
			}
			if logScale {
				opts = append(opts, plotting.WithLogScale())
			}
			if err := plotting.Render(plotting.NewPlotRequest(y, title, xlabel, ylabel, out, opts...)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	f := cmd.Flags()
	f.Float64Var(&step, "step", 1, "Episodes between consecutive rows")
	f.StringVar(&title, "title", "", "Chart title (default: column name)")
	f.StringVar(&xlabel, "xlabel", results.XLabel, "X axis label")
	f.StringVar(&ylabel, "ylabel", "", "Y axis label (default: column name)")
	f.StringVarP(&out, "out", "o", "", "Output file; extension picks the format (default: <column>.png)")
	f.StringVar(&xlims, "xlims", "", "Fixed x limits as min,max")
	f.StringVar(&ylims, "ylims", "", "Fixed y limits as min,max")
	f.BoolVar(&logScale, "log", false, "Logarithmic y axis")
	f.BoolVar(&noSmooth, "no-smooth", false, "Skip the interpolated overlay")
	f.StringVar(&caption, "caption", "", "Footnote burned into PNG charts")
	f.IntVar(&width, "width", plotting.DefaultWidth, "Chart width in pixels")
	f.IntVar(&height, "height", plotting.DefaultHeight, "Chart height in pixels")
	f.StringVar(&sheet, "sheet", "", "Worksheet of xlsx logs (default: first)")
	f.StringVar(&table, "table", ingest.DefaultTable, "Table of sqlite logs")
	return cmd
}

func newColumnsCmd() *cobra.Command {
	var sheet, table string
	cmd := &cobra.Command{
		Use:   "columns <source>",
		Short: "List the columns of a log and how many numeric values each holds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := ingest.Load(args[0], ingest.WithSheet(sheet), ingest.WithTable(table))
			if err != nil {
				return err
			}
			known := make(map[string]string)
			for _, id := range results.AllSeries() {
				known[id.Column()] = id.Key()
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s: %d rows\n", filepath.Base(tbl.Source()), tbl.Len())
			for _, name := range tbl.Columns() {
				vals, _ := tbl.Float(name)
				numeric := 0
				for _, v := range vals {
					if !math.IsNaN(v) && !math.IsInf(v, 0) {
						numeric++
					}
				}
				line := fmt.Sprintf("  %-32s %d/%d", name, numeric, len(vals))
				if key, ok := known[name]; ok {
					line += "  -> " + key
				}
				fmt.Fprintln(w, line)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sheet, "sheet", "", "Worksheet of xlsx logs (default: first)")
	cmd.Flags().StringVar(&table, "table", ingest.DefaultTable, "Table of sqlite logs")
	return cmd
}

func parseLimits(s string) (float64, float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("want min,max, got %q", s)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("min: %w", err)
	}
	hi, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("max: %w", err)
	}
	return lo, hi, nil
}
