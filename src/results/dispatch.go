package results

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/idsgame-lab/ExperimentReports/src/errdefs"
	"github.com/idsgame-lab/ExperimentReports/src/logging"
	"github.com/idsgame-lab/ExperimentReports/src/plotting"
)

// PlotsDir is the directory, relative to the output dir, that charts are written to.
const PlotsDir = "plots"

// SeriesError reports the chart of one series that could not be produced.
type SeriesError struct {
	Series SeriesID
	Path   string
	Err    error
}

func (e *SeriesError) Error() string {
	return fmt.Sprintf("series %s (%s): %v", e.Series.Key(), e.Path, e.Err)
}

func (e *SeriesError) Unwrap() error { return e.Err }

// Option customizes a Dispatcher.
type Option func(*Dispatcher)

// WithContinueOnError renders every series even after a failure and returns all failures joined.
func WithContinueOnError(on bool) Option {
	return func(d *Dispatcher) { d.continueOnError = on }
}

// WithParallelism renders up to n charts at once (default 1).
func WithParallelism(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.parallel = n
		}
	}
}

// WithFormat picks the output format: png (default), svg, pdf or eps.
func WithFormat(format string) Option {
	return func(d *Dispatcher) {
		if format != "" {
			d.format = format
		}
	}
}

// WithCaption burns text into every PNG chart.
func WithCaption(text string) Option {
	return func(d *Dispatcher) { d.caption = text }
}

// WithChartSize overrides the default chart size.
func WithChartSize(width, height int) Option {
	return func(d *Dispatcher) {
		d.width = width
		d.height = height
	}
}

func withRenderer(fn func(plotting.PlotRequest) error) Option {
	return func(d *Dispatcher) { d.render = fn }
}

// Dispatcher maps the present series of a RunSummary to chart files under OutputDir/plots.
// It keeps no reference to the summaries it renders and is safe for concurrent use.
type Dispatcher struct {
	outputDir       string
	format          string
	caption         string
	width, height   int
	parallel        int
	continueOnError bool
	render          func(plotting.PlotRequest) error
}

// NewDispatcher returns a Dispatcher writing below outputDir.
func NewDispatcher(outputDir string, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		outputDir: outputDir,
		format:    "png",
		width:     plotting.DefaultWidth,
		height:    plotting.DefaultHeight,
		parallel:  1,
		render:    plotting.Render,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ContinuesOnError reports whether failed charts are collected instead of stopping the run.
func (d *Dispatcher) ContinuesOnError() bool { return d.continueOnError }

// ChartPath is where the chart of id for a run in mode is written.
func (d *Dispatcher) ChartPath(id SeriesID, mode Mode) string {
	name := fmt.Sprintf("%s_%s.%s", id.Key(), mode.Suffix(), d.format)
	return filepath.Join(d.outputDir, PlotsDir, name)
}

type plannedChart struct {
	id  SeriesID
	req plotting.PlotRequest
}

func (d *Dispatcher) plan(rs RunSummary) ([]plannedChart, error) {
	if !slices.Contains(plotting.Formats, d.format) {
		return nil, errdefs.Invalidf("unsupported format %q", d.format)
	}
	present := rs.Present()
	if len(present) == 0 {
		return nil, nil
	}
	step, err := StepFor(rs.Mode, rs.Timing)
	if err != nil {
		return nil, err
	}
	charts := make([]plannedChart, 0, len(present))
	for _, id := range present {
		y, _ := rs.Series(id).Get()
		opts := []plotting.Option{
			plotting.WithStep(step),
			plotting.WithSize(d.width, d.height),
		}
		if lims, ok := id.YLims(); ok {
			opts = append(opts, plotting.WithYLims(lims.Min, lims.Max))
		}
		if d.caption != "" {
			opts = append(opts, plotting.WithCaption(d.caption))
		}
		req := plotting.NewPlotRequest(y, id.Title(), XLabel, id.YLabel(), d.ChartPath(id, rs.Mode), opts...)
		charts = append(charts, plannedChart{id: id, req: req})
	}
	return charts, nil
}

// Plan returns the chart requests for rs, one per present series in chart order.
func (d *Dispatcher) Plan(rs RunSummary) ([]plotting.PlotRequest, error) {
	charts, err := d.plan(rs)
	if err != nil {
		return nil, err
	}
	reqs := make([]plotting.PlotRequest, len(charts))
	for i, c := range charts {
		reqs[i] = c.req
	}
	return reqs, nil
}

// Plan is NewDispatcher(outputDir).Plan(rs).
func Plan(outputDir string, rs RunSummary) ([]plotting.PlotRequest, error) {
	return NewDispatcher(outputDir).Plan(rs)
}

// Dispatch renders a chart for every present series of rs and returns the written paths
// in chart order. Absent series are skipped.
//
// By default the first failure stops the remaining series; charts already written are
// left in place. With WithContinueOnError every series is attempted and the failures
// are returned joined, each as a *SeriesError.
func (d *Dispatcher) Dispatch(ctx context.Context, rs RunSummary) ([]string, error) {
	defer logging.TimeTrack(time.Now(), "dispatch "+rs.Mode.Suffix())
	charts, err := d.plan(rs)
	if err != nil {
		return nil, err
	}
	if len(charts) == 0 {
		logging.Infof("%s: no series recorded, nothing to plot", rs.Mode.Suffix())
		return nil, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.parallel)

	var (
		mu       sync.Mutex
		done     = make([]bool, len(charts))
		failures = make([]error, len(charts))
	)
	for i, c := range charts {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := d.render(c.req); err != nil {
				serr := &SeriesError{Series: c.id, Path: c.req.OutputPath, Err: err}
				if !d.continueOnError {
					return serr
				}
				logging.Errorf("%v", serr)
				mu.Lock()
				failures[i] = serr
				mu.Unlock()
				return nil
			}
			logging.Infof("wrote %s", c.req.OutputPath)
			mu.Lock()
			done[i] = true
			mu.Unlock()
			return nil
		})
	}
	waitErr := g.Wait()

	var written []string
	for i, ok := range done {
		if ok {
			written = append(written, charts[i].req.OutputPath)
		}
	}
	if waitErr != nil {
		return written, waitErr
	}
	if err := ctx.Err(); err != nil {
		return written, err
	}
	return written, errors.Join(failures...)
}
