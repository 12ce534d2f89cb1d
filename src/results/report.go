package results

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/idsgame-lab/ExperimentReports/src/errdefs"
	"github.com/idsgame-lab/ExperimentReports/src/ingest"
	"github.com/idsgame-lab/ExperimentReports/src/logging"
)

// ReportParams describes one training run and its evaluation log.
type ReportParams struct {
	TrainSource string
	EvalSource  string

	LogFrequency     int
	EvalFrequency    int
	EvalLogFrequency int
	EvalEpisodes     int

	OutputDir  string
	Simulation bool

	// Ingest is passed to ingest.Load for both sources.
	Ingest []ingest.Option
}

func (p ReportParams) timing() Timing {
	return Timing{
		LogFrequency:     p.LogFrequency,
		EvalFrequency:    p.EvalFrequency,
		EvalLogFrequency: p.EvalLogFrequency,
		EvalEpisodes:     p.EvalEpisodes,
	}
}

// SummaryFromTable collects the known metric columns of t into a RunSummary.
// Columns the table does not have stay absent.
func SummaryFromTable(t *ingest.Table, mode Mode, timing Timing) RunSummary {
	rs := RunSummary{Mode: mode, Timing: timing}
	for _, id := range AllSeries() {
		if vals, ok := t.Float(id.Column()); ok {
			rs.Set(id, Present(vals))
		}
	}
	return rs
}

// EnsurePlotsDir creates outputDir/plots.
func EnsurePlotsDir(outputDir string) (string, error) {
	dir := filepath.Join(outputDir, PlotsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errdefs.IOError("create "+dir, err)
	}
	return dir, nil
}

// GenerateReports loads the training and evaluation logs, then charts the training run
// (or simulation) followed by the evaluation run. The plots directory must exist.
// With WithContinueOnError the evaluation charts are still rendered after training
// failures, and the failures of both runs are returned joined.
func GenerateReports(ctx context.Context, p ReportParams, opts ...Option) error {
	train, err := ingest.Load(p.TrainSource, p.Ingest...)
	if err != nil {
		return fmt.Errorf("training log: %w", err)
	}
	eval, err := ingest.Load(p.EvalSource, p.Ingest...)
	if err != nil {
		return fmt.Errorf("evaluation log: %w", err)
	}

	timing := p.timing()
	trainSummary := SummaryFromTable(train, ModeFor(false, p.Simulation), timing)
	evalSummary := SummaryFromTable(eval, ModeEval, timing)

	// Check both steps up front so a bad eval setup writes nothing.
	for _, rs := range []RunSummary{trainSummary, evalSummary} {
		if len(rs.Present()) == 0 {
			continue
		}
		if _, err := StepFor(rs.Mode, rs.Timing); err != nil {
			return fmt.Errorf("%s charts: %w", rs.Mode.Suffix(), err)
		}
	}

	d := NewDispatcher(p.OutputDir, opts...)
	total := 0
	var errs []error
	for _, rs := range []RunSummary{trainSummary, evalSummary} {
		paths, err := d.Dispatch(ctx, rs)
		total += len(paths)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s charts: %w", rs.Mode.Suffix(), err))
			if !d.ContinuesOnError() || ctx.Err() != nil {
				break
			}
		}
	}
	logging.Infof("wrote %d charts to %s", total, filepath.Join(p.OutputDir, PlotsDir))
	return errors.Join(errs...)
}
