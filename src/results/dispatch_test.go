package results

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"sync"
	"testing"

	"github.com/idsgame-lab/ExperimentReports/src/plotting"
)

func samples(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Cos(float64(i)/3) + float64(i)/10
	}
	return out
}

func listPlots(t *testing.T, outputDir string) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(outputDir, PlotsDir))
	if err != nil {
		t.Fatalf("read plots dir: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func newOutputDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if _, err := EnsurePlotsDir(dir); err != nil {
		t.Fatalf("plots dir: %v", err)
	}
	return dir
}

// recorder stands in for the renderer and fails for the listed series keys.
type recorder struct {
	mu    sync.Mutex
	paths []string
	fail  map[string]bool
}

func (r *recorder) render(req plotting.PlotRequest) error {
	r.mu.Lock()
	r.paths = append(r.paths, req.OutputPath)
	r.mu.Unlock()
	for key := range r.fail {
		if filepath.Base(req.OutputPath) == key+"_train.png" {
			return fmt.Errorf("boom: %w", plotting.ErrIO)
		}
	}
	return nil
}

func TestStepFor(t *testing.T) {
	cases := []struct {
		name    string
		mode    Mode
		timing  Timing
		want    float64
		wantErr bool
	}{
		{"train", ModeTrain, Timing{LogFrequency: 50}, 50, false},
		{"simulation", ModeSimulation, Timing{LogFrequency: 25, EvalFrequency: 1000}, 25, false},
		{"eval", ModeEval, Timing{EvalFrequency: 100, EvalEpisodes: 10}, 10, false},
		{"eval fractional", ModeEval, Timing{EvalFrequency: 5, EvalEpisodes: 2}, 2.5, false},
		{"eval zero episodes", ModeEval, Timing{EvalFrequency: 100}, 0, true},
		{"train zero frequency", ModeTrain, Timing{}, 0, true},
		{"eval negative", ModeEval, Timing{EvalFrequency: -10, EvalEpisodes: 1}, 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := StepFor(tc.mode, tc.timing)
			if tc.wantErr {
				if !errors.Is(err, plotting.ErrInvalidInput) {
					t.Fatalf("expected ErrInvalidInput, got %v", err)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Fatalf("StepFor = %v, %v; want %v", got, err, tc.want)
			}
		})
	}
}

func TestModeFor(t *testing.T) {
	if ModeFor(true, true) != ModeEval {
		t.Fatalf("evaluation must take precedence over simulation")
	}
	if ModeFor(false, true) != ModeSimulation || ModeFor(false, false) != ModeTrain {
		t.Fatalf("unexpected mode mapping")
	}
	for m, want := range map[Mode]string{ModeTrain: "train", ModeEval: "eval", ModeSimulation: "simulation"} {
		if m.Suffix() != want {
			t.Fatalf("%d.Suffix() = %q, want %q", m, m.Suffix(), want)
		}
	}
}

func TestSeriesTable(t *testing.T) {
	keys := map[string]bool{}
	for _, id := range AllSeries() {
		if id.Key() == "" || id.Title() == "" || id.YLabel() == "" || id.Column() == "" {
			t.Fatalf("series %d has empty metadata", id)
		}
		if keys[id.Key()] {
			t.Fatalf("duplicate key %s", id.Key())
		}
		keys[id.Key()] = true
		_, fixed := id.YLims()
		if fixed != (id == HackProbability) {
			t.Fatalf("%s: unexpected fixed limits %v", id, fixed)
		}
	}
	if len(keys) != 7 {
		t.Fatalf("expected 7 series, got %d", len(keys))
	}
}

func TestPlanEvalHackProbability(t *testing.T) {
	rs := RunSummary{
		HackProbability: Present([]float64{0.1, 0.2, 0.4, 0.3, 0.5}),
		Mode:            ModeEval,
		Timing:          Timing{EvalFrequency: 100, EvalEpisodes: 10},
	}
	reqs, err := Plan("out", rs)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	req := reqs[0]
	if req.X != nil || req.Step != 10 {
		t.Fatalf("expected synthesized x with step 10, got X=%v step=%v", req.X, req.Step)
	}
	if xs := plotting.SynthesizeX(len(req.Y), req.Step); !slices.Equal(xs, []float64{0, 10, 20, 30, 40}) {
		t.Fatalf("x = %v", xs)
	}
	if req.YLims == nil || *req.YLims != (plotting.Limits{Min: 0, Max: 1}) {
		t.Fatalf("hack probability limits = %v, want (0, 1)", req.YLims)
	}
	if want := filepath.Join("out", "plots", "hack_probability_eval.png"); req.OutputPath != want {
		t.Fatalf("path = %q, want %q", req.OutputPath, want)
	}
	if req.XLabel != "Episode" || req.Title != "Hack probability" || req.YLabel != "P(Hacked)" || !req.Smooth {
		t.Fatalf("unexpected decoration: %+v", req)
	}
}

func TestPlanEvalZeroEpisodes(t *testing.T) {
	rs := RunSummary{HackProbability: Present([]float64{0.1}), Mode: ModeEval, Timing: Timing{EvalFrequency: 100}}
	if _, err := Plan("out", rs); !errors.Is(err, plotting.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPlanFormatAndOrder(t *testing.T) {
	rs := RunSummary{
		DefenderCumulativeReward: Present(samples(4)),
		AttackerReward:           Present(samples(4)),
		Mode:                     ModeSimulation,
		Timing:                   Timing{LogFrequency: 5},
	}
	reqs, err := NewDispatcher("o", WithFormat("svg"), WithChartSize(640, 200), WithCaption("run 7")).Plan(rs)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	want := []string{
		filepath.Join("o", "plots", "attacker_reward_simulation.svg"),
		filepath.Join("o", "plots", "defender_cumulative_reward_simulation.svg"),
	}
	for i, req := range reqs {
		if req.OutputPath != want[i] || req.Width != 640 || req.Height != 200 || req.Caption != "run 7" {
			t.Fatalf("request %d: %+v", i, req)
		}
	}
	if _, err := NewDispatcher("o", WithFormat("gif")).Plan(rs); !errors.Is(err, plotting.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for gif, got %v", err)
	}
}

func TestPresentCopiesInput(t *testing.T) {
	in := []float64{1, 2}
	s := Present(in)
	in[0] = 9
	got, ok := s.Get()
	if !ok || got[0] != 1 {
		t.Fatalf("Present must copy its input, got %v", got)
	}
	if (Series{}).IsPresent() {
		t.Fatalf("zero Series must be absent")
	}
}

func TestDispatchAttackerOnly(t *testing.T) {
	out := newOutputDir(t)
	rs := RunSummary{AttackerReward: Present(samples(30)), Mode: ModeTrain, Timing: Timing{LogFrequency: 10}}

	paths, err := NewDispatcher(out).Dispatch(context.Background(), rs)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	want := filepath.Join(out, "plots", "attacker_reward_train.png")
	if len(paths) != 1 || paths[0] != want {
		t.Fatalf("paths = %v, want [%s]", paths, want)
	}
	if names := listPlots(t, out); !slices.Equal(names, []string{"attacker_reward_train.png"}) {
		t.Fatalf("plots dir holds %v", names)
	}

	// Same inputs overwrite the same file.
	again, err := NewDispatcher(out).Dispatch(context.Background(), rs)
	if err != nil || !slices.Equal(again, paths) {
		t.Fatalf("second dispatch: %v %v", again, err)
	}
	if names := listPlots(t, out); len(names) != 1 {
		t.Fatalf("plots dir holds %v after re-dispatch", names)
	}
}

func TestDispatchNothingPresent(t *testing.T) {
	rec := &recorder{}
	paths, err := NewDispatcher("o", withRenderer(rec.render)).Dispatch(context.Background(), RunSummary{Mode: ModeEval})
	if err != nil || paths != nil || len(rec.paths) != 0 {
		t.Fatalf("expected a no-op, got %v %v %v", paths, err, rec.paths)
	}
}

func TestDispatchFailFast(t *testing.T) {
	rec := &recorder{fail: map[string]bool{"defender_reward": true}}
	rs := RunSummary{
		AttackerReward: Present(samples(3)),
		DefenderReward: Present(samples(3)),
		EpisodeLength:  Present(samples(3)),
		Timing:         Timing{LogFrequency: 1},
	}
	paths, err := NewDispatcher("o", withRenderer(rec.render)).Dispatch(context.Background(), rs)
	var serr *SeriesError
	if !errors.As(err, &serr) || serr.Series != DefenderReward {
		t.Fatalf("expected SeriesError for defender_reward, got %v", err)
	}
	if !errors.Is(err, plotting.ErrIO) {
		t.Fatalf("SeriesError must unwrap to the render error, got %v", err)
	}
	if len(paths) != 1 || filepath.Base(paths[0]) != "attacker_reward_train.png" {
		t.Fatalf("written = %v", paths)
	}
	if len(rec.paths) != 2 {
		t.Fatalf("episode length must not be attempted after the failure, calls=%v", rec.paths)
	}
}

func TestDispatchContinueOnError(t *testing.T) {
	rec := &recorder{fail: map[string]bool{"attacker_reward": true, "exploration_rate": true}}
	rs := RunSummary{
		AttackerReward:  Present(samples(3)),
		DefenderReward:  Present(samples(3)),
		ExplorationRate: Present(samples(3)),
		HackProbability: Present(samples(3)),
		Timing:          Timing{LogFrequency: 1},
	}
	paths, err := NewDispatcher("o", withRenderer(rec.render), WithContinueOnError(true)).Dispatch(context.Background(), rs)
	if err == nil {
		t.Fatalf("expected joined errors")
	}
	if len(rec.paths) != 4 {
		t.Fatalf("every series must be attempted, calls=%v", rec.paths)
	}
	if len(paths) != 2 || filepath.Base(paths[0]) != "defender_reward_train.png" || filepath.Base(paths[1]) != "hack_probability_train.png" {
		t.Fatalf("written = %v", paths)
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok || len(joined.Unwrap()) != 2 {
		t.Fatalf("expected two joined failures, got %v", err)
	}
}

func TestDispatchParallel(t *testing.T) {
	out := newOutputDir(t)
	rs := RunSummary{Mode: ModeTrain, Timing: Timing{LogFrequency: 20}}
	for _, id := range AllSeries() {
		rs.Set(id, Present(samples(25)))
	}
	rs.HackProbability = Present([]float64{0, 0.2, 0.5, 0.9, 1})

	paths, err := NewDispatcher(out, WithParallelism(4)).Dispatch(context.Background(), rs)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(paths) != 7 {
		t.Fatalf("expected 7 charts, got %v", paths)
	}
	for i, id := range AllSeries() {
		if filepath.Base(paths[i]) != id.Key()+"_train.png" {
			t.Fatalf("paths not in chart order: %v", paths)
		}
	}
	if names := listPlots(t, out); len(names) != 7 {
		t.Fatalf("plots dir holds %v", names)
	}
}

func TestDispatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := &recorder{}
	rs := RunSummary{AttackerReward: Present(samples(3)), Timing: Timing{LogFrequency: 1}}
	paths, err := NewDispatcher("o", withRenderer(rec.render)).Dispatch(ctx, rs)
	if !errors.Is(err, context.Canceled) || len(paths) != 0 || len(rec.paths) != 0 {
		t.Fatalf("expected cancellation before rendering, got %v %v %v", paths, err, rec.paths)
	}
}

func TestContinuesOnError(t *testing.T) {
	if NewDispatcher("o").ContinuesOnError() {
		t.Fatalf("fail-fast is the default")
	}
	if !NewDispatcher("o", WithContinueOnError(true)).ContinuesOnError() {
		t.Fatalf("option not applied")
	}
}
