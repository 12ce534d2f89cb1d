package results

import (
	"github.com/idsgame-lab/ExperimentReports/src/errdefs"
)

// Mode is the kind of run a summary was recorded in.
type Mode int

const (
	ModeTrain Mode = iota
	ModeEval
	ModeSimulation
)

// Suffix is appended to chart file names.
func (m Mode) Suffix() string {
	switch m {
	case ModeEval:
		return "eval"
	case ModeSimulation:
		return "simulation"
	default:
		return "train"
	}
}

func (m Mode) String() string { return m.Suffix() }

// ModeFor maps the eval and simulation flags to a Mode. Evaluation wins when both are set.
func ModeFor(eval, simulation bool) Mode {
	switch {
	case eval:
		return ModeEval
	case simulation:
		return ModeSimulation
	default:
		return ModeTrain
	}
}

// Timing carries the logging cadence of a run.
type Timing struct {
	LogFrequency     int
	EvalFrequency    int
	EvalLogFrequency int // recorded for completeness; does not affect the x step
	EvalEpisodes     int
}

// StepFor returns the episode distance between consecutive samples.
func StepFor(mode Mode, timing Timing) (float64, error) {
	var step float64
	switch mode {
	case ModeEval:
		if timing.EvalEpisodes == 0 {
			return 0, errdefs.Invalidf("eval episodes must be non-zero in eval mode")
		}
		step = float64(timing.EvalFrequency) / float64(timing.EvalEpisodes)
	case ModeTrain, ModeSimulation:
		step = float64(timing.LogFrequency)
	default:
		return 0, errdefs.Invalidf("unknown mode %d", int(mode))
	}
	if !(step > 0) {
		return 0, errdefs.Invalidf("%s step must be positive, got %g", mode.Suffix(), step)
	}
	return step, nil
}

// RunSummary is the set of series one run produced.
type RunSummary struct {
	AttackerReward           Series
	DefenderReward           Series
	EpisodeLength            Series
	ExplorationRate          Series
	HackProbability          Series
	AttackerCumulativeReward Series
	DefenderCumulativeReward Series

	Mode   Mode
	Timing Timing
}

// Series returns the field for id.
func (rs *RunSummary) Series(id SeriesID) Series {
	if p := rs.field(id); p != nil {
		return *p
	}
	return Series{}
}

// Set stores s under id.
func (rs *RunSummary) Set(id SeriesID, s Series) {
	if p := rs.field(id); p != nil {
		*p = s
	}
}

func (rs *RunSummary) field(id SeriesID) *Series {
	switch id {
	case AttackerReward:
		return &rs.AttackerReward
	case DefenderReward:
		return &rs.DefenderReward
	case EpisodeLength:
		return &rs.EpisodeLength
	case ExplorationRate:
		return &rs.ExplorationRate
	case HackProbability:
		return &rs.HackProbability
	case AttackerCumulativeReward:
		return &rs.AttackerCumulativeReward
	case DefenderCumulativeReward:
		return &rs.DefenderCumulativeReward
	}
	return nil
}

// Present lists the recorded series in chart order.
func (rs *RunSummary) Present() []SeriesID {
	var ids []SeriesID
	for _, id := range AllSeries() {
		if rs.Series(id).IsPresent() {
			ids = append(ids, id)
		}
	}
	return ids
}
