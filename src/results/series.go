// Package results turns the metrics of a training, evaluation or simulation run into
// one chart per recorded series.
package results

import (
	"github.com/idsgame-lab/ExperimentReports/src/plotting"
)

// XLabel is shared by every series chart.
const XLabel = "Episode"

// SeriesID names one of the metrics a run may record.
type SeriesID int

const (
	AttackerReward SeriesID = iota
	DefenderReward
	EpisodeLength
	ExplorationRate
	HackProbability
	AttackerCumulativeReward
	DefenderCumulativeReward

	numSeries
)

type seriesInfo struct {
	key    string
	column string
	title  string
	ylabel string
	ylims  *plotting.Limits
}

var seriesTable = [numSeries]seriesInfo{
	AttackerReward: {
		key: "attacker_reward", column: "avg_attacker_episode_rewards",
		title: "Avg Attacker Episodic Returns", ylabel: "Avg Return",
	},
	DefenderReward: {
		key: "defender_reward", column: "avg_defender_episode_rewards",
		title: "Avg Defender Episodic Returns", ylabel: "Avg Return",
	},
	EpisodeLength: {
		key: "episode_length", column: "avg_episode_steps",
		title: "Avg Episode Lengths", ylabel: "Avg Length (num steps)",
	},
	ExplorationRate: {
		key: "exploration_rate", column: "epsilon_values",
		title: "Exploration rate (Epsilon)", ylabel: "Epsilon",
	},
	HackProbability: {
		key: "hack_probability", column: "hack_probability",
		title: "Hack probability", ylabel: "P(Hacked)",
		ylims: &plotting.Limits{Min: 0, Max: 1},
	},
	AttackerCumulativeReward: {
		key: "attacker_cumulative_reward", column: "attacker_cumulative_reward",
		title: "Attacker Cumulative Reward", ylabel: "Cumulative Reward",
	},
	DefenderCumulativeReward: {
		key: "defender_cumulative_reward", column: "defender_cumulative_reward",
		title: "Defender Cumulative Reward", ylabel: "Cumulative Reward",
	},
}

// AllSeries lists every SeriesID in chart order.
func AllSeries() []SeriesID {
	ids := make([]SeriesID, numSeries)
	for i := range ids {
		ids[i] = SeriesID(i)
	}
	return ids
}

func (id SeriesID) valid() bool { return id >= 0 && id < numSeries }

// Key is the file name stem of the series chart, e.g. "hack_probability".
func (id SeriesID) Key() string {
	if !id.valid() {
		return "unknown"
	}
	return seriesTable[id].key
}

// Column is the log column the series is read from.
func (id SeriesID) Column() string {
	if !id.valid() {
		return ""
	}
	return seriesTable[id].column
}

// Title is the chart title.
func (id SeriesID) Title() string {
	if !id.valid() {
		return ""
	}
	return seriesTable[id].title
}

// YLabel is the y axis label.
func (id SeriesID) YLabel() string {
	if !id.valid() {
		return ""
	}
	return seriesTable[id].ylabel
}

// YLims returns the fixed y limits of the series, if it has any.
func (id SeriesID) YLims() (plotting.Limits, bool) {
	if !id.valid() || seriesTable[id].ylims == nil {
		return plotting.Limits{}, false
	}
	return *seriesTable[id].ylims, true
}

func (id SeriesID) String() string { return id.Key() }

// Series is an optional sequence of samples. The zero value is absent.
type Series struct {
	values  []float64
	present bool
}

// Present marks v as recorded, even when it is empty.
func Present(v []float64) Series {
	c := make([]float64, len(v))
	copy(c, v)
	return Series{values: c, present: true}
}

// Get returns the samples and whether the series was recorded.
func (s Series) Get() ([]float64, bool) { return s.values, s.present }

// IsPresent reports whether the series was recorded.
func (s Series) IsPresent() bool { return s.present }
