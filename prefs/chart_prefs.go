package prefs

import (
	"github.com/pkg/errors"

	"github.com/dasbd72/leetcode-progress/chart"
)

// Preference keys for chart display selections, written on every user change.
const (
	KeyChartInterval   = "chart-interval"
	KeyChartMode       = "chart-mode"
	KeyChartDifficulty = "chart-difficulty"
)

// ChartPrefs are the persisted chart display selections.
type ChartPrefs struct {
	Interval   chart.Interval
	Mode       chart.Mode
	Difficulty chart.Difficulty
}

// DefaultChartPrefs applies when no preference has been stored yet.
var DefaultChartPrefs = ChartPrefs{
	Interval:   chart.IntervalDay,
	Mode:       chart.ModeDelta,
	Difficulty: chart.DifficultyTotal,
}

// LoadChartPrefs reads the stored selections, substituting defaults for
// absent keys.
func LoadChartPrefs(repo Repo) ChartPrefs {
	return ChartPrefs{
		Interval:   chart.Interval(GetOrDefault(repo, KeyChartInterval, string(DefaultChartPrefs.Interval))),
		Mode:       chart.Mode(GetOrDefault(repo, KeyChartMode, string(DefaultChartPrefs.Mode))),
		Difficulty: chart.Difficulty(GetOrDefault(repo, KeyChartDifficulty, string(DefaultChartPrefs.Difficulty))),
	}
}

// SaveChartPrefs writes all three selections.
func SaveChartPrefs(repo Repo, p ChartPrefs) error {
	if err := repo.Set(KeyChartInterval, string(p.Interval)); err != nil {
		return errors.Wrap(err, "[SaveChartPrefs] interval")
	}
	if err := repo.Set(KeyChartMode, string(p.Mode)); err != nil {
		return errors.Wrap(err, "[SaveChartPrefs] mode")
	}
	if err := repo.Set(KeyChartDifficulty, string(p.Difficulty)); err != nil {
		return errors.Wrap(err, "[SaveChartPrefs] difficulty")
	}
	return nil
}
