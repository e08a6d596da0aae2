// Package chart turns sparse per-user progress series into chart-ready labels
// and datasets. All computation here is pure; data retrieval lives elsewhere.
package chart

import (
	"sort"
	"time"
)

// Interval is the pre-bucketed granularity of the input series. It affects
// label formatting only; the server already aggregates the data.
type Interval string

// Mode selects cumulative totals or period-over-period deltas.
type Mode string

// Difficulty selects which problem count to plot.
type Difficulty string

const (
	IntervalHour Interval = "hour"
	IntervalDay  Interval = "day"

	ModeTotal Mode = "total"
	ModeDelta Mode = "delta"

	DifficultyEasy    Difficulty = "easy"
	DifficultyMedium  Difficulty = "medium"
	DifficultyHard    Difficulty = "hard"
	DifficultyMedHard Difficulty = "med_hard"
	DifficultyTotal   Difficulty = "total"
)

// Stats holds one user's solved-problem counts at one timestamp.
type Stats struct {
	Easy   int `json:"easy"`
	Medium int `json:"medium"`
	Hard   int `json:"hard"`
	Total  int `json:"total"`
}

// Count extracts the value for the given difficulty.
func (s Stats) Count(difficulty Difficulty) int {
	switch difficulty {
	case DifficultyEasy:
		return s.Easy
	case DifficultyMedium:
		return s.Medium
	case DifficultyHard:
		return s.Hard
	case DifficultyMedHard:
		return s.Medium + s.Hard
	default:
		return s.Total
	}
}

// Point is one timestamp's worth of per-user statistics. A username absent
// from PerUser means "no data", which is distinct from a count of zero.
type Point struct {
	Timestamp int64
	PerUser   map[string]Stats
}

// Series is an ordered-by-timestamp sequence of points plus the set of
// usernames observed across all points.
type Series struct {
	Points    []Point
	Usernames []string
}

// ChartSeries is the display-ready output: every dataset has the same length
// as Labels. In total mode a nil entry is a gap that breaks the rendered
// line; delta mode never emits nil.
type ChartSeries struct {
	Labels   []string
	Datasets map[string][]*int
}

// Options selects the aggregation performed by Build. Location affects label
// formatting only, never bucketing. A nil Location means UTC.
type Options struct {
	Interval   Interval
	Mode       Mode
	Difficulty Difficulty
	Location   *time.Location
}

// Build transforms a progress series into chart labels and per-user datasets.
func Build(series Series, opts Options) ChartSeries {
	points := make([]Point, len(series.Points))
	copy(points, series.Points)
	// Ascending order is an input invariant; sort defensively anyway.
	sort.Slice(points, func(i, j int) bool {
		return points[i].Timestamp < points[j].Timestamp
	})

	out := ChartSeries{
		Labels:   buildLabels(points, opts),
		Datasets: make(map[string][]*int, len(series.Usernames)),
	}

	for _, username := range series.Usernames {
		if opts.Mode == ModeDelta {
			out.Datasets[username] = buildDeltaDataset(points, username, opts.Difficulty)
		} else {
			out.Datasets[username] = buildTotalDataset(points, username, opts.Difficulty)
		}
	}
	return out
}

// buildLabels formats one label per point. Hour-interval labels render as
// HH:MM except at exact midnight, which renders as MM/DD to mark the day
// boundary. Day-interval labels always render as MM/DD. A delta series has
// one fewer point than a total series, so delta mode drops the first label.
func buildLabels(points []Point, opts Options) []string {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	labels := make([]string, 0, len(points))
	for _, p := range points {
		t := time.Unix(p.Timestamp, 0).In(loc)
		if opts.Interval == IntervalHour && !(t.Hour() == 0 && t.Minute() == 0) {
			labels = append(labels, t.Format("15:04"))
		} else {
			labels = append(labels, t.Format("01/02"))
		}
	}
	if opts.Mode == ModeDelta && len(labels) > 0 {
		labels = labels[1:]
	}
	return labels
}

// buildTotalDataset emits the cumulative count at each timestamp, or nil
// where the user has no entry (a gap, not zero).
func buildTotalDataset(points []Point, username string, difficulty Difficulty) []*int {
	data := make([]*int, 0, len(points))
	for _, p := range points {
		stats, ok := p.PerUser[username]
		if !ok {
			data = append(data, nil)
			continue
		}
		count := stats.Count(difficulty)
		data = append(data, &count)
	}
	return data
}

// buildDeltaDataset emits the difference between consecutive timestamps. A
// user missing at either end of a pair yields zero, not a gap; delta series
// zero-fill where total series would break the line.
func buildDeltaDataset(points []Point, username string, difficulty Difficulty) []*int {
	if len(points) == 0 {
		return []*int{}
	}
	data := make([]*int, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		prev, prevOK := points[i-1].PerUser[username]
		curr, currOK := points[i].PerUser[username]

		delta := 0
		if prevOK && currOK {
			delta = curr.Count(difficulty) - prev.Count(difficulty)
		}
		d := delta
		data = append(data, &d)
	}
	return data
}
