package chart_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dasbd72/leetcode-progress/chart"
)

func intPtr(v int) *int { return &v }

// sparseSeries is the three-point fixture from the aggregation contract:
// A present at t=1 and t=2, B only at t=3.
func sparseSeries() chart.Series {
	return chart.Series{
		Points: []chart.Point{
			{Timestamp: 1, PerUser: map[string]chart.Stats{"A": {Total: 5}}},
			{Timestamp: 2, PerUser: map[string]chart.Stats{"A": {Total: 8}}},
			{Timestamp: 3, PerUser: map[string]chart.Stats{"B": {Total: 2}}},
		},
		Usernames: []string{"A", "B"},
	}
}

func TestBuildTotalModeEmitsGapsForMissingUsers(t *testing.T) {
	out := chart.Build(sparseSeries(), chart.Options{
		Interval:   chart.IntervalDay,
		Mode:       chart.ModeTotal,
		Difficulty: chart.DifficultyTotal,
	})

	require.Len(t, out.Labels, 3)
	assert.Equal(t, []*int{intPtr(5), intPtr(8), nil}, out.Datasets["A"])
	assert.Equal(t, []*int{nil, nil, intPtr(2)}, out.Datasets["B"])
}

func TestBuildDeltaModeZeroFillsMissingUsers(t *testing.T) {
	out := chart.Build(sparseSeries(), chart.Options{
		Interval:   chart.IntervalDay,
		Mode:       chart.ModeDelta,
		Difficulty: chart.DifficultyTotal,
	})

	// One fewer label than total mode: the first delta has no predecessor.
	require.Len(t, out.Labels, 2)
	// A's second delta is zero because A is missing at t=3; B is missing at
	// both earlier points, yielding zeros rather than gaps.
	assert.Equal(t, []*int{intPtr(3), intPtr(0)}, out.Datasets["A"])
	assert.Equal(t, []*int{intPtr(0), intPtr(0)}, out.Datasets["B"])
}

func TestBuildSortsPointsDefensively(t *testing.T) {
	series := sparseSeries()
	series.Points[0], series.Points[2] = series.Points[2], series.Points[0]

	out := chart.Build(series, chart.Options{
		Interval:   chart.IntervalDay,
		Mode:       chart.ModeTotal,
		Difficulty: chart.DifficultyTotal,
	})
	assert.Equal(t, []*int{intPtr(5), intPtr(8), nil}, out.Datasets["A"])
}

func TestBuildMedHardSumsMediumAndHard(t *testing.T) {
	series := chart.Series{
		Points: []chart.Point{
			{Timestamp: 1, PerUser: map[string]chart.Stats{
				"A": {Easy: 1, Medium: 4, Hard: 2, Total: 7},
			}},
		},
		Usernames: []string{"A"},
	}

	out := chart.Build(series, chart.Options{
		Interval:   chart.IntervalDay,
		Mode:       chart.ModeTotal,
		Difficulty: chart.DifficultyMedHard,
	})
	assert.Equal(t, []*int{intPtr(6)}, out.Datasets["A"])
}

func TestHourLabelsMarkMidnightBoundaries(t *testing.T) {
	midnight := time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)
	series := chart.Series{
		Points: []chart.Point{
			{Timestamp: midnight.Add(-time.Hour).Unix(), PerUser: map[string]chart.Stats{}},
			{Timestamp: midnight.Unix(), PerUser: map[string]chart.Stats{}},
			{Timestamp: midnight.Add(time.Hour).Unix(), PerUser: map[string]chart.Stats{}},
		},
	}

	out := chart.Build(series, chart.Options{
		Interval:   chart.IntervalHour,
		Mode:       chart.ModeTotal,
		Difficulty: chart.DifficultyTotal,
	})
	assert.Equal(t, []string{"23:00", "03/08", "01:00"}, out.Labels)
}

func TestDayLabelsAlwaysShowDates(t *testing.T) {
	series := chart.Series{
		Points: []chart.Point{
			{Timestamp: time.Date(2025, 3, 8, 15, 0, 0, 0, time.UTC).Unix()},
			{Timestamp: time.Date(2025, 3, 9, 15, 0, 0, 0, time.UTC).Unix()},
		},
	}

	out := chart.Build(series, chart.Options{
		Interval:   chart.IntervalDay,
		Mode:       chart.ModeTotal,
		Difficulty: chart.DifficultyTotal,
	})
	assert.Equal(t, []string{"03/08", "03/09"}, out.Labels)
}

func TestLabelsRespectTimezone(t *testing.T) {
	taipei, err := time.LoadLocation("Asia/Taipei")
	require.NoError(t, err)

	// 16:00 UTC is midnight in Taipei (UTC+8): a boundary marker there, a
	// plain hour label in UTC.
	ts := time.Date(2025, 3, 8, 16, 0, 0, 0, time.UTC).Unix()
	series := chart.Series{Points: []chart.Point{{Timestamp: ts}}}

	utcOut := chart.Build(series, chart.Options{Interval: chart.IntervalHour, Mode: chart.ModeTotal})
	assert.Equal(t, []string{"16:00"}, utcOut.Labels)

	taipeiOut := chart.Build(series, chart.Options{
		Interval: chart.IntervalHour,
		Mode:     chart.ModeTotal,
		Location: taipei,
	})
	assert.Equal(t, []string{"03/09"}, taipeiOut.Labels)
}

func TestBuildEmptySeries(t *testing.T) {
	out := chart.Build(chart.Series{}, chart.Options{
		Interval: chart.IntervalDay,
		Mode:     chart.ModeDelta,
	})
	assert.Empty(t, out.Labels)
	assert.Empty(t, out.Datasets)
}

func TestHashColorIsDeterministic(t *testing.T) {
	first := chart.HashColor("alice")
	second := chart.HashColor("alice")
	assert.Equal(t, first, second)
	assert.NotEqual(t, chart.HashColor("alice"), chart.HashColor("bob"))
}

func TestHashColorStaysInRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		c := chart.HashColor(fmt.Sprintf("user-%d", i))
		assert.GreaterOrEqual(t, c.Hue, 0)
		assert.Less(t, c.Hue, 360)
		assert.GreaterOrEqual(t, c.Saturation, 40)
		assert.Less(t, c.Saturation, 99)
		assert.GreaterOrEqual(t, c.Lightness, 40)
		assert.Less(t, c.Lightness, 80)
	}
}

func TestHashColorRarelyCollides(t *testing.T) {
	seen := make(map[chart.HSL]int)
	const corpus = 500
	for i := 0; i < corpus; i++ {
		seen[chart.HashColor(fmt.Sprintf("user-%d", i))]++
	}

	collisions := 0
	for _, n := range seen {
		collisions += n - 1
	}
	// Distinct usernames should almost always map to distinct colors.
	assert.LessOrEqual(t, collisions, corpus/20)
}
