// Package progress builds the user-facing views of the tracked statistics:
// the standings table and the chart data series.
package progress

import (
	"sort"
	"strings"

	"github.com/dasbd72/leetcode-progress/api"
)

// SortKey names a leaderboard column.
type SortKey string

// SortDirection orders a leaderboard column.
type SortDirection string

const (
	SortByUsername SortKey = "username"
	SortByEasy     SortKey = "easy"
	SortByMedium   SortKey = "medium"
	SortByHard     SortKey = "hard"
	SortByTotal    SortKey = "total"

	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Row is one leaderboard entry.
type Row struct {
	Username string
	Easy     int
	Medium   int
	Hard     int
	Total    int
}

// Leaderboard is a sortable standings table. The default order is total
// solved, descending.
type Leaderboard struct {
	Rows      []Row
	Key       SortKey
	Direction SortDirection
}

// NewLeaderboard builds a leaderboard from the latest standings, sorted by
// total descending.
func NewLeaderboard(latest api.LatestResponse) *Leaderboard {
	rows := make([]Row, 0, len(latest.Data))
	for username, stats := range latest.Data {
		rows = append(rows, Row{
			Username: username,
			Easy:     stats.Easy,
			Medium:   stats.Medium,
			Hard:     stats.Hard,
			Total:    stats.Total,
		})
	}

	lb := &Leaderboard{
		Rows:      rows,
		Key:       SortByTotal,
		Direction: SortDesc,
	}
	lb.sort()
	return lb
}

// SortBy sorts by the given key. Selecting the already-active key toggles
// the direction; a new key starts descending.
func (l *Leaderboard) SortBy(key SortKey) {
	if l.Key == key {
		if l.Direction == SortAsc {
			l.Direction = SortDesc
		} else {
			l.Direction = SortAsc
		}
	} else {
		l.Key = key
		l.Direction = SortDesc
	}
	l.sort()
}

func (l *Leaderboard) sort() {
	key, asc := l.Key, l.Direction == SortAsc
	sort.SliceStable(l.Rows, func(i, j int) bool {
		a, b := l.Rows[i], l.Rows[j]
		if key == SortByUsername {
			if asc {
				return strings.Compare(a.Username, b.Username) < 0
			}
			return strings.Compare(a.Username, b.Username) > 0
		}
		av, bv := a.value(key), b.value(key)
		if av == bv {
			// Stable username tiebreak keeps equal counts deterministic.
			return strings.Compare(a.Username, b.Username) < 0
		}
		if asc {
			return av < bv
		}
		return av > bv
	})
}

func (r Row) value(key SortKey) int {
	switch key {
	case SortByEasy:
		return r.Easy
	case SortByMedium:
		return r.Medium
	case SortByHard:
		return r.Hard
	default:
		return r.Total
	}
}
