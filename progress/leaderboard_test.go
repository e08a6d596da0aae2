package progress_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dasbd72/leetcode-progress/api"
	"github.com/dasbd72/leetcode-progress/chart"
	"github.com/dasbd72/leetcode-progress/progress"
)

func standings() api.LatestResponse {
	return api.LatestResponse{
		Data: map[string]chart.Stats{
			"alice": {Easy: 30, Medium: 20, Hard: 5, Total: 55},
			"bob":   {Easy: 50, Medium: 10, Hard: 2, Total: 62},
			"carol": {Easy: 10, Medium: 40, Hard: 5, Total: 55},
		},
		Usernames: []string{"alice", "bob", "carol"},
	}
}

func usernames(rows []progress.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Username
	}
	return out
}

func TestLeaderboardDefaultsToTotalDescending(t *testing.T) {
	lb := progress.NewLeaderboard(standings())

	// alice and carol tie on total; the username tiebreak keeps the order
	// deterministic.
	assert.Equal(t, []string{"bob", "alice", "carol"}, usernames(lb.Rows))
	assert.Equal(t, progress.SortByTotal, lb.Key)
	assert.Equal(t, progress.SortDesc, lb.Direction)
}

func TestLeaderboardSortByNewKeyStartsDescending(t *testing.T) {
	lb := progress.NewLeaderboard(standings())

	lb.SortBy(progress.SortByMedium)
	assert.Equal(t, []string{"carol", "alice", "bob"}, usernames(lb.Rows))
	assert.Equal(t, progress.SortDesc, lb.Direction)
}

func TestLeaderboardSortBySameKeyTogglesDirection(t *testing.T) {
	lb := progress.NewLeaderboard(standings())

	lb.SortBy(progress.SortByTotal)
	assert.Equal(t, progress.SortAsc, lb.Direction)
	assert.Equal(t, []string{"alice", "carol", "bob"}, usernames(lb.Rows))

	lb.SortBy(progress.SortByTotal)
	assert.Equal(t, progress.SortDesc, lb.Direction)
}

func TestLeaderboardSortByUsername(t *testing.T) {
	lb := progress.NewLeaderboard(standings())

	lb.SortBy(progress.SortByUsername)
	assert.Equal(t, []string{"carol", "bob", "alice"}, usernames(lb.Rows))

	lb.SortBy(progress.SortByUsername)
	assert.Equal(t, []string{"alice", "bob", "carol"}, usernames(lb.Rows))
}

func TestLeaderboardEmptyStandings(t *testing.T) {
	lb := progress.NewLeaderboard(api.LatestResponse{})
	assert.Empty(t, lb.Rows)
}
