package announce_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dasbd72/leetcode-progress/announce"
	"github.com/dasbd72/leetcode-progress/api"
	"github.com/dasbd72/leetcode-progress/prefs"
)

type announceFixture struct {
	service *announce.Service
	prefs   *prefs.InMemoryRepo
	now     time.Time
	fail    *atomic.Bool
}

func setupAnnounce(t *testing.T) *announceFixture {
	t.Helper()

	var fail atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"announcements": []api.Announcement{
				{Title: "Welcome", Content: "User system is live", Date: "2025-03-08"},
				{Title: "Following", Content: "Follow other users", Date: "2025-05-10"},
			},
		})
	}))
	t.Cleanup(server.Close)

	client, err := api.NewClient(server.URL)
	require.NoError(t, err)

	f := &announceFixture{
		prefs: prefs.NewInMemoryRepo(),
		now:   time.Date(2025, 5, 12, 10, 0, 0, 0, time.UTC),
		fail:  &fail,
	}
	f.service, err = announce.NewService(client, f.prefs,
		announce.WithNowTime(func() time.Time { return f.now }))
	require.NoError(t, err)
	return f
}

func TestShouldFetchWhenNeverFetched(t *testing.T) {
	f := setupAnnounce(t)
	assert.True(t, f.service.ShouldFetch())
}

func TestFetchRecordsTimestampAndThrottles(t *testing.T) {
	f := setupAnnounce(t)

	announcements := f.service.Fetch(context.Background())
	require.Len(t, announcements, 2)
	assert.False(t, f.service.ShouldFetch())

	// Stale again once the fetch interval elapses.
	f.now = f.now.Add(2 * time.Hour)
	assert.True(t, f.service.ShouldFetch())
}

func TestFetchFailureYieldsEmptyList(t *testing.T) {
	f := setupAnnounce(t)
	f.fail.Store(true)

	announcements := f.service.Fetch(context.Background())
	assert.Empty(t, announcements)
	// A failed fetch does not count as fetched.
	assert.True(t, f.service.ShouldFetch())
}

func TestShouldShowUntilMarkedShown(t *testing.T) {
	f := setupAnnounce(t)

	announcements := f.service.Fetch(context.Background())
	assert.True(t, f.service.ShouldShow(announcements))

	require.NoError(t, f.service.MarkShown(announcements))
	assert.False(t, f.service.ShouldShow(announcements))
}

func TestShouldShowAgainForNewerAnnouncements(t *testing.T) {
	f := setupAnnounce(t)

	old := []api.Announcement{{Title: "Welcome", Date: "2025-03-08"}}
	require.NoError(t, f.service.MarkShown(old))

	newer := append(old, api.Announcement{Title: "Following", Date: "2025-05-10"})
	assert.True(t, f.service.ShouldShow(newer))
}

func TestShouldShowNothingForEmptyList(t *testing.T) {
	f := setupAnnounce(t)
	assert.False(t, f.service.ShouldShow(nil))
}
