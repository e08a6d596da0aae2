package api

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"github.com/pkg/errors"

	"github.com/dasbd72/leetcode-progress/chart"
)

// LatestResponse is the current standings for every tracked user.
type LatestResponse struct {
	Data      map[string]chart.Stats `json:"data"`
	Usernames []string               `json:"usernames"`
}

// IntervalResponse is the time-keyed progress history. Data maps epoch
// seconds (as JSON object keys) to per-user statistics.
type IntervalResponse struct {
	Data      map[string]map[string]chart.Stats `json:"data"`
	Usernames []string                          `json:"usernames"`
}

// GetLatest fetches the newest per-user statistics. It needs no session.
func (c *Client) GetLatest(ctx context.Context) (LatestResponse, error) {
	var out LatestResponse
	if err := c.do(ctx, "GET", "/latest", "", nil, &out); err != nil {
		return LatestResponse{}, errors.Wrap(err, "[GetLatest]")
	}
	return out, nil
}

// GetLatestWithInterval fetches pre-bucketed history covering limit buckets
// of the given width. A non-empty accessToken restricts the result to the
// caller's following list server-side; an empty token returns all users.
func (c *Client) GetLatestWithInterval(ctx context.Context, hours, limit int, timezone, accessToken string) (IntervalResponse, error) {
	path := fmt.Sprintf("/latest/interval?hours=%d&limit=%d", hours, limit)
	if timezone != "" {
		path += "&timezone=" + url.QueryEscape(timezone)
	}

	var out IntervalResponse
	if err := c.do(ctx, "GET", path, accessToken, nil, &out); err != nil {
		return IntervalResponse{}, errors.Wrap(err, "[GetLatestWithInterval]")
	}
	return out, nil
}

// Series converts the wire format into an ordered chart series. Buckets with
// unparseable keys are dropped; the username set is taken from the response
// when present, otherwise collected from the data.
func (r IntervalResponse) Series() chart.Series {
	points := make([]chart.Point, 0, len(r.Data))
	for key, perUser := range r.Data {
		ts, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		points = append(points, chart.Point{Timestamp: ts, PerUser: perUser})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Timestamp < points[j].Timestamp
	})

	usernames := r.Usernames
	if len(usernames) == 0 {
		seen := make(map[string]struct{})
		for _, p := range points {
			for username := range p.PerUser {
				if _, ok := seen[username]; !ok {
					seen[username] = struct{}{}
					usernames = append(usernames, username)
				}
			}
		}
		sort.Strings(usernames)
	}

	return chart.Series{Points: points, Usernames: usernames}
}
