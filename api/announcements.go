package api

import (
	"context"

	"github.com/pkg/errors"
)

// Announcement is one site-wide notice.
type Announcement struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Date    string `json:"date"`
}

type announcementsResponse struct {
	Announcements []Announcement `json:"announcements"`
}

// GetAnnouncements fetches all published announcements. It needs no session.
func (c *Client) GetAnnouncements(ctx context.Context) ([]Announcement, error) {
	var out announcementsResponse
	if err := c.do(ctx, "GET", "/announcements", "", nil, &out); err != nil {
		return nil, errors.Wrap(err, "[GetAnnouncements]")
	}
	return out.Announcements, nil
}
