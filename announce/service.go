// Package announce fetches site announcements and decides when to surface
// them, throttling refetches and remembering what the user has already seen.
package announce

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/dasbd72/leetcode-progress/api"
	"github.com/dasbd72/leetcode-progress/prefs"
)

// Preference keys for announcement state. Absent keys mean "never fetched"
// and "never shown".
const (
	KeyLastFetched = "announcement-last-fetched"
	KeyLastShown   = "announcement-last-shown"
)

const defaultFetchInterval = time.Hour

const dateLayout = "2006-01-02"

// Service retrieves announcements anonymously and tracks show state in the
// preference store.
type Service struct {
	client        *api.Client
	prefs         prefs.Repo
	logger        zerolog.Logger
	fetchInterval time.Duration
	nowTime       func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// WithFetchInterval overrides how long fetched announcements stay fresh.
func WithFetchInterval(interval time.Duration) ServiceOption {
	return func(s *Service) {
		s.fetchInterval = interval
	}
}

// WithServiceLogger sets the logger for swallowed fetch failures.
func WithServiceLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates the announcement service.
func NewService(client *api.Client, prefsRepo prefs.Repo, options ...ServiceOption) (*Service, error) {
	if client == nil {
		return nil, errors.New("[announce.NewService] client is required")
	}
	if prefsRepo == nil {
		return nil, errors.New("[announce.NewService] prefs repo is required")
	}

	s := &Service{
		client:        client,
		prefs:         prefsRepo,
		logger:        zerolog.Nop(),
		fetchInterval: defaultFetchInterval,
		nowTime:       time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// ShouldFetch reports whether the last fetch is stale. A missing or
// unparseable timestamp counts as never fetched.
func (s *Service) ShouldFetch() bool {
	raw := prefs.GetOrDefault(s.prefs, KeyLastFetched, "")
	if raw == "" {
		return true
	}
	lastFetched, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return true
	}
	return s.nowTime().Sub(time.Unix(lastFetched, 0)) >= s.fetchInterval
}

// Fetch retrieves the announcements and records the fetch time. Failure is
// logged and yields an empty list, never an error to the caller.
func (s *Service) Fetch(ctx context.Context) []api.Announcement {
	announcements, err := s.client.GetAnnouncements(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("announcement fetch failed")
		return []api.Announcement{}
	}

	if err := s.prefs.Set(KeyLastFetched, strconv.FormatInt(s.nowTime().Unix(), 10)); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record announcement fetch time")
	}
	return announcements
}

// ShouldShow reports whether the given announcements contain anything newer
// than what the user last saw. No announcements means nothing to show; no
// recorded last-shown date means everything is new.
func (s *Service) ShouldShow(announcements []api.Announcement) bool {
	newest, ok := newestDate(announcements)
	if !ok {
		return false
	}

	raw := prefs.GetOrDefault(s.prefs, KeyLastShown, "")
	if raw == "" {
		return true
	}
	lastShown, err := time.Parse(dateLayout, raw)
	if err != nil {
		return true
	}
	return newest.After(lastShown)
}

// MarkShown records the newest announcement date as seen.
func (s *Service) MarkShown(announcements []api.Announcement) error {
	newest, ok := newestDate(announcements)
	if !ok {
		return nil
	}
	return errors.Wrap(
		s.prefs.Set(KeyLastShown, newest.Format(dateLayout)),
		"[MarkShown]",
	)
}

func newestDate(announcements []api.Announcement) (time.Time, bool) {
	var newest time.Time
	found := false
	for _, a := range announcements {
		date, err := time.Parse(dateLayout, a.Date)
		if err != nil {
			continue
		}
		if !found || date.After(newest) {
			newest = date
			found = true
		}
	}
	return newest, found
}
