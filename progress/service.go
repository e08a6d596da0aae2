package progress

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/dasbd72/leetcode-progress/api"
	"github.com/dasbd72/leetcode-progress/chart"
	"github.com/dasbd72/leetcode-progress/prefs"
	"github.com/dasbd72/leetcode-progress/resource"
	"github.com/dasbd72/leetcode-progress/session"
)

// Hours per bucket for each interval granularity; the bucketing itself
// happens server-side.
const (
	hourIntervalHours = 1
	dayIntervalHours  = 24
	defaultLimit      = 30
)

// Service exposes the progress data pipelines. The interval resource has
// both an authenticated variant (restricted to the caller's following list)
// and an anonymous one; which runs is decided from the current session
// snapshot on every request.
type Service struct {
	client *api.Client
	store  *session.Store
	prefs  prefs.Repo
	logger zerolog.Logger

	timezone string

	latest   *resource.Resource[api.LatestResponse]
	interval *resource.Resource[api.IntervalResponse]
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithTimezone sets the timezone name forwarded to the backend and used for
// label formatting.
func WithTimezone(timezone string) ServiceOption {
	return func(s *Service) {
		s.timezone = timezone
	}
}

// WithServiceLogger sets the logger for swallowed fetch failures.
func WithServiceLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService wires the progress resources against the API client and the
// session store.
func NewService(client *api.Client, store *session.Store, prefsRepo prefs.Repo, options ...ServiceOption) (*Service, error) {
	if client == nil {
		return nil, errors.New("[progress.NewService] client is required")
	}
	if store == nil {
		return nil, errors.New("[progress.NewService] store is required")
	}
	if prefsRepo == nil {
		return nil, errors.New("[progress.NewService] prefs repo is required")
	}

	s := &Service{
		client: client,
		store:  store,
		prefs:  prefsRepo,
		logger: zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}

	var err error
	s.latest, err = resource.New("latest-progress", api.LatestResponse{},
		func(ctx context.Context, _ string) (api.LatestResponse, error) {
			return client.GetLatest(ctx)
		},
		resource.WithAnonymousFetch[api.LatestResponse](
			func(ctx context.Context, _ string) (api.LatestResponse, error) {
				return client.GetLatest(ctx)
			}),
		resource.WithResourceLogger[api.LatestResponse](s.logger))
	if err != nil {
		return nil, errors.Wrap(err, "[progress.NewService] latest resource")
	}

	fetchInterval := func(ctx context.Context, accessToken string) (api.IntervalResponse, error) {
		p := prefs.LoadChartPrefs(s.prefs)
		hours := dayIntervalHours
		if p.Interval == chart.IntervalHour {
			hours = hourIntervalHours
		}
		return client.GetLatestWithInterval(ctx, hours, defaultLimit, s.timezone, accessToken)
	}
	s.interval, err = resource.New("interval-progress", api.IntervalResponse{},
		fetchInterval,
		resource.WithAnonymousFetch[api.IntervalResponse](
			func(ctx context.Context, _ string) (api.IntervalResponse, error) {
				return fetchInterval(ctx, "")
			}),
		resource.WithResourceLogger[api.IntervalResponse](s.logger))
	if err != nil {
		return nil, errors.Wrap(err, "[progress.NewService] interval resource")
	}

	return s, nil
}

// Leaderboard fetches the latest standings and builds the sorted table. Any
// failure yields an empty table; the caller surfaces loading state.
func (s *Service) Leaderboard(ctx context.Context) *Leaderboard {
	if err := s.latest.Refresh(ctx, s.store); err != nil {
		s.logger.Error().Err(err).Msg("leaderboard refresh failed")
	}
	return NewLeaderboard(s.latest.Value())
}

// ChartData fetches the interval history and aggregates it with the stored
// chart preferences. Any retrieval failure yields the zero ChartSeries.
func (s *Service) ChartData(ctx context.Context) chart.ChartSeries {
	if err := s.interval.Refresh(ctx, s.store); err != nil {
		s.logger.Error().Err(err).Msg("chart refresh failed")
		return chart.ChartSeries{}
	}

	p := prefs.LoadChartPrefs(s.prefs)
	return chart.Build(s.interval.Value().Series(), chart.Options{
		Interval:   p.Interval,
		Mode:       p.Mode,
		Difficulty: p.Difficulty,
		Location:   s.location(),
	})
}

// SetChartPrefs persists new display selections; the next ChartData call
// picks them up.
func (s *Service) SetChartPrefs(p prefs.ChartPrefs) error {
	return errors.Wrap(prefs.SaveChartPrefs(s.prefs, p), "[SetChartPrefs]")
}

func (s *Service) location() *time.Location {
	if s.timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.timezone)
	if err != nil {
		s.logger.Warn().Str("timezone", s.timezone).Msg("unknown timezone, using UTC")
		return time.UTC
	}
	return loc
}
