// Package settings owns the authenticated account resources: the user's own
// settings, the public user directory, and the following list.
package settings

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/dasbd72/leetcode-progress/api"
	"github.com/dasbd72/leetcode-progress/resource"
	"github.com/dasbd72/leetcode-progress/session"
)

// FollowingRow is one row of the follow-management table: a directory entry
// joined with whether the caller follows it.
type FollowingRow struct {
	Username          string
	PreferredUsername string
	LeetcodeUsername  string
	Following         bool
}

// Service wires the three account resources to the session store. All three
// wait for an authenticated session with a resolved access token before
// fetching, and fall back to their defaults on failure.
type Service struct {
	store  *session.Store
	logger zerolog.Logger

	userSettings *resource.Resource[api.UserSettings]
	userList     *resource.Resource[[]api.User]
	following    *resource.Resource[[]string]
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithServiceLogger sets the logger for swallowed fetch failures.
func WithServiceLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService builds the account resources against the API client.
func NewService(client *api.Client, store *session.Store, options ...ServiceOption) (*Service, error) {
	if client == nil {
		return nil, errors.New("[settings.NewService] client is required")
	}
	if store == nil {
		return nil, errors.New("[settings.NewService] store is required")
	}

	s := &Service{
		store:  store,
		logger: zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}

	var err error
	s.userSettings, err = resource.New("user-settings", api.DefaultUserSettings,
		client.GetUserSettings,
		resource.WithUpdate[api.UserSettings](client.UpdateUserSettings),
		resource.WithFetchOnce[api.UserSettings](),
		resource.WithResourceLogger[api.UserSettings](s.logger))
	if err != nil {
		return nil, errors.Wrap(err, "[settings.NewService] user settings resource")
	}

	s.userList, err = resource.New("user-list", []api.User{},
		func(ctx context.Context, accessToken string) ([]api.User, error) {
			users, err := client.GetUserList(ctx, accessToken)
			if err != nil {
				return nil, err
			}
			// Directory order is by preferred username.
			sort.Slice(users, func(i, j int) bool {
				return users[i].PreferredUsername < users[j].PreferredUsername
			})
			return users, nil
		},
		resource.WithFetchOnce[[]api.User](),
		resource.WithResourceLogger[[]api.User](s.logger))
	if err != nil {
		return nil, errors.Wrap(err, "[settings.NewService] user list resource")
	}

	s.following, err = resource.New("following-list", []string{},
		client.GetFollowingList,
		resource.WithUpdate[[]string](client.UpdateFollowingList),
		resource.WithFetchOnce[[]string](),
		resource.WithResourceLogger[[]string](s.logger))
	if err != nil {
		return nil, errors.Wrap(err, "[settings.NewService] following list resource")
	}

	return s, nil
}

// Bind starts all three pipelines; each fetches once the session is
// authenticated with a token present.
func (s *Service) Bind(ctx context.Context) {
	s.userSettings.Bind(ctx, s.store)
	s.userList.Bind(ctx, s.store)
	s.following.Bind(ctx, s.store)
}

// UserSettings returns the latest loaded settings.
func (s *Service) UserSettings() api.UserSettings {
	return s.userSettings.Value()
}

// IsLoadingSettings reports whether the settings fetch is in flight.
func (s *Service) IsLoadingSettings() bool {
	return s.userSettings.IsLoading()
}

// SubmitUserSettings writes new settings through the update pipeline. On
// failure the submitted value is kept locally (optimistic, no rollback).
func (s *Service) SubmitUserSettings(ctx context.Context, settings api.UserSettings) (api.UserSettings, error) {
	updated, err := s.userSettings.Submit(ctx, s.store, settings)
	return updated, errors.Wrap(err, "[SubmitUserSettings]")
}

// UserList returns the latest loaded directory.
func (s *Service) UserList() []api.User {
	return s.userList.Value()
}

// Following returns the latest loaded following list.
func (s *Service) Following() []string {
	return s.following.Value()
}

// SubmitFollowing writes a new following list through the update pipeline.
func (s *Service) SubmitFollowing(ctx context.Context, following []string) ([]string, error) {
	updated, err := s.following.Submit(ctx, s.store, following)
	return updated, errors.Wrap(err, "[SubmitFollowing]")
}

// IsLoadingFollowing reports whether either list fetch is still in flight;
// the follow-management table needs both.
func (s *Service) IsLoadingFollowing() bool {
	return s.userList.IsLoading() || s.following.IsLoading()
}

// FollowingTable joins the user directory with the following list.
func (s *Service) FollowingTable() []FollowingRow {
	followed := make(map[string]struct{})
	for _, username := range s.following.Value() {
		followed[username] = struct{}{}
	}

	users := s.userList.Value()
	rows := make([]FollowingRow, 0, len(users))
	for _, user := range users {
		_, ok := followed[user.Username]
		rows = append(rows, FollowingRow{
			Username:          user.Username,
			PreferredUsername: user.PreferredUsername,
			LeetcodeUsername:  user.LeetcodeUsername,
			Following:         ok,
		})
	}
	return rows
}
