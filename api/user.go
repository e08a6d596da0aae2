package api

import (
	"context"

	"github.com/pkg/errors"
)

// UserSettings is the account profile stored behind the authenticated API.
// The wire format is snake_case.
type UserSettings struct {
	Email             string `json:"email"`
	Username          string `json:"username"`
	PreferredUsername string `json:"preferred_username"`
	LeetcodeUsername  string `json:"leetcode_username"`
}

// DefaultUserSettings is the single shared default referenced wherever an
// empty settings value is needed.
var DefaultUserSettings = UserSettings{}

// User is one row of the public user directory.
type User struct {
	Username          string `json:"username"`
	PreferredUsername string `json:"preferred_username"`
	LeetcodeUsername  string `json:"leetcode_username"`
}

type userListResponse struct {
	Users []User `json:"users"`
}

type followingResponse struct {
	Following []string `json:"following"`
}

// GetUserSettings fetches the caller's settings. Requires a bearer token.
func (c *Client) GetUserSettings(ctx context.Context, accessToken string) (UserSettings, error) {
	var out UserSettings
	if err := c.do(ctx, "GET", "/user/settings", accessToken, nil, &out); err != nil {
		return DefaultUserSettings, errors.Wrap(err, "[GetUserSettings]")
	}
	return out, nil
}

// UpdateUserSettings replaces the caller's settings and returns the stored
// result.
func (c *Client) UpdateUserSettings(ctx context.Context, accessToken string, settings UserSettings) (UserSettings, error) {
	var out UserSettings
	if err := c.do(ctx, "PUT", "/user/settings", accessToken, settings, &out); err != nil {
		return DefaultUserSettings, errors.Wrap(err, "[UpdateUserSettings]")
	}
	return out, nil
}

// GetUserList fetches the directory of all tracked users.
func (c *Client) GetUserList(ctx context.Context, accessToken string) ([]User, error) {
	var out userListResponse
	if err := c.do(ctx, "GET", "/user/list", accessToken, nil, &out); err != nil {
		return nil, errors.Wrap(err, "[GetUserList]")
	}
	return out.Users, nil
}

// GetFollowingList fetches the usernames the caller follows.
func (c *Client) GetFollowingList(ctx context.Context, accessToken string) ([]string, error) {
	var out followingResponse
	if err := c.do(ctx, "GET", "/user/following", accessToken, nil, &out); err != nil {
		return nil, errors.Wrap(err, "[GetFollowingList]")
	}
	return out.Following, nil
}

// UpdateFollowingList replaces the caller's following list.
func (c *Client) UpdateFollowingList(ctx context.Context, accessToken string, following []string) ([]string, error) {
	var out followingResponse
	body := followingResponse{Following: following}
	if err := c.do(ctx, "PUT", "/user/following", accessToken, body, &out); err != nil {
		return nil, errors.Wrap(err, "[UpdateFollowingList]")
	}
	return out.Following, nil
}
