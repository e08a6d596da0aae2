package oidcauth

import (
	"strconv"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// Storage is the key/value persistence the provider writes tokens into. The
// prefs package repos satisfy it.
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// Storage keys for the persisted token set.
const (
	keyAccessToken  = "oidc-access-token"
	keyRefreshToken = "oidc-refresh-token"
	keyIDToken      = "oidc-id-token"
	keyTokenExpiry  = "oidc-token-expiry"
)

type tokenStorage struct {
	repo Storage
}

func (s *tokenStorage) save(token *oauth2.Token, rawIDToken string) error {
	if token == nil {
		return s.clear()
	}
	if err := s.repo.Set(keyAccessToken, token.AccessToken); err != nil {
		return errors.Wrap(err, "[tokenStorage.save] access token")
	}
	if err := s.repo.Set(keyRefreshToken, token.RefreshToken); err != nil {
		return errors.Wrap(err, "[tokenStorage.save] refresh token")
	}
	if err := s.repo.Set(keyIDToken, rawIDToken); err != nil {
		return errors.Wrap(err, "[tokenStorage.save] id token")
	}
	expiry := ""
	if !token.Expiry.IsZero() {
		expiry = strconv.FormatInt(token.Expiry.Unix(), 10)
	}
	if err := s.repo.Set(keyTokenExpiry, expiry); err != nil {
		return errors.Wrap(err, "[tokenStorage.save] expiry")
	}
	return nil
}

func (s *tokenStorage) load() (*oauth2.Token, string, error) {
	accessToken, ok, err := s.repo.Get(keyAccessToken)
	if err != nil {
		return nil, "", errors.Wrap(err, "[tokenStorage.load] access token")
	}
	if !ok || accessToken == "" {
		return nil, "", nil
	}

	refreshToken, _, err := s.repo.Get(keyRefreshToken)
	if err != nil {
		return nil, "", errors.Wrap(err, "[tokenStorage.load] refresh token")
	}
	rawIDToken, _, err := s.repo.Get(keyIDToken)
	if err != nil {
		return nil, "", errors.Wrap(err, "[tokenStorage.load] id token")
	}

	token := &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}
	if raw, ok, err := s.repo.Get(keyTokenExpiry); err == nil && ok && raw != "" {
		if unix, err := strconv.ParseInt(raw, 10, 64); err == nil {
			token.Expiry = time.Unix(unix, 0)
		}
	}
	return token, rawIDToken, nil
}

func (s *tokenStorage) clear() error {
	for _, key := range []string{keyAccessToken, keyRefreshToken, keyIDToken, keyTokenExpiry} {
		if err := s.repo.Delete(key); err != nil {
			return errors.Wrapf(err, "[tokenStorage.clear] %s", key)
		}
	}
	return nil
}
