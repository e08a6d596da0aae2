// Package oidcauth implements the session AuthProvider against a real OIDC
// issuer using the authorization-code flow. Tokens survive restarts through
// the preference store, the desktop stand-in for browser security storage.
package oidcauth

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/dasbd72/leetcode-progress/session"
)

// Config identifies the OIDC client registration.
type Config struct {
	IssuerURL             string
	ClientID              string
	RedirectURL           string
	PostLogoutRedirectURL string
	Scopes                []string
}

// RedirectFunc receives the URL the user agent must visit. In a browser this
// would be a navigation; the demo binary prints it.
type RedirectFunc func(url string)

// Provider is the production session.AuthProvider.
type Provider struct {
	cfg          Config
	oidcProvider *oidc.Provider
	oauthConfig  oauth2.Config
	verifier     *oidc.IDTokenVerifier
	storage      *tokenStorage
	redirect     RedirectFunc
	logger       zerolog.Logger
	nowTime      func() time.Time

	mu           sync.Mutex
	token        *oauth2.Token
	rawIDToken   string
	pendingState string
	pendingNonce string

	flags chan bool
}

var _ session.AuthProvider = (*Provider)(nil)

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithRedirect sets the callback receiving authorization and end-session
// URLs.
func WithRedirect(redirect RedirectFunc) ProviderOption {
	return func(p *Provider) {
		p.redirect = redirect
	}
}

// WithProviderLogger sets the logger.
func WithProviderLogger(logger zerolog.Logger) ProviderOption {
	return func(p *Provider) {
		p.logger = logger
	}
}

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) ProviderOption {
	return func(p *Provider) {
		p.nowTime = nowFunc
	}
}

// New discovers the issuer configuration and restores any persisted tokens.
func New(ctx context.Context, cfg Config, storage Storage, options ...ProviderOption) (*Provider, error) {
	if cfg.IssuerURL == "" {
		return nil, errors.New("[oidcauth.New] issuer URL is required")
	}
	if cfg.ClientID == "" {
		return nil, errors.New("[oidcauth.New] client ID is required")
	}
	if storage == nil {
		return nil, errors.New("[oidcauth.New] storage is required")
	}

	oidcProvider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, errors.Wrap(err, "[oidcauth.New] provider discovery")
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "email", "profile"}
	}

	p := &Provider{
		cfg:          cfg,
		oidcProvider: oidcProvider,
		oauthConfig: oauth2.Config{
			ClientID:    cfg.ClientID,
			Endpoint:    oidcProvider.Endpoint(),
			RedirectURL: cfg.RedirectURL,
			Scopes:      scopes,
		},
		verifier: oidcProvider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		storage:  &tokenStorage{repo: storage},
		redirect: func(string) {},
		logger:   zerolog.Nop(),
		nowTime:  time.Now,
		flags:    make(chan bool, 16),
	}
	for _, opt := range options {
		opt(p)
	}

	token, rawIDToken, err := p.storage.load()
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to restore persisted tokens")
	} else {
		p.token = token
		p.rawIDToken = rawIDToken
	}

	return p, nil
}

// CheckAuthentication verifies the stored ID token against the issuer. An
// absent or invalid token is a normal anonymous state, not an error.
func (p *Provider) CheckAuthentication(ctx context.Context) (session.CheckResult, error) {
	p.mu.Lock()
	rawIDToken := p.rawIDToken
	p.mu.Unlock()

	if rawIDToken == "" {
		return session.CheckResult{}, nil
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		p.logger.Debug().Err(err).Msg("stored id token failed verification")
		return session.CheckResult{}, nil
	}

	claims := make(map[string]any)
	if err := idToken.Claims(&claims); err != nil {
		return session.CheckResult{}, errors.Wrap(err, "[CheckAuthentication] extract claims")
	}
	return session.CheckResult{IsAuthenticated: true, UserClaims: claims}, nil
}

// AuthenticationFlags returns the continuous authentication stream. The
// returned channel closes when ctx is cancelled.
func (p *Provider) AuthenticationFlags(ctx context.Context) <-chan bool {
	out := make(chan bool)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case v := <-p.flags:
				select {
				case out <- v:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// AccessToken returns the current access token, refreshing through the
// token endpoint when expired and a refresh token is available.
func (p *Provider) AccessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	token := p.token
	p.mu.Unlock()

	if token == nil || token.AccessToken == "" {
		return "", errors.New("[AccessToken] no token available")
	}
	if !p.tokenExpired(token) {
		return token.AccessToken, nil
	}
	if token.RefreshToken == "" {
		return "", errors.New("[AccessToken] token expired and no refresh token")
	}

	refreshed, err := p.oauthConfig.TokenSource(ctx, token).Token()
	if err != nil {
		return "", errors.Wrap(err, "[AccessToken] refresh")
	}
	p.storeToken(refreshed, refreshed.Extra("id_token"))
	return refreshed.AccessToken, nil
}

// IDToken returns the raw ID token.
func (p *Provider) IDToken(_ context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rawIDToken == "" {
		return "", errors.New("[IDToken] no id token available")
	}
	return p.rawIDToken, nil
}

// Authorize builds the authorization-code URL with fresh state and nonce and
// hands it to the redirect callback.
func (p *Provider) Authorize() {
	state := uuid.New().String()
	nonce := uuid.New().String()

	p.mu.Lock()
	p.pendingState = state
	p.pendingNonce = nonce
	p.mu.Unlock()

	p.redirect(p.oauthConfig.AuthCodeURL(state, oidc.Nonce(nonce)))
}

// HandleCallback exchanges the authorization code, verifies the ID token and
// nonce, persists the tokens, and reports authenticated on the flag stream.
func (p *Provider) HandleCallback(ctx context.Context, code, state string) error {
	p.mu.Lock()
	pendingState, pendingNonce := p.pendingState, p.pendingNonce
	p.pendingState, p.pendingNonce = "", ""
	p.mu.Unlock()

	if state == "" || state != pendingState {
		return errors.New("[HandleCallback] state mismatch")
	}

	token, err := p.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return errors.Wrap(err, "[HandleCallback] code exchange")
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return errors.New("[HandleCallback] no id token in response")
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return errors.Wrap(err, "[HandleCallback] id token verification")
	}
	if idToken.Nonce != pendingNonce {
		return errors.New("[HandleCallback] nonce mismatch")
	}

	p.storeToken(token, rawIDToken)
	p.pushFlag(true)
	return nil
}

// Logoff clears all tokens, reports unauthenticated, and returns the
// end-session URL for the user agent to visit.
func (p *Provider) Logoff(_ context.Context) (string, error) {
	p.mu.Lock()
	p.token = nil
	p.rawIDToken = ""
	p.mu.Unlock()

	if err := p.storage.clear(); err != nil {
		p.logger.Warn().Err(err).Msg("failed to clear persisted tokens")
	}
	p.pushFlag(false)

	endSession, err := p.endSessionURL()
	if err != nil {
		return "", errors.Wrap(err, "[Logoff]")
	}
	p.redirect(endSession)
	return endSession, nil
}

func (p *Provider) storeToken(token *oauth2.Token, rawIDToken any) {
	raw, _ := rawIDToken.(string)

	p.mu.Lock()
	p.token = token
	if raw != "" {
		p.rawIDToken = raw
	}
	persisted := p.rawIDToken
	p.mu.Unlock()

	if err := p.storage.save(token, persisted); err != nil {
		p.logger.Warn().Err(err).Msg("failed to persist tokens")
	}
}

func (p *Provider) pushFlag(isAuthenticated bool) {
	select {
	case p.flags <- isAuthenticated:
	default:
		p.logger.Warn().Msg("authentication flag stream full, dropping update")
	}
}

// tokenExpired checks the oauth2 expiry when set, otherwise falls back to
// the access token's exp claim (unverified parse; the backend verifies
// signatures, not us).
func (p *Provider) tokenExpired(token *oauth2.Token) bool {
	now := p.nowTime()
	if !token.Expiry.IsZero() {
		return now.After(token.Expiry)
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token.AccessToken, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return now.After(exp.Time)
}

// endSessionURL builds the issuer's logout URL with the client_id and
// logout_uri parameters some issuers require.
func (p *Provider) endSessionURL() (string, error) {
	var claims struct {
		EndSessionEndpoint string `json:"end_session_endpoint"`
	}
	if err := p.oidcProvider.Claims(&claims); err != nil {
		return "", errors.Wrap(err, "[endSessionURL] provider claims")
	}
	if claims.EndSessionEndpoint == "" {
		return "", errors.New("[endSessionURL] issuer has no end_session_endpoint")
	}

	endSession, err := url.Parse(claims.EndSessionEndpoint)
	if err != nil {
		return "", errors.Wrap(err, "[endSessionURL] parse endpoint")
	}
	query := endSession.Query()
	query.Set("client_id", p.cfg.ClientID)
	if p.cfg.PostLogoutRedirectURL != "" {
		query.Set("logout_uri", p.cfg.PostLogoutRedirectURL)
	}
	endSession.RawQuery = query.Encode()
	return endSession.String(), nil
}
