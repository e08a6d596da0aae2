package session

import "context"

// CheckResult is the outcome of a one-shot authentication check.
type CheckResult struct {
	IsAuthenticated bool
	UserClaims      map[string]any
}

// AuthProvider abstracts the OIDC capability the store depends on. The real
// implementation lives in the oidcauth package; tests substitute a fake.
type AuthProvider interface {
	// CheckAuthentication performs a one-shot authentication check and returns
	// the current authentication status and user claims.
	CheckAuthentication(ctx context.Context) (CheckResult, error)

	// AuthenticationFlags returns a continuous stream of authentication-status
	// updates. The channel is closed when ctx is cancelled.
	AuthenticationFlags(ctx context.Context) <-chan bool

	// AccessToken returns the current access token, refreshing it if needed.
	AccessToken(ctx context.Context) (string, error)

	// IDToken returns the current raw ID token.
	IDToken(ctx context.Context) (string, error)

	// Authorize starts the authorization redirect. It has no return value the
	// store consumes; the resulting authentication change arrives through
	// AuthenticationFlags.
	Authorize()

	// Logoff ends the session with the provider and returns a description of
	// the result (e.g. the end-session redirect URL).
	Logoff(ctx context.Context) (string, error)
}
