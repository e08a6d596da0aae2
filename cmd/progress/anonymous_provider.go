package main

import (
	"context"

	"github.com/dasbd72/leetcode-progress/session"
)

// anonymousProvider satisfies session.AuthProvider when no OIDC issuer is
// configured. Every check reports an unauthenticated session.
type anonymousProvider struct{}

var _ session.AuthProvider = anonymousProvider{}

func (anonymousProvider) CheckAuthentication(ctx context.Context) (session.CheckResult, error) {
	return session.CheckResult{IsAuthenticated: false}, nil
}

func (anonymousProvider) AuthenticationFlags(ctx context.Context) <-chan bool {
	flags := make(chan bool)
	go func() {
		<-ctx.Done()
		close(flags)
	}()
	return flags
}

func (anonymousProvider) AccessToken(ctx context.Context) (string, error) {
	return "", nil
}

func (anonymousProvider) IDToken(ctx context.Context) (string, error) {
	return "", nil
}

func (anonymousProvider) Authorize() {}

func (anonymousProvider) Logoff(ctx context.Context) (string, error) {
	return "", nil
}
