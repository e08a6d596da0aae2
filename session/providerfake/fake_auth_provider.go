// Package providerfake provides a controllable in-memory AuthProvider for
// tests.
package providerfake

import (
	"context"
	"sync"

	"github.com/dasbd72/leetcode-progress/session"
)

// FakeAuthProvider implements session.AuthProvider with scriptable results.
// Tests drive the continuous flag stream through PushFlag and inspect the
// recorded Authorize/Logoff calls.
type FakeAuthProvider struct {
	mu sync.Mutex

	CheckResult session.CheckResult
	CheckErr    error

	AccessTokenValue string
	AccessTokenErr   error
	IDTokenValue     string
	IDTokenErr       error

	LogoffResult string
	LogoffErr    error

	AuthorizeCalls int
	LogoffCalls    int

	flags chan bool

	// checkReleased, when set, delays CheckAuthentication until the channel
	// is closed. Lets tests order the check against flag updates.
	checkReleased chan struct{}
}

var _ session.AuthProvider = (*FakeAuthProvider)(nil)

// NewFakeAuthProvider creates a fake provider with an anonymous check result.
func NewFakeAuthProvider() *FakeAuthProvider {
	return &FakeAuthProvider{
		flags: make(chan bool, 16),
	}
}

// HoldCheck makes CheckAuthentication block until ReleaseCheck is called.
func (f *FakeAuthProvider) HoldCheck() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkReleased = make(chan struct{})
}

// ReleaseCheck unblocks a held CheckAuthentication.
func (f *FakeAuthProvider) ReleaseCheck() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.checkReleased != nil {
		close(f.checkReleased)
		f.checkReleased = nil
	}
}

// PushFlag emits a value on the continuous authentication-flag stream.
func (f *FakeAuthProvider) PushFlag(isAuthenticated bool) {
	f.flags <- isAuthenticated
}

// CheckAuthentication implements session.AuthProvider.
func (f *FakeAuthProvider) CheckAuthentication(ctx context.Context) (session.CheckResult, error) {
	f.mu.Lock()
	released := f.checkReleased
	f.mu.Unlock()

	if released != nil {
		select {
		case <-released:
		case <-ctx.Done():
			return session.CheckResult{}, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.CheckResult, f.CheckErr
}

// AuthenticationFlags implements session.AuthProvider.
func (f *FakeAuthProvider) AuthenticationFlags(ctx context.Context) <-chan bool {
	out := make(chan bool)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case v := <-f.flags:
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

// AccessToken implements session.AuthProvider.
func (f *FakeAuthProvider) AccessToken(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.AccessTokenValue, f.AccessTokenErr
}

// IDToken implements session.AuthProvider.
func (f *FakeAuthProvider) IDToken(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.IDTokenValue, f.IDTokenErr
}

// Authorize implements session.AuthProvider.
func (f *FakeAuthProvider) Authorize() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.AuthorizeCalls++
}

// Logoff implements session.AuthProvider.
func (f *FakeAuthProvider) Logoff(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LogoffCalls++
	return f.LogoffResult, f.LogoffErr
}
