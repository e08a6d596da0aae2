// Package session maintains the single authoritative authentication snapshot
// for the client and publishes every change, in order, to any number of
// observers.
package session

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Store holds the latest authentication Snapshot and owns its update protocol.
// All mutations go through publish, which serializes them and fans the merged
// snapshot out to every subscription.
type Store struct {
	provider AuthProvider
	logger   zerolog.Logger

	mu      sync.Mutex
	current Snapshot
	subs    map[*Subscription]struct{}

	initOnce sync.Once
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for swallowed provider failures and
// lifecycle events.
func WithLogger(logger zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a Store bound to the given AuthProvider. The store starts
// in the loading state; call Initialize to begin tracking the provider.
func NewStore(provider AuthProvider, options ...StoreOption) (*Store, error) {
	if provider == nil {
		return nil, errors.New("[NewStore] provider is required")
	}

	store := &Store{
		provider: provider,
		logger:   zerolog.Nop(),
		current:  DefaultSnapshot,
		subs:     make(map[*Subscription]struct{}),
	}
	for _, opt := range options {
		opt(store)
	}
	return store, nil
}

// Initialize subscribes to the provider's continuous authentication-flag
// stream and triggers one authentication check. It is idempotent; only the
// first call has any effect. Both subscriptions run until ctx is cancelled.
func (s *Store) Initialize(ctx context.Context) {
	s.initOnce.Do(func() {
		go s.consumeFlags(ctx)
		go s.checkAuthentication(ctx)
	})
}

// Current returns the latest snapshot synchronously.
func (s *Store) Current() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Observe returns a subscription that immediately delivers the current
// snapshot followed by every subsequent change. Callers must Close the
// subscription when done.
func (s *Store) Observe() *Subscription {
	sub := newSubscription(s.unsubscribe)

	s.mu.Lock()
	sub.enqueue(s.current)
	s.subs[sub] = struct{}{}
	s.mu.Unlock()

	return sub
}

// Login delegates to the provider's authorization redirect. The snapshot is
// not mutated here; the resulting authentication change arrives through the
// flag stream.
func (s *Store) Login() {
	s.provider.Authorize()
}

// Logout delegates to the provider's logoff. Failures are logged and
// swallowed; the snapshot is cleared by the subsequent flag update, not here.
func (s *Store) Logout(ctx context.Context) {
	result, err := s.provider.Logoff(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("logoff failed")
		return
	}
	s.logger.Info().Str("result", result).Msg("logged off")
}

func (s *Store) unsubscribe(sub *Subscription) {
	s.mu.Lock()
	delete(s.subs, sub)
	s.mu.Unlock()
}

// publish applies mutate to the current snapshot under the store lock and
// enqueues the merged copy on every subscription, preserving publish order.
func (s *Store) publish(mutate func(*Snapshot)) {
	s.mu.Lock()
	mutate(&s.current)
	// Tokens never outlive authentication.
	if !s.current.IsAuthenticated {
		s.current.AccessToken = ""
		s.current.IDToken = ""
	}
	snap := s.current
	for sub := range s.subs {
		sub.enqueue(snap)
	}
	s.mu.Unlock()
}

func (s *Store) consumeFlags(ctx context.Context) {
	flags := s.provider.AuthenticationFlags(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case isAuthenticated, ok := <-flags:
			if !ok {
				return
			}
			s.publish(func(snap *Snapshot) {
				snap.IsAuthenticated = isAuthenticated
				if !isAuthenticated {
					snap.UserClaims = nil
				}
				snap.IsLoading = false
			})
		}
	}
}

// checkAuthentication runs the one-shot check and then merges the access and
// ID tokens into the snapshot as each arrives, in that order. Any failure is
// logged and leaves the snapshot in its last-known-good state with loading
// cleared; nothing is ever thrown to observers.
func (s *Store) checkAuthentication(ctx context.Context) {
	result, err := s.provider.CheckAuthentication(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("authentication check failed")
		s.publish(func(snap *Snapshot) {
			snap.IsLoading = false
		})
		return
	}

	s.publish(func(snap *Snapshot) {
		snap.IsAuthenticated = result.IsAuthenticated
		snap.UserClaims = result.UserClaims
		snap.IsLoading = false
	})

	if !result.IsAuthenticated {
		return
	}

	accessToken, err := s.provider.AccessToken(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("access token retrieval failed")
		return
	}
	s.publish(func(snap *Snapshot) {
		snap.AccessToken = accessToken
	})

	idToken, err := s.provider.IDToken(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("id token retrieval failed")
		return
	}
	s.publish(func(snap *Snapshot) {
		snap.IDToken = idToken
	})
}
