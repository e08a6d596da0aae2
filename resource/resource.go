// Package resource implements the dependent-resource fetch pipeline: data
// whose retrieval must wait for a stable authenticated session, expose a
// loading flag, and fall back to a declared default on failure.
package resource

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/dasbd72/leetcode-progress/session"
)

// FetchFunc retrieves the resource value. For authenticated resources the
// access token is attached as a bearer token by the caller-supplied function;
// anonymous functions ignore it.
type FetchFunc[T any] func(ctx context.Context, accessToken string) (T, error)

// UpdateFunc submits a new value and returns the server's view of it.
type UpdateFunc[T any] func(ctx context.Context, accessToken string, value T) (T, error)

// Resource is a reusable pipeline for one piece of session-dependent data.
// The zero value is not usable; construct with New.
type Resource[T any] struct {
	name         string
	def          T
	fetch        FetchFunc[T]
	anonFetch    FetchFunc[T]
	update       UpdateFunc[T]
	requiresAuth bool
	fetchOnce    bool
	logger       zerolog.Logger

	mu      sync.Mutex
	value   T
	loading bool
	// lastReq tags every issued fetch; completions carrying an older id are
	// discarded so a slow early fetch can never overwrite newer data.
	lastReq uint64
	fetched bool

	onChange func(T)
}

// Option configures a Resource.
type Option[T any] func(*Resource[T])

// WithAnonymousFetch supplies an unauthenticated variant of the fetch. Which
// variant runs is decided from the current session snapshot on every request.
// Resources with an anonymous variant do not require authentication to fetch.
func WithAnonymousFetch[T any](fetch FetchFunc[T]) Option[T] {
	return func(r *Resource[T]) {
		r.anonFetch = fetch
		r.requiresAuth = false
	}
}

// WithUpdate supplies the write function used by Submit.
func WithUpdate[T any](update UpdateFunc[T]) Option[T] {
	return func(r *Resource[T]) {
		r.update = update
	}
}

// WithFetchOnce limits the pipeline to the first qualifying snapshot instead
// of re-fetching on every transition to authenticated.
func WithFetchOnce[T any]() Option[T] {
	return func(r *Resource[T]) {
		r.fetchOnce = true
	}
}

// WithOnChange registers a callback invoked with every applied value.
func WithOnChange[T any](onChange func(T)) Option[T] {
	return func(r *Resource[T]) {
		r.onChange = onChange
	}
}

// WithResourceLogger sets the logger for swallowed fetch failures.
func WithResourceLogger[T any](logger zerolog.Logger) Option[T] {
	return func(r *Resource[T]) {
		r.logger = logger
	}
}

// New creates a resource holding def until a fetch succeeds.
func New[T any](name string, def T, fetch FetchFunc[T], options ...Option[T]) (*Resource[T], error) {
	if name == "" {
		return nil, errors.New("[resource.New] name is required")
	}
	if fetch == nil {
		return nil, errors.New("[resource.New] fetch is required")
	}

	r := &Resource[T]{
		name:         name,
		def:          def,
		fetch:        fetch,
		requiresAuth: true,
		logger:       zerolog.Nop(),
		value:        def,
	}
	for _, opt := range options {
		opt(r)
	}
	return r, nil
}

// Value returns the latest applied value.
func (r *Resource[T]) Value() T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.value
}

// IsLoading reports whether a fetch is in flight.
func (r *Resource[T]) IsLoading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loading
}

// Default returns the declared default value.
func (r *Resource[T]) Default() T {
	return r.def
}

// Bind subscribes the pipeline to the store. For authenticated resources it
// fetches on each snapshot where the session is authenticated and the access
// token is present; token retrieval lags the authentication flag, so the
// pipeline stays idle until both hold simultaneously. Bind returns after the
// subscription is established; fetching continues until ctx is cancelled.
func (r *Resource[T]) Bind(ctx context.Context, store *session.Store) {
	sub := store.Observe()
	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case snap, ok := <-sub.Snapshots():
				if !ok {
					return
				}
				if !snap.IsAuthenticated || snap.AccessToken == "" {
					continue
				}
				r.mu.Lock()
				if r.fetchOnce && r.fetched {
					r.mu.Unlock()
					continue
				}
				r.fetched = true
				r.mu.Unlock()

				go r.runFetch(ctx, r.fetch, snap.AccessToken)
			}
		}
	}()
}

// Refresh performs one fetch immediately, choosing the authenticated or
// anonymous variant from the store's current snapshot. It blocks until the
// fetch completes and reports whether the result was applied.
func (r *Resource[T]) Refresh(ctx context.Context, store *session.Store) error {
	snap := store.Current()

	fetch := r.anonFetch
	token := ""
	if snap.IsAuthenticated && snap.AccessToken != "" {
		fetch = r.fetch
		token = snap.AccessToken
	}
	if fetch == nil {
		if r.requiresAuth {
			return errors.Errorf("[Refresh] resource %q requires an authenticated session", r.name)
		}
		fetch = r.fetch
	}

	r.runFetch(ctx, fetch, token)
	return nil
}

// Submit sends value through the update function. On failure the error is
// logged, the locally submitted value is kept (optimistic update, no rollback
// to the server's last known state), and the loading flag is cleared.
func (r *Resource[T]) Submit(ctx context.Context, store *session.Store, value T) (T, error) {
	if r.update == nil {
		return r.def, errors.Errorf("[Submit] resource %q has no update function", r.name)
	}
	snap := store.Current()
	if !snap.IsAuthenticated || snap.AccessToken == "" {
		return r.def, errors.Errorf("[Submit] resource %q requires an authenticated session", r.name)
	}

	r.setLoading(true)
	defer r.setLoading(false)

	updated, err := r.update(ctx, snap.AccessToken, value)
	if err != nil {
		r.logger.Error().Err(err).Str("resource", r.name).Msg("update failed")
		r.apply(value)
		return value, errors.Wrapf(err, "[Submit] update %q failed", r.name)
	}
	r.apply(updated)
	return updated, nil
}

func (r *Resource[T]) runFetch(ctx context.Context, fetch FetchFunc[T], token string) {
	r.mu.Lock()
	r.lastReq++
	req := r.lastReq
	r.loading = true
	r.mu.Unlock()

	value, err := fetch(ctx, token)

	r.mu.Lock()
	stale := req < r.lastReq
	// Loading always clears on completion, success or failure, so consumers
	// never hang on a stuck flag.
	if req == r.lastReq {
		r.loading = false
	}
	r.mu.Unlock()

	if stale {
		r.logger.Debug().Str("resource", r.name).Msg("discarding stale fetch completion")
		return
	}
	if err != nil {
		r.logger.Error().Err(err).Str("resource", r.name).Msg("fetch failed")
		r.apply(r.def)
		return
	}
	r.apply(value)
}

func (r *Resource[T]) apply(value T) {
	r.mu.Lock()
	r.value = value
	onChange := r.onChange
	r.mu.Unlock()

	if onChange != nil {
		onChange(value)
	}
}

func (r *Resource[T]) setLoading(loading bool) {
	r.mu.Lock()
	r.loading = loading
	r.mu.Unlock()
}
