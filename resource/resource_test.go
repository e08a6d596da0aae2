package resource_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dasbd72/leetcode-progress/resource"
	"github.com/dasbd72/leetcode-progress/session"
	"github.com/dasbd72/leetcode-progress/session/providerfake"
)

type resourceFixture struct {
	provider *providerfake.FakeAuthProvider
	store    *session.Store
	ctx      context.Context
}

func setupResourceFixture(t *testing.T) *resourceFixture {
	t.Helper()

	provider := providerfake.NewFakeAuthProvider()
	store, err := session.NewStore(provider)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return &resourceFixture{
		provider: provider,
		store:    store,
		ctx:      ctx,
	}
}

func (f *resourceFixture) authenticate(token string) {
	f.provider.CheckResult = session.CheckResult{IsAuthenticated: true}
	f.provider.AccessTokenValue = token
	f.provider.IDTokenValue = "id-token"
	f.store.Initialize(f.ctx)
}

func TestFetchNeverFiresWhileAnonymous(t *testing.T) {
	f := setupResourceFixture(t)
	f.store.Initialize(f.ctx)

	var calls atomic.Int64
	res, err := resource.New("user-settings", "default",
		func(_ context.Context, _ string) (string, error) {
			calls.Add(1)
			return "fetched", nil
		})
	require.NoError(t, err)

	res.Bind(f.ctx, f.store)

	// The session settles anonymous; the pipeline must stay idle.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int64(0), calls.Load())
	assert.Equal(t, "default", res.Value())
	assert.False(t, res.IsLoading())
}

func TestFetchWaitsForAccessToken(t *testing.T) {
	f := setupResourceFixture(t)

	var mu sync.Mutex
	var tokens []string
	res, err := resource.New("user-settings", "default",
		func(_ context.Context, token string) (string, error) {
			mu.Lock()
			tokens = append(tokens, token)
			mu.Unlock()
			return "fetched", nil
		},
		resource.WithFetchOnce[string]())
	require.NoError(t, err)

	res.Bind(f.ctx, f.store)

	// The flag flips true before the token resolves; the fetch fires exactly
	// once, and only with a non-empty token.
	f.authenticate("token-1")

	require.Eventually(t, func() bool {
		return res.Value() == "fetched"
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, tokens, 1)
	assert.Equal(t, "token-1", tokens[0])
	assert.False(t, res.IsLoading())
}

func TestFetchFailureFallsBackToDefault(t *testing.T) {
	f := setupResourceFixture(t)

	res, err := resource.New("following-list", []string{},
		func(_ context.Context, _ string) ([]string, error) {
			return nil, assert.AnError
		},
		resource.WithFetchOnce[[]string]())
	require.NoError(t, err)

	res.Bind(f.ctx, f.store)
	f.authenticate("token-1")

	require.Eventually(t, func() bool {
		return !res.IsLoading() && res.Value() != nil
	}, 2*time.Second, 10*time.Millisecond)
	assert.Empty(t, res.Value())
}

func TestStaleCompletionIsDiscarded(t *testing.T) {
	f := setupResourceFixture(t)
	f.authenticate("token-1")

	require.Eventually(t, func() bool {
		return f.store.Current().AccessToken == "token-1"
	}, 2*time.Second, 10*time.Millisecond)

	release := make(chan struct{})
	var calls atomic.Int64
	res, err := resource.New("progress", "default",
		func(_ context.Context, _ string) (string, error) {
			if calls.Add(1) == 1 {
				// First fetch is slow and completes after the second.
				<-release
				return "old", nil
			}
			return "new", nil
		})
	require.NoError(t, err)

	first := make(chan struct{})
	go func() {
		defer close(first)
		assert.NoError(t, res.Refresh(f.ctx, f.store))
	}()

	require.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, time.Millisecond)
	require.NoError(t, res.Refresh(f.ctx, f.store))
	assert.Equal(t, "new", res.Value())

	close(release)
	<-first

	// The slow first completion carries a stale request id and is dropped.
	assert.Equal(t, "new", res.Value())
	assert.False(t, res.IsLoading())
}

func TestSubmitKeepsOptimisticValueOnFailure(t *testing.T) {
	f := setupResourceFixture(t)
	f.authenticate("token-1")

	require.Eventually(t, func() bool {
		return f.store.Current().AccessToken == "token-1"
	}, 2*time.Second, 10*time.Millisecond)

	res, err := resource.New("user-settings", "default",
		func(_ context.Context, _ string) (string, error) { return "remote", nil },
		resource.WithUpdate[string](
			func(_ context.Context, _ string, _ string) (string, error) {
				return "", assert.AnError
			}))
	require.NoError(t, err)

	value, err := res.Submit(f.ctx, f.store, "submitted")
	require.Error(t, err)
	assert.Equal(t, "submitted", value)
	assert.Equal(t, "submitted", res.Value())
	assert.False(t, res.IsLoading())
}

func TestSubmitRequiresAuthentication(t *testing.T) {
	f := setupResourceFixture(t)

	res, err := resource.New("user-settings", "default",
		func(_ context.Context, _ string) (string, error) { return "remote", nil },
		resource.WithUpdate[string](
			func(_ context.Context, _ string, v string) (string, error) {
				return v, nil
			}))
	require.NoError(t, err)

	_, err = res.Submit(f.ctx, f.store, "submitted")
	require.Error(t, err)
}

func TestSubmitRoundTripIsIdempotent(t *testing.T) {
	f := setupResourceFixture(t)
	f.authenticate("token-1")

	require.Eventually(t, func() bool {
		return f.store.Current().AccessToken == "token-1"
	}, 2*time.Second, 10*time.Millisecond)

	var stored atomic.Value
	stored.Store("initial")
	res, err := resource.New("user-settings", "",
		func(_ context.Context, _ string) (string, error) {
			return stored.Load().(string), nil
		},
		resource.WithUpdate[string](
			func(_ context.Context, _ string, v string) (string, error) {
				stored.Store(v)
				return v, nil
			}))
	require.NoError(t, err)

	// Submitting unchanged settings and reloading yields equal values.
	before, err := res.Submit(f.ctx, f.store, "initial")
	require.NoError(t, err)
	require.NoError(t, res.Refresh(f.ctx, f.store))
	assert.Equal(t, before, res.Value())
}

func TestRefreshPicksVariantFromCurrentSnapshot(t *testing.T) {
	f := setupResourceFixture(t)

	var authCalls, anonCalls atomic.Int64
	res, err := resource.New("progress", "default",
		func(_ context.Context, token string) (string, error) {
			authCalls.Add(1)
			return "authenticated:" + token, nil
		},
		resource.WithAnonymousFetch[string](
			func(_ context.Context, _ string) (string, error) {
				anonCalls.Add(1)
				return "anonymous", nil
			}))
	require.NoError(t, err)

	// Anonymous session: the unauthenticated variant runs.
	require.NoError(t, res.Refresh(f.ctx, f.store))
	assert.Equal(t, "anonymous", res.Value())
	assert.Equal(t, int64(0), authCalls.Load())

	// Variant selection is re-evaluated on the next request.
	f.authenticate("token-1")
	require.Eventually(t, func() bool {
		return f.store.Current().AccessToken == "token-1"
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, res.Refresh(f.ctx, f.store))
	assert.Equal(t, "authenticated:token-1", res.Value())
	assert.Equal(t, int64(1), anonCalls.Load())
}
