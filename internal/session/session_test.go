// Copyright (C) 2024 the lets-party maintainers
// See root-dir/LICENSE for more information

package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionState(t *testing.T) {
	tt := []struct {
		name    string
		session Session
		want    State
	}{
		{name: "fresh", session: Session{Token: "t"}, want: StateAnonymous},
		{name: "login started", session: Session{Token: "t", OAuthState: "s"}, want: StateAuthenticating},
		{name: "bound", session: Session{Token: "t", UserID: 7}, want: StateAuthenticated},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.session.State())
		})
	}
}

func TestSessionExpired(t *testing.T) {
	issued := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := &Session{Token: "t", IssuedAt: issued}

	assert.False(t, s.Expired(issued.Add(DefaultTTL-time.Second), DefaultTTL))
	assert.True(t, s.Expired(issued.Add(DefaultTTL), DefaultTTL))
}

func TestNewIssuesUniqueTokens(t *testing.T) {
	now := time.Now()
	a, b := New(now), New(now)
	assert.NotEmpty(t, a.Token)
	assert.NotEqual(t, a.Token, b.Token)
	assert.Equal(t, StateAnonymous, a.State())
}

func testStore(t *testing.T, store Store) {
	ctx := context.Background()
	s := New(time.Now())
	s.UserID = 42

	_, err := store.Get(ctx, s.Token)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save(ctx, s))
	got, err := store.Get(ctx, s.Token)
	require.NoError(t, err)
	assert.Equal(t, s.Token, got.Token)
	assert.Equal(t, int64(42), got.UserID)
	assert.True(t, s.IssuedAt.Equal(got.IssuedAt))

	require.NoError(t, store.Delete(ctx, s.Token))
	_, err = store.Get(ctx, s.Token)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Delete(ctx, "unknown"))
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore(DefaultTTL))
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore(DefaultTTL)
	store.now = func() time.Time { return now }

	s := New(now)
	require.NoError(t, store.Save(ctx, s))

	now = now.Add(DefaultTTL)
	_, err := store.Get(ctx, s.Token)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, store.sessions)
}

func TestMemoryStoreSweepsAbandonedSessions(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore(DefaultTTL)
	store.now = func() time.Time { return now }

	for i := 0; i < 1000; i++ {
		s := New(now)
		s.OAuthState = "pending"
		require.NoError(t, store.Save(ctx, s))
	}
	require.Len(t, store.sessions, 1000)

	now = now.Add(2 * DefaultTTL)
	fresh := New(now)
	require.NoError(t, store.Save(ctx, fresh))

	assert.Len(t, store.sessions, 1)
	got, err := store.Get(ctx, fresh.Token)
	require.NoError(t, err)
	assert.Equal(t, fresh.Token, got.Token)
}

func TestMemoryStoreSaveKeepsLiveSessions(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore(DefaultTTL)
	store.now = func() time.Time { return now }

	old := New(now)
	require.NoError(t, store.Save(ctx, old))

	now = now.Add(DefaultTTL - time.Minute)
	require.NoError(t, store.Save(ctx, New(now)))

	assert.Len(t, store.sessions, 2)
	_, err := store.Get(ctx, old.Token)
	assert.NoError(t, err)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client, DefaultTTL)
	t.Cleanup(func() { _ = store.Close() })

	testStore(t, store)
}

func TestRedisStoreExpiry(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	store := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), DefaultTTL)

	s := New(time.Now().Add(-time.Hour))
	require.NoError(t, store.Save(ctx, s))
	ttl := mr.TTL(redisKeyPrefix + s.Token)
	assert.InDelta(t, (23 * time.Hour).Seconds(), ttl.Seconds(), 5)

	mr.FastForward(23 * time.Hour)
	_, err := store.Get(ctx, s.Token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStoreSkipsExpiredSessions(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	store := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), DefaultTTL)

	s := New(time.Now().Add(-2 * DefaultTTL))
	require.NoError(t, store.Save(ctx, s))
	assert.False(t, mr.Exists(redisKeyPrefix+s.Token))
}

func TestRedisStoreUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	store := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1}), DefaultTTL)
	mr.Close()

	_, err = store.Get(context.Background(), "token")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
