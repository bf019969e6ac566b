// Copyright (C) 2024 the lets-party maintainers
// See root-dir/LICENSE for more information

// Package dbtest holds behavioral tests shared by every store backend.
package dbtest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quixsi/rsvp/internal/db"
	"github.com/quixsi/rsvp/internal/model"
)

func TestGuestStore(t *testing.T, newStore func(t *testing.T) db.GuestStore) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("empty store", func(t *testing.T) {
		s := newStore(t)
		guests := s.LoadGuests(ctx)
		require.NotNil(t, guests)
		assert.Empty(t, guests)
	})

	t.Run("create delete scenario", func(t *testing.T) {
		s := newStore(t)

		alice := model.NewGuest("Alice", true, now)
		require.NoError(t, s.CreateGuest(ctx, alice))
		guests := s.LoadGuests(ctx)
		require.Len(t, guests, 1)
		assert.Equal(t, "Alice", guests[0].Name)
		assert.Equal(t, model.Attending, guests[0].Attending)

		bob := model.NewGuest("Bob", false, now.Add(time.Millisecond))
		require.NoError(t, s.CreateGuest(ctx, bob))
		guests = s.LoadGuests(ctx)
		require.Len(t, guests, 2)
		assert.Equal(t, "Alice", guests[0].Name, "insertion order")
		assert.Equal(t, model.NotAttending, guests[1].Attending)

		require.NoError(t, s.DeleteGuest(ctx, alice.ID))
		guests = s.LoadGuests(ctx)
		require.Len(t, guests, 1)
		assert.Equal(t, *bob, *guests[0])
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		s := newStore(t)
		g := model.NewGuest("Carol", true, now)
		require.NoError(t, s.CreateGuest(ctx, g))
		require.NoError(t, s.CreateGuest(ctx, model.NewGuest("Dan", true, now.Add(time.Second))))

		require.NoError(t, s.DeleteGuest(ctx, g.ID))
		first := s.LoadGuests(ctx)
		require.NoError(t, s.DeleteGuest(ctx, g.ID))
		second := s.LoadGuests(ctx)
		assert.Equal(t, first, second)

		require.NoError(t, s.DeleteGuest(ctx, 42))
		assert.Equal(t, first, s.LoadGuests(ctx))
	})

	t.Run("round trip", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.CreateGuest(ctx, model.NewGuest("Eve", true, now)))
		require.NoError(t, s.CreateGuest(ctx, model.NewGuest("Frank", false, now.Add(time.Minute))))

		before := s.LoadGuests(ctx)
		require.NoError(t, s.SaveGuests(ctx, s.LoadGuests(ctx)))
		assert.Equal(t, before, s.LoadGuests(ctx))
	})

	t.Run("concurrent creates keep every record", func(t *testing.T) {
		s := newStore(t)
		const n = 20
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				assert.NoError(t, s.CreateGuest(ctx, model.NewGuest("guest", i%2 == 0, now.Add(time.Duration(i)*time.Millisecond))))
			}(i)
		}
		wg.Wait()
		assert.Len(t, s.LoadGuests(ctx), n)
	})
}

func TestUserStore(t *testing.T, newStore func(t *testing.T) db.UserStore) {
	ctx := context.Background()
	profile := &model.Profile{
		ID:          "google-123",
		DisplayName: "Alice",
		Emails:      []model.ProfileValue{{Value: "alice@example.com"}},
		Photos:      []model.ProfileValue{{Value: "https://example.com/alice.png"}},
	}

	t.Run("find or create is idempotent", func(t *testing.T) {
		s := newStore(t)

		first, err := s.FindOrCreateUser(ctx, profile)
		require.NoError(t, err)
		assert.Equal(t, "google-123", first.GoogleID)
		assert.Equal(t, "alice@example.com", first.Email)

		changed := *profile
		changed.DisplayName = "Alice Renamed"
		second, err := s.FindOrCreateUser(ctx, &changed)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "Alice", second.Name, "existing users are never refreshed")

		assert.Len(t, s.LoadUsers(ctx), 1)
	})

	t.Run("get by id", func(t *testing.T) {
		s := newStore(t)
		u, err := s.FindOrCreateUser(ctx, profile)
		require.NoError(t, err)

		got, err := s.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, *u, *got)

		_, err = s.GetUserByID(ctx, u.ID+1)
		assert.ErrorIs(t, err, db.ErrUserNotFound)
	})

	t.Run("distinct accounts get distinct ids", func(t *testing.T) {
		s := newStore(t)
		seen := map[int64]bool{}
		for _, id := range []string{"g-1", "g-2", "g-3"} {
			u, err := s.FindOrCreateUser(ctx, &model.Profile{ID: id, DisplayName: id})
			require.NoError(t, err)
			assert.False(t, seen[u.ID], "duplicate id %d", u.ID)
			seen[u.ID] = true
		}
		assert.Len(t, s.LoadUsers(ctx), 3)
	})

	t.Run("invalid profile", func(t *testing.T) {
		s := newStore(t)
		_, err := s.FindOrCreateUser(ctx, &model.Profile{DisplayName: "nobody"})
		assert.ErrorIs(t, err, db.ErrInvalidProfile)
		assert.Empty(t, s.LoadUsers(ctx))
	})

	t.Run("round trip", func(t *testing.T) {
		s := newStore(t)
		users := []*model.User{
			{ID: 1, GoogleID: "a", Email: "a@example.com", Name: "A", Picture: "pa"},
			{ID: 2, GoogleID: "b", Name: "B"},
		}
		require.NoError(t, s.SaveUsers(ctx, users))
		require.NoError(t, s.SaveUsers(ctx, s.LoadUsers(ctx)))
		assert.Equal(t, users, s.LoadUsers(ctx))
	})
}
