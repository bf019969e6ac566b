// Copyright (C) 2024 the lets-party maintainers
// See root-dir/LICENSE for more information

package db

import (
	"context"

	"github.com/quixsi/rsvp/internal/model"
)

// UserStore persists the user collection with the same fail-open read policy
// as GuestStore.
type UserStore interface {
	LoadUsers(context.Context) []*model.User
	SaveUsers(context.Context, []*model.User) error
	GetUserByID(context.Context, int64) (*model.User, error)
	// FindOrCreateUser returns the user for profile.ID and creates it on
	// first sign-in. Existing users are never modified.
	FindOrCreateUser(context.Context, *model.Profile) (*model.User, error)
}
