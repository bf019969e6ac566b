// Copyright (C) 2024 the lets-party maintainers
// See root-dir/LICENSE for more information

package db

import (
	"context"

	"github.com/quixsi/rsvp/internal/model"
)

// GuestStore persists the guest collection. LoadGuests is fail-open: a
// collection that cannot be read or parsed is reported as empty.
type GuestStore interface {
	LoadGuests(context.Context) []*model.Guest
	SaveGuests(context.Context, []*model.Guest) error
	// CreateGuest appends a guest and persists the collection.
	CreateGuest(context.Context, *model.Guest) error
	// DeleteGuest drops every guest with the given id and persists the
	// collection. A missing id is not an error.
	DeleteGuest(context.Context, int64) error
}
