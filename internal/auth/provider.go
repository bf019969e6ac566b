// Copyright (C) 2024 the lets-party maintainers
// See root-dir/LICENSE for more information

package auth

import (
	"context"

	"github.com/quixsi/rsvp/internal/model"
)

// Provider is an external OAuth identity provider using the authorization
// code flow.
type Provider interface {
	// AuthCodeURL is where the browser is sent to sign in. state comes back
	// unchanged on the callback.
	AuthCodeURL(state string) string
	// Exchange trades an authorization code for the account profile.
	Exchange(ctx context.Context, code string) (*model.Profile, error)
}
