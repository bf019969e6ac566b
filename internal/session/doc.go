// Copyright (C) 2024 the lets-party maintainers
// See root-dir/LICENSE for more information

// Package session keeps server side browser sessions. A session is looked up
// by a random token that travels inside a signed cookie; the session itself
// only carries the bound user id and the pending OAuth state.
package session
