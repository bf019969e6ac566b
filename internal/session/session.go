// Copyright (C) 2024 the lets-party maintainers
// See root-dir/LICENSE for more information

package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is the fixed lifetime of a session, counted from issue.
const DefaultTTL = 24 * time.Hour

type State int

const (
	StateAnonymous State = iota
	StateAuthenticating
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

type Session struct {
	Token      string    `json:"token"`
	UserID     int64     `json:"user_id,omitempty"`
	OAuthState string    `json:"oauth_state,omitempty"`
	IssuedAt   time.Time `json:"issued_at"`
}

// New issues an anonymous session with a fresh random token.
func New(now time.Time) *Session {
	return &Session{
		Token:    uuid.NewString(),
		IssuedAt: now,
	}
}

func (s *Session) State() State {
	switch {
	case s.UserID != 0:
		return StateAuthenticated
	case s.OAuthState != "":
		return StateAuthenticating
	default:
		return StateAnonymous
	}
}

func (s *Session) ExpiresAt(ttl time.Duration) time.Time {
	return s.IssuedAt.Add(ttl)
}

func (s *Session) Expired(now time.Time, ttl time.Duration) bool {
	return !now.Before(s.ExpiresAt(ttl))
}

type Store interface {
	// Get returns ErrNotFound for unknown or expired tokens.
	Get(ctx context.Context, token string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, token string) error
}
