// Copyright (C) 2024 the lets-party maintainers
// See root-dir/LICENSE for more information

package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/quixsi/rsvp/internal/auth"
	"github.com/quixsi/rsvp/internal/db"
	"github.com/quixsi/rsvp/internal/metrics"
	"github.com/quixsi/rsvp/internal/model"
	"github.com/quixsi/rsvp/internal/session"
)

const DefaultCookieName = "party.sid"

type Config struct {
	Secret       []byte
	TTL          time.Duration
	CookieName   string
	SecureCookie bool
}

// Manager binds browser sessions to users signed in through the OAuth
// provider. A nil provider keeps the manager running without login support.
type Manager struct {
	sessions   session.Store
	users      db.UserStore
	provider   auth.Provider
	codec      *session.Codec
	ttl        time.Duration
	cookieName string
	secure     bool
	logger     *slog.Logger
	now        func() time.Time
}

func NewManager(cfg Config, sessions session.Store, users db.UserStore, provider auth.Provider) *Manager {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = session.DefaultTTL
	}
	cookieName := cfg.CookieName
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &Manager{
		sessions:   sessions,
		users:      users,
		provider:   provider,
		codec:      session.NewCodec(cfg.Secret, ttl),
		ttl:        ttl,
		cookieName: cookieName,
		secure:     cfg.SecureCookie,
		logger:     slog.Default().WithGroup("identity"),
		now:        time.Now,
	}
}

func (m *Manager) ProviderEnabled() bool {
	return m.provider != nil
}

// BeginLogin moves the browser into the authenticating state and returns the
// provider url to redirect to.
func (m *Manager) BeginLogin(w http.ResponseWriter, r *http.Request) (string, error) {
	ctx, span := tracer.Start(r.Context(), "Manager.BeginLogin")
	defer span.End()

	if !m.ProviderEnabled() {
		span.RecordError(ErrProviderDisabled)
		return "", ErrProviderDisabled
	}

	if old, err := m.lookup(ctx, r); err == nil {
		span.AddEvent("drop previous session")
		m.destroy(ctx, old)
	}

	s := session.New(m.now())
	s.OAuthState = uuid.NewString()
	if err := m.issue(ctx, w, s); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return m.provider.AuthCodeURL(s.OAuthState), nil
}

// CompleteLogin handles the provider callback. On success the pre-login
// session is replaced by a new one bound to the user. On any failure the
// browser ends up without a session.
func (m *Manager) CompleteLogin(w http.ResponseWriter, r *http.Request) (*model.User, error) {
	ctx, span := tracer.Start(r.Context(), "Manager.CompleteLogin")
	defer span.End()

	user, err := m.completeLogin(ctx, w, r)
	if err != nil {
		metrics.Logins.WithLabelValues(metrics.LoginFailed).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		m.clearCookie(w)
		return nil, err
	}
	metrics.Logins.WithLabelValues(metrics.LoginSucceeded).Inc()
	span.SetAttributes(attribute.Int64("user.id", user.ID))
	return user, nil
}

func (m *Manager) completeLogin(ctx context.Context, w http.ResponseWriter, r *http.Request) (*model.User, error) {
	if !m.ProviderEnabled() {
		return nil, ErrProviderDisabled
	}

	pending, err := m.lookup(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStateMismatch, err)
	}
	// the pending session is single use
	m.destroy(ctx, pending)

	q := r.URL.Query()
	if reason := q.Get("error"); reason != "" {
		return nil, fmt.Errorf("%w: %s", ErrProviderRejected, reason)
	}
	if pending.State() != session.StateAuthenticating || q.Get("state") != pending.OAuthState {
		return nil, ErrStateMismatch
	}

	profile, err := m.provider.Exchange(ctx, q.Get("code"))
	if err != nil {
		return nil, err
	}

	user, err := m.users.FindOrCreateUser(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("find or create user: %w", err)
	}

	s := session.New(m.now())
	s.UserID = user.ID
	if err := m.issue(ctx, w, s); err != nil {
		return nil, err
	}
	m.logger.InfoContext(ctx, "user signed in", "user-id", user.ID)
	return user, nil
}

// CurrentUser returns the user bound to the request session. Requests
// without a valid, bound session yield ErrUnauthorized.
func (m *Manager) CurrentUser(r *http.Request) (*model.User, error) {
	ctx, span := tracer.Start(r.Context(), "Manager.CurrentUser")
	defer span.End()

	s, err := m.lookup(ctx, r)
	if err != nil {
		return nil, err
	}
	if s.State() != session.StateAuthenticated {
		return nil, ErrUnauthorized
	}
	user, err := m.users.GetUserByID(ctx, s.UserID)
	if errors.Is(err, db.ErrUserNotFound) {
		span.AddEvent("bound user vanished")
		return nil, ErrUnauthorized
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return user, nil
}

func (m *Manager) IsAuthenticated(r *http.Request) bool {
	_, err := m.CurrentUser(r)
	return err == nil
}

// Logout terminates the request session.
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) error {
	ctx, span := tracer.Start(r.Context(), "Manager.Logout")
	defer span.End()

	s, err := m.lookup(ctx, r)
	if err != nil {
		return err
	}
	if err := m.sessions.Delete(ctx, s.Token); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("delete session: %w", err)
	}
	m.clearCookie(w)
	return nil
}

// lookup resolves the session referenced by the request cookie. Missing,
// forged and expired sessions are reported as ErrUnauthorized.
func (m *Manager) lookup(ctx context.Context, r *http.Request) (*session.Session, error) {
	span := trace.SpanFromContext(ctx)

	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return nil, ErrUnauthorized
	}
	token, err := m.codec.Decode(cookie.Value)
	if err != nil {
		span.AddEvent("invalid cookie")
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	s, err := m.sessions.Get(ctx, token)
	if errors.Is(err, session.ErrNotFound) {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if s.Expired(m.now(), m.ttl) {
		span.AddEvent("session expired")
		m.destroy(ctx, s)
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, session.ErrExpired)
	}
	return s, nil
}

func (m *Manager) issue(ctx context.Context, w http.ResponseWriter, s *session.Session) error {
	value, err := m.codec.Encode(s)
	if err != nil {
		return err
	}
	if err := m.sessions.Save(ctx, s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    value,
		Path:     "/",
		Expires:  s.ExpiresAt(m.ttl),
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (m *Manager) destroy(ctx context.Context, s *session.Session) {
	if err := m.sessions.Delete(ctx, s.Token); err != nil {
		m.logger.WarnContext(ctx, "could not delete session", "error", err)
	}
}

func (m *Manager) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
