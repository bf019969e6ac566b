// Copyright (C) 2024 the lets-party maintainers
// See root-dir/LICENSE for more information

package jsondb

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/quixsi/rsvp/internal/db"
	"github.com/quixsi/rsvp/internal/metrics"
	"github.com/quixsi/rsvp/internal/model"
)

// UserStore keeps the signed-in users in a JSON file.
type UserStore struct {
	filename string
	logger   *slog.Logger
	now      func() time.Time
	mu       sync.RWMutex
}

func NewUserStore(filename string) (*UserStore, error) {
	if err := initCollection(filename); err != nil {
		return nil, err
	}
	return &UserStore{
		filename: filename,
		logger:   slog.Default().WithGroup("jsondb"),
		now:      time.Now,
	}, nil
}

func (u *UserStore) LoadUsers(ctx context.Context) []*model.User {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "LoadUsers")
	defer span.End()

	span.AddEvent("RLock")
	u.mu.RLock()
	defer span.AddEvent("RUnlock")
	defer u.mu.RUnlock()

	return u.load(ctx)
}

func (u *UserStore) SaveUsers(ctx context.Context, users []*model.User) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "SaveUsers")
	defer span.End()

	span.AddEvent("Lock")
	u.mu.Lock()
	defer span.AddEvent("Unlock")
	defer u.mu.Unlock()

	return u.save(ctx, users)
}

func (u *UserStore) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "GetUserByID")
	defer span.End()

	span.AddEvent("RLock")
	u.mu.RLock()
	defer span.AddEvent("RUnlock")
	defer u.mu.RUnlock()

	user := model.FindUserByID(u.load(ctx), id)
	if user == nil {
		span.RecordError(db.ErrUserNotFound)
		return nil, db.ErrUserNotFound
	}
	return user, nil
}

func (u *UserStore) FindOrCreateUser(ctx context.Context, profile *model.Profile) (*model.User, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "FindOrCreateUser")
	defer span.End()

	if profile == nil || profile.ID == "" {
		span.RecordError(db.ErrInvalidProfile)
		return nil, db.ErrInvalidProfile
	}

	span.AddEvent("Lock")
	u.mu.Lock()
	defer span.AddEvent("Unlock")
	defer u.mu.Unlock()

	users := u.load(ctx)
	if user := model.FindUserByGoogleID(users, profile.ID); user != nil {
		span.AddEvent("user exists")
		return user, nil
	}

	span.AddEvent("create new user")
	user := model.NewUser(profile, u.now())
	user.ID = model.FreeUserID(users, user.ID)
	if err := u.save(ctx, append(users, user)); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *UserStore) load(ctx context.Context) []*model.User {
	span := trace.SpanFromContext(ctx)

	users, err := readCollection[*model.User](u.filename)
	if err != nil {
		span.RecordError(err)
		u.logger.WarnContext(ctx, "could not read users, serving empty collection",
			"file", u.filename, "error", err)
		metrics.StorageReadFailures.WithLabelValues("users").Inc()
		return []*model.User{}
	}

	res := users[:0]
	for _, user := range users {
		if user != nil {
			res = append(res, user)
		}
	}
	return res
}

func (u *UserStore) save(ctx context.Context, users []*model.User) error {
	var span trace.Span
	_, span = tracer.Start(ctx, "SaveToFile")
	defer span.End()

	if err := writeCollection(u.filename, users); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}
