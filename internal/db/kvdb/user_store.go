// Copyright (C) 2024 the lets-party maintainers
// See root-dir/LICENSE for more information

package kvdb

import (
	"context"
	"log/slog"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/quixsi/rsvp/internal/db"
	"github.com/quixsi/rsvp/internal/metrics"
	"github.com/quixsi/rsvp/internal/model"
)

const bucketUser = "user_store"

func NewUserStore(db *bolt.DB) (*UserStore, error) {
	return &UserStore{
		db:     db,
		logger: slog.Default().WithGroup("kvdb"),
		now:    time.Now,
	}, createBucket(db, bucketUser)
}

type UserStore struct {
	db     *bolt.DB
	logger *slog.Logger
	now    func() time.Time
}

func (u *UserStore) LoadUsers(ctx context.Context) []*model.User {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "LoadUsers")
	defer span.End()

	var users []*model.User
	span.AddEvent("View bucket")
	err := u.db.View(func(tx *bolt.Tx) error {
		users = u.read(ctx, tx)
		return nil
	})
	if err != nil {
		u.readFailed(ctx, err)
		return []*model.User{}
	}
	return users
}

func (u *UserStore) SaveUsers(ctx context.Context, users []*model.User) error {
	var span trace.Span
	_, span = tracer.Start(ctx, "SaveUsers")
	defer span.End()

	span.AddEvent("Update bucket")
	err := u.db.Update(func(tx *bolt.Tx) error {
		return putCollection(tx, bucketUser, users)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (u *UserStore) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "GetUserByID")
	defer span.End()

	user := model.FindUserByID(u.LoadUsers(ctx), id)
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

	var user *model.User
	span.AddEvent("Update bucket")
	err := u.db.Update(func(tx *bolt.Tx) error {
		users := u.read(ctx, tx)
		if user = model.FindUserByGoogleID(users, profile.ID); user != nil {
			span.AddEvent("user exists")
			return nil
		}
		span.AddEvent("create new user")
		user = model.NewUser(profile, u.now())
		user.ID = model.FreeUserID(users, user.ID)
		return putCollection(tx, bucketUser, append(users, user))
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return user, nil
}

func (u *UserStore) read(ctx context.Context, tx *bolt.Tx) []*model.User {
	users, err := getCollection[*model.User](tx, bucketUser)
	if err != nil {
		u.readFailed(ctx, err)
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

func (u *UserStore) readFailed(ctx context.Context, err error) {
	trace.SpanFromContext(ctx).RecordError(err)
	u.logger.WarnContext(ctx, "could not read users, serving empty collection",
		"bucket", bucketUser, "error", err)
	metrics.StorageReadFailures.WithLabelValues("users").Inc()
}
