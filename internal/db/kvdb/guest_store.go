// Copyright (C) 2024 the lets-party maintainers
// See root-dir/LICENSE for more information

package kvdb

import (
	"context"
	"log/slog"

	bolt "go.etcd.io/bbolt"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/quixsi/rsvp/internal/metrics"
	"github.com/quixsi/rsvp/internal/model"
)

const bucketGuest = "guest_store"

func NewGuestStore(db *bolt.DB) (*GuestStore, error) {
	return &GuestStore{
		db:     db,
		logger: slog.Default().WithGroup("kvdb"),
	}, createBucket(db, bucketGuest)
}

type GuestStore struct {
	db     *bolt.DB
	logger *slog.Logger
}

func (g *GuestStore) LoadGuests(ctx context.Context) []*model.Guest {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "LoadGuests")
	defer span.End()

	var guests []*model.Guest
	span.AddEvent("View bucket")
	err := g.db.View(func(tx *bolt.Tx) error {
		guests = g.read(ctx, tx)
		return nil
	})
	if err != nil {
		g.readFailed(ctx, err)
		return []*model.Guest{}
	}
	return guests
}

func (g *GuestStore) SaveGuests(ctx context.Context, guests []*model.Guest) error {
	var span trace.Span
	_, span = tracer.Start(ctx, "SaveGuests")
	defer span.End()

	span.AddEvent("Update bucket")
	return g.update(span, func(tx *bolt.Tx) error {
		return putCollection(tx, bucketGuest, guests)
	})
}

func (g *GuestStore) CreateGuest(ctx context.Context, guest *model.Guest) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "CreateGuest")
	defer span.End()

	span.AddEvent("Update bucket")
	return g.update(span, func(tx *bolt.Tx) error {
		return putCollection(tx, bucketGuest, append(g.read(ctx, tx), guest))
	})
}

func (g *GuestStore) DeleteGuest(ctx context.Context, id int64) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "DeleteGuest")
	defer span.End()

	span.AddEvent("Update bucket")
	return g.update(span, func(tx *bolt.Tx) error {
		return putCollection(tx, bucketGuest, model.RemoveGuest(g.read(ctx, tx), id))
	})
}

func (g *GuestStore) update(span trace.Span, fn func(*bolt.Tx) error) error {
	if err := g.db.Update(fn); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// read decodes the collection, treating broken data as empty.
func (g *GuestStore) read(ctx context.Context, tx *bolt.Tx) []*model.Guest {
	guests, err := getCollection[*model.Guest](tx, bucketGuest)
	if err != nil {
		g.readFailed(ctx, err)
		return []*model.Guest{}
	}
	res := guests[:0]
	for _, guest := range guests {
		if guest != nil {
			res = append(res, guest)
		}
	}
	return res
}

func (g *GuestStore) readFailed(ctx context.Context, err error) {
	trace.SpanFromContext(ctx).RecordError(err)
	g.logger.WarnContext(ctx, "could not read guests, serving empty collection",
		"bucket", bucketGuest, "error", err)
	metrics.StorageReadFailures.WithLabelValues("guests").Inc()
}
