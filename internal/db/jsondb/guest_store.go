// Copyright (C) 2024 the lets-party maintainers
// See root-dir/LICENSE for more information

package jsondb

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/quixsi/rsvp/internal/metrics"
	"github.com/quixsi/rsvp/internal/model"
)

// GuestStore is an implementation of the GuestStore interface
// that stores guest data in a JSON file.
type GuestStore struct {
	filename string
	logger   *slog.Logger
	mu       sync.RWMutex
}

// NewGuestStore creates a new GuestStore instance. A missing file is created
// with an empty collection.
func NewGuestStore(filename string) (*GuestStore, error) {
	if err := initCollection(filename); err != nil {
		return nil, err
	}
	return &GuestStore{
		filename: filename,
		logger:   slog.Default().WithGroup("jsondb"),
	}, nil
}

// LoadGuests returns the stored guests in insertion order.
func (g *GuestStore) LoadGuests(ctx context.Context) []*model.Guest {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "LoadGuests")
	defer span.End()

	span.AddEvent("RLock")
	g.mu.RLock()
	defer span.AddEvent("RUnlock")
	defer g.mu.RUnlock()

	return g.load(ctx)
}

// SaveGuests replaces the stored collection.
func (g *GuestStore) SaveGuests(ctx context.Context, guests []*model.Guest) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "SaveGuests")
	defer span.End()

	span.AddEvent("Lock")
	g.mu.Lock()
	defer span.AddEvent("Unlock")
	defer g.mu.Unlock()

	return g.save(ctx, guests)
}

// CreateGuest adds a new guest to the store and stores it in the JSON file.
func (g *GuestStore) CreateGuest(ctx context.Context, guest *model.Guest) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "CreateGuest")
	defer span.End()

	span.AddEvent("Lock")
	g.mu.Lock()
	defer span.AddEvent("Unlock")
	defer g.mu.Unlock()

	guests := g.load(ctx)
	span.AddEvent("save to file")
	return g.save(ctx, append(guests, guest))
}

// DeleteGuest removes all guests with the given id and rewrites the JSON file.
func (g *GuestStore) DeleteGuest(ctx context.Context, id int64) error {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "DeleteGuest")
	defer span.End()

	span.AddEvent("Lock")
	g.mu.Lock()
	defer span.AddEvent("Unlock")
	defer g.mu.Unlock()

	guests := g.load(ctx)
	span.AddEvent("save to file")
	return g.save(ctx, model.RemoveGuest(guests, id))
}

func (g *GuestStore) load(ctx context.Context) []*model.Guest {
	span := trace.SpanFromContext(ctx)

	guests, err := readCollection[*model.Guest](g.filename)
	if err != nil {
		span.RecordError(err)
		g.logger.WarnContext(ctx, "could not read guests, serving empty collection",
			"file", g.filename, "error", err)
		metrics.StorageReadFailures.WithLabelValues("guests").Inc()
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

func (g *GuestStore) save(ctx context.Context, guests []*model.Guest) error {
	var span trace.Span
	_, span = tracer.Start(ctx, "SaveToFile")
	defer span.End()

	if err := writeCollection(g.filename, guests); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}
