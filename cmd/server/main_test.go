// Copyright (C) 2024 the lets-party maintainers
// See root-dir/LICENSE for more information

package main

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/quixsi/rsvp/internal/model"
	"github.com/quixsi/rsvp/internal/session"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestSetupOTLPDoesNotBlockOnMissingCollector(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	// nothing listens here; the client must not wait for a connection
	start := time.Now()
	shutdown, err := setupOTLP(context.Background(), "127.0.0.1:1")
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)

	_, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	assert.True(t, ok)
	shutdown()
}

func TestOpenStorage(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tt := []struct {
		name string
		dsn  string
	}{
		{name: "jsondb", dsn: "jsondb://" + filepath.Join(dir, "data")},
		{name: "kvdb", dsn: "kvdb://" + filepath.Join(dir, "rsvp.db")},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			stores, err := openStorage(discardLogger(), tc.dsn)
			require.NoError(t, err)
			defer stores.Close()

			require.NoError(t, stores.CreateGuest(ctx, model.NewGuest("Alice", true, time.Now())))
			assert.Len(t, stores.LoadGuests(ctx), 1)
			assert.Empty(t, stores.LoadUsers(ctx))
		})
	}

	_, err := openStorage(discardLogger(), "postgres://localhost/rsvp")
	assert.Error(t, err)
}

func TestOpenSessions(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	tt := []struct {
		name string
		dsn  string
	}{
		{name: "memory", dsn: "memory://"},
		{name: "redis", dsn: "redis://" + mr.Addr() + "/0"},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			store, closeFn, err := openSessions(discardLogger(), tc.dsn)
			require.NoError(t, err)
			defer closeFn()

			s := session.New(time.Now())
			require.NoError(t, store.Save(ctx, s))
			got, err := store.Get(ctx, s.Token)
			require.NoError(t, err)
			assert.Equal(t, s.Token, got.Token)
		})
	}

	_, _, err := openSessions(discardLogger(), "memcached://localhost")
	assert.Error(t, err)
}
