// Copyright (C) 2024 the lets-party maintainers
// See root-dir/LICENSE for more information

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	bolt "go.etcd.io/bbolt"

	"github.com/quixsi/rsvp/internal/config"
	"github.com/quixsi/rsvp/internal/db"
	"github.com/quixsi/rsvp/internal/db/jsondb"
	"github.com/quixsi/rsvp/internal/db/kvdb"
)

func main() {
	var (
		from = flag.String("from", "jsondb://data", "source database connection string")
		to   = flag.String("to", "kvdb://data/rsvp.db", "destination database connection string")
	)
	flag.Parse()

	jsonHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{})
	logger := slog.New(jsonHandler)

	src, err := open(logger, *from)
	if err != nil {
		logger.Error("could not open source", "db", *from, "error", err)
		os.Exit(1)
	}
	dst, err := open(logger, *to)
	if err != nil {
		src.Close()
		logger.Error("could not open destination", "db", *to, "error", err)
		os.Exit(1)
	}

	logger.Info("start converting", "from", *from, "to", *to)
	if err := into(context.Background(), logger, dst, src); err != nil {
		logger.Error("conversion failed", "error", err)
		os.Exit(1)
	}
	logger.Info("finished converting")
}

type database interface {
	db.GuestStore
	db.UserStore
	Close() error
}

type dbWrapper struct {
	db.GuestStore
	db.UserStore

	closeFN func() error
}

func (d *dbWrapper) Close() error {
	return d.closeFN()
}

// into replaces the collections of dst with those of src.
func into(ctx context.Context, logger *slog.Logger, dst, src database) error {
	defer src.Close()
	defer dst.Close()

	guests := src.LoadGuests(ctx)
	if err := dst.SaveGuests(ctx, guests); err != nil {
		return fmt.Errorf("copy guests: %w", err)
	}
	users := src.LoadUsers(ctx)
	if err := dst.SaveUsers(ctx, users); err != nil {
		return fmt.Errorf("copy users: %w", err)
	}
	logger.InfoContext(ctx, "copied collections", "guests", len(guests), "users", len(users))
	return nil
}

func open(logger *slog.Logger, dsn string) (database, error) {
	scheme, path, err := config.Location(dsn)
	if err != nil {
		return nil, err
	}

	switch scheme {
	case config.SchemeJSONDB:
		logger.Info("jsondb storage folder", "path", path)
		guestStore, err := jsondb.NewGuestStore(filepath.Join(path, "guests.json"))
		if err != nil {
			return nil, err
		}
		userStore, err := jsondb.NewUserStore(filepath.Join(path, "users.json"))
		if err != nil {
			return nil, err
		}
		return &dbWrapper{GuestStore: guestStore, UserStore: userStore, closeFN: func() error { return nil }}, nil
	case config.SchemeKVDB:
		logger.Info("kvdb storage file", "path", path)
		bdb, err := bolt.Open(path, 0600, nil)
		if err != nil {
			return nil, err
		}
		guestStore, err := kvdb.NewGuestStore(bdb)
		if err != nil {
			bdb.Close()
			return nil, err
		}
		userStore, err := kvdb.NewUserStore(bdb)
		if err != nil {
			bdb.Close()
			return nil, err
		}
		return &dbWrapper{GuestStore: guestStore, UserStore: userStore, closeFN: bdb.Close}, nil
	default:
		return nil, errors.New("unknown storage backend: " + scheme)
	}
}
