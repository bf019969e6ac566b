// Copyright (C) 2024 the lets-party maintainers
// See root-dir/LICENSE for more information

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	bolt "go.etcd.io/bbolt"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/quixsi/rsvp/internal/auth"
	"github.com/quixsi/rsvp/internal/config"
	"github.com/quixsi/rsvp/internal/db"
	"github.com/quixsi/rsvp/internal/db/jsondb"
	"github.com/quixsi/rsvp/internal/db/kvdb"
	"github.com/quixsi/rsvp/internal/identity"
	"github.com/quixsi/rsvp/internal/metrics"
	"github.com/quixsi/rsvp/internal/server"
	"github.com/quixsi/rsvp/internal/session"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load(os.Args[1:], os.LookupEnv)
	if err != nil {
		slog.Error("unable to load configuration", "error", err)
		os.Exit(1)
	}

	jsonHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})
	logger := slog.New(jsonHandler)
	slog.SetDefault(logger)

	logger.Info("start and listen", "address", cfg.Addr)
	logger.Info("otlp/gRPC", "address", cfg.OTLPAddr, "service", cfg.ServiceName)
	logger.Info("static-dir", "directory", cfg.StaticDir)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.OTLPAddr != "" {
		shutdown, err := setupOTLP(ctx, cfg.OTLPAddr)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	stores, err := openStorage(logger, cfg.DB)
	if err != nil {
		return err
	}
	defer stores.Close()

	sessions, closeSessions, err := openSessions(logger, cfg.Sessions)
	if err != nil {
		return err
	}
	defer closeSessions()

	if cfg.GeneratedSecret {
		logger.Warn("SESSION_SECRET not set, using a random key; sessions end on restart")
	}

	var provider auth.Provider
	if cfg.Google.Complete() {
		provider = auth.NewGoogle(cfg.Google)
	} else {
		logger.Warn("google oauth not configured, login is disabled")
	}

	manager := identity.NewManager(identity.Config{
		Secret:       cfg.SessionSecret,
		TTL:          session.DefaultTTL,
		SecureCookie: cfg.SecureCookie,
	}, sessions, stores.UserStore, provider)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.NewServer(cfg.ServiceName, cfg.StaticDir, stores.GuestStore, manager),
		ReadHeaderTimeout: 5 * time.Second,
	}
	servers := []*http.Server{srv}
	if cfg.MetricsAddr != "" {
		logger.Info("metrics", "address", cfg.MetricsAddr)
		servers = append(servers, metrics.NewServer(logger.WithGroup("metrics"), cfg.MetricsAddr))
	}

	errc := make(chan error, len(servers))
	for _, s := range servers {
		go func(s *http.Server) {
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- err
			}
		}(s)
	}

	select {
	case err = <-errc:
		logger.Error("error during listen and serve", "error", err)
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, s := range servers {
		if serr := s.Shutdown(shutdownCtx); serr != nil {
			logger.Error("graceful shutdown failed", "address", s.Addr, "error", serr)
		}
	}
	return err
}

type storage struct {
	db.GuestStore
	db.UserStore

	closeFN func() error
}

func (s *storage) Close() error {
	return s.closeFN()
}

func openStorage(logger *slog.Logger, dsn string) (*storage, error) {
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
		return &storage{GuestStore: guestStore, UserStore: userStore, closeFN: func() error { return nil }}, nil
	case config.SchemeKVDB:
		logger.Info("kvdb storage file", "path", path)
		bdb, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
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
		return &storage{GuestStore: guestStore, UserStore: userStore, closeFN: bdb.Close}, nil
	default:
		return nil, errors.New("unknown storage backend: " + scheme)
	}
}

func openSessions(logger *slog.Logger, dsn string) (session.Store, func() error, error) {
	scheme, _, err := config.Location(dsn)
	if err != nil {
		return nil, nil, err
	}

	switch scheme {
	case config.SchemeMemory:
		logger.Info("session store", "type", scheme)
		return session.NewMemoryStore(session.DefaultTTL), func() error { return nil }, nil
	case config.SchemeRedis:
		opts, err := redis.ParseURL(dsn)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("session store", "type", scheme, "address", opts.Addr, "db", opts.DB)
		store := session.NewRedisStore(redis.NewClient(opts), session.DefaultTTL)
		return store, store.Close, nil
	default:
		return nil, nil, errors.New("unknown session backend: " + scheme)
	}
}

func setupOTLP(ctx context.Context, addr string) (func(), error) {
	dialCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	// the connection is established lazily by the first export
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}

	// Set up a trace exporter
	otelExporter, err := otlptracegrpc.New(dialCtx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		conn.Close()
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(otelExporter))
	otel.SetTracerProvider(tp)

	return func() {
		_ = tp.Shutdown(context.Background())
		_ = conn.Close()
	}, nil
}
