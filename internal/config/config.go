// Copyright (C) 2024 the lets-party maintainers
// See root-dir/LICENSE for more information

package config

import (
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/url"

	"github.com/quixsi/rsvp/internal/auth"
)

const (
	SchemeJSONDB = "jsondb"
	SchemeKVDB   = "kvdb"
	SchemeMemory = "memory"
	SchemeRedis  = "redis"
)

type Config struct {
	ServiceName  string
	Addr         string
	DB           string
	Sessions     string
	OTLPAddr     string
	MetricsAddr  string
	LogLevel     slog.Level
	StaticDir    string
	SecureCookie bool

	Google auth.GoogleConfig

	SessionSecret []byte
	// GeneratedSecret is set when no SESSION_SECRET was provided and a
	// random one is used; sessions will not survive a restart.
	GeneratedSecret bool
}

// Load reads flags from args and the remaining settings from the
// environment.
func Load(args []string, lookupEnv func(string) (string, bool)) (*Config, error) {
	cfg := &Config{}
	var logLevel string

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&cfg.ServiceName, "service-name", "party-rsvp", "otel service name")
	fs.StringVar(&cfg.Addr, "addr", "0.0.0.0:3000", "default server address")
	fs.StringVar(&cfg.DB, "db", "jsondb://data", "database connection string, jsondb://<dir> or kvdb://<file>")
	fs.StringVar(&cfg.Sessions, "sessions", "memory://", "session store, memory:// or redis://<host>:<port>/<db>")
	fs.StringVar(&cfg.OTLPAddr, "otlp-grpc", "", "default otlp/gRPC address, by default disabled. Example value: localhost:4317")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", "", "prometheus listen address, by default disabled")
	fs.StringVar(&logLevel, "log-level", "INFO", "log level")
	fs.StringVar(&cfg.StaticDir, "static-dir", "", "path to the built single page app")
	fs.BoolVar(&cfg.SecureCookie, "secure-cookie", false, "only send the session cookie over https")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", logLevel, err)
	}

	addrSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "addr" {
			addrSet = true
		}
	})
	if port, ok := lookupEnv("PORT"); ok && port != "" && !addrSet {
		host, _, err := net.SplitHostPort(cfg.Addr)
		if err != nil {
			return nil, fmt.Errorf("parse address %q: %w", cfg.Addr, err)
		}
		cfg.Addr = net.JoinHostPort(host, port)
	}

	env := func(key string) string {
		v, _ := lookupEnv(key)
		return v
	}
	cfg.Google = auth.GoogleConfig{
		ClientID:     env("GOOGLE_CLIENT_ID"),
		ClientSecret: env("GOOGLE_CLIENT_SECRET"),
		CallbackURL:  env("GOOGLE_CALLBACK_URL"),
	}

	if secret := env("SESSION_SECRET"); secret != "" {
		cfg.SessionSecret = []byte(secret)
	} else {
		cfg.SessionSecret = make([]byte, 32)
		if _, err := rand.Read(cfg.SessionSecret); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
		cfg.GeneratedSecret = true
	}

	return cfg, nil
}

// Location splits a backend connection string like jsondb://data into its
// scheme and path.
func Location(raw string) (scheme string, path string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}
	if u.Scheme == "" {
		return "", "", errors.New("missing scheme")
	}
	return u.Scheme, u.Host + u.Path, nil
}
