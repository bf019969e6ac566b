// Copyright (C) 2024 the lets-party maintainers
// See root-dir/LICENSE for more information

package metrics

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	sloghttp "github.com/samber/slog-http"
)

// NewServer returns the listener exposing /metrics on its own address.
func NewServer(logger *slog.Logger, address string) *http.Server {
	mux := http.NewServeMux()

	loggerMW := sloghttp.NewWithConfig(
		logger, sloghttp.Config{
			DefaultLevel:     slog.LevelDebug,
			ClientErrorLevel: slog.LevelWarn,
			ServerErrorLevel: slog.LevelError,
			WithUserAgent:    true,
		},
	)

	routes := map[string]http.Handler{
		"GET /metrics": promhttp.Handler(),
		"GET /healthz": http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	}
	for route, handler := range routes {
		mux.Handle(route, handler)
	}

	return &http.Server{
		Addr:              address,
		Handler:           loggerMW(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}
}
