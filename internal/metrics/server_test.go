// Copyright (C) 2024 the lets-party maintainers
// See root-dir/LICENSE for more information

package metrics

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerExposesCounters(t *testing.T) {
	GuestsCreated.Inc()
	StorageReadFailures.WithLabelValues("guests").Inc()

	srv := NewServer(slog.New(slog.NewTextHandler(io.Discard, nil)), "127.0.0.1:0")

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "rsvp_guests_created_total"))
	assert.True(t, strings.Contains(body, `rsvp_storage_read_failures_total{collection="guests"}`))

	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
