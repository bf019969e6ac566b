// Copyright (C) 2024 the lets-party maintainers
// See root-dir/LICENSE for more information

package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/quixsi/rsvp/internal/model"
)

func newFakeGoogle(t *testing.T, userinfo map[string]string, userinfoStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.PostForm.Get("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"access","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("GET /userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(userinfoStatus)
		_ = json.NewEncoder(w).Encode(userinfo)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestGoogle(srv *httptest.Server) *Google {
	return NewGoogle(GoogleConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		CallbackURL:  "http://localhost/api/auth/google/callback",
		Endpoint: oauth2.Endpoint{
			AuthURL:   srv.URL + "/auth",
			TokenURL:  srv.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
		UserInfoURL: srv.URL + "/userinfo",
	})
}

func TestGoogleConfigComplete(t *testing.T) {
	assert.True(t, GoogleConfig{ClientID: "a", ClientSecret: "b", CallbackURL: "c"}.Complete())
	assert.False(t, GoogleConfig{ClientID: "a", ClientSecret: "b"}.Complete())
	assert.False(t, GoogleConfig{}.Complete())
}

func TestGoogleAuthCodeURL(t *testing.T) {
	g := NewGoogle(GoogleConfig{ClientID: "client", ClientSecret: "secret", CallbackURL: "http://localhost/cb"})

	u, err := url.Parse(g.AuthCodeURL("state-1"))
	require.NoError(t, err)
	assert.Equal(t, "accounts.google.com", u.Host)

	q := u.Query()
	assert.Equal(t, "state-1", q.Get("state"))
	assert.Equal(t, "client", q.Get("client_id"))
	assert.Equal(t, "http://localhost/cb", q.Get("redirect_uri"))
	assert.Equal(t, "profile email", q.Get("scope"))
	assert.Equal(t, "code", q.Get("response_type"))
}

func TestGoogleExchange(t *testing.T) {
	full := map[string]string{"id": "123", "email": "alice@example.com", "name": "Alice", "picture": "https://example.com/a.png"}

	tt := []struct {
		name     string
		code     string
		userinfo map[string]string
		status   int
		want     *model.Profile
		wantErr  bool
	}{
		{
			name:     "full profile",
			code:     "good-code",
			userinfo: full,
			status:   http.StatusOK,
			want: &model.Profile{
				ID:          "123",
				DisplayName: "Alice",
				Emails:      []model.ProfileValue{{Value: "alice@example.com"}},
				Photos:      []model.ProfileValue{{Value: "https://example.com/a.png"}},
			},
		},
		{
			name:     "no email or picture",
			code:     "good-code",
			userinfo: map[string]string{"id": "456", "name": "Bob"},
			status:   http.StatusOK,
			want:     &model.Profile{ID: "456", DisplayName: "Bob"},
		},
		{name: "missing code", code: "", userinfo: full, status: http.StatusOK, wantErr: true},
		{name: "rejected code", code: "bad-code", userinfo: full, status: http.StatusOK, wantErr: true},
		{name: "userinfo failure", code: "good-code", userinfo: full, status: http.StatusInternalServerError, wantErr: true},
		{name: "userinfo without id", code: "good-code", userinfo: map[string]string{"name": "x"}, status: http.StatusOK, wantErr: true},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			g := newTestGoogle(newFakeGoogle(t, tc.userinfo, tc.status))
			got, err := g.Exchange(context.Background(), tc.code)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
