// Copyright (C) 2024 the lets-party maintainers
// See root-dir/LICENSE for more information

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/quixsi/rsvp/internal/model"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

var ErrMissingCode = errors.New("missing authorization code")

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string

	// Endpoint and UserInfoURL default to Google's.
	Endpoint    oauth2.Endpoint
	UserInfoURL string
}

// Complete reports whether the provider can be enabled.
func (c GoogleConfig) Complete() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.CallbackURL != ""
}

type Google struct {
	oauth       *oauth2.Config
	userInfoURL string
}

func NewGoogle(cfg GoogleConfig) *Google {
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" || endpoint.TokenURL == "" {
		endpoint = google.Endpoint
	}
	userInfoURL := cfg.UserInfoURL
	if userInfoURL == "" {
		userInfoURL = googleUserInfoURL
	}
	return &Google{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       []string{"profile", "email"},
			Endpoint:     endpoint,
		},
		userInfoURL: userInfoURL,
	}
}

func (g *Google) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state)
}

type googleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (g *Google) Exchange(ctx context.Context, code string) (*model.Profile, error) {
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Google.Exchange")
	defer span.End()

	if code == "" {
		span.RecordError(ErrMissingCode)
		return nil, ErrMissingCode
	}

	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, recordErr(span, fmt.Errorf("exchange code: %w", err))
	}

	span.AddEvent("fetch userinfo")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return nil, recordErr(span, err)
	}
	resp, err := g.oauth.Client(ctx, token).Do(req)
	if err != nil {
		return nil, recordErr(span, fmt.Errorf("fetch userinfo: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, recordErr(span, fmt.Errorf("fetch userinfo: unexpected status %d", resp.StatusCode))
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, recordErr(span, fmt.Errorf("decode userinfo: %w", err))
	}
	if info.ID == "" {
		return nil, recordErr(span, errors.New("userinfo without id"))
	}
	return info.profile(), nil
}

func (i googleUserInfo) profile() *model.Profile {
	p := &model.Profile{
		ID:          i.ID,
		DisplayName: i.Name,
	}
	if i.Email != "" {
		p.Emails = []model.ProfileValue{{Value: i.Email}}
	}
	if i.Picture != "" {
		p.Photos = []model.ProfileValue{{Value: i.Picture}}
	}
	return p
}

func recordErr(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
