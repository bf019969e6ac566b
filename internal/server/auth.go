// Copyright (C) 2024 the lets-party maintainers
// See root-dir/LICENSE for more information

package server

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/quixsi/rsvp/internal/identity"
	"github.com/quixsi/rsvp/internal/model"
)

func NewAuthHandler(ident Identity) *AuthHandler {
	return &AuthHandler{
		identity: ident,
		logger:   slog.Default().WithGroup("http"),
	}
}

type AuthHandler struct {
	identity Identity
	logger   *slog.Logger
}

func loginErrorURL(reason model.ErrorReason) string {
	return "/login?" + url.Values{"error": {string(reason)}}.Encode()
}

func (h *AuthHandler) Login(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "AuthHandler.Login")
	defer span.End()

	c.Request = c.Request.WithContext(ctx)
	redirect, err := h.identity.BeginLogin(c.Writer, c.Request)
	switch {
	case errors.Is(err, identity.ErrProviderDisabled):
		h.logger.WarnContext(ctx, "login requested but no oauth provider is configured")
		c.Redirect(http.StatusFound, loginErrorURL(model.ErrorReasonAuthUnavailable))
		return
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.logger.ErrorContext(ctx, "could not start login", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start login"})
		return
	}
	c.Redirect(http.StatusFound, redirect)
}

func (h *AuthHandler) Callback(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "AuthHandler.Callback")
	defer span.End()

	c.Request = c.Request.WithContext(ctx)
	_, err := h.identity.CompleteLogin(c.Writer, c.Request)
	switch {
	case errors.Is(err, identity.ErrProviderDisabled):
		c.Redirect(http.StatusFound, loginErrorURL(model.ErrorReasonAuthUnavailable))
		return
	case err != nil:
		span.RecordError(err)
		h.logger.WarnContext(ctx, "oauth callback failed", "error", err)
		c.Redirect(http.StatusFound, loginErrorURL(model.ErrorReasonAuthFailed))
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) User(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	c.JSON(http.StatusOK, user.Public())
}

func (h *AuthHandler) Logout(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "AuthHandler.Logout")
	defer span.End()

	c.Request = c.Request.WithContext(ctx)
	err := h.identity.Logout(c.Writer, c.Request)
	switch {
	case errors.Is(err, identity.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.logger.ErrorContext(ctx, "could not logout", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to logout"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
