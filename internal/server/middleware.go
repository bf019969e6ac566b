// Copyright (C) 2024 the lets-party maintainers
// See root-dir/LICENSE for more information

package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/codes"

	"github.com/quixsi/rsvp/internal/identity"
	"github.com/quixsi/rsvp/internal/model"
)

const userKey = "user"

// requireAuth rejects requests without an authenticated session before any
// handler touches storage.
func requireAuth(ident Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "Middleware.requireAuth")
		defer span.End()

		user, err := ident.CurrentUser(c.Request.WithContext(ctx))
		switch {
		case errors.Is(err, identity.ErrUnauthorized):
			span.AddEvent("anonymous")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		case err != nil:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Default().ErrorContext(ctx, "could not resolve session", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve session"})
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

func currentUser(c *gin.Context) *model.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := v.(*model.User)
	return user
}
