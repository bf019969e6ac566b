// Copyright (C) 2024 the lets-party maintainers
// See root-dir/LICENSE for more information

package server

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/quixsi/rsvp/internal/db"
	"github.com/quixsi/rsvp/internal/metrics"
	"github.com/quixsi/rsvp/internal/model"
)

func NewGuestHandler(gStore db.GuestStore) *GuestHandler {
	return &GuestHandler{
		gStore: gStore,
		logger: slog.Default().WithGroup("http"),
		now:    time.Now,
	}
}

type GuestHandler struct {
	gStore db.GuestStore
	logger *slog.Logger
	now    func() time.Time
}

// createGuestRequest requires a non-empty name and a real JSON boolean.
type createGuestRequest struct {
	Name      string `json:"name" binding:"required"`
	Attending *bool  `json:"attending" binding:"required"`
}

func (h *GuestHandler) List(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "GuestHandler.List")
	defer span.End()

	guests := h.gStore.LoadGuests(ctx)
	span.SetAttributes(attribute.Int("guests", len(guests)))
	c.JSON(http.StatusOK, guests)
}

func (h *GuestHandler) Create(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "GuestHandler.Create")
	defer span.End()

	var req createGuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		h.logger.DebugContext(ctx, "invalid guest", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name and attending status required"})
		return
	}

	guest := model.NewGuest(req.Name, *req.Attending, h.now())
	if err := h.gStore.CreateGuest(ctx, guest); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.logger.ErrorContext(ctx, "could not create guest", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add guest"})
		return
	}
	metrics.GuestsCreated.Inc()

	if user := currentUser(c); user != nil {
		h.logger.InfoContext(ctx, "guest created", "guest-id", guest.ID, "user-id", user.ID)
	}
	c.JSON(http.StatusCreated, guest)
}

// Delete always reports success. The id is coerced from its leading digits,
// so "17.0" and "17abc" address guest 17; an id without digits matches
// nothing.
func (h *GuestHandler) Delete(c *gin.Context) {
	var span trace.Span
	ctx := c.Request.Context()
	ctx, span = tracer.Start(ctx, "GuestHandler.Delete")
	defer span.End()

	id, ok := parseGuestID(c.Param("id"))
	if !ok {
		span.AddEvent("id is not numeric, nothing to delete")
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}
	span.SetAttributes(attribute.Int64("guest.id", id))

	if err := h.gStore.DeleteGuest(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.logger.ErrorContext(ctx, "could not delete guest", "error", err, "guest-id", id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete guest"})
		return
	}
	metrics.GuestsDeleted.Inc()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// parseGuestID reads an optionally signed base-10 integer from the start of
// raw, ignoring leading whitespace and any trailing text.
func parseGuestID(raw string) (int64, bool) {
	raw = strings.TrimLeftFunc(raw, unicode.IsSpace)
	end := 0
	if end < len(raw) && (raw[end] == '+' || raw[end] == '-') {
		end++
	}
	digits := end
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	id, err := strconv.ParseInt(raw[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
