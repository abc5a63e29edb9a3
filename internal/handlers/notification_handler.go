package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"event-ticketing/internal/ticketing"
)

const (
	defaultNotificationLimit = 100
	maxNotificationLimit     = 500
)

// NotificationLister reads the persisted notification log
type NotificationLister interface {
	ListNotifications(ctx context.Context, after uint64, limit int) ([]ticketing.Envelope, error)
}

// NotificationHandler lets indexers catch up on committed notifications
type NotificationHandler struct {
	notes NotificationLister
}

func NewNotificationHandler(notes NotificationLister) *NotificationHandler {
	return &NotificationHandler{notes: notes}
}

// ListNotifications returns notifications with seq greater than ?after, oldest first
// GET /api/notifications?after=0&limit=100
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	after, err := strconv.ParseUint(c.DefaultQuery("after", "0"), 10, 64)
	if err != nil {
		badRequest(c, "invalid after")
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultNotificationLimit)))
	if err != nil || limit <= 0 {
		badRequest(c, "invalid limit")
		return
	}
	if limit > maxNotificationLimit {
		limit = maxNotificationLimit
	}

	notes, err := h.notes.ListNotifications(c.Request.Context(), after, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	next := after
	if len(notes) > 0 {
		next = notes[len(notes)-1].Seq
	}
	c.JSON(http.StatusOK, gin.H{
		"notifications": notes,
		"next_after":    next,
	})
}
