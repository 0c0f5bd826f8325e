package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"festival-media-center/internal/database"
	"festival-media-center/internal/forms"
	"festival-media-center/internal/gallery"
	"festival-media-center/internal/models"
	"festival-media-center/internal/preview"
	"festival-media-center/internal/storage"
	"festival-media-center/internal/submission"
	"festival-media-center/internal/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WishSource lists the wishes feed, newest first
type WishSource interface {
	Wishes(ctx context.Context) ([]models.WishEntry, error)
}

// Handler carries the dependencies shared by every route
type Handler struct {
	Gallery  *gallery.Service
	Wishes   WishSource
	Forms    *forms.Manager
	Previews *preview.Registry
	// Media is nil when no object storage is configured
	Media storage.Storage
	Hub   *websocket.Manager
	Venue models.Venue

	SessionSecret string
	SessionTTL    time.Duration
	MaxUploadSize int64

	Log *zap.Logger
}

// HealthCheck reports liveness
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": h.Forms.Len(),
		"previews": h.Previews.Live(),
	})
}

// GetVenue returns the map marker
func (h *Handler) GetVenue(c *gin.Context) {
	c.JSON(http.StatusOK, h.Venue)
}

// abortWithError maps domain errors onto status codes
func (h *Handler) abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, forms.ErrSessionNotFound), errors.Is(err, forms.ErrClosed),
		errors.Is(err, database.ErrNotFound), errors.Is(err, gallery.ErrItemNotFound),
		errors.Is(err, preview.ErrIndexOutOfRange):
		status = http.StatusNotFound
	case errors.Is(err, forms.ErrUnknownKind):
		status = http.StatusBadRequest
	case errors.Is(err, submission.ErrBusy):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		h.Log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.AbortWithStatusJSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
