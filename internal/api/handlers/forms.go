package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"festival-media-center/internal/api/middleware"
	"festival-media-center/internal/forms"
	"festival-media-center/internal/intake"
	"festival-media-center/internal/submission"
	"festival-media-center/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OpenFormRequest opens a form session
type OpenFormRequest struct {
	Kind string `json:"kind" binding:"required"`
}

// SubmitRequest carries the typed fields of a form
type SubmitRequest struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// OpenForm starts a form session and returns its bearer token
func (h *Handler) OpenForm(c *gin.Context) {
	var req OpenFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: kind is required"})
		return
	}

	kind, err := forms.ParseKind(req.Kind)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	session, err := h.Forms.Open(kind)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	token, err := utils.GenerateSessionToken(session.ID(), string(kind), h.SessionSecret, h.SessionTTL)
	if err != nil {
		_ = h.Forms.Close(session.ID())
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"form":  session.Snapshot(),
	})
}

// formSession resolves the session named by the verified token
func (h *Handler) formSession(c *gin.Context) (*forms.Session, error) {
	return h.Forms.Get(c.GetString(middleware.SessionIDKey))
}

// GetForm returns the form snapshot
func (h *Handler) GetForm(c *gin.Context) {
	session, err := h.formSession(c)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, session.Snapshot())
}

// AttachFiles runs picker and drop-zone parts through intake
func (h *Handler) AttachFiles(c *gin.Context) {
	session, err := h.formSession(c)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	if h.MaxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadSize)
	}
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Upload too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
		return
	}
	defer form.RemoveAll()

	candidates, err := intake.FromMultipart(c.Request.Context(), form)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	result, err := session.Attach(candidates)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	h.Log.Debug("files attached",
		zap.String("session", session.ID()),
		zap.String("kind", c.GetString(middleware.FormKindKey)),
		zap.Int("accepted", len(result.Accepted)),
		zap.Int("rejected", len(result.Rejected)))

	c.JSON(http.StatusOK, gin.H{
		"result": result,
		"form":   session.Snapshot(),
	})
}

// RemoveFile detaches one file by index
func (h *Handler) RemoveFile(c *gin.Context) {
	session, err := h.formSession(c)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file index"})
		return
	}

	if _, err := session.Remove(index); err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, session.Snapshot())
}

// SubmitForm stores the fields and starts the submission round trip
func (h *Handler) SubmitForm(c *gin.Context) {
	session, err := h.formSession(c)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	outcome, err := session.SubmitFields(req.Name, req.Message)
	switch {
	case errors.Is(err, submission.ErrBusy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "outcome": outcome})
		return
	case err != nil:
		h.abortWithError(c, err)
		return
	}

	status := http.StatusAccepted
	if outcome.State == submission.StateRejected {
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{
		"outcome": outcome,
		"form":    session.Snapshot(),
		// without a listener the client shows the outcome itself
		"toasts_connected": h.Hub.Connected(session.ID()) > 0,
	})
}

// CloseForm tears the session down and revokes its previews
func (h *Handler) CloseForm(c *gin.Context) {
	if err := h.Forms.Close(c.GetString(middleware.SessionIDKey)); err != nil {
		h.abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Toasts upgrades to the websocket channel carrying a session's notifications
func (h *Handler) Toasts(c *gin.Context) {
	sessionID := c.Query("session")
	claims, err := utils.ParseSessionToken(c.Query("token"), h.SessionSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session token"})
		return
	}
	if claims.SessionID != sessionID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Token does not belong to this form"})
		return
	}
	if _, err := h.Forms.Get(sessionID); err != nil {
		h.abortWithError(c, err)
		return
	}

	if err := h.Hub.Serve(c.Writer, c.Request, sessionID); err != nil {
		h.Log.Warn("websocket upgrade failed", zap.String("session", sessionID), zap.Error(err))
	}
}
