package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"festival-media-center/internal/models"
	"festival-media-center/internal/storage"
	"festival-media-center/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ServePreview serves the bytes behind a live preview locator. Images accept
// the transform query (?preset=square, width, height, fit, quality, format).
func (h *Handler) ServePreview(c *gin.Context) {
	file, ok := h.Previews.Open(c.Param("token"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Preview not found"})
		return
	}

	// previews die with their form, never let a cache outlive them
	c.Header("Cache-Control", "no-store")
	h.serveBytes(c, file.Data, file.ContentType, file.Name)
}

// ServeMediaFile streams a catalog object from storage, transforming images
// on request
func (h *Handler) ServeMediaFile(c *gin.Context) {
	if h.Media == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Media storage not configured"})
		return
	}
	key := storage.CleanKey(c.Param("key"))
	if key == "" || key == "." {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing media key"})
		return
	}

	body, err := h.Media.Download(c.Request.Context(), key)
	if err != nil {
		h.Log.Warn("media download failed", zap.String("key", key), zap.Error(err))
		c.JSON(http.StatusNotFound, gin.H{"error": "Media not found"})
		return
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to read file: %v", err)})
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	h.serveBytes(c, data, utils.ResolveContentType("", key, data), key)
}

func (h *Handler) serveBytes(c *gin.Context, data []byte, contentType, name string) {
	options, err := utils.ParseTransformOptions(c.Query)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !options.IsEmpty() {
		if !models.CategoryImage.Matches(contentType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Transformations are only supported for images"})
			return
		}
		transformed, transformedType, err := utils.TransformImage(bytes.NewReader(data), options)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		data, contentType = transformed, transformedType
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", strings.ReplaceAll(name, `"`, "")))
	c.Data(http.StatusOK, contentType, data)
}
