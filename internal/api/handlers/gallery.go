package handlers

import (
	"net/http"

	"festival-media-center/internal/feed"
	"festival-media-center/internal/models"
	"festival-media-center/internal/utils"

	"github.com/gin-gonic/gin"
)

// ListGallery renders the gallery with the filters from the query.
// ?image=false&video=true narrows the categories, ?selected=<id> opens the viewer.
func (h *Handler) ListGallery(c *gin.Context) {
	g, err := h.Gallery.Load(c.Request.Context())
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	g.SetFilter(models.CategoryImage, utils.ParseBoolOption(c.Query("image"), true))
	g.SetFilter(models.CategoryVideo, utils.ParseBoolOption(c.Query("video"), true))
	if id := c.Query("selected"); id != "" {
		if _, err := g.Select(id); err != nil {
			h.abortWithError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, g.View())
}

// GetGalleryItem returns the detail viewer of one item
func (h *Handler) GetGalleryItem(c *gin.Context) {
	viewer, err := h.Gallery.Item(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewer)
}

// ListWishes returns one page of the wishes feed with its pager controls
func (h *Handler) ListWishes(c *gin.Context) {
	wishes, err := h.Wishes.Wishes(c.Request.Context())
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	perPage := utils.ParseIntOption(c.Query("per_page"))
	if perPage <= 0 || perPage > 50 {
		perPage = feed.DefaultPerPage
	}
	page := utils.ParseIntOption(c.DefaultQuery("page", "1"))

	p := feed.New(wishes, perPage)
	p.GoTo(page)

	c.JSON(http.StatusOK, gin.H{
		"items":    p.CurrentItems(),
		"controls": p.Controls(),
	})
}
