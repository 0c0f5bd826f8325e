package handlers

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// ExportWishesCSV downloads the whole wishes feed as CSV
func (h *Handler) ExportWishesCSV(c *gin.Context) {
	wishes, err := h.Wishes.Wishes(c.Request.Context())
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment;filename=wishes_export.csv")

	writer := csv.NewWriter(c.Writer)
	if err := writer.Write([]string{"ID", "Author", "Initials", "Message", "Created At"}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write CSV header"})
		return
	}

	for _, w := range wishes {
		if err := writer.Write([]string{
			strconv.FormatUint(uint64(w.ID), 10),
			w.Author,
			w.Initials,
			w.Message,
			w.CreatedAt.UTC().Format(time.RFC3339),
		}); err != nil {
			h.abortWithError(c, err)
			return
		}
	}

	writer.Flush()
}

// ExportWishesJSON downloads the whole wishes feed as JSON
func (h *Handler) ExportWishesJSON(c *gin.Context) {
	wishes, err := h.Wishes.Wishes(c.Request.Context())
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	jsonData, err := json.MarshalIndent(wishes, "", "  ")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to marshal JSON"})
		return
	}

	c.Header("Content-Disposition", "attachment;filename=wishes_export.json")
	c.Data(http.StatusOK, "application/json", jsonData)
}
