package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MediaCategory is the closed set of media kinds the site handles
type MediaCategory string

const (
	CategoryImage MediaCategory = "image"
	CategoryVideo MediaCategory = "video"
	// CategoryEither is an accept mode for mixed inputs, never a stored category
	CategoryEither MediaCategory = "either"
)

// Categories lists the stored categories in display order
var Categories = []MediaCategory{CategoryImage, CategoryVideo}

// TypePrefix returns the MIME prefix for the category ("image/", "video/")
func (c MediaCategory) TypePrefix() string {
	if c == CategoryEither {
		return ""
	}
	return string(c) + "/"
}

// Matches reports whether a declared content type belongs to the category
func (c MediaCategory) Matches(contentType string) bool {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	switch c {
	case CategoryImage, CategoryVideo:
		return strings.HasPrefix(contentType, c.TypePrefix())
	case CategoryEither:
		return CategoryImage.Matches(contentType) || CategoryVideo.Matches(contentType)
	}
	return false
}

// CategoryOf returns the stored category for a content type
func CategoryOf(contentType string) (MediaCategory, bool) {
	for _, c := range Categories {
		if c.Matches(contentType) {
			return c, true
		}
	}
	return "", false
}

// MediaItem represents a catalog entry shown in the gallery
type MediaItem struct {
	ID        string        `gorm:"primarykey" json:"id" yaml:"id"`
	Category  MediaCategory `gorm:"type:varchar(16);not null;index" json:"category" yaml:"category"`
	Source    string        `gorm:"type:text;not null" json:"source" yaml:"source"`
	Thumbnail string        `gorm:"type:text" json:"thumbnail" yaml:"thumbnail"`
	Alt       string        `json:"alt" yaml:"alt"`
	Caption   string        `json:"caption" yaml:"caption"`
	SortOrder int           `gorm:"default:0;index" json:"sort_order" yaml:"sort_order"`
	CreatedAt time.Time     `json:"-" yaml:"-"`
	UpdatedAt time.Time     `json:"-" yaml:"-"`
}

// BeforeCreate hook to ensure catalog rows carry an id and a known category
func (m *MediaItem) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Category != CategoryImage && m.Category != CategoryVideo {
		return errors.New("catalog item must be an image or a video")
	}
	return nil
}

// TableName specifies the table name for the MediaItem model
func (MediaItem) TableName() string {
	return "media_items"
}
