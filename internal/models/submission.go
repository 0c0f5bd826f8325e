package models

import (
	"strings"
	"time"
	"unicode"

	"gorm.io/gorm"
)

// SubmissionEntry is the record produced by a successful wish or photo submission.
// It is handed to the success hook and then discarded.
type SubmissionEntry struct {
	Author     string         `json:"author"`
	Message    string         `json:"message,omitempty"`
	Media      *MediaCategory `json:"media,omitempty"`
	MediaCount int            `json:"media_count,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// HasMedia reports whether files are attached
func (e SubmissionEntry) HasMedia() bool {
	return e.Media != nil && e.MediaCount > 0
}

// HasContent reports whether the entry carries a message or attached media
func (e SubmissionEntry) HasContent() bool {
	return strings.TrimSpace(e.Message) != "" || e.HasMedia()
}

// WishEntry is a row of the "recent wishes" feed
type WishEntry struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Author    string    `gorm:"not null" json:"author" yaml:"author"`
	Message   string    `gorm:"type:text;not null" json:"message" yaml:"message"`
	Initials  string    `gorm:"size:4" json:"initials" yaml:"initials"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// BeforeCreate fills in initials when the seed data omits them
func (w *WishEntry) BeforeCreate(tx *gorm.DB) error {
	if w.Initials == "" {
		w.Initials = Initials(w.Author)
	}
	return nil
}

// TableName specifies the table name for the WishEntry model
func (WishEntry) TableName() string {
	return "wish_entries"
}

// Initials returns up to two upper-case initials of a display name
func Initials(name string) string {
	initials := make([]rune, 0, 2)
	for _, part := range strings.Fields(name) {
		initials = append(initials, unicode.ToUpper([]rune(part)[0]))
		if len(initials) == 2 {
			break
		}
	}
	return string(initials)
}

// Venue is the single marker shown on the location map
type Venue struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Label     string  `json:"label"`
}
