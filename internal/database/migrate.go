package database

import (
	"fmt"

	"festival-media-center/internal/models"

	"gorm.io/gorm"
)

// Migrate creates or updates the catalog and feed tables
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.MediaItem{},
		&models.WishEntry{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
