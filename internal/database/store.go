package database

import (
	"context"
	"errors"
	"fmt"

	"festival-media-center/internal/models"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a catalog row does not exist
var ErrNotFound = errors.New("record not found")

// Store reads the catalog and the wishes feed
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Catalog returns every gallery item in display order
func (s *Store) Catalog(ctx context.Context) ([]models.MediaItem, error) {
	var items []models.MediaItem
	if err := s.db.WithContext(ctx).Order("sort_order ASC, id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return items, nil
}

// Item returns one catalog entry
func (s *Store) Item(ctx context.Context, id string) (models.MediaItem, error) {
	var item models.MediaItem
	err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return item, ErrNotFound
	}
	return item, err
}

// Wishes returns the feed, newest first
func (s *Store) Wishes(ctx context.Context) ([]models.WishEntry, error) {
	var wishes []models.WishEntry
	if err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&wishes).Error; err != nil {
		return nil, fmt.Errorf("failed to load wishes: %w", err)
	}
	return wishes, nil
}
