package gallery

import (
	"context"
	"time"

	"festival-media-center/internal/models"
	"festival-media-center/internal/storage"

	"go.uber.org/zap"
)

// CatalogSource loads the catalog in display order, or one item by id
type CatalogSource interface {
	Catalog(ctx context.Context) ([]models.MediaItem, error)
	Item(ctx context.Context, id string) (models.MediaItem, error)
}

// Service builds galleries over the stored catalog with browser-ready locators
type Service struct {
	source     CatalogSource
	store      storage.Storage
	presignTTL time.Duration
	log        *zap.Logger
}

// NewService creates a gallery service. store may be nil when every catalog
// locator is already a URL.
func NewService(source CatalogSource, store storage.Storage, presignTTL time.Duration, log *zap.Logger) *Service {
	return &Service{source: source, store: store, presignTTL: presignTTL, log: log}
}

// Load returns a gallery over the current catalog with every filter enabled
func (s *Service) Load(ctx context.Context) (*Gallery, error) {
	items, err := s.source.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i] = s.resolve(ctx, items[i])
	}
	return New(items), nil
}

// Item returns the detail viewer of one catalog item without loading the rest
func (s *Service) Item(ctx context.Context, id string) (Viewer, error) {
	item, err := s.source.Item(ctx, id)
	if err != nil {
		return Viewer{}, err
	}
	return ViewerFor(s.resolve(ctx, item)), nil
}

func (s *Service) resolve(ctx context.Context, item models.MediaItem) models.MediaItem {
	if s.store == nil {
		return item
	}

	if storage.IsObjectKey(item.Thumbnail) {
		item.Thumbnail = s.store.GetPublicURL(item.Thumbnail)
	}
	if !storage.IsObjectKey(item.Source) {
		return item
	}

	if item.Category == models.CategoryVideo {
		signed, err := s.store.GetPresignedURL(ctx, item.Source, s.presignTTL)
		if err == nil {
			item.Source = signed
			return item
		}
		s.log.Warn("presigning catalog video failed", zap.String("id", item.ID), zap.Error(err))
	}
	item.Source = s.store.GetPublicURL(item.Source)
	return item
}
