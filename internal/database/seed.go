package database

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"festival-media-center/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed seed/catalog.yaml
var seedYAML []byte

// Seed is the content loaded into an empty database
type Seed struct {
	Catalog []models.MediaItem `yaml:"catalog"`
	Wishes  []SeedWish         `yaml:"wishes"`
}

// SeedWish is a feed entry whose timestamp is relative to seeding time
type SeedWish struct {
	Author  string        `yaml:"author"`
	Message string        `yaml:"message"`
	Age     time.Duration `yaml:"age"`
}

// ParseSeed decodes a seed document. Catalog order becomes the sort order.
func ParseSeed(data []byte) (*Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse seed: %w", err)
	}
	for i := range s.Catalog {
		s.Catalog[i].SortOrder = i
	}
	return &s, nil
}

// DefaultSeed returns the embedded catalog and sample wishes
func DefaultSeed() (*Seed, error) {
	return ParseSeed(seedYAML)
}

// Apply upserts the catalog and inserts the wishes when the feed is empty
func (s *Seed) Apply(ctx context.Context, db *gorm.DB, now time.Time) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(s.Catalog) > 0 {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&s.Catalog).Error; err != nil {
				return fmt.Errorf("failed to seed catalog: %w", err)
			}
		}

		var count int64
		if err := tx.Model(&models.WishEntry{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 || len(s.Wishes) == 0 {
			return nil
		}

		wishes := make([]models.WishEntry, len(s.Wishes))
		for i, w := range s.Wishes {
			wishes[i] = models.WishEntry{
				Author:    w.Author,
				Message:   w.Message,
				CreatedAt: now.Add(-w.Age),
			}
		}
		if err := tx.Create(&wishes).Error; err != nil {
			return fmt.Errorf("failed to seed wishes: %w", err)
		}
		return nil
	})
}
