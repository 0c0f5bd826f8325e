package database

import (
	"context"
	"testing"
	"time"

	"festival-media-center/internal/config"
	"festival-media-center/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "mysql"}, zap.NewNop())
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestDefaultSeed(t *testing.T) {
	seed, err := DefaultSeed()
	require.NoError(t, err)

	require.Len(t, seed.Catalog, 6)
	images, videos := 0, 0
	for i, item := range seed.Catalog {
		assert.Equal(t, i, item.SortOrder)
		assert.NotEmpty(t, item.Caption)
		switch item.Category {
		case models.CategoryImage:
			images++
		case models.CategoryVideo:
			videos++
		}
	}
	assert.Equal(t, 5, images)
	assert.Equal(t, 1, videos)

	require.Len(t, seed.Wishes, 2)
	assert.Equal(t, "Ahmed Khalid", seed.Wishes[0].Author)
	assert.Equal(t, 2*time.Hour, seed.Wishes[0].Age)
}

func TestSeed_ApplyIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	now := time.Date(2026, 6, 20, 20, 0, 0, 0, time.UTC)

	seed, err := DefaultSeed()
	require.NoError(t, err)
	require.NoError(t, seed.Apply(ctx, db, now))
	require.NoError(t, seed.Apply(ctx, db, now))

	store := NewStore(db)
	catalog, err := store.Catalog(ctx)
	require.NoError(t, err)
	require.Len(t, catalog, 6)
	assert.Equal(t, "1", catalog[0].ID)
	assert.Equal(t, "6", catalog[5].ID)

	wishes, err := store.Wishes(ctx)
	require.NoError(t, err)
	require.Len(t, wishes, 2)
	assert.Equal(t, "Ahmed Khalid", wishes[0].Author, "newest first")
	assert.Equal(t, "AK", wishes[0].Initials)
	assert.Equal(t, "LS", wishes[1].Initials)
}

func TestStore_Item(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	seed, err := ParseSeed([]byte(`
catalog:
  - id: dancers
    category: video
    source: clips/dancers.mp4
    caption: Dancers
`))
	require.NoError(t, err)
	require.NoError(t, seed.Apply(ctx, db, time.Now()))

	store := NewStore(db)
	item, err := store.Item(ctx, "dancers")
	require.NoError(t, err)
	assert.Equal(t, models.CategoryVideo, item.Category)

	_, err = store.Item(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSeed_RejectsUnknownCategory(t *testing.T) {
	db := openTestDB(t)

	seed, err := ParseSeed([]byte(`
catalog:
  - id: x
    category: audio
    source: a.mp3
`))
	require.NoError(t, err)
	assert.Error(t, seed.Apply(context.Background(), db, time.Now()))
}
