package gallery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"festival-media-center/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticCatalog struct {
	items []models.MediaItem
	err   error
}

func (s staticCatalog) Catalog(context.Context) ([]models.MediaItem, error) {
	return append([]models.MediaItem(nil), s.items...), s.err
}

func (s staticCatalog) Item(_ context.Context, id string) (models.MediaItem, error) {
	for _, item := range s.items {
		if item.ID == id {
			return item, nil
		}
	}
	if s.err != nil {
		return models.MediaItem{}, s.err
	}
	return models.MediaItem{}, ErrItemNotFound
}

type fakeStorage struct {
	presignErr error
}

func (f *fakeStorage) Upload(context.Context, io.Reader, string, string) (string, error) {
	return "", errors.New("read only")
}

func (f *fakeStorage) Download(context.Context, string) (io.ReadCloser, error) {
	return nil, errors.New("not found")
}

func (f *fakeStorage) GetPublicURL(key string) string {
	return "https://cdn.example/" + key
}

func (f *fakeStorage) GetPresignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	if f.presignErr != nil {
		return "", f.presignErr
	}
	return fmt.Sprintf("https://signed.example/%s?ttl=%s", key, ttl), nil
}

var storedCatalog = []models.MediaItem{
	{ID: "1", Category: models.CategoryImage, Source: "https://images.example/a.jpg", Thumbnail: "https://images.example/a-thumb.jpg"},
	{ID: "2", Category: models.CategoryImage, Source: "uploads/invite.png", Thumbnail: "uploads/invite.png"},
	{ID: "3", Category: models.CategoryVideo, Source: "clips/dancers.mp4", Thumbnail: "/static/dancers.jpg"},
}

func TestService_ResolvesObjectKeys(t *testing.T) {
	svc := NewService(staticCatalog{items: storedCatalog}, &fakeStorage{}, time.Minute, zap.NewNop())

	g, err := svc.Load(context.Background())
	require.NoError(t, err)
	items := g.VisibleItems()
	require.Len(t, items, 3)

	assert.Equal(t, "https://images.example/a.jpg", items[0].Source)
	assert.Equal(t, "https://cdn.example/uploads/invite.png", items[1].Source)
	assert.Equal(t, "https://cdn.example/uploads/invite.png", items[1].Thumbnail)
	assert.Equal(t, "https://signed.example/clips/dancers.mp4?ttl=1m0s", items[2].Source)
	assert.Equal(t, "/static/dancers.jpg", items[2].Thumbnail)
}

func TestService_PresignFailureFallsBackToPublicURL(t *testing.T) {
	svc := NewService(staticCatalog{items: storedCatalog}, &fakeStorage{presignErr: errors.New("no credentials")}, time.Minute, zap.NewNop())

	g, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/clips/dancers.mp4", g.VisibleItems()[2].Source)
}

func TestService_WithoutStorage(t *testing.T) {
	svc := NewService(staticCatalog{items: storedCatalog}, nil, time.Minute, zap.NewNop())

	g, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "uploads/invite.png", g.VisibleItems()[1].Source)
}

func TestService_SourceError(t *testing.T) {
	svc := NewService(staticCatalog{err: errors.New("db down")}, nil, time.Minute, zap.NewNop())
	_, err := svc.Load(context.Background())
	assert.EqualError(t, err, "db down")
}

func TestService_Item(t *testing.T) {
	svc := NewService(staticCatalog{items: storedCatalog}, &fakeStorage{}, time.Minute, zap.NewNop())

	v, err := svc.Item(context.Background(), "3")
	require.NoError(t, err)
	assert.Equal(t, ViewerVideo, v.Kind)
	assert.Equal(t, "https://signed.example/clips/dancers.mp4?ttl=1m0s", v.Item.Source)

	v, err = svc.Item(context.Background(), "2")
	require.NoError(t, err)
	assert.Equal(t, ViewerImage, v.Kind)
	assert.Equal(t, "https://cdn.example/uploads/invite.png", v.Item.Source)

	_, err = svc.Item(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrItemNotFound)
}
