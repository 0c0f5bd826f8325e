package preview

import (
	"fmt"
	"math/rand"
	"testing"

	"festival-media-center/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingAllocator wraps a Registry and records how often each token is revoked
type countingAllocator struct {
	*Registry
	revoked map[string]int
}

func newCountingAllocator() *countingAllocator {
	return &countingAllocator{Registry: NewRegistry("/previews"), revoked: make(map[string]int)}
}

func (c *countingAllocator) Revoke(l Locator) bool {
	c.revoked[l.Token]++
	return c.Registry.Revoke(l)
}

func upload(alloc Allocator, name string) Upload {
	f := File{Name: name, ContentType: "image/png", Size: 3, Data: []byte("png")}
	return Upload{Category: models.CategoryImage, File: f, Locator: alloc.Allocate(f)}
}

func TestBatch_AddRemoveKeepsAlignment(t *testing.T) {
	alloc := newCountingAllocator()
	b := NewBatch(alloc)

	b.Add(upload(alloc, "a.png"), upload(alloc, "b.png"), upload(alloc, "c.png"))
	require.Equal(t, 3, b.Len())

	locs := b.Locators()
	removed, err := b.Remove(1)
	require.NoError(t, err)
	assert.Equal(t, "b.png", removed.File.Name)
	assert.Equal(t, 1, alloc.revoked[locs[1].Token])

	files := b.Files()
	require.Len(t, files, 2)
	assert.Equal(t, "a.png", files[0].Name)
	assert.Equal(t, "c.png", files[1].Name)
	assert.Equal(t, []Locator{locs[0], locs[2]}, b.Locators())

	_, ok := alloc.Open(locs[1].Token)
	assert.False(t, ok, "removed locator must no longer resolve")
	assert.Equal(t, 2, alloc.Live())
}

func TestBatch_RemoveOutOfRange(t *testing.T) {
	alloc := newCountingAllocator()
	b := NewBatch(alloc)
	b.Add(upload(alloc, "a.png"))

	_, err := b.Remove(1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = b.Remove(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	assert.Equal(t, 1, b.Len())
	assert.Empty(t, alloc.revoked)
}

func TestBatch_ClearRevokesAll(t *testing.T) {
	alloc := newCountingAllocator()
	b := NewBatch(alloc)
	b.Add(upload(alloc, "a.png"), upload(alloc, "b.png"))
	locs := b.Locators()

	assert.Equal(t, 2, b.Clear())
	assert.Equal(t, 0, b.Len())
	assert.Empty(t, b.Locators())
	for _, l := range locs {
		assert.Equal(t, 1, alloc.revoked[l.Token])
	}
	assert.Equal(t, 0, alloc.Live())

	assert.Equal(t, 0, b.Clear())
}

func TestBatch_ReplaceRevokesPrevious(t *testing.T) {
	alloc := newCountingAllocator()
	b := NewBatch(alloc)
	b.Add(upload(alloc, "old.mp4"))
	old := b.Locators()[0]

	b.Replace(upload(alloc, "new.mp4"))
	require.Equal(t, 1, b.Len())
	assert.Equal(t, "new.mp4", b.Files()[0].Name)
	assert.Equal(t, 1, alloc.revoked[old.Token])
}

func TestBatch_RandomOperationsNeverLeak(t *testing.T) {
	alloc := newCountingAllocator()
	b := NewBatch(alloc)
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		switch op := rng.Intn(4); {
		case op < 2:
			n := rng.Intn(3) + 1
			batch := make([]Upload, n)
			for j := range batch {
				batch[j] = upload(alloc, fmt.Sprintf("%d-%d.png", i, j))
			}
			b.Add(batch...)
		case op == 2 && b.Len() > 0:
			_, err := b.Remove(rng.Intn(b.Len()))
			require.NoError(t, err)
		case op == 3 && rng.Intn(5) == 0:
			b.Clear()
		}

		require.Equal(t, b.Len(), len(b.Files()))
		require.Equal(t, b.Len(), len(b.Locators()))
		require.Equal(t, b.Len(), alloc.Live(), "every held locator is live and every released one is revoked")
		for i, u := range b.Uploads() {
			require.Equal(t, u.Locator, b.Locators()[i])
		}
	}

	b.Clear()
	for token, n := range alloc.revoked {
		assert.Equal(t, 1, n, "token %s revoked more than once", token)
	}
	assert.Equal(t, 0, alloc.Live())
}
