package preview

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfRange is returned when removing a position the batch does not hold
var ErrIndexOutOfRange = errors.New("preview index out of range")

// Batch keeps accepted files and their locators as two index-aligned sequences.
// Every locator leaving the batch is revoked exactly once.
//
// A Batch is owned by a single form and is not safe for concurrent use.
type Batch struct {
	alloc    Allocator
	uploads  []Upload
	locators []Locator
}

// NewBatch creates an empty batch releasing locators through alloc
func NewBatch(alloc Allocator) *Batch {
	return &Batch{alloc: alloc}
}

// Add appends the uploads as one unit
func (b *Batch) Add(uploads ...Upload) {
	if len(uploads) == 0 {
		return
	}
	nextUploads := append(append(make([]Upload, 0, len(b.uploads)+len(uploads)), b.uploads...), uploads...)
	nextLocators := make([]Locator, 0, len(nextUploads))
	nextLocators = append(nextLocators, b.locators...)
	for _, u := range uploads {
		nextLocators = append(nextLocators, u.Locator)
	}
	b.uploads, b.locators = nextUploads, nextLocators
}

// Replace clears the batch and then adds the uploads
func (b *Batch) Replace(uploads ...Upload) {
	b.Clear()
	b.Add(uploads...)
}

// Remove revokes the locator at index and then drops the entry from both sequences
func (b *Batch) Remove(index int) (Upload, error) {
	if index < 0 || index >= len(b.uploads) {
		return Upload{}, fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, index, len(b.uploads))
	}

	removed := b.uploads[index]
	b.alloc.Revoke(b.locators[index])

	b.uploads = append(b.uploads[:index:index], b.uploads[index+1:]...)
	b.locators = append(b.locators[:index:index], b.locators[index+1:]...)
	return removed, nil
}

// Clear revokes every locator and empties the batch
func (b *Batch) Clear() int {
	for _, l := range b.locators {
		b.alloc.Revoke(l)
	}
	n := len(b.uploads)
	b.uploads = nil
	b.locators = nil
	return n
}

// Len returns the number of held uploads
func (b *Batch) Len() int {
	return len(b.uploads)
}

// Files returns a copy of the held files in order
func (b *Batch) Files() []File {
	files := make([]File, len(b.uploads))
	for i, u := range b.uploads {
		files[i] = u.File
	}
	return files
}

// Locators returns a copy of the held locators in order
func (b *Batch) Locators() []Locator {
	return append([]Locator(nil), b.locators...)
}

// Uploads returns a copy of the held uploads in order
func (b *Batch) Uploads() []Upload {
	return append([]Upload(nil), b.uploads...)
}
