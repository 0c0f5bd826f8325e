// Package preview holds pending uploads and the revocable locators used to
// display them before they are submitted.
package preview

import (
	"fmt"
	"strings"
	"sync"

	"festival-media-center/internal/models"
	"festival-media-center/internal/utils"

	"github.com/google/uuid"
)

// File is a user-selected file held in memory until its form is submitted or reset
type File struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Data        []byte `json:"-"`
}

// Locator is a short-lived reference to a held file, usable for local display only
type Locator struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

// Upload pairs an accepted file with its preview locator
type Upload struct {
	Category models.MediaCategory `json:"category"`
	File     File                 `json:"file"`
	Locator  Locator              `json:"preview"`
	// Dimensions is set for images the standard decoders understand
	Dimensions *utils.Dimensions `json:"dimensions,omitempty"`
}

// Allocator hands out and revokes preview locators
type Allocator interface {
	Allocate(file File) Locator
	Revoke(locator Locator) bool
}

// Registry is the process-local store backing preview locators
type Registry struct {
	mu      sync.RWMutex
	baseURL string
	entries map[string]File
}

// NewRegistry creates a registry whose locators resolve under baseURL
func NewRegistry(baseURL string) *Registry {
	return &Registry{
		baseURL: strings.TrimRight(baseURL, "/"),
		entries: make(map[string]File),
	}
}

// Allocate registers the file and returns a fresh locator for it
func (r *Registry) Allocate(file File) Locator {
	token := uuid.NewString()

	r.mu.Lock()
	r.entries[token] = file
	r.mu.Unlock()

	return Locator{
		Token: token,
		URL:   fmt.Sprintf("%s/%s", r.baseURL, token),
	}
}

// Revoke releases the locator. It returns false if the locator was unknown or
// already revoked.
func (r *Registry) Revoke(locator Locator) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[locator.Token]; !ok {
		return false
	}
	delete(r.entries, locator.Token)
	return true
}

// Open returns the file behind a live token
func (r *Registry) Open(token string) (File, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	file, ok := r.entries[token]
	return file, ok
}

// Live returns the number of locators that have not been revoked
func (r *Registry) Live() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
