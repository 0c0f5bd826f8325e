package forms

import (
	"fmt"
	"time"

	"festival-media-center/internal/models"
	"festival-media-center/internal/submission"
)

// Kind names one of the site's submission forms
type Kind string

const (
	KindWishes Kind = "wishes"
	KindPhotos Kind = "photos"
)

// ParseKind resolves a form kind from a route parameter
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindWishes, KindPhotos:
		return Kind(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Spec describes how one form kind accepts media and validates a submission
type Spec struct {
	Kind   Kind                 `json:"kind"`
	Accept models.MediaCategory `json:"accept"`
	// MaxFiles caps the attached media; a new batch replaces the old one when it is 1
	MaxFiles int              `json:"max_files,omitempty"`
	Rules    submission.Rules `json:"-"`
}

// Replaces reports whether attaching swaps out the previous file
func (s Spec) Replaces() bool {
	return s.MaxFiles == 1
}

// Latencies sets the simulated round trip per form kind
type Latencies struct {
	Wishes time.Duration
	Photos time.Duration
}

// DefaultLatencies match the delays the site has always shown
var DefaultLatencies = Latencies{
	Wishes: 1500 * time.Millisecond,
	Photos: 2000 * time.Millisecond,
}

// Specs returns the definition of every form kind
func Specs(l Latencies) map[Kind]Spec {
	return map[Kind]Spec{
		KindWishes: {
			Kind:     KindWishes,
			Accept:   models.CategoryVideo,
			MaxFiles: 1,
			Rules: submission.Rules{
				MissingName:    "Please enter your name.",
				MissingContent: "Please enter a wish or upload a video.",
				Success:        "Your wish has been submitted successfully!",
				Latency:        l.Wishes,
			},
		},
		KindPhotos: {
			Kind:   KindPhotos,
			Accept: models.CategoryImage,
			Rules: submission.Rules{
				MissingName:    "Please enter your name.",
				MissingContent: "Please add at least one image to upload",
				MediaRequired:  true,
				Success:        "Your photos have been uploaded successfully!",
				Latency:        l.Photos,
			},
		},
	}
}
