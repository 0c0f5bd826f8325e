// Package intake turns file-picker and drag-and-drop payloads into accepted
// uploads with preview locators.
package intake

import (
	"fmt"

	"festival-media-center/internal/models"
	"festival-media-center/internal/preview"
	"festival-media-center/internal/utils"
)

// Source tells where a candidate file came from
type Source string

const (
	SourcePicker Source = "picker"
	SourceDrop   Source = "drop"
)

// Candidate is a file offered to a form, before validation
type Candidate struct {
	preview.File
	Source Source `json:"source"`
}

// Rejection records a candidate that was not accepted and why
type Rejection struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Reason      string `json:"reason"`
}

// Result is the outcome of validating one batch
type Result struct {
	Accepted []preview.Upload `json:"accepted"`
	Rejected []Rejection      `json:"rejected,omitempty"`
	// Warning is set when nothing in the batch was accepted
	Warning string `json:"warning,omitempty"`
	// Notice summarises what was accepted
	Notice string `json:"notice,omitempty"`
}

// Limits caps the size of a single accepted file per category. Zero means no cap.
type Limits struct {
	MaxImageSize int64
	MaxVideoSize int64
}

func (l Limits) maxFor(c models.MediaCategory) int64 {
	switch c {
	case models.CategoryImage:
		return l.MaxImageSize
	case models.CategoryVideo:
		return l.MaxVideoSize
	}
	return 0
}

// Intake validates candidate batches against an expected category
type Intake struct {
	alloc  preview.Allocator
	limits Limits
}

// New creates an Intake allocating preview locators from alloc
func New(alloc preview.Allocator, limits Limits) *Intake {
	return &Intake{alloc: alloc, limits: limits}
}

// Accept partitions the batch into accepted and rejected files. A file is
// accepted when its content type starts with the expected category's prefix.
// Each accepted file gets exactly one preview locator. Bad files never fail
// the call; when nothing is accepted a single warning names the category.
func (in *Intake) Accept(batch []Candidate, accept models.MediaCategory) Result {
	var res Result

	for _, c := range batch {
		category, ok := models.CategoryOf(c.ContentType)
		if !ok || !accept.Matches(c.ContentType) {
			res.Rejected = append(res.Rejected, Rejection{
				Name:        c.Name,
				ContentType: c.ContentType,
				Reason:      fmt.Sprintf("not %s", describe(accept)),
			})
			continue
		}
		if max := in.limits.maxFor(category); max > 0 && c.Size > max {
			res.Rejected = append(res.Rejected, Rejection{
				Name:        c.Name,
				ContentType: c.ContentType,
				Reason:      fmt.Sprintf("larger than %d bytes", max),
			})
			continue
		}

		upload := preview.Upload{
			Category: category,
			File:     c.File,
			Locator:  in.alloc.Allocate(c.File),
		}
		if category == models.CategoryImage {
			upload.Dimensions = utils.ImageDimensions(c.Data)
		}
		res.Accepted = append(res.Accepted, upload)
	}

	if len(res.Accepted) == 0 {
		res.Warning = WarningFor(accept)
	} else {
		res.Notice = fmt.Sprintf("%d %s(s) added", len(res.Accepted), noun(accept))
	}
	return res
}

// WarningFor returns the message shown when a batch has no acceptable file
func WarningFor(accept models.MediaCategory) string {
	switch accept {
	case models.CategoryImage:
		return "Please upload valid image files (JPEG, PNG, etc.)"
	case models.CategoryVideo:
		return "Please upload a valid video file."
	default:
		return "Please upload valid image or video files."
	}
}

func describe(accept models.MediaCategory) string {
	switch accept {
	case models.CategoryImage:
		return "an image file"
	case models.CategoryVideo:
		return "a video file"
	}
	return "an image or video file"
}

func noun(accept models.MediaCategory) string {
	switch accept {
	case models.CategoryImage, models.CategoryVideo:
		return string(accept)
	}
	return "file"
}
