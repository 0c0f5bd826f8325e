package utils

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const genericBinary = "application/octet-stream"

// extensionTypes is the last-resort lookup when neither the client nor the
// content tell us what a file is
var extensionTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".heic": "image/heic",
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".webm": "video/webm",
}

// ResolveContentType returns the declared content type of an uploaded part,
// falling back to content sniffing and then to the file extension when the
// client declared nothing useful.
func ResolveContentType(declared, filename string, data []byte) string {
	if mediaType, _, err := mime.ParseMediaType(declared); err == nil && mediaType != genericBinary {
		return mediaType
	}

	// 1. Try detecting from file content
	if len(data) > 0 {
		detected := mimetype.Detect(data)
		if !detected.Is(genericBinary) {
			mediaType, _, _ := mime.ParseMediaType(detected.String())
			return mediaType
		}
	}

	// 2. Infer from file extension
	if mediaType, found := extensionTypes[strings.ToLower(filepath.Ext(filename))]; found {
		return mediaType
	}

	return genericBinary
}

// Dimensions holds width and height information
type Dimensions struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Orientation string `json:"orientation"`
}

// ImageDimensions decodes just the header of an image. It returns nil for
// content the standard decoders do not understand.
func ImageDimensions(data []byte) *Dimensions {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil
	}

	d := &Dimensions{Width: cfg.Width, Height: cfg.Height}
	switch {
	case d.Width > d.Height:
		d.Orientation = "landscape"
	case d.Width < d.Height:
		d.Orientation = "portrait"
	default:
		d.Orientation = "square"
	}
	return d
}
