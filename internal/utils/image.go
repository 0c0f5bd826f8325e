package utils

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
)

// maxDimension caps requested preview sizes
const maxDimension = 4096

// TransformationOptions defines how a preview image is rendered
type TransformationOptions struct {
	Width   int    // Width in pixels
	Height  int    // Height in pixels
	Fit     string // Fit mode: "contain", "cover", "fill"
	Quality int    // JPEG quality (1-100)
	Format  string // Output format: "jpeg", "png"
	Preset  string // Predefined transformation preset
}

// IsEmpty checks if any transformation options are set
func (t *TransformationOptions) IsEmpty() bool {
	return t.Width == 0 && t.Height == 0 && t.Fit == "" &&
		t.Quality == 0 && t.Format == "" && t.Preset == ""
}

// Validate checks if the transformation options are valid
func (t *TransformationOptions) Validate() error {
	if t.Width < 0 || t.Height < 0 {
		return fmt.Errorf("width and height must be non-negative")
	}
	if t.Width > maxDimension || t.Height > maxDimension {
		return fmt.Errorf("maximum allowed dimension is %d pixels", maxDimension)
	}
	if t.Fit != "" && t.Fit != "contain" && t.Fit != "cover" && t.Fit != "fill" {
		return fmt.Errorf("invalid fit mode: %s", t.Fit)
	}
	if t.Quality < 0 || t.Quality > 100 {
		return fmt.Errorf("quality must be between 0 and 100")
	}
	if t.Format != "" && t.Format != "jpeg" && t.Format != "jpg" && t.Format != "png" {
		return fmt.Errorf("unsupported format: %s", t.Format)
	}
	return nil
}

// ApplyPreset applies a predefined transformation preset
func ApplyPreset(options *TransformationOptions, preset string) error {
	switch preset {
	case "thumbnail":
		// gallery grid tiles are 400x300
		options.Width = 400
		options.Height = 300
		options.Fit = "cover"
		options.Quality = 80
	case "square":
		// upload preview tiles are square
		options.Width = 300
		options.Height = 300
		options.Fit = "cover"
		options.Quality = 80
	case "viewer":
		options.Width = 1600
		options.Height = 1200
		options.Fit = "contain"
		options.Quality = 85
	default:
		return fmt.Errorf("unknown preset: %s", preset)
	}
	return nil
}

// TransformImage renders the input image with the given options and returns
// the encoded bytes with their content type
func TransformImage(input io.Reader, options TransformationOptions) ([]byte, string, error) {
	src, err := imaging.Decode(input, imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %v", err)
	}

	img := imaging.Clone(src)
	if options.Width > 0 || options.Height > 0 {
		img = resize(img, options.Width, options.Height, options.Fit)
	}

	var buf bytes.Buffer
	switch options.Format {
	case "png":
		err = imaging.Encode(&buf, img, imaging.PNG)
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode transformed image: %v", err)
		}
		return buf.Bytes(), "image/png", nil
	default:
		quality := options.Quality
		if quality == 0 {
			quality = 85
		}
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality))
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode transformed image: %v", err)
		}
		return buf.Bytes(), "image/jpeg", nil
	}
}

func resize(img *image.NRGBA, width, height int, fit string) *image.NRGBA {
	bounds := img.Bounds()

	// If only one dimension is specified, calculate the other
	if width == 0 {
		width = int(float64(bounds.Dx()) * float64(height) / float64(bounds.Dy()))
	} else if height == 0 {
		height = int(float64(bounds.Dy()) * float64(width) / float64(bounds.Dx()))
	}

	switch fit {
	case "cover":
		return imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos)
	case "fill":
		return imaging.Resize(img, width, height, imaging.Lanczos)
	default:
		return imaging.Fit(img, width, height, imaging.Lanczos)
	}
}

// ParseTransformOptions reads transform options from query values, applying
// a preset first so explicit values can override it
func ParseTransformOptions(query func(string) string) (TransformationOptions, error) {
	var options TransformationOptions
	if preset := query("preset"); preset != "" {
		if err := ApplyPreset(&options, preset); err != nil {
			return options, err
		}
		options.Preset = preset
	}
	if w := ParseIntOption(query("width")); w != 0 {
		options.Width = w
	}
	if h := ParseIntOption(query("height")); h != 0 {
		options.Height = h
	}
	if fit := query("fit"); fit != "" {
		options.Fit = fit
	}
	if q := ParseIntOption(query("quality")); q != 0 {
		options.Quality = q
	}
	if format := query("format"); format != "" {
		options.Format = format
	}
	return options, options.Validate()
}
