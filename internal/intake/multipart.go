package intake

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"

	"festival-media-center/internal/preview"
	"festival-media-center/internal/utils"

	"golang.org/x/sync/errgroup"
)

const (
	// PickerField is the multipart field used by the file picker
	PickerField = "files"
	// DropField is the multipart field used by the drag-and-drop zone
	DropField = "dropped"

	maxConcurrentReads = 4
)

// FromMultipart collects picker and drop-zone parts of a form into one
// candidate list, picker files first.
func FromMultipart(ctx context.Context, form *multipart.Form) ([]Candidate, error) {
	if form == nil {
		return nil, nil
	}
	picked, err := FromHeaders(ctx, form.File[PickerField], SourcePicker)
	if err != nil {
		return nil, err
	}
	dropped, err := FromHeaders(ctx, form.File[DropField], SourceDrop)
	if err != nil {
		return nil, err
	}
	return append(picked, dropped...), nil
}

// FromHeaders reads every part into memory, keeping input order
func FromHeaders(ctx context.Context, headers []*multipart.FileHeader, source Source) ([]Candidate, error) {
	candidates := make([]Candidate, len(headers))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentReads)
	for i, fh := range headers {
		i, fh := i, fh
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			file, err := readPart(fh)
			if err != nil {
				return err
			}
			candidates[i] = Candidate{File: file, Source: source}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return candidates, nil
}

func readPart(fh *multipart.FileHeader) (preview.File, error) {
	f, err := fh.Open()
	if err != nil {
		return preview.File{}, fmt.Errorf("failed to open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return preview.File{}, fmt.Errorf("failed to read %s: %w", fh.Filename, err)
	}

	return preview.File{
		Name:        fh.Filename,
		ContentType: utils.ResolveContentType(fh.Header.Get("Content-Type"), fh.Filename, data),
		Size:        int64(len(data)),
		Data:        data,
	}, nil
}
