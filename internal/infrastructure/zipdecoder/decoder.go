// Package zipdecoder extracts images from the ZIP archive returned by the
// non-streaming NovelAI endpoint.
package zipdecoder

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/novelstudio/nai-gateway/internal/domain/imagegen"
)

// MaxArchiveSize bounds how much of the response body is buffered.
const MaxArchiveSize = 512 << 20

// Decoder reads every entry whose content sniffs as an image, in directory
// order. Entry names are not trusted.
type Decoder struct {
	maxSize int64
	log     zerolog.Logger
}

func New(log zerolog.Logger) *Decoder {
	return &Decoder{
		maxSize: MaxArchiveSize,
		log:     log.With().Str("component", "zipdecoder").Logger(),
	}
}

var _ imagegen.Decoder = (*Decoder)(nil)

func (d *Decoder) Decode(ctx context.Context, r io.Reader) ([]imagegen.Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, d.maxSize+1))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, imagegen.ClassifyTransport(ctxErr)
		}
		return nil, imagegen.ClassifyTransport(fmt.Errorf("read archive: %w", err))
	}
	if int64(len(data)) > d.maxSize {
		return nil, imagegen.ClassifyDecode(fmt.Errorf("archive exceeds %d bytes", d.maxSize))
	}
	if len(data) == 0 {
		return nil, imagegen.NoImages()
	}

	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, imagegen.ClassifyDecode(fmt.Errorf("open archive: %w", err))
	}

	var images []imagegen.Image
	for _, file := range archive.File {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, imagegen.ClassifyTransport(ctxErr)
		}
		if file.FileInfo().IsDir() {
			continue
		}
		img, err := readEntry(file)
		if err != nil {
			return nil, imagegen.ClassifyDecode(fmt.Errorf("read %s: %w", file.Name, err))
		}
		if !img.IsImage() {
			d.log.Debug().Str("entry", file.Name).Str("mime", img.MIMEType()).Msg("skipping non-image entry")
			continue
		}
		images = append(images, img)
	}

	d.log.Debug().Int("entries", len(archive.File)).Int("images", len(images)).Msg("archive decoded")

	if len(images) == 0 {
		return nil, imagegen.NoImages()
	}
	return images, nil
}

func readEntry(file *zip.File) (imagegen.Image, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	return imagegen.Image(data), nil
}
