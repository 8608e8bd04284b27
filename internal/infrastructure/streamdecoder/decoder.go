// Package streamdecoder decodes the msgpack frame stream returned by the
// NovelAI streaming image endpoint.
package streamdecoder

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/novelstudio/nai-gateway/internal/domain/imagegen"
	"github.com/novelstudio/nai-gateway/internal/infrastructure/metrics"
)

// Decoder folds a frame stream into the ordered list of final images.
type Decoder struct {
	maxFrame int
	log      zerolog.Logger
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithMaxFrameSize overrides the payload size ceiling.
func WithMaxFrameSize(n int) Option {
	return func(d *Decoder) {
		d.maxFrame = n
	}
}

func New(log zerolog.Logger, opts ...Option) *Decoder {
	d := &Decoder{
		maxFrame: MaxFrameSize,
		log:      log.With().Str("component", "streamdecoder").Logger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var _ imagegen.Decoder = (*Decoder)(nil)

// Decode reads r to the end. A truncated trailing frame keeps the images
// decoded so far; an undecodable payload fails the whole stream. A cancelled
// ctx discards everything collected.
func (d *Decoder) Decode(ctx context.Context, r io.Reader) ([]imagegen.Image, error) {
	fr := NewFrameReader(r, d.maxFrame)
	var images []imagegen.Image

	for payload, err := range fr.All() {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, imagegen.ClassifyTransport(ctxErr)
		}
		if err != nil {
			if errors.Is(err, ErrFrameTooLarge) {
				return nil, imagegen.ClassifyDecode(err)
			}
			return nil, imagegen.ClassifyTransport(err)
		}

		ev, err := DecodeEvent(payload)
		if err != nil {
			return nil, imagegen.ClassifyDecode(fmt.Errorf("frame %d: %w", fr.Frames()-1, err))
		}
		metrics.RecordFrame(ev.EventType)

		if !ev.IsFinal() {
			d.log.Trace().Str("event_type", ev.EventType).Int("step", ev.StepIndex).Msg("skipping event")
			continue
		}
		images = append(images, imagegen.Image(ev.Image))
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, imagegen.ClassifyTransport(ctxErr)
	}

	if fr.Truncated() {
		metrics.RecordTruncatedStream()
		d.log.Warn().Int("frames", fr.Frames()).Int("images", len(images)).Msg("stream ended inside a frame")
	}

	if len(images) == 0 {
		return nil, imagegen.NoImages()
	}
	return images, nil
}
