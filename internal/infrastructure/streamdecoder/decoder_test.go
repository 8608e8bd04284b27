package streamdecoder

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/novelstudio/nai-gateway/internal/domain/imagegen"
)

func frameOf(t *testing.T, ev Event) []byte {
	t.Helper()
	payload, err := EncodeEvent(ev)
	require.NoError(t, err)
	return AppendFrame(nil, payload)
}

func streamOf(t *testing.T, events ...Event) []byte {
	t.Helper()
	var out []byte
	for _, ev := range events {
		out = append(out, frameOf(t, ev)...)
	}
	return out
}

func newTestDecoder() *Decoder {
	return New(zerolog.Nop())
}

func TestDecode_SkipsNonImageEvents(t *testing.T) {
	stream := streamOf(t,
		Event{EventType: EventIntermediate, StepIndex: 3, Image: []byte("preview")},
		Event{EventType: EventFinal, Image: []byte("png-1")},
	)

	images, err := newTestDecoder().Decode(context.Background(), bytes.NewReader(stream))

	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, imagegen.Image("png-1"), images[0])
}

func TestDecode_PreservesFrameOrder(t *testing.T) {
	stream := streamOf(t,
		Event{EventType: EventFinal, SampleIndex: 0, Image: []byte("a")},
		Event{EventType: EventIntermediate, SampleIndex: 1, StepIndex: 10},
		Event{EventType: EventImage, SampleIndex: 1, Image: []byte("b")},
		Event{EventType: EventFinal, SampleIndex: 2, Image: []byte("c")},
	)

	images, err := newTestDecoder().Decode(context.Background(), bytes.NewReader(stream))

	require.NoError(t, err)
	assert.Equal(t, []imagegen.Image{imagegen.Image("a"), imagegen.Image("b"), imagegen.Image("c")}, images)
}

func TestDecode_FinalWithoutImageIsSkipped(t *testing.T) {
	stream := streamOf(t,
		Event{EventType: EventFinal},
		Event{EventType: EventFinal, Image: []byte("x")},
	)

	images, err := newTestDecoder().Decode(context.Background(), bytes.NewReader(stream))

	require.NoError(t, err)
	assert.Len(t, images, 1)
}

func TestDecode_TruncatedTrailerKeepsImages(t *testing.T) {
	stream := streamOf(t, Event{EventType: EventFinal, Image: []byte("kept")})
	stream = binary.BigEndian.AppendUint32(stream, 4096)
	stream = append(stream, 0x82, 0xa1)

	images, err := newTestDecoder().Decode(context.Background(), bytes.NewReader(stream))

	require.NoError(t, err)
	assert.Equal(t, []imagegen.Image{imagegen.Image("kept")}, images)
	assert.False(t, imagegen.IsKind(err, imagegen.KindStreamDecodeFailure))
}

func TestDecode_EmptyStreamIsNoImages(t *testing.T) {
	images, err := newTestDecoder().Decode(context.Background(), bytes.NewReader(nil))

	assert.Nil(t, images)
	require.Error(t, err)
	assert.True(t, imagegen.IsKind(err, imagegen.KindNoImagesProduced))
	assert.False(t, imagegen.IsKind(err, imagegen.KindStreamDecodeFailure))
}

func TestDecode_OnlyProgressEventsIsNoImages(t *testing.T) {
	stream := streamOf(t,
		Event{EventType: EventIntermediate, StepIndex: 1},
		Event{EventType: EventIntermediate, StepIndex: 2},
	)

	_, err := newTestDecoder().Decode(context.Background(), bytes.NewReader(stream))

	assert.True(t, imagegen.IsKind(err, imagegen.KindNoImagesProduced))
}

func TestDecode_MalformedInteriorPayloadFails(t *testing.T) {
	stream := streamOf(t, Event{EventType: EventFinal, Image: []byte("first")})
	stream = append(stream, AppendFrame(nil, []byte{0xc1})...)
	stream = append(stream, frameOf(t, Event{EventType: EventFinal, Image: []byte("never")})...)

	images, err := newTestDecoder().Decode(context.Background(), bytes.NewReader(stream))

	assert.Nil(t, images)
	assert.True(t, imagegen.IsKind(err, imagegen.KindStreamDecodeFailure))
}

func TestDecode_NonMapPayloadFails(t *testing.T) {
	payload, err := msgpack.Marshal([]string{"final"})
	require.NoError(t, err)

	_, err = newTestDecoder().Decode(context.Background(), bytes.NewReader(AppendFrame(nil, payload)))

	assert.True(t, imagegen.IsKind(err, imagegen.KindStreamDecodeFailure))
}

func TestDecode_OversizedFrameIsDecodeFailure(t *testing.T) {
	stream := binary.BigEndian.AppendUint32(nil, 1<<20)
	stream = append(stream, make([]byte, 32)...)

	_, err := New(zerolog.Nop(), WithMaxFrameSize(1024)).Decode(context.Background(), bytes.NewReader(stream))

	assert.True(t, imagegen.IsKind(err, imagegen.KindStreamDecodeFailure))
}

func TestDecode_ToleratesLooseFieldTypes(t *testing.T) {
	payload, err := msgpack.Marshal(map[string]any{
		"event_type": "final",
		"samp_ix":    2.0,
		"step_ix":    int64(28),
		"gen_id":     12345,
		"sigma":      float32(0.5),
		"image":      []byte("img"),
		"extra":      []int{1, 2, 3},
	})
	require.NoError(t, err)

	ev, err := DecodeEvent(payload)

	require.NoError(t, err)
	assert.Equal(t, "final", ev.EventType)
	assert.Equal(t, 2, ev.SampleIndex)
	assert.Equal(t, 28, ev.StepIndex)
	assert.Equal(t, "12345", ev.GenID)
	assert.InDelta(t, 0.5, ev.Sigma, 1e-6)
	assert.Equal(t, []byte("img"), ev.Image)
}

func TestDecodeEvent_FloatIndexes(t *testing.T) {
	payload, err := msgpack.Marshal(map[string]any{
		"event_type": "intermediate",
		"samp_ix":    float32(1),
		"step_ix":    int8(-1),
		"sigma":      3,
	})
	require.NoError(t, err)

	ev, err := DecodeEvent(payload)

	require.NoError(t, err)
	assert.Equal(t, 1, ev.SampleIndex)
	assert.Equal(t, -1, ev.StepIndex)
	assert.Equal(t, 3.0, ev.Sigma)

	fractional, err := msgpack.Marshal(map[string]any{"samp_ix": 1.5})
	require.NoError(t, err)
	_, err = DecodeEvent(fractional)
	assert.Error(t, err)
}

func TestDecode_NilPayloadFails(t *testing.T) {
	stream := AppendFrame(nil, []byte{0xc0})
	stream = append(stream, frameOf(t, Event{EventType: EventFinal, Image: []byte("after")})...)

	images, err := newTestDecoder().Decode(context.Background(), bytes.NewReader(stream))

	assert.Nil(t, images)
	assert.True(t, imagegen.IsKind(err, imagegen.KindStreamDecodeFailure))
	assert.ErrorIs(t, err, errNilEvent)
}

func TestDecode_TrailingBytesAfterEventFails(t *testing.T) {
	payload, err := EncodeEvent(Event{EventType: EventFinal, Image: []byte("img")})
	require.NoError(t, err)
	payload = append(payload, 0xc1, 0xc1)

	images, err := newTestDecoder().Decode(context.Background(), bytes.NewReader(AppendFrame(nil, payload)))

	assert.Nil(t, images)
	assert.True(t, imagegen.IsKind(err, imagegen.KindStreamDecodeFailure))
	assert.ErrorIs(t, err, errTrailingBytes)
}

func TestDecodeEvent_EmptyPayloadFails(t *testing.T) {
	_, err := DecodeEvent(nil)

	assert.Error(t, err)
}

func TestDecode_CancelledContextDiscardsImages(t *testing.T) {
	stream := streamOf(t,
		Event{EventType: EventFinal, Image: []byte("a")},
		Event{EventType: EventFinal, Image: []byte("b")},
	)
	ctx, cancel := context.WithCancel(context.Background())
	r := &cancelAfterReader{r: bytes.NewReader(stream), after: len(frameOf(t, Event{EventType: EventFinal, Image: []byte("a")})), cancel: cancel}

	images, err := newTestDecoder().Decode(ctx, r)

	assert.Nil(t, images)
	require.Error(t, err)
	assert.True(t, imagegen.IsKind(err, imagegen.KindUpstreamFailure))
	assert.ErrorIs(t, err, context.Canceled)
}

type cancelAfterReader struct {
	r      io.Reader
	after  int
	read   int
	cancel context.CancelFunc
}

func (c *cancelAfterReader) Read(p []byte) (int, error) {
	if c.read >= c.after {
		c.cancel()
	}
	if remaining := c.after - c.read; remaining > 0 && len(p) > remaining {
		p = p[:remaining]
	}
	n, err := c.r.Read(p)
	c.read += n
	return n, err
}
