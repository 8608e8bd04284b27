package streamdecoder

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"iter"
)

const (
	headerSize = 4

	// MaxFrameSize is the default ceiling for a declared payload length.
	MaxFrameSize = 256 << 20

	initialPayloadBuffer = 64 << 10
)

// ErrFrameTooLarge marks a declared length above the configured ceiling.
var ErrFrameTooLarge = errors.New("frame length exceeds limit")

// State is the position of a FrameReader in the framing protocol.
type State int

const (
	StateAwaitingLength State = iota
	StateAwaitingPayload
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateAwaitingLength:
		return "awaiting_length"
	case StateAwaitingPayload:
		return "awaiting_payload"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// FrameReader splits a stream of [4-byte big-endian length][payload] frames.
// Partial frames are buffered until complete. A stream that ends inside a
// header or payload finishes cleanly; Truncated reports the latter.
type FrameReader struct {
	r        io.Reader
	maxFrame uint32

	state     State
	length    uint32
	frames    int
	truncated bool
	err       error
	header    [headerSize]byte
}

// NewFrameReader reads frames from r. maxFrame <= 0 selects MaxFrameSize.
func NewFrameReader(r io.Reader, maxFrame int) *FrameReader {
	if maxFrame <= 0 || maxFrame > MaxFrameSize {
		maxFrame = MaxFrameSize
	}
	return &FrameReader{r: r, maxFrame: uint32(maxFrame), state: StateAwaitingLength}
}

// State returns the current state.
func (fr *FrameReader) State() State { return fr.state }

// Frames returns the number of complete frames read so far.
func (fr *FrameReader) Frames() int { return fr.frames }

// Truncated reports whether the stream ended inside a declared payload.
func (fr *FrameReader) Truncated() bool { return fr.truncated }

// Next returns the next complete payload. It returns io.EOF once the stream
// is done and the terminal error after a failure.
func (fr *FrameReader) Next() ([]byte, error) {
	for {
		switch fr.state {
		case StateAwaitingLength:
			if _, err := io.ReadFull(fr.r, fr.header[:]); err != nil {
				if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
					fr.state = StateDone
					continue
				}
				return nil, fr.fail(fmt.Errorf("read frame header: %w", err))
			}
			fr.length = binary.BigEndian.Uint32(fr.header[:])
			if fr.length > fr.maxFrame {
				return nil, fr.fail(fmt.Errorf("frame %d declares %d bytes: %w", fr.frames, fr.length, ErrFrameTooLarge))
			}
			fr.state = StateAwaitingPayload

		case StateAwaitingPayload:
			var buf bytes.Buffer
			buf.Grow(int(min(fr.length, initialPayloadBuffer)))
			if _, err := io.CopyN(&buf, fr.r, int64(fr.length)); err != nil {
				if errors.Is(err, io.EOF) {
					fr.truncated = true
					fr.state = StateDone
					continue
				}
				return nil, fr.fail(fmt.Errorf("read frame %d payload: %w", fr.frames, err))
			}
			fr.frames++
			fr.state = StateAwaitingLength
			return buf.Bytes(), nil

		case StateDone:
			return nil, io.EOF

		default:
			return nil, fr.err
		}
	}
}

// All yields payloads until the stream is done. A failure is yielded once
// as the final element.
func (fr *FrameReader) All() iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		for {
			payload, err := fr.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(payload, err) || err != nil {
				return
			}
		}
	}
}

func (fr *FrameReader) fail(err error) error {
	fr.state = StateFailed
	fr.err = err
	return err
}

// AppendFrame appends one length-prefixed frame to dst.
func AppendFrame(dst, payload []byte) []byte {
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(payload)))
	return append(dst, payload...)
}

// WriteFrame writes one length-prefixed frame to w.
func WriteFrame(w io.Writer, payload []byte) error {
	_, err := w.Write(AppendFrame(make([]byte, 0, headerSize+len(payload)), payload))
	return err
}
