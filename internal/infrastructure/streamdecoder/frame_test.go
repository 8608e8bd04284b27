package streamdecoder

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameReader_ReadsFramesInOrder(t *testing.T) {
	var stream []byte
	stream = AppendFrame(stream, []byte("one"))
	stream = AppendFrame(stream, []byte("two"))

	fr := NewFrameReader(bytes.NewReader(stream), 0)

	first, err := fr.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), first)
	assert.Equal(t, StateAwaitingLength, fr.State())

	second, err := fr.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), second)

	_, err = fr.Next()
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, StateDone, fr.State())
	assert.Equal(t, 2, fr.Frames())
	assert.False(t, fr.Truncated())
}

func TestFrameReader_BuffersPartialReads(t *testing.T) {
	var stream []byte
	stream = AppendFrame(stream, bytes.Repeat([]byte{0xAB}, 1000))

	fr := NewFrameReader(iotest.OneByteReader(bytes.NewReader(stream)), 0)

	payload, err := fr.Next()
	require.NoError(t, err)
	assert.Len(t, payload, 1000)
}

func TestFrameReader_ShortHeaderEndsCleanly(t *testing.T) {
	stream := AppendFrame(nil, []byte("ok"))
	stream = append(stream, 0x00, 0x00)

	fr := NewFrameReader(bytes.NewReader(stream), 0)

	_, err := fr.Next()
	require.NoError(t, err)
	_, err = fr.Next()
	assert.ErrorIs(t, err, io.EOF)
	assert.False(t, fr.Truncated())
}

func TestFrameReader_TruncatedPayload(t *testing.T) {
	stream := AppendFrame(nil, []byte("complete"))
	stream = binary.BigEndian.AppendUint32(stream, 100)
	stream = append(stream, []byte("short")...)

	fr := NewFrameReader(bytes.NewReader(stream), 0)

	var payloads [][]byte
	for payload, err := range fr.All() {
		require.NoError(t, err)
		payloads = append(payloads, payload)
	}

	assert.Equal(t, [][]byte{[]byte("complete")}, payloads)
	assert.True(t, fr.Truncated())
	assert.Equal(t, StateDone, fr.State())
}

func TestFrameReader_EmptyStream(t *testing.T) {
	fr := NewFrameReader(bytes.NewReader(nil), 0)

	_, err := fr.Next()
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 0, fr.Frames())
}

func TestFrameReader_RejectsOversizedFrame(t *testing.T) {
	stream := binary.BigEndian.AppendUint32(nil, 1<<20)

	fr := NewFrameReader(bytes.NewReader(stream), 1024)

	_, err := fr.Next()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFrameTooLarge)
	assert.Equal(t, StateFailed, fr.State())

	_, again := fr.Next()
	assert.Equal(t, err, again)
}

func TestFrameReader_ReadErrorFails(t *testing.T) {
	boom := errors.New("connection reset")
	fr := NewFrameReader(iotest.ErrReader(boom), 0)

	_, err := fr.Next()
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateFailed, fr.State())
}

func TestFrameReader_AllYieldsFailureOnce(t *testing.T) {
	stream := binary.BigEndian.AppendUint32(nil, 1<<20)
	fr := NewFrameReader(bytes.NewReader(stream), 16)

	var errs []error
	for _, err := range fr.All() {
		errs = append(errs, err)
	}

	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrFrameTooLarge)
}

func TestWriteFrame(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, []byte("abc")))

	assert.Equal(t, []byte{0, 0, 0, 3, 'a', 'b', 'c'}, buf.Bytes())
}
