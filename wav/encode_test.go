package wav

import (
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AOMediaCodec/iamf-tools/pcm"
)

// seekBuffer is an in-memory io.WriteSeeker.
type seekBuffer struct {
	data []byte
	pos  int
}

func (b *seekBuffer) Write(p []byte) (int, error) {
	if need := b.pos + len(p); need > len(b.data) {
		b.data = append(b.data, make([]byte, need-len(b.data))...)
	}
	n := copy(b.data[b.pos:], p)
	b.pos += n
	return n, nil
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		b.pos = int(offset)
	case io.SeekCurrent:
		b.pos += int(offset)
	case io.SeekEnd:
		b.pos = len(b.data) + int(offset)
	}
	return int64(b.pos), nil
}

func TestWriterFinalizesHeader(t *testing.T) {
	var buf seekBuffer
	w, err := NewWriter(&buf, 48000, 2, pcm.Int16LittleEndian)
	require.NoError(t, err)

	samples := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	n, err := w.Write(samples)
	require.NoError(t, err)
	require.Equal(t, len(samples), n)
	require.NoError(t, w.Close())

	require.Len(t, buf.data, headerSize+len(samples))
	assert.Equal(t, "RIFF", string(buf.data[0:4]))
	assert.Equal(t, "WAVE", string(buf.data[8:12]))
	assert.Equal(t, "fmt ", string(buf.data[12:16]))
	assert.Equal(t, "data", string(buf.data[36:40]))

	le := binary.LittleEndian
	assert.Equal(t, uint32(headerSize+len(samples)), le.Uint32(buf.data[4:8]))
	assert.Equal(t, uint16(1), le.Uint16(buf.data[20:22]), "PCM format tag")
	assert.Equal(t, uint16(2), le.Uint16(buf.data[22:24]), "channels")
	assert.Equal(t, uint32(48000), le.Uint32(buf.data[24:28]))
	assert.Equal(t, uint32(48000*2*2), le.Uint32(buf.data[28:32]), "byte rate")
	assert.Equal(t, uint16(4), le.Uint16(buf.data[32:34]), "block align")
	assert.Equal(t, uint16(16), le.Uint16(buf.data[34:36]), "bits per sample")
	assert.Equal(t, uint32(len(samples)), le.Uint32(buf.data[40:44]))
	assert.Equal(t, samples, buf.data[headerSize:])
}

func TestWriter32BitFormat(t *testing.T) {
	var buf seekBuffer
	w, err := NewWriter(&buf, 44100, 1, pcm.Int32LittleEndian)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	le := binary.LittleEndian
	assert.Equal(t, uint16(32), le.Uint16(buf.data[34:36]))
	assert.Equal(t, uint16(4), le.Uint16(buf.data[32:34]))
}

func TestWriterRejectsBadConfig(t *testing.T) {
	var buf seekBuffer
	_, err := NewWriter(&buf, 48000, 0, pcm.Int16LittleEndian)
	assert.Error(t, err)
	_, err = NewWriter(&buf, 48000, 2, pcm.SampleType(9))
	assert.Error(t, err)
}
