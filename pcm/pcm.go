// Package pcm serialises rendered channel matrices into interleaved
// little-endian signed PCM. No framing, no header, no dithering; a WAV
// container or playback sink belongs to the caller.
package pcm

import (
	"math"

	"github.com/pkg/errors"
)

// ErrBufferTooSmall reports that the caller's output buffer cannot hold
// one serialised frame. The frame is untouched; retry with a larger
// buffer.
var ErrBufferTooSmall = errors.New("pcm: output buffer too small")

// SampleType selects the integer width of serialised samples.
type SampleType uint8

const (
	Int16LittleEndian SampleType = 1
	Int32LittleEndian SampleType = 2
)

// Width returns the bytes per serialised sample.
func (t SampleType) Width() int {
	switch t {
	case Int16LittleEndian:
		return 2
	case Int32LittleEndian:
		return 4
	}
	return 0
}

// Valid reports whether t is a defined sample type.
func (t SampleType) Valid() bool {
	return t == Int16LittleEndian || t == Int32LittleEndian
}

const maxInt32PlusOne = 2147483648.0

// quantise maps a normalised sample to the left-justified 32-bit
// representation: clamp to [-1, 1], scale by 2^31, truncate toward
// zero. The serialised sample is the most significant Width bytes.
func quantise(s float64) int32 {
	s *= maxInt32PlusOne
	if s >= math.MaxInt32 {
		return math.MaxInt32
	}
	if s <= math.MinInt32 {
		return math.MinInt32
	}
	return int32(s)
}

// WriteFrame serialises a channel-major matrix of normalised samples
// into out, tick-major and channel-interleaved. It returns the number
// of bytes written, which is always channels * ticks * Width on
// success.
func WriteFrame(matrix [][]float64, t SampleType, out []byte) (int, error) {
	width := t.Width()
	if width == 0 {
		return 0, errors.Errorf("pcm: unknown sample type %d", t)
	}
	channels := len(matrix)
	if channels == 0 {
		return 0, nil
	}
	ticks := len(matrix[0])
	required := channels * ticks * width
	if len(out) < required {
		return 0, errors.WithMessagef(ErrBufferTooSmall,
			"pcm: need %d bytes, have %d", required, len(out))
	}

	n := 0
	for tick := 0; tick < ticks; tick++ {
		for c := 0; c < channels; c++ {
			v := quantise(matrix[c][tick])
			switch t {
			case Int16LittleEndian:
				h := int16(v >> 16)
				out[n] = byte(h)
				out[n+1] = byte(h >> 8)
			case Int32LittleEndian:
				out[n] = byte(v)
				out[n+1] = byte(v >> 8)
				out[n+2] = byte(v >> 16)
				out[n+3] = byte(v >> 24)
			}
			n += width
		}
	}
	return n, nil
}

// EncodeSigned writes one normalised sample to p as a little-endian
// signed integer, mapping s to round(clamp(s, -1, 1) * (2^(N-1) - 1)).
// It returns the bytes written. This is the symmetric encoding used
// when handing samples to containers and sinks that expect it; the
// frame path in WriteFrame keeps the decoder's truncating convention
// instead.
func EncodeSigned(p []byte, s float64, t SampleType) int {
	width := t.Width()
	if width == 0 {
		return 0
	}
	if s < -1 {
		s = -1
	}
	if s > 1 {
		s = 1
	}
	val := int64(math.Round(s * float64(int64(1)<<(uint(width)*8-1)-1)))
	for i := 0; i < width; i++ {
		p[i] = byte(val >> uint(i*8))
	}
	return width
}
