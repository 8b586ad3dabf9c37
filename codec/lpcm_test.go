package codec

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AOMediaCodec/iamf-tools/obu"
)

func lpcmConfig(bits int, littleEndian bool, channels int) Config {
	return Config{
		Codec:        obu.CodecLPCM,
		SampleRate:   48000,
		FrameSize:    8,
		BitDepth:     bits,
		LittleEndian: littleEndian,
		NumChannels:  channels,
	}
}

func TestLPCM16LittleEndian(t *testing.T) {
	d, err := New(lpcmConfig(16, true, 2))
	require.NoError(t, err)

	out, err := d.DecodeFrame([]byte{1, 2, 3, 4, 5, 6, 7, 8})
	require.NoError(t, err)
	require.Len(t, out, 2)
	// 0x0201 and 0x0605 left, 0x0403 and 0x0807 right, left-justified.
	require.Equal(t, []int32{0x0201 << 16, 0x0605 << 16}, out[0])
	require.Equal(t, []int32{0x0403 << 16, 0x0807 << 16}, out[1])
}

func TestLPCM16BigEndian(t *testing.T) {
	d, err := New(lpcmConfig(16, false, 1))
	require.NoError(t, err)

	out, err := d.DecodeFrame([]byte{0x80, 0x00, 0x7f, 0xff})
	require.NoError(t, err)
	require.Equal(t, []int32{-(0x8000 << 16), 0x7fff << 16}, out[0])
}

func TestLPCM24Negative(t *testing.T) {
	d, err := New(lpcmConfig(24, true, 1))
	require.NoError(t, err)

	out, err := d.DecodeFrame([]byte{0xff, 0xff, 0xff})
	require.NoError(t, err)
	require.Equal(t, []int32{-(1 << 8)}, out[0])
}

func TestLPCM32RoundTrip(t *testing.T) {
	d, err := New(lpcmConfig(32, true, 1))
	require.NoError(t, err)

	out, err := d.DecodeFrame([]byte{0x78, 0x56, 0x34, 0x12})
	require.NoError(t, err)
	require.Equal(t, []int32{0x12345678}, out[0])
}

func TestLPCMMisalignedFrame(t *testing.T) {
	d, err := New(lpcmConfig(16, true, 2))
	require.NoError(t, err)

	_, err = d.DecodeFrame([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestLPCMRejectsOddDepth(t *testing.T) {
	_, err := New(lpcmConfig(12, true, 1))
	require.Error(t, err)
}

func TestNewRejectsUnknownCodec(t *testing.T) {
	_, err := New(Config{Codec: 0x12345678, NumChannels: 1})
	require.Error(t, err)
}

func TestClipToInt32(t *testing.T) {
	require.Equal(t, int32(0), clipToInt32(0))
	require.Equal(t, int32(1<<30), clipToInt32(0.5))
	require.Equal(t, int32(-1<<31), clipToInt32(-1))
	// Full scale positive saturates one below the power of two.
	require.Equal(t, int32(1<<31-1), clipToInt32(1))
	require.Equal(t, int32(1<<31-1), clipToInt32(2))
	// Truncation, not rounding.
	require.Equal(t, int32(1), clipToInt32(1.9/2147483648.0))
}
