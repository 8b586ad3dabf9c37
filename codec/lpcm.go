package codec

import (
	"github.com/pkg/errors"
)

// lpcmDecoder unpacks raw interleaved PCM frames. Samples land in the
// upper BitDepth bits of each int32, sign-extended, so every width
// shares one fixed-point representation downstream.
type lpcmDecoder struct {
	bytesPerSample int
	channels       int
	littleEndian   bool
}

func newLPCM(cfg Config) (Decoder, error) {
	switch cfg.BitDepth {
	case 16, 24, 32:
	default:
		return nil, errors.Errorf("codec: LPCM bit depth %d", cfg.BitDepth)
	}
	return &lpcmDecoder{
		bytesPerSample: cfg.BitDepth / 8,
		channels:       cfg.NumChannels,
		littleEndian:   cfg.LittleEndian,
	}, nil
}

func (d *lpcmDecoder) DecodeFrame(data []byte) ([][]int32, error) {
	stride := d.bytesPerSample * d.channels
	if len(data)%stride != 0 {
		return nil, errors.Errorf("codec: LPCM frame of %d bytes is not a multiple of %d", len(data), stride)
	}
	ticks := len(data) / stride
	out := makeMatrix(d.channels, ticks)
	for t := 0; t < ticks; t++ {
		for c := 0; c < d.channels; c++ {
			off := t*stride + c*d.bytesPerSample
			out[c][t] = d.sample(data[off : off+d.bytesPerSample])
		}
	}
	return out, nil
}

func (d *lpcmDecoder) sample(b []byte) int32 {
	var v int32
	if d.littleEndian {
		for i := 0; i < len(b); i++ {
			v |= int32(b[i]) << (8 * ((4 - len(b)) + i))
		}
	} else {
		for i := 0; i < len(b); i++ {
			v |= int32(b[i]) << (8 * (3 - i))
		}
	}
	return v
}
