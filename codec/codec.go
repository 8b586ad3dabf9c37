// Package codec provides the per-substream decoders behind the IAMF
// pipeline. Each registered codec maps onto a library implementation:
// raw LPCM is unpacked in place, Opus goes through thesyncim/gopus,
// AAC-LC through llehouerou/go-aac, and FLAC through mewkiz/flac.
package codec

import (
	"math"

	"github.com/AOMediaCodec/iamf-tools/obu"
	"github.com/pkg/errors"
)

// Config describes one substream to its decoder.
type Config struct {
	Codec         uint32 // 4CC, one of the obu.Codec* values
	SampleRate    uint32
	FrameSize     int // samples per channel per frame
	BitDepth      int
	LittleEndian  bool // LPCM byte order
	NumChannels   int  // channels carried by this substream
	DecoderConfig []byte
}

// A Decoder turns one substream's coded frames into channel-major
// samples, left-justified in int32. Decoders are stateful and must see
// frames in stream order.
type Decoder interface {
	DecodeFrame(data []byte) ([][]int32, error)
}

// New constructs the decoder for one substream.
func New(cfg Config) (Decoder, error) {
	if cfg.NumChannels <= 0 {
		return nil, errors.Errorf("codec: bad channel count %d", cfg.NumChannels)
	}
	switch cfg.Codec {
	case obu.CodecLPCM:
		return newLPCM(cfg)
	case obu.CodecOpus:
		return newOpus(cfg)
	case obu.CodecFLAC:
		return newFLAC(cfg)
	case obu.CodecAAC:
		return newAAC(cfg)
	}
	return nil, errors.Errorf("codec: unknown codec id %#x", cfg.Codec)
}

func makeMatrix(channels, ticks int) [][]int32 {
	out := make([][]int32, channels)
	for i := range out {
		out[i] = make([]int32, ticks)
	}
	return out
}

// clipToInt32 maps a normalised sample to the full int32 range,
// truncating toward zero the way the rest of the pipeline does.
func clipToInt32(v float64) int32 {
	v *= 2147483648.0
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	if v < math.MinInt32 {
		return math.MinInt32
	}
	return int32(v)
}
