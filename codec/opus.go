package codec

import (
	"github.com/pkg/errors"
	"github.com/thesyncim/gopus/multistream"
)

// opusDecoder decodes one Opus substream. IAMF carries bare Opus
// packets (no Ogg framing), one per audio frame OBU, always
// reconstructed at 48 kHz.
type opusDecoder struct {
	dec       *multistream.Decoder
	channels  int
	frameSize int
}

func newOpus(cfg Config) (Decoder, error) {
	if len(cfg.DecoderConfig) < 11 {
		return nil, errors.New("codec: short Opus decoder config")
	}
	dec, err := multistream.NewDecoderDefault(48000, cfg.NumChannels)
	if err != nil {
		return nil, errors.Wrap(err, "codec")
	}
	return &opusDecoder{
		dec:       dec,
		channels:  cfg.NumChannels,
		frameSize: cfg.FrameSize,
	}, nil
}

func (d *opusDecoder) DecodeFrame(data []byte) ([][]int32, error) {
	pcm, err := d.dec.Decode(data, d.frameSize)
	if err != nil {
		return nil, errors.Wrap(err, "codec")
	}
	if len(pcm)%d.channels != 0 {
		return nil, errors.Errorf("codec: Opus returned %d samples for %d channels", len(pcm), d.channels)
	}
	ticks := len(pcm) / d.channels
	out := makeMatrix(d.channels, ticks)
	for t := 0; t < ticks; t++ {
		for c := 0; c < d.channels; c++ {
			out[c][t] = clipToInt32(float64(pcm[t*d.channels+c]))
		}
	}
	return out, nil
}
