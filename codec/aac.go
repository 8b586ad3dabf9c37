package codec

import (
	aac "github.com/llehouerou/go-aac"
	"github.com/pkg/errors"

	"github.com/AOMediaCodec/iamf-tools/obu"
)

// aacDecoder decodes one AAC-LC substream of raw access units. The
// first decoded frame yields no samples because of the filter bank's
// overlap-add delay; DecodeFrame reports that as a zero-tick matrix
// and the pipeline pads it out.
type aacDecoder struct {
	dec      *aac.Decoder
	channels int
}

func newAAC(cfg Config) (Decoder, error) {
	asc, err := obu.AACSpecificConfig(cfg.DecoderConfig)
	if err != nil {
		return nil, errors.Wrap(err, "codec")
	}
	dec := aac.NewDecoder()
	conf := dec.Config()
	conf.OutputFormat = aac.OutputFormat16Bit
	dec.SetConfiguration(conf)
	if _, err := dec.Init2(asc); err != nil {
		return nil, errors.Wrap(err, "codec")
	}
	return &aacDecoder{dec: dec, channels: cfg.NumChannels}, nil
}

func (d *aacDecoder) DecodeFrame(data []byte) ([][]int32, error) {
	samples, info, err := d.dec.Decode(data)
	if err != nil {
		return nil, errors.Wrap(err, "codec")
	}
	if samples == nil || info.Samples == 0 {
		return makeMatrix(d.channels, 0), nil
	}
	pcm, ok := samples.([]int16)
	if !ok {
		return nil, errors.New("codec: AAC decoder returned unexpected sample format")
	}
	channels := int(info.Channels)
	if channels != d.channels {
		return nil, errors.Errorf("codec: AAC frame has %d channels, substream carries %d", channels, d.channels)
	}
	ticks := int(info.Samples) / channels
	out := makeMatrix(channels, ticks)
	for t := 0; t < ticks; t++ {
		for c := 0; c < channels; c++ {
			out[c][t] = int32(pcm[t*channels+c]) << 16
		}
	}
	return out, nil
}
