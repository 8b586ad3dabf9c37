package codec

import (
	"bytes"

	"github.com/mewkiz/flac"
	"github.com/pkg/errors"
)

// flacDecoder decodes one FLAC substream. The codec config carries the
// stream's metadata blocks; prefixing them with the fLaC marker and
// appending each audio frame OBU's bytes reconstitutes a stream that
// mewkiz/flac can parse frame by frame.
type flacDecoder struct {
	src    *bytes.Buffer
	stream *flac.Stream
	shift  uint
}

func newFLAC(cfg Config) (Decoder, error) {
	src := new(bytes.Buffer)
	src.WriteString("fLaC")
	src.Write(cfg.DecoderConfig)
	stream, err := flac.New(src)
	if err != nil {
		return nil, errors.Wrap(err, "codec")
	}
	if int(stream.Info.NChannels) != cfg.NumChannels {
		return nil, errors.Errorf("codec: FLAC STREAMINFO declares %d channels, substream carries %d",
			stream.Info.NChannels, cfg.NumChannels)
	}
	return &flacDecoder{
		src:    src,
		stream: stream,
		shift:  32 - uint(stream.Info.BitsPerSample),
	}, nil
}

func (d *flacDecoder) DecodeFrame(data []byte) ([][]int32, error) {
	d.src.Write(data)
	frame, err := d.stream.ParseNext()
	if err != nil {
		return nil, errors.Wrap(err, "codec")
	}
	channels := len(frame.Subframes)
	ticks := len(frame.Subframes[0].Samples)
	out := makeMatrix(channels, ticks)
	for c := 0; c < channels; c++ {
		for t := 0; t < ticks; t++ {
			out[c][t] = frame.Subframes[c].Samples[t] << d.shift
		}
	}
	return out, nil
}
