package render

import (
	"github.com/pkg/errors"

	"github.com/AOMediaCodec/iamf-tools/codec"
	"github.com/AOMediaCodec/iamf-tools/obu"
)

const maxInt32PlusOne = 2147483648.0

// Pipeline renders assembled temporal units. It owns one codec decoder
// per substream of the selected mix; the decoders live for the whole
// stream, so frames must come through in order.
type Pipeline struct {
	sel        Selection
	ordering   Ordering
	frameSize  int
	sampleRate uint32
	outCh      int
	elements   []*elementPipe
}

type substreamPipe struct {
	id       uint32
	dec      codec.Decoder
	channels int
	offset   int
}

type elementPipe struct {
	subs    []substreamPipe
	mapping []uint8 // ambisonics ACN to substream channel, nil otherwise
	numCh   int
	gains   [][]float64
	gain    float64 // default element and output mix gains, linear
}

// NewPipeline builds the render graph for the selected mix. Every
// substream of every element in the mix gets its codec decoder here;
// a failure leaves nothing half-constructed.
func NewPipeline(set *obu.DescriptorSet, sel Selection, ordering Ordering) (*Pipeline, error) {
	p := &Pipeline{
		sel:      sel,
		ordering: ordering,
		outCh:    sel.Layout.NumChannels(),
	}
	for i := range sel.Mix.SubMixes {
		sm := &sel.Mix.SubMixes[i]
		outGain := q78ToLinear(sm.OutputMixGain.DefaultMixGain)
		for j := range sm.Elements {
			ep, err := p.buildElement(set, &sm.Elements[j], outGain)
			if err != nil {
				return nil, err
			}
			p.elements = append(p.elements, ep)
		}
	}
	if len(p.elements) == 0 {
		return nil, errors.WithMessagef(obu.ErrInvalidDescriptors,
			"render: mix presentation %d has no audio elements", sel.Mix.ID)
	}
	return p, nil
}

func (p *Pipeline) buildElement(set *obu.DescriptorSet, el *obu.SubMixElement, outGain float64) (*elementPipe, error) {
	e := set.AudioElements[el.AudioElementID]
	cc := set.CodecConfigs[e.CodecConfigID]

	if p.frameSize == 0 {
		p.frameSize = int(cc.NumSamplesPerFrame)
		p.sampleRate = cc.SampleRate()
	} else if p.frameSize != int(cc.NumSamplesPerFrame) || p.sampleRate != cc.SampleRate() {
		return nil, errors.WithMessagef(obu.ErrInvalidDescriptors,
			"render: audio element %d disagrees on frame size or rate", e.ID)
	}

	ep := &elementPipe{
		numCh: e.NumChannels(),
		gain:  q78ToLinear(el.ElementMixGain.DefaultMixGain) * outGain,
	}
	var err error
	if ep.gains, err = elementGains(e, p.sel.Layout); err != nil {
		return nil, err
	}
	if e.Ambisonics != nil {
		ep.mapping = e.Ambisonics.ChannelMapping
	}

	offset := 0
	for i, count := range substreamChannels(e) {
		dec, err := codec.New(codec.Config{
			Codec:         cc.CodecID,
			SampleRate:    cc.SampleRate(),
			FrameSize:     p.frameSize,
			BitDepth:      cc.BitDepth(),
			LittleEndian:  cc.LittleEndian(),
			NumChannels:   count,
			DecoderConfig: cc.DecoderConfig,
		})
		if err != nil {
			return nil, err
		}
		ep.subs = append(ep.subs, substreamPipe{
			id:       e.SubstreamIDs[i],
			dec:      dec,
			channels: count,
			offset:   offset,
		})
		offset += count
	}
	return ep, nil
}

// substreamChannels returns how many channels each of the element's
// substreams carries, in substream order. Coupled substreams of a
// channel layer carry two, everything else one.
func substreamChannels(e *obu.AudioElement) []int {
	counts := make([]int, 0, len(e.SubstreamIDs))
	if e.Ambisonics != nil {
		for range e.SubstreamIDs {
			counts = append(counts, 1)
		}
		return counts
	}
	for _, layer := range e.Layers {
		for i := 0; i < int(layer.SubstreamCount) && len(counts) < len(e.SubstreamIDs); i++ {
			if i < int(layer.CoupledSubstreamCount) {
				counts = append(counts, 2)
			} else {
				counts = append(counts, 1)
			}
		}
	}
	for len(counts) < len(e.SubstreamIDs) {
		counts = append(counts, 1)
	}
	return counts
}

// FrameSize returns the samples per channel of every rendered frame.
func (p *Pipeline) FrameSize() int { return p.frameSize }

// SampleRate returns the output sample rate in Hz.
func (p *Pipeline) SampleRate() uint32 { return p.sampleRate }

// NumOutputChannels returns the channel count of the output layout.
func (p *Pipeline) NumOutputChannels() int { return p.outCh }

// Selection returns the resolved mix and layout the pipeline renders.
func (p *Pipeline) Selection() Selection { return p.sel }

// RenderTemporalUnit decodes every substream frame of the unit and
// mixes the elements down to the output layout. The result is a
// channel-major matrix of normalised samples, always FrameSize ticks
// wide; substreams missing from the unit contribute silence.
func (p *Pipeline) RenderTemporalUnit(tu *obu.TemporalUnit) ([][]float64, error) {
	out := make([][]float64, p.outCh)
	for i := range out {
		out[i] = make([]float64, p.frameSize)
	}

	frames := make(map[uint32][]byte, len(tu.AudioFrames))
	for _, f := range tu.AudioFrames {
		frames[f.SubstreamID] = f.Data
	}

	for _, ep := range p.elements {
		elem, err := ep.reconstruct(frames, p.frameSize)
		if err != nil {
			return nil, err
		}
		for o := 0; o < p.outCh; o++ {
			for c := 0; c < ep.numCh; c++ {
				g := ep.gains[o][c] * ep.gain
				if g == 0 {
					continue
				}
				row := out[o]
				src := elem[c]
				for t := range row {
					row[t] += g * src[t]
				}
			}
		}
	}

	Reorder(out, p.sel.Layout, p.ordering)
	return out, nil
}

// reconstruct decodes the element's substreams and arranges them into
// the element's channel order as normalised samples.
func (ep *elementPipe) reconstruct(frames map[uint32][]byte, frameSize int) ([][]float64, error) {
	total := 0
	for _, s := range ep.subs {
		total += s.channels
	}
	sub := make([][]float64, total)
	for i := range sub {
		sub[i] = make([]float64, frameSize)
	}

	for _, s := range ep.subs {
		data, ok := frames[s.id]
		if !ok {
			continue // silence
		}
		m, err := s.dec.DecodeFrame(data)
		if err != nil {
			return nil, err
		}
		for c := 0; c < s.channels && c < len(m); c++ {
			dst := sub[s.offset+c]
			for t := 0; t < len(m[c]) && t < frameSize; t++ {
				dst[t] = float64(m[c][t]) / maxInt32PlusOne
			}
		}
	}

	if ep.mapping == nil {
		return sub[:ep.numCh], nil
	}
	elem := make([][]float64, ep.numCh)
	silence := make([]float64, frameSize)
	for acn := range elem {
		idx := int(ep.mapping[acn])
		if idx < len(sub) {
			elem[acn] = sub[idx]
		} else {
			elem[acn] = silence
		}
	}
	return elem, nil
}
