package iamf

import (
	"github.com/pkg/errors"

	"github.com/AOMediaCodec/iamf-tools/obu"
	"github.com/AOMediaCodec/iamf-tools/pcm"
	"github.com/AOMediaCodec/iamf-tools/render"
)

// Decoder is the push/pull decoder core. Feed it byte chunks with
// Decode, then drain rendered frames with GetOutputTemporalUnit. A
// Decoder is not safe for concurrent use; distinct instances are
// independent.
type Decoder struct {
	settings   Settings
	sampleType pcm.SampleType

	buf      *obu.Buffer
	set      *obu.DescriptorSet
	sel      render.Selection
	pipeline *render.Pipeline

	// pending is the single-slot output buffer. Decode never overwrites
	// it; GetOutputTemporalUnit empties it and speculatively refills.
	pending     [][]float64
	havePending bool

	unitIndex int64
	eos       bool
	poisoned  error

	// fromDescriptors enables Reset: the descriptor snapshot in
	// set.RawBytes is replayed instead of requiring a new stream.
	fromDescriptors bool
}

// New returns a streaming Decoder in the descriptor-accumulation state.
func New(settings Settings) (*Decoder, error) {
	st := settings.sampleType()
	if !st.Valid() {
		return nil, errors.Errorf("iamf: unknown output sample type %d", settings.OutputSampleType)
	}
	return &Decoder{
		settings:   settings,
		sampleType: st,
		buf:        obu.NewBuffer(),
	}, nil
}

// NewFromDescriptors returns a Decoder whose descriptor set is sealed
// from descriptorBytes before any temporal data arrives. The blob must
// contain exactly the descriptor OBUs; trailing bytes make it invalid.
// Only decoders created this way support Reset and ResetWithNewMix.
func NewFromDescriptors(settings Settings, descriptorBytes []byte) (*Decoder, error) {
	d, err := New(settings)
	if err != nil {
		return nil, err
	}
	d.fromDescriptors = true
	d.buf.Push(descriptorBytes)
	set, err := obu.ParseDescriptors(d.buf, true)
	if err != nil {
		return nil, err
	}
	if err := d.seal(set); err != nil {
		return nil, err
	}
	return d, nil
}

// seal resolves the mix and constructs the render pipeline. From here
// on descriptor OBUs are only legal as redundant copies.
func (d *Decoder) seal(set *obu.DescriptorSet) error {
	sel, err := render.SelectMix(set, d.settings.renderRequest())
	if err != nil {
		return err
	}
	p, err := render.NewPipeline(set, sel, d.settings.ChannelOrdering)
	if err != nil {
		return err
	}
	d.set = set
	d.sel = sel
	d.pipeline = p
	d.reclaim()
	return nil
}

// reclaim drops the consumed leading bytes of the bit buffer.
func (d *Decoder) reclaim() {
	d.buf.Flush(int(d.buf.Tell() / 8))
}

// Decode appends data to the stream and drives the state machine: it
// accumulates descriptors until the set seals, then assembles and
// renders at most one temporal unit per call. Running out of bytes
// mid-structure is not an error; push more and call again.
//
// The call that seals the descriptor set never also produces a frame,
// so the caller can size output buffers from the stream metadata before
// any samples exist.
func (d *Decoder) Decode(data []byte) error {
	if d.poisoned != nil {
		return d.poisoned
	}
	if d.eos {
		return ErrDecodeAfterEOS
	}
	d.buf.Push(data)

	if d.set == nil {
		set, err := obu.ParseDescriptors(d.buf, false)
		if err != nil {
			if errors.Cause(err) == obu.ErrShortData {
				return nil
			}
			return d.poison(err)
		}
		if err := d.seal(set); err != nil {
			return d.poison(err)
		}
		return nil
	}

	if d.havePending {
		return nil
	}
	return d.pull()
}

// pull assembles one temporal unit if the buffer holds one and renders
// it into the pending slot.
func (d *Decoder) pull() error {
	tu, err := obu.ReadTemporalUnit(d.buf, d.set, d.eos)
	if err != nil {
		return d.poison(err)
	}
	d.reclaim()
	if tu == nil {
		return nil
	}
	tu.Timestamp = d.unitIndex * int64(d.pipeline.FrameSize())
	out, err := d.pipeline.RenderTemporalUnit(tu)
	if err != nil {
		return d.poison(errors.WithMessagef(ErrCodecFailure, "%v", err))
	}
	d.pending = out
	d.havePending = true
	d.unitIndex++
	return nil
}

func (d *Decoder) poison(err error) error {
	d.poisoned = err
	return err
}

// IsDescriptorProcessingComplete reports whether the descriptor set is
// sealed and the stream metadata is available.
func (d *Decoder) IsDescriptorProcessingComplete() bool {
	return d.set != nil
}

// IsTemporalUnitAvailable reports whether a rendered frame is waiting
// in the output slot.
func (d *Decoder) IsTemporalUnitAvailable() bool {
	return d.havePending
}

// GetOutputTemporalUnit serialises the pending frame into out as
// interleaved little-endian PCM and returns the bytes written, 0 if no
// frame is pending. On success the slot is refilled speculatively from
// already-buffered bytes, so IsTemporalUnitAvailable may be true again
// immediately. ErrBufferTooSmall keeps the frame for a retry.
func (d *Decoder) GetOutputTemporalUnit(out []byte) (int, error) {
	if d.poisoned != nil {
		return 0, d.poisoned
	}
	if !d.havePending {
		return 0, nil
	}
	n, err := pcm.WriteFrame(d.pending, d.sampleType, out)
	if err != nil {
		return 0, err
	}
	d.pending = nil
	d.havePending = false
	if pullErr := d.pull(); pullErr != nil {
		return n, pullErr
	}
	return n, nil
}

// SignalEndOfStream marks the stream complete. If descriptors never
// sealed, the accumulated bytes must form a complete descriptor set on
// their own. Otherwise a final possibly delimiter-less temporal unit is
// flushed; keep calling GetOutputTemporalUnit until it returns 0.
func (d *Decoder) SignalEndOfStream() error {
	if d.poisoned != nil {
		return d.poisoned
	}
	if d.eos {
		return nil
	}
	d.eos = true

	if d.set == nil {
		set, err := obu.ParseDescriptors(d.buf, true)
		if err != nil {
			return d.poison(err)
		}
		if err := d.seal(set); err != nil {
			return d.poison(err)
		}
		return nil
	}
	if !d.havePending {
		return d.pull()
	}
	return nil
}

// Reset returns a descriptor-mode decoder to the state right after
// creation: the descriptor snapshot is replayed, the codec decoders and
// the renderer are rebuilt, buffered temporal bytes and any pending
// frame are dropped. Streaming decoders cannot Reset because the
// original descriptor bytes may already be flushed.
func (d *Decoder) Reset() error {
	_, err := d.resetWithRequest(d.settings.renderRequest())
	return err
}

// ResetWithNewMix is Reset with a different mix request; it returns the
// newly resolved mix.
func (d *Decoder) ResetWithNewMix(req RequestedMix) (SelectedMix, error) {
	d.settings.RequestedMix = req
	return d.resetWithRequest(d.settings.renderRequest())
}

func (d *Decoder) resetWithRequest(req render.Request) (SelectedMix, error) {
	if !d.fromDescriptors {
		return SelectedMix{}, errors.New("iamf: reset requires a decoder created from descriptors")
	}
	snapshot := d.set.RawBytes

	d.buf = obu.NewBuffer()
	d.buf.Push(snapshot)
	d.set = nil
	d.pipeline = nil
	d.pending = nil
	d.havePending = false
	d.unitIndex = 0
	d.eos = false
	d.poisoned = nil

	set, err := obu.ParseDescriptors(d.buf, true)
	if err != nil {
		return SelectedMix{}, d.poison(err)
	}
	if err := d.seal(set); err != nil {
		return SelectedMix{}, d.poison(err)
	}
	return d.outputMix(), nil
}

// ConfigureOutputSampleType switches the serialisation width. It takes
// effect on the next GetOutputTemporalUnit.
func (d *Decoder) ConfigureOutputSampleType(t OutputSampleType) error {
	if !t.Valid() {
		return errors.Errorf("iamf: unknown output sample type %d", t)
	}
	d.sampleType = t
	return nil
}

func (d *Decoder) outputMix() SelectedMix {
	return SelectedMix{
		MixPresentationID: d.sel.Mix.ID,
		OutputLayout:      d.sel.Layout,
	}
}

// SampleRate returns the output sample rate in Hz.
func (d *Decoder) SampleRate() (uint32, error) {
	if d.set == nil {
		return 0, ErrDescriptorsNotReady
	}
	return d.pipeline.SampleRate(), nil
}

// FrameSize returns the samples per channel of every output frame.
func (d *Decoder) FrameSize() (int, error) {
	if d.set == nil {
		return 0, ErrDescriptorsNotReady
	}
	return d.pipeline.FrameSize(), nil
}

// NumberOfOutputChannels returns the channel count of the resolved
// output layout.
func (d *Decoder) NumberOfOutputChannels() (int, error) {
	if d.set == nil {
		return 0, ErrDescriptorsNotReady
	}
	return d.pipeline.NumOutputChannels(), nil
}

// OutputLayout returns the resolved output sound system.
func (d *Decoder) OutputLayout() (SoundSystem, error) {
	if d.set == nil {
		return 0, ErrDescriptorsNotReady
	}
	return d.sel.Layout, nil
}

// OutputMix returns the resolved mix presentation and layout.
func (d *Decoder) OutputMix() (SelectedMix, error) {
	if d.set == nil {
		return SelectedMix{}, ErrDescriptorsNotReady
	}
	return d.outputMix(), nil
}

// OutputSampleType returns the sample type the next frame serialises
// with.
func (d *Decoder) OutputSampleType() (OutputSampleType, error) {
	if d.set == nil {
		return 0, ErrDescriptorsNotReady
	}
	return d.sampleType, nil
}

// OutputBufferSize returns the byte size one serialised frame needs,
// convenient for sizing the GetOutputTemporalUnit buffer.
func (d *Decoder) OutputBufferSize() (int, error) {
	if d.set == nil {
		return 0, ErrDescriptorsNotReady
	}
	return d.pipeline.NumOutputChannels() * d.pipeline.FrameSize() * d.sampleType.Width(), nil
}
