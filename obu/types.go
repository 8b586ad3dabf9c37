package obu

// SoundSystem identifies a loudspeaker configuration: the ITU-R BS.2051
// systems A through J plus the IAMF extension systems. The values match
// the 4-bit sound_system field of a mix presentation layout.
type SoundSystem uint8

const (
	SoundSystemA  SoundSystem = iota // 0+2+0 stereo
	SoundSystemB                     // 0+5+0
	SoundSystemC                     // 2+5+0
	SoundSystemD                     // 4+5+0
	SoundSystemE                     // 4+5+1
	SoundSystemF                     // 3+7+0
	SoundSystemG                     // 4+9+0
	SoundSystemH                     // 9+10+3
	SoundSystemI                     // 0+7+0
	SoundSystemJ                     // 4+7+0
	SoundSystem10                    // 2+7+0
	SoundSystem11                    // 2+3+0
	SoundSystem12                    // 0+1+0 mono
	SoundSystem13                    // 6+9+0
)

var soundSystemChannels = [...]int{
	SoundSystemA:  2,
	SoundSystemB:  6,
	SoundSystemC:  8,
	SoundSystemD:  10,
	SoundSystemE:  11,
	SoundSystemF:  12,
	SoundSystemG:  14,
	SoundSystemH:  24,
	SoundSystemI:  8,
	SoundSystemJ:  12,
	SoundSystem10: 10,
	SoundSystem11: 6,
	SoundSystem12: 1,
	SoundSystem13: 16,
}

// NumChannels returns the loudspeaker count of the sound system,
// LFE channels included. It returns 0 for reserved values.
func (s SoundSystem) NumChannels() int {
	if int(s) >= len(soundSystemChannels) {
		return 0
	}
	return soundSystemChannels[s]
}

// Valid reports whether s is one of the defined sound systems.
func (s SoundSystem) Valid() bool {
	return s <= SoundSystem13
}

// ProfileVersion is an IAMF profile as carried by the sequence header.
type ProfileVersion uint8

const (
	ProfileSimple       ProfileVersion = 0
	ProfileBase         ProfileVersion = 1
	ProfileBaseEnhanced ProfileVersion = 2
)

// SequenceHeader is the parsed IA sequence header OBU.
type SequenceHeader struct {
	PrimaryProfile    ProfileVersion
	AdditionalProfile ProfileVersion
}

// Codec IDs registered by IAMF, as big-endian 4CCs.
const (
	CodecOpus uint32 = 0x4f707573 // 'Opus'
	CodecLPCM uint32 = 0x6970636d // 'ipcm'
	CodecFLAC uint32 = 0x664c6143 // 'fLaC'
	CodecAAC  uint32 = 0x6d703461 // 'mp4a'
)

// CodecConfig declares how the substreams referencing it are coded.
// DecoderConfig holds the codec-specific configuration verbatim; the
// fields every caller needs (rate, depth) are pre-digested at parse
// time.
type CodecConfig struct {
	ID                 uint32
	CodecID            uint32
	NumSamplesPerFrame uint32
	RollDistance       int16
	DecoderConfig      []byte

	sampleRate   uint32
	bitDepth     int
	littleEndian bool
}

// SampleRate returns the output sample rate in Hz.
func (c *CodecConfig) SampleRate() uint32 { return c.sampleRate }

// BitDepth returns the coded bit depth. Opus and AAC report 16.
func (c *CodecConfig) BitDepth() int { return c.bitDepth }

// LittleEndian reports the byte order of LPCM samples. It is
// meaningless for other codecs.
func (c *CodecConfig) LittleEndian() bool { return c.littleEndian }

// AudioElementType is the 3-bit audio_element_type field.
type AudioElementType uint8

const (
	AudioElementChannelBased AudioElementType = 0
	AudioElementSceneBased   AudioElementType = 1
)

// ChannelLayer is one layer of a scalable channel layout.
type ChannelLayer struct {
	Layout                uint8 // loudspeaker_layout, 4 bits
	ReconGainPresent      bool
	SubstreamCount        uint8
	CoupledSubstreamCount uint8
	OutputGainFlags       uint8
	OutputGain            int16
}

// Channel counts for the loudspeaker_layout values 0..9 (mono, stereo,
// 5.1, 5.1.2, 5.1.4, 7.1, 7.1.2, 7.1.4, 3.1.2, binaural).
var loudspeakerLayoutChannels = [...]int{1, 2, 6, 8, 10, 8, 10, 12, 6, 2}

// AmbisonicsConfig is the mono-mode ambisonics configuration of a
// scene-based audio element.
type AmbisonicsConfig struct {
	OutputChannelCount uint8
	SubstreamCount     uint8
	// ChannelMapping[acn] is the substream-derived channel feeding the
	// ACN-ordered ambisonics channel, or 255 for an unfed channel.
	ChannelMapping []uint8
}

// AudioElement groups coded substreams into one renderable element.
type AudioElement struct {
	ID            uint32
	Type          AudioElementType
	CodecConfigID uint32
	SubstreamIDs  []uint32
	Layers        []ChannelLayer    // channel-based only
	Ambisonics    *AmbisonicsConfig // scene-based only
}

// NumChannels returns the number of reconstructed channels the element
// contributes before rendering.
func (e *AudioElement) NumChannels() int {
	if e.Ambisonics != nil {
		return int(e.Ambisonics.OutputChannelCount)
	}
	if len(e.Layers) == 0 {
		return 0
	}
	top := e.Layers[len(e.Layers)-1].Layout
	if int(top) < len(loudspeakerLayoutChannels) {
		return loudspeakerLayoutChannels[top]
	}
	return 0
}

// ParamDefinition is the common shape of parameter declarations inside
// audio elements and mix presentations.
type ParamDefinition struct {
	ParameterID              uint32
	ParameterRate            uint32
	Mode                     bool
	Duration                 uint32
	ConstantSubblockDuration uint32
	SubblockDurations        []uint32
}

// MixGainParam is a mix gain parameter declaration with its default
// gain in Q7.8 dB.
type MixGainParam struct {
	ParamDefinition
	DefaultMixGain int16
}

// RenderingConfig is the per-element rendering configuration of a sub mix.
type RenderingConfig struct {
	HeadphonesRenderingMode uint8
	Extension               []byte
}

// Layout is one reproduction layout of a sub mix. Only the
// sound-system convention (layout_type 2) crosses the decoder's public
// boundary; binaural layouts are parsed but never selected.
type Layout struct {
	Type        uint8
	SoundSystem SoundSystem
	Loudness    LoudnessInfo
}

const (
	LayoutTypeSSConvention uint8 = 2
	LayoutTypeBinaural     uint8 = 3
)

// LoudnessInfo carries the measured loudness of a layout.
type LoudnessInfo struct {
	InfoType           uint8
	IntegratedLoudness int16 // Q7.8 LKFS
	DigitalPeak        int16 // Q7.8 dBFS
	TruePeak           int16 // Q7.8 dBFS, valid if InfoType&1
	AnchoredLoudness   []AnchorLoudness
	Extension          []byte
}

// AnchorLoudness is one anchored loudness measurement.
type AnchorLoudness struct {
	AnchorElement uint8
	Loudness      int16
}

// SubMixElement binds one audio element into a sub mix.
type SubMixElement struct {
	AudioElementID uint32
	Annotations    []string
	Rendering      RenderingConfig
	ElementMixGain MixGainParam
}

// SubMix is one sub mix of a mix presentation.
type SubMix struct {
	Elements      []SubMixElement
	OutputMixGain MixGainParam
	Layouts       []Layout
}

// MixPresentation is a mixing recipe binding audio elements to
// reproduction layouts.
type MixPresentation struct {
	ID                   uint32
	AnnotationsLanguages []string
	LocalizedAnnotations []string
	SubMixes             []SubMix
}

// AudioElementIDs returns the ids of every audio element referenced by
// the presentation, in wire order.
func (m *MixPresentation) AudioElementIDs() []uint32 {
	var ids []uint32
	for i := range m.SubMixes {
		for j := range m.SubMixes[i].Elements {
			ids = append(ids, m.SubMixes[i].Elements[j].AudioElementID)
		}
	}
	return ids
}

// Layouts returns the layouts of every sub mix, in wire order.
func (m *MixPresentation) Layouts() []Layout {
	var ls []Layout
	for i := range m.SubMixes {
		ls = append(ls, m.SubMixes[i].Layouts...)
	}
	return ls
}

// NumChannels returns the summed channel count of the presentation's
// audio elements, which is what profile limits are checked against.
func (m *MixPresentation) NumChannels(elements map[uint32]*AudioElement) int {
	total := 0
	for _, id := range m.AudioElementIDs() {
		if e, ok := elements[id]; ok {
			total += e.NumChannels()
		}
	}
	return total
}

// DescriptorSet is the sealed static context of one IA sequence.
type DescriptorSet struct {
	Sequence         SequenceHeader
	CodecConfigs     map[uint32]*CodecConfig
	AudioElements    map[uint32]*AudioElement
	ElementOrder     []uint32
	MixPresentations []*MixPresentation

	// RawBytes is the exact descriptor region of the stream, kept so a
	// decoder can be reset without re-feeding.
	RawBytes []byte
}

// SubstreamElement returns the audio element owning the substream and
// the index of the substream within the element.
func (s *DescriptorSet) SubstreamElement(substreamID uint32) (*AudioElement, int, bool) {
	for _, id := range s.ElementOrder {
		e := s.AudioElements[id]
		for i, sid := range e.SubstreamIDs {
			if sid == substreamID {
				return e, i, true
			}
		}
	}
	return nil, 0, false
}
