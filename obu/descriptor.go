package obu

import (
	"github.com/pkg/errors"
)

// ErrInvalidDescriptors reports a malformed or semantically
// inconsistent descriptor block. The decoder instance is unusable
// afterwards.
var ErrInvalidDescriptors = errors.New("obu: invalid descriptors")

// ErrUnexpectedDescriptor reports a non-redundant descriptor OBU seen
// after the descriptor set was sealed.
var ErrUnexpectedDescriptor = errors.New("obu: descriptor after seal")

const iaCode = 0x69616d66 // 'iamf'

// Codec config payloads shorter than this cannot hold the fixed fields
// of any registered codec; such OBUs are skipped as implausible rather
// than failing the whole set.
const minCodecConfigSize = 8

func invalidf(format string, args ...interface{}) error {
	return errors.WithMessagef(ErrInvalidDescriptors, format, args...)
}

// ParseDescriptors consumes descriptor OBUs from the cursor until the
// first temporal OBU and returns the sealed set, leaving the cursor at
// the start of that temporal OBU.
//
// In streaming mode (exhaustive false) an incomplete trailing OBU
// restores the cursor to where it started and returns ErrShortData; the
// caller pushes more bytes and retries. In exhaustive mode the buffer
// must contain exactly one complete descriptor set: temporal OBUs,
// trailing bytes, or truncation are ErrInvalidDescriptors.
func ParseDescriptors(b *Buffer, exhaustive bool) (*DescriptorSet, error) {
	start := b.Tell()
	set := &DescriptorSet{
		CodecConfigs:  make(map[uint32]*CodecConfig),
		AudioElements: make(map[uint32]*AudioElement),
	}
	seenSequence := false

	for {
		t, _, err := Peek(b)
		if err != nil {
			if errors.Cause(err) != ErrShortData {
				b.Seek(start)
				return nil, invalidf("%v", err)
			}
			if !exhaustive {
				b.Seek(start)
				return nil, ErrShortData
			}
			if b.Tell() == int64(b.Len())*8 {
				break // clean end of the blob
			}
			b.Seek(start)
			return nil, invalidf("truncated descriptor OBU")
		}
		if !t.IsDescriptor() {
			if exhaustive {
				b.Seek(start)
				return nil, invalidf("temporal OBU type %d in descriptor blob", t)
			}
			break
		}

		u, err := ReadUnit(b)
		if err != nil {
			if errors.Cause(err) != ErrShortData {
				b.Seek(start)
				return nil, invalidf("%v", err)
			}
			if !exhaustive {
				b.Seek(start)
				return nil, ErrShortData
			}
			b.Seek(start)
			return nil, invalidf("truncated descriptor OBU")
		}

		switch u.Header.Type {
		case TypeSequenceHeader:
			if seenSequence {
				if u.Header.Redundant {
					continue
				}
				b.Seek(start)
				return nil, invalidf("second sequence header")
			}
			set.Sequence, err = parseSequenceHeader(u.Payload)
			seenSequence = true

		case TypeCodecConfig:
			if !seenSequence {
				b.Seek(start)
				return nil, invalidf("codec config before sequence header")
			}
			if len(u.Payload) < minCodecConfigSize {
				continue
			}
			var c *CodecConfig
			c, err = parseCodecConfig(u.Payload)
			if err == nil {
				if _, dup := set.CodecConfigs[c.ID]; dup {
					err = invalidf("duplicate codec config id %d", c.ID)
				} else {
					set.CodecConfigs[c.ID] = c
				}
			}

		case TypeAudioElement:
			if !seenSequence {
				b.Seek(start)
				return nil, invalidf("audio element before sequence header")
			}
			var e *AudioElement
			e, err = parseAudioElement(u.Payload)
			if err == nil {
				if _, dup := set.AudioElements[e.ID]; dup {
					err = invalidf("duplicate audio element id %d", e.ID)
				} else {
					set.AudioElements[e.ID] = e
					set.ElementOrder = append(set.ElementOrder, e.ID)
				}
			}

		case TypeMixPresentation:
			if !seenSequence {
				b.Seek(start)
				return nil, invalidf("mix presentation before sequence header")
			}
			var m *MixPresentation
			m, err = parseMixPresentation(u.Payload)
			if err == nil {
				set.MixPresentations = append(set.MixPresentations, m)
			}
		}
		if err != nil {
			b.Seek(start)
			return nil, err
		}
	}

	if err := validateSet(set, seenSequence); err != nil {
		b.Seek(start)
		return nil, err
	}
	set.RawBytes = b.Slice(start, b.Tell())
	return set, nil
}

func validateSet(set *DescriptorSet, seenSequence bool) error {
	switch {
	case !seenSequence:
		return invalidf("missing sequence header")
	case len(set.CodecConfigs) == 0:
		return invalidf("no codec configs")
	case len(set.AudioElements) == 0:
		return invalidf("no audio elements")
	case len(set.MixPresentations) == 0:
		return invalidf("no mix presentations")
	}

	seenSubstreams := make(map[uint32]bool)
	for _, id := range set.ElementOrder {
		e := set.AudioElements[id]
		if _, ok := set.CodecConfigs[e.CodecConfigID]; !ok {
			return invalidf("audio element %d references unknown codec config %d", e.ID, e.CodecConfigID)
		}
		for _, sid := range e.SubstreamIDs {
			if seenSubstreams[sid] {
				return invalidf("substream id %d declared twice", sid)
			}
			seenSubstreams[sid] = true
		}
	}
	for _, m := range set.MixPresentations {
		if len(m.Layouts()) == 0 {
			return invalidf("mix presentation %d has no layouts", m.ID)
		}
		for _, id := range m.AudioElementIDs() {
			if _, ok := set.AudioElements[id]; !ok {
				return invalidf("mix presentation %d references unknown audio element %d", m.ID, id)
			}
		}
	}
	return nil
}

func payloadBuffer(p []byte) *Buffer {
	return &Buffer{data: p}
}

func parseSequenceHeader(p []byte) (SequenceHeader, error) {
	b := payloadBuffer(p)
	code, err := b.ReadUint32()
	if err != nil {
		return SequenceHeader{}, invalidf("short sequence header")
	}
	if code != iaCode {
		return SequenceHeader{}, invalidf("sequence header ia_code %#x", code)
	}
	primary, err1 := b.ReadByte()
	additional, err2 := b.ReadByte()
	if err1 != nil || err2 != nil {
		return SequenceHeader{}, invalidf("short sequence header")
	}
	return SequenceHeader{
		PrimaryProfile:    ProfileVersion(primary),
		AdditionalProfile: ProfileVersion(additional),
	}, nil
}

func parseCodecConfig(p []byte) (*CodecConfig, error) {
	b := payloadBuffer(p)
	c := &CodecConfig{}
	var err error
	if c.ID, _, err = b.ReadULEB128(); err != nil {
		return nil, invalidf("short codec config")
	}
	if c.CodecID, err = b.ReadUint32(); err != nil {
		return nil, invalidf("short codec config")
	}
	if c.NumSamplesPerFrame, _, err = b.ReadULEB128(); err != nil {
		return nil, invalidf("short codec config")
	}
	if c.NumSamplesPerFrame == 0 {
		return nil, invalidf("codec config %d has zero frame size", c.ID)
	}
	if c.RollDistance, err = b.ReadSigned16(); err != nil {
		return nil, invalidf("short codec config")
	}
	c.DecoderConfig = p[b.Tell()/8:]

	switch c.CodecID {
	case CodecLPCM:
		err = digestLPCMConfig(c)
	case CodecOpus:
		err = digestOpusConfig(c)
	case CodecFLAC:
		err = digestFLACConfig(c)
	case CodecAAC:
		err = digestAACConfig(c)
	default:
		return nil, invalidf("codec config %d has unknown codec id %#x", c.ID, c.CodecID)
	}
	if err != nil {
		return nil, err
	}
	if c.sampleRate == 0 {
		return nil, invalidf("codec config %d has zero sample rate", c.ID)
	}
	return c, nil
}

// LPCM decoder config: sample_format_flags(8), sample_size(8),
// sample_rate(32). Bit 0 of the flags selects little-endian samples.
func digestLPCMConfig(c *CodecConfig) error {
	b := payloadBuffer(c.DecoderConfig)
	flags, err1 := b.ReadByte()
	size, err2 := b.ReadByte()
	rate, err3 := b.ReadUint32()
	if err1 != nil || err2 != nil || err3 != nil {
		return invalidf("short LPCM decoder config")
	}
	if size != 16 && size != 24 && size != 32 {
		return invalidf("LPCM sample size %d", size)
	}
	c.littleEndian = flags&0x1 != 0
	c.bitDepth = int(size)
	c.sampleRate = rate
	return nil
}

// Opus decoder config: version(8), output_channel_count(8),
// pre_skip(16), input_sample_rate(32), output_gain(16),
// channel_mapping_family(8). Opus always reconstructs at 48 kHz.
func digestOpusConfig(c *CodecConfig) error {
	if len(c.DecoderConfig) < 11 {
		return invalidf("short Opus decoder config")
	}
	c.sampleRate = 48000
	c.bitDepth = 16
	return nil
}

// FLAC decoder config: the stream's metadata blocks without the fLaC
// marker. The STREAMINFO block must come first.
func digestFLACConfig(c *CodecConfig) error {
	b := payloadBuffer(c.DecoderConfig)
	header, err := b.ReadBits(32)
	if err != nil {
		return invalidf("short FLAC decoder config")
	}
	if blockType := header >> 24 & 0x7f; blockType != 0 {
		return invalidf("FLAC decoder config starts with block type %d", blockType)
	}
	// STREAMINFO: blocksizes(16+16), framesizes(24+24), rate(20),
	// channels-1(3), bits-1(5), samples(36), md5(128).
	if _, err := b.ReadBits(16 + 16 + 24 + 24); err != nil {
		return invalidf("short FLAC STREAMINFO")
	}
	rate, err1 := b.ReadBits(20)
	_, err2 := b.ReadBits(3)
	bits, err3 := b.ReadBits(5)
	if err1 != nil || err2 != nil || err3 != nil {
		return invalidf("short FLAC STREAMINFO")
	}
	c.sampleRate = uint32(rate)
	c.bitDepth = int(bits) + 1
	return nil
}

var aacSampleRates = [...]uint32{
	96000, 88200, 64000, 48000, 44100, 32000, 24000, 22050,
	16000, 12000, 11025, 8000, 7350,
}

// AAC decoder config: an ISO 14496-1 DecoderConfigDescriptor whose
// DecSpecificInfo holds the AudioSpecificConfig.
func digestAACConfig(c *CodecConfig) error {
	asc, err := AACSpecificConfig(c.DecoderConfig)
	if err != nil {
		return err
	}
	b := payloadBuffer(asc)
	objectType, err1 := b.ReadBits(5)
	freqIndex, err2 := b.ReadBits(4)
	if err1 != nil || err2 != nil {
		return invalidf("short AudioSpecificConfig")
	}
	if objectType != 2 {
		return invalidf("AAC object type %d, want LC", objectType)
	}
	if freqIndex == 15 {
		rate, err := b.ReadBits(24)
		if err != nil {
			return invalidf("short AudioSpecificConfig")
		}
		c.sampleRate = uint32(rate)
	} else if int(freqIndex) < len(aacSampleRates) {
		c.sampleRate = aacSampleRates[freqIndex]
	} else {
		return invalidf("AAC sampling frequency index %d", freqIndex)
	}
	c.bitDepth = 16
	return nil
}

// AACSpecificConfig extracts the AudioSpecificConfig from the
// DecoderConfigDescriptor an AAC codec config carries.
func AACSpecificConfig(p []byte) ([]byte, error) {
	b := payloadBuffer(p)
	if tag, err := b.ReadByte(); err != nil || tag != 0x04 {
		return nil, invalidf("missing DecoderConfigDescriptor")
	}
	if _, err := readExpandableSize(b); err != nil {
		return nil, err
	}
	// object_type_indication(8), stream_type(6)+flags(2),
	// buffer_size_db(24), max_bitrate(32), avg_bitrate(32).
	if _, err := b.ReadBytes(13); err != nil {
		return nil, invalidf("short DecoderConfigDescriptor")
	}
	if tag, err := b.ReadByte(); err != nil || tag != 0x05 {
		return nil, invalidf("missing DecSpecificInfo")
	}
	n, err := readExpandableSize(b)
	if err != nil {
		return nil, err
	}
	asc, err := b.ReadBytes(int(n))
	if err != nil {
		return nil, invalidf("short DecSpecificInfo")
	}
	return asc, nil
}

// readExpandableSize reads an ISO 14496-1 expandable size field: 7 bits
// per byte, big-endian, continuation in the top bit.
func readExpandableSize(b *Buffer) (uint32, error) {
	var v uint32
	for i := 0; i < 4; i++ {
		c, err := b.ReadByte()
		if err != nil {
			return 0, invalidf("short expandable size")
		}
		v = v<<7 | uint32(c&0x7f)
		if c&0x80 == 0 {
			return v, nil
		}
	}
	return 0, invalidf("expandable size longer than 4 bytes")
}

func parseAudioElement(p []byte) (*AudioElement, error) {
	b := payloadBuffer(p)
	e := &AudioElement{}
	var err error
	if e.ID, _, err = b.ReadULEB128(); err != nil {
		return nil, invalidf("short audio element")
	}
	typeBits, err := b.ReadBits(3)
	if err != nil {
		return nil, invalidf("short audio element")
	}
	e.Type = AudioElementType(typeBits)
	if _, err = b.ReadBits(5); err != nil {
		return nil, invalidf("short audio element")
	}
	if e.CodecConfigID, _, err = b.ReadULEB128(); err != nil {
		return nil, invalidf("short audio element")
	}
	numSubstreams, _, err := b.ReadULEB128()
	if err != nil || numSubstreams == 0 {
		return nil, invalidf("audio element %d substream count", e.ID)
	}
	for i := uint32(0); i < numSubstreams; i++ {
		sid, _, err := b.ReadULEB128()
		if err != nil {
			return nil, invalidf("short audio element")
		}
		e.SubstreamIDs = append(e.SubstreamIDs, sid)
	}
	if err := skipElementParams(b, e.ID); err != nil {
		return nil, err
	}

	switch e.Type {
	case AudioElementChannelBased:
		err = parseScalableLayout(b, e)
	case AudioElementSceneBased:
		err = parseAmbisonicsConfig(b, e)
	default:
		err = invalidf("audio element %d has reserved type %d", e.ID, e.Type)
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// skipElementParams parses past the audio element's parameter
// definitions. Demixing and recon gain declarations have a known
// shape; anything else carries its own size.
func skipElementParams(b *Buffer, elementID uint32) error {
	numParams, _, err := b.ReadULEB128()
	if err != nil {
		return invalidf("short audio element")
	}
	for i := uint32(0); i < numParams; i++ {
		paramType, _, err := b.ReadULEB128()
		if err != nil {
			return invalidf("short audio element")
		}
		switch paramType {
		case 0:
			return invalidf("audio element %d declares a mix gain parameter", elementID)
		case 1: // demixing
			if _, err := parseParamDefinition(b); err != nil {
				return err
			}
			if _, err := b.ReadBytes(2); err != nil { // default demixing info + default w
				return invalidf("short demixing parameter")
			}
		case 2: // recon gain
			if _, err := parseParamDefinition(b); err != nil {
				return err
			}
		default:
			size, _, err := b.ReadULEB128()
			if err != nil {
				return invalidf("short audio element")
			}
			if _, err := b.ReadBytes(int(size)); err != nil {
				return invalidf("short audio element")
			}
		}
	}
	return nil
}

func parseScalableLayout(b *Buffer, e *AudioElement) error {
	numLayers, err := b.ReadBits(3)
	if err != nil {
		return invalidf("short scalable layout")
	}
	if numLayers == 0 {
		return invalidf("audio element %d has zero layers", e.ID)
	}
	if _, err := b.ReadBits(5); err != nil {
		return invalidf("short scalable layout")
	}
	for i := uint64(0); i < numLayers; i++ {
		var l ChannelLayer
		layout, err1 := b.ReadBits(4)
		outputGain, err2 := b.ReadBits(1)
		reconGain, err3 := b.ReadBits(1)
		_, err4 := b.ReadBits(2)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			return invalidf("short scalable layout")
		}
		l.Layout = uint8(layout)
		l.ReconGainPresent = reconGain != 0
		sub, err1 := b.ReadByte()
		coupled, err2 := b.ReadByte()
		if err1 != nil || err2 != nil {
			return invalidf("short scalable layout")
		}
		l.SubstreamCount = sub
		l.CoupledSubstreamCount = coupled
		if outputGain != 0 {
			flags, err1 := b.ReadBits(6)
			_, err2 := b.ReadBits(2)
			gain, err3 := b.ReadSigned16()
			if err1 != nil || err2 != nil || err3 != nil {
				return invalidf("short scalable layout")
			}
			l.OutputGainFlags = uint8(flags)
			l.OutputGain = gain
		}
		if l.Layout == 15 { // expanded layout
			if _, err := b.ReadByte(); err != nil {
				return invalidf("short scalable layout")
			}
		}
		e.Layers = append(e.Layers, l)
	}
	return nil
}

func parseAmbisonicsConfig(b *Buffer, e *AudioElement) error {
	mode, _, err := b.ReadULEB128()
	if err != nil {
		return invalidf("short ambisonics config")
	}
	if mode != 0 {
		return invalidf("audio element %d uses ambisonics mode %d; only mono is supported", e.ID, mode)
	}
	cfg := &AmbisonicsConfig{}
	outCount, err1 := b.ReadByte()
	subCount, err2 := b.ReadByte()
	if err1 != nil || err2 != nil {
		return invalidf("short ambisonics config")
	}
	cfg.OutputChannelCount = outCount
	cfg.SubstreamCount = subCount
	mapping, err := b.ReadBytes(int(outCount))
	if err != nil {
		return invalidf("short ambisonics config")
	}
	cfg.ChannelMapping = mapping
	e.Ambisonics = cfg
	return nil
}

func parseParamDefinition(b *Buffer) (ParamDefinition, error) {
	var d ParamDefinition
	var err error
	if d.ParameterID, _, err = b.ReadULEB128(); err != nil {
		return d, invalidf("short parameter definition")
	}
	if d.ParameterRate, _, err = b.ReadULEB128(); err != nil {
		return d, invalidf("short parameter definition")
	}
	mode, err := b.ReadBits(1)
	if err != nil {
		return d, invalidf("short parameter definition")
	}
	if _, err := b.ReadBits(7); err != nil {
		return d, invalidf("short parameter definition")
	}
	d.Mode = mode != 0
	if d.Mode {
		return d, nil
	}
	if d.Duration, _, err = b.ReadULEB128(); err != nil {
		return d, invalidf("short parameter definition")
	}
	if d.ConstantSubblockDuration, _, err = b.ReadULEB128(); err != nil {
		return d, invalidf("short parameter definition")
	}
	if d.ConstantSubblockDuration == 0 {
		numSubblocks, _, err := b.ReadULEB128()
		if err != nil {
			return d, invalidf("short parameter definition")
		}
		for i := uint32(0); i < numSubblocks; i++ {
			dur, _, err := b.ReadULEB128()
			if err != nil {
				return d, invalidf("short parameter definition")
			}
			d.SubblockDurations = append(d.SubblockDurations, dur)
		}
	}
	return d, nil
}

func parseMixGain(b *Buffer) (MixGainParam, error) {
	def, err := parseParamDefinition(b)
	if err != nil {
		return MixGainParam{}, err
	}
	gain, err := b.ReadSigned16()
	if err != nil {
		return MixGainParam{}, invalidf("short mix gain")
	}
	return MixGainParam{ParamDefinition: def, DefaultMixGain: gain}, nil
}

func parseMixPresentation(p []byte) (*MixPresentation, error) {
	b := payloadBuffer(p)
	m := &MixPresentation{}
	var err error
	if m.ID, _, err = b.ReadULEB128(); err != nil {
		return nil, invalidf("short mix presentation")
	}
	countLabel, _, err := b.ReadULEB128()
	if err != nil {
		return nil, invalidf("short mix presentation")
	}
	for i := uint32(0); i < countLabel; i++ {
		s, err := b.ReadString()
		if err != nil {
			return nil, invalidf("short mix presentation")
		}
		m.AnnotationsLanguages = append(m.AnnotationsLanguages, s)
	}
	for i := uint32(0); i < countLabel; i++ {
		s, err := b.ReadString()
		if err != nil {
			return nil, invalidf("short mix presentation")
		}
		m.LocalizedAnnotations = append(m.LocalizedAnnotations, s)
	}
	numSubMixes, _, err := b.ReadULEB128()
	if err != nil || numSubMixes == 0 {
		return nil, invalidf("mix presentation %d sub mix count", m.ID)
	}
	for i := uint32(0); i < numSubMixes; i++ {
		sm, err := parseSubMix(b, countLabel)
		if err != nil {
			return nil, err
		}
		m.SubMixes = append(m.SubMixes, sm)
	}
	return m, nil
}

func parseSubMix(b *Buffer, countLabel uint32) (SubMix, error) {
	var sm SubMix
	numElements, _, err := b.ReadULEB128()
	if err != nil || numElements == 0 {
		return sm, invalidf("sub mix element count")
	}
	for i := uint32(0); i < numElements; i++ {
		var el SubMixElement
		if el.AudioElementID, _, err = b.ReadULEB128(); err != nil {
			return sm, invalidf("short sub mix")
		}
		for j := uint32(0); j < countLabel; j++ {
			s, err := b.ReadString()
			if err != nil {
				return sm, invalidf("short sub mix")
			}
			el.Annotations = append(el.Annotations, s)
		}
		mode, err := b.ReadBits(2)
		if err != nil {
			return sm, invalidf("short rendering config")
		}
		if _, err := b.ReadBits(6); err != nil {
			return sm, invalidf("short rendering config")
		}
		el.Rendering.HeadphonesRenderingMode = uint8(mode)
		extSize, _, err := b.ReadULEB128()
		if err != nil {
			return sm, invalidf("short rendering config")
		}
		if el.Rendering.Extension, err = b.ReadBytes(int(extSize)); err != nil {
			return sm, invalidf("short rendering config")
		}
		if el.ElementMixGain, err = parseMixGain(b); err != nil {
			return sm, err
		}
		sm.Elements = append(sm.Elements, el)
	}
	if sm.OutputMixGain, err = parseMixGain(b); err != nil {
		return sm, err
	}
	numLayouts, _, err := b.ReadULEB128()
	if err != nil || numLayouts == 0 {
		return sm, invalidf("sub mix layout count")
	}
	for i := uint32(0); i < numLayouts; i++ {
		l, err := parseLayout(b)
		if err != nil {
			return sm, err
		}
		sm.Layouts = append(sm.Layouts, l)
	}
	return sm, nil
}

func parseLayout(b *Buffer) (Layout, error) {
	var l Layout
	layoutType, err := b.ReadBits(2)
	if err != nil {
		return l, invalidf("short layout")
	}
	l.Type = uint8(layoutType)
	switch l.Type {
	case LayoutTypeSSConvention:
		ss, err1 := b.ReadBits(4)
		_, err2 := b.ReadBits(2)
		if err1 != nil || err2 != nil {
			return l, invalidf("short layout")
		}
		l.SoundSystem = SoundSystem(ss)
	case LayoutTypeBinaural:
		if _, err := b.ReadBits(6); err != nil {
			return l, invalidf("short layout")
		}
	default:
		return l, invalidf("reserved layout type %d", l.Type)
	}
	var err2 error
	l.Loudness, err2 = parseLoudness(b)
	return l, err2
}

func parseLoudness(b *Buffer) (LoudnessInfo, error) {
	var info LoudnessInfo
	infoType, err := b.ReadByte()
	if err != nil {
		return info, invalidf("short loudness info")
	}
	info.InfoType = infoType
	if info.IntegratedLoudness, err = b.ReadSigned16(); err != nil {
		return info, invalidf("short loudness info")
	}
	if info.DigitalPeak, err = b.ReadSigned16(); err != nil {
		return info, invalidf("short loudness info")
	}
	if infoType&0x1 != 0 {
		if info.TruePeak, err = b.ReadSigned16(); err != nil {
			return info, invalidf("short loudness info")
		}
	}
	if infoType&0x2 != 0 {
		count, err := b.ReadByte()
		if err != nil {
			return info, invalidf("short loudness info")
		}
		for i := 0; i < int(count); i++ {
			anchor, err1 := b.ReadByte()
			loudness, err2 := b.ReadSigned16()
			if err1 != nil || err2 != nil {
				return info, invalidf("short loudness info")
			}
			info.AnchoredLoudness = append(info.AnchoredLoudness, AnchorLoudness{
				AnchorElement: anchor,
				Loudness:      loudness,
			})
		}
	}
	if infoType&0xfc != 0 {
		size, _, err := b.ReadULEB128()
		if err != nil {
			return info, invalidf("short loudness info")
		}
		if info.Extension, err = b.ReadBytes(int(size)); err != nil {
			return info, invalidf("short loudness info")
		}
	}
	return info, nil
}
