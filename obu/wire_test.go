package obu

// Wire-level builders shared by the parser tests. They produce the
// smallest valid encodings: a 48 kHz 16-bit LPCM codec config with 8
// samples per frame, a first-order-less (W only) ambisonics mono
// element, and a stereo mix presentation.

func uleb(v uint32) []byte {
	var out []byte
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			c |= 0x80
		}
		out = append(out, c)
		if v == 0 {
			return out
		}
	}
}

func rawOBU(t Type, flags byte, payload []byte) []byte {
	out := []byte{byte(t)<<3 | flags}
	out = append(out, uleb(uint32(len(payload)))...)
	return append(out, payload...)
}

func testOBU(t Type, payload []byte) []byte {
	return rawOBU(t, 0, payload)
}

func u16be(v uint16) []byte { return []byte{byte(v >> 8), byte(v)} }

func u32be(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

func sequenceHeaderOBU() []byte {
	payload := append(u32be(iaCode), 0, 0) // simple profile twice
	return testOBU(TypeSequenceHeader, payload)
}

func lpcmCodecConfigOBU(id uint32, sampleRate uint32, frameSize uint32, bits uint8) []byte {
	var p []byte
	p = append(p, uleb(id)...)
	p = append(p, u32be(CodecLPCM)...)
	p = append(p, uleb(frameSize)...)
	p = append(p, 0, 0)       // audio_roll_distance
	p = append(p, 1, bits)    // little-endian samples
	p = append(p, u32be(sampleRate)...)
	return testOBU(TypeCodecConfig, p)
}

// ambisonicsMonoElementOBU builds a scene-based element whose ACN
// channels 0..n-1 map straight onto the given substreams.
func ambisonicsMonoElementOBU(id, codecConfigID uint32, substreams ...uint32) []byte {
	var p []byte
	p = append(p, uleb(id)...)
	p = append(p, byte(AudioElementSceneBased)<<5)
	p = append(p, uleb(codecConfigID)...)
	p = append(p, uleb(uint32(len(substreams)))...)
	for _, s := range substreams {
		p = append(p, uleb(s)...)
	}
	p = append(p, uleb(0)...) // num_parameters
	p = append(p, uleb(0)...) // ambisonics_mode mono
	p = append(p, byte(len(substreams)), byte(len(substreams)))
	for i := range substreams {
		p = append(p, byte(i))
	}
	return testOBU(TypeAudioElement, p)
}

func mixGainBytes(paramID uint32) []byte {
	var p []byte
	p = append(p, uleb(paramID)...)
	p = append(p, uleb(48000)...) // parameter_rate
	p = append(p, 0x80)           // param_definition_mode 1
	p = append(p, u16be(0)...)    // default_mix_gain 0 dB
	return p
}

func layoutBytes(ss SoundSystem) []byte {
	var p []byte
	p = append(p, LayoutTypeSSConvention<<6|byte(ss)<<2)
	p = append(p, 0)          // loudness info_type
	p = append(p, u16be(0)...) // integrated_loudness
	p = append(p, u16be(0)...) // digital_peak
	return p
}

func mixPresentationOBU(id, elementID uint32, systems ...SoundSystem) []byte {
	var p []byte
	p = append(p, uleb(id)...)
	p = append(p, uleb(0)...) // count_label
	p = append(p, uleb(1)...) // num_sub_mixes
	p = append(p, uleb(1)...) // num_audio_elements
	p = append(p, uleb(elementID)...)
	p = append(p, 0)                   // headphones_rendering_mode + reserved
	p = append(p, uleb(0)...)          // rendering_config_extension_size
	p = append(p, mixGainBytes(10)...) // element_mix_gain
	p = append(p, mixGainBytes(11)...) // output_mix_gain
	p = append(p, uleb(uint32(len(systems)))...)
	for _, ss := range systems {
		p = append(p, layoutBytes(ss)...)
	}
	return testOBU(TypeMixPresentation, p)
}

// basicDescriptors is the canonical single-substream test sequence:
// 48 kHz 16-bit LPCM, 8 samples per frame, one W-only ambisonics
// element on substream 18, one stereo mix presentation with id 3.
func basicDescriptors() []byte {
	var blob []byte
	blob = append(blob, sequenceHeaderOBU()...)
	blob = append(blob, lpcmCodecConfigOBU(1, 48000, 8, 16)...)
	blob = append(blob, ambisonicsMonoElementOBU(7, 1, 18)...)
	blob = append(blob, mixPresentationOBU(3, 7, SoundSystemA)...)
	return blob
}

func audioFrameOBU(substreamID uint32, data []byte) []byte {
	if substreamID <= 17 {
		return testOBU(TypeAudioFrameID0+Type(substreamID), data)
	}
	payload := append(uleb(substreamID), data...)
	return testOBU(TypeAudioFrame, payload)
}

func temporalDelimiterOBU() []byte {
	return testOBU(TypeTemporalDelimiter, nil)
}

func parameterBlockOBU(paramID uint32, rest []byte) []byte {
	payload := append(uleb(paramID), rest...)
	return testOBU(TypeParameterBlock, payload)
}

func pushAll(chunks ...[]byte) *Buffer {
	b := NewBuffer()
	for _, c := range chunks {
		b.Push(c)
	}
	return b
}
