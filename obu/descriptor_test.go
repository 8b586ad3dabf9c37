package obu

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestParseDescriptorsBasic(t *testing.T) {
	blob := basicDescriptors()
	b := pushAll(blob)

	set, err := ParseDescriptors(b, true)
	require.NoError(t, err)

	require.Equal(t, ProfileSimple, set.Sequence.PrimaryProfile)

	cc, ok := set.CodecConfigs[1]
	require.True(t, ok)
	require.Equal(t, CodecLPCM, cc.CodecID)
	require.Equal(t, uint32(48000), cc.SampleRate())
	require.Equal(t, uint32(8), cc.NumSamplesPerFrame)
	require.Equal(t, 16, cc.BitDepth())
	require.True(t, cc.LittleEndian())

	e, ok := set.AudioElements[7]
	require.True(t, ok)
	require.Equal(t, AudioElementSceneBased, e.Type)
	require.Equal(t, []uint32{18}, e.SubstreamIDs)
	require.Equal(t, 1, e.NumChannels())

	require.Len(t, set.MixPresentations, 1)
	m := set.MixPresentations[0]
	require.Equal(t, uint32(3), m.ID)
	require.Equal(t, []uint32{7}, m.AudioElementIDs())
	layouts := m.Layouts()
	require.Len(t, layouts, 1)
	require.Equal(t, SoundSystemA, layouts[0].SoundSystem)

	require.Equal(t, blob, set.RawBytes)
}

func TestParseDescriptorsShortStreaming(t *testing.T) {
	blob := basicDescriptors()
	b := pushAll(blob[:len(blob)-1])

	_, err := ParseDescriptors(b, false)
	require.Equal(t, ErrShortData, errors.Cause(err))
	require.Equal(t, int64(0), b.Tell())

	// Retrying after the last byte arrives succeeds.
	b.Push(blob[len(blob)-1:])
	set, err := ParseDescriptors(b, false)
	require.NoError(t, err)
	require.Equal(t, blob, set.RawBytes)
}

func TestParseDescriptorsTruncatedExhaustive(t *testing.T) {
	blob := basicDescriptors()
	b := pushAll(blob[:len(blob)-1])

	_, err := ParseDescriptors(b, true)
	require.Equal(t, ErrInvalidDescriptors, errors.Cause(err))
}

func TestParseDescriptorsStopsAtTemporalOBU(t *testing.T) {
	blob := basicDescriptors()
	b := pushAll(blob, temporalDelimiterOBU())

	set, err := ParseDescriptors(b, false)
	require.NoError(t, err)
	require.Equal(t, blob, set.RawBytes)
	// Cursor parked at the start of the temporal delimiter.
	require.Equal(t, int64(len(blob))*8, b.Tell())
}

func TestParseDescriptorsTemporalInExhaustiveBlob(t *testing.T) {
	b := pushAll(basicDescriptors(), temporalDelimiterOBU())
	_, err := ParseDescriptors(b, true)
	require.Equal(t, ErrInvalidDescriptors, errors.Cause(err))
}

func TestParseDescriptorsMissingSequenceHeader(t *testing.T) {
	var blob []byte
	blob = append(blob, lpcmCodecConfigOBU(1, 48000, 8, 16)...)
	blob = append(blob, ambisonicsMonoElementOBU(7, 1, 18)...)
	blob = append(blob, mixPresentationOBU(3, 7, SoundSystemA)...)
	_, err := ParseDescriptors(pushAll(blob), true)
	require.Equal(t, ErrInvalidDescriptors, errors.Cause(err))
}

func TestParseDescriptorsDuplicateCodecConfig(t *testing.T) {
	var blob []byte
	blob = append(blob, sequenceHeaderOBU()...)
	blob = append(blob, lpcmCodecConfigOBU(1, 48000, 8, 16)...)
	blob = append(blob, lpcmCodecConfigOBU(1, 44100, 16, 16)...)
	blob = append(blob, ambisonicsMonoElementOBU(7, 1, 18)...)
	blob = append(blob, mixPresentationOBU(3, 7, SoundSystemA)...)
	_, err := ParseDescriptors(pushAll(blob), true)
	require.Equal(t, ErrInvalidDescriptors, errors.Cause(err))
}

func TestParseDescriptorsUnknownElementReference(t *testing.T) {
	var blob []byte
	blob = append(blob, sequenceHeaderOBU()...)
	blob = append(blob, lpcmCodecConfigOBU(1, 48000, 8, 16)...)
	blob = append(blob, ambisonicsMonoElementOBU(7, 1, 18)...)
	blob = append(blob, mixPresentationOBU(3, 99, SoundSystemA)...)
	_, err := ParseDescriptors(pushAll(blob), true)
	require.Equal(t, ErrInvalidDescriptors, errors.Cause(err))
}

func TestParseDescriptorsDuplicateSubstream(t *testing.T) {
	var blob []byte
	blob = append(blob, sequenceHeaderOBU()...)
	blob = append(blob, lpcmCodecConfigOBU(1, 48000, 8, 16)...)
	blob = append(blob, ambisonicsMonoElementOBU(7, 1, 18)...)
	blob = append(blob, ambisonicsMonoElementOBU(8, 1, 18)...)
	blob = append(blob, mixPresentationOBU(3, 7, SoundSystemA)...)
	_, err := ParseDescriptors(pushAll(blob), true)
	require.Equal(t, ErrInvalidDescriptors, errors.Cause(err))
}

func TestParseDescriptorsSkipsImplausibleCodecConfig(t *testing.T) {
	var blob []byte
	blob = append(blob, sequenceHeaderOBU()...)
	blob = append(blob, testOBU(TypeCodecConfig, []byte{1, 2, 3})...) // too short to be real
	blob = append(blob, lpcmCodecConfigOBU(1, 48000, 8, 16)...)
	blob = append(blob, ambisonicsMonoElementOBU(7, 1, 18)...)
	blob = append(blob, mixPresentationOBU(3, 7, SoundSystemA)...)
	set, err := ParseDescriptors(pushAll(blob), true)
	require.NoError(t, err)
	require.Len(t, set.CodecConfigs, 1)
}

func TestParseDescriptorsMultipleLayouts(t *testing.T) {
	var blob []byte
	blob = append(blob, sequenceHeaderOBU()...)
	blob = append(blob, lpcmCodecConfigOBU(1, 48000, 8, 16)...)
	blob = append(blob, ambisonicsMonoElementOBU(7, 1, 18)...)
	blob = append(blob, mixPresentationOBU(3, 7, SoundSystemA, SoundSystemE)...)
	set, err := ParseDescriptors(pushAll(blob), true)
	require.NoError(t, err)
	layouts := set.MixPresentations[0].Layouts()
	require.Len(t, layouts, 2)
	require.Equal(t, SoundSystemE, layouts[1].SoundSystem)
}

func TestSubstreamElement(t *testing.T) {
	set, err := ParseDescriptors(pushAll(basicDescriptors()), true)
	require.NoError(t, err)

	e, idx, ok := set.SubstreamElement(18)
	require.True(t, ok)
	require.Equal(t, uint32(7), e.ID)
	require.Equal(t, 0, idx)

	_, _, ok = set.SubstreamElement(19)
	require.False(t, ok)
}

func TestSoundSystemChannels(t *testing.T) {
	require.Equal(t, 2, SoundSystemA.NumChannels())
	require.Equal(t, 11, SoundSystemE.NumChannels())
	require.Equal(t, 24, SoundSystemH.NumChannels())
	require.Equal(t, 1, SoundSystem12.NumChannels())
}
