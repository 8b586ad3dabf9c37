package obu

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func parseBasicSet(t *testing.T, descriptors []byte) *DescriptorSet {
	t.Helper()
	set, err := ParseDescriptors(pushAll(descriptors), true)
	require.NoError(t, err)
	return set
}

func frameData(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(i + 1)
	}
	return out
}

func TestReadTemporalUnitCompletesWhenAllSubstreamsArrive(t *testing.T) {
	set := parseBasicSet(t, basicDescriptors())
	b := pushAll(audioFrameOBU(18, frameData(16)))

	tu, err := ReadTemporalUnit(b, set, false)
	require.NoError(t, err)
	require.NotNil(t, tu)
	require.Len(t, tu.AudioFrames, 1)
	require.Equal(t, uint32(18), tu.AudioFrames[0].SubstreamID)
	require.Equal(t, frameData(16), tu.AudioFrames[0].Data)
}

func TestReadTemporalUnitRewindsOnShortData(t *testing.T) {
	set := parseBasicSet(t, basicDescriptors())
	frame := audioFrameOBU(18, frameData(16))

	b := pushAll(frame[:len(frame)-4])
	tu, err := ReadTemporalUnit(b, set, false)
	require.NoError(t, err)
	require.Nil(t, tu)
	require.Equal(t, int64(0), b.Tell())

	b.Push(frame[len(frame)-4:])
	tu, err = ReadTemporalUnit(b, set, false)
	require.NoError(t, err)
	require.NotNil(t, tu)
	require.Len(t, tu.AudioFrames, 1)
}

func TestReadTemporalUnitDelimiterBounded(t *testing.T) {
	// Two substreams, but only the first ever sends: the delimiter of
	// the following unit has to close each unit.
	var blob []byte
	blob = append(blob, sequenceHeaderOBU()...)
	blob = append(blob, lpcmCodecConfigOBU(1, 48000, 8, 16)...)
	blob = append(blob, ambisonicsMonoElementOBU(7, 1, 2, 3)...)
	blob = append(blob, mixPresentationOBU(3, 7, SoundSystemA)...)
	set := parseBasicSet(t, blob)

	b := pushAll(
		temporalDelimiterOBU(),
		audioFrameOBU(2, frameData(16)),
		temporalDelimiterOBU(),
		audioFrameOBU(2, frameData(16)),
	)

	tu, err := ReadTemporalUnit(b, set, false)
	require.NoError(t, err)
	require.NotNil(t, tu)
	require.Len(t, tu.AudioFrames, 1)

	// Second unit is still incomplete without EOS.
	tu, err = ReadTemporalUnit(b, set, false)
	require.NoError(t, err)
	require.Nil(t, tu)

	tu, err = ReadTemporalUnit(b, set, true)
	require.NoError(t, err)
	require.NotNil(t, tu)
	require.Len(t, tu.AudioFrames, 1)
}

func TestReadTemporalUnitImplicitDelimiter(t *testing.T) {
	var blob []byte
	blob = append(blob, sequenceHeaderOBU()...)
	blob = append(blob, lpcmCodecConfigOBU(1, 48000, 8, 16)...)
	blob = append(blob, ambisonicsMonoElementOBU(7, 1, 2, 3)...)
	blob = append(blob, mixPresentationOBU(3, 7, SoundSystemA)...)
	set := parseBasicSet(t, blob)

	first := audioFrameOBU(2, frameData(16))
	b := pushAll(first, audioFrameOBU(2, frameData(16)))

	tu, err := ReadTemporalUnit(b, set, false)
	require.NoError(t, err)
	require.NotNil(t, tu)
	require.Len(t, tu.AudioFrames, 1)
	// The repeated substream's frame stays queued for the next unit.
	require.Equal(t, int64(len(first))*8, b.Tell())
}

func TestReadTemporalUnitTrivialBetweenDelimiters(t *testing.T) {
	set := parseBasicSet(t, basicDescriptors())
	b := pushAll(temporalDelimiterOBU(), temporalDelimiterOBU())

	tu, err := ReadTemporalUnit(b, set, false)
	require.NoError(t, err)
	require.NotNil(t, tu)
	require.Empty(t, tu.AudioFrames)
	require.Empty(t, tu.ParameterBlocks)
}

func TestReadTemporalUnitEmptyAtEOS(t *testing.T) {
	set := parseBasicSet(t, basicDescriptors())

	tu, err := ReadTemporalUnit(pushAll(temporalDelimiterOBU()), set, true)
	require.NoError(t, err)
	require.Nil(t, tu)

	tu, err = ReadTemporalUnit(NewBuffer(), set, true)
	require.NoError(t, err)
	require.Nil(t, tu)
}

func TestReadTemporalUnitParameterBlocks(t *testing.T) {
	set := parseBasicSet(t, basicDescriptors())
	b := pushAll(
		parameterBlockOBU(10, []byte{0x12, 0x34}),
		audioFrameOBU(18, frameData(16)),
	)

	tu, err := ReadTemporalUnit(b, set, false)
	require.NoError(t, err)
	require.NotNil(t, tu)
	require.Len(t, tu.ParameterBlocks, 1)
	require.Equal(t, uint32(10), tu.ParameterBlocks[0].ParamID)
	require.Len(t, tu.AudioFrames, 1)
}

func TestReadTemporalUnitUndeclaredSubstream(t *testing.T) {
	set := parseBasicSet(t, basicDescriptors())
	b := pushAll(audioFrameOBU(5, frameData(16)))

	_, err := ReadTemporalUnit(b, set, false)
	require.Equal(t, ErrCorruptTemporalUnit, errors.Cause(err))
}

func TestReadTemporalUnitRedundantDescriptorSkipped(t *testing.T) {
	set := parseBasicSet(t, basicDescriptors())
	redundant := rawOBU(TypeSequenceHeader, 0x4, append(u32be(iaCode), 0, 0))
	b := pushAll(redundant, audioFrameOBU(18, frameData(16)))

	tu, err := ReadTemporalUnit(b, set, false)
	require.NoError(t, err)
	require.NotNil(t, tu)
	require.Len(t, tu.AudioFrames, 1)
}

func TestReadTemporalUnitRejectsFreshDescriptor(t *testing.T) {
	set := parseBasicSet(t, basicDescriptors())
	b := pushAll(sequenceHeaderOBU())

	_, err := ReadTemporalUnit(b, set, false)
	require.Equal(t, ErrUnexpectedDescriptor, errors.Cause(err))
}
