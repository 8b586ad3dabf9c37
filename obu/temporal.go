package obu

import (
	"github.com/pkg/errors"
)

// ErrCorruptTemporalUnit reports an OBU that framed correctly but
// violates the structural rules of a temporal unit. The stream is
// unrecoverable past this point.
var ErrCorruptTemporalUnit = errors.New("obu: corrupt temporal unit")

// AudioFrame is one coded frame of one substream.
type AudioFrame struct {
	SubstreamID uint32
	Data        []byte
}

// ParameterBlock is one parameter block, kept as raw bytes past the
// leading parameter id.
type ParameterBlock struct {
	ParamID uint32
	Data    []byte
}

// TemporalUnit gathers every OBU sharing one timestamp. A unit with no
// frames and no parameter blocks is valid and still advances the clock.
type TemporalUnit struct {
	Timestamp       int64
	AudioFrames     []AudioFrame
	ParameterBlocks []ParameterBlock
}

// ReadTemporalUnit consumes OBUs from the cursor until one whole
// temporal unit is assembled. A unit ends at a temporal delimiter, when
// every substream declared by the descriptors has contributed a frame,
// when a substream contributes twice (the second frame starts the next
// unit), or, with eos set, when the stream runs out.
//
// Without eos, running out of bytes mid-unit rewinds the cursor to the
// start of the unit and returns (nil, nil); the caller retries after
// pushing more bytes. Redundant descriptor copies inside temporal
// territory are skipped; non-redundant ones fail with
// ErrUnexpectedDescriptor.
func ReadTemporalUnit(b *Buffer, set *DescriptorSet, eos bool) (*TemporalUnit, error) {
	start := b.Tell()
	numSubstreams := 0
	for _, id := range set.ElementOrder {
		numSubstreams += len(set.AudioElements[id].SubstreamIDs)
	}

	tu := &TemporalUnit{}
	seen := make(map[uint32]bool)
	sawDelimiter := false

	for {
		before := b.Tell()
		t, _, err := Peek(b)
		if err != nil {
			if errors.Cause(err) != ErrShortData {
				return nil, errors.WithMessagef(ErrCorruptTemporalUnit, "%v", err)
			}
			if eos {
				break
			}
			b.Seek(start)
			return nil, nil
		}

		if t == TypeTemporalDelimiter && (sawDelimiter || len(tu.AudioFrames) > 0 || len(tu.ParameterBlocks) > 0) {
			// The delimiter opens the next unit; leave it unconsumed. A
			// unit that is still empty here sits between two delimiters
			// and is emitted as a trivial unit.
			return tu, nil
		}

		u, err := ReadUnit(b)
		if err != nil {
			if errors.Cause(err) != ErrShortData {
				return nil, errors.WithMessagef(ErrCorruptTemporalUnit, "%v", err)
			}
			if eos {
				break
			}
			b.Seek(start)
			return nil, nil
		}

		switch {
		case u.Header.Type.IsDescriptor():
			if u.Header.Redundant {
				continue
			}
			return nil, ErrUnexpectedDescriptor

		case u.Header.Type == TypeTemporalDelimiter:
			if u.Header.PayloadSize != 0 {
				return nil, errors.WithMessage(ErrCorruptTemporalUnit, "temporal delimiter with payload")
			}
			sawDelimiter = true

		case u.Header.Type.isAudioFrame():
			id, data, err := frameSubstream(u)
			if err != nil {
				return nil, err
			}
			if _, _, ok := set.SubstreamElement(id); !ok {
				return nil, errors.WithMessagef(ErrCorruptTemporalUnit, "frame for undeclared substream %d", id)
			}
			if seen[id] {
				// Implicit delimiter: this frame belongs to the next unit.
				b.Seek(before)
				return tu, nil
			}
			seen[id] = true
			tu.AudioFrames = append(tu.AudioFrames, AudioFrame{SubstreamID: id, Data: data})
			if len(seen) == numSubstreams {
				return tu, nil
			}

		case u.Header.Type == TypeParameterBlock:
			pb := payloadBuffer(u.Payload)
			id, _, err := pb.ReadULEB128()
			if err != nil {
				return nil, errors.WithMessage(ErrCorruptTemporalUnit, "parameter block without id")
			}
			tu.ParameterBlocks = append(tu.ParameterBlocks, ParameterBlock{ParamID: id, Data: u.Payload})

		default:
			// Reserved OBU types are skipped.
		}
	}

	// End of stream. A unit that never got content produces no output.
	if len(tu.AudioFrames) == 0 && len(tu.ParameterBlocks) == 0 {
		return nil, nil
	}
	return tu, nil
}

// frameSubstream extracts the substream id of an audio frame OBU: from
// the type for the compact forms, from a leading ULEB128 otherwise.
func frameSubstream(u Unit) (uint32, []byte, error) {
	if u.Header.Type >= TypeAudioFrameID0 {
		return uint32(u.Header.Type - TypeAudioFrameID0), u.Payload, nil
	}
	pb := payloadBuffer(u.Payload)
	id, n, err := pb.ReadULEB128()
	if err != nil {
		return 0, nil, errors.WithMessage(ErrCorruptTemporalUnit, "audio frame without substream id")
	}
	return id, u.Payload[n:], nil
}
