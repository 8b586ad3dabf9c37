package obu

import (
	"github.com/pkg/errors"
)

// Type identifies an OBU. The universe is closed: 5 bits on the wire.
type Type uint8

const (
	TypeCodecConfig       Type = 0
	TypeAudioElement      Type = 1
	TypeMixPresentation   Type = 2
	TypeParameterBlock    Type = 3
	TypeTemporalDelimiter Type = 4
	TypeAudioFrame        Type = 5
	// Types 6 through 23 are audio frames with an implicit substream ID
	// of Type-TypeAudioFrameID0.
	TypeAudioFrameID0  Type = 6
	TypeAudioFrameID17 Type = 23
	TypeSequenceHeader Type = 31
)

// IsDescriptor reports whether t belongs to the descriptor block.
func (t Type) IsDescriptor() bool {
	return t <= TypeMixPresentation || t == TypeSequenceHeader
}

// IsTemporal reports whether t belongs to a temporal unit.
func (t Type) IsTemporal() bool {
	return t >= TypeParameterBlock && t <= TypeAudioFrameID17
}

func (t Type) isAudioFrame() bool {
	return t >= TypeAudioFrame && t <= TypeAudioFrameID17
}

// An OBU payload may not exceed 2 MiB; anything larger is taken as a
// framing desynchronisation rather than a real unit.
const maxOBUSize = 2 * 1024 * 1024

// Header is the decoded OBU header: the leading byte, the ULEB128 size,
// and the optional trimming and extension fields that the size covers.
type Header struct {
	Type        Type
	Redundant   bool
	trimming    bool
	extension   bool
	PayloadSize int64 // bytes after the trimming/extension fields
	TotalSize   int64 // whole unit: header byte + size field + obu_size

	NumSamplesToTrimAtEnd   uint32
	NumSamplesToTrimAtStart uint32
}

// Unit is one framed OBU with its payload bytes.
type Unit struct {
	Header  Header
	Payload []byte
}

// Peek decodes the type and total size of the OBU at the cursor without
// consuming anything. It fails with ErrShortData when the header or size
// field is still incomplete.
func Peek(b *Buffer) (Type, int64, error) {
	start := b.Tell()
	defer b.Seek(start)

	first, err := b.ReadByte()
	if err != nil {
		return 0, 0, err
	}
	size, sizeLen, err := b.ReadULEB128()
	if err != nil {
		return 0, 0, err
	}
	if size > maxOBUSize {
		return 0, 0, errors.Errorf("obu: obu_size %d exceeds limit", size)
	}
	return Type(first >> 3), 1 + int64(sizeLen) + int64(size), nil
}

// ReadUnit frames and consumes one whole OBU. On ErrShortData the cursor
// is restored to the start of the unit so the read can be retried after
// more bytes arrive.
func ReadUnit(b *Buffer) (Unit, error) {
	start := b.Tell()
	u, err := readUnit(b)
	if err != nil {
		b.Seek(start)
		return Unit{}, err
	}
	return u, nil
}

func readUnit(b *Buffer) (Unit, error) {
	first, err := b.ReadByte()
	if err != nil {
		return Unit{}, err
	}
	h := Header{
		Type:      Type(first >> 3),
		Redundant: first&0x4 != 0,
		trimming:  first&0x2 != 0,
		extension: first&0x1 != 0,
	}
	size, sizeLen, err := b.ReadULEB128()
	if err != nil {
		return Unit{}, err
	}
	if size > maxOBUSize {
		return Unit{}, errors.Errorf("obu: obu_size %d exceeds limit", size)
	}
	h.TotalSize = 1 + int64(sizeLen) + int64(size)
	payloadSize := int64(size)

	if h.trimming {
		if !h.Type.isAudioFrame() {
			return Unit{}, errors.Errorf("obu: trimming flag on OBU type %d", h.Type)
		}
		var n int
		h.NumSamplesToTrimAtEnd, n, err = b.ReadULEB128()
		if err != nil {
			return Unit{}, err
		}
		payloadSize -= int64(n)
		h.NumSamplesToTrimAtStart, n, err = b.ReadULEB128()
		if err != nil {
			return Unit{}, err
		}
		payloadSize -= int64(n)
	}
	if h.extension {
		extSize, n, err := b.ReadULEB128()
		if err != nil {
			return Unit{}, err
		}
		payloadSize -= int64(n) + int64(extSize)
		if _, err := b.ReadBytes(int(extSize)); err != nil {
			return Unit{}, err
		}
	}
	if payloadSize < 0 {
		return Unit{}, errors.New("obu: header fields overflow obu_size")
	}
	if h.Redundant {
		switch {
		case h.Type.isAudioFrame(),
			h.Type == TypeParameterBlock,
			h.Type == TypeTemporalDelimiter:
			return Unit{}, errors.Errorf("obu: redundant copy of OBU type %d", h.Type)
		}
	}

	h.PayloadSize = payloadSize
	payload, err := b.ReadBytes(int(payloadSize))
	if err != nil {
		return Unit{}, err
	}
	return Unit{Header: h, Payload: payload}, nil
}
