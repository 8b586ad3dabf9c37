// Package obu implements framing and parsing of IAMF Open Bitstream Units.
//
// The package is built around Buffer, a growable bit-addressed byte buffer
// that byte chunks are pushed into as they arrive from the network or a
// file. Every read on Buffer is all-or-nothing: when fewer bits remain
// than requested the read fails with ErrShortData and the cursor stays
// where it was, so callers can park mid-OBU and retry once more bytes
// have been pushed.
package obu

import (
	"github.com/pkg/errors"
)

// ErrShortData reports that the buffer holds fewer bits than a read
// requested. The cursor is unchanged; pushing more bytes and retrying
// the same read is always valid.
var ErrShortData = errors.New("obu: short data")

const initialBufferSize = 1024

// maxStringSize bounds ReadString, matching the IAMF limit on
// human-readable labels.
const maxStringSize = 128

// maxULEB128Size bounds the encoded size of a ULEB128 value.
const maxULEB128Size = 8

// Buffer is a bit-addressed read buffer over pushed byte chunks.
//
// Positions are measured in bits from the current base. Flush discards
// leading bytes and rebases all positions, which keeps steady-state
// memory bounded by one temporal unit's worth of bytes.
type Buffer struct {
	data []byte
	pos  int64 // read cursor in bits from data[0]
}

// NewBuffer returns an empty Buffer.
func NewBuffer() *Buffer {
	return &Buffer{data: make([]byte, 0, initialBufferSize)}
}

// Push appends p to the end of the buffer.
func (b *Buffer) Push(p []byte) {
	b.data = append(b.data, p...)
}

// Tell returns the cursor position in bits.
func (b *Buffer) Tell() int64 {
	return b.pos
}

// Seek moves the cursor to pos bits. It panics if pos is outside the
// buffered region; positions are only ever obtained from Tell, so an
// out-of-range seek is a bug in the caller.
func (b *Buffer) Seek(pos int64) {
	if pos < 0 || pos > int64(len(b.data))*8 {
		panic("obu: seek out of range")
	}
	b.pos = pos
}

// Flush discards the first n bytes of the buffer and rebases the cursor.
// It panics unless all n bytes have already been consumed.
func (b *Buffer) Flush(n int) {
	if int64(n)*8 > b.pos {
		panic("obu: flushing unread bytes")
	}
	b.data = append(b.data[:0], b.data[n:]...)
	b.pos -= int64(n) * 8
}

// Len returns the number of buffered bytes, including consumed ones
// that have not been flushed yet.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Slice returns a copy of the bytes between the byte-aligned bit
// positions from and to. It panics on misaligned or out-of-range bounds.
func (b *Buffer) Slice(from, to int64) []byte {
	if from%8 != 0 || to%8 != 0 || from < 0 || to > int64(len(b.data))*8 || from > to {
		panic("obu: bad slice bounds")
	}
	out := make([]byte, (to-from)/8)
	copy(out, b.data[from/8:to/8])
	return out
}

func (b *Buffer) remaining() int64 {
	return int64(len(b.data))*8 - b.pos
}

// ReadBits reads the next n bits (n <= 64) into the low bits of the
// result, most significant bit first.
func (b *Buffer) ReadBits(n uint) (uint64, error) {
	if n > 64 {
		panic("obu: more than 64 bits requested")
	}
	if b.remaining() < int64(n) {
		return 0, ErrShortData
	}
	var v uint64
	for i := uint(0); i < n; i++ {
		byteIdx := b.pos / 8
		bitIdx := 7 - uint(b.pos%8)
		v = v<<1 | uint64(b.data[byteIdx]>>bitIdx&1)
		b.pos++
	}
	return v, nil
}

// ReadByte reads one byte. The cursor need not be byte aligned.
func (b *Buffer) ReadByte() (byte, error) {
	v, err := b.ReadBits(8)
	return byte(v), err
}

// ReadBytes reads n bytes into a fresh slice.
func (b *Buffer) ReadBytes(n int) ([]byte, error) {
	if b.remaining() < int64(n)*8 {
		return nil, ErrShortData
	}
	out := make([]byte, n)
	if b.pos%8 == 0 {
		copy(out, b.data[b.pos/8:b.pos/8+int64(n)])
		b.pos += int64(n) * 8
		return out, nil
	}
	for i := range out {
		v, _ := b.ReadBits(8)
		out[i] = byte(v)
	}
	return out, nil
}

// ReadULEB128 decodes an unsigned little-endian base-128 integer and
// reports its encoded size in bytes. IAMF requires the decoded value to
// fit in 32 bits and the encoding to span at most 8 bytes.
func (b *Buffer) ReadULEB128() (uint32, int, error) {
	start := b.pos
	var v uint64
	for i := 0; i < maxULEB128Size; i++ {
		c, err := b.ReadByte()
		if err != nil {
			b.pos = start
			return 0, 0, err
		}
		v |= uint64(c&0x7f) << (7 * uint(i))
		if v > 0xffffffff {
			b.pos = start
			return 0, 0, errors.New("obu: uleb128 overflows 32 bits")
		}
		if c&0x80 == 0 {
			return uint32(v), i + 1, nil
		}
	}
	b.pos = start
	return 0, 0, errors.New("obu: uleb128 longer than 8 bytes")
}

// ReadSigned16 reads a big-endian two's-complement 16-bit integer.
func (b *Buffer) ReadSigned16() (int16, error) {
	v, err := b.ReadBits(16)
	return int16(v), err
}

// ReadUint32 reads a big-endian 32-bit integer.
func (b *Buffer) ReadUint32() (uint32, error) {
	v, err := b.ReadBits(32)
	return uint32(v), err
}

// ReadString reads a NUL-terminated UTF-8 string of at most
// maxStringSize bytes, terminator included.
func (b *Buffer) ReadString() (string, error) {
	start := b.pos
	var out []byte
	for i := 0; i < maxStringSize; i++ {
		c, err := b.ReadByte()
		if err != nil {
			b.pos = start
			return "", err
		}
		if c == 0 {
			return string(out), nil
		}
		out = append(out, c)
	}
	b.pos = start
	return "", errors.New("obu: unterminated string")
}
