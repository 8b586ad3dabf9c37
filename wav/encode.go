// Package wav writes decoded PCM into a WAVE container.
package wav

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/AOMediaCodec/iamf-tools/pcm"
)

type header struct {
	RiffMark      [4]byte
	FileSize      int32
	WaveMark      [4]byte
	FmtMark       [4]byte
	FormatSize    int32
	FormatType    int16
	NumChans      int16
	SampleRate    int32
	ByteRate      int32
	BytesPerFrame int16
	BitsPerSample int16
	DataMark      [4]byte
	DataSize      int32
}

const headerSize = 44

// Writer writes interleaved little-endian signed PCM, as produced by
// the decoder, into a WAVE file. Close finalizes the header; the
// destination must support seeking back to it.
type Writer struct {
	ws      io.WriteSeeker
	bw      *bufio.Writer
	h       header
	written int
}

// NewWriter writes the provisional WAVE header and returns a Writer
// expecting samples of the given type.
func NewWriter(ws io.WriteSeeker, sampleRate uint32, numChannels int, sampleType pcm.SampleType) (*Writer, error) {
	if numChannels <= 0 {
		return nil, errors.New("wav: invalid number of channels (less than 1)")
	}
	width := sampleType.Width()
	if width == 0 {
		return nil, errors.Errorf("wav: unsupported sample type %d", sampleType)
	}

	w := &Writer{
		ws: ws,
		bw: bufio.NewWriter(ws),
		h: header{
			RiffMark:      [4]byte{'R', 'I', 'F', 'F'},
			FileSize:      -1, // finalization
			WaveMark:      [4]byte{'W', 'A', 'V', 'E'},
			FmtMark:       [4]byte{'f', 'm', 't', ' '},
			FormatSize:    16,
			FormatType:    1,
			NumChans:      int16(numChannels),
			SampleRate:    int32(sampleRate),
			ByteRate:      int32(int(sampleRate) * numChannels * width),
			BytesPerFrame: int16(numChannels * width),
			BitsPerSample: int16(width) * 8,
			DataMark:      [4]byte{'d', 'a', 't', 'a'},
			DataSize:      -1, // finalization
		},
	}
	if err := binary.Write(w.bw, binary.LittleEndian, &w.h); err != nil {
		return nil, errors.Wrap(err, "wav")
	}
	return w, nil
}

// Write appends raw PCM bytes to the data chunk.
func (w *Writer) Write(p []byte) (int, error) {
	n, err := w.bw.Write(p)
	w.written += n
	if err != nil {
		return n, errors.Wrap(err, "wav")
	}
	return n, nil
}

// Close flushes buffered samples and rewrites the header with the final
// sizes. It does not close the underlying destination.
func (w *Writer) Close() (err error) {
	defer func() {
		if err != nil {
			err = errors.Wrap(err, "wav")
		}
	}()

	if err := w.bw.Flush(); err != nil {
		return err
	}
	w.h.FileSize = int32(headerSize + w.written)
	w.h.DataSize = int32(w.written)
	if _, err := w.ws.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if err := binary.Write(w.ws, binary.LittleEndian, &w.h); err != nil {
		return err
	}
	if _, err := w.ws.Seek(0, io.SeekEnd); err != nil {
		return err
	}
	return nil
}
