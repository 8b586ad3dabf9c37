// Command iamf-wav decodes an IAMF file into a WAVE file.
package main

import (
	"io"
	"log"
	"os"

	"github.com/AOMediaCodec/iamf-tools"
	"github.com/AOMediaCodec/iamf-tools/wav"
)

func main() {
	if len(os.Args) != 3 {
		log.Fatalf("usage: iamf-wav <input.iamf> <output.wav>")
	}
	input, output := os.Args[1], os.Args[2]

	in, errOpen := os.Open(input)
	if errOpen != nil {
		log.Fatalf("open: %s: %s", input, errOpen)
	}
	defer in.Close()

	out, errCreate := os.Create(output)
	if errCreate != nil {
		log.Fatalf("create: %s: %s", output, errCreate)
	}
	defer out.Close()

	dec, errDec := iamf.New(iamf.Settings{OutputSampleType: iamf.Int16LittleEndian})
	if errDec != nil {
		log.Fatalf("decoder: %s", errDec)
	}

	var w *wav.Writer
	var frame []byte
	chunk := make([]byte, 4096)

	drain := func() {
		for dec.IsTemporalUnitAvailable() {
			n, err := dec.GetOutputTemporalUnit(frame)
			if err != nil {
				log.Fatalf("decode: %s", err)
			}
			if _, err := w.Write(frame[:n]); err != nil {
				log.Fatalf("write: %s", err)
			}
		}
	}

	for {
		n, errRead := in.Read(chunk)
		if n > 0 {
			if err := dec.Decode(chunk[:n]); err != nil {
				log.Fatalf("decode: %s", err)
			}
		}
		if w == nil && dec.IsDescriptorProcessingComplete() {
			rate, _ := dec.SampleRate()
			channels, _ := dec.NumberOfOutputChannels()
			size, _ := dec.OutputBufferSize()
			frame = make([]byte, size)

			var errWav error
			w, errWav = wav.NewWriter(out, rate, channels, iamf.Int16LittleEndian)
			if errWav != nil {
				log.Fatalf("wav: %s", errWav)
			}
			log.Printf("decoding: %d Hz, %d channels", rate, channels)
		}
		if w != nil {
			drain()
		}
		if errRead == io.EOF {
			break
		}
		if errRead != nil {
			log.Fatalf("read: %s: %s", input, errRead)
		}
	}

	if err := dec.SignalEndOfStream(); err != nil {
		log.Fatalf("decode: %s", err)
	}
	if w == nil {
		log.Fatalf("decode: %s: stream ended before descriptors completed", input)
	}
	drain()

	if err := w.Close(); err != nil {
		log.Fatalf("wav: %s", err)
	}
	log.Printf("done")
}
