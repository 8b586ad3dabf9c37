// Package speaker plays decoded PCM through physical speakers.
package speaker

import (
	"sync"

	"github.com/hajimehoshi/oto/v2"
	"github.com/pkg/errors"
)

const bitDepthInBytes = 2

var (
	mu      sync.Mutex
	context *oto.Context
	player  oto.Player
	queue   []byte
)

// Init initializes audio playback through speaker. Must be called before using this package.
// Samples pushed with Write must be interleaved 16-bit little-endian PCM with the channel
// count given here.
//
// The bufferSize argument specifies the number of samples of the speaker's buffer. Bigger
// bufferSize means lower CPU usage and more reliable playback. Lower bufferSize means better
// responsiveness and less delay.
func Init(sampleRate int, channelCount int, bufferSize int) error {
	if context != nil {
		return errors.New("speaker cannot be initialized more than once")
	}

	var err error
	var readyChan chan struct{}
	context, readyChan, err = oto.NewContext(sampleRate, channelCount, bitDepthInBytes)
	if err != nil {
		return errors.Wrap(err, "failed to initialize speaker")
	}
	<-readyChan

	player = context.NewPlayer(queueReader{})
	player.(oto.BufferSizeSetter).SetBufferSize(bufferSize * channelCount * bitDepthInBytes)
	player.Play()

	return nil
}

// Close stops playback and drops any queued samples.
//
// TODO: investigate what happens now that oto.Context doesn't have a Close method.
func Close() {
	if player != nil {
		player.Close()
		player = nil
		mu.Lock()
		queue = nil
		mu.Unlock()
	}
}

// Write queues interleaved PCM bytes for playback. It never blocks; the
// queue grows as needed, so the caller paces itself by decoding roughly
// in real time.
func Write(p []byte) {
	mu.Lock()
	queue = append(queue, p...)
	mu.Unlock()
}

// Buffered returns the number of queued bytes not yet handed to the
// driver.
func Buffered() int {
	mu.Lock()
	defer mu.Unlock()
	return len(queue)
}

// Pause suspends playback, keeping queued samples.
func Pause() {
	if player != nil {
		player.Pause()
	}
}

// Resume restarts playback after Pause.
func Resume() {
	if player != nil {
		player.Play()
	}
}

// queueReader feeds the queue to the driver, padding with silence when
// the decoder falls behind so the stream never ends.
type queueReader struct{}

func (queueReader) Read(buf []byte) (int, error) {
	mu.Lock()
	n := copy(buf, queue)
	queue = queue[n:]
	mu.Unlock()
	for i := n; i < len(buf); i++ {
		buf[i] = 0
	}
	return len(buf), nil
}
