package audio

import (
	"encoding/binary"
	"sync"
	"time"
)

const fakeChunkSamples = 1024

// FakeContext replays an in-memory PCM buffer through the capture
// interface. Replay mode and tests use it in place of a live microphone.
type FakeContext struct {
	pcm      []int16
	realtime bool
}

// NewFakeContext wraps pcm for replay. With realtime set, chunks are
// paced at the capture config's sample rate; otherwise the whole buffer
// is delivered as fast as the callback consumes it.
func NewFakeContext(pcm []int16, realtime bool) *FakeContext {
	return &FakeContext{pcm: pcm, realtime: realtime}
}

func (f *FakeContext) Devices() ([]DeviceInfo, error) { return nil, nil }
func (f *FakeContext) Close()                         {}

func (f *FakeContext) NewCapture(_ *DeviceInfo, config CaptureConfig) (CaptureDevice, error) {
	return &FakeCapture{
		pcm:        f.pcm,
		realtime:   f.realtime,
		sampleRate: config.SampleRate,
		done:       make(chan struct{}),
	}, nil
}

type FakeCapture struct {
	pcm        []int16
	realtime   bool
	sampleRate uint32
	done       chan struct{}

	mu       sync.Mutex
	cb       DataCallback
	stopCh   chan struct{}
	feedDone chan struct{}
}

// Done closes once the whole buffer has been delivered.
func (f *FakeCapture) Done() <-chan struct{} { return f.done }

func (f *FakeCapture) SetCallback(cb DataCallback) {
	f.mu.Lock()
	f.cb = cb
	f.mu.Unlock()
}

func (f *FakeCapture) ClearCallback() {
	f.mu.Lock()
	f.cb = nil
	f.mu.Unlock()
}

func (f *FakeCapture) DeviceName() string { return "replay" }

func (f *FakeCapture) loadCallback() DataCallback {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cb
}

func (f *FakeCapture) feedChunk(cb DataCallback, pos int) int {
	end := pos + fakeChunkSamples
	if end > len(f.pcm) {
		end = len(f.pcm)
	}
	chunk := make([]byte, (end-pos)*2)
	for i, s := range f.pcm[pos:end] {
		binary.LittleEndian.PutUint16(chunk[i*2:], uint16(s))
	}
	cb(chunk, uint32(end-pos))
	return end
}

func (f *FakeCapture) Start() error {
	f.stopCh = make(chan struct{})
	f.feedDone = make(chan struct{})

	var interval time.Duration
	if f.realtime && f.sampleRate > 0 {
		interval = time.Duration(fakeChunkSamples) * time.Second / time.Duration(f.sampleRate)
	}

	go func() {
		defer close(f.feedDone)
		pos := 0
		for pos < len(f.pcm) {
			select {
			case <-f.stopCh:
				return
			default:
			}

			cb := f.loadCallback()
			if cb == nil {
				time.Sleep(time.Millisecond)
				continue
			}
			pos = f.feedChunk(cb, pos)

			if interval > 0 {
				select {
				case <-f.stopCh:
					return
				case <-time.After(interval):
				}
			}
		}
		close(f.done)
	}()

	return nil
}

func (f *FakeCapture) Stop() {
	if f.stopCh == nil {
		return
	}
	select {
	case <-f.stopCh:
	default:
		close(f.stopCh)
	}
	<-f.feedDone
}

func (f *FakeCapture) Close() {}
