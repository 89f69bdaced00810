package audio

import (
	"encoding/binary"
	"sync"
)

// Windower reassembles the capture byte stream into fixed-length sample
// windows for the scoring pipeline. Backend chunk sizes are
// device-dependent and rarely align with window boundaries.
type Windower struct {
	mu   sync.Mutex
	size int
	buf  []int16
	emit func(window []int16)
}

// NewWindower builds a windower emitting windows of size samples.
// emit runs on the Push caller's goroutine, outside the internal lock,
// and owns the slice it receives.
func NewWindower(size int, emit func(window []int16)) *Windower {
	return &Windower{
		size: size,
		buf:  make([]int16, 0, size),
		emit: emit,
	}
}

// Push appends little-endian 16-bit PCM bytes, emitting every completed
// window. A trailing odd byte is dropped.
func (w *Windower) Push(data []byte) {
	var full [][]int16

	w.mu.Lock()
	for i := 0; i+1 < len(data); i += 2 {
		w.buf = append(w.buf, int16(binary.LittleEndian.Uint16(data[i:])))
		if len(w.buf) >= w.size {
			full = append(full, w.buf)
			w.buf = make([]int16, 0, w.size)
		}
	}
	w.mu.Unlock()

	for _, window := range full {
		w.emit(window)
	}
}

// PushSamples appends decoded samples directly, emitting every completed
// window. File replay already has samples and skips the byte path.
func (w *Windower) PushSamples(samples []int16) {
	var full [][]int16

	w.mu.Lock()
	for _, s := range samples {
		w.buf = append(w.buf, s)
		if len(w.buf) >= w.size {
			full = append(full, w.buf)
			w.buf = make([]int16, 0, w.size)
		}
	}
	w.mu.Unlock()

	for _, window := range full {
		w.emit(window)
	}
}

// Flush emits the buffered partial window, if any. Used at end of replay;
// the scorer handles short windows.
func (w *Windower) Flush() {
	w.mu.Lock()
	window := w.buf
	w.buf = make([]int16, 0, w.size)
	w.mu.Unlock()

	if len(window) > 0 {
		w.emit(window)
	}
}

// Pending reports the number of buffered samples awaiting a full window.
func (w *Windower) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.buf)
}
