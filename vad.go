package main

import (
	"math"
	"sync"
)

const (
	speechFrameSamples = 320 // 20ms at 16kHz

	// RMS hysteresis: a higher bar to enter speech than to stay in it.
	speechOnRMS   = 0.015
	speechOffRMS  = 0.008
	speechOnRun   = 3  // consecutive loud frames to confirm speech
	speechOffRun  = 30 // consecutive quiet frames to drop out (600ms)
)

// speechTracker estimates how much of the call audio is actually voice.
// Advisory only: the score engine never consults it, but alerts carry
// the ratio and the TUI displays it.
type speechTracker struct {
	mu           sync.Mutex
	buf          []int16
	inSpeech     bool
	onRun        int
	offRun       int
	totalFrames  int
	speechFrames int
	tickTotal    int
	tickSpeech   int
}

func newSpeechTracker() *speechTracker {
	return &speechTracker{}
}

func rms(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sumSquares float64
	for _, s := range samples {
		normalized := float64(s) / 32768.0
		sumSquares += normalized * normalized
	}
	return math.Sqrt(sumSquares / float64(len(samples)))
}

// Process consumes a window of samples, framing them internally.
func (t *speechTracker) Process(window []int16) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.buf = append(t.buf, window...)
	for len(t.buf) >= speechFrameSamples {
		frame := t.buf[:speechFrameSamples]
		t.buf = t.buf[speechFrameSamples:]
		t.processFrame(frame)
	}
}

func (t *speechTracker) processFrame(frame []int16) {
	level := rms(frame)
	if t.inSpeech {
		if level < speechOffRMS {
			t.offRun++
			if t.offRun >= speechOffRun {
				t.inSpeech = false
				t.offRun = 0
			}
		} else {
			t.offRun = 0
		}
	} else {
		if level >= speechOnRMS {
			t.onRun++
			if t.onRun >= speechOnRun {
				t.inSpeech = true
				t.onRun = 0
			}
		} else {
			t.onRun = 0
		}
	}

	t.totalFrames++
	if t.inSpeech {
		t.speechFrames++
	}
}

func (t *speechTracker) InSpeech() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inSpeech
}

// Ratio reports the lifetime fraction of frames classified as speech.
func (t *speechTracker) Ratio() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.totalFrames == 0 {
		return 0
	}
	return float64(t.speechFrames) / float64(t.totalFrames)
}

// TickRatio reports the speech fraction since the previous TickRatio
// call. One caller owns the tick cadence.
func (t *speechTracker) TickRatio() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	total := t.totalFrames - t.tickTotal
	speech := t.speechFrames - t.tickSpeech
	t.tickTotal, t.tickSpeech = t.totalFrames, t.speechFrames
	if total == 0 {
		return 0
	}
	return float64(speech) / float64(total)
}

func (t *speechTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = t.buf[:0]
	t.inSpeech = false
	t.onRun = 0
	t.offRun = 0
}
