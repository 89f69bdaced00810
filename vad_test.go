package main

import (
	"math"
	"testing"
)

func toneSamples(freq float64, amplitude int16, durationMs int) []int16 {
	n := 16000 * durationMs / 1000
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16(float64(amplitude) * math.Sin(2*math.Pi*freq*float64(i)/16000))
	}
	return samples
}

func TestSpeechTrackerDetectsTone(t *testing.T) {
	tr := newSpeechTracker()
	// 200ms of a loud tone: RMS ~0.35, well above the on threshold.
	tr.Process(toneSamples(440, 16000, 200))
	if !tr.InSpeech() {
		t.Error("loud tone not classified as speech")
	}
	if tr.Ratio() == 0 {
		t.Error("speech ratio zero after loud tone")
	}
}

func TestSpeechTrackerSilence(t *testing.T) {
	tr := newSpeechTracker()
	tr.Process(make([]int16, 16000))
	if tr.InSpeech() {
		t.Error("silence classified as speech")
	}
	if tr.Ratio() != 0 {
		t.Errorf("speech ratio on silence = %v, want 0", tr.Ratio())
	}
}

func TestSpeechTrackerHysteresis(t *testing.T) {
	tr := newSpeechTracker()
	tr.Process(toneSamples(440, 16000, 200))
	if !tr.InSpeech() {
		t.Fatal("setup: tone not detected")
	}
	// A short gap (under the off debounce) must not drop speech.
	tr.Process(make([]int16, speechFrameSamples*(speechOffRun-1)))
	if !tr.InSpeech() {
		t.Error("dropped out of speech during short gap")
	}
	// A long gap does.
	tr.Process(make([]int16, speechFrameSamples*speechOffRun))
	if tr.InSpeech() {
		t.Error("still in speech after long silence")
	}
}

func TestSpeechTrackerOddWindowSizes(t *testing.T) {
	tr := newSpeechTracker()
	// Feed silence in chunks that never align with the 320-sample frame.
	silence := make([]int16, 100)
	for i := 0; i < 100; i++ {
		tr.Process(silence)
	}
	if tr.InSpeech() {
		t.Error("silence in odd chunks classified as speech")
	}
}

func TestSpeechTrackerTickRatio(t *testing.T) {
	tr := newSpeechTracker()
	tr.Process(toneSamples(440, 16000, 200))
	first := tr.TickRatio()
	if first == 0 {
		t.Error("tick ratio zero after loud tone")
	}
	// Nothing new processed: next tick covers zero frames.
	if got := tr.TickRatio(); got != 0 {
		t.Errorf("empty tick ratio = %v, want 0", got)
	}
}

func TestSpeechTrackerReset(t *testing.T) {
	tr := newSpeechTracker()
	tr.Process(toneSamples(440, 16000, 200))
	tr.Reset()
	if tr.InSpeech() {
		t.Error("in speech after reset")
	}
}
