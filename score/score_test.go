package score

import (
	"math"
	"math/rand/v2"
	"testing"
)

func seeded() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

// spikyWindow alternates between full positive and full negative every
// stride, maxing out all three statistics: raw score exactly 1.0.
func spikyWindow(n int) []int16 {
	w := make([]int16, n)
	for i := range w {
		if (i/statStride)%2 == 0 {
			w[i] = 32767
		} else {
			w[i] = -32768
		}
	}
	return w
}

func TestInitialScore(t *testing.T) {
	e := New(Config{})
	if got := e.Last(); got != 0.2 {
		t.Errorf("initial score = %v, want 0.2", got)
	}
}

func TestSmoothingBlend(t *testing.T) {
	// Start at 0.2, feed a raw 1.0 window: 0.7*0.2 + 0.3*1.0 = 0.44.
	e := New(Config{})
	got := e.Score(spikyWindow(8000))
	if math.Abs(got-0.44) > 1e-9 {
		t.Errorf("smoothed score = %v, want 0.44", got)
	}
	if IsHigh(got) {
		t.Error("0.44 must not classify as high emergency")
	}
}

func TestSmoothingDeterministic(t *testing.T) {
	// Same state, same window, same result. No randomness on the
	// statistical path.
	window := spikyWindow(8000)
	a := New(Config{})
	b := New(Config{})
	for i := 0; i < 5; i++ {
		va, vb := a.Score(window), b.Score(window)
		if va != vb {
			t.Fatalf("divergence at window %d: %v vs %v", i, va, vb)
		}
	}
}

func TestSilentWindowDecaysScore(t *testing.T) {
	// Silence has raw score 0, so each window multiplies the smoothed
	// score by 0.7.
	e := New(Config{})
	e.Inject(0.8)
	silent := make([]int16, 8000)
	if got := e.Score(silent); math.Abs(got-0.56) > 1e-9 {
		t.Errorf("after one silent window got %v, want 0.56", got)
	}
	if got := e.Score(silent); math.Abs(got-0.392) > 1e-9 {
		t.Errorf("after two silent windows got %v, want 0.392", got)
	}
}

func TestInjectBypassesSmoothing(t *testing.T) {
	e := New(Config{})
	if got := e.Inject(0.8); got != 0.8 {
		t.Errorf("Inject returned %v, want 0.8", got)
	}
	if got := e.Last(); got != 0.8 {
		t.Errorf("Last after Inject = %v, want 0.8", got)
	}
	// No clamping either: values outside the nominal range pass through.
	if got := e.Inject(1.5); got != 1.5 {
		t.Errorf("Inject(1.5) returned %v", got)
	}
}

func TestHighEmergencyBoundary(t *testing.T) {
	if !IsHigh(0.71) {
		t.Error("0.71 must classify as high emergency")
	}
	if IsHigh(0.70) {
		t.Error("0.70 must not classify as high emergency (strict boundary)")
	}
}

func TestFallbackBounds(t *testing.T) {
	e := New(Config{Rand: seeded()})
	for i := 0; i < 1000; i++ {
		got := e.Fallback()
		if got < walkFloor || got > walkCeil {
			t.Fatalf("call %d: fallback returned %v, outside [%v, %v]", i, got, walkFloor, walkCeil)
		}
		if last := e.Last(); last < walkFloor || last > walkCeil {
			t.Fatalf("call %d: persisted score %v outside walk bounds", i, last)
		}
	}
}

func TestFallbackPersistsStepNotJitter(t *testing.T) {
	e := New(Config{Rand: seeded()})
	for i := 0; i < 200; i++ {
		before := e.Last()
		e.Fallback()
		after := e.Last()
		d := math.Abs(after - before)
		// Exactly one step per call, unless clamped at a bound.
		atBound := after == walkFloor || after == walkCeil
		if math.Abs(d-walkStep) > 1e-12 && !atBound {
			t.Fatalf("call %d: persisted delta %v, want ±%v", i, after-before, walkStep)
		}
	}
}

func TestFallbackJitterVaries(t *testing.T) {
	// The walk starts at 0.2 and cannot reach a clamping bound within
	// 50 calls, so consecutive returns must all differ.
	e := New(Config{Rand: seeded()})
	prev := e.Fallback()
	for i := 0; i < 50; i++ {
		got := e.Fallback()
		if got == prev {
			t.Fatalf("call %d: consecutive identical fallback values %v", i, got)
		}
		prev = got
	}
}

func TestEmptyWindowTakesFallback(t *testing.T) {
	e := New(Config{Rand: seeded()})
	before := e.Last()
	got := e.Score(nil)
	if got < walkFloor || got > walkCeil {
		t.Errorf("empty window score %v outside walk bounds", got)
	}
	if d := math.Abs(e.Last() - before); math.Abs(d-walkStep) > 1e-12 {
		t.Errorf("empty window moved persisted score by %v, want ±%v", d, walkStep)
	}
}

func TestSyntheticModeIgnoresAudio(t *testing.T) {
	// Forced-synthetic engines walk even on a maxed-out window: the
	// persisted score moves by one step, not by the smoothing blend.
	e := New(Config{Synthetic: true, Rand: seeded()})
	e.Score(spikyWindow(8000))
	got := e.Last()
	if got != 0.19 && got != 0.21 {
		t.Errorf("synthetic mode persisted %v, want 0.19 or 0.21", got)
	}
}

func TestScoreStaysInUnitRange(t *testing.T) {
	e := New(Config{})
	windows := [][]int16{
		spikyWindow(8000),
		make([]int16, 8000),
		spikyWindow(123),
		spikyWindow(20000),
	}
	for i := 0; i < 100; i++ {
		got := e.Score(windows[i%len(windows)])
		if got < 0 || got > 1 {
			t.Fatalf("iteration %d: score %v outside [0,1]", i, got)
		}
	}
}
