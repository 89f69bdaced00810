package audio

import (
	"sync"
	"testing"
	"time"
)

func TestFakeCaptureDeliversWholeBuffer(t *testing.T) {
	pcm := make([]int16, fakeChunkSamples*3+100)
	for i := range pcm {
		pcm[i] = int16(i)
	}

	ctx := NewFakeContext(pcm, false)
	capture, err := ctx.NewCapture(nil, CaptureConfig{SampleRate: 16000, Channels: 1})
	if err != nil {
		t.Fatalf("NewCapture: %v", err)
	}

	var mu sync.Mutex
	var got []int16
	w := NewWindower(256, func(window []int16) {
		mu.Lock()
		got = append(got, window...)
		mu.Unlock()
	})
	capture.SetCallback(func(data []byte, frameCount uint32) {
		w.Push(data)
	})

	if err := capture.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	fake := capture.(*FakeCapture)
	select {
	case <-fake.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("fake capture never drained its buffer")
	}
	capture.Stop()
	w.Flush()

	mu.Lock()
	defer mu.Unlock()
	if len(got) != len(pcm) {
		t.Fatalf("delivered %d samples, want %d", len(got), len(pcm))
	}
	for i := range got {
		if got[i] != pcm[i] {
			t.Fatalf("sample %d = %d, want %d", i, got[i], pcm[i])
		}
	}
}

func TestFakeCaptureStopInterruptsFeed(t *testing.T) {
	ctx := NewFakeContext(make([]int16, fakeChunkSamples*1000), true)
	capture, err := ctx.NewCapture(nil, CaptureConfig{SampleRate: 16000, Channels: 1})
	if err != nil {
		t.Fatalf("NewCapture: %v", err)
	}
	capture.SetCallback(func(data []byte, frameCount uint32) {})
	if err := capture.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		capture.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not interrupt the realtime feed")
	}
}
