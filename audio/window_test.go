package audio

import (
	"encoding/binary"
	"testing"
)

func pcmBytes(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return buf
}

func TestWindowerEmitsFullWindows(t *testing.T) {
	var got [][]int16
	w := NewWindower(4, func(win []int16) { got = append(got, win) })

	w.Push(pcmBytes([]int16{1, 2, 3, 4, 5, 6, 7, 8, 9}))

	if len(got) != 2 {
		t.Fatalf("emitted %d windows, want 2", len(got))
	}
	want := [][]int16{{1, 2, 3, 4}, {5, 6, 7, 8}}
	for i, win := range want {
		for j, s := range win {
			if got[i][j] != s {
				t.Errorf("window %d sample %d = %d, want %d", i, j, got[i][j], s)
			}
		}
	}
	if w.Pending() != 1 {
		t.Errorf("pending = %d, want 1", w.Pending())
	}
}

func TestWindowerChunkedInput(t *testing.T) {
	// A window assembled from multiple chunks matches one fed whole.
	samples := []int16{10, -20, 30, -40}
	raw := pcmBytes(samples)

	var got [][]int16
	w := NewWindower(4, func(win []int16) { got = append(got, win) })
	w.Push(raw[:4])
	w.Push(raw[4:])

	if len(got) != 1 {
		t.Fatalf("emitted %d windows, want 1", len(got))
	}
	for i, s := range samples {
		if got[0][i] != s {
			t.Errorf("sample %d = %d, want %d", i, got[0][i], s)
		}
	}
}

func TestWindowerFlush(t *testing.T) {
	var got [][]int16
	w := NewWindower(8, func(win []int16) { got = append(got, win) })

	w.Push(pcmBytes([]int16{1, 2, 3}))
	if len(got) != 0 {
		t.Fatalf("premature emit of partial window")
	}

	w.Flush()
	if len(got) != 1 || len(got[0]) != 3 {
		t.Fatalf("flush emitted %v, want one 3-sample window", got)
	}
	if w.Pending() != 0 {
		t.Errorf("pending after flush = %d, want 0", w.Pending())
	}

	// Flushing an empty buffer emits nothing.
	w.Flush()
	if len(got) != 1 {
		t.Errorf("empty flush emitted a window")
	}
}
