package main

import (
	"os"
	"strings"
	"testing"

	"callwatch/alarm"
	"callwatch/log"
	"callwatch/score"
)

func newTestMonitor() *monitor {
	alarm.Disable()
	return newMonitor(score.New(score.Config{}), "stats", false)
}

// loudWindow alternates full-swing samples every analyzer stride, so
// every visited sample is a jump: the statistical extractor scores it
// as raw 1.0.
func loudWindow(n int) []int16 {
	w := make([]int16, n)
	for i := range w {
		if (i/10)%2 == 0 {
			w[i] = 32767
		} else {
			w[i] = -32768
		}
	}
	return w
}

func TestMonitorRaisesOnSustainedLoudAudio(t *testing.T) {
	mon := newTestMonitor()
	window := loudWindow(windowSamples)

	raisedAt := -1
	for i := 0; i < 20; i++ {
		_, ev := mon.processWindow(window)
		if ev == AlertRaised {
			raisedAt = i
			break
		}
	}
	if raisedAt < 0 {
		t.Fatal("sustained loud audio never raised an alert")
	}
	// With raw 1.0 per window the smoothed score runs 0.44, 0.608,
	// 0.7256: first high at window 2, debounce raises on window 3.
	if raisedAt != 3 {
		t.Errorf("alert raised at window %d, want 3", raisedAt)
	}
	if !mon.alerts.Active() {
		t.Error("alert should be active after raise")
	}
}

func TestMonitorClearsAfterSilence(t *testing.T) {
	mon := newTestMonitor()
	loud := loudWindow(windowSamples)
	silent := make([]int16, windowSamples)

	for i := 0; i < 20; i++ {
		mon.processWindow(loud)
	}
	if !mon.alerts.Active() {
		t.Fatal("setup: alert not active")
	}

	cleared := false
	for i := 0; i < 10; i++ {
		_, ev := mon.processWindow(silent)
		if ev == AlertCleared {
			cleared = true
			break
		}
	}
	if !cleared {
		t.Fatal("silence never cleared the alert")
	}
	if mon.alerts.Active() {
		t.Error("alert still active after clear")
	}
}

func TestMonitorFinishReportsTotals(t *testing.T) {
	mon := newTestMonitor()
	loud := loudWindow(windowSamples)

	for i := 0; i < 12; i++ {
		mon.processWindow(loud)
	}
	windows, alerts := mon.finish()
	if windows != 12 {
		t.Errorf("windows = %d, want 12", windows)
	}
	if alerts != 1 {
		t.Errorf("alerts = %d, want 1", alerts)
	}
}

func TestMonitorFinishFlushesOpenEvidence(t *testing.T) {
	alarm.Disable()
	log.SetDir(t.TempDir())
	mon := newMonitor(score.New(score.Config{}), "stats", true)
	loud := loudWindow(windowSamples)

	for i := 0; i < 6; i++ {
		mon.processWindow(loud)
	}
	if !mon.evidence.Recording() {
		t.Fatal("setup: no evidence snippet open while alert active")
	}

	mon.finish()
	if mon.evidence.Recording() {
		t.Error("finish left the evidence snippet open")
	}

	entries, err := os.ReadDir(log.Dir())
	if err != nil {
		t.Fatalf("reading log dir: %v", err)
	}
	found := false
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "evidence_") && strings.HasSuffix(e.Name(), ".flac") {
			found = true
		}
	}
	if !found {
		t.Error("no evidence snippet written at finish")
	}
}

func TestMonitorSyntheticModeScoresWithoutAudio(t *testing.T) {
	alarm.Disable()
	mon := newMonitor(score.New(score.Config{Synthetic: true}), "synthetic", false)

	for i := 0; i < 50; i++ {
		s, _ := mon.processWindow(nil)
		if s < 0 || s > 1 {
			t.Fatalf("synthetic score %.3f outside [0,1]", s)
		}
	}
	if mon.windowCount() != 50 {
		t.Errorf("windowCount = %d, want 50", mon.windowCount())
	}
}
