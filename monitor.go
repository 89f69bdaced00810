package main

import (
	"sync"
	"time"

	"callwatch/alarm"
	"callwatch/encoder"
	"callwatch/log"
	"callwatch/score"
)

const (
	// windowSamples is the analysis window the scorer works on:
	// 500ms of mono 16kHz audio.
	windowSamples = 8000

	windowPeriod = windowSamples * time.Second / encoder.SampleRate

	// metricsEvery throttles diagnostics to one line per ~5s of audio.
	metricsEvery = 10
)

// monitor runs one scored window through the whole pipeline: speech
// tracking, scoring, alerting, evidence capture. Live capture and file
// replay both drive it, one window at a time.
type monitor struct {
	engine   *score.Engine
	speech   *speechTracker
	alerts   *alertMonitor
	evidence *evidenceRecorder
	mode     string

	mu      sync.Mutex
	windows int
}

func newMonitor(engine *score.Engine, mode string, withEvidence bool) *monitor {
	m := &monitor{
		engine: engine,
		speech: newSpeechTracker(),
		alerts: newAlertMonitor(),
		mode:   mode,
	}
	if withEvidence {
		m.evidence = newEvidenceRecorder()
	}
	return m
}

// processWindow scores one window and fires whatever the new score
// implies. Returns the smoothed score and the alert transition, if any.
func (m *monitor) processWindow(window []int16) (float64, AlertEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.speech.Process(window)
	smoothed := m.engine.Score(window)
	if m.evidence != nil {
		m.evidence.Push(window)
	}

	ev := m.alerts.Tick(smoothed)
	switch ev {
	case AlertRaised:
		log.AlertRaised(smoothed, m.speech.TickRatio())
		if m.evidence != nil {
			if err := m.evidence.Start(); err != nil {
				log.Errorf("evidence: %v", err)
			}
		}
		alarm.PlayAlert()
	case AlertRepeat:
		log.Warnf("alert still active, score %.3f", smoothed)
		alarm.PlayAlert()
	case AlertCleared:
		active := time.Duration(m.alerts.ActiveTicks()) * windowPeriod
		log.AlertCleared(smoothed, active)
		if m.evidence != nil {
			if _, err := m.evidence.Stop(); err != nil {
				log.Errorf("evidence: %v", err)
			}
		}
		alarm.PlayClear()
	}

	m.windows++
	if m.windows%metricsEvery == 0 {
		log.WindowMetrics(smoothed, m.speech.TickRatio(), m.mode)
	}
	return smoothed, ev
}

// finish flushes trailing state at end of session and reports totals.
func (m *monitor) finish() (windows, alerts int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.evidence != nil && m.evidence.Recording() {
		if _, err := m.evidence.Stop(); err != nil {
			log.Errorf("evidence: %v", err)
		}
	}
	return m.windows, m.alerts.Raised()
}

func (m *monitor) windowCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.windows
}
