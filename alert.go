package main

import "callwatch/score"

const (
	// One tick per scored window (500ms cadence).
	alertDebounce    = 2  // consecutive high windows before raising
	alertRepeatEvery = 16 // ticks between repeat alarms while active (8s)

	// Clearing uses a lower bound than raising so the alert does not
	// flap while the smoothed score hovers around the threshold.
	alertClearBelow = 0.6
)

type AlertEvent int

const (
	AlertNone AlertEvent = iota
	AlertRaised
	AlertRepeat // periodic re-alarm while still high
	AlertCleared
)

// alertMonitor turns the per-window high-emergency classification into
// debounced raise/repeat/clear events for the notification surfaces.
type alertMonitor struct {
	ticks      int
	highRun    int
	active     bool
	lastAlarm  int
	raisedTick int
	raised     int // lifetime count
}

func newAlertMonitor() *alertMonitor {
	return &alertMonitor{}
}

func (m *alertMonitor) Tick(smoothed float64) AlertEvent {
	m.ticks++

	if score.IsHigh(smoothed) {
		m.highRun++
		if !m.active && m.highRun >= alertDebounce {
			m.active = true
			m.raised++
			m.lastAlarm = m.ticks
			m.raisedTick = m.ticks
			return AlertRaised
		}
		if m.active && m.ticks-m.lastAlarm >= alertRepeatEvery {
			m.lastAlarm = m.ticks
			return AlertRepeat
		}
		return AlertNone
	}

	m.highRun = 0
	if m.active && smoothed < alertClearBelow {
		m.active = false
		return AlertCleared
	}
	return AlertNone
}

func (m *alertMonitor) Active() bool { return m.active }

// ActiveTicks reports the ticks elapsed since the most recent raise.
// Still meaningful on the tick that clears the alert.
func (m *alertMonitor) ActiveTicks() int {
	if m.raisedTick == 0 {
		return 0
	}
	return m.ticks - m.raisedTick
}

func (m *alertMonitor) Raised() int { return m.raised }
