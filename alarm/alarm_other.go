//go:build !linux

package alarm

// No tone playback off linux yet; the TUI banner and logs still fire.
func playSamples(samples []int16) {}
