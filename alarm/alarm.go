// Package alarm plays synthesized alert tones when the emergency score
// crosses the threshold. Best effort: playback failures are silent, the
// TUI and logs remain the authoritative record.
package alarm

import (
	"math"
	"sync"
)

var disabled bool

// Disable suppresses all playback (replay mode, tests).
func Disable() { disabled = true }

const (
	sampleRate = 44100

	// Alert: urgent high-pitched triple beep.
	alertFreq   = 1400
	alertVolume = 0.6
	alertDecay  = 25

	// Clear: single soft low tone.
	clearFreq   = 700
	clearVolume = 0.4
	clearDecay  = 50
)

var (
	alertSamples []int16
	clearSamples []int16
	soundOnce    sync.Once
)

func initSound() {
	alertSamples = repeatTone(3, alertFreq, 0.09, 0.06, alertVolume, alertDecay)
	clearSamples = tone(clearFreq, 0.25, clearVolume, clearDecay)
}

// tone synthesizes a decaying stereo sine burst.
func tone(freq, duration, volume, decay float64) []int16 {
	n := int(float64(sampleRate) * duration)
	samples := make([]int16, n*2)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(sampleRate)
		envelope := math.Exp(-t * decay)
		s := int16(math.Sin(2*math.Pi*freq*t) * 32767 * volume * envelope)
		samples[i*2] = s
		samples[i*2+1] = s
	}
	return samples
}

func repeatTone(count int, freq, beepDur, gapDur, volume, decay float64) []int16 {
	beep := tone(freq, beepDur, volume, decay)
	gap := make([]int16, int(float64(sampleRate)*gapDur)*2)
	var result []int16
	for i := 0; i < count; i++ {
		if i > 0 {
			result = append(result, gap...)
		}
		result = append(result, beep...)
	}
	return result
}

func Init() {
	soundOnce.Do(initSound)
}

// PlayAlert sounds the emergency tone. Asynchronous.
func PlayAlert() {
	if disabled {
		return
	}
	soundOnce.Do(initSound)
	go playSamples(alertSamples)
}

// PlayClear sounds the all-clear tone. Asynchronous.
func PlayClear() {
	if disabled {
		return
	}
	soundOnce.Do(initSound)
	go playSamples(clearSamples)
}
