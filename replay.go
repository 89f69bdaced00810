package main

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"

	"callwatch/alarm"
	"callwatch/audio"
	"callwatch/encoder"
	"callwatch/log"
	"callwatch/score"
)

// runReplay scores a recorded WAV file window by window and prints a
// summary. Headless: no TUI, no alarm tones, windows are processed as
// fast as they decode.
func runReplay(path string, engine *score.Engine, mode string) error {
	alarm.Disable()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return fmt.Errorf("%s: not a valid WAV file", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	if int(dec.SampleRate) != encoder.SampleRate {
		log.Warnf("%s is %dHz, scoring expects %dHz; results will be off",
			path, dec.SampleRate, encoder.SampleRate)
	}

	// Fold to mono by taking the first channel.
	chans := buf.Format.NumChannels
	if chans < 1 {
		chans = 1
	}
	pcm := make([]int16, 0, len(buf.Data)/chans)
	for i := 0; i < len(buf.Data); i += chans {
		pcm = append(pcm, int16(buf.Data[i]))
	}

	mon := newMonitor(engine, mode, false)
	var peak float64
	w := audio.NewWindower(windowSamples, func(window []int16) {
		smoothed, ev := mon.processWindow(window)
		if smoothed > peak {
			peak = smoothed
		}
		line := fmt.Sprintf("window %4d  score %.3f", mon.windowCount(), smoothed)
		switch ev {
		case AlertRaised:
			line += "  << ALERT"
		case AlertCleared:
			line += "  << cleared"
		}
		fmt.Println(line)
	})
	w.PushSamples(pcm)
	if mon.windowCount() == 0 {
		return fmt.Errorf("%s: shorter than one %d-sample window", path, windowSamples)
	}
	w.Flush()

	windows, alerts := mon.finish()
	fmt.Printf("\n%s: %d windows, peak score %.3f, %d alert(s)\n", path, windows, peak, alerts)
	return nil
}
