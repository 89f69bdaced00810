package doctor

import (
	"fmt"
	"math"
	"sync"
	"time"

	"callwatch/audio"
	"callwatch/classifier"
	"callwatch/encoder"
	"callwatch/score"
)

const captureSeconds = 2

// Run executes diagnostic checks and returns an exit code (0=all pass, 1=any fail).
func Run(modelPath, onnxLib string) int {
	resetTerminal()
	setupInterruptHandler()

	fmt.Println("callwatch doctor - system diagnostics")
	fmt.Println("=====================================")

	allPass := true

	pcm, ok := checkMicrophone()
	if !ok {
		allPass = false
	}
	if !checkScoring(pcm) {
		allPass = false
	}
	if !checkModel(modelPath, onnxLib) {
		allPass = false
	}

	fmt.Println()
	if allPass {
		fmt.Println("All checks passed!")
	} else {
		fmt.Println("Some checks failed. See details above.")
	}

	if allPass {
		return 0
	}
	return 1
}

func checkMicrophone() ([]int16, bool) {
	fmt.Println()
	fmt.Println("[1/3] Microphone capture")

	ctx, err := audio.NewContext()
	if err != nil {
		fmt.Printf("  FAIL: cannot connect to audio: %v\n", err)
		return nil, false
	}
	defer ctx.Close()

	devices, err := ctx.Devices()
	if err != nil {
		fmt.Printf("  FAIL: cannot list devices: %v\n", err)
		return nil, false
	}
	if len(devices) == 0 {
		fmt.Println("  FAIL: no capture devices found")
		return nil, false
	}

	device := &devices[0]
	fmt.Printf("  Using device: %s\n", device.Name)
	if audio.IsBluetooth(device.Name) {
		fmt.Println("  Warning: bluetooth input, compressed audio skews scoring")
	}

	fmt.Printf("  Capturing %d seconds, speak normally", captureSeconds)
	pcm, err := recordSamples(ctx, device, captureSeconds*time.Second)
	if err != nil {
		fmt.Printf("\n  FAIL: capture error: %v\n", err)
		return nil, false
	}
	fmt.Println(" done")

	if len(pcm) == 0 {
		fmt.Println("  FAIL: no audio captured")
		return nil, false
	}

	var sum float64
	for _, s := range pcm {
		f := float64(s) / 32767.0
		sum += f * f
	}
	rms := math.Sqrt(sum / float64(len(pcm)))
	fmt.Printf("  Captured %d samples, RMS level %.4f\n", len(pcm), rms)
	if rms < 0.001 {
		fmt.Println("  FAIL: dead silence, check microphone and input volume")
		return pcm, false
	}
	fmt.Println("  PASS: microphone delivers audio")
	return pcm, true
}

func recordSamples(ctx audio.Context, device *audio.DeviceInfo, d time.Duration) ([]int16, error) {
	var mu sync.Mutex
	var pcm []int16

	w := audio.NewWindower(1024, func(window []int16) {
		mu.Lock()
		pcm = append(pcm, window...)
		mu.Unlock()
	})

	capture, err := ctx.NewCapture(device, audio.CaptureConfig{
		SampleRate: encoder.SampleRate,
		Channels:   encoder.Channels,
	})
	if err != nil {
		return nil, err
	}
	defer capture.Close()

	capture.SetCallback(func(data []byte, frameCount uint32) {
		w.Push(data)
	})
	if err := capture.Start(); err != nil {
		return nil, err
	}

	deadline := time.After(d)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			fmt.Print(".")
		case <-deadline:
			capture.Stop()
			capture.ClearCallback()
			mu.Lock()
			defer mu.Unlock()
			return pcm, nil
		}
	}
}

func checkScoring(pcm []int16) bool {
	fmt.Println()
	fmt.Println("[2/3] Scoring pipeline")

	engine := score.New(score.Config{})
	windows := 0
	peak := 0.0
	w := audio.NewWindower(8000, func(window []int16) {
		s := engine.Score(window)
		windows++
		if s > peak {
			peak = s
		}
		if s < 0 || s > 1 {
			fmt.Printf("  FAIL: score %.3f outside [0,1]\n", s)
		}
	})
	w.PushSamples(pcm)
	w.Flush()

	if windows > 0 {
		fmt.Printf("  Scored %d captured window(s), peak %.3f\n", windows, peak)
	} else {
		fmt.Println("  No captured audio, exercising the fallback walk")
	}

	// The fallback walk must hold its bounds regardless of input.
	fb := score.New(score.Config{Synthetic: true})
	for i := 0; i < 200; i++ {
		s := fb.Score(nil)
		if s < 0 || s > 1 {
			fmt.Printf("  FAIL: fallback score %.3f outside [0,1]\n", s)
			return false
		}
	}

	fmt.Println("  PASS: scores stay in range")
	return true
}

func checkModel(modelPath, onnxLib string) bool {
	fmt.Println()
	fmt.Println("[3/3] Emergency model")

	if modelPath == "" {
		fmt.Println("  SKIP: no -model given, statistical and synthetic modes remain available")
		return true
	}

	model, err := classifier.LoadONNX(modelPath, onnxLib)
	if err != nil {
		fmt.Printf("  FAIL: load model: %v\n", err)
		return false
	}
	defer model.Close()

	fmt.Printf("  Model loaded, input size %d\n", model.InputSize())

	conf, err := model.Classify(make([]float32, model.InputSize()))
	if err != nil {
		fmt.Printf("  FAIL: inference: %v\n", err)
		return false
	}
	if len(conf) != classifier.NumClasses {
		fmt.Printf("  FAIL: model emits %d classes, want %d\n", len(conf), classifier.NumClasses)
		return false
	}

	fmt.Println("  PASS: model answers inference")
	return true
}
