package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"math"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"sync"
	"syscall"
	"time"

	"callwatch/alarm"
	"callwatch/audio"
	"callwatch/classifier"
	"callwatch/doctor"
	"callwatch/encoder"
	"callwatch/log"
	"callwatch/score"
)

var version = "dev"

var shutdownOnce sync.Once

func gracefulShutdown(mon *monitor) {
	shutdownOnce.Do(func() {
		if mon != nil {
			windows, alerts := mon.finish()
			log.SessionEnd(windows, alerts)
		}
		log.Close()
		tuiMu.Lock()
		p := tuiProgram
		tuiMu.Unlock()
		if p != nil {
			p.Quit()
		}
		os.Exit(0)
	})
}

func deviceLineText(dev *audio.DeviceInfo) string {
	name := "system default"
	suffix := ""
	if dev != nil {
		name = dev.Name
		if audio.IsBluetooth(dev.Name) {
			suffix = " (BT!)"
		}
	}
	return "mic: " + name + suffix
}

func modeLineText(mode string) string {
	return fmt.Sprintf("[%s mode | alert above %.2f]", mode, score.Threshold)
}

func main() {
	deviceFlag := flag.String("device", "", "Use named microphone device")
	setupFlag := flag.Bool("setup", false, "Select microphone device (otherwise uses system default)")
	fileFlag := flag.String("file", "", "Score a WAV file instead of live capture")
	modeFlag := flag.String("mode", "synthetic", "Scoring mode: synthetic, stats, or model")
	modelFlag := flag.String("model", "", "Path to ONNX emergency classifier (model mode)")
	onnxlibFlag := flag.String("onnxlib", "", "Path to the onnxruntime shared library")
	evidenceFlag := flag.Bool("evidence", true, "Save FLAC snippets of alerted audio")
	muteFlag := flag.Bool("mute", false, "Disable alarm tones")
	tuiFlag := flag.Bool("tui", true, "Run with terminal UI")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	profileFlag := flag.String("profile", "", "Enable pprof profiling server (e.g., :6060 or localhost:6060)")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	doctorFlag := flag.Bool("doctor", false, "Run system diagnostics and exit")
	crashFlag := flag.Bool("crash", false, "Trigger synthetic panic for testing crash logging")
	flag.Parse()

	// Resolve log directory early
	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)

	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}

	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	if *profileFlag != "" {
		go func() {
			fmt.Fprintf(os.Stderr, "pprof server listening on http://%s/debug/pprof/\n", *profileFlag)
			if err := http.ListenAndServe(*profileFlag, nil); err != nil {
				fmt.Fprintf(os.Stderr, "pprof server error: %v\n", err)
			}
		}()
	}

	if *crashFlag {
		panic("TEST CRASH: synthetic panic to verify crash logging")
	}

	if *versionFlag {
		fmt.Printf("callwatch %s\n", version)
		os.Exit(0)
	}

	if *doctorFlag {
		os.Exit(doctor.Run(*modelFlag, *onnxlibFlag))
	}

	engine, err := buildEngine(*modeFlag, *modelFlag, *onnxlibFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *fileFlag != "" {
		if err := log.Init(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
		}
		if err := runReplay(*fileFlag, engine, *modeFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			log.Close()
			os.Exit(1)
		}
		log.Close()
		return
	}

	if *muteFlag {
		alarm.Disable()
	} else {
		go alarm.Init()
	}

	ctx, err := audio.NewContext()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing audio context: %v\n", err)
		os.Exit(1)
	}
	defer ctx.Close()

	var selectedDevice *audio.DeviceInfo
	if *deviceFlag != "" {
		if devices, err := ctx.Devices(); err == nil {
			for i := range devices {
				if devices[i].Name == *deviceFlag {
					selectedDevice = &devices[i]
					break
				}
			}
		}
		if selectedDevice == nil {
			fmt.Fprintf(os.Stderr, "Error: device %q not found\n", *deviceFlag)
			os.Exit(1)
		}
	} else if *setupFlag {
		selectedDevice, err = audio.SelectDevice(ctx)
		if err != nil {
			fmt.Printf("Warning: device selection failed: %v\n", err)
			fmt.Println("Falling back to default device")
			selectedDevice = nil
		}
	}

	captureConfig := audio.CaptureConfig{
		SampleRate: encoder.SampleRate,
		Channels:   encoder.Channels,
	}
	captureDevice, err := ctx.NewCapture(selectedDevice, captureConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing capture device: %v\n", err)
		os.Exit(1)
	}
	defer captureDevice.Close()

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	} else {
		log.SessionStart(*modeFlag, captureDevice.DeviceName())
	}

	mon := newMonitor(engine, *modeFlag, *evidenceFlag)

	headless := !*tuiFlag
	windower := audio.NewWindower(windowSamples, func(window []int16) {
		smoothed, ev := mon.processWindow(window)
		tuiSend(WindowScoreMsg{Score: smoothed})
		tuiSend(SpeechRatioMsg{Ratio: mon.speech.Ratio()})
		if ev != AlertNone {
			tuiSend(AlertMsg{Event: ev, Score: smoothed})
		}
		if headless {
			switch ev {
			case AlertRaised:
				fmt.Printf("%s ALERT score %.3f\n", time.Now().Format("15:04:05"), smoothed)
			case AlertCleared:
				fmt.Printf("%s alert cleared, score %.3f\n", time.Now().Format("15:04:05"), smoothed)
			}
		}
	})

	captureDevice.SetCallback(func(data []byte, frameCount uint32) {
		if len(data) > 1 {
			var sumSquares float64
			for i := 0; i+1 < len(data); i += 2 {
				sample := int16(binary.LittleEndian.Uint16(data[i:]))
				normalized := float64(sample) / 32768.0
				sumSquares += normalized * normalized
			}
			tuiSend(AudioLevelMsg{Level: math.Sqrt(sumSquares / float64(len(data)/2))})
		}
		windower.Push(data)
	})

	if *tuiFlag {
		tuiMu.Lock()
		tuiProgram = NewTUIProgram()
		tuiMu.Unlock()

		go func() {
			if _, err := tuiProgram.Run(); err != nil {
				log.Errorf("TUI error: %v", err)
				os.Exit(1)
			}
			gracefulShutdown(mon)
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		gracefulShutdown(mon)
	}()

	if err := captureDevice.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error starting capture: %v\n", err)
		log.Errorf("capture start error: %v", err)
		os.Exit(1)
	}

	tuiSend(ModeLineMsg{Text: modeLineText(*modeFlag)})
	tuiSend(DeviceLineMsg{Text: deviceLineText(selectedDevice)})
	if selectedDevice != nil && audio.IsBluetooth(selectedDevice.Name) {
		log.Warn("bluetooth input device, compressed audio skews scoring")
		logToTUI("bluetooth input, scores may run low")
	}
	if headless {
		fmt.Printf("callwatch %s monitoring (%s mode), Ctrl+C to stop\n", version, *modeFlag)
	}

	start := time.Now()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for range ticker.C {
		tuiSend(SessionTickMsg{Duration: time.Since(start).Seconds()})
	}
}

// buildEngine maps the -mode flag onto a scoring engine. Model mode
// fails loudly when the model cannot load rather than silently walking.
func buildEngine(mode, modelPath, onnxLib string) (*score.Engine, error) {
	switch mode {
	case "synthetic":
		return score.New(score.Config{Synthetic: true}), nil
	case "stats":
		return score.New(score.Config{}), nil
	case "model":
		if modelPath == "" {
			return nil, fmt.Errorf("model mode needs -model <path.onnx>")
		}
		model, err := classifier.LoadONNX(modelPath, onnxLib)
		if err != nil {
			return nil, fmt.Errorf("load model: %w", err)
		}
		return score.New(score.Config{Model: model}), nil
	default:
		return nil, fmt.Errorf("unknown mode %q (use synthetic, stats, or model)", mode)
	}
}
