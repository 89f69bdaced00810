package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	diagLog   zerolog.Logger
	diagFile  *os.File
	alertFile *os.File
	logMu     sync.Mutex
	logReady  bool
	pid       int
	dir       string
)

func ResolveDir(flagPath string) (string, error) {
	// Priority 1: -logpath flag
	if flagPath != "" {
		if !filepath.IsAbs(flagPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, flagPath), nil
		}
		return flagPath, nil
	}

	// Priority 2: CALLWATCH_LOG_PATH environment variable
	envPath := os.Getenv("CALLWATCH_LOG_PATH")
	if envPath != "" {
		if !filepath.IsAbs(envPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, envPath), nil
		}
		return envPath, nil
	}

	// Priority 3: Default OS-specific location
	return getDefaultDir()
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	pid = os.Getpid()

	var err error

	diagPath := filepath.Join(dir, "diagnostics_log.txt")
	diagFile, err = os.OpenFile(diagPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	alertPath := filepath.Join(dir, "alerts_log.txt")
	alertFile, err = os.OpenFile(alertPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		diagFile.Close()
		return err
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        diagFile,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).With().Timestamp().Int("pid", pid).Logger()

	logReady = true
	return nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	if alertFile != nil {
		alertFile.Close()
		alertFile = nil
	}
	logReady = false
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Error(msg string) {
	if logReady {
		diagLog.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Warn(msg string) {
	if logReady {
		diagLog.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

// WindowMetrics records the pipeline state at one scored window.
// Callers throttle; this is not meant to run at window rate.
func WindowMetrics(smoothed, speechRatio float64, mode string) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("mode", mode).
		Float64("smoothed", smoothed).
		Float64("speech_ratio", speechRatio).
		Msg("window")
}

// AlertRaised records an alert in both logs: structured diagnostics and
// the human-readable alert trail.
func AlertRaised(score, speechRatio float64) {
	if !logReady {
		return
	}
	diagLog.Warn().
		Float64("score", score).
		Float64("speech_ratio", speechRatio).
		Msg("alert_raised")
	alertLine(fmt.Sprintf("raised\tscore=%.3f\tspeech=%.2f", score, speechRatio))
}

func AlertCleared(score float64, active time.Duration) {
	if !logReady {
		return
	}
	diagLog.Info().
		Float64("score", score).
		Dur("active", active).
		Msg("alert_cleared")
	alertLine(fmt.Sprintf("cleared\tscore=%.3f\tactive=%s", score, active.Round(time.Second)))
}

func EvidenceSaved(path string, frames uint64) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("path", path).
		Uint64("frames", frames).
		Msg("evidence_saved")
}

func alertLine(text string) {
	logMu.Lock()
	defer logMu.Unlock()
	if alertFile == nil {
		return
	}
	line := fmt.Sprintf("%s\t[%d]\t%s\n", time.Now().Format("2006-01-02 15:04:05"), pid, text)
	alertFile.WriteString(line)
}

func SessionStart(mode, device string) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("mode", mode).
		Str("device", device).
		Msg("session_start")
}

func SessionEnd(windows, alerts int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Int("windows", windows).
		Int("alerts", alerts).
		Msg("session_end")
}
