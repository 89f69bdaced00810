package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"callwatch/encoder"
	"callwatch/log"
)

// ~2s of audio context preceding the alert.
const evidencePreWindows = 4

// evidenceRecorder keeps a short rolling buffer of recent windows and,
// while an alert is active, encodes audio into a FLAC snippet saved
// under the log directory.
type evidenceRecorder struct {
	mu  sync.Mutex
	pre [][]int16
	enc *encoder.FlacEncoder
}

func newEvidenceRecorder() *evidenceRecorder {
	return &evidenceRecorder{}
}

// Push feeds every scored window. Idle, it maintains the pre-alert
// context; recording, it appends to the snippet.
func (r *evidenceRecorder) Push(window []int16) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.enc == nil {
		cp := make([]int16, len(window))
		copy(cp, window)
		r.pre = append(r.pre, cp)
		if len(r.pre) > evidencePreWindows {
			r.pre = r.pre[1:]
		}
		return
	}
	if err := r.enc.EncodeBlock(window); err != nil {
		log.Warnf("evidence encode: %v", err)
	}
}

// Start opens a snippet, seeding it with the buffered pre-alert context.
func (r *evidenceRecorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.enc != nil {
		return nil // already recording
	}
	enc, err := encoder.NewFlac()
	if err != nil {
		return fmt.Errorf("evidence recorder: %w", err)
	}
	for _, window := range r.pre {
		if err := enc.EncodeBlock(window); err != nil {
			return fmt.Errorf("evidence recorder: %w", err)
		}
	}
	r.pre = nil
	r.enc = enc
	return nil
}

// Stop closes the snippet and writes it to disk, returning the path.
func (r *evidenceRecorder) Stop() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.enc == nil {
		return "", nil
	}
	enc := r.enc
	r.enc = nil

	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("closing evidence snippet: %w", err)
	}

	name := fmt.Sprintf("evidence_%s.flac", time.Now().Format("20060102_150405"))
	path := filepath.Join(log.Dir(), name)
	if err := os.WriteFile(path, enc.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("writing evidence snippet: %w", err)
	}
	log.EvidenceSaved(path, enc.TotalFrames())
	return path, nil
}

// Recording reports whether a snippet is open.
func (r *evidenceRecorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enc != nil
}
