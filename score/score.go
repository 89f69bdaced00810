// Package score maintains a rolling emergency score over call-audio windows.
//
// Each window of 16-bit samples is reduced to a raw value in [0,1] by one of
// three extraction paths (model classification, statistical analysis, or a
// synthetic random walk) and blended into a single exponentially smoothed
// score. Callers compare the smoothed score against Threshold.
//
// The engine never returns an error: a missing window or a failing model
// degrades to the synthetic walk, so every call yields a usable score.
package score

import (
	"fmt"
	"math/rand/v2"
	"sync"
)

const (
	// Threshold classifies a smoothed score as high emergency. Strictly
	// greater-than: 0.70 itself is not high.
	Threshold = 0.7

	initialScore = 0.2

	// Exponential smoothing weights. A sustained change in the raw score
	// takes roughly three windows to be fully reflected.
	smoothKeep  = 0.7
	smoothBlend = 0.3

	// Bounds and step of the synthetic walk.
	walkFloor  = 0.1
	walkCeil   = 0.9
	walkStep   = 0.01
	walkJitter = 0.025

	numClasses = 10
)

// Classifier runs a pre-trained model over a fixed-width feature vector.
type Classifier interface {
	// InputSize reports the model's declared input width.
	InputSize() int

	// Classify returns one confidence per class for a 1×InputSize input.
	Classify(features []float32) ([]float32, error)
}

// Config selects the extraction policy for an Engine.
type Config struct {
	// Synthetic forces the fallback walk for every window, regardless of
	// input. This is the demo configuration.
	Synthetic bool

	// Model enables the classification path when non-nil. When nil,
	// windows go through statistical analysis instead.
	Model Classifier

	// Rand overrides the walk's randomness source. Tests only; nil gets
	// a freshly seeded source.
	Rand *rand.Rand
}

// Engine owns the one persistent smoothed score. Safe for concurrent use;
// no method blocks on I/O.
type Engine struct {
	mu        sync.Mutex
	last      float64
	rng       *rand.Rand
	model     Classifier
	synthetic bool
}

func New(cfg Config) *Engine {
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Engine{
		last:      initialScore,
		rng:       rng,
		model:     cfg.Model,
		synthetic: cfg.Synthetic,
	}
}

// Score folds one window into the smoothed score and returns it.
//
// Policy order: forced-synthetic mode and empty windows take the fallback
// walk; otherwise the model classifies when attached, else the statistical
// analyzer runs. A model failure degrades to the walk rather than
// surfacing an error.
func (e *Engine) Score(window []int16) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.synthetic || len(window) == 0 {
		return e.fallback()
	}
	if e.model != nil {
		raw, err := e.classify(window)
		if err != nil {
			return e.fallback()
		}
		return e.blend(raw)
	}
	return e.blend(analyzeWindow(window))
}

// Fallback advances the synthetic walk directly, without a window.
func (e *Engine) Fallback() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fallback()
}

// Inject overwrites the smoothed score and returns it unchanged, with
// no blending or clamping. Back door for deterministic tests and demos.
func (e *Engine) Inject(v float64) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.last = v
	return v
}

// Last returns the current smoothed score without advancing it.
func (e *Engine) Last() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// IsHigh reports whether a smoothed score classifies as high emergency.
func IsHigh(score float64) bool { return score > Threshold }

// blend is the only place the smoothed score moves during real analysis.
// Extraction stays pure; raw values are clamped on the way in and the
// result is clamped on the way out.
func (e *Engine) blend(raw float64) float64 {
	e.last = clamp01(smoothKeep*e.last + smoothBlend*clamp01(raw))
	return e.last
}

// fallback performs one step of the bounded random walk. The persisted
// score moves by exactly ±walkStep (then clamps); the returned value adds
// unpersisted jitter, so readings are noisier than the state they orbit.
func (e *Engine) fallback() float64 {
	step := walkStep
	if e.rng.IntN(2) == 0 {
		step = -walkStep
	}
	e.last = clamp(e.last+step, walkFloor, walkCeil)

	jitter := (e.rng.Float64()*2 - 1) * walkJitter
	return clamp(e.last+jitter, walkFloor, walkCeil)
}

func (e *Engine) classify(window []int16) (float64, error) {
	size := e.model.InputSize()
	if size <= 0 {
		return 0, fmt.Errorf("classifier reports input size %d", size)
	}
	conf, err := e.model.Classify(features(window, size))
	if err != nil {
		return 0, err
	}
	if len(conf) != numClasses {
		return 0, fmt.Errorf("classifier returned %d confidences, want %d", len(conf), numClasses)
	}
	return classScore(argmax(conf)), nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 { return clamp(v, 0, 1) }
