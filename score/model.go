package score

// features downsamples a window to the model's input width, normalizing
// each sample to [-1,1]. Windows shorter than inputSize*step leave the
// tail at zero.
func features(window []int16, inputSize int) []float32 {
	step := len(window) / inputSize
	if step < 1 {
		step = 1
	}
	out := make([]float32, inputSize)
	for i := 0; i < inputSize; i++ {
		idx := i * step
		if idx >= len(window) {
			break
		}
		out[i] = float32(window[idx]) / 32767.0
	}
	return out
}

// argmax returns the first index holding the maximum confidence.
func argmax(conf []float32) int {
	best := 0
	for i, c := range conf {
		if c > conf[best] {
			best = i
		}
	}
	return best
}

// classScore maps an argmax class index onto the fixed severity table.
// Higher classes mean more distress.
func classScore(idx int) float64 {
	switch {
	case idx >= 7:
		return 0.9
	case idx >= 5:
		return 0.7
	case idx >= 3:
		return 0.5
	case idx >= 1:
		return 0.3
	default:
		return 0.1
	}
}
