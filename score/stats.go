package score

const (
	statSpan   = 8000 // samples inspected per window
	statStride = 10   // visit every 10th sample

	// Absolute delta between visited samples counting as a hard transient.
	jumpThreshold = 3000

	weightVolume = 0.4
	weightPeak   = 0.3
	weightJumps  = 0.3
)

// analyzeWindow reduces a window to three scalar statistics (mean absolute
// amplitude, peak amplitude, and the rate of large jumps) and combines
// them with fixed weights. Deterministic, result in [0,1].
//
// Jumps compare consecutive visited samples, a full stride apart, not
// adjacent ones.
func analyzeWindow(window []int16) float64 {
	limit := len(window)
	if limit > statSpan {
		limit = statSpan
	}

	var volume, peak float64
	jumps, visited := 0, 0
	for i := 0; i < limit; i += statStride {
		s := float64(window[i])
		abs := s
		if abs < 0 {
			abs = -abs
		}
		volume += abs
		if abs > peak {
			peak = abs
		}
		if i >= statStride {
			d := s - float64(window[i-statStride])
			if d < 0 {
				d = -d
			}
			if d > jumpThreshold {
				jumps++
			}
		}
		visited++
	}
	if visited == 0 {
		return 0
	}

	volumeNorm := clamp01(volume / float64(visited) / 10000)
	peakNorm := clamp01(peak / 32767)
	jumpNorm := clamp01(float64(jumps) * 10 / float64(visited))
	return weightVolume*volumeNorm + weightPeak*peakNorm + weightJumps*jumpNorm
}
