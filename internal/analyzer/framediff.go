package analyzer

import (
	"fmt"
	"math"
)

// FrameDiffEstimator infers motion from pixel change between the previous
// and current frames. It needs no animation data, so it works for scenes
// driven by external content, at the cost of being a proxy: the reported
// velocity is the changed-pixel fraction mapped onto a pixel scale.
type FrameDiffEstimator struct {
	// ChangeThreshold is the minimum per-channel delta for a pixel to count
	// as changed.
	ChangeThreshold uint8

	// FullMotionVelocity is the velocity reported when every pixel changed.
	FullMotionVelocity float64
}

func NewFrameDiffEstimator() *FrameDiffEstimator {
	return &FrameDiffEstimator{
		ChangeThreshold:    12,
		FullMotionVelocity: 100,
	}
}

// Estimate returns FullMotionVelocity scaled by the fraction of pixels that
// changed between the two frames.
func (e *FrameDiffEstimator) Estimate(s Sample) (float64, error) {
	if s.Previous == nil || s.Current == nil {
		return 0, fmt.Errorf("frame-diff estimator requires previous and current frames")
	}
	prev, curr := s.Previous.Pix, s.Current.Pix
	if len(prev) != len(curr) || len(curr) == 0 {
		// Size mismatch right after a resize; report no motion rather than
		// failing the frame.
		return 0, nil
	}

	changed := 0
	total := len(curr) / 4
	for i := 0; i < len(curr); i += 4 {
		if absDiff(prev[i], curr[i]) > e.ChangeThreshold ||
			absDiff(prev[i+1], curr[i+1]) > e.ChangeThreshold ||
			absDiff(prev[i+2], curr[i+2]) > e.ChangeThreshold {
			changed++
		}
	}

	fraction := float64(changed) / float64(total)
	return math.Min(1, fraction) * e.FullMotionVelocity, nil
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}
