package motionblur

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultVelocityThreshold is the motion velocity, in pixels per frame, at
// which adaptive sampling reaches the full configured sample count.
const DefaultVelocityThreshold = 50.0

// SubframePlan is the per-render placement of temporal samples: offsets in
// seconds relative to the nominal frame time, paired 1:1 with normalized
// blend weights. Computed once per output frame and discarded after use.
type SubframePlan struct {
	Offsets []float64
	Weights []float64
}

// Plan computes the sub-frame plan for one output frame.
func Plan(cfg Config, frameDuration float64) SubframePlan {
	return SubframePlan{
		Offsets: Offsets(cfg, frameDuration),
		Weights: Weights(cfg),
	}
}

// Offsets returns the temporal offsets of each sub-frame sample, evenly
// spaced across the exposure window and symmetric about the phase offset.
// A zero shutter angle collapses all offsets onto the phase offset.
func Offsets(cfg Config, frameDuration float64) []float64 {
	shutterFraction := cfg.ShutterAngle / 360
	exposureTime := frameDuration * shutterFraction
	phaseOffset := cfg.ShutterPhase / 360 * frameDuration

	offsets := make([]float64, cfg.Samples)
	if cfg.Samples == 1 {
		// Single sample sits at position 0.5, cancelling the half-exposure
		// term: the offset is the phase offset alone.
		offsets[0] = phaseOffset
		return offsets
	}

	for i := range offsets {
		position := float64(i) / float64(cfg.Samples-1)
		offsets[i] = phaseOffset + position*exposureTime - exposureTime/2
	}
	return offsets
}

// Weights returns the blend weight of each sub-frame sample under the
// configured shutter curve, normalized to sum to 1.
func Weights(cfg Config) []float64 {
	n := cfg.Samples
	weights := make([]float64, n)
	if n == 1 {
		weights[0] = 1
		return weights
	}

	center := float64(n-1) / 2
	switch cfg.ShutterCurve {
	case CurveTriangle:
		// center keeps |i-center| <= (n-1)/2 < n/2, so raw weights stay
		// positive without flooring.
		for i := range weights {
			weights[i] = 1 - math.Abs(float64(i)-center)/(float64(n)/2)
		}
	case CurveGaussian:
		norm := distuv.Normal{Mu: center, Sigma: float64(n) / 4}
		for i := range weights {
			weights[i] = norm.Prob(float64(i))
		}
	default: // box
		for i := range weights {
			weights[i] = 1 / float64(n)
		}
	}

	floats.Scale(1/floats.Sum(weights), weights)
	return weights
}

// AdaptiveSamples scales the sample count by estimated motion velocity,
// in pixels per frame. Slow content renders with fewer sub-frames, down to
// AdaptiveMinSamples at rest; at or beyond the threshold the full configured
// count is used. Returns cfg.Samples unchanged when adaptive sampling is off.
func AdaptiveSamples(cfg Config, velocity, threshold float64) int {
	if !cfg.AdaptiveSampling {
		return cfg.Samples
	}

	scale := math.Min(1, velocity/threshold)
	n := int(math.Round(float64(cfg.AdaptiveMinSamples) + float64(cfg.Samples-cfg.AdaptiveMinSamples)*scale))
	if n < cfg.AdaptiveMinSamples {
		n = cfg.AdaptiveMinSamples
	}
	return n
}
