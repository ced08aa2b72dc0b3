package motionblur

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

const frameDuration = 1.0 / 30

func resolvedConfig(t *testing.T, s Settings) Config {
	t.Helper()
	return Resolve(&s)
}

func TestOffsetsSingleSample(t *testing.T) {
	cfg := resolvedConfig(t, Settings{Samples: numPtr(1), ShutterPhase: numPtr(0)})

	offsets := Offsets(cfg, frameDuration)
	require.Len(t, offsets, 1)
	assert.Equal(t, 0.0, offsets[0], "single sample with zero phase sits on the nominal frame time")

	cfg = resolvedConfig(t, Settings{Samples: numPtr(1), ShutterPhase: numPtr(-90)})
	offsets = Offsets(cfg, frameDuration)
	assert.InDelta(t, -0.25*frameDuration, offsets[0], 1e-12, "phase offset survives without exposure spread")
}

func TestOffsetsSpreadAndSymmetry(t *testing.T) {
	cfg := resolvedConfig(t, Settings{Samples: numPtr(8), ShutterPhase: numPtr(0), ShutterAngle: numPtr(180)})

	offsets := Offsets(cfg, frameDuration)
	require.Len(t, offsets, 8)

	exposure := frameDuration * 0.5
	assert.InDelta(t, -exposure/2, offsets[0], 1e-12)
	assert.InDelta(t, exposure/2, offsets[7], 1e-12)

	// Evenly spaced, symmetric about the phase offset (zero here).
	step := offsets[1] - offsets[0]
	for i := 1; i < len(offsets); i++ {
		assert.InDelta(t, step, offsets[i]-offsets[i-1], 1e-12)
		assert.InDelta(t, -offsets[len(offsets)-1-i], offsets[i], 1e-12)
	}
}

func TestOffsetsZeroShutterAngleCollapses(t *testing.T) {
	cfg := resolvedConfig(t, Settings{Samples: numPtr(8), ShutterAngle: numPtr(0), ShutterPhase: numPtr(0)})

	for _, offset := range Offsets(cfg, frameDuration) {
		assert.InDelta(t, 0.0, offset, 1e-12)
	}
}

func TestOffsetsSpanScalesWithShutterAngle(t *testing.T) {
	span := func(angle float64) float64 {
		cfg := resolvedConfig(t, Settings{Samples: numPtr(8), ShutterAngle: numPtr(angle), ShutterPhase: numPtr(0)})
		offsets := Offsets(cfg, frameDuration)
		return floats.Max(offsets) - floats.Min(offsets)
	}

	assert.InDelta(t, 2*span(180), span(360), 1e-12, "doubling the shutter angle doubles the span")
}

func TestWeightsNormalized(t *testing.T) {
	for _, curve := range []Curve{CurveBox, CurveTriangle, CurveGaussian} {
		for _, samples := range []float64{1, 16} {
			cfg := resolvedConfig(t, Settings{Samples: numPtr(samples), ShutterCurve: curve})
			weights := Weights(cfg)

			require.Len(t, weights, int(samples))
			assert.InDelta(t, 1.0, floats.Sum(weights), 1e-10, "curve %q samples %v", curve, samples)
			for _, w := range weights {
				assert.GreaterOrEqual(t, w, 0.0)
			}
		}
	}
}

func TestWeightsBoxUniform(t *testing.T) {
	cfg := resolvedConfig(t, Settings{Samples: numPtr(16), ShutterCurve: CurveBox})
	for _, w := range Weights(cfg) {
		assert.InDelta(t, 1.0/16, w, 1e-12)
	}
}

func TestWeightsPeakAtCenter(t *testing.T) {
	for _, curve := range []Curve{CurveTriangle, CurveGaussian} {
		cfg := resolvedConfig(t, Settings{Samples: numPtr(9), ShutterCurve: curve})
		weights := Weights(cfg)
		center := len(weights) / 2

		for i := 1; i <= center; i++ {
			assert.LessOrEqual(t, weights[center-i], weights[center-i+1], "curve %q rising toward center", curve)
			assert.LessOrEqual(t, weights[center+i], weights[center+i-1], "curve %q falling past center", curve)
		}
		assert.InDelta(t, weights[center-1], weights[center+1], 1e-12, "curve %q symmetric", curve)
	}
}

func TestWeightsSingleSampleIgnoresCurve(t *testing.T) {
	for _, curve := range []Curve{CurveBox, CurveTriangle, CurveGaussian} {
		cfg := resolvedConfig(t, Settings{Samples: numPtr(1), ShutterCurve: curve})
		weights := Weights(cfg)
		require.Len(t, weights, 1)
		assert.Equal(t, 1.0, weights[0])
	}
}

func TestAdaptiveSamples(t *testing.T) {
	cfg := resolvedConfig(t, Settings{
		Samples:            numPtr(16),
		AdaptiveSampling:   boolPtr(true),
		AdaptiveMinSamples: numPtr(2),
	})

	assert.Equal(t, 2, AdaptiveSamples(cfg, 0, DefaultVelocityThreshold), "at rest, minimum samples")
	assert.Equal(t, 16, AdaptiveSamples(cfg, DefaultVelocityThreshold, DefaultVelocityThreshold))
	assert.Equal(t, 16, AdaptiveSamples(cfg, 400, DefaultVelocityThreshold), "velocity past threshold pins the full count")

	// Monotonically non-decreasing in velocity.
	prev := 0
	for v := 0.0; v <= 2*DefaultVelocityThreshold; v += 2.5 {
		n := AdaptiveSamples(cfg, v, DefaultVelocityThreshold)
		assert.GreaterOrEqual(t, n, prev, "velocity %v", v)
		assert.GreaterOrEqual(t, n, cfg.AdaptiveMinSamples)
		prev = n
	}
}

func TestAdaptiveSamplesDisabled(t *testing.T) {
	cfg := resolvedConfig(t, Settings{Samples: numPtr(16)})
	assert.Equal(t, 16, AdaptiveSamples(cfg, 0, DefaultVelocityThreshold), "adaptive off returns configured samples")
}

func TestPlanPairsOffsetsWithWeights(t *testing.T) {
	cfg := resolvedConfig(t, Settings{Samples: numPtr(8), ShutterCurve: CurveTriangle})

	plan := Plan(cfg, frameDuration)
	require.Len(t, plan.Offsets, 8)
	require.Len(t, plan.Weights, 8)
	assert.InDelta(t, 1.0, floats.Sum(plan.Weights), 1e-10)
}
