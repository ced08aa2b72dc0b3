package motionblur

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(v bool) *bool      { return &v }
func numPtr(v float64) *float64 { return &v }

func TestResolveDefaults(t *testing.T) {
	cfg := Resolve(nil)

	assert.False(t, cfg.Enabled)
	assert.Equal(t, 8, cfg.Samples)
	assert.Equal(t, 180.0, cfg.ShutterAngle)
	assert.Equal(t, CurveBox, cfg.ShutterCurve)
	assert.Equal(t, PositionCenter, cfg.ShutterPosition)
	assert.False(t, cfg.AdaptiveSampling)
	assert.Equal(t, 2, cfg.AdaptiveMinSamples)
	assert.Equal(t, -90.0, cfg.ShutterPhase)

	assert.Equal(t, cfg, Resolve(&Settings{}), "empty settings resolve like nil")
}

func TestResolveSampleClamping(t *testing.T) {
	tests := []struct {
		name    string
		samples float64
		want    int
	}{
		{"floor at one", 0, 1},
		{"negative floors at one", -5, 1},
		{"ceiling at sixty-four", 100, 64},
		{"fraction rounds", 2.5, 3},
		{"in range untouched", 16, 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Resolve(&Settings{Samples: numPtr(tt.samples)})
			assert.Equal(t, tt.want, cfg.Samples)
		})
	}
}

func TestResolveQualityPresets(t *testing.T) {
	for quality, want := range map[string]int{
		"low": 4, "medium": 8, "high": 16, "ultra": 32,
	} {
		cfg := Resolve(&Settings{Quality: quality})
		assert.Equal(t, want, cfg.Samples, "quality %q", quality)
	}

	// Explicit samples always win over quality.
	cfg := Resolve(&Settings{Quality: "ultra", Samples: numPtr(10)})
	assert.Equal(t, 10, cfg.Samples)

	// Unknown preset degrades to the default.
	cfg = Resolve(&Settings{Quality: "cinematic"})
	assert.Equal(t, 8, cfg.Samples)
}

func TestResolveShutterAngleClamping(t *testing.T) {
	cfg := Resolve(&Settings{ShutterAngle: numPtr(-10)})
	assert.Equal(t, 0.0, cfg.ShutterAngle)

	cfg = Resolve(&Settings{ShutterAngle: numPtr(900)})
	assert.Equal(t, 720.0, cfg.ShutterAngle)
}

func TestResolvePhaseFromPosition(t *testing.T) {
	tests := []struct {
		position Position
		angle    float64
		want     float64
	}{
		{PositionStart, 180, 0},
		{PositionCenter, 180, -90},
		{PositionEnd, 180, -180},
		{PositionCenter, 360, -180},
	}

	for _, tt := range tests {
		cfg := Resolve(&Settings{
			ShutterPosition: tt.position,
			ShutterAngle:    numPtr(tt.angle),
		})
		assert.Equal(t, tt.want, cfg.ShutterPhase, "position %q angle %v", tt.position, tt.angle)
	}
}

func TestResolveExplicitPhaseWinsOverPosition(t *testing.T) {
	cfg := Resolve(&Settings{
		ShutterPosition: PositionEnd,
		ShutterPhase:    numPtr(45),
	})
	assert.Equal(t, 45.0, cfg.ShutterPhase)
	assert.Equal(t, PositionEnd, cfg.ShutterPosition)

	cfg = Resolve(&Settings{ShutterPhase: numPtr(-500)})
	assert.Equal(t, -360.0, cfg.ShutterPhase)
}

func TestResolveAdaptiveMinSamples(t *testing.T) {
	cfg := Resolve(&Settings{AdaptiveMinSamples: numPtr(0)})
	assert.Equal(t, 1, cfg.AdaptiveMinSamples, "never zero")

	cfg = Resolve(&Settings{AdaptiveMinSamples: numPtr(4)})
	assert.Equal(t, 4, cfg.AdaptiveMinSamples)
}

func TestResolveIdempotent(t *testing.T) {
	partials := []*Settings{
		nil,
		{Enabled: boolPtr(true), Quality: "high", ShutterPosition: PositionEnd},
		{Samples: numPtr(2.5), ShutterAngle: numPtr(900), ShutterPhase: numPtr(-400)},
		{AdaptiveSampling: boolPtr(true), AdaptiveMinSamples: numPtr(0), ShutterCurve: CurveGaussian},
	}

	for _, partial := range partials {
		resolved := Resolve(partial)
		settings := resolved.Settings()
		require.Equal(t, resolved, Resolve(&settings))
	}
}
