package renderer

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/scene2video/internal/motionblur"
	"github.com/ivlev/scene2video/internal/playback"
	"github.com/ivlev/scene2video/internal/scene"
	"github.com/ivlev/scene2video/internal/stage"
)

// countingElement records how often it is drawn.
type countingElement struct {
	name  string
	blur  bool
	calls int
	times []float64
}

func (c *countingElement) Name() string     { return c.name }
func (c *countingElement) MotionBlur() bool { return c.blur }

func (c *countingElement) Draw(dst *image.RGBA, t float64) error {
	c.calls++
	c.times = append(c.times, t)
	return nil
}

func blurSettings(samples float64) motionblur.Config {
	enabled := true
	return motionblur.Resolve(&motionblur.Settings{
		Enabled: &enabled,
		Samples: &samples,
	})
}

func TestRenderWithMotionBlurGuards(t *testing.T) {
	st := stage.New(4, 4)
	o := New(st)

	rendered := 0
	render := func(offset float64) error {
		rendered++
		return nil
	}

	require.NoError(t, o.RenderWithMotionBlur(render, nil, nil))
	require.NoError(t, o.RenderWithMotionBlur(render, []float64{0}, nil))
	require.NoError(t, o.RenderWithMotionBlur(render, []float64{0, 0.1}, []float64{1}))

	assert.Equal(t, 0, rendered, "guarded calls never invoke the render callback")
	assert.False(t, st.Accumulating())
}

func TestRenderFrameSubframeCounts(t *testing.T) {
	st := stage.New(8, 8)
	o := New(st)
	pb := playback.NewStatus(30)

	sc := scene.New(8, 8)
	moving := &countingElement{name: "moving", blur: true}
	overlay := &countingElement{name: "watermark", blur: false}
	sc.Add(moving)
	sc.Add(overlay)

	cfg := blurSettings(8)
	require.NoError(t, o.RenderFrame(sc, pb, cfg, 0))

	assert.Equal(t, 8, moving.calls, "blurred elements draw once per sub-frame")
	assert.Equal(t, 1, overlay.calls, "opted-out elements draw exactly once")
	assert.Equal(t, 0.0, pb.TimeOffset(), "time offset reset after the loop")

	// The overlay is drawn at the nominal frame time, after all sub-frames.
	assert.Equal(t, pb.Time(), overlay.times[0])
}

func TestRenderFrameBlurDisabledRendersOnce(t *testing.T) {
	st := stage.New(8, 8)
	o := New(st)
	pb := playback.NewStatus(30)

	sc := scene.New(8, 8)
	moving := &countingElement{name: "moving", blur: true}
	sc.Add(moving)

	cfg := motionblur.Resolve(nil) // enabled=false
	require.NoError(t, o.RenderFrame(sc, pb, cfg, 0))

	assert.Equal(t, 1, moving.calls)
	assert.Equal(t, 0, st.SampleCount())
}

func TestRenderFrameAdaptiveSampling(t *testing.T) {
	st := stage.New(8, 8)
	o := New(st)
	pb := playback.NewStatus(30)

	sc := scene.New(8, 8)
	moving := &countingElement{name: "moving", blur: true}
	sc.Add(moving)

	enabled, adaptive := true, true
	samples, minSamples := 16.0, 2.0
	cfg := motionblur.Resolve(&motionblur.Settings{
		Enabled:            &enabled,
		Samples:            &samples,
		AdaptiveSampling:   &adaptive,
		AdaptiveMinSamples: &minSamples,
	})

	require.NoError(t, o.RenderFrame(sc, pb, cfg, 0))
	assert.Equal(t, 2, moving.calls, "static content collapses to the minimum sample count")

	moving.calls = 0
	require.NoError(t, o.RenderFrame(sc, pb, cfg, 100))
	assert.Equal(t, 16, moving.calls, "fast content uses the full count")
}

// TestMovingRectangleWeightedSum checks the end-to-end accumulation
// property: the finalized frame equals the weighted per-channel sum of the
// individual sub-frame renders, clamped and rounded.
func TestMovingRectangleWeightedSum(t *testing.T) {
	const w, h = 32, 16

	newScene := func() *scene.Scene {
		sc := scene.New(w, h)
		// Fast linear motion: the rectangle crosses the scene in two frames,
		// so the exposure window sweeps it across several pixels.
		sc.Add(scene.NewRect("mover", color.RGBA{R: 240, G: 80, B: 20, A: 255}, 6, 6, []scene.PathKeyframe{
			{Time: 0, X: 0, Y: 5},
			{Time: 2.0 / 30, X: 24, Y: 5},
		}))
		return sc
	}

	st := stage.New(w, h)
	o := New(st)
	pb := playback.NewStatus(30)
	pb.SetFrame(1)

	cfg := blurSettings(4)
	sc := newScene()
	require.NoError(t, o.RenderFrame(sc, pb, cfg, 0))

	// Reference: render each sub-frame independently and sum by hand.
	plan := motionblur.Plan(cfg, pb.FrameDuration())
	blurred, _ := sc.Partition()
	expected := make([]float64, w*h*4)
	ref := image.NewRGBA(image.Rect(0, 0, w, h))
	for i, offset := range plan.Offsets {
		require.NoError(t, sc.RenderAt(ref, float64(pb.Frame())/pb.FPS()+offset, blurred))
		for j, p := range ref.Pix {
			expected[j] += float64(p) * plan.Weights[i]
		}
	}

	got := st.Current().Pix
	for j := range expected {
		assert.InDelta(t, expected[j], float64(got[j]), 1.0, "pixel byte %d", j)
	}

	// The swept region must actually be a gradient: a pixel covered by only
	// some sub-frames carries partial weight.
	partial := false
	for j := 0; j < len(got); j += 4 {
		if got[j] > 10 && got[j] < 230 {
			partial = true
			break
		}
	}
	assert.True(t, partial, "expected partially-covered pixels in the swept region")
}
