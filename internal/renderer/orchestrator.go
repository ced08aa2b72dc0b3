// Package renderer drives the temporal sub-frame loop that produces one
// motion-blurred output frame: render the scene at each temporal offset,
// accumulate the result with its blend weight, finalize, then composite the
// blur-exempt elements once on top.
package renderer

import (
	"github.com/ivlev/scene2video/internal/motionblur"
	"github.com/ivlev/scene2video/internal/playback"
	"github.com/ivlev/scene2video/internal/scene"
	"github.com/ivlev/scene2video/internal/stage"
)

// SubframeRender renders the scene at one temporal offset, in seconds
// relative to the nominal frame time, leaving the stage's current target
// fully drawn.
type SubframeRender func(offset float64) error

// Orchestrator sequences sub-frame renders against a shared stage. Renders
// are never issued concurrently: every sub-frame reads and writes the same
// current target and accumulation buffer.
type Orchestrator struct {
	stage *stage.Stage
}

func New(st *stage.Stage) *Orchestrator {
	return &Orchestrator{stage: st}
}

// RenderWithMotionBlur runs the accumulation loop: begin, then for each
// offset render and accumulate with the matching weight, then finalize.
// Empty or mismatched offset/weight slices make the whole call a no-op
// rather than an error; the caller ends up with an unblurred frame.
func (o *Orchestrator) RenderWithMotionBlur(render SubframeRender, offsets, weights []float64) error {
	if len(offsets) == 0 || len(offsets) != len(weights) {
		return nil
	}

	o.stage.BeginAccumulation()
	for i := range offsets {
		if err := render(offsets[i]); err != nil {
			return err
		}
		o.stage.Accumulate(weights[i])
	}
	o.stage.FinalizeAccumulation()
	return nil
}

// RenderFrame produces one finished output frame in the stage's current
// target. Blur-participating elements go through the sub-frame loop; the
// rest are drawn exactly once after finalize, so they never smear and are
// never partially accumulated. The injected time offset is always reset
// before returning, keeping later time reads clean.
func (o *Orchestrator) RenderFrame(sc *scene.Scene, pb *playback.Status, cfg motionblur.Config, velocity float64) error {
	blurred, overlay := sc.Partition()
	current := o.stage.Current()

	if !cfg.Enabled {
		if err := sc.RenderAt(current, pb.Time(), blurred); err != nil {
			return err
		}
		return sc.DrawOver(current, pb.Time(), overlay)
	}

	eff := cfg
	eff.Samples = motionblur.AdaptiveSamples(cfg, velocity, motionblur.DefaultVelocityThreshold)
	plan := motionblur.Plan(eff, pb.FrameDuration())

	err := o.RenderWithMotionBlur(func(offset float64) error {
		pb.SetTimeOffset(offset)
		return sc.RenderAt(current, pb.Time(), blurred)
	}, plan.Offsets, plan.Weights)
	pb.ResetTimeOffset()
	if err != nil {
		return err
	}

	return sc.DrawOver(current, pb.Time(), overlay)
}
