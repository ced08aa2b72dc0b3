// Package stage owns the render targets a frame is drawn into and the
// high-precision accumulation buffer used to blend weighted sub-frame
// samples before quantizing back to 8-bit pixels.
package stage

import (
	"image"
	"image/draw"
	"math"
)

// Stage holds the current, previous and final render targets plus the
// per-channel floating-point accumulator. Weighted sums of 8-bit samples
// lose precision if accumulated in 8-bit space; the float32 intermediate
// avoids banding across many weighted samples.
//
// A Stage is not safe for concurrent use: sub-frame renders share the
// current target and the accumulator, so callers must finish each
// accumulate before starting the next render.
type Stage struct {
	width, height int

	current  *image.RGBA
	previous *image.RGBA
	final    *image.RGBA

	accum        []float32
	sampleCount  int
	accumulating bool
}

// New allocates a stage with three render targets of the given size.
func New(width, height int) *Stage {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	s := &Stage{}
	s.allocTargets(width, height)
	return s
}

func (s *Stage) allocTargets(width, height int) {
	s.width, s.height = width, height
	rect := image.Rect(0, 0, width, height)
	s.current = image.NewRGBA(rect)
	s.previous = image.NewRGBA(rect)
	s.final = image.NewRGBA(rect)
}

func (s *Stage) Width() int  { return s.width }
func (s *Stage) Height() int { return s.height }

// Current is the visible render target sub-frames draw into.
func (s *Stage) Current() *image.RGBA { return s.current }

// Previous holds the last completed frame, kept for frame-difference motion
// estimation.
func (s *Stage) Previous() *image.RGBA { return s.previous }

// Final holds the last finalized composite.
func (s *Stage) Final() *image.RGBA { return s.final }

// Resize drops all targets and reallocates them at the new size. Any
// accumulation in progress is lost: the buffer is discarded and reallocated
// at the next BeginAccumulation. No partial result is preserved.
func (s *Stage) Resize(width, height int) {
	if width < 1 || height < 1 {
		return
	}
	if width == s.width && height == s.height {
		return
	}
	s.allocTargets(width, height)
	s.accum = nil
	s.sampleCount = 0
	s.accumulating = false
}

// RotateTargets copies the current target to previous, readying the stage
// for the next frame.
func (s *Stage) RotateTargets() {
	draw.Draw(s.previous, s.previous.Bounds(), s.current, image.Point{}, draw.Src)
}

// BeginAccumulation starts an accumulation cycle: the buffer is allocated on
// first use or after a size change, cleared to zero otherwise, and the
// sample counter resets. Calling twice before any Accumulate is equivalent
// to calling once.
func (s *Stage) BeginAccumulation() {
	need := s.width * s.height * 4
	if s.accum == nil || len(s.accum) != need {
		s.accum = make([]float32, need)
	} else {
		clear(s.accum)
	}
	s.sampleCount = 0
	s.accumulating = true
}

// Accumulate adds the current target's pixels, scaled by weight, into the
// accumulator. Without a begun buffer this is a defensive no-op, not an
// error: a resize race drops the sample rather than failing the frame.
func (s *Stage) Accumulate(weight float64) {
	if !s.accumulating || s.accum == nil {
		return
	}
	w := float32(weight)
	pix := s.current.Pix
	if len(pix) != len(s.accum) {
		return
	}
	for i, p := range pix {
		s.accum[i] += float32(p) * w
	}
	s.sampleCount++
}

// FinalizeAccumulation quantizes the accumulator back into the current
// target, clamping each channel to [0,255] and rounding to nearest. A stage
// with no begun buffer or zero accumulated samples is left untouched. The
// result is also copied to the final target, and the accumulator returns to
// idle (memory retained for reuse at the same size).
func (s *Stage) FinalizeAccumulation() {
	if !s.accumulating || s.accum == nil || s.sampleCount == 0 {
		s.accumulating = false
		return
	}
	pix := s.current.Pix
	for i, v := range s.accum {
		pix[i] = quantize(v)
	}
	draw.Draw(s.final, s.final.Bounds(), s.current, image.Point{}, draw.Src)
	s.sampleCount = 0
	s.accumulating = false
}

// Accumulating reports whether an accumulation cycle is open.
func (s *Stage) Accumulating() bool { return s.accumulating }

// SampleCount reports how many sub-frame samples the open cycle has taken.
func (s *Stage) SampleCount() int { return s.sampleCount }

func quantize(v float32) uint8 {
	r := math.Round(float64(v))
	if r < 0 {
		return 0
	}
	if r > 255 {
		return 255
	}
	return uint8(r)
}
