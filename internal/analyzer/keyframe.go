package analyzer

import (
	"fmt"
	"math"

	"github.com/ivlev/scene2video/internal/scene"
)

// KeyframeEstimator derives velocity analytically from the scene's animation
// data: the fastest-moving element (or the camera) over the coming frame
// sets the estimate. Exact for keyframed motion and free of pixel reads.
type KeyframeEstimator struct{}

func NewKeyframeEstimator() *KeyframeEstimator {
	return &KeyframeEstimator{}
}

// Estimate returns the peak element or camera displacement, in pixels,
// between s.Time and the next frame.
func (e *KeyframeEstimator) Estimate(s Sample) (float64, error) {
	if s.Scene == nil {
		return 0, fmt.Errorf("keyframe estimator requires a scene")
	}
	if s.FrameDuration <= 0 {
		return 0, fmt.Errorf("frame duration %v is invalid", s.FrameDuration)
	}

	velocity := 0.0
	for _, elem := range s.Scene.Elements() {
		mover, ok := elem.(scene.Mover)
		if !ok || !elem.MotionBlur() {
			continue
		}
		x0, y0 := mover.PositionAt(s.Time)
		x1, y1 := mover.PositionAt(s.Time + s.FrameDuration)
		velocity = math.Max(velocity, math.Hypot(x1-x0, y1-y0))
	}

	velocity = math.Max(velocity, e.cameraVelocity(s))
	return velocity, nil
}

// cameraVelocity converts camera pan and zoom change into screen-space
// pixel motion. Zoom moves the frame edges fastest: a zoom delta of dz
// sweeps the corners by roughly dz * half the frame diagonal.
func (e *KeyframeEstimator) cameraVelocity(s Sample) float64 {
	if len(s.Scene.Camera) == 0 {
		return 0
	}

	c0 := s.Scene.CameraAt(s.Time)
	c1 := s.Scene.CameraAt(s.Time + s.FrameDuration)

	pan := math.Hypot(c1.X-c0.X, c1.Y-c0.Y)
	halfDiag := math.Hypot(float64(s.Scene.Width), float64(s.Scene.Height)) / 2
	zoomSweep := math.Abs(c1.Zoom-c0.Zoom) * halfDiag

	return pan + zoomSweep
}
