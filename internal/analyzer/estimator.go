// Package analyzer estimates how fast scene content is moving. The motion
// blur engine scales its sub-frame count with this estimate, spending fewer
// renders on slow content.
package analyzer

import (
	"image"

	"github.com/ivlev/scene2video/internal/scene"
)

// Sample bundles everything an estimator may consult for one frame.
// Estimators use what they need and ignore the rest; nil images are legal
// for variants that work off the scene description alone.
type Sample struct {
	Scene         *scene.Scene
	Time          float64 // nominal frame time, seconds
	FrameDuration float64 // seconds per frame
	Previous      *image.RGBA
	Current       *image.RGBA
}

// Estimator is the interface for motion velocity estimation strategies.
// Estimate returns velocity in pixels per frame.
type Estimator interface {
	Estimate(s Sample) (float64, error)
}
