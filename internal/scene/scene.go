// Package scene is the minimal scene-graph collaborator of the motion-blur
// engine: visual elements that can be rendered at an arbitrary scene time
// into a pixel buffer, each carrying a capability flag saying whether it
// participates in blur accumulation.
package scene

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"

	"github.com/ivlev/scene2video/internal/system"
)

// Element is a visual element drawable at any scene time. MotionBlur
// reports whether the element participates in blur accumulation; elements
// participate unless explicitly opted out, and opted-out elements are drawn
// exactly once per frame, on top of the blurred result.
type Element interface {
	Name() string
	MotionBlur() bool
	Draw(dst *image.RGBA, t float64) error
}

// Mover is implemented by elements whose position changes over time. Used
// by motion velocity estimation; purely optional.
type Mover interface {
	PositionAt(t float64) (x, y float64)
}

// Scene is an ordered collection of elements plus an optional animated
// camera. Rendering at a time t draws every requested element at its state
// for t; the camera, when keyframed, projects a moving view window over the
// drawn world.
type Scene struct {
	Width  int
	Height int
	Camera []CameraKeyframe

	Background color.RGBA

	elements []Element
}

// New returns an empty scene with an opaque black background.
func New(width, height int) *Scene {
	return &Scene{
		Width:      width,
		Height:     height,
		Background: color.RGBA{A: 255},
	}
}

func (s *Scene) Add(e Element) {
	s.elements = append(s.elements, e)
}

func (s *Scene) Elements() []Element {
	return s.elements
}

// Partition splits the elements by blur capability: those that take part in
// sub-frame accumulation, and those drawn once as a static overlay.
func (s *Scene) Partition() (blurred, overlay []Element) {
	for _, e := range s.elements {
		if e.MotionBlur() {
			blurred = append(blurred, e)
		} else {
			overlay = append(overlay, e)
		}
	}
	return blurred, overlay
}

// CameraAt returns the interpolated camera state at time t.
func (s *Scene) CameraAt(t float64) CameraState {
	return InterpolateCamera(s.Camera, t)
}

// RenderAt clears dst and draws the given elements at scene time t,
// applying the camera view when one is keyframed. The destination is fully
// drawn on return.
func (s *Scene) RenderAt(dst *image.RGBA, t float64, elems []Element) error {
	if len(s.Camera) == 0 {
		clearTo(dst, s.Background)
		return drawElements(dst, t, elems)
	}

	// Render the world at scene resolution, then project the camera's view
	// rectangle into the destination.
	world := system.GetImage(image.Rect(0, 0, s.Width, s.Height))
	defer system.PutImage(world)

	clearTo(world, s.Background)
	if err := drawElements(world, t, elems); err != nil {
		return err
	}

	view := s.viewRect(s.CameraAt(t))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), world, view, draw.Src, nil)
	return nil
}

// DrawOver draws the given elements at scene time t on top of dst without
// clearing it. Overlay elements are screen-space: the camera does not apply.
func (s *Scene) DrawOver(dst *image.RGBA, t float64, elems []Element) error {
	return drawElements(dst, t, elems)
}

func (s *Scene) viewRect(cam CameraState) image.Rectangle {
	zoom := cam.Zoom
	if zoom < 1 {
		zoom = 1
	}
	w := float64(s.Width) / zoom
	h := float64(s.Height) / zoom

	x := cam.X - w/2
	y := cam.Y - h/2
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if x+w > float64(s.Width) {
		x = float64(s.Width) - w
	}
	if y+h > float64(s.Height) {
		y = float64(s.Height) - h
	}
	return image.Rect(int(x), int(y), int(x+w), int(y+h))
}

func drawElements(dst *image.RGBA, t float64, elems []Element) error {
	for _, e := range elems {
		if err := e.Draw(dst, t); err != nil {
			return err
		}
	}
	return nil
}

func clearTo(img *image.RGBA, c color.RGBA) {
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}
