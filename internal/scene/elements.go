package scene

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	qrcode "github.com/skip2/go-qrcode"
	xdraw "golang.org/x/image/draw"
)

// PathKeyframe pins an element's top-left position at a scene time.
type PathKeyframe struct {
	Time float64 `yaml:"time"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
}

// interpolatePath returns the position at time t, linearly interpolated
// between the surrounding keyframes.
func interpolatePath(path []PathKeyframe, t float64) (float64, float64) {
	if len(path) == 0 {
		return 0, 0
	}
	if t <= path[0].Time {
		return path[0].X, path[0].Y
	}
	last := path[len(path)-1]
	if t >= last.Time {
		return last.X, last.Y
	}

	for i := 0; i < len(path)-1; i++ {
		if t >= path[i].Time && t < path[i+1].Time {
			span := path[i+1].Time - path[i].Time
			if span == 0 {
				span = 0.001
			}
			f := (t - path[i].Time) / span
			return lerp(path[i].X, path[i+1].X, f), lerp(path[i].Y, path[i+1].Y, f)
		}
	}
	return last.X, last.Y
}

// Rect is a solid-colored rectangle moving along a keyframed path.
type Rect struct {
	ElementName string
	Color       color.RGBA
	W, H        int
	Path        []PathKeyframe
	Blur        bool
}

// NewRect returns a blur-participating rectangle.
func NewRect(name string, c color.RGBA, w, h int, path []PathKeyframe) *Rect {
	return &Rect{ElementName: name, Color: c, W: w, H: h, Path: path, Blur: true}
}

func (r *Rect) Name() string     { return r.ElementName }
func (r *Rect) MotionBlur() bool { return r.Blur }

func (r *Rect) PositionAt(t float64) (float64, float64) {
	return interpolatePath(r.Path, t)
}

func (r *Rect) Draw(dst *image.RGBA, t float64) error {
	x, y := r.PositionAt(t)
	rect := image.Rect(int(x), int(y), int(x)+r.W, int(y)+r.H)
	draw.Draw(dst, rect.Intersect(dst.Bounds()), image.NewUniform(r.Color), image.Point{}, draw.Over)
	return nil
}

// Sprite is an image moving along a keyframed path, optionally rescaled.
type Sprite struct {
	ElementName string
	Image       image.Image
	W, H        int // 0 keeps the source size
	Path        []PathKeyframe
	Blur        bool

	scaled *image.RGBA
}

func NewSprite(name string, img image.Image, path []PathKeyframe) *Sprite {
	return &Sprite{ElementName: name, Image: img, Path: path, Blur: true}
}

func (s *Sprite) Name() string     { return s.ElementName }
func (s *Sprite) MotionBlur() bool { return s.Blur }

func (s *Sprite) PositionAt(t float64) (float64, float64) {
	return interpolatePath(s.Path, t)
}

func (s *Sprite) Draw(dst *image.RGBA, t float64) error {
	if s.Image == nil {
		return fmt.Errorf("sprite %q has no image", s.ElementName)
	}
	x, y := s.PositionAt(t)
	src := s.sized()
	rect := src.Bounds().Sub(src.Bounds().Min).Add(image.Pt(int(x), int(y)))
	clipped := rect.Intersect(dst.Bounds())
	srcPt := src.Bounds().Min.Add(clipped.Min.Sub(rect.Min))
	draw.Draw(dst, clipped, src, srcPt, draw.Over)
	return nil
}

// sized rescales the source once and caches it; sprites redraw every
// sub-frame, so scaling per draw would dominate the render.
func (s *Sprite) sized() image.Image {
	if s.W <= 0 || s.H <= 0 {
		return s.Image
	}
	if s.scaled == nil {
		s.scaled = image.NewRGBA(image.Rect(0, 0, s.W, s.H))
		xdraw.CatmullRom.Scale(s.scaled, s.scaled.Bounds(), s.Image, s.Image.Bounds(), draw.Src, nil)
	}
	return s.scaled
}

// Backdrop is a static image scaled to cover the whole scene. It
// participates in blur by default; being static, accumulation leaves it
// sharp unless the camera moves.
type Backdrop struct {
	ElementName string
	Image       image.Image
	Blur        bool

	scaled *image.RGBA
}

func NewBackdrop(name string, img image.Image) *Backdrop {
	return &Backdrop{ElementName: name, Image: img, Blur: true}
}

func (b *Backdrop) Name() string     { return b.ElementName }
func (b *Backdrop) MotionBlur() bool { return b.Blur }

func (b *Backdrop) Draw(dst *image.RGBA, t float64) error {
	if b.Image == nil {
		return fmt.Errorf("backdrop %q has no image", b.ElementName)
	}
	bounds := dst.Bounds()
	if b.scaled == nil || !b.scaled.Bounds().Eq(bounds) {
		b.scaled = image.NewRGBA(bounds)
		xdraw.CatmullRom.Scale(b.scaled, bounds, b.Image, b.Image.Bounds(), draw.Src, nil)
	}
	draw.Draw(dst, bounds, b.scaled, bounds.Min, draw.Over)
	return nil
}

// QRWatermark renders a QR code pinned to the bottom-right corner. It opts
// out of blur accumulation: a watermark must stay machine-readable, so it is
// composited once onto the finished frame instead of being smeared across
// the exposure window.
type QRWatermark struct {
	ElementName string
	Margin      int

	img image.Image
}

// NewQRWatermark encodes content into a QR image of the given pixel size.
func NewQRWatermark(name, content string, size int) (*QRWatermark, error) {
	if size <= 0 {
		size = 128
	}
	code, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("qr watermark %q: %w", name, err)
	}
	return &QRWatermark{ElementName: name, Margin: 16, img: code.Image(size)}, nil
}

func (q *QRWatermark) Name() string     { return q.ElementName }
func (q *QRWatermark) MotionBlur() bool { return false }

func (q *QRWatermark) Draw(dst *image.RGBA, t float64) error {
	bounds := dst.Bounds()
	size := q.img.Bounds()
	pos := image.Pt(bounds.Max.X-size.Dx()-q.Margin, bounds.Max.Y-size.Dy()-q.Margin)
	draw.Draw(dst, size.Add(pos).Intersect(bounds), q.img, size.Min, draw.Over)
	return nil
}

// ParseHexColor parses "#rrggbb" or "#rrggbbaa" into an RGBA color.
func ParseHexColor(s string) (color.RGBA, error) {
	c := color.RGBA{A: 255}
	var err error
	switch len(s) {
	case 7:
		_, err = fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B)
	case 9:
		_, err = fmt.Sscanf(s, "#%02x%02x%02x%02x", &c.R, &c.G, &c.B, &c.A)
	default:
		err = fmt.Errorf("invalid color %q", s)
	}
	return c, err
}
