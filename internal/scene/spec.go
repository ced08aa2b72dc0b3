package scene

import (
	"fmt"
	"image"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/scene2video/internal/motionblur"
)

// Spec is the YAML description of a scene: dimensions, camera path,
// elements and the partial motion blur settings to resolve.
type Spec struct {
	Version    string              `yaml:"version"`
	Width      int                 `yaml:"width"`
	Height     int                 `yaml:"height"`
	Background string              `yaml:"background,omitempty"`
	Camera     []CameraKeyframe    `yaml:"camera,omitempty"`
	Elements   []ElementSpec       `yaml:"elements"`
	MotionBlur motionblur.Settings `yaml:"motion_blur,omitempty"`
}

// ElementSpec declares one element. Type selects the concrete element;
// unused fields are ignored. MotionBlur overrides the per-type default
// participation when set.
type ElementSpec struct {
	Type       string         `yaml:"type"` // rect, sprite, backdrop, qr
	Name       string         `yaml:"name,omitempty"`
	Input      string         `yaml:"input,omitempty"`
	Content    string         `yaml:"content,omitempty"`
	Color      string         `yaml:"color,omitempty"`
	Width      int            `yaml:"width,omitempty"`
	Height     int            `yaml:"height,omitempty"`
	Size       int            `yaml:"size,omitempty"`
	MotionBlur *bool          `yaml:"motion_blur,omitempty"`
	Path       []PathKeyframe `yaml:"path,omitempty"`
}

// ReadSpec reads a scene spec from a YAML file.
func ReadSpec(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, err
	}
	return &spec, nil
}

// WriteSpec writes a scene spec to a YAML file.
func WriteSpec(spec *Spec, path string) error {
	data, err := yaml.Marshal(spec)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ImageLoader resolves an element's input reference to a decoded image.
type ImageLoader func(input string) (image.Image, error)

// Build constructs a Scene from its spec. loadImage is consulted for
// sprite and backdrop inputs; it may be nil when the spec declares none.
func Build(spec *Spec, loadImage ImageLoader) (*Scene, error) {
	if spec.Width < 1 || spec.Height < 1 {
		return nil, fmt.Errorf("scene size %dx%d is invalid", spec.Width, spec.Height)
	}

	s := New(spec.Width, spec.Height)
	s.Camera = spec.Camera

	if spec.Background != "" {
		bg, err := ParseHexColor(spec.Background)
		if err != nil {
			return nil, err
		}
		s.Background = bg
	}

	for i, es := range spec.Elements {
		name := es.Name
		if name == "" {
			name = fmt.Sprintf("%s_%d", es.Type, i+1)
		}

		elem, err := buildElement(es, name, loadImage)
		if err != nil {
			return nil, err
		}
		s.Add(elem)
	}
	return s, nil
}

func buildElement(es ElementSpec, name string, loadImage ImageLoader) (Element, error) {
	switch es.Type {
	case "rect":
		c, err := ParseHexColor(es.Color)
		if err != nil {
			return nil, fmt.Errorf("element %q: %w", name, err)
		}
		r := NewRect(name, c, es.Width, es.Height, es.Path)
		if es.MotionBlur != nil {
			r.Blur = *es.MotionBlur
		}
		return r, nil

	case "sprite":
		img, err := loadInput(name, es.Input, loadImage)
		if err != nil {
			return nil, err
		}
		sp := NewSprite(name, img, es.Path)
		sp.W, sp.H = es.Width, es.Height
		if es.MotionBlur != nil {
			sp.Blur = *es.MotionBlur
		}
		return sp, nil

	case "backdrop":
		img, err := loadInput(name, es.Input, loadImage)
		if err != nil {
			return nil, err
		}
		b := NewBackdrop(name, img)
		if es.MotionBlur != nil {
			b.Blur = *es.MotionBlur
		}
		return b, nil

	case "qr":
		return NewQRWatermark(name, es.Content, es.Size)

	default:
		return nil, fmt.Errorf("element %q: unknown type %q", name, es.Type)
	}
}

func loadInput(name, input string, loadImage ImageLoader) (image.Image, error) {
	if input == "" {
		return nil, fmt.Errorf("element %q: missing input", name)
	}
	if loadImage == nil {
		return nil, fmt.Errorf("element %q: no image loader configured", name)
	}
	img, err := loadImage(input)
	if err != nil {
		return nil, fmt.Errorf("element %q: %w", name, err)
	}
	return img, nil
}
