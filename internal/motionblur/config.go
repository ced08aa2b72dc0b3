package motionblur

import "math"

// Curve selects the weighting function applied across sub-frame samples.
type Curve string

const (
	CurveBox      Curve = "box"
	CurveTriangle Curve = "triangle"
	CurveGaussian Curve = "gaussian"
)

// Position locates the exposure window relative to the frame's nominal time.
type Position string

const (
	PositionCenter Position = "center"
	PositionStart  Position = "start"
	PositionEnd    Position = "end"
)

// Quality presets map a friendly name to a sample count. Consulted only when
// samples is absent.
var qualitySamples = map[string]float64{
	"low":    4,
	"medium": 8,
	"high":   16,
	"ultra":  32,
}

const (
	defaultSamples            = 8
	defaultShutterAngle       = 180
	defaultShutterPhase       = -90
	defaultAdaptiveMinSamples = 2

	minSamples      = 1
	maxSamples      = 64
	maxShutterAngle = 720
	maxShutterPhase = 360
)

// Settings is the partial, user-facing motion blur configuration as it
// arrives from a project file or render request. Pointer fields distinguish
// "absent" from an explicit zero value.
type Settings struct {
	Enabled            *bool    `yaml:"enabled,omitempty"`
	Samples            *float64 `yaml:"samples,omitempty"`
	Quality            string   `yaml:"quality,omitempty"`
	ShutterAngle       *float64 `yaml:"shutter_angle,omitempty"`
	ShutterCurve       Curve    `yaml:"shutter_curve,omitempty"`
	ShutterPosition    Position `yaml:"shutter_position,omitempty"`
	ShutterPhase       *float64 `yaml:"shutter_phase,omitempty"`
	AdaptiveSampling   *bool    `yaml:"adaptive_sampling,omitempty"`
	AdaptiveMinSamples *float64 `yaml:"adaptive_min_samples,omitempty"`
}

// Config is the resolved, authoritative configuration. Every field is
// populated and in range; downstream code performs no further validation.
type Config struct {
	Enabled            bool
	Samples            int
	ShutterAngle       float64
	ShutterCurve       Curve
	ShutterPosition    Position
	AdaptiveSampling   bool
	AdaptiveMinSamples int
	ShutterPhase       float64
}

// Resolve turns a partial Settings into a complete, clamped Config. A nil
// Settings yields the documented defaults. Resolve is pure and idempotent:
// resolving the Settings form of a resolved Config returns it unchanged.
func Resolve(s *Settings) Config {
	if s == nil {
		s = &Settings{}
	}

	cfg := Config{
		Enabled:            false,
		Samples:            defaultSamples,
		ShutterAngle:       defaultShutterAngle,
		ShutterCurve:       CurveBox,
		ShutterPosition:    PositionCenter,
		AdaptiveSampling:   false,
		AdaptiveMinSamples: defaultAdaptiveMinSamples,
		ShutterPhase:       defaultShutterPhase,
	}

	if s.Enabled != nil {
		cfg.Enabled = *s.Enabled
	}

	switch {
	case s.Samples != nil:
		cfg.Samples = clampSamples(*s.Samples)
	case s.Quality != "":
		if n, ok := qualitySamples[s.Quality]; ok {
			cfg.Samples = clampSamples(n)
		}
	}

	if s.ShutterAngle != nil {
		cfg.ShutterAngle = clamp(*s.ShutterAngle, 0, maxShutterAngle)
	}

	if s.ShutterCurve != "" {
		cfg.ShutterCurve = s.ShutterCurve
	}
	if s.ShutterPosition != "" {
		cfg.ShutterPosition = s.ShutterPosition
	}

	// shutterPhase is the single source of truth post-resolution; the
	// friendlier shutterPosition enum only seeds it when phase is absent.
	switch {
	case s.ShutterPhase != nil:
		cfg.ShutterPhase = clamp(*s.ShutterPhase, -maxShutterPhase, maxShutterPhase)
	case s.ShutterPosition != "":
		cfg.ShutterPhase = phaseForPosition(s.ShutterPosition, cfg.ShutterAngle)
	default:
		cfg.ShutterPhase = clamp(defaultShutterPhase, -maxShutterPhase, maxShutterPhase)
	}

	if s.AdaptiveSampling != nil {
		cfg.AdaptiveSampling = *s.AdaptiveSampling
	}
	if s.AdaptiveMinSamples != nil {
		cfg.AdaptiveMinSamples = int(math.Round(*s.AdaptiveMinSamples))
	}
	if cfg.AdaptiveMinSamples < 1 {
		cfg.AdaptiveMinSamples = 1
	}

	return cfg
}

// Settings converts a resolved Config back to its explicit Settings form,
// suitable for writing to a project file or re-resolving.
func (c Config) Settings() Settings {
	samples := float64(c.Samples)
	adaptiveMin := float64(c.AdaptiveMinSamples)
	enabled := c.Enabled
	angle := c.ShutterAngle
	phase := c.ShutterPhase
	adaptive := c.AdaptiveSampling
	return Settings{
		Enabled:            &enabled,
		Samples:            &samples,
		ShutterAngle:       &angle,
		ShutterCurve:       c.ShutterCurve,
		ShutterPosition:    c.ShutterPosition,
		ShutterPhase:       &phase,
		AdaptiveSampling:   &adaptive,
		AdaptiveMinSamples: &adaptiveMin,
	}
}

func phaseForPosition(pos Position, angle float64) float64 {
	var phase float64
	switch pos {
	case PositionStart:
		phase = 0
	case PositionEnd:
		phase = -angle
	default: // center
		phase = -angle / 2
	}
	return clamp(phase, -maxShutterPhase, maxShutterPhase)
}

func clampSamples(n float64) int {
	return int(clamp(math.Round(n), minSamples, maxSamples))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
