package config

import (
	"github.com/ivlev/scene2video/internal/motionblur"
)

// Config carries the render-run settings assembled from CLI flags and the
// scene file.
type Config struct {
	ScenePath    string
	OutputVideo  string
	Duration     float64
	Width        int
	Height       int
	FPS          int
	Workers      int
	VideoEncoder string
	Quality      int
	Estimator    string
	ShowStats    bool
	BuildVersion string

	MotionBlur motionblur.Settings
}

// SegmentParams describes one encoded video segment.
type SegmentParams struct {
	Width, Height int
	FPS           int
	Frames        int
	Index         int
}
