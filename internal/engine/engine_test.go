package engine

import (
	"context"
	"image"
	"image/color"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/scene2video/internal/analyzer"
	"github.com/ivlev/scene2video/internal/config"
	"github.com/ivlev/scene2video/internal/motionblur"
	"github.com/ivlev/scene2video/internal/scene"
)

// memoryEncoder records what would have been piped to ffmpeg.
type memoryEncoder struct {
	mu       sync.Mutex
	segments map[int]int // segment index -> frame count
	concats  int
}

func newMemoryEncoder() *memoryEncoder {
	return &memoryEncoder{segments: make(map[int]int)}
}

func (m *memoryEncoder) EncodeSegment(ctx context.Context, frames []*image.RGBA, videoPath string, params config.SegmentParams, encoderName string, quality int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.segments[params.Index] = len(frames)
	return nil
}

func (m *memoryEncoder) Concatenate(ctx context.Context, segmentPaths []string, finalPath string, tmpDir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.concats++
	return nil
}

func testScene() *scene.Scene {
	sc := scene.New(16, 16)
	sc.Add(scene.NewRect("mover", color.RGBA{R: 200, A: 255}, 4, 4, []scene.PathKeyframe{
		{Time: 0, X: 0, Y: 6},
		{Time: 1, X: 12, Y: 6},
	}))
	return sc
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	enabled := true
	return &config.Config{
		ScenePath:   "test.yaml",
		OutputVideo: filepath.Join(t.TempDir(), "out.mp4"),
		Duration:    1.0,
		Width:       16,
		Height:      16,
		FPS:         4,
		Workers:     2,
		MotionBlur:  motionblur.Settings{Enabled: &enabled},
	}
}

func TestRunEncodesAllFrames(t *testing.T) {
	enc := newMemoryEncoder()
	est, err := analyzer.NewEstimator("keyframe")
	require.NoError(t, err)

	p := NewRenderProject(testConfig(t), testScene(), enc, est)
	require.NoError(t, p.Run(context.Background()))

	total := 0
	for _, n := range enc.segments {
		total += n
	}
	assert.Equal(t, 4, total, "1s at 4 fps is 4 frames")
	assert.Len(t, enc.segments, 1, "4 frames fit one per-second segment")
	assert.Equal(t, 1, enc.concats)
}

func TestRunSplitsSegmentsPerSecond(t *testing.T) {
	enc := newMemoryEncoder()
	cfg := testConfig(t)
	cfg.Duration = 2.5 // 10 frames -> segments of 4, 4, 2

	p := NewRenderProject(cfg, testScene(), enc, nil)
	require.NoError(t, p.Run(context.Background()))

	require.Len(t, enc.segments, 3)
	assert.Equal(t, 4, enc.segments[0])
	assert.Equal(t, 4, enc.segments[1])
	assert.Equal(t, 2, enc.segments[2])
}

func TestRunRejectsEmptyTimeline(t *testing.T) {
	cfg := testConfig(t)
	cfg.Duration = 0

	p := NewRenderProject(cfg, testScene(), newMemoryEncoder(), nil)
	assert.Error(t, p.Run(context.Background()))
}

func TestRunHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewRenderProject(testConfig(t), testScene(), newMemoryEncoder(), nil)
	assert.ErrorIs(t, p.Run(ctx), context.Canceled)
}

type failingEstimator struct{}

func (failingEstimator) Estimate(analyzer.Sample) (float64, error) {
	return 0, assert.AnError
}

func TestRunSurvivesEstimatorFailure(t *testing.T) {
	enc := newMemoryEncoder()
	p := NewRenderProject(testConfig(t), testScene(), enc, failingEstimator{})
	require.NoError(t, p.Run(context.Background()), "estimator failure degrades, never aborts")
	assert.Equal(t, 1, enc.concats)
}
