// Package engine runs a render: it steps the playback clock frame by frame,
// produces each motion-blurred frame through the orchestrator, and hands
// finished frames to ffmpeg segment encoders.
package engine

import (
	"context"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/scene2video/internal/analyzer"
	"github.com/ivlev/scene2video/internal/config"
	"github.com/ivlev/scene2video/internal/motionblur"
	"github.com/ivlev/scene2video/internal/playback"
	"github.com/ivlev/scene2video/internal/renderer"
	"github.com/ivlev/scene2video/internal/scene"
	"github.com/ivlev/scene2video/internal/stage"
	"github.com/ivlev/scene2video/internal/system"
	"github.com/ivlev/scene2video/internal/video"
)

// RenderProject ties a scene, an encoder and a velocity estimator to one
// output video.
type RenderProject struct {
	Config    *config.Config
	Scene     *scene.Scene
	Encoder   video.Encoder
	Estimator analyzer.Estimator

	tempDir string
}

func NewRenderProject(cfg *config.Config, sc *scene.Scene, enc video.Encoder, est analyzer.Estimator) *RenderProject {
	return &RenderProject{
		Config:    cfg,
		Scene:     sc,
		Encoder:   enc,
		Estimator: est,
	}
}

// Run renders and encodes the whole video. Frames render strictly
// sequentially since every sub-frame shares the stage's current target and
// accumulation buffer; segment encoding runs concurrently behind the
// render loop.
func (p *RenderProject) Run(ctx context.Context) error {
	startTime := time.Now()

	var err error
	p.tempDir, err = os.MkdirTemp("", "scene2video_")
	if err != nil {
		return err
	}
	defer os.RemoveAll(p.tempDir)

	c := p.Config
	totalFrames := int(math.Round(c.Duration * float64(c.FPS)))
	if totalFrames < 1 {
		return fmt.Errorf("duration %.2fs at %d fps yields no frames", c.Duration, c.FPS)
	}

	blurCfg := motionblur.Resolve(&c.MotionBlur)

	fmt.Println("--- [PROJECT: SCENE RENDERER] ---")
	fmt.Printf("[*] Scene: %s | Frames: %d @ %d FPS\n", c.ScenePath, totalFrames, c.FPS)
	fmt.Printf("[*] Resolution: %dx%d | Motion blur: %v (samples=%d curve=%s)\n",
		c.Width, c.Height, blurCfg.Enabled, blurCfg.Samples, blurCfg.ShutterCurve)
	fmt.Println("---------------------------------")

	st := stage.New(c.Width, c.Height)
	pb := playback.NewStatus(float64(c.FPS))
	pb.SetState(playback.StatePlaying)
	orch := renderer.New(st)

	// One segment per second of output keeps encoder memory bounded and
	// gives the pool enough churn to matter.
	segFrames := c.FPS
	segCount := (totalFrames + segFrames - 1) / segFrames
	segmentPaths := make([]string, segCount)

	workers := c.Workers
	if workers < 1 {
		workers = system.EncodeWorkers()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var batch []*image.RGBA
	segIndex := 0
	renderStart := time.Now()

	for f := 0; f < totalFrames; f++ {
		if err := gctx.Err(); err != nil {
			break
		}

		velocity := p.estimateVelocity(pb, st)

		st.RotateTargets()
		if err := orch.RenderFrame(p.Scene, pb, blurCfg, velocity); err != nil {
			g.Wait()
			return fmt.Errorf("render frame %d: %w", f, err)
		}

		batch = append(batch, cloneFrame(st.Current()))
		pb.Advance()

		if len(batch) == segFrames || f == totalFrames-1 {
			frames := batch
			index := segIndex
			batch = nil
			segIndex++

			segPath := filepath.Join(p.tempDir, fmt.Sprintf("s%d.mp4", index))
			segmentPaths[index] = segPath

			g.Go(func() error {
				defer releaseFrames(frames)
				params := config.SegmentParams{
					Width:  c.Width,
					Height: c.Height,
					FPS:    c.FPS,
					Frames: len(frames),
					Index:  index,
				}
				if err := p.Encoder.EncodeSegment(gctx, frames, segPath, params, c.VideoEncoder, c.Quality); err != nil {
					return fmt.Errorf("segment %d: %w", index, err)
				}
				fmt.Printf("[>] Segment ready: %d/%d\n", index+1, segCount)
				return nil
			})
		}
	}
	renderTime := time.Since(renderStart)

	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	fmt.Println("[*] Joining segments...")
	concatStart := time.Now()
	if err := p.Encoder.Concatenate(ctx, segmentPaths[:segIndex], c.OutputVideo, p.tempDir); err != nil {
		return fmt.Errorf("joining segments: %w", err)
	}

	if c.ShowStats {
		p.reportStats(totalFrames, time.Since(startTime), renderTime, time.Since(concatStart))
	}

	pb.SetState(playback.StateStopped)
	return nil
}

// estimateVelocity asks the estimator how fast content is moving right now.
// Estimation is best-effort: a failing estimator falls back to full-speed
// sampling rather than dropping blur quality silently.
func (p *RenderProject) estimateVelocity(pb *playback.Status, st *stage.Stage) float64 {
	if p.Estimator == nil {
		return motionblur.DefaultVelocityThreshold
	}

	velocity, err := p.Estimator.Estimate(analyzer.Sample{
		Scene:         p.Scene,
		Time:          pb.Time(),
		FrameDuration: pb.FrameDuration(),
		Previous:      st.Previous(),
		Current:       st.Current(),
	})
	if err != nil {
		return motionblur.DefaultVelocityThreshold
	}
	return velocity
}

func (p *RenderProject) reportStats(frames int, total, render, concat time.Duration) {
	stats := system.SampleStats()
	fps := float64(frames) / total.Seconds()

	report := fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Total Time: %.2fs\n"+
			"Rendering: %.2fs\n"+
			"Concatenation: %.2fs\n"+
			"Effective FPS: %.2f\n"+
			"%s\n"+
			"----------------------------\n",
		p.Config.BuildVersion, total.Seconds(), render.Seconds(), concat.Seconds(), fps, stats,
	)
	fmt.Print(report)

	logEntry := fmt.Sprintf("[%s] Build: %s | Scene: %s | Frames: %d | Total: %.2fs | Render: %.2fs | FPS: %.2f\n",
		time.Now().Format("2006-01-02 15:04:05"),
		p.Config.BuildVersion,
		filepath.Base(p.Config.ScenePath),
		frames,
		total.Seconds(),
		render.Seconds(),
		fps,
	)

	f, err := os.OpenFile("benchmark.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		f.WriteString(logEntry)
		f.Close()
	} else {
		fmt.Printf("[!] Could not write benchmark.log: %v\n", err)
	}
}

// cloneFrame snapshots the stage's current target. The stage reuses its
// targets on the next frame, so encoders need their own copy; the pool
// recycles them once written out.
func cloneFrame(src *image.RGBA) *image.RGBA {
	dst := system.GetImage(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}

func releaseFrames(frames []*image.RGBA) {
	for _, f := range frames {
		system.PutImage(f)
	}
}
