package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ivlev/scene2video/internal/analyzer"
	"github.com/ivlev/scene2video/internal/config"
	"github.com/ivlev/scene2video/internal/engine"
	"github.com/ivlev/scene2video/internal/motionblur"
	"github.com/ivlev/scene2video/internal/scene"
	"github.com/ivlev/scene2video/internal/source"
	"github.com/ivlev/scene2video/internal/system"
	"github.com/ivlev/scene2video/internal/video"
)

var buildVersion = "dev"

func main() {
	system.InitResourceLimits()

	for _, d := range []string{"input/scenes", "output"} {
		os.MkdirAll(d, 0755)
	}

	scenePtr := flag.String("scene", "", "Scene YAML path (default: newest file in input/scenes/)")
	outputPtr := flag.String("output", "", "Output video path (default: generated under output/)")
	durationPtr := flag.Float64("duration", 5.0, "Video duration in seconds")
	widthPtr := flag.Int("width", 0, "Output width (0 takes the scene's width)")
	heightPtr := flag.Int("height", 0, "Output height (0 takes the scene's height)")
	fpsPtr := flag.Int("fps", 30, "Frames per second")
	workersPtr := flag.Int("workers", 0, "Parallel segment encoders (0 picks automatically)")
	dpiPtr := flag.Int("dpi", 300, "DPI for PDF-backed elements")
	encoderPtr := flag.String("encoder", "", "H.264 encoder (default: best available)")
	qualityPtr := flag.Int("quality", 23, "Video quality (x264: CRF, VideoToolbox: bitrate = Q*100kbit/s)")
	estimatorPtr := flag.String("estimator", "keyframe", "Motion estimator: keyframe, frame-diff")
	statsPtr := flag.Bool("stats", false, "Print a performance report")
	initPtr := flag.Bool("init", false, "Write an example scene to input/scenes/ and exit")

	blurPtr := flag.Bool("motion-blur", false, "Enable motion blur")
	samplesPtr := flag.Float64("blur-samples", 0, "Sub-frame samples per frame (overrides the scene file)")
	blurQualityPtr := flag.String("blur-quality", "", "Blur quality preset: low, medium, high, ultra")
	anglePtr := flag.Float64("shutter-angle", 0, "Shutter angle in degrees (overrides the scene file)")
	curvePtr := flag.String("shutter-curve", "", "Shutter curve: box, triangle, gaussian")
	positionPtr := flag.String("shutter-position", "", "Shutter position: center, start, end")
	phasePtr := flag.Float64("shutter-phase", 0, "Shutter phase in degrees (overrides the scene file)")
	adaptivePtr := flag.Bool("adaptive", false, "Enable adaptive sampling")

	flag.Parse()

	if *initPtr {
		path := filepath.Join("input/scenes", "example.yaml")
		if err := scene.WriteSpec(exampleSpec(), path); err != nil {
			log.Fatalf("[-] Could not write example scene: %v", err)
		}
		fmt.Printf("[+++] Example scene written: %s\n", path)
		return
	}

	scenePath := *scenePtr
	if scenePath == "" {
		latest, err := system.FindLatestScene("input/scenes")
		if err != nil {
			log.Fatalf("[-] %v. Put a scene YAML in input/scenes/ or run with -init", err)
		}
		scenePath = latest
		fmt.Printf("[*] Using scene: %s\n", scenePath)
	}

	spec, err := scene.ReadSpec(scenePath)
	if err != nil {
		log.Fatalf("[-] Could not read scene: %v", err)
	}

	width, height := spec.Width, spec.Height
	if *widthPtr > 0 {
		width = *widthPtr
	}
	if *heightPtr > 0 {
		height = *heightPtr
	}
	spec.Width, spec.Height = width, height

	loader := func(input string) (image.Image, error) {
		return source.LoadElementImage(input, *dpiPtr)
	}
	sc, err := scene.Build(spec, loader)
	if err != nil {
		log.Fatalf("[-] Could not build scene: %v", err)
	}

	blurSettings := spec.MotionBlur
	applyBlurFlags(&blurSettings, blurFlagValues{
		enabled:  blurPtr,
		samples:  samplesPtr,
		quality:  blurQualityPtr,
		angle:    anglePtr,
		curve:    curvePtr,
		position: positionPtr,
		phase:    phasePtr,
		adaptive: adaptivePtr,
	})

	encoderName := *encoderPtr
	if encoderName == "" {
		encoderName = system.GetBestH264Encoder()
		fmt.Printf("[*] Encoder: %s\n", encoderName)
	}

	output := *outputPtr
	if output == "" {
		base := strings.TrimSuffix(filepath.Base(scenePath), filepath.Ext(scenePath))
		output = filepath.Join("output", fmt.Sprintf("%s_%s.mp4", base, time.Now().Format("2006-01-02_15-04-05")))
	}

	estimator, err := analyzer.NewEstimator(*estimatorPtr)
	if err != nil {
		log.Fatalf("[-] %v", err)
	}

	cfg := &config.Config{
		ScenePath:    scenePath,
		OutputVideo:  output,
		Duration:     *durationPtr,
		Width:        width,
		Height:       height,
		FPS:          *fpsPtr,
		Workers:      *workersPtr,
		VideoEncoder: encoderName,
		Quality:      *qualityPtr,
		Estimator:    *estimatorPtr,
		ShowStats:    *statsPtr,
		BuildVersion: buildVersion,
		MotionBlur:   blurSettings,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	project := engine.NewRenderProject(cfg, sc, &video.FFmpegEncoder{}, estimator)
	if err := project.Run(ctx); err != nil {
		log.Fatalf("[-] Render failed: %v", err)
	}

	fmt.Printf("[+++] Done: %s\n", output)
}

type blurFlagValues struct {
	enabled  *bool
	samples  *float64
	quality  *string
	angle    *float64
	curve    *string
	position *string
	phase    *float64
	adaptive *bool
}

// applyBlurFlags lets explicitly set CLI flags override the scene file's
// motion blur block. flag.Visit only reports flags present on the command
// line, so scene-file values survive untouched defaults.
func applyBlurFlags(s *motionblur.Settings, v blurFlagValues) {
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["motion-blur"] {
		s.Enabled = v.enabled
	}
	if set["blur-samples"] {
		s.Samples = v.samples
	}
	if set["blur-quality"] {
		s.Quality = *v.quality
	}
	if set["shutter-angle"] {
		s.ShutterAngle = v.angle
	}
	if set["shutter-curve"] {
		s.ShutterCurve = motionblur.Curve(*v.curve)
	}
	if set["shutter-position"] {
		s.ShutterPosition = motionblur.Position(*v.position)
	}
	if set["shutter-phase"] {
		s.ShutterPhase = v.phase
	}
	if set["adaptive"] {
		s.AdaptiveSampling = v.adaptive
	}
}

// exampleSpec is a small starter scene: a moving title block over a dark
// backdrop color, with a QR watermark exempt from blur.
func exampleSpec() *scene.Spec {
	enabled := true
	return &scene.Spec{
		Version:    "1.0",
		Width:      1280,
		Height:     720,
		Background: "#101018",
		Camera: []scene.CameraKeyframe{
			{Time: 0, X: 640, Y: 360, Zoom: 1.0},
			{Time: 2.5, X: 800, Y: 300, Zoom: 1.4},
			{Time: 5, X: 640, Y: 360, Zoom: 1.0},
		},
		Elements: []scene.ElementSpec{
			{
				Type: "rect", Name: "title_block", Color: "#e04814",
				Width: 240, Height: 80,
				Path: []scene.PathKeyframe{
					{Time: 0, X: -240, Y: 320},
					{Time: 2, X: 520, Y: 320},
					{Time: 5, X: 560, Y: 320},
				},
			},
			{
				Type: "qr", Name: "watermark",
				Content: "https://example.com/scene2video", Size: 120,
			},
		},
		MotionBlur: motionblur.Settings{
			Enabled: &enabled,
			Quality: "high",
		},
	}
}
