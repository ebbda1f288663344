// Package main is the entry point for the robot viewer.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/robotview/internal/assets"
	"github.com/Faultbox/robotview/internal/config"
	"github.com/Faultbox/robotview/internal/engine/animation"
	"github.com/Faultbox/robotview/internal/engine/camera"
	"github.com/Faultbox/robotview/internal/engine/loader"
	"github.com/Faultbox/robotview/internal/engine/scene"
	"github.com/Faultbox/robotview/internal/logger"
	"github.com/Faultbox/robotview/internal/viewer"
	"github.com/Faultbox/robotview/pkg/math"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Robot Viewer ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if config.SaveRequested() {
		path, err := cfg.Save()
		if err != nil {
			logger.Error("failed to save config", zap.Error(err))
			os.Exit(1)
		}
		logger.Info("config saved", zap.String("path", path))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if headless, frames := config.Headless(); headless {
		err = runHeadless(ctx, cfg, frames)
	} else {
		err = runWindowed(ctx, cfg)
	}
	if err != nil {
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}

// viewerConfig maps the file/flag configuration onto the viewer.
func viewerConfig(cfg *config.Config, width, height int) viewer.Config {
	vc := viewer.DefaultConfig()
	vc.AssetPath = cfg.Asset.Path
	vc.Width, vc.Height = width, height

	vc.Scene = scene.Options{
		Background:    cfg.Graphics.Background,
		GridSize:      cfg.Graphics.GridSize,
		GridDivisions: cfg.Graphics.GridDivs,
	}

	cc := cfg.Camera
	vc.Camera = viewer.CameraConfig{
		FOV:         cc.FOV,
		Near:        cc.Near,
		Far:         cc.Far,
		Position:    math.V3(cc.Position),
		Target:      math.V3(cc.Target),
		MinDistance: cc.MinDistance,
		MaxDistance: cc.MaxDistance,
		Controls: camera.ControlSettings{
			RotateSpeed: cc.RotateSpeed,
			ZoomSpeed:   cc.ZoomSpeed,
			PanSpeed:    cc.PanSpeed,
			Damping:     cc.Damping,
		},
	}

	ac := cfg.Animation
	vc.Animation = animation.Options{
		Prefix:        ac.PartPrefix,
		SpinStep:      ac.SpinStep,
		SteerStep:     ac.SteerStep,
		Mode:          animation.StepMode(ac.StepMode),
		ReferenceRate: ac.ReferenceRate,
	}
	return vc
}

// newLoader builds the glTF loader over a manager that searches the working
// directory and the config directory.
func newLoader(cfg *config.Config) *loader.Loader {
	m := assets.NewManager(cfg.Asset.Retries, cfg.Asset.RetryDelay)
	if dir := config.ConfigDir(); dir != "" {
		m.AddRoot(dir)
	}
	if wd, err := os.Getwd(); err == nil {
		m.AddRoot(wd)
	}
	return loader.New(m)
}

// runHeadless runs frames ticks without a window and logs where every part
// ended up.
func runHeadless(ctx context.Context, cfg *config.Config, frames int) error {
	width, height := cfg.Graphics.Viewport(0, 0)
	r := &viewer.NopRenderer{}
	v, err := viewer.New(viewerConfig(cfg, width, height), newLoader(cfg), r)
	if err != nil {
		return err
	}
	if err := v.Bootstrap(ctx); err != nil {
		return err
	}
	if err := v.AwaitAsset(ctx); err != nil {
		return fmt.Errorf("waiting for asset: %w", err)
	}

	// Synthetic timestamps at the reference rate keep scaled mode
	// reproducible.
	interval := viewer.RateInterval(cfg.Animation.ReferenceRate)
	start := time.Now()
	frame := 0
	sched := viewer.SchedulerFunc(func(ctx context.Context) (time.Time, error) {
		if frame >= frames {
			return time.Time{}, viewer.ErrSurfaceClosed
		}
		ts := start.Add(time.Duration(frame) * interval)
		frame++
		return ts, ctx.Err()
	})
	if err := v.Run(ctx, sched); err != nil {
		return err
	}

	for _, p := range v.Parts() {
		logger.Info("part",
			zap.String("name", p.Name()),
			zap.Float64("spin", p.State.Spin),
			zap.Float64("steer", p.State.Steer))
	}
	logger.Info("headless run finished",
		zap.Int("frames", r.Frames),
		zap.Int("parts", len(v.Parts())),
		zap.String("asset", filepath.Clean(cfg.Asset.Path)))
	return nil
}
