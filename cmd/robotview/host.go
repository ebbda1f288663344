package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/robotview/internal/config"
	"github.com/Faultbox/robotview/internal/engine/animation"
	"github.com/Faultbox/robotview/internal/engine/debug"
	"github.com/Faultbox/robotview/internal/engine/input"
	"github.com/Faultbox/robotview/internal/engine/picking"
	"github.com/Faultbox/robotview/internal/engine/renderer"
	"github.com/Faultbox/robotview/internal/engine/scene"
	"github.com/Faultbox/robotview/internal/engine/window"
	"github.com/Faultbox/robotview/internal/logger"
	"github.com/Faultbox/robotview/internal/viewer"
	"github.com/Faultbox/robotview/pkg/math"
)

// host owns the window and renderer and paces the viewer's frames. Each
// NextFrame pumps window events into the camera controls.
type host struct {
	cfg      *config.Config
	win      *window.Window
	renderer *renderer.Renderer
	viewer   *viewer.Viewer
	pointer  *input.Pointer
	limiter  *viewer.IntervalScheduler
	shots    *debug.Screenshots

	showBounds bool
	picked     scene.Node
	pressX     int
	pressY     int
}

// clickSlop is how far the pointer may travel between press and release
// for the gesture to count as a click rather than a drag.
const clickSlop = 3

// pickedBoxColor outlines the part selected by clicking.
const pickedBoxColor = 0x00aaff

func runWindowed(ctx context.Context, cfg *config.Config) error {
	if err := window.Init(); err != nil {
		return err
	}

	dispW, dispH, err := window.DisplaySize()
	if err != nil {
		logger.Warn("display size unknown, using cap", zap.Error(err))
	}
	width, height := cfg.Graphics.Viewport(dispW, dispH)

	samples := 0
	if cfg.Graphics.Antialias {
		samples = cfg.Graphics.Samples
	}
	win, err := window.New(window.Config{
		Title:   "Robot Viewer",
		Width:   width,
		Height:  height,
		VSync:   cfg.Graphics.VSync,
		Samples: samples,
	})
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	defer win.Close()

	drawW, drawH := win.DrawableSize()
	r, err := renderer.New(renderer.Config{
		Width:       drawW,
		Height:      drawH,
		Multisample: samples > 0,
		Present:     win.SwapBuffers,
	})
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	defer r.Close()

	v, err := viewer.New(viewerConfig(cfg, drawW, drawH), newLoader(cfg), r)
	if err != nil {
		return err
	}
	if err := v.Bootstrap(ctx); err != nil {
		return err
	}

	h := &host{
		cfg:      cfg,
		win:      win,
		renderer: r,
		viewer:   v,
		pointer:  input.NewPointer(v.Controls()),
		limiter:  viewer.NewIntervalScheduler(viewer.RateInterval(float64(cfg.Graphics.FPSLimit))),
		shots:    debug.NewScreenshots("screenshots", "robotview"),
	}
	defer h.limiter.Stop()

	return v.Run(ctx, h)
}

// NextFrame handles pending window events, then waits for the frame
// limiter. Buffer swaps in the renderer provide vsync pacing.
func (h *host) NextFrame(ctx context.Context) (time.Time, error) {
	events, err := h.win.Poll()
	if err != nil {
		if errors.Is(err, window.ErrClosed) {
			return time.Time{}, viewer.ErrSurfaceClosed
		}
		return time.Time{}, err
	}

	for _, e := range events {
		switch e.Type {
		case input.EventWindowResize:
			w, ht := h.win.DrawableSize()
			h.renderer.Resize(w, ht)
			h.viewer.Camera().SetAspect(w, ht)
		case input.EventKeyDown:
			if h.handleKey(e.Key) {
				return time.Time{}, viewer.ErrSurfaceClosed
			}
		case input.EventMouseDown:
			if e.Button == input.ButtonLeft {
				h.pressX, h.pressY = e.MouseX, e.MouseY
			}
			h.pointer.Handle(e)
		case input.EventMouseUp:
			if e.Button == input.ButtonLeft && abs(e.MouseX-h.pressX) <= clickSlop && abs(e.MouseY-h.pressY) <= clickSlop {
				h.pick(e.MouseX, e.MouseY)
			}
			h.pointer.Handle(e)
		default:
			h.pointer.Handle(e)
		}
	}

	if h.showBounds || h.picked != nil {
		h.renderer.SetOverlay(h.overlay())
	}

	return h.limiter.NextFrame(ctx)
}

// handleKey runs a key binding. It returns true when the viewer should quit.
func (h *host) handleKey(k input.Key) bool {
	switch k {
	case input.KeyEscape:
		return true
	case input.KeyF12:
		pixels, w, ht := h.renderer.ReadPixels()
		path, err := h.shots.Save(pixels, w, ht)
		if err != nil {
			logger.Warn("screenshot failed", zap.Error(err))
			break
		}
		logger.Info("screenshot saved", zap.String("path", path))
	case input.KeyB:
		h.showBounds = !h.showBounds
		if !h.showBounds && h.picked == nil {
			h.renderer.SetOverlay(nil)
		}
		logger.Debug("part bounds", zap.Bool("visible", h.showBounds))
	case input.KeyR:
		cc := h.cfg.Camera
		h.viewer.Controls().Reset()
		h.viewer.Camera().SetPosition(math.V3(cc.Position), math.V3(cc.Target))
		logger.Debug("camera reset")
	}
	return false
}

// pick selects the animated part under the pointer, or clears the
// selection when the click hits nothing.
func (h *host) pick(x, y int) {
	parts := partSet(h.viewer)
	if len(parts) == 0 {
		return
	}

	cam := h.viewer.Camera()
	w, ht := h.win.Size()
	ray := picking.ScreenToRay(float32(x), float32(y), float32(w), float32(ht), cam.ViewMatrix(), cam.ProjectionMatrix())
	hit, ok := picking.Pick(h.viewer.Scene().Root(), ray, func(n scene.Node) bool { return parts[n] != nil })
	if !ok {
		if h.picked != nil && !h.showBounds {
			h.renderer.SetOverlay(nil)
		}
		h.picked = nil
		return
	}

	h.picked = hit.Node
	p := parts[hit.Node]
	logger.Info("part picked",
		zap.String("name", p.Name()),
		zap.Float32("distance", hit.Distance),
		zap.Float64("spin", p.State.Spin),
		zap.Float64("steer", p.State.Steer))
}

// overlay outlines the picked part, and every part when bounds are shown.
func (h *host) overlay() []debug.LineVertex {
	var lines []debug.LineVertex
	parts := partSet(h.viewer)
	scene.WalkWorld(h.viewer.Scene().Root(), math.Identity(), func(n scene.Node, world math.Mat4) {
		if parts[n] == nil {
			return
		}
		color := uint32(debug.DefaultBoxColor)
		switch {
		case n == h.picked:
			color = pickedBoxColor
		case !h.showBounds:
			return
		}
		m, _ := n.AsMesh()
		if lo, hi, ok := m.Bounds(); ok {
			lines = append(lines, debug.BoxLines(lo, hi, world, color)...)
		}
	})
	return lines
}

func partSet(v *viewer.Viewer) map[scene.Node]*animation.Part {
	parts := make(map[scene.Node]*animation.Part, len(v.Parts()))
	for _, p := range v.Parts() {
		parts[p.Node] = p
	}
	return parts
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
