// Package viewer runs the robot scene: it bootstraps the camera, lights,
// grid and asset load, then advances controls and wheel animation and
// renders once per frame until cancelled.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/robotview/internal/engine/animation"
	"github.com/Faultbox/robotview/internal/engine/camera"
	"github.com/Faultbox/robotview/internal/engine/scene"
	"github.com/Faultbox/robotview/internal/logger"
	"github.com/Faultbox/robotview/pkg/math"
)

var (
	// ErrNotBootstrapped is returned by Tick and Run before Bootstrap.
	ErrNotBootstrapped = errors.New("viewer: not bootstrapped")
	// ErrAlreadyBootstrapped is returned by a second Bootstrap.
	ErrAlreadyBootstrapped = errors.New("viewer: already bootstrapped")
	// ErrStopped is returned by Tick and Bootstrap once the viewer stopped.
	ErrStopped = errors.New("viewer: stopped")
	// ErrSurfaceClosed is reported by a Scheduler when the render surface
	// went away. Run treats it as a normal shutdown.
	ErrSurfaceClosed = errors.New("viewer: render surface closed")
)

// State is the lifecycle state of a Viewer.
type State int32

const (
	Uninitialized State = iota
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Controller is advanced once per tick before animation.
type Controller interface {
	Advance()
}

// Renderer draws the scene from the camera.
type Renderer interface {
	Render(s *scene.Scene, cam *camera.OrbitCamera) error
}

// AssetLoader loads a model into a scene subtree.
type AssetLoader interface {
	Load(ctx context.Context, path string) (scene.Node, error)
}

// CameraConfig places the camera and tunes its controls.
type CameraConfig struct {
	FOV         float32 // Degrees
	Near, Far   float32
	Position    math.Vec3
	Target      math.Vec3
	MinDistance float32
	MaxDistance float32
	Controls    camera.ControlSettings
}

// Config holds everything Bootstrap builds the scene from.
type Config struct {
	AssetPath string
	Width     int
	Height    int
	Scene     scene.Options
	Camera    CameraConfig
	Animation animation.Options
}

// DefaultConfig returns the standard robot scene.
func DefaultConfig() Config {
	return Config{
		AssetPath: "assets/models/robot.gltf",
		Width:     640,
		Height:    480,
		Scene:     scene.DefaultOptions(),
		Camera: CameraConfig{
			FOV:         70,
			Near:        0.001,
			Far:         100,
			Position:    math.Vec3{Y: 4, Z: 4},
			MinDistance: 0.5,
			MaxDistance: 50,
			Controls:    camera.DefaultControlSettings(),
		},
		Animation: animation.DefaultOptions(),
	}
}

// loadResult carries a finished asset load back to the frame loop.
type loadResult struct {
	node scene.Node
	err  error
}

// Viewer owns the scene and drives the frame loop. Bootstrap, Tick, Run
// and AwaitAsset must be called from one goroutine; Stop and State are safe
// from any goroutine.
type Viewer struct {
	cfg      Config
	loader   AssetLoader
	renderer Renderer

	scene      *scene.Scene
	camera     *camera.OrbitCamera
	controls   *camera.OrbitControls
	controller Controller
	animator   *animation.Animator

	state      atomic.Int32
	results    chan loadResult
	cancelLoad context.CancelFunc
	stopOnce   sync.Once
	stop       chan struct{}
}

// New creates a viewer. The scene is not built until Bootstrap.
func New(cfg Config, loader AssetLoader, renderer Renderer) (*Viewer, error) {
	if renderer == nil {
		return nil, errors.New("viewer: renderer is required")
	}
	if err := cfg.Animation.Validate(); err != nil {
		return nil, fmt.Errorf("viewer: %w", err)
	}
	return &Viewer{
		cfg:      cfg,
		loader:   loader,
		renderer: renderer,
		results:  make(chan loadResult, 1),
		stop:     make(chan struct{}),
	}, nil
}

// SetController replaces the orbit controls as the per-tick controller.
// Must be called before Bootstrap.
func (v *Viewer) SetController(c Controller) {
	v.controller = c
}

// Bootstrap builds the camera, lights and grid, wires the controls and
// starts loading the asset in the background. The load is cancelled with
// ctx or Stop.
func (v *Viewer) Bootstrap(ctx context.Context) error {
	switch v.State() {
	case Running:
		return ErrAlreadyBootstrapped
	case Stopped:
		return ErrStopped
	}

	cc := v.cfg.Camera
	v.camera = camera.NewOrbitCamera(cc.FOV, cc.Near, cc.Far, cc.Position, cc.Target)
	if cc.MaxDistance > 0 {
		v.camera.MinDistance = cc.MinDistance
		v.camera.MaxDistance = cc.MaxDistance
		v.camera.SetPosition(cc.Position, cc.Target)
	}
	v.camera.SetAspect(v.cfg.Width, v.cfg.Height)
	v.controls = camera.NewOrbitControls(v.camera, cc.Controls)
	if v.controller == nil {
		v.controller = v.controls
	}

	v.scene = scene.New(v.cfg.Scene)

	animator, err := animation.NewAnimator(v.cfg.Animation)
	if err != nil {
		return fmt.Errorf("viewer: %w", err)
	}
	v.animator = animator

	v.startLoad(ctx)
	v.state.Store(int32(Running))

	logger.Info("viewer bootstrapped",
		zap.String("asset", v.cfg.AssetPath),
		zap.Int("width", v.cfg.Width),
		zap.Int("height", v.cfg.Height),
		zap.String("stepMode", string(v.cfg.Animation.Mode)))
	return nil
}

func (v *Viewer) startLoad(ctx context.Context) {
	if v.loader == nil || v.cfg.AssetPath == "" {
		v.results <- loadResult{err: errors.New("no asset configured")}
		return
	}

	loadCtx, cancel := context.WithCancel(ctx)
	v.cancelLoad = cancel
	path := v.cfg.AssetPath
	go func() {
		defer cancel()
		node, err := v.loader.Load(loadCtx, path)
		v.results <- loadResult{node: node, err: err}
	}()
}

// complete attaches a finished load and registers its parts. A failed load
// leaves the scene with an empty robot and no parts.
func (v *Viewer) complete(res loadResult) {
	if res.err == nil {
		if err := v.scene.AttachAsset(res.node); err != nil {
			res.err = err
		}
	}
	if res.err != nil {
		logger.Warn("error loading model",
			zap.String("path", v.cfg.AssetPath),
			zap.Error(res.err))
		if _, err := v.animator.Populate(nil); err != nil {
			logger.Warn("registering parts", zap.Error(err))
		}
		return
	}

	n, err := v.animator.Populate(res.node)
	if err != nil {
		logger.Warn("registering parts", zap.Error(err))
		return
	}
	names := make([]string, 0, n)
	for _, p := range v.animator.Parts() {
		names = append(names, p.Name())
	}
	logger.Info("model attached",
		zap.String("path", v.cfg.AssetPath),
		zap.Int("parts", n),
		zap.Strings("names", names))
}

// pollLoad delivers a pending load result without blocking.
func (v *Viewer) pollLoad() {
	if v.animator.Populated() {
		return
	}
	select {
	case res := <-v.results:
		v.complete(res)
	default:
	}
}

// AwaitAsset blocks until the asset load has been delivered, or ctx is done.
func (v *Viewer) AwaitAsset(ctx context.Context) error {
	if v.State() == Uninitialized {
		return ErrNotBootstrapped
	}
	if v.animator.Populated() {
		return nil
	}
	select {
	case res := <-v.results:
		v.complete(res)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Tick runs one frame: deliver a finished load, advance the controller,
// step the animated parts and render.
func (v *Viewer) Tick(dt time.Duration) error {
	switch v.State() {
	case Uninitialized:
		return ErrNotBootstrapped
	case Stopped:
		return ErrStopped
	}

	v.pollLoad()
	v.controller.Advance()
	v.animator.Step(dt)

	if err := v.renderer.Render(v.scene, v.camera); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

// Run ticks once per frame of sched until ctx is done, Stop is called or
// the scheduler reports ErrSurfaceClosed. All three return nil and leave the
// viewer Stopped. Render and scheduler failures are returned.
func (v *Viewer) Run(ctx context.Context, sched Scheduler) error {
	if v.State() == Uninitialized {
		return ErrNotBootstrapped
	}
	defer v.Stop()

	logger.Info("starting frame loop")

	var last time.Time
	frameCount := 0
	fpsTimer := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-v.stop:
			return nil
		default:
		}

		now, err := sched.NextFrame(ctx)
		if err != nil {
			if errors.Is(err, ErrSurfaceClosed) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("next frame: %w", err)
		}

		var dt time.Duration
		if !last.IsZero() {
			dt = now.Sub(last)
		}
		last = now

		if err := v.Tick(dt); err != nil {
			if errors.Is(err, ErrStopped) {
				return nil
			}
			return err
		}

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			logger.Debug("fps",
				zap.Int("count", frameCount),
				zap.Duration("dt", dt),
				zap.Uint64("ticks", v.animator.Ticks()))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}
}

// Stop ends the frame loop and cancels a pending load. Safe to call more
// than once and from any goroutine.
func (v *Viewer) Stop() {
	v.stopOnce.Do(func() {
		v.state.Store(int32(Stopped))
		close(v.stop)
		if v.cancelLoad != nil {
			v.cancelLoad()
		}
		logger.Info("viewer stopped")
	})
}

// State returns the current lifecycle state.
func (v *Viewer) State() State {
	return State(v.state.Load())
}

// Scene returns the scene, nil before Bootstrap.
func (v *Viewer) Scene() *scene.Scene { return v.scene }

// Camera returns the camera, nil before Bootstrap.
func (v *Viewer) Camera() *camera.OrbitCamera { return v.camera }

// Controls returns the orbit controls, nil before Bootstrap.
func (v *Viewer) Controls() *camera.OrbitControls { return v.controls }

// Animator returns the wheel animator, nil before Bootstrap.
func (v *Viewer) Animator() *animation.Animator { return v.animator }

// Parts returns the animated parts registered so far.
func (v *Viewer) Parts() []*animation.Part {
	if v.animator == nil {
		return nil
	}
	return v.animator.Parts()
}
