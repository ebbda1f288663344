package scene

import (
	"errors"

	"github.com/Faultbox/robotview/internal/engine/debug"
	"github.com/Faultbox/robotview/internal/engine/lighting"
)

// ErrAssetAttached is returned when a second asset is attached to a scene.
var ErrAssetAttached = errors.New("scene: asset already attached")

// Options configures a new Scene.
type Options struct {
	Background    uint32
	GridSize      float32
	GridDivisions int
}

// DefaultOptions returns the viewer's standard scene settings.
func DefaultOptions() Options {
	return Options{
		Background:    0xeeeeee,
		GridSize:      debug.DefaultGridSize,
		GridDivisions: debug.DefaultGridDivisions,
	}
}

// Scene is the root of everything the renderer draws. It holds exactly one
// robot group, which receives at most one loaded asset subtree.
type Scene struct {
	Background lighting.Color
	Lights     *lighting.Rig
	Grid       []debug.LineVertex

	root  *Group
	robot *Group
	asset Node
}

// New creates a scene with default lights, a ground grid and an empty
// robot group.
func New(opts Options) *Scene {
	root := NewGroup("root")
	robot := NewGroup("robot")
	root.Add(robot)

	return &Scene{
		Background: lighting.ColorHex(opts.Background),
		Lights:     lighting.DefaultRig(),
		Grid:       debug.GridLines(opts.GridSize, opts.GridDivisions, debug.DefaultCenterColor, debug.DefaultLineColor),
		root:       root,
		robot:      robot,
	}
}

// Root returns the top-level group.
func (s *Scene) Root() *Group { return s.root }

// Robot returns the group that parents the loaded asset.
func (s *Scene) Robot() *Group { return s.robot }

// AttachAsset adds the loaded asset subtree under the robot group.
// It may be called only once.
func (s *Scene) AttachAsset(n Node) error {
	if s.asset != nil {
		return ErrAssetAttached
	}
	if n == nil {
		return errors.New("scene: nil asset")
	}
	s.asset = n
	s.robot.Add(n)
	return nil
}

// Asset returns the attached asset, or nil before the load completes.
func (s *Scene) Asset() Node { return s.asset }
