package animation

import (
	stdmath "math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/robotview/internal/engine/scene"
	"github.com/Faultbox/robotview/pkg/math"
)

func robot() *scene.Group {
	root := scene.NewGroup("robot")
	root.Add(
		scene.NewMesh("Wheel_FL"),
		scene.NewMesh("Wheel_FR"),
		scene.NewMesh("Body"),
		scene.NewMesh("Wheel_RL"),
	)
	return root
}

func names(parts []*Part) []string {
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = p.Name()
	}
	return out
}

func TestDiscoverOrderAndFilter(t *testing.T) {
	parts := Discover(robot(), DefaultPartPrefix)
	assert.Equal(t, []string{"Wheel_FL", "Wheel_FR", "Wheel_RL"}, names(parts))
	for _, p := range parts {
		assert.Equal(t, RotationState{}, p.State)
	}
}

func TestDiscoverIgnoresNonMeshNodes(t *testing.T) {
	root := scene.NewGroup("robot")
	hub := scene.NewGroup("Wheel_Hub")
	hub.Add(scene.NewMesh("Wheel_Inner"))
	root.Add(hub, scene.NewMesh("wheel_lower"))

	parts := Discover(root, DefaultPartPrefix)
	assert.Equal(t, []string{"Wheel_Inner"}, names(parts))
}

func TestDiscoverDeterministic(t *testing.T) {
	root := robot()
	first := names(Discover(root, DefaultPartPrefix))
	second := names(Discover(root, DefaultPartPrefix))
	assert.Equal(t, first, second)
}

func TestDiscoverEmpty(t *testing.T) {
	assert.Empty(t, Discover(scene.NewGroup("empty"), DefaultPartPrefix))
	assert.Empty(t, Discover(nil, DefaultPartPrefix))
}

func TestRotationStateWraps(t *testing.T) {
	var s RotationState
	for n := 1; n <= 1000; n++ {
		s.Advance(DefaultSpinStep, DefaultSteerStep)
		require.GreaterOrEqual(t, s.Spin, 0.0)
		require.Less(t, s.Spin, FullTurn)
		require.GreaterOrEqual(t, s.Steer, 0.0)
		require.Less(t, s.Steer, FullTurn)
	}
	assert.InDelta(t, stdmath.Mod(500, FullTurn), s.Spin, 1e-9)
	assert.InDelta(t, stdmath.Mod(10, FullTurn), s.Steer, 1e-9)
}

func TestRotationStateNegativeAndNonFinite(t *testing.T) {
	var s RotationState
	s.Advance(-0.5, -FullTurn)
	assert.InDelta(t, FullTurn-0.5, s.Spin, 1e-12)
	assert.InDelta(t, 0, s.Steer, 1e-12)

	s.Advance(stdmath.NaN(), stdmath.Inf(1))
	assert.InDelta(t, FullTurn-0.5, s.Spin, 1e-12)
	assert.False(t, stdmath.IsNaN(s.Steer))
}

func TestWrapAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{FullTurn, 0},
		{FullTurn + 1, 1},
		{-1, FullTurn - 1},
		{-1e-18, 0},
	}
	for _, tt := range tests {
		got := wrapAngle(tt.in)
		assert.InDelta(t, tt.want, got, 1e-12, "wrapAngle(%v)", tt.in)
		assert.Less(t, got, FullTurn)
	}
}

func TestOrientationYawThenRoll(t *testing.T) {
	s := RotationState{Steer: stdmath.Pi / 2, Spin: stdmath.Pi / 2}
	forward := math.Vec3{Z: -1}

	got := s.Orientation().Rotate(forward)

	// Ry * Rx: roll first in the part's frame, then yaw in the parent frame.
	// Rx(π/2) takes -Z to +Y; Ry(π/2) leaves +Y alone.
	assert.True(t, got.ApproxEqual(math.UnitY, 1e-5), "yaw-then-roll gave %v", got)

	// The opposite composition points the axis somewhere else.
	yaw := math.QuatFromAxisAngle(math.UnitY, s.Steer)
	roll := math.QuatFromAxisAngle(math.UnitX, s.Spin)
	swapped := roll.Mul(yaw).Rotate(forward)
	assert.False(t, got.ApproxEqual(swapped, 1e-3), "orders should differ, both gave %v", got)

	// Same result as the matrix product Ry * Rx.
	m := yaw.ToMat4().Mul(roll.ToMat4())
	assert.True(t, got.ApproxEqual(m.TransformDirection(forward), 1e-5))
}

func TestPartApplyKeepsRestPose(t *testing.T) {
	n := scene.NewMesh("Wheel_FL")
	rest := math.QuatFromAxisAngle(math.UnitZ, stdmath.Pi/2)
	n.Transform().Rotation = rest

	p := NewPart(n)
	p.State = RotationState{Spin: 1}
	p.Apply()

	want := rest.Mul(math.QuatFromAxisAngle(math.UnitX, 1))
	assert.Equal(t, want, n.Transform().Rotation)
	assert.Equal(t, rest, p.Rest())
}

func TestAnimatorEndToEnd(t *testing.T) {
	a, err := NewAnimator(DefaultOptions())
	require.NoError(t, err)

	n, err := a.Populate(robot())
	require.NoError(t, err)
	require.Equal(t, 3, n)
	assert.Equal(t, []string{"Wheel_FL", "Wheel_FR", "Wheel_RL"}, names(a.Parts()))

	for i := 0; i < 100; i++ {
		a.Step(time.Second / 60)
	}

	for _, p := range a.Parts() {
		assert.InDelta(t, 50-7*FullTurn, p.State.Spin, 1e-9, p.Name())
		assert.InDelta(t, 1.0, p.State.Steer, 1e-9, p.Name())
		assert.Equal(t, p.Rest().Mul(p.State.Orientation()), p.Node.Transform().Rotation)
	}
	assert.Equal(t, uint64(100), a.Ticks())
}

func TestAnimatorPopulateOnce(t *testing.T) {
	a, err := NewAnimator(DefaultOptions())
	require.NoError(t, err)

	_, err = a.Populate(robot())
	require.NoError(t, err)
	_, err = a.Populate(robot())
	assert.ErrorIs(t, err, ErrAlreadyPopulated)
	assert.Len(t, a.Parts(), 3)
}

func TestAnimatorNoParts(t *testing.T) {
	a, err := NewAnimator(DefaultOptions())
	require.NoError(t, err)

	assert.NotPanics(t, func() { a.Step(time.Millisecond) })
	assert.Empty(t, a.Parts())
	assert.False(t, a.Populated())

	n, err := a.Populate(nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.True(t, a.Populated())
	assert.Empty(t, a.Parts())
}

func TestAnimatorScaledStep(t *testing.T) {
	opts := DefaultOptions()
	opts.Mode = StepScaled
	a, err := NewAnimator(opts)
	require.NoError(t, err)
	_, err = a.Populate(robot())
	require.NoError(t, err)

	// Two ticks of 1/120 s at a 60 Hz reference equal one fixed tick.
	a.Step(time.Second / 120)
	a.Step(time.Second / 120)

	p := a.Parts()[0]
	assert.InDelta(t, DefaultSpinStep, p.State.Spin, 1e-6)
	assert.InDelta(t, DefaultSteerStep, p.State.Steer, 1e-6)
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Options)
		wantErr bool
	}{
		{"defaults", func(*Options) {}, false},
		{"scaled", func(o *Options) { o.Mode = StepScaled }, false},
		{"unknown mode", func(o *Options) { o.Mode = "warp" }, true},
		{"scaled without rate", func(o *Options) { o.Mode = StepScaled; o.ReferenceRate = 0 }, true},
		{"nan step", func(o *Options) { o.SpinStep = stdmath.NaN() }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := DefaultOptions()
			tt.modify(&o)
			_, err := NewAnimator(o)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
