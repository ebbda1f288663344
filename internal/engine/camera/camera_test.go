package camera

import (
	gomath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/robotview/pkg/math"
)

func newDefaultCamera() *OrbitCamera {
	c := NewOrbitCamera(70, 0.001, 100, math.Vec3{Y: 4, Z: 4}, math.Vec3{})
	c.MinDistance, c.MaxDistance = 0.5, 50
	return c
}

func TestNewOrbitCameraPosition(t *testing.T) {
	c := newDefaultCamera()

	assert.InDelta(t, gomath.Sqrt(32), c.Distance, 1e-5)
	assert.InDelta(t, gomath.Pi/4, c.Pitch, 1e-6)
	assert.InDelta(t, 0, c.Yaw, 1e-6)
	assert.True(t, c.Position().ApproxEqual(math.Vec3{Y: 4, Z: 4}, 1e-5), "position %v", c.Position())
}

func TestViewMatrixLooksAtTarget(t *testing.T) {
	c := newDefaultCamera()
	p := c.ViewMatrix().TransformPoint(c.Target)

	// The target sits on the view axis, Distance in front of the camera.
	assert.InDelta(t, 0, p.X, 1e-5)
	assert.InDelta(t, 0, p.Y, 1e-5)
	assert.InDelta(t, -c.Distance, p.Z, 1e-5)
}

func TestSetAspect(t *testing.T) {
	c := newDefaultCamera()
	c.SetAspect(640, 480)
	assert.InDelta(t, 4.0/3.0, c.Aspect, 1e-6)

	c.SetAspect(0, 480)
	assert.InDelta(t, 4.0/3.0, c.Aspect, 1e-6)

	proj := c.ProjectionMatrix()
	assert.InDelta(t, proj[5]/c.Aspect, proj[0], 1e-6)
}

func TestAdvanceWithoutInputIsIdempotent(t *testing.T) {
	c := newDefaultCamera()
	o := NewOrbitControls(c, DefaultControlSettings())
	before := *c

	for i := 0; i < 10; i++ {
		o.Advance()
	}
	assert.Equal(t, before, *c)
	assert.False(t, o.Pending())
}

func TestRotateConvergesToFullMotion(t *testing.T) {
	c := newDefaultCamera()
	o := NewOrbitControls(c, DefaultControlSettings())

	o.Rotate(-100, 0)
	o.Advance()
	// One frame applies only the damped share.
	assert.InDelta(t, 0.5*0.2, c.Yaw, 1e-6)

	for i := 0; i < 200 && o.Pending(); i++ {
		o.Advance()
	}
	require.False(t, o.Pending())
	assert.InDelta(t, 0.5, c.Yaw, 1e-5)

	// At rest the camera no longer moves.
	settled := *c
	o.Advance()
	assert.Equal(t, settled, *c)
}

func TestPitchIsClamped(t *testing.T) {
	c := newDefaultCamera()
	o := NewOrbitControls(c, ControlSettings{RotateSpeed: 1, Damping: 1})

	o.Rotate(0, 10)
	o.Advance()
	assert.InDelta(t, maxPitch, c.Pitch, 1e-6)

	o.Rotate(0, -20)
	o.Advance()
	assert.InDelta(t, -maxPitch, c.Pitch, 1e-6)
}

func TestZoomIsClamped(t *testing.T) {
	c := newDefaultCamera()
	o := NewOrbitControls(c, ControlSettings{ZoomSpeed: 0.5, Damping: 1})

	o.Zoom(1)
	o.Advance()
	assert.InDelta(t, gomath.Sqrt(32)/2, c.Distance, 1e-5)

	o.Zoom(10)
	o.Advance()
	assert.Equal(t, float32(0.5), c.Distance)

	o.Zoom(-1000)
	o.Advance()
	assert.Equal(t, float32(50), c.Distance)
}

func TestPanMovesTargetSideways(t *testing.T) {
	c := newDefaultCamera()
	o := NewOrbitControls(c, ControlSettings{PanSpeed: 0.01, Damping: 1})
	offset := c.Position().Sub(c.Target)

	o.Pan(-10, 0)
	o.Advance()

	// Dragging left moves the target right along +X; the view direction is kept.
	assert.Greater(t, c.Target.X, float32(0))
	assert.InDelta(t, 0, c.Target.Y, 1e-6)
	assert.True(t, c.Position().Sub(c.Target).ApproxEqual(offset, 1e-5))
}

func TestDisabledControlsIgnoreInput(t *testing.T) {
	c := newDefaultCamera()
	o := NewOrbitControls(c, DefaultControlSettings())
	o.Enabled = false

	o.Rotate(10, 10)
	o.Zoom(1)
	o.Pan(5, 5)
	assert.False(t, o.Pending())
}

func TestResetDropsPendingMotion(t *testing.T) {
	c := newDefaultCamera()
	o := NewOrbitControls(c, DefaultControlSettings())
	before := *c

	o.Rotate(10, 10)
	o.Reset()
	o.Advance()
	assert.Equal(t, before, *c)
}

func TestInvalidDampingFallsBackToImmediate(t *testing.T) {
	o := NewOrbitControls(newDefaultCamera(), ControlSettings{Damping: 0})
	assert.Equal(t, float32(1), o.Settings.Damping)
}
