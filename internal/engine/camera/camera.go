// Package camera provides the perspective orbit camera and the pointer-driven
// controls that move it.
package camera

import (
	gomath "math"

	"github.com/Faultbox/robotview/pkg/math"
)

// maxPitch keeps the camera off the poles, where the view's up vector
// degenerates.
const maxPitch = gomath.Pi/2 - 0.01

// OrbitCamera is a perspective camera placed on a sphere around Target.
type OrbitCamera struct {
	Target math.Vec3

	// Spherical coordinates
	Distance float32 // Distance from target
	Pitch    float32 // Elevation above the XZ plane (radians)
	Yaw      float32 // Rotation around Y, zero looks down -Z (radians)

	// Constraints
	MinDistance float32
	MaxDistance float32

	// Projection
	FOV    float32 // Vertical field of view (degrees)
	Aspect float32
	Near   float32
	Far    float32
}

// NewOrbitCamera creates a camera at position looking at target.
func NewOrbitCamera(fov, near, far float32, position, target math.Vec3) *OrbitCamera {
	c := &OrbitCamera{
		FOV:         fov,
		Aspect:      1,
		Near:        near,
		Far:         far,
		MinDistance: 0,
		MaxDistance: gomath.MaxFloat32,
	}
	c.SetPosition(position, target)
	return c
}

// SetPosition places the camera at position, orbiting target.
func (c *OrbitCamera) SetPosition(position, target math.Vec3) {
	c.Target = target
	offset := position.Sub(target)
	c.Distance = offset.Length()
	if c.Distance == 0 {
		c.Pitch, c.Yaw = 0, 0
		return
	}
	c.Pitch = float32(gomath.Asin(float64(offset.Y / c.Distance)))
	c.Yaw = float32(gomath.Atan2(float64(offset.X), float64(offset.Z)))
	c.clamp()
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	x := c.Distance * float32(gomath.Cos(float64(c.Pitch))*gomath.Sin(float64(c.Yaw)))
	y := c.Distance * float32(gomath.Sin(float64(c.Pitch)))
	z := c.Distance * float32(gomath.Cos(float64(c.Pitch))*gomath.Cos(float64(c.Yaw)))

	return c.Target.Add(math.Vec3{X: x, Y: y, Z: z})
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Target, math.UnitY)
}

// ProjectionMatrix returns the perspective projection matrix.
func (c *OrbitCamera) ProjectionMatrix() math.Mat4 {
	return math.Perspective(c.FOV*gomath.Pi/180, c.Aspect, c.Near, c.Far)
}

// SetAspect updates the aspect ratio from a viewport size.
func (c *OrbitCamera) SetAspect(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.Aspect = float32(width) / float32(height)
}

// Basis returns the camera's right and up vectors in world space.
func (c *OrbitCamera) Basis() (right, up math.Vec3) {
	forward := c.Target.Sub(c.Position()).Normalize()
	right = forward.Cross(math.UnitY).Normalize()
	up = right.Cross(forward)
	return right, up
}

// clamp keeps distance and pitch in range.
func (c *OrbitCamera) clamp() {
	if c.Distance < c.MinDistance {
		c.Distance = c.MinDistance
	}
	if c.Distance > c.MaxDistance {
		c.Distance = c.MaxDistance
	}
	if c.Pitch > maxPitch {
		c.Pitch = maxPitch
	}
	if c.Pitch < -maxPitch {
		c.Pitch = -maxPitch
	}
}
