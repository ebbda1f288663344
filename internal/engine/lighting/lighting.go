// Package lighting describes the light rig used to shade the robot model:
// one ambient term, a handful of point lights and a hemisphere light.
package lighting

import (
	"github.com/Faultbox/robotview/pkg/math"
)

// Color is a linear RGB triple in the 0-1 range.
type Color [3]float32

// ColorHex converts a 0xRRGGBB value to a Color.
func ColorHex(hex uint32) Color {
	return Color{
		float32((hex>>16)&0xff) / 255,
		float32((hex>>8)&0xff) / 255,
		float32(hex&0xff) / 255,
	}
}

// Scaled returns c multiplied by intensity.
func (c Color) Scaled(intensity float32) Color {
	return Color{c[0] * intensity, c[1] * intensity, c[2] * intensity}
}

// Ambient lights every surface equally.
type Ambient struct {
	Color     Color
	Intensity float32
}

// Hemisphere blends a sky color and a ground color by how much a surface
// normal faces Position (relative to the origin).
type Hemisphere struct {
	Position  math.Vec3
	Sky       Color
	Ground    Color
	Intensity float32
}

// Up returns the normalized sky direction.
func (h Hemisphere) Up() math.Vec3 {
	if h.Position.Length() == 0 {
		return math.UnitY
	}
	return h.Position.Normalize()
}

// Rig is the complete set of lights in a scene.
type Rig struct {
	Ambient    Ambient
	Hemisphere Hemisphere
	Points     []PointLight
}

// Default light values for the robot viewer.
const (
	DefaultAmbientColor   = 0x333333
	DefaultPointColor     = 0xffffff
	DefaultPointIntensity = 0.8
	DefaultSkyColor       = 0x443333
	DefaultGroundColor    = 0x222233
	DefaultSkyIntensity   = 2
	DefaultSkyHeight      = 3
)

// DefaultRig returns the viewer's standard lighting: a dim ambient term, a
// white point light above and to the side, and a warm sky over a cool floor.
func DefaultRig() *Rig {
	r := &Rig{
		Ambient: Ambient{
			Color:     ColorHex(DefaultAmbientColor),
			Intensity: 1,
		},
		Hemisphere: Hemisphere{
			Position:  math.Vec3{Y: DefaultSkyHeight},
			Sky:       ColorHex(DefaultSkyColor),
			Ground:    ColorHex(DefaultGroundColor),
			Intensity: DefaultSkyIntensity,
		},
		Points: make([]PointLight, 0, MaxPointLights),
	}
	r.AddPoint(PointLight{
		Position:  [3]float32{3, 10, 3},
		Color:     ColorHex(DefaultPointColor),
		Intensity: DefaultPointIntensity,
	})
	return r
}
