// Package animation drives the procedural wheel motion of the robot model.
//
// Every animated part accumulates two angles per update: spin (roll about the
// part's local X axis) and steer (yaw about the vertical Y axis). The part's
// orientation is its rest rotation followed by the yaw, then the roll:
//
//	orientation = rest * Ry(steer) * Rx(spin)
//
// so a wheel first turns toward its heading and then rolls about its own axle.
package animation

import (
	stdmath "math"
	"strings"

	"github.com/Faultbox/robotview/internal/engine/scene"
	"github.com/Faultbox/robotview/pkg/math"
)

// FullTurn is one revolution in radians.
const FullTurn = 2 * stdmath.Pi

// RotationState holds the accumulated angles of one part, both in [0, 2π).
type RotationState struct {
	Spin  float64
	Steer float64
}

// Advance adds the increments and wraps both angles into [0, 2π).
// Non-finite increments are ignored so the state stays finite.
func (s *RotationState) Advance(spin, steer float64) {
	if finite(spin) {
		s.Spin = wrapAngle(s.Spin + spin)
	}
	if finite(steer) {
		s.Steer = wrapAngle(s.Steer + steer)
	}
}

// Orientation returns Ry(steer) * Rx(spin).
func (s RotationState) Orientation() math.Quat {
	yaw := math.QuatFromAxisAngle(math.UnitY, s.Steer)
	roll := math.QuatFromAxisAngle(math.UnitX, s.Spin)
	return yaw.Mul(roll)
}

// Part is a mesh node animated as a wheel.
type Part struct {
	Node  scene.Node
	State RotationState

	rest math.Quat
}

// NewPart wraps n, capturing its current rotation as the rest pose.
func NewPart(n scene.Node) *Part {
	return &Part{Node: n, rest: n.Transform().Rotation}
}

// Name returns the node name.
func (p *Part) Name() string { return p.Node.Name() }

// Rest returns the rotation the node had when it was discovered.
func (p *Part) Rest() math.Quat { return p.rest }

// Apply writes rest * Ry(steer) * Rx(spin) to the node's rotation.
func (p *Part) Apply() {
	p.Node.Transform().Rotation = p.rest.Mul(p.State.Orientation())
}

// Discover returns every mesh node under root whose name starts with prefix,
// in depth-first pre-order. Non-mesh nodes never match, even when their name
// does. The result is deterministic for a given tree.
func Discover(root scene.Node, prefix string) []*Part {
	var parts []*Part
	scene.Walk(root, func(n scene.Node) bool {
		if _, ok := n.AsMesh(); ok && strings.HasPrefix(n.Name(), prefix) {
			parts = append(parts, NewPart(n))
		}
		return true
	})
	return parts
}

func wrapAngle(a float64) float64 {
	a = stdmath.Mod(a, FullTurn)
	if a < 0 {
		a += FullTurn
	}
	// Mod can return FullTurn after adding to a tiny negative value.
	if a >= FullTurn {
		a = 0
	}
	return a
}

func finite(v float64) bool {
	return !stdmath.IsNaN(v) && !stdmath.IsInf(v, 0)
}
