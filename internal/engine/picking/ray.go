// Package picking casts rays from the screen into the scene to find the mesh
// under the pointer.
package picking

import (
	gomath "math"

	"github.com/Faultbox/robotview/internal/engine/scene"
	"github.com/Faultbox/robotview/pkg/math"
)

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3 // Normalized direction
}

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min math.Vec3
	Max math.Vec3
}

// ScreenToRay converts window pixel coordinates to a world-space ray.
// viewportW/H are the window dimensions the coordinates refer to.
func ScreenToRay(screenX, screenY, viewportW, viewportH float32, view, proj math.Mat4) Ray {
	invViewProj := proj.Mul(view).Inverse()

	// Normalized device coords, Y up
	ndcX := 2*screenX/viewportW - 1
	ndcY := 1 - 2*screenY/viewportH

	near := invViewProj.TransformPoint(math.Vec3{X: ndcX, Y: ndcY, Z: -1})
	far := invViewProj.TransformPoint(math.Vec3{X: ndcX, Y: ndcY, Z: 1})

	return Ray{Origin: near, Direction: far.Sub(near).Normalize()}
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// IntersectAABB tests ray intersection with an axis-aligned bounding box.
// Returns the distance to intersection (t) and whether intersection occurred.
// If the ray starts inside the box, returns the exit distance.
func (r Ray) IntersectAABB(box AABB) (t float32, hit bool) {
	tmin := float32(-gomath.MaxFloat32)
	tmax := float32(gomath.MaxFloat32)

	origin, dir := r.Origin.Array(), r.Direction.Array()
	lo, hi := box.Min.Array(), box.Max.Array()

	for axis := range 3 {
		if dir[axis] == 0 {
			if origin[axis] < lo[axis] || origin[axis] > hi[axis] {
				return 0, false
			}
			continue
		}
		t1 := (lo[axis] - origin[axis]) / dir[axis]
		t2 := (hi[axis] - origin[axis]) / dir[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// NewAABB creates an AABB from two corners, in any order.
func NewAABB(a, b math.Vec3) AABB {
	return AABB{
		Min: math.Vec3{X: min(a.X, b.X), Y: min(a.Y, b.Y), Z: min(a.Z, b.Z)},
		Max: math.Vec3{X: max(a.X, b.X), Y: max(a.Y, b.Y), Z: max(a.Z, b.Z)},
	}
}

// Transform returns the world-space box enclosing the eight transformed
// corners of b.
func (b AABB) Transform(world math.Mat4) AABB {
	var out AABB
	for i := range 8 {
		c := b.Min
		if i&1 != 0 {
			c.X = b.Max.X
		}
		if i&2 != 0 {
			c.Y = b.Max.Y
		}
		if i&4 != 0 {
			c.Z = b.Max.Z
		}
		p := world.TransformPoint(c)
		if i == 0 {
			out = AABB{Min: p, Max: p}
			continue
		}
		out = NewAABB(
			math.Vec3{X: min(out.Min.X, p.X), Y: min(out.Min.Y, p.Y), Z: min(out.Min.Z, p.Z)},
			math.Vec3{X: max(out.Max.X, p.X), Y: max(out.Max.Y, p.Y), Z: max(out.Max.Z, p.Z)},
		)
	}
	return out
}

// Hit is the nearest mesh a ray passes through.
type Hit struct {
	Node     scene.Node
	Distance float32
}

// Pick returns the mesh under root whose world bounds the ray enters first.
// A nil accept admits every mesh.
func Pick(root scene.Node, r Ray, accept func(scene.Node) bool) (Hit, bool) {
	var best Hit
	found := false
	scene.WalkWorld(root, math.Identity(), func(n scene.Node, world math.Mat4) {
		m, ok := n.AsMesh()
		if !ok || (accept != nil && !accept(n)) {
			return
		}
		lo, hi, ok := m.Bounds()
		if !ok {
			return
		}
		t, hit := r.IntersectAABB(NewAABB(lo, hi).Transform(world))
		if hit && (!found || t < best.Distance) {
			best = Hit{Node: n, Distance: t}
			found = true
		}
	})
	return best, found
}
