package debug

import (
	"github.com/Faultbox/robotview/internal/engine/lighting"
	"github.com/Faultbox/robotview/pkg/math"
)

// BoxVertexCount is the number of vertices for a box wireframe (12 edges × 2).
const BoxVertexCount = 24

// DefaultBoxColor is used for part bounds overlays.
const DefaultBoxColor = 0xff8800

// BoxLines creates line vertices for the wireframe of the box spanned by the
// local-space corners lo and hi, transformed by world.
func BoxLines(lo, hi math.Vec3, world math.Mat4, color uint32) []LineVertex {
	corners := [8]math.Vec3{
		{X: lo.X, Y: lo.Y, Z: lo.Z},
		{X: hi.X, Y: lo.Y, Z: lo.Z},
		{X: hi.X, Y: lo.Y, Z: hi.Z},
		{X: lo.X, Y: lo.Y, Z: hi.Z},
		{X: lo.X, Y: hi.Y, Z: lo.Z},
		{X: hi.X, Y: hi.Y, Z: lo.Z},
		{X: hi.X, Y: hi.Y, Z: hi.Z},
		{X: lo.X, Y: hi.Y, Z: hi.Z},
	}
	for i := range corners {
		corners[i] = world.TransformPoint(corners[i])
	}

	edges := [12][2]int{
		// Bottom face
		{0, 1}, {1, 2}, {2, 3}, {3, 0},
		// Top face
		{4, 5}, {5, 6}, {6, 7}, {7, 4},
		// Vertical edges
		{0, 4}, {1, 5}, {2, 6}, {3, 7},
	}

	c := lighting.ColorHex(color)
	vertices := make([]LineVertex, 0, BoxVertexCount)
	for _, e := range edges {
		a, b := corners[e[0]], corners[e[1]]
		vertices = append(vertices,
			LineVertex{a.X, a.Y, a.Z, c[0], c[1], c[2]},
			LineVertex{b.X, b.Y, b.Z, c[0], c[1], c[2]},
		)
	}
	return vertices
}
