// Package debug provides helper geometry drawn alongside the model: the
// ground grid, bounding boxes of animated parts, and screenshots.
package debug

import (
	"github.com/Faultbox/robotview/internal/engine/lighting"
)

// LineVertex is a vertex of a colored line segment.
type LineVertex struct {
	X, Y, Z float32 // Position
	R, G, B float32 // Color
}

// Default grid helper values.
const (
	DefaultGridSize      = 11
	DefaultGridDivisions = 10
	DefaultCenterColor   = 0x444444
	DefaultLineColor     = 0x888888
)

// GridLines generates line vertices for a square grid on the XZ plane,
// centered on the origin. Lines through the center use centerColor.
// The result holds (divisions+1)*4 vertices, two per segment.
func GridLines(size float32, divisions int, centerColor, lineColor uint32) []LineVertex {
	if divisions <= 0 || size <= 0 {
		return nil
	}

	center := divisions / 2
	step := size / float32(divisions)
	half := size / 2
	c1 := lighting.ColorHex(centerColor)
	c2 := lighting.ColorHex(lineColor)

	vertices := make([]LineVertex, 0, (divisions+1)*4)
	for i := 0; i <= divisions; i++ {
		k := -half + float32(i)*step
		c := c2
		if i == center {
			c = c1
		}

		// Line parallel to X
		vertices = append(vertices,
			LineVertex{-half, 0, k, c[0], c[1], c[2]},
			LineVertex{half, 0, k, c[0], c[1], c[2]},
		)
		// Line parallel to Z
		vertices = append(vertices,
			LineVertex{k, 0, -half, c[0], c[1], c[2]},
			LineVertex{k, 0, half, c[0], c[1], c[2]},
		)
	}

	return vertices
}
