package scene

import (
	"image"

	"github.com/Faultbox/robotview/pkg/math"
)

// Primitive is an indexed triangle list.
type Primitive struct {
	Positions []math.Vec3
	Normals   []math.Vec3
	UVs       [][2]float32
	Indices   []uint32
	Material  *Material
}

// Material is the subset of glTF PBR the renderer shades with.
type Material struct {
	Name        string
	BaseColor   [4]float32
	Texture     *Texture
	DoubleSided bool
}

// DefaultMaterial is used by primitives that reference no material.
var DefaultMaterial = &Material{Name: "default", BaseColor: [4]float32{1, 1, 1, 1}}

// Texture is a decoded base color image.
type Texture struct {
	Name   string
	Image  *image.RGBA
	Repeat bool
	Linear bool
}

// TriangleCount returns the number of indexed triangles.
func (p *Primitive) TriangleCount() int {
	return len(p.Indices) / 3
}

// ComputeNormals fills Normals with area-weighted vertex normals when the
// asset did not provide them.
func (p *Primitive) ComputeNormals() {
	if len(p.Normals) == len(p.Positions) {
		return
	}
	p.Normals = make([]math.Vec3, len(p.Positions))
	for i := 0; i+2 < len(p.Indices); i += 3 {
		a, b, c := p.Indices[i], p.Indices[i+1], p.Indices[i+2]
		if int(a) >= len(p.Positions) || int(b) >= len(p.Positions) || int(c) >= len(p.Positions) {
			continue
		}
		n := p.Positions[b].Sub(p.Positions[a]).Cross(p.Positions[c].Sub(p.Positions[a]))
		p.Normals[a] = p.Normals[a].Add(n)
		p.Normals[b] = p.Normals[b].Add(n)
		p.Normals[c] = p.Normals[c].Add(n)
	}
	for i := range p.Normals {
		p.Normals[i] = p.Normals[i].Normalize()
	}
}

// Bounds returns the axis-aligned bounds of the positions.
func (p *Primitive) Bounds() (lo, hi math.Vec3) {
	if len(p.Positions) == 0 {
		return
	}
	lo, hi = p.Positions[0], p.Positions[0]
	for _, v := range p.Positions[1:] {
		lo = math.Vec3{X: min(lo.X, v.X), Y: min(lo.Y, v.Y), Z: min(lo.Z, v.Z)}
		hi = math.Vec3{X: max(hi.X, v.X), Y: max(hi.Y, v.Y), Z: max(hi.Z, v.Z)}
	}
	return
}

// Bounds returns the local-space bounds of all primitives, and false if the
// mesh has no vertices.
func (m *Mesh) Bounds() (lo, hi math.Vec3, ok bool) {
	for _, p := range m.Primitives {
		if len(p.Positions) == 0 {
			continue
		}
		plo, phi := p.Bounds()
		if !ok {
			lo, hi, ok = plo, phi, true
			continue
		}
		lo = math.Vec3{X: min(lo.X, plo.X), Y: min(lo.Y, plo.Y), Z: min(lo.Z, plo.Z)}
		hi = math.Vec3{X: max(hi.X, phi.X), Y: max(hi.Y, phi.Y), Z: max(hi.Z, phi.Z)}
	}
	return
}
