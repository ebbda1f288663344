// Package scene implements the viewer's scene graph: a tree of named nodes
// with local transforms, where mesh nodes carry drawable geometry.
package scene

import (
	"github.com/Faultbox/robotview/pkg/math"
)

// Transform is a node's local translation, rotation and scale.
type Transform struct {
	Translation math.Vec3
	Rotation    math.Quat
	Scale       math.Vec3
}

// IdentityTransform returns a transform that leaves its children unchanged.
func IdentityTransform() Transform {
	return Transform{
		Rotation: math.QuatIdentity(),
		Scale:    math.Vec3{X: 1, Y: 1, Z: 1},
	}
}

// Matrix returns T * R * S.
func (t Transform) Matrix() math.Mat4 {
	return math.Compose(t.Translation, t.Rotation, t.Scale)
}

// Node is an element of the scene graph.
type Node interface {
	// Name returns the node name as authored in the asset.
	Name() string

	// Children returns the ordered child list. Callers must not modify it.
	Children() []Node

	// Transform returns the mutable local transform. It is never nil.
	Transform() *Transform

	// AsMesh returns the node as a drawable mesh, or false if it has no
	// geometry.
	AsMesh() (*Mesh, bool)
}

// Group is a node without geometry.
type Group struct {
	name      string
	transform Transform
	children  []Node
}

// NewGroup creates an empty group with an identity transform.
func NewGroup(name string) *Group {
	return &Group{name: name, transform: IdentityTransform()}
}

// Add appends children in order.
func (g *Group) Add(children ...Node) {
	g.children = append(g.children, children...)
}

func (g *Group) Name() string          { return g.name }
func (g *Group) Children() []Node      { return g.children }
func (g *Group) Transform() *Transform { return &g.transform }
func (g *Group) AsMesh() (*Mesh, bool) { return nil, false }

// Mesh is a node with one or more drawable primitives. A mesh may also have
// children, as glTF nodes can carry both.
type Mesh struct {
	Group
	Primitives []*Primitive
}

// NewMesh creates a mesh node with an identity transform.
func NewMesh(name string, prims ...*Primitive) *Mesh {
	return &Mesh{Group: *NewGroup(name), Primitives: prims}
}

func (m *Mesh) AsMesh() (*Mesh, bool) { return m, true }
