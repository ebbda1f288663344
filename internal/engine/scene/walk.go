package scene

import "github.com/Faultbox/robotview/pkg/math"

// Walk visits n and its descendants depth-first in pre-order (document
// order). Returning false from fn skips the node's children.
func Walk(n Node, fn func(Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children() {
		Walk(c, fn)
	}
}

// WalkWorld is Walk with each node's world matrix, computed from parent.
func WalkWorld(n Node, parent math.Mat4, fn func(n Node, world math.Mat4)) {
	if n == nil {
		return
	}
	world := parent.Mul(n.Transform().Matrix())
	fn(n, world)
	for _, c := range n.Children() {
		WalkWorld(c, world, fn)
	}
}

// Find returns the first node named name in pre-order, or nil.
func Find(root Node, name string) Node {
	var found Node
	Walk(root, func(n Node) bool {
		if found != nil {
			return false
		}
		if n.Name() == name {
			found = n
			return false
		}
		return true
	})
	return found
}

// Count returns the number of nodes and meshes under root, root included.
func Count(root Node) (nodes, meshes int) {
	Walk(root, func(n Node) bool {
		nodes++
		if _, ok := n.AsMesh(); ok {
			meshes++
		}
		return true
	})
	return
}
