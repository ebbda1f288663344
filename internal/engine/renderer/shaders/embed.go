// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// MeshVertexShader is the vertex shader for lit meshes.
//
//go:embed mesh.vert
var MeshVertexShader string

// MeshFragmentShader is the fragment shader for lit meshes.
//
//go:embed mesh.frag
var MeshFragmentShader string

// LineVertexShader is the vertex shader for colored lines.
//
//go:embed line.vert
var LineVertexShader string

// LineFragmentShader is the fragment shader for colored lines.
//
//go:embed line.frag
var LineFragmentShader string
