package gltf

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Parse errors.
var (
	ErrInvalidJSON          = errors.New("invalid glTF JSON")
	ErrUnsupportedVersion   = errors.New("unsupported glTF version")
	ErrUnsupportedExtension = errors.New("unsupported required glTF extension")
	ErrInvalidIndex         = errors.New("glTF index out of range")
	ErrInvalidAccessor      = errors.New("invalid glTF accessor")
)

// Parse parses a glTF asset from raw bytes, detecting the GLB container
// by its magic number.
func Parse(data []byte) (*Document, error) {
	if IsGLB(data) {
		return ParseGLB(data)
	}
	return ParseJSON(data)
}

// ParseJSON parses a .gltf JSON document.
func ParseJSON(data []byte) (*Document, error) {
	var doc Document
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ParseFile parses a .gltf or .glb file from disk. External buffers and
// images are not read.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading glTF file: %w", err)
	}
	return Parse(data)
}

// Validate checks the version, required extensions and every index the
// viewer follows.
func (d *Document) Validate() error {
	major, _, _ := strings.Cut(d.Asset.Version, ".")
	if major != "2" {
		return fmt.Errorf("%w: %q", ErrUnsupportedVersion, d.Asset.Version)
	}
	for _, ext := range d.ExtensionsRequired {
		if !supportedExtensions[ext] {
			return fmt.Errorf("%w: %s", ErrUnsupportedExtension, ext)
		}
	}

	if d.Scene != nil && !inRange(*d.Scene, len(d.Scenes)) {
		return fmt.Errorf("%w: scene %d", ErrInvalidIndex, *d.Scene)
	}
	for i, s := range d.Scenes {
		for _, n := range s.Nodes {
			if !inRange(n, len(d.Nodes)) {
				return fmt.Errorf("%w: scene %d node %d", ErrInvalidIndex, i, n)
			}
		}
	}
	for i, n := range d.Nodes {
		for _, c := range n.Children {
			if !inRange(c, len(d.Nodes)) || c == i {
				return fmt.Errorf("%w: node %d child %d", ErrInvalidIndex, i, c)
			}
		}
		if n.Mesh != nil && !inRange(*n.Mesh, len(d.Meshes)) {
			return fmt.Errorf("%w: node %d mesh %d", ErrInvalidIndex, i, *n.Mesh)
		}
	}
	for i, m := range d.Meshes {
		for j, p := range m.Primitives {
			if err := d.checkPrimitive(&p); err != nil {
				return fmt.Errorf("mesh %d primitive %d: %w", i, j, err)
			}
		}
	}
	for i := range d.Accessors {
		if err := d.checkAccessor(&d.Accessors[i]); err != nil {
			return fmt.Errorf("accessor %d: %w", i, err)
		}
	}
	for i, v := range d.BufferViews {
		if !inRange(v.Buffer, len(d.Buffers)) {
			return fmt.Errorf("%w: bufferView %d buffer %d", ErrInvalidIndex, i, v.Buffer)
		}
		if v.ByteOffset < 0 || v.ByteLength < 0 || (v.ByteStride != 0 && (v.ByteStride < 4 || v.ByteStride > 252)) {
			return fmt.Errorf("%w: bufferView %d range", ErrInvalidIndex, i)
		}
	}
	for i, t := range d.Textures {
		if img, ok := t.Image(); ok && !inRange(img, len(d.Images)) {
			return fmt.Errorf("%w: texture %d image %d", ErrInvalidIndex, i, img)
		}
		if t.Sampler != nil && !inRange(*t.Sampler, len(d.Samplers)) {
			return fmt.Errorf("%w: texture %d sampler %d", ErrInvalidIndex, i, *t.Sampler)
		}
	}
	for i, m := range d.Materials {
		if pbr := m.PBRMetallicRoughness; pbr != nil && pbr.BaseColorTexture != nil {
			if !inRange(pbr.BaseColorTexture.Index, len(d.Textures)) {
				return fmt.Errorf("%w: material %d texture %d", ErrInvalidIndex, i, pbr.BaseColorTexture.Index)
			}
		}
	}
	for i, img := range d.Images {
		if img.BufferView != nil && !inRange(*img.BufferView, len(d.BufferViews)) {
			return fmt.Errorf("%w: image %d bufferView %d", ErrInvalidIndex, i, *img.BufferView)
		}
	}
	return nil
}

func (d *Document) checkPrimitive(p *Primitive) error {
	pos, ok := p.Attributes[AttrPosition]
	if !ok {
		return fmt.Errorf("%w: missing %s", ErrInvalidAccessor, AttrPosition)
	}
	for name, a := range p.Attributes {
		if !inRange(a, len(d.Accessors)) {
			return fmt.Errorf("%w: attribute %s accessor %d", ErrInvalidIndex, name, a)
		}
	}
	if d.Accessors[pos].Type != Vec3 {
		return fmt.Errorf("%w: %s must be VEC3", ErrInvalidAccessor, AttrPosition)
	}
	if p.Indices != nil && !inRange(*p.Indices, len(d.Accessors)) {
		return fmt.Errorf("%w: indices accessor %d", ErrInvalidIndex, *p.Indices)
	}
	if p.Material != nil && !inRange(*p.Material, len(d.Materials)) {
		return fmt.Errorf("%w: material %d", ErrInvalidIndex, *p.Material)
	}
	return nil
}

func (d *Document) checkAccessor(a *Accessor) error {
	if a.BufferView != nil && !inRange(*a.BufferView, len(d.BufferViews)) {
		return fmt.Errorf("%w: bufferView %d", ErrInvalidIndex, *a.BufferView)
	}
	if a.ByteOffset < 0 || a.Count < 1 {
		return fmt.Errorf("%w: offset %d count %d", ErrInvalidAccessor, a.ByteOffset, a.Count)
	}
	if componentSize(a.ComponentType) == 0 {
		return fmt.Errorf("%w: component type %d", ErrInvalidAccessor, a.ComponentType)
	}
	if componentCount(a.Type) == 0 {
		return fmt.Errorf("%w: type %q", ErrInvalidAccessor, a.Type)
	}
	if a.Sparse != nil {
		return fmt.Errorf("%w: sparse accessors are not supported", ErrInvalidAccessor)
	}
	return nil
}

// SceneRoots returns the root node indices of the default scene. Without
// scenes, every node that is nobody's child is a root, in document order.
func (d *Document) SceneRoots() []int {
	if len(d.Scenes) > 0 {
		s := 0
		if d.Scene != nil {
			s = *d.Scene
		}
		return d.Scenes[s].Nodes
	}

	isChild := make([]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		for _, c := range n.Children {
			isChild[c] = true
		}
	}
	var roots []int
	for i := range d.Nodes {
		if !isChild[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

func inRange(i, n int) bool {
	return i >= 0 && i < n
}
