// Package loader builds scene graphs from glTF assets.
package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/robotview/internal/assets"
	"github.com/Faultbox/robotview/internal/engine/scene"
	"github.com/Faultbox/robotview/internal/logger"
	"github.com/Faultbox/robotview/pkg/gltf"
	"github.com/Faultbox/robotview/pkg/math"
)

// DefaultMaxTextureSize bounds the longest side of decoded textures.
const DefaultMaxTextureSize = 2048

// ErrNodeCycle is returned when the node hierarchy is not a tree.
var ErrNodeCycle = errors.New("glTF node hierarchy has a cycle")

// Loader reads glTF and GLB files into scene graphs.
type Loader struct {
	assets *assets.Manager

	// MaxTextureSize is the largest texture edge kept after decoding;
	// bigger images are scaled down. Zero disables scaling.
	MaxTextureSize int

	// Parallelism bounds concurrent buffer and image resolution.
	Parallelism int
}

// New creates a loader that reads files through m.
func New(m *assets.Manager) *Loader {
	return &Loader{
		assets:         m,
		MaxTextureSize: DefaultMaxTextureSize,
		Parallelism:    4,
	}
}

// Load reads the asset at path and returns the root of its default scene.
// The root is a group named after the file; its children are the scene's
// root nodes in document order.
func (l *Loader) Load(ctx context.Context, path string) (scene.Node, error) {
	data, err := l.assets.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	doc, err := gltf.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	buffers, err := l.resolveBuffers(ctx, doc, dir)
	if err != nil {
		return nil, fmt.Errorf("loading buffers of %s: %w", path, err)
	}
	images, err := l.resolveImages(ctx, doc, dir, buffers)
	if err != nil {
		return nil, fmt.Errorf("loading images of %s: %w", path, err)
	}

	b := &builder{
		doc:       doc,
		buffers:   buffers,
		images:    images,
		meshes:    make(map[int][]*scene.Primitive),
		materials: make(map[int]*scene.Material),
		visiting:  make(map[int]bool),
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	root := scene.NewGroup(name)
	for _, i := range doc.SceneRoots() {
		n, err := b.node(i)
		if err != nil {
			return nil, fmt.Errorf("building %s: %w", path, err)
		}
		root.Add(n)
	}

	nodes, meshes := scene.Count(root)
	logger.Info("model loaded",
		zap.String("path", path),
		zap.String("generator", doc.Asset.Generator),
		zap.Int("nodes", nodes-1),
		zap.Int("meshes", meshes))

	return root, nil
}

// resolveBuffers fetches every buffer concurrently: the GLB BIN chunk, a
// data URI, or a file next to the asset.
func (l *Loader) resolveBuffers(ctx context.Context, doc *gltf.Document, dir string) ([][]byte, error) {
	buffers := make([][]byte, len(doc.Buffers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(l.Parallelism, 1))
	for i, buf := range doc.Buffers {
		g.Go(func() error {
			var data []byte
			var err error
			switch {
			case buf.URI == "" && i == 0 && doc.BIN != nil:
				data = doc.BIN
			case buf.URI == "":
				return fmt.Errorf("buffer %d has no data", i)
			case gltf.IsDataURI(buf.URI):
				data, _, err = gltf.DecodeDataURI(buf.URI)
			default:
				data, err = l.readRelative(gctx, dir, buf.URI)
			}
			if err != nil {
				return fmt.Errorf("buffer %d: %w", i, err)
			}
			if len(data) < buf.ByteLength {
				return fmt.Errorf("buffer %d: %w: %d bytes, byteLength %d",
					i, gltf.ErrAccessorBounds, len(data), buf.ByteLength)
			}
			buffers[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return buffers, nil
}

// resolveImages decodes the images used as base color textures. A texture
// that cannot be decoded is dropped with a warning; the mesh keeps its
// base color.
func (l *Loader) resolveImages(ctx context.Context, doc *gltf.Document, dir string, buffers [][]byte) ([]*image.RGBA, error) {
	used := make(map[int]bool)
	for _, m := range doc.Materials {
		if pbr := m.PBRMetallicRoughness; pbr != nil && pbr.BaseColorTexture != nil {
			if img, ok := doc.Textures[pbr.BaseColorTexture.Index].Image(); ok {
				used[img] = true
			}
		}
	}

	images := make([]*image.RGBA, len(doc.Images))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(l.Parallelism, 1))
	for i := range used {
		src := doc.Images[i]
		g.Go(func() error {
			data, err := l.imageBytes(gctx, doc, src, dir, buffers)
			if err == nil {
				images[i], err = l.decodeImage(data)
			}
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				logger.Warn("skipping texture image",
					zap.Int("image", i),
					zap.String("uri", truncateURI(src.URI)),
					zap.Error(err))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

func (l *Loader) imageBytes(ctx context.Context, doc *gltf.Document, src gltf.Image, dir string, buffers [][]byte) ([]byte, error) {
	switch {
	case src.BufferView != nil:
		return doc.BufferViewData(*src.BufferView, buffers)
	case gltf.IsDataURI(src.URI):
		data, _, err := gltf.DecodeDataURI(src.URI)
		return data, err
	case src.URI != "":
		return l.readRelative(ctx, dir, src.URI)
	}
	return nil, errors.New("image has neither uri nor bufferView")
}

func (l *Loader) readRelative(ctx context.Context, dir, uri string) ([]byte, error) {
	rel, err := gltf.ResolvePath(uri)
	if err != nil {
		return nil, err
	}
	return l.assets.Load(ctx, filepath.Join(dir, filepath.FromSlash(rel)))
}

// decodeImage decodes PNG, JPEG, BMP or WebP data into RGBA, scaling it
// down to MaxTextureSize.
func (l *Loader) decodeImage(data []byte) (*image.RGBA, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if limit := l.MaxTextureSize; limit > 0 && (w > limit || h > limit) {
		if w >= h {
			w, h = limit, max(h*limit/w, 1)
		} else {
			w, h = max(w*limit/h, 1), limit
		}
		logger.Debug("scaling texture",
			zap.String("format", format),
			zap.Int("from_width", bounds.Dx()),
			zap.Int("from_height", bounds.Dy()),
			zap.Int("width", w),
			zap.Int("height", h))
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == bounds.Dx() && h == bounds.Dy() {
		xdraw.Draw(dst, dst.Bounds(), src, bounds.Min, xdraw.Src)
	} else {
		xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, xdraw.Src, nil)
	}
	return dst, nil
}

func truncateURI(uri string) string {
	if len(uri) > 64 {
		return uri[:64] + "..."
	}
	return uri
}

// builder converts glTF nodes into scene nodes, sharing converted meshes
// and materials between nodes that reference them.
type builder struct {
	doc       *gltf.Document
	buffers   [][]byte
	images    []*image.RGBA
	meshes    map[int][]*scene.Primitive
	materials map[int]*scene.Material
	visiting  map[int]bool
}

func (b *builder) node(i int) (scene.Node, error) {
	if b.visiting[i] {
		return nil, fmt.Errorf("%w: node %d", ErrNodeCycle, i)
	}
	b.visiting[i] = true
	defer delete(b.visiting, i)

	src := &b.doc.Nodes[i]
	name := src.Name
	if name == "" {
		name = fmt.Sprintf("node_%d", i)
	}

	var n scene.Node
	var group *scene.Group
	if src.Mesh != nil {
		prims, err := b.mesh(*src.Mesh)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", name, err)
		}
		m := scene.NewMesh(name, prims...)
		n, group = m, &m.Group
	} else {
		group = scene.NewGroup(name)
		n = group
	}

	t, r, s := src.LocalTransform()
	*n.Transform() = scene.Transform{
		Translation: math.V3(t),
		Rotation:    math.Q4(r).Normalize(),
		Scale:       math.V3(s),
	}

	for _, c := range src.Children {
		child, err := b.node(c)
		if err != nil {
			return nil, err
		}
		group.Add(child)
	}
	return n, nil
}

func (b *builder) mesh(i int) ([]*scene.Primitive, error) {
	if prims, ok := b.meshes[i]; ok {
		return prims, nil
	}

	src := &b.doc.Meshes[i]
	prims := make([]*scene.Primitive, 0, len(src.Primitives))
	for j := range src.Primitives {
		p := &src.Primitives[j]
		if p.DrawMode() != gltf.ModeTriangles {
			logger.Debug("skipping non-triangle primitive",
				zap.String("mesh", src.Name),
				zap.Int("primitive", j),
				zap.Int("mode", p.DrawMode()))
			continue
		}
		prim, err := b.primitive(p)
		if err != nil {
			return nil, fmt.Errorf("mesh %d primitive %d: %w", i, j, err)
		}
		prims = append(prims, prim)
	}

	b.meshes[i] = prims
	return prims, nil
}

func (b *builder) primitive(p *gltf.Primitive) (*scene.Primitive, error) {
	pos, err := b.doc.ReadVec3(p.Attributes[gltf.AttrPosition], b.buffers)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}
	out := &scene.Primitive{
		Positions: make([]math.Vec3, len(pos)),
		Material:  scene.DefaultMaterial,
	}
	for k, v := range pos {
		out.Positions[k] = math.V3(v)
	}

	if a, ok := p.Attributes[gltf.AttrNormal]; ok {
		normals, err := b.doc.ReadVec3(a, b.buffers)
		if err != nil {
			return nil, fmt.Errorf("normals: %w", err)
		}
		if len(normals) == len(pos) {
			out.Normals = make([]math.Vec3, len(normals))
			for k, v := range normals {
				out.Normals[k] = math.V3(v)
			}
		}
	}

	if a, ok := p.Attributes[gltf.AttrTexCoord]; ok {
		uvs, err := b.doc.ReadVec2(a, b.buffers)
		if err != nil {
			return nil, fmt.Errorf("texcoords: %w", err)
		}
		if len(uvs) == len(pos) {
			out.UVs = uvs
		}
	}

	if p.Indices != nil {
		idx, err := b.doc.ReadIndices(*p.Indices, b.buffers)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
		for _, v := range idx {
			if int(v) >= len(pos) {
				return nil, fmt.Errorf("%w: index %d, %d vertices", gltf.ErrAccessorBounds, v, len(pos))
			}
		}
		out.Indices = idx
	} else {
		out.Indices = make([]uint32, len(pos))
		for k := range out.Indices {
			out.Indices[k] = uint32(k)
		}
	}

	out.ComputeNormals()

	if p.Material != nil {
		out.Material = b.material(*p.Material)
	}
	return out, nil
}

func (b *builder) material(i int) *scene.Material {
	if m, ok := b.materials[i]; ok {
		return m
	}

	src := &b.doc.Materials[i]
	m := &scene.Material{
		Name:        src.Name,
		BaseColor:   src.BaseColor(),
		DoubleSided: src.DoubleSided,
	}
	if pbr := src.PBRMetallicRoughness; pbr != nil && pbr.BaseColorTexture != nil {
		m.Texture = b.texture(pbr.BaseColorTexture.Index)
	}

	b.materials[i] = m
	return m
}

func (b *builder) texture(i int) *scene.Texture {
	src := &b.doc.Textures[i]
	img, ok := src.Image()
	if !ok || b.images[img] == nil {
		return nil
	}

	t := &scene.Texture{
		Name:   b.doc.Images[img].Name,
		Image:  b.images[img],
		Repeat: true,
		Linear: true,
	}
	if src.Sampler != nil {
		s := b.doc.Samplers[*src.Sampler]
		t.Repeat = s.WrapS == 0 || s.WrapS == gltf.Repeat
		t.Linear = s.MagFilter != gltf.Nearest
	}
	return t
}
