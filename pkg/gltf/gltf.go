// Package gltf provides a parser for glTF 2.0 assets, in both the JSON
// (.gltf) and binary (.glb) containers.
//
// Only the parts needed to draw static meshes are decoded: scenes, nodes,
// meshes, accessors, buffers, materials and textures. Animations, skins,
// cameras and morph targets are ignored.
package gltf

// Document is a parsed glTF asset.
type Document struct {
	Asset              Asset        `json:"asset"`
	ExtensionsUsed     []string     `json:"extensionsUsed,omitempty"`
	ExtensionsRequired []string     `json:"extensionsRequired,omitempty"`
	Scene              *int         `json:"scene,omitempty"`
	Scenes             []Scene      `json:"scenes,omitempty"`
	Nodes              []Node       `json:"nodes,omitempty"`
	Meshes             []Mesh       `json:"meshes,omitempty"`
	Accessors          []Accessor   `json:"accessors,omitempty"`
	BufferViews        []BufferView `json:"bufferViews,omitempty"`
	Buffers            []Buffer     `json:"buffers,omitempty"`
	Materials          []Material   `json:"materials,omitempty"`
	Textures           []Texture    `json:"textures,omitempty"`
	Images             []Image      `json:"images,omitempty"`
	Samplers           []Sampler    `json:"samplers,omitempty"`

	// BIN is the binary chunk of a GLB container, referenced by the first
	// buffer when it has no URI. Nil for .gltf files.
	BIN []byte `json:"-"`
}

// Asset is the asset metadata.
type Asset struct {
	Version    string `json:"version"`
	MinVersion string `json:"minVersion,omitempty"`
	Generator  string `json:"generator,omitempty"`
	Copyright  string `json:"copyright,omitempty"`
}

// Scene lists root nodes.
type Scene struct {
	Name  string `json:"name,omitempty"`
	Nodes []int  `json:"nodes,omitempty"`
}

// Node is an element of the node hierarchy. A node has either Matrix or
// any of Translation, Rotation and Scale.
type Node struct {
	Name        string       `json:"name,omitempty"`
	Children    []int        `json:"children,omitempty"`
	Mesh        *int         `json:"mesh,omitempty"`
	Matrix      *[16]float32 `json:"matrix,omitempty"`
	Translation *[3]float32  `json:"translation,omitempty"`
	Rotation    *[4]float32  `json:"rotation,omitempty"` // x, y, z, w
	Scale       *[3]float32  `json:"scale,omitempty"`
}

// Mesh is a set of primitives drawn together.
type Mesh struct {
	Name       string      `json:"name,omitempty"`
	Primitives []Primitive `json:"primitives"`
}

// Primitive is a single draw call's worth of geometry.
type Primitive struct {
	Attributes map[string]int `json:"attributes"`
	Indices    *int           `json:"indices,omitempty"`
	Material   *int           `json:"material,omitempty"`
	Mode       *int           `json:"mode,omitempty"` // Default is TRIANGLES.
}

// Attribute names.
const (
	AttrPosition = "POSITION"
	AttrNormal   = "NORMAL"
	AttrTexCoord = "TEXCOORD_0"
)

// Primitive modes.
const (
	ModePoints = iota
	ModeLines
	ModeLineLoop
	ModeLineStrip
	ModeTriangles
	ModeTriangleStrip
	ModeTriangleFan
)

// DrawMode returns the primitive mode, defaulting to triangles.
func (p *Primitive) DrawMode() int {
	if p.Mode == nil {
		return ModeTriangles
	}
	return *p.Mode
}

// Accessor describes how to read typed elements from a buffer view.
type Accessor struct {
	Name          string    `json:"name,omitempty"`
	BufferView    *int      `json:"bufferView,omitempty"`
	ByteOffset    int       `json:"byteOffset,omitempty"`
	ComponentType int       `json:"componentType"`
	Normalized    bool      `json:"normalized,omitempty"`
	Count         int       `json:"count"`
	Type          string    `json:"type"`
	Max           []float32 `json:"max,omitempty"`
	Min           []float32 `json:"min,omitempty"`
	Sparse        any       `json:"sparse,omitempty"`
}

// Accessor component types.
const (
	Byte          = 5120
	UnsignedByte  = 5121
	Short         = 5122
	UnsignedShort = 5123
	UnsignedInt   = 5125
	Float         = 5126
)

// Accessor element types.
const (
	Scalar = "SCALAR"
	Vec2   = "VEC2"
	Vec3   = "VEC3"
	Vec4   = "VEC4"
	Mat2   = "MAT2"
	Mat3   = "MAT3"
	Mat4   = "MAT4"
)

// BufferView is a byte range of a buffer.
type BufferView struct {
	Name       string `json:"name,omitempty"`
	Buffer     int    `json:"buffer"`
	ByteOffset int    `json:"byteOffset,omitempty"`
	ByteLength int    `json:"byteLength"`
	ByteStride int    `json:"byteStride,omitempty"` // 0 for tightly packed.
}

// Buffer is a block of binary data. An empty URI in a GLB container refers
// to the BIN chunk.
type Buffer struct {
	Name       string `json:"name,omitempty"`
	URI        string `json:"uri,omitempty"`
	ByteLength int    `json:"byteLength"`
}

// Material is a PBR metallic-roughness material. Only the base color is
// used by the viewer.
type Material struct {
	Name                 string                `json:"name,omitempty"`
	PBRMetallicRoughness *PBRMetallicRoughness `json:"pbrMetallicRoughness,omitempty"`
	DoubleSided          bool                  `json:"doubleSided,omitempty"`
	AlphaMode            string                `json:"alphaMode,omitempty"`
}

// PBRMetallicRoughness holds the base color parameters of a material.
type PBRMetallicRoughness struct {
	BaseColorFactor  *[4]float32  `json:"baseColorFactor,omitempty"` // Default is [1, 1, 1, 1].
	BaseColorTexture *TextureInfo `json:"baseColorTexture,omitempty"`
	MetallicFactor   *float32     `json:"metallicFactor,omitempty"`
	RoughnessFactor  *float32     `json:"roughnessFactor,omitempty"`
}

// BaseColor returns the base color factor of m, or opaque white.
func (m *Material) BaseColor() [4]float32 {
	if m.PBRMetallicRoughness == nil || m.PBRMetallicRoughness.BaseColorFactor == nil {
		return [4]float32{1, 1, 1, 1}
	}
	return *m.PBRMetallicRoughness.BaseColorFactor
}

// TextureInfo references a texture from a material.
type TextureInfo struct {
	Index    int `json:"index"`
	TexCoord int `json:"texCoord,omitempty"`
}

// Texture pairs an image with a sampler.
type Texture struct {
	Name       string             `json:"name,omitempty"`
	Sampler    *int               `json:"sampler,omitempty"`
	Source     *int               `json:"source,omitempty"`
	Extensions *TextureExtensions `json:"extensions,omitempty"`
}

// TextureExtensions holds the texture extensions the parser understands.
type TextureExtensions struct {
	WebP *struct {
		Source int `json:"source"`
	} `json:"EXT_texture_webp,omitempty"`
}

// Image returns the image index of the texture, preferring the WebP source
// when EXT_texture_webp is present.
func (t *Texture) Image() (int, bool) {
	if t.Extensions != nil && t.Extensions.WebP != nil {
		return t.Extensions.WebP.Source, true
	}
	if t.Source == nil {
		return 0, false
	}
	return *t.Source, true
}

// Image is texture image data, either by URI or in a buffer view.
type Image struct {
	Name       string `json:"name,omitempty"`
	URI        string `json:"uri,omitempty"`
	MimeType   string `json:"mimeType,omitempty"`
	BufferView *int   `json:"bufferView,omitempty"`
}

// Image MIME types.
const (
	MimePNG  = "image/png"
	MimeJPEG = "image/jpeg"
	MimeWebP = "image/webp"
	MimeBMP  = "image/bmp"
)

// Sampler describes texture filtering and wrapping.
type Sampler struct {
	MagFilter int `json:"magFilter,omitempty"`
	MinFilter int `json:"minFilter,omitempty"`
	WrapS     int `json:"wrapS,omitempty"` // Default is Repeat.
	WrapT     int `json:"wrapT,omitempty"` // Default is Repeat.
}

// Sampler filter and wrap values.
const (
	Nearest       = 9728
	Linear        = 9729
	ClampToEdge   = 33071
	MirrorRepeat  = 33648
	Repeat        = 10497
	LinearMipmaps = 9987
)

// supportedExtensions lists required extensions the parser can honor.
var supportedExtensions = map[string]bool{
	"EXT_texture_webp":    true,
	"KHR_materials_unlit": true,
}
