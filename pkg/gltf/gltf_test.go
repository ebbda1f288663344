package gltf

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// triangleBuffer holds three VEC3 positions followed by three uint16
// indices and two bytes of padding.
func triangleBuffer() []byte {
	buf := new(bytes.Buffer)
	for _, v := range []float32{0, 0, 0, 1, 0, 0, 0, 1, 0} {
		binary.Write(buf, binary.LittleEndian, v)
	}
	for _, i := range []uint16{0, 1, 2} {
		binary.Write(buf, binary.LittleEndian, i)
	}
	buf.Write([]byte{0, 0})
	return buf.Bytes()
}

const triangleJSON = `{
  "asset": {"version": "2.0"},
  "scene": 0,
  "scenes": [{"nodes": [0]}],
  "nodes": [
    {"name": "robot", "children": [1, 2]},
    {"name": "Wheel_FL", "mesh": 0, "translation": [1, 2, 3]},
    {"name": "Body", "mesh": 0}
  ],
  "meshes": [{"primitives": [{"attributes": {"POSITION": 0}, "indices": 1, "material": 0}]}],
  "materials": [{"pbrMetallicRoughness": {"baseColorFactor": [1, 0, 0, 1]}}],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
    {"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
  ],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 36},
    {"buffer": 0, "byteOffset": 36, "byteLength": 6}
  ],
  "buffers": [{"byteLength": 44%s}]
}`

func embeddedTriangle() []byte {
	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(triangleBuffer())
	return []byte(fmt.Sprintf(triangleJSON, fmt.Sprintf(`, "uri": %q`, uri)))
}

func TestParseEmbeddedBuffer(t *testing.T) {
	doc, err := Parse(embeddedTriangle())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(doc.Nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(doc.Nodes))
	}
	if roots := doc.SceneRoots(); len(roots) != 1 || roots[0] != 0 {
		t.Errorf("SceneRoots = %v, want [0]", roots)
	}

	data, mime, err := DecodeDataURI(doc.Buffers[0].URI)
	if err != nil {
		t.Fatalf("DecodeDataURI failed: %v", err)
	}
	if mime != "application/octet-stream" {
		t.Errorf("mime = %q", mime)
	}

	buffers := [][]byte{data}
	pos, err := doc.ReadVec3(0, buffers)
	if err != nil {
		t.Fatalf("ReadVec3 failed: %v", err)
	}
	if pos[1] != [3]float32{1, 0, 0} || pos[2] != [3]float32{0, 1, 0} {
		t.Errorf("positions = %v", pos)
	}

	idx, err := doc.ReadIndices(1, buffers)
	if err != nil {
		t.Fatalf("ReadIndices failed: %v", err)
	}
	if len(idx) != 3 || idx[0] != 0 || idx[1] != 1 || idx[2] != 2 {
		t.Errorf("indices = %v", idx)
	}

	if c := doc.Materials[0].BaseColor(); c != [4]float32{1, 0, 0, 1} {
		t.Errorf("base color = %v", c)
	}
}

func TestParseGLB(t *testing.T) {
	jsonData := []byte(fmt.Sprintf(triangleJSON, ""))
	data := EncodeGLB(jsonData, triangleBuffer())

	if !IsGLB(data) {
		t.Fatal("IsGLB returned false for encoded container")
	}
	if len(data)%4 != 0 {
		t.Errorf("GLB length %d not 4-byte aligned", len(data))
	}

	doc, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(doc.BIN) != 44 {
		t.Fatalf("BIN chunk length = %d, want 44", len(doc.BIN))
	}

	pos, err := doc.ReadVec3(0, [][]byte{doc.BIN})
	if err != nil {
		t.Fatalf("ReadVec3 failed: %v", err)
	}
	if pos[1][0] != 1 {
		t.Errorf("positions = %v", pos)
	}
}

func TestParseGLBErrors(t *testing.T) {
	valid := EncodeGLB([]byte(fmt.Sprintf(triangleJSON, "")), triangleBuffer())

	badVersion := append([]byte(nil), valid...)
	binary.LittleEndian.PutUint32(badVersion[4:], 1)

	badChunk := append([]byte(nil), valid...)
	binary.LittleEndian.PutUint32(badChunk[16:], chunkBIN)

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"short header", valid[:8], ErrTruncatedGLB},
		{"truncated", valid[:len(valid)-10], ErrTruncatedGLB},
		{"version 1", badVersion, ErrUnsupportedVersion},
		{"first chunk not JSON", badChunk, ErrInvalidGLB},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseGLB(tt.data)
			if !errors.Is(err, tt.want) {
				t.Errorf("ParseGLB error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		json string
		want error
	}{
		{"version 1.0", `{"asset": {"version": "1.0"}}`, ErrUnsupportedVersion},
		{"required extension", `{"asset": {"version": "2.0"}, "extensionsRequired": ["KHR_draco_mesh_compression"]}`, ErrUnsupportedExtension},
		{"bad scene", `{"asset": {"version": "2.0"}, "scene": 2, "scenes": [{}]}`, ErrInvalidIndex},
		{"bad child", `{"asset": {"version": "2.0"}, "nodes": [{"children": [5]}]}`, ErrInvalidIndex},
		{"self child", `{"asset": {"version": "2.0"}, "nodes": [{"children": [0]}]}`, ErrInvalidIndex},
		{"bad mesh", `{"asset": {"version": "2.0"}, "nodes": [{"mesh": 0}]}`, ErrInvalidIndex},
		{"missing position", `{"asset": {"version": "2.0"}, "meshes": [{"primitives": [{"attributes": {}}]}]}`, ErrInvalidAccessor},
		{"bad component", `{"asset": {"version": "2.0"}, "accessors": [{"componentType": 1, "count": 1, "type": "VEC3"}]}`, ErrInvalidAccessor},
		{"not json", `{"asset":`, ErrInvalidJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSON([]byte(tt.json))
			if !errors.Is(err, tt.want) {
				t.Errorf("ParseJSON error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestAccessorBounds(t *testing.T) {
	doc, err := Parse(embeddedTriangle())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	// Buffer shorter than the positions view.
	_, err = doc.ReadVec3(0, [][]byte{make([]byte, 20)})
	if !errors.Is(err, ErrAccessorBounds) {
		t.Errorf("short buffer error = %v, want ErrAccessorBounds", err)
	}

	// Count larger than the view.
	doc.Accessors[0].Count = 4
	_, err = doc.ReadVec3(0, [][]byte{triangleBuffer()})
	if !errors.Is(err, ErrAccessorBounds) {
		t.Errorf("large count error = %v, want ErrAccessorBounds", err)
	}

	// Wrong type, on a fresh document.
	doc, err = Parse(embeddedTriangle())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	_, err = doc.ReadVec2(0, [][]byte{triangleBuffer()})
	if !errors.Is(err, ErrInvalidAccessor) {
		t.Errorf("type mismatch error = %v, want ErrInvalidAccessor", err)
	}
}

func TestAccessorTypeCheckedBeforeBounds(t *testing.T) {
	doc, err := Parse(embeddedTriangle())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	doc.Accessors[0].Count = 4

	tests := []struct {
		name string
		read func() error
	}{
		{"vec2", func() error { _, err := doc.ReadVec2(0, [][]byte{triangleBuffer()}); return err }},
		{"indices", func() error { _, err := doc.ReadIndices(0, [][]byte{triangleBuffer()}); return err }},
		{"short buffer", func() error { _, err := doc.ReadVec2(0, [][]byte{make([]byte, 4)}); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.read(); !errors.Is(err, ErrInvalidAccessor) {
				t.Errorf("error = %v, want ErrInvalidAccessor", err)
			}
		})
	}
}

func TestAccessorWithoutBufferView(t *testing.T) {
	doc, err := ParseJSON([]byte(`{"asset": {"version": "2.0"},
		"accessors": [{"componentType": 5126, "count": 2, "type": "VEC3"}]}`))
	if err != nil {
		t.Fatalf("ParseJSON failed: %v", err)
	}
	pos, err := doc.ReadVec3(0, nil)
	if err != nil {
		t.Fatalf("ReadVec3 failed: %v", err)
	}
	if len(pos) != 2 || pos[1] != [3]float32{} {
		t.Errorf("positions = %v, want two zero vectors", pos)
	}
}

func TestNormalizedTexCoords(t *testing.T) {
	doc := &Document{
		Accessors:   []Accessor{{BufferView: new(int), ComponentType: UnsignedByte, Normalized: true, Count: 1, Type: Vec2}},
		BufferViews: []BufferView{{ByteLength: 2}},
	}
	uv, err := doc.ReadVec2(0, [][]byte{{255, 0}})
	if err != nil {
		t.Fatalf("ReadVec2 failed: %v", err)
	}
	if uv[0] != [2]float32{1, 0} {
		t.Errorf("uv = %v, want [1 0]", uv[0])
	}
}

func TestSceneRootsWithoutScenes(t *testing.T) {
	doc, err := ParseJSON([]byte(`{"asset": {"version": "2.0"},
		"nodes": [{"name": "a", "children": [2]}, {"name": "b"}, {"name": "c"}]}`))
	if err != nil {
		t.Fatalf("ParseJSON failed: %v", err)
	}
	roots := doc.SceneRoots()
	if len(roots) != 2 || roots[0] != 0 || roots[1] != 1 {
		t.Errorf("SceneRoots = %v, want [0 1]", roots)
	}
}

func TestDecodeDataURIErrors(t *testing.T) {
	for _, uri := range []string{
		"file.bin",
		"data:application/octet-stream;base64",
		"data:text/plain,hello",
		"data:application/octet-stream;base64,!!!",
	} {
		if _, _, err := DecodeDataURI(uri); !errors.Is(err, ErrInvalidDataURI) {
			t.Errorf("DecodeDataURI(%q) error = %v, want ErrInvalidDataURI", uri, err)
		}
	}
}

func TestResolvePath(t *testing.T) {
	p, err := ResolvePath("textures/wheel%20tread.png")
	if err != nil {
		t.Fatalf("ResolvePath failed: %v", err)
	}
	if p != "textures/wheel tread.png" {
		t.Errorf("ResolvePath = %q", p)
	}
	if _, err := ResolvePath("https://example.com/a.bin"); err == nil {
		t.Error("expected error for remote URI")
	}
}

func TestLocalTransformDefaults(t *testing.T) {
	var n Node
	tr, r, s := n.LocalTransform()
	if tr != [3]float32{} || r != [4]float32{0, 0, 0, 1} || s != [3]float32{1, 1, 1} {
		t.Errorf("defaults = %v %v %v", tr, r, s)
	}
}

func TestLocalTransformDecomposesMatrix(t *testing.T) {
	// Translate (1,2,3), rotate 90° about Y, scale 2 on every axis.
	// Column-major: columns are R*S.
	m := [16]float32{
		0, 0, -2, 0,
		0, 2, 0, 0,
		2, 0, 0, 0,
		1, 2, 3, 1,
	}
	n := Node{Matrix: &m}
	tr, r, s := n.LocalTransform()

	if tr != [3]float32{1, 2, 3} {
		t.Errorf("translation = %v", tr)
	}
	for i, want := range [3]float32{2, 2, 2} {
		if math.Abs(float64(s[i]-want)) > 1e-6 {
			t.Errorf("scale = %v", s)
			break
		}
	}
	half := float32(math.Sqrt2 / 2)
	want := [4]float32{0, half, 0, half}
	for i := range r {
		if math.Abs(float64(r[i]-want[i])) > 1e-6 {
			t.Errorf("rotation = %v, want %v", r, want)
			break
		}
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "robot.gltf")
	if err := os.WriteFile(path, embeddedTriangle(), 0644); err != nil {
		t.Fatal(err)
	}
	doc, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if doc.Nodes[1].Name != "Wheel_FL" {
		t.Errorf("node 1 = %q", doc.Nodes[1].Name)
	}

	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.gltf")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v", err)
	}
}
