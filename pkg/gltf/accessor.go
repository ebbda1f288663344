package gltf

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrAccessorBounds is returned when an accessor reads past its buffer view
// or buffer.
var ErrAccessorBounds = errors.New("glTF accessor out of bounds")

func componentSize(componentType int) int {
	switch componentType {
	case Byte, UnsignedByte:
		return 1
	case Short, UnsignedShort:
		return 2
	case UnsignedInt, Float:
		return 4
	}
	return 0
}

func componentCount(typ string) int {
	switch typ {
	case Scalar:
		return 1
	case Vec2:
		return 2
	case Vec3:
		return 3
	case Vec4, Mat2:
		return 4
	case Mat3:
		return 9
	case Mat4:
		return 16
	}
	return 0
}

// element describes where accessor elements live in a buffer.
type element struct {
	data   []byte
	stride int
	size   int
}

// locate returns the bytes backing accessor i, resolving its buffer view in
// buffers. An accessor without a buffer view yields nil data (all zeros).
func (d *Document) locate(i int, buffers [][]byte) (*Accessor, element, error) {
	if !inRange(i, len(d.Accessors)) {
		return nil, element{}, fmt.Errorf("%w: accessor %d", ErrInvalidIndex, i)
	}
	a := &d.Accessors[i]
	size := componentSize(a.ComponentType) * componentCount(a.Type)
	if a.BufferView == nil {
		return a, element{stride: size, size: size}, nil
	}

	v := d.BufferViews[*a.BufferView]
	if !inRange(v.Buffer, len(buffers)) || buffers[v.Buffer] == nil {
		return nil, element{}, fmt.Errorf("%w: buffer %d not loaded", ErrInvalidIndex, v.Buffer)
	}
	buf := buffers[v.Buffer]
	if v.ByteOffset+v.ByteLength > len(buf) {
		return nil, element{}, fmt.Errorf("%w: bufferView %d ends at %d, buffer has %d bytes",
			ErrAccessorBounds, *a.BufferView, v.ByteOffset+v.ByteLength, len(buf))
	}
	view := buf[v.ByteOffset : v.ByteOffset+v.ByteLength]

	stride := v.ByteStride
	if stride == 0 {
		stride = size
	}
	need := a.ByteOffset + (a.Count-1)*stride + size
	if need > len(view) {
		return nil, element{}, fmt.Errorf("%w: accessor %d needs %d bytes, view has %d",
			ErrAccessorBounds, i, need, len(view))
	}
	return a, element{data: view[a.ByteOffset:], stride: stride, size: size}, nil
}

// locateTyped is locate for an accessor that must have type typ. The type
// is checked before any bounds.
func (d *Document) locateTyped(i int, typ string, buffers [][]byte) (*Accessor, element, error) {
	if inRange(i, len(d.Accessors)) && d.Accessors[i].Type != typ {
		return nil, element{}, fmt.Errorf("%w: accessor %d is %s, want %s",
			ErrInvalidAccessor, i, d.Accessors[i].Type, typ)
	}
	return d.locate(i, buffers)
}

// component reads component c of element e as a float, applying
// normalization for integer types when requested.
func component(a *Accessor, e element, idx, c int) float32 {
	if e.data == nil {
		return 0
	}
	off := idx*e.stride + c*componentSize(a.ComponentType)
	b := e.data[off:]
	switch a.ComponentType {
	case Float:
		return math.Float32frombits(binary.LittleEndian.Uint32(b))
	case UnsignedByte:
		if a.Normalized {
			return float32(b[0]) / 255
		}
		return float32(b[0])
	case Byte:
		if a.Normalized {
			return max(float32(int8(b[0]))/127, -1)
		}
		return float32(int8(b[0]))
	case UnsignedShort:
		v := binary.LittleEndian.Uint16(b)
		if a.Normalized {
			return float32(v) / 65535
		}
		return float32(v)
	case Short:
		v := int16(binary.LittleEndian.Uint16(b))
		if a.Normalized {
			return max(float32(v)/32767, -1)
		}
		return float32(v)
	case UnsignedInt:
		return float32(binary.LittleEndian.Uint32(b))
	}
	return 0
}

// ReadVec3 reads a VEC3 accessor.
func (d *Document) ReadVec3(i int, buffers [][]byte) ([][3]float32, error) {
	a, e, err := d.locateTyped(i, Vec3, buffers)
	if err != nil {
		return nil, err
	}
	out := make([][3]float32, a.Count)
	for n := range out {
		for c := 0; c < 3; c++ {
			out[n][c] = component(a, e, n, c)
		}
	}
	return out, nil
}

// ReadVec2 reads a VEC2 accessor, such as texture coordinates.
func (d *Document) ReadVec2(i int, buffers [][]byte) ([][2]float32, error) {
	a, e, err := d.locateTyped(i, Vec2, buffers)
	if err != nil {
		return nil, err
	}
	out := make([][2]float32, a.Count)
	for n := range out {
		out[n][0] = component(a, e, n, 0)
		out[n][1] = component(a, e, n, 1)
	}
	return out, nil
}

// ReadIndices reads a SCALAR index accessor of unsigned bytes, shorts or
// ints.
func (d *Document) ReadIndices(i int, buffers [][]byte) ([]uint32, error) {
	a, e, err := d.locateTyped(i, Scalar, buffers)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, a.Count)
	if e.data == nil {
		return out, nil
	}
	for n := range out {
		b := e.data[n*e.stride:]
		switch a.ComponentType {
		case UnsignedByte:
			out[n] = uint32(b[0])
		case UnsignedShort:
			out[n] = uint32(binary.LittleEndian.Uint16(b))
		case UnsignedInt:
			out[n] = binary.LittleEndian.Uint32(b)
		default:
			return nil, fmt.Errorf("%w: index component type %d", ErrInvalidAccessor, a.ComponentType)
		}
	}
	return out, nil
}

// BufferViewData returns the bytes of buffer view i, used for embedded
// images.
func (d *Document) BufferViewData(i int, buffers [][]byte) ([]byte, error) {
	if !inRange(i, len(d.BufferViews)) {
		return nil, fmt.Errorf("%w: bufferView %d", ErrInvalidIndex, i)
	}
	v := d.BufferViews[i]
	if !inRange(v.Buffer, len(buffers)) || buffers[v.Buffer] == nil {
		return nil, fmt.Errorf("%w: buffer %d not loaded", ErrInvalidIndex, v.Buffer)
	}
	buf := buffers[v.Buffer]
	if v.ByteOffset+v.ByteLength > len(buf) {
		return nil, fmt.Errorf("%w: bufferView %d", ErrAccessorBounds, i)
	}
	return buf[v.ByteOffset : v.ByteOffset+v.ByteLength], nil
}
