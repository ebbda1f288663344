package gltf

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// GLB container errors.
var (
	ErrInvalidGLB   = errors.New("invalid GLB container")
	ErrTruncatedGLB = errors.New("truncated GLB data")
)

const (
	glbMagic      = 0x46546c67 // "glTF"
	glbVersion    = 2
	glbHeaderSize = 12
	chunkJSON     = 0x4e4f534a // "JSON"
	chunkBIN      = 0x004e4942 // "BIN\0"
)

type glbHeader struct {
	Magic   uint32
	Version uint32
	Length  uint32
}

type glbChunk struct {
	Length uint32
	Type   uint32
}

// IsGLB reports whether data starts with the GLB magic.
func IsGLB(data []byte) bool {
	return len(data) >= 4 && binary.LittleEndian.Uint32(data) == glbMagic
}

// ParseGLB parses a binary glTF container: a 12-byte header, a JSON chunk
// and an optional BIN chunk. Unknown chunks are skipped.
func ParseGLB(data []byte) (*Document, error) {
	r := bytes.NewReader(data)

	var h glbHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("%w: reading header", ErrTruncatedGLB)
	}
	if h.Magic != glbMagic {
		return nil, fmt.Errorf("%w: bad magic %#x", ErrInvalidGLB, h.Magic)
	}
	if h.Version != glbVersion {
		return nil, fmt.Errorf("%w: GLB version %d", ErrUnsupportedVersion, h.Version)
	}
	if int(h.Length) > len(data) {
		return nil, fmt.Errorf("%w: header length %d exceeds %d bytes", ErrTruncatedGLB, h.Length, len(data))
	}
	data = data[:h.Length]

	var jsonData, bin []byte
	off := glbHeaderSize
	for i := 0; off < len(data); i++ {
		if off+8 > len(data) {
			return nil, fmt.Errorf("%w: chunk %d header", ErrTruncatedGLB, i)
		}
		c := glbChunk{
			Length: binary.LittleEndian.Uint32(data[off:]),
			Type:   binary.LittleEndian.Uint32(data[off+4:]),
		}
		off += 8
		end := off + int(c.Length)
		if end > len(data) || end < off {
			return nil, fmt.Errorf("%w: chunk %d payload", ErrTruncatedGLB, i)
		}
		payload := data[off:end]
		off = end

		switch {
		case i == 0 && c.Type != chunkJSON:
			return nil, fmt.Errorf("%w: first chunk is not JSON", ErrInvalidGLB)
		case i == 0:
			jsonData = payload
		case c.Type == chunkBIN && bin == nil:
			bin = payload
		}
	}
	if jsonData == nil {
		return nil, fmt.Errorf("%w: missing JSON chunk", ErrInvalidGLB)
	}

	doc, err := ParseJSON(jsonData)
	if err != nil {
		return nil, err
	}
	doc.BIN = bin
	return doc, nil
}

// EncodeGLB packs a JSON document and an optional binary payload into a GLB
// container, padding chunks to four bytes.
func EncodeGLB(jsonData, bin []byte) []byte {
	jsonData = pad(jsonData, ' ')
	total := glbHeaderSize + 8 + len(jsonData)
	if bin != nil {
		bin = pad(bin, 0)
		total += 8 + len(bin)
	}

	buf := new(bytes.Buffer)
	buf.Grow(total)
	binary.Write(buf, binary.LittleEndian, glbHeader{Magic: glbMagic, Version: glbVersion, Length: uint32(total)})
	binary.Write(buf, binary.LittleEndian, glbChunk{Length: uint32(len(jsonData)), Type: chunkJSON})
	buf.Write(jsonData)
	if bin != nil {
		binary.Write(buf, binary.LittleEndian, glbChunk{Length: uint32(len(bin)), Type: chunkBIN})
		buf.Write(bin)
	}
	return buf.Bytes()
}

func pad(b []byte, fill byte) []byte {
	b = append([]byte(nil), b...)
	for len(b)%4 != 0 {
		b = append(b, fill)
	}
	return b
}
