// Package renderer draws a scene with OpenGL 4.1: the ground grid, debug
// line overlays and lit, optionally textured meshes.
package renderer

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/robotview/internal/engine/camera"
	"github.com/Faultbox/robotview/internal/engine/debug"
	"github.com/Faultbox/robotview/internal/engine/lighting"
	"github.com/Faultbox/robotview/internal/engine/renderer/shaders"
	"github.com/Faultbox/robotview/internal/engine/scene"
	"github.com/Faultbox/robotview/internal/engine/shader"
	"github.com/Faultbox/robotview/internal/logger"
	"github.com/Faultbox/robotview/pkg/math"
)

// ErrOutOfMemory is returned when the GPU ran out of memory.
var ErrOutOfMemory = errors.New("GL out of memory")

// Config holds renderer configuration.
type Config struct {
	Width       int
	Height      int
	Multisample bool

	// Present is called at the end of every frame, typically to swap the
	// window's buffers.
	Present func()
}

// gpuPrimitive is a primitive uploaded to vertex and index buffers.
type gpuPrimitive struct {
	vao, vbo, ebo uint32
	count         int32
}

// lineBuffer is a dynamic buffer of line vertices.
type lineBuffer struct {
	vao, vbo uint32
	count    int32
	capacity int
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config Config

	meshProgram *shader.Program
	lineProgram *shader.Program

	primitives map[*scene.Primitive]*gpuPrimitive
	textures   map[*scene.Texture]uint32

	grid     lineBuffer
	gridSrc  []debug.LineVertex
	overlay  lineBuffer
	overlays []debug.LineVertex

	frames uint64
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config:     cfg,
		primitives: make(map[*scene.Primitive]*gpuPrimitive),
		textures:   make(map[*scene.Texture]uint32),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	if cfg.Multisample {
		gl.Enable(gl.MULTISAMPLE)
	}

	var err error
	r.meshProgram, err = shader.New(shaders.MeshVertexShader, shaders.MeshFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("mesh shader: %w", err)
	}
	r.lineProgram, err = shader.New(shaders.LineVertexShader, shaders.LineFragmentShader)
	if err != nil {
		r.meshProgram.Delete()
		return nil, fmt.Errorf("line shader: %w", err)
	}

	r.grid = newLineBuffer()
	r.overlay = newLineBuffer()
	r.Resize(cfg.Width, cfg.Height)

	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer",
		zap.Int("primitives", len(r.primitives)),
		zap.Int("textures", len(r.textures)),
		zap.Uint64("frames", r.frames))

	for _, p := range r.primitives {
		gl.DeleteVertexArrays(1, &p.vao)
		gl.DeleteBuffers(1, &p.vbo)
		gl.DeleteBuffers(1, &p.ebo)
	}
	r.primitives = nil
	for _, tex := range r.textures {
		gl.DeleteTextures(1, &tex)
	}
	r.textures = nil

	r.grid.delete()
	r.overlay.delete()
	r.meshProgram.Delete()
	r.lineProgram.Delete()
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// SetOverlay replaces the debug line overlay drawn on top of the scene.
func (r *Renderer) SetOverlay(lines []debug.LineVertex) {
	r.overlays = lines
}

// Render draws one frame of s seen through cam and presents it.
func (r *Renderer) Render(s *scene.Scene, cam *camera.OrbitCamera) error {
	bg := s.Background
	gl.ClearColor(bg[0], bg[1], bg[2], 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	view := cam.ViewMatrix()
	proj := cam.ProjectionMatrix()
	viewProj := proj.Mul(view)

	if len(s.Grid) > 0 && len(r.gridSrc) != len(s.Grid) {
		r.gridSrc = s.Grid
		r.grid.upload(s.Grid)
	}
	r.drawLines(&r.grid, viewProj)

	r.meshProgram.Use()
	r.meshProgram.SetMat4("uView", view)
	r.meshProgram.SetMat4("uProjection", proj)
	r.setLights(s.Lights)
	r.meshProgram.SetInt("uTexture", 0)

	var drawErr error
	scene.WalkWorld(s.Root(), math.Identity(), func(n scene.Node, world math.Mat4) {
		m, ok := n.AsMesh()
		if !ok || drawErr != nil {
			return
		}
		r.meshProgram.SetMat4("uModel", world)
		r.meshProgram.SetMat3("uNormalMatrix", world.NormalMatrix())
		for _, p := range m.Primitives {
			if err := r.drawPrimitive(p); err != nil {
				drawErr = fmt.Errorf("drawing %q: %w", m.Name(), err)
				return
			}
		}
	})
	if drawErr != nil {
		return drawErr
	}

	if len(r.overlays) > 0 {
		r.overlay.upload(r.overlays)
		gl.Disable(gl.DEPTH_TEST)
		r.drawLines(&r.overlay, viewProj)
		gl.Enable(gl.DEPTH_TEST)
	}

	if err := checkError(); err != nil {
		return err
	}

	if r.config.Present != nil {
		r.config.Present()
	}
	r.frames++
	return nil
}

func (r *Renderer) setLights(rig *lighting.Rig) {
	if rig == nil {
		rig = &lighting.Rig{}
	}
	p := r.meshProgram
	p.SetVec3("uAmbient", rig.Ambient.Color.Scaled(rig.Ambient.Intensity))
	h := rig.Hemisphere
	p.SetVec3("uSkyColor", h.Sky.Scaled(h.Intensity))
	p.SetVec3("uGroundColor", h.Ground.Scaled(h.Intensity))
	p.SetVec3("uSkyDirection", h.Up().Array())
	p.SetInt("uPointCount", int32(rig.PointCount()))
	p.SetVec3Array("uPointPositions", rig.PointPositions())
	p.SetVec3Array("uPointColors", rig.PointColors())
	p.SetFloatArray("uPointRanges", rig.PointRanges())
}

func (r *Renderer) drawPrimitive(p *scene.Primitive) error {
	gp, ok := r.primitives[p]
	if !ok {
		var err error
		gp, err = uploadPrimitive(p)
		if err != nil {
			return err
		}
		r.primitives[p] = gp
	}
	if gp.count == 0 {
		return nil
	}

	mat := p.Material
	if mat == nil {
		mat = scene.DefaultMaterial
	}
	r.meshProgram.SetVec4("uBaseColor", mat.BaseColor)
	r.meshProgram.SetBool("uDoubleSided", mat.DoubleSided)

	tex := r.texture(mat.Texture)
	r.meshProgram.SetBool("uHasTexture", tex != 0)
	if tex != 0 {
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, tex)
	}

	if mat.DoubleSided {
		gl.Disable(gl.CULL_FACE)
	} else {
		gl.Enable(gl.CULL_FACE)
	}

	gl.BindVertexArray(gp.vao)
	gl.DrawElementsWithOffset(gl.TRIANGLES, gp.count, gl.UNSIGNED_INT, 0)
	gl.BindVertexArray(0)
	return nil
}

// uploadPrimitive interleaves position, normal and texcoord into one vertex
// buffer: 8 floats, 32 bytes per vertex.
func uploadPrimitive(p *scene.Primitive) (*gpuPrimitive, error) {
	gp := &gpuPrimitive{count: int32(len(p.Indices))}
	if len(p.Positions) == 0 || len(p.Indices) == 0 {
		gp.count = 0
		return gp, nil
	}

	const stride = 8
	vertices := make([]float32, 0, len(p.Positions)*stride)
	for i, pos := range p.Positions {
		var n math.Vec3
		if i < len(p.Normals) {
			n = p.Normals[i]
		}
		var uv [2]float32
		if i < len(p.UVs) {
			uv = p.UVs[i]
		}
		vertices = append(vertices, pos.X, pos.Y, pos.Z, n.X, n.Y, n.Z, uv[0], uv[1])
	}

	gl.GenVertexArrays(1, &gp.vao)
	gl.BindVertexArray(gp.vao)

	gl.GenBuffers(1, &gp.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, gp.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)

	gl.GenBuffers(1, &gp.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gp.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(p.Indices)*4, gl.Ptr(p.Indices), gl.STATIC_DRAW)

	byteStride := int32(stride * 4)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, byteStride, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, byteStride, 12)
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, byteStride, 24)

	gl.BindVertexArray(0)

	if err := checkError(); err != nil {
		return nil, fmt.Errorf("uploading primitive: %w", err)
	}
	return gp, nil
}

// texture returns the GL texture for t, uploading it on first use.
func (r *Renderer) texture(t *scene.Texture) uint32 {
	if t == nil || t.Image == nil || len(t.Image.Pix) == 0 {
		return 0
	}
	if id, ok := r.textures[t]; ok {
		return id
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)

	b := t.Image.Bounds()
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(t.Image.Stride/4))
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA,
		int32(b.Dx()), int32(b.Dy()),
		0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&t.Image.Pix[0]))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)

	wrap := int32(gl.CLAMP_TO_EDGE)
	if t.Repeat {
		wrap = gl.REPEAT
	}
	minFilter, magFilter := int32(gl.NEAREST_MIPMAP_NEAREST), int32(gl.NEAREST)
	if t.Linear {
		minFilter, magFilter = gl.LINEAR_MIPMAP_LINEAR, gl.LINEAR
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, minFilter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, magFilter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, wrap)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, wrap)
	gl.GenerateMipmap(gl.TEXTURE_2D)

	logger.Debug("texture uploaded",
		zap.String("name", t.Name),
		zap.Int("width", b.Dx()),
		zap.Int("height", b.Dy()))

	r.textures[t] = id
	return id
}

func (r *Renderer) drawLines(b *lineBuffer, viewProj math.Mat4) {
	if b.count == 0 {
		return
	}
	r.lineProgram.Use()
	r.lineProgram.SetMat4("uViewProjection", viewProj)
	gl.BindVertexArray(b.vao)
	gl.DrawArrays(gl.LINES, 0, b.count)
	gl.BindVertexArray(0)
}

// ReadPixels reads the default framebuffer as RGBA, bottom row first.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	if len(pixels) == 0 {
		return nil, 0, 0
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, w, h
}

func newLineBuffer() lineBuffer {
	var b lineBuffer
	gl.GenVertexArrays(1, &b.vao)
	gl.GenBuffers(1, &b.vbo)

	gl.BindVertexArray(b.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	stride := int32(unsafe.Sizeof(debug.LineVertex{}))
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 12)
	gl.BindVertexArray(0)
	return b
}

func (b *lineBuffer) upload(vertices []debug.LineVertex) {
	b.count = int32(len(vertices))
	if len(vertices) == 0 {
		return
	}
	size := len(vertices) * int(unsafe.Sizeof(debug.LineVertex{}))
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	if len(vertices) > b.capacity {
		gl.BufferData(gl.ARRAY_BUFFER, size, gl.Ptr(vertices), gl.DYNAMIC_DRAW)
		b.capacity = len(vertices)
	} else {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, size, gl.Ptr(vertices))
	}
}

func (b *lineBuffer) delete() {
	gl.DeleteVertexArrays(1, &b.vao)
	gl.DeleteBuffers(1, &b.vbo)
}

// checkError drains the GL error queue. Out-of-memory is fatal; other
// errors are logged.
func checkError() error {
	var fatal error
	for code := gl.GetError(); code != gl.NO_ERROR; code = gl.GetError() {
		if code == gl.OUT_OF_MEMORY {
			fatal = ErrOutOfMemory
			continue
		}
		logger.Warn("OpenGL error", zap.Uint32("code", code))
	}
	return fatal
}
