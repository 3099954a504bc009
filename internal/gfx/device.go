// Package gfx wraps GPU objects (buffers, vertex arrays, shader programs and
// textures) behind a small Device interface.
//
// All objects are bound to a Context, which mirrors the global "currently
// bound" state of the graphics API. Every Bind call overwrites that state, so
// correctness depends on call order: bind immediately before use. Nothing in
// this package is safe for concurrent use; all calls must come from the
// thread that owns the graphics context.
package gfx

import "github.com/go-gl/mathgl/mgl32"

// BufferTarget selects the binding point a buffer is attached to.
type BufferTarget uint8

const (
	ArrayBuffer BufferTarget = iota
	ElementArrayBuffer
)

func (t BufferTarget) String() string {
	switch t {
	case ArrayBuffer:
		return "array"
	case ElementArrayBuffer:
		return "element-array"
	}
	return "unknown"
}

// ClearMask selects which framebuffer planes Clear touches.
type ClearMask uint8

const (
	ColorBufferBit ClearMask = 1 << iota
	DepthBufferBit
)

// VertexAttrib describes one attribute slot of a vertex array.
type VertexAttrib struct {
	Type       ShaderDataType
	Normalized bool
	Stride     int32
	Offset     int
}

// Device is the raw command surface of a graphics backend. Implementations
// issue one backend call per method and do no caching or redundant-bind
// elision; Context keeps the wrapper-side record of what is bound.
type Device interface {
	// Init loads function pointers for the current context.
	Init() error
	Version() string

	GenBuffer() uint32
	DeleteBuffer(id uint32)
	BindBuffer(target BufferTarget, id uint32)
	// BufferData uploads data to the buffer bound at target.
	BufferData(target BufferTarget, data []byte)
	// GetBufferData reads size bytes back from the buffer bound at target.
	GetBufferData(target BufferTarget, size int) []byte

	GenVertexArray() uint32
	DeleteVertexArray(id uint32)
	BindVertexArray(id uint32)
	EnableVertexAttribArray(slot uint32)
	VertexAttribPointer(slot uint32, attr VertexAttrib)

	// CompileShader returns the shader id, the compiler info log and
	// whether compilation succeeded.
	CompileShader(stage ShaderStage, src string) (id uint32, log string, ok bool)
	DeleteShader(id uint32)
	LinkProgram(shaders ...uint32) (id uint32, log string, ok bool)
	DeleteProgram(id uint32)
	UseProgram(id uint32)
	// UniformLocation returns -1 for names that are not active uniforms.
	UniformLocation(program uint32, name string) int32
	Uniform1i(loc int32, v int32)
	Uniform1f(loc int32, v float32)
	Uniform2f(loc int32, v mgl32.Vec2)
	Uniform3f(loc int32, v mgl32.Vec3)
	Uniform4f(loc int32, v mgl32.Vec4)
	UniformMatrix3f(loc int32, m mgl32.Mat3)
	UniformMatrix4f(loc int32, m mgl32.Mat4)

	GenTexture() uint32
	DeleteTexture(id uint32)
	BindTexture(unit uint32, id uint32)
	// TexImage2D uploads pixels to the 2D texture bound on the active unit.
	TexImage2D(width, height int32, format TextureFormat, pixels []byte)

	ClearColor(r, g, b, a float32)
	Clear(mask ClearMask)
	Viewport(x, y, width, height int32)
	SetDepthTest(enabled bool)
	// DrawElements draws count uint32 indices as triangles from the bound
	// vertex array.
	DrawElements(count int32)
}
