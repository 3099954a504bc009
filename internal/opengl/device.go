// Package opengl implements gfx.Device on OpenGL 4.1 core.
package opengl

import (
	"fmt"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"render-sandbox/internal/gfx"
)

// Device issues gfx commands to the OpenGL context current on the calling
// thread.
type Device struct{}

func NewDevice() *Device {
	return &Device{}
}

// Init loads the OpenGL function pointers.
// Must be called after the GLFW window context is made current.
func (d *Device) Init() error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	gl.DepthFunc(gl.LESS)
	return nil
}

func (d *Device) Version() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}

func bufferTarget(t gfx.BufferTarget) uint32 {
	if t == gfx.ElementArrayBuffer {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func (d *Device) GenBuffer() uint32 {
	var id uint32
	gl.GenBuffers(1, &id)
	return id
}

func (d *Device) DeleteBuffer(id uint32) {
	gl.DeleteBuffers(1, &id)
}

func (d *Device) BindBuffer(target gfx.BufferTarget, id uint32) {
	gl.BindBuffer(bufferTarget(target), id)
}

func (d *Device) BufferData(target gfx.BufferTarget, data []byte) {
	var ptr unsafe.Pointer
	if len(data) > 0 {
		ptr = gl.Ptr(&data[0])
	}
	gl.BufferData(bufferTarget(target), len(data), ptr, gl.STATIC_DRAW)
}

func (d *Device) GetBufferData(target gfx.BufferTarget, size int) []byte {
	out := make([]byte, size)
	if size > 0 {
		gl.GetBufferSubData(bufferTarget(target), 0, size, gl.Ptr(&out[0]))
	}
	return out
}

func (d *Device) GenVertexArray() uint32 {
	var id uint32
	gl.GenVertexArrays(1, &id)
	return id
}

func (d *Device) DeleteVertexArray(id uint32) {
	gl.DeleteVertexArrays(1, &id)
}

func (d *Device) BindVertexArray(id uint32) {
	gl.BindVertexArray(id)
}

func (d *Device) EnableVertexAttribArray(slot uint32) {
	gl.EnableVertexAttribArray(slot)
}

// VertexAttribPointer routes integer attributes through the I variant so
// the shader receives them unconverted.
func (d *Device) VertexAttribPointer(slot uint32, attr gfx.VertexAttrib) {
	size := attr.Type.ComponentCount()
	switch attr.Type {
	case gfx.Bool:
		gl.VertexAttribIPointer(slot, size, gl.UNSIGNED_BYTE, attr.Stride, gl.PtrOffset(attr.Offset))
	case gfx.Int, gfx.Int2, gfx.Int3, gfx.Int4:
		gl.VertexAttribIPointer(slot, size, gl.INT, attr.Stride, gl.PtrOffset(attr.Offset))
	default:
		gl.VertexAttribPointer(slot, size, gl.FLOAT, attr.Normalized, attr.Stride, gl.PtrOffset(attr.Offset))
	}
}

func (d *Device) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (d *Device) UseProgram(id uint32) {
	gl.UseProgram(id)
}

func (d *Device) Uniform1i(loc int32, v int32) {
	gl.Uniform1i(loc, v)
}

func (d *Device) Uniform1f(loc int32, v float32) {
	gl.Uniform1f(loc, v)
}

func (d *Device) Uniform2f(loc int32, v mgl32.Vec2) {
	gl.Uniform2f(loc, v[0], v[1])
}

func (d *Device) Uniform3f(loc int32, v mgl32.Vec3) {
	gl.Uniform3f(loc, v[0], v[1], v[2])
}

func (d *Device) Uniform4f(loc int32, v mgl32.Vec4) {
	gl.Uniform4f(loc, v[0], v[1], v[2], v[3])
}

// mgl32 matrices are column-major, as GL expects (transpose=false).
func (d *Device) UniformMatrix3f(loc int32, m mgl32.Mat3) {
	gl.UniformMatrix3fv(loc, 1, false, &m[0])
}

func (d *Device) UniformMatrix4f(loc int32, m mgl32.Mat4) {
	gl.UniformMatrix4fv(loc, 1, false, &m[0])
}

func (d *Device) ClearColor(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
}

func (d *Device) Clear(mask gfx.ClearMask) {
	var bits uint32
	if mask&gfx.ColorBufferBit != 0 {
		bits |= gl.COLOR_BUFFER_BIT
	}
	if mask&gfx.DepthBufferBit != 0 {
		bits |= gl.DEPTH_BUFFER_BIT
	}
	gl.Clear(bits)
}

func (d *Device) Viewport(x, y, width, height int32) {
	gl.Viewport(x, y, width, height)
}

func (d *Device) SetDepthTest(enabled bool) {
	if enabled {
		gl.Enable(gl.DEPTH_TEST)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
}

func (d *Device) DrawElements(count int32) {
	gl.DrawElements(gl.TRIANGLES, count, gl.UNSIGNED_INT, nil)
}

var _ gfx.Device = (*Device)(nil)
