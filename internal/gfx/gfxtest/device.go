// Package gfxtest provides an in-memory gfx.Device that emulates enough of a
// GPU to test the wrapper layer without a graphics context.
package gfxtest

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"render-sandbox/internal/gfx"
)

// CompileErrorMarker makes CompileShader fail for any source containing it.
const CompileErrorMarker = "#error"

var (
	uniformDecl = regexp.MustCompile(`(?m)^\s*uniform\s+(\w+)\s+(\w+)\s*(?:\[\s*(\d+)\s*\])?\s*;`)
	structDecl  = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)
	memberDecl  = regexp.MustCompile(`(\w+)\s+(\w+)\s*;`)
)

// activeUniforms lists the uniform names a program built from src exposes,
// expanding arrays to name[i] and struct members to name.member.
func activeUniforms(src string) []string {
	structs := make(map[string][]string)
	for _, m := range structDecl.FindAllStringSubmatch(src, -1) {
		for _, member := range memberDecl.FindAllStringSubmatch(m[2], -1) {
			structs[m[1]] = append(structs[m[1]], member[2])
		}
	}

	var names []string
	for _, m := range uniformDecl.FindAllStringSubmatch(src, -1) {
		bases := []string{m[2]}
		if m[3] != "" {
			n, _ := strconv.Atoi(m[3])
			bases = bases[:0]
			for i := 0; i < n; i++ {
				bases = append(bases, fmt.Sprintf("%s[%d]", m[2], i))
			}
		}
		for _, base := range bases {
			members, isStruct := structs[m[1]]
			if !isStruct {
				names = append(names, base)
				continue
			}
			for _, member := range members {
				names = append(names, base+"."+member)
			}
		}
	}
	return names
}

// Draw records one DrawElements call together with the state it used.
type Draw struct {
	Count       int32
	VertexArray uint32
	Program     uint32
}

type program struct {
	locations map[string]int32
	values    map[int32]any
}

// Device records every call and keeps buffer contents, attribute state and
// uniform values so tests can read them back.
type Device struct {
	// InitErr is returned by Init.
	InitErr error
	// FailLink makes every LinkProgram fail.
	FailLink bool
	// FailAlloc makes every Gen* call return 0.
	FailAlloc bool

	calls  []string
	nextID uint32

	buffers       map[uint32][]byte
	arrayBuffer   uint32
	vertexArray   uint32
	elementBuffer map[uint32]uint32
	attribs       map[uint32]map[uint32]gfx.VertexAttrib
	enabled       map[uint32]map[uint32]bool

	shaders  map[uint32]string
	programs map[uint32]*program
	current  uint32

	textures map[uint32]*Texture
	units    map[uint32]uint32
	unit     uint32

	clearColor [4]float32
	viewport   [4]int32
	depthTest  bool
	draws      []Draw
}

// Texture is the stored state of one texture object.
type Texture struct {
	Width, Height int32
	Format        gfx.TextureFormat
	Pixels        []byte
}

func NewDevice() *Device {
	return &Device{
		buffers:       make(map[uint32][]byte),
		elementBuffer: make(map[uint32]uint32),
		attribs:       make(map[uint32]map[uint32]gfx.VertexAttrib),
		enabled:       make(map[uint32]map[uint32]bool),
		shaders:       make(map[uint32]string),
		programs:      make(map[uint32]*program),
		textures:      make(map[uint32]*Texture),
		units:         make(map[uint32]uint32),
	}
}

// NewContext returns an initialized context over a fresh Device.
func NewContext() (*gfx.Context, *Device) {
	dev := NewDevice()
	ctx := gfx.NewContext(dev)
	if err := ctx.Init(); err != nil {
		panic(err)
	}
	dev.ResetCalls()
	return ctx, dev
}

func (d *Device) record(format string, args ...any) {
	d.calls = append(d.calls, fmt.Sprintf(format, args...))
}

// Calls returns the recorded call log, e.g. "BindBuffer(array, 1)".
func (d *Device) Calls() []string { return append([]string(nil), d.calls...) }

// CallsNamed returns the recorded calls of the named method only.
func (d *Device) CallsNamed(name string) []string {
	var out []string
	for _, c := range d.calls {
		if strings.HasPrefix(c, name+"(") {
			out = append(out, c)
		}
	}
	return out
}

func (d *Device) ResetCalls() { d.calls = nil }

func (d *Device) gen(kind string) uint32 {
	if d.FailAlloc {
		d.record("Gen%s() = 0", kind)
		return 0
	}
	d.nextID++
	d.record("Gen%s() = %d", kind, d.nextID)
	return d.nextID
}

func (d *Device) Init() error {
	d.record("Init()")
	return d.InitErr
}

func (d *Device) Version() string { return "4.1 gfxtest" }

func (d *Device) GenBuffer() uint32 {
	id := d.gen("Buffer")
	if id != 0 {
		d.buffers[id] = nil
	}
	return id
}

func (d *Device) DeleteBuffer(id uint32) {
	d.record("DeleteBuffer(%d)", id)
	delete(d.buffers, id)
	if d.arrayBuffer == id {
		d.arrayBuffer = 0
	}
	if d.elementBuffer[d.vertexArray] == id {
		delete(d.elementBuffer, d.vertexArray)
	}
}

func (d *Device) BindBuffer(target gfx.BufferTarget, id uint32) {
	d.record("BindBuffer(%s, %d)", target, id)
	if target == gfx.ElementArrayBuffer {
		d.elementBuffer[d.vertexArray] = id
		return
	}
	d.arrayBuffer = id
}

func (d *Device) bound(target gfx.BufferTarget) uint32 {
	if target == gfx.ElementArrayBuffer {
		return d.elementBuffer[d.vertexArray]
	}
	return d.arrayBuffer
}

func (d *Device) BufferData(target gfx.BufferTarget, data []byte) {
	id := d.bound(target)
	d.record("BufferData(%s, %d bytes) -> %d", target, len(data), id)
	d.buffers[id] = append([]byte(nil), data...)
}

func (d *Device) GetBufferData(target gfx.BufferTarget, size int) []byte {
	data := d.buffers[d.bound(target)]
	if size > len(data) {
		size = len(data)
	}
	return append([]byte(nil), data[:size]...)
}

// Buffer returns the stored contents of buffer id.
func (d *Device) Buffer(id uint32) ([]byte, bool) {
	b, ok := d.buffers[id]
	return b, ok
}

func (d *Device) GenVertexArray() uint32 {
	id := d.gen("VertexArray")
	if id != 0 {
		d.attribs[id] = make(map[uint32]gfx.VertexAttrib)
		d.enabled[id] = make(map[uint32]bool)
	}
	return id
}

func (d *Device) DeleteVertexArray(id uint32) {
	d.record("DeleteVertexArray(%d)", id)
	delete(d.attribs, id)
	delete(d.enabled, id)
	delete(d.elementBuffer, id)
	if d.vertexArray == id {
		d.vertexArray = 0
	}
}

func (d *Device) BindVertexArray(id uint32) {
	d.record("BindVertexArray(%d)", id)
	d.vertexArray = id
}

func (d *Device) EnableVertexAttribArray(slot uint32) {
	d.record("EnableVertexAttribArray(%d)", slot)
	if m, ok := d.enabled[d.vertexArray]; ok {
		m[slot] = true
	}
}

func (d *Device) VertexAttribPointer(slot uint32, attr gfx.VertexAttrib) {
	d.record("VertexAttribPointer(%d, %s, stride=%d, offset=%d)", slot, attr.Type, attr.Stride, attr.Offset)
	if m, ok := d.attribs[d.vertexArray]; ok {
		m[slot] = attr
	}
}

// Attribs returns the attribute slots recorded on vertex array vao.
func (d *Device) Attribs(vao uint32) map[uint32]gfx.VertexAttrib {
	out := make(map[uint32]gfx.VertexAttrib)
	for k, v := range d.attribs[vao] {
		out[k] = v
	}
	return out
}

// ElementBufferOf returns the element buffer attached to vao.
func (d *Device) ElementBufferOf(vao uint32) uint32 { return d.elementBuffer[vao] }

func (d *Device) CompileShader(stage gfx.ShaderStage, src string) (uint32, string, bool) {
	d.nextID++
	id := d.nextID
	d.record("CompileShader(%s) = %d", stage, id)
	if strings.Contains(src, CompileErrorMarker) {
		return id, fmt.Sprintf("ERROR: 0:1: '%s' : compilation terminated", CompileErrorMarker), false
	}
	d.shaders[id] = src
	return id, "", true
}

func (d *Device) DeleteShader(id uint32) {
	d.record("DeleteShader(%d)", id)
	delete(d.shaders, id)
}

func (d *Device) LinkProgram(shaders ...uint32) (uint32, string, bool) {
	d.nextID++
	id := d.nextID
	d.record("LinkProgram(%v) = %d", shaders, id)
	if d.FailLink {
		return id, "error: vertex output 'v_Color' not consumed by fragment shader", false
	}
	p := &program{locations: make(map[string]int32), values: make(map[int32]any)}
	var loc int32
	for _, sh := range shaders {
		for _, name := range activeUniforms(d.shaders[sh]) {
			if _, ok := p.locations[name]; !ok {
				p.locations[name] = loc
				loc++
			}
		}
	}
	d.programs[id] = p
	return id, "", true
}

func (d *Device) DeleteProgram(id uint32) {
	d.record("DeleteProgram(%d)", id)
	delete(d.programs, id)
	if d.current == id {
		d.current = 0
	}
}

func (d *Device) UseProgram(id uint32) {
	d.record("UseProgram(%d)", id)
	d.current = id
}

// Program reports whether id names a live program.
func (d *Device) Program(id uint32) bool {
	_, ok := d.programs[id]
	return ok
}

func (d *Device) UniformLocation(prog uint32, name string) int32 {
	d.record("UniformLocation(%d, %s)", prog, name)
	p, ok := d.programs[prog]
	if !ok {
		return -1
	}
	loc, ok := p.locations[name]
	if !ok {
		return -1
	}
	return loc
}

func (d *Device) setUniform(kind string, loc int32, v any) {
	d.record("%s(%d, %v)", kind, loc, v)
	if p, ok := d.programs[d.current]; ok {
		p.values[loc] = v
	}
}

func (d *Device) Uniform1i(loc int32, v int32)            { d.setUniform("Uniform1i", loc, v) }
func (d *Device) Uniform1f(loc int32, v float32)          { d.setUniform("Uniform1f", loc, v) }
func (d *Device) Uniform2f(loc int32, v mgl32.Vec2)       { d.setUniform("Uniform2f", loc, v) }
func (d *Device) Uniform3f(loc int32, v mgl32.Vec3)       { d.setUniform("Uniform3f", loc, v) }
func (d *Device) Uniform4f(loc int32, v mgl32.Vec4)       { d.setUniform("Uniform4f", loc, v) }
func (d *Device) UniformMatrix3f(loc int32, m mgl32.Mat3) { d.setUniform("UniformMatrix3f", loc, m) }
func (d *Device) UniformMatrix4f(loc int32, m mgl32.Mat4) { d.setUniform("UniformMatrix4f", loc, m) }

// Uniform returns the value last uploaded to the named uniform of prog.
func (d *Device) Uniform(prog uint32, name string) (any, bool) {
	p, ok := d.programs[prog]
	if !ok {
		return nil, false
	}
	loc, ok := p.locations[name]
	if !ok {
		return nil, false
	}
	v, ok := p.values[loc]
	return v, ok
}

// Uniforms returns every uploaded value of prog keyed by uniform name.
func (d *Device) Uniforms(prog uint32) map[string]any {
	out := make(map[string]any)
	p, ok := d.programs[prog]
	if !ok {
		return out
	}
	for name, loc := range p.locations {
		if v, ok := p.values[loc]; ok {
			out[name] = v
		}
	}
	return out
}

func (d *Device) GenTexture() uint32 {
	return d.gen("Texture")
}

func (d *Device) DeleteTexture(id uint32) {
	d.record("DeleteTexture(%d)", id)
	delete(d.textures, id)
	for u, t := range d.units {
		if t == id {
			delete(d.units, u)
		}
	}
}

func (d *Device) BindTexture(unit uint32, id uint32) {
	d.record("BindTexture(%d, %d)", unit, id)
	d.unit = unit
	d.units[unit] = id
}

func (d *Device) TexImage2D(width, height int32, format gfx.TextureFormat, pixels []byte) {
	id := d.units[d.unit]
	d.record("TexImage2D(%dx%d, %s) -> %d", width, height, format, id)
	d.textures[id] = &Texture{Width: width, Height: height, Format: format, Pixels: append([]byte(nil), pixels...)}
}

// Texture returns the stored state of texture id.
func (d *Device) Texture(id uint32) (*Texture, bool) {
	t, ok := d.textures[id]
	return t, ok
}

func (d *Device) ClearColor(r, g, b, a float32) {
	d.record("ClearColor(%g, %g, %g, %g)", r, g, b, a)
	d.clearColor = [4]float32{r, g, b, a}
}

func (d *Device) Clear(mask gfx.ClearMask) {
	var planes []string
	if mask&gfx.ColorBufferBit != 0 {
		planes = append(planes, "color")
	}
	if mask&gfx.DepthBufferBit != 0 {
		planes = append(planes, "depth")
	}
	d.record("Clear(%s)", strings.Join(planes, "|"))
}

func (d *Device) Viewport(x, y, width, height int32) {
	d.record("Viewport(%d, %d, %d, %d)", x, y, width, height)
	d.viewport = [4]int32{x, y, width, height}
}

func (d *Device) SetDepthTest(enabled bool) {
	d.record("SetDepthTest(%t)", enabled)
	d.depthTest = enabled
}

func (d *Device) DrawElements(count int32) {
	d.record("DrawElements(%d)", count)
	d.draws = append(d.draws, Draw{Count: count, VertexArray: d.vertexArray, Program: d.current})
}

// Draws returns every DrawElements call so far.
func (d *Device) Draws() []Draw { return append([]Draw(nil), d.draws...) }

func (d *Device) ClearColorValue() [4]float32 { return d.clearColor }

func (d *Device) ViewportValue() [4]int32 { return d.viewport }

// ErrInit is a ready-made InitErr for tests of initialization failure.
var ErrInit = errors.New("gfxtest: no current context")

var _ gfx.Device = (*Device)(nil)
