package gfx

import (
	"fmt"
	"log/slog"

	"render-sandbox/core"
)

// Context mirrors the binding state of one graphics context. There is one
// writer: every wrapper routes its Bind calls through here before reaching
// the Device, so the recorded state always matches what the backend saw.
type Context struct {
	dev   Device
	ready bool

	program     uint32
	vertexArray uint32
	arrayBuffer uint32
	// Element buffer bindings are vertex array state.
	elementBuffers map[uint32]uint32
	textures       map[uint32]uint32
}

func NewContext(dev Device) *Context {
	return &Context{
		dev:            dev,
		elementBuffers: make(map[uint32]uint32),
		textures:       make(map[uint32]uint32),
	}
}

// Init loads the backend. It must run once, after the window has made its
// context current and before any GPU object is created.
func (c *Context) Init() error {
	if c.ready {
		return nil
	}
	if err := c.dev.Init(); err != nil {
		return fmt.Errorf("%w: failed to initialize graphics context: %v", ErrDevice, err)
	}
	c.ready = true
	c.logger().Info("graphics context ready", "version", c.dev.Version())
	return nil
}

func (c *Context) Ready() bool { return c.ready }

func (c *Context) Device() Device { return c.dev }

func (c *Context) BoundProgram() uint32 { return c.program }

func (c *Context) BoundVertexArray() uint32 { return c.vertexArray }

// BoundBuffer reports the buffer attached at target. The element array
// binding is the one recorded for the currently bound vertex array.
func (c *Context) BoundBuffer(target BufferTarget) uint32 {
	if target == ElementArrayBuffer {
		return c.elementBuffers[c.vertexArray]
	}
	return c.arrayBuffer
}

func (c *Context) BoundTexture(unit uint32) uint32 { return c.textures[unit] }

func (c *Context) checkReady() error {
	if !c.ready {
		return ErrContextNotReady
	}
	return nil
}

func (c *Context) bindBuffer(target BufferTarget, id uint32) {
	c.dev.BindBuffer(target, id)
	if target == ElementArrayBuffer {
		c.elementBuffers[c.vertexArray] = id
		return
	}
	c.arrayBuffer = id
}

func (c *Context) bindVertexArray(id uint32) {
	c.dev.BindVertexArray(id)
	c.vertexArray = id
}

func (c *Context) useProgram(id uint32) {
	c.dev.UseProgram(id)
	c.program = id
}

func (c *Context) bindTexture(unit, id uint32) {
	c.dev.BindTexture(unit, id)
	c.textures[unit] = id
}

// deleteBuffer drops the buffer and clears the bindings the backend clears
// implicitly: the array binding and the element binding of the bound array.
func (c *Context) deleteBuffer(id uint32) {
	c.dev.DeleteBuffer(id)
	if c.arrayBuffer == id {
		c.arrayBuffer = 0
	}
	if c.elementBuffers[c.vertexArray] == id {
		delete(c.elementBuffers, c.vertexArray)
	}
}

func (c *Context) deleteVertexArray(id uint32) {
	c.dev.DeleteVertexArray(id)
	delete(c.elementBuffers, id)
	if c.vertexArray == id {
		c.vertexArray = 0
	}
}

func (c *Context) deleteProgram(id uint32) {
	c.dev.DeleteProgram(id)
	if c.program == id {
		c.program = 0
	}
}

func (c *Context) deleteTexture(id uint32) {
	c.dev.DeleteTexture(id)
	for unit, bound := range c.textures {
		if bound == id {
			delete(c.textures, unit)
		}
	}
}

func (c *Context) logger() *slog.Logger {
	return core.Logger().With("component", "gfx")
}
