package gfx

import (
	"fmt"

	"render-sandbox/core"
)

// RenderAPI issues frame-level commands against whatever is currently bound
// on its context.
type RenderAPI struct {
	ctx       *Context
	depthTest bool
}

func NewRenderAPI(ctx *Context) *RenderAPI {
	return &RenderAPI{ctx: ctx}
}

// Init loads the graphics backend. A failure here is fatal for the caller:
// nothing can be created or drawn without it.
func (r *RenderAPI) Init() error {
	return r.ctx.Init()
}

func (r *RenderAPI) Context() *Context { return r.ctx }

func (r *RenderAPI) SetClearColor(c core.Color) {
	r.ctx.dev.ClearColor(c.R, c.G, c.B, c.A)
}

// Clear clears the colour buffer, and the depth buffer when depth testing
// is on.
func (r *RenderAPI) Clear() {
	mask := ColorBufferBit
	if r.depthTest {
		mask |= DepthBufferBit
	}
	r.ctx.dev.Clear(mask)
}

func (r *RenderAPI) SetViewport(width, height int) {
	r.ctx.dev.Viewport(0, 0, int32(width), int32(height))
}

func (r *RenderAPI) EnableDepthTest(enabled bool) {
	r.ctx.dev.SetDepthTest(enabled)
	r.depthTest = enabled
}

// DrawIndexed draws every index of va's element buffer. va must be bound
// and its element binding must still be that buffer. Otherwise nothing
// reaches the device.
func (r *RenderAPI) DrawIndexed(va *VertexArray) error {
	if err := r.ctx.checkReady(); err != nil {
		return err
	}
	count, err := va.ElementCount()
	if err != nil {
		return fmt.Errorf("draw indexed: %w", err)
	}
	if r.ctx.BoundVertexArray() != va.id || va.id == 0 {
		return fmt.Errorf("draw indexed: vertex array %d: %w", va.id, ErrVertexArrayNotBound)
	}
	if bound := r.ctx.BoundBuffer(ElementArrayBuffer); bound != va.elementBuffer.id {
		return fmt.Errorf("draw indexed: vertex array %d has buffer %d bound, want %d: %w",
			va.id, bound, va.elementBuffer.id, ErrElementBufferStale)
	}
	r.ctx.dev.DrawElements(count)
	return nil
}
