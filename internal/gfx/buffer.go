package gfx

import (
	"fmt"
	"unsafe"
)

// refs counts owners of a shared GPU object. The creator holds the first
// reference; the object is freed when the last one is dropped.
type refs struct {
	n int
}

func (r *refs) retain() { r.n++ }

// release returns true when the caller dropped the last reference.
func (r *refs) release() (bool, error) {
	if r.n <= 0 {
		return false, ErrReleased
	}
	r.n--
	return r.n == 0, nil
}

// VertexBuffer owns one GPU buffer of vertex records. The data is uploaded
// once at creation.
type VertexBuffer struct {
	ctx    *Context
	id     uint32
	size   int
	layout BufferLayout
	refs   refs
	// attached is set once an array has registered attributes from layout.
	attached bool
}

// NewVertexBuffer allocates a buffer and uploads data verbatim.
func NewVertexBuffer(ctx *Context, data []byte) (*VertexBuffer, error) {
	if err := ctx.checkReady(); err != nil {
		return nil, err
	}
	id := ctx.dev.GenBuffer()
	if id == 0 {
		return nil, fmt.Errorf("%w: failed to allocate vertex buffer", ErrDevice)
	}

	vb := &VertexBuffer{ctx: ctx, id: id, size: len(data), refs: refs{n: 1}}
	vb.Bind()
	ctx.dev.BufferData(ArrayBuffer, data)

	ctx.logger().Debug("vertex buffer created", "id", id, "bytes", len(data))
	return vb, nil
}

// NewVertexBufferFloat32 uploads vertices in host byte order.
func NewVertexBufferFloat32(ctx *Context, vertices []float32) (*VertexBuffer, error) {
	return NewVertexBuffer(ctx, float32Bytes(vertices))
}

func (vb *VertexBuffer) ID() uint32 { return vb.id }

// Size is the uploaded payload in bytes.
func (vb *VertexBuffer) Size() int { return vb.size }

func (vb *VertexBuffer) Bind() {
	vb.ctx.bindBuffer(ArrayBuffer, vb.id)
}

func (vb *VertexBuffer) Unbind() {
	vb.ctx.bindBuffer(ArrayBuffer, 0)
}

// SetLayout attaches the record layout. The layout is fixed once the buffer
// has been added to a VertexArray.
func (vb *VertexBuffer) SetLayout(layout BufferLayout) error {
	if vb.attached {
		return fmt.Errorf("vertex buffer %d: %w", vb.id, ErrLayoutLocked)
	}
	vb.layout = layout
	return nil
}

func (vb *VertexBuffer) Layout() BufferLayout { return vb.layout }

// ReadBack returns the bytes the device holds for this buffer.
func (vb *VertexBuffer) ReadBack() ([]byte, error) {
	if vb.id == 0 {
		return nil, ErrReleased
	}
	vb.Bind()
	return vb.ctx.dev.GetBufferData(ArrayBuffer, vb.size), nil
}

// Retain adds an owner.
func (vb *VertexBuffer) Retain() { vb.refs.retain() }

// Release drops one owner and frees the GPU buffer with the last one.
func (vb *VertexBuffer) Release() error {
	last, err := vb.refs.release()
	if err != nil {
		return fmt.Errorf("vertex buffer %d: %w", vb.id, err)
	}
	if last {
		vb.ctx.deleteBuffer(vb.id)
		vb.ctx.logger().Debug("vertex buffer deleted", "id", vb.id)
		vb.id = 0
	}
	return nil
}

// IndexBuffer owns one GPU buffer of uint32 indices.
type IndexBuffer struct {
	ctx   *Context
	id    uint32
	count int32
	refs  refs
}

func NewIndexBuffer(ctx *Context, indices []uint32) (*IndexBuffer, error) {
	if err := ctx.checkReady(); err != nil {
		return nil, err
	}
	id := ctx.dev.GenBuffer()
	if id == 0 {
		return nil, fmt.Errorf("%w: failed to allocate index buffer", ErrDevice)
	}

	ib := &IndexBuffer{ctx: ctx, id: id, count: int32(len(indices)), refs: refs{n: 1}}
	// Upload through the array target: an element binding needs a bound
	// vertex array and would attach this buffer to whichever one that is.
	ctx.bindBuffer(ArrayBuffer, id)
	ctx.dev.BufferData(ArrayBuffer, uint32Bytes(indices))

	ctx.logger().Debug("index buffer created", "id", id, "count", len(indices))
	return ib, nil
}

func (ib *IndexBuffer) ID() uint32 { return ib.id }

// Count is the number of indices.
func (ib *IndexBuffer) Count() int32 { return ib.count }

// Bind attaches the buffer to the element target of the bound vertex array.
func (ib *IndexBuffer) Bind() {
	ib.ctx.bindBuffer(ElementArrayBuffer, ib.id)
}

func (ib *IndexBuffer) Unbind() {
	ib.ctx.bindBuffer(ElementArrayBuffer, 0)
}

// ReadBack returns the bytes the device holds for this buffer.
func (ib *IndexBuffer) ReadBack() ([]byte, error) {
	if ib.id == 0 {
		return nil, ErrReleased
	}
	ib.ctx.bindBuffer(ArrayBuffer, ib.id)
	return ib.ctx.dev.GetBufferData(ArrayBuffer, int(ib.count)*4), nil
}

func (ib *IndexBuffer) Retain() { ib.refs.retain() }

func (ib *IndexBuffer) Release() error {
	last, err := ib.refs.release()
	if err != nil {
		return fmt.Errorf("index buffer %d: %w", ib.id, err)
	}
	if last {
		ib.ctx.deleteBuffer(ib.id)
		ib.ctx.logger().Debug("index buffer deleted", "id", ib.id)
		ib.id = 0
	}
	return nil
}

func float32Bytes(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*4)
}

func uint32Bytes(v []uint32) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*4)
}
