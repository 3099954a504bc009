package gfx

import "fmt"

// VertexArray binds vertex buffers and one index buffer together with the
// attribute metadata derived from each buffer's layout.
type VertexArray struct {
	ctx      *Context
	id       uint32
	nextSlot uint32

	vertexBuffers []*VertexBuffer
	elementBuffer *IndexBuffer
}

func NewVertexArray(ctx *Context) (*VertexArray, error) {
	if err := ctx.checkReady(); err != nil {
		return nil, err
	}
	id := ctx.dev.GenVertexArray()
	if id == 0 {
		return nil, fmt.Errorf("%w: failed to allocate vertex array", ErrDevice)
	}
	return &VertexArray{ctx: ctx, id: id}, nil
}

func (va *VertexArray) ID() uint32 { return va.id }

func (va *VertexArray) Bind() {
	va.ctx.bindVertexArray(va.id)
}

func (va *VertexArray) Unbind() {
	va.ctx.bindVertexArray(0)
}

// AddVertexBuffer registers one attribute slot per layout element of vb,
// starting at the next free slot. Slots are never reused, so buffers added
// one after another get disjoint slot ranges. The array takes a reference
// on vb.
func (va *VertexArray) AddVertexBuffer(vb *VertexBuffer) error {
	if va.id == 0 || vb.id == 0 {
		return fmt.Errorf("add vertex buffer: %w", ErrReleased)
	}
	layout := vb.Layout()
	if layout.Empty() {
		return fmt.Errorf("add vertex buffer %d: %w", vb.id, ErrLayoutNotSet)
	}
	if err := layout.Validate(); err != nil {
		return fmt.Errorf("add vertex buffer %d: %w", vb.id, err)
	}

	va.Bind()
	vb.Bind()
	for i := 0; i < layout.Len(); i++ {
		e := layout.Element(i)
		va.ctx.dev.EnableVertexAttribArray(va.nextSlot)
		va.ctx.dev.VertexAttribPointer(va.nextSlot, VertexAttrib{
			Type:       e.Type,
			Normalized: e.Normalized,
			Stride:     int32(layout.Stride()),
			Offset:     layout.Offset(i),
		})
		va.ctx.logger().Debug("attribute registered",
			"vao", va.id, "slot", va.nextSlot, "name", e.Name, "type", e.Type, "offset", layout.Offset(i))
		va.nextSlot++
	}

	vb.attached = true
	vb.Retain()
	va.vertexBuffers = append(va.vertexBuffers, vb)
	return nil
}

// SetElementBuffer attaches ib, replacing the previous index buffer. The
// previous buffer only loses this array's reference.
func (va *VertexArray) SetElementBuffer(ib *IndexBuffer) error {
	if va.id == 0 || ib.id == 0 {
		return fmt.Errorf("set element buffer: %w", ErrReleased)
	}
	va.Bind()
	ib.Bind()

	ib.Retain()
	old := va.elementBuffer
	va.elementBuffer = ib
	if old != nil {
		if err := old.Release(); err != nil {
			return err
		}
	}
	return nil
}

func (va *VertexArray) VertexBuffers() []*VertexBuffer {
	return append([]*VertexBuffer(nil), va.vertexBuffers...)
}

// ElementBuffer returns nil until SetElementBuffer has been called.
func (va *VertexArray) ElementBuffer() *IndexBuffer { return va.elementBuffer }

// NextSlot is the attribute slot the next added attribute will take.
func (va *VertexArray) NextSlot() uint32 { return va.nextSlot }

// ElementCount returns the index count used for an indexed draw.
func (va *VertexArray) ElementCount() (int32, error) {
	if va.elementBuffer == nil {
		return 0, fmt.Errorf("vertex array %d: %w", va.id, ErrNoElementBuffer)
	}
	return va.elementBuffer.Count(), nil
}

// Release drops the array's buffer references and deletes the vertex array
// object. Buffers still referenced elsewhere stay alive.
func (va *VertexArray) Release() error {
	if va.id == 0 {
		return fmt.Errorf("vertex array: %w", ErrReleased)
	}
	var firstErr error
	for _, vb := range va.vertexBuffers {
		if err := vb.Release(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if va.elementBuffer != nil {
		if err := va.elementBuffer.Release(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	va.ctx.deleteVertexArray(va.id)
	va.id = 0
	va.vertexBuffers = nil
	va.elementBuffer = nil
	return firstErr
}
