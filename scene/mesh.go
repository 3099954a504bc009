package scene

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"render-sandbox/internal/gfx"
)

// LitLayout is the vertex layout of every mesh drawn by the Phong shader.
var LitLayout = gfx.NewBufferLayout(
	gfx.BufferElement{Name: "a_Position", Type: gfx.Float3},
	gfx.BufferElement{Name: "a_Normal", Type: gfx.Float3},
	gfx.BufferElement{Name: "a_TexCoord", Type: gfx.Float2},
)

// ColorLayout is the vertex layout of the vertex-colour shader.
var ColorLayout = gfx.NewBufferLayout(
	gfx.BufferElement{Name: "a_Position", Type: gfx.Float3},
	gfx.BufferElement{Name: "a_Color", Type: gfx.Float4},
)

var errEmptyMesh = errors.New("mesh has no vertices")

// Mesh is CPU-side geometry: interleaved float32 vertex records described
// by Layout, plus triangle indices.
type Mesh struct {
	Name     string
	Vertices []float32
	Indices  []uint32
	Layout   gfx.BufferLayout
}

func NewMesh(name string, layout gfx.BufferLayout) *Mesh {
	return &Mesh{Name: name, Layout: layout}
}

// VertexCount is the number of whole records in Vertices.
func (m *Mesh) VertexCount() int {
	if m.Layout.Stride() == 0 {
		return 0
	}
	return len(m.Vertices) * 4 / m.Layout.Stride()
}

// AddLitVertex appends one record in LitLayout order and returns its index.
func (m *Mesh) AddLitVertex(pos, normal mgl32.Vec3, uv mgl32.Vec2) uint32 {
	idx := uint32(m.VertexCount())
	m.Vertices = append(m.Vertices, pos[0], pos[1], pos[2], normal[0], normal[1], normal[2], uv[0], uv[1])
	return idx
}

// Validate checks that Vertices holds whole records and that every index
// refers to one of them.
func (m *Mesh) Validate() error {
	stride := m.Layout.Stride()
	if stride == 0 {
		return fmt.Errorf("mesh %q: %w", m.Name, gfx.ErrLayoutNotSet)
	}
	if len(m.Vertices) == 0 {
		return fmt.Errorf("mesh %q: %w", m.Name, errEmptyMesh)
	}
	if (len(m.Vertices)*4)%stride != 0 {
		return fmt.Errorf("mesh %q: %d floats is not a whole number of %d-byte records", m.Name, len(m.Vertices), stride)
	}
	n := uint32(m.VertexCount())
	for i, idx := range m.Indices {
		if idx >= n {
			return fmt.Errorf("mesh %q: index %d at position %d out of range (%d vertices)", m.Name, idx, i, n)
		}
	}
	return nil
}

// Upload creates a vertex array holding the mesh. The returned array owns
// both buffers; releasing it frees them.
func (m *Mesh) Upload(ctx *gfx.Context) (*gfx.VertexArray, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	va, err := gfx.NewVertexArray(ctx)
	if err != nil {
		return nil, fmt.Errorf("mesh %q: %w", m.Name, err)
	}
	// fail releases the array and reports err together with any release
	// error.
	fail := func(err error) (*gfx.VertexArray, error) {
		return nil, fmt.Errorf("mesh %q: %w", m.Name, errors.Join(err, va.Release()))
	}

	vb, err := gfx.NewVertexBufferFloat32(ctx, m.Vertices)
	if err != nil {
		return fail(err)
	}
	if err := vb.SetLayout(m.Layout); err != nil {
		return fail(errors.Join(err, vb.Release()))
	}
	// The array holds its own reference from here on.
	if err := errors.Join(va.AddVertexBuffer(vb), vb.Release()); err != nil {
		return fail(err)
	}

	ib, err := gfx.NewIndexBuffer(ctx, m.Indices)
	if err != nil {
		return fail(err)
	}
	if err := errors.Join(va.SetElementBuffer(ib), ib.Release()); err != nil {
		return fail(err)
	}

	va.Unbind()
	return va, nil
}
