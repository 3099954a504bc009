package gfx

import "fmt"

// ShaderDataType is the semantic type of one vertex attribute.
type ShaderDataType uint8

const (
	None ShaderDataType = iota
	Float
	Float2
	Float3
	Float4
	Int
	Int2
	Int3
	Int4
	Bool
)

var shaderDataTypeNames = [...]string{"None", "Float", "Float2", "Float3", "Float4", "Int", "Int2", "Int3", "Int4", "Bool"}

func (t ShaderDataType) String() string {
	if int(t) < len(shaderDataTypeNames) {
		return shaderDataTypeNames[t]
	}
	return fmt.Sprintf("ShaderDataType(%d)", t)
}

// Size returns the attribute's size in bytes. Invalid types report 0.
func (t ShaderDataType) Size() int {
	switch t {
	case Bool:
		return 1
	case Float, Int:
		return 4
	case Float2, Int2:
		return 4 * 2
	case Float3, Int3:
		return 4 * 3
	case Float4, Int4:
		return 4 * 4
	}
	return 0
}

func (t ShaderDataType) ComponentCount() int32 {
	switch t {
	case Float, Int, Bool:
		return 1
	case Float2, Int2:
		return 2
	case Float3, Int3:
		return 3
	case Float4, Int4:
		return 4
	}
	return 0
}

// IsInteger reports whether the attribute is read by the shader as an
// integer rather than converted to float.
func (t ShaderDataType) IsInteger() bool {
	switch t {
	case Int, Int2, Int3, Int4, Bool:
		return true
	}
	return false
}

// BufferElement is one named attribute of a vertex record.
type BufferElement struct {
	Name       string
	Type       ShaderDataType
	Normalized bool
}

// BufferLayout is the ordered attribute list of a vertex buffer. Offsets and
// the stride are derived from the element sizes in declaration order.
type BufferLayout struct {
	elements []BufferElement
	offsets  []int
	stride   int
}

func NewBufferLayout(elements ...BufferElement) BufferLayout {
	l := BufferLayout{
		elements: append([]BufferElement(nil), elements...),
		offsets:  make([]int, len(elements)),
	}
	for i, e := range l.elements {
		l.offsets[i] = l.stride
		l.stride += e.Type.Size()
	}
	return l
}

func (l BufferLayout) Len() int { return len(l.elements) }

func (l BufferLayout) Empty() bool { return len(l.elements) == 0 }

// Stride is the byte distance between consecutive records.
func (l BufferLayout) Stride() int { return l.stride }

// Offset returns the byte offset of element i inside a record.
func (l BufferLayout) Offset(i int) int { return l.offsets[i] }

func (l BufferLayout) Element(i int) BufferElement { return l.elements[i] }

// Elements returns a copy of the attribute list.
func (l BufferLayout) Elements() []BufferElement {
	return append([]BufferElement(nil), l.elements...)
}

// Validate rejects layouts holding an attribute without a known type.
func (l BufferLayout) Validate() error {
	for i, e := range l.elements {
		if e.Type.Size() == 0 {
			return fmt.Errorf("%w: attribute %d (%q) has type %s", ErrInvalidLayout, i, e.Name, e.Type)
		}
	}
	return nil
}
