package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// VertexColorTriangles returns two overlapping triangles with per-vertex
// colours in ColorLayout.
func VertexColorTriangles() *Mesh {
	m := NewMesh("VertexColor", ColorLayout)
	m.Vertices = []float32{
		-0.5, -0.5, 0.1, 1.0, 0.0, 0.0, 1.0,
		0.0, 0.5, 0.1, 0.0, 0.0, 1.0, 1.0,
		0.5, -0.5, 0.1, 0.0, 1.0, 0.0, 1.0,

		0.4, -0.7, 0.2, 0.0, 1.0, 1.0, 1.0,
		0.0, 0.7, 0.2, 0.0, 1.0, 1.0, 1.0,
		0.8, -0.5, 0.2, 0.0, 1.0, 1.0, 1.0,
	}
	m.Indices = []uint32{0, 1, 2, 3, 4, 5}
	return m
}

// cubeFaces lists each face's normal and the two axes spanning it.
var cubeFaces = [6]struct{ normal, u, v mgl32.Vec3 }{
	{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
	{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
	{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
}

// Cube returns an axis-aligned cube of edge length size centred on the
// origin, with per-face normals and UVs in LitLayout.
func Cube(size float32) *Mesh {
	m := NewMesh("Cube", LitLayout)
	h := size / 2
	corners := [4]mgl32.Vec2{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for _, f := range cubeFaces {
		var idx [4]uint32
		for i, c := range corners {
			pos := f.normal.Add(f.u.Mul(c[0])).Add(f.v.Mul(c[1])).Mul(h)
			uv := mgl32.Vec2{(c[0] + 1) / 2, (c[1] + 1) / 2}
			idx[i] = m.AddLitVertex(pos, f.normal, uv)
		}
		m.Indices = append(m.Indices, idx[0], idx[1], idx[2], idx[2], idx[3], idx[0])
	}
	return m
}

// Plane returns a size×size quad in the XZ plane facing +Y.
func Plane(size float32) *Mesh {
	m := NewMesh("Plane", LitLayout)
	h := size / 2
	up := mgl32.Vec3{0, 1, 0}
	a := m.AddLitVertex(mgl32.Vec3{-h, 0, h}, up, mgl32.Vec2{0, 0})
	b := m.AddLitVertex(mgl32.Vec3{h, 0, h}, up, mgl32.Vec2{size, 0})
	c := m.AddLitVertex(mgl32.Vec3{h, 0, -h}, up, mgl32.Vec2{size, size})
	d := m.AddLitVertex(mgl32.Vec3{-h, 0, -h}, up, mgl32.Vec2{0, size})
	m.Indices = []uint32{a, b, c, c, d, a}
	return m
}

// Sphere returns a UV sphere. segments is clamped to at least 3 and rings
// to at least 2.
func Sphere(radius float32, segments, rings int) *Mesh {
	segments = max(segments, 3)
	rings = max(rings, 2)
	m := NewMesh("Sphere", LitLayout)

	for ring := 0; ring <= rings; ring++ {
		phi := float64(ring) * math.Pi / float64(rings)
		sinPhi, cosPhi := float32(math.Sin(phi)), float32(math.Cos(phi))
		for seg := 0; seg <= segments; seg++ {
			theta := float64(seg) * 2 * math.Pi / float64(segments)
			sinTheta, cosTheta := float32(math.Sin(theta)), float32(math.Cos(theta))

			normal := mgl32.Vec3{sinPhi * cosTheta, cosPhi, sinPhi * sinTheta}
			uv := mgl32.Vec2{float32(seg) / float32(segments), float32(ring) / float32(rings)}
			m.AddLitVertex(normal.Mul(radius), normal, uv)
		}
	}

	for ring := 0; ring < rings; ring++ {
		for seg := 0; seg < segments; seg++ {
			current := uint32(ring*(segments+1) + seg)
			next := current + uint32(segments+1)
			m.Indices = append(m.Indices, current, next, current+1, current+1, next, next+1)
		}
	}
	return m
}
