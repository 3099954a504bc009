package scene

import "github.com/go-gl/mathgl/mgl32"

// FrustumPlane is the half-space Normal·p + D >= 0, normal pointing inside.
type FrustumPlane struct {
	Normal mgl32.Vec3
	D      float32
}

// DistanceTo is the signed distance from pt; positive is inside.
func (p FrustumPlane) DistanceTo(pt mgl32.Vec3) float32 {
	return p.Normal.Dot(pt) + p.D
}

// Frustum holds the six clip planes: left, right, bottom, top, near, far.
type Frustum struct {
	Planes [6]FrustumPlane
}

// FrustumFromMatrix extracts normalized planes from a view-projection
// matrix (Gribb/Hartmann).
func FrustumFromMatrix(vp mgl32.Mat4) Frustum {
	r0, r1, r2, r3 := vp.Row(0), vp.Row(1), vp.Row(2), vp.Row(3)
	var f Frustum
	for i, v := range [6]mgl32.Vec4{
		r3.Add(r0), r3.Sub(r0),
		r3.Add(r1), r3.Sub(r1),
		r3.Add(r2), r3.Sub(r2),
	} {
		f.Planes[i] = normalizePlane(v)
	}
	return f
}

func normalizePlane(v mgl32.Vec4) FrustumPlane {
	n := v.Vec3()
	l := n.Len()
	if l == 0 {
		return FrustumPlane{}
	}
	return FrustumPlane{Normal: n.Mul(1 / l), D: v.W() / l}
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max mgl32.Vec3
}

// Intersects is false only when box lies entirely outside one plane.
func (f *Frustum) Intersects(box AABB) bool {
	for _, p := range f.Planes {
		// corner furthest along the plane normal
		pv := box.Max
		for c := 0; c < 3; c++ {
			if p.Normal[c] < 0 {
				pv[c] = box.Min[c]
			}
		}
		if p.DistanceTo(pv) < 0 {
			return false
		}
	}
	return true
}

// Transform returns the box enclosing all eight transformed corners.
func (box AABB) Transform(m mgl32.Mat4) AABB {
	var out AABB
	for i := 0; i < 8; i++ {
		corner := box.Min
		for c := 0; c < 3; c++ {
			if i&(1<<c) != 0 {
				corner[c] = box.Max[c]
			}
		}
		wp := m.Mul4x1(corner.Vec4(1)).Vec3()
		if i == 0 {
			out = AABB{Min: wp, Max: wp}
			continue
		}
		out = out.extend(wp)
	}
	return out
}

func (box AABB) extend(p mgl32.Vec3) AABB {
	for c := 0; c < 3; c++ {
		box.Min[c] = min(box.Min[c], p[c])
		box.Max[c] = max(box.Max[c], p[c])
	}
	return box
}

// Bounds returns the local-space box of the mesh positions, which must be
// the first three floats of every record.
func (m *Mesh) Bounds() AABB {
	stride := m.Layout.Stride() / 4
	if stride < 3 || len(m.Vertices) < 3 {
		return AABB{}
	}
	first := mgl32.Vec3{m.Vertices[0], m.Vertices[1], m.Vertices[2]}
	box := AABB{Min: first, Max: first}
	for i := stride; i+2 < len(m.Vertices); i += stride {
		box = box.extend(mgl32.Vec3{m.Vertices[i], m.Vertices[i+1], m.Vertices[i+2]})
	}
	return box
}
