package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func unitBox(center mgl32.Vec3) AABB {
	h := mgl32.Vec3{0.5, 0.5, 0.5}
	return AABB{Min: center.Sub(h), Max: center.Add(h)}
}

func TestFrustumIntersects(t *testing.T) {
	cam := NewCamera(60, 1, 0.1, 50)
	f := FrustumFromMatrix(cam.ViewProjection())

	tests := []struct {
		name   string
		box    AABB
		inside bool
	}{
		{"at target", unitBox(mgl32.Vec3{}), true},
		{"behind eye", unitBox(mgl32.Vec3{0, 0, 10}), false},
		{"far left", unitBox(mgl32.Vec3{-50, 0, 0}), false},
		{"above", unitBox(mgl32.Vec3{0, 40, 0}), false},
		{"past far plane", unitBox(mgl32.Vec3{0, 0, -60}), false},
		{"straddling near plane", AABB{Min: mgl32.Vec3{-1, -1, 3}, Max: mgl32.Vec3{1, 1, 6}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.inside, f.Intersects(tt.box))
		})
	}

	for _, p := range f.Planes {
		assert.InDelta(t, 1, p.Normal.Len(), 1e-5)
	}
}

func TestAABBTransform(t *testing.T) {
	box := unitBox(mgl32.Vec3{})
	moved := box.Transform(mgl32.Translate3D(2, 0, 0).Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(45))))

	assert.InDelta(t, 2-0.7071, moved.Min.X(), 1e-3)
	assert.InDelta(t, 2+0.7071, moved.Max.X(), 1e-3)
	assert.InDelta(t, -0.5, moved.Min.Y(), 1e-6)
}

func TestMeshBounds(t *testing.T) {
	b := Cube(2).Bounds()
	assert.Equal(t, mgl32.Vec3{-1, -1, -1}, b.Min)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, b.Max)

	tri := VertexColorTriangles().Bounds()
	assert.Equal(t, mgl32.Vec3{-0.5, -0.7, 0.1}, tri.Min)
	assert.Equal(t, mgl32.Vec3{0.8, 0.7, 0.2}, tri.Max)

	assert.Equal(t, AABB{}, NewMesh("empty", LitLayout).Bounds())
}
