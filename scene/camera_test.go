package scene

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestCameraDefaultPosition(t *testing.T) {
	cam := NewCamera(45, 16.0/9.0, 0.1, 100)

	pos := cam.Position()
	expected := mgl32.Vec3{0, 0, 5}
	if !pos.ApproxEqual(expected) {
		t.Errorf("Position: expected %v, got %v", expected, pos)
	}

	front := cam.Front()
	if !front.ApproxEqual(mgl32.Vec3{0, 0, -1}) {
		t.Errorf("Front: expected -Z, got %v", front)
	}
}

func TestCameraOrbitClampsPitch(t *testing.T) {
	cam := NewCamera(45, 1, 0.1, 100)
	cam.SetOrbit(2, 90, 120)

	pos := cam.Position()
	if pos.Len() < 1.99 || pos.Len() > 2.01 {
		t.Errorf("distance: expected 2, got %v", pos.Len())
	}
	// pitch is clamped to 89 degrees so the eye never crosses the pole
	if pos.Y() >= 2 || pos.Y() < 1.99 {
		t.Errorf("clamped pitch: unexpected height %v", pos.Y())
	}
}

func TestCameraViewProjectionMapsTarget(t *testing.T) {
	cam := NewCamera(60, 1, 0.1, 100)
	cam.SetTarget(mgl32.Vec3{1, 2, 3})
	cam.Orbit(30, 20)

	clip := cam.ViewProjection().Mul4x1(mgl32.Vec4{1, 2, 3, 1})
	ndc := clip.Vec3().Mul(1 / clip.W())
	if math.Abs(float64(ndc.X())) > 1e-4 || math.Abs(float64(ndc.Y())) > 1e-4 {
		t.Errorf("target should project to the screen centre, got %v", ndc)
	}
	if ndc.Z() <= -1 || ndc.Z() >= 1 {
		t.Errorf("target should lie between the clip planes, got depth %v", ndc.Z())
	}
}

func TestCameraAspectRatioInvalidatesProjection(t *testing.T) {
	cam := NewCamera(45, 1, 0.1, 100)
	before := cam.Projection()

	cam.UpdateAspectRatio(1920, 1080)
	after := cam.Projection()
	if before == after {
		t.Error("projection should change with the aspect ratio")
	}

	cam.UpdateAspectRatio(800, 0)
	if cam.Projection() != after {
		t.Error("a zero height must not change the projection")
	}
}

func TestCameraZoomStopsBeforeTarget(t *testing.T) {
	cam := NewCamera(45, 1, 0.5, 100)
	cam.Zoom(100)

	if d := cam.Position().Sub(cam.Target()).Len(); d < 0.99 {
		t.Errorf("zoom should stop at twice the near plane, got distance %v", d)
	}
}
