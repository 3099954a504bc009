package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a perspective camera that orbits a target point. It only
// provides matrices and vectors for uniforms.
type Camera struct {
	FOV         float32 // vertical field of view in degrees
	AspectRatio float32
	NearPlane   float32
	FarPlane    float32

	target   mgl32.Vec3
	up       mgl32.Vec3
	distance float32
	yaw      float32 // degrees around Up
	pitch    float32 // degrees above the horizon

	view     mgl32.Mat4
	proj     mgl32.Mat4
	viewProj mgl32.Mat4
	dirty    bool
}

const maxPitch = 89

func NewCamera(fov, aspectRatio, nearPlane, farPlane float32) *Camera {
	return &Camera{
		up:          mgl32.Vec3{0, 1, 0},
		FOV:         fov,
		AspectRatio: aspectRatio,
		NearPlane:   nearPlane,
		FarPlane:    farPlane,
		distance:    5,
		dirty:       true,
	}
}

func (c *Camera) UpdateAspectRatio(width, height float32) {
	if height > 0 {
		c.AspectRatio = width / height
		c.dirty = true
	}
}

// SetTarget moves the point the camera orbits and looks at.
func (c *Camera) SetTarget(target mgl32.Vec3) {
	c.target = target
	c.dirty = true
}

func (c *Camera) Target() mgl32.Vec3 { return c.target }

// SetOrbit places the camera distance units from the target at the given
// yaw and pitch, both in degrees.
func (c *Camera) SetOrbit(distance, yaw, pitch float32) {
	c.distance = distance
	c.yaw = yaw
	c.pitch = mgl32.Clamp(pitch, -maxPitch, maxPitch)
	c.dirty = true
}

// Orbit rotates the camera around the target.
func (c *Camera) Orbit(deltaYaw, deltaPitch float32) {
	c.SetOrbit(c.distance, c.yaw+deltaYaw, c.pitch+deltaPitch)
}

// Zoom moves the camera along its view direction, never through the target.
func (c *Camera) Zoom(delta float32) {
	d := c.distance - delta
	if d < c.NearPlane*2 {
		d = c.NearPlane * 2
	}
	c.SetOrbit(d, c.yaw, c.pitch)
}

func (c *Camera) Position() mgl32.Vec3 {
	yaw := float64(mgl32.DegToRad(c.yaw))
	pitch := float64(mgl32.DegToRad(c.pitch))
	offset := mgl32.Vec3{
		float32(math.Cos(pitch) * math.Sin(yaw)),
		float32(math.Sin(pitch)),
		float32(math.Cos(pitch) * math.Cos(yaw)),
	}
	return c.target.Add(offset.Mul(c.distance))
}

// Front is the unit view direction.
func (c *Camera) Front() mgl32.Vec3 {
	return c.target.Sub(c.Position()).Normalize()
}

func (c *Camera) View() mgl32.Mat4 {
	c.update()
	return c.view
}

func (c *Camera) Projection() mgl32.Mat4 {
	c.update()
	return c.proj
}

func (c *Camera) ViewProjection() mgl32.Mat4 {
	c.update()
	return c.viewProj
}

func (c *Camera) update() {
	if !c.dirty {
		return
	}
	c.view = mgl32.LookAtV(c.Position(), c.target, c.up)
	c.proj = mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
	c.viewProj = c.proj.Mul4(c.view)
	c.dirty = false
}
