package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"render-sandbox/core"
	"render-sandbox/internal/gfx"
)

// ApplyCamera uploads the view-projection matrix and eye position.
func ApplyCamera(shader *gfx.Shader, cam *Camera) error {
	u := uniformWriter{shader: shader}
	u.mat4("u_ViewProjection", cam.ViewProjection())
	u.vec3("u_ViewPos", cam.Position())
	return u.err
}

// ApplyModel uploads a model matrix and the normal matrix derived from it.
func ApplyModel(shader *gfx.Shader, model mgl32.Mat4) error {
	u := uniformWriter{shader: shader}
	u.mat4("u_Model", model)
	u.do(func() error { return shader.SetMat3("u_NormalMatrix", NormalMatrix(model)) })
	return u.err
}

// NormalMatrix is the inverse transpose of the model matrix's upper 3x3.
func NormalMatrix(model mgl32.Mat4) mgl32.Mat3 {
	return model.Mat3().Inv().Transpose()
}

// uniformWriter keeps the first error and skips every later call.
type uniformWriter struct {
	shader *gfx.Shader
	err    error
}

func (u *uniformWriter) do(f func() error) {
	if u.err == nil {
		u.err = f()
	}
}

func (u *uniformWriter) int(name string, v int32) {
	u.do(func() error { return u.shader.SetInt(name, v) })
}

func (u *uniformWriter) bool(name string, v bool) {
	u.do(func() error { return u.shader.SetBool(name, v) })
}

func (u *uniformWriter) float(name string, v float32) {
	u.do(func() error { return u.shader.SetFloat(name, v) })
}

func (u *uniformWriter) vec3(name string, v mgl32.Vec3) {
	u.do(func() error { return u.shader.SetFloat3(name, v) })
}

func (u *uniformWriter) color(name string, c core.Color) {
	u.vec3(name, c.Vec3())
}

func (u *uniformWriter) mat4(name string, m mgl32.Mat4) {
	u.do(func() error { return u.shader.SetMat4(name, m) })
}

func (u *uniformWriter) attenuation(prefix string, a Attenuation) {
	u.float(prefix+"constant", a.Constant)
	u.float(prefix+"linear", a.Linear)
	u.float(prefix+"quadratic", a.Quadratic)
}
