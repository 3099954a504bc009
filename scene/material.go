package scene

import (
	"render-sandbox/core"
	"render-sandbox/internal/gfx"
)

// Material describes the Phong surface response of a mesh.
type Material struct {
	Name string
	// Diffuse is sampled on texture unit 0 and multiplied with Tint.
	Diffuse   *gfx.Texture2D
	Tint      core.Color
	Specular  core.Color
	Shininess float32
}

// DefaultMaterial returns a white material with a moderate highlight.
func DefaultMaterial(diffuse *gfx.Texture2D) *Material {
	return &Material{
		Name:      "default",
		Diffuse:   diffuse,
		Tint:      core.ColorWhite,
		Specular:  core.ColorWhite.Scale(0.5),
		Shininess: 32,
	}
}

// Apply binds the diffuse texture and uploads the material uniforms.
// shader must be bound.
func (m *Material) Apply(shader *gfx.Shader) error {
	if m.Diffuse != nil {
		m.Diffuse.Bind(0)
	}
	u := uniformWriter{shader: shader}
	u.int("u_Material.diffuse", 0)
	u.color("u_Material.tint", m.Tint)
	u.color("u_Material.specular", m.Specular)
	u.float("u_Material.shininess", m.Shininess)
	return u.err
}
