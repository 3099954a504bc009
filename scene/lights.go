package scene

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"render-sandbox/core"
	"render-sandbox/internal/gfx"
)

// MaxPointLights must match the array size declared by the Phong shader.
const MaxPointLights = 4

// DirLight is a light infinitely far away, e.g. the sun.
type DirLight struct {
	Direction mgl32.Vec3
	Ambient   core.Color
	Diffuse   core.Color
	Specular  core.Color
}

// Attenuation coefficients for 1 / (constant + linear*d + quadratic*d²).
type Attenuation struct {
	Constant  float32
	Linear    float32
	Quadratic float32
}

// AttenuationRange50 fades a light out over roughly 50 units.
var AttenuationRange50 = Attenuation{Constant: 1, Linear: 0.09, Quadratic: 0.032}

type PointLight struct {
	Position mgl32.Vec3
	Attenuation
	Ambient  core.Color
	Diffuse  core.Color
	Specular core.Color
}

// SpotLight is a cone of light. CutOff and OuterCutOff are half-angles in
// degrees; intensity fades between the two.
type SpotLight struct {
	Position    mgl32.Vec3
	Direction   mgl32.Vec3
	CutOff      float32
	OuterCutOff float32
	Attenuation
	Ambient  core.Color
	Diffuse  core.Color
	Specular core.Color
}

// Lights is the full light rig of the Phong scene.
type Lights struct {
	Dir    DirLight
	Points []PointLight
	Spot   *SpotLight
}

// DefaultLights returns a dim white sun, four coloured point lights around
// the origin and no spot light.
func DefaultLights() *Lights {
	colors := []core.Color{core.ColorRed, core.ColorGreen, core.ColorBlue, core.ColorWhite}
	positions := []mgl32.Vec3{{0.7, 0.2, 2.0}, {2.3, -1.3, -2.0}, {-2.0, 2.0, -2.0}, {0.0, 0.0, -3.0}}
	l := &Lights{
		Dir: DirLight{
			Direction: mgl32.Vec3{-0.2, -1.0, -0.3},
			Ambient:   core.ColorWhite.Scale(0.05),
			Diffuse:   core.ColorWhite.Scale(0.4),
			Specular:  core.ColorWhite.Scale(0.5),
		},
	}
	for i, pos := range positions {
		l.Points = append(l.Points, PointLight{
			Position:    pos,
			Attenuation: AttenuationRange50,
			Ambient:     colors[i].Scale(0.05),
			Diffuse:     colors[i].Scale(0.8),
			Specular:    colors[i],
		})
	}
	return l
}

// Apply uploads the rig to shader, which must be bound. Point lights past
// MaxPointLights are ignored.
func (l *Lights) Apply(shader *gfx.Shader) error {
	u := uniformWriter{shader: shader}

	u.vec3("u_DirLight.direction", l.Dir.Direction)
	u.color("u_DirLight.ambient", l.Dir.Ambient)
	u.color("u_DirLight.diffuse", l.Dir.Diffuse)
	u.color("u_DirLight.specular", l.Dir.Specular)

	n := min(len(l.Points), MaxPointLights)
	u.int("u_PointLightCount", int32(n))
	for i, p := range l.Points[:n] {
		prefix := fmt.Sprintf("u_PointLights[%d].", i)
		u.vec3(prefix+"position", p.Position)
		u.attenuation(prefix, p.Attenuation)
		u.color(prefix+"ambient", p.Ambient)
		u.color(prefix+"diffuse", p.Diffuse)
		u.color(prefix+"specular", p.Specular)
	}

	u.bool("u_SpotEnabled", l.Spot != nil)
	if s := l.Spot; s != nil {
		u.vec3("u_SpotLight.position", s.Position)
		u.vec3("u_SpotLight.direction", s.Direction)
		u.float("u_SpotLight.cutOff", cosDeg(s.CutOff))
		u.float("u_SpotLight.outerCutOff", cosDeg(s.OuterCutOff))
		u.attenuation("u_SpotLight.", s.Attenuation)
		u.color("u_SpotLight.ambient", s.Ambient)
		u.color("u_SpotLight.diffuse", s.Diffuse)
		u.color("u_SpotLight.specular", s.Specular)
	}
	return u.err
}

func cosDeg(deg float32) float32 {
	return float32(math.Cos(float64(mgl32.DegToRad(deg))))
}
