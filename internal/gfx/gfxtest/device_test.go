package gfxtest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"render-sandbox/internal/gfx"
)

func TestActiveUniforms(t *testing.T) {
	src := `
struct Light {
    vec3 position;
    float constant;
};

uniform mat4 u_Model;
uniform Light u_Lights[2];
uniform Light u_Sun;
// uniform float u_Commented;
    uniform int u_Count ;
`
	assert.Equal(t, []string{
		"u_Model",
		"u_Lights[0].position", "u_Lights[0].constant",
		"u_Lights[1].position", "u_Lights[1].constant",
		"u_Sun.position", "u_Sun.constant",
		"u_Count",
	}, activeUniforms(src))
}

func TestUniformLocationsAreSharedAcrossStages(t *testing.T) {
	d := NewDevice()
	vs, _, ok := d.CompileShader(gfx.StageVertex, "uniform mat4 u_ViewProjection;\nuniform float u_Time;\n")
	assert.True(t, ok)
	fs, _, ok := d.CompileShader(gfx.StageFragment, "uniform float u_Time;\nuniform vec4 u_Color;\n")
	assert.True(t, ok)
	prog, _, ok := d.LinkProgram(vs, fs)
	assert.True(t, ok)

	assert.Equal(t, int32(0), d.UniformLocation(prog, "u_ViewProjection"))
	assert.Equal(t, int32(1), d.UniformLocation(prog, "u_Time"))
	assert.Equal(t, int32(2), d.UniformLocation(prog, "u_Color"))
	assert.Equal(t, int32(-1), d.UniformLocation(prog, "u_Missing"))
}
