package gfx_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"render-sandbox/internal/gfx"
	"render-sandbox/internal/gfx/gfxtest"
)

const testVertexSrc = `#version 410 core
layout(location = 0) in vec3 a_Position;
uniform mat4 u_ViewProjection;
uniform float u_Time;
void main() { gl_Position = u_ViewProjection * vec4(a_Position, 1.0); }
`

const testFragmentSrc = `#version 410 core
out vec4 color;
uniform vec3 u_Tint;
uniform int u_Mode;
void main() { color = vec4(u_Tint, 1.0); }
`

func TestShaderCompileError(t *testing.T) {
	tests := []struct {
		name   string
		vertex string
		frag   string
		stage  gfx.ShaderStage
	}{
		{"vertex", testVertexSrc + gfxtest.CompileErrorMarker, testFragmentSrc, gfx.StageVertex},
		{"fragment", testVertexSrc, testFragmentSrc + gfxtest.CompileErrorMarker, gfx.StageFragment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, dev := gfxtest.NewContext()
			shader, err := gfx.NewShader(ctx, "Broken", tt.vertex, tt.frag)
			require.Error(t, err)
			assert.Nil(t, shader)

			var serr *gfx.ShaderError
			require.True(t, errors.As(err, &serr))
			assert.Equal(t, "Broken", serr.Name)
			assert.Equal(t, tt.stage, serr.Stage)
			assert.Contains(t, serr.Log, "compilation terminated")
			assert.ErrorIs(t, err, gfx.ErrShader)
			assert.Contains(t, err.Error(), tt.name)

			assert.Empty(t, dev.CallsNamed("LinkProgram"))
			assert.Len(t, dev.CallsNamed("DeleteShader"), int(tt.stage)+1)
		})
	}
}

func TestShaderLinkError(t *testing.T) {
	ctx, dev := gfxtest.NewContext()
	dev.FailLink = true

	_, err := gfx.NewShader(ctx, "Unlinked", testVertexSrc, testFragmentSrc)
	var serr *gfx.ShaderError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, gfx.StageLink, serr.Stage)
	assert.Contains(t, serr.Log, "not consumed")
	assert.Len(t, dev.CallsNamed("DeleteProgram"), 1)
	assert.Len(t, dev.CallsNamed("DeleteShader"), 2)
}

func TestShaderRequiresReadyContext(t *testing.T) {
	ctx := gfx.NewContext(gfxtest.NewDevice())
	_, err := gfx.NewShader(ctx, "Early", testVertexSrc, testFragmentSrc)
	assert.ErrorIs(t, err, gfx.ErrContextNotReady)
}

func TestShaderSetUniforms(t *testing.T) {
	ctx, dev := gfxtest.NewContext()
	shader, err := gfx.NewShader(ctx, "Flat", testVertexSrc, testFragmentSrc)
	require.NoError(t, err)
	shader.Bind()

	vp := mgl32.Perspective(mgl32.DegToRad(45), 16.0/9.0, 0.1, 100)
	require.NoError(t, shader.SetMat4("u_ViewProjection", vp))
	require.NoError(t, shader.SetFloat("u_Time", 1.5))
	require.NoError(t, shader.SetFloat3("u_Tint", mgl32.Vec3{1, 0.5, 0}))
	require.NoError(t, shader.SetInt("u_Mode", 2))

	assert.Equal(t, map[string]any{
		"u_ViewProjection": vp,
		"u_Time":           float32(1.5),
		"u_Tint":           mgl32.Vec3{1, 0.5, 0},
		"u_Mode":           int32(2),
	}, dev.Uniforms(shader.ID()))
}

func TestShaderUnknownUniformIsNoOp(t *testing.T) {
	ctx, dev := gfxtest.NewContext()
	shader, err := gfx.NewShader(ctx, "Flat", testVertexSrc, testFragmentSrc)
	require.NoError(t, err)
	shader.Bind()
	require.NoError(t, shader.SetFloat("u_Time", 2))
	before := dev.Uniforms(shader.ID())
	dev.ResetCalls()

	assert.NoError(t, shader.SetFloat("u_Tme", 3))
	assert.NoError(t, shader.SetMat4("u_Model", mgl32.Ident4()))
	assert.NoError(t, shader.SetFloat3("u_Missing", mgl32.Vec3{}))

	assert.Equal(t, before, dev.Uniforms(shader.ID()))
	assert.Empty(t, dev.CallsNamed("Uniform1f"))
	assert.Empty(t, dev.CallsNamed("UniformMatrix4f"))
	assert.Empty(t, dev.CallsNamed("Uniform3f"))
}

func TestShaderSetRequiresBoundProgram(t *testing.T) {
	ctx, dev := gfxtest.NewContext()
	a, err := gfx.NewShader(ctx, "A", testVertexSrc, testFragmentSrc)
	require.NoError(t, err)
	b, err := gfx.NewShader(ctx, "B", testVertexSrc, testFragmentSrc)
	require.NoError(t, err)

	b.Bind()
	dev.ResetCalls()
	err = a.SetFloat("u_Time", 1)
	assert.ErrorIs(t, err, gfx.ErrProgramNotBound)
	assert.ErrorIs(t, err, gfx.ErrUsage)
	assert.Empty(t, dev.Calls())

	_, set := dev.Uniform(b.ID(), "u_Time")
	assert.False(t, set)

	b.Unbind()
	assert.ErrorIs(t, b.SetInt("u_Mode", 1), gfx.ErrProgramNotBound)
}

func TestShaderCachesLocations(t *testing.T) {
	ctx, dev := gfxtest.NewContext()
	shader, err := gfx.NewShader(ctx, "Flat", testVertexSrc, testFragmentSrc)
	require.NoError(t, err)
	shader.Bind()

	for i := 0; i < 3; i++ {
		require.NoError(t, shader.SetFloat("u_Time", float32(i)))
		require.NoError(t, shader.SetFloat("u_Unknown", float32(i)))
	}
	assert.Len(t, dev.CallsNamed("UniformLocation"), 2)
	assert.Len(t, dev.CallsNamed("Uniform1f"), 3)
}

func TestShaderReload(t *testing.T) {
	ctx, dev := gfxtest.NewContext()
	shader, err := gfx.NewShader(ctx, "Flat", testVertexSrc, testFragmentSrc)
	require.NoError(t, err)
	shader.Bind()
	old := shader.ID()

	err = shader.Reload(testVertexSrc, testFragmentSrc+gfxtest.CompileErrorMarker)
	assert.ErrorIs(t, err, gfx.ErrShader)
	assert.Equal(t, old, shader.ID())
	assert.True(t, dev.Program(old))
	assert.Equal(t, old, ctx.BoundProgram())

	require.NoError(t, shader.Reload(testVertexSrc, testFragmentSrc))
	assert.NotEqual(t, old, shader.ID())
	assert.False(t, dev.Program(old))
	assert.Equal(t, shader.ID(), ctx.BoundProgram())

	require.NoError(t, shader.SetFloat("u_Time", 4))
	v, ok := dev.Uniform(shader.ID(), "u_Time")
	require.True(t, ok)
	assert.Equal(t, float32(4), v)
}

func TestLoadShaderFromFiles(t *testing.T) {
	dir := t.TempDir()
	vsPath := filepath.Join(dir, "flat.vert")
	fsPath := filepath.Join(dir, "flat.frag")
	require.NoError(t, os.WriteFile(vsPath, []byte(testVertexSrc), 0o644))
	require.NoError(t, os.WriteFile(fsPath, []byte(testFragmentSrc), 0o644))

	ctx, _ := gfxtest.NewContext()
	shader, err := gfx.LoadShader(ctx, "Flat", vsPath, fsPath)
	require.NoError(t, err)
	assert.Equal(t, "Flat", shader.Name())

	_, err = gfx.LoadShader(ctx, "Missing", filepath.Join(dir, "nope.vert"), fsPath)
	assert.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, os.WriteFile(fsPath, []byte(gfxtest.CompileErrorMarker), 0o644))
	assert.ErrorIs(t, shader.ReloadFiles(vsPath, fsPath), gfx.ErrShader)
}

func TestShaderRelease(t *testing.T) {
	ctx, dev := gfxtest.NewContext()
	shader, err := gfx.NewShader(ctx, "Flat", testVertexSrc, testFragmentSrc)
	require.NoError(t, err)
	id := shader.ID()
	shader.Bind()

	shader.Release()
	shader.Release()
	assert.False(t, dev.Program(id))
	assert.Zero(t, ctx.BoundProgram())
	assert.Len(t, dev.CallsNamed("DeleteProgram"), 1)
	assert.ErrorIs(t, shader.SetFloat("u_Time", 1), gfx.ErrReleased)
}
