package gfx_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"render-sandbox/core"
	"render-sandbox/internal/gfx"
	"render-sandbox/internal/gfx/gfxtest"
)

const vertexColorVS = `#version 410 core
layout(location = 0) in vec3 a_Position;
layout(location = 1) in vec4 a_Color;
out vec4 v_Color;
void main() { gl_Position = vec4(a_Position, 1.0); v_Color = a_Color; }
`

const vertexColorFS = `#version 410 core
layout(location = 0) out vec4 color;
in vec4 v_Color;
void main() { color = v_Color; }
`

func TestRenderAPIInitFailure(t *testing.T) {
	dev := gfxtest.NewDevice()
	dev.InitErr = gfxtest.ErrInit
	api := gfx.NewRenderAPI(gfx.NewContext(dev))

	err := api.Init()
	require.Error(t, err)
	assert.ErrorIs(t, err, gfx.ErrDevice)
	assert.Contains(t, err.Error(), gfxtest.ErrInit.Error())
	assert.False(t, api.Context().Ready())
}

func TestDrawIndexedWithoutElementBuffer(t *testing.T) {
	ctx, dev := gfxtest.NewContext()
	api := gfx.NewRenderAPI(ctx)
	va, err := gfx.NewVertexArray(ctx)
	require.NoError(t, err)
	va.Bind()

	err = api.DrawIndexed(va)
	require.Error(t, err)
	assert.ErrorIs(t, err, gfx.ErrNoElementBuffer)
	assert.ErrorIs(t, err, gfx.ErrUsage)
	assert.Empty(t, dev.CallsNamed("DrawElements"))
	assert.Empty(t, dev.Draws())
}

func TestDrawIndexedRequiresBoundArray(t *testing.T) {
	ctx, dev := gfxtest.NewContext()
	api := gfx.NewRenderAPI(ctx)
	va, err := gfx.NewVertexArray(ctx)
	require.NoError(t, err)
	ib, err := gfx.NewIndexBuffer(ctx, []uint32{0, 1, 2})
	require.NoError(t, err)
	require.NoError(t, va.SetElementBuffer(ib))
	va.Unbind()

	assert.ErrorIs(t, api.DrawIndexed(va), gfx.ErrVertexArrayNotBound)
	assert.Empty(t, dev.Draws())
}

func TestDrawIndexedRejectsForeignElementBinding(t *testing.T) {
	ctx, dev := gfxtest.NewContext()
	api := gfx.NewRenderAPI(ctx)
	va, err := gfx.NewVertexArray(ctx)
	require.NoError(t, err)
	six, err := gfx.NewIndexBuffer(ctx, []uint32{0, 1, 2, 2, 1, 0})
	require.NoError(t, err)
	three, err := gfx.NewIndexBuffer(ctx, []uint32{0, 1, 2})
	require.NoError(t, err)
	require.NoError(t, va.SetElementBuffer(six))

	va.Bind()
	three.Bind()
	require.Equal(t, three.ID(), dev.ElementBufferOf(va.ID()))

	err = api.DrawIndexed(va)
	assert.ErrorIs(t, err, gfx.ErrElementBufferStale)
	assert.ErrorIs(t, err, gfx.ErrUsage)
	assert.Empty(t, dev.Draws())

	six.Bind()
	require.NoError(t, api.DrawIndexed(va))
	assert.Equal(t, []gfxtest.Draw{{Count: 6, VertexArray: va.ID()}}, dev.Draws())
}

// Two vertex-coloured triangles, drawn the way the sandbox's triangle scene
// does every frame.
func TestVertexColorFrame(t *testing.T) {
	ctx, dev := gfxtest.NewContext()
	api := gfx.NewRenderAPI(ctx)

	vertices := []float32{
		-0.5, -0.5, 0.1, 1, 0, 0, 1,
		0.0, 0.5, 0.1, 0, 0, 1, 1,
		0.5, -0.5, 0.1, 0, 1, 0, 1,

		0.4, -0.7, 0.2, 0, 1, 1, 1,
		0.0, 0.7, 0.2, 0, 1, 1, 1,
		0.8, -0.5, 0.2, 0, 1, 1, 1,
	}
	va, err := gfx.NewVertexArray(ctx)
	require.NoError(t, err)
	vb, err := gfx.NewVertexBufferFloat32(ctx, vertices)
	require.NoError(t, err)
	require.NoError(t, vb.SetLayout(gfx.NewBufferLayout(
		gfx.BufferElement{Name: "a_Position", Type: gfx.Float3},
		gfx.BufferElement{Name: "a_Color", Type: gfx.Float4},
	)))
	require.NoError(t, va.AddVertexBuffer(vb))
	ib, err := gfx.NewIndexBuffer(ctx, []uint32{0, 1, 2, 3, 4, 5})
	require.NoError(t, err)
	require.NoError(t, va.SetElementBuffer(ib))

	shader, err := gfx.NewShader(ctx, "VertexColor", vertexColorVS, vertexColorFS)
	require.NoError(t, err)
	dev.ResetCalls()

	api.SetClearColor(core.ColorGray)
	api.Clear()
	shader.Bind()
	va.Bind()
	require.NoError(t, api.DrawIndexed(va))

	assert.Equal(t, []string{
		"ClearColor(0.8, 0.8, 0.8, 1)",
		"Clear(color)",
		fmt.Sprintf("UseProgram(%d)", shader.ID()),
		fmt.Sprintf("BindVertexArray(%d)", va.ID()),
		"DrawElements(6)",
	}, dev.Calls())
	assert.Equal(t, []gfxtest.Draw{{Count: 6, VertexArray: va.ID(), Program: shader.ID()}}, dev.Draws())
	assert.Equal(t, 28*6, vb.Size())
	assert.Equal(t, [4]float32{0.8, 0.8, 0.8, 1}, dev.ClearColorValue())
}

func TestClearWithDepth(t *testing.T) {
	ctx, dev := gfxtest.NewContext()
	api := gfx.NewRenderAPI(ctx)

	api.EnableDepthTest(true)
	api.Clear()
	api.EnableDepthTest(false)
	api.Clear()
	api.SetViewport(800, 600)

	assert.Equal(t, []string{"Clear(color|depth)", "Clear(color)"}, dev.CallsNamed("Clear"))
	assert.Equal(t, [4]int32{0, 0, 800, 600}, dev.ViewportValue())
}
