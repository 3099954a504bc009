package sandbox

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"render-sandbox/assets"
	"render-sandbox/config"
	"render-sandbox/core"
	"render-sandbox/internal/gfx"
	"render-sandbox/internal/gfx/gfxtest"
)

func newApp(t *testing.T, cfg *config.Config) (*App, *gfxtest.Device) {
	t.Helper()
	dev := gfxtest.NewDevice()
	app, err := NewApp(gfx.NewRenderAPI(gfx.NewContext(dev)), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })
	return app, dev
}

func TestTriangleFrame(t *testing.T) {
	app, dev := newApp(t, config.Default())
	assert.Equal(t, config.SceneTriangle, app.Scene().Name())
	assert.Equal(t, [4]float32{0.8, 0.8, 0.8, 1}, dev.ClearColorValue())
	assert.Equal(t, [4]int32{0, 0, 1280, 720}, dev.ViewportValue())

	dev.ResetCalls()
	require.NoError(t, app.Frame(1.0/60))

	assert.Equal(t, []string{"Clear(color)"}, dev.CallsNamed("Clear"))
	draws := dev.Draws()
	require.Len(t, draws, 1)
	assert.EqualValues(t, 6, draws[0].Count)
	assert.Equal(t, app.Scene().Shader().ID(), draws[0].Program)
	assert.NotZero(t, draws[0].VertexArray)
}

func TestNewAppInitFailure(t *testing.T) {
	dev := gfxtest.NewDevice()
	dev.InitErr = gfxtest.ErrInit
	_, err := NewApp(gfx.NewRenderAPI(gfx.NewContext(dev)), config.Default())
	assert.ErrorIs(t, err, gfx.ErrDevice)
	assert.Empty(t, dev.CallsNamed("GenBuffer"))
}

func TestPhongFrame(t *testing.T) {
	cfg := config.Default()
	cfg.Scene = config.ScenePhong
	app, dev := newApp(t, cfg)

	dev.ResetCalls()
	require.NoError(t, app.Frame(0.5))
	assert.Equal(t, []string{"Clear(color|depth)"}, dev.CallsNamed("Clear"))

	draws := dev.Draws()
	require.Len(t, draws, 2)
	assert.EqualValues(t, 36, draws[0].Count)
	assert.EqualValues(t, 6, draws[1].Count)
	assert.NotEqual(t, draws[0].VertexArray, draws[1].VertexArray)

	prog := app.Scene().Shader().ID()
	got := dev.Uniforms(prog)
	assert.Equal(t, int32(4), got["u_PointLightCount"])
	assert.Equal(t, int32(1), got["u_SpotEnabled"])
	assert.Contains(t, got, "u_ViewProjection")
	assert.Contains(t, got, "u_NormalMatrix")
	eye := got["u_ViewPos"]

	app.Orbit(45, 0)
	require.NoError(t, app.Frame(0))
	got = dev.Uniforms(prog)
	assert.NotEqual(t, eye, got["u_ViewPos"])
	assert.Equal(t, got["u_ViewPos"], got["u_SpotLight.position"], "the spot light follows the camera")
}

func TestPhongCullsHiddenItems(t *testing.T) {
	cfg := config.Default()
	cfg.Scene = config.ScenePhong
	app, dev := newApp(t, cfg)
	ps := app.Scene().(*phongScene)

	ps.camera.SetTarget(mgl32.Vec3{0, 0, 200})
	ps.camera.SetOrbit(5, 0, 0)
	dev.ResetCalls()
	require.NoError(t, app.Frame(0))
	assert.Empty(t, dev.CallsNamed("DrawElements"))
	assert.Equal(t, 2, ps.culled)

	ps.camera.SetTarget(mgl32.Vec3{})
	require.NoError(t, app.Frame(0))
	assert.Len(t, dev.CallsNamed("DrawElements"), 2)
	assert.Zero(t, ps.culled)
}

func TestPhongOBJModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.obj")
	require.NoError(t, os.WriteFile(path, []byte("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"), 0o644))

	cfg := config.Default()
	cfg.Scene = config.ScenePhong
	cfg.Model = path
	app, dev := newApp(t, cfg)

	dev.ResetCalls()
	require.NoError(t, app.Frame(0))
	draws := dev.Draws()
	require.Len(t, draws, 1)
	assert.EqualValues(t, 3, draws[0].Count)
}

func TestResize(t *testing.T) {
	cfg := config.Default()
	cfg.Scene = config.ScenePhong
	app, dev := newApp(t, cfg)

	app.Resize(640, 480)
	assert.Equal(t, [4]int32{0, 0, 640, 480}, dev.ViewportValue())

	app.Resize(0, 0)
	assert.Equal(t, [4]int32{0, 0, 640, 480}, dev.ViewportValue(), "minimized windows keep the last viewport")
}

func TestPhongTexture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checker.png")
	img := image.NewGray(image.Rect(0, 0, 4, 2))
	img.SetGray(0, 0, color.Gray{Y: 200})
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	cfg := config.Default()
	cfg.Scene = config.ScenePhong
	cfg.Texture = path
	app, dev := newApp(t, cfg)

	ps := app.Scene().(*phongScene)
	require.Len(t, ps.textures, 1)
	tex, ok := dev.Texture(ps.textures[0].ID())
	require.True(t, ok)
	assert.EqualValues(t, 4, tex.Width)
	assert.Equal(t, gfx.FormatR8, tex.Format)
	// rows are flipped for GL's bottom-up texture origin
	assert.Equal(t, byte(200), tex.Pixels[4])

	cfg.Texture = filepath.Join(t.TempDir(), "missing.png")
	_, err = NewApp(gfx.NewRenderAPI(gfx.NewContext(gfxtest.NewDevice())), cfg)
	assert.ErrorContains(t, err, "scene phong")
}

func writeShaders(t *testing.T, dir string) config.Shaders {
	t.Helper()
	vs, fs := assets.MustShader(assets.VertexColor)
	files := config.Shaders{
		Vertex:   filepath.Join(dir, "color.vert"),
		Fragment: filepath.Join(dir, "color.frag"),
	}
	require.NoError(t, os.WriteFile(files.Vertex, []byte(vs), 0o644))
	require.NoError(t, os.WriteFile(files.Fragment, []byte(fs), 0o644))
	return files
}

func TestReloadShaders(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Shaders = writeShaders(t, dir)
	app, _ := newApp(t, cfg)
	shader := app.Scene().Shader()
	before := shader.ID()

	require.NoError(t, os.WriteFile(cfg.Shaders.Fragment, []byte(gfxtest.CompileErrorMarker), 0o644))
	assert.False(t, app.ReloadShaders())
	assert.Equal(t, before, shader.ID())
	require.NoError(t, app.Frame(0), "the previous program keeps drawing")

	_, fs := assets.MustShader(assets.VertexColor)
	require.NoError(t, os.WriteFile(cfg.Shaders.Fragment, []byte(fs), 0o644))
	assert.True(t, app.ReloadShaders())
	assert.NotEqual(t, before, shader.ID())
}

func TestReloadWithoutFiles(t *testing.T) {
	app, _ := newApp(t, config.Default())
	assert.False(t, app.ReloadShaders())
	assert.Nil(t, app.Watcher())
}

func TestWatchReloadsBetweenFrames(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Shaders = writeShaders(t, dir)
	cfg.Shaders.Watch = true
	app, dev := newApp(t, cfg)
	require.NotNil(t, app.Watcher())
	before := app.Scene().Shader().ID()

	_, fs := assets.MustShader(assets.VertexColor)
	require.NoError(t, os.WriteFile(cfg.Shaders.Fragment, []byte(fs+"\n"), 0o644))

	deadline := time.Now().Add(5 * time.Second)
	for app.Scene().Shader().ID() == before {
		require.True(t, time.Now().Before(deadline), "edit was never picked up")
		require.NoError(t, app.Frame(0))
		time.Sleep(20 * time.Millisecond)
	}
	require.NoError(t, app.Frame(0))

	draws := dev.Draws()
	assert.Equal(t, app.Scene().Shader().ID(), draws[len(draws)-1].Program)
}

func TestNewSceneUnknown(t *testing.T) {
	ctx, _ := gfxtest.NewContext()
	cfg := config.Default()
	cfg.Scene = "voxels"
	_, err := NewScene(ctx, cfg)
	assert.ErrorContains(t, err, "voxels")
}

func TestTriangleReleaseLogsErrors(t *testing.T) {
	ctx, _ := gfxtest.NewContext()
	s, err := newTriangleScene(ctx, config.Shaders{})
	require.NoError(t, err)

	var buf bytes.Buffer
	core.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { core.SetLogger(nil) })

	s.Release()
	assert.NotContains(t, buf.String(), "triangle scene release")

	s.Release()
	assert.Contains(t, buf.String(), "triangle scene release")
	assert.Contains(t, buf.String(), "resource released")
}
