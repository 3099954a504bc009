package sandbox

import (
	"render-sandbox/assets"
	"render-sandbox/config"
	"render-sandbox/core"
	"render-sandbox/internal/gfx"
	"render-sandbox/scene"
)

// triangleScene draws the two vertex-coloured triangles in clip space.
type triangleScene struct {
	shader *gfx.Shader
	va     *gfx.VertexArray
}

func newTriangleScene(ctx *gfx.Context, files config.Shaders) (*triangleScene, error) {
	shader, err := loadShader(ctx, assets.VertexColor, files)
	if err != nil {
		return nil, err
	}
	va, err := scene.VertexColorTriangles().Upload(ctx)
	if err != nil {
		shader.Release()
		return nil, err
	}
	return &triangleScene{shader: shader, va: va}, nil
}

func (s *triangleScene) Name() string             { return config.SceneTriangle }
func (s *triangleScene) Shader() *gfx.Shader      { return s.shader }
func (s *triangleScene) DepthTest() bool          { return false }
func (s *triangleScene) Update(float32)           {}
func (s *triangleScene) Resize(width, height int) {}

func (s *triangleScene) Render(api *gfx.RenderAPI) error {
	s.shader.Bind()
	s.va.Bind()
	return api.DrawIndexed(s.va)
}

func (s *triangleScene) Release() {
	if err := s.va.Release(); err != nil {
		core.Logger().Warn("triangle scene release", "err", err)
	}
	s.shader.Release()
}
