// Package sandbox builds the demo scenes and drives one frame at a time.
// It only talks to a gfx.Context, so everything here runs against
// gfxtest as well as the OpenGL device.
package sandbox

import (
	"fmt"

	"render-sandbox/assets"
	"render-sandbox/config"
	"render-sandbox/internal/gfx"
)

// Scene is one demo.
type Scene interface {
	Name() string
	Shader() *gfx.Shader
	// DepthTest reports whether the scene needs the depth buffer.
	DepthTest() bool
	Update(dt float32)
	Resize(width, height int)
	Render(api *gfx.RenderAPI) error
	Release()
}

// Orbiter is implemented by scenes with a movable camera.
type Orbiter interface {
	Orbit(deltaYaw, deltaPitch float32)
}

// NewScene builds the scene named by cfg.Scene.
func NewScene(ctx *gfx.Context, cfg *config.Config) (Scene, error) {
	var (
		s   Scene
		err error
	)
	switch cfg.Scene {
	case config.SceneTriangle:
		s, err = newTriangleScene(ctx, cfg.Shaders)
	case config.ScenePhong:
		s, err = newPhongScene(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown scene %q", cfg.Scene)
	}
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", cfg.Scene, err)
	}
	return s, nil
}

// loadShader reads the configured files, or the embedded program when
// none are set.
func loadShader(ctx *gfx.Context, builtin string, files config.Shaders) (*gfx.Shader, error) {
	if files.Vertex != "" {
		return gfx.LoadShader(ctx, builtin, files.Vertex, files.Fragment)
	}
	vs, fs, err := assets.Shader(builtin)
	if err != nil {
		return nil, err
	}
	return gfx.NewShader(ctx, builtin, vs, fs)
}
