package sandbox

import (
	"fmt"
	"log/slog"

	"render-sandbox/config"
	"render-sandbox/core"
	"render-sandbox/internal/gfx"
	"render-sandbox/internal/shaderwatch"
)

// App owns the render API, the active scene and the optional shader
// watcher. It is driven by the window loop through Frame and Resize.
type App struct {
	api     *gfx.RenderAPI
	cfg     *config.Config
	scene   Scene
	watcher *shaderwatch.Watcher
	log     *slog.Logger
}

// NewApp initializes the graphics context and builds the configured scene.
// Errors from api.Init wrap gfx.ErrDevice and are fatal.
func NewApp(api *gfx.RenderAPI, cfg *config.Config) (*App, error) {
	log := core.Logger().With("component", "sandbox")
	if err := api.Init(); err != nil {
		return nil, err
	}
	s, err := NewScene(api.Context(), cfg)
	if err != nil {
		return nil, err
	}
	a := &App{api: api, cfg: cfg, scene: s, log: log}

	if cfg.Shaders.Watch {
		a.watcher, err = shaderwatch.New(cfg.Shaders.Vertex, cfg.Shaders.Fragment)
		if err != nil {
			s.Release()
			return nil, err
		}
		log.Info("watching shaders", "vertex", cfg.Shaders.Vertex, "fragment", cfg.Shaders.Fragment)
	}

	api.SetClearColor(cfg.Color())
	api.EnableDepthTest(s.DepthTest())
	api.SetViewport(cfg.Window.Width, cfg.Window.Height)
	s.Resize(cfg.Window.Width, cfg.Window.Height)
	log.Info("scene ready", "scene", s.Name())
	return a, nil
}

func (a *App) Scene() Scene { return a.scene }

// Watcher is nil unless shader watching is enabled.
func (a *App) Watcher() *shaderwatch.Watcher { return a.watcher }

// Frame applies pending shader edits, advances the scene by dt seconds
// and draws it.
func (a *App) Frame(dt float32) error {
	if a.watcher != nil && len(a.watcher.Pending()) > 0 {
		a.ReloadShaders()
	}
	a.scene.Update(dt)
	a.api.Clear()
	if err := a.scene.Render(a.api); err != nil {
		return fmt.Errorf("render %s: %w", a.scene.Name(), err)
	}
	return nil
}

// ReloadShaders recompiles the scene program from the configured files. A
// broken edit is logged and the previous program keeps running.
func (a *App) ReloadShaders() bool {
	files := a.cfg.Shaders
	if files.Vertex == "" {
		return false
	}
	if err := a.scene.Shader().ReloadFiles(files.Vertex, files.Fragment); err != nil {
		a.log.Warn("shader reload failed, keeping previous program", "err", err)
		return false
	}
	return true
}

func (a *App) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	a.api.SetViewport(width, height)
	a.scene.Resize(width, height)
}

// Orbit moves the camera of scenes that have one.
func (a *App) Orbit(deltaYaw, deltaPitch float32) {
	if o, ok := a.scene.(Orbiter); ok {
		o.Orbit(deltaYaw, deltaPitch)
	}
}

func (a *App) Close() error {
	a.scene.Release()
	if a.watcher != nil {
		return a.watcher.Close()
	}
	return nil
}
