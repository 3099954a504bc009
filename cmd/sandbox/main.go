// Command sandbox opens a window and renders one of the demo scenes.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"render-sandbox/config"
	"render-sandbox/core"
	"render-sandbox/internal/gfx"
	"render-sandbox/internal/opengl"
	"render-sandbox/internal/sandbox"
	"render-sandbox/window"
)

// orbitStep is the arrow-key camera rotation in degrees per second.
const orbitStep = 90

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	core.SetLogger(logger)
	slog.SetDefault(logger)

	if err := run(cfg); err != nil {
		logger.Error("sandbox failed", "err", err)
		os.Exit(1)
	}
}

// parseFlags loads --config when given, then applies every flag the user
// set explicitly on top of it.
func parseFlags(args []string) (*config.Config, error) {
	fs := pflag.NewFlagSet("sandbox", pflag.ContinueOnError)
	path := fs.StringP("config", "c", "", "YAML or TOML config file")
	sceneName := fs.StringP("scene", "s", "", "scene to render: triangle or phong")
	model := fs.StringP("model", "m", "", "glTF model for the phong scene")
	texture := fs.StringP("texture", "t", "", "diffuse texture for the phong scene")
	vertex := fs.String("vertex", "", "vertex shader file")
	fragment := fs.String("fragment", "", "fragment shader file")
	watch := fs.BoolP("watch", "w", false, "reload shader files when they change")
	width := fs.Int("width", 0, "window width")
	height := fs.Int("height", 0, "window height")
	vsync := fs.Bool("vsync", true, "wait for vertical sync")
	logLevel := fs.String("log-level", "", "debug, info, warn or error")
	debug := fs.BoolP("debug", "d", false, "shorthand for --log-level=debug")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := config.Default()
	if *path != "" {
		var err error
		if cfg, err = config.Load(*path); err != nil {
			return nil, err
		}
	}

	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("scene", func() { cfg.Scene = *sceneName })
	set("model", func() { cfg.Model = *model })
	set("texture", func() { cfg.Texture = *texture })
	set("vertex", func() { cfg.Shaders.Vertex = *vertex })
	set("fragment", func() { cfg.Shaders.Fragment = *fragment })
	set("watch", func() { cfg.Shaders.Watch = *watch })
	set("width", func() { cfg.Window.Width = *width })
	set("height", func() { cfg.Window.Height = *height })
	set("vsync", func() { cfg.Window.VSync = *vsync })
	set("log-level", func() { cfg.LogLevel = *logLevel })
	set("debug", func() { cfg.Debug = *debug })

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(cfg *config.Config) error {
	win, err := window.New(window.Config{
		Width:     cfg.Window.Width,
		Height:    cfg.Window.Height,
		Title:     cfg.Window.Title,
		Resizable: cfg.Window.Resizable,
		VSync:     cfg.Window.VSync,
	})
	if err != nil {
		return err
	}
	defer win.Destroy()

	app, err := sandbox.NewApp(gfx.NewRenderAPI(gfx.NewContext(opengl.NewDevice())), cfg)
	if err != nil {
		return err
	}
	defer app.Close()
	win.SetTitle(fmt.Sprintf("%s [%s]", cfg.Window.Title, app.Scene().Name()))

	win.SetResizeCallback(app.Resize)
	app.Resize(win.GetFramebufferSize())

	var reloadHeld bool
	last := win.Time()
	for !win.ShouldClose() {
		now := win.Time()
		dt := float32(now - last)
		last = now

		if win.IsKeyPressed(window.KeyEscape) {
			win.Close()
		}
		reload := win.IsKeyPressed(window.KeyR)
		if reload && !reloadHeld {
			app.ReloadShaders()
		}
		reloadHeld = reload
		yaw, pitch := orbitInput(win)
		app.Orbit(yaw*orbitStep*dt, pitch*orbitStep*dt)

		if err := app.Frame(dt); err != nil {
			return err
		}
		win.OnUpdate()
	}
	return nil
}

// orbitInput maps the arrow keys to -1, 0 or 1 on each axis.
func orbitInput(win *window.Window) (yaw, pitch float32) {
	if win.IsKeyPressed(window.KeyLeft) {
		yaw--
	}
	if win.IsKeyPressed(window.KeyRight) {
		yaw++
	}
	if win.IsKeyPressed(window.KeyUp) {
		pitch++
	}
	if win.IsKeyPressed(window.KeyDown) {
		pitch--
	}
	return yaw, pitch
}
