// Package config loads sandbox settings from YAML or TOML files.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"render-sandbox/core"
)

// Scene names.
const (
	SceneTriangle = "triangle"
	ScenePhong    = "phong"
)

var (
	ErrInvalid         = errors.New("invalid config")
	ErrUnknownFormat   = errors.New("unknown config format")
	errClearColorShape = errors.New("clear_color needs 3 or 4 components")
)

type Window struct {
	Width     int    `yaml:"width" toml:"width"`
	Height    int    `yaml:"height" toml:"height"`
	Title     string `yaml:"title" toml:"title"`
	VSync     bool   `yaml:"vsync" toml:"vsync"`
	Resizable bool   `yaml:"resizable" toml:"resizable"`
}

// Shaders overrides the built-in program of the active scene. Both paths
// must be set together; when empty the embedded sources are used.
type Shaders struct {
	Vertex   string `yaml:"vertex" toml:"vertex"`
	Fragment string `yaml:"fragment" toml:"fragment"`
	// Watch recompiles the program when either file changes.
	Watch bool `yaml:"watch" toml:"watch"`
}

type Config struct {
	Window     Window    `yaml:"window" toml:"window"`
	ClearColor []float32 `yaml:"clear_color" toml:"clear_color"`
	Scene      string    `yaml:"scene" toml:"scene"`
	Shaders    Shaders   `yaml:"shaders" toml:"shaders"`
	Model      string    `yaml:"model" toml:"model"`
	Texture    string    `yaml:"texture" toml:"texture"`
	LogLevel   string    `yaml:"log_level" toml:"log_level"`
	Debug      bool      `yaml:"debug" toml:"debug"`
}

// Default returns the settings used when no file is given.
func Default() *Config {
	gray := core.ColorGray
	return &Config{
		Window: Window{
			Width:     1280,
			Height:    720,
			Title:     "Render Sandbox",
			VSync:     true,
			Resizable: true,
		},
		ClearColor: []float32{gray.R, gray.G, gray.B, gray.A},
		Scene:      SceneTriangle,
		LogLevel:   "info",
	}
}

// Decoder is satisfied by both the YAML and TOML decoders.
type Decoder interface {
	Decode(v any) error
}

// DecoderFunc creates a strict decoder for r.
type DecoderFunc func(r io.Reader) Decoder

// DecoderFor picks a decoder by file extension. Unknown keys are errors.
func DecoderFor(path string) (DecoderFunc, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return func(r io.Reader) Decoder {
			d := yaml.NewDecoder(r)
			d.KnownFields(true)
			return d
		}, nil
	case ".toml":
		return func(r io.Reader) Decoder {
			return toml.NewDecoder(r).DisallowUnknownFields()
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, path)
	}
}

// Load reads path on top of Default and validates the result.
func Load(path string) (*Config, error) {
	newDecoder, err := DecoderFor(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	c := Default()
	if err := Read(c, f, newDecoder); err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}
	return c, nil
}

// Read decodes r into c, keeping every field r does not mention. An empty
// document is not an error.
func Read(c *Config, r io.Reader, newDecoder DecoderFunc) error {
	err := newDecoder(r).Decode(c)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	if _, ok := core.NewColor(c.ClearColor); !ok {
		return fmt.Errorf("%w: %w, got %d", ErrInvalid, errClearColorShape, len(c.ClearColor))
	}
	switch c.Scene {
	case SceneTriangle, ScenePhong:
	default:
		return fmt.Errorf("%w: unknown scene %q", ErrInvalid, c.Scene)
	}
	if (c.Shaders.Vertex == "") != (c.Shaders.Fragment == "") {
		return fmt.Errorf("%w: shaders.vertex and shaders.fragment must be set together", ErrInvalid)
	}
	if c.Shaders.Watch && c.Shaders.Vertex == "" {
		return fmt.Errorf("%w: shaders.watch needs shader files", ErrInvalid)
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Color returns the clear colour. Call after Validate.
func (c *Config) Color() core.Color {
	col, _ := core.NewColor(c.ClearColor)
	return col
}

// Level parses LogLevel; Debug forces slog.LevelDebug.
func (c *Config) Level() (slog.Level, error) {
	if c.Debug {
		return slog.LevelDebug, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, err
	}
	return l, nil
}
