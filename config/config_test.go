package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"render-sandbox/core"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, SceneTriangle, c.Scene)
	assert.Equal(t, core.ColorGray, c.Color())
	assert.Equal(t, 1280, c.Window.Width)

	level, err := c.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "sandbox.yaml", `
window:
  width: 800
  title: Phong
scene: phong
clear_color: [0.1, 0.2, 0.3]
shaders:
  vertex: shaders/phong.vert
  fragment: shaders/phong.frag
  watch: true
log_level: warn
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 800, c.Window.Width)
	assert.Equal(t, 720, c.Window.Height, "unset fields keep their defaults")
	assert.Equal(t, "Phong", c.Window.Title)
	assert.Equal(t, ScenePhong, c.Scene)
	assert.Equal(t, core.Color{R: 0.1, G: 0.2, B: 0.3, A: 1}, c.Color())
	assert.True(t, c.Shaders.Watch)

	level, err := c.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "sandbox.toml", `
scene = "phong"
model = "models/duck.glb"
debug = true
clear_color = [0.0, 0.0, 0.0, 1.0]

[window]
height = 600
vsync = false
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 600, c.Window.Height)
	assert.False(t, c.Window.VSync)
	assert.Equal(t, "models/duck.glb", c.Model)
	assert.Equal(t, core.ColorBlack, c.Color())

	level, err := c.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level, "debug overrides log_level")
}

func TestLoadEmptyYAML(t *testing.T) {
	c, err := Load(writeFile(t, "empty.yml", ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{"unknown extension", "sandbox.json", `{}`, "unknown config format"},
		{"unknown yaml key", "a.yaml", "sceen: phong\n", "sceen"},
		{"unknown toml key", "a.toml", "sceen = \"phong\"\n", "strict mode"},
		{"bad scene", "a.yaml", "scene: cube\n", `unknown scene "cube"`},
		{"bad size", "a.yaml", "window: {width: 0}\n", "window size"},
		{"bad colour", "a.yaml", "clear_color: [1, 1]\n", "clear_color"},
		{"half shader pair", "a.yaml", "shaders: {vertex: a.vert}\n", "set together"},
		{"watch without files", "a.yaml", "shaders: {watch: true}\n", "needs shader files"},
		{"bad level", "a.toml", "log_level = \"loud\"\n", "invalid config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			if !strings.Contains(tt.name, "unknown") {
				assert.ErrorIs(t, err, ErrInvalid)
			}
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
