// Package assets embeds the built-in GLSL programs.
package assets

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed shaders/*.vert shaders/*.frag
var shaders embed.FS

// Built-in program names.
const (
	VertexColor = "vertex_color"
	Phong       = "phong"
)

// Shader returns the vertex and fragment sources of a built-in program.
func Shader(name string) (vertex, fragment string, err error) {
	vs, err := fs.ReadFile(shaders, "shaders/"+name+".vert")
	if err != nil {
		return "", "", fmt.Errorf("built-in shader %q: %w", name, err)
	}
	frag, err := fs.ReadFile(shaders, "shaders/"+name+".frag")
	if err != nil {
		return "", "", fmt.Errorf("built-in shader %q: %w", name, err)
	}
	return string(vs), string(frag), nil
}

// MustShader is Shader for names known at compile time.
func MustShader(name string) (vertex, fragment string) {
	vs, frag, err := Shader(name)
	if err != nil {
		panic(err)
	}
	return vs, frag
}
