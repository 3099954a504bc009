package gfx

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
)

// Shader is a linked vertex+fragment program.
//
// Uniform setters require the program to be the bound one: they do not bind
// it themselves and return ErrProgramNotBound otherwise. A name that does not
// resolve to an active uniform is silently ignored.
type Shader struct {
	ctx       *Context
	name      string
	id        uint32
	locations map[string]int32
}

// NewShader compiles and links the two stages. A failure in any step
// returns a *ShaderError and no program.
func NewShader(ctx *Context, name, vertexSrc, fragmentSrc string) (*Shader, error) {
	if err := ctx.checkReady(); err != nil {
		return nil, err
	}
	id, err := buildProgram(ctx, name, vertexSrc, fragmentSrc)
	if err != nil {
		return nil, err
	}
	ctx.logger().Debug("shader built", "name", name, "program", id)
	return &Shader{ctx: ctx, name: name, id: id, locations: make(map[string]int32)}, nil
}

// LoadShader reads both stages from disk and builds them with NewShader.
func LoadShader(ctx *Context, name, vertexPath, fragmentPath string) (*Shader, error) {
	vs, fs, err := readStages(vertexPath, fragmentPath)
	if err != nil {
		return nil, fmt.Errorf("shader %q: %w", name, err)
	}
	return NewShader(ctx, name, vs, fs)
}

func readStages(vertexPath, fragmentPath string) (string, string, error) {
	vs, err := os.ReadFile(vertexPath)
	if err != nil {
		return "", "", fmt.Errorf("read vertex source: %w", err)
	}
	fs, err := os.ReadFile(fragmentPath)
	if err != nil {
		return "", "", fmt.Errorf("read fragment source: %w", err)
	}
	return string(vs), string(fs), nil
}

func buildProgram(ctx *Context, name, vertexSrc, fragmentSrc string) (uint32, error) {
	dev := ctx.dev

	vert, log, ok := dev.CompileShader(StageVertex, vertexSrc)
	if !ok {
		dev.DeleteShader(vert)
		return 0, &ShaderError{Name: name, Stage: StageVertex, Log: log}
	}
	frag, log, ok := dev.CompileShader(StageFragment, fragmentSrc)
	if !ok {
		dev.DeleteShader(vert)
		dev.DeleteShader(frag)
		return 0, &ShaderError{Name: name, Stage: StageFragment, Log: log}
	}

	prog, log, ok := dev.LinkProgram(vert, frag)
	dev.DeleteShader(vert)
	dev.DeleteShader(frag)
	if !ok {
		if prog != 0 {
			dev.DeleteProgram(prog)
		}
		return 0, &ShaderError{Name: name, Stage: StageLink, Log: log}
	}
	return prog, nil
}

func (s *Shader) Name() string { return s.name }

func (s *Shader) ID() uint32 { return s.id }

func (s *Shader) Bind() {
	s.ctx.useProgram(s.id)
}

func (s *Shader) Unbind() {
	s.ctx.useProgram(0)
}

// Reload rebuilds the program from new sources. On failure the current
// program stays in use and the error is returned.
func (s *Shader) Reload(vertexSrc, fragmentSrc string) error {
	if s.id == 0 {
		return fmt.Errorf("shader %q: %w", s.name, ErrReleased)
	}
	id, err := buildProgram(s.ctx, s.name, vertexSrc, fragmentSrc)
	if err != nil {
		return err
	}
	wasBound := s.ctx.BoundProgram() == s.id
	s.ctx.deleteProgram(s.id)
	s.id = id
	clear(s.locations)
	if wasBound {
		s.Bind()
	}
	s.ctx.logger().Info("shader reloaded", "name", s.name, "program", id)
	return nil
}

// ReloadFiles is Reload with sources read from disk.
func (s *Shader) ReloadFiles(vertexPath, fragmentPath string) error {
	vs, fs, err := readStages(vertexPath, fragmentPath)
	if err != nil {
		return fmt.Errorf("shader %q: %w", s.name, err)
	}
	return s.Reload(vs, fs)
}

func (s *Shader) Release() {
	if s.id == 0 {
		return
	}
	s.ctx.deleteProgram(s.id)
	s.id = 0
}

// location resolves name once per program. A result of -1 means the name is
// not an active uniform.
func (s *Shader) location(name string) (int32, error) {
	if s.id == 0 {
		return -1, fmt.Errorf("shader %q: %w", s.name, ErrReleased)
	}
	if s.ctx.BoundProgram() != s.id {
		return -1, fmt.Errorf("set %q on shader %q: %w", name, s.name, ErrProgramNotBound)
	}
	loc, ok := s.locations[name]
	if !ok {
		loc = s.ctx.dev.UniformLocation(s.id, name)
		s.locations[name] = loc
	}
	return loc, nil
}

func (s *Shader) SetInt(name string, v int32) error {
	loc, err := s.location(name)
	if err != nil || loc < 0 {
		return err
	}
	s.ctx.dev.Uniform1i(loc, v)
	return nil
}

func (s *Shader) SetBool(name string, v bool) error {
	var i int32
	if v {
		i = 1
	}
	return s.SetInt(name, i)
}

func (s *Shader) SetFloat(name string, v float32) error {
	loc, err := s.location(name)
	if err != nil || loc < 0 {
		return err
	}
	s.ctx.dev.Uniform1f(loc, v)
	return nil
}

func (s *Shader) SetFloat2(name string, v mgl32.Vec2) error {
	loc, err := s.location(name)
	if err != nil || loc < 0 {
		return err
	}
	s.ctx.dev.Uniform2f(loc, v)
	return nil
}

func (s *Shader) SetFloat3(name string, v mgl32.Vec3) error {
	loc, err := s.location(name)
	if err != nil || loc < 0 {
		return err
	}
	s.ctx.dev.Uniform3f(loc, v)
	return nil
}

func (s *Shader) SetFloat4(name string, v mgl32.Vec4) error {
	loc, err := s.location(name)
	if err != nil || loc < 0 {
		return err
	}
	s.ctx.dev.Uniform4f(loc, v)
	return nil
}

func (s *Shader) SetMat3(name string, m mgl32.Mat3) error {
	loc, err := s.location(name)
	if err != nil || loc < 0 {
		return err
	}
	s.ctx.dev.UniformMatrix3f(loc, m)
	return nil
}

func (s *Shader) SetMat4(name string, m mgl32.Mat4) error {
	loc, err := s.location(name)
	if err != nil || loc < 0 {
		return err
	}
	s.ctx.dev.UniformMatrix4f(loc, m)
	return nil
}
