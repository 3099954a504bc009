package gfx

import (
	"errors"
	"fmt"
)

// ErrUsage is wrapped by every precondition violation. It never signals a
// backend failure.
var ErrUsage = errors.New("gfx: usage error")

// ErrDevice is wrapped by failures reported by the graphics backend.
var ErrDevice = errors.New("gfx: device error")

// ErrShader is wrapped by *ShaderError.
var ErrShader = errors.New("gfx: shader build failed")

var (
	ErrContextNotReady     = fmt.Errorf("%w: context not initialized", ErrUsage)
	ErrLayoutNotSet        = fmt.Errorf("%w: layout not set", ErrUsage)
	ErrInvalidLayout       = fmt.Errorf("%w: invalid layout", ErrUsage)
	ErrNoElementBuffer     = fmt.Errorf("%w: no element buffer set", ErrUsage)
	ErrProgramNotBound     = fmt.Errorf("%w: program not bound", ErrUsage)
	ErrVertexArrayNotBound = fmt.Errorf("%w: vertex array not bound", ErrUsage)
	ErrReleased            = fmt.Errorf("%w: resource released", ErrUsage)
	ErrElementBufferStale  = fmt.Errorf("%w: element binding does not match element buffer", ErrUsage)
	ErrLayoutLocked        = fmt.Errorf("%w: layout already in use", ErrUsage)
)

// ErrUnsupportedFormat is returned for pixel data whose channel count has no
// texture format mapping.
var ErrUnsupportedFormat = errors.New("gfx: unsupported texture format")

// ShaderStage identifies a step of building a shader program.
type ShaderStage uint8

const (
	StageVertex ShaderStage = iota
	StageFragment
	StageLink
)

func (s ShaderStage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageLink:
		return "link"
	}
	return "unknown"
}

// ShaderError reports a failed compile or link together with the driver's
// diagnostic text.
type ShaderError struct {
	Name  string
	Stage ShaderStage
	Log   string
}

func (e *ShaderError) Error() string {
	if e.Stage == StageLink {
		return fmt.Sprintf("shader %q: link failed: %s", e.Name, e.Log)
	}
	return fmt.Sprintf("shader %q: %s stage compile failed: %s", e.Name, e.Stage, e.Log)
}

func (e *ShaderError) Unwrap() error { return ErrShader }
