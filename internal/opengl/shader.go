package opengl

import (
	"strings"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"render-sandbox/internal/gfx"
)

func shaderType(stage gfx.ShaderStage) uint32 {
	if stage == gfx.StageFragment {
		return gl.FRAGMENT_SHADER
	}
	return gl.VERTEX_SHADER
}

// CompileShader compiles one stage. On failure the shader object is still
// returned so the caller can delete it.
func (d *Device) CompileShader(stage gfx.ShaderStage, src string) (uint32, string, bool) {
	shader := gl.CreateShader(shaderType(stage))
	if !strings.HasSuffix(src, "\x00") {
		src += "\x00"
	}
	csrc, free := gl.Strs(src)
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		return shader, strings.TrimRight(log, "\x00"), false
	}
	return shader, "", true
}

func (d *Device) DeleteShader(id uint32) {
	if id != 0 {
		gl.DeleteShader(id)
	}
}

// LinkProgram links the given stages and detaches them again, so deleting
// the shaders afterwards frees them immediately.
func (d *Device) LinkProgram(shaders ...uint32) (uint32, string, bool) {
	prog := gl.CreateProgram()
	for _, s := range shaders {
		gl.AttachShader(prog, s)
	}
	gl.LinkProgram(prog)
	for _, s := range shaders {
		gl.DetachShader(prog, s)
	}

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		return prog, strings.TrimRight(log, "\x00"), false
	}
	return prog, "", true
}

func (d *Device) DeleteProgram(id uint32) {
	gl.DeleteProgram(id)
}
