package glbackend

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/hubastard/glfx/engine/colors"
	"github.com/hubastard/glfx/engine/core"
)

// Spinner is a core.Listener that clears the surface and draws a rotating
// triangle. It stands in for a user render callback in the sandbox.
type Spinner struct {
	clear   colors.Color
	speed   float64 // radians per second
	start   time.Time
	program uint32
	angle   int32
	vao     uint32
	vbo     uint32
	err     error
}

func NewSpinner(clear colors.Color, speed float64) *Spinner {
	return &Spinner{clear: clear, speed: speed}
}

// Err reports a shader build failure from Init.
func (r *Spinner) Err() error { return r.err }

func (r *Spinner) Init(core.Drawable) {
	r.start = time.Now()
	r.program, r.err = makeProgram(vertexSource, fragmentSource)
	if r.err != nil {
		core.Logger().Error("spinner shaders", "err", r.err)
		return
	}
	r.angle = gl.GetUniformLocation(r.program, gl.Str("uAngle\x00"))

	// Triangle vertices: pos (x,y), color (r,g,b)
	verts := []float32{
		//  X,     Y,     R,   G,   B
		0.0, 0.6, 1.0, 0.2, 0.2,
		-0.6, -0.6, 0.2, 1.0, 0.2,
		0.6, -0.6, 0.2, 0.2, 1.0,
	}

	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)

	gl.GenBuffers(1, &r.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, gl.Ptr(verts), gl.STATIC_DRAW)

	const stride = 5 * 4 // bytes
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, gl.PtrOffset(2*4))

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

func (r *Spinner) Reshape(_ core.Drawable, x, y, w, h int) {
	gl.Viewport(int32(x), int32(y), int32(w), int32(h))
}

func (r *Spinner) Display(core.Drawable) {
	c := r.clear
	gl.ClearColor(c[0], c[1], c[2], c[3])
	gl.Clear(gl.COLOR_BUFFER_BIT)
	if r.program == 0 {
		return
	}
	angle := float32(time.Since(r.start).Seconds() * r.speed)
	gl.UseProgram(r.program)
	gl.Uniform1f(r.angle, angle)
	gl.BindVertexArray(r.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
	gl.BindVertexArray(0)
	gl.UseProgram(0)
}

func (r *Spinner) Dispose(core.Drawable) {
	if r.vbo != 0 {
		gl.DeleteBuffers(1, &r.vbo)
	}
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
	}
	if r.program != 0 {
		gl.DeleteProgram(r.program)
	}
	r.vbo, r.vao, r.program = 0, 0, 0
}

// --- Shader utilities ---

const vertexSource = `
#version 330 core
layout(location=0) in vec2 aPos;
layout(location=1) in vec3 aColor;
uniform float uAngle;
out vec3 vColor;
void main() {
    float c = cos(uAngle);
    float s = sin(uAngle);
    vColor = aColor;
    gl_Position = vec4(aPos.x*c - aPos.y*s, aPos.x*s + aPos.y*c, 0.0, 1.0);
}
` + "\x00"

const fragmentSource = `
#version 330 core
in vec3 vColor;
out vec4 FragColor;
void main() {
    FragColor = vec4(vColor, 1.0);
}
` + "\x00"

func makeShader(src string, shaderType uint32) (uint32, error) {
	sh := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src)
	defer free()
	gl.ShaderSource(sh, 1, csrc, nil)
	gl.CompileShader(sh)

	var status int32
	gl.GetShaderiv(sh, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(sh, gl.INFO_LOG_LENGTH, &logLen)
		msg := strings.Repeat("\x00", int(logLen))
		gl.GetShaderInfoLog(sh, logLen, nil, gl.Str(msg))
		gl.DeleteShader(sh)
		return 0, fmt.Errorf("shader compile error: %s", msg)
	}
	return sh, nil
}

func makeProgram(vsSrc, fsSrc string) (uint32, error) {
	vs, err := makeShader(vsSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fs, err := makeShader(fsSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vs)
		return 0, err
	}
	prog := gl.CreateProgram()
	gl.AttachShader(prog, vs)
	gl.AttachShader(prog, fs)
	gl.LinkProgram(prog)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	gl.DeleteShader(vs)
	gl.DeleteShader(fs)

	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		msg := strings.Repeat("\x00", int(logLen))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(msg))
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("program link error: %s", msg)
	}
	return prog, nil
}
