//go:build !nogl

// Package opengl displays a simulation in an OpenGL window.
//
// All calls must be made from the main thread, which the caller locks with
// runtime.LockOSThread before creating the canvas.
package opengl

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// Config holds the parameters of the OpenGL driver.
type Config struct {
	Title     string  // window title
	Width     int     // window width in screen pixels
	Height    int     // window height in screen pixels
	PointSize float32 // size of an agent in screen pixels

	// extent of the simulation domain
	DomainWidth  float64
	DomainHeight float64
}

// A Canvas draws agents as points in a window.
type Canvas struct {
	win  *glfw.Window
	quit bool
	pts  []float32 // x, y pairs in domain coordinates

	vao  uint32
	vbo  uint32
	prog uint32
}

// New opens a window and compiles the point shaders.
func New(conf *Config) (*Canvas, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("opengl: %w", err)
	}

	glfw.WindowHint(glfw.Samples, 4)
	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	w, err := glfw.CreateWindow(conf.Width, conf.Height, conf.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("opengl: %w", err)
	}
	w.MakeContextCurrent()
	glfw.SwapInterval(0)

	// function pointers are only available once a context is current
	if err := gl.Init(); err != nil {
		w.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("opengl: %w", err)
	}

	c := &Canvas{win: w}
	w.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if action == glfw.Press && (key == glfw.KeyEscape || key == glfw.KeyQ) {
			c.quit = true
		}
	})

	c.prog, err = makeProg([]shader{
		{"Vertex", vertexShader, gl.VERTEX_SHADER},
		{"Fragment", fragmentShader, gl.FRAGMENT_SHADER},
	})
	if err != nil {
		c.Close()
		return nil, err
	}
	gl.UseProgram(c.prog)
	dom := gl.GetUniformLocation(c.prog, gl.Str("domain\x00"))
	gl.Uniform2f(dom, float32(conf.DomainWidth), float32(conf.DomainHeight))

	gl.GenVertexArrays(1, &c.vao)
	gl.BindVertexArray(c.vao)
	gl.GenBuffers(1, &c.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, c.vbo)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 0, nil)

	size := conf.PointSize
	if size <= 0 {
		size = 1
	}
	gl.PointSize(size)
	gl.ClearColor(0, 0, 0, 1)
	return c, nil
}

// Clear discards the points of the previous frame.
func (c *Canvas) Clear() {
	c.pts = c.pts[:0]
}

// SetPixel adds a point at domain coordinates (x, y).
func (c *Canvas) SetPixel(x, y int) {
	c.pts = append(c.pts, float32(x), float32(y))
}

// Present uploads the points, draws them and shows the frame.
func (c *Canvas) Present() error {
	gl.Clear(gl.COLOR_BUFFER_BIT)
	if len(c.pts) > 0 {
		gl.BindBuffer(gl.ARRAY_BUFFER, c.vbo)
		gl.BufferData(gl.ARRAY_BUFFER, 4*len(c.pts), gl.Ptr(c.pts), gl.STREAM_DRAW)
		gl.DrawArrays(gl.POINTS, 0, int32(len(c.pts)/2))
	}
	if e := gl.GetError(); e != gl.NO_ERROR {
		return fmt.Errorf("opengl: draw failed with error 0x%x", e)
	}
	c.win.SwapBuffers()
	glfw.PollEvents()
	return nil
}

// PollQuit reports whether the window was closed or Esc or Q was pressed.
func (c *Canvas) PollQuit() bool {
	return c.quit || c.win.ShouldClose()
}

// Close releases the OpenGL objects and closes the window.
func (c *Canvas) Close() error {
	if c.prog != 0 {
		gl.DeleteProgram(c.prog)
	}
	if c.vbo != 0 {
		gl.DeleteBuffers(1, &c.vbo)
	}
	if c.vao != 0 {
		gl.DeleteVertexArrays(1, &c.vao)
	}
	c.win.Destroy()
	glfw.Terminate()
	return nil
}

// domain coordinates grow downward like screen rows
const vertexShader = `
#version 330 core
layout(location = 0) in vec2 pos;
uniform vec2 domain;
void main() {
	vec2 p = 2.0 * pos / domain - 1.0;
	gl_Position = vec4(p.x, -p.y, 0.0, 1.0);
}
`

const fragmentShader = `
#version 330 core
out vec4 color;
void main() {
	color = vec4(0.9, 0.9, 0.9, 1.0);
}
`

// A shader is the source of one stage of a program.
type shader struct {
	name string
	src  string
	kind uint32
}

// makeProg compiles and links an OpenGL program.
func makeProg(shaders []shader) (uint32, error) {
	var errs []string
	ids := make([]uint32, 0, len(shaders))
	for _, s := range shaders {
		id := gl.CreateShader(s.kind)
		str, free := gl.Strs(s.src + "\x00")
		gl.ShaderSource(id, 1, str, nil)
		free()
		gl.CompileShader(id)
		var status int32
		gl.GetShaderiv(id, gl.COMPILE_STATUS, &status)
		if status != gl.TRUE {
			var n int32
			gl.GetShaderiv(id, gl.INFO_LOG_LENGTH, &n)
			log := make([]uint8, n+1)
			gl.GetShaderInfoLog(id, n, &n, &log[0])
			errs = append(errs, fmt.Sprintf("%s shader: %s", s.name, gl.GoStr(&log[0])))
			gl.DeleteShader(id)
			continue
		}
		ids = append(ids, id)
	}
	if len(errs) > 0 {
		for _, id := range ids {
			gl.DeleteShader(id)
		}
		return 0, fmt.Errorf("opengl: GLSL errors: %s", strings.Join(errs, "; "))
	}

	prog := gl.CreateProgram()
	for _, id := range ids {
		gl.AttachShader(prog, id)
	}
	gl.LinkProgram(prog)
	for _, id := range ids {
		gl.DeleteShader(id)
	}
	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status != gl.TRUE {
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("opengl: program link failed")
	}
	return prog, nil
}
