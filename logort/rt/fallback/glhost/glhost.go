// Package glhost presents the fallback logo in an OpenGL window. It never uses
// WebGPU, so it works on machines where the particle effect cannot start.
package glhost

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/gogpu/gg"

	particlelogo "github.com/alleriumlabs/particlelogo"
	"github.com/alleriumlabs/particlelogo/logort/rt/fallback"
)

const vertexShader = `
#version 410 core

out vec2 uv;

void main() {
    vec2 positions[3] = vec2[](
        vec2(-1.0, -1.0),
        vec2( 3.0, -1.0),
        vec2(-1.0,  3.0)
    );
    vec2 pos = positions[gl_VertexID];
    uv = vec2(pos.x * 0.5 + 0.5, 0.5 - pos.y * 0.5);
    gl_Position = vec4(pos, 0.0, 1.0);
}
`

const fragmentShader = `
#version 410 core

in vec2 uv;
out vec4 outColor;

uniform sampler2D canvas;

void main() {
    outColor = texture(canvas, uv);
}
`

// Window is a fallback.Host. Mount opens the window; Run animates the node until
// the window is closed.
type Window struct {
	Settings particlelogo.WindowSettings
	Logger   particlelogo.Logger
	Now      func() time.Time

	window  *glfw.Window
	program uint32
	vao     uint32
	texture uint32
	texW    int
	texH    int
	canvas  *gg.Context
	node    *fallback.Node
}

func New(settings particlelogo.WindowSettings, logger particlelogo.Logger) *Window {
	return &Window{
		Settings: settings,
		Logger:   particlelogo.OrNop(logger),
		Now:      time.Now,
	}
}

// Mount creates the GL window and keeps node for presentation. glfw must be
// initialised on the calling thread.
func (w *Window) Mount(node *fallback.Node) error {
	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	win, err := glfw.CreateWindow(w.Settings.Width, w.Settings.Height, w.Settings.Title, nil, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", particlelogo.ErrMissingTarget, err)
	}
	win.MakeContextCurrent()
	glfw.SwapInterval(1)

	if err := gl.Init(); err != nil {
		win.Destroy()
		return fmt.Errorf("failed to initialise OpenGL: %w", err)
	}
	w.window = win

	w.program, err = newProgram(vertexShader, fragmentShader)
	if err != nil {
		w.Release()
		return err
	}
	gl.GenVertexArrays(1, &w.vao)
	gl.GenTextures(1, &w.texture)
	gl.BindTexture(gl.TEXTURE_2D, w.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	fbW, fbH := win.GetFramebufferSize()
	w.resizeCanvas(fbW, fbH)
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.resizeCanvas(width, height)
	})

	w.node = node
	w.Logger.Infof("fallback logo mounted as %q (%dx%d)", node.ID, node.Width, node.Height)
	return nil
}

func (w *Window) resizeCanvas(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if w.canvas != nil {
		if w.canvas.Width() == width && w.canvas.Height() == height {
			return
		}
		_ = w.canvas.Close()
	}
	w.canvas = gg.NewContext(width, height)
}

// Run presents frames until the window closes or ctx ends.
func (w *Window) Run(ctx context.Context) error {
	if w.window == nil {
		return particlelogo.ErrMissingTarget
	}
	w.window.SetKeyCallback(func(win *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			win.SetShouldClose(true)
		}
	})
	for !w.window.ShouldClose() {
		if ctx.Err() != nil {
			return nil
		}
		glfw.PollEvents()
		if err := w.draw(); err != nil {
			return err
		}
		w.window.SwapBuffers()
	}
	return nil
}

func (w *Window) draw() error {
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	if w.canvas == nil || w.node == nil {
		return nil
	}

	if err := fallback.Compose(w.canvas, w.node, w.node.Frame(w.Now())); err != nil {
		return fmt.Errorf("failed to compose fallback frame: %w", err)
	}
	w.upload(toRGBA(w.canvas.Image()))

	gl.Viewport(0, 0, int32(w.canvas.Width()), int32(w.canvas.Height()))
	gl.Enable(gl.BLEND)
	// gg pixels are premultiplied.
	gl.BlendFunc(gl.ONE, gl.ONE_MINUS_SRC_ALPHA)
	gl.UseProgram(w.program)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, w.texture)
	gl.BindVertexArray(w.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
	return nil
}

func (w *Window) upload(img *image.RGBA) {
	width, height := img.Bounds().Dx(), img.Bounds().Dy()
	gl.BindTexture(gl.TEXTURE_2D, w.texture)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
	if width != w.texW || height != w.texH {
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
		w.texW, w.texH = width, height
	} else {
		gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	}
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

func (w *Window) Release() {
	if w.window == nil {
		return
	}
	if w.texture != 0 {
		gl.DeleteTextures(1, &w.texture)
		w.texture = 0
	}
	if w.vao != 0 {
		gl.DeleteVertexArrays(1, &w.vao)
		w.vao = 0
	}
	if w.program != 0 {
		gl.DeleteProgram(w.program)
		w.program = 0
	}
	if w.canvas != nil {
		_ = w.canvas.Close()
		w.canvas = nil
	}
	w.window.Destroy()
	w.window = nil
}
