// Package window provides the GLFW window, OpenGL context and input
// surface the render loop runs on.
package window

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"

	"autumn3d/core"
	"autumn3d/internal/logger"
)

func init() {
	// GLFW and the GL context must stay on the main OS thread.
	runtime.LockOSThread()
}

// Window is a GLFW window with a current OpenGL 4.1 core context.
type Window struct {
	handle *glfw.Window
	log    *zap.Logger
}

func New() *Window {
	return &Window{log: logger.Named("window")}
}

// Open initializes GLFW, creates the window, makes its context current and
// routes resize, cursor and scroll events to input. The cursor is captured.
func (w *Window) Open(title string, width, height int, vsync bool, input core.InputHandler) error {
	if w.handle != nil {
		return fmt.Errorf("window already open")
	}
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	handle, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("failed to create window: %w", err)
	}
	handle.MakeContextCurrent()
	if vsync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	handle.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		input.OnFramebufferResize(width, height)
	})
	handle.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		input.OnCursorMove(x, y)
	})
	handle.SetScrollCallback(func(_ *glfw.Window, xoff, yoff float64) {
		input.OnScroll(xoff, yoff)
	})
	handle.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)

	w.handle = handle
	fbw, fbh := handle.GetFramebufferSize()
	w.log.Info("window created",
		zap.String("title", title),
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("framebuffer_width", fbw),
		zap.Int("framebuffer_height", fbh),
		zap.Bool("vsync", vsync),
	)
	return nil
}

func (w *Window) FramebufferSize() (int, int) {
	return w.handle.GetFramebufferSize()
}

func (w *Window) KeyPressed(key core.Key) bool {
	k, ok := keys[key]
	if !ok {
		return false
	}
	return w.handle.GetKey(k) == glfw.Press
}

func (w *Window) ShouldClose() bool {
	return w.handle.ShouldClose()
}

func (w *Window) SetShouldClose(v bool) {
	w.handle.SetShouldClose(v)
}

// Time returns seconds since GLFW was initialized.
func (w *Window) Time() float64 {
	return glfw.GetTime()
}

func (w *Window) SwapBuffers() {
	w.handle.SwapBuffers()
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

// Destroy closes the window and terminates GLFW. Safe to call twice.
func (w *Window) Destroy() {
	if w.handle == nil {
		return
	}
	w.handle.Destroy()
	w.handle = nil
	glfw.Terminate()
	w.log.Info("window destroyed")
}

var keys = map[core.Key]glfw.Key{
	core.KeyW:      glfw.KeyW,
	core.KeyA:      glfw.KeyA,
	core.KeyS:      glfw.KeyS,
	core.KeyD:      glfw.KeyD,
	core.KeyEscape: glfw.KeyEscape,
}
