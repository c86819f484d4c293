package renderer

import "autumn3d/core"

// Platform is the window and input surface the render loop drives.
type Platform interface {
	// Open creates the window and its graphics context and delivers
	// window events to input until Destroy.
	Open(title string, width, height int, vsync bool, input core.InputHandler) error
	FramebufferSize() (width, height int)
	KeyPressed(key core.Key) bool
	ShouldClose() bool
	SetShouldClose(v bool)
	// Time returns a monotonic clock in seconds.
	Time() float64
	SwapBuffers()
	PollEvents()
	Destroy()
}
