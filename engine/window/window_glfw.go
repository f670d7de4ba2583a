package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// glfwWindow owns the GLFW window handle and its lifecycle.
type glfwWindow struct {
	window  *glfw.Window
	running bool
}

// newGLFWWindow initializes GLFW, creates the window, and registers the input
// and resize callbacks that forward into the engineWindow's handlers.
//
// GLFW reference: https://www.glfw.org/docs/latest/window_guide.html
// go-gl/glfw: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw
func newGLFWWindow(w *engineWindow) (*glfwWindow, error) {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %v", err)
	}

	// WebGPU provides its own graphics API, so disable OpenGL context creation.
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create GLFW window: %v", err)
	}

	gw := &glfwWindow{
		window:  win,
		running: true,
	}

	// Resize bounds from the builder; zero means unconstrained on that side.
	minW, minH, maxW, maxH := glfw.DontCare, glfw.DontCare, glfw.DontCare, glfw.DontCare
	if w.minWidth > 0 {
		minW = w.minWidth
	}
	if w.minHeight > 0 {
		minH = w.minHeight
	}
	if w.maxWidth > 0 {
		maxW = w.maxWidth
	}
	if w.maxHeight > 0 {
		maxH = w.maxHeight
	}
	win.SetSizeLimits(minW, minH, maxW, maxH)

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			gw.running = false
			win.SetShouldClose(true)
			return
		}
		switch action {
		case glfw.Press, glfw.Repeat:
			if w.onKeyDown != nil {
				w.onKeyDown(uint32(key))
			}
		case glfw.Release:
			if w.onKeyUp != nil {
				w.onKeyUp(uint32(key))
			}
		}
	})

	win.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		if w.onScroll != nil {
			w.onScroll(float32(yoff))
		}
	})

	win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if button != glfw.MouseButtonMiddle {
			return
		}
		xpos, ypos := win.GetCursorPos()
		switch action {
		case glfw.Press:
			if w.onMiddleMouseDown != nil {
				w.onMiddleMouseDown(int32(xpos), int32(ypos))
			}
		case glfw.Release:
			if w.onMiddleMouseUp != nil {
				w.onMiddleMouseUp(int32(xpos), int32(ypos))
			}
		}
	})

	win.SetCursorPosCallback(func(_ *glfw.Window, xpos, ypos float64) {
		if w.onMouseMove != nil {
			w.onMouseMove(int32(xpos), int32(ypos))
		}
	})

	// Resize tracking uses the framebuffer size callback because the renderer
	// needs pixel dimensions; on high-DPI displays these differ from window
	// coordinates.
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.width = width
		w.height = height
		if w.onResize != nil {
			w.onResize(width, height)
		}
	})

	w.width, w.height = win.GetFramebufferSize()

	return gw, nil
}

// setCursorCaptured toggles between the disabled cursor mode, which hides the
// cursor and provides unbounded virtual motion for drag rotation, and the
// normal visible cursor.
func (gw *glfwWindow) setCursorCaptured(captured bool) {
	if captured {
		gw.window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	} else {
		gw.window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	}
}

// surfaceDescriptor bridges the GLFW window to a wgpu surface descriptor via
// wgpuglfw, which carries the per-platform implementations.
//
// Reference: https://pkg.go.dev/github.com/cogentcore/webgpu/wgpuglfw#GetSurfaceDescriptor
func (gw *glfwWindow) surfaceDescriptor() *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(gw.window)
}

// isRunning reports whether the window is active: the running flag is set and
// GLFW has not flagged the window for closing.
func (gw *glfwWindow) isRunning() bool {
	return gw.running && !gw.window.ShouldClose()
}

// close destroys the GLFW window and terminates the GLFW library.
func (gw *glfwWindow) close() error {
	gw.running = false
	gw.window.SetShouldClose(true)
	gw.window.Destroy()
	glfw.Terminate()
	return nil
}

// poll pumps pending GLFW events without blocking and reports whether the
// window should keep running.
func (gw *glfwWindow) poll() bool {
	glfw.PollEvents()
	return gw.isRunning()
}
