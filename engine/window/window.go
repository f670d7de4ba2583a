package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
)

// Window provides platform windowing and input event handling on top of GLFW.
type Window interface {
	// SetUpdateCallback registers the function ProcessMessages invokes every
	// loop iteration.
	//
	// Parameters:
	//   - callback: function to invoke, nil to disable
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer is
	// resized. Dimensions are in pixels, which on high-DPI displays differ
	// from window coordinates.
	//
	// Parameters:
	//   - callback: receives the new pixel width and height
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback registers the handler for scroll wheel input.
	//
	// Parameters:
	//   - callback: receives the scroll delta, positive scrolling up
	SetScrollCallback(callback func(delta float32))

	// SetKeyDownCallback registers the handler for key press and repeat
	// events.
	//
	// Parameters:
	//   - callback: receives the key code
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback registers the handler for key release events.
	//
	// Parameters:
	//   - callback: receives the key code
	SetKeyUpCallback(callback func(keyCode uint32))

	// SetMiddleMouseDownCallback registers the handler for middle button
	// presses.
	//
	// Parameters:
	//   - callback: receives the cursor position
	SetMiddleMouseDownCallback(callback func(x, y int32))

	// SetMiddleMouseUpCallback registers the handler for middle button
	// releases.
	//
	// Parameters:
	//   - callback: receives the cursor position
	SetMiddleMouseUpCallback(callback func(x, y int32))

	// SetMouseMoveCallback registers the handler for cursor movement.
	//
	// Parameters:
	//   - callback: receives the cursor position
	SetMouseMoveCallback(callback func(x, y int32))

	// SetCursorCaptured hides the cursor and locks it to the window while
	// captured, so a drag can rotate indefinitely without hitting the screen
	// edge. Cursor move callbacks keep firing with virtual coordinates.
	//
	// Parameters:
	//   - captured: true to capture, false to restore the normal cursor
	SetCursorCaptured(captured bool)

	// SurfaceDescriptor returns a platform-appropriate descriptor for
	// creating a WebGPU surface over this window (Windows HWND, X11, Wayland,
	// macOS Metal), or nil when the window is not initialized.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: platform-specific descriptor
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning reports whether the window is still open.
	//
	// Returns:
	//   - bool: false once the window has been closed
	IsRunning() bool

	// Close tears the window down and releases platform resources.
	//
	// Returns:
	//   - error: non-nil when teardown fails
	Close() error

	// ProcessMessages runs the window message loop. Blocks until the window
	// closes, invoking the update callback each iteration.
	ProcessMessages()

	// Width reports the current framebuffer width.
	//
	// Returns:
	//   - int: width, pixels
	Width() int

	// Height reports the current framebuffer height.
	//
	// Returns:
	//   - int: height, pixels
	Height() int
}

// engineWindow implements Window. Size limits of zero leave that bound
// unconstrained.
type engineWindow struct {
	title string

	width  int
	height int

	minWidth  int
	minHeight int
	maxWidth  int
	maxHeight int

	platform *glfwWindow

	onUpdate          func()
	onResize          func(width, height int)
	onScroll          func(delta float32)
	onKeyDown         func(keyCode uint32)
	onKeyUp           func(keyCode uint32)
	onMiddleMouseDown func(x, y int32)
	onMiddleMouseUp   func(x, y int32)
	onMouseMove       func(x, y int32)
}

var _ Window = &engineWindow{}

// NewWindow creates a Window with the specified options and spawns the
// platform window. Panics when the platform layer cannot initialize, since
// nothing downstream can run without a surface.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the configured window
func NewWindow(options ...WindowBuilderOption) Window {
	w := &engineWindow{
		title:  "Default Window Title",
		width:  1280,
		height: 720,
	}
	for _, opt := range options {
		opt(w)
	}
	platform, err := newGLFWWindow(w)
	if err != nil {
		panic(fmt.Sprintf("failed to create platform window: %v", err))
	}
	w.platform = platform
	return w
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetScrollCallback(callback func(delta float32)) {
	w.onScroll = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetKeyUpCallback(callback func(keyCode uint32)) {
	w.onKeyUp = callback
}

func (w *engineWindow) SetMiddleMouseDownCallback(callback func(x, y int32)) {
	w.onMiddleMouseDown = callback
}

func (w *engineWindow) SetMiddleMouseUpCallback(callback func(x, y int32)) {
	w.onMiddleMouseUp = callback
}

func (w *engineWindow) SetMouseMoveCallback(callback func(x, y int32)) {
	w.onMouseMove = callback
}

func (w *engineWindow) SetCursorCaptured(captured bool) {
	if w.platform != nil {
		w.platform.setCursorCaptured(captured)
	}
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	if w.platform == nil {
		return nil
	}
	return w.platform.surfaceDescriptor()
}

func (w *engineWindow) IsRunning() bool {
	return w.platform != nil && w.platform.isRunning()
}

func (w *engineWindow) Close() error {
	if w.platform == nil {
		return fmt.Errorf("window is not initialized")
	}
	return w.platform.close()
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() && w.platform.poll() {
		if w.onUpdate != nil {
			w.onUpdate()
		}
		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}
