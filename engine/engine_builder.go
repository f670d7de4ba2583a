package engine

import (
	"time"

	"github.com/Carmen-Shannon/lucent-go/engine/scene"
	"github.com/Carmen-Shannon/lucent-go/engine/window"
)

// EngineBuilderOption is a functional option applied by NewEngine.
type EngineBuilderOption func(*engine)

// WithWindow hands the engine a pre-configured window. The engine wires the
// window's resize callback to its scenes, so build the window first and the
// engine around it.
//
// Parameters:
//   - w: the window to drive
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithScene registers a scene at the given z-index key during construction.
// Lower keys render first.
//
// Parameters:
//   - key: z-index determining render order
//   - s: the scene to register
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(key int, s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scenes[key] = s
	}
}

// WithTickRate sets the initial simulation tick rate.
//
// Parameters:
//   - fps: target ticks per second (values <= 0 fall back to 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60
		}
		e.tickRate = time.Second / time.Duration(fps)
	}
}

// WithRenderFrameLimit caps the render loop at the given frame rate.
//
// Parameters:
//   - fps: maximum render frames per second (0 uncaps, the default)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.frameCap = 0
			return
		}
		e.frameCap = time.Second / time.Duration(fps)
	}
}

// WithProfiling enables per-phase frame timing output from the start.
//
// Parameters:
//   - enabled: true to log frame timings
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}
