package scene

import (
	"github.com/Carmen-Shannon/lucent-go/engine/game_object"
	"github.com/Carmen-Shannon/lucent-go/engine/oit"
)

// SceneBuilderOption configures a Scene during construction.
type SceneBuilderOption func(s *scene)

// WithActive sets whether the engine renders this scene.
//
// Parameters:
//   - active: true to render the scene
//
// Returns:
//   - SceneBuilderOption: a function that sets the state
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithObjects seeds the scene registry, assigning IDs to objects that carry
// none. GPU resources are not initialized here; use Scene.Add for objects
// that need their mesh, model, and material wired to the renderer.
//
// Parameters:
//   - objects: objects to register
//
// Returns:
//   - SceneBuilderOption: a function that registers the objects
func WithObjects(objects ...game_object.GameObject) SceneBuilderOption {
	return func(s *scene) {
		for _, obj := range objects {
			if obj.ID() == 0 {
				obj.SetID(s.nextID)
				s.nextID++
			}
			s.registry[obj.ID()] = obj
		}
	}
}

// WithComputeWorkers sizes the goroutine pool for the parallel CPU prep phase
// of PrepareFrame. Defaults to runtime.NumCPU()-1. More workers help scenes
// with many objects; fewer cut scheduling overhead for small ones.
//
// Parameters:
//   - n: worker count, raised to 1 if lower
//
// Returns:
//   - SceneBuilderOption: a function that sets the count
func WithComputeWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		s.computeWorkers = max(n, 1)
	}
}

// WithCullingDisabled turns off frustum culling: PrepareFrame skips the
// bounding-sphere test and every enabled object is drawn whether or not it
// intersects the view volume. Culling is on by default.
//
// Parameters:
//   - disabled: true to skip the culling test
//
// Returns:
//   - SceneBuilderOption: a function that sets the flag
func WithCullingDisabled(disabled bool) SceneBuilderOption {
	return func(s *scene) {
		s.cullingDisabled = disabled
	}
}

// WithTransparencySettings attaches pre-built transparency settings, fixing
// the tile size, bin count, or depth range before the first frame. When
// omitted the scene uses oit.NewSettings() defaults with ModeInactive.
//
// Parameters:
//   - settings: settings to attach
//
// Returns:
//   - SceneBuilderOption: a function that attaches the settings
func WithTransparencySettings(settings oit.Settings) SceneBuilderOption {
	return func(s *scene) {
		s.settings = settings
	}
}
