package camera

import (
	"github.com/Carmen-Shannon/lucent-go/engine/renderer/bind_group_provider"
)

// CameraBuilderOption configures a camera during NewCamera. Options assign
// settings only; NewCamera recomputes the matrices once after all options
// apply.
type CameraBuilderOption func(*perspectiveCamera)

// WithUp overrides the world-up direction, +Y by default.
//
// Parameters:
//   - x, y, z: up vector components
//
// Returns:
//   - CameraBuilderOption: a function that stores the up vector
func WithUp(x, y, z float32) CameraBuilderOption {
	return func(c *perspectiveCamera) {
		c.up = [3]float32{x, y, z}
	}
}

// WithFov chooses the vertical field of view.
//
// Parameters:
//   - fov: vertical field of view in radians
//
// Returns:
//   - CameraBuilderOption: a function that stores the field of view
func WithFov(fov float32) CameraBuilderOption {
	return func(c *perspectiveCamera) {
		c.fov = fov
	}
}

// WithAspect chooses the projection aspect ratio. The engine overwrites this
// on window resize, so it matters mainly for windowless use.
//
// Parameters:
//   - aspect: width over height
//
// Returns:
//   - CameraBuilderOption: a function that stores the aspect ratio
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *perspectiveCamera) {
		c.aspect = aspect
	}
}

// WithNear places the near clipping plane.
//
// Parameters:
//   - near: near plane distance, world units
//
// Returns:
//   - CameraBuilderOption: a function that stores the near distance
func WithNear(near float32) CameraBuilderOption {
	return func(c *perspectiveCamera) {
		c.near = near
	}
}

// WithFar places the far clipping plane.
//
// Parameters:
//   - far: far plane distance, world units
//
// Returns:
//   - CameraBuilderOption: a function that stores the far distance
func WithFar(far float32) CameraBuilderOption {
	return func(c *perspectiveCamera) {
		c.far = far
	}
}

// WithController attaches a controller. The camera derives its position and
// target from the controller when recomputing matrices.
//
// Parameters:
//   - ctrl: the controller to attach
//
// Returns:
//   - CameraBuilderOption: a function that installs the controller
func WithController(ctrl CameraController) CameraBuilderOption {
	return func(c *perspectiveCamera) {
		c.controller = ctrl
	}
}

// WithBindGroupProvider swaps in a custom provider for the camera uniform.
//
// Parameters:
//   - provider: the bind group provider to attach
//
// Returns:
//   - CameraBuilderOption: a function that installs the provider
func WithBindGroupProvider(provider bind_group_provider.BindGroupProvider) CameraBuilderOption {
	return func(c *perspectiveCamera) {
		c.provider = provider
	}
}
