package game_object

import (
	"github.com/Carmen-Shannon/lucent-go/engine/mesh"
	"github.com/Carmen-Shannon/lucent-go/engine/renderer/material"
)

// GameObjectBuilderOption configures a GameObject during construction.
type GameObjectBuilderOption func(*gameObject)

// WithID assigns an explicit identifier. Objects added to a scene with ID 0
// get one assigned there.
//
// Parameters:
//   - id: identifier, unique within a scene
//
// Returns:
//   - GameObjectBuilderOption: a function that sets the ID
func WithID(id uint64) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.id = id
	}
}

// WithEnabled sets the initial render state.
//
// Parameters:
//   - enabled: true to render the object, false to skip it
//
// Returns:
//   - GameObjectBuilderOption: a function that sets the state
func WithEnabled(enabled bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.enabled.Store(enabled)
	}
}

// WithMesh attaches the geometry this object draws.
//
// Parameters:
//   - m: mesh to attach
//
// Returns:
//   - GameObjectBuilderOption: a function that sets the mesh
func WithMesh(m mesh.Mesh) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.msh = m
	}
}

// WithMaterial attaches the surface this object draws with.
//
// Parameters:
//   - m: material to attach
//
// Returns:
//   - GameObjectBuilderOption: a function that sets the material
func WithMaterial(m material.Material) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.mat = m
	}
}

// WithPosition sets the starting world-space position.
//
// Parameters:
//   - x, y, z: translation components
//
// Returns:
//   - GameObjectBuilderOption: a function that sets the position
func WithPosition(x, y, z float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.position = [3]float32{x, y, z}
	}
}

// WithScale sets the starting per-axis scale. Objects default to unit scale.
//
// Parameters:
//   - sx, sy, sz: scale factors
//
// Returns:
//   - GameObjectBuilderOption: a function that sets the scale
func WithScale(sx, sy, sz float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.scale = [3]float32{sx, sy, sz}
	}
}

// WithRotation sets the starting orientation.
//
// Parameters:
//   - rx, ry, rz: Euler angles, radians
//
// Returns:
//   - GameObjectBuilderOption: a function that sets the rotation
func WithRotation(rx, ry, rz float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.rotation = [3]float32{rx, ry, rz}
	}
}

// WithRotationSpeed makes the object spin continuously during scene updates.
//
// Parameters:
//   - rx, ry, rz: angular velocity per axis, radians per second
//
// Returns:
//   - GameObjectBuilderOption: a function that sets the speed
func WithRotationSpeed(rx, ry, rz float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.rotationSpeed = [3]float32{rx, ry, rz}
	}
}
