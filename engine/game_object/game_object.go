package game_object

import (
	"sync/atomic"

	"github.com/Carmen-Shannon/lucent-go/engine/mesh"
	"github.com/Carmen-Shannon/lucent-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/lucent-go/engine/renderer/material"
)

type gameObject struct {
	id            uint64
	enabled       atomic.Bool
	msh           mesh.Mesh
	mat           material.Material
	modelProvider bind_group_provider.BindGroupProvider

	position      [3]float32
	scale         [3]float32
	rotation      [3]float32
	rotationSpeed [3]float32
}

// GameObject is one scene entity: a mesh, a material, and a transform. The
// transform lives on the object itself and the scene folds it into the
// per-object model uniform each frame.
type GameObject interface {
	// ID returns the identifier the scene registered this object under.
	//
	// Returns:
	//   - uint64: the identifier, zero before the scene assigns one
	ID() uint64

	// Enabled reports whether the scene draws this object.
	//
	// Returns:
	//   - bool: true when the object is drawn
	Enabled() bool

	// Mesh returns the geometry this object draws with.
	//
	// Returns:
	//   - mesh.Mesh: the mesh, nil when unset
	Mesh() mesh.Mesh

	// Material returns the surface appearance this object draws with.
	//
	// Returns:
	//   - material.Material: the material, nil when unset
	Material() material.Material

	// ModelProvider returns the bind group provider carrying this object's
	// model uniform. The scene attaches it when the object is added.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the provider, nil before the scene attaches one
	ModelProvider() bind_group_provider.BindGroupProvider

	// Position returns the world-space position.
	//
	// Returns:
	//   - x, y, z: the position components
	Position() (x, y, z float32)

	// Rotation returns the Euler rotation in radians.
	//
	// Returns:
	//   - rx, ry, rz: the rotation about each axis
	Rotation() (rx, ry, rz float32)

	// RotationSpeed returns the spin the scene integrates into the rotation
	// each frame, in radians per second.
	//
	// Returns:
	//   - rx, ry, rz: the angular speed about each axis
	RotationSpeed() (rx, ry, rz float32)

	// Scale returns the per-axis scale factors.
	//
	// Returns:
	//   - sx, sy, sz: the scale components
	Scale() (sx, sy, sz float32)

	// TransformData returns the whole transform at once, the form the scene
	// consumes when building the model matrix.
	//
	// Returns:
	//   - pos: the position
	//   - scale: the scale factors
	//   - rot: the rotation in radians
	//   - rotSpeed: the angular speed in radians per second
	TransformData() (pos, scale, rot, rotSpeed [3]float32)

	// SetID stores the scene-assigned identifier.
	//
	// Parameters:
	//   - id: the identifier
	SetID(id uint64)

	// SetEnabled toggles whether the scene draws this object.
	//
	// Parameters:
	//   - enabled: true to draw
	SetEnabled(enabled bool)

	// SetMesh replaces the geometry.
	//
	// Parameters:
	//   - m: the mesh to draw with
	SetMesh(m mesh.Mesh)

	// SetMaterial replaces the surface appearance.
	//
	// Parameters:
	//   - m: the material to draw with
	SetMaterial(m material.Material)

	// SetModelProvider attaches the provider carrying this object's model
	// uniform.
	//
	// Parameters:
	//   - provider: the model uniform provider
	SetModelProvider(provider bind_group_provider.BindGroupProvider)

	// SetPosition moves the object.
	//
	// Parameters:
	//   - x, y, z: the new position
	SetPosition(x, y, z float32)

	// SetRotation replaces the Euler rotation.
	//
	// Parameters:
	//   - rx, ry, rz: the new rotation in radians
	SetRotation(rx, ry, rz float32)

	// SetRotationSpeed replaces the per-frame spin.
	//
	// Parameters:
	//   - rx, ry, rz: the new angular speed in radians per second
	SetRotationSpeed(rx, ry, rz float32)

	// SetScale replaces the per-axis scale factors.
	//
	// Parameters:
	//   - sx, sy, sz: the new scale
	SetScale(sx, sy, sz float32)
}

var _ GameObject = &gameObject{}

// NewGameObject builds an object from the given options. Objects start
// enabled with unit scale.
//
// Parameters:
//   - options: functional options applied in order
//
// Returns:
//   - GameObject: the configured object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	obj := &gameObject{
		scale: [3]float32{1, 1, 1},
	}
	obj.enabled.Store(true)
	for _, option := range options {
		option(obj)
	}
	return obj
}

func (g *gameObject) ID() uint64 {
	return g.id
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) Mesh() mesh.Mesh {
	return g.msh
}

func (g *gameObject) Material() material.Material {
	return g.mat
}

func (g *gameObject) ModelProvider() bind_group_provider.BindGroupProvider {
	return g.modelProvider
}

func (g *gameObject) Position() (x, y, z float32) {
	return g.position[0], g.position[1], g.position[2]
}

func (g *gameObject) Rotation() (rx, ry, rz float32) {
	return g.rotation[0], g.rotation[1], g.rotation[2]
}

func (g *gameObject) RotationSpeed() (rx, ry, rz float32) {
	return g.rotationSpeed[0], g.rotationSpeed[1], g.rotationSpeed[2]
}

func (g *gameObject) Scale() (sx, sy, sz float32) {
	return g.scale[0], g.scale[1], g.scale[2]
}

func (g *gameObject) TransformData() (pos, scale, rot, rotSpeed [3]float32) {
	return g.position, g.scale, g.rotation, g.rotationSpeed
}

func (g *gameObject) SetID(id uint64) {
	g.id = id
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) SetMesh(m mesh.Mesh) {
	g.msh = m
}

func (g *gameObject) SetMaterial(m material.Material) {
	g.mat = m
}

func (g *gameObject) SetModelProvider(provider bind_group_provider.BindGroupProvider) {
	g.modelProvider = provider
}

func (g *gameObject) SetPosition(x, y, z float32) {
	g.position = [3]float32{x, y, z}
}

func (g *gameObject) SetRotation(rx, ry, rz float32) {
	g.rotation = [3]float32{rx, ry, rz}
}

func (g *gameObject) SetRotationSpeed(rx, ry, rz float32) {
	g.rotationSpeed = [3]float32{rx, ry, rz}
}

func (g *gameObject) SetScale(sx, sy, sz float32) {
	g.scale = [3]float32{sx, sy, sz}
}
