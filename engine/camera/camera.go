package camera

import (
	"math"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/lucent-go/common"
	"github.com/Carmen-Shannon/lucent-go/engine/renderer/bind_group_provider"
)

// cameraSeq numbers cameras so each bind group provider gets a unique debug label.
var cameraSeq atomic.Uint64

// FrameState is a consistent snapshot of the camera taken under one lock:
// the matrices the frame renders with plus the world-space eye position.
type FrameState struct {
	View           [16]float32
	Projection     [16]float32
	ViewProjection [16]float32
	Position       [3]float32
}

type perspectiveCamera struct {
	mu *sync.RWMutex

	up [3]float32

	fov    float32
	aspect float32
	near   float32
	far    float32

	view              [16]float32
	projection        [16]float32
	viewProjection    [16]float32
	inverseProjection [16]float32

	controller CameraController
	provider   bind_group_provider.BindGroupProvider
}

// Camera owns the perspective settings and the matrices derived from them.
// Position and target come from an attached CameraController; Frame pulls
// them in, recomputes the matrices, and hands back a FrameState snapshot
// once per rendered frame.
type Camera interface {
	// Up reports the world-space up direction orienting the view.
	//
	// Returns:
	//   - x, y, z: components of the up direction
	Up() (x, y, z float32)

	// Fov reports the vertical field of view.
	//
	// Returns:
	//   - float32: vertical field of view, radians
	Fov() float32

	// Aspect reports the viewport aspect ratio.
	//
	// Returns:
	//   - float32: width over height
	Aspect() float32

	// Near reports the near clipping plane.
	//
	// Returns:
	//   - float32: distance to the near plane
	Near() float32

	// Far reports the far clipping plane.
	//
	// Returns:
	//   - float32: distance to the far plane
	Far() float32

	// ViewMatrix returns the view matrix from the last recompute.
	//
	// Returns:
	//   - [16]float32: column-major view matrix
	ViewMatrix() [16]float32

	// ProjectionMatrix returns the projection matrix from the last recompute.
	//
	// Returns:
	//   - [16]float32: column-major projection matrix
	ProjectionMatrix() [16]float32

	// ViewProjectionMatrix returns the product Projection * View from the
	// last recompute.
	//
	// Returns:
	//   - [16]float32: column-major view-projection matrix
	ViewProjectionMatrix() [16]float32

	// InverseProjectionMatrix returns the projection matrix inverse, used to
	// reconstruct view-space positions from screen coordinates.
	//
	// Returns:
	//   - [16]float32: column-major inverse projection matrix
	InverseProjectionMatrix() [16]float32

	// Controller reports the attached CameraController.
	//
	// Returns:
	//   - CameraController: the controller, or nil when none is attached
	Controller() CameraController

	// BindGroupProvider returns the camera's bind group provider.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the bind group provider
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// Frame recomputes the matrices from the attached controller and returns
	// a snapshot of the result. Call once per frame before writing the camera
	// uniform. Without a controller the matrices keep their previous values
	// and the snapshot position is zero.
	//
	// Returns:
	//   - FrameState: the recomputed matrices and eye position
	Frame() FrameState

	// SetUp replaces the up direction and recomputes matrices.
	//
	// Parameters:
	//   - x, y, z: components of the new up direction
	SetUp(x, y, z float32)

	// SetFov replaces the vertical field of view and recomputes matrices.
	//
	// Parameters:
	//   - fov: vertical field of view, radians
	SetFov(fov float32)

	// SetAspect replaces the aspect ratio and recomputes matrices. The engine
	// calls this on window resize.
	//
	// Parameters:
	//   - aspect: width over height
	SetAspect(aspect float32)

	// SetNear replaces the near clipping plane and recomputes matrices.
	//
	// Parameters:
	//   - near: distance to the near plane
	SetNear(near float32)

	// SetFar replaces the far clipping plane and recomputes matrices.
	//
	// Parameters:
	//   - far: distance to the far plane
	SetFar(far float32)

	// SetController attaches the controller that supplies position and target.
	//
	// Parameters:
	//   - ctrl: controller to attach
	SetController(ctrl CameraController)

	// SetBindGroupProvider replaces the camera's bind group provider.
	//
	// Parameters:
	//   - provider: replacement provider
	SetBindGroupProvider(provider bind_group_provider.BindGroupProvider)
}

var _ Camera = &perspectiveCamera{}

// NewCamera creates a Camera with default perspective settings (45 degree
// vertical fov, square aspect, near 0.1, far 100) and a fresh bind group
// provider. Attach a CameraController via WithController or SetController
// before the first Frame call; until then all matrices are identity.
//
// Parameters:
//   - options: configuration options, applied in order
//
// Returns:
//   - Camera: the configured camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &perspectiveCamera{
		mu:     &sync.RWMutex{},
		up:     [3]float32{0, 1, 0},
		fov:    float32(45.0 * math.Pi / 180.0),
		aspect: 1.0,
		near:   0.1,
		far:    100.0,
		provider: bind_group_provider.NewBindGroupProvider(
			"camera_" + strconv.FormatUint(cameraSeq.Add(1)-1, 10),
		),
	}
	common.Identity(c.view[:])
	common.Identity(c.projection[:])
	common.Identity(c.viewProjection[:])
	common.Identity(c.inverseProjection[:])

	for _, option := range options {
		option(c)
	}
	if c.controller != nil {
		c.recompute()
	}
	return c
}

func (c *perspectiveCamera) Up() (x, y, z float32) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.up[0], c.up[1], c.up[2]
}

func (c *perspectiveCamera) Fov() float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fov
}

func (c *perspectiveCamera) Aspect() float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.aspect
}

func (c *perspectiveCamera) Near() float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.near
}

func (c *perspectiveCamera) Far() float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.far
}

func (c *perspectiveCamera) ViewMatrix() [16]float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.view
}

func (c *perspectiveCamera) ProjectionMatrix() [16]float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.projection
}

func (c *perspectiveCamera) ViewProjectionMatrix() [16]float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.viewProjection
}

func (c *perspectiveCamera) InverseProjectionMatrix() [16]float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inverseProjection
}

func (c *perspectiveCamera) Controller() CameraController {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.controller
}

func (c *perspectiveCamera) BindGroupProvider() bind_group_provider.BindGroupProvider {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.provider
}

func (c *perspectiveCamera) Frame() FrameState {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := FrameState{}
	if c.controller != nil {
		c.recompute()
		st.Position[0], st.Position[1], st.Position[2] = c.controller.Position()
	}
	st.View = c.view
	st.Projection = c.projection
	st.ViewProjection = c.viewProjection
	return st
}

func (c *perspectiveCamera) SetUp(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.up = [3]float32{x, y, z}
	c.recompute()
}

func (c *perspectiveCamera) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
	c.recompute()
}

func (c *perspectiveCamera) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.recompute()
}

func (c *perspectiveCamera) SetNear(near float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near = near
	c.recompute()
}

func (c *perspectiveCamera) SetFar(far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.far = far
	c.recompute()
}

func (c *perspectiveCamera) SetController(ctrl CameraController) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
}

func (c *perspectiveCamera) SetBindGroupProvider(provider bind_group_provider.BindGroupProvider) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.provider = provider
}

// recompute rebuilds the view, projection, combined, and inverse projection
// matrices from the perspective settings and the controller's position and
// target. A nil controller leaves everything untouched. Caller must hold the
// write lock.
func (c *perspectiveCamera) recompute() {
	if c.controller == nil {
		return
	}

	ex, ey, ez := c.controller.Position()
	cx, cy, cz := c.controller.Target()

	common.LookAt(c.view[:], ex, ey, ez, cx, cy, cz, c.up[0], c.up[1], c.up[2])
	common.Perspective(c.projection[:], c.fov, c.aspect, c.near, c.far)
	common.Mul4(c.viewProjection[:], c.projection[:], c.view[:])
	common.Invert4(c.inverseProjection[:], c.projection[:])
}
