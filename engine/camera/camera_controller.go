package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/lucent-go/common"
)

// CameraController owns the camera's positional state as an orbit rig: the
// camera sits on a sphere around a target point, described by radius, azimuth,
// and elevation. Orbit and zoom adjust the spherical coordinates; panning
// translates rig and target together along the camera's local axes so the
// orbit relationship is preserved. Camera reads the controller's position and
// target when composing its view matrix.
type CameraController interface {
	// Position reports where the rig currently places the camera.
	//
	// Returns:
	//   - x, y, z: camera location in world space
	Position() (x, y, z float32)

	// Target reports the pivot point the camera faces.
	//
	// Returns:
	//   - x, y, z: pivot location in world space
	Target() (x, y, z float32)

	// SetTarget moves the pivot point and recomputes the camera position
	// from the spherical coordinates.
	//
	// Parameters:
	//   - x, y, z: new pivot location
	SetTarget(x, y, z float32)

	// SetPosition places the camera directly, leaving the spherical
	// coordinates untouched.
	//
	// Parameters:
	//   - x, y, z: new camera location
	SetPosition(x, y, z float32)

	// Orbit rotates the rig around the target. Positive dAzimuth swings the
	// camera toward +X, positive dElevation tilts it upward. Elevation is
	// clamped to its bounds.
	//
	// Parameters:
	//   - dAzimuth: horizontal angle delta in radians
	//   - dElevation: vertical angle delta in radians
	Orbit(dAzimuth, dElevation float32)

	// Zoom adjusts the orbit radius. Positive delta zooms in, scaled by
	// ZoomSpeed and clamped to the radius bounds.
	//
	// Parameters:
	//   - delta: positive values move closer
	Zoom(delta float32)

	// Radius reports the current camera-to-pivot distance.
	//
	// Returns:
	//   - float32: orbit radius
	Radius() float32

	// SetRadius replaces the orbit radius, clamped to the radius bounds.
	//
	// Parameters:
	//   - radius: new camera-to-pivot distance
	SetRadius(radius float32)

	// MinRadius reports the closest the rig may zoom.
	//
	// Returns:
	//   - float32: lower radius bound
	MinRadius() float32

	// MaxRadius reports the farthest the rig may zoom.
	//
	// Returns:
	//   - float32: upper radius bound
	MaxRadius() float32

	// Azimuth returns the horizontal angle around the world Y axis. Zero
	// places the camera on the +Z side of the target.
	//
	// Returns:
	//   - float32: horizontal angle, radians
	Azimuth() float32

	// SetAzimuth replaces the horizontal angle and recomputes position.
	//
	// Parameters:
	//   - azimuth: horizontal angle, radians
	SetAzimuth(azimuth float32)

	// Elevation returns the vertical angle above the horizontal plane.
	//
	// Returns:
	//   - float32: vertical angle, radians
	Elevation() float32

	// SetElevation replaces the vertical angle, clamped to the elevation
	// bounds.
	//
	// Parameters:
	//   - elevation: vertical angle, radians
	SetElevation(elevation float32)

	// MinElevation reports the lowest allowed tilt.
	//
	// Returns:
	//   - float32: lower elevation bound, radians
	MinElevation() float32

	// MaxElevation reports the highest allowed tilt.
	//
	// Returns:
	//   - float32: upper elevation bound, radians
	MaxElevation() float32

	// MouseSensitivity returns the drag-to-radians multiplier input glue
	// should apply to cursor deltas before calling Orbit.
	//
	// Returns:
	//   - float32: radians per unit of cursor travel
	MouseSensitivity() float32

	// ZoomSpeed reports the zoom input multiplier.
	//
	// Returns:
	//   - float32: scale applied to Zoom deltas
	ZoomSpeed() float32

	// PanRight translates rig and target along the camera's local right axis.
	// Negative delta moves left.
	//
	// Parameters:
	//   - delta: travel scaled by PanSpeed
	PanRight(delta float32)

	// PanUp translates rig and target along the camera's local up axis.
	// Negative delta moves down.
	//
	// Parameters:
	//   - delta: travel scaled by PanSpeed
	PanUp(delta float32)

	// PanForward translates rig and target along the camera's local forward
	// axis. Negative delta moves away from the view direction.
	//
	// Parameters:
	//   - delta: travel scaled by PanSpeed
	PanForward(delta float32)

	// PanSpeed reports the pan input multiplier.
	//
	// Returns:
	//   - float32: scale applied to pan deltas
	PanSpeed() float32
}

// orbitController is the single CameraController implementation.
type orbitController struct {
	mu *sync.Mutex

	position [3]float32
	target   [3]float32

	radius    float32
	azimuth   float32 // angle around world Y, 0 on the +Z side of the target
	elevation float32 // angle above the horizontal plane

	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	mouseSensitivity float32
	zoomSpeed        float32
	panSpeed         float32
}

var _ CameraController = &orbitController{}

// NewCameraController creates an orbit controller. The defaults frame a scene
// a few units across: radius 10 within bounds [1, 500], elevation 30 degrees,
// and zoom steps of 1.5 units per scroll tick.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	c := &orbitController{
		mu: &sync.Mutex{},

		radius:    10.0,
		elevation: float32(math.Pi / 6),

		minRadius:    1.0,
		maxRadius:    500.0,
		minElevation: 0.05,
		maxElevation: float32(math.Pi/2 - 0.1),

		mouseSensitivity: 0.005,
		zoomSpeed:        1.5,
		panSpeed:         1.0,
	}
	for _, option := range options {
		option(c)
	}

	c.place()
	return c
}

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// place recomputes the camera position from the spherical coordinates. Must
// be called after radius, azimuth, elevation, or target changes. Caller must
// hold the mutex.
func (c *orbitController) place() {
	cosElev := float32(math.Cos(float64(c.elevation)))
	sinElev := float32(math.Sin(float64(c.elevation)))
	cosAzim := float32(math.Cos(float64(c.azimuth)))
	sinAzim := float32(math.Sin(float64(c.azimuth)))

	c.position[0] = c.target[0] + c.radius*cosElev*sinAzim
	c.position[1] = c.target[1] + c.radius*sinElev
	c.position[2] = c.target[2] + c.radius*cosElev*cosAzim
}

// axes returns the rig's local right, up, and forward unit vectors, matching
// the axes LookAt derives with world up (0, 1, 0). All three are zero when
// position and target coincide or the camera looks straight down the Y axis.
// Caller must hold the mutex.
func (c *orbitController) axes() (right, up, forward [3]float32) {
	// backward = normalize(position - target), LookAt's z axis
	back := [3]float32{
		c.position[0] - c.target[0],
		c.position[1] - c.target[1],
		c.position[2] - c.target[2],
	}
	if common.Dot3(back, back) < 1e-16 {
		return
	}
	back = common.Normalize3(back)

	// right = normalize(cross(worldUp, backward)); with worldUp (0,1,0) the
	// cross reduces to (back.z, 0, -back.x).
	right = [3]float32{back[2], 0, -back[0]}
	if common.Dot3(right, right) < 1e-16 {
		return [3]float32{}, [3]float32{}, [3]float32{}
	}
	right = common.Normalize3(right)

	up = common.Cross3(back, right)
	forward = [3]float32{-back[0], -back[1], -back[2]}
	return right, up, forward
}

// shift translates rig and target together along an axis. Caller must hold
// the mutex.
func (c *orbitController) shift(axis [3]float32, amount float32) {
	for i := range 3 {
		c.target[i] += axis[i] * amount
		c.position[i] += axis[i] * amount
	}
}

func (c *orbitController) Position() (x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position[0], c.position[1], c.position[2]
}

func (c *orbitController) SetPosition(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = [3]float32{x, y, z}
}

func (c *orbitController) Target() (x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target[0], c.target[1], c.target[2]
}

func (c *orbitController) SetTarget(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = [3]float32{x, y, z}
	c.place()
}

func (c *orbitController) Orbit(dAzimuth, dElevation float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.azimuth += dAzimuth
	c.elevation = clamp(c.elevation+dElevation, c.minElevation, c.maxElevation)
	c.place()
}

func (c *orbitController) Zoom(delta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.radius = clamp(c.radius-delta*c.zoomSpeed, c.minRadius, c.maxRadius)
	c.place()
}

func (c *orbitController) Radius() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.radius
}

func (c *orbitController) SetRadius(radius float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.radius = clamp(radius, c.minRadius, c.maxRadius)
	c.place()
}

func (c *orbitController) MinRadius() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.minRadius
}

func (c *orbitController) MaxRadius() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxRadius
}

func (c *orbitController) Azimuth() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.azimuth
}

func (c *orbitController) SetAzimuth(azimuth float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.azimuth = azimuth
	c.place()
}

func (c *orbitController) Elevation() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elevation
}

func (c *orbitController) SetElevation(elevation float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.elevation = clamp(elevation, c.minElevation, c.maxElevation)
	c.place()
}

func (c *orbitController) MinElevation() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.minElevation
}

func (c *orbitController) MaxElevation() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxElevation
}

func (c *orbitController) MouseSensitivity() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mouseSensitivity
}

func (c *orbitController) ZoomSpeed() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zoomSpeed
}

func (c *orbitController) PanRight(delta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	right, _, _ := c.axes()
	c.shift(right, delta*c.panSpeed)
}

func (c *orbitController) PanUp(delta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, up, _ := c.axes()
	c.shift(up, delta*c.panSpeed)
}

func (c *orbitController) PanForward(delta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _, forward := c.axes()
	c.shift(forward, delta*c.panSpeed)
}

func (c *orbitController) PanSpeed() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.panSpeed
}
