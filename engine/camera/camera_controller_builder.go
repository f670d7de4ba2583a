package camera

// CameraControllerOption configures an orbit controller during construction.
// Options write their values directly, without bounds clamping; the first
// clamp happens on the Set methods after construction.
type CameraControllerOption func(*orbitController)

// WithRadius sets the starting camera-to-pivot distance.
//
// Parameters:
//   - radius: orbit radius
//
// Returns:
//   - CameraControllerOption: a function that sets the radius
func WithRadius(radius float32) CameraControllerOption {
	return func(c *orbitController) {
		c.radius = radius
	}
}

// WithAzimuth sets the starting horizontal angle around the world Y axis.
//
// Parameters:
//   - azimuth: horizontal angle, radians, 0 placing the camera on +Z
//
// Returns:
//   - CameraControllerOption: a function that sets the azimuth
func WithAzimuth(azimuth float32) CameraControllerOption {
	return func(c *orbitController) {
		c.azimuth = azimuth
	}
}

// WithElevation sets the starting vertical angle above the horizontal plane.
//
// Parameters:
//   - elevation: vertical angle, radians, 0 meaning level
//
// Returns:
//   - CameraControllerOption: a function that sets the elevation
func WithElevation(elevation float32) CameraControllerOption {
	return func(c *orbitController) {
		c.elevation = elevation
	}
}

// WithTarget sets the pivot point the camera orbits.
//
// Parameters:
//   - x, y, z: pivot location in world space
//
// Returns:
//   - CameraControllerOption: a function that sets the pivot
func WithTarget(x, y, z float32) CameraControllerOption {
	return func(c *orbitController) {
		c.target = [3]float32{x, y, z}
	}
}

// WithRadiusBounds limits how close and how far the rig may zoom.
//
// Parameters:
//   - min: lower radius bound
//   - max: upper radius bound
//
// Returns:
//   - CameraControllerOption: a function that sets the bounds
func WithRadiusBounds(min, max float32) CameraControllerOption {
	return func(c *orbitController) {
		c.minRadius = min
		c.maxRadius = max
	}
}

// WithElevationBounds limits the tilt range, keeping the rig from diving
// under the floor or flipping over the top.
//
// Parameters:
//   - min: lower elevation bound, radians
//   - max: upper elevation bound, radians
//
// Returns:
//   - CameraControllerOption: a function that sets the bounds
func WithElevationBounds(min, max float32) CameraControllerOption {
	return func(c *orbitController) {
		c.minElevation = min
		c.maxElevation = max
	}
}

// WithMouseSensitivity sets the drag-to-radians multiplier input glue applies
// to cursor deltas before calling Orbit.
//
// Parameters:
//   - sensitivity: radians per unit of cursor travel
//
// Returns:
//   - CameraControllerOption: a function that sets the sensitivity
func WithMouseSensitivity(sensitivity float32) CameraControllerOption {
	return func(c *orbitController) {
		c.mouseSensitivity = sensitivity
	}
}

// WithZoomSpeed sets the scale applied to Zoom deltas.
//
// Parameters:
//   - speed: zoom input multiplier
//
// Returns:
//   - CameraControllerOption: a function that sets the speed
func WithZoomSpeed(speed float32) CameraControllerOption {
	return func(c *orbitController) {
		c.zoomSpeed = speed
	}
}

// WithPanSpeed sets the scale applied to pan deltas.
//
// Parameters:
//   - speed: pan input multiplier
//
// Returns:
//   - CameraControllerOption: a function that sets the speed
func WithPanSpeed(speed float32) CameraControllerOption {
	return func(c *orbitController) {
		c.panSpeed = speed
	}
}
