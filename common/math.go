package common

import (
	"math"
	"unsafe"
)

// SliceToBytes reinterprets a slice as raw bytes for GPU buffer uploads.
// The view aliases the source memory, so it is only valid while the source
// slice is alive and unmodified.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte view of the slice contents, or nil if the slice is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	size := int(unsafe.Sizeof(data[0]))
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), size*len(data))
}

// StructToBytes reinterprets a struct as raw bytes for GPU buffer uploads.
// The view aliases the struct's memory and spans its full in-memory size,
// padding included.
//
// Parameters:
//   - v: pointer to the struct to reinterpret
//
// Returns:
//   - []byte: byte view of the struct's memory
func StructToBytes[T any](v *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), int(unsafe.Sizeof(*v)))
}

// Dot3 returns the dot product of two 3-component vectors.
func Dot3(a, b [3]float32) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// Cross3 returns the cross product a x b.
func Cross3(a, b [3]float32) [3]float32 {
	return [3]float32{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// Normalize3 returns v scaled to unit length. A zero vector is returned
// unchanged.
func Normalize3(v [3]float32) [3]float32 {
	length := float32(math.Sqrt(float64(Dot3(v, v))))
	if length == 0 {
		return v
	}
	inv := 1.0 / length
	return [3]float32{v[0] * inv, v[1] * inv, v[2] * inv}
}

// Identity resets a 4x4 column-major matrix (flat slice) to the identity.
//
// Parameters:
//   - m: destination matrix, at least 16 floats
func Identity(m []float32) {
	clear(m)
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
}

// Mul4 stores the matrix product a * b in out. All matrices are 4x4 in
// column-major order.
//
// Parameters:
//   - out: destination matrix, at least 16 floats, may alias a or b
//   - a: left-hand matrix (16 elements)
//   - b: right-hand matrix (16 elements)
func Mul4(out, a, b []float32) {
	// buf keeps the product stable when out aliases an operand.
	var buf [16]float32
	for col := range 4 {
		for row := range 4 {
			sum := float32(0)
			for k := range 4 {
				sum += a[k*4+row] * b[col*4+k]
			}
			buf[col*4+row] = sum
		}
	}
	copy(out, buf[:])
}

// Perspective writes a perspective projection matrix mapping depth to WebGPU
// clip space: the near plane lands on clip z = 0 and the far plane on 1.
//
// Parameters:
//   - out: destination matrix, at least 16 floats
//   - fovY: vertical field of view, radians
//   - aspect: viewport width over height
//   - near: near plane distance, positive
//   - far: far plane distance, greater than near
func Perspective(out []float32, fovY, aspect, near, far float32) {
	focal := 1.0 / float32(math.Tan(float64(fovY)*0.5))
	clear(out[:16])
	out[0] = focal / aspect
	out[5] = focal
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)
}

// LookAt writes a view matrix transforming world coordinates into camera
// space, with the camera at the eye point facing the center point. Degenerate
// input (eye on center, or the up vector parallel to the view direction)
// produces a matrix with zeroed axes rather than NaNs.
//
// Parameters:
//   - out: destination matrix, at least 16 floats
//   - eyeX, eyeY, eyeZ: camera position
//   - centerX, centerY, centerZ: point the camera faces
//   - upX, upY, upZ: approximate up direction, usually 0,1,0
func LookAt(out []float32, eyeX, eyeY, eyeZ, centerX, centerY, centerZ, upX, upY, upZ float32) {
	z := Normalize3([3]float32{eyeX - centerX, eyeY - centerY, eyeZ - centerZ})
	x := Normalize3(Cross3([3]float32{upX, upY, upZ}, z))
	y := Cross3(z, x)

	out[0], out[4], out[8], out[12] = x[0], x[1], x[2], -(x[0]*eyeX + x[1]*eyeY + x[2]*eyeZ)
	out[1], out[5], out[9], out[13] = y[0], y[1], y[2], -(y[0]*eyeX + y[1]*eyeY + y[2]*eyeZ)
	out[2], out[6], out[10], out[14] = z[0], z[1], z[2], -(z[0]*eyeX + z[1]*eyeY + z[2]*eyeZ)
	out[3], out[7], out[11], out[15] = 0, 0, 0, 1
}

// BuildModelMatrix writes a 4x4 model matrix combining translation, Euler
// rotation, and per-axis scale. Rotation applies in Y * X * Z order
// (yaw, then pitch, then roll).
//
// Parameters:
//   - out: destination matrix, at least 16 floats
//   - posX, posY, posZ: world-space translation
//   - rotX, rotY, rotZ: Euler angles, radians
//   - scaleX, scaleY, scaleZ: per-axis scale
func BuildModelMatrix(out []float32, posX, posY, posZ, rotX, rotY, rotZ, scaleX, scaleY, scaleZ float32) {
	sx, cx := sincos(rotX)
	sy, cy := sincos(rotY)
	sz, cz := sincos(rotZ)

	// Columns of Ry*Rx*Rz, scaled per axis.
	out[0] = (cy*cz + sy*sx*sz) * scaleX
	out[1] = (cx * sz) * scaleX
	out[2] = (-sy*cz + cy*sx*sz) * scaleX
	out[3] = 0

	out[4] = (cy*-sz + sy*sx*cz) * scaleY
	out[5] = (cx * cz) * scaleY
	out[6] = (sy*sz + cy*sx*cz) * scaleY
	out[7] = 0

	out[8] = (sy * cx) * scaleZ
	out[9] = (-sx) * scaleZ
	out[10] = (cy * cx) * scaleZ
	out[11] = 0

	out[12] = posX
	out[13] = posY
	out[14] = posZ
	out[15] = 1
}

// Invert4 writes the inverse of a 4x4 column-major matrix into out using
// 2x2 sub-determinants (the cofactor method). A singular matrix leaves out
// untouched.
//
// Parameters:
//   - out: destination matrix, at least 16 floats
//   - m: source matrix, 16 floats column-major
//
// Returns:
//   - bool: true on success, false when m is singular
func Invert4(out, m []float32) bool {
	// 2x2 minors of the left (a) and right (b) matrix halves.
	a0 := m[0]*m[5] - m[4]*m[1]
	a1 := m[0]*m[6] - m[4]*m[2]
	a2 := m[0]*m[7] - m[4]*m[3]
	a3 := m[1]*m[6] - m[5]*m[2]
	a4 := m[1]*m[7] - m[5]*m[3]
	a5 := m[2]*m[7] - m[6]*m[3]

	b5 := m[10]*m[15] - m[14]*m[11]
	b4 := m[9]*m[15] - m[13]*m[11]
	b3 := m[9]*m[14] - m[13]*m[10]
	b2 := m[8]*m[15] - m[12]*m[11]
	b1 := m[8]*m[14] - m[12]*m[10]
	b0 := m[8]*m[13] - m[12]*m[9]

	det := a0*b5 - a1*b4 + a2*b3 + a3*b2 - a4*b1 + a5*b0
	if det == 0 {
		return false
	}
	rd := 1.0 / det

	out[0] = (m[5]*b5 - m[6]*b4 + m[7]*b3) * rd
	out[1] = (-m[1]*b5 + m[2]*b4 - m[3]*b3) * rd
	out[2] = (m[13]*a5 - m[14]*a4 + m[15]*a3) * rd
	out[3] = (-m[9]*a5 + m[10]*a4 - m[11]*a3) * rd

	out[4] = (-m[4]*b5 + m[6]*b2 - m[7]*b1) * rd
	out[5] = (m[0]*b5 - m[2]*b2 + m[3]*b1) * rd
	out[6] = (-m[12]*a5 + m[14]*a2 - m[15]*a1) * rd
	out[7] = (m[8]*a5 - m[10]*a2 + m[11]*a1) * rd

	out[8] = (m[4]*b4 - m[5]*b2 + m[7]*b0) * rd
	out[9] = (-m[0]*b4 + m[1]*b2 - m[3]*b0) * rd
	out[10] = (m[12]*a4 - m[13]*a2 + m[15]*a0) * rd
	out[11] = (-m[8]*a4 + m[9]*a2 - m[11]*a0) * rd

	out[12] = (-m[4]*b3 + m[5]*b1 - m[6]*b0) * rd
	out[13] = (m[0]*b3 - m[1]*b1 + m[2]*b0) * rd
	out[14] = (-m[12]*a3 + m[13]*a1 - m[14]*a0) * rd
	out[15] = (m[8]*a3 - m[9]*a1 + m[10]*a0) * rd

	return true
}

func sincos(rad float32) (sin, cos float32) {
	s, c := math.Sincos(float64(rad))
	return float32(s), float32(c)
}
