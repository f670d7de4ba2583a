package camera

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUCameraUniformSource is the WGSL CameraUniform struct shaders compile
// against. Layout mirrors GPUCameraUniform.
//
//go:embed assets/camera_uniform.wgsl
var GPUCameraUniformSource string

// GPUCameraUniform is the camera uniform buffer as the GPU reads it: 144
// bytes, std430 aligned, matching the WGSL CameraUniform struct in
// GPUCameraUniformSource. The standalone view matrix rides alongside the
// combined view-projection so fragment weighting can recover view-space
// depth per vertex.
type GPUCameraUniform struct {
	ViewProj       [16]float32 // bytes 0..63, Projection * View
	View           [16]float32 // bytes 64..127
	CameraPosition [3]float32  // bytes 128..139, world space
	_pad           float32     // bytes 140..143
}

// Size reports the marshaled byte size.
//
// Returns:
//   - int: byte size of the uniform, 144
func (g *GPUCameraUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal encodes the uniform little-endian for GPU upload.
//
// Returns:
//   - []byte: 144-byte encoding
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.ViewProj[i]))
	}
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(g.View[i]))
	}
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[128+i*4:], math.Float32bits(g.CameraPosition[i]))
	}
	binary.LittleEndian.PutUint32(buf[140:], 0) // _pad
	return buf
}
