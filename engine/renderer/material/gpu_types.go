package material

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUMaterialParamsSource is the WGSL MaterialParams struct fragment shaders
// compile against. Layout mirrors GPUMaterialParams.
//
//go:embed assets/material_params.wgsl
var GPUMaterialParamsSource string

// GPUMaterialParams is the material uniform as the GPU reads it: one
// vec4<f32>, 16 bytes, matching the WGSL MaterialParams struct in
// GPUMaterialParamsSource. For transparent materials the alpha channel
// carries the surface coverage consumed by the weighted-blend accumulation
// shaders.
type GPUMaterialParams struct {
	BaseColor [4]float32 // RGBA, alpha doubling as coverage
}

// Size reports the marshaled byte size.
//
// Returns:
//   - int: byte size of the uniform
func (g *GPUMaterialParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal encodes the uniform little-endian for GPU upload.
//
// Returns:
//   - []byte: 16-byte encoding
func (g *GPUMaterialParams) Marshal() []byte {
	buf := make([]byte, 16)
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.BaseColor[i]))
	}
	return buf
}
