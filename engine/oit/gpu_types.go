package oit

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUHistogramParamsSource is the WGSL HistogramParams struct shared by the
// histogram accumulation fragment shader and the CDF build compute shader.
// Layout mirrors GPUHistogramParams.
//
//go:embed assets/histogram_params.wgsl
var GPUHistogramParamsSource string

// GPUHistogramParams is the tiling uniform as the GPU reads it: 32 bytes,
// matching the WGSL HistogramParams struct in GPUHistogramParamsSource. The
// explicit trailing padding keeps the WGSL and Go sizes in lock-step.
type GPUHistogramParams struct {
	TileCountX uint32  // tile columns
	TileCountY uint32  // tile rows
	NumBins    uint32  // depth bins per tile
	TileSize   uint32  // tile edge, pixels
	MaxDepth   float32 // far end of the binned depth range
	_pad0      uint32
	_pad1      uint32
	_pad2      uint32
}

// Size reports the marshaled byte size.
//
// Returns:
//   - int: byte size of the uniform, 32
func (g *GPUHistogramParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal encodes the uniform little-endian for GPU upload. Padding bytes
// stay zero.
//
// Returns:
//   - []byte: 32-byte encoding
func (g *GPUHistogramParams) Marshal() []byte {
	buf := make([]byte, 32)
	binary.LittleEndian.PutUint32(buf[0:4], g.TileCountX)
	binary.LittleEndian.PutUint32(buf[4:8], g.TileCountY)
	binary.LittleEndian.PutUint32(buf[8:12], g.NumBins)
	binary.LittleEndian.PutUint32(buf[12:16], g.TileSize)
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.MaxDepth))
	return buf
}
