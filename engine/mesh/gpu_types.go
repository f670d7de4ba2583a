package mesh

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUVertexSource is the WGSL VertexInput struct mesh pipelines compile
// against. Field order and offsets mirror GPUVertex.
//
//go:embed assets/vertex.wgsl
var GPUVertexSource string

// GPUVertex is one mesh vertex as the GPU reads it: 48 bytes, std430
// aligned, matching the WGSL VertexInput struct in GPUVertexSource.
type GPUVertex struct {
	Position [3]float32 // bytes 0..11, model space
	Normal   [3]float32 // bytes 12..23
	TexCoord [2]float32 // bytes 24..31, UV
	Color    [4]float32 // bytes 32..47, RGBA
}

// Size reports the marshaled byte size.
//
// Returns:
//   - int: byte size of one vertex
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal encodes the vertex little-endian for GPU upload.
//
// Returns:
//   - []byte: 48-byte encoding
func (g *GPUVertex) Marshal() []byte {
	buf := make([]byte, 48)
	for i, f := range [12]float32{
		g.Position[0], g.Position[1], g.Position[2],
		g.Normal[0], g.Normal[1], g.Normal[2],
		g.TexCoord[0], g.TexCoord[1],
		g.Color[0], g.Color[1], g.Color[2], g.Color[3],
	} {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// ComputeBoundingRadius finds the bounding sphere radius for a vertex slice:
// the farthest vertex position from the model-space origin.
//
// Parameters:
//   - vertices: vertex data to scan
//
// Returns:
//   - float32: radius of the bounding sphere centered on the origin
func ComputeBoundingRadius(vertices []GPUVertex) float32 {
	var maxDistSq float32
	for _, v := range vertices {
		p := v.Position
		distSq := p[0]*p[0] + p[1]*p[1] + p[2]*p[2]
		if distSq > maxDistSq {
			maxDistSq = distSq
		}
	}
	return float32(math.Sqrt(float64(maxDistSq)))
}

// GPUModelDataSource is the WGSL ModelData struct carrying per-object model
// matrices. Layout mirrors GPUModelData.
//
//go:embed assets/model_data.wgsl
var GPUModelDataSource string

// GPUModelData is one object's model-to-world transform as the GPU reads it:
// a single mat4x4<f32>, 64 bytes, matching the WGSL ModelData struct in
// GPUModelDataSource.
type GPUModelData struct {
	Model [16]float32 // column-major
}

// Size reports the marshaled byte size.
//
// Returns:
//   - int: byte size of the transform
func (g *GPUModelData) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal encodes the matrix little-endian for GPU upload.
//
// Returns:
//   - []byte: 64-byte encoding
func (g *GPUModelData) Marshal() []byte {
	buf := make([]byte, 64)
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:(i+1)*4], math.Float32bits(g.Model[i]))
	}
	return buf
}
