package mesh

import (
	"github.com/Carmen-Shannon/lucent-go/engine/renderer/bind_group_provider"
)

// MeshBuilderOption configures a mesh during NewMesh.
type MeshBuilderOption func(*mesh)

// WithName names the mesh. Pipeline keys and debug labels derive from it.
//
// Parameters:
//   - name: the mesh identifier
//
// Returns:
//   - MeshBuilderOption: a function that stores the name
func WithName(name string) MeshBuilderOption {
	return func(m *mesh) {
		m.name = name
	}
}

// WithProvider swaps in a custom provider for the mesh's GPU resources.
//
// Parameters:
//   - provider: holds vertex/index buffers and bind group data once uploaded
//
// Returns:
//   - MeshBuilderOption: a function that installs the provider
func WithProvider(provider bind_group_provider.BindGroupProvider) MeshBuilderOption {
	return func(m *mesh) {
		m.provider = provider
	}
}

// WithBoundingRadius overrides the bounding sphere radius that
// ComputeBoundingRadius would derive from the vertex data. Use it when a
// hand-tuned conservative bound is preferred.
//
// Parameters:
//   - radius: bounding sphere radius in model space
//
// Returns:
//   - MeshBuilderOption: a function that stores the radius
func WithBoundingRadius(radius float32) MeshBuilderOption {
	return func(m *mesh) {
		m.boundingRadius = radius
	}
}

// WithVertexData supplies the packed vertex bytes, laid out per GPUVertex.
//
// Parameters:
//   - data: marshaled vertex data
//
// Returns:
//   - MeshBuilderOption: a function that stores the vertex bytes
func WithVertexData(data []byte) MeshBuilderOption {
	return func(m *mesh) {
		m.vertexData = data
	}
}

// WithIndexData supplies the index bytes, little-endian uint32.
//
// Parameters:
//   - data: marshaled index data
//
// Returns:
//   - MeshBuilderOption: a function that stores the index bytes
func WithIndexData(data []byte) MeshBuilderOption {
	return func(m *mesh) {
		m.indexData = data
	}
}

// WithIndexCount records how many indices draw calls cover.
//
// Parameters:
//   - count: number of indices in the index data
//
// Returns:
//   - MeshBuilderOption: a function that stores the count
func WithIndexCount(count int) MeshBuilderOption {
	return func(m *mesh) {
		m.indexCount = count
	}
}
