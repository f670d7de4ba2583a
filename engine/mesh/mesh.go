package mesh

import (
	"github.com/Carmen-Shannon/lucent-go/engine/renderer/bind_group_provider"
)

// mesh is the implementation of the Mesh interface.
type mesh struct {
	name                  string
	provider              bind_group_provider.BindGroupProvider
	boundingRadius        float32
	vertexData, indexData []byte
	indexCount            int
}

// Mesh defines the interface for a GPU-ready triangle mesh.
// A Mesh holds the raw vertex/index data staged for upload plus the
// BindGroupProvider that owns the GPU buffers once they are created.
// Meshes are produced by the geometry builders in this package or
// assembled manually from GPUVertex slices.
type Mesh interface {
	// Name retrieves the mesh identifier.
	//
	// Returns:
	//   - string: the mesh name
	Name() string

	// Provider retrieves the BindGroupProvider holding GPU mesh resources.
	// Returns nil until the scene has created GPU buffers for this mesh.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the mesh provider or nil
	Provider() bind_group_provider.BindGroupProvider

	// SetProvider assigns the BindGroupProvider holding GPU mesh resources.
	//
	// Parameters:
	//   - provider: the mesh provider to set
	SetProvider(provider bind_group_provider.BindGroupProvider)

	// VertexData returns the raw vertex data for this mesh.
	//
	// Returns:
	//   - []byte: the vertex data
	VertexData() []byte

	// SetVertexData sets the raw vertex data for this mesh.
	//
	// Parameters:
	//   - data: the vertex data to set
	SetVertexData(data []byte)

	// IndexData returns the raw index data for this mesh.
	//
	// Returns:
	//   - []byte: the index data
	IndexData() []byte

	// SetIndexData sets the raw index data for this mesh.
	//
	// Parameters:
	//   - data: the index data to set
	SetIndexData(data []byte)

	// IndexCount returns the number of indices in this mesh.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int

	// SetIndexCount sets the number of indices in this mesh.
	//
	// Parameters:
	//   - count: the index count to set
	SetIndexCount(count int)

	// BoundingRadius returns the bounding sphere radius for this mesh, measured as
	// the maximum vertex distance from the origin. Used by frustum culling.
	//
	// Returns:
	//   - float32: the bounding radius
	BoundingRadius() float32
}

var _ Mesh = &mesh{}

// NewMesh creates a new Mesh instance with the specified options applied.
//
// Parameters:
//   - options: a variadic list of MeshBuilderOption functions to configure the Mesh
//
// Returns:
//   - Mesh: a new instance of Mesh configured with the provided options
func NewMesh(options ...MeshBuilderOption) Mesh {
	m := &mesh{}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *mesh) Name() string {
	return m.name
}

func (m *mesh) Provider() bind_group_provider.BindGroupProvider {
	return m.provider
}

func (m *mesh) SetProvider(provider bind_group_provider.BindGroupProvider) {
	m.provider = provider
}

func (m *mesh) VertexData() []byte {
	return m.vertexData
}

func (m *mesh) SetVertexData(data []byte) {
	m.vertexData = data
}

func (m *mesh) IndexData() []byte {
	return m.indexData
}

func (m *mesh) SetIndexData(data []byte) {
	m.indexData = data
}

func (m *mesh) IndexCount() int {
	return m.indexCount
}

func (m *mesh) SetIndexCount(count int) {
	m.indexCount = count
}

func (m *mesh) BoundingRadius() float32 {
	return m.boundingRadius
}
