package bind_group_provider

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// BufferWrite describes a single GPU buffer write targeting a binding on a
// BindGroupProvider at a byte offset. Frames batch their uniform updates into
// a slice of these so Renderer.WriteBuffers can flush them together.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	// label is a debug label attached to the GPU objects created for this provider.
	label string

	// bindGroup and bindGroupLayout are created per provider by the Renderer
	// during initialization and always belong to this provider.
	bindGroup       *wgpu.BindGroup
	bindGroupLayout *wgpu.BindGroupLayout

	// buffers, textureViews, and samplers hold binding-indexed resources. An
	// entry is either adopted (created for this provider, freed on Release) or
	// shared (owned by render targets, histogram resources, or a sibling
	// provider; dropped on Release without freeing). The owned sets record
	// which bindings are adopted.
	buffers       map[int]*wgpu.Buffer
	textureViews  map[int]*wgpu.TextureView
	samplers      map[int]*wgpu.Sampler
	ownedBuffers  map[int]bool
	ownedViews    map[int]bool
	ownedSamplers map[int]bool

	// vertexBuffer and indexBuffer hold mesh geometry. The Renderer creates
	// them for this provider, so Release frees them.
	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	// indexCount is the number of indices the Renderer draws for this provider.
	indexCount int
}

// BindGroupProvider holds the GPU binding resources for one component: the
// bind group, its layout, and the binding-indexed buffers, texture views, and
// samplers behind it. Components (Camera, GameObject, Material, Mesh) each
// carry a provider describing their shader bindings; the Renderer fills it
// with GPU objects.
//
// Resources enter a provider two ways, and Release treats them differently:
//
//   - Adopted: created for this provider, installed by the Renderer through
//     AdoptBuffer, AdoptTextureView, or AdoptSampler. Release frees them.
//   - Shared: installed with SetBuffer, SetTextureView, or SetSampler when
//     the resource is owned elsewhere, such as a histogram buffer referenced
//     by both the accumulation and CDF build bind groups. Release drops the
//     reference and leaves the resource to its owner.
//
// Usage pattern:
//  1. Component creates a provider with a debug label, sharing any
//     externally owned resources up front
//  2. Scene calls Renderer.InitBindGroup(provider, ...) to create the
//     layout, the missing buffers, and the bind group
//  3. Scene batches uniform updates through Renderer.WriteBuffers
//  4. Draw and dispatch calls read BindGroup(), VertexBuffer(), IndexBuffer()
//  5. Release tears the provider down when its bind group is rebuilt
type BindGroupProvider interface {
	// Release frees every adopted resource plus the bind group, layout, and
	// mesh buffers, then clears all bindings. Shared resources are dropped
	// without being freed; their owners release them.
	Release()

	// Label reports the debug label given at construction.
	//
	// Returns:
	//   - string: label attached to GPU objects
	Label() string

	// BindGroup returns the created bind group for draw and dispatch calls,
	// or nil if GPU resources have not been initialized.
	//
	// Returns:
	//   - *wgpu.BindGroup: bind group, nil before initialization
	BindGroup() *wgpu.BindGroup

	// BindGroupLayout returns the created bind group layout, or nil if GPU
	// resources have not been initialized.
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: layout, nil before initialization
	BindGroupLayout() *wgpu.BindGroupLayout

	// Buffer looks up the buffer stored for a binding.
	//
	// Parameters:
	//   - binding: slot within the bind group
	//
	// Returns:
	//   - *wgpu.Buffer: stored buffer, nil when the slot is empty
	Buffer(binding int) *wgpu.Buffer

	// TextureView looks up the texture view stored for a binding.
	//
	// Parameters:
	//   - binding: slot within the bind group
	//
	// Returns:
	//   - *wgpu.TextureView: stored view, nil when the slot is empty
	TextureView(binding int) *wgpu.TextureView

	// Sampler looks up the sampler stored for a binding.
	//
	// Parameters:
	//   - binding: slot within the bind group
	//
	// Returns:
	//   - *wgpu.Sampler: stored sampler, nil when the slot is empty
	Sampler(binding int) *wgpu.Sampler

	// VertexBuffer returns the mesh vertex buffer, or nil if not initialized.
	//
	// Returns:
	//   - *wgpu.Buffer: vertex buffer, nil before mesh upload
	VertexBuffer() *wgpu.Buffer

	// IndexBuffer returns the mesh index buffer, or nil if not initialized.
	//
	// Returns:
	//   - *wgpu.Buffer: index buffer, nil before mesh upload
	IndexBuffer() *wgpu.Buffer

	// IndexCount reports how many indices a draw of this provider consumes.
	//
	// Returns:
	//   - int: number of indices
	IndexCount() int

	// SetBindGroup stores the bind group created by Renderer.InitBindGroup.
	// The bind group always belongs to this provider.
	//
	// Parameters:
	//   - bg: bind group to store
	SetBindGroup(bg *wgpu.BindGroup)

	// SetBindGroupLayout stores the layout created by Renderer.InitBindGroup.
	// The layout always belongs to this provider.
	//
	// Parameters:
	//   - bgl: layout to store
	SetBindGroupLayout(bgl *wgpu.BindGroupLayout)

	// SetBuffer stores a shared reference to a buffer owned elsewhere.
	// Release drops the reference without freeing the buffer. Replacing a
	// binding updates its ownership to match this call.
	//
	// Parameters:
	//   - binding: the binding index
	//   - buf: the buffer to reference
	SetBuffer(binding int, buf *wgpu.Buffer)

	// AdoptBuffer stores a buffer created for this provider and takes
	// ownership of it, so Release frees it.
	//
	// Parameters:
	//   - binding: the binding index
	//   - buf: the buffer to own
	AdoptBuffer(binding int, buf *wgpu.Buffer)

	// SetTextureView stores a shared reference to a texture view owned
	// elsewhere. Release drops the reference without freeing the view.
	//
	// Parameters:
	//   - binding: the binding index
	//   - tv: the texture view to reference
	SetTextureView(binding int, tv *wgpu.TextureView)

	// AdoptTextureView stores a texture view created for this provider and
	// takes ownership of it, so Release frees it.
	//
	// Parameters:
	//   - binding: the binding index
	//   - tv: the texture view to own
	AdoptTextureView(binding int, tv *wgpu.TextureView)

	// SetSampler stores a shared reference to a sampler owned elsewhere.
	// Release drops the reference without freeing the sampler.
	//
	// Parameters:
	//   - binding: the binding index
	//   - s: the sampler to reference
	SetSampler(binding int, s *wgpu.Sampler)

	// AdoptSampler stores a sampler created for this provider and takes
	// ownership of it, so Release frees it.
	//
	// Parameters:
	//   - binding: the binding index
	//   - s: the sampler to own
	AdoptSampler(binding int, s *wgpu.Sampler)

	// SetVertexBuffer stores the mesh vertex buffer created by
	// Renderer.InitMeshBuffers. Mesh buffers always belong to this provider.
	//
	// Parameters:
	//   - buf: vertex buffer to store
	SetVertexBuffer(buf *wgpu.Buffer)

	// SetIndexBuffer stores the mesh index buffer created by
	// Renderer.InitMeshBuffers. Mesh buffers always belong to this provider.
	//
	// Parameters:
	//   - buf: index buffer to store
	SetIndexBuffer(buf *wgpu.Buffer)

	// SetIndexCount records how many indices draw calls consume.
	//
	// Parameters:
	//   - count: number of indices
	SetIndexCount(count int)
}

// Compile-time interface check.
var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider builds an empty provider carrying the given debug
// label. GPU resources arrive later through the Renderer.
//
// Parameters:
//   - label: debug label attached to GPU objects created for this provider
//   - options: configuration options, applied in order
//
// Returns:
//   - BindGroupProvider: the configured provider
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:         label,
		buffers:       make(map[int]*wgpu.Buffer),
		textureViews:  make(map[int]*wgpu.TextureView),
		samplers:      make(map[int]*wgpu.Sampler),
		ownedBuffers:  make(map[int]bool),
		ownedViews:    make(map[int]bool),
		ownedSamplers: make(map[int]bool),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) BindGroupLayout() *wgpu.BindGroupLayout {
	return p.bindGroupLayout
}

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) TextureView(binding int) *wgpu.TextureView {
	return p.textureViews[binding]
}

func (p *bindGroupProvider) Sampler(binding int) *wgpu.Sampler {
	return p.samplers[binding]
}

func (p *bindGroupProvider) VertexBuffer() *wgpu.Buffer {
	return p.vertexBuffer
}

func (p *bindGroupProvider) IndexBuffer() *wgpu.Buffer {
	return p.indexBuffer
}

func (p *bindGroupProvider) IndexCount() int {
	return p.indexCount
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	p.bindGroup = bg
}

func (p *bindGroupProvider) SetBindGroupLayout(bgl *wgpu.BindGroupLayout) {
	p.bindGroupLayout = bgl
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	p.buffers[binding] = buf
	delete(p.ownedBuffers, binding)
}

func (p *bindGroupProvider) AdoptBuffer(binding int, buf *wgpu.Buffer) {
	p.buffers[binding] = buf
	p.ownedBuffers[binding] = true
}

func (p *bindGroupProvider) SetTextureView(binding int, tv *wgpu.TextureView) {
	p.textureViews[binding] = tv
	delete(p.ownedViews, binding)
}

func (p *bindGroupProvider) AdoptTextureView(binding int, tv *wgpu.TextureView) {
	p.textureViews[binding] = tv
	p.ownedViews[binding] = true
}

func (p *bindGroupProvider) SetSampler(binding int, s *wgpu.Sampler) {
	p.samplers[binding] = s
	delete(p.ownedSamplers, binding)
}

func (p *bindGroupProvider) AdoptSampler(binding int, s *wgpu.Sampler) {
	p.samplers[binding] = s
	p.ownedSamplers[binding] = true
}

func (p *bindGroupProvider) SetVertexBuffer(buf *wgpu.Buffer) {
	p.vertexBuffer = buf
}

func (p *bindGroupProvider) SetIndexBuffer(buf *wgpu.Buffer) {
	p.indexBuffer = buf
}

func (p *bindGroupProvider) SetIndexCount(count int) {
	p.indexCount = count
}

func (p *bindGroupProvider) Release() {
	for binding, tv := range p.textureViews {
		if tv != nil && p.ownedViews[binding] {
			tv.Release()
		}
		delete(p.textureViews, binding)
		delete(p.ownedViews, binding)
	}
	for binding, s := range p.samplers {
		if s != nil && p.ownedSamplers[binding] {
			s.Release()
		}
		delete(p.samplers, binding)
		delete(p.ownedSamplers, binding)
	}
	for binding, buf := range p.buffers {
		if buf != nil && p.ownedBuffers[binding] {
			buf.Release()
		}
		delete(p.buffers, binding)
		delete(p.ownedBuffers, binding)
	}

	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	if p.bindGroupLayout != nil {
		p.bindGroupLayout.Release()
		p.bindGroupLayout = nil
	}
	if p.vertexBuffer != nil {
		p.vertexBuffer.Release()
		p.vertexBuffer = nil
	}
	if p.indexBuffer != nil {
		p.indexBuffer.Release()
		p.indexBuffer = nil
	}
}
