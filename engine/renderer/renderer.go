package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/lucent-go/common"
	"github.com/Carmen-Shannon/lucent-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/lucent-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/lucent-go/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// Renderer is the high-level rendering API. It keeps a cache of registered
// pipelines keyed by their PipelineKey and forwards everything else to a
// RendererBackend, so scenes talk to one surface regardless of the backend
// in use.
type Renderer interface {
	// RegisterPipelines creates the GPU pipeline object (render or compute)
	// for each given pipeline and caches it under its PipelineKey. Keys that
	// are already cached are skipped, so re-registering is free.
	//
	// Parameters:
	//   - pipelines: the pipelines to register
	//
	// Returns:
	//   - error: non-nil when GPU pipeline creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// Pipeline returns the cached pipeline for the given key, or nil when the
	// key was never registered.
	//
	// Parameters:
	//   - key: the PipelineKey to look up
	//
	// Returns:
	//   - pipeline.Pipeline: the cached pipeline, or nil
	Pipeline(key string) pipeline.Pipeline

	// InitMeshBuffers uploads vertex and index data into new GPU buffers and
	// stores them on the provider for draw calls.
	//
	// Parameters:
	//   - provider: the provider that will own the created buffers
	//   - vertexData: raw vertex bytes
	//   - indexData: raw index bytes, little-endian uint32
	//   - indexCount: the number of indices to draw
	//
	// Returns:
	//   - error: non-nil when buffer creation fails
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitBindGroup creates the bind group described by the layout descriptor
	// on the provider. Buffer bindings the provider does not already hold are
	// created and adopted; texture and sampler bindings must be installed
	// beforehand via InitTextureView and InitSampler or shared onto the
	// provider. Usage and size overrides apply per binding index and may be
	// nil.
	//
	// Parameters:
	//   - provider: the provider that will own the created bind group
	//   - descriptor: the bind group layout descriptor
	//   - bufferUsageOverrides: extra buffer usage flags ORed in per binding
	//   - bufferSizeOverrides: buffer sizes replacing MinBindingSize per binding
	//
	// Returns:
	//   - error: non-nil when bind group creation fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error

	// InitTextureView creates a texture from staging data and stores its view
	// on the provider at the binding index. Call before InitBindGroup for any
	// texture binding.
	//
	// Parameters:
	//   - provider: the provider that will own the created view
	//   - bindingKey: the binding index for the texture
	//   - stagingData: pixel data and dimensions
	//
	// Returns:
	//   - error: non-nil when texture creation fails
	InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error

	// InitSampler creates a sampler from staging data and stores it on the
	// provider at the binding index. Call before InitBindGroup for any sampler
	// binding.
	//
	// Parameters:
	//   - provider: the provider that will own the created sampler
	//   - bindingKey: the binding index for the sampler
	//   - samplerStagingData: the sampler configuration
	//
	// Returns:
	//   - error: non-nil when sampler creation fails
	InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error

	// WriteBuffers queues every staged write, each targeting one provider's
	// buffer at a binding and byte offset.
	//
	// Parameters:
	//   - writes: the staged buffer writes
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame acquires the next surface texture and opens the main render
	// pass. Pair with EndFrame.
	//
	// Returns:
	//   - error: an error when the surface texture cannot be acquired
	BeginFrame() error

	// DrawCall encodes one instanced draw into the main render pass using the
	// cached pipeline for the key.
	//
	// Parameters:
	//   - pipelineKey: the registered render pipeline to use
	//   - meshProvider: the provider holding vertex and index buffers
	//   - instanceCount: the number of instances
	//   - bindGroups: providers whose bind groups are set in slot order
	//
	// Returns:
	//   - error: an error when the pipeline key is not registered
	DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error

	// EndFrame closes whichever pass is still open and submits the frame's
	// command buffer. The surface is not presented until Present.
	EndFrame()

	// Present shows the frame and releases the surface texture. Call once per
	// frame after EndFrame.
	Present()

	// Resize reconfigures the surface and its size-dependent attachments.
	// Call when the framebuffer size changes.
	//
	// Parameters:
	//   - width: new surface width in pixels
	//   - height: new surface height in pixels
	Resize(width, height int)

	// SetPresentMode changes how frames are delivered to the display. Takes
	// effect on the next Resize.
	//
	// Parameters:
	//   - mode: VSync or Uncapped
	SetPresentMode(mode PresentMode)

	// SampleCount returns the MSAA sample count of the main pass attachments.
	//
	// Returns:
	//   - MSAASampleCount: the configured sample count
	SampleCount() MSAASampleCount

	// SurfaceSize returns the dimensions from the most recent surface
	// configuration.
	//
	// Returns:
	//   - width, height: the surface size in pixels
	SurfaceSize() (width, height uint32)

	// CreateTransparencyTargets creates the accumulation and revealage
	// textures for the weighted-blend passes at the given size. The caller
	// owns the result and must Release it on resize or shutdown.
	//
	// Parameters:
	//   - width: target width in pixels
	//   - height: target height in pixels
	//
	// Returns:
	//   - *TransparencyTargets: the created textures and views
	//   - error: non-nil when texture creation fails
	CreateTransparencyTargets(width, height uint32) (*TransparencyTargets, error)

	// CreateHistogramResources creates the per-tile histogram buffer, the 3D
	// CDF texture, and its sampler for the histogram transparency mode. The
	// caller owns the result and must Release it when the tile geometry
	// changes or the mode is left.
	//
	// Parameters:
	//   - tileCountX: number of tile columns
	//   - tileCountY: number of tile rows
	//   - numBins: depth bins per tile
	//
	// Returns:
	//   - *HistogramResources: the created resources
	//   - error: an error if resource creation fails
	CreateHistogramResources(tileCountX, tileCountY, numBins uint32) (*HistogramResources, error)

	// BeginTransparencyAccumPass ends the main pass and opens the
	// weighted-blend accumulation pass over the given targets, re-attaching
	// the main depth texture without clearing it. Call between BeginFrame and
	// EndFrame.
	//
	// Parameters:
	//   - accumView: the accumulation target, cleared to transparent black
	//   - revealageView: this frame's revealage target, cleared to 1.0
	BeginTransparencyAccumPass(accumView, revealageView *wgpu.TextureView)

	// TransparencyDrawCall encodes one instanced draw into the open
	// accumulation pass.
	//
	// Parameters:
	//   - pipelineKey: the registered accumulation pipeline to use
	//   - meshProvider: the provider holding vertex and index buffers
	//   - instanceCount: the number of instances
	//   - bindGroups: providers whose bind groups are set in slot order
	//
	// Returns:
	//   - error: an error when the pipeline key is not registered
	TransparencyDrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error

	// EndTransparencyAccumPass closes the accumulation pass, leaving the frame
	// open for DispatchTransparencyCompute and the composite pass.
	EndTransparencyAccumPass()

	// DispatchTransparencyCompute encodes a compute pass on the frame's
	// command encoder between the accumulation and composite passes. The
	// per-tile CDF build runs here so it observes the accumulation pass's
	// histogram writes within the same submission. A key that was never
	// registered dispatches nothing.
	//
	// Parameters:
	//   - pipelineKey: the registered compute pipeline to use
	//   - computeProvider: the provider whose bind group is set on the pass
	//   - workGroupCount: workgroups to dispatch in x, y, and z
	DispatchTransparencyCompute(pipelineKey string, computeProvider bind_group_provider.BindGroupProvider, workGroupCount [3]uint32)

	// BeginTransparencyCompositePass opens the fullscreen composite pass over
	// the surface view, preserving the main pass output. EndFrame closes it.
	BeginTransparencyCompositePass()

	// TransparencyCompositeDraw encodes the fullscreen composite draw (three
	// vertices, no vertex buffers) into the open composite pass.
	//
	// Parameters:
	//   - pipelineKey: the registered composite pipeline to use
	//   - bindGroups: providers holding the accumulation and revealage views
	//
	// Returns:
	//   - error: an error when the pipeline key is not registered
	TransparencyCompositeDraw(pipelineKey string, bindGroups []bind_group_provider.BindGroupProvider) error
}

// renderer implements Renderer over a pluggable backend.
type renderer struct {
	mu        sync.Mutex
	pipelines map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend

	// Configuration collected from builder options before the backend exists.
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer over the given window's surface. The window
// supplies the platform surface descriptor and the initial framebuffer size.
//
// Parameters:
//   - backendType: the rendering backend to use (currently WGPU)
//   - window: the window whose surface the renderer draws to
//   - options: functional options for renderer configuration
//
// Returns:
//   - Renderer: the configured renderer
func NewRenderer(backendType RendererBackendType, window window.Window, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		pipelines:   make(map[string]pipeline.Pipeline),
		backendType: backendType,
	}

	// Options first: the adapter request and attachment creation read the
	// fallback flag and sample count.
	for _, opt := range options {
		opt(r)
	}

	msaa := MSAA4x
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(window.SurfaceDescriptor(), r.forceFallbackAdapter, msaa)
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}

	r.backend.ConfigureSurface(window.Width(), window.Height())
	return r
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelines[key]; exists {
			continue
		}
		switch p.Type() {
		case pipeline.PipelineTypeCompute:
			if err := r.backend.RegisterComputePipeline(p); err != nil {
				return err
			}
		case pipeline.PipelineTypeRender:
			if err := r.backend.RegisterRenderPipeline(p); err != nil {
				return err
			}
		}
		r.pipelines[key] = p
	}
	return nil
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	p, _ := r.cachedPipeline(key)
	return p
}

// cachedPipeline looks up a registered pipeline under the cache lock.
func (r *renderer) cachedPipeline(key string) (pipeline.Pipeline, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pipelines[key]
	return p, ok
}

func (r *renderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	return r.backend.InitMeshBuffers(provider, vertexData, indexData, indexCount)
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error {
	return r.backend.InitBindGroup(provider, descriptor, bufferUsageOverrides, bufferSizeOverrides)
}

func (r *renderer) InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error {
	return r.backend.InitTextureView(provider, bindingKey, stagingData)
}

func (r *renderer) InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error {
	return r.backend.InitSampler(provider, bindingKey, samplerStagingData)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.WriteBuffers(writes)
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error {
	p, ok := r.cachedPipeline(pipelineKey)
	if !ok {
		return fmt.Errorf("render pipeline %q is not registered", pipelineKey)
	}
	r.backend.DrawCall(p, meshProvider, instanceCount, bindGroups)
	return nil
}

func (r *renderer) EndFrame() {
	r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Resize(width, height int) {
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) SampleCount() MSAASampleCount {
	return r.backend.SampleCount()
}

func (r *renderer) SurfaceSize() (width, height uint32) {
	return r.backend.SurfaceSize()
}

func (r *renderer) CreateTransparencyTargets(width, height uint32) (*TransparencyTargets, error) {
	return r.backend.CreateTransparencyTargets(width, height)
}

func (r *renderer) CreateHistogramResources(tileCountX, tileCountY, numBins uint32) (*HistogramResources, error) {
	return r.backend.CreateHistogramResources(tileCountX, tileCountY, numBins)
}

func (r *renderer) BeginTransparencyAccumPass(accumView, revealageView *wgpu.TextureView) {
	r.backend.BeginTransparencyAccumPass(accumView, revealageView)
}

func (r *renderer) TransparencyDrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error {
	p, ok := r.cachedPipeline(pipelineKey)
	if !ok {
		return fmt.Errorf("transparency pipeline %q is not registered", pipelineKey)
	}
	r.backend.TransparencyDrawCall(p, meshProvider, instanceCount, bindGroups)
	return nil
}

func (r *renderer) EndTransparencyAccumPass() {
	r.backend.EndTransparencyAccumPass()
}

func (r *renderer) DispatchTransparencyCompute(pipelineKey string, computeProvider bind_group_provider.BindGroupProvider, workGroupCount [3]uint32) {
	p, ok := r.cachedPipeline(pipelineKey)
	if !ok {
		return
	}
	r.backend.DispatchTransparencyCompute(p, computeProvider, workGroupCount)
}

func (r *renderer) BeginTransparencyCompositePass() {
	r.backend.BeginTransparencyCompositePass()
}

func (r *renderer) TransparencyCompositeDraw(pipelineKey string, bindGroups []bind_group_provider.BindGroupProvider) error {
	p, ok := r.cachedPipeline(pipelineKey)
	if !ok {
		return fmt.Errorf("composite pipeline %q is not registered", pipelineKey)
	}
	r.backend.TransparencyCompositeDraw(p, bindGroups)
	return nil
}
