package renderer

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"runtime"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/lucent-go/common"
	"github.com/Carmen-Shannon/lucent-go/engine/oit"
	"github.com/Carmen-Shannon/lucent-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/lucent-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/lucent-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// wgpuBackend implements the backend over wgpu-native. One mutex serializes
// all GPU work; the render loop and the window's resize callback both reach
// this type.
type wgpuBackend struct {
	mu sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface
	device   *wgpu.Device
	queue    *wgpu.Queue

	surfaceFormat *wgpu.TextureFormat
	surfaceWidth  uint32
	surfaceHeight uint32

	msaaTexture      *wgpu.Texture
	msaaTextureView  *wgpu.TextureView
	depthTexture     *wgpu.Texture
	depthTextureView *wgpu.TextureView

	// renderPassDescriptor is rebuilt on every surface configuration and
	// patched per frame with the acquired swapchain view.
	renderPassDescriptor *wgpu.RenderPassDescriptor

	presentMode wgpu.PresentMode
	sampleCount MSAASampleCount

	// Per-frame state between BeginFrame and Present.
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView

	// Transparency pass state. The accumulation and composite passes run on
	// the frame encoder after the main pass ends, sharing this pointer: it
	// holds the accumulation pass, then nil while the CDF compute pass runs,
	// then the composite pass until EndFrame.
	transparencyPass *wgpu.RenderPassEncoder
}

type wgpuRendererBackend interface {
	// ConfigureSurface reconfigures the surface and rebuilds the
	// size-dependent attachments. Call after the framebuffer size changes and
	// after SetPresentMode.
	//
	// Parameters:
	//   - width: the new surface width in pixels
	//   - height: the new surface height in pixels
	ConfigureSurface(width, height int)

	// SetPresentMode sets the surface present mode which controls how frames are delivered to the display.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// SampleCount returns the MSAA sample count the backend was constructed with.
	//
	// Returns:
	//   - MSAASampleCount: the sample count of the main render pass attachments
	SampleCount() MSAASampleCount

	// SurfaceSize returns the surface dimensions from the most recent ConfigureSurface call.
	//
	// Returns:
	//   - width, height: the surface size in pixels
	SurfaceSize() (width, height uint32)

	// RegisterRenderPipeline builds the GPU render pipeline for p: shader
	// modules for the vertex and fragment stages, bind group layouts merged
	// across both stages, the pipeline layout, and the pipeline object, which
	// is stored back on p.
	//
	// Parameters:
	//   - p: the pipeline carrying the shaders and fixed-function configuration
	//
	// Returns:
	//   - error: an error if any GPU object could not be created
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// RegisterComputePipeline builds the GPU compute pipeline for p from its
	// compute shader and stores it back on p.
	//
	// Parameters:
	//   - p: the pipeline carrying the compute shader
	//
	// Returns:
	//   - error: an error if any GPU object could not be created
	RegisterComputePipeline(p pipeline.Pipeline) error

	// InitMeshBuffers uploads vertex and index data into new GPU buffers and
	// stores them on the provider along with the index count.
	//
	// Parameters:
	//   - provider: the provider that will own the buffers
	//   - vertexData: raw vertex bytes
	//   - indexData: raw index bytes
	//   - indexCount: the number of indices to draw
	//
	// Returns:
	//   - error: an error if buffer creation fails
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitBindGroup creates the bind group described by the layout descriptor
	// on the provider, creating and adopting buffers for buffer bindings the
	// provider does not already hold. Texture and sampler bindings must be
	// present on the provider beforehand.
	//
	// Parameters:
	//   - provider: the provider that will own the bind group
	//   - descriptor: the bind group layout descriptor
	//   - bufferUsageOverrides: extra buffer usage flags ORed in per binding
	//   - bufferSizeOverrides: buffer sizes replacing MinBindingSize per binding
	//
	// Returns:
	//   - error: an error if bind group creation fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error

	// InitTextureView creates a texture from staging data, uploads the
	// pixels, and stores the view on the provider at the binding index.
	//
	// Parameters:
	//   - provider: the provider that will own the view
	//   - bindingKey: the binding index for the texture
	//   - stagingData: pixel data and dimensions
	//
	// Returns:
	//   - error: an error if texture creation fails
	InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error

	// InitSampler creates a sampler from staging data and stores it on the
	// provider at the binding index. Zero-valued staging fields fall back to
	// repeat addressing with linear filtering.
	//
	// Parameters:
	//   - provider: the provider that will own the sampler
	//   - bindingKey: the binding index for the sampler
	//   - samplerStagingData: the sampler configuration
	//
	// Returns:
	//   - error: an error if sampler creation fails
	InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error

	// WriteBuffers queues every staged write, each targeting one provider's
	// buffer at a binding and byte offset. Writes to bindings without a
	// buffer are skipped.
	//
	// Parameters:
	//   - writes: the staged buffer writes
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame opens a frame: the next swapchain texture is acquired, a
	// command encoder created, and the main render pass begun on it. Every
	// successful BeginFrame must be followed by EndFrame.
	//
	// Returns:
	//   - error: an error when the swapchain texture is unavailable, typically mid-resize
	BeginFrame() error

	// DrawCall encodes one instanced indexed draw into the main render pass.
	//
	// Parameters:
	//   - p: the registered render pipeline to bind
	//   - meshProvider: the provider holding vertex and index buffers
	//   - instanceCount: the number of instances
	//   - bindGroups: providers whose bind groups are set in slot order
	DrawCall(p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider)

	// EndFrame closes whichever render pass is still open and submits the
	// frame's command buffer. The surface stays unpresented until Present.
	EndFrame()

	// Present hands the finished frame to the display and releases the
	// swapchain texture, once per frame after EndFrame.
	Present()

	// CreateTransparencyTargets creates the accumulation texture and both revealage
	// textures for the weighted-blend transparency passes at the given size. All three
	// are single-sampled and bindable so the composite and history reads can sample them.
	//
	// Parameters:
	//   - width: target width in pixels
	//   - height: target height in pixels
	//
	// Returns:
	//   - *TransparencyTargets: the created textures and views (caller releases)
	//   - error: an error if texture creation fails
	CreateTransparencyTargets(width, height uint32) (*TransparencyTargets, error)

	// CreateHistogramResources creates the per-tile histogram storage buffer, the 3D
	// CDF texture sized (tileCountX, tileCountY, numBins), and the CDF sampler for the
	// histogram-equalized transparency mode. The buffer starts zeroed.
	//
	// Parameters:
	//   - tileCountX: number of tile columns
	//   - tileCountY: number of tile rows
	//   - numBins: depth bins per tile
	//
	// Returns:
	//   - *HistogramResources: the created resources (caller releases)
	//   - error: an error if resource creation fails
	CreateHistogramResources(tileCountX, tileCountY, numBins uint32) (*HistogramResources, error)

	// BeginTransparencyAccumPass ends the main render pass and begins the weighted-blend
	// accumulation pass on the same frame encoder, targeting the accum and revealage
	// textures and re-attaching the main depth without clearing it. Must be called
	// between BeginFrame and EndFrame.
	//
	// Parameters:
	//   - accumView: the accumulation target, cleared to transparent black
	//   - revealageView: this frame's revealage target, cleared to 1.0
	BeginTransparencyAccumPass(accumView, revealageView *wgpu.TextureView)

	// TransparencyDrawCall encodes a single instanced draw command within the current
	// accumulation pass.
	//
	// Parameters:
	//   - p: the cached accumulation Pipeline
	//   - meshProvider: the BindGroupProvider holding vertex and index buffers
	//   - instanceCount: the number of instances to draw
	//   - bindGroups: bind group providers for the accumulation pass
	TransparencyDrawCall(p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider)

	// EndTransparencyAccumPass ends the accumulation pass, leaving the frame encoder
	// open for the CDF compute dispatch and the composite pass.
	EndTransparencyAccumPass()

	// DispatchTransparencyCompute encodes a compute pass on the frame encoder, between
	// the accumulation and composite passes, so histogram writes are visible to the
	// CDF build and the CDF is ready before the next frame samples it.
	//
	// Parameters:
	//   - p: the cached compute Pipeline
	//   - computeProvider: the BindGroupProvider whose BindGroup will be set on the compute pass
	//   - workGroupCount: the number of workgroups to dispatch in the x, y, and z dimensions
	DispatchTransparencyCompute(p pipeline.Pipeline, computeProvider bind_group_provider.BindGroupProvider, workGroupCount [3]uint32)

	// BeginTransparencyCompositePass begins the composite pass on the frame encoder,
	// targeting the swapchain view with a load op so the main pass output is preserved.
	// EndFrame ends this pass.
	BeginTransparencyCompositePass()

	// TransparencyCompositeDraw encodes the fullscreen composite draw: three vertices,
	// no vertex buffers.
	//
	// Parameters:
	//   - p: the cached composite Pipeline
	//   - bindGroups: bind group providers holding the accum and revealage views
	TransparencyCompositeDraw(p pipeline.Pipeline, bindGroups []bind_group_provider.BindGroupProvider)
}

var _ RendererBackend = &wgpuBackend{}

// newWGPURendererBackend creates the instance, surface, adapter, device, and
// queue. GPU setup failures panic: without a device nothing downstream can
// run. The calling goroutine is locked to its OS thread for the surface's
// platform handles.
func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount) wgpuRendererBackend {
	runtime.LockOSThread()

	b := &wgpuBackend{
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeImmediate,
		sampleCount: sampleCount,
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	adapter, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		panic(err)
	}
	b.adapter = adapter

	// WebGPU's default limit of 4 bind groups is too few for the histogram
	// accumulation shader, which binds camera, model, material, and
	// transparency groups plus headroom.
	limits := wgpu.DefaultLimits()
	limits.MaxBindGroups = 8

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		panic(err)
	}
	b.device = device
	b.queue = device.GetQueue()

	return b
}

// createAttachmentView creates a 2D render target texture and returns it with
// its view. Attachment creation failures panic, matching device setup.
func (b *wgpuBackend) createAttachmentView(label string, width, height, samples uint32, format wgpu.TextureFormat, usage wgpu.TextureUsage) (*wgpu.Texture, *wgpu.TextureView) {
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   samples,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		panic(err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		panic(err)
	}
	return tex, view
}

// releaseAttachments frees the MSAA and depth targets from the previous
// surface configuration.
func (b *wgpuBackend) releaseAttachments() {
	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
	if b.msaaTexture != nil {
		b.msaaTexture.Release()
		b.msaaTexture = nil
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTextureView = nil
	}
	if b.depthTexture != nil {
		b.depthTexture.Release()
		b.depthTexture = nil
	}
}

func (b *wgpuBackend) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = &capabilities.Formats[0]
	b.surfaceWidth = uint32(width)
	b.surfaceHeight = uint32(height)

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	// The previous size's attachments can only be freed when no frame still
	// has them attached; mid-frame reconfigures leave them to device teardown.
	if b.frameEncoder == nil {
		b.releaseAttachments()
	} else {
		b.msaaTexture, b.msaaTextureView = nil, nil
		b.depthTexture, b.depthTextureView = nil, nil
	}

	count := uint32(b.sampleCount)
	msaaEnabled := count > 1

	if msaaEnabled {
		// The pass draws into the MSAA texture and resolves into the
		// swapchain view, which BeginFrame sets as the ResolveTarget.
		b.msaaTexture, b.msaaTextureView = b.createAttachmentView(
			"MSAA Texture", uint32(width), uint32(height), count,
			*b.surfaceFormat, wgpu.TextureUsageRenderAttachment)
	}

	// The depth sample count must match the color attachment. Without MSAA
	// the depth is stored and bindable, since the transparency accumulation
	// pass re-attaches it after the main pass; with MSAA it is discarded
	// after the resolve and the transparency passes are unavailable.
	depthUsage := wgpu.TextureUsageRenderAttachment
	depthStoreOp := wgpu.StoreOpDiscard
	if !msaaEnabled {
		depthUsage |= wgpu.TextureUsageTextureBinding
		depthStoreOp = wgpu.StoreOpStore
	}
	b.depthTexture, b.depthTextureView = b.createAttachmentView(
		"Depth Texture", uint32(width), uint32(height), count,
		wgpu.TextureFormatDepth24Plus, depthUsage)

	// Cache the main pass descriptor. With MSAA the color View is the MSAA
	// texture and the swapchain view becomes the per-frame ResolveTarget;
	// without it the swapchain view is the per-frame View directly.
	colorStoreOp := wgpu.StoreOpStore
	if msaaEnabled {
		colorStoreOp = wgpu.StoreOpDiscard
	}
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:          b.msaaTextureView,
				ResolveTarget: nil,
				LoadOp:        wgpu.LoadOpClear,
				StoreOp:       colorStoreOp,
				ClearValue: wgpu.Color{
					R: 0.1, G: 0.1, B: 0.1, A: 1.0,
				},
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    depthStoreOp,
			DepthClearValue: 1.0,
		},
	}
}

func (b *wgpuBackend) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeVSync:
		b.presentMode = wgpu.PresentModeFifo
	case PresentModeUncapped:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeImmediate
	}
}

func (b *wgpuBackend) SampleCount() MSAASampleCount {
	return b.sampleCount
}

func (b *wgpuBackend) SurfaceSize() (width, height uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.surfaceWidth, b.surfaceHeight
}

// createShaderModule compiles one shader's WGSL source, labeled by the
// shader's key for driver-side error messages.
func (b *wgpuBackend) createShaderModule(s shader.Shader) (*wgpu.ShaderModule, error) {
	return b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: s.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: s.Source(),
		},
	})
}

// createGroupLayouts creates one bind group layout per group index. The
// result is indexed by group number with nil holes for unused groups, the
// shape CreatePipelineLayout expects for sparse group numbering.
func (b *wgpuBackend) createGroupLayouts(descriptors map[int]wgpu.BindGroupLayoutDescriptor) ([]*wgpu.BindGroupLayout, error) {
	maxGroup := -1
	for g := range descriptors {
		maxGroup = max(maxGroup, g)
	}
	layouts := make([]*wgpu.BindGroupLayout, maxGroup+1)
	for g, desc := range descriptors {
		layout, err := b.device.CreateBindGroupLayout(&desc)
		if err != nil {
			return nil, fmt.Errorf("failed to create bind group layout for group %d: %w", g, err)
		}
		layouts[g] = layout
	}
	return layouts, nil
}

// depthStencilState derives the depth configuration from the pipeline's
// flags. Stencil is unused; both faces compare Always.
func depthStencilState(p pipeline.Pipeline) *wgpu.DepthStencilState {
	if p.DepthStencilDisabled() {
		return nil
	}
	compare := wgpu.CompareFunctionLess
	if !p.DepthTestEnabled() {
		compare = wgpu.CompareFunctionAlways
	}
	return &wgpu.DepthStencilState{
		Format:              wgpu.TextureFormatDepth24Plus,
		DepthWriteEnabled:   p.DepthWriteEnabled(),
		DepthCompare:        compare,
		DepthBias:           p.DepthBias(),
		DepthBiasSlopeScale: p.DepthBiasSlopeScale(),
		StencilFront: wgpu.StencilFaceState{
			Compare: wgpu.CompareFunctionAlways,
		},
		StencilBack: wgpu.StencilFaceState{
			Compare: wgpu.CompareFunctionAlways,
		},
	}
}

func (b *wgpuBackend) RegisterRenderPipeline(p pipeline.Pipeline) error {
	vertexShader := p.Shader(shader.ShaderTypeVertex)
	fragmentShader := p.Shader(shader.ShaderTypeFragment)
	if vertexShader == nil || fragmentShader == nil {
		return errors.New("render pipelines require both a vertex and a fragment shader")
	}

	vs, err := b.createShaderModule(vertexShader)
	if err != nil {
		return err
	}
	fs, err := b.createShaderModule(fragmentShader)
	if err != nil {
		return err
	}

	merged := mergeBindGroupLayouts(vertexShader.BindGroupLayoutDescriptors(), fragmentShader.BindGroupLayoutDescriptors())
	groupLayouts, err := b.createGroupLayouts(merged)
	if err != nil {
		return err
	}
	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: groupLayouts,
	})
	if err != nil {
		return err
	}

	// Vertex buffer slots are positional, so the layout map is flattened in
	// slot order.
	vertexLayouts := make([]wgpu.VertexBufferLayout, 0, len(vertexShader.VertexLayouts()))
	for _, slot := range slices.Sorted(maps.Keys(vertexShader.VertexLayouts())) {
		vertexLayouts = append(vertexLayouts, vertexShader.VertexLayout(slot)...)
	}

	// Pipelines either render to the surface with a single derived target, or
	// carry explicit color targets for off-screen attachments such as the
	// two-target accumulation pass.
	targets := p.ColorTargets()
	if targets == nil {
		state := wgpu.ColorTargetState{
			Format:    *b.surfaceFormat,
			WriteMask: p.WriteMask(),
		}
		if p.BlendEnabled() {
			state.Blend = p.BlendState()
		}
		targets = []wgpu.ColorTargetState{state}
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vertexShader.EntryPoint(),
			Buffers:    vertexLayouts,
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fragmentShader.EntryPoint(),
			Targets:    targets,
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: depthStencilState(p),
	})
	if err != nil {
		return err
	}

	p.SetRenderPipeline(created)
	return nil
}

func (b *wgpuBackend) RegisterComputePipeline(p pipeline.Pipeline) error {
	computeShader := p.Shader(shader.ShaderTypeCompute)
	if computeShader == nil {
		return errors.New("compute pipelines require a compute shader")
	}

	module, err := b.createShaderModule(computeShader)
	if err != nil {
		return err
	}

	groupLayouts, err := b.createGroupLayouts(computeShader.BindGroupLayoutDescriptors())
	if err != nil {
		return err
	}
	layout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: groupLayouts,
	})
	if err != nil {
		return err
	}

	created, err := b.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  p.PipelineKey() + " Compute Pipeline",
		Layout: layout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: computeShader.EntryPoint(),
		},
	})
	if err != nil {
		return err
	}

	p.SetComputePipeline(created)
	return nil
}

// uploadBuffer creates a buffer sized to data and writes data into it.
func (b *wgpuBackend) uploadBuffer(label string, usage wgpu.BufferUsage, data []byte) (*wgpu.Buffer, error) {
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, err
	}
	b.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

func (b *wgpuBackend) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(vertexData) > 0 {
		buf, err := b.uploadBuffer(provider.Label()+" Vertex Buffer", wgpu.BufferUsageVertex|wgpu.BufferUsageCopyDst, vertexData)
		if err != nil {
			return err
		}
		provider.SetVertexBuffer(buf)
	}

	if len(indexData) > 0 {
		buf, err := b.uploadBuffer(provider.Label()+" Index Buffer", wgpu.BufferUsageIndex|wgpu.BufferUsageCopyDst, indexData)
		if err != nil {
			return err
		}
		provider.SetIndexBuffer(buf)
	}

	provider.SetIndexCount(indexCount)
	return nil
}

// resolveBindGroupEntry produces the bind group entry for one layout entry,
// sourcing textures and samplers from the provider and creating buffers it
// does not already hold.
func (b *wgpuBackend) resolveBindGroupEntry(provider bind_group_provider.BindGroupProvider, entry wgpu.BindGroupLayoutEntry, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) (wgpu.BindGroupEntry, error) {
	binding := int(entry.Binding)

	isTexture := entry.Texture.SampleType != wgpu.TextureSampleTypeUndefined ||
		entry.StorageTexture.Format != wgpu.TextureFormatUndefined
	isSampler := entry.Sampler.Type != wgpu.SamplerBindingTypeUndefined

	switch {
	case isTexture:
		tv := provider.TextureView(binding)
		if tv == nil {
			return wgpu.BindGroupEntry{}, fmt.Errorf("texture binding %d has no texture view; call InitTextureView or SetTextureView first", binding)
		}
		return wgpu.BindGroupEntry{
			Binding:     entry.Binding,
			TextureView: tv,
		}, nil

	case isSampler:
		samp := provider.Sampler(binding)
		if samp == nil {
			return wgpu.BindGroupEntry{}, fmt.Errorf("sampler binding %d has no sampler; call InitSampler or SetSampler first", binding)
		}
		return wgpu.BindGroupEntry{
			Binding: entry.Binding,
			Sampler: samp,
		}, nil

	default:
		// Buffer binding. A buffer already on the provider is used as-is,
		// which is how shared buffers like the histogram enter multiple bind
		// groups; otherwise one is created and adopted.
		buf := provider.Buffer(binding)
		if buf == nil {
			var usage wgpu.BufferUsage
			switch entry.Buffer.Type {
			case wgpu.BufferBindingTypeUniform:
				usage = wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
			case wgpu.BufferBindingTypeStorage, wgpu.BufferBindingTypeReadOnlyStorage:
				usage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst
			}
			usage |= bufferUsageOverrides[binding]

			size := entry.Buffer.MinBindingSize
			if override, ok := bufferSizeOverrides[binding]; ok {
				size = override
			}

			var err error
			buf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
				Label: provider.Label() + " Buffer",
				Size:  size,
				Usage: usage,
			})
			if err != nil {
				return wgpu.BindGroupEntry{}, err
			}
			provider.AdoptBuffer(binding, buf)
		}
		return wgpu.BindGroupEntry{
			Binding: entry.Binding,
			Buffer:  buf,
			Offset:  0,
			Size:    wgpu.WholeSize,
		}, nil
	}
}

func (b *wgpuBackend) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(descriptor.Entries) == 0 {
		return nil
	}

	layout := provider.BindGroupLayout()
	if layout == nil {
		var err error
		layout, err = b.device.CreateBindGroupLayout(&descriptor)
		if err != nil {
			return err
		}
		provider.SetBindGroupLayout(layout)
	}

	entries := make([]wgpu.BindGroupEntry, len(descriptor.Entries))
	for i, entry := range descriptor.Entries {
		resolved, err := b.resolveBindGroupEntry(provider, entry, bufferUsageOverrides, bufferSizeOverrides)
		if err != nil {
			return err
		}
		entries[i] = resolved
	}

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label() + " Bind Group",
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return err
	}
	provider.SetBindGroup(bindGroup)

	return nil
}

func (b *wgpuBackend) InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	size := wgpu.Extent3D{
		Width:              stagingData.Width,
		Height:             stagingData.Height,
		DepthOrArrayLayers: 1,
	}

	texture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         provider.Label() + " Texture",
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		Size:          size,
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return err
	}

	// Pixels are tightly packed RGBA8, one image.
	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture: texture,
			Aspect:  wgpu.TextureAspectAll,
		},
		stagingData.Pixels,
		&wgpu.TextureDataLayout{
			BytesPerRow:  stagingData.Width * 4,
			RowsPerImage: stagingData.Height,
		},
		&size,
	)

	view, err := texture.CreateView(nil)
	if err != nil {
		return err
	}
	provider.AdoptTextureView(bindingKey, view)

	return nil
}

func (b *wgpuBackend) InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, staging common.SamplerStagingData) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Unset staging fields coalesce to repeat addressing with trilinear
	// filtering.
	sampler, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         provider.Label() + " Sampler",
		AddressModeU:  common.Coalesce(staging.AddressModeU, wgpu.AddressModeRepeat),
		AddressModeV:  common.Coalesce(staging.AddressModeV, wgpu.AddressModeRepeat),
		AddressModeW:  common.Coalesce(staging.AddressModeW, wgpu.AddressModeRepeat),
		MagFilter:     common.Coalesce(staging.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(staging.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(staging.MipmapFilter, wgpu.MipmapFilterModeLinear),
		LodMinClamp:   common.Coalesce(staging.LodMinClamp, 0.0),
		LodMaxClamp:   common.Coalesce(staging.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(staging.MaxAnisotropy, 1),
		Compare:       staging.Compare,
	})
	if err != nil {
		return err
	}
	provider.AdoptSampler(bindingKey, sampler)

	return nil
}

func (b *wgpuBackend) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			continue
		}
		b.queue.WriteBuffer(buf, w.Offset, w.Data)
	}
}

func (b *wgpuBackend) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// A surface texture still held here means Present never ran; acquiring
	// another would fail wgpu validation ("Surface image is already
	// acquired").
	if b.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}

	surfaceView, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		surfaceView.Release()
		surfaceTexture.Release()
		return err
	}

	// Patch the cached descriptor with this frame's swapchain view: as the
	// resolve target under MSAA, as the color view directly without it.
	if b.sampleCount > 1 {
		b.renderPassDescriptor.ColorAttachments[0].ResolveTarget = surfaceView
	} else {
		b.renderPassDescriptor.ColorAttachments[0].View = surfaceView
	}

	b.frameEncoder = encoder
	b.framePass = encoder.BeginRenderPass(b.renderPassDescriptor)
	b.frameSurface = surfaceTexture
	b.frameView = surfaceView

	return nil
}

// encodeDraw binds the pipeline, bind groups, and mesh buffers on a pass and
// issues the instanced indexed draw.
func encodeDraw(pass *wgpu.RenderPassEncoder, p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) {
	pass.SetPipeline(p.Pipeline().(*wgpu.RenderPipeline))
	for i, bg := range bindGroups {
		pass.SetBindGroup(uint32(i), bg.BindGroup(), nil)
	}
	pass.SetVertexBuffer(0, meshProvider.VertexBuffer(), 0, wgpu.WholeSize)
	pass.SetIndexBuffer(meshProvider.IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	pass.DrawIndexed(uint32(meshProvider.IndexCount()), instanceCount, 0, 0, 0)
}

func (b *wgpuBackend) DrawCall(
	p pipeline.Pipeline,
	meshProvider bind_group_provider.BindGroupProvider,
	instanceCount uint32,
	bindGroups []bind_group_provider.BindGroupProvider,
) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return
	}
	encodeDraw(b.framePass, p, meshProvider, instanceCount, bindGroups)
}

func (b *wgpuBackend) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	// The main pass pointer is nil when the frame went through the
	// transparency passes; whichever pass is still open is ended here.
	if b.framePass != nil {
		b.framePass.End()
		b.framePass = nil
	}
	if b.transparencyPass != nil {
		b.transparencyPass.End()
		b.transparencyPass = nil
	}

	commandBuffer, err := b.frameEncoder.Finish(nil)
	b.frameEncoder.Release()
	b.frameEncoder = nil
	if err != nil {
		// Drop the frame and the acquired surface; Present becomes a no-op.
		b.frameView.Release()
		b.frameView = nil
		b.frameSurface.Release()
		b.frameSurface = nil
		return
	}

	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
}

func (b *wgpuBackend) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Nothing acquired, or EndFrame already dropped the frame.
	if b.frameSurface == nil {
		return
	}

	b.surface.Present()

	b.frameView.Release()
	b.frameView = nil
	b.frameSurface.Release()
	b.frameSurface = nil
}

func (b *wgpuBackend) CreateTransparencyTargets(width, height uint32) (*TransparencyTargets, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	targets := &TransparencyTargets{}

	accumTex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Transparency Accum Texture",
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA16Float,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create transparency accum texture: %w", err)
	}
	targets.AccumTexture = accumTex

	targets.AccumView, err = accumTex.CreateView(nil)
	if err != nil {
		targets.Release()
		return nil, fmt.Errorf("failed to create transparency accum texture view: %w", err)
	}

	for i := range 2 {
		revealTex, texErr := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label: fmt.Sprintf("Transparency Revealage Texture %d", i),
			Size: wgpu.Extent3D{
				Width:              width,
				Height:             height,
				DepthOrArrayLayers: 1,
			},
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     wgpu.TextureDimension2D,
			Format:        wgpu.TextureFormatR8Unorm,
			Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
		})
		if texErr != nil {
			targets.Release()
			return nil, fmt.Errorf("failed to create transparency revealage texture %d: %w", i, texErr)
		}
		targets.RevealageTextures[i] = revealTex

		targets.RevealageViews[i], texErr = revealTex.CreateView(nil)
		if texErr != nil {
			targets.Release()
			return nil, fmt.Errorf("failed to create transparency revealage texture view %d: %w", i, texErr)
		}
	}

	return targets, nil
}

func (b *wgpuBackend) CreateHistogramResources(tileCountX, tileCountY, numBins uint32) (*HistogramResources, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	resources := &HistogramResources{}

	// WebGPU buffers start zeroed, and the CDF build pass re-zeroes the counts
	// each frame, so no CPU writes ever touch this buffer.
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Transparency Histogram Buffer",
		Size:  oit.HistogramBufferSize(tileCountX, tileCountY, numBins),
		Usage: wgpu.BufferUsageStorage,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create histogram buffer: %w", err)
	}
	resources.HistogramBuffer = buf

	cdfTex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Transparency CDF Texture",
		Size: wgpu.Extent3D{
			Width:              tileCountX,
			Height:             tileCountY,
			DepthOrArrayLayers: numBins,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension3D,
		Format:        wgpu.TextureFormatRGBA16Float,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageStorageBinding,
	})
	if err != nil {
		resources.Release()
		return nil, fmt.Errorf("failed to create CDF texture: %w", err)
	}
	resources.CDFTexture = cdfTex

	resources.CDFView, err = cdfTex.CreateView(nil)
	if err != nil {
		resources.Release()
		return nil, fmt.Errorf("failed to create CDF texture view: %w", err)
	}

	resources.CDFSampler, err = b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Transparency CDF Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMinClamp:   0.0,
		LodMaxClamp:   32.0,
		MaxAnisotropy: 1,
	})
	if err != nil {
		resources.Release()
		return nil, fmt.Errorf("failed to create CDF sampler: %w", err)
	}

	return resources, nil
}

func (b *wgpuBackend) BeginTransparencyAccumPass(accumView, revealageView *wgpu.TextureView) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil {
		return
	}

	// A composite pass left open by an earlier scene this frame ends here so
	// scenes can run their transparency sequences back to back.
	if b.transparencyPass != nil {
		b.transparencyPass.End()
		b.transparencyPass = nil
	}

	// The main pass must end before its depth texture can be re-attached here.
	// Depth is loaded and left untouched: the accumulation pipelines test
	// against opaque geometry but never write depth.
	if b.framePass != nil {
		b.framePass.End()
		b.framePass = nil
	}

	b.transparencyPass = b.frameEncoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       accumView,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{R: 0.0, G: 0.0, B: 0.0, A: 0.0},
			},
			{
				View:       revealageView,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{R: 1.0, G: 0.0, B: 0.0, A: 0.0},
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:         b.depthTextureView,
			DepthLoadOp:  wgpu.LoadOpLoad,
			DepthStoreOp: wgpu.StoreOpStore,
		},
	})
}

func (b *wgpuBackend) TransparencyDrawCall(
	p pipeline.Pipeline,
	meshProvider bind_group_provider.BindGroupProvider,
	instanceCount uint32,
	bindGroups []bind_group_provider.BindGroupProvider,
) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.transparencyPass == nil {
		return
	}
	encodeDraw(b.transparencyPass, p, meshProvider, instanceCount, bindGroups)
}

func (b *wgpuBackend) EndTransparencyAccumPass() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.transparencyPass == nil {
		return
	}

	b.transparencyPass.End()
	b.transparencyPass = nil
}

func (b *wgpuBackend) DispatchTransparencyCompute(
	p pipeline.Pipeline,
	computeProvider bind_group_provider.BindGroupProvider,
	workGroupCount [3]uint32,
) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Runs on the frame encoder between render passes, so the accumulation
	// pass's histogram writes are ordered before the CDF build reads them.
	if b.frameEncoder == nil || b.framePass != nil || b.transparencyPass != nil {
		return
	}

	pass := b.frameEncoder.BeginComputePass(nil)
	pass.SetPipeline(p.Pipeline().(*wgpu.ComputePipeline))
	pass.SetBindGroup(0, computeProvider.BindGroup(), nil)
	pass.DispatchWorkgroups(workGroupCount[0], workGroupCount[1], workGroupCount[2])
	pass.End()
}

func (b *wgpuBackend) BeginTransparencyCompositePass() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil || b.frameView == nil || b.transparencyPass != nil {
		return
	}

	// The transparency passes require MSAA off, so the swapchain view is the
	// main pass target directly and can be loaded here without a resolve.
	b.transparencyPass = b.frameEncoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:    b.frameView,
				LoadOp:  wgpu.LoadOpLoad,
				StoreOp: wgpu.StoreOpStore,
			},
		},
	})
}

func (b *wgpuBackend) TransparencyCompositeDraw(
	p pipeline.Pipeline,
	bindGroups []bind_group_provider.BindGroupProvider,
) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.transparencyPass == nil {
		return
	}

	b.transparencyPass.SetPipeline(p.Pipeline().(*wgpu.RenderPipeline))
	for i, bg := range bindGroups {
		b.transparencyPass.SetBindGroup(uint32(i), bg.BindGroup(), nil)
	}
	b.transparencyPass.Draw(3, 1, 0, 0)
}

// mergeBindGroupLayouts unions the bind group layout descriptors of the
// vertex and fragment stages. A group present in only one stage is used
// as-is. For a group both stages declare, entries are merged by binding
// number: a binding both declare keeps the vertex entry with the fragment's
// visibility ORed in, and the result is sorted by binding for deterministic
// layout creation.
//
// Parameters:
//   - vertexLayouts: bind group layout descriptors from the vertex shader
//   - fragmentLayouts: bind group layout descriptors from the fragment shader
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: the merged descriptors keyed by group index
func mergeBindGroupLayouts(vertexLayouts, fragmentLayouts map[int]wgpu.BindGroupLayoutDescriptor) map[int]wgpu.BindGroupLayoutDescriptor {
	merged := make(map[int]wgpu.BindGroupLayoutDescriptor, len(vertexLayouts)+len(fragmentLayouts))
	for g, desc := range vertexLayouts {
		merged[g] = desc
	}

	for g, fragDesc := range fragmentLayouts {
		vertDesc, shared := merged[g]
		if !shared {
			merged[g] = fragDesc
			continue
		}

		byBinding := make(map[uint32]wgpu.BindGroupLayoutEntry, len(vertDesc.Entries)+len(fragDesc.Entries))
		for _, e := range vertDesc.Entries {
			byBinding[e.Binding] = e
		}
		for _, e := range fragDesc.Entries {
			if existing, ok := byBinding[e.Binding]; ok {
				existing.Visibility |= e.Visibility
				byBinding[e.Binding] = existing
			} else {
				byBinding[e.Binding] = e
			}
		}

		entries := make([]wgpu.BindGroupLayoutEntry, 0, len(byBinding))
		for _, e := range byBinding {
			entries = append(entries, e)
		}
		slices.SortFunc(entries, func(a, b wgpu.BindGroupLayoutEntry) int {
			return cmp.Compare(a.Binding, b.Binding)
		})

		merged[g] = wgpu.BindGroupLayoutDescriptor{
			Label:   vertDesc.Label,
			Entries: entries,
		}
	}

	return merged
}
