package pipeline

import (
	"github.com/Carmen-Shannon/lucent-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineType separates render pipelines from compute pipelines.
type PipelineType int

const (
	// PipelineTypeCompute is a pipeline driven by a single compute shader.
	PipelineTypeCompute PipelineType = iota

	// PipelineTypeRender is a pipeline driven by a vertex and fragment shader pair.
	PipelineTypeRender
)

// pipeline carries the configuration a pipeline is registered with and, after
// registration, the GPU pipeline object itself.
type pipeline struct {
	pipelineType PipelineType
	pipelineKey  string

	vertexShader, fragmentShader, computeShader shader.Shader

	// One of these is set by the backend at registration, by type.
	renderPipeline  *wgpu.RenderPipeline
	computePipeline *wgpu.ComputePipeline

	// Fixed-function state read at registration. Compute pipelines carry the
	// defaults without consuming them.
	depthTestEnabled     bool
	depthWriteEnabled    bool
	depthStencilDisabled bool
	depthBias            int32
	depthBiasSlopeScale  float32
	blendEnabled         bool
	cullMode             wgpu.CullMode
	topology             wgpu.PrimitiveTopology
	frontFace            wgpu.FrontFace
	writeMask            wgpu.ColorWriteMask
	blendState           *wgpu.BlendState
	colorTargets         []wgpu.ColorTargetState
}

// Pipeline is the CPU-side description of one GPU pipeline: its shaders plus
// the depth, blend, and rasterizer state the backend reads when creating the
// pipeline object. The renderer caches pipelines by key and the backend
// stores the created GPU object back through the setters.
type Pipeline interface {
	// Type reports whether this is a render or a compute pipeline.
	//
	// Returns:
	//   - PipelineType: the pipeline kind
	Type() PipelineType

	// PipelineKey returns the key the renderer caches this pipeline under.
	//
	// Returns:
	//   - string: the cache key
	PipelineKey() string

	// Shader returns the shader attached for the given stage.
	//
	// Parameters:
	//   - shaderType: the stage to look up
	//
	// Returns:
	//   - shader.Shader: the attached shader, or nil when the stage is unset
	Shader(shaderType shader.ShaderType) shader.Shader

	// Pipeline returns the registered GPU pipeline object. The concrete type
	// follows Type: *wgpu.RenderPipeline or *wgpu.ComputePipeline, nil before
	// registration.
	//
	// Returns:
	//   - any: the GPU pipeline object for the caller to assert
	Pipeline() any

	// DepthTestEnabled reports whether fragments are tested against the depth
	// attachment. When false the pipeline is created comparing Always.
	//
	// Returns:
	//   - bool: true when depth testing is on
	DepthTestEnabled() bool

	// DepthWriteEnabled reports whether fragments write the depth attachment.
	//
	// Returns:
	//   - bool: true when depth writes are on
	DepthWriteEnabled() bool

	// DepthStencilDisabled reports whether the pipeline is created with no
	// depth-stencil state at all. Pipelines for passes that attach no depth
	// texture, such as the fullscreen transparency composite, must disable it.
	//
	// Returns:
	//   - bool: true when the pipeline carries no depth-stencil state
	DepthStencilDisabled() bool

	// DepthBias returns the constant depth bias applied during rasterization.
	//
	// Returns:
	//   - int32: the constant bias
	DepthBias() int32

	// DepthBiasSlopeScale returns the slope-scaled depth bias applied during
	// rasterization.
	//
	// Returns:
	//   - float32: the slope scale
	DepthBiasSlopeScale() float32

	// BlendEnabled reports whether the derived surface target blends with the
	// existing color. Ignored when explicit ColorTargets are set, since those
	// carry their own blend states.
	//
	// Returns:
	//   - bool: true when blending is on
	BlendEnabled() bool

	// CullMode returns which triangle faces are culled.
	//
	// Returns:
	//   - wgpu.CullMode: the cull mode
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology vertices are assembled with.
	//
	// Returns:
	//   - wgpu.PrimitiveTopology: the topology
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the winding order treated as front-facing.
	//
	// Returns:
	//   - wgpu.FrontFace: the front face winding
	FrontFace() wgpu.FrontFace

	// WriteMask returns the channel mask for the derived surface target.
	//
	// Returns:
	//   - wgpu.ColorWriteMask: the write mask
	WriteMask() wgpu.ColorWriteMask

	// BlendState returns the blend state used when BlendEnabled is true,
	// defaulting to standard alpha blending.
	//
	// Returns:
	//   - *wgpu.BlendState: the blend state
	BlendState() *wgpu.BlendState

	// ColorTargets returns the explicit color target states, or nil when the
	// pipeline renders to the surface with the single target derived from the
	// blend and write mask settings. Off-screen passes with their own
	// attachment formats, such as the two-target weighted-blend accumulation
	// pass, set these explicitly.
	//
	// Returns:
	//   - []wgpu.ColorTargetState: the explicit targets in attachment order, or nil
	ColorTargets() []wgpu.ColorTargetState

	// SetRenderPipeline stores the registered render pipeline object.
	//
	// Parameters:
	//   - p: the created GPU render pipeline
	SetRenderPipeline(p *wgpu.RenderPipeline)

	// SetComputePipeline stores the registered compute pipeline object.
	//
	// Parameters:
	//   - p: the created GPU compute pipeline
	SetComputePipeline(p *wgpu.ComputePipeline)
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a pipeline description under the given cache key.
// Render defaults are opaque geometry: depth test and write on, no blending,
// triangle list, counter-clockwise front faces, no culling, all channels
// written.
//
// Parameters:
//   - pipelineKey: the key the renderer caches the pipeline under
//   - pipelineType: render or compute
//   - opts: options overriding the defaults
//
// Returns:
//   - Pipeline: the configured pipeline description
func NewPipeline(pipelineKey string, pipelineType PipelineType, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:       pipelineKey,
		pipelineType:      pipelineType,
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		cullMode:          wgpu.CullModeNone,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
		blendState:        standardAlphaBlend(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// standardAlphaBlend is the blend state applied when blending is enabled
// without an explicit state: source-over with premultiplied alpha accumulation.
func standardAlphaBlend() *wgpu.BlendState {
	return &wgpu.BlendState{
		Color: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorSrcAlpha,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			Operation: wgpu.BlendOperationAdd,
		},
		Alpha: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			Operation: wgpu.BlendOperationAdd,
		},
	}
}

func (p *pipeline) Type() PipelineType {
	return p.pipelineType
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeVertex:
		return p.vertexShader
	case shader.ShaderTypeFragment:
		return p.fragmentShader
	case shader.ShaderTypeCompute:
		return p.computeShader
	default:
		return nil
	}
}

func (p *pipeline) Pipeline() any {
	switch p.pipelineType {
	case PipelineTypeRender:
		return p.renderPipeline
	case PipelineTypeCompute:
		return p.computePipeline
	default:
		return nil
	}
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) DepthStencilDisabled() bool {
	return p.depthStencilDisabled
}

func (p *pipeline) DepthBias() int32 {
	return p.depthBias
}

func (p *pipeline) DepthBiasSlopeScale() float32 {
	return p.depthBiasSlopeScale
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) ColorTargets() []wgpu.ColorTargetState {
	return p.colorTargets
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}

func (p *pipeline) SetComputePipeline(cp *wgpu.ComputePipeline) {
	p.computePipeline = cp
}
