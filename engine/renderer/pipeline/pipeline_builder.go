package pipeline

import (
	"github.com/Carmen-Shannon/lucent-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineBuilderOption configures a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// WithVertexShader attaches the vertex stage shader.
//
// Parameters:
//   - s: the vertex shader
//
// Returns:
//   - PipelineBuilderOption: a function that attaches the shader
func WithVertexShader(s shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexShader = s
	}
}

// WithFragmentShader attaches the fragment stage shader.
//
// Parameters:
//   - s: the fragment shader
//
// Returns:
//   - PipelineBuilderOption: a function that attaches the shader
func WithFragmentShader(s shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		p.fragmentShader = s
	}
}

// WithComputeShader attaches the compute stage shader.
//
// Parameters:
//   - s: the compute shader
//
// Returns:
//   - PipelineBuilderOption: a function that attaches the shader
func WithComputeShader(s shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		p.computeShader = s
	}
}

// WithDepthTestEnabled toggles depth testing, which defaults to on. A
// pipeline with testing off still carries depth-stencil state; use
// WithDepthStencilDisabled for passes without a depth attachment.
//
// Parameters:
//   - enabled: whether fragments are tested against the depth attachment
//
// Returns:
//   - PipelineBuilderOption: a function that applies the setting
func WithDepthTestEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthTestEnabled = enabled
	}
}

// WithDepthWriteEnabled toggles depth writes, which default to on.
// Transparency accumulation pipelines turn writes off so transparent
// fragments never occlude each other.
//
// Parameters:
//   - enabled: whether fragments write the depth attachment
//
// Returns:
//   - PipelineBuilderOption: a function that applies the setting
func WithDepthWriteEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthWriteEnabled = enabled
	}
}

// WithDepthBias sets the rasterizer depth bias.
//
// Parameters:
//   - bias: the constant bias
//   - slopeScale: the slope-scaled bias
//
// Returns:
//   - PipelineBuilderOption: a function that applies the bias
func WithDepthBias(bias int32, slopeScale float32) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthBias = bias
		p.depthBiasSlopeScale = slopeScale
	}
}

// WithBlendEnabled toggles blending on the derived surface target.
//
// Parameters:
//   - enabled: whether the target blends with existing color
//
// Returns:
//   - PipelineBuilderOption: a function that applies the setting
func WithBlendEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendEnabled = enabled
	}
}

// WithCullMode sets which triangle faces are culled.
//
// Parameters:
//   - mode: the cull mode
//
// Returns:
//   - PipelineBuilderOption: a function that applies the mode
func WithCullMode(mode wgpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullMode = mode
	}
}

// WithTopology sets the primitive topology.
//
// Parameters:
//   - topology: the assembly topology, e.g. wgpu.PrimitiveTopologyTriangleList
//
// Returns:
//   - PipelineBuilderOption: a function that applies the topology
func WithTopology(topology wgpu.PrimitiveTopology) PipelineBuilderOption {
	return func(p *pipeline) {
		p.topology = topology
	}
}

// WithFrontFace sets the winding order treated as front-facing.
//
// Parameters:
//   - frontFace: wgpu.FrontFaceCCW or wgpu.FrontFaceCW
//
// Returns:
//   - PipelineBuilderOption: a function that applies the winding
func WithFrontFace(frontFace wgpu.FrontFace) PipelineBuilderOption {
	return func(p *pipeline) {
		p.frontFace = frontFace
	}
}

// WithWriteMask sets the channel mask for the derived surface target.
//
// Parameters:
//   - writeMask: the channels fragments may write
//
// Returns:
//   - PipelineBuilderOption: a function that applies the mask
func WithWriteMask(writeMask wgpu.ColorWriteMask) PipelineBuilderOption {
	return func(p *pipeline) {
		p.writeMask = writeMask
	}
}

// WithBlendState replaces the default alpha blend state used when blending
// is enabled.
//
// Parameters:
//   - blendState: the blend factors and operations per component
//
// Returns:
//   - PipelineBuilderOption: a function that applies the state
func WithBlendState(blendState *wgpu.BlendState) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blendState = blendState
	}
}

// WithDepthStencilDisabled creates the pipeline without any depth-stencil
// state. Required for pipelines used in passes that attach no depth texture,
// such as the fullscreen transparency composite.
//
// Returns:
//   - PipelineBuilderOption: a function that disables depth-stencil state
func WithDepthStencilDisabled() PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthStencilDisabled = true
	}
}

// WithColorTargets sets explicit color target states, overriding the single
// surface-format target the renderer would otherwise derive from the blend
// and write mask settings. Off-screen passes whose attachments differ from
// the surface, such as the two-target weighted-blend accumulation pass, set
// these.
//
// Parameters:
//   - targets: the color target states in attachment order
//
// Returns:
//   - PipelineBuilderOption: a function that applies the targets
func WithColorTargets(targets ...wgpu.ColorTargetState) PipelineBuilderOption {
	return func(p *pipeline) {
		p.colorTargets = targets
	}
}
