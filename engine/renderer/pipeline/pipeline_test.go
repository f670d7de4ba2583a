package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/lucent-go/engine/oit"
	"github.com/Carmen-Shannon/lucent-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

func TestNewPipeline_RenderDefaults(t *testing.T) {
	p := NewPipeline("surface_default", PipelineTypeRender)

	if p.Type() != PipelineTypeRender {
		t.Fatalf("type: got %v", p.Type())
	}
	if p.PipelineKey() != "surface_default" {
		t.Fatalf("key: got %q", p.PipelineKey())
	}
	if !p.DepthTestEnabled() || !p.DepthWriteEnabled() {
		t.Fatal("render pipelines must default to depth test and write enabled")
	}
	if p.DepthStencilDisabled() {
		t.Fatal("depth-stencil must default to enabled")
	}
	if p.BlendEnabled() {
		t.Fatal("blending must default to disabled")
	}
	if p.CullMode() != wgpu.CullModeNone {
		t.Fatalf("cull mode: got %v", p.CullMode())
	}
	if p.Topology() != wgpu.PrimitiveTopologyTriangleList {
		t.Fatalf("topology: got %v", p.Topology())
	}
	if p.FrontFace() != wgpu.FrontFaceCCW {
		t.Fatalf("front face: got %v", p.FrontFace())
	}
	if p.WriteMask() != wgpu.ColorWriteMaskAll {
		t.Fatalf("write mask: got %v", p.WriteMask())
	}
	if p.ColorTargets() != nil {
		t.Fatal("color targets must default to nil (surface target)")
	}

	// The default blend state is standard alpha blending, used when
	// WithBlendEnabled(true) is set without an explicit blend state.
	bs := p.BlendState()
	if bs == nil || bs.Color.SrcFactor != wgpu.BlendFactorSrcAlpha || bs.Color.DstFactor != wgpu.BlendFactorOneMinusSrcAlpha {
		t.Fatalf("default blend state: got %+v", bs)
	}

	if p.Pipeline() != (*wgpu.RenderPipeline)(nil) {
		t.Fatal("underlying pipeline must be nil before registration")
	}
}

func TestNewPipeline_Options(t *testing.T) {
	vert := shader.NewShaderFromSource("composite_vert", shader.ShaderTypeVertex, oit.CompositeVertexSource)
	frag := shader.NewShaderFromSource("composite_frag", shader.ShaderTypeFragment, oit.CompositeFragmentSource)

	custom := &wgpu.BlendState{
		Color: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			Operation: wgpu.BlendOperationAdd,
		},
		Alpha: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			Operation: wgpu.BlendOperationAdd,
		},
	}

	p := NewPipeline("composite", PipelineTypeRender,
		WithVertexShader(vert),
		WithFragmentShader(frag),
		WithDepthStencilDisabled(),
		WithBlendEnabled(true),
		WithBlendState(custom),
		WithCullMode(wgpu.CullModeBack),
		WithFrontFace(wgpu.FrontFaceCW),
		WithTopology(wgpu.PrimitiveTopologyTriangleStrip),
		WithDepthBias(2, 1.5),
	)

	if p.Shader(shader.ShaderTypeVertex) != vert {
		t.Fatal("vertex shader not applied")
	}
	if p.Shader(shader.ShaderTypeFragment) != frag {
		t.Fatal("fragment shader not applied")
	}
	if p.Shader(shader.ShaderTypeCompute) != nil {
		t.Fatal("compute shader must be nil on a render pipeline")
	}
	if !p.DepthStencilDisabled() {
		t.Fatal("WithDepthStencilDisabled not applied")
	}
	if !p.BlendEnabled() || p.BlendState() != custom {
		t.Fatal("blend configuration not applied")
	}
	if p.CullMode() != wgpu.CullModeBack || p.FrontFace() != wgpu.FrontFaceCW {
		t.Fatal("rasterizer state not applied")
	}
	if p.Topology() != wgpu.PrimitiveTopologyTriangleStrip {
		t.Fatalf("topology: got %v", p.Topology())
	}
	if p.DepthBias() != 2 || p.DepthBiasSlopeScale() != 1.5 {
		t.Fatalf("depth bias: got %d / %f", p.DepthBias(), p.DepthBiasSlopeScale())
	}
}

func TestNewPipeline_AccumColorTargets(t *testing.T) {
	// The weighted-blend accumulation pass renders to two off-surface targets
	// with per-target blend states, configured through WithColorTargets.
	targets := []wgpu.ColorTargetState{
		{
			Format: wgpu.TextureFormatRGBA16Float,
			Blend: &wgpu.BlendState{
				Color: wgpu.BlendComponent{SrcFactor: wgpu.BlendFactorOne, DstFactor: wgpu.BlendFactorOne, Operation: wgpu.BlendOperationAdd},
				Alpha: wgpu.BlendComponent{SrcFactor: wgpu.BlendFactorOne, DstFactor: wgpu.BlendFactorOne, Operation: wgpu.BlendOperationAdd},
			},
			WriteMask: wgpu.ColorWriteMaskAll,
		},
		{
			Format: wgpu.TextureFormatR8Unorm,
			Blend: &wgpu.BlendState{
				Color: wgpu.BlendComponent{SrcFactor: wgpu.BlendFactorZero, DstFactor: wgpu.BlendFactorOneMinusSrc, Operation: wgpu.BlendOperationAdd},
				Alpha: wgpu.BlendComponent{SrcFactor: wgpu.BlendFactorZero, DstFactor: wgpu.BlendFactorOneMinusSrc, Operation: wgpu.BlendOperationAdd},
			},
			WriteMask: wgpu.ColorWriteMaskAll,
		},
	}

	p := NewPipeline("oit_accum", PipelineTypeRender,
		WithDepthWriteEnabled(false),
		WithCullMode(wgpu.CullModeBack),
		WithColorTargets(targets...),
	)

	got := p.ColorTargets()
	if len(got) != 2 {
		t.Fatalf("color targets: got %d want 2", len(got))
	}
	if got[0].Format != wgpu.TextureFormatRGBA16Float || got[1].Format != wgpu.TextureFormatR8Unorm {
		t.Fatalf("target formats: got %v / %v", got[0].Format, got[1].Format)
	}
	if got[0].Blend.Color.DstFactor != wgpu.BlendFactorOne {
		t.Fatalf("accum blend dst: got %v", got[0].Blend.Color.DstFactor)
	}
	if got[1].Blend.Color.DstFactor != wgpu.BlendFactorOneMinusSrc {
		t.Fatalf("revealage blend dst: got %v", got[1].Blend.Color.DstFactor)
	}
	if p.DepthWriteEnabled() {
		t.Fatal("accumulation pipelines must not write depth")
	}
	if !p.DepthTestEnabled() {
		t.Fatal("accumulation pipelines still test depth against opaques")
	}
}

func TestNewPipeline_ComputeType(t *testing.T) {
	comp := shader.NewShaderFromSource("cdf_build", shader.ShaderTypeCompute, oit.CDFBuildComputeSource)
	p := NewPipeline("cdf_build", PipelineTypeCompute, WithComputeShader(comp))

	if p.Type() != PipelineTypeCompute {
		t.Fatalf("type: got %v", p.Type())
	}
	if p.Shader(shader.ShaderTypeCompute) != comp {
		t.Fatal("compute shader not applied")
	}
	if p.Pipeline() != (*wgpu.ComputePipeline)(nil) {
		t.Fatal("underlying compute pipeline must be nil before registration")
	}
}
