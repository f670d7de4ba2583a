package renderer

import (
	"testing"

	"github.com/Carmen-Shannon/lucent-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/lucent-go/engine/renderer/pipeline"
)

// pipelineIface aliases pipeline.Pipeline so the embedded field name does not
// collide with the interface's Pipeline method.
type pipelineIface = pipeline.Pipeline

// stubPipeline carries just a key and type; the embedded interface covers the
// methods the cache never touches.
type stubPipeline struct {
	pipelineIface
	key string
	typ pipeline.PipelineType
}

func (p *stubPipeline) PipelineKey() string         { return p.key }
func (p *stubPipeline) Type() pipeline.PipelineType { return p.typ }

// stubBackend records pipeline registrations and draw calls.
type stubBackend struct {
	RendererBackend
	renderKeys  []string
	computeKeys []string
	draws       int
	dispatches  int
}

func (b *stubBackend) RegisterRenderPipeline(p pipeline.Pipeline) error {
	b.renderKeys = append(b.renderKeys, p.PipelineKey())
	return nil
}

func (b *stubBackend) RegisterComputePipeline(p pipeline.Pipeline) error {
	b.computeKeys = append(b.computeKeys, p.PipelineKey())
	return nil
}

func (b *stubBackend) DrawCall(p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) {
	b.draws++
}

func (b *stubBackend) DispatchTransparencyCompute(p pipeline.Pipeline, computeProvider bind_group_provider.BindGroupProvider, workGroupCount [3]uint32) {
	b.dispatches++
}

func newTestRenderer(backend RendererBackend) *renderer {
	return &renderer{
		pipelines: make(map[string]pipeline.Pipeline),
		backend:   backend,
	}
}

func TestRegisterPipelines_CachesAndDedupes(t *testing.T) {
	backend := &stubBackend{}
	r := newTestRenderer(backend)

	draw := &stubPipeline{key: "draw", typ: pipeline.PipelineTypeRender}
	build := &stubPipeline{key: "build", typ: pipeline.PipelineTypeCompute}

	if err := r.RegisterPipelines(draw, build); err != nil {
		t.Fatalf("RegisterPipelines failed: %v", err)
	}
	// Re-registering the same key must not hit the backend again.
	if err := r.RegisterPipelines(draw); err != nil {
		t.Fatalf("re-registering failed: %v", err)
	}

	if len(backend.renderKeys) != 1 || backend.renderKeys[0] != "draw" {
		t.Errorf("render registrations = %v, want [draw]", backend.renderKeys)
	}
	if len(backend.computeKeys) != 1 || backend.computeKeys[0] != "build" {
		t.Errorf("compute registrations = %v, want [build]", backend.computeKeys)
	}
	if r.Pipeline("draw") != draw {
		t.Error("Pipeline(draw) did not return the registered pipeline")
	}
	if r.Pipeline("missing") != nil {
		t.Error("Pipeline(missing) returned a pipeline")
	}
}

func TestDrawCall_RequiresRegisteredPipeline(t *testing.T) {
	backend := &stubBackend{}
	r := newTestRenderer(backend)

	if err := r.DrawCall("missing", nil, 1, nil); err == nil {
		t.Error("DrawCall with unregistered key did not fail")
	}
	if backend.draws != 0 {
		t.Errorf("backend drew %d times for an unregistered key", backend.draws)
	}

	if err := r.RegisterPipelines(&stubPipeline{key: "draw", typ: pipeline.PipelineTypeRender}); err != nil {
		t.Fatalf("RegisterPipelines failed: %v", err)
	}
	if err := r.DrawCall("draw", nil, 1, nil); err != nil {
		t.Fatalf("DrawCall failed: %v", err)
	}
	if backend.draws != 1 {
		t.Errorf("backend draws = %d, want 1", backend.draws)
	}
}

func TestDispatchTransparencyCompute_SkipsUnknownKey(t *testing.T) {
	backend := &stubBackend{}
	r := newTestRenderer(backend)

	r.DispatchTransparencyCompute("missing", nil, [3]uint32{1, 1, 1})
	if backend.dispatches != 0 {
		t.Errorf("backend dispatched %d times for an unregistered key", backend.dispatches)
	}

	if err := r.RegisterPipelines(&stubPipeline{key: "build", typ: pipeline.PipelineTypeCompute}); err != nil {
		t.Fatalf("RegisterPipelines failed: %v", err)
	}
	r.DispatchTransparencyCompute("build", nil, [3]uint32{1, 1, 1})
	if backend.dispatches != 1 {
		t.Errorf("backend dispatches = %d, want 1", backend.dispatches)
	}
}
