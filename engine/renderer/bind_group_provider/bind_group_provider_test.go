package bind_group_provider

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

func TestSetAndAdoptOwnership(t *testing.T) {
	p := NewBindGroupProvider("ownership").(*bindGroupProvider)

	shared := &wgpu.Buffer{}
	p.SetBuffer(0, shared)
	if p.Buffer(0) != shared {
		t.Fatal("expected shared buffer at binding 0")
	}
	if p.ownedBuffers[0] {
		t.Error("SetBuffer must not take ownership")
	}

	adopted := &wgpu.Buffer{}
	p.AdoptBuffer(1, adopted)
	if p.Buffer(1) != adopted {
		t.Fatal("expected adopted buffer at binding 1")
	}
	if !p.ownedBuffers[1] {
		t.Error("AdoptBuffer must take ownership")
	}

	// Re-sharing a previously adopted binding hands ownership back.
	p.SetBuffer(1, shared)
	if p.ownedBuffers[1] {
		t.Error("SetBuffer over an adopted binding must clear ownership")
	}

	tv := &wgpu.TextureView{}
	p.SetTextureView(0, tv)
	p.AdoptTextureView(1, &wgpu.TextureView{})
	if p.ownedViews[0] || !p.ownedViews[1] {
		t.Error("texture view ownership does not match the setter used")
	}

	smp := &wgpu.Sampler{}
	p.SetSampler(0, smp)
	p.AdoptSampler(1, &wgpu.Sampler{})
	if p.ownedSamplers[0] || !p.ownedSamplers[1] {
		t.Error("sampler ownership does not match the setter used")
	}
}

func TestRelease_DropsSharedWithoutFreeing(t *testing.T) {
	// Every resource here is shared, so Release must clear the bindings
	// without calling into wgpu. Freeing one of these stub handles would
	// crash the test.
	p := NewBindGroupProvider("teardown")
	p.SetBuffer(0, &wgpu.Buffer{})
	p.SetTextureView(1, &wgpu.TextureView{})
	p.SetSampler(2, &wgpu.Sampler{})

	p.Release()

	if p.Buffer(0) != nil {
		t.Error("expected buffer binding cleared after Release")
	}
	if p.TextureView(1) != nil {
		t.Error("expected texture view binding cleared after Release")
	}
	if p.Sampler(2) != nil {
		t.Error("expected sampler binding cleared after Release")
	}
	if p.BindGroup() != nil || p.BindGroupLayout() != nil {
		t.Error("expected no bind group or layout on an uninitialized provider")
	}
}

func TestNewBindGroupProvider_SharedOptions(t *testing.T) {
	buf := &wgpu.Buffer{}
	tv := &wgpu.TextureView{}
	smp := &wgpu.Sampler{}

	p := NewBindGroupProvider("composite",
		WithSharedTextureView(0, tv),
		WithSharedBuffer(3, buf),
		WithSharedSampler(2, smp),
	)

	if p.Label() != "composite" {
		t.Errorf("expected label %q, got %q", "composite", p.Label())
	}
	if p.TextureView(0) != tv || p.Buffer(3) != buf || p.Sampler(2) != smp {
		t.Fatal("options did not install the shared resources")
	}

	impl := p.(*bindGroupProvider)
	if impl.ownedViews[0] || impl.ownedBuffers[3] || impl.ownedSamplers[2] {
		t.Error("shared options must not take ownership")
	}
}
