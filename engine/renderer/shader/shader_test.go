package shader

import (
	"testing"

	"github.com/Carmen-Shannon/lucent-go/engine/oit"

	"github.com/cogentcore/webgpu/wgpu"
)

func TestAccumVertexShaderReflection(t *testing.T) {
	s := NewShaderFromSource("accum_vertex", ShaderTypeVertex, oit.AccumVertexSource)

	if s.EntryPoint() != "vs_main" {
		t.Errorf("expected entry point vs_main, got %q", s.EntryPoint())
	}

	layouts := s.VertexLayout(0)
	if len(layouts) != 1 {
		t.Fatalf("expected 1 vertex buffer layout, got %d", len(layouts))
	}
	layout := layouts[0]
	if layout.ArrayStride != 48 {
		t.Errorf("expected array stride 48, got %d", layout.ArrayStride)
	}
	if len(layout.Attributes) != 4 {
		t.Fatalf("expected 4 vertex attributes, got %d", len(layout.Attributes))
	}

	expected := []struct {
		format wgpu.VertexFormat
		offset uint64
	}{
		{wgpu.VertexFormatFloat32x3, 0},
		{wgpu.VertexFormatFloat32x3, 12},
		{wgpu.VertexFormatFloat32x2, 24},
		{wgpu.VertexFormatFloat32x4, 32},
	}
	for i, want := range expected {
		attr := layout.Attributes[i]
		if attr.Format != want.format || attr.Offset != want.offset {
			t.Errorf("attribute %d: expected format %v at offset %d, got %v at %d",
				i, want.format, want.offset, attr.Format, attr.Offset)
		}
		if attr.ShaderLocation != uint32(i) {
			t.Errorf("attribute %d: expected shader location %d, got %d", i, i, attr.ShaderLocation)
		}
	}

	// Group 0 carries the camera uniform, group 1 the per-object model matrix.
	camEntries := s.BindGroupLayoutDescriptor(0).Entries
	if len(camEntries) != 1 || camEntries[0].Buffer.Type != wgpu.BufferBindingTypeUniform {
		t.Fatalf("expected single uniform entry in group 0")
	}
	if camEntries[0].Buffer.MinBindingSize != 144 {
		t.Errorf("expected camera uniform min size 144, got %d", camEntries[0].Buffer.MinBindingSize)
	}
	modelEntries := s.BindGroupLayoutDescriptor(1).Entries
	if len(modelEntries) != 1 || modelEntries[0].Buffer.MinBindingSize != 64 {
		t.Fatalf("expected single 64-byte uniform entry in group 1")
	}
}

func TestHistogramAccumFragmentReflection(t *testing.T) {
	s := NewShaderFromSource("accum_histogram", ShaderTypeFragment, oit.HistogramAccumFragmentSource)

	if s.EntryPoint() != "fs_main" {
		t.Errorf("expected entry point fs_main, got %q", s.EntryPoint())
	}

	// Fragment shaders never produce vertex layouts, even with location-only
	// output structs in the source.
	if len(s.VertexLayouts()) != 0 {
		t.Errorf("expected no vertex layouts on a fragment shader")
	}

	matEntries := s.BindGroupLayoutDescriptor(2).Entries
	if len(matEntries) != 1 {
		t.Fatalf("expected 1 entry in material group, got %d", len(matEntries))
	}
	if matEntries[0].Buffer.Type != wgpu.BufferBindingTypeUniform || matEntries[0].Buffer.MinBindingSize != 16 {
		t.Errorf("expected 16-byte material uniform, got %+v", matEntries[0].Buffer)
	}

	entries := s.BindGroupLayoutDescriptor(3).Entries
	if len(entries) != 5 {
		t.Fatalf("expected 5 entries in transparency group, got %d", len(entries))
	}

	if entries[0].Buffer.Type != wgpu.BufferBindingTypeStorage {
		t.Errorf("binding 0: expected read-write storage buffer, got %+v", entries[0].Buffer)
	}
	if entries[0].Buffer.MinBindingSize != 4 {
		t.Errorf("binding 0: expected element stride 4 as min size, got %d", entries[0].Buffer.MinBindingSize)
	}
	if entries[1].Texture.SampleType != wgpu.TextureSampleTypeFloat ||
		entries[1].Texture.ViewDimension != wgpu.TextureViewDimension3D {
		t.Errorf("binding 1: expected 3D float texture, got %+v", entries[1].Texture)
	}
	if entries[2].Sampler.Type != wgpu.SamplerBindingTypeFiltering {
		t.Errorf("binding 2: expected filtering sampler, got %+v", entries[2].Sampler)
	}
	if entries[3].Buffer.Type != wgpu.BufferBindingTypeUniform || entries[3].Buffer.MinBindingSize != 32 {
		t.Errorf("binding 3: expected 32-byte uniform, got %+v", entries[3].Buffer)
	}
	if entries[4].Texture.SampleType != wgpu.TextureSampleTypeFloat ||
		entries[4].Texture.ViewDimension != wgpu.TextureViewDimension2D {
		t.Errorf("binding 4: expected 2D float texture, got %+v", entries[4].Texture)
	}

	for _, e := range entries {
		if e.Visibility != wgpu.ShaderStageFragment {
			t.Errorf("binding %d: expected fragment visibility", e.Binding)
		}
	}

	// The declarations list drives scene-side wiring: the transparency provider
	// annotations plus the two group annotations.
	decls := s.Declarations()
	if len(decls) != 6 {
		t.Fatalf("expected 6 declarations, got %d", len(decls))
	}
	var binsDecl *Annotation
	for i := range decls {
		d := &decls[i]
		if d.Type == AnnotationTypeProvider && len(d.Args) > 1 && d.Args[1] == AnnotationArgHistogramBins {
			binsDecl = d
		}
	}
	if binsDecl == nil {
		t.Fatalf("histogram_bins provider declaration not found")
	}
	if *binsDecl.Group != 3 || *binsDecl.Binding != 0 {
		t.Errorf("histogram_bins declared at group %d binding %d, expected 3/0", *binsDecl.Group, *binsDecl.Binding)
	}
}

func TestCDFBuildComputeReflection(t *testing.T) {
	s := NewShaderFromSource("cdf_build", ShaderTypeCompute, oit.CDFBuildComputeSource)

	if s.EntryPoint() != "main" {
		t.Errorf("expected entry point main, got %q", s.EntryPoint())
	}
	if s.WorkgroupSize() != [3]uint32{64, 1, 1} {
		t.Errorf("expected workgroup size [64 1 1], got %v", s.WorkgroupSize())
	}

	entries := s.BindGroupLayoutDescriptor(0).Entries
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries in compute group, got %d", len(entries))
	}
	if entries[0].Buffer.Type != wgpu.BufferBindingTypeStorage {
		t.Errorf("binding 0: expected storage buffer, got %+v", entries[0].Buffer)
	}
	if entries[1].StorageTexture.Access != wgpu.StorageTextureAccessWriteOnly ||
		entries[1].StorageTexture.Format != wgpu.TextureFormatRGBA16Float ||
		entries[1].StorageTexture.ViewDimension != wgpu.TextureViewDimension3D {
		t.Errorf("binding 1: expected write-only rgba16float 3D storage texture, got %+v", entries[1].StorageTexture)
	}
	if entries[2].Buffer.Type != wgpu.BufferBindingTypeUniform || entries[2].Buffer.MinBindingSize != 32 {
		t.Errorf("binding 2: expected 32-byte uniform, got %+v", entries[2].Buffer)
	}

	for _, e := range entries {
		if e.Visibility != wgpu.ShaderStageCompute {
			t.Errorf("binding %d: expected compute visibility", e.Binding)
		}
	}
}

func TestCompositeShaderReflection(t *testing.T) {
	vert := NewShaderFromSource("composite_vertex", ShaderTypeVertex, oit.CompositeVertexSource)
	if vert.EntryPoint() != "vs_main" {
		t.Errorf("expected entry point vs_main, got %q", vert.EntryPoint())
	}
	// The composite pass is a fullscreen triangle with no vertex buffer.
	if len(vert.VertexLayouts()) != 0 {
		t.Errorf("expected no vertex layouts for the fullscreen triangle, got %d", len(vert.VertexLayouts()))
	}

	frag := NewShaderFromSource("composite_fragment", ShaderTypeFragment, oit.CompositeFragmentSource)
	entries := frag.BindGroupLayoutDescriptor(0).Entries
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries in composite group, got %d", len(entries))
	}
	for i, e := range entries {
		if e.Texture.SampleType != wgpu.TextureSampleTypeFloat ||
			e.Texture.ViewDimension != wgpu.TextureViewDimension2D {
			t.Errorf("binding %d: expected 2D float texture, got %+v", i, e.Texture)
		}
	}

	decls := frag.Declarations()
	if len(decls) != 2 {
		t.Fatalf("expected 2 provider declarations, got %d", len(decls))
	}
	if decls[0].Args[0] != AnnotationArgTransparency || decls[1].Args[0] != AnnotationArgTransparency {
		t.Errorf("composite bindings should use the transparency provider identity")
	}
}
