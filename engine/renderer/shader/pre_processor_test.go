package shader

import (
	"strings"
	"testing"
)

func TestProcessGroupAnnotation(t *testing.T) {
	src := "//@lucent:include camera\n//@lucent:group 0 0 storage_uniform camera camera\n"

	pp := NewPreProcessor()
	out, err := pp.Process(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(out, "struct CameraUniform") {
		t.Errorf("include did not inject CameraUniform struct source:\n%s", out)
	}
	if !strings.Contains(out, "@group(0) @binding(0) var<uniform> camera: CameraUniform;") {
		t.Errorf("group annotation did not emit expected declaration:\n%s", out)
	}

	decls := pp.Declarations()
	if len(decls) != 1 {
		t.Fatalf("expected 1 declaration, got %d", len(decls))
	}
	d := decls[0]
	if d.Type != AnnotationTypeBindingGroup {
		t.Errorf("expected binding group declaration, got %q", d.Type)
	}
	if d.Group == nil || *d.Group != 0 || d.Binding == nil || *d.Binding != 0 {
		t.Errorf("declaration group/binding not recorded")
	}
	if d.Args[2] != AnnotationArgCamera {
		t.Errorf("expected type arg camera, got %q", d.Args[2])
	}
}

func TestProcessProviderAnnotation(t *testing.T) {
	src := strings.Join([]string{
		"//@lucent:provider 3 0 transparency histogram_bins",
		"@group(3) @binding(0) var<storage, read_write> histogram_bins: array<atomic<u32>>;",
		"//@lucent:provider 3 1 transparency cdf_texture",
		"@group(3) @binding(1) var cdf_texture: texture_3d<f32>;",
	}, "\n")

	pp := NewPreProcessor()
	out, err := pp.Process(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Provider annotations leave the hand-written declarations untouched.
	if !strings.Contains(out, "histogram_bins: array<atomic<u32>>;") {
		t.Errorf("hand-written declaration was altered:\n%s", out)
	}

	decls := pp.Declarations()
	if len(decls) != 2 {
		t.Fatalf("expected 2 declarations, got %d", len(decls))
	}
	if decls[0].Args[0] != AnnotationArgTransparency {
		t.Errorf("expected transparency provider identity, got %q", decls[0].Args[0])
	}
	if decls[0].Args[1] != AnnotationArgHistogramBins {
		t.Errorf("expected histogram_bins role, got %q", decls[0].Args[1])
	}
	if decls[1].Args[1] != AnnotationArgCDFTexture {
		t.Errorf("expected cdf_texture role, got %q", decls[1].Args[1])
	}
}

func TestProcessModelDataGroup(t *testing.T) {
	src := "//@lucent:include model_data\n//@lucent:group 1 0 storage_uniform model model_data\n"

	pp := NewPreProcessor()
	out, err := pp.Process(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "@group(1) @binding(0) var<uniform> model: ModelData;") {
		t.Errorf("model_data group declaration missing:\n%s", out)
	}
}

func TestProcessPassesThroughPlainWGSL(t *testing.T) {
	src := "@vertex\nfn vs_main() -> @builtin(position) vec4<f32> {\n    return vec4<f32>(0.0);\n}\n"

	pp := NewPreProcessor()
	out, err := pp.Process(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != src {
		t.Errorf("plain WGSL was modified:\n%s", out)
	}
	if len(pp.Declarations()) != 0 {
		t.Errorf("expected no declarations for plain WGSL")
	}
}

func TestProcessRejectsMalformedAnnotations(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"unknown type", "//@lucent:frobnicate camera"},
		{"unknown struct", "//@lucent:include warp_field"},
		{"include arg count", "//@lucent:include camera extra"},
		{"group arg count", "//@lucent:group 0 0 storage_uniform camera"},
		{"bad group number", "//@lucent:group x 0 storage_uniform camera camera"},
		{"bad address space", "//@lucent:group 0 0 push_constant camera camera"},
		{"unknown group type", "//@lucent:group 0 0 storage_uniform foo bar"},
		{"unknown provider", "//@lucent:provider 0 0 shadow"},
		{"unknown role", "//@lucent:provider 3 0 transparency shadow_map"},
		{"empty annotation", "//@lucent:"},
	}

	for _, tc := range cases {
		pp := NewPreProcessor()
		if _, err := pp.Process(tc.src); err == nil {
			t.Errorf("%s: expected error for %q", tc.name, tc.src)
		}
	}
}

func TestParseAnnotationIgnoresNonAnnotationLines(t *testing.T) {
	lines := []string{
		"// a normal comment",
		"let x = 1.0;",
		"",
		"    @group(0) @binding(0) var<uniform> camera: CameraUniform;",
	}
	for _, line := range lines {
		a, err := parseAnnotation(line, 1)
		if err != nil {
			t.Errorf("unexpected error for %q: %v", line, err)
		}
		if a != nil {
			t.Errorf("expected nil annotation for %q", line)
		}
	}
}
