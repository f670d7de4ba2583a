package scene

import (
	"math"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/lucent-go/common"
	"github.com/Carmen-Shannon/lucent-go/engine/camera"
	"github.com/Carmen-Shannon/lucent-go/engine/game_object"
	"github.com/Carmen-Shannon/lucent-go/engine/oit"
	"github.com/Carmen-Shannon/lucent-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/lucent-go/engine/renderer/material"
	"github.com/Carmen-Shannon/lucent-go/engine/renderer/shader"
)

// newTestScene builds a scene literal without touching the GPU. NewScene
// initializes the camera bind group on the device, so CPU-only tests assemble
// the struct directly.
func newTestScene() *scene {
	return &scene{
		mu:       &sync.RWMutex{},
		name:     "test",
		registry: make(map[uint64]game_object.GameObject),
		nextID:   1,
		settings: oit.NewSettings(),
	}
}

func TestSortBackToFront(t *testing.T) {
	items := []drawItem{
		{viewDepth: 1},
		{viewDepth: 9},
		{viewDepth: 5},
		{viewDepth: 3},
	}
	sortBackToFront(items)

	want := []float32{9, 5, 3, 1}
	for i, w := range want {
		if items[i].viewDepth != w {
			t.Fatalf("items[%d].viewDepth = %v, want %v", i, items[i].viewDepth, w)
		}
	}
}

func TestViewSpaceDepth(t *testing.T) {
	// Camera at z=10 looking at the origin down -Z.
	var view [16]float32
	common.LookAt(view[:], 0, 0, 10, 0, 0, 0, 0, 1, 0)

	tests := []struct {
		name    string
		x, y, z float32
		want    float32
	}{
		{"origin is 10 in front", 0, 0, 0, 10},
		{"halfway point", 0, 0, 5, 5},
		{"behind the camera is negative", 0, 0, 15, -5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := viewSpaceDepth(view, tt.x, tt.y, tt.z)
			if math.Abs(float64(got-tt.want)) > 1e-5 {
				t.Fatalf("viewSpaceDepth(%v,%v,%v) = %v, want %v", tt.x, tt.y, tt.z, got, tt.want)
			}
		})
	}
}

// accumDeclarations parses the weighted-blend accumulation shaders and returns
// the combined vertex+fragment annotation list, the way RegisterPipelines sees
// a pipeline's declared bind groups.
func accumDeclarations(t *testing.T, fragSource string) []shader.Annotation {
	t.Helper()
	vert := shader.NewShaderFromSource("test_accum_vert", shader.ShaderTypeVertex, oit.AccumVertexSource)
	frag := shader.NewShaderFromSource("test_accum_frag", shader.ShaderTypeFragment, fragSource)
	decls := append([]shader.Annotation{}, vert.Declarations()...)
	return append(decls, frag.Declarations()...)
}

func TestResolveBindGroups_StandardObject(t *testing.T) {
	s := newTestScene()
	s.cam = camera.NewCamera()

	matBGP := bind_group_provider.NewBindGroupProvider("test_material")
	mat := material.NewMaterial(material.WithName("test_material"))
	mat.SetBindGroupProvider(matBGP)

	modelBGP := bind_group_provider.NewBindGroupProvider("test_model")
	obj := game_object.NewGameObject(game_object.WithMaterial(mat))
	obj.SetModelProvider(modelBGP)

	decls := accumDeclarations(t, oit.NaiveAccumFragmentSource)
	got, ok := s.resolveBindGroups(decls, obj, nil)
	if !ok {
		t.Fatal("resolveBindGroups failed for a fully provisioned object")
	}
	if len(got) != 3 {
		t.Fatalf("resolved %d bind groups, want 3", len(got))
	}
	if got[0] != s.cam.BindGroupProvider() {
		t.Error("group 0 is not the camera provider")
	}
	if got[1] != modelBGP {
		t.Error("group 1 is not the object's model provider")
	}
	if got[2] != matBGP {
		t.Error("group 2 is not the material provider")
	}
}

func TestResolveBindGroups_MissingModelProvider(t *testing.T) {
	s := newTestScene()
	s.cam = camera.NewCamera()

	mat := material.NewMaterial(material.WithName("test_material"))
	mat.SetBindGroupProvider(bind_group_provider.NewBindGroupProvider("test_material"))

	// No model provider set, so group 1 has no source.
	obj := game_object.NewGameObject(game_object.WithMaterial(mat))

	decls := accumDeclarations(t, oit.NaiveAccumFragmentSource)
	got, ok := s.resolveBindGroups(decls, obj, nil)
	if ok {
		t.Fatal("resolveBindGroups succeeded with a missing model provider")
	}
	if got != nil {
		t.Fatalf("expected nil bind groups on failure, got %d", len(got))
	}
}

func TestResolveBindGroups_HistogramTransparency(t *testing.T) {
	s := newTestScene()
	s.cam = camera.NewCamera()

	mat := material.NewMaterial(material.WithName("test_material"))
	mat.SetBindGroupProvider(bind_group_provider.NewBindGroupProvider("test_material"))

	obj := game_object.NewGameObject(game_object.WithMaterial(mat))
	obj.SetModelProvider(bind_group_provider.NewBindGroupProvider("test_model"))

	transparencyBGP := bind_group_provider.NewBindGroupProvider("test_transparency")

	decls := accumDeclarations(t, oit.HistogramAccumFragmentSource)
	got, ok := s.resolveBindGroups(decls, obj, transparencyBGP)
	if !ok {
		t.Fatal("resolveBindGroups failed for the histogram accumulation groups")
	}
	if len(got) != 4 {
		t.Fatalf("resolved %d bind groups, want 4", len(got))
	}
	if got[3] != transparencyBGP {
		t.Error("group 3 is not the transparency provider")
	}

	// Without the transparency provider the histogram groups cannot resolve.
	if _, ok := s.resolveBindGroups(decls, obj, nil); ok {
		t.Fatal("resolveBindGroups succeeded without a transparency provider")
	}
}

func TestSceneBuilderOptions(t *testing.T) {
	s := newTestScene()

	WithActive(true)(s)
	if !s.active {
		t.Error("WithActive(true) did not activate the scene")
	}

	WithCullingDisabled(true)(s)
	if !s.cullingDisabled {
		t.Error("WithCullingDisabled(true) did not disable culling")
	}

	WithComputeWorkers(0)(s)
	if s.computeWorkers != 1 {
		t.Errorf("WithComputeWorkers(0) set %d workers, want floor of 1", s.computeWorkers)
	}
	WithComputeWorkers(8)(s)
	if s.computeWorkers != 8 {
		t.Errorf("WithComputeWorkers(8) set %d workers, want 8", s.computeWorkers)
	}

	WithTransparencySettings(oit.NewSettings(oit.WithMode(oit.ModeHistogram)))(s)
	if s.settings.Mode() != oit.ModeHistogram {
		t.Errorf("WithTransparencySettings mode = %v, want ModeHistogram", s.settings.Mode())
	}
}

func TestSceneBuilderWithObjects(t *testing.T) {
	s := newTestScene()

	a := game_object.NewGameObject()
	b := game_object.NewGameObject()
	c := game_object.NewGameObject(game_object.WithID(42))
	WithObjects(a, b, c)(s)

	if a.ID() != 1 || b.ID() != 2 {
		t.Errorf("assigned IDs = %d, %d, want 1, 2", a.ID(), b.ID())
	}
	if c.ID() != 42 {
		t.Errorf("explicit ID overwritten: got %d, want 42", c.ID())
	}
	if len(s.registry) != 3 {
		t.Fatalf("registry holds %d objects, want 3", len(s.registry))
	}
	if s.registry[42] != c {
		t.Error("registry[42] is not the explicitly numbered object")
	}
}

func TestSceneRegistry(t *testing.T) {
	s := newTestScene()

	a := game_object.NewGameObject()
	b := game_object.NewGameObject()
	WithObjects(a, b)(s)

	if s.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", s.Count())
	}
	if s.Get(a.ID()) != a {
		t.Error("Get did not return the registered object")
	}

	s.Remove(a.ID())
	if s.Count() != 1 {
		t.Errorf("Count() after Remove = %d, want 1", s.Count())
	}
	if s.Get(a.ID()) != nil {
		t.Error("Get returned a removed object")
	}

	s.Clear()
	if s.Count() != 0 {
		t.Errorf("Count() after Clear = %d, want 0", s.Count())
	}
}

func TestSceneStateAccessors(t *testing.T) {
	s := newTestScene()

	if s.Name() != "test" {
		t.Errorf("Name() = %q, want %q", s.Name(), "test")
	}
	s.SetName("renamed")
	if s.Name() != "renamed" {
		t.Errorf("Name() after SetName = %q, want %q", s.Name(), "renamed")
	}

	if s.Active() {
		t.Error("scene active before SetActive")
	}
	s.SetActive(true)
	if !s.Active() {
		t.Error("SetActive(true) did not activate the scene")
	}

	if s.TransparencySettings().Mode() != oit.ModeInactive {
		t.Errorf("default transparency mode = %v, want ModeInactive", s.TransparencySettings().Mode())
	}
	s.SetTransparencyMode(oit.ModeNaive)
	if s.TransparencySettings().Mode() != oit.ModeNaive {
		t.Errorf("mode after SetTransparencyMode = %v, want ModeNaive", s.TransparencySettings().Mode())
	}
}
