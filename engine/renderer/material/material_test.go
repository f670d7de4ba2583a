package material

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/lucent-go/common"
)

func TestNewMaterialDefaults(t *testing.T) {
	m := NewMaterial()

	if m.BaseColor() != [4]float32{1, 1, 1, 1} {
		t.Errorf("expected white default base color, got %v", m.BaseColor())
	}
	if m.Transparent() {
		t.Errorf("expected opaque default material")
	}
	if m.DiffuseTexture() != nil || m.SamplerData() != nil {
		t.Errorf("expected no texture data by default")
	}
}

func TestTransparentFromAlpha(t *testing.T) {
	m := NewMaterial(WithBaseColor([4]float32{1, 0, 0, 0.5}))
	if !m.Transparent() {
		t.Errorf("expected material with alpha 0.5 to be transparent")
	}

	flagged := NewMaterial(
		WithBaseColor([4]float32{1, 0, 0, 1}),
		WithTransparent(true),
	)
	if !flagged.Transparent() {
		t.Errorf("expected explicitly flagged material to be transparent")
	}

	opaque := NewMaterial(WithBaseColor([4]float32{1, 0, 0, 1}))
	if opaque.Transparent() {
		t.Errorf("expected material with alpha 1 to be opaque")
	}
}

func TestMaterialBuilderOptions(t *testing.T) {
	tex := &common.TextureStagingData{
		Pixels: []byte{255, 255, 255, 255},
		Width:  1,
		Height: 1,
	}

	m := NewMaterial(
		WithName("glass"),
		WithBaseColor([4]float32{0.2, 0.4, 0.8, 0.35}),
		WithDiffuseTexture(tex),
		WithPipelineKey("transparent_pass"),
	)

	if m.Name() != "glass" {
		t.Errorf("expected name glass, got %q", m.Name())
	}
	if m.PipelineKey() != "transparent_pass" {
		t.Errorf("expected pipeline key transparent_pass, got %q", m.PipelineKey())
	}
	if m.DiffuseTexture() != tex {
		t.Errorf("diffuse texture not stored")
	}

	m.SetPipelineKey("other_pass")
	if m.PipelineKey() != "other_pass" {
		t.Errorf("SetPipelineKey did not update the key")
	}
}

func TestGPUMaterialParamsMarshal(t *testing.T) {
	p := GPUMaterialParams{BaseColor: [4]float32{0.25, 0.5, 0.75, 1.0}}

	if p.Size() != 16 {
		t.Fatalf("expected params size 16, got %d", p.Size())
	}

	buf := p.Marshal()
	if len(buf) != 16 {
		t.Fatalf("expected marshaled length 16, got %d", len(buf))
	}

	expected := [4]float32{0.25, 0.5, 0.75, 1.0}
	for i := range 4 {
		got := math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4 : (i+1)*4]))
		if got != expected[i] {
			t.Errorf("channel %d: expected %v, got %v", i, expected[i], got)
		}
	}
}
