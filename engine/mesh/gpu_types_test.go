package mesh

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestGPUVertexMarshalLayout(t *testing.T) {
	v := GPUVertex{
		Position: [3]float32{1, 2, 3},
		Normal:   [3]float32{0, 1, 0},
		TexCoord: [2]float32{0.25, 0.75},
		Color:    [4]float32{0.1, 0.2, 0.3, 0.4},
	}

	if v.Size() != 48 {
		t.Fatalf("expected vertex size 48, got %d", v.Size())
	}

	buf := v.Marshal()
	if len(buf) != 48 {
		t.Fatalf("expected marshaled length 48, got %d", len(buf))
	}

	readF32 := func(offset int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(buf[offset : offset+4]))
	}

	if readF32(0) != 1 || readF32(4) != 2 || readF32(8) != 3 {
		t.Errorf("position not at offset 0: got (%v, %v, %v)", readF32(0), readF32(4), readF32(8))
	}
	if readF32(16) != 1 {
		t.Errorf("normal.y not at offset 16: got %v", readF32(16))
	}
	if readF32(24) != 0.25 || readF32(28) != 0.75 {
		t.Errorf("tex coord not at offset 24: got (%v, %v)", readF32(24), readF32(28))
	}
	if readF32(44) != 0.4 {
		t.Errorf("color.a not at offset 44: got %v", readF32(44))
	}
}

func TestGPUModelDataMarshalLayout(t *testing.T) {
	var d GPUModelData
	for i := range 16 {
		d.Model[i] = float32(i)
	}

	if d.Size() != 64 {
		t.Fatalf("expected model data size 64, got %d", d.Size())
	}

	buf := d.Marshal()
	if len(buf) != 64 {
		t.Fatalf("expected marshaled length 64, got %d", len(buf))
	}
	for i := range 16 {
		got := math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4 : (i+1)*4]))
		if got != float32(i) {
			t.Errorf("matrix element %d: expected %v, got %v", i, float32(i), got)
		}
	}
}

func TestComputeBoundingRadius(t *testing.T) {
	vertices := []GPUVertex{
		{Position: [3]float32{1, 0, 0}},
		{Position: [3]float32{0, -5, 0}},
		{Position: [3]float32{3, 0, 4}}, // distance 5, ties the furthest
		{Position: [3]float32{0, 0, 2}},
	}

	radius := ComputeBoundingRadius(vertices)
	if radius != 5 {
		t.Errorf("expected bounding radius 5, got %v", radius)
	}

	if r := ComputeBoundingRadius(nil); r != 0 {
		t.Errorf("expected zero radius for empty slice, got %v", r)
	}
}

func TestNewMeshBuilderOptions(t *testing.T) {
	vertexData := []byte{1, 2, 3, 4}
	indexData := []byte{5, 6, 7, 8}

	m := NewMesh(
		WithName("test_mesh"),
		WithBoundingRadius(2.5),
		WithVertexData(vertexData),
		WithIndexData(indexData),
		WithIndexCount(6),
	)

	if m.Name() != "test_mesh" {
		t.Errorf("expected name test_mesh, got %q", m.Name())
	}
	if m.BoundingRadius() != 2.5 {
		t.Errorf("expected bounding radius 2.5, got %v", m.BoundingRadius())
	}
	if len(m.VertexData()) != 4 || len(m.IndexData()) != 4 {
		t.Errorf("vertex/index data not stored")
	}
	if m.IndexCount() != 6 {
		t.Errorf("expected index count 6, got %d", m.IndexCount())
	}
	if m.Provider() != nil {
		t.Errorf("expected nil provider before GPU init")
	}
}
