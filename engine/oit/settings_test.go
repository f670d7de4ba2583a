package oit

import (
	"encoding/binary"
	"testing"
)

func TestNewSettings_Defaults(t *testing.T) {
	s := NewSettings()
	if s.Mode() != ModeInactive {
		t.Fatalf("default mode: got %v", s.Mode())
	}
	if s.TileSize() != DefaultTileSize {
		t.Fatalf("default tile size: got %d", s.TileSize())
	}
	if s.NumBins() != DefaultNumBins {
		t.Fatalf("default bins: got %d", s.NumBins())
	}
	if s.MaxDepth() != DefaultMaxDepth {
		t.Fatalf("default max depth: got %f", s.MaxDepth())
	}
}

func TestNewSettings_Options(t *testing.T) {
	s := NewSettings(
		WithMode(ModeHistogram),
		WithTileSize(16),
		WithNumBins(32),
		WithMaxDepth(250),
	)
	if s.Mode() != ModeHistogram || s.TileSize() != 16 || s.NumBins() != 32 || s.MaxDepth() != 250 {
		t.Fatalf("options not applied: mode=%v tile=%d bins=%d depth=%f",
			s.Mode(), s.TileSize(), s.NumBins(), s.MaxDepth())
	}

	s.SetMode(ModeNaive)
	if s.Mode() != ModeNaive {
		t.Fatalf("SetMode: got %v", s.Mode())
	}
	s.SetMaxDepth(80)
	if s.MaxDepth() != 80 {
		t.Fatalf("SetMaxDepth: got %f", s.MaxDepth())
	}
	s.SetMaxDepth(-1)
	if s.MaxDepth() != 80 {
		t.Fatalf("negative SetMaxDepth must be ignored, got %f", s.MaxDepth())
	}
}

func TestNewSettings_PanicsOnInvalidConfig(t *testing.T) {
	expectPanic := func(name string, opts ...SettingsBuilderOption) {
		defer func() {
			if recover() == nil {
				t.Fatalf("%s: expected panic", name)
			}
		}()
		NewSettings(opts...)
	}
	expectPanic("zero bins", WithNumBins(0))
	expectPanic("too many bins", WithNumBins(MaxBins+1))
	expectPanic("zero tile size", WithTileSize(0))
	expectPanic("negative max depth", WithMaxDepth(-10))
}

func TestMode_StringAndPredicates(t *testing.T) {
	cases := []struct {
		mode      Mode
		name      string
		weighted  bool
		histogram bool
	}{
		{ModeInactive, "inactive", false, false},
		{ModeNaive, "naive", true, false},
		{ModeHistogram, "histogram", true, true},
		{Mode(99), "unknown", false, false},
	}
	for _, c := range cases {
		if c.mode.String() != c.name {
			t.Fatalf("String(%d): got %q want %q", int(c.mode), c.mode.String(), c.name)
		}
		if c.mode.UsesWeightedBlend() != c.weighted {
			t.Fatalf("%s UsesWeightedBlend: got %v", c.name, c.mode.UsesWeightedBlend())
		}
		if c.mode.UsesHistogram() != c.histogram {
			t.Fatalf("%s UsesHistogram: got %v", c.name, c.mode.UsesHistogram())
		}
	}
}

func TestTileCounts_CeilDivision(t *testing.T) {
	cases := []struct {
		w, h, tile uint32
		wantX      uint32
		wantY      uint32
	}{
		{800, 600, 32, 25, 19},
		{1920, 1080, 32, 60, 34},
		{33, 1, 32, 2, 1},
		{32, 32, 32, 1, 1},
	}
	for _, c := range cases {
		x, y := TileCounts(c.w, c.h, c.tile)
		if x != c.wantX || y != c.wantY {
			t.Fatalf("TileCounts(%d,%d,%d): got %d,%d want %d,%d", c.w, c.h, c.tile, x, y, c.wantX, c.wantY)
		}
	}
}

func TestHistogramBufferSizeAndDispatch(t *testing.T) {
	if got := HistogramBufferSize(25, 19, 64); got != 25*19*64*4 {
		t.Fatalf("buffer size: got %d want %d", got, 25*19*64*4)
	}
	if got := CDFDispatch(25, 19); got != [3]uint32{25, 19, 1} {
		t.Fatalf("dispatch: got %v", got)
	}
}

func TestGPUHistogramParams_Marshal(t *testing.T) {
	p := GPUHistogramParams{
		TileCountX: 25,
		TileCountY: 19,
		NumBins:    64,
		TileSize:   32,
		MaxDepth:   100,
	}
	if p.Size() != 32 {
		t.Fatalf("size: got %d want 32", p.Size())
	}

	buf := p.Marshal()
	if len(buf) != 32 {
		t.Fatalf("marshal length: got %d want 32", len(buf))
	}
	if v := binary.LittleEndian.Uint32(buf[0:4]); v != 25 {
		t.Fatalf("tile_count_x: got %d", v)
	}
	if v := binary.LittleEndian.Uint32(buf[4:8]); v != 19 {
		t.Fatalf("tile_count_y: got %d", v)
	}
	if v := binary.LittleEndian.Uint32(buf[8:12]); v != 64 {
		t.Fatalf("num_bins: got %d", v)
	}
	if v := binary.LittleEndian.Uint32(buf[12:16]); v != 32 {
		t.Fatalf("tile_size: got %d", v)
	}
	// 100.0 as float32 bits.
	if v := binary.LittleEndian.Uint32(buf[16:20]); v != 0x42C80000 {
		t.Fatalf("max_depth bits: got %#x", v)
	}
	for i := 20; i < 32; i++ {
		if buf[i] != 0 {
			t.Fatalf("padding byte %d not zero: %d", i, buf[i])
		}
	}
}
