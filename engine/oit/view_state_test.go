package oit

import "testing"

func TestViewState_CreateFlipRecreate(t *testing.T) {
	var v ViewState

	if got := v.Prepare(0, 600); got != ViewActionSkip {
		t.Fatalf("zero width: got %v want skip", got)
	}
	if v.Created() {
		t.Fatal("skip must not mark the view created")
	}

	if got := v.Prepare(800, 600); got != ViewActionCreate {
		t.Fatalf("first size: got %v want create", got)
	}
	if v.FrameIndex() != 0 {
		t.Fatalf("first frame index: got %d want 0", v.FrameIndex())
	}

	// Steady state flips parity every frame.
	if got := v.Prepare(800, 600); got != ViewActionKeep {
		t.Fatalf("steady state: got %v want keep", got)
	}
	if v.FrameIndex() != 1 || v.PrevFrameIndex() != 0 {
		t.Fatalf("after flip: frame=%d prev=%d", v.FrameIndex(), v.PrevFrameIndex())
	}
	if got := v.Prepare(800, 600); got != ViewActionKeep {
		t.Fatalf("steady state: got %v want keep", got)
	}
	if v.FrameIndex() != 0 {
		t.Fatalf("second flip: got %d want 0", v.FrameIndex())
	}

	// A resize recreates the textures but still flips parity; it does not
	// restart at index 0.
	if got := v.Prepare(1024, 768); got != ViewActionRecreate {
		t.Fatalf("resize: got %v want recreate", got)
	}
	if v.FrameIndex() != 1 {
		t.Fatalf("frame index after resize: got %d want 1", v.FrameIndex())
	}
	if w, h := v.Size(); w != 1024 || h != 768 {
		t.Fatalf("size after resize: got %dx%d", w, h)
	}
}

func TestViewState_ResetStartsOver(t *testing.T) {
	var v ViewState
	v.Prepare(800, 600)
	v.Prepare(800, 600)
	v.Reset()

	if v.Created() {
		t.Fatal("reset view still reports created")
	}
	if got := v.Prepare(640, 480); got != ViewActionCreate {
		t.Fatalf("prepare after reset: got %v want create", got)
	}
	if v.FrameIndex() != 0 {
		t.Fatalf("frame index after reset: got %d want 0", v.FrameIndex())
	}
}

func TestHistogramState_RecreateOnGeometryChange(t *testing.T) {
	var h HistogramState

	if !h.Prepare(25, 19, 64) {
		t.Fatal("first prepare must request creation")
	}
	if h.Prepare(25, 19, 64) {
		t.Fatal("unchanged geometry must not request recreation")
	}
	if !h.Prepare(25, 19, 32) {
		t.Fatal("bin count change must request recreation")
	}
	if !h.Prepare(26, 19, 32) {
		t.Fatal("tile count change must request recreation")
	}

	tcx, tcy, bins := h.Geometry()
	if tcx != 26 || tcy != 19 || bins != 32 {
		t.Fatalf("geometry: got %d,%d,%d", tcx, tcy, bins)
	}

	h.Reset()
	if h.Created() {
		t.Fatal("reset state still reports created")
	}
	if !h.Prepare(26, 19, 32) {
		t.Fatal("prepare after reset must request creation")
	}
}
