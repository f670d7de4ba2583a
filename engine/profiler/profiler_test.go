package profiler

import (
	"testing"
	"time"
)

func TestAddPhase_AccumulatesInFirstSeenOrder(t *testing.T) {
	p := NewProfiler()
	p.AddPhase("prepare", 2*time.Millisecond)
	p.AddPhase("passes", 5*time.Millisecond)
	p.AddPhase("prepare", 3*time.Millisecond)

	if got := p.phaseTotals["prepare"]; got != 5*time.Millisecond {
		t.Errorf("prepare total = %v, want 5ms", got)
	}
	if got := p.phaseTotals["passes"]; got != 5*time.Millisecond {
		t.Errorf("passes total = %v, want 5ms", got)
	}
	if len(p.phaseOrder) != 2 || p.phaseOrder[0] != "prepare" || p.phaseOrder[1] != "passes" {
		t.Errorf("phaseOrder = %v, want [prepare passes]", p.phaseOrder)
	}
}

func TestTick_FlushesOnInterval(t *testing.T) {
	p := NewProfiler()
	p.AddPhase("prepare", time.Millisecond)

	if p.Tick() {
		t.Fatal("Tick flushed before the interval elapsed")
	}
	if p.frameCount != 1 {
		t.Fatalf("frameCount = %d, want 1", p.frameCount)
	}

	// Force the interval to have elapsed.
	p.lastTime = time.Now().Add(-2 * time.Second)
	if !p.Tick() {
		t.Fatal("Tick did not flush after the interval elapsed")
	}
	if p.frameCount != 0 {
		t.Errorf("frameCount not reset after flush: %d", p.frameCount)
	}
	if p.phaseTotals["prepare"] != 0 {
		t.Errorf("phase total not reset after flush: %v", p.phaseTotals["prepare"])
	}
}
