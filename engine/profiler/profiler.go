package profiler

import (
	"fmt"
	"log"
	"runtime"
	"strings"
	"time"
)

// Profiler tracks frame rate, per-phase CPU time, and memory statistics for
// the render loop. Phases are named spans the caller reports each frame, such
// as the uniform-prep phase and the encoded render passes; their per-frame
// averages appear alongside FPS and heap stats at a fixed log interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration

	// Phase totals accumulate between log flushes. phaseOrder preserves
	// first-seen order so the log line is stable across intervals.
	phaseTotals map[string]time.Duration
	phaseOrder  []string

	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// NewProfiler creates a new Profiler with a 1 second log interval.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	return &Profiler{
		lastTime:       time.Now(),
		updateInterval: time.Second,
		phaseTotals:    make(map[string]time.Duration),
	}
}

// AddPhase accumulates elapsed time against a named frame phase. Call once
// per phase per frame; totals reset after each log flush.
//
// Parameters:
//   - name: the phase label, e.g. "prepare" or "passes"
//   - d: CPU time spent in the phase this frame
func (p *Profiler) AddPhase(name string, d time.Duration) {
	if _, seen := p.phaseTotals[name]; !seen {
		p.phaseOrder = append(p.phaseOrder, name)
	}
	p.phaseTotals[name] += d
}

// Tick should be called once per frame. When the log interval has elapsed it
// writes FPS, average per-phase milliseconds, heap usage, allocation rate,
// and GC pause stats, then resets the interval counters.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	now := time.Now()
	elapsed := now.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()

	var phases strings.Builder
	for _, name := range p.phaseOrder {
		avgMs := p.phaseTotals[name].Seconds() * 1000 / float64(p.frameCount)
		fmt.Fprintf(&phases, " | %s: %.2f ms", name, avgMs)
		p.phaseTotals[name] = 0
	}

	runtime.ReadMemStats(&p.memStats)
	// Alloc is live heap; TotalAlloc is cumulative and tracks churn; Sys is
	// the process footprint obtained from the OS.
	heapMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024
	allocRateMB := float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses.
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			if pause := p.memStats.PauseNs[i%256] / 1000; pause > maxPauseUs {
				maxPauseUs = pause
			}
		}
	}

	log.Printf("[Profiler] FPS: %.2f%s | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
		fps, phases.String(), heapMB, allocRateMB, gcCount, lastPauseUs, maxPauseUs, sysMB)

	p.frameCount = 0
	p.lastTime = now
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
