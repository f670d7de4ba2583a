package engine

import (
	"log"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/lucent-go/engine/profiler"
	"github.com/Carmen-Shannon/lucent-go/engine/scene"
	"github.com/Carmen-Shannon/lucent-go/engine/window"
)

// Engine owns the application lifecycle: the window message loop on the main
// thread, a fixed-rate tick loop for simulation, and an uncapped (or
// frame-limited) render loop. Scenes register at integer z-index keys and
// render in ascending key order.
type Engine interface {
	// Window returns the window the engine was built with.
	//
	// Returns:
	//   - window.Window: the attached window
	Window() window.Window

	// EnableProfiler turns on per-phase frame timing output to the log.
	EnableProfiler()

	// DisableProfiler turns off frame timing output.
	DisableProfiler()

	// SetTickRate changes the simulation tick rate. Takes effect on the next
	// tick when the engine is running.
	//
	// Parameters:
	//   - fps: target ticks per second (values <= 0 fall back to 60)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called once per simulation tick
	// with the elapsed time since the previous tick. Game logic, input
	// handling, and animation belong here. Register before Run.
	//
	// Parameters:
	//   - callback: tick function receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called once per render frame,
	// after the frame's scenes have been drawn. Register before Run.
	//
	// Parameters:
	//   - callback: frame function receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit caps the render loop at the given frame rate.
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 uncaps, the default)
	SetRenderFrameLimit(fps float64)

	// AddScene registers a scene at the given z-index key. Lower keys render
	// first, so higher keys composite on top.
	//
	// Parameters:
	//   - key: z-index determining render order
	//   - s: the scene to register
	AddScene(key int, s scene.Scene)

	// RemoveScene drops the scene registered at the given z-index key.
	//
	// Parameters:
	//   - key: z-index of the scene to remove
	RemoveScene(key int)

	// Scene returns the scene registered at the given z-index key, or nil.
	//
	// Parameters:
	//   - key: z-index of the scene to look up
	//
	// Returns:
	//   - scene.Scene: the registered scene, or nil when the key is empty
	Scene(key int) scene.Scene

	// Scenes returns a copy of the scene registry keyed by z-index.
	//
	// Returns:
	//   - map[int]scene.Scene: a copy of the registered scenes
	Scenes() map[int]scene.Scene

	// Run starts the tick and render loops, then blocks in the window message
	// loop until the window closes. On return both loops have stopped and the
	// window is destroyed.
	Run()

	// Quit stops the tick and render loops. The window keeps running until
	// closed. Safe to call more than once.
	Quit()
}

// engine implements Engine. The scenes map is guarded by scenesMu because the
// render loop, the resize callback, and the caller's goroutine all touch it.
type engine struct {
	window window.Window

	scenesMu sync.RWMutex
	scenes   map[int]scene.Scene

	tickRate  time.Duration      // current tick interval, owned by the tick loop once started
	tickRates chan time.Duration // pending tick interval change, capacity 1
	frameCap  time.Duration      // minimum render frame duration, 0 = uncapped

	onTick   func(deltaTime float32)
	onRender func(deltaTime float32)

	profiler         *profiler.Profiler
	profilingEnabled bool

	wg       sync.WaitGroup
	quit     chan struct{}
	quitOnce sync.Once
}

var _ Engine = &engine{}

// NewEngine creates an Engine with the provided options. When a window is
// supplied, its resize callback is wired to every registered scene so the
// renderer surface and camera aspect follow the framebuffer.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the configured engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		scenes:    make(map[int]scene.Scene),
		tickRate:  time.Second / 60,
		tickRates: make(chan time.Duration, 1),
		profiler:  profiler.NewProfiler(),
		quit:      make(chan struct{}),
	}
	for _, opt := range options {
		opt(e)
	}

	if e.window != nil {
		e.window.SetResizeCallback(func(width, height int) {
			aspect := float32(width) / float32(height)
			e.scenesMu.RLock()
			defer e.scenesMu.RUnlock()
			for _, s := range e.scenes {
				if r := s.Renderer(); r != nil {
					r.Resize(width, height)
				}
				if c := s.Camera(); c != nil {
					c.SetAspect(aspect)
				}
			}
		})
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Run() {
	e.start()
	e.window.ProcessMessages()

	// The message loop has ended. Stop the loops before tearing down the
	// window so no frame is in flight when the surface goes away.
	e.shutdown()
	e.wg.Wait()
	_ = e.window.Close()
}

func (e *engine) Quit() {
	e.shutdown()
}

// shutdown closes the quit channel exactly once.
func (e *engine) shutdown() {
	e.quitOnce.Do(func() {
		close(e.quit)
	})
}

// start launches the tick and render goroutines.
func (e *engine) start() {
	e.wg.Add(2)
	go e.tickLoop()
	go e.renderLoop()
}

// tickLoop fires the tick callback at the configured rate until quit. Rate
// changes arrive over tickRates and reset the ticker in place.
func (e *engine) tickLoop() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.tickRate)
	defer ticker.Stop()

	prev := time.Now()
	for {
		select {
		case <-e.quit:
			return
		case now := <-ticker.C:
			dt := float32(now.Sub(prev).Seconds())
			prev = now
			if e.onTick != nil {
				e.onTick(dt)
			}
		case rate := <-e.tickRates:
			ticker.Reset(rate)
			e.tickRate = rate
		}
	}
}

// renderLoop renders frames until quit. A panic inside a frame is logged and
// converted into a shutdown instead of taking the process down.
func (e *engine) renderLoop() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("render loop recovered from panic: %v", r)
			e.shutdown()
		}
	}()

	prev := time.Now()
	for {
		select {
		case <-e.quit:
			return
		default:
		}

		now := time.Now()
		dt := float32(now.Sub(prev).Seconds())
		prev = now

		e.renderFrame(dt)

		if e.onRender != nil {
			e.onRender(dt)
		}
		if e.profilingEnabled && e.profiler != nil {
			e.profiler.Tick()
		}

		if e.frameCap > 0 {
			if remaining := e.frameCap - time.Since(prev); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
}

// renderFrame runs one frame across the active scenes in ascending z-index
// order. The engine owns the frame lifecycle: every scene is prepared first,
// then the first active scene's renderer opens the frame, each scene encodes
// its opaque draw calls and transparency passes, and the frame is submitted
// and presented once. Scenes sharing that renderer composite into the same
// surface texture.
func (e *engine) renderFrame(dt float32) {
	e.scenesMu.RLock()
	var active []scene.Scene
	for _, key := range slices.Sorted(maps.Keys(e.scenes)) {
		if s := e.scenes[key]; s.Active() {
			active = append(active, s)
		}
	}
	e.scenesMu.RUnlock()

	if len(active) == 0 {
		return
	}
	r := active[0].Renderer()
	if r == nil {
		return
	}

	// Prepare: camera snapshot, transform integration, culling, uniform
	// staging, and transparency target sizing.
	start := time.Now()
	for _, s := range active {
		s.PrepareFrame(dt)
		s.PrepareTransparency()
	}
	e.recordPhase("prepare", start)

	// Encode and submit. A BeginFrame error means the surface is mid-resize
	// or lost; the frame is skipped and the next one reconfigures.
	start = time.Now()
	if err := r.BeginFrame(); err == nil {
		for _, s := range active {
			_ = s.DrawCalls()
		}
		for _, s := range active {
			_ = s.RenderTransparency()
		}
		r.EndFrame()
		r.Present()
	}
	e.recordPhase("passes", start)
}

func (e *engine) recordPhase(name string, start time.Time) {
	if e.profilingEnabled && e.profiler != nil {
		e.profiler.AddPhase(name, time.Since(start))
	}
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate queues the new rate for the tick loop. The pending slot holds
// the latest requested rate, so rapid calls collapse to the last one.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	rate := time.Second / time.Duration(fps)

	select {
	case <-e.tickRates:
	default:
	}
	e.tickRates <- rate
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.onTick = callback
}

func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.onRender = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.frameCap = 0
		return
	}
	e.frameCap = time.Second / time.Duration(fps)
}

func (e *engine) AddScene(key int, s scene.Scene) {
	e.scenesMu.Lock()
	defer e.scenesMu.Unlock()
	e.scenes[key] = s
}

func (e *engine) RemoveScene(key int) {
	e.scenesMu.Lock()
	defer e.scenesMu.Unlock()
	delete(e.scenes, key)
}

func (e *engine) Scene(key int) scene.Scene {
	e.scenesMu.RLock()
	defer e.scenesMu.RUnlock()
	return e.scenes[key]
}

func (e *engine) Scenes() map[int]scene.Scene {
	e.scenesMu.RLock()
	defer e.scenesMu.RUnlock()
	return maps.Clone(e.scenes)
}
