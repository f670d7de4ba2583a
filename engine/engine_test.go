package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/Carmen-Shannon/lucent-go/engine/renderer"
	"github.com/Carmen-Shannon/lucent-go/engine/scene"
)

// stubScene overrides the methods the render loop touches and embeds the
// interface for the rest.
type stubScene struct {
	scene.Scene
	name     string
	active   bool
	renderer renderer.Renderer
	prepared *[]string
}

func (s *stubScene) Active() bool                { return s.active }
func (s *stubScene) Renderer() renderer.Renderer { return s.renderer }
func (s *stubScene) PrepareTransparency()        {}
func (s *stubScene) DrawCalls() error            { return nil }
func (s *stubScene) RenderTransparency() error   { return nil }

func (s *stubScene) PrepareFrame(deltaTime float32) {
	if s.prepared != nil {
		*s.prepared = append(*s.prepared, s.name)
	}
}

// stubRenderer fails BeginFrame so a frame never reaches the draw phase.
type stubRenderer struct {
	renderer.Renderer
}

func (r *stubRenderer) BeginFrame() error { return errors.New("no surface") }

func TestNewEngine_Defaults(t *testing.T) {
	e := NewEngine().(*engine)

	if e.tickRate != time.Second/60 {
		t.Errorf("default tick rate = %v, want %v", e.tickRate, time.Second/60)
	}
	if e.frameCap != 0 {
		t.Errorf("default frame cap = %v, want 0", e.frameCap)
	}
	if e.profilingEnabled {
		t.Error("profiling enabled by default")
	}
	if len(e.Scenes()) != 0 {
		t.Errorf("new engine has %d scenes, want 0", len(e.Scenes()))
	}
}

func TestNewEngine_Options(t *testing.T) {
	s := &stubScene{active: true}
	e := NewEngine(
		WithTickRate(120),
		WithRenderFrameLimit(30),
		WithProfiling(true),
		WithScene(3, s),
	).(*engine)

	if e.tickRate != time.Second/120 {
		t.Errorf("tick rate = %v, want %v", e.tickRate, time.Second/120)
	}
	if e.frameCap != time.Second/30 {
		t.Errorf("frame cap = %v, want %v", e.frameCap, time.Second/30)
	}
	if !e.profilingEnabled {
		t.Error("profiling not enabled")
	}
	if e.Scene(3) != s {
		t.Error("scene not registered at key 3")
	}
}

func TestEngine_SceneRegistry(t *testing.T) {
	e := NewEngine()
	a := &stubScene{name: "a"}
	b := &stubScene{name: "b"}

	e.AddScene(1, a)
	e.AddScene(2, b)
	if e.Scene(1) != a || e.Scene(2) != b {
		t.Fatal("scenes not retrievable by key")
	}
	if e.Scene(9) != nil {
		t.Error("empty key returned a scene")
	}

	// Scenes returns a copy; mutating it must not touch the registry.
	cp := e.Scenes()
	delete(cp, 1)
	if e.Scene(1) != a {
		t.Error("mutating the Scenes copy changed the registry")
	}

	e.RemoveScene(1)
	if e.Scene(1) != nil {
		t.Error("scene still registered after RemoveScene")
	}
	if len(e.Scenes()) != 1 {
		t.Errorf("registry has %d scenes after removal, want 1", len(e.Scenes()))
	}
}

func TestEngine_RenderFramePreparesInZIndexOrder(t *testing.T) {
	var prepared []string
	r := &stubRenderer{}
	low := &stubScene{name: "low", active: true, renderer: r, prepared: &prepared}
	high := &stubScene{name: "high", active: true, renderer: r, prepared: &prepared}
	skipped := &stubScene{name: "skipped", active: false, renderer: r, prepared: &prepared}

	e := NewEngine().(*engine)
	e.AddScene(7, high)
	e.AddScene(-2, low)
	e.AddScene(3, skipped)

	e.renderFrame(0.016)

	if len(prepared) != 2 || prepared[0] != "low" || prepared[1] != "high" {
		t.Errorf("prepared order = %v, want [low high]", prepared)
	}
}

func TestEngine_RenderFrameSkipsWithoutRenderer(t *testing.T) {
	var prepared []string
	s := &stubScene{name: "s", active: true, prepared: &prepared}

	e := NewEngine().(*engine)
	e.AddScene(0, s)

	e.renderFrame(0.016)

	if len(prepared) != 0 {
		t.Errorf("scene prepared despite nil renderer: %v", prepared)
	}
}

func TestEngine_TickLoopFiresCallback(t *testing.T) {
	e := NewEngine(WithTickRate(500), WithRenderFrameLimit(200)).(*engine)

	ticks := make(chan float32, 64)
	e.SetTickCallback(func(dt float32) {
		select {
		case ticks <- dt:
		default:
		}
	})

	e.start()
	defer func() {
		e.Quit()
		e.wg.Wait()
	}()

	for range 2 {
		select {
		case dt := <-ticks:
			if dt <= 0 {
				t.Errorf("tick delta = %v, want > 0", dt)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("tick callback never fired")
		}
	}
}

func TestEngine_SetTickRate(t *testing.T) {
	e := NewEngine().(*engine)

	// Rapid calls collapse to the latest pending rate.
	e.SetTickRate(10)
	e.SetTickRate(240)
	select {
	case rate := <-e.tickRates:
		if rate != time.Second/240 {
			t.Errorf("pending rate = %v, want %v", rate, time.Second/240)
		}
	default:
		t.Fatal("no pending rate queued")
	}
	select {
	case rate := <-e.tickRates:
		t.Errorf("extra pending rate %v left in queue", rate)
	default:
	}

	// Non-positive rates fall back to 60.
	e.SetTickRate(-5)
	if rate := <-e.tickRates; rate != time.Second/60 {
		t.Errorf("fallback rate = %v, want %v", rate, time.Second/60)
	}
}

func TestEngine_QuitIdempotent(t *testing.T) {
	e := NewEngine().(*engine)
	e.Quit()
	e.Quit()

	select {
	case <-e.quit:
	default:
		t.Error("quit channel not closed")
	}
}
