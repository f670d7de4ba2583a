package oit

import (
	"fmt"
	"sync"
)

const (
	// DefaultTileSize is the default width and height in pixels of each
	// screen-space histogram tile.
	DefaultTileSize = 32

	// DefaultNumBins is the default number of depth bins per histogram tile.
	DefaultNumBins = 64

	// DefaultMaxDepth is the default far end of the view-space depth range
	// mapped onto the histogram bins. Fragments beyond this depth clamp into
	// the last bin.
	DefaultMaxDepth = 100.0

	// MaxBins is the upper limit on bins per tile. The CDF build compute
	// shader runs one workgroup invocation per bin with a workgroup size of
	// MaxBins, so a tile's bins must fit in a single workgroup.
	MaxBins = 64
)

type settingsImpl struct {
	mu *sync.Mutex

	mode     Mode
	tileSize uint32
	numBins  uint32
	maxDepth float32
}

// Settings holds a view's order-independent transparency configuration: the
// active mode plus the histogram tuning parameters used when the mode is
// ModeHistogram. Mode and max depth may change at runtime; tile size and bin
// count are fixed at construction because changing them forces a full
// histogram resource rebuild.
type Settings interface {
	// Mode returns the currently configured OIT mode.
	//
	// Returns:
	//   - Mode: the active mode
	Mode() Mode

	// SetMode switches the OIT mode. The change takes effect at the next
	// frame's resource preparation step.
	//
	// Parameters:
	//   - mode: the mode to switch to
	SetMode(mode Mode)

	// TileSize returns the width and height in pixels of each screen-space
	// histogram tile.
	//
	// Returns:
	//   - uint32: tile edge length in pixels
	TileSize() uint32

	// NumBins returns the number of depth bins per histogram tile.
	//
	// Returns:
	//   - uint32: bin count, at most MaxBins
	NumBins() uint32

	// MaxDepth returns the far end of the view-space depth range mapped onto
	// the histogram bins.
	//
	// Returns:
	//   - float32: max expected depth in view-space units
	MaxDepth() float32

	// SetMaxDepth changes the depth range mapped onto the histogram bins.
	// Takes effect the next time the histogram params uniform is written.
	//
	// Parameters:
	//   - maxDepth: max expected depth in view-space units, must be positive
	SetMaxDepth(maxDepth float32)
}

var _ Settings = &settingsImpl{}

// NewSettings creates a Settings with the given options applied over the
// defaults (ModeInactive, DefaultTileSize, DefaultNumBins, DefaultMaxDepth).
//
// Panics if the resulting bin count is zero or exceeds MaxBins, or if the
// tile size or max depth is not positive; these are construction-time
// configuration errors with no sensible fallback.
//
// Parameters:
//   - options: functional options to customize the settings
//
// Returns:
//   - Settings: the configured settings
func NewSettings(options ...SettingsBuilderOption) Settings {
	s := &settingsImpl{
		mu:       &sync.Mutex{},
		mode:     ModeInactive,
		tileSize: DefaultTileSize,
		numBins:  DefaultNumBins,
		maxDepth: DefaultMaxDepth,
	}
	for _, option := range options {
		option(s)
	}
	if s.numBins == 0 || s.numBins > MaxBins {
		panic(fmt.Sprintf("oit: histogram bin count %d out of range [1, %d]", s.numBins, MaxBins))
	}
	if s.tileSize == 0 {
		panic("oit: histogram tile size must be positive")
	}
	if s.maxDepth <= 0 {
		panic(fmt.Sprintf("oit: max depth %f must be positive", s.maxDepth))
	}
	return s
}

func (s *settingsImpl) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *settingsImpl) SetMode(mode Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = mode
}

func (s *settingsImpl) TileSize() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tileSize
}

func (s *settingsImpl) NumBins() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.numBins
}

func (s *settingsImpl) MaxDepth() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxDepth
}

func (s *settingsImpl) SetMaxDepth(maxDepth float32) {
	if maxDepth <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxDepth = maxDepth
}
