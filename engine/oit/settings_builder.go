package oit

type SettingsBuilderOption func(*settingsImpl)

// WithMode sets the initial OIT mode.
//
// Parameters:
//   - mode: the mode to start in
//
// Returns:
//   - SettingsBuilderOption: a function that sets the mode
func WithMode(mode Mode) SettingsBuilderOption {
	return func(s *settingsImpl) {
		s.mode = mode
	}
}

// WithTileSize sets the histogram tile edge length in pixels.
//
// Parameters:
//   - tileSize: tile width and height in pixels, must be positive
//
// Returns:
//   - SettingsBuilderOption: a function that sets the tile size
func WithTileSize(tileSize uint32) SettingsBuilderOption {
	return func(s *settingsImpl) {
		s.tileSize = tileSize
	}
}

// WithNumBins sets the number of depth bins per histogram tile.
//
// Parameters:
//   - numBins: bin count, must be in [1, MaxBins]
//
// Returns:
//   - SettingsBuilderOption: a function that sets the bin count
func WithNumBins(numBins uint32) SettingsBuilderOption {
	return func(s *settingsImpl) {
		s.numBins = numBins
	}
}

// WithMaxDepth sets the far end of the view-space depth range mapped onto the
// histogram bins.
//
// Parameters:
//   - maxDepth: max expected depth in view-space units, must be positive
//
// Returns:
//   - SettingsBuilderOption: a function that sets the max depth
func WithMaxDepth(maxDepth float32) SettingsBuilderOption {
	return func(s *settingsImpl) {
		s.maxDepth = maxDepth
	}
}
