package window

// WindowBuilderOption configures an engineWindow during NewWindow. Build
// options with the With* functions.
type WindowBuilderOption func(w *engineWindow)

// WithTitle names the window in its title bar.
//
// Parameters:
//   - title: text shown in the title bar
//
// Returns:
//   - WindowBuilderOption: a function that stores the title
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithWidth chooses the width the window opens at.
//
// Parameters:
//   - width: opening width in pixels
//
// Returns:
//   - WindowBuilderOption: a function that stores the opening width
func WithWidth(width int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.width = width
	}
}

// WithHeight chooses the height the window opens at.
//
// Parameters:
//   - height: opening height in pixels
//
// Returns:
//   - WindowBuilderOption: a function that stores the opening height
func WithHeight(height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.height = height
	}
}

// WithMinSize bounds how small the user may resize the window. A zero
// dimension leaves that axis unconstrained.
//
// Parameters:
//   - width: smallest allowed width in pixels
//   - height: smallest allowed height in pixels
//
// Returns:
//   - WindowBuilderOption: a function that stores the lower size bound
func WithMinSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.minWidth = width
		w.minHeight = height
	}
}

// WithMaxSize bounds how large the user may resize the window. A zero
// dimension leaves that axis unconstrained.
//
// Parameters:
//   - width: largest allowed width in pixels
//   - height: largest allowed height in pixels
//
// Returns:
//   - WindowBuilderOption: a function that stores the upper size bound
func WithMaxSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.maxWidth = width
		w.maxHeight = height
	}
}
