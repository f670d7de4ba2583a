package oit

// ViewAction tells the caller what to do with a view's accumulation and
// revealage textures after a Prepare call.
type ViewAction int

const (
	// ViewActionSkip means the viewport has no usable size this frame; leave
	// resources untouched and retry next frame.
	ViewActionSkip ViewAction = iota

	// ViewActionCreate means this is the view's first active frame; create
	// the textures at the prepared size. The frame index starts at 0.
	ViewActionCreate

	// ViewActionKeep means the existing textures still match the viewport;
	// only the frame index was flipped.
	ViewActionKeep

	// ViewActionRecreate means the viewport size changed; recreate the
	// textures at the new size. The frame index still flips, so the
	// previous-frame revealage read simply sees a fresh zeroed texture for
	// one frame.
	ViewActionRecreate
)

// ViewState tracks the per-view bookkeeping for the weighted-blend targets:
// the size the textures were created at and the frame parity used to select
// between the two revealage textures. The zero value is a view that has never
// had textures.
//
// The frame index flips exactly once per Prepare call on any view that
// already had textures, including across a resize. ViewState holds no GPU
// handles; the caller owns the actual textures and applies the returned
// action to them.
type ViewState struct {
	width, height uint32
	frameIndex    int
	created       bool
}

// Prepare records this frame's viewport size and advances the frame parity.
// Call once per frame per active view, before encoding any transparency
// passes.
//
// Parameters:
//   - width: viewport width in pixels
//   - height: viewport height in pixels
//
// Returns:
//   - ViewAction: what the caller must do with the view's textures
func (v *ViewState) Prepare(width, height uint32) ViewAction {
	if width == 0 || height == 0 {
		return ViewActionSkip
	}
	if !v.created {
		v.width = width
		v.height = height
		v.frameIndex = 0
		v.created = true
		return ViewActionCreate
	}
	v.frameIndex = 1 - v.frameIndex
	if width != v.width || height != v.height {
		v.width = width
		v.height = height
		return ViewActionRecreate
	}
	return ViewActionKeep
}

// FrameIndex returns the current frame parity, selecting which revealage
// texture the accumulation pass writes and the composite pass reads.
//
// Returns:
//   - int: 0 or 1
func (v *ViewState) FrameIndex() int {
	return v.frameIndex
}

// PrevFrameIndex returns the opposite parity, selecting the revealage
// texture written last frame. The HE accumulation pass reads it as the
// previous frame's total transmittance.
//
// Returns:
//   - int: 0 or 1
func (v *ViewState) PrevFrameIndex() int {
	return 1 - v.frameIndex
}

// Size returns the viewport size the textures were created for.
//
// Returns:
//   - width, height: size in pixels, zero if never created
func (v *ViewState) Size() (width, height uint32) {
	return v.width, v.height
}

// Created reports whether the view currently has textures.
//
// Returns:
//   - bool: true after the first successful Prepare
func (v *ViewState) Created() bool {
	return v.created
}

// Reset returns the view to its never-created state. Call when the view opts
// out of OIT or is destroyed, after releasing the GPU textures.
func (v *ViewState) Reset() {
	*v = ViewState{}
}

// HistogramState tracks the tile and bin geometry the histogram buffer and
// CDF texture were created for. The zero value is a state that has never had
// resources.
type HistogramState struct {
	tileCountX, tileCountY, numBins uint32
	created                         bool
}

// Prepare compares the wanted geometry against the current resources and
// records the new geometry. Any change in tile counts or bin count requires
// full recreation because both the buffer capacity and the texture extent
// derive from them; when nothing changed only the params uniform needs a
// rewrite.
//
// Parameters:
//   - tileCountX: wanted number of tile columns
//   - tileCountY: wanted number of tile rows
//   - numBins: wanted bins per tile
//
// Returns:
//   - bool: true if the histogram buffer and CDF texture must be (re)created
func (h *HistogramState) Prepare(tileCountX, tileCountY, numBins uint32) bool {
	if h.created && h.tileCountX == tileCountX && h.tileCountY == tileCountY && h.numBins == numBins {
		return false
	}
	h.tileCountX = tileCountX
	h.tileCountY = tileCountY
	h.numBins = numBins
	h.created = true
	return true
}

// Geometry returns the tile and bin geometry the resources were created for.
//
// Returns:
//   - tileCountX, tileCountY, numBins: current geometry, zero if never created
func (h *HistogramState) Geometry() (tileCountX, tileCountY, numBins uint32) {
	return h.tileCountX, h.tileCountY, h.numBins
}

// Created reports whether histogram resources currently exist.
//
// Returns:
//   - bool: true after the first Prepare
func (h *HistogramState) Created() bool {
	return h.created
}

// Reset returns the state to its never-created state. Call when the view
// leaves ModeHistogram, after releasing the GPU resources.
func (h *HistogramState) Reset() {
	*h = HistogramState{}
}
