package oit

// Mode identifies which order-independent transparency technique a view uses
// for its transparent geometry. Modes are mutually exclusive per view; setting
// one replaces any other and takes effect starting the next frame's resource
// preparation.
type Mode int

const (
	// ModeInactive disables OIT entirely. Transparent objects render through
	// the standard back-to-front sorted alpha-blend path.
	ModeInactive Mode = iota

	// ModeNaive enables weighted blended OIT with a fixed depth-based weight
	// function (McGuire & Bavoil 2013). Single-geometry-pass, no depth
	// sorting required.
	ModeNaive

	// ModeHistogram enables histogram-equalized weighted blended OIT. Extends
	// the naive weight with a per-tile depth-occupancy CDF built by a compute
	// pass, so weights adapt to the actual depth distribution of each frame.
	ModeHistogram
)

// String returns the lowercase name of the mode.
//
// Returns:
//   - string: "inactive", "naive", or "histogram"; "unknown" for out-of-range values.
func (m Mode) String() string {
	switch m {
	case ModeInactive:
		return "inactive"
	case ModeNaive:
		return "naive"
	case ModeHistogram:
		return "histogram"
	default:
		return "unknown"
	}
}

// UsesWeightedBlend reports whether the mode routes transparent draws through
// the weighted-blend accumulation and composite passes.
//
// Returns:
//   - bool: true for ModeNaive and ModeHistogram.
func (m Mode) UsesWeightedBlend() bool {
	return m == ModeNaive || m == ModeHistogram
}

// UsesHistogram reports whether the mode requires the per-tile histogram and
// CDF resources and their compute pass.
//
// Returns:
//   - bool: true only for ModeHistogram.
func (m Mode) UsesHistogram() bool {
	return m == ModeHistogram
}
