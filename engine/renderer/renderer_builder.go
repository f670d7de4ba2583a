package renderer

// RendererBuilderOption is a functional option applied by NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPresentMode sets the surface present mode, which controls how finished
// frames reach the display.
//
// Parameters:
//   - mode: VSync or Uncapped
//
// Returns:
//   - RendererBuilderOption: option function to apply
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingPresentMode = &mode
	}
}

// WithMSAA sets the multisample count for the main pass attachments. The
// default is MSAA4x; MSAAOff disables multisampling. MSAA8x and MSAA16x are
// adapter-dependent. The weighted-blend transparency passes require MSAAOff,
// since the accumulation targets are single-sampled.
//
// Parameters:
//   - count: MSAAOff, MSAA4x, MSAA8x, or MSAA16x
//
// Returns:
//   - RendererBuilderOption: option function to apply
func WithMSAA(count MSAASampleCount) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingMSAA = &count
	}
}

// WithForceSoftwareRenderer requests WGPU's CPU fallback adapter instead of
// hardware acceleration. Requires a software Vulkan ICD on the system, such
// as SwiftShader or lavapipe.
//
// Parameters:
//   - force: true to force the fallback adapter
//
// Returns:
//   - RendererBuilderOption: option function to apply
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}
