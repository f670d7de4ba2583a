package renderer

import "github.com/cogentcore/webgpu/wgpu"

// RendererBackendType selects which GPU API the Renderer drives.
type RendererBackendType int

const (
	// BackendTypeWGPU renders through WebGPU.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode sets how finished frames reach the display.
type PresentMode int

const (
	// PresentModeVSync holds each frame for the next vertical blank, capping
	// the frame rate at the monitor refresh rate with no tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped pushes frames out as soon as they finish. Lowest
	// latency, may tear.
	PresentModeUncapped
)

// MSAASampleCount is the per-pixel sample count for multisample
// anti-aliasing. WebGPU guarantees 1 and 4; 8 and 16 depend on the adapter.
//
// The weighted-blend transparency passes require MSAAOff; their render
// targets are single-sampled and they re-attach the main depth texture,
// which must match.
type MSAASampleCount uint32

const (
	// MSAAOff renders single-sampled.
	MSAAOff MSAASampleCount = 1

	// MSAA4x is the default sample count.
	MSAA4x MSAASampleCount = 4

	// MSAA8x needs adapter support.
	MSAA8x MSAASampleCount = 8

	// MSAA16x needs adapter support.
	MSAA16x MSAASampleCount = 16
)

// TransparencyTargets holds the off-screen render targets for the weighted-blend
// transparency passes: one accumulation texture and two revealage textures selected
// by frame parity. The revealage texture not written this frame carries the previous
// frame's per-pixel transmittance for the histogram-equalized accumulation shader.
type TransparencyTargets struct {
	// AccumTexture is the Rgba16Float accumulation target, cleared to transparent
	// black each frame and written under additive blending.
	AccumTexture *wgpu.Texture
	AccumView    *wgpu.TextureView

	// RevealageTextures are the two R8Unorm revealage targets, cleared to 1.0 and
	// written under (Zero, OneMinusSrc) blending. Index by ViewState frame parity.
	RevealageTextures [2]*wgpu.Texture
	RevealageViews    [2]*wgpu.TextureView
}

// Release frees all textures and views. Safe to call on partially initialized targets.
func (t *TransparencyTargets) Release() {
	if t.AccumView != nil {
		t.AccumView.Release()
		t.AccumView = nil
	}
	if t.AccumTexture != nil {
		t.AccumTexture.Release()
		t.AccumTexture = nil
	}
	for i := range 2 {
		if t.RevealageViews[i] != nil {
			t.RevealageViews[i].Release()
			t.RevealageViews[i] = nil
		}
		if t.RevealageTextures[i] != nil {
			t.RevealageTextures[i].Release()
			t.RevealageTextures[i] = nil
		}
	}
}

// HistogramResources holds the GPU resources for histogram-equalized transparency:
// the per-tile depth histogram storage buffer the accumulation shader populates, the
// 3D CDF texture the compute pass writes one normalized slice per tile into, and the
// sampler the accumulation shader reads the CDF through.
type HistogramResources struct {
	// HistogramBuffer holds one u32 counter per bin per tile. Created zeroed; the
	// CDF build pass consumes and re-zeroes the counts every frame.
	HistogramBuffer *wgpu.Buffer

	// CDFTexture is an Rgba16Float 3D texture sized (tileCountX, tileCountY, numBins).
	CDFTexture *wgpu.Texture
	CDFView    *wgpu.TextureView

	// CDFSampler filters linearly across tiles and bins with clamp-to-edge
	// addressing, smoothing the equalization factor at tile boundaries.
	CDFSampler *wgpu.Sampler
}

// Release frees the buffer, texture, view, and sampler. Safe to call on partially
// initialized resources.
func (h *HistogramResources) Release() {
	if h.CDFSampler != nil {
		h.CDFSampler.Release()
		h.CDFSampler = nil
	}
	if h.CDFView != nil {
		h.CDFView.Release()
		h.CDFView = nil
	}
	if h.CDFTexture != nil {
		h.CDFTexture.Release()
		h.CDFTexture = nil
	}
	if h.HistogramBuffer != nil {
		h.HistogramBuffer.Release()
		h.HistogramBuffer = nil
	}
}

// RendererBackend is the surface the Renderer drives, currently backed by
// the WebGPU implementation.
type RendererBackend interface {
	wgpuRendererBackend
}
