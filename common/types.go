// package common holds plain data types shared across the engine packages.
// Nothing here is interface-wrapped; these are value types passed between
// layers.
package common

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// TextureStagingData carries decoded RGBA pixels for a texture binding until
// the renderer creates the GPU texture behind it.
type TextureStagingData struct {
	// Pixels is tightly packed RGBA, 4 bytes per pixel, Width*Height*4 long.
	Pixels []byte
	// Width of the texture in pixels.
	Width uint32
	// Height of the texture in pixels.
	Height uint32
}

// SamplerStagingData carries a sampler configuration until the renderer
// creates the GPU sampler behind it. Zero-valued fields fall back to renderer
// defaults through Coalesce.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW control wrapping for
	// coordinates outside [0, 1] in each dimension.
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter select the magnification and minification
	// filters.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter selects the filter used between mipmap levels.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp bound the level-of-detail range.
	LodMinClamp, LodMaxClamp float32
	// Compare, when set, makes this a comparison sampler. Leave zero
	// (Undefined) for regular filtering samplers.
	Compare wgpu.CompareFunction
	// MaxAnisotropy caps anisotropic filtering; 1 disables it.
	MaxAnisotropy uint16
}

// Coalesce returns the first of values that is not the type's zero value,
// falling back to the zero value when every entry is zero. Staging structs
// lean on this to default unset fields.
//
// Parameters:
//   - values: a variadic list of candidate values
//
// Returns:
//   - T: the first non-zero value, or the zero value
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}
