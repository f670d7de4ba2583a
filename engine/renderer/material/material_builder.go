package material

import (
	"github.com/Carmen-Shannon/lucent-go/common"
	"github.com/Carmen-Shannon/lucent-go/engine/renderer/bind_group_provider"
)

// MaterialBuilderOption configures a Material during construction.
type MaterialBuilderOption func(*material)

// WithName sets the material identifier.
//
// Parameters:
//   - name: material name
//
// Returns:
//   - MaterialBuilderOption: a function that sets the name
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithBaseColor sets the RGBA base color. For transparent materials the
// alpha channel is the surface coverage.
//
// Parameters:
//   - color: RGBA color, channels 0 to 1
//
// Returns:
//   - MaterialBuilderOption: a function that sets the color
func WithBaseColor(color [4]float32) MaterialBuilderOption {
	return func(m *material) {
		m.baseColor = color
	}
}

// WithTransparent flags the material for the transparent draw path even when
// its base color alpha is 1. Alpha below 1 routes there regardless.
//
// Parameters:
//   - transparent: true to force the transparent path
//
// Returns:
//   - MaterialBuilderOption: a function that sets the flag
func WithTransparent(transparent bool) MaterialBuilderOption {
	return func(m *material) {
		m.transparent = transparent
	}
}

// WithDiffuseTexture stages albedo pixel data for upload during GPU init.
//
// Parameters:
//   - tex: staged RGBA pixels for the diffuse map
//
// Returns:
//   - MaterialBuilderOption: a function that stages the texture
func WithDiffuseTexture(tex *common.TextureStagingData) MaterialBuilderOption {
	return func(m *material) {
		m.diffuseTexture = tex
	}
}

// WithSamplerData overrides the sampler settings for the diffuse texture.
// Without this option the texture samples with linear filtering and repeat
// addressing.
//
// Parameters:
//   - sampler: sampler settings to stage
//
// Returns:
//   - MaterialBuilderOption: a function that stages the sampler
func WithSamplerData(sampler *common.SamplerStagingData) MaterialBuilderOption {
	return func(m *material) {
		m.samplerData = sampler
	}
}

// WithPipelineKey routes the material to a registered pipeline.
//
// Parameters:
//   - key: key into the renderer's pipeline table
//
// Returns:
//   - MaterialBuilderOption: a function that sets the key
func WithPipelineKey(key string) MaterialBuilderOption {
	return func(m *material) {
		m.pipelineKey = key
	}
}

// WithBindGroupProvider installs the provider carrying the material's GPU
// bindings.
//
// Parameters:
//   - provider: provider to install
//
// Returns:
//   - MaterialBuilderOption: a function that sets the provider
func WithBindGroupProvider(provider bind_group_provider.BindGroupProvider) MaterialBuilderOption {
	return func(m *material) {
		m.bindGroupProvider = provider
	}
}
