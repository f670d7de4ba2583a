package material

import (
	"github.com/Carmen-Shannon/lucent-go/common"
	"github.com/Carmen-Shannon/lucent-go/engine/renderer/bind_group_provider"
)

// material backs the Material interface.
type material struct {
	name              string
	baseColor         [4]float32
	transparent       bool
	diffuseTexture    *common.TextureStagingData
	samplerData       *common.SamplerStagingData
	pipelineKey       string
	bindGroupProvider bind_group_provider.BindGroupProvider
}

// Material describes one surface: base color and texture inputs plus the
// GPU bindings draw calls read.
//
// Surface properties (name, base color, transparency, textures) are set at
// construction and are read-only through this interface. GPU resource references
// (pipeline key, bind group provider) are mutable so they can be configured after
// construction during the scene GPU-init phase.
type Material interface {
	// Name reports the identifier the material was registered under.
	//
	// Returns:
	//   - string: material name
	Name() string

	// BaseColor reports the RGBA base color. For transparent materials the
	// alpha channel is the surface coverage.
	//
	// Returns:
	//   - [4]float32: RGBA color, channels 0 to 1
	BaseColor() [4]float32

	// Transparent reports whether this material renders through the transparent
	// path instead of the opaque one. A material is transparent when explicitly
	// flagged or when its base color alpha is below 1.
	//
	// Returns:
	//   - bool: true if the material is transparent
	Transparent() bool

	// DiffuseTexture reports the staged albedo texture.
	//
	// Returns:
	//   - *common.TextureStagingData: staged pixels, nil for untextured materials
	DiffuseTexture() *common.TextureStagingData

	// SamplerData reports the sampler settings for the diffuse texture.
	//
	// Returns:
	//   - *common.SamplerStagingData: sampler settings, nil for linear/repeat defaults
	SamplerData() *common.SamplerStagingData

	// PipelineKey reports which registered pipeline draws this material.
	//
	// Returns:
	//   - string: key into the renderer's pipeline table
	PipelineKey() string

	// BindGroupProvider reports the provider carrying this material's GPU
	// bindings.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the provider, nil before GPU init
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// SetPipelineKey routes this material to a registered pipeline.
	//
	// Parameters:
	//   - key: key into the renderer's pipeline table
	SetPipelineKey(key string)

	// SetBindGroupProvider installs the provider carrying this material's GPU
	// bindings.
	//
	// Parameters:
	//   - provider: provider to install
	SetBindGroupProvider(provider bind_group_provider.BindGroupProvider)
}

var _ Material = &material{}

// NewMaterial builds a Material. The zero configuration is opaque white;
// options override it.
//
// Parameters:
//   - options: configuration options, applied in order
//
// Returns:
//   - Material: the configured material
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		baseColor: [4]float32{1, 1, 1, 1},
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) BaseColor() [4]float32 {
	return m.baseColor
}

func (m *material) Transparent() bool {
	return m.transparent || m.baseColor[3] < 1.0
}

func (m *material) DiffuseTexture() *common.TextureStagingData {
	return m.diffuseTexture
}

func (m *material) SamplerData() *common.SamplerStagingData {
	return m.samplerData
}

func (m *material) PipelineKey() string {
	return m.pipelineKey
}

func (m *material) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return m.bindGroupProvider
}

func (m *material) SetPipelineKey(key string) {
	m.pipelineKey = key
}

func (m *material) SetBindGroupProvider(provider bind_group_provider.BindGroupProvider) {
	m.bindGroupProvider = provider
}
