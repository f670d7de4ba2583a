package bind_group_provider

import "github.com/cogentcore/webgpu/wgpu"

// BindGroupProviderOption is a functional option used to configure a
// BindGroupProvider during construction. The With* options install shared
// references only; adopted resources are created later by the Renderer.
type BindGroupProviderOption func(*bindGroupProvider)

// WithSharedBuffer installs a buffer owned elsewhere at the given binding.
// Release drops the reference without freeing the buffer.
//
// Parameters:
//   - binding: the binding index
//   - buf: the buffer to reference
//
// Returns:
//   - BindGroupProviderOption: a function that installs the shared buffer
func WithSharedBuffer(binding int, buf *wgpu.Buffer) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.SetBuffer(binding, buf)
	}
}

// WithSharedTextureView installs a texture view owned elsewhere at the given
// binding. Release drops the reference without freeing the view.
//
// Parameters:
//   - binding: the binding index
//   - tv: the texture view to reference
//
// Returns:
//   - BindGroupProviderOption: a function that installs the shared texture view
func WithSharedTextureView(binding int, tv *wgpu.TextureView) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.SetTextureView(binding, tv)
	}
}

// WithSharedSampler installs a sampler owned elsewhere at the given binding.
// Release drops the reference without freeing the sampler.
//
// Parameters:
//   - binding: the binding index
//   - s: the sampler to reference
//
// Returns:
//   - BindGroupProviderOption: a function that installs the shared sampler
func WithSharedSampler(binding int, s *wgpu.Sampler) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.SetSampler(binding, s)
	}
}
