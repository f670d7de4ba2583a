package shader

import (
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// vertexFormat pairs a wgpu vertex format with its byte width for offset math.
type vertexFormat struct {
	format wgpu.VertexFormat
	width  uint64
}

// textureShape holds the view dimension and multisampled flag for a sampled
// texture type.
type textureShape struct {
	dim  wgpu.TextureViewDimension
	msaa bool
}

// typeLayout holds the byte size and alignment of a WGSL type, used to compute
// MinBindingSize for buffer bindings.
type typeLayout struct {
	size  uint64
	align uint64
}

// vertexFormats maps WGSL type names to vertex formats. Both the shorthand
// (vec3f) and parameterized (vec3<f32>) spellings are listed.
var vertexFormats = map[string]vertexFormat{
	"f32":       {wgpu.VertexFormatFloat32, 4},
	"vec2f":     {wgpu.VertexFormatFloat32x2, 8},
	"vec2<f32>": {wgpu.VertexFormatFloat32x2, 8},
	"vec3f":     {wgpu.VertexFormatFloat32x3, 12},
	"vec3<f32>": {wgpu.VertexFormatFloat32x3, 12},
	"vec4f":     {wgpu.VertexFormatFloat32x4, 16},
	"vec4<f32>": {wgpu.VertexFormatFloat32x4, 16},
	"i32":       {wgpu.VertexFormatSint32, 4},
	"vec2i":     {wgpu.VertexFormatSint32x2, 8},
	"vec2<i32>": {wgpu.VertexFormatSint32x2, 8},
	"vec3i":     {wgpu.VertexFormatSint32x3, 12},
	"vec3<i32>": {wgpu.VertexFormatSint32x3, 12},
	"vec4i":     {wgpu.VertexFormatSint32x4, 16},
	"vec4<i32>": {wgpu.VertexFormatSint32x4, 16},
	"u32":       {wgpu.VertexFormatUint32, 4},
	"vec2u":     {wgpu.VertexFormatUint32x2, 8},
	"vec2<u32>": {wgpu.VertexFormatUint32x2, 8},
	"vec3u":     {wgpu.VertexFormatUint32x3, 12},
	"vec3<u32>": {wgpu.VertexFormatUint32x3, 12},
	"vec4u":     {wgpu.VertexFormatUint32x4, 16},
	"vec4<u32>": {wgpu.VertexFormatUint32x4, 16},
	"vec2<f16>": {wgpu.VertexFormatFloat16x2, 4},
	"vec2h":     {wgpu.VertexFormatFloat16x2, 4},
	"vec4<f16>": {wgpu.VertexFormatFloat16x4, 8},
	"vec4h":     {wgpu.VertexFormatFloat16x4, 8},
}

// textureShapes maps sampled texture base names to their view dimension and
// multisampled flag.
var textureShapes = map[string]textureShape{
	"texture_1d":                    {wgpu.TextureViewDimension1D, false},
	"texture_2d":                    {wgpu.TextureViewDimension2D, false},
	"texture_2d_array":              {wgpu.TextureViewDimension2DArray, false},
	"texture_3d":                    {wgpu.TextureViewDimension3D, false},
	"texture_cube":                  {wgpu.TextureViewDimensionCube, false},
	"texture_cube_array":            {wgpu.TextureViewDimensionCubeArray, false},
	"texture_multisampled_2d":       {wgpu.TextureViewDimension2D, true},
	"texture_depth_2d":              {wgpu.TextureViewDimension2D, false},
	"texture_depth_2d_array":        {wgpu.TextureViewDimension2DArray, false},
	"texture_depth_cube":            {wgpu.TextureViewDimensionCube, false},
	"texture_depth_cube_array":      {wgpu.TextureViewDimensionCubeArray, false},
	"texture_depth_multisampled_2d": {wgpu.TextureViewDimension2D, true},
}

// storageTextureDims maps storage texture base names to their view dimension.
var storageTextureDims = map[string]wgpu.TextureViewDimension{
	"texture_storage_1d":       wgpu.TextureViewDimension1D,
	"texture_storage_2d":       wgpu.TextureViewDimension2D,
	"texture_storage_2d_array": wgpu.TextureViewDimension2DArray,
	"texture_storage_3d":       wgpu.TextureViewDimension3D,
}

// sampleTypes maps texture scalar type parameters to sample types.
var sampleTypes = map[string]wgpu.TextureSampleType{
	"f32": wgpu.TextureSampleTypeFloat,
	"i32": wgpu.TextureSampleTypeSint,
	"u32": wgpu.TextureSampleTypeUint,
}

// storageAccessModes maps WGSL access keywords to storage texture access values.
var storageAccessModes = map[string]wgpu.StorageTextureAccess{
	"write":      wgpu.StorageTextureAccessWriteOnly,
	"read":       wgpu.StorageTextureAccessReadOnly,
	"read_write": wgpu.StorageTextureAccessReadWrite,
}

// texelFormats maps WGSL texel format strings to texture formats. These are
// the formats valid for storage textures per the WGSL specification.
var texelFormats = map[string]wgpu.TextureFormat{
	"rgba8unorm":  wgpu.TextureFormatRGBA8Unorm,
	"rgba8snorm":  wgpu.TextureFormatRGBA8Snorm,
	"rgba8uint":   wgpu.TextureFormatRGBA8Uint,
	"rgba8sint":   wgpu.TextureFormatRGBA8Sint,
	"rgba16uint":  wgpu.TextureFormatRGBA16Uint,
	"rgba16sint":  wgpu.TextureFormatRGBA16Sint,
	"rgba16float": wgpu.TextureFormatRGBA16Float,
	"r32uint":     wgpu.TextureFormatR32Uint,
	"r32sint":     wgpu.TextureFormatR32Sint,
	"r32float":    wgpu.TextureFormatR32Float,
	"rg32uint":    wgpu.TextureFormatRG32Uint,
	"rg32sint":    wgpu.TextureFormatRG32Sint,
	"rg32float":   wgpu.TextureFormatRG32Float,
	"rgba32uint":  wgpu.TextureFormatRGBA32Uint,
	"rgba32sint":  wgpu.TextureFormatRGBA32Sint,
	"rgba32float": wgpu.TextureFormatRGBA32Float,
	"bgra8unorm":  wgpu.TextureFormatBGRA8Unorm,
}

// primitiveLayouts maps WGSL scalar, vector, matrix, and atomic type names to
// their byte size and alignment.
//
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
var primitiveLayouts = map[string]typeLayout{
	"f32":  {4, 4},
	"i32":  {4, 4},
	"u32":  {4, 4},
	"f16":  {2, 2},
	"bool": {4, 4},

	"vec2<f32>": {8, 8},
	"vec2f":     {8, 8},
	"vec3<f32>": {12, 16},
	"vec3f":     {12, 16},
	"vec4<f32>": {16, 16},
	"vec4f":     {16, 16},

	"vec2<i32>": {8, 8},
	"vec2i":     {8, 8},
	"vec3<i32>": {12, 16},
	"vec3i":     {12, 16},
	"vec4<i32>": {16, 16},
	"vec4i":     {16, 16},

	"vec2<u32>": {8, 8},
	"vec2u":     {8, 8},
	"vec3<u32>": {12, 16},
	"vec3u":     {12, 16},
	"vec4<u32>": {16, 16},
	"vec4u":     {16, 16},

	"vec2<f16>": {4, 4},
	"vec2h":     {4, 4},
	"vec4<f16>": {8, 8},
	"vec4h":     {8, 8},

	// matCxR<f32> is C columns of vecR<f32>; stride rounds the column vector
	// size up to its alignment.
	"mat2x2<f32>": {16, 8},
	"mat2x3<f32>": {32, 16},
	"mat2x4<f32>": {32, 16},
	"mat3x2<f32>": {24, 8},
	"mat3x3<f32>": {48, 16},
	"mat3x4<f32>": {48, 16},
	"mat4x2<f32>": {32, 8},
	"mat4x3<f32>": {64, 16},
	"mat4x4<f32>": {64, 16},

	"atomic<u32>": {4, 4},
	"atomic<i32>": {4, 4},
}

// alignTo rounds value up to the next multiple of align, which must be a power
// of two. A zero align returns the value unchanged.
func alignTo(value, align uint64) uint64 {
	if align == 0 {
		return value
	}
	return (value + align - 1) &^ (align - 1)
}

// cutTypeParams splits a parameterized WGSL type into base name and parameter
// string: "texture_2d<f32>" yields ("texture_2d", "f32") and an unparameterized
// type yields itself with empty params.
func cutTypeParams(typ string) (base, params string) {
	before, after, ok := strings.Cut(typ, "<")
	if !ok {
		return typ, ""
	}
	return before, strings.TrimSpace(strings.TrimSuffix(after, ">"))
}

// layoutOf resolves a WGSL type name to its size and alignment, consulting
// primitives and previously solved struct layouts. Fixed-size arrays resolve
// to count times the element stride. Runtime-sized arrays resolve to a single
// element stride, the minimum useful binding size, so callers can scale by
// element count when sizing buffers. Unknown types return false.
//
// Parameters:
//   - typ: the WGSL type name, e.g. "f32", "CameraUniform", "array<atomic<u32>>"
//   - known: already-solved struct layouts by name
//
// Returns:
//   - typeLayout: the resolved layout
//   - bool: false when the type cannot be resolved
func layoutOf(typ string, known map[string]typeLayout) (typeLayout, bool) {
	if tl, ok := primitiveLayouts[typ]; ok {
		return tl, true
	}
	if tl, ok := known[typ]; ok {
		return tl, true
	}

	if strings.HasPrefix(typ, "array<") && strings.HasSuffix(typ, ">") {
		inner := typ[6 : len(typ)-1]
		elemTyp, countStr, fixed := strings.Cut(inner, ",")
		elem, ok := layoutOf(strings.TrimSpace(elemTyp), known)
		if !ok {
			return typeLayout{}, false
		}
		stride := alignTo(elem.size, elem.align)

		if fixed {
			count, err := strconv.ParseUint(strings.TrimSpace(countStr), 10, 64)
			if err != nil {
				return typeLayout{}, false
			}
			return typeLayout{count * stride, elem.align}, true
		}
		return typeLayout{stride, elem.align}, true
	}

	return typeLayout{}, false
}

// structLayoutOf computes a struct's size and alignment under WGSL layout
// rules: fields are placed at aligned offsets and the total rounds up to the
// struct's alignment. @builtin fields are skipped since they never occupy
// buffer space. A trailing runtime-sized array leaves the fixed-prefix offset
// as the size, or one element stride when the array is the only field.
//
// Returns false when any field's type is not yet resolvable.
func structLayoutOf(sd structDecl, known map[string]typeLayout) (typeLayout, bool) {
	var offset uint64
	maxAlign := uint64(1)

	for _, f := range sd.fields {
		if f.builtin {
			continue
		}

		fl, ok := layoutOf(f.typ, known)
		if !ok {
			if strings.HasPrefix(f.typ, "array<") && !strings.Contains(f.typ, ",") {
				offset = alignTo(offset, maxAlign)
				if offset == 0 {
					elemTyp := strings.TrimSpace(f.typ[6 : len(f.typ)-1])
					if elem, elemOk := layoutOf(elemTyp, known); elemOk {
						return typeLayout{alignTo(elem.size, elem.align), elem.align}, true
					}
				}
				return typeLayout{offset, maxAlign}, true
			}
			return typeLayout{}, false
		}

		offset = alignTo(offset, fl.align)
		offset += fl.size
		if fl.align > maxAlign {
			maxAlign = fl.align
		}
	}

	return typeLayout{alignTo(offset, maxAlign), maxAlign}, true
}

// solveStructLayouts computes layouts for all parsed structs, iterating until
// no progress remains so structs nested inside other structs resolve in any
// declaration order.
func solveStructLayouts(decls []structDecl) map[string]typeLayout {
	solved := make(map[string]typeLayout, len(decls))
	remaining := make([]structDecl, len(decls))
	copy(remaining, decls)

	for len(remaining) > 0 {
		progress := false
		next := remaining[:0]
		for _, sd := range remaining {
			if tl, ok := structLayoutOf(sd, solved); ok {
				solved[sd.name] = tl
				progress = true
			} else {
				next = append(next, sd)
			}
		}
		remaining = next
		if !progress {
			break
		}
	}

	return solved
}

// layoutEntryFor builds a bind group layout entry from one parsed resource
// declaration. The address space qualifier selects buffer bindings; handle
// types (textures and samplers) classify by their type name.
//
// Parameters:
//   - binding: the binding index from @binding(N)
//   - visibility: the shader stage visibility flag
//   - addressSpace: the var<...> qualifier, empty for handle types
//   - typ: the WGSL type string, e.g. "CameraUniform", "texture_3d<f32>", "sampler"
//
// Returns:
//   - wgpu.BindGroupLayoutEntry: a fully populated layout entry
func layoutEntryFor(binding uint32, visibility wgpu.ShaderStage, addressSpace, typ string) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: visibility,
	}

	if addressSpace != "" {
		switch {
		case addressSpace == "uniform":
			entry.Buffer.Type = wgpu.BufferBindingTypeUniform
		case strings.HasPrefix(addressSpace, "storage"):
			entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
			if strings.Contains(addressSpace, "read_write") {
				entry.Buffer.Type = wgpu.BufferBindingTypeStorage
			}
		}
		return entry
	}

	switch {
	case typ == "sampler":
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	case typ == "sampler_comparison":
		entry.Sampler.Type = wgpu.SamplerBindingTypeComparison
	case strings.HasPrefix(typ, "texture_storage_"):
		fillStorageTexture(typ, &entry)
	case strings.HasPrefix(typ, "texture_depth_"):
		fillDepthTexture(typ, &entry)
	case strings.HasPrefix(typ, "texture_"):
		fillSampledTexture(typ, &entry)
	}

	return entry
}

// fillSampledTexture populates texture layout fields from a sampled texture
// type like "texture_3d<f32>".
func fillSampledTexture(typ string, entry *wgpu.BindGroupLayoutEntry) {
	base, param := cutTypeParams(typ)
	if shape, ok := textureShapes[base]; ok {
		entry.Texture.ViewDimension = shape.dim
		entry.Texture.Multisampled = shape.msaa
	}
	if st, ok := sampleTypes[param]; ok {
		entry.Texture.SampleType = st
	}
}

// fillDepthTexture populates texture layout fields from a depth texture type
// like "texture_depth_2d". Depth textures take no type parameter.
func fillDepthTexture(typ string, entry *wgpu.BindGroupLayoutEntry) {
	entry.Texture.SampleType = wgpu.TextureSampleTypeDepth
	if shape, ok := textureShapes[typ]; ok {
		entry.Texture.ViewDimension = shape.dim
		entry.Texture.Multisampled = shape.msaa
	}
}

// fillStorageTexture populates storage texture layout fields from a type like
// "texture_storage_3d<rgba16float, write>".
func fillStorageTexture(typ string, entry *wgpu.BindGroupLayoutEntry) {
	base, params := cutTypeParams(typ)
	if dim, ok := storageTextureDims[base]; ok {
		entry.StorageTexture.ViewDimension = dim
	}

	formatStr, accessStr, hasAccess := strings.Cut(params, ",")
	if format, ok := texelFormats[strings.TrimSpace(formatStr)]; ok {
		entry.StorageTexture.Format = format
	}
	if hasAccess {
		if access, ok := storageAccessModes[strings.TrimSpace(accessStr)]; ok {
			entry.StorageTexture.Access = access
		}
	}
}
