package oit

import _ "embed"

// The OIT pass shaders ship embedded with the package rather than loaded from
// disk, since their output-target contracts and bind group layouts are fixed
// by the pass encoders in this module. They still carry @lucent: annotations
// and run through the shader pre-processor like any on-disk shader.

// AccumVertexSource is the vertex stage shared by both accumulation
// pipelines: standard camera/model transform plus view-space depth for the
// weight function.
//
//go:embed assets/accum_vert.wgsl
var AccumVertexSource string

// NaiveAccumFragmentSource is the naive weighted-blend accumulation fragment
// stage, writing the accum and revealage render targets.
//
//go:embed assets/accum_naive_frag.wgsl
var NaiveAccumFragmentSource string

// HistogramAccumFragmentSource extends the naive accumulation with histogram
// population and CDF-based weight equalization against the previous frame.
//
//go:embed assets/accum_histogram_frag.wgsl
var HistogramAccumFragmentSource string

// CDFBuildComputeSource is the per-tile CDF build compute stage: consumes and
// clears the histogram, prefix-sums it, and writes the normalized CDF slices.
//
//go:embed assets/cdf_build_comp.wgsl
var CDFBuildComputeSource string

// CompositeVertexSource emits a fullscreen triangle from the vertex index
// with no vertex buffers bound.
//
//go:embed assets/composite_vert.wgsl
var CompositeVertexSource string

// CompositeFragmentSource resolves the accumulation targets onto the frame
// under premultiplied-alpha blending.
//
//go:embed assets/composite_frag.wgsl
var CompositeFragmentSource string
