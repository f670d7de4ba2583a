// annotations.go holds the annotation vocabulary and parser for the Lucent
// WGSL pre-processor. An annotation is a single-line WGSL comment starting
// with @lucent: that asks the pre-processor to inject a struct definition,
// emit a @group/@binding declaration, or record which resource provider owns
// a hand-written binding. Parsed annotations become Annotation values that
// the PreProcessor and Scene consume to wire GPU resources.
//
// ANNOTATIONS_README.md at the repository root documents the full syntax.
package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix marks a WGSL comment line as an annotation. The line must
// start with "//" followed by this prefix.
const annotationPrefix = "@lucent:"

// AnnotationType names the kind of annotation found on a line. Each kind
// triggers a different pre-processor action and fills different Annotation
// fields.
type AnnotationType string

const (
	// annotationTypeInclude splices the registered WGSL struct definition
	// into the shader at the annotation site and produces no declaration;
	// it is consumed entirely during pre-processing.
	//
	// Syntax: //@lucent:include <struct_type>
	//
	// Example: //@lucent:include camera
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup emits a WGSL @group/@binding variable
	// declaration and records it in the PreProcessor's declarations. The
	// recorded group index, binding index, and struct type let the Scene
	// match bindings to resource providers without string lookups.
	//
	// Syntax: //@lucent:group <group> <binding> <address_space> <var_name> <type>
	//
	// Example: //@lucent:group 0 0 storage_uniform camera camera
	AnnotationTypeBindingGroup AnnotationType = "group"

	// AnnotationTypeProvider records the provider identity for a group and
	// binding while emitting nothing; the WGSL declaration stays hand-written
	// directly below the annotation. Bindings of raw WGSL types (textures,
	// samplers, flat primitive arrays) have no registered struct, so this is
	// how they name their provider.
	//
	// A binding role may follow the provider identity to state the semantic
	// purpose of one binding inside a multi-binding group, letting the scene
	// resolve binding indices from declarations instead of matching variable
	// names.
	//
	// Syntax:
	//   //@lucent:provider <group> <binding> <provider_identity>
	//   //@lucent:provider <group> <binding> <provider_identity> <binding_role>
	//
	// Examples:
	//   //@lucent:provider 2 1 material diffuse_texture
	//   //@lucent:provider 3 0 transparency histogram_bins
	AnnotationTypeProvider AnnotationType = "provider"
)

// Annotation is one parsed @lucent: line. Group and provider annotations are
// appended to the PreProcessor's declarations for the Scene to consume during
// resource wiring; include annotations never leave the pre-processor.
type Annotation struct {
	// Type is the annotation kind: include, group, or provider.
	Type AnnotationType

	// Args holds the arguments after the indices, by Type:
	//   - include:  [0] = struct type key (e.g. "camera")
	//   - group:    [0] = address space, [1] = var name, [2] = WGSL type key
	//   - provider: [0] = provider identity, [1] = binding role when present
	Args []AnnotationArg

	// Line is the 1-based source line the annotation appeared on, kept for
	// error reporting.
	Line int

	// Group is the @group index; nil for include annotations.
	Group *int

	// Binding is the @binding index; nil for include annotations.
	Binding *int
}

// AnnotationArg is one typed annotation argument: a struct type key, an
// address space, a provider identity, or a binding role.
type AnnotationArg string

// ── Struct type arguments ──────────────────────────────────────────────────────
// Keys of registered WGSL struct definitions, usable in @lucent:include and as
// the type field of @lucent:group (optionally wrapped in array<>). Each key
// maps to a Go GPU type with an embedded .wgsl asset.

const (
	// AnnotationArgCamera names the CameraUniform definition.
	// Source: engine/camera/assets/camera_uniform.wgsl
	AnnotationArgCamera AnnotationArg = "camera"

	// annotationArgVertex names the VertexInput definition for mesh vertex shaders.
	// Source: engine/mesh/assets/vertex.wgsl
	annotationArgVertex AnnotationArg = "vertex"

	// AnnotationArgModelData names the ModelData definition carrying per-object model matrices.
	// Source: engine/mesh/assets/model_data.wgsl
	AnnotationArgModelData AnnotationArg = "model_data"

	// AnnotationArgMaterialParams names the MaterialParams material uniform definition.
	// Source: engine/renderer/material/assets/material_params.wgsl
	AnnotationArgMaterialParams AnnotationArg = "material_params"

	// AnnotationArgHistogramParams names the HistogramParams definition that
	// configures the depth-histogram tile grid for the transparency passes.
	// Source: engine/oit/assets/histogram_params.wgsl
	AnnotationArgHistogramParams AnnotationArg = "histogram_params"
)

// ── Address space arguments ────────────────────────────────────────────────────
// The address space field of @lucent:group, mapping to WGSL var<> forms.

const (
	// annotationArgStorageTypeUniform emits var<uniform>.
	annotationArgStorageTypeUniform AnnotationArg = "storage_uniform"

	// annotationArgStorageTypeRead emits var<storage, read>.
	annotationArgStorageTypeRead AnnotationArg = "storage_read"

	// annotationArgStorageTypeReadWrite emits var<storage, read_write>.
	annotationArgStorageTypeReadWrite AnnotationArg = "storage_read_write"
)

// ── Provider identity arguments ────────────────────────────────────────────────
// Names of the Scene-level resource providers a bind group can belong to.
// The Scene's draw call and compute setup match these to pick the right
// BindGroupProvider per group.

const (
	// AnnotationArgMaterial is the material provider: textures, samplers, and
	// the material uniform.
	AnnotationArgMaterial AnnotationArg = "material"

	// AnnotationArgTransparency is the per-view transparency provider:
	// histogram bins, the CDF texture and sampler, revealage history, and the
	// accumulation targets.
	AnnotationArgTransparency AnnotationArg = "transparency"
)

// ── Binding role arguments ─────────────────────────────────────────────────────
// Optional qualifiers on @lucent:provider naming the resource one binding
// carries inside a multi-binding group.

const (
	// AnnotationArgDiffuseTexture marks a diffuse / base-color texture binding.
	AnnotationArgDiffuseTexture AnnotationArg = "diffuse_texture"

	// AnnotationArgDiffuseSampler marks the sampler paired with the diffuse texture.
	AnnotationArgDiffuseSampler AnnotationArg = "diffuse_sampler"

	// AnnotationArgAccumTexture marks the weighted color accumulation texture binding.
	AnnotationArgAccumTexture AnnotationArg = "accum_texture"

	// AnnotationArgRevealageTexture marks the current frame's revealage texture binding.
	AnnotationArgRevealageTexture AnnotationArg = "revealage_texture"

	// AnnotationArgRevealageHistory marks the previous frame's revealage texture
	// binding, read by the histogram accumulation shader for weight equalization.
	AnnotationArgRevealageHistory AnnotationArg = "revealage_history"

	// AnnotationArgCDFTexture marks the per-tile depth CDF texture binding.
	AnnotationArgCDFTexture AnnotationArg = "cdf_texture"

	// AnnotationArgCDFSampler marks the sampler paired with the CDF texture.
	AnnotationArgCDFSampler AnnotationArg = "cdf_sampler"

	// AnnotationArgHistogramBins marks the atomic depth-histogram bin buffer binding.
	AnnotationArgHistogramBins AnnotationArg = "histogram_bins"
)

// validStructTypes are the struct type keys accepted by include and group
// annotations. Every entry has a registryEntry in the PreProcessor's
// structRegistry.
var validStructTypes = []AnnotationArg{
	AnnotationArgCamera,
	annotationArgVertex,
	AnnotationArgModelData,
	AnnotationArgMaterialParams,
	AnnotationArgHistogramParams,
}

// validAddressSpaces are the address spaces accepted by group annotations.
var validAddressSpaces = []AnnotationArg{
	annotationArgStorageTypeUniform,
	annotationArgStorageTypeRead,
	annotationArgStorageTypeReadWrite,
}

// validProviderIdentities are the provider identities accepted by provider
// annotations.
var validProviderIdentities = []AnnotationArg{
	AnnotationArgCamera,
	AnnotationArgMaterial,
	AnnotationArgTransparency,
}

// validBindingRoles are the binding roles accepted as the optional qualifier
// of provider annotations.
var validBindingRoles = []AnnotationArg{
	AnnotationArgDiffuseTexture,
	AnnotationArgDiffuseSampler,
	AnnotationArgAccumTexture,
	AnnotationArgRevealageTexture,
	AnnotationArgRevealageHistory,
	AnnotationArgCDFTexture,
	AnnotationArgCDFSampler,
	AnnotationArgHistogramBins,
}

// parseAnnotation parses one source line. Lines without the @lucent: prefix
// return nil with no error; lines with the prefix either parse into an
// Annotation or return an error naming what is malformed.
//
// Parameters:
//   - line: the raw WGSL source line
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, nil when the line is not one
//   - error: what is wrong with a malformed annotation
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	_, after, ok := strings.Cut(strings.TrimSpace(line), annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @lucent annotation", lineNum)
	}

	switch AnnotationType(args[0]) {
	case annotationTypeInclude:
		return parseIncludeAnnotation(args[1:], lineNum)
	case AnnotationTypeBindingGroup:
		return parseGroupAnnotation(args[1:], lineNum)
	case AnnotationTypeProvider:
		return parseProviderAnnotation(args[1:], lineNum)
	default:
		return nil, fmt.Errorf("line %d: unknown @lucent annotation type %q", lineNum, args[0])
	}
}

// parseIndex converts one numeric annotation argument, naming the field in
// the error.
func parseIndex(raw, field string, lineNum int) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("line %d: invalid %s %q in @lucent annotation: %v", lineNum, field, raw, err)
	}
	return n, nil
}

// knownStructType reports whether raw is a registered struct type key,
// unwrapping one level of array<> when allowArray is set.
func knownStructType(raw string, allowArray bool) bool {
	if allowArray {
		if inner, ok := strings.CutPrefix(raw, "array<"); ok {
			raw = strings.TrimSuffix(inner, ">")
		}
	}
	return slices.Contains(validStructTypes, AnnotationArg(raw))
}

func parseIncludeAnnotation(args []string, lineNum int) (*Annotation, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("line %d: @lucent include takes exactly one argument, the struct type", lineNum)
	}
	if !knownStructType(args[0], false) {
		return nil, fmt.Errorf("line %d: unknown struct type %q in @lucent include annotation", lineNum, args[0])
	}
	return &Annotation{
		Type: annotationTypeInclude,
		Args: []AnnotationArg{AnnotationArg(args[0])},
		Line: lineNum,
	}, nil
}

func parseGroupAnnotation(args []string, lineNum int) (*Annotation, error) {
	if len(args) != 5 {
		return nil, fmt.Errorf("line %d: @lucent group takes five arguments: group, binding, address space, var name, struct type", lineNum)
	}
	group, err := parseIndex(args[0], "group number", lineNum)
	if err != nil {
		return nil, err
	}
	binding, err := parseIndex(args[1], "binding number", lineNum)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(validAddressSpaces, AnnotationArg(args[2])) {
		return nil, fmt.Errorf("line %d: unknown address space %q in @lucent group annotation", lineNum, args[2])
	}
	if !knownStructType(args[4], true) {
		return nil, fmt.Errorf("line %d: unknown struct type %q in @lucent group annotation", lineNum, args[4])
	}
	return &Annotation{
		Type:    AnnotationTypeBindingGroup,
		Args:    []AnnotationArg{AnnotationArg(args[2]), AnnotationArg(args[3]), AnnotationArg(args[4])},
		Line:    lineNum,
		Group:   &group,
		Binding: &binding,
	}, nil
}

func parseProviderAnnotation(args []string, lineNum int) (*Annotation, error) {
	if len(args) < 3 || len(args) > 4 {
		return nil, fmt.Errorf("line %d: @lucent provider takes three or four arguments: group, binding, provider identity, optional binding role", lineNum)
	}
	group, err := parseIndex(args[0], "group number", lineNum)
	if err != nil {
		return nil, err
	}
	binding, err := parseIndex(args[1], "binding number", lineNum)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(validProviderIdentities, AnnotationArg(args[2])) {
		return nil, fmt.Errorf("line %d: unknown provider identity %q in @lucent provider annotation", lineNum, args[2])
	}
	parsed := []AnnotationArg{AnnotationArg(args[2])}
	if len(args) == 4 {
		if !slices.Contains(validBindingRoles, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown binding role %q in @lucent provider annotation", lineNum, args[3])
		}
		parsed = append(parsed, AnnotationArg(args[3]))
	}
	return &Annotation{
		Type:    AnnotationTypeProvider,
		Args:    parsed,
		Line:    lineNum,
		Group:   &group,
		Binding: &binding,
	}, nil
}
