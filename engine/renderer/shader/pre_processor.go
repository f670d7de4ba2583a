// pre_processor.go is the Lucent WGSL pre-processor. It walks shader source
// line by line, expanding @lucent: annotations into struct definitions or
// @group/@binding declarations and recording the declarations the Scene later
// uses to wire GPU resources to bind groups.
//
// Two registries back the expansion:
//   - structRegistry resolves struct type keys to the embedded WGSL source
//     and WGSL type name of the engine's GPU types, serving both
//     @lucent:include injection and @lucent:group type resolution.
//   - addressSpaceRegistry resolves address space keys to var<> syntax.
//
// ANNOTATIONS_README.md at the repository root documents the annotations.
package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/lucent-go/engine/camera"
	"github.com/Carmen-Shannon/lucent-go/engine/mesh"
	"github.com/Carmen-Shannon/lucent-go/engine/oit"
	"github.com/Carmen-Shannon/lucent-go/engine/renderer/material"
)

// registryEntry is one registered GPU type: its embedded WGSL definition and
// the type name emitted into generated declarations.
type registryEntry struct {
	source   string
	typeName string
}

type preProcessor struct {
	structRegistry       map[AnnotationArg]registryEntry
	addressSpaceRegistry map[AnnotationArg]string

	// declarations collects group and provider annotations in source order,
	// reset on each Process call.
	declarations []Annotation
}

// PreProcessor expands @lucent: annotations in WGSL source and keeps the
// declarations the expansion produced for downstream resource wiring.
type PreProcessor interface {
	// Process expands every annotation in source: include annotations become
	// the registered struct definition, group annotations become generated
	// @group/@binding variable declarations, and provider annotations emit
	// nothing. Group and provider annotations are recorded for Declarations,
	// replacing whatever an earlier Process call recorded.
	//
	// Parameters:
	//   - source: raw WGSL text containing @lucent: annotations
	//
	// Returns:
	//   - string: the expanded WGSL text
	//   - error: the first malformed annotation encountered
	Process(source string) (string, error)

	// Declarations returns the group and provider annotations recorded by the
	// most recent Process call, in source order. Nil before the first call.
	//
	// Returns:
	//   - []Annotation: the recorded declarations
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor builds a pre-processor with every engine GPU type and
// address space registered.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		structRegistry: map[AnnotationArg]registryEntry{
			AnnotationArgCamera:          {source: camera.GPUCameraUniformSource, typeName: "CameraUniform"},
			annotationArgVertex:          {source: mesh.GPUVertexSource, typeName: "VertexInput"},
			AnnotationArgModelData:       {source: mesh.GPUModelDataSource, typeName: "ModelData"},
			AnnotationArgMaterialParams:  {source: material.GPUMaterialParamsSource, typeName: "MaterialParams"},
			AnnotationArgHistogramParams: {source: oit.GPUHistogramParamsSource, typeName: "HistogramParams"},
		},
		addressSpaceRegistry: map[AnnotationArg]string{
			annotationArgStorageTypeUniform:   "var<uniform>",
			annotationArgStorageTypeRead:      "var<storage, read>",
			annotationArgStorageTypeReadWrite: "var<storage, read_write>",
		},
	}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case annotationTypeInclude:
			entry, ok := p.structRegistry[a.Args[0]]
			if !ok {
				return "", fmt.Errorf("line %d: unknown @lucent:include argument %q", i+1, a.Args[0])
			}
			out = append(out, entry.source)
		case AnnotationTypeBindingGroup:
			out = append(out, p.groupDeclaration(a))
			p.declarations = append(p.declarations, *a)
		case AnnotationTypeProvider:
			p.declarations = append(p.declarations, *a)
		default:
			return "", fmt.Errorf("line %d: unknown annotation type %q", i+1, a.Type)
		}
	}

	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}

// groupDeclaration renders the variable declaration a group annotation
// expands to.
func (p *preProcessor) groupDeclaration(a *Annotation) string {
	return fmt.Sprintf("@group(%d) @binding(%d) %s %s: %s;",
		*a.Group, *a.Binding, p.addressSpaceRegistry[a.Args[0]], a.Args[1], p.wgslTypeName(string(a.Args[2])))
}

// wgslTypeName resolves a struct type key to the WGSL type name, keeping an
// array<> wrapper intact.
func (p *preProcessor) wgslTypeName(key string) string {
	if inner, ok := strings.CutPrefix(key, "array<"); ok {
		inner = strings.TrimSuffix(inner, ">")
		return fmt.Sprintf("array<%s>", p.structRegistry[AnnotationArg(inner)].typeName)
	}
	return p.structRegistry[AnnotationArg(key)].typeName
}
