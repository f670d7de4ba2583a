package shader

import (
	"fmt"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies which pipeline stage a shader's entry point targets.
type ShaderType int

const (
	// ShaderTypeCompute is a shader with a @compute entry point, used by compute pipelines.
	ShaderTypeCompute ShaderType = iota

	// ShaderTypeVertex is a shader with a @vertex entry point.
	ShaderTypeVertex

	// ShaderTypeFragment is a shader with a @fragment entry point, paired with a vertex shader.
	ShaderTypeFragment
)

// shader holds the parsed form of one WGSL source: the processed text plus
// the layout metadata extracted from it.
type shader struct {
	key        string
	source     string
	shaderType ShaderType

	groupLayouts  map[int]wgpu.BindGroupLayoutDescriptor
	groupVarNames map[int]map[int]string
	vertexLayouts map[int][]wgpu.VertexBufferLayout
	workgroupSize [3]uint32
	entryPoint    string

	pp PreProcessor
}

// Shader is one parsed WGSL shader. Everything a pipeline needs from the
// source is extracted at construction: the entry point, per-group bind group
// layout descriptors, vertex buffer layouts, the compute workgroup size, and
// the resource annotations that drive bind group wiring.
type Shader interface {
	// Key returns the identifier the shader was created with, used for
	// caching, labels, and lookups.
	//
	// Returns:
	//   - string: the shader key
	Key() string

	// Source returns the processed WGSL text with all annotations stripped,
	// ready for module creation.
	//
	// Returns:
	//   - string: the WGSL source
	Source() string

	// EntryPoint returns the name of the function carrying this shader's
	// stage attribute.
	//
	// Returns:
	//   - string: the entry point function name
	EntryPoint() string

	// BindGroupLayoutDescriptor returns the layout descriptor parsed for one
	// bind group.
	//
	// Parameters:
	//   - group: the bind group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the descriptor, zero-valued when the group is absent
	BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptors returns every parsed bind group layout
	// descriptor. These are CPU-side descriptions; the renderer turns them
	// into GPU layout objects at pipeline registration.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarNames returns the WGSL variable name declared at each
	// group and binding, which the scene uses to route resources to the
	// right binding slot.
	//
	// Returns:
	//   - map[int]map[int]string: variable names keyed by group then binding
	BindGroupVarNames() map[int]map[int]string

	// VertexLayout returns the vertex buffer layout parsed for one buffer slot.
	//
	// Parameters:
	//   - slot: the vertex buffer slot index
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: the slot's layout, nil when the slot is absent
	VertexLayout(slot int) []wgpu.VertexBufferLayout

	// VertexLayouts returns the vertex buffer layouts for every slot.
	// Non-vertex shaders return an empty map.
	//
	// Returns:
	//   - map[int][]wgpu.VertexBufferLayout: layouts keyed by buffer slot
	VertexLayouts() map[int][]wgpu.VertexBufferLayout

	// WorkgroupSize returns the @workgroup_size dimensions of a compute
	// shader, defaulting to [1, 1, 1] when the attribute carries no
	// arguments. Non-compute shaders return [0, 0, 0].
	//
	// Returns:
	//   - [3]uint32: the workgroup size as [x, y, z]
	WorkgroupSize() [3]uint32

	// Declarations returns the resource annotations parsed from the source.
	// The scene matches these against game objects to build bind groups.
	//
	// Returns:
	//   - []Annotation: the parsed annotations in source order
	Declarations() []Annotation
}

var _ Shader = &shader{}

// NewShader reads WGSL source from a file and parses it. Shaders are loaded
// during setup, so a missing file or unparsable source panics rather than
// returning an error.
//
// Parameters:
//   - key: the identifier for caching, labels, and lookups
//   - shaderType: the stage this shader targets
//   - sourcePath: the path of the WGSL file to read
//
// Returns:
//   - Shader: the parsed shader
func NewShader(key string, shaderType ShaderType, sourcePath string) Shader {
	if sourcePath == "" {
		panic(fmt.Sprintf("shader: %s must have a valid source path provided", key))
	}
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		panic(fmt.Sprintf("shader: failed to read source file %q: %v", sourcePath, err))
	}
	return NewShaderFromSource(key, shaderType, string(data))
}

// NewShaderFromSource parses WGSL source passed directly as text. This is the
// path for shaders compiled into the binary via go:embed, such as the
// transparency pass shaders.
//
// Parameters:
//   - key: the identifier for caching, labels, and lookups
//   - shaderType: the stage this shader targets
//   - source: the raw WGSL text, possibly carrying @lucent: annotations
//
// Returns:
//   - Shader: the parsed shader
func NewShaderFromSource(key string, shaderType ShaderType, source string) Shader {
	if source == "" {
		panic(fmt.Sprintf("shader: %s must have non-empty source", key))
	}
	s := &shader{
		key:           key,
		shaderType:    shaderType,
		groupLayouts:  make(map[int]wgpu.BindGroupLayoutDescriptor),
		groupVarNames: make(map[int]map[int]string),
		vertexLayouts: make(map[int][]wgpu.VertexBufferLayout),
		pp:            NewPreProcessor(),
	}
	s.parseSource(source)
	return s
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor {
	return s.groupLayouts[group]
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.groupLayouts
}

func (s *shader) BindGroupVarNames() map[int]map[int]string {
	return s.groupVarNames
}

func (s *shader) VertexLayout(slot int) []wgpu.VertexBufferLayout {
	return s.vertexLayouts[slot]
}

func (s *shader) VertexLayouts() map[int][]wgpu.VertexBufferLayout {
	return s.vertexLayouts
}

func (s *shader) WorkgroupSize() [3]uint32 {
	return s.workgroupSize
}

func (s *shader) Declarations() []Annotation {
	return s.pp.Declarations()
}

// stageVisibility maps the shader type to the stage flag stamped on parsed
// bind group layout entries.
func (s *shader) stageVisibility() wgpu.ShaderStage {
	switch s.shaderType {
	case ShaderTypeVertex:
		return wgpu.ShaderStageVertex
	case ShaderTypeFragment:
		return wgpu.ShaderStageFragment
	case ShaderTypeCompute:
		return wgpu.ShaderStageCompute
	default:
		return wgpu.ShaderStageNone
	}
}

// parseSource runs the pre-processor over the raw text, then extracts the
// entry point, the bind group layouts, and the stage-specific metadata:
// vertex buffer layouts for vertex shaders, workgroup size for compute.
func (s *shader) parseSource(raw string) {
	var err error
	s.source, err = s.pp.Process(raw)
	if err != nil {
		panic(fmt.Sprintf("shader: failed to pre-process shader source %q: %v", s.key, err))
	}

	s.entryPoint = parseEntryPoint(s.source, s.shaderType)
	s.groupLayouts, s.groupVarNames = parseBindGroupLayouts(s.source, s.stageVisibility())

	switch s.shaderType {
	case ShaderTypeVertex:
		s.vertexLayouts = parseVertexLayouts(s.source)
	case ShaderTypeCompute:
		s.workgroupSize = parseWorkgroupSize(s.source)
	}
}
