package shader

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// structRe matches a struct declaration and captures its name and body.
	structRe = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// locationRe matches @location(N) attributes on struct fields.
	locationRe = regexp.MustCompile(`@location\((\d+)\)`)

	// builtinRe matches @builtin(...) attributes on struct fields.
	builtinRe = regexp.MustCompile(`@builtin\(\w+\)`)

	// fieldRe matches one struct field: optional attributes, name, colon, type.
	// The type capture is greedy so parameterized types like array<T, N> stay whole.
	fieldRe = regexp.MustCompile(`(?:(?:@\w+\([^)]*\)\s*)*)*\s*(\w+)\s*:\s*(.+)`)

	vertexEntryRe   = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)
	fragmentEntryRe = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)
	computeEntryRe  = regexp.MustCompile(`(?s)@compute\b.*?\bfn\s+(\w+)`)

	// workgroupRe captures the 1-3 integer dimensions of @workgroup_size(x[, y[, z]]).
	workgroupRe = regexp.MustCompile(`@workgroup_size\(\s*(\d+)\s*(?:,\s*(\d+)\s*(?:,\s*(\d+)\s*)?)?\)`)

	// bindingDeclRe captures group, binding, optional address space, variable name,
	// and type from declarations like:
	//   @group(0) @binding(0) var<uniform> camera: CameraUniform;
	//   @group(3) @binding(1) var cdf_texture: texture_3d<f32>;
	bindingDeclRe = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// structDecl is a struct block lifted out of WGSL source.
type structDecl struct {
	name   string
	fields []fieldDecl
}

// fieldDecl is a single struct field with its attributes resolved.
type fieldDecl struct {
	name     string
	typ      string
	location int // -1 when the field carries no @location attribute
	builtin  bool
}

// parseEntryPoint returns the entry point function name declared for the given
// shader stage, or an empty string when the source declares none.
//
// Parameters:
//   - source: the raw WGSL source code string
//   - shaderType: the stage to search for (vertex, fragment, or compute)
//
// Returns:
//   - string: the entry point function name, or empty string if not found
func parseEntryPoint(source string, shaderType ShaderType) string {
	var re *regexp.Regexp
	switch shaderType {
	case ShaderTypeVertex:
		re = vertexEntryRe
	case ShaderTypeFragment:
		re = fragmentEntryRe
	case ShaderTypeCompute:
		re = computeEntryRe
	default:
		return ""
	}

	if m := re.FindStringSubmatch(scrubSource(source)); m != nil {
		return m[1]
	}
	return ""
}

// parseWorkgroupSize returns the @workgroup_size(x, y, z) dimensions from WGSL
// source. Omitted trailing dimensions default to 1, as does a source with no
// annotation at all.
//
// Parameters:
//   - source: the raw WGSL source code string
//
// Returns:
//   - [3]uint32: the workgroup size as [x, y, z]
func parseWorkgroupSize(source string) [3]uint32 {
	size := [3]uint32{1, 1, 1}
	m := workgroupRe.FindStringSubmatch(scrubSource(source))
	if m == nil {
		return size
	}
	for i := range 3 {
		if m[i+1] == "" {
			break
		}
		if v, err := strconv.ParseUint(m[i+1], 10, 32); err == nil {
			size[i] = uint32(v)
		}
	}
	return size
}

// parseVertexLayouts extracts vertex buffer layouts from WGSL source. A struct
// qualifies as a vertex input when every field carries @location and none is a
// @builtin; each such struct becomes one buffer layout with tightly packed
// attribute offsets. Compute shaders and sources without input structs return
// an empty map, and structs using types with no vertex format are skipped.
//
// Parameters:
//   - source: the raw WGSL source code string
//
// Returns:
//   - map[int][]wgpu.VertexBufferLayout: vertex layouts keyed by sequential index
func parseVertexLayouts(source string) map[int][]wgpu.VertexBufferLayout {
	layouts := make(map[int][]wgpu.VertexBufferLayout)

	slot := 0
	for _, sd := range parseStructDecls(scrubLineComments(source)) {
		if !isVertexInput(sd) {
			continue
		}
		layout, ok := vertexLayoutFor(sd)
		if !ok {
			continue
		}
		layouts[slot] = []wgpu.VertexBufferLayout{layout}
		slot++
	}

	return layouts
}

// parseBindGroupLayouts extracts every @group(N) @binding(M) resource
// declaration from WGSL source and returns layout descriptors keyed by group
// index, with entries sorted by binding. Buffer entries get a MinBindingSize
// computed from the bound type's WGSL layout so InitBindGroup can size backing
// buffers. The visibility flag marks the declaring stage on every entry.
//
// Parameters:
//   - source: the raw WGSL source code string
//   - visibility: the shader stage visibility flag to set on each entry
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: layout descriptors keyed by group index
//   - map[int]map[int]string: variable names keyed by group and binding index
func parseBindGroupLayouts(source string, visibility wgpu.ShaderStage) (map[int]wgpu.BindGroupLayoutDescriptor, map[int]map[int]string) {
	cleaned := scrubSource(source)
	sizes := solveStructLayouts(parseStructDecls(cleaned))

	groups := make(map[int][]wgpu.BindGroupLayoutEntry)
	varNames := make(map[int]map[int]string)
	for _, m := range bindingDeclRe.FindAllStringSubmatch(cleaned, -1) {
		group, _ := strconv.Atoi(m[1])
		binding, _ := strconv.Atoi(m[2])
		addressSpace := strings.TrimSpace(m[3])
		varName := strings.TrimSpace(m[4])
		typ := strings.TrimSpace(m[5])

		entry := layoutEntryFor(uint32(binding), visibility, addressSpace, typ)
		if entry.Buffer.Type != wgpu.BufferBindingTypeUndefined {
			if tl, ok := layoutOf(typ, sizes); ok && tl.size > 0 {
				entry.Buffer.MinBindingSize = tl.size
			}
		}
		groups[group] = append(groups[group], entry)

		if varNames[group] == nil {
			varNames[group] = make(map[int]string)
		}
		varNames[group][binding] = varName
	}

	descriptors := make(map[int]wgpu.BindGroupLayoutDescriptor, len(groups))
	for g, entries := range groups {
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Binding < entries[j].Binding
		})
		descriptors[g] = wgpu.BindGroupLayoutDescriptor{Entries: entries}
	}

	return descriptors, varNames
}

// parseStructDecls lifts every struct block out of comment-scrubbed WGSL source.
func parseStructDecls(source string) []structDecl {
	matches := structRe.FindAllStringSubmatch(source, -1)
	decls := make([]structDecl, 0, len(matches))
	for _, m := range matches {
		decls = append(decls, structDecl{
			name:   m[1],
			fields: parseFieldDecls(m[2]),
		})
	}
	return decls
}

// parseFieldDecls parses a struct body into fields, resolving @location and
// @builtin attributes. Splitting happens at top-level commas only, so types
// like array<FrustumPlane, 6> survive intact.
func parseFieldDecls(body string) []fieldDecl {
	entries := splitFields(body)
	fields := make([]fieldDecl, 0, len(entries))

	for _, raw := range entries {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		fm := fieldRe.FindStringSubmatch(raw)
		if fm == nil {
			continue
		}
		fd := fieldDecl{
			name:     fm[1],
			typ:      strings.TrimSpace(fm[2]),
			location: -1,
			builtin:  builtinRe.MatchString(raw),
		}
		if lm := locationRe.FindStringSubmatch(raw); lm != nil {
			if loc, err := strconv.Atoi(lm[1]); err == nil {
				fd.location = loc
			}
		}
		fields = append(fields, fd)
	}

	return fields
}

// isVertexInput reports whether a struct is a pure vertex input: at least one
// @location field and no @builtin fields. Vertex outputs mix @location with
// @builtin(position) and are rejected here.
func isVertexInput(sd structDecl) bool {
	hasLocation := false
	for _, f := range sd.fields {
		if f.builtin {
			return false
		}
		if f.location >= 0 {
			hasLocation = true
		}
	}
	return hasLocation
}

// vertexLayoutFor converts a vertex input struct into a buffer layout with
// sequential byte offsets. Returns false when any field's type has no vertex
// format mapping.
func vertexLayoutFor(sd structDecl) (wgpu.VertexBufferLayout, bool) {
	attrs := make([]wgpu.VertexAttribute, 0, len(sd.fields))
	var offset uint64

	for _, f := range sd.fields {
		vf, ok := vertexFormats[f.typ]
		if !ok {
			return wgpu.VertexBufferLayout{}, false
		}
		attrs = append(attrs, wgpu.VertexAttribute{
			Format:         vf.format,
			Offset:         offset,
			ShaderLocation: uint32(f.location),
		})
		offset += vf.width
	}

	return wgpu.VertexBufferLayout{
		ArrayStride: offset,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attrs,
	}, true
}

// splitFields splits a struct body at commas that are not nested inside angle
// brackets.
func splitFields(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i := range len(s) {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth = max(depth-1, 0)
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// scrubSource removes line and block comments from WGSL source. Block comments
// may be nested per the WGSL specification.
func scrubSource(source string) string {
	return scrubLineComments(scrubBlockComments(source))
}

// scrubLineComments removes single-line // comments so they cannot interfere
// with struct and binding parsing.
func scrubLineComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	for line := range strings.SplitSeq(source, "\n") {
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// scrubBlockComments removes /* ... */ comments, tracking nesting depth.
func scrubBlockComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		if i+1 < len(source) {
			if source[i] == '/' && source[i+1] == '*' {
				depth++
				i++
				continue
			}
			if source[i] == '*' && source[i+1] == '/' && depth > 0 {
				depth--
				i++
				continue
			}
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}
