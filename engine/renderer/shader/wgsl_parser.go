package shader

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// wgslComponentCounts maps the WGSL vertex input types to their component count.
var wgslComponentCounts = map[string]uint32{
	"f32":       1,
	"i32":       1,
	"u32":       1,
	"vec2f":     2,
	"vec2<f32>": 2,
	"vec2i":     2,
	"vec2<i32>": 2,
	"vec2u":     2,
	"vec2<u32>": 2,
	"vec3f":     3,
	"vec3<f32>": 3,
	"vec3i":     3,
	"vec3<i32>": 3,
	"vec3u":     3,
	"vec3<u32>": 3,
	"vec4f":     4,
	"vec4<f32>": 4,
	"vec4i":     4,
	"vec4<i32>": 4,
	"vec4u":     4,
	"vec4<u32>": 4,
}

// wgslSampledTextureMap maps WGSL sampled texture base names to their view dimension and multisampled flag
var wgslSampledTextureMap = map[string]sampledTextureInfo{
	"texture_1d":                    {wgpu.TextureViewDimension1D, false},
	"texture_2d":                    {wgpu.TextureViewDimension2D, false},
	"texture_2d_array":              {wgpu.TextureViewDimension2DArray, false},
	"texture_3d":                    {wgpu.TextureViewDimension3D, false},
	"texture_cube":                  {wgpu.TextureViewDimensionCube, false},
	"texture_multisampled_2d":       {wgpu.TextureViewDimension2D, true},
	"texture_depth_2d":              {wgpu.TextureViewDimension2D, false},
	"texture_depth_cube":            {wgpu.TextureViewDimensionCube, false},
	"texture_depth_multisampled_2d": {wgpu.TextureViewDimension2D, true},
}

// wgslSampleTypeMap maps WGSL scalar type parameters to their wgpu texture sample type
var wgslSampleTypeMap = map[string]wgpu.TextureSampleType{
	"f32": wgpu.TextureSampleTypeFloat,
	"i32": wgpu.TextureSampleTypeSint,
	"u32": wgpu.TextureSampleTypeUint,
}

var (
	// structBlockRegex matches struct declarations and captures the name and body
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// locationRegex matches @location(N) attributes
	locationRegex = regexp.MustCompile(`@location\(\s*(\d+)\s*\)`)

	// builtinRegex matches @builtin(...) attributes
	builtinRegex = regexp.MustCompile(`@builtin\(\s*\w+\s*\)`)

	// fieldRegex matches a member or parameter: optional attributes, name, colon, type.
	fieldRegex = regexp.MustCompile(`^(?:@\w+(?:\([^)]*\))?\s*)*(\w+)\s*:\s*(.+)$`)

	// vertexEntryRegex matches the start of a @vertex function up to its opening parenthesis
	vertexEntryRegex = regexp.MustCompile(`@vertex\s+fn\s+(\w+)\s*\(`)

	// fragmentEntryRegex matches the start of a @fragment function up to its opening parenthesis
	fragmentEntryRegex = regexp.MustCompile(`@fragment\s+fn\s+(\w+)\s*\(`)

	// bindGroupDeclRegex captures group, binding, optional address space, variable name, and type
	// from declarations like: @group(0) @binding(1) var<uniform> local: LocalParams;
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// parseBindGroupLayouts extracts all @group(N) @binding(M) declarations and returns them as
// layout descriptors keyed by group index, entries sorted by binding. Uniform entries get their
// MinBindingSize from the resolved struct layout.
//
// Parameters:
//   - source: the expanded WGSL source
//   - visibility: the stage flags applied to every entry
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: layout descriptors keyed by group index
//   - map[int]map[int]string: variable names keyed by group and binding
func parseBindGroupLayouts(source string, visibility wgpu.ShaderStage) (map[int]wgpu.BindGroupLayoutDescriptor, map[int]map[int]string) {
	groups := make(map[int][]wgpu.BindGroupLayoutEntry)
	varNames := make(map[int]map[int]string)
	cleaned := stripComments(source)

	structSizes := computeStructSizes(parseStructBlocks(cleaned))

	for _, match := range bindGroupDeclRegex.FindAllStringSubmatch(cleaned, -1) {
		group, _ := strconv.Atoi(match[1])
		binding, _ := strconv.Atoi(match[2])
		addressSpace := strings.TrimSpace(match[3])
		varName := strings.TrimSpace(match[4])
		typeName := strings.TrimSpace(match[5])

		entry := classifyResource(uint32(binding), visibility, addressSpace, typeName)
		if entry.Buffer.Type != wgpu.BufferBindingTypeUndefined {
			if layout, ok := resolveTypeLayout(typeName, structSizes); ok && layout.size > 0 {
				entry.Buffer.MinBindingSize = layout.size
			}
		}
		groups[group] = append(groups[group], entry)

		if varNames[group] == nil {
			varNames[group] = make(map[int]string)
		}
		varNames[group][binding] = varName
	}

	result := make(map[int]wgpu.BindGroupLayoutDescriptor, len(groups))
	for g, entries := range groups {
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Binding < entries[j].Binding
		})
		result[g] = wgpu.BindGroupLayoutDescriptor{Entries: entries}
	}
	return result, varNames
}

// parseEntryPoint finds the first entry function of a stage and parses its parameter list.
//
// Parameters:
//   - source: WGSL source with comments already stripped
//   - re: vertexEntryRegex or fragmentEntryRegex
//
// Returns:
//   - parsedEntryPoint: the entry function name and parameters
//   - bool: false if the stage has no entry point or its parameter list is unterminated
func parseEntryPoint(source string, re *regexp.Regexp) (parsedEntryPoint, bool) {
	loc := re.FindStringSubmatchIndex(source)
	if loc == nil {
		return parsedEntryPoint{}, false
	}
	name := source[loc[2]:loc[3]]

	// loc[1] is just past the opening parenthesis
	depth := 1
	end := -1
	for i := loc[1]; i < len(source) && end < 0; i++ {
		switch source[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				end = i
			}
		}
	}
	if end < 0 {
		return parsedEntryPoint{}, false
	}
	return parsedEntryPoint{name: name, params: parseFieldList(source[loc[1]:end])}, true
}

// parseStructBlocks finds all struct blocks in comment-stripped WGSL source.
func parseStructBlocks(source string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatch(source, -1)
	structs := make([]parsedStruct, 0, len(matches))
	for _, match := range matches {
		structs = append(structs, parsedStruct{
			name:   match[1],
			fields: parseFieldList(match[2]),
		})
	}
	return structs
}

// parseFieldList parses a comma separated member or parameter list, extracting
// @location and @builtin attributes with the name and type of each entry.
//
// Parameters:
//   - body: a struct body or the text between an entry function's parentheses
//
// Returns:
//   - []parsedField: the parsed entries, location -1 when no @location is present
func parseFieldList(body string) []parsedField {
	parts := splitAtTopLevelCommas(body)
	fields := make([]parsedField, 0, len(parts))

	for _, part := range parts {
		part = strings.Join(strings.Fields(part), " ")
		if part == "" {
			continue
		}

		field := parsedField{location: -1, isBuiltin: builtinRegex.MatchString(part)}
		if m := locationRegex.FindStringSubmatch(part); m != nil {
			if loc, err := strconv.Atoi(m[1]); err == nil {
				field.location = loc
			}
		}
		fm := fieldRegex.FindStringSubmatch(part)
		if fm == nil {
			continue
		}
		field.name = fm[1]
		field.typeName = strings.TrimSpace(fm[2])
		fields = append(fields, field)
	}
	return fields
}
