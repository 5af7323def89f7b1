package shader

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/vertex_layout"
	"github.com/cockroachdb/errors"
)

var (
	// ErrNoVertexEntry is returned by Reflect when the source has no @vertex function.
	ErrNoVertexEntry = errors.New("shader: no @vertex entry point")

	// ErrUnsupportedInputType is returned for a vertex input whose type has no vertex format.
	ErrUnsupportedInputType = errors.New("shader: unsupported vertex input type")

	// ErrDuplicateLocation is returned when two vertex inputs share a location.
	ErrDuplicateLocation = errors.New("shader: duplicate vertex input location")
)

// Reflect builds the vertex input layout of a WGSL program from its @vertex entry point.
// Parameters with @location contribute one input each, struct-typed parameters contribute their
// @location members, and @builtin parameters or members are skipped. Inputs keep declaration order.
//
// Parameters:
//   - source: the WGSL source, after annotation expansion
//
// Returns:
//   - vertex_layout.ShaderInputLayout: the declared inputs
//   - error: ErrNoVertexEntry, ErrUnsupportedInputType or ErrDuplicateLocation
func Reflect(source string) (vertex_layout.ShaderInputLayout, error) {
	cleaned := stripComments(source)
	entry, ok := parseEntryPoint(cleaned, vertexEntryRegex)
	if !ok {
		return vertex_layout.ShaderInputLayout{}, ErrNoVertexEntry
	}

	structs := parseStructBlocks(cleaned)
	var layout vertex_layout.ShaderInputLayout
	add := func(f parsedField) error {
		count, ok := wgslComponentCounts[f.typeName]
		if !ok {
			return errors.Wrapf(ErrUnsupportedInputType, "%s: %s at location %d", f.name, f.typeName, f.location)
		}
		loc := uint32(f.location)
		if slices.Contains(layout.Locations(), loc) {
			return errors.Wrapf(ErrDuplicateLocation, "location %d", loc)
		}
		layout.Inputs = append(layout.Inputs, vertex_layout.ShaderInput{Location: loc, ComponentCount: count})
		return nil
	}

	for _, param := range entry.params {
		switch {
		case param.isBuiltin:
			continue
		case param.location >= 0:
			if err := add(param); err != nil {
				return vertex_layout.ShaderInputLayout{}, errors.Wrapf(err, "entry %s", entry.name)
			}
		default:
			idx := slices.IndexFunc(structs, func(ps parsedStruct) bool { return ps.name == param.typeName })
			if idx < 0 {
				return vertex_layout.ShaderInputLayout{}, errors.Wrapf(ErrUnsupportedInputType, "entry %s: parameter %s has no @location and %s is not a struct", entry.name, param.name, param.typeName)
			}
			for _, f := range structs[idx].fields {
				if f.isBuiltin || f.location < 0 {
					continue
				}
				if err := add(f); err != nil {
					return vertex_layout.ShaderInputLayout{}, errors.Wrapf(err, "entry %s, struct %s", entry.name, param.typeName)
				}
			}
		}
	}
	return layout, nil
}
