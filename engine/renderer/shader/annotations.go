// annotations.go defines the annotation types, argument constants and parser for the
// WGSL pre-processor. Annotations are single-line WGSL comments prefixed with @oxy:
// that inject the frame parameter struct definitions, generate bind group declarations
// and record which bindings the renderer has to feed.
package shader

import (
	"slices"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// annotationPrefix marks an annotation inside a WGSL comment line.
const annotationPrefix = "@oxy:"

// ErrMalformedAnnotation is returned for lines carrying the annotation prefix with invalid syntax.
var ErrMalformedAnnotation = errors.New("shader: malformed annotation")

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// annotationTypeInclude injects the WGSL source of a registered struct at the annotation site.
	//
	// Syntax: //@oxy:include <struct_type>
	//
	// Example: //@oxy:include global_params
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup generates a @group/@binding declaration and records it.
	//
	// Syntax: //@oxy:group <group> <binding> <address_space> <var_name> <struct_type>
	//
	// Example: //@oxy:group 0 1 storage_uniform_dynamic local local_params
	AnnotationTypeBindingGroup AnnotationType = "group"

	// AnnotationTypeProvider records a hand-written binding (texture, sampler) and its role
	// without generating WGSL.
	//
	// Syntax: //@oxy:provider <group> <binding> <provider_identity> [binding_role]
	//
	// Example: //@oxy:provider 1 0 material albedo_texture
	AnnotationTypeProvider AnnotationType = "provider"
)

// Annotation is a single parsed @oxy: annotation.
type Annotation struct {
	Type AnnotationType

	// Args holds the annotation's arguments:
	//   - include:  [0] = struct type key
	//   - group:    [0] = address space, [1] = var name, [2] = struct type key
	//   - provider: [0] = provider identity, [1] = binding role (optional)
	Args []AnnotationArg

	// Line is the 1-based source line of the annotation.
	Line int

	// Group and Binding are nil for include annotations.
	Group   *int
	Binding *int
}

// Dynamic reports whether a group annotation declares a dynamic-offset uniform.
func (a Annotation) Dynamic() bool {
	return a.Type == AnnotationTypeBindingGroup && len(a.Args) > 0 && a.Args[0] == AnnotationArgStorageUniformDynamic
}

// AnnotationArg is a typed annotation argument.
type AnnotationArg string

// Struct type arguments, each backed by an embedded .wgsl asset of the frame_params package.
const (
	// AnnotationArgLight identifies the Light record. Source: engine/renderer/frame_params/assets/light.wgsl
	AnnotationArgLight AnnotationArg = "light"

	// AnnotationArgGlobalParams identifies the per-frame GlobalParams block.
	// Source: engine/renderer/frame_params/assets/global_params.wgsl
	AnnotationArgGlobalParams AnnotationArg = "global_params"

	// AnnotationArgLocalParams identifies the per-object LocalParams block.
	// Source: engine/renderer/frame_params/assets/local_params.wgsl
	AnnotationArgLocalParams AnnotationArg = "local_params"
)

// Address space arguments.
const (
	// annotationArgStorageUniform maps to var<uniform>.
	annotationArgStorageUniform AnnotationArg = "storage_uniform"

	// AnnotationArgStorageUniformDynamic maps to var<uniform> and flags the layout entry dynamic-offset.
	AnnotationArgStorageUniformDynamic AnnotationArg = "storage_uniform_dynamic"
)

// Provider identity arguments.
const (
	// AnnotationArgMaterial identifies the material provider.
	AnnotationArgMaterial AnnotationArg = "material"
)

// Material binding role arguments.
const (
	AnnotationArgAlbedoTexture AnnotationArg = "albedo_texture"
	AnnotationArgAlbedoSampler AnnotationArg = "albedo_sampler"
)

var validStructTypes = []AnnotationArg{
	AnnotationArgLight,
	AnnotationArgGlobalParams,
	AnnotationArgLocalParams,
}

var validAddressSpaces = []AnnotationArg{
	annotationArgStorageUniform,
	AnnotationArgStorageUniformDynamic,
}

var validProviderIdentities = []AnnotationArg{
	AnnotationArgMaterial,
}

var validBindingRoles = []AnnotationArg{
	AnnotationArgAlbedoTexture,
	AnnotationArgAlbedoSampler,
}

// parseAnnotation parses one line of WGSL as an @oxy: annotation.
// Lines without the prefix return nil and no error.
//
// Parameters:
//   - line: the raw WGSL source line
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: ErrMalformedAnnotation wrapped with the line and cause
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "//") {
		return nil, nil
	}
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, errors.Wrapf(ErrMalformedAnnotation, "line %d: empty annotation", lineNum)
	}

	switch AnnotationType(args[0]) {
	case annotationTypeInclude:
		if len(args) != 2 {
			return nil, errors.Wrapf(ErrMalformedAnnotation, "line %d: include takes exactly one struct type", lineNum)
		}
		if !slices.Contains(validStructTypes, AnnotationArg(args[1])) {
			return nil, errors.Wrapf(ErrMalformedAnnotation, "line %d: unknown struct type %q", lineNum, args[1])
		}
		return &Annotation{
			Type: annotationTypeInclude,
			Args: []AnnotationArg{AnnotationArg(args[1])},
			Line: lineNum,
		}, nil
	case AnnotationTypeBindingGroup:
		if len(args) != 6 {
			return nil, errors.Wrapf(ErrMalformedAnnotation, "line %d: group takes group, binding, address space, var name and struct type", lineNum)
		}
		group, binding, err := parseGroupBinding(args[1], args[2], lineNum)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(validAddressSpaces, AnnotationArg(args[3])) {
			return nil, errors.Wrapf(ErrMalformedAnnotation, "line %d: unknown address space %q", lineNum, args[3])
		}
		if !slices.Contains(validStructTypes, AnnotationArg(args[5])) {
			return nil, errors.Wrapf(ErrMalformedAnnotation, "line %d: unknown struct type %q", lineNum, args[5])
		}
		return &Annotation{
			Type:    AnnotationTypeBindingGroup,
			Args:    []AnnotationArg{AnnotationArg(args[3]), AnnotationArg(args[4]), AnnotationArg(args[5])},
			Line:    lineNum,
			Group:   &group,
			Binding: &binding,
		}, nil
	case AnnotationTypeProvider:
		if len(args) < 4 || len(args) > 5 {
			return nil, errors.Wrapf(ErrMalformedAnnotation, "line %d: provider takes group, binding, identity and an optional role", lineNum)
		}
		group, binding, err := parseGroupBinding(args[1], args[2], lineNum)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(validProviderIdentities, AnnotationArg(args[3])) {
			return nil, errors.Wrapf(ErrMalformedAnnotation, "line %d: unknown provider identity %q", lineNum, args[3])
		}
		providerArgs := []AnnotationArg{AnnotationArg(args[3])}
		if len(args) == 5 {
			if !slices.Contains(validBindingRoles, AnnotationArg(args[4])) {
				return nil, errors.Wrapf(ErrMalformedAnnotation, "line %d: unknown binding role %q", lineNum, args[4])
			}
			providerArgs = append(providerArgs, AnnotationArg(args[4]))
		}
		return &Annotation{
			Type:    AnnotationTypeProvider,
			Args:    providerArgs,
			Line:    lineNum,
			Group:   &group,
			Binding: &binding,
		}, nil
	default:
		return nil, errors.Wrapf(ErrMalformedAnnotation, "line %d: unknown annotation type %q", lineNum, args[0])
	}
}

func parseGroupBinding(groupArg, bindingArg string, lineNum int) (int, int, error) {
	group, err := strconv.Atoi(groupArg)
	if err != nil || group < 0 {
		return 0, 0, errors.Wrapf(ErrMalformedAnnotation, "line %d: invalid group %q", lineNum, groupArg)
	}
	binding, err := strconv.Atoi(bindingArg)
	if err != nil || binding < 0 {
		return 0, 0, errors.Wrapf(ErrMalformedAnnotation, "line %d: invalid binding %q", lineNum, bindingArg)
	}
	return group, binding, nil
}
