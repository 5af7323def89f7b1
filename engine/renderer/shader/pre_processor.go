// pre_processor.go expands @oxy: annotations in WGSL source. Includes are replaced with
// the embedded frame parameter structs, group annotations become @group/@binding
// declarations, and the group and provider annotations are collected so the renderer
// can wire the arena buffer and material resources without name lookups.
package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/frame_params"
	"github.com/cockroachdb/errors"
)

// registryEntry pairs an embedded WGSL struct source with its type name.
type registryEntry struct {
	Source string
	Type   string

	// Requires lists struct types that must be included before this one.
	Requires []AnnotationArg
}

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	structRegistry       map[AnnotationArg]registryEntry
	addressSpaceRegistry map[AnnotationArg]string

	declarations []Annotation
}

// PreProcessor expands @oxy: annotations and records the resulting binding declarations.
type PreProcessor interface {
	// Process expands the annotations of source. The declarations list is reset on every call.
	//
	// Parameters:
	//   - source: the raw WGSL source
	//
	// Returns:
	//   - string: the expanded WGSL source
	//   - error: ErrMalformedAnnotation, a duplicate binding, or an include missing its dependency
	Process(source string) (string, error)

	// Declarations returns the group and provider annotations of the last Process call in source order.
	//
	// Returns:
	//   - []Annotation: the collected declarations
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor with the frame parameter structs registered.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		structRegistry: map[AnnotationArg]registryEntry{
			AnnotationArgLight:        {Source: frame_params.GPULightSource, Type: "Light"},
			AnnotationArgGlobalParams: {Source: frame_params.GPUGlobalParamsSource, Type: "GlobalParams", Requires: []AnnotationArg{AnnotationArgLight}},
			AnnotationArgLocalParams:  {Source: frame_params.GPULocalParamsSource, Type: "LocalParams"},
		},
		addressSpaceRegistry: map[AnnotationArg]string{
			annotationArgStorageUniform:        "var<uniform>",
			AnnotationArgStorageUniformDynamic: "var<uniform>",
		},
	}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]
	included := make(map[AnnotationArg]bool)
	bound := make(map[[2]int]int)

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
			if included[a.Args[0]] {
				continue
			}
			entry := p.structRegistry[a.Args[0]]
			for _, dep := range entry.Requires {
				if !included[dep] {
					return "", errors.Newf("line %d: include %s requires %s to be included first", a.Line, a.Args[0], dep)
				}
			}
			included[a.Args[0]] = true
			out = append(out, entry.Source)
		case AnnotationTypeBindingGroup, AnnotationTypeProvider:
			key := [2]int{*a.Group, *a.Binding}
			if prev, ok := bound[key]; ok {
				return "", errors.Newf("line %d: @group(%d) @binding(%d) already declared on line %d", a.Line, *a.Group, *a.Binding, prev)
			}
			bound[key] = a.Line
			if a.Type == AnnotationTypeBindingGroup {
				entry := p.structRegistry[a.Args[2]]
				out = append(out, fmt.Sprintf("@group(%d) @binding(%d) %s %s: %s;", *a.Group, *a.Binding, p.addressSpaceRegistry[a.Args[0]], a.Args[1], entry.Type))
			}
			p.declarations = append(p.declarations, *a)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	out := make([]Annotation, len(p.declarations))
	copy(out, p.declarations)
	return out
}
