// Package shader loads WGSL programs, expands their @oxy: annotations, validates them,
// reflects their vertex inputs and recompiles them when their source file changes.
package shader

import (
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/linkage"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/vertex_layout"
	"github.com/cockroachdb/errors"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrCompile wraps every failure to turn a source file into a live program.
var ErrCompile = errors.New("shader: compile failed")

// nextIdentity hands out program identities. Zero is never used.
var nextIdentity atomic.Uint64

// program is the implementation of the Program interface.
type program struct {
	name     string
	path     string
	source   string
	identity uint64
	modTime  time.Time

	inputs vertex_layout.ShaderInputLayout

	vertexEntry   string
	fragmentEntry string

	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	bindingVarNames            map[int]map[int]string
	declarations               []Annotation

	module any
}

// Program is a compiled WGSL program with both a vertex and a fragment entry point.
// A Program value is immutable. A reload produces a new Program with a new identity.
type Program interface {
	linkage.Program

	// Name returns the program's registered name, e.g. "TEXTURED_MESHES".
	Name() string

	// Path returns the source file path.
	Path() string

	// Source returns the expanded WGSL source the module was created from.
	Source() string

	// ModTime returns the source file modification time at compile.
	ModTime() time.Time

	// VertexEntryPoint returns the @vertex function name.
	VertexEntryPoint() string

	// FragmentEntryPoint returns the @fragment function name.
	FragmentEntryPoint() string

	// BindGroupLayoutDescriptors returns the reflected layouts keyed by group index.
	// Bindings declared with storage_uniform_dynamic have HasDynamicOffset set.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName returns the variable declared at group and binding, or "".
	BindGroupVarName(group, binding int) string

	// Declarations returns the group and provider annotations of the source.
	Declarations() []Annotation

	// Module returns the backend shader module handle (*wgpu.ShaderModule on the wgpu backend).
	Module() any
}

var _ Program = &program{}

func (p *program) Identity() uint64                             { return p.identity }
func (p *program) InputLayout() vertex_layout.ShaderInputLayout { return p.inputs }
func (p *program) Label() string                                { return p.name }
func (p *program) Name() string                                 { return p.name }
func (p *program) Path() string                                 { return p.path }
func (p *program) Source() string                               { return p.source }
func (p *program) ModTime() time.Time                           { return p.modTime }
func (p *program) VertexEntryPoint() string                     { return p.vertexEntry }
func (p *program) FragmentEntryPoint() string                   { return p.fragmentEntry }
func (p *program) Declarations() []Annotation                   { return p.declarations }
func (p *program) Module() any                                  { return p.module }

func (p *program) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return p.bindGroupLayoutDescriptors
}

func (p *program) BindGroupVarName(group, binding int) string {
	return p.bindingVarNames[group][binding]
}

// Validator checks a fully expanded WGSL source.
type Validator func(source string) error

// programHeader stands in for a per-program define; WGSL has no preprocessor.
func programHeader(name string) string {
	return fmt.Sprintf("// program: %s\n", name)
}

// Compile turns raw WGSL into a Program without creating a device module.
// The result carries a fresh identity.
//
// Parameters:
//   - name: the program name written into the header
//   - path: the source path recorded on the program
//   - raw: the unexpanded WGSL source
//   - validate: the validator run on the expanded source, nil to skip
//
// Returns:
//   - Program: the compiled program
//   - error: ErrCompile wrapped with the pre-processor, validator or reflection diagnostic
func Compile(name, path, raw string, validate Validator) (Program, error) {
	p, err := compile(name, path, raw, validate)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func compile(name, path, raw string, validate Validator) (*program, error) {
	pp := NewPreProcessor()
	expanded, err := pp.Process(raw)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "program %s (%s): pre-process", name, path), ErrCompile)
	}
	source := programHeader(name) + expanded
	if validate != nil {
		if err := validate(source); err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "program %s (%s): validate", name, path), ErrCompile)
		}
	}
	inputs, err := Reflect(source)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "program %s (%s): reflect", name, path), ErrCompile)
	}

	cleaned := stripComments(source)
	vertex, _ := parseEntryPoint(cleaned, vertexEntryRegex)
	fragment, ok := parseEntryPoint(cleaned, fragmentEntryRegex)
	if !ok {
		return nil, errors.Mark(errors.Newf("program %s (%s): no @fragment entry point", name, path), ErrCompile)
	}

	declarations := pp.Declarations()
	layouts, varNames := parseBindGroupLayouts(source, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment)
	markDynamicOffsets(layouts, declarations)

	return &program{
		name:                       name,
		path:                       path,
		source:                     source,
		identity:                   nextIdentity.Add(1),
		inputs:                     inputs,
		vertexEntry:                vertex.name,
		fragmentEntry:              fragment.name,
		bindGroupLayoutDescriptors: layouts,
		bindingVarNames:            varNames,
		declarations:               declarations,
	}, nil
}

// markDynamicOffsets flags the layout entries declared with storage_uniform_dynamic.
func markDynamicOffsets(layouts map[int]wgpu.BindGroupLayoutDescriptor, declarations []Annotation) {
	for _, decl := range declarations {
		if !decl.Dynamic() {
			continue
		}
		desc, ok := layouts[*decl.Group]
		if !ok {
			continue
		}
		for i := range desc.Entries {
			if desc.Entries[i].Binding == uint32(*decl.Binding) {
				desc.Entries[i].Buffer.HasDynamicOffset = true
			}
		}
	}
}

// logCompileError logs the full diagnostic of a compile failure.
func logCompileError(err error) {
	log.Printf("[Shader] %v", err)
}
