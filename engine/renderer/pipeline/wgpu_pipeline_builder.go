package pipeline

import (
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/linkage"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/vertex_layout"
	"github.com/cockroachdb/errors"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrNotShaderProgram is returned when the linkage program is not a compiled shader.Program.
var ErrNotShaderProgram = errors.New("pipeline: program is not a shader program")

// wgpuPipelineBuilderImpl creates one render pipeline per linkage.
type wgpuPipelineBuilderImpl struct {
	device   *wgpu.Device
	bindings bind_group_provider.Provider
	state    State
	format   wgpu.TextureFormat
}

var (
	_ linkage.Builder  = &wgpuPipelineBuilderImpl{}
	_ linkage.Releaser = &wgpuPipelineBuilderImpl{}
)

// NewWGPUBuilder creates the linkage Builder that turns a binding plan into a *wgpu.RenderPipeline.
// Pipeline layouts come from bindings so the pipelines and the bind groups share layout objects.
//
// Parameters:
//   - device: the device that owns the pipelines
//   - bindings: the provider holding each program's layouts
//   - state: the fixed-function state of every pipeline
//   - format: the surface color format
//
// Returns:
//   - linkage.Builder: the pipeline builder, which also implements linkage.Releaser
func NewWGPUBuilder(device *wgpu.Device, bindings bind_group_provider.Provider, state State, format wgpu.TextureFormat) linkage.Builder {
	return &wgpuPipelineBuilderImpl{
		device:   device,
		bindings: bindings,
		state:    state,
		format:   format,
	}
}

func (b *wgpuPipelineBuilderImpl) Build(submesh linkage.Bindable, program linkage.Program, plan vertex_layout.BindingPlan) (any, error) {
	prog, ok := program.(shader.Program)
	if !ok {
		return nil, errors.Wrapf(ErrNotShaderProgram, "%T", program)
	}
	module, ok := prog.Module().(*wgpu.ShaderModule)
	if !ok || module == nil {
		return nil, errors.Newf("program %q has no shader module", prog.Label())
	}

	layouts, err := b.bindings.Layouts(prog)
	if err != nil {
		return nil, err
	}
	pipelineLayout, _ := layouts.Pipeline.(*wgpu.PipelineLayout)

	vertexLayout, err := vertex_layout.ToWGPU(plan)
	if err != nil {
		return nil, err
	}

	desc := Descriptor(b.state, prog.Label()+" Render Pipeline", module, prog.VertexEntryPoint(), prog.FragmentEntryPoint(), pipelineLayout, vertexLayout, b.format)
	created, err := b.device.CreateRenderPipeline(desc)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create render pipeline for %q", prog.Label())
	}
	return created, nil
}

func (b *wgpuPipelineBuilderImpl) Release(handle any) {
	if p, ok := handle.(*wgpu.RenderPipeline); ok && p != nil {
		p.Release()
	}
}

// Descriptor assembles the render pipeline descriptor for one program and vertex layout.
//
// Parameters:
//   - state: the fixed-function state
//   - label: the debug label
//   - module: the shader module holding both entry points
//   - vertexEntry: the @vertex function name
//   - fragmentEntry: the @fragment function name
//   - layout: the pipeline layout
//   - vertexLayout: the single interleaved vertex buffer layout
//   - format: the surface color format
//
// Returns:
//   - *wgpu.RenderPipelineDescriptor: the descriptor passed to CreateRenderPipeline
func Descriptor(state State, label string, module *wgpu.ShaderModule, vertexEntry, fragmentEntry string, layout *wgpu.PipelineLayout, vertexLayout wgpu.VertexBufferLayout, format wgpu.TextureFormat) *wgpu.RenderPipelineDescriptor {
	return &wgpu.RenderPipelineDescriptor{
		Label:  label,
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: vertexEntry,
			Buffers:    []wgpu.VertexBufferLayout{vertexLayout},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: fragmentEntry,
			Targets:    []wgpu.ColorTargetState{state.ColorTarget(format)},
		},
		Primitive:    state.Primitive(),
		DepthStencil: state.DepthStencil(),
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	}
}
