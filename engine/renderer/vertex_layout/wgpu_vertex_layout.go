package vertex_layout

import (
	"github.com/cockroachdb/errors"
	"github.com/cogentcore/webgpu/wgpu"
)

// floatVertexFormats maps a float component count to the wgpu vertex format.
var floatVertexFormats = map[uint32]wgpu.VertexFormat{
	1: wgpu.VertexFormatFloat32,
	2: wgpu.VertexFormatFloat32x2,
	3: wgpu.VertexFormatFloat32x3,
	4: wgpu.VertexFormatFloat32x4,
}

// VertexFormat returns the float vertex format for a component count.
//
// Parameters:
//   - componentCount: number of float components, 1 through 4
//
// Returns:
//   - wgpu.VertexFormat: the matching Float32xN format
//   - error: an error if the count is out of range
func VertexFormat(componentCount uint32) (wgpu.VertexFormat, error) {
	format, ok := floatVertexFormats[componentCount]
	if !ok {
		return 0, errors.Wrapf(ErrInvalidComponentCount, "no float vertex format with %d components", componentCount)
	}
	return format, nil
}

// ToWGPU converts a BindingPlan into a single wgpu vertex buffer layout.
// wgpu attribute offsets are relative to the vertex record, so LayoutOffset is used and
// the plan's BaseOffset is applied as the SetVertexBuffer offset at draw time.
//
// Parameters:
//   - plan: the resolved binding plan
//
// Returns:
//   - wgpu.VertexBufferLayout: the per-vertex buffer layout
//   - error: an error if a binding has an invalid component count
func ToWGPU(plan BindingPlan) (wgpu.VertexBufferLayout, error) {
	attrs := make([]wgpu.VertexAttribute, 0, len(plan.Bindings))
	for _, b := range plan.Bindings {
		format, err := VertexFormat(b.ComponentCount)
		if err != nil {
			return wgpu.VertexBufferLayout{}, err
		}
		attrs = append(attrs, wgpu.VertexAttribute{
			Format:         format,
			Offset:         b.LayoutOffset,
			ShaderLocation: b.Location,
		})
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: plan.Stride,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attrs,
	}, nil
}
