package vertex_layout

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// positionUV is a float3 position at 0 and a float2 uv at 12, stride 20.
var positionUV = VertexBufferLayout{
	Attributes: []VertexAttribute{
		{Location: 0, ComponentCount: 3, Offset: 0},
		{Location: 1, ComponentCount: 2, Offset: 12},
	},
	Stride: 20,
}

func TestResolveMatchesByLocation(t *testing.T) {
	shader := ShaderInputLayout{Inputs: []ShaderInput{{0, 3}, {1, 2}}}

	plan, err := Resolve(shader, positionUV, 0)
	require.NoError(t, err)
	require.Len(t, plan.Bindings, 2)

	assert.Equal(t, Binding{Location: 0, ComponentCount: 3, Stride: 20, ByteOffset: 0, LayoutOffset: 0}, plan.Bindings[0])
	assert.Equal(t, Binding{Location: 1, ComponentCount: 2, Stride: 20, ByteOffset: 12, LayoutOffset: 12}, plan.Bindings[1])
	assert.Equal(t, uint64(20), plan.Stride)
}

func TestResolveUnsatisfiedInput(t *testing.T) {
	shader := ShaderInputLayout{Inputs: []ShaderInput{{0, 3}, {5, 4}}}

	_, err := Resolve(shader, positionUV, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsatisfiedInput))
	assert.Contains(t, err.Error(), "location 5")
}

func TestResolveAppliesBaseOffset(t *testing.T) {
	shader := ShaderInputLayout{Inputs: []ShaderInput{{1, 2}, {0, 3}}}

	plan, err := Resolve(shader, positionUV, 400)
	require.NoError(t, err)

	// declaration order of the shader is kept
	assert.Equal(t, []uint32{1, 0}, []uint32{plan.Bindings[0].Location, plan.Bindings[1].Location})
	assert.Equal(t, uint64(412), plan.Bindings[0].ByteOffset)
	assert.Equal(t, uint64(12), plan.Bindings[0].LayoutOffset)
	assert.Equal(t, uint64(400), plan.Bindings[1].ByteOffset)
	assert.Equal(t, uint64(400), plan.BaseOffset)
}

func TestResolveIgnoresExtraAttributes(t *testing.T) {
	full := VertexBufferLayout{
		Attributes: []VertexAttribute{
			{Location: 0, ComponentCount: 3, Offset: 0},
			{Location: 1, ComponentCount: 3, Offset: 12},
			{Location: 2, ComponentCount: 2, Offset: 24},
			{Location: 3, ComponentCount: 3, Offset: 32},
		},
		Stride: 44,
	}
	shader := ShaderInputLayout{Inputs: []ShaderInput{{0, 3}, {2, 2}}}

	plan, err := Resolve(shader, full, 0)
	require.NoError(t, err)
	require.Len(t, plan.Bindings, 2)
	assert.Equal(t, uint64(24), plan.Bindings[1].ByteOffset)
	assert.Equal(t, uint64(44), plan.Bindings[1].Stride)
}

func TestResolveEmptyShaderLayout(t *testing.T) {
	plan, err := Resolve(ShaderInputLayout{}, positionUV, 0)
	require.NoError(t, err)
	assert.Empty(t, plan.Bindings)
}

func TestResolveComponentCountMismatch(t *testing.T) {
	shader := ShaderInputLayout{Inputs: []ShaderInput{{0, 4}}}

	_, err := Resolve(shader, positionUV, 0)
	assert.True(t, errors.Is(err, ErrLayoutMismatch))

	lenient := NewMatcher(WithStrictComponentCount(false))
	plan, err := lenient.Resolve(shader, positionUV, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), plan.Bindings[0].ComponentCount)
}

func TestResolveInvalidComponentCount(t *testing.T) {
	tests := []struct {
		name   string
		shader ShaderInputLayout
		vertex VertexBufferLayout
	}{
		{
			name:   "shader input with zero components",
			shader: ShaderInputLayout{Inputs: []ShaderInput{{0, 0}}},
			vertex: positionUV,
		},
		{
			name:   "shader input with five components",
			shader: ShaderInputLayout{Inputs: []ShaderInput{{0, 5}}},
			vertex: positionUV,
		},
		{
			name:   "vertex attribute with five components",
			shader: ShaderInputLayout{Inputs: []ShaderInput{{0, 3}}},
			vertex: VertexBufferLayout{Attributes: []VertexAttribute{{0, 5, 0}}, Stride: 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.shader, tt.vertex, 0)
			assert.True(t, errors.Is(err, ErrInvalidComponentCount))
		})
	}
}

func TestToWGPU(t *testing.T) {
	shader := ShaderInputLayout{Inputs: []ShaderInput{{0, 3}, {1, 2}}}
	plan, err := Resolve(shader, positionUV, 1000)
	require.NoError(t, err)

	layout, err := ToWGPU(plan)
	require.NoError(t, err)
	assert.Equal(t, uint64(20), layout.ArrayStride)
	assert.Equal(t, wgpu.VertexStepModeVertex, layout.StepMode)
	require.Len(t, layout.Attributes, 2)
	assert.Equal(t, wgpu.VertexFormatFloat32x3, layout.Attributes[0].Format)
	assert.Equal(t, wgpu.VertexFormatFloat32x2, layout.Attributes[1].Format)
	// attribute offsets stay record-relative, the base goes to SetVertexBuffer
	assert.Equal(t, uint64(12), layout.Attributes[1].Offset)
	assert.Equal(t, uint32(1), layout.Attributes[1].ShaderLocation)
}

func TestVertexBufferLayoutHelpers(t *testing.T) {
	attr, ok := positionUV.Attribute(1)
	assert.True(t, ok)
	assert.Equal(t, uint64(12), attr.Offset)

	_, ok = positionUV.Attribute(9)
	assert.False(t, ok)

	assert.Equal(t, 5, positionUV.FloatsPerVertex())
	assert.Equal(t, []uint32{0, 1}, ShaderInputLayout{Inputs: []ShaderInput{{0, 3}, {1, 2}}}.Locations())
}
