package shader

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/frame_params"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/vertex_layout"
	"github.com/cockroachdb/errors"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const texturedGeometrySource = `
struct VertexOutput {
    @builtin(position) clip: vec4f,
    @location(0) uv: vec2f,
};

@group(0) @binding(0) var albedo: texture_2d<f32>;
@group(0) @binding(1) var albedo_sampler: sampler;

// @vertex fn decoy(@location(9) never: vec4f) -> VertexOutput {}
/* @vertex fn nested(@location(8) x: f32) /* inner */ */

@vertex
fn vs_main(@location(0) position: vec3f, @location(2) uv: vec2f) -> VertexOutput {
    var out: VertexOutput;
    out.clip = vec4f(position, 1.0);
    out.uv = uv;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4f {
    return textureSample(albedo, albedo_sampler, in.uv);
}
`

const texturedMeshesSource = `
//@oxy:include light
//@oxy:include global_params
//@oxy:include local_params
//@oxy:group 0 0 storage_uniform_dynamic global global_params
//@oxy:group 0 1 storage_uniform_dynamic local local_params

//@oxy:provider 1 0 material albedo_texture
@group(1) @binding(0) var albedo: texture_2d<f32>;
//@oxy:provider 1 1 material albedo_sampler
@group(1) @binding(1) var albedo_sampler: sampler;

struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(1) normal: vec3f,
    @location(2) uv: vec2f,
};

struct VertexOutput {
    @builtin(position) clip: vec4f,
    @location(0) uv: vec2f,
    @location(1) normal: vec3f,
};

@vertex
fn vs_main(in: VertexInput, @builtin(vertex_index) index: u32) -> VertexOutput {
    var out: VertexOutput;
    out.clip = local.world_view_projection * vec4f(in.position, 1.0);
    out.uv = in.uv;
    out.normal = (local.world * vec4f(in.normal, 0.0)).xyz;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4f {
    return textureSample(albedo, albedo_sampler, in.uv);
}
`

func inputs(pairs ...uint32) vertex_layout.ShaderInputLayout {
	var l vertex_layout.ShaderInputLayout
	for i := 0; i+1 < len(pairs); i += 2 {
		l.Inputs = append(l.Inputs, vertex_layout.ShaderInput{Location: pairs[i], ComponentCount: pairs[i+1]})
	}
	return l
}

func TestReflect(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   vertex_layout.ShaderInputLayout
		err    error
	}{
		{
			name:   "location parameters",
			source: texturedGeometrySource,
			want:   inputs(0, 3, 2, 2),
		},
		{
			name: "struct parameter with builtin",
			source: `struct VertexInput {
    @location(0) position: vec3<f32>,
    @location(1) normal: vec3f,
    @location(2) uv: vec2f,
};
@vertex fn main(in: VertexInput, @builtin(instance_index) i: u32) -> @builtin(position) vec4f { return vec4f(); }`,
			want: inputs(0, 3, 1, 3, 2, 2),
		},
		{
			name:   "scalar and vec4",
			source: `@vertex fn main(@location(3) w: f32, @location(1) c: vec4<f32>) -> @builtin(position) vec4f { return c; }`,
			want:   inputs(3, 1, 1, 4),
		},
		{
			name:   "no vertex entry",
			source: `@fragment fn main() -> @location(0) vec4f { return vec4f(); }`,
			err:    ErrNoVertexEntry,
		},
		{
			name:   "matrix input",
			source: `@vertex fn main(@location(0) m: mat4x4f) -> @builtin(position) vec4f { return m[0]; }`,
			err:    ErrUnsupportedInputType,
		},
		{
			name:   "unknown struct",
			source: `@vertex fn main(in: Missing) -> @builtin(position) vec4f { return vec4f(); }`,
			err:    ErrUnsupportedInputType,
		},
		{
			name:   "duplicate location",
			source: `@vertex fn main(@location(0) a: vec3f, @location(0) b: vec2f) -> @builtin(position) vec4f { return vec4f(); }`,
			err:    ErrDuplicateLocation,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Reflect(tc.source)
			if tc.err != nil {
				assert.True(t, errors.Is(err, tc.err), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCompileTexturedMeshes(t *testing.T) {
	p, err := Compile("TEXTURED_MESHES", "textured_meshes.wgsl", texturedMeshesSource, nil)
	require.NoError(t, err)

	assert.Equal(t, inputs(0, 3, 1, 3, 2, 2), p.InputLayout())
	assert.Equal(t, "vs_main", p.VertexEntryPoint())
	assert.Equal(t, "fs_main", p.FragmentEntryPoint())
	assert.Contains(t, p.Source(), "// program: TEXTURED_MESHES")
	assert.Contains(t, p.Source(), "@group(0) @binding(1) var<uniform> local: LocalParams;")
	assert.Equal(t, "local", p.BindGroupVarName(0, 1))
	assert.Equal(t, "", p.BindGroupVarName(3, 0))

	layouts := p.BindGroupLayoutDescriptors()
	require.Len(t, layouts[0].Entries, 2)
	global, local := layouts[0].Entries[0], layouts[0].Entries[1]
	assert.Equal(t, wgpu.BufferBindingTypeUniform, global.Buffer.Type)
	assert.True(t, global.Buffer.HasDynamicOffset)
	assert.Equal(t, uint64(frame_params.GlobalBindingSize), global.Buffer.MinBindingSize)
	assert.True(t, local.Buffer.HasDynamicOffset)
	assert.Equal(t, uint64(frame_params.LocalBlockSize), local.Buffer.MinBindingSize)

	require.Len(t, layouts[1].Entries, 2)
	assert.Equal(t, wgpu.TextureSampleTypeFloat, layouts[1].Entries[0].Texture.SampleType)
	assert.Equal(t, wgpu.TextureViewDimension2D, layouts[1].Entries[0].Texture.ViewDimension)
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, layouts[1].Entries[1].Sampler.Type)

	decls := p.Declarations()
	require.Len(t, decls, 4)
	assert.True(t, decls[0].Dynamic())
	assert.Equal(t, AnnotationTypeProvider, decls[2].Type)
	assert.Equal(t, AnnotationArgAlbedoTexture, decls[2].Args[1])
}

func TestCompileAssignsFreshIdentity(t *testing.T) {
	a, err := Compile("A", "a.wgsl", texturedGeometrySource, nil)
	require.NoError(t, err)
	b, err := Compile("A", "a.wgsl", texturedGeometrySource, nil)
	require.NoError(t, err)

	assert.NotZero(t, a.Identity())
	assert.NotEqual(t, a.Identity(), b.Identity())
	assert.Equal(t, a.InputLayout(), b.InputLayout())
}

func TestCompileFailures(t *testing.T) {
	rejected := errors.New("rejected")
	tests := []struct {
		name     string
		source   string
		validate Validator
	}{
		{name: "validator", source: texturedGeometrySource, validate: func(string) error { return rejected }},
		{name: "annotation", source: "//@oxy:include camera\n" + texturedGeometrySource},
		{name: "no fragment", source: `@vertex fn main(@location(0) p: vec3f) -> @builtin(position) vec4f { return vec4f(p, 1.0); }`},
		{name: "reflection", source: `@vertex fn main(@location(0) m: mat4x4f) -> @builtin(position) vec4f { return m[0]; }`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Compile("BROKEN", "broken.wgsl", tc.source, tc.validate)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrCompile))
		})
	}
}

func TestNagaValidatorRejectsInvalidSource(t *testing.T) {
	assert.Error(t, NagaValidator("fn broken( {"))
}
