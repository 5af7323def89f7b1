package renderer

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-sandbox/engine/game_object"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/arena"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/frame_params"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/texture"
	"github.com/cockroachdb/errors"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		name string
		want Mode
		err  bool
	}{
		{"", ModeTexturedQuad, false},
		{"textured_quad", ModeTexturedQuad, false},
		{"TEXTURED_MESHES", ModeTexturedMeshes, false},
		{"deferred", ModeTexturedQuad, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMode(tt.name)
			if tt.err {
				assert.True(t, errors.Is(err, ErrUnknownMode))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestModeNextWrapsAround(t *testing.T) {
	assert.Equal(t, ModeTexturedMeshes, ModeTexturedQuad.Next())
	assert.Equal(t, ModeTexturedQuad, ModeTexturedMeshes.Next())
	assert.Equal(t, "textured_meshes", ModeTexturedMeshes.String())
	assert.Equal(t, "unknown", Mode(42).String())
	assert.Equal(t, ProgramTexturedGeometry, ModeTexturedQuad.ProgramName())
	assert.Equal(t, ProgramTexturedMeshes, ModeTexturedMeshes.ProgramName())
}

func TestArenaSizing(t *testing.T) {
	limits := wgpu.Limits{MaxUniformBufferBindingSize: 65536, MinUniformBufferOffsetAlignment: 256}

	capacity, alignment := ArenaSizing(limits, 0)
	assert.Equal(t, uint64(65536), capacity)
	assert.Equal(t, uint64(256), alignment)

	capacity, _ = ArenaSizing(limits, 8192)
	assert.Equal(t, uint64(8192), capacity)

	// An override cannot exceed what one binding may address.
	capacity, _ = ArenaSizing(limits, 1<<20)
	assert.Equal(t, uint64(65536), capacity)

	_, alignment = ArenaSizing(wgpu.Limits{MaxUniformBufferBindingSize: 1024}, 0)
	assert.Equal(t, uint64(1), alignment)
}

func TestPresentMode(t *testing.T) {
	assert.Equal(t, wgpu.PresentModeFifo, presentMode(PresentModeVSync))
	assert.Equal(t, wgpu.PresentModeImmediate, presentMode(PresentModeUncapped))
}

func TestNewRenderer_MissingDependencies(t *testing.T) {
	programs, err := shader.NewLibrary(shader.WithModuleBackend(shader.NewHostModuleBackend()), shader.WithValidator(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = programs.Close() })
	textures := texture.NewLibrary(texture.WithBackend(texture.NewHostBackend()))
	writer := frame_params.NewWriter(nil)

	tests := []struct {
		name    string
		options []RendererBuilderOption
	}{
		{"backend", []RendererBuilderOption{WithShaderLibrary(programs), WithTextureLibrary(textures, texture.Builtins{}), WithFrameWriter(writer)}},
		{"shader library", []RendererBuilderOption{WithBackend(&recordingBackend{}), WithTextureLibrary(textures, texture.Builtins{}), WithFrameWriter(writer)}},
		{"texture library", []RendererBuilderOption{WithBackend(&recordingBackend{}), WithShaderLibrary(programs), WithFrameWriter(writer)}},
		{"frame writer", []RendererBuilderOption{WithBackend(&recordingBackend{}), WithShaderLibrary(programs), WithTextureLibrary(textures, texture.Builtins{})}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRenderer(tt.options...)
			assert.Nil(t, r)
			assert.True(t, errors.Is(err, ErrMissingDependency))
			assert.Contains(t, err.Error(), tt.name)
		})
	}
}

func TestRenderer_ToggleMode(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, ModeTexturedQuad, h.renderer.Mode())
	assert.Equal(t, ModeTexturedMeshes, h.renderer.ToggleMode())
	assert.Equal(t, ModeTexturedMeshes, h.renderer.Mode())
	h.renderer.SetMode(ModeTexturedQuad)
	assert.Equal(t, ModeTexturedQuad, h.renderer.Mode())
}

func TestRenderer_PrepareWithoutProgram(t *testing.T) {
	programs, err := shader.NewLibrary(shader.WithModuleBackend(shader.NewHostModuleBackend()), shader.WithValidator(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = programs.Close() })

	h := newHarness(t, WithShaderLibrary(programs))
	err = h.renderer.Prepare(twoQuadScene(), quadAssets(t, h, h.builtins.White))
	assert.True(t, errors.Is(err, ErrProgramNotLoaded))
	assert.Empty(t, h.renderer.Commands())
}

func TestRenderer_PrepareFailureClearsFrame(t *testing.T) {
	h := newHarness(t, WithMode(ModeTexturedMeshes))
	assets := quadAssets(t, h, h.builtins.White)
	sc := twoQuadScene()
	sc.UpdateTransforms(sc.Camera().ViewProjection(), 0)
	require.NoError(t, h.renderer.Prepare(sc, assets))
	require.Len(t, h.renderer.Commands(), 2)

	// 4096 bytes at a 256 byte stride hold 15 local blocks after the global block.
	var extra []uuid.UUID
	for range 16 {
		extra = append(extra, sc.AddObject(game_object.NewGameObject(game_object.WithModel(0))))
	}
	sc.UpdateTransforms(sc.Camera().ViewProjection(), 0)
	err := h.renderer.Prepare(sc, assets)
	assert.True(t, errors.Is(err, arena.ErrOutOfCapacity))
	assert.Empty(t, h.renderer.Commands())
	assert.Equal(t, frame_params.StateClosed, h.writer.State())

	for _, id := range extra {
		require.True(t, sc.RemoveObject(id))
	}
	require.NoError(t, h.renderer.Prepare(sc, assets))
	assert.Len(t, h.renderer.Commands(), 2)
}

func TestRenderer_RenderSurfaceFailure(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.renderer.Prepare(twoQuadScene(), quadAssets(t, h, h.builtins.White)))

	surfaceLost := errors.New("surface lost")
	h.backend.beginErr = surfaceLost
	err := h.renderer.Render()
	assert.True(t, errors.Is(err, surfaceLost))
	assert.Equal(t, 0, h.backend.presented)

	h.backend.beginErr = nil
	require.NoError(t, h.renderer.Render())
	assert.Equal(t, 1, h.backend.presented)
	assert.Len(t, h.backend.frames[0], 1)
}

func TestRenderer_ResizeIgnoresEmptySurface(t *testing.T) {
	h := newHarness(t)
	h.renderer.Resize(0, 720)
	assert.Zero(t, h.backend.width)

	h.renderer.Resize(1280, 720)
	assert.Equal(t, 1280, h.backend.width)
	assert.Equal(t, 720, h.backend.height)
}

func TestRenderer_Release(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.renderer.Prepare(twoQuadScene(), quadAssets(t, h, h.builtins.White)))
	require.Equal(t, 1, h.groups.Live())

	h.renderer.Release()
	assert.True(t, h.backend.released)
	assert.Equal(t, 0, h.groups.Live())
	assert.Equal(t, 0, h.bindings.Len())
}
