package renderer

import (
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/frame_params"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/linkage"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/texture"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithBackend sets the backend that executes frames.
//
// Parameters:
//   - b: the renderer backend
//
// Returns:
//   - RendererBuilderOption: a function that applies the backend option to a renderer
func WithBackend(b RendererBackend) RendererBuilderOption {
	return func(r *renderer) {
		r.backend = b
	}
}

// WithShaderLibrary sets the library holding the TEXTURED_GEOMETRY and TEXTURED_MESHES programs.
//
// Parameters:
//   - lib: the shader library
//
// Returns:
//   - RendererBuilderOption: a function that applies the library option to a renderer
func WithShaderLibrary(lib shader.Library) RendererBuilderOption {
	return func(r *renderer) {
		r.programs = lib
	}
}

// WithTextureLibrary sets the texture library and the built-in texture indices used as fallbacks.
//
// Parameters:
//   - lib: the texture library
//   - builtins: the indices returned by texture.RegisterBuiltins
//
// Returns:
//   - RendererBuilderOption: a function that applies the texture option to a renderer
func WithTextureLibrary(lib texture.Library, builtins texture.Builtins) RendererBuilderOption {
	return func(r *renderer) {
		r.textures = lib
		r.builtins = builtins
	}
}

// WithLinkageCache replaces the default linkage cache, which has no builder.
func WithLinkageCache(c linkage.Cache) RendererBuilderOption {
	return func(r *renderer) {
		if c != nil {
			r.linkages = c
		}
	}
}

// WithBindGroupProvider replaces the default host bind group provider.
func WithBindGroupProvider(p bind_group_provider.Provider) RendererBuilderOption {
	return func(r *renderer) {
		if p != nil {
			r.bindings = p
		}
	}
}

// WithFrameWriter sets the writer that fills the frame arena.
//
// Parameters:
//   - w: the frame parameter writer
//
// Returns:
//   - RendererBuilderOption: a function that applies the writer option to a renderer
func WithFrameWriter(w frame_params.Writer) RendererBuilderOption {
	return func(r *renderer) {
		r.writer = w
	}
}

// WithMode sets the starting render mode.
func WithMode(mode Mode) RendererBuilderOption {
	return func(r *renderer) {
		r.mode = mode
	}
}
