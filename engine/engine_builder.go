package engine

import (
	"github.com/Carmen-Shannon/oxy-sandbox/engine/camera"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/scene"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithWindow sets the window whose message loop drives the frames.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer sets the renderer that plans and draws each frame.
//
// Parameters:
//   - r: the renderer
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithScene sets the starting scene and the assets its objects reference.
//
// Parameters:
//   - s: the scene
//   - assets: the uploaded meshes and materials, may be nil in textured quad mode
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(s scene.Scene, assets *renderer.Assets) EngineBuilderOption {
	return func(e *engine) {
		e.scene = s
		e.assets = assets
	}
}

// WithSceneSource sets where ReloadScene rebuilds the scene from.
func WithSceneSource(src *SceneSource) EngineBuilderOption {
	return func(e *engine) {
		e.source = src
	}
}

// WithCameraController replaces the default controller of the scene camera.
func WithCameraController(c camera.CameraController) EngineBuilderOption {
	return func(e *engine) {
		e.controller = c
	}
}

// WithReleaser registers a cleanup run by Release before the renderer and its device are released.
// Releasers run in reverse registration order.
func WithReleaser(release func()) EngineBuilderOption {
	return func(e *engine) {
		if release != nil {
			e.releasers = append(e.releasers, release)
		}
	}
}
