// Package engine runs the sandbox: it owns the window, the renderer and the active scene
// and drives them through one frame per window message loop iteration.
package engine

import (
	"log"
	"sync"

	"github.com/Carmen-Shannon/oxy-sandbox/common"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/camera"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/profiler"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/scene"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/window"
	"github.com/cockroachdb/errors"
)

// ErrNotConfigured is returned by Run when the engine has no window, renderer or scene.
var ErrNotConfigured = errors.New("engine: not configured")

// engine implements the Engine interface.
// Every frame runs on the goroutine that called Run, which is the window's thread.
type engine struct {
	mu sync.Mutex

	window     window.Window
	renderer   renderer.Renderer
	scene      scene.Scene
	assets     *renderer.Assets
	controller camera.CameraController
	source     *SceneSource

	profiler         *profiler.Profiler
	profilingEnabled bool

	tickCallback func(deltaTime float32)

	// reloadScene is set by the R key and served at the start of the next frame.
	reloadScene bool

	// releasers run in reverse order on Release.
	releasers []func()

	err      error
	quitOnce sync.Once
}

// Engine is the main entry point for the sandbox.
// It orchestrates the frame loop and routes window input to the camera and the renderer.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the renderer drawing the scene.
	Renderer() renderer.Renderer

	// Scene returns the active scene.
	Scene() scene.Scene

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickCallback registers the function called once per frame after input and before transforms.
	//
	// Parameters:
	//   - callback: function receiving the frame delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// ReloadScene rebuilds the scene and its assets from the scene source at the next frame.
	ReloadScene()

	// Run starts the frame loop and blocks until the window closes or a frame fails.
	//
	// Returns:
	//   - error: the error that stopped the loop, nil when the window was closed
	Run() error

	// Quit closes the window, which ends Run. Safe to call multiple times.
	Quit()

	// Release frees the assets, then every resource handed over with WithReleaser, then the renderer,
	// and destroys the window. Closing an already closed window is a no-op.
	Release()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine from already constructed collaborators.
// Use Setup to build one from a config with a real window and device.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		profiler: profiler.NewProfiler(),
	}
	for _, opt := range options {
		opt(e)
	}
	e.profiler.SetSilent(!e.profilingEnabled)
	if e.controller == nil && e.scene != nil {
		e.controller = camera.NewCameraController(e.scene.Camera())
	}
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Scene() scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scene
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
	e.profiler.SetSilent(false)
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
	e.profiler.SetSilent(true)
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) ReloadScene() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reloadScene = true
}

func (e *engine) Run() error {
	switch {
	case e.window == nil:
		return errors.Wrap(ErrNotConfigured, "window")
	case e.renderer == nil:
		return errors.Wrap(ErrNotConfigured, "renderer")
	case e.scene == nil:
		return errors.Wrap(ErrNotConfigured, "scene")
	}

	e.window.SetKeyDownCallback(e.handleKey)
	e.window.SetResizeCallback(e.handleResize)
	e.window.SetUpdateCallback(func() {
		if err := e.frame(); err != nil {
			e.fail(err)
		}
	})
	e.window.ProcessMessages()

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// frame runs one iteration: reload, input, tick, transforms, prepare, render.
// Events were already polled by the window loop that calls it.
func (e *engine) frame() error {
	dt, _ := e.profiler.Tick()

	if err := e.serveSceneReload(); err != nil {
		log.Printf("[Engine] scene reload failed, keeping the current scene: %v", err)
	}
	e.renderer.Reload()

	e.mu.Lock()
	sc, assets, controller := e.scene, e.assets, e.controller
	e.mu.Unlock()

	if controller != nil {
		controller.Update(e.window, dt)
	}
	if e.tickCallback != nil {
		e.tickCallback(dt)
	}
	sc.UpdateTransforms(sc.Camera().ViewProjection(), dt)

	if err := e.renderer.Prepare(sc, assets); err != nil {
		return errors.Wrap(err, "engine: prepare frame")
	}
	if err := e.renderer.Render(); err != nil {
		// A lost surface is recovered by the next resize; the frame is dropped.
		log.Printf("[Engine] frame dropped: %v", err)
	}
	return nil
}

// serveSceneReload swaps in a freshly loaded scene when one was requested.
func (e *engine) serveSceneReload() error {
	e.mu.Lock()
	requested := e.reloadScene
	e.reloadScene = false
	e.mu.Unlock()
	if !requested || e.source == nil {
		return nil
	}

	sc, assets, err := e.source.Load(e.aspect())
	if err != nil {
		return err
	}

	e.mu.Lock()
	old := e.assets
	e.scene, e.assets = sc, assets
	e.controller = e.rebindController(sc.Camera())
	e.mu.Unlock()

	e.source.Destroy(old, e.renderer.Linkages())
	if mode, err := renderer.ParseMode(sc.Mode()); err == nil && sc.Mode() != "" {
		e.renderer.SetMode(mode)
	}
	log.Printf("[Engine] reloaded scene %s: %d objects, %d lights", sc.Name(), sc.Count(), len(sc.Lights()))
	return nil
}

// rebindController keeps the controller's tuning while pointing it at cam.
func (e *engine) rebindController(cam camera.Camera) camera.CameraController {
	if e.controller == nil {
		return camera.NewCameraController(cam)
	}
	return camera.NewCameraController(cam,
		camera.WithSpeed(e.controller.Speed()),
		camera.WithSensitivity(e.controller.Sensitivity()),
	)
}

func (e *engine) aspect() float32 {
	if e.window == nil || e.window.Height() <= 0 {
		return 16.0 / 9.0
	}
	return float32(e.window.Width()) / float32(e.window.Height())
}

// handleKey serves the sandbox shortcuts. Movement keys are read from the window state instead.
func (e *engine) handleKey(key uint32) {
	switch key {
	case common.KeyM:
		e.renderer.ToggleMode()
	case common.Key1:
		e.renderer.SetMode(renderer.ModeTexturedQuad)
	case common.Key2:
		e.renderer.SetMode(renderer.ModeTexturedMeshes)
	case common.KeyR:
		e.ReloadScene()
	}
}

func (e *engine) handleResize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	e.renderer.Resize(width, height)
	if sc := e.Scene(); sc != nil {
		sc.Camera().SetAspect(float32(width) / float32(height))
	}
}

// fail records the first frame error and stops the loop.
func (e *engine) fail(err error) {
	log.Printf("[Engine] %v", err)
	e.mu.Lock()
	if e.err == nil {
		e.err = err
	}
	e.mu.Unlock()
	e.Quit()
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		if e.window == nil || !e.window.IsRunning() {
			return
		}
		if err := e.window.Close(); err != nil {
			log.Printf("[Engine] close window: %v", err)
		}
	})
}

func (e *engine) Release() {
	e.mu.Lock()
	assets := e.assets
	e.assets = nil
	e.mu.Unlock()

	if e.source != nil && e.renderer != nil {
		e.source.Destroy(assets, e.renderer.Linkages())
	}
	for i := len(e.releasers) - 1; i >= 0; i-- {
		e.releasers[i]()
	}
	e.releasers = nil
	if e.renderer != nil {
		e.renderer.Release()
	}
	if e.window != nil {
		if err := e.window.Close(); err != nil {
			log.Printf("[Engine] close window: %v", err)
		}
	}
}
