package engine

import (
	"log"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-sandbox/engine/camera"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/config"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/loader"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/model"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/arena"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/frame_params"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/linkage"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/texture"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/scene"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/window"
	"github.com/cockroachdb/errors"
)

// Shader files loaded from the configured shader directory.
const (
	texturedGeometryFile = "textured_geometry.wgsl"
	texturedMeshesFile   = "textured_meshes.wgsl"
)

// Setup opens the window and the device and builds every renderer collaborator from cfg, then loads
// the configured scene. The device is created on the calling goroutine, which must also call Run.
//
// Parameters:
//   - cfg: the validated configuration
//   - progress: receives texture preload progress, may be nil
//   - options: further engine options applied after the built collaborators
//
// Returns:
//   - Engine: the ready engine; call Release after Run returns
//   - error: a window, arena, shader compile or scene load error
func Setup(cfg config.Config, progress func(done, total int), options ...EngineBuilderOption) (Engine, error) {
	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
	)
	if err != nil {
		return nil, errors.Wrap(err, "engine: open window")
	}
	// releasers free what Setup built on the device, in reverse order, before the device itself.
	var releasers []func()
	cleanup := func(releaseDevice func()) {
		for i := len(releasers) - 1; i >= 0; i-- {
			releasers[i]()
		}
		releaseDevice()
		_ = win.Close()
	}

	present := renderer.PresentModeUncapped
	if cfg.Window.VSync {
		present = renderer.PresentModeVSync
	}
	backend := renderer.NewWGPUBackend(win.SurfaceDescriptor(), present, false)
	backend.ConfigureSurface(win.Width(), win.Height())

	capacity, alignment := renderer.ArenaSizing(backend.Limits(), cfg.Renderer.ArenaCapacity)
	frameArena, err := arena.NewArena(
		arena.WithCapacity(capacity),
		arena.WithAlignment(alignment),
		arena.WithBackend(arena.NewWGPUBackend(backend.Device(), backend.Queue())),
		arena.WithLabel("Frame Params Arena"),
	)
	if err != nil {
		cleanup(backend.Release)
		return nil, errors.Wrap(err, "engine: frame arena")
	}
	releaseDevice := func() {
		frameArena.Release()
		backend.Release()
	}

	programs, err := shader.NewLibrary(
		shader.WithModuleBackend(shader.NewWGPUModuleBackend(backend.Device())),
		shader.WithWatcher(cfg.Renderer.WatchShaders),
	)
	if err == nil {
		err = loadPrograms(programs, cfg.Paths.Shaders)
	}
	if err != nil {
		if programs != nil {
			_ = programs.Close()
		}
		cleanup(releaseDevice)
		return nil, err
	}
	releasers = append(releasers, func() { _ = programs.Close() })

	textures := texture.NewLibrary(
		texture.WithBackend(texture.NewWGPUBackend(backend.Device(), backend.Queue())),
		texture.WithWorkers(cfg.Loader.Workers),
	)
	releasers = append(releasers, textures.Close)
	builtins, err := texture.RegisterBuiltins(textures, filepath.Join(cfg.Paths.Assets, cfg.Paths.DiceTexture))
	if err != nil {
		cleanup(releaseDevice)
		return nil, err
	}

	bindings := bind_group_provider.NewProvider(bind_group_provider.WithBackend(bind_group_provider.NewWGPUBackend(backend.Device())))
	linkages := linkage.NewCache(linkage.WithBuilder(
		pipeline.NewWGPUBuilder(backend.Device(), bindings, pipeline.NewState(), backend.SurfaceFormat()),
	))

	mode, err := renderer.ParseMode(cfg.Renderer.Mode)
	if err != nil {
		log.Printf("[Engine] %v, starting in %s", err, mode)
	}
	r, err := renderer.NewRenderer(
		renderer.WithBackend(backend),
		renderer.WithShaderLibrary(programs),
		renderer.WithTextureLibrary(textures, builtins),
		renderer.WithLinkageCache(linkages),
		renderer.WithBindGroupProvider(bindings),
		renderer.WithFrameWriter(frame_params.NewWriter(frameArena)),
		renderer.WithMode(mode),
	)
	if err != nil {
		cleanup(releaseDevice)
		return nil, err
	}

	source := &SceneSource{
		Path:     cfg.Paths.Scene,
		AssetDir: cfg.Paths.Assets,
		Loader:   loader.NewLoader(loader.WithWorkers(cfg.Loader.Workers)),
		Textures: textures,
		Builtins: builtins,
		Buffers:  model.NewWGPUBufferBackend(backend.Device(), backend.Queue()),
		Progress: progress,
	}
	sc, assets, err := source.Load(float32(win.Width()) / float32(win.Height()))
	if err != nil {
		log.Printf("[Engine] load scene %s: %v", cfg.Paths.Scene, err)
		cleanup(r.Release)
		return nil, errors.Wrapf(err, "engine: scene %s", cfg.Paths.Scene)
	}
	if sc.Mode() != "" {
		if sceneMode, err := renderer.ParseMode(sc.Mode()); err == nil {
			r.SetMode(sceneMode)
		}
	}

	options = append([]EngineBuilderOption{
		WithWindow(win),
		WithRenderer(r),
		WithScene(sc, assets),
		WithSceneSource(source),
		WithCameraController(newController(sc, cfg)),
	}, options...)
	for _, release := range releasers {
		options = append(options, WithReleaser(release))
	}
	return NewEngine(options...), nil
}

func newController(sc scene.Scene, cfg config.Config) camera.CameraController {
	return camera.NewCameraController(sc.Camera(),
		camera.WithSpeed(cfg.Camera.Speed),
		camera.WithSensitivity(cfg.Camera.Sensitivity),
	)
}

// loadPrograms compiles the two render mode programs from dir.
func loadPrograms(programs shader.Library, dir string) error {
	files := []struct{ file, name string }{
		{texturedGeometryFile, renderer.ProgramTexturedGeometry},
		{texturedMeshesFile, renderer.ProgramTexturedMeshes},
	}
	for _, f := range files {
		if _, err := programs.Load(filepath.Join(dir, f.file), f.name); err != nil {
			return errors.Wrapf(err, "engine: program %s", f.name)
		}
	}
	return nil
}
