// Package config loads the sandbox's TOML configuration.
package config

import (
	"bytes"
	"log"
	"os"
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalidConfig marks every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the full sandbox configuration. Keys missing from the file keep their Default values.
type Config struct {
	Window   WindowConfig   `toml:"window"`
	Paths    PathsConfig    `toml:"paths"`
	Renderer RendererConfig `toml:"renderer"`
	Camera   CameraConfig   `toml:"camera"`
	Loader   LoaderConfig   `toml:"loader"`
}

// WindowConfig sizes and titles the window.
type WindowConfig struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
	VSync  bool   `toml:"vsync"`
}

// PathsConfig locates assets. Shader and scene paths are relative to the working directory.
type PathsConfig struct {
	Assets  string `toml:"assets"`
	Shaders string `toml:"shaders"`
	Scene   string `toml:"scene"`
	// DiceTexture is the texture drawn by the textured quad mode, relative to Assets.
	DiceTexture string `toml:"dice_texture"`
}

// RendererConfig tunes the renderer.
type RendererConfig struct {
	// ArenaCapacity caps the frame parameter arena in bytes. Zero uses the device limit.
	ArenaCapacity uint64 `toml:"arena_capacity"`
	// Mode is the starting render mode: "textured_quad" or "textured_meshes".
	Mode string `toml:"mode"`
	// WatchShaders enables the filesystem watcher for shader hot reload.
	WatchShaders bool `toml:"watch_shaders"`
}

// CameraConfig tunes the camera controller.
type CameraConfig struct {
	Speed       float32 `toml:"speed"`
	Sensitivity float32 `toml:"sensitivity"`
}

// LoaderConfig tunes asset loading.
type LoaderConfig struct {
	// Workers is the number of goroutines that decode textures and models at startup.
	Workers int `toml:"workers"`
}

// Default returns the configuration used when no file is given.
//
// Returns:
//   - Config: the default configuration
func Default() Config {
	return Config{
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "oxy sandbox",
			VSync:  true,
		},
		Paths: PathsConfig{
			Assets:      "assets",
			Shaders:     "assets/shaders",
			Scene:       "assets/scenes/default.yaml",
			DiceTexture: "textures/dice.png",
		},
		Renderer: RendererConfig{
			Mode: "textured_quad",
		},
		Camera: CameraConfig{
			Speed:       2.5,
			Sensitivity: 0.1,
		},
		Loader: LoaderConfig{
			Workers: max(runtime.NumCPU()-1, 1),
		},
	}
}

// Load reads a TOML file over the defaults and validates the result.
// An empty path returns the defaults.
//
// Parameters:
//   - path: the TOML file path, or ""
//
// Returns:
//   - Config: the loaded configuration
//   - error: error if the file cannot be read, parsed or validated
func Load(path string) (Config, error) {
	if path == "" {
		cfg := Default()
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "config: read file")
	}
	cfg, err := Parse(data)
	if err != nil {
		log.Printf("[Config] %s: %v", path, err)
		return Config{}, errors.Wrapf(err, "config: %s", path)
	}
	return cfg, nil
}

// Parse decodes TOML over the defaults and validates the result. Unknown keys are rejected.
//
// Parameters:
//   - data: the TOML document
//
// Returns:
//   - Config: the parsed configuration
//   - error: error if the document is malformed or invalid
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "parse TOML")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the engine cannot start with.
//
// Returns:
//   - error: an error marked ErrInvalidConfig describing the first problem
func (c Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return errors.Mark(errors.Newf("window size %dx%d must be positive", c.Window.Width, c.Window.Height), ErrInvalidConfig)
	case c.Paths.Shaders == "":
		return errors.Mark(errors.New("paths.shaders is empty"), ErrInvalidConfig)
	case c.Renderer.Mode != "textured_quad" && c.Renderer.Mode != "textured_meshes":
		return errors.Mark(errors.Newf("renderer.mode %q is not textured_quad or textured_meshes", c.Renderer.Mode), ErrInvalidConfig)
	case c.Renderer.ArenaCapacity != 0 && c.Renderer.ArenaCapacity < 256:
		return errors.Mark(errors.Newf("renderer.arena_capacity %d is below 256 bytes", c.Renderer.ArenaCapacity), ErrInvalidConfig)
	case c.Camera.Speed <= 0 || c.Camera.Sensitivity <= 0:
		return errors.Mark(errors.New("camera speed and sensitivity must be positive"), ErrInvalidConfig)
	case c.Loader.Workers < 1:
		return errors.Mark(errors.Newf("loader.workers %d must be at least 1", c.Loader.Workers), ErrInvalidConfig)
	}
	return nil
}
