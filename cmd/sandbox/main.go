// Command sandbox opens a window and renders a scene file in either the textured quad or the
// textured meshes mode. M toggles the mode, 1 and 2 select it, R reloads the scene file and
// WASD/QE with a right mouse drag fly the camera.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/Carmen-Shannon/oxy-sandbox/engine"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/config"
	"github.com/cockroachdb/errors"
	"github.com/schollz/progressbar/v3"
)

func init() {
	// GLFW and the device must stay on the main thread.
	runtime.LockOSThread()
}

type sandbox struct {
	bar *progressbar.ProgressBar
}

// progress draws the texture preload bar, created on the first report.
func (s *sandbox) progress(done, total int) {
	if s.bar == nil {
		s.bar = progressbar.Default(int64(total), "loading textures")
	}
	_ = s.bar.Set(done)
	if done == total {
		_ = s.bar.Finish()
	}
}

func (s *sandbox) run() error {
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)

	configPath := fs.String("config", "", "the TOML config file, defaults are used when empty")
	scenePath := fs.String("scene", "", "the scene file to load, overrides paths.scene")
	mode := fs.String("mode", "", "the starting render mode: textured_quad or textured_meshes")
	profile := fs.Bool("profile", false, "log frame statistics every second")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return errors.Wrap(err, "failed to parse args")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *scenePath != "" {
		cfg.Paths.Scene = *scenePath
	}
	if *mode != "" {
		cfg.Renderer.Mode = *mode
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	eng, err := engine.Setup(cfg, s.progress, engine.WithProfiling(*profile))
	if err != nil {
		return err
	}
	defer eng.Release()

	log.Printf("[Sandbox] running %s in %s mode", eng.Scene().Name(), eng.Renderer().Mode())
	return eng.Run()
}

func main() {
	s := sandbox{}

	if err := s.run(); err != nil {
		fmt.Fprintf(os.Stderr, "sandbox: %+v\n", err)
		os.Exit(1)
	}
}
