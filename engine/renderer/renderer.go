// Package renderer plans and executes frames. A frame first writes every parameter block into the
// frame arena, then resolves each submesh's linkage and bind groups into draw commands, then hands the
// commands to the backend. Writing and binding never interleave.
package renderer

import (
	"log"
	"sync"

	"github.com/Carmen-Shannon/oxy-sandbox/engine/light"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/model"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/frame_params"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/linkage"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/texture"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/scene"
	"github.com/cockroachdb/errors"
)

var (
	// ErrMissingDependency is returned by NewRenderer when a required collaborator was not provided.
	ErrMissingDependency = errors.New("renderer: missing dependency")

	// ErrProgramNotLoaded is returned when the program of the current mode is not in the shader library.
	ErrProgramNotLoaded = errors.New("renderer: program not loaded")
)

// Bind group indices of each program.
const (
	quadTextureGroup   = 0
	meshUniformGroup   = 0
	meshTextureGroup   = 1
	meshDynamicOffsets = 2
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu sync.Mutex

	backend  RendererBackend
	programs shader.Library
	textures texture.Library
	builtins texture.Builtins
	linkages linkage.Cache
	bindings bind_group_provider.Provider
	writer   frame_params.Writer

	mode     Mode
	commands []DrawCommand
}

// Renderer draws a scene in one of the render modes.
//
// Usage pattern, once per frame on the render goroutine:
//  1. Reload to pick up changed programs and evict their stale linkages
//  2. Prepare to write the frame parameters and plan the draws
//  3. Render to acquire, draw, submit and present
type Renderer interface {
	// Mode returns the current render mode.
	Mode() Mode

	// SetMode switches the render mode from the next Prepare on.
	SetMode(mode Mode)

	// ToggleMode switches to the next render mode and returns it.
	ToggleMode() Mode

	// Reload polls the shader library once and evicts every linkage and bind group built for
	// a program identity that was replaced.
	//
	// Returns:
	//   - int: the number of programs reloaded
	Reload() int

	// Prepare writes the frame parameter blocks for sc and plans the frame's draw commands.
	// Transforms must already be up to date.
	//
	// Parameters:
	//   - sc: the scene to draw
	//   - assets: the uploaded meshes and resolved materials
	//
	// Returns:
	//   - error: a capacity, layout or linkage error; the planned frame is empty on failure
	Prepare(sc scene.Scene, assets *Assets) error

	// Commands returns the draw commands planned by the last Prepare.
	Commands() []DrawCommand

	// Render executes the planned commands.
	//
	// Returns:
	//   - error: an error if the surface could not be acquired or the commands not submitted
	Render() error

	// Resize reconfigures the surface. Zero sizes are ignored.
	Resize(width, height int)

	// Linkages returns the linkage cache, for destroying meshes.
	Linkages() linkage.Cache

	// Release frees the bind groups, the frame arena and the backend.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer. A backend, a shader library, a texture library and a frame writer are required.
//
// Parameters:
//   - options: a variadic list of RendererBuilderOption functions
//
// Returns:
//   - Renderer: the configured renderer
//   - error: ErrMissingDependency naming the first missing collaborator
func NewRenderer(options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		linkages: linkage.NewCache(),
		bindings: bind_group_provider.NewProvider(),
		mode:     ModeTexturedQuad,
	}
	for _, opt := range options {
		opt(r)
	}

	switch {
	case r.backend == nil:
		return nil, errors.Wrap(ErrMissingDependency, "backend")
	case r.programs == nil:
		return nil, errors.Wrap(ErrMissingDependency, "shader library")
	case r.textures == nil:
		return nil, errors.Wrap(ErrMissingDependency, "texture library")
	case r.writer == nil:
		return nil, errors.Wrap(ErrMissingDependency, "frame writer")
	}
	return r, nil
}

func (r *renderer) Mode() Mode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mode
}

func (r *renderer) SetMode(mode Mode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if mode != r.mode {
		log.Printf("[Renderer] mode %s -> %s", r.mode, mode)
	}
	r.mode = mode
}

func (r *renderer) ToggleMode() Mode {
	next := r.Mode().Next()
	r.SetMode(next)
	return next
}

func (r *renderer) Reload() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	reloaded := r.programs.Poll()
	for _, rl := range reloaded {
		linkages := r.linkages.Evict(rl.OldIdentity)
		groups := r.bindings.Evict(rl.OldIdentity)
		log.Printf("[Renderer] program %d reloaded: evicted %d linkage(s), %d bind group(s)", rl.Index, linkages, groups)
	}
	return len(reloaded)
}

func (r *renderer) Prepare(sc scene.Scene, assets *Assets) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.commands = r.commands[:0]
	prog, err := r.program(r.mode)
	if err != nil {
		return err
	}

	var commands []DrawCommand
	switch r.mode {
	case ModeTexturedMeshes:
		commands, err = r.planMeshes(prog, sc, assets)
	default:
		commands, err = r.planQuad(prog, assets)
	}
	if err != nil {
		return err
	}
	r.commands = commands
	return nil
}

// planQuad draws the embedded quad with the quad texture.
func (r *renderer) planQuad(prog shader.Program, assets *Assets) ([]DrawCommand, error) {
	if assets == nil || assets.Quad == nil {
		return nil, nil
	}
	group, err := r.textureGroup(prog, quadTextureGroup, assets.QuadTexture)
	if err != nil {
		return nil, err
	}

	commands := make([]DrawCommand, 0, len(assets.Quad.Submeshes))
	for _, sub := range assets.Quad.Submeshes {
		cmd, err := r.command(prog, assets.Quad, sub, DrawBindGroup{Index: quadTextureGroup, Group: group})
		if err != nil {
			return nil, err
		}
		commands = append(commands, cmd)
	}
	return commands, nil
}

// planMeshes writes the frame parameters, then plans one draw per submesh of every enabled object.
func (r *renderer) planMeshes(prog shader.Program, sc scene.Scene, assets *Assets) ([]DrawCommand, error) {
	objects := sc.Objects()

	global := frame_params.GlobalParams{
		CameraPosition: sc.Camera().Position(),
		Lights:         light.FrameParams(sc.Lights()),
	}
	if err := r.writer.BeginFrame(global); err != nil {
		return nil, err
	}
	for _, obj := range objects {
		if !obj.Enabled() {
			continue
		}
		block, err := r.writer.WriteObject(obj.World(), obj.WVP())
		if err != nil {
			_ = r.writer.EndFrame()
			return nil, err
		}
		obj.SetLocalParams(block)
	}
	if err := r.writer.EndFrame(); err != nil {
		return nil, err
	}

	if assets == nil {
		return nil, nil
	}
	globalBlock := r.writer.GlobalBlock()
	uniforms, err := r.bindings.UniformGroup(prog, meshUniformGroup, r.writer.Arena().Buffer())
	if err != nil {
		return nil, err
	}

	var commands []DrawCommand
	for _, obj := range objects {
		if !obj.Enabled() {
			continue
		}
		mesh, mdl := assets.mesh(obj.Model())
		if mesh == nil {
			log.Printf("[Renderer] object %s references missing model %d", obj.Name(), obj.Model())
			continue
		}
		offsets := make([]uint32, 0, meshDynamicOffsets)
		offsets = append(offsets, uint32(globalBlock.Offset), uint32(obj.LocalParams().Offset))

		for i, sub := range mesh.Submeshes {
			mat := assets.material(mdl, i)
			textures, err := r.textureGroup(prog, meshTextureGroup, mat.AlbedoTexture)
			if err != nil {
				return nil, err
			}
			cmd, err := r.command(prog, mesh, sub,
				DrawBindGroup{Index: meshUniformGroup, Group: uniforms, DynamicOffsets: offsets},
				DrawBindGroup{Index: meshTextureGroup, Group: textures},
			)
			if err != nil {
				return nil, err
			}
			commands = append(commands, cmd)
		}
	}
	return commands, nil
}

// command resolves the submesh's linkage for prog and builds its draw.
func (r *renderer) command(prog shader.Program, mesh *model.Mesh, sub *model.Submesh, groups ...DrawBindGroup) (DrawCommand, error) {
	link, err := r.linkages.GetOrBuild(sub, prog)
	if err != nil {
		return DrawCommand{}, errors.Wrapf(err, "mesh %s submesh %s", mesh.Name, sub.Name)
	}
	return DrawCommand{
		Pipeline:     link.Handle,
		VertexBuffer: mesh.VertexBuffer,
		IndexBuffer:  mesh.IndexBuffer,
		VertexOffset: link.Plan.BaseOffset,
		VertexSize:   sub.VertexSize(),
		IndexOffset:  sub.IndexOffset,
		IndexSize:    sub.IndexSize(),
		IndexCount:   sub.IndexCount(),
		BindGroups:   groups,
	}, nil
}

// textureGroup returns the bind group of a library texture, falling back to white for unknown indices.
func (r *renderer) textureGroup(prog shader.Program, group int, idx uint32) (any, error) {
	handle := r.textures.Get(idx)
	if handle == nil {
		idx = r.builtins.White
		handle = r.textures.Get(idx)
	}
	return r.bindings.TextureGroup(prog, group, idx, handle)
}

// program returns the live program of mode.
func (r *renderer) program(mode Mode) (shader.Program, error) {
	idx, ok := r.programs.Index(mode.ProgramName())
	if !ok {
		return nil, errors.Wrapf(ErrProgramNotLoaded, "%s for mode %s", mode.ProgramName(), mode)
	}
	return r.programs.Get(idx), nil
}

func (r *renderer) Commands() []DrawCommand {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]DrawCommand, len(r.commands))
	copy(out, r.commands)
	return out
}

func (r *renderer) Render() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.backend.BeginFrame(); err != nil {
		return errors.Wrap(err, "renderer: acquire surface")
	}
	for _, cmd := range r.commands {
		r.backend.Draw(cmd)
	}
	if err := r.backend.EndFrame(); err != nil {
		return errors.Wrap(err, "renderer: submit")
	}
	r.backend.Present()
	return nil
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) Linkages() linkage.Cache {
	return r.linkages
}

func (r *renderer) Release() {
	r.bindings.Release()
	r.writer.Arena().Release()
	r.backend.Release()
}
