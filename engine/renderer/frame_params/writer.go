package frame_params

import (
	"log"

	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/arena"
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrFrameAlreadyOpen is returned by BeginFrame when the previous frame was not ended.
	ErrFrameAlreadyOpen = errors.New("frame params: frame already open")

	// ErrFrameNotOpen is returned by WriteObject and EndFrame outside a frame.
	ErrFrameNotOpen = errors.New("frame params: frame not open")

	// ErrTooManyLights is returned when a frame carries more lights than the global block holds.
	ErrTooManyLights = errors.New("frame params: too many lights")
)

// writer is the implementation of the Writer interface.
type writer struct {
	arena arena.Arena
	state State

	global ParameterBlock
	locals []ParameterBlock
}

// Writer drives one frame of parameter writes: Closed -> Open(global) -> Open(N local) -> Closed.
// The recorded blocks stay valid until the next BeginFrame.
type Writer interface {
	// BeginFrame opens the arena and writes the global block:
	// [vec3 camera position][u32 light count] then, per light aligned to 16 bytes,
	// [u32 type][vec3 color][vec3 direction][vec3 position].
	//
	// Parameters:
	//   - params: the camera position and lights of the frame
	//
	// Returns:
	//   - error: ErrFrameAlreadyOpen, ErrTooManyLights or a wrapped arena error
	BeginFrame(params GlobalParams) error

	// WriteObject aligns to the arena's hardware alignment and writes [mat4 world][mat4 world-view-projection].
	//
	// Parameters:
	//   - world: the object's world matrix
	//   - wvp: the object's world-view-projection matrix
	//
	// Returns:
	//   - ParameterBlock: the byte range of the written block
	//   - error: ErrFrameNotOpen or a wrapped arena error
	WriteObject(world, wvp mgl32.Mat4) (ParameterBlock, error)

	// EndFrame closes the arena, uploading the frame's blocks.
	//
	// Returns:
	//   - error: ErrFrameNotOpen or a wrapped arena error
	EndFrame() error

	// GlobalBlock returns the byte range of the global block written this frame.
	GlobalBlock() ParameterBlock

	// LocalBlocks returns the byte ranges of the local blocks in write order.
	LocalBlocks() []ParameterBlock

	// State returns the current frame state.
	State() State

	// Arena returns the arena being written.
	Arena() arena.Arena
}

var _ Writer = &writer{}

// NewWriter creates a Writer over an arena.
//
// Parameters:
//   - a: the arena that receives the parameter blocks
//
// Returns:
//   - Writer: the frame parameter writer
func NewWriter(a arena.Arena) Writer {
	return &writer{
		arena: a,
		state: StateClosed,
	}
}

func (w *writer) BeginFrame(params GlobalParams) error {
	if w.state == StateOpen {
		return ErrFrameAlreadyOpen
	}
	if len(params.Lights) > MaxLights {
		return errors.Wrapf(ErrTooManyLights, "%d lights, global block holds %d", len(params.Lights), MaxLights)
	}
	if err := w.arena.Open(); err != nil {
		return errors.Wrap(err, "frame params: begin frame")
	}
	w.state = StateOpen
	w.locals = w.locals[:0]

	start := w.arena.Head()
	if err := w.writeGlobal(params); err != nil {
		w.abort()
		log.Printf("[FrameParams] global block: %v", err)
		return errors.Wrap(err, "frame params: global block")
	}
	w.global = ParameterBlock{Offset: start, Size: w.arena.Head() - start}
	return nil
}

func (w *writer) writeGlobal(params GlobalParams) error {
	if err := w.arena.WriteVec3(params.CameraPosition); err != nil {
		return err
	}
	if err := w.arena.WriteUint32(uint32(len(params.Lights))); err != nil {
		return err
	}
	for _, l := range params.Lights {
		if err := w.arena.Align(LightAlignment); err != nil {
			return err
		}
		if err := w.arena.WriteUint32(uint32(l.Type)); err != nil {
			return err
		}
		if err := w.arena.WriteVec3(l.Color); err != nil {
			return err
		}
		if err := w.arena.WriteVec3(l.Direction); err != nil {
			return err
		}
		if err := w.arena.WriteVec3(l.Position); err != nil {
			return err
		}
	}
	return nil
}

func (w *writer) WriteObject(world, wvp mgl32.Mat4) (ParameterBlock, error) {
	if w.state != StateOpen {
		return ParameterBlock{}, ErrFrameNotOpen
	}
	if err := w.arena.Align(w.arena.Alignment()); err != nil {
		log.Printf("[FrameParams] local block %d: %v", len(w.locals), err)
		return ParameterBlock{}, errors.Wrapf(err, "frame params: local block %d", len(w.locals))
	}
	start := w.arena.Head()
	if err := w.arena.WriteMat4(world); err != nil {
		log.Printf("[FrameParams] local block %d: %v", len(w.locals), err)
		return ParameterBlock{}, errors.Wrapf(err, "frame params: local block %d", len(w.locals))
	}
	if err := w.arena.WriteMat4(wvp); err != nil {
		log.Printf("[FrameParams] local block %d: %v", len(w.locals), err)
		return ParameterBlock{}, errors.Wrapf(err, "frame params: local block %d", len(w.locals))
	}
	block := ParameterBlock{Offset: start, Size: w.arena.Head() - start}
	w.locals = append(w.locals, block)
	return block, nil
}

func (w *writer) EndFrame() error {
	if w.state != StateOpen {
		return ErrFrameNotOpen
	}
	w.state = StateClosed
	if err := w.arena.Close(); err != nil {
		return errors.Wrap(err, "frame params: end frame")
	}
	return nil
}

func (w *writer) GlobalBlock() ParameterBlock {
	return w.global
}

func (w *writer) LocalBlocks() []ParameterBlock {
	out := make([]ParameterBlock, len(w.locals))
	copy(out, w.locals)
	return out
}

func (w *writer) State() State {
	return w.state
}

func (w *writer) Arena() arena.Arena {
	return w.arena
}

// abort closes a frame that failed while writing the global block so the next BeginFrame can open the arena.
func (w *writer) abort() {
	w.state = StateClosed
	_ = w.arena.Close()
}
