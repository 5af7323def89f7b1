// Package frame_params writes the per-frame global parameter block and the per-object local
// parameter blocks into a shared uniform arena, recording the byte range of each block for range binds.
package frame_params

import (
	_ "embed"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// GlobalSlot is the binding index of the global parameter block in bind group 0.
	GlobalSlot = 0

	// LocalSlot is the binding index of the local parameter block in bind group 0.
	LocalSlot = 1

	// MaxLights is the light array length declared by GPUGlobalParamsSource.
	MaxLights = 16

	// LightAlignment is the boundary every light record starts on.
	LightAlignment = 16

	// globalHeaderSize is camera_position (12) + light_count (4).
	globalHeaderSize = 16

	// lightStride is the record size of one light inside the global block once aligned.
	lightStride = 48

	// LocalBlockSize is world (64) + world_view_projection (64).
	LocalBlockSize = 128
)

// GlobalBindingSize is the size of the GlobalParams uniform binding, which covers the full light array.
const GlobalBindingSize = globalHeaderSize + lightStride*MaxLights

// GPULightSource is the WGSL definition of a single light record inside GlobalParams.
//
//go:embed assets/light.wgsl
var GPULightSource string

// GPUGlobalParamsSource is the WGSL definition of the global parameter block.
//
//go:embed assets/global_params.wgsl
var GPUGlobalParamsSource string

// GPULocalParamsSource is the WGSL definition of the local parameter block.
//
//go:embed assets/local_params.wgsl
var GPULocalParamsSource string

// LightType identifies the kind of light written into the global block.
type LightType uint32

const (
	// LightTypeDirectional is a light at infinity shining along Direction.
	LightTypeDirectional LightType = iota

	// LightTypePoint is a light radiating from Position.
	LightTypePoint
)

// LightParams is the per-light data written into the global block.
type LightParams struct {
	Type      LightType
	Color     mgl32.Vec3
	Direction mgl32.Vec3
	Position  mgl32.Vec3
}

// GlobalParams is the per-frame data written once at BeginFrame.
type GlobalParams struct {
	CameraPosition mgl32.Vec3
	Lights         []LightParams
}

// ParameterBlock is a byte range inside the arena.
type ParameterBlock struct {
	Offset uint64
	Size   uint64
}

// End returns the exclusive end offset of the block.
func (b ParameterBlock) End() uint64 {
	return b.Offset + b.Size
}

// Overlaps reports whether two blocks share at least one byte.
func (b ParameterBlock) Overlaps(other ParameterBlock) bool {
	if b.Size == 0 || other.Size == 0 {
		return false
	}
	return b.Offset < other.End() && other.Offset < b.End()
}

// State is the writer's position in the frame state machine.
type State int

const (
	// StateClosed is outside BeginFrame/EndFrame.
	StateClosed State = iota

	// StateOpen is between BeginFrame and EndFrame.
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	default:
		return "closed"
	}
}
