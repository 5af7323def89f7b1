// Package pipeline describes the fixed-function render state shared by every linkage pipeline
// and creates the wgpu render pipelines the linkage cache stores.
package pipeline

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// DepthFormat is the format of the depth attachment every pipeline renders against.
const DepthFormat = wgpu.TextureFormatDepth24Plus

// state is the implementation of the State interface.
type state struct {
	depthTestEnabled  bool
	depthWriteEnabled bool
	blendEnabled      bool
	cullMode          wgpu.CullMode
	topology          wgpu.PrimitiveTopology
	frontFace         wgpu.FrontFace
	writeMask         wgpu.ColorWriteMask
	blendState        *wgpu.BlendState
}

// State is the fixed-function configuration applied to a render pipeline: depth, blend, cull and topology.
// A State is immutable once built.
type State interface {
	// DepthTestEnabled returns whether fragments are depth tested with CompareFunctionLess.
	//
	// Returns:
	//   - bool: true if depth testing is enabled, false otherwise
	DepthTestEnabled() bool

	// DepthWriteEnabled returns whether fragments write depth.
	//
	// Returns:
	//   - bool: true if depth writing is enabled, false otherwise
	DepthWriteEnabled() bool

	// BlendEnabled returns whether the color target blends.
	BlendEnabled() bool

	// CullMode returns the face culling mode.
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology.
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the front face winding order.
	FrontFace() wgpu.FrontFace

	// WriteMask returns the color write mask.
	WriteMask() wgpu.ColorWriteMask

	// BlendState returns the blend equation used when blending is enabled.
	BlendState() *wgpu.BlendState

	// Primitive returns the wgpu primitive state.
	Primitive() wgpu.PrimitiveState

	// DepthStencil returns the wgpu depth stencil state for DepthFormat.
	DepthStencil() *wgpu.DepthStencilState

	// ColorTarget returns the color target state for a surface format.
	//
	// Parameters:
	//   - format: the surface texture format
	//
	// Returns:
	//   - wgpu.ColorTargetState: the color target with the blend state applied when enabled
	ColorTarget(format wgpu.TextureFormat) wgpu.ColorTargetState
}

var _ State = &state{}

// NewState creates a State. The defaults are depth tested and written with Less,
// alpha blended with SRC_ALPHA / ONE_MINUS_SRC_ALPHA, no culling, counter-clockwise triangle lists.
//
// Parameters:
//   - opts: a variadic list of StateBuilderOption functions to configure the state
//
// Returns:
//   - State: the configured state
func NewState(opts ...StateBuilderOption) State {
	s := &state{
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		blendEnabled:      true,
		cullMode:          wgpu.CullModeNone,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
		blendState: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *state) DepthTestEnabled() bool {
	return s.depthTestEnabled
}

func (s *state) DepthWriteEnabled() bool {
	return s.depthWriteEnabled
}

func (s *state) BlendEnabled() bool {
	return s.blendEnabled
}

func (s *state) CullMode() wgpu.CullMode {
	return s.cullMode
}

func (s *state) Topology() wgpu.PrimitiveTopology {
	return s.topology
}

func (s *state) FrontFace() wgpu.FrontFace {
	return s.frontFace
}

func (s *state) WriteMask() wgpu.ColorWriteMask {
	return s.writeMask
}

func (s *state) BlendState() *wgpu.BlendState {
	return s.blendState
}

func (s *state) Primitive() wgpu.PrimitiveState {
	return wgpu.PrimitiveState{
		Topology:  s.topology,
		FrontFace: s.frontFace,
		CullMode:  s.cullMode,
	}
}

func (s *state) DepthStencil() *wgpu.DepthStencilState {
	depthCompare := wgpu.CompareFunctionLess
	if !s.depthTestEnabled {
		depthCompare = wgpu.CompareFunctionAlways
	}
	return &wgpu.DepthStencilState{
		Format:            DepthFormat,
		DepthWriteEnabled: s.depthWriteEnabled,
		DepthCompare:      depthCompare,
		StencilFront: wgpu.StencilFaceState{
			Compare: wgpu.CompareFunctionAlways,
		},
		StencilBack: wgpu.StencilFaceState{
			Compare: wgpu.CompareFunctionAlways,
		},
	}
}

func (s *state) ColorTarget(format wgpu.TextureFormat) wgpu.ColorTargetState {
	target := wgpu.ColorTargetState{
		Format:    format,
		WriteMask: s.writeMask,
	}
	if s.blendEnabled {
		target.Blend = s.blendState
	}
	return target
}
