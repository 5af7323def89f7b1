package pipeline

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// StateBuilderOption is a functional option used to configure a State during construction.
type StateBuilderOption func(*state)

// WithDepthTestEnabled enables or disables depth testing.
//
// Parameters:
//   - enabled: true to test depth with CompareFunctionLess, false to always pass
//
// Returns:
//   - StateBuilderOption: a function that sets depth testing
func WithDepthTestEnabled(enabled bool) StateBuilderOption {
	return func(s *state) {
		s.depthTestEnabled = enabled
	}
}

// WithDepthWriteEnabled enables or disables depth writes.
//
// Parameters:
//   - enabled: true to write depth
//
// Returns:
//   - StateBuilderOption: a function that sets depth writes
func WithDepthWriteEnabled(enabled bool) StateBuilderOption {
	return func(s *state) {
		s.depthWriteEnabled = enabled
	}
}

// WithBlendEnabled enables or disables color blending.
//
// Parameters:
//   - enabled: true to blend with the configured blend state
//
// Returns:
//   - StateBuilderOption: a function that sets blending
func WithBlendEnabled(enabled bool) StateBuilderOption {
	return func(s *state) {
		s.blendEnabled = enabled
	}
}

// WithBlendState replaces the blend equation. A nil state is ignored.
//
// Parameters:
//   - blendState: the blend equation
//
// Returns:
//   - StateBuilderOption: a function that sets the blend state
func WithBlendState(blendState *wgpu.BlendState) StateBuilderOption {
	return func(s *state) {
		if blendState != nil {
			s.blendState = blendState
		}
	}
}

// WithCullMode sets the face culling mode.
//
// Parameters:
//   - mode: e.g. wgpu.CullModeNone or wgpu.CullModeBack
//
// Returns:
//   - StateBuilderOption: a function that sets the cull mode
func WithCullMode(mode wgpu.CullMode) StateBuilderOption {
	return func(s *state) {
		s.cullMode = mode
	}
}

// WithTopology sets the primitive topology.
func WithTopology(topology wgpu.PrimitiveTopology) StateBuilderOption {
	return func(s *state) {
		s.topology = topology
	}
}

// WithFrontFace sets the front face winding order.
func WithFrontFace(frontFace wgpu.FrontFace) StateBuilderOption {
	return func(s *state) {
		s.frontFace = frontFace
	}
}

// WithWriteMask sets the color write mask.
func WithWriteMask(writeMask wgpu.ColorWriteMask) StateBuilderOption {
	return func(s *state) {
		s.writeMask = writeMask
	}
}
