package texture

import "github.com/Carmen-Shannon/oxy-sandbox/common"

// Backend materializes decoded RGBA images as device textures.
type Backend interface {
	// Create uploads an RGBA8 image.
	//
	// Parameters:
	//   - data: the staged pixels, 4 bytes per pixel
	//   - sampler: the sampler configuration, zero values use the defaults
	//
	// Returns:
	//   - any: the backend texture handle
	//   - error: an error if the device rejected the texture
	Create(data common.TextureStagingData, sampler common.SamplerStagingData) (any, error)

	// Release frees a handle returned by Create.
	Release(handle any)
}

// HostTexture is the handle produced by the host backend.
type HostTexture struct {
	Data    common.TextureStagingData
	Sampler common.SamplerStagingData
}

// HostBackend keeps textures in memory. Used when no device is attached.
type HostBackend struct {
	created  int
	released int
}

var _ Backend = &HostBackend{}

// NewHostBackend creates a device-less Backend.
func NewHostBackend() *HostBackend {
	return &HostBackend{}
}

func (b *HostBackend) Create(data common.TextureStagingData, sampler common.SamplerStagingData) (any, error) {
	b.created++
	return &HostTexture{Data: data, Sampler: sampler}, nil
}

func (b *HostBackend) Release(any) {
	b.released++
}

// Created returns the number of textures created.
func (b *HostBackend) Created() int {
	return b.created
}

// Released returns the number of textures released.
func (b *HostBackend) Released() int {
	return b.released
}
