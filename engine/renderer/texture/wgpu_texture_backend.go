package texture

import (
	"github.com/Carmen-Shannon/oxy-sandbox/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// Texture is the handle produced by the wgpu backend.
type Texture struct {
	Texture *wgpu.Texture
	View    *wgpu.TextureView
	Sampler *wgpu.Sampler
}

// wgpuTextureBackendImpl creates sampled textures on a device.
type wgpuTextureBackendImpl struct {
	device *wgpu.Device
	queue  *wgpu.Queue
}

var _ Backend = &wgpuTextureBackendImpl{}

// NewWGPUBackend creates a Backend that uploads RGBA8UnormSrgb textures.
//
// Parameters:
//   - device: the device that owns the textures
//   - queue: the queue used for uploads
//
// Returns:
//   - Backend: the wgpu texture backend
func NewWGPUBackend(device *wgpu.Device, queue *wgpu.Queue) Backend {
	return &wgpuTextureBackendImpl{device: device, queue: queue}
}

func (b *wgpuTextureBackendImpl) Create(data common.TextureStagingData, s common.SamplerStagingData) (any, error) {
	size := wgpu.Extent3D{
		Width:              data.Width,
		Height:             data.Height,
		DepthOrArrayLayers: 1,
	}
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         data.Label,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		Size:          size,
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, err
	}

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		data.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  data.Width * 4,
			RowsPerImage: data.Height,
		},
		&size,
	)

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, err
	}

	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         data.Label + " Sampler",
		AddressModeU:  common.Coalesce(s.AddressModeU, wgpu.AddressModeClampToEdge),
		AddressModeV:  common.Coalesce(s.AddressModeV, wgpu.AddressModeClampToEdge),
		AddressModeW:  common.Coalesce(s.AddressModeW, wgpu.AddressModeClampToEdge),
		MagFilter:     common.Coalesce(s.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(s.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(s.MipmapFilter, wgpu.MipmapFilterModeLinear),
		LodMinClamp:   common.Coalesce(s.LodMinClamp, 0.0),
		LodMaxClamp:   common.Coalesce(s.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(s.MaxAnisotropy, 1),
	})
	if err != nil {
		view.Release()
		tex.Release()
		return nil, err
	}

	return &Texture{Texture: tex, View: view, Sampler: samp}, nil
}

func (b *wgpuTextureBackendImpl) Release(handle any) {
	t, ok := handle.(*Texture)
	if !ok || t == nil {
		return
	}
	t.Sampler.Release()
	t.View.Release()
	t.Texture.Release()
}
