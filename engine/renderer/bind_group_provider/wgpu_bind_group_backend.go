package bind_group_provider

import (
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/texture"
	"github.com/cockroachdb/errors"
	"github.com/cogentcore/webgpu/wgpu"
)

// wgpuBindGroupBackendImpl creates layouts and bind groups on a device.
type wgpuBindGroupBackendImpl struct {
	device *wgpu.Device
}

var _ Backend = &wgpuBindGroupBackendImpl{}

// NewWGPUBackend creates a Backend for device. Buffer handles must be *wgpu.Buffer and texture
// handles *texture.Texture.
//
// Parameters:
//   - device: the device that owns the objects
//
// Returns:
//   - Backend: the wgpu bind group backend
func NewWGPUBackend(device *wgpu.Device) Backend {
	return &wgpuBindGroupBackendImpl{device: device}
}

func (b *wgpuBindGroupBackendImpl) CreateLayouts(label string, descriptors []wgpu.BindGroupLayoutDescriptor) (Layouts, error) {
	groups := make([]*wgpu.BindGroupLayout, len(descriptors))
	release := func() {
		for _, g := range groups {
			if g != nil {
				g.Release()
			}
		}
	}
	for i := range descriptors {
		desc := descriptors[i]
		desc.Label = label
		layout, err := b.device.CreateBindGroupLayout(&desc)
		if err != nil {
			release()
			return Layouts{}, errors.Wrapf(err, "failed to create bind group layout for group %d", i)
		}
		groups[i] = layout
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            label,
		BindGroupLayouts: groups,
	})
	if err != nil {
		release()
		return Layouts{}, errors.Wrap(err, "failed to create pipeline layout")
	}

	out := Layouts{Groups: make([]any, len(groups)), Pipeline: pipelineLayout}
	for i, g := range groups {
		out.Groups[i] = g
	}
	return out, nil
}

func (b *wgpuBindGroupBackendImpl) CreateBindGroup(label string, layout any, resources []Resource) (any, error) {
	bgl, ok := layout.(*wgpu.BindGroupLayout)
	if !ok || bgl == nil {
		return nil, errors.Newf("layout %T is not a bind group layout", layout)
	}

	entries := make([]wgpu.BindGroupEntry, len(resources))
	for i, r := range resources {
		entry := wgpu.BindGroupEntry{Binding: r.Binding}
		switch r.Kind {
		case ResourceBuffer:
			buf, ok := r.Handle.(*wgpu.Buffer)
			if !ok {
				return nil, errors.Newf("binding %d: handle %T is not a buffer", r.Binding, r.Handle)
			}
			entry.Buffer = buf
			entry.Size = r.Size
			if entry.Size == 0 {
				entry.Size = wgpu.WholeSize
			}
		case ResourceTexture, ResourceSampler:
			tex, ok := r.Handle.(*texture.Texture)
			if !ok {
				return nil, errors.Newf("binding %d: handle %T is not a texture", r.Binding, r.Handle)
			}
			if r.Kind == ResourceTexture {
				entry.TextureView = tex.View
			} else {
				entry.Sampler = tex.Sampler
			}
		}
		entries[i] = entry
	}

	bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   label + " Bind Group",
		Layout:  bgl,
		Entries: entries,
	})
	if err != nil {
		return nil, err
	}
	return bg, nil
}

func (b *wgpuBindGroupBackendImpl) ReleaseLayouts(l Layouts) {
	if pl, ok := l.Pipeline.(*wgpu.PipelineLayout); ok && pl != nil {
		pl.Release()
	}
	for _, g := range l.Groups {
		if bgl, ok := g.(*wgpu.BindGroupLayout); ok && bgl != nil {
			bgl.Release()
		}
	}
}

func (b *wgpuBindGroupBackendImpl) Release(group any) {
	if bg, ok := group.(*wgpu.BindGroup); ok && bg != nil {
		bg.Release()
	}
}
