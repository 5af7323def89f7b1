package model

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// wgpuBufferBackendImpl creates mesh buffers on a device.
type wgpuBufferBackendImpl struct {
	device *wgpu.Device
	queue  *wgpu.Queue
}

var _ BufferBackend = &wgpuBufferBackendImpl{}

// NewWGPUBufferBackend creates a BufferBackend that uploads through queue.
//
// Parameters:
//   - device: the device that owns the buffers
//   - queue: the queue used for uploads
//
// Returns:
//   - BufferBackend: the wgpu buffer backend
func NewWGPUBufferBackend(device *wgpu.Device, queue *wgpu.Queue) BufferBackend {
	return &wgpuBufferBackendImpl{device: device, queue: queue}
}

func (b *wgpuBufferBackendImpl) CreateVertexBuffer(label string, data []byte) (any, error) {
	return b.create(label, data, wgpu.BufferUsageVertex|wgpu.BufferUsageCopyDst)
}

func (b *wgpuBufferBackendImpl) CreateIndexBuffer(label string, data []byte) (any, error) {
	return b.create(label, data, wgpu.BufferUsageIndex|wgpu.BufferUsageCopyDst)
}

func (b *wgpuBufferBackendImpl) create(label string, data []byte, usage wgpu.BufferUsage) (any, error) {
	// Buffer sizes must be a multiple of 4 and non-zero.
	size := max(uint64(len(data)+3)&^3, 4)
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage,
	})
	if err != nil {
		return nil, err
	}
	if len(data) > 0 {
		if err := b.queue.WriteBuffer(buf, 0, data); err != nil {
			buf.Release()
			return nil, err
		}
	}
	return buf, nil
}

func (b *wgpuBufferBackendImpl) Release(handle any) {
	if buf, ok := handle.(*wgpu.Buffer); ok && buf != nil {
		buf.Release()
	}
}
