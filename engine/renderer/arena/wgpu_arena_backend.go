package arena

import (
	"github.com/cockroachdb/errors"
	"github.com/cogentcore/webgpu/wgpu"
)

type wgpuArenaBackendImpl struct {
	device *wgpu.Device
	queue  *wgpu.Queue
	buffer *wgpu.Buffer
}

var _ ArenaBackend = &wgpuArenaBackendImpl{}

// NewWGPUBackend creates an ArenaBackend that allocates a uniform buffer on the given device.
// Uploads go through queue.WriteBuffer, which stages the bytes and copies them before the next submit.
//
// Parameters:
//   - device: the device the buffer is created on
//   - queue: the queue used for uploads
//
// Returns:
//   - ArenaBackend: the wgpu backed arena backend
func NewWGPUBackend(device *wgpu.Device, queue *wgpu.Queue) ArenaBackend {
	return &wgpuArenaBackendImpl{
		device: device,
		queue:  queue,
	}
}

func (b *wgpuArenaBackendImpl) Allocate(label string, capacity uint64) error {
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label + " Buffer",
		Size:             capacity,
		Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return err
	}
	b.buffer = buf
	return nil
}

func (b *wgpuArenaBackendImpl) Upload(data []byte) error {
	if b.buffer == nil {
		return errors.New("wgpu arena backend: buffer not allocated")
	}
	return b.queue.WriteBuffer(b.buffer, 0, data)
}

func (b *wgpuArenaBackendImpl) Buffer() any {
	return b.buffer
}

func (b *wgpuArenaBackendImpl) Release() {
	if b.buffer != nil {
		b.buffer.Release()
		b.buffer = nil
	}
}
