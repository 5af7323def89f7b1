package model

// BufferBackend creates the shared vertex and index buffers of a mesh.
type BufferBackend interface {
	// CreateVertexBuffer creates a vertex buffer holding data.
	CreateVertexBuffer(label string, data []byte) (any, error)

	// CreateIndexBuffer creates a uint32 index buffer holding data.
	CreateIndexBuffer(label string, data []byte) (any, error)

	// Release frees a buffer returned by either create call.
	Release(handle any)
}

// HostBuffer is the handle produced by the host backend.
type HostBuffer struct {
	Label string
	Data  []byte
}

// HostBufferBackend keeps buffers in memory. Used when no device is attached.
type HostBufferBackend struct {
	live int
}

var _ BufferBackend = &HostBufferBackend{}

// NewHostBufferBackend creates a device-less BufferBackend.
func NewHostBufferBackend() *HostBufferBackend {
	return &HostBufferBackend{}
}

func (b *HostBufferBackend) CreateVertexBuffer(label string, data []byte) (any, error) {
	b.live++
	return &HostBuffer{Label: label, Data: append([]byte(nil), data...)}, nil
}

func (b *HostBufferBackend) CreateIndexBuffer(label string, data []byte) (any, error) {
	b.live++
	return &HostBuffer{Label: label, Data: append([]byte(nil), data...)}, nil
}

func (b *HostBufferBackend) Release(any) {
	b.live--
}

// Live returns the number of buffers created and not yet released.
func (b *HostBufferBackend) Live() int {
	return b.live
}
