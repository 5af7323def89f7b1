package arena

// ArenaBackend owns the device buffer behind an Arena.
type ArenaBackend interface {
	// Allocate creates the device buffer.
	//
	// Parameters:
	//   - label: debug label for the buffer
	//   - capacity: size of the buffer in bytes
	//
	// Returns:
	//   - error: an error if the buffer could not be created
	Allocate(label string, capacity uint64) error

	// Upload copies data into the start of the device buffer. It is called once per frame from Arena.Close.
	//
	// Parameters:
	//   - data: the written prefix of the staging copy, sized to a multiple of 4
	//
	// Returns:
	//   - error: an error if the copy failed
	Upload(data []byte) error

	// Buffer returns the backend specific buffer handle.
	Buffer() any

	// Release frees the device buffer.
	Release()
}

// hostArenaBackendImpl keeps the uploaded bytes in memory. It backs headless runs and tests.
type hostArenaBackendImpl struct {
	label    string
	buffer   []byte
	uploads  int
	released bool
}

// HostBackend is an ArenaBackend without a device. It exposes what has been uploaded.
type HostBackend interface {
	ArenaBackend

	// Uploaded returns the device-side bytes as of the last upload.
	Uploaded() []byte

	// UploadCount returns the number of uploads performed.
	UploadCount() int
}

var _ HostBackend = &hostArenaBackendImpl{}

// NewHostBackend creates an ArenaBackend that stores uploads in host memory.
//
// Returns:
//   - HostBackend: the host-memory backend
func NewHostBackend() HostBackend {
	return &hostArenaBackendImpl{}
}

func (h *hostArenaBackendImpl) Allocate(label string, capacity uint64) error {
	h.label = label
	h.buffer = make([]byte, capacity)
	h.released = false
	return nil
}

func (h *hostArenaBackendImpl) Upload(data []byte) error {
	copy(h.buffer, data)
	h.uploads++
	return nil
}

func (h *hostArenaBackendImpl) Buffer() any {
	return h.buffer
}

func (h *hostArenaBackendImpl) Release() {
	h.buffer = nil
	h.released = true
}

func (h *hostArenaBackendImpl) Uploaded() []byte {
	return h.buffer
}

func (h *hostArenaBackendImpl) UploadCount() int {
	return h.uploads
}
