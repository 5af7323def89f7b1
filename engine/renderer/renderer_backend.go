package renderer

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// DrawBindGroup is one bind group set before a draw.
type DrawBindGroup struct {
	Index uint32
	// Group is the backend bind group handle.
	Group any
	// DynamicOffsets holds one offset per dynamic binding of the group, in binding order.
	DynamicOffsets []uint32
}

// DrawCommand is one indexed draw of a submesh range of a shared mesh buffer.
type DrawCommand struct {
	// Pipeline is the linkage object's backend handle.
	Pipeline any

	VertexBuffer any
	IndexBuffer  any

	// VertexOffset and VertexSize select the submesh's range of the vertex buffer.
	VertexOffset uint64
	VertexSize   uint64

	// IndexOffset and IndexSize select the submesh's range of the index buffer.
	IndexOffset uint64
	IndexSize   uint64

	IndexCount uint32

	BindGroups []DrawBindGroup
}

// RendererBackend executes planned frames on a device.
// Calls are made from the render goroutine in the order ConfigureSurface, then per frame
// BeginFrame, Draw for each command, EndFrame and Present.
type RendererBackend interface {
	// ConfigureSurface configures the surface for a new size and recreates the depth attachment.
	//
	// Parameters:
	//   - width: the surface width in pixels
	//   - height: the surface height in pixels
	ConfigureSurface(width, height int)

	// BeginFrame acquires the surface texture and begins the render pass with the clear color.
	//
	// Returns:
	//   - error: an error if the surface texture could not be acquired
	BeginFrame() error

	// Draw encodes one draw command in the current render pass.
	Draw(cmd DrawCommand)

	// EndFrame ends the render pass and submits the command buffer.
	//
	// Returns:
	//   - error: an error if the command buffer could not be finished
	EndFrame() error

	// Present presents the acquired surface texture.
	Present()

	// Release frees the device, surface and attachments.
	Release()
}
