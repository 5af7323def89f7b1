package renderer

import (
	"log"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/pipeline"
	"github.com/cockroachdb/errors"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrFrameInFlight is returned by BeginFrame when the previous surface texture was not presented.
var ErrFrameInFlight = errors.New("renderer: previous frame surface not yet presented")

// clearColor is the color the render pass clears to.
var clearColor = wgpu.Color{R: 0.1, G: 0.1, B: 0.1, A: 1.0}

type wgpuRendererBackendImpl struct {
	mu     sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat wgpu.TextureFormat
	limits        wgpu.Limits
	presentMode   wgpu.PresentMode

	depthTexture         *wgpu.Texture
	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	// Frame state for batched rendering across multiple draw calls
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

// WGPUBackend is the wgpu RendererBackend. It also exposes the device objects the other
// wgpu backends (arena, textures, meshes, bind groups, pipelines) are created from.
type WGPUBackend interface {
	RendererBackend

	// Device returns the logical device.
	Device() *wgpu.Device

	// Queue returns the device queue.
	Queue() *wgpu.Queue

	// Limits returns the device limits queried once at startup.
	Limits() wgpu.Limits

	// SurfaceFormat returns the surface color format every pipeline targets.
	SurfaceFormat() wgpu.TextureFormat
}

var _ WGPUBackend = &wgpuRendererBackendImpl{}

// NewWGPUBackend creates the instance, surface, adapter and device. Device creation failure panics.
//
// Parameters:
//   - surfaceDescriptor: the platform surface from the window
//   - mode: the present mode
//   - forceFallbackAdapter: true to request a software adapter
//
// Returns:
//   - WGPUBackend: the backend, with the surface not yet configured
func NewWGPUBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, mode PresentMode, forceFallbackAdapter bool) WGPUBackend {
	runtime.LockOSThread()
	b := &wgpuRendererBackendImpl{
		instance:    wgpu.CreateInstance(nil),
		presentMode: presentMode(mode),
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		log.Printf("[Renderer] failed to request adapter: %v", err)
		panic(err)
	}
	b.adapter = a

	// Start from the WebGPU default limits and take the adapter's uniform limits,
	// which size and align the frame arena.
	supported := a.GetLimits().Limits
	limits := wgpu.DefaultLimits()
	limits.MaxUniformBufferBindingSize = supported.MaxUniformBufferBindingSize
	limits.MinUniformBufferOffsetAlignment = supported.MinUniformBufferOffsetAlignment

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		log.Printf("[Renderer] failed to request device: %v", err)
		panic(err)
	}
	b.device = d
	b.queue = d.GetQueue()
	b.limits = d.GetLimits().Limits

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = capabilities.Formats[0]

	log.Printf("[Renderer] device ready: uniform binding %d bytes, offset alignment %d, surface %v",
		b.limits.MaxUniformBufferBindingSize, b.limits.MinUniformBufferOffsetAlignment, b.surfaceFormat)
	return b
}

func presentMode(mode PresentMode) wgpu.PresentMode {
	if mode == PresentModeVSync {
		return wgpu.PresentModeFifo
	}
	return wgpu.PresentModeImmediate
}

// ArenaSizing returns the frame arena capacity and alignment for a device.
// The capacity is the uniform binding limit, lowered to override when override is non-zero and smaller.
//
// Parameters:
//   - limits: the device limits
//   - override: the configured capacity cap, zero for none
//
// Returns:
//   - uint64: the arena capacity in bytes
//   - uint64: the arena alignment in bytes
func ArenaSizing(limits wgpu.Limits, override uint64) (capacity, alignment uint64) {
	capacity = uint64(limits.MaxUniformBufferBindingSize)
	if override != 0 && override < capacity {
		capacity = override
	}
	alignment = max(uint64(limits.MinUniformBufferOffsetAlignment), 1)
	return capacity, alignment
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	b.releaseDepth()
	depthTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        pipeline.DepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		panic(err)
	}
	b.depthTexture = depthTexture
	b.depthTextureView, err = depthTexture.CreateView(nil)
	if err != nil {
		panic(err)
	}

	// The color view is set per frame to the acquired swapchain view.
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: clearColor,
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}
	log.Printf("[Renderer] surface configured %dx%d", width, height)
}

func (b *wgpuRendererBackendImpl) releaseDepth() {
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTextureView = nil
	}
	if b.depthTexture != nil {
		b.depthTexture.Release()
		b.depthTexture = nil
	}
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.renderPassDescriptor == nil {
		return errors.New("surface is not configured")
	}
	// Acquiring twice without presenting is a validation error in wgpu-native.
	if b.frameSurface != nil {
		return ErrFrameInFlight
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	b.renderPassDescriptor.ColorAttachments[0].View = view
	b.framePass = encoder.BeginRenderPass(b.renderPassDescriptor)
	b.frameEncoder = encoder
	b.frameSurface = surfaceTexture
	b.frameView = view
	return nil
}

func (b *wgpuRendererBackendImpl) Draw(cmd DrawCommand) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return
	}
	renderPipeline, ok := cmd.Pipeline.(*wgpu.RenderPipeline)
	if !ok {
		return
	}
	vertexBuffer, _ := cmd.VertexBuffer.(*wgpu.Buffer)
	indexBuffer, _ := cmd.IndexBuffer.(*wgpu.Buffer)
	if vertexBuffer == nil || indexBuffer == nil {
		return
	}

	b.framePass.SetPipeline(renderPipeline)
	for _, g := range cmd.BindGroups {
		if bg, ok := g.Group.(*wgpu.BindGroup); ok {
			b.framePass.SetBindGroup(g.Index, bg, g.DynamicOffsets)
		}
	}
	b.framePass.SetVertexBuffer(0, vertexBuffer, cmd.VertexOffset, cmd.VertexSize)
	b.framePass.SetIndexBuffer(indexBuffer, wgpu.IndexFormatUint32, cmd.IndexOffset, cmd.IndexSize)
	b.framePass.DrawIndexed(cmd.IndexCount, 1, 0, 0, 0)
}

func (b *wgpuRendererBackendImpl) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return nil
	}
	b.framePass.End()
	b.framePass.Release()
	b.framePass = nil

	commandBuffer, err := b.frameEncoder.Finish(nil)
	b.frameEncoder.Release()
	b.frameEncoder = nil
	if err != nil {
		b.releaseFrameSurface()
		return err
	}

	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}
	b.surface.Present()
	b.releaseFrameSurface()
}

func (b *wgpuRendererBackendImpl) releaseFrameSurface() {
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.releaseFrameSurface()
	b.releaseDepth()
	if b.queue != nil {
		b.queue.Release()
	}
	if b.device != nil {
		b.device.Release()
	}
	if b.surface != nil {
		b.surface.Release()
	}
	if b.adapter != nil {
		b.adapter.Release()
	}
	if b.instance != nil {
		b.instance.Release()
	}
}

func (b *wgpuRendererBackendImpl) Device() *wgpu.Device {
	return b.device
}

func (b *wgpuRendererBackendImpl) Queue() *wgpu.Queue {
	return b.queue
}

func (b *wgpuRendererBackendImpl) Limits() wgpu.Limits {
	return b.limits
}

func (b *wgpuRendererBackendImpl) SurfaceFormat() wgpu.TextureFormat {
	return b.surfaceFormat
}
