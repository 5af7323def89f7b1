package shader

import "github.com/cogentcore/webgpu/wgpu"

// wgpuModuleBackendImpl creates wgpu shader modules on a device.
type wgpuModuleBackendImpl struct {
	device *wgpu.Device
}

var _ ModuleBackend = &wgpuModuleBackendImpl{}

// NewWGPUModuleBackend creates a ModuleBackend that compiles WGSL into *wgpu.ShaderModule.
//
// Parameters:
//   - device: the device that owns the modules
//
// Returns:
//   - ModuleBackend: the wgpu module backend
func NewWGPUModuleBackend(device *wgpu.Device) ModuleBackend {
	return &wgpuModuleBackendImpl{device: device}
}

func (b *wgpuModuleBackendImpl) CreateModule(label, source string) (any, error) {
	return b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: source,
		},
	})
}

func (b *wgpuModuleBackendImpl) Release(module any) {
	if m, ok := module.(*wgpu.ShaderModule); ok && m != nil {
		m.Release()
	}
}
