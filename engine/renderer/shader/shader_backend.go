package shader

import "github.com/gogpu/naga"

// ModuleBackend creates the device module for a compiled program.
type ModuleBackend interface {
	// CreateModule creates a shader module from expanded WGSL.
	//
	// Parameters:
	//   - label: the program name
	//   - source: the expanded WGSL source
	//
	// Returns:
	//   - any: the module handle stored on the Program
	//   - error: an error if the device rejected the module
	CreateModule(label, source string) (any, error)

	// Release frees a module handle returned by CreateModule.
	Release(module any)
}

// hostModuleBackend keeps the source as the module handle. Used when no device is attached.
type hostModuleBackend struct{}

// HostModule is the module handle produced by the host backend.
type HostModule struct {
	Label  string
	Source string
}

// NewHostModuleBackend creates a ModuleBackend that needs no device.
func NewHostModuleBackend() ModuleBackend {
	return hostModuleBackend{}
}

func (hostModuleBackend) CreateModule(label, source string) (any, error) {
	return &HostModule{Label: label, Source: source}, nil
}

func (hostModuleBackend) Release(any) {}

// NagaValidator validates expanded WGSL by compiling it with naga and discarding the SPIR-V.
func NagaValidator(source string) error {
	_, err := naga.Compile(source)
	return err
}
