package bind_group_provider

import "github.com/cogentcore/webgpu/wgpu"

// Backend creates the device objects behind a Provider.
type Backend interface {
	// CreateLayouts creates one bind group layout per descriptor and the pipeline layout over them.
	CreateLayouts(label string, descriptors []wgpu.BindGroupLayoutDescriptor) (Layouts, error)

	// CreateBindGroup creates a bind group against layout.
	CreateBindGroup(label string, layout any, resources []Resource) (any, error)

	// ReleaseLayouts frees the objects returned by CreateLayouts.
	ReleaseLayouts(l Layouts)

	// Release frees a bind group.
	Release(group any)
}

// HostBindGroup is the bind group produced by the host backend.
type HostBindGroup struct {
	Label     string
	Layout    any
	Resources []Resource
}

// HostBackend records created objects without a device.
type HostBackend struct {
	created  int
	released int
}

var _ Backend = &HostBackend{}

// NewHostBackend creates a device-less Backend.
func NewHostBackend() *HostBackend {
	return &HostBackend{}
}

func (b *HostBackend) CreateLayouts(label string, descriptors []wgpu.BindGroupLayoutDescriptor) (Layouts, error) {
	groups := make([]any, len(descriptors))
	for i := range descriptors {
		groups[i] = &descriptors[i]
	}
	return Layouts{Groups: groups, Pipeline: label}, nil
}

func (b *HostBackend) CreateBindGroup(label string, layout any, resources []Resource) (any, error) {
	b.created++
	return &HostBindGroup{Label: label, Layout: layout, Resources: resources}, nil
}

func (b *HostBackend) ReleaseLayouts(Layouts) {}

func (b *HostBackend) Release(any) {
	b.released++
}

// Live returns the number of bind groups created and not yet released.
func (b *HostBackend) Live() int {
	return b.created - b.released
}
