// Package bind_group_provider owns the bind group layouts of each compiled program and the bind groups
// created against them. Everything is keyed by program identity, so a reloaded program gets fresh device
// objects and the stale ones are released by Evict.
package bind_group_provider

import (
	"log"
	"slices"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrNoGroup is returned when a program does not declare the requested bind group.
	ErrNoGroup = errors.New("bind group provider: group not declared by program")

	// ErrUnexpectedEntry is returned when a group holds an entry the requested kind of group cannot fill.
	ErrUnexpectedEntry = errors.New("bind group provider: unexpected layout entry")
)

// Program is the part of a compiled program the provider reads layouts from.
type Program interface {
	// Identity identifies the live compiled program.
	Identity() uint64

	// Label returns a debug label for the program.
	Label() string

	// BindGroupLayoutDescriptors returns the reflected layouts keyed by group index.
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor
}

// ResourceKind identifies what a bind group entry binds.
type ResourceKind int

const (
	// ResourceBuffer binds a range of a uniform buffer.
	ResourceBuffer ResourceKind = iota

	// ResourceTexture binds the view of a texture handle.
	ResourceTexture

	// ResourceSampler binds the sampler of a texture handle.
	ResourceSampler
)

// Resource is one entry of a bind group about to be created.
type Resource struct {
	Binding uint32
	Kind    ResourceKind
	// Handle is the backend buffer or texture handle.
	Handle any
	// Size is the bound range of a buffer entry.
	Size uint64
}

// Layouts holds the device layout objects of one program.
type Layouts struct {
	// Groups holds one bind group layout per group index, nil for undeclared groups.
	Groups []any
	// Pipeline is the pipeline layout built from Groups.
	Pipeline any
}

type groupKey struct {
	identity uint64
	group    int
	texture  uint32
	uniform  bool
}

// provider is the implementation of the Provider interface.
type provider struct {
	mu sync.Mutex

	backend Backend

	layouts map[uint64]Layouts
	groups  map[groupKey]any
}

// Provider creates and caches program layouts and bind groups.
//
// Usage pattern:
//  1. The pipeline builder asks for Layouts when it creates a render pipeline for a program
//  2. The renderer asks for UniformGroup and TextureGroup while planning draws
//  3. When a program reloads, Evict releases everything built for the stale identity
type Provider interface {
	// Layouts returns the layout objects of program, creating them on first use.
	//
	// Parameters:
	//   - program: the compiled program
	//
	// Returns:
	//   - Layouts: the bind group layouts and pipeline layout
	//   - error: the backend error; nothing is cached on failure
	Layouts(program Program) (Layouts, error)

	// UniformGroup returns the bind group binding buffer to every entry of group.
	// Each entry covers the minimum binding size declared by the program, so dynamic offsets
	// select the block at draw time.
	//
	// Parameters:
	//   - program: the compiled program
	//   - group: the bind group index
	//   - buffer: the backend buffer handle
	//
	// Returns:
	//   - any: the backend bind group
	//   - error: ErrNoGroup, ErrUnexpectedEntry or the backend error
	UniformGroup(program Program, group int, buffer any) (any, error)

	// TextureGroup returns the bind group binding a texture's view and sampler to group.
	//
	// Parameters:
	//   - program: the compiled program
	//   - group: the bind group index
	//   - textureIdx: the texture library index, part of the cache key
	//   - handle: the backend texture handle
	//
	// Returns:
	//   - any: the backend bind group
	//   - error: ErrNoGroup, ErrUnexpectedEntry or the backend error
	TextureGroup(program Program, group int, textureIdx uint32, handle any) (any, error)

	// Evict releases every layout and bind group created for identity.
	//
	// Parameters:
	//   - identity: the stale program identity
	//
	// Returns:
	//   - int: the number of bind groups released
	Evict(identity uint64) int

	// Len returns the number of cached bind groups.
	Len() int

	// Release frees every cached object.
	Release()
}

var _ Provider = &provider{}

// NewProvider creates a Provider.
//
// Parameters:
//   - options: variadic list of ProviderBuilderOption functions
//
// Returns:
//   - Provider: the configured provider
func NewProvider(options ...ProviderBuilderOption) Provider {
	p := &provider{
		backend: NewHostBackend(),
		layouts: make(map[uint64]Layouts),
		groups:  make(map[groupKey]any),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *provider) Layouts(program Program) (Layouts, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.layoutsLocked(program)
}

func (p *provider) layoutsLocked(program Program) (Layouts, error) {
	if l, ok := p.layouts[program.Identity()]; ok {
		return l, nil
	}
	l, err := p.backend.CreateLayouts(program.Label(), denseDescriptors(program.BindGroupLayoutDescriptors()))
	if err != nil {
		return Layouts{}, errors.Wrapf(err, "bind group provider: layouts for program %q", program.Label())
	}
	p.layouts[program.Identity()] = l
	return l, nil
}

func (p *provider) UniformGroup(program Program, group int, buffer any) (any, error) {
	return p.group(program, groupKey{identity: program.Identity(), group: group, uniform: true}, func(entry wgpu.BindGroupLayoutEntry) (Resource, error) {
		if entry.Buffer.Type == wgpu.BufferBindingTypeUndefined {
			return Resource{}, errors.Wrapf(ErrUnexpectedEntry, "group %d binding %d is not a buffer", group, entry.Binding)
		}
		return Resource{Binding: entry.Binding, Kind: ResourceBuffer, Handle: buffer, Size: entry.Buffer.MinBindingSize}, nil
	})
}

func (p *provider) TextureGroup(program Program, group int, textureIdx uint32, handle any) (any, error) {
	return p.group(program, groupKey{identity: program.Identity(), group: group, texture: textureIdx}, func(entry wgpu.BindGroupLayoutEntry) (Resource, error) {
		switch {
		case entry.Texture.SampleType != wgpu.TextureSampleTypeUndefined:
			return Resource{Binding: entry.Binding, Kind: ResourceTexture, Handle: handle}, nil
		case entry.Sampler.Type != wgpu.SamplerBindingTypeUndefined:
			return Resource{Binding: entry.Binding, Kind: ResourceSampler, Handle: handle}, nil
		}
		return Resource{}, errors.Wrapf(ErrUnexpectedEntry, "group %d binding %d is not a texture or sampler", group, entry.Binding)
	})
}

// group returns the cached bind group for key or creates it, mapping each layout entry through resource.
func (p *provider) group(program Program, key groupKey, resource func(wgpu.BindGroupLayoutEntry) (Resource, error)) (any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if g, ok := p.groups[key]; ok {
		return g, nil
	}

	desc, ok := program.BindGroupLayoutDescriptors()[key.group]
	if !ok {
		return nil, errors.Wrapf(ErrNoGroup, "program %q group %d", program.Label(), key.group)
	}
	layouts, err := p.layoutsLocked(program)
	if err != nil {
		return nil, err
	}

	resources := make([]Resource, 0, len(desc.Entries))
	for _, entry := range desc.Entries {
		r, err := resource(entry)
		if err != nil {
			return nil, errors.Wrapf(err, "program %q", program.Label())
		}
		resources = append(resources, r)
	}

	g, err := p.backend.CreateBindGroup(program.Label(), layouts.Groups[key.group], resources)
	if err != nil {
		return nil, errors.Wrapf(err, "bind group provider: program %q group %d", program.Label(), key.group)
	}
	p.groups[key] = g
	return g, nil
}

func (p *provider) Evict(identity uint64) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	released := 0
	for key, g := range p.groups {
		if key.identity == identity {
			p.backend.Release(g)
			delete(p.groups, key)
			released++
		}
	}
	if l, ok := p.layouts[identity]; ok {
		p.backend.ReleaseLayouts(l)
		delete(p.layouts, identity)
	}
	if released > 0 {
		log.Printf("[BindGroups] released %d bind group(s) for stale program identity %d", released, identity)
	}
	return released
}

func (p *provider) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.groups)
}

func (p *provider) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for key, g := range p.groups {
		p.backend.Release(g)
		delete(p.groups, key)
	}
	for identity, l := range p.layouts {
		p.backend.ReleaseLayouts(l)
		delete(p.layouts, identity)
	}
}

// denseDescriptors flattens the group map into a slice indexed by group.
// Missing groups get an empty descriptor so the pipeline layout keeps every index.
func denseDescriptors(descriptors map[int]wgpu.BindGroupLayoutDescriptor) []wgpu.BindGroupLayoutDescriptor {
	if len(descriptors) == 0 {
		return nil
	}
	groups := make([]int, 0, len(descriptors))
	for g := range descriptors {
		groups = append(groups, g)
	}
	out := make([]wgpu.BindGroupLayoutDescriptor, slices.Max(groups)+1)
	for g, desc := range descriptors {
		out[g] = desc
	}
	return out
}
