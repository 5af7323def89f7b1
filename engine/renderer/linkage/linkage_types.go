// Package linkage caches the device objects that bind a submesh's vertex layout to a specific program.
//
// Each submesh owns a Set of linkage Objects keyed by program identity. A program's identity changes
// every time it is recompiled, so a reloaded program misses the cache and gets a fresh Object while
// the stale one is explicitly evicted.
package linkage

import "github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/vertex_layout"

// Program is the part of a compiled shader program the cache needs.
type Program interface {
	// Identity identifies the live compiled program. It changes on every successful recompile.
	Identity() uint64

	// InputLayout returns the reflected vertex inputs of the program.
	InputLayout() vertex_layout.ShaderInputLayout

	// Label returns a debug label for the program.
	Label() string
}

// Bindable is the part of a submesh the cache needs.
type Bindable interface {
	// VertexLayout returns the submesh's interleaved attribute layout.
	VertexLayout() vertex_layout.VertexBufferLayout

	// VertexBaseOffset returns the submesh's byte offset into the shared vertex buffer.
	VertexBaseOffset() uint64

	// Linkages returns the submesh's cache of linkage objects.
	Linkages() *Set
}

// Object is one resolved binding between a submesh and a program. It is never mutated after creation.
type Object struct {
	// ProgramIdentity is the identity of the program the object was built for.
	ProgramIdentity uint64
	// ProgramLabel is kept for diagnostics.
	ProgramLabel string
	// Plan is the resolved vertex binding plan.
	Plan vertex_layout.BindingPlan
	// Handle is the backend object, e.g. *wgpu.RenderPipeline.
	Handle any
}

// Builder materializes the device object for a resolved plan.
type Builder interface {
	// Build creates the backend handle binding submesh to program.
	//
	// Parameters:
	//   - submesh: the submesh being drawn
	//   - program: the program being drawn with
	//   - plan: the resolved vertex binding plan
	//
	// Returns:
	//   - any: the backend handle stored on the Object
	//   - error: an error if the device object could not be created
	Build(submesh Bindable, program Program, plan vertex_layout.BindingPlan) (any, error)
}

// Releaser is implemented by builders whose handles hold device resources.
type Releaser interface {
	// Release frees a handle previously returned by Build.
	Release(handle any)
}

// Set is the ordered linkage list owned by one submesh.
type Set struct {
	objects []*Object
}

// Find performs a linear scan for the object built for identity.
//
// Parameters:
//   - identity: the program identity to look for
//
// Returns:
//   - *Object: the cached object or nil
func (s *Set) Find(identity uint64) *Object {
	for _, o := range s.objects {
		if o.ProgramIdentity == identity {
			return o
		}
	}
	return nil
}

// Len returns the number of cached objects.
func (s *Set) Len() int {
	return len(s.objects)
}

// Objects returns a copy of the cached objects in insertion order.
func (s *Set) Objects() []*Object {
	out := make([]*Object, len(s.objects))
	copy(out, s.objects)
	return out
}

func (s *Set) append(o *Object) {
	s.objects = append(s.objects, o)
}

// remove drops every object built for identity and returns them.
func (s *Set) remove(identity uint64) []*Object {
	var removed []*Object
	kept := s.objects[:0]
	for _, o := range s.objects {
		if o.ProgramIdentity == identity {
			removed = append(removed, o)
			continue
		}
		kept = append(kept, o)
	}
	clear(s.objects[len(kept):])
	s.objects = kept
	return removed
}

func (s *Set) drain() []*Object {
	out := s.objects
	s.objects = nil
	return out
}
