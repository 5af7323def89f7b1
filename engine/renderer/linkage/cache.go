package linkage

import (
	"log"

	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/vertex_layout"
	"github.com/cockroachdb/errors"
)

// ErrNoBuilder is returned by GetOrBuild when the cache was created without a Builder.
var ErrNoBuilder = errors.New("linkage: no builder configured")

// cache is the implementation of the Cache interface.
type cache struct {
	matcher vertex_layout.Matcher
	builder Builder

	// sets tracks every submesh set the cache has appended to, so Evict can reach them.
	sets map[*Set]struct{}

	builds int
}

// Cache returns the linkage object for a (submesh, program) pair, building it on first use.
// All calls are expected from the render thread.
type Cache interface {
	// GetOrBuild returns the cached object for program on submesh, or resolves and builds a new one.
	//
	// Parameters:
	//   - submesh: the submesh being drawn
	//   - program: the active program
	//
	// Returns:
	//   - *Object: the linkage object, identical across calls while the program identity is unchanged
	//   - error: the wrapped resolve or build error; nothing is cached on failure
	GetOrBuild(submesh Bindable, program Program) (*Object, error)

	// Evict removes every cached object built for identity from every tracked submesh,
	// releasing handles when the builder implements Releaser.
	//
	// Parameters:
	//   - identity: the stale program identity
	//
	// Returns:
	//   - int: the number of objects evicted
	Evict(identity uint64) int

	// Forget releases all objects of a submesh and stops tracking it. Called when a mesh is destroyed.
	//
	// Parameters:
	//   - submesh: the submesh being destroyed
	Forget(submesh Bindable)

	// Builds returns the number of objects built since creation.
	Builds() int
}

var _ Cache = &cache{}

// NewCache creates a linkage Cache.
//
// Parameters:
//   - options: variadic list of CacheBuilderOption functions
//
// Returns:
//   - Cache: the configured cache
func NewCache(options ...CacheBuilderOption) Cache {
	c := &cache{
		matcher: vertex_layout.NewMatcher(),
		sets:    make(map[*Set]struct{}),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *cache) GetOrBuild(submesh Bindable, program Program) (*Object, error) {
	set := submesh.Linkages()
	if o := set.Find(program.Identity()); o != nil {
		return o, nil
	}

	plan, err := c.matcher.Resolve(program.InputLayout(), submesh.VertexLayout(), submesh.VertexBaseOffset())
	if err != nil {
		return nil, errors.Wrapf(err, "linkage: program %q (identity %d)", program.Label(), program.Identity())
	}

	if c.builder == nil {
		return nil, ErrNoBuilder
	}
	handle, err := c.builder.Build(submesh, program, plan)
	if err != nil {
		return nil, errors.Wrapf(err, "linkage: build for program %q", program.Label())
	}

	o := &Object{
		ProgramIdentity: program.Identity(),
		ProgramLabel:    program.Label(),
		Plan:            plan,
		Handle:          handle,
	}
	set.append(o)
	c.sets[set] = struct{}{}
	c.builds++
	return o, nil
}

func (c *cache) Evict(identity uint64) int {
	evicted := 0
	for set := range c.sets {
		removed := set.remove(identity)
		c.release(removed)
		evicted += len(removed)
		if set.Len() == 0 {
			delete(c.sets, set)
		}
	}
	if evicted > 0 {
		log.Printf("[Linkage] evicted %d linkage(s) for stale program identity %d", evicted, identity)
	}
	return evicted
}

func (c *cache) Forget(submesh Bindable) {
	set := submesh.Linkages()
	c.release(set.drain())
	delete(c.sets, set)
}

func (c *cache) Builds() int {
	return c.builds
}

func (c *cache) release(objects []*Object) {
	r, ok := c.builder.(Releaser)
	if !ok {
		return
	}
	for _, o := range objects {
		r.Release(o.Handle)
	}
}
