package linkage

import "github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/vertex_layout"

// CacheBuilderOption is a functional option used to configure a Cache during construction.
type CacheBuilderOption func(*cache)

// WithMatcher overrides the vertex layout matcher used on cache misses.
//
// Parameters:
//   - m: the Matcher to use
//
// Returns:
//   - CacheBuilderOption: a function that sets the matcher
func WithMatcher(m vertex_layout.Matcher) CacheBuilderOption {
	return func(c *cache) {
		c.matcher = m
	}
}

// WithBuilder sets the Builder that materializes backend objects on cache misses.
//
// Parameters:
//   - b: the Builder to use
//
// Returns:
//   - CacheBuilderOption: a function that sets the builder
func WithBuilder(b Builder) CacheBuilderOption {
	return func(c *cache) {
		c.builder = b
	}
}
