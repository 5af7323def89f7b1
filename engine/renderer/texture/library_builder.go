package texture

import "github.com/Carmen-Shannon/oxy-sandbox/common"

// LibraryBuilderOption is a functional option used to configure a Library during construction.
type LibraryBuilderOption func(*library)

// WithBackend sets the texture backend. Defaults to the host backend.
func WithBackend(b Backend) LibraryBuilderOption {
	return func(l *library) {
		l.backend = b
	}
}

// WithSampler sets the sampler configuration used for every texture.
func WithSampler(s common.SamplerStagingData) LibraryBuilderOption {
	return func(l *library) {
		l.sampler = s
	}
}

// WithWorkers sets the number of decode workers used by Preload.
//
// Parameters:
//   - n: the worker count, values below 1 are ignored
//
// Returns:
//   - LibraryBuilderOption: a function that sets the worker count
func WithWorkers(n int) LibraryBuilderOption {
	return func(l *library) {
		if n > 0 {
			l.workers = n
		}
	}
}
