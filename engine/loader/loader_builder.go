package loader

import (
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-sandbox/engine/model"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithBackend is an option builder that registers an additional loader backend.
// A backend replaces any earlier backend for the same extensions.
//
// Parameters:
//   - b: the backend to register
//
// Returns:
//   - LoaderBuilderOption: a function that applies the backend option to a loader
func WithBackend(b loaderBackend) LoaderBuilderOption {
	return func(l *loader) {
		l.register(b)
	}
}

// WithModel is an option builder that pre-populates the model cache with a model.
//
// Parameters:
//   - key: the cache key (file path) for the model
//   - m: the model to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the model option to a loader
func WithModel(key string, m *model.ImportedModel) LoaderBuilderOption {
	return func(l *loader) {
		l.modelCache[filepath.Clean(key)] = m
	}
}

// WithWorkers sets how many files LoadAll decodes at once. Values below 1 are ignored.
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		if n > 0 {
			l.workers = n
		}
	}
}
