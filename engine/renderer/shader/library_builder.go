package shader

// LibraryBuilderOption is a functional option used to configure a Library during construction.
type LibraryBuilderOption func(*library)

// WithModuleBackend sets the backend that creates device modules. Defaults to the host backend.
//
// Parameters:
//   - backend: the ModuleBackend to use
//
// Returns:
//   - LibraryBuilderOption: a function that sets the backend
func WithModuleBackend(backend ModuleBackend) LibraryBuilderOption {
	return func(l *library) {
		l.backend = backend
	}
}

// WithValidator replaces the naga validator. A nil validator skips validation.
//
// Parameters:
//   - v: the Validator to run on expanded sources
//
// Returns:
//   - LibraryBuilderOption: a function that sets the validator
func WithValidator(v Validator) LibraryBuilderOption {
	return func(l *library) {
		l.validate = v
	}
}

// WithWatcher enables the fsnotify watcher. Poll then only stats files with pending events.
//
// Parameters:
//   - enabled: whether to watch source directories
//
// Returns:
//   - LibraryBuilderOption: a function that sets the watch flag
func WithWatcher(enabled bool) LibraryBuilderOption {
	return func(l *library) {
		l.watch = enabled
	}
}
