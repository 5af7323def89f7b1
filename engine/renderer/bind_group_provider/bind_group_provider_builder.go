package bind_group_provider

// ProviderBuilderOption is a functional option used to configure a Provider during construction.
type ProviderBuilderOption func(*provider)

// WithBackend sets the backend that creates layouts and bind groups.
// The host backend is used when no backend is given.
//
// Parameters:
//   - b: the backend
//
// Returns:
//   - ProviderBuilderOption: a function that sets the backend
func WithBackend(b Backend) ProviderBuilderOption {
	return func(p *provider) {
		if b != nil {
			p.backend = b
		}
	}
}
