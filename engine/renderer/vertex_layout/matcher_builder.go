package vertex_layout

// MatcherBuilderOption is a functional option used to configure a Matcher during construction.
type MatcherBuilderOption func(*matcher)

// WithStrictComponentCount toggles component-count validation for matched locations.
// When disabled a matched location is trusted and the shader's component count is used for the binding.
//
// Parameters:
//   - strict: true to fail with ErrLayoutMismatch on disagreement
//
// Returns:
//   - MatcherBuilderOption: a function that sets the strictness
func WithStrictComponentCount(strict bool) MatcherBuilderOption {
	return func(m *matcher) {
		m.strictComponentCount = strict
	}
}
