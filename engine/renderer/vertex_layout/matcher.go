package vertex_layout

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrUnsatisfiedInput is returned when a shader input location has no matching vertex attribute.
	ErrUnsatisfiedInput = errors.New("vertex layout: unsatisfied shader input")

	// ErrLayoutMismatch is returned when a location matches but the component counts disagree.
	ErrLayoutMismatch = errors.New("vertex layout: component count mismatch")

	// ErrInvalidComponentCount is returned for component counts outside 1..4.
	ErrInvalidComponentCount = errors.New("vertex layout: component count must be 1..4")
)

type matcher struct {
	strictComponentCount bool
}

// Matcher resolves a program's vertex inputs against a submesh vertex layout.
type Matcher interface {
	// Resolve matches every shader input to a vertex attribute by location.
	//
	// Parameters:
	//   - shader: the inputs declared by the program
	//   - vertex: the submesh's interleaved attribute layout
	//   - base: the submesh's byte offset into the shared vertex buffer
	//
	// Returns:
	//   - BindingPlan: one binding per shader input, in declaration order
	//   - error: ErrUnsatisfiedInput, ErrLayoutMismatch or ErrInvalidComponentCount
	Resolve(shader ShaderInputLayout, vertex VertexBufferLayout, base uint64) (BindingPlan, error)
}

var _ Matcher = &matcher{}

// NewMatcher creates a Matcher. Component counts are validated unless disabled with WithStrictComponentCount(false).
//
// Parameters:
//   - options: variadic list of MatcherBuilderOption functions
//
// Returns:
//   - Matcher: the configured matcher
func NewMatcher(options ...MatcherBuilderOption) Matcher {
	m := &matcher{
		strictComponentCount: true,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// Resolve runs the strict matcher.
func Resolve(shader ShaderInputLayout, vertex VertexBufferLayout, base uint64) (BindingPlan, error) {
	return defaultMatcher.Resolve(shader, vertex, base)
}

var defaultMatcher = NewMatcher()

func (m *matcher) Resolve(shader ShaderInputLayout, vertex VertexBufferLayout, base uint64) (BindingPlan, error) {
	plan := BindingPlan{
		Bindings:   make([]Binding, 0, len(shader.Inputs)),
		Stride:     vertex.Stride,
		BaseOffset: base,
	}

	for _, in := range shader.Inputs {
		if !validComponentCount(in.ComponentCount) {
			return BindingPlan{}, errors.Wrapf(ErrInvalidComponentCount, "shader input at location %d declares %d components", in.Location, in.ComponentCount)
		}

		attr, ok := vertex.Attribute(in.Location)
		if !ok {
			return BindingPlan{}, errors.Wrapf(ErrUnsatisfiedInput, "location %d", in.Location)
		}
		if !validComponentCount(attr.ComponentCount) {
			return BindingPlan{}, errors.Wrapf(ErrInvalidComponentCount, "vertex attribute at location %d declares %d components", attr.Location, attr.ComponentCount)
		}
		if m.strictComponentCount && attr.ComponentCount != in.ComponentCount {
			return BindingPlan{}, errors.Wrapf(ErrLayoutMismatch, "location %d: shader expects %d components, vertex layout provides %d",
				in.Location, in.ComponentCount, attr.ComponentCount)
		}

		plan.Bindings = append(plan.Bindings, Binding{
			Location:       in.Location,
			ComponentCount: in.ComponentCount,
			Stride:         vertex.Stride,
			ByteOffset:     attr.Offset + base,
			LayoutOffset:   attr.Offset,
		})
	}

	return plan, nil
}

func validComponentCount(n uint32) bool {
	return n >= 1 && n <= 4
}
