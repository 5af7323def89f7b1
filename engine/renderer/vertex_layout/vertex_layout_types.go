// Package vertex_layout matches the vertex inputs a shader program declares against the interleaved
// attribute layout stored on a submesh, producing a BindingPlan the linkage builder turns into device state.
package vertex_layout

// ShaderInput is a single vertex input declared by a compiled program.
type ShaderInput struct {
	// Location is the @location index of the input.
	Location uint32
	// ComponentCount is the number of 32-bit components, 1 through 4.
	ComponentCount uint32
}

// ShaderInputLayout is the ordered set of vertex inputs a program expects.
// It is produced once per successful compile and is never mutated afterwards.
type ShaderInputLayout struct {
	Inputs []ShaderInput
}

// Locations returns the declared locations in declaration order.
func (l ShaderInputLayout) Locations() []uint32 {
	out := make([]uint32, len(l.Inputs))
	for i, in := range l.Inputs {
		out[i] = in.Location
	}
	return out
}

// VertexAttribute describes one attribute inside an interleaved vertex record.
type VertexAttribute struct {
	// Location is the shader location the attribute feeds.
	Location uint32
	// ComponentCount is the number of float components, 1 through 4.
	ComponentCount uint32
	// Offset is the byte offset of the attribute inside the vertex record.
	Offset uint64
}

// VertexBufferLayout describes how one submesh's interleaved vertex data is laid out.
// It is immutable after the submesh is created.
type VertexBufferLayout struct {
	Attributes []VertexAttribute
	// Stride is the number of bytes between consecutive vertex records.
	Stride uint64
}

// Attribute returns the attribute bound to location, if any.
//
// Parameters:
//   - location: the shader location to look up
//
// Returns:
//   - VertexAttribute: the matching attribute
//   - bool: false when no attribute feeds the location
func (l VertexBufferLayout) Attribute(location uint32) (VertexAttribute, bool) {
	for _, attr := range l.Attributes {
		if attr.Location == location {
			return attr, true
		}
	}
	return VertexAttribute{}, false
}

// FloatsPerVertex returns the number of float32 values in one vertex record.
func (l VertexBufferLayout) FloatsPerVertex() int {
	return int(l.Stride / 4)
}

// Binding is one resolved shader input.
type Binding struct {
	Location       uint32
	ComponentCount uint32
	Stride         uint64
	// ByteOffset is the attribute offset plus the submesh base offset into the shared vertex buffer.
	ByteOffset uint64
	// LayoutOffset is the attribute offset inside the vertex record.
	LayoutOffset uint64
}

// BindingPlan is the result of a successful Resolve, one Binding per shader input in declaration order.
type BindingPlan struct {
	Bindings []Binding
	Stride   uint64
	// BaseOffset is the submesh's byte offset into the shared vertex buffer.
	BaseOffset uint64
}
