package arena

// DefaultAlignment is the range-bind alignment used when the hardware limit has not been supplied.
// WebGPU guarantees minUniformBufferOffsetAlignment <= 256.
const DefaultAlignment uint64 = 256

// ArenaBuilderOption is a functional option used to configure an Arena during construction.
type ArenaBuilderOption func(*arena)

// WithCapacity sets the fixed capacity of the arena in bytes.
//
// Parameters:
//   - capacity: the byte capacity, must be a non-zero multiple of 4
//
// Returns:
//   - ArenaBuilderOption: a function that sets the arena capacity
func WithCapacity(capacity uint64) ArenaBuilderOption {
	return func(a *arena) {
		a.capacity = capacity
	}
}

// WithAlignment sets the hardware alignment for range binds, usually the device's
// minUniformBufferOffsetAlignment limit.
//
// Parameters:
//   - alignment: the byte boundary that per-object blocks start on
//
// Returns:
//   - ArenaBuilderOption: a function that sets the arena alignment
func WithAlignment(alignment uint64) ArenaBuilderOption {
	return func(a *arena) {
		a.alignment = alignment
	}
}

// WithLabel sets the debug label of the arena and its device buffer.
//
// Parameters:
//   - label: the debug label
//
// Returns:
//   - ArenaBuilderOption: a function that sets the arena label
func WithLabel(label string) ArenaBuilderOption {
	return func(a *arena) {
		a.label = label
	}
}

// WithBackend sets the device backend that owns the arena's buffer.
//
// Parameters:
//   - backend: the ArenaBackend implementation
//
// Returns:
//   - ArenaBuilderOption: a function that sets the arena backend
func WithBackend(backend ArenaBackend) ArenaBuilderOption {
	return func(a *arena) {
		a.backend = backend
	}
}
