// Package arena implements a fixed-capacity uniform buffer that is sub-allocated front to back once per frame.
//
// A single device buffer backs every parameter block written during a frame. Writes land in a CPU staging copy
// and the written prefix is handed to the ArenaBackend on Close, which is the unmap point of the frame.
package arena

import (
	"encoding/binary"
	"log"
	"math"

	"github.com/Carmen-Shannon/oxy-sandbox/common"
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrOutOfCapacity is returned when a write or alignment would move the head past the arena capacity.
	// It indicates a provisioning error and is not meant to be retried.
	ErrOutOfCapacity = errors.New("arena: out of capacity")

	// ErrAlreadyOpen is returned when Open is called on an arena that has not been closed.
	ErrAlreadyOpen = errors.New("arena: already open")

	// ErrNotOpen is returned when writing to, aligning or closing an arena that is not open.
	ErrNotOpen = errors.New("arena: not open")

	// ErrInvalidBoundary is returned when Align is called with a zero boundary.
	ErrInvalidBoundary = errors.New("arena: alignment boundary must be non-zero")

	// ErrOutOfRange is returned by Bytes when the requested range lies outside the written region.
	ErrOutOfRange = errors.New("arena: range outside written region")
)

// arena is the implementation of the Arena interface.
type arena struct {
	label     string
	capacity  uint64
	alignment uint64

	head uint64
	open bool

	// staging is the CPU copy of the device buffer, len(staging) == capacity.
	staging []byte

	backend ArenaBackend
}

// Arena is a bump allocator over one device buffer.
//
// Usage pattern:
//  1. Open at the start of a frame, which resets the head to 0
//  2. Align and Write parameter blocks, recording Head before each block
//  3. Close to upload the written bytes
//  4. Bind the recorded ranges of Buffer during the render pass
type Arena interface {
	// Open resets the write head to 0 and begins a new write scope.
	//
	// Returns:
	//   - error: ErrAlreadyOpen if the arena is already open
	Open() error

	// Write appends b at the current head and advances the head by len(b).
	// No bytes are written when the append would exceed capacity.
	//
	// Parameters:
	//   - b: the raw bytes to append
	//
	// Returns:
	//   - error: ErrNotOpen or ErrOutOfCapacity
	Write(b []byte) error

	// Align advances the head to the next multiple of boundary without appending data.
	//
	// Parameters:
	//   - boundary: the byte boundary the head must land on
	//
	// Returns:
	//   - error: ErrNotOpen, ErrInvalidBoundary or ErrOutOfCapacity
	Align(boundary uint64) error

	// Close uploads the written region through the backend and ends the write scope.
	//
	// Returns:
	//   - error: ErrNotOpen if the arena is not open, or the backend upload error
	Close() error

	// WriteVec3 appends a 3-float vector as 12 little-endian bytes.
	WriteVec3(v mgl32.Vec3) error

	// WriteMat4 appends a column-major 4x4 matrix as 64 little-endian bytes.
	WriteMat4(m mgl32.Mat4) error

	// WriteUint32 appends an unsigned 32-bit value as 4 little-endian bytes.
	WriteUint32(v uint32) error

	// WriteFloat32 appends a float as 4 little-endian bytes.
	WriteFloat32(v float32) error

	// Bytes returns a copy of a range of the most recently written region.
	//
	// Parameters:
	//   - offset: the byte offset of the range
	//   - size: the byte length of the range
	//
	// Returns:
	//   - []byte: a copy of the requested bytes
	//   - error: ErrOutOfRange if offset+size exceeds the written head
	Bytes(offset, size uint64) ([]byte, error)

	// Head returns the current write head in bytes.
	Head() uint64

	// Capacity returns the fixed capacity of the arena in bytes.
	Capacity() uint64

	// Alignment returns the hardware alignment for range binds supplied at construction.
	Alignment() uint64

	// IsOpen reports whether the arena is between Open and Close.
	IsOpen() bool

	// Label returns the debug label for this arena.
	Label() string

	// Buffer returns the device buffer handle owned by the backend.
	// Callers type assert it for the active backend, e.g. *wgpu.Buffer.
	Buffer() any

	// Release releases the device buffer.
	Release()
}

var _ Arena = &arena{}

// NewArena creates an Arena and allocates its device buffer through the configured backend.
// When no backend is supplied the arena runs against a host-only backend.
//
// Parameters:
//   - options: variadic list of ArenaBuilderOption functions to configure the arena
//
// Returns:
//   - Arena: the allocated arena
//   - error: an error if the configuration is invalid or the backend allocation fails
func NewArena(options ...ArenaBuilderOption) (Arena, error) {
	a := &arena{
		label:     "Uniform Arena",
		alignment: DefaultAlignment,
	}
	for _, opt := range options {
		opt(a)
	}

	if a.capacity == 0 {
		return nil, errors.Newf("arena %q: capacity must be non-zero", a.label)
	}
	if a.capacity%4 != 0 {
		return nil, errors.Newf("arena %q: capacity %d must be a multiple of 4", a.label, a.capacity)
	}
	if a.alignment == 0 {
		return nil, errors.Wrapf(ErrInvalidBoundary, "arena %q", a.label)
	}
	if a.backend == nil {
		a.backend = NewHostBackend()
	}

	if err := a.backend.Allocate(a.label, a.capacity); err != nil {
		return nil, errors.Wrapf(err, "arena %q: allocate %d bytes", a.label, a.capacity)
	}
	a.staging = make([]byte, a.capacity)

	log.Printf("[Arena] %s: %d bytes, alignment %d", a.label, a.capacity, a.alignment)
	return a, nil
}

func (a *arena) Open() error {
	if a.open {
		return errors.Wrapf(ErrAlreadyOpen, "arena %q", a.label)
	}
	a.open = true
	a.head = 0
	return nil
}

func (a *arena) Write(b []byte) error {
	dst, err := a.reserve(uint64(len(b)))
	if err != nil {
		return err
	}
	copy(dst, b)
	return nil
}

func (a *arena) Align(boundary uint64) error {
	if !a.open {
		return errors.Wrapf(ErrNotOpen, "arena %q: align", a.label)
	}
	if boundary == 0 {
		return errors.Wrapf(ErrInvalidBoundary, "arena %q", a.label)
	}
	aligned := common.AlignUp(a.head, boundary)
	if aligned > a.capacity {
		return errors.Wrapf(ErrOutOfCapacity, "arena %q: align to %d at head %d exceeds capacity %d", a.label, boundary, a.head, a.capacity)
	}
	// padding is zeroed so the uploaded region is deterministic
	clear(a.staging[a.head:aligned])
	a.head = aligned
	return nil
}

func (a *arena) Close() error {
	if !a.open {
		return errors.Wrapf(ErrNotOpen, "arena %q: close", a.label)
	}
	a.open = false

	// queue writes must be 4-byte sized; capacity is a multiple of 4 so this stays in bounds
	size := common.AlignUp(a.head, 4)
	clear(a.staging[a.head:size])
	if size == 0 {
		return nil
	}
	if err := a.backend.Upload(a.staging[:size]); err != nil {
		return errors.Wrapf(err, "arena %q: upload %d bytes", a.label, size)
	}
	return nil
}

func (a *arena) WriteVec3(v mgl32.Vec3) error {
	dst, err := a.reserve(12)
	if err != nil {
		return err
	}
	common.PutFloat32s(dst, v[0], v[1], v[2])
	return nil
}

func (a *arena) WriteMat4(m mgl32.Mat4) error {
	dst, err := a.reserve(64)
	if err != nil {
		return err
	}
	common.PutFloat32s(dst, m[:]...)
	return nil
}

func (a *arena) WriteUint32(v uint32) error {
	dst, err := a.reserve(4)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(dst, v)
	return nil
}

func (a *arena) WriteFloat32(v float32) error {
	dst, err := a.reserve(4)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(dst, math.Float32bits(v))
	return nil
}

func (a *arena) Bytes(offset, size uint64) ([]byte, error) {
	if offset > a.head || size > a.head-offset {
		return nil, errors.Wrapf(ErrOutOfRange, "arena %q: [%d, %d) with head %d", a.label, offset, offset+size, a.head)
	}
	out := make([]byte, size)
	copy(out, a.staging[offset:offset+size])
	return out, nil
}

func (a *arena) Head() uint64 {
	return a.head
}

func (a *arena) Capacity() uint64 {
	return a.capacity
}

func (a *arena) Alignment() uint64 {
	return a.alignment
}

func (a *arena) IsOpen() bool {
	return a.open
}

func (a *arena) Label() string {
	return a.label
}

func (a *arena) Buffer() any {
	return a.backend.Buffer()
}

func (a *arena) Release() {
	if a.backend != nil {
		a.backend.Release()
	}
	a.staging = nil
	a.open = false
	a.head = 0
}

// reserve bounds-checks an append of n bytes and returns the staging window for it, advancing the head.
func (a *arena) reserve(n uint64) ([]byte, error) {
	if !a.open {
		return nil, errors.Wrapf(ErrNotOpen, "arena %q: write", a.label)
	}
	if n > a.capacity-a.head {
		return nil, errors.Wrapf(ErrOutOfCapacity, "arena %q: write of %d bytes at head %d exceeds capacity %d", a.label, n, a.head, a.capacity)
	}
	dst := a.staging[a.head : a.head+n]
	a.head += n
	return dst, nil
}
