package arena

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestArena(t *testing.T, capacity uint64) (Arena, HostBackend) {
	t.Helper()
	backend := NewHostBackend()
	a, err := NewArena(WithCapacity(capacity), WithAlignment(16), WithBackend(backend), WithLabel("test"))
	require.NoError(t, err)
	return a, backend
}

func TestNewArenaValidation(t *testing.T) {
	_, err := NewArena()
	assert.Error(t, err)

	_, err = NewArena(WithCapacity(10))
	assert.Error(t, err)

	_, err = NewArena(WithCapacity(64), WithAlignment(0))
	assert.True(t, errors.Is(err, ErrInvalidBoundary))

	a, err := NewArena(WithCapacity(64))
	require.NoError(t, err)
	assert.Equal(t, DefaultAlignment, a.Alignment())
	assert.Equal(t, uint64(64), a.Capacity())
}

func TestOpenTwiceFails(t *testing.T) {
	a, _ := newTestArena(t, 64)
	require.NoError(t, a.Open())
	err := a.Open()
	assert.True(t, errors.Is(err, ErrAlreadyOpen))
}

func TestWriteOutsideScopeFails(t *testing.T) {
	a, _ := newTestArena(t, 64)
	assert.True(t, errors.Is(a.Write([]byte{1}), ErrNotOpen))
	assert.True(t, errors.Is(a.Align(4), ErrNotOpen))
	assert.True(t, errors.Is(a.Close(), ErrNotOpen))
	assert.True(t, errors.Is(a.WriteUint32(1), ErrNotOpen))
}

func TestOpenResetsHead(t *testing.T) {
	a, _ := newTestArena(t, 64)
	require.NoError(t, a.Open())
	require.NoError(t, a.Write(make([]byte, 20)))
	require.NoError(t, a.Close())
	assert.Equal(t, uint64(20), a.Head())

	require.NoError(t, a.Open())
	assert.Equal(t, uint64(0), a.Head())
}

func TestAlignInvariant(t *testing.T) {
	a, _ := newTestArena(t, 4096)

	writes := []int{0, 1, 3, 12, 7, 64, 5, 2, 9}
	boundaries := []uint64{1, 4, 16, 256, 3, 16, 8, 256, 64}

	require.NoError(t, a.Open())
	for i := range writes {
		require.NoError(t, a.Write(make([]byte, writes[i])))
		before := a.Head()
		require.NoError(t, a.Align(boundaries[i]))
		after := a.Head()
		assert.Zero(t, after%boundaries[i], "head %d not a multiple of %d", after, boundaries[i])
		assert.GreaterOrEqual(t, after, before)
		assert.Less(t, after-before, boundaries[i])
	}
	require.NoError(t, a.Close())
}

func TestAlignOnBoundaryIsNoop(t *testing.T) {
	a, _ := newTestArena(t, 64)
	require.NoError(t, a.Open())
	require.NoError(t, a.Write(make([]byte, 16)))
	require.NoError(t, a.Align(16))
	assert.Equal(t, uint64(16), a.Head())
	assert.True(t, errors.Is(a.Align(0), ErrInvalidBoundary))
}

func TestCapacityInvariant(t *testing.T) {
	tests := []struct {
		name  string
		steps func(a Arena) error
	}{
		{
			name: "single oversized write",
			steps: func(a Arena) error {
				return a.Write(make([]byte, 65))
			},
		},
		{
			name: "accumulated writes",
			steps: func(a Arena) error {
				for i := 0; i < 5; i++ {
					if err := a.WriteMat4(mgl32.Ident4()); err != nil {
						return err
					}
				}
				return nil
			},
		},
		{
			name: "padding pushes past capacity",
			steps: func(a Arena) error {
				if err := a.Write(make([]byte, 60)); err != nil {
					return err
				}
				return a.Align(128)
			},
		},
		{
			name: "typed write at the edge",
			steps: func(a Arena) error {
				if err := a.Write(make([]byte, 56)); err != nil {
					return err
				}
				return a.WriteVec3(mgl32.Vec3{1, 2, 3})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := newTestArena(t, 64)
			require.NoError(t, a.Open())
			err := tt.steps(a)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrOutOfCapacity))
			assert.LessOrEqual(t, a.Head(), a.Capacity())
		})
	}
}

func TestFailedWriteLeavesHeadUnchanged(t *testing.T) {
	a, _ := newTestArena(t, 64)
	require.NoError(t, a.Open())
	require.NoError(t, a.Write([]byte{1, 2, 3, 4}))
	require.Error(t, a.Write(make([]byte, 61)))
	assert.Equal(t, uint64(4), a.Head())

	require.Error(t, a.Align(128))
	assert.Equal(t, uint64(4), a.Head())

	// exact fill still succeeds
	require.NoError(t, a.Write(make([]byte, 60)))
	assert.Equal(t, uint64(64), a.Head())
}

func TestTypedWritesAreRawLittleEndian(t *testing.T) {
	a, backend := newTestArena(t, 256)
	require.NoError(t, a.Open())

	require.NoError(t, a.WriteVec3(mgl32.Vec3{1, 2, 3}))
	assert.Equal(t, uint64(12), a.Head())
	require.NoError(t, a.WriteUint32(7))
	assert.Equal(t, uint64(16), a.Head())

	m := mgl32.Translate3D(4, 5, 6)
	require.NoError(t, a.WriteMat4(m))
	assert.Equal(t, uint64(80), a.Head())
	require.NoError(t, a.WriteFloat32(0.5))
	assert.Equal(t, uint64(84), a.Head())
	require.NoError(t, a.Close())

	b, err := a.Bytes(0, 84)
	require.NoError(t, err)
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(b[0:])))
	assert.Equal(t, float32(3), math.Float32frombits(binary.LittleEndian.Uint32(b[8:])))
	assert.Equal(t, uint32(7), binary.LittleEndian.Uint32(b[12:]))
	// column-major: translation lives in elements 12..14
	assert.Equal(t, float32(4), math.Float32frombits(binary.LittleEndian.Uint32(b[16+12*4:])))
	assert.Equal(t, float32(6), math.Float32frombits(binary.LittleEndian.Uint32(b[16+14*4:])))
	assert.Equal(t, float32(0.5), math.Float32frombits(binary.LittleEndian.Uint32(b[80:])))

	assert.Equal(t, 1, backend.UploadCount())
	assert.Equal(t, b, backend.Uploaded()[:84])
}

func TestCloseUploadsOnlyOnce(t *testing.T) {
	a, backend := newTestArena(t, 64)
	for frame := 0; frame < 3; frame++ {
		require.NoError(t, a.Open())
		require.NoError(t, a.WriteUint32(uint32(frame)))
		require.NoError(t, a.Close())
	}
	assert.Equal(t, 3, backend.UploadCount())
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(backend.Uploaded()))
}

func TestAlignPaddingIsZeroed(t *testing.T) {
	a, _ := newTestArena(t, 64)
	require.NoError(t, a.Open())
	require.NoError(t, a.Write([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}))
	require.NoError(t, a.Close())

	require.NoError(t, a.Open())
	require.NoError(t, a.Write([]byte{1}))
	require.NoError(t, a.Align(8))
	require.NoError(t, a.Close())

	b, err := a.Bytes(0, 8)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 0, 0, 0, 0, 0, 0, 0}, b)
}

func TestBytesOutOfRange(t *testing.T) {
	a, _ := newTestArena(t, 64)
	require.NoError(t, a.Open())
	require.NoError(t, a.Write(make([]byte, 8)))
	_, err := a.Bytes(4, 8)
	assert.True(t, errors.Is(err, ErrOutOfRange))
	_, err = a.Bytes(9, 0)
	assert.True(t, errors.Is(err, ErrOutOfRange))
}

func TestRelease(t *testing.T) {
	a, backend := newTestArena(t, 64)
	a.Release()
	assert.Nil(t, backend.Uploaded())
	assert.False(t, a.IsOpen())
}
