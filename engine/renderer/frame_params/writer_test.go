package frame_params

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/arena"
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWriter(t *testing.T, capacity, alignment uint64) (Writer, arena.Arena) {
	t.Helper()
	a, err := arena.NewArena(arena.WithCapacity(capacity), arena.WithAlignment(alignment))
	require.NoError(t, err)
	return NewWriter(a), a
}

func f32(buf []byte, v float32) []byte {
	return binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
}

func vec3Bytes(buf []byte, v mgl32.Vec3) []byte {
	return f32(f32(f32(buf, v[0]), v[1]), v[2])
}

func mat4Bytes(buf []byte, m mgl32.Mat4) []byte {
	for _, v := range m {
		buf = f32(buf, v)
	}
	return buf
}

var twoLights = []LightParams{
	{Type: LightTypeDirectional, Color: mgl32.Vec3{1, 0.9, 0.8}, Direction: mgl32.Vec3{0, -1, 0}},
	{Type: LightTypePoint, Color: mgl32.Vec3{0.2, 0.4, 1}, Position: mgl32.Vec3{4, 5, 6}},
}

func TestFrameBlockRoundTrip(t *testing.T) {
	w, a := newTestWriter(t, 4096, 256)

	camera := mgl32.Vec3{1, 2, 3}
	require.NoError(t, w.BeginFrame(GlobalParams{CameraPosition: camera, Lights: twoLights}))

	type written struct {
		block  ParameterBlock
		expect []byte
	}
	var locals []written
	for i := 0; i < 3; i++ {
		world := mgl32.Translate3D(float32(i), 0, 0)
		wvp := mgl32.Scale3D(float32(i+1), 1, 1).Mul4(world)
		block, err := w.WriteObject(world, wvp)
		require.NoError(t, err)
		locals = append(locals, written{block: block, expect: mat4Bytes(mat4Bytes(nil, world), wvp)})
	}
	require.NoError(t, w.EndFrame())

	// global: header, then each light aligned to 16
	expectGlobal := vec3Bytes(nil, camera)
	expectGlobal = binary.LittleEndian.AppendUint32(expectGlobal, 2)
	for i, l := range twoLights {
		for len(expectGlobal)%16 != 0 {
			expectGlobal = append(expectGlobal, 0)
		}
		assert.Equal(t, globalHeaderSize+i*lightStride, len(expectGlobal))
		expectGlobal = binary.LittleEndian.AppendUint32(expectGlobal, uint32(l.Type))
		expectGlobal = vec3Bytes(expectGlobal, l.Color)
		expectGlobal = vec3Bytes(expectGlobal, l.Direction)
		expectGlobal = vec3Bytes(expectGlobal, l.Position)
	}

	global := w.GlobalBlock()
	assert.Equal(t, uint64(0), global.Offset)
	assert.Equal(t, uint64(len(expectGlobal)), global.Size)
	got, err := a.Bytes(global.Offset, global.Size)
	require.NoError(t, err)
	assert.Equal(t, expectGlobal, got)

	blocks := []ParameterBlock{global}
	for _, l := range locals {
		assert.Equal(t, uint64(LocalBlockSize), l.block.Size)
		got, err := a.Bytes(l.block.Offset, l.block.Size)
		require.NoError(t, err)
		assert.Equal(t, l.expect, got)
		blocks = append(blocks, l.block)
	}

	for i := range blocks {
		for j := i + 1; j < len(blocks); j++ {
			assert.False(t, blocks[i].Overlaps(blocks[j]), "block %d %+v overlaps block %d %+v", i, blocks[i], j, blocks[j])
		}
	}
	assert.Equal(t, []ParameterBlock{locals[0].block, locals[1].block, locals[2].block}, w.LocalBlocks())
}

func TestLocalBlocksAreHardwareAligned(t *testing.T) {
	w, _ := newTestWriter(t, 8192, 256)
	require.NoError(t, w.BeginFrame(GlobalParams{Lights: twoLights}))

	var prev *ParameterBlock
	for i := 0; i < 5; i++ {
		b, err := w.WriteObject(mgl32.Ident4(), mgl32.Ident4())
		require.NoError(t, err)
		assert.Zero(t, b.Offset%256)
		if prev != nil {
			assert.Greater(t, b.Offset, prev.Offset)
		}
		prev = &b
	}
	require.NoError(t, w.EndFrame())
}

func TestStateMachine(t *testing.T) {
	w, a := newTestWriter(t, 1024, 16)
	assert.Equal(t, StateClosed, w.State())

	_, err := w.WriteObject(mgl32.Ident4(), mgl32.Ident4())
	assert.True(t, errors.Is(err, ErrFrameNotOpen))
	assert.True(t, errors.Is(w.EndFrame(), ErrFrameNotOpen))

	require.NoError(t, w.BeginFrame(GlobalParams{}))
	assert.Equal(t, StateOpen, w.State())
	assert.True(t, a.IsOpen())
	assert.True(t, errors.Is(w.BeginFrame(GlobalParams{}), ErrFrameAlreadyOpen))

	require.NoError(t, w.EndFrame())
	assert.Equal(t, StateClosed, w.State())
	assert.False(t, a.IsOpen())
}

func TestBeginFrameResetsLocals(t *testing.T) {
	w, a := newTestWriter(t, 2048, 16)
	for frame := 0; frame < 2; frame++ {
		require.NoError(t, w.BeginFrame(GlobalParams{CameraPosition: mgl32.Vec3{float32(frame), 0, 0}}))
		assert.Empty(t, w.LocalBlocks())
		assert.Equal(t, uint64(globalHeaderSize), a.Head())
		_, err := w.WriteObject(mgl32.Ident4(), mgl32.Ident4())
		require.NoError(t, err)
		require.NoError(t, w.EndFrame())
		assert.Len(t, w.LocalBlocks(), 1)
	}
}

func TestCapacityOverrunIsReported(t *testing.T) {
	w, _ := newTestWriter(t, 256, 16)
	require.NoError(t, w.BeginFrame(GlobalParams{}))

	_, err := w.WriteObject(mgl32.Ident4(), mgl32.Ident4())
	require.NoError(t, err)
	_, err = w.WriteObject(mgl32.Ident4(), mgl32.Ident4())
	require.Error(t, err)
	assert.True(t, errors.Is(err, arena.ErrOutOfCapacity))
}

func TestGlobalOverrunClosesFrame(t *testing.T) {
	w, a := newTestWriter(t, 32, 16)
	err := w.BeginFrame(GlobalParams{Lights: twoLights})
	require.Error(t, err)
	assert.True(t, errors.Is(err, arena.ErrOutOfCapacity))
	assert.Equal(t, StateClosed, w.State())
	assert.False(t, a.IsOpen())
}

func TestTooManyLights(t *testing.T) {
	w, a := newTestWriter(t, 4096, 16)
	err := w.BeginFrame(GlobalParams{Lights: make([]LightParams, MaxLights+1)})
	assert.True(t, errors.Is(err, ErrTooManyLights))
	assert.False(t, a.IsOpen())
}

func TestWGSLMatchesLayout(t *testing.T) {
	assert.Contains(t, GPUGlobalParamsSource, fmt.Sprintf("array<Light, %d>", MaxLights))
	assert.Contains(t, GPULocalParamsSource, "struct LocalParams")
	// 12 four-byte members make the 48 byte light stride
	assert.Equal(t, lightStride/4, strings.Count(GPULightSource, ": f32,")+strings.Count(GPULightSource, ": u32,"))
	assert.Equal(t, 16+48*16, GlobalBindingSize)
}

func TestParameterBlockOverlaps(t *testing.T) {
	a := ParameterBlock{Offset: 0, Size: 16}
	assert.True(t, a.Overlaps(ParameterBlock{Offset: 15, Size: 1}))
	assert.False(t, a.Overlaps(ParameterBlock{Offset: 16, Size: 8}))
	assert.False(t, a.Overlaps(ParameterBlock{Offset: 4, Size: 0}))
	assert.Equal(t, uint64(16), a.End())
}
