package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLibrary_LoadIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.png", twoRowPNG(t, color.NRGBA{R: 1, A: 0xff}, color.NRGBA{G: 1, A: 0xff}))
	backend := NewHostBackend()
	lib := NewLibrary(WithBackend(backend))

	first, err := lib.Load(path)
	require.NoError(t, err)
	second, err := lib.Load(filepath.Join(dir, ".", "a.png"))
	require.NoError(t, err)

	assert.Equal(t, uint32(0), first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, backend.Created())
	assert.Equal(t, 1, lib.Len())

	handle, ok := lib.Get(first).(*HostTexture)
	require.True(t, ok)
	assert.Equal(t, uint32(1), handle.Data.Width)
	assert.Equal(t, uint32(2), handle.Data.Height)
	assert.Len(t, handle.Data.Pixels, 8)
}

func TestLibrary_LoadFailuresReturnNotFound(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1, 1))))
	gray := writeFile(t, dir, "gray.png", buf.Bytes())

	backend := NewHostBackend()
	lib := NewLibrary(WithBackend(backend))

	idx, err := lib.Load(filepath.Join(dir, "missing.png"))
	assert.Equal(t, uint32(NotFound), idx)
	assert.True(t, errors.Is(err, ErrDecode))

	idx, err = lib.Load(gray)
	assert.Equal(t, uint32(NotFound), idx)
	assert.True(t, errors.Is(err, ErrUnsupportedChannels))

	assert.Equal(t, 0, backend.Created())
	assert.Nil(t, lib.Get(NotFound))
	assert.Nil(t, lib.Get(7))
}

func TestLibrary_PreloadReportsProgress(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "a.png", twoRowPNG(t, color.NRGBA{R: 1, A: 0xff}, color.NRGBA{R: 2, A: 0xff})),
		filepath.Join(dir, "missing.png"),
		writeFile(t, dir, "b.png", twoRowPNG(t, color.NRGBA{G: 1, A: 0xff}, color.NRGBA{G: 2, A: 0xff})),
	}
	paths = append(paths, paths[0])

	lib := NewLibrary(WithWorkers(2))
	var calls [][2]int
	out := lib.Preload(paths, func(done, total int) {
		calls = append(calls, [2]int{done, total})
	})

	assert.Equal(t, []uint32{0, NotFound, 1, 0}, out)
	assert.Equal(t, [][2]int{{1, 4}, {2, 4}, {3, 4}, {4, 4}}, calls)
	assert.Equal(t, 2, lib.Len())

	idx, ok := lib.Index(filepath.Clean(paths[2]))
	require.True(t, ok)
	assert.Equal(t, uint32(1), idx)
}

func TestLibrary_PreloadReusesDecodeWorkers(t *testing.T) {
	dir := t.TempDir()
	batch := func(prefix string) []string {
		paths := make([]string, 4)
		for i := range paths {
			name := fmt.Sprintf("%s%d.png", prefix, i)
			paths[i] = writeFile(t, dir, name, twoRowPNG(t, color.NRGBA{R: uint8(i), A: 0xff}, color.NRGBA{B: 1, A: 0xff}))
		}
		return paths
	}

	lib := NewLibrary(WithWorkers(4))
	defer lib.Close()

	lib.Preload(batch("a"), nil)
	running := runtime.NumGoroutine()

	// Reloading scenes preloads again; the worker count must not grow with each call.
	for _, prefix := range []string{"b", "c", "d"} {
		out := lib.Preload(batch(prefix), nil)
		assert.NotContains(t, out, uint32(NotFound))
		assert.LessOrEqual(t, runtime.NumGoroutine(), running, "after preload %s", prefix)
	}
	assert.Equal(t, 16, lib.Len())
}

func TestLibrary_CloseReleasesEveryTexture(t *testing.T) {
	backend := NewHostBackend()
	lib := NewLibrary(WithBackend(backend))

	b, err := RegisterBuiltins(lib, "")
	require.NoError(t, err)
	assert.Equal(t, Builtins{White: 0, Black: 1, Normal: 2, Magenta: 3, Dice: 3}, b)

	lib.Close()
	assert.Equal(t, 4, backend.Released())
	assert.Equal(t, 0, lib.Len())
	_, ok := lib.Index(BuiltinWhite)
	assert.False(t, ok)
}

func TestRegisterBuiltins_Dice(t *testing.T) {
	dir := t.TempDir()
	dice := writeFile(t, dir, "dice.png", twoRowPNG(t, color.NRGBA{R: 0xff, A: 0xff}, color.NRGBA{A: 0xff}))

	lib := NewLibrary()
	b, err := RegisterBuiltins(lib, dice)
	require.NoError(t, err)
	assert.Equal(t, uint32(4), b.Dice)

	missing, err := RegisterBuiltins(NewLibrary(), filepath.Join(dir, "nope.png"))
	require.NoError(t, err)
	assert.Equal(t, missing.Magenta, missing.Dice)

	handle := lib.Get(b.Normal).(*HostTexture)
	assert.Equal(t, []byte{0x80, 0x80, 0xff, 0xff}, handle.Data.Pixels)
	assert.Equal(t, uint32(9), Or(NotFound, 9))
	assert.Equal(t, uint32(2), Or(2, 9))
}
