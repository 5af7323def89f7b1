package window

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-sandbox/common"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/camera"
	"github.com/stretchr/testify/assert"
)

var _ camera.Input = &engineWindow{}

func TestNewEngineWindow_Options(t *testing.T) {
	w := newEngineWindow(WithTitle("test"), WithSize(800, 600), WithSizeLimits(100, 100, 1000, 1000))
	assert.Equal(t, "test", w.title)
	assert.Equal(t, 800, w.Width())
	assert.Equal(t, 600, w.Height())
	assert.Equal(t, 100, w.minWidth)
	assert.Equal(t, 1000, w.maxHeight)

	w = newEngineWindow(WithSize(0, 600))
	assert.Equal(t, 1280, w.Width())
	assert.False(t, w.IsRunning())
	assert.Nil(t, w.SurfaceDescriptor())
	assert.Error(t, w.Close())
}

func TestEngineWindow_KeyState(t *testing.T) {
	w := newEngineWindow()
	var pressed []uint32
	w.SetKeyDownCallback(func(key uint32) { pressed = append(pressed, key) })

	w.handleKey(common.KeyW, true, false)
	w.handleKey(common.KeyW, true, true)
	assert.True(t, w.KeyDown(common.KeyW))
	assert.False(t, w.KeyDown(common.KeyS))
	assert.Equal(t, []uint32{common.KeyW}, pressed)

	w.handleKey(common.KeyW, false, false)
	assert.False(t, w.KeyDown(common.KeyW))
}

func TestEngineWindow_MouseState(t *testing.T) {
	w := newEngineWindow()

	w.handleMouseButton(common.MouseButtonRight, true)
	assert.True(t, w.MouseButtonDown(common.MouseButtonRight))
	assert.False(t, w.MouseButtonDown(common.MouseButtonLeft))
	w.handleMouseButton(common.MouseButtonRight, false)
	assert.False(t, w.MouseButtonDown(common.MouseButtonRight))

	w.handleMouseButton(42, true)
	assert.False(t, w.MouseButtonDown(42))

	w.handleCursor(10.5, 20)
	x, y := w.CursorPosition()
	assert.Equal(t, 10.5, x)
	assert.Equal(t, 20.0, y)
}

func TestEngineWindow_Resize(t *testing.T) {
	w := newEngineWindow()
	var calls int
	w.SetResizeCallback(func(width, height int) { calls++ })

	w.handleResize(640, 480)
	assert.Equal(t, 640, w.Width())
	assert.Equal(t, 480, w.Height())

	w.handleResize(0, 0)
	assert.Equal(t, 640, w.Width())
	assert.Equal(t, 1, calls)
}
