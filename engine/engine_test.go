package engine

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-sandbox/common"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/camera"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/game_object"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/linkage"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/scene"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/window"
	"github.com/cockroachdb/errors"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedWindow runs a fixed number of loop iterations and holds no platform window.
type scriptedWindow struct {
	frames  int
	ran     int
	running bool
	closed  int
	keys    map[uint32]bool
	width   int
	height  int

	// beforeFrame runs before the update callback of iteration i.
	beforeFrame func(i int)

	onUpdate func()
	onResize func(width, height int)
	onKey    func(key uint32)
}

var _ window.Window = &scriptedWindow{}

func newScriptedWindow(frames int) *scriptedWindow {
	return &scriptedWindow{frames: frames, running: true, keys: map[uint32]bool{}, width: 1280, height: 720}
}

func (w *scriptedWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *scriptedWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *scriptedWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKey = callback
}

func (w *scriptedWindow) KeyDown(key uint32) bool {
	return w.keys[key]
}

func (w *scriptedWindow) MouseButtonDown(uint32) bool {
	return false
}

func (w *scriptedWindow) CursorPosition() (float64, float64) {
	return 0, 0
}

func (w *scriptedWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return nil
}

func (w *scriptedWindow) IsRunning() bool {
	return w.running
}

func (w *scriptedWindow) Width() int {
	return w.width
}

func (w *scriptedWindow) Height() int {
	return w.height
}

// Close counts only the call that actually closes, matching the idempotent platform close.
func (w *scriptedWindow) Close() error {
	if w.running {
		w.closed++
	}
	w.running = false
	return nil
}

func (w *scriptedWindow) ProcessMessages() {
	for i := 0; i < w.frames && w.running; i++ {
		if w.beforeFrame != nil {
			w.beforeFrame(i)
		}
		w.ran++
		if w.onUpdate != nil {
			w.onUpdate()
		}
	}
}

// recordingRenderer counts the frame calls the engine makes.
type recordingRenderer struct {
	mode       renderer.Mode
	reloads    int
	prepared   []scene.Scene
	renders    int
	resized    [][2]int
	released   bool
	prepareErr error
	renderErr  error
	order      *[]string
}

var _ renderer.Renderer = &recordingRenderer{}

func (r *recordingRenderer) Mode() renderer.Mode {
	return r.mode
}

func (r *recordingRenderer) SetMode(mode renderer.Mode) {
	r.mode = mode
}

func (r *recordingRenderer) ToggleMode() renderer.Mode {
	r.mode = r.mode.Next()
	return r.mode
}

func (r *recordingRenderer) Commands() []renderer.DrawCommand {
	return nil
}

func (r *recordingRenderer) Linkages() linkage.Cache {
	return linkage.NewCache()
}

func (r *recordingRenderer) Resize(width, height int) {
	r.resized = append(r.resized, [2]int{width, height})
}

func (r *recordingRenderer) Reload() int {
	r.reloads++
	return 0
}

func (r *recordingRenderer) Prepare(sc scene.Scene, _ *renderer.Assets) error {
	r.prepared = append(r.prepared, sc)
	return r.prepareErr
}

func (r *recordingRenderer) Render() error {
	r.renders++
	return r.renderErr
}

func (r *recordingRenderer) Release() {
	r.released = true
	if r.order != nil {
		*r.order = append(*r.order, "renderer")
	}
}

func testScene() scene.Scene {
	cam := camera.NewCamera(camera.WithPosition(mgl32.Vec3{0, 0, 5}))
	return scene.NewScene("test", cam, scene.WithObjects(
		game_object.NewGameObject(game_object.WithName("cube"), game_object.WithPosition(mgl32.Vec3{1, 0, 0})),
	))
}

func TestRun_RequiresCollaborators(t *testing.T) {
	err := NewEngine().Run()
	assert.True(t, errors.Is(err, ErrNotConfigured))

	err = NewEngine(WithWindow(newScriptedWindow(1))).Run()
	assert.True(t, errors.Is(err, ErrNotConfigured))

	err = NewEngine(WithWindow(newScriptedWindow(1)), WithRenderer(&recordingRenderer{})).Run()
	assert.True(t, errors.Is(err, ErrNotConfigured))
}

func TestRun_DrivesOneFramePerIteration(t *testing.T) {
	win := newScriptedWindow(3)
	r := &recordingRenderer{}
	sc := testScene()
	e := NewEngine(WithWindow(win), WithRenderer(r), WithScene(sc, &renderer.Assets{}))

	var ticks int
	e.SetTickCallback(func(float32) { ticks++ })

	require.NoError(t, e.Run())
	assert.Equal(t, 3, r.reloads)
	assert.Len(t, r.prepared, 3)
	assert.Equal(t, 3, r.renders)
	assert.Equal(t, 3, ticks)
	assert.Same(t, sc, r.prepared[0])

	obj := sc.Objects()[0]
	want := sc.Camera().ViewProjection().Mul4(obj.World())
	assert.True(t, want.ApproxEqual(obj.WVP()))
}

func TestRun_PrepareErrorStopsLoop(t *testing.T) {
	win := newScriptedWindow(5)
	capacity := errors.New("arena full")
	r := &recordingRenderer{prepareErr: capacity}
	e := NewEngine(WithWindow(win), WithRenderer(r), WithScene(testScene(), nil))

	err := e.Run()
	assert.True(t, errors.Is(err, capacity))
	assert.Equal(t, 1, win.ran)
	assert.Equal(t, 1, win.closed)
	assert.Equal(t, 0, r.renders)

	// Quit after the failure does not close twice.
	e.Quit()
	assert.Equal(t, 1, win.closed)
}

func TestRun_RenderErrorDropsFrame(t *testing.T) {
	win := newScriptedWindow(2)
	r := &recordingRenderer{renderErr: errors.New("surface lost")}
	e := NewEngine(WithWindow(win), WithRenderer(r), WithScene(testScene(), nil))

	require.NoError(t, e.Run())
	assert.Equal(t, 2, r.renders)
	assert.Equal(t, 0, win.closed)
}

func TestRun_CameraFollowsHeldKeys(t *testing.T) {
	win := newScriptedWindow(2)
	sc := testScene()
	start := sc.Camera().Position()
	e := NewEngine(WithWindow(win), WithRenderer(&recordingRenderer{}), WithScene(sc, nil))

	win.beforeFrame = func(int) {
		win.keys[common.KeyW] = true
		time.Sleep(10 * time.Millisecond)
	}
	require.NoError(t, e.Run())
	assert.NotEqual(t, start, sc.Camera().Position())
}

func TestHandleKey_Shortcuts(t *testing.T) {
	win := newScriptedWindow(0)
	r := &recordingRenderer{}
	e := NewEngine(WithWindow(win), WithRenderer(r), WithScene(testScene(), nil))
	require.NoError(t, e.Run())
	require.NotNil(t, win.onKey)

	win.onKey(common.KeyM)
	assert.Equal(t, renderer.ModeTexturedMeshes, r.mode)
	win.onKey(common.Key1)
	assert.Equal(t, renderer.ModeTexturedQuad, r.mode)
	win.onKey(common.Key2)
	assert.Equal(t, renderer.ModeTexturedMeshes, r.mode)
	win.onKey(common.KeyW)
	assert.Equal(t, renderer.ModeTexturedMeshes, r.mode)

	win.onKey(common.KeyR)
	assert.True(t, e.(*engine).reloadScene)
}

func TestHandleResize(t *testing.T) {
	win := newScriptedWindow(0)
	r := &recordingRenderer{}
	sc := testScene()
	e := NewEngine(WithWindow(win), WithRenderer(r), WithScene(sc, nil))
	require.NoError(t, e.Run())

	win.onResize(0, 0)
	assert.Empty(t, r.resized)

	win.onResize(800, 400)
	assert.Equal(t, [][2]int{{800, 400}}, r.resized)
	assert.InDelta(t, 2, sc.Camera().Aspect(), 1e-6)
}

func TestReloadScene_SwapsSceneAtNextFrame(t *testing.T) {
	src, buffers := newTestSource(t)
	first, assets, err := src.Load(1)
	require.NoError(t, err)

	win := newScriptedWindow(2)
	r := &recordingRenderer{}
	e := NewEngine(WithWindow(win), WithRenderer(r), WithScene(first, assets), WithSceneSource(src))
	win.beforeFrame = func(i int) {
		if i == 1 {
			e.ReloadScene()
		}
	}
	require.NoError(t, e.Run())

	require.Len(t, r.prepared, 2)
	assert.Same(t, first, r.prepared[0])
	assert.NotSame(t, first, r.prepared[1])
	assert.Same(t, e.Scene(), r.prepared[1])
	assert.Equal(t, renderer.ModeTexturedMeshes, r.mode)

	// Only the reloaded assets remain uploaded.
	assert.Equal(t, 6, buffers.Live())
	e.Release()
	assert.Equal(t, 0, buffers.Live())
}

func TestReloadScene_FailureKeepsScene(t *testing.T) {
	src, _ := newTestSource(t)
	first, assets, err := src.Load(1)
	require.NoError(t, err)
	writeFile(t, src.Path, []byte("not: [valid"))

	win := newScriptedWindow(1)
	r := &recordingRenderer{}
	e := NewEngine(WithWindow(win), WithRenderer(r), WithScene(first, assets), WithSceneSource(src))
	e.ReloadScene()

	require.NoError(t, e.Run())
	assert.Same(t, first, e.Scene())
	assert.Same(t, first, r.prepared[0])
}

func TestRelease_Order(t *testing.T) {
	var order []string
	win := newScriptedWindow(0)
	r := &recordingRenderer{order: &order}
	e := NewEngine(
		WithWindow(win),
		WithRenderer(r),
		WithScene(testScene(), nil),
		WithReleaser(func() { order = append(order, "shaders") }),
		WithReleaser(func() { order = append(order, "textures") }),
	)

	e.Release()
	assert.Equal(t, []string{"textures", "shaders", "renderer"}, order)
	assert.True(t, r.released)
	assert.Equal(t, 1, win.closed)

	e.Release()
	assert.Equal(t, []string{"textures", "shaders", "renderer", "renderer"}, order)
	assert.Equal(t, 1, win.closed)
}
