package engine

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-sandbox/engine/loader"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/model"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/linkage"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/texture"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/scene"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const planeOBJ = `mtllib plane.mtl
o plane
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
usemtl red
f 1/1 2/2 3/3 4/4
`

const planeMTL = `newmtl red
Kd 1 0 0
map_Kd red.png
`

const bareOBJ = `o bare
v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
`

const sourceSceneYAML = `name: source
camera:
  position: [0, 1, 5]
models:
  - name: plane
    path: models/plane.obj
  - name: bare
    path: models/bare.obj
objects:
  - name: a
    model: plane
  - name: b
    model: bare
    position: [2, 0, 0]
lights:
  - type: directional
    direction: [0, -1, 0]
mode: textured_meshes
`

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func redPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.Set(x, y, color.NRGBA{R: 0xff, A: 0xff})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// newTestSource lays out a scene with a textured plane and an untextured triangle.
func newTestSource(t *testing.T) (*SceneSource, *model.HostBufferBackend) {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "models", "plane.obj"), []byte(planeOBJ))
	writeFile(t, filepath.Join(dir, "models", "plane.mtl"), []byte(planeMTL))
	writeFile(t, filepath.Join(dir, "models", "red.png"), redPNG(t))
	writeFile(t, filepath.Join(dir, "models", "bare.obj"), []byte(bareOBJ))
	writeFile(t, filepath.Join(dir, "scene.yaml"), []byte(sourceSceneYAML))

	textures := texture.NewLibrary(texture.WithBackend(texture.NewHostBackend()), texture.WithWorkers(2))
	t.Cleanup(textures.Close)
	builtins, err := texture.RegisterBuiltins(textures, "")
	require.NoError(t, err)

	buffers := model.NewHostBufferBackend()
	return &SceneSource{
		Path:     filepath.Join(dir, "scene.yaml"),
		AssetDir: dir,
		Loader:   loader.NewLoader(loader.WithWorkers(2)),
		Textures: textures,
		Builtins: builtins,
		Buffers:  buffers,
	}, buffers
}

func TestSceneSource_Load(t *testing.T) {
	src, buffers := newTestSource(t)
	var progress [][2]int
	src.Progress = func(done, total int) { progress = append(progress, [2]int{done, total}) }

	sc, assets, err := src.Load(2)
	require.NoError(t, err)

	assert.Equal(t, "source", sc.Name())
	assert.Equal(t, "textured_meshes", sc.Mode())
	assert.Equal(t, 2, sc.Count())
	assert.Len(t, sc.Lights(), 1)
	assert.InDelta(t, 2, sc.Camera().Aspect(), 1e-6)

	// The quad plus one mesh per model, each with a vertex and an index buffer.
	require.Len(t, assets.Meshes, 2)
	require.NotNil(t, assets.Quad)
	assert.Equal(t, 6, buffers.Live())
	assert.Equal(t, src.Builtins.Dice, assets.QuadTexture)

	objects := sc.Objects()
	assert.Equal(t, uint32(0), objects[0].Model())
	assert.Equal(t, uint32(1), objects[1].Model())

	// Both models get one material: the plane's red texture and the bare default.
	require.Len(t, assets.Materials, 2)
	red, ok := src.Textures.Index(filepath.Join(src.AssetDir, "models", "red.png"))
	require.True(t, ok)
	assert.Equal(t, red, assets.Materials[0].AlbedoTexture)
	assert.Equal(t, src.Builtins.White, assets.Materials[1].AlbedoTexture)
	assert.Equal(t, []uint32{0}, assets.Models[0].MaterialIndices)
	assert.Equal(t, []uint32{1}, assets.Models[1].MaterialIndices)

	assert.Equal(t, [][2]int{{1, 1}}, progress)
}

func TestSceneSource_DestroyReleasesBuffers(t *testing.T) {
	src, buffers := newTestSource(t)
	_, assets, err := src.Load(1)
	require.NoError(t, err)

	src.Destroy(assets, linkage.NewCache())
	assert.Equal(t, 0, buffers.Live())
	assert.Nil(t, assets.Quad)
	assert.Empty(t, assets.Meshes)

	src.Destroy(nil, nil)
}

func TestSceneSource_MissingModelUploadsNothing(t *testing.T) {
	src, buffers := newTestSource(t)
	require.NoError(t, os.Remove(filepath.Join(src.AssetDir, "models", "bare.obj")))

	_, _, err := src.Load(1)
	assert.Error(t, err)
	assert.Equal(t, 0, buffers.Live())
}

func TestSceneSource_InvalidSceneFile(t *testing.T) {
	src, _ := newTestSource(t)
	writeFile(t, src.Path, []byte("objects:\n  - name: a\n    model: nothing\n"))

	_, _, err := src.Load(1)
	assert.True(t, errors.Is(err, scene.ErrInvalidSceneFile))
}
