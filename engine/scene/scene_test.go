package scene

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-sandbox/engine/game_object"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/light"
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(objs []game_object.GameObject) []string {
	out := make([]string, len(objs))
	for i, o := range objs {
		out[i] = o.Name()
	}
	return out
}

func TestScene_InsertionOrder(t *testing.T) {
	s := NewScene("test", nil)
	a := game_object.NewGameObject(game_object.WithName("a"))
	b := game_object.NewGameObject(game_object.WithName("b"))
	c := game_object.NewGameObject(game_object.WithName("c"))

	s.AddObject(a)
	s.AddObject(b)
	s.AddObject(c)
	s.AddObject(b)
	assert.Equal(t, []string{"a", "b", "c"}, names(s.Objects()))

	assert.True(t, s.RemoveObject(b.ID()))
	assert.False(t, s.RemoveObject(b.ID()))
	assert.Equal(t, []string{"a", "c"}, names(s.Objects()))
	assert.Same(t, c, s.Get(c.ID()))
	assert.Nil(t, s.Get(b.ID()))

	d := game_object.NewGameObject(game_object.WithName("d"))
	s.AddObject(d)
	assert.Equal(t, []string{"a", "c", "d"}, names(s.Objects()))
	assert.Equal(t, 3, s.Count())

	// The returned slice is a copy.
	objs := s.Objects()
	objs[0] = nil
	assert.NotNil(t, s.Objects()[0])

	s.Clear()
	assert.Equal(t, 0, s.Count())
	assert.NotNil(t, s.Camera())
}

func TestScene_Lights(t *testing.T) {
	sun := light.NewLight(light.LightTypeDirectional)
	bulb := light.NewLight(light.LightTypePoint)
	s := NewScene("lit", nil, WithLights(sun))
	s.AddLight(bulb)
	assert.Equal(t, []light.Light{sun, bulb}, s.Lights())

	s.RemoveLight(sun)
	assert.Equal(t, []light.Light{bulb}, s.Lights())
	s.RemoveLight(sun)
	assert.Len(t, s.Lights(), 1)
}

func TestScene_UpdateTransformsSkipsDisabled(t *testing.T) {
	on := game_object.NewGameObject(game_object.WithPosition(mgl32.Vec3{1, 0, 0}))
	off := game_object.NewGameObject(game_object.WithPosition(mgl32.Vec3{1, 0, 0}), game_object.WithEnabled(false))
	s := NewScene("t", nil, WithObjects(on, off))

	vp := mgl32.Scale3D(2, 2, 2)
	s.UpdateTransforms(vp, 0.016)

	assert.Equal(t, vp.Mul4(on.World()), on.WVP())
	assert.Equal(t, mgl32.Vec4{1, 0, 0, 1}, on.World().Col(3))
	assert.Equal(t, mgl32.Ident4(), off.World())
}

const sceneYAML = `
name: demo
mode: textured_meshes
camera:
  position: [0, 1, 5]
  yaw: -90
  pitch: -10
  fov: 60
  near: 0.5
  far: 50
models:
  - name: crate
    path: models/crate.obj
  - name: duck
    path: models/duck.gltf
objects:
  - name: crate_a
    model: crate
    position: [-1, 0, 0]
  - name: duck
    model: duck
    position: [1, 0, 0]
    scale: [0.5, 0.5, 0.5]
    spin: [0, 90, 0]
lights:
  - type: directional
    direction: [0, -1, -1]
    color: [1, 1, 0.9]
  - type: point
    position: [0, 3, 0]
    intensity: 2
`

func TestParseFile_AndBuild(t *testing.T) {
	f, err := ParseFile([]byte(sceneYAML))
	require.NoError(t, err)
	assert.Equal(t, "demo", f.Name)
	assert.Equal(t, "textured_meshes", f.Mode)
	require.Len(t, f.Models, 2)
	assert.Equal(t, "models/duck.gltf", f.Models[1].Path)

	s, err := f.Build(map[string]uint32{"crate": 0, "duck": 1}, 16.0/9.0)
	require.NoError(t, err)
	assert.Equal(t, "demo", s.Name())
	assert.Equal(t, "textured_meshes", s.Mode())

	cam := s.Camera()
	assert.Equal(t, mgl32.Vec3{0, 1, 5}, cam.Position())
	assert.Equal(t, float32(60), cam.Fov())
	assert.Equal(t, float32(0.5), cam.Near())
	assert.InDelta(t, 16.0/9.0, cam.Aspect(), 1e-6)

	objs := s.Objects()
	require.Len(t, objs, 2)
	assert.Equal(t, "crate_a", objs[0].Name())
	assert.Equal(t, uint32(0), objs[0].Model())
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, objs[0].Scale())
	assert.Equal(t, uint32(1), objs[1].Model())
	assert.Equal(t, mgl32.Vec3{0.5, 0.5, 0.5}, objs[1].Scale())
	assert.InDelta(t, mgl32.DegToRad(90), objs[1].RotationSpeed().Y(), 1e-6)

	lights := s.Lights()
	require.Len(t, lights, 2)
	assert.Equal(t, light.LightTypeDirectional, lights[0].Type())
	assert.InDelta(t, -0.7071, lights[0].Direction().Z(), 1e-3)
	assert.Equal(t, light.LightTypePoint, lights[1].Type())
	assert.Equal(t, float32(2), lights[1].Intensity())
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, lights[1].Color())
}

func TestParseFile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown key", "cameras: {}\n"},
		{"undeclared model", "objects:\n  - name: x\n    model: ghost\n"},
		{"duplicate model", "models:\n  - {name: a, path: a.obj}\n  - {name: a, path: b.obj}\n"},
		{"model without path", "models:\n  - {name: a}\n"},
		{"bad light", "lights:\n  - type: spot\n"},
		{"far before near", "camera: {near: 5, far: 1}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFile([]byte(tt.yaml))
			require.Error(t, err)
			if tt.name != "unknown key" {
				assert.True(t, errors.Is(err, ErrInvalidSceneFile))
			}
		})
	}
}

func TestBuild_MissingModelIndex(t *testing.T) {
	f, err := ParseFile([]byte(sceneYAML))
	require.NoError(t, err)
	_, err = f.Build(map[string]uint32{"crate": 0}, 1)
	assert.True(t, errors.Is(err, ErrInvalidSceneFile))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sceneYAML), 0o644))
	f, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, f.Objects, 2)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadFile_DefaultScene(t *testing.T) {
	f, err := LoadFile(filepath.Join("..", "..", "assets", "scenes", "default.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "textured_meshes", f.Mode)
	require.Len(t, f.Models, 1)
	assert.Len(t, f.Objects, 3)
	assert.Len(t, f.Lights, 2)
}
