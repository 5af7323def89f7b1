package scene

import (
	"bytes"
	"os"

	"github.com/Carmen-Shannon/oxy-sandbox/engine/camera"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/game_object"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/light"
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// ErrInvalidSceneFile marks every scene file validation failure.
var ErrInvalidSceneFile = errors.New("invalid scene file")

// File is the YAML layout of a scene file.
type File struct {
	Name    string       `yaml:"name"`
	Camera  CameraFile   `yaml:"camera"`
	Models  []ModelFile  `yaml:"models"`
	Objects []ObjectFile `yaml:"objects"`
	Lights  []LightFile  `yaml:"lights"`
	Mode    string       `yaml:"mode"`
}

// CameraFile describes the starting camera. Angles are in degrees; zero values keep the camera defaults.
type CameraFile struct {
	Position [3]float32 `yaml:"position"`
	Yaw      *float32   `yaml:"yaw"`
	Pitch    float32    `yaml:"pitch"`
	Fov      float32    `yaml:"fov"`
	Near     float32    `yaml:"near"`
	Far      float32    `yaml:"far"`
}

// ModelFile names a model file. Paths are relative to the asset directory.
type ModelFile struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// ObjectFile places an instance of a named model. Rotation is in degrees and spin in degrees per second.
type ObjectFile struct {
	Name     string      `yaml:"name"`
	Model    string      `yaml:"model"`
	Position [3]float32  `yaml:"position"`
	Scale    *[3]float32 `yaml:"scale"`
	Rotation [3]float32  `yaml:"rotation"`
	Spin     [3]float32  `yaml:"spin"`
}

// LightFile describes one light. Type is "directional" or "point".
type LightFile struct {
	Type      string      `yaml:"type"`
	Color     *[3]float32 `yaml:"color"`
	Direction [3]float32  `yaml:"direction"`
	Position  [3]float32  `yaml:"position"`
	Intensity *float32    `yaml:"intensity"`
}

// LoadFile reads and validates a scene file.
//
// Parameters:
//   - path: the YAML file path
//
// Returns:
//   - *File: the parsed scene file
//   - error: error if the file cannot be read, parsed or validated
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "scene: read file")
	}
	f, err := ParseFile(data)
	if err != nil {
		return nil, errors.Wrapf(err, "scene: %s", path)
	}
	return f, nil
}

// ParseFile decodes and validates scene YAML. Unknown keys are rejected.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - *File: the parsed scene file
//   - error: error if the document is malformed or invalid
func ParseFile(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, errors.Wrap(err, "parse YAML")
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks that model names are unique and non-empty, that every object names a
// declared model and that every light type is known.
//
// Returns:
//   - error: an error marked ErrInvalidSceneFile describing the first problem
func (f *File) Validate() error {
	models := make(map[string]bool, len(f.Models))
	for i, m := range f.Models {
		if m.Name == "" || m.Path == "" {
			return errors.Mark(errors.Newf("model %d needs a name and a path", i), ErrInvalidSceneFile)
		}
		if models[m.Name] {
			return errors.Mark(errors.Newf("model %q declared twice", m.Name), ErrInvalidSceneFile)
		}
		models[m.Name] = true
	}
	for i, o := range f.Objects {
		if !models[o.Model] {
			return errors.Mark(errors.Newf("object %d (%s) uses undeclared model %q", i, o.Name, o.Model), ErrInvalidSceneFile)
		}
	}
	for i, l := range f.Lights {
		if _, err := light.ParseLightType(l.Type); err != nil {
			return errors.Mark(errors.Wrapf(err, "light %d", i), ErrInvalidSceneFile)
		}
	}
	if f.Camera.Near < 0 || f.Camera.Far < 0 || (f.Camera.Far > 0 && f.Camera.Far <= f.Camera.Near) {
		return errors.Mark(errors.Newf("camera near %v / far %v", f.Camera.Near, f.Camera.Far), ErrInvalidSceneFile)
	}
	return nil
}

// Build creates a scene from the file. The models map gives the engine's index for each model name.
//
// Parameters:
//   - models: model name to model index
//   - aspect: the viewport aspect ratio for the camera
//
// Returns:
//   - Scene: the populated scene
//   - error: error if an object's model has no index
func (f *File) Build(models map[string]uint32, aspect float32) (Scene, error) {
	camOpts := []camera.CameraBuilderOption{
		camera.WithPosition(mgl32.Vec3(f.Camera.Position)),
		camera.WithPitch(f.Camera.Pitch),
		camera.WithFov(f.Camera.Fov),
		camera.WithAspect(aspect),
	}
	if f.Camera.Yaw != nil {
		camOpts = append(camOpts, camera.WithYaw(*f.Camera.Yaw))
	}
	if f.Camera.Near > 0 && f.Camera.Far > 0 {
		camOpts = append(camOpts, camera.WithClipPlanes(f.Camera.Near, f.Camera.Far))
	}

	objects := make([]game_object.GameObject, 0, len(f.Objects))
	for i, o := range f.Objects {
		idx, ok := models[o.Model]
		if !ok {
			return nil, errors.Mark(errors.Newf("object %d (%s): model %q was not loaded", i, o.Name, o.Model), ErrInvalidSceneFile)
		}
		scale := mgl32.Vec3{1, 1, 1}
		if o.Scale != nil {
			scale = mgl32.Vec3(*o.Scale)
		}
		objects = append(objects, game_object.NewGameObject(
			game_object.WithName(o.Name),
			game_object.WithModel(idx),
			game_object.WithPosition(mgl32.Vec3(o.Position)),
			game_object.WithScale(scale),
			game_object.WithRotation(degreesToRadians(o.Rotation)),
			game_object.WithRotationSpeed(degreesToRadians(o.Spin)),
		))
	}

	lights := make([]light.Light, 0, len(f.Lights))
	for _, l := range f.Lights {
		lt, _ := light.ParseLightType(l.Type)
		opts := []light.LightBuilderOption{light.WithPosition(mgl32.Vec3(l.Position))}
		if dir := mgl32.Vec3(l.Direction); dir.Len() > 0 {
			opts = append(opts, light.WithDirection(dir))
		}
		if l.Color != nil {
			opts = append(opts, light.WithColor(mgl32.Vec3(*l.Color)))
		}
		if l.Intensity != nil {
			opts = append(opts, light.WithIntensity(*l.Intensity))
		}
		lights = append(lights, light.NewLight(lt, opts...))
	}

	return NewScene(f.Name, camera.NewCamera(camOpts...),
		WithObjects(objects...),
		WithLights(lights...),
		WithMode(f.Mode),
	), nil
}

func degreesToRadians(v [3]float32) mgl32.Vec3 {
	return mgl32.Vec3{mgl32.DegToRad(v[0]), mgl32.DegToRad(v[1]), mgl32.DegToRad(v[2])}
}
