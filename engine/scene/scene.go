// Package scene holds the flat, insertion-ordered set of objects and lights drawn each frame,
// along with the camera that views them.
package scene

import (
	"log"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-sandbox/engine/camera"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/game_object"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/light"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Scene manages the objects, lights and camera of one view.
// Objects are kept in insertion order and Objects always returns them in that order.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// SetCamera replaces the scene's camera.
	//
	// Parameters:
	//   - cam: the new camera
	SetCamera(cam camera.Camera)

	// Mode returns the render mode name requested by the scene, or "" for the renderer default.
	Mode() string

	// AddObject appends an object. Adding an object whose ID is already present is a no-op.
	//
	// Parameters:
	//   - obj: the object to add
	//
	// Returns:
	//   - uuid.UUID: the object's ID
	AddObject(obj game_object.GameObject) uuid.UUID

	// RemoveObject removes an object by ID, keeping the order of the rest.
	//
	// Parameters:
	//   - id: the object ID
	//
	// Returns:
	//   - bool: true if the object was present
	RemoveObject(id uuid.UUID) bool

	// Get retrieves an object by ID. Returns nil if not found.
	//
	// Parameters:
	//   - id: the object ID
	//
	// Returns:
	//   - game_object.GameObject: the object or nil
	Get(id uuid.UUID) game_object.GameObject

	// Objects returns the objects in insertion order. The slice is a copy.
	//
	// Returns:
	//   - []game_object.GameObject: the scene's objects
	Objects() []game_object.GameObject

	// Count returns the number of objects in the scene.
	Count() int

	// AddLight appends a light.
	//
	// Parameters:
	//   - l: the light to add
	AddLight(l light.Light)

	// RemoveLight removes a light. Unknown lights are ignored.
	//
	// Parameters:
	//   - l: the light to remove
	RemoveLight(l light.Light)

	// Lights returns the lights in insertion order. The slice is a copy.
	//
	// Returns:
	//   - []light.Light: the scene's lights
	Lights() []light.Light

	// UpdateTransforms recomputes every enabled object's World and WVP = viewProjection * World.
	//
	// Parameters:
	//   - viewProjection: the camera's view-projection matrix for this frame
	//   - dt: the frame delta in seconds, used to advance object spin
	UpdateTransforms(viewProjection mgl32.Mat4, dt float32)

	// Clear removes every object and light. The camera is kept.
	Clear()
}

// scene is the implementation of the Scene interface.
type scene struct {
	mu sync.RWMutex

	name   string
	mode   string
	camera camera.Camera

	objects []game_object.GameObject
	index   map[uuid.UUID]int
	lights  []light.Light
}

var _ Scene = &scene{}

// NewScene creates an empty scene viewed by cam.
//
// Parameters:
//   - name: the scene's identifier
//   - cam: the camera; a default camera is created when nil
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the new scene
func NewScene(name string, cam camera.Camera, options ...SceneBuilderOption) Scene {
	if cam == nil {
		cam = camera.NewCamera()
	}
	s := &scene{
		name:   name,
		camera: cam,
		index:  make(map[uuid.UUID]int),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Camera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.camera
}

func (s *scene) SetCamera(cam camera.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.camera = cam
}

func (s *scene) Mode() string {
	return s.mode
}

func (s *scene) AddObject(obj game_object.GameObject) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addObject(obj)
}

// addObject appends obj. Caller must hold the write lock.
func (s *scene) addObject(obj game_object.GameObject) uuid.UUID {
	id := obj.ID()
	if _, ok := s.index[id]; ok {
		log.Printf("[Scene] %s: object %s already added", s.name, id)
		return id
	}
	s.index[id] = len(s.objects)
	s.objects = append(s.objects, obj)
	return id
}

func (s *scene) RemoveObject(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.objects = slices.Delete(s.objects, i, i+1)
	delete(s.index, id)
	for j := i; j < len(s.objects); j++ {
		s.index[s.objects[j].ID()] = j
	}
	return true
}

func (s *scene) Get(id uuid.UUID) game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i, ok := s.index[id]; ok {
		return s.objects[i]
	}
	return nil
}

func (s *scene) Objects() []game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.objects)
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

func (s *scene) AddLight(l light.Light) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lights = append(s.lights, l)
}

func (s *scene) RemoveLight(l light.Light) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := slices.Index(s.lights, l); i >= 0 {
		s.lights = slices.Delete(s.lights, i, i+1)
	}
}

func (s *scene) Lights() []light.Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.lights)
}

func (s *scene) UpdateTransforms(viewProjection mgl32.Mat4, dt float32) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, obj := range s.objects {
		if obj.Enabled() {
			obj.UpdateTransform(viewProjection, dt)
		}
	}
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects = nil
	s.lights = nil
	s.index = make(map[uuid.UUID]int)
}
