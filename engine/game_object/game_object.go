// Package game_object defines the scene entity: a model instance with a transform and the
// parameter block it was given in the current frame.
package game_object

import (
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-sandbox/common"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/frame_params"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

type gameObject struct {
	id      uuid.UUID
	name    string
	enabled atomic.Bool

	// model indexes the engine's model table.
	model uint32

	position mgl32.Vec3
	// rotation is in radians around X, Y and Z.
	rotation mgl32.Vec3
	// rotationSpeed is in radians per second and is applied by UpdateTransform.
	rotationSpeed mgl32.Vec3
	scale         mgl32.Vec3

	world mgl32.Mat4
	wvp   mgl32.Mat4

	localParams frame_params.ParameterBlock
}

// GameObject defines the interface for a scene entity. The world and world-view-projection
// matrices are derived from the transform by UpdateTransform once per frame.
type GameObject interface {
	// ID returns the object's unique identifier.
	//
	// Returns:
	//   - uuid.UUID: the object ID
	ID() uuid.UUID

	// Name returns the object's display name.
	Name() string

	// Enabled returns whether this object is enabled for rendering.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// Model returns the index of the model this object instances.
	//
	// Returns:
	//   - uint32: the model index
	Model() uint32

	// Position returns the world-space translation.
	Position() mgl32.Vec3

	// Rotation returns the rotation angles around X, Y and Z in radians.
	Rotation() mgl32.Vec3

	// RotationSpeed returns the per-axis spin in radians per second.
	RotationSpeed() mgl32.Vec3

	// Scale returns the per-axis scale factors.
	Scale() mgl32.Vec3

	// World returns the world matrix computed by the last UpdateTransform.
	World() mgl32.Mat4

	// WVP returns the world-view-projection matrix computed by the last UpdateTransform.
	WVP() mgl32.Mat4

	// LocalParams returns the parameter block written for this object in the current frame.
	LocalParams() frame_params.ParameterBlock

	// UpdateTransform advances the spin by dt, then recomputes World and WVP = viewProjection * World.
	//
	// Parameters:
	//   - viewProjection: the camera's view-projection matrix
	//   - dt: the frame delta in seconds
	UpdateTransform(viewProjection mgl32.Mat4, dt float32)

	// SetEnabled enables or disables the object for rendering.
	SetEnabled(enabled bool)

	// SetModel sets the model index.
	SetModel(model uint32)

	// SetPosition sets the world-space translation.
	SetPosition(p mgl32.Vec3)

	// SetRotation sets the rotation angles in radians.
	SetRotation(r mgl32.Vec3)

	// SetRotationSpeed sets the per-axis spin in radians per second.
	SetRotationSpeed(r mgl32.Vec3)

	// SetScale sets the per-axis scale factors.
	SetScale(s mgl32.Vec3)

	// SetLocalParams records the parameter block written for this object.
	//
	// Parameters:
	//   - block: the block returned by the frame parameter writer
	SetLocalParams(block frame_params.ParameterBlock)
}

var _ GameObject = &gameObject{}

// NewGameObject creates an enabled GameObject at the origin with unit scale and a fresh ID.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the new object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	g := &gameObject{
		id:    uuid.New(),
		scale: mgl32.Vec3{1, 1, 1},
		world: mgl32.Ident4(),
		wvp:   mgl32.Ident4(),
	}
	g.enabled.Store(true)
	for _, option := range options {
		option(g)
	}
	return g
}

func (g *gameObject) ID() uuid.UUID {
	return g.id
}

func (g *gameObject) Name() string {
	return g.name
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) Model() uint32 {
	return g.model
}

func (g *gameObject) Position() mgl32.Vec3 {
	return g.position
}

func (g *gameObject) Rotation() mgl32.Vec3 {
	return g.rotation
}

func (g *gameObject) RotationSpeed() mgl32.Vec3 {
	return g.rotationSpeed
}

func (g *gameObject) Scale() mgl32.Vec3 {
	return g.scale
}

func (g *gameObject) World() mgl32.Mat4 {
	return g.world
}

func (g *gameObject) WVP() mgl32.Mat4 {
	return g.wvp
}

func (g *gameObject) LocalParams() frame_params.ParameterBlock {
	return g.localParams
}

func (g *gameObject) UpdateTransform(viewProjection mgl32.Mat4, dt float32) {
	g.rotation = g.rotation.Add(g.rotationSpeed.Mul(dt))
	g.world = common.ModelMatrix(g.position, g.rotation, g.scale)
	g.wvp = viewProjection.Mul4(g.world)
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) SetModel(model uint32) {
	g.model = model
}

func (g *gameObject) SetPosition(p mgl32.Vec3) {
	g.position = p
}

func (g *gameObject) SetRotation(r mgl32.Vec3) {
	g.rotation = r
}

func (g *gameObject) SetRotationSpeed(r mgl32.Vec3) {
	g.rotationSpeed = r
}

func (g *gameObject) SetScale(s mgl32.Vec3) {
	g.scale = s
}

func (g *gameObject) SetLocalParams(block frame_params.ParameterBlock) {
	g.localParams = block
}
