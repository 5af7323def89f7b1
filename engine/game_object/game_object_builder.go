package game_object

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// GameObjectBuilderOption is a functional option for configuring a GameObject via NewGameObject.
type GameObjectBuilderOption func(*gameObject)

// WithID sets the object's identifier instead of generating one.
//
// Parameters:
//   - id: the identifier
//
// Returns:
//   - GameObjectBuilderOption: option function to apply
func WithID(id uuid.UUID) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.id = id
	}
}

// WithName sets the display name.
func WithName(name string) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.name = name
	}
}

// WithEnabled sets whether the object starts enabled.
//
// Parameters:
//   - enabled: true to render the object
//
// Returns:
//   - GameObjectBuilderOption: option function to apply
func WithEnabled(enabled bool) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.enabled.Store(enabled)
	}
}

// WithModel sets the index of the model the object instances.
//
// Parameters:
//   - model: the model index
//
// Returns:
//   - GameObjectBuilderOption: option function to apply
func WithModel(model uint32) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.model = model
	}
}

// WithPosition sets the initial world-space translation.
//
// Parameters:
//   - p: the position
//
// Returns:
//   - GameObjectBuilderOption: option function to apply
func WithPosition(p mgl32.Vec3) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.position = p
	}
}

// WithScale sets the initial per-axis scale.
//
// Parameters:
//   - s: the scale factors
//
// Returns:
//   - GameObjectBuilderOption: option function to apply
func WithScale(s mgl32.Vec3) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.scale = s
	}
}

// WithRotation sets the initial rotation angles in radians.
//
// Parameters:
//   - r: rotation around X, Y and Z
//
// Returns:
//   - GameObjectBuilderOption: option function to apply
func WithRotation(r mgl32.Vec3) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.rotation = r
	}
}

// WithRotationSpeed sets the per-axis spin in radians per second.
//
// Parameters:
//   - r: angular velocity around X, Y and Z
//
// Returns:
//   - GameObjectBuilderOption: option function to apply
func WithRotationSpeed(r mgl32.Vec3) GameObjectBuilderOption {
	return func(g *gameObject) {
		g.rotationSpeed = r
	}
}
