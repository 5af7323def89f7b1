// Package camera provides a free-fly perspective camera and a keyboard and mouse controller for it.
package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-sandbox/common"
	"github.com/go-gl/mathgl/mgl32"
)

// maxPitch keeps the view direction away from the up axis so LookAt stays defined.
const maxPitch = 89.0

// WorldUp is the up axis shared by the view matrix and vertical movement.
var WorldUp = mgl32.Vec3{0, 1, 0}

type cameraImpl struct {
	mu *sync.Mutex

	position mgl32.Vec3
	// yaw and pitch are in degrees. Yaw -90 looks down -Z.
	yaw   float32
	pitch float32

	// fov is the vertical field of view in degrees.
	fov    float32
	aspect float32
	near   float32
	far    float32

	view           mgl32.Mat4
	projection     mgl32.Mat4
	viewProjection mgl32.Mat4
}

// Camera defines the interface for a free-fly perspective camera.
// The camera keeps its matrices current after every mutation.
type Camera interface {
	// Position returns the camera's world-space position.
	Position() mgl32.Vec3

	// Yaw returns the horizontal look angle in degrees.
	Yaw() float32

	// Pitch returns the vertical look angle in degrees, within [-89, 89].
	Pitch() float32

	// Fov returns the vertical field of view in degrees.
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	Aspect() float32

	// Near returns the near clipping plane distance.
	Near() float32

	// Far returns the far clipping plane distance.
	Far() float32

	// Forward returns the unit view direction.
	//
	// Returns:
	//   - mgl32.Vec3: the direction the camera looks along
	Forward() mgl32.Vec3

	// Right returns the unit vector to the camera's right, parallel to the ground plane.
	//
	// Returns:
	//   - mgl32.Vec3: the right vector
	Right() mgl32.Vec3

	// View returns the current view matrix.
	View() mgl32.Mat4

	// Projection returns the current projection matrix with depth mapped to [0, 1].
	Projection() mgl32.Mat4

	// ViewProjection returns Projection * View.
	ViewProjection() mgl32.Mat4

	// SetPosition moves the camera to a world-space position.
	//
	// Parameters:
	//   - p: the new position
	SetPosition(p mgl32.Vec3)

	// Move translates the camera by a world-space offset.
	//
	// Parameters:
	//   - delta: the offset to add to the position
	Move(delta mgl32.Vec3)

	// Rotate adds to the yaw and pitch, in degrees. Pitch is clamped to [-89, 89].
	//
	// Parameters:
	//   - dYaw: yaw change in degrees
	//   - dPitch: pitch change in degrees
	Rotate(dYaw, dPitch float32)

	// SetAspect sets the aspect ratio, typically after a resize.
	//
	// Parameters:
	//   - aspect: width / height; non-positive values are ignored
	SetAspect(aspect float32)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera at (0, 0, 3) looking down -Z with a 45 degree field of view.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:       &sync.Mutex{},
		position: mgl32.Vec3{0, 0, 3},
		yaw:      -90,
		pitch:    0,
		fov:      45,
		aspect:   1,
		near:     0.1,
		far:      100,
	}
	for _, option := range options {
		option(c)
	}
	c.pitch = common.Clamp(c.pitch, -maxPitch, maxPitch)
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) Yaw() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.yaw
}

func (c *cameraImpl) Pitch() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pitch
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) Forward() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.forward()
}

func (c *cameraImpl) Right() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.right()
}

func (c *cameraImpl) View() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *cameraImpl) Projection() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projection
}

func (c *cameraImpl) ViewProjection() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjection
}

func (c *cameraImpl) SetPosition(p mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = p
	c.updateMatrices()
}

func (c *cameraImpl) Move(delta mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = c.position.Add(delta)
	c.updateMatrices()
}

func (c *cameraImpl) Rotate(dYaw, dPitch float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.yaw = float32(math.Mod(float64(c.yaw+dYaw), 360))
	c.pitch = common.Clamp(c.pitch+dPitch, -maxPitch, maxPitch)
	c.updateMatrices()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	if aspect <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

// forward computes the view direction from yaw and pitch. Caller must hold the mutex.
func (c *cameraImpl) forward() mgl32.Vec3 {
	yaw := float64(mgl32.DegToRad(c.yaw))
	pitch := float64(mgl32.DegToRad(c.pitch))
	return mgl32.Vec3{
		float32(math.Cos(yaw) * math.Cos(pitch)),
		float32(math.Sin(pitch)),
		float32(math.Sin(yaw) * math.Cos(pitch)),
	}.Normalize()
}

// right is forward x up. Caller must hold the mutex.
func (c *cameraImpl) right() mgl32.Vec3 {
	return c.forward().Cross(WorldUp).Normalize()
}

// updateMatrices recalculates the view, projection and view-projection matrices.
// Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	c.view = mgl32.LookAtV(c.position, c.position.Add(c.forward()), WorldUp)
	c.projection = common.Projection(mgl32.DegToRad(c.fov), c.aspect, c.near, c.far)
	c.viewProjection = c.projection.Mul4(c.view)
}
