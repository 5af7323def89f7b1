package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-sandbox/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Input is the per-frame keyboard and mouse state a controller reads.
// The window implements it.
type Input interface {
	// KeyDown reports whether a key (GLFW key code) is held.
	KeyDown(key uint32) bool

	// MouseButtonDown reports whether a mouse button is held.
	MouseButtonDown(button uint32) bool

	// CursorPosition returns the cursor position in window pixels.
	CursorPosition() (x, y float64)
}

// cameraControllerImpl is the implementation of CameraController.
type cameraControllerImpl struct {
	mu *sync.Mutex

	camera Camera

	// speed is in world units per second.
	speed float32
	// sensitivity is degrees of rotation per pixel of cursor travel.
	sensitivity float32
	// boost multiplies speed while shift is held.
	boost float32

	dragging bool
	lastX    float64
	lastY    float64
}

// CameraController maps keyboard and mouse state onto a Camera.
// WASD moves along the view plane, Q and E move down and up, shift boosts speed and
// dragging with the right mouse button looks around.
type CameraController interface {
	// Update applies one frame of input.
	//
	// Parameters:
	//   - input: the current key and mouse state
	//   - dt: the frame delta in seconds
	Update(input Input, dt float32)

	// Camera returns the controlled camera.
	Camera() Camera

	// Speed returns the movement speed in world units per second.
	Speed() float32

	// SetSpeed sets the movement speed. Non-positive values are ignored.
	//
	// Parameters:
	//   - speed: world units per second
	SetSpeed(speed float32)

	// Sensitivity returns the look sensitivity in degrees per pixel.
	Sensitivity() float32
}

var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a controller for cam.
//
// Parameters:
//   - cam: the camera to drive
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(cam Camera, options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:          &sync.Mutex{},
		camera:      cam,
		speed:       2.5,
		sensitivity: 0.1,
		boost:       4,
	}
	for _, option := range options {
		option(cc)
	}
	return cc
}

func (cc *cameraControllerImpl) Update(input Input, dt float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	cc.look(input)

	step := cc.speed * dt
	if input.KeyDown(common.KeyLeftShift) || input.KeyDown(common.KeyRightShift) {
		step *= cc.boost
	}

	forward := cc.camera.Forward()
	right := cc.camera.Right()
	var move mgl32.Vec3
	if input.KeyDown(common.KeyW) {
		move = move.Add(forward)
	}
	if input.KeyDown(common.KeyS) {
		move = move.Sub(forward)
	}
	if input.KeyDown(common.KeyD) {
		move = move.Add(right)
	}
	if input.KeyDown(common.KeyA) {
		move = move.Sub(right)
	}
	if input.KeyDown(common.KeyE) {
		move = move.Add(WorldUp)
	}
	if input.KeyDown(common.KeyQ) {
		move = move.Sub(WorldUp)
	}
	if move.Len() > 0 {
		cc.camera.Move(move.Normalize().Mul(step))
	}
}

// look turns the camera by the cursor travel since the last frame while the right button is held.
// The first frame of a drag only records the cursor. Caller must hold the mutex.
func (cc *cameraControllerImpl) look(input Input) {
	if !input.MouseButtonDown(common.MouseButtonRight) {
		cc.dragging = false
		return
	}
	x, y := input.CursorPosition()
	if cc.dragging {
		dx := float32(x-cc.lastX) * cc.sensitivity
		// Window y grows downward.
		dy := float32(cc.lastY-y) * cc.sensitivity
		if dx != 0 || dy != 0 {
			cc.camera.Rotate(dx, dy)
		}
	}
	cc.dragging = true
	cc.lastX, cc.lastY = x, y
}

func (cc *cameraControllerImpl) Camera() Camera {
	return cc.camera
}

func (cc *cameraControllerImpl) Speed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.speed
}

func (cc *cameraControllerImpl) SetSpeed(speed float32) {
	if speed <= 0 {
		return
	}
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.speed = speed
}

func (cc *cameraControllerImpl) Sensitivity() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.sensitivity
}
