package camera

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithSpeed sets the movement speed in world units per second. Non-positive values are ignored.
//
// Parameters:
//   - speed: world units per second
//
// Returns:
//   - CameraControllerOption: functional option to set the speed
func WithSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		if speed > 0 {
			cc.speed = speed
		}
	}
}

// WithSensitivity sets the look sensitivity in degrees per pixel. Non-positive values are ignored.
//
// Parameters:
//   - sensitivity: degrees per pixel of cursor travel
//
// Returns:
//   - CameraControllerOption: functional option to set the sensitivity
func WithSensitivity(sensitivity float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		if sensitivity > 0 {
			cc.sensitivity = sensitivity
		}
	}
}

// WithBoost sets the speed multiplier applied while shift is held.
func WithBoost(boost float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		if boost > 0 {
			cc.boost = boost
		}
	}
}
