package common

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// DepthRangeCorrection remaps OpenGL clip-space depth [-1, 1] produced by mgl32.Perspective
// into the WebGPU depth range [0, 1]. It is left-multiplied onto a projection matrix.
var DepthRangeCorrection = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// PutFloat32s writes each value as a little-endian float32 into buf, 4 bytes per value.
// buf must hold at least 4*len(values) bytes.
//
// Parameters:
//   - buf: destination byte slice
//   - values: the floats to encode
func PutFloat32s(buf []byte, values ...float32) {
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
}

// Float32sFromBytes decodes little-endian float32 values from buf.
//
// Parameters:
//   - buf: source byte slice, its length must be a multiple of 4
//
// Returns:
//   - []float32: the decoded values
func Float32sFromBytes(buf []byte) []float32 {
	out := make([]float32, len(buf)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return out
}

// ModelMatrix builds a world matrix from a translation, a yaw/pitch/roll rotation in radians and a scale.
// The composition is T * Ry * Rx * Rz * S, column-major.
//
// Parameters:
//   - position: the translation in world space
//   - rotation: the rotation angles around X, Y and Z in radians
//   - scale: the per-axis scale factors
//
// Returns:
//   - mgl32.Mat4: the world matrix
func ModelMatrix(position, rotation, scale mgl32.Vec3) mgl32.Mat4 {
	t := mgl32.Translate3D(position.X(), position.Y(), position.Z())
	r := mgl32.HomogRotate3DY(rotation.Y()).
		Mul4(mgl32.HomogRotate3DX(rotation.X())).
		Mul4(mgl32.HomogRotate3DZ(rotation.Z()))
	s := mgl32.Scale3D(scale.X(), scale.Y(), scale.Z())
	return t.Mul4(r).Mul4(s)
}

// Projection builds a WebGPU-ready perspective projection.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance
//   - far: far clipping plane distance
//
// Returns:
//   - mgl32.Mat4: the projection matrix with depth mapped to [0, 1]
func Projection(fovY, aspect, near, far float32) mgl32.Mat4 {
	return DepthRangeCorrection.Mul4(mgl32.Perspective(fovY, aspect, near, far))
}
