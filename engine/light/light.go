// Package light defines the scene's light sources and how they are written into the global frame parameters.
package light

import (
	"strings"

	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/frame_params"
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
)

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypeDirectional represents a light with no position, only direction.
	// Used for large distant sources like the sun. No distance attenuation.
	LightTypeDirectional LightType = iota

	// LightTypePoint represents a light that emits in all directions from a position.
	LightTypePoint
)

// ErrUnknownLightType is returned by ParseLightType for names other than "directional" and "point".
var ErrUnknownLightType = errors.New("unknown light type")

// ParseLightType maps a scene file light type name onto a LightType. Matching ignores case.
//
// Parameters:
//   - name: "directional" or "point"
//
// Returns:
//   - LightType: the parsed type
//   - error: ErrUnknownLightType for any other name
func ParseLightType(name string) (LightType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "directional", "":
		return LightTypeDirectional, nil
	case "point":
		return LightTypePoint, nil
	default:
		return 0, errors.Wrapf(ErrUnknownLightType, "%q", name)
	}
}

func (t LightType) String() string {
	switch t {
	case LightTypePoint:
		return "point"
	default:
		return "directional"
	}
}

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	lightType LightType
	position  mgl32.Vec3
	direction mgl32.Vec3
	color     mgl32.Vec3
	intensity float32
	enabled   bool
}

// Light defines the interface for a light source in the scene.
//
// Lights are scene-level entities marshaled into the global parameter block
// once per frame. Type-specific properties are ignored where they do not apply:
// position for directional lights, direction for point lights.
type Light interface {
	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: the light type (directional or point)
	Type() LightType

	// Position returns the world-space position of the light.
	Position() mgl32.Vec3

	// Direction returns the normalized direction the light shines along.
	Direction() mgl32.Vec3

	// Color returns the RGB color of the light.
	Color() mgl32.Vec3

	// Intensity returns the scalar intensity multiplier for the light.
	Intensity() float32

	// Enabled returns whether this light is active for rendering.
	// Disabled lights are skipped when the global block is written.
	Enabled() bool

	// Params returns the frame parameter record for this light, with the color
	// premultiplied by the intensity.
	//
	// Returns:
	//   - frame_params.LightParams: the record written into the global block
	Params() frame_params.LightParams

	// SetPosition sets the world-space position of the light.
	SetPosition(p mgl32.Vec3)

	// SetDirection sets the direction of the light and normalizes it.
	SetDirection(d mgl32.Vec3)

	// SetColor sets the RGB color of the light.
	SetColor(c mgl32.Vec3)

	// SetIntensity sets the scalar intensity multiplier.
	SetIntensity(intensity float32)

	// SetEnabled enables or disables the light for rendering.
	SetEnabled(enabled bool)
}

var _ Light = &lightImpl{}

// NewLight creates a new Light of the specified type with sensible defaults and
// any provided options applied.
//
// Parameters:
//   - lightType: the kind of light to create (directional or point)
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		lightType: lightType,
		direction: mgl32.Vec3{0, -1, 0},
		color:     mgl32.Vec3{1, 1, 1},
		intensity: 1.0,
		enabled:   true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Position() mgl32.Vec3 {
	return l.position
}

func (l *lightImpl) Direction() mgl32.Vec3 {
	return l.direction
}

func (l *lightImpl) Color() mgl32.Vec3 {
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	return l.intensity
}

func (l *lightImpl) Enabled() bool {
	return l.enabled
}

func (l *lightImpl) Params() frame_params.LightParams {
	lt := frame_params.LightTypeDirectional
	if l.lightType == LightTypePoint {
		lt = frame_params.LightTypePoint
	}
	return frame_params.LightParams{
		Type:      lt,
		Color:     l.color.Mul(l.intensity),
		Direction: l.direction,
		Position:  l.position,
	}
}

func (l *lightImpl) SetPosition(p mgl32.Vec3) {
	l.position = p
}

func (l *lightImpl) SetDirection(d mgl32.Vec3) {
	l.direction = normalize(d)
}

func (l *lightImpl) SetColor(c mgl32.Vec3) {
	l.color = c
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.intensity = intensity
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}

// FrameParams collects the records of the enabled lights, in order, up to frame_params.MaxLights.
//
// Parameters:
//   - lights: the scene's lights
//
// Returns:
//   - []frame_params.LightParams: the records for the global block
func FrameParams(lights []Light) []frame_params.LightParams {
	out := make([]frame_params.LightParams, 0, min(len(lights), frame_params.MaxLights))
	for _, l := range lights {
		if len(out) == frame_params.MaxLights {
			break
		}
		if l.Enabled() {
			out = append(out, l.Params())
		}
	}
	return out
}

// normalize returns v scaled to unit length, or the zero vector when v has zero length.
func normalize(v mgl32.Vec3) mgl32.Vec3 {
	if v.Len() == 0 {
		return mgl32.Vec3{}
	}
	return v.Normalize()
}
