// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// TextureStagingData holds RGBA pixel data for a texture pending GPU upload.
type TextureStagingData struct {
	// Label is a debug label used for the created GPU texture.
	Label string
	// Pixels is the tightly packed RGBA8 pixel data, 4 bytes per pixel, rows bottom-up.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
}

// SamplerStagingData holds the configuration for a sampler pending GPU creation.
// Zero values fall back to the linear, clamp-to-edge defaults.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range in each dimension (U, V, W).
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail (LOD) for mipmapping.
	LodMinClamp, LodMaxClamp float32
	// MaxAnisotropy specifies the maximum anisotropy level for anisotropic filtering.
	MaxAnisotropy uint16
}

// ImportedMaterial represents material properties from an imported model file.
// Texture entries are nil when the source material does not reference that map.
type ImportedMaterial struct {
	// Name is the material identifier.
	Name string

	// Albedo is the diffuse color.
	Albedo mgl32.Vec3

	// Emissive is the emitted color.
	Emissive mgl32.Vec3

	// Smoothness is derived from the source shininess or roughness, in the range [0, 1].
	Smoothness float32

	// AlbedoTexture is the diffuse/base color map.
	AlbedoTexture *ImportedTexture

	// EmissiveTexture is the emission map.
	EmissiveTexture *ImportedTexture

	// SpecularTexture is the specular or metallic-roughness map.
	SpecularTexture *ImportedTexture

	// NormalsTexture is the tangent-space normal map.
	NormalsTexture *ImportedTexture

	// BumpTexture is the height/bump map.
	BumpTexture *ImportedTexture
}

// Textures returns the material's texture slots in the order albedo, emissive, specular, normals, bump.
// Unreferenced slots are nil.
func (m ImportedMaterial) Textures() []*ImportedTexture {
	return []*ImportedTexture{m.AlbedoTexture, m.EmissiveTexture, m.SpecularTexture, m.NormalsTexture, m.BumpTexture}
}

// ImportedTexture references texture data extracted from a model file.
// For embedded textures (GLB), the Data field contains raw image bytes.
// For external textures, the Path field contains the resolved file path.
type ImportedTexture struct {
	// Name is an identifier for this texture (e.g., "albedo", "normal").
	Name string

	// Path is the file path for external textures (empty for embedded).
	Path string

	// Data contains raw image bytes for embedded textures.
	Data []byte

	// MimeType indicates the image format (e.g., "image/png", "image/jpeg").
	MimeType string
}

// Key returns the identity used for idempotent texture loading: the path for external
// textures, or the name for embedded ones.
func (t *ImportedTexture) Key() string {
	if t.Path != "" {
		return t.Path
	}
	return "embedded:" + t.Name
}
