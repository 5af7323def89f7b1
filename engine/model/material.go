package model

import (
	"github.com/Carmen-Shannon/oxy-sandbox/common"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/texture"
)

// ResolveMaterial loads the textures of an imported material through lib. Maps the source
// does not reference, and maps that fail to load, fall back to the built-in textures:
// white for albedo and emissive, the flat normal for normals, black for specular and bump.
//
// Parameters:
//   - imp: the imported material
//   - lib: the texture library
//   - fallback: the built-in texture indices
//
// Returns:
//   - Material: the resolved material
func ResolveMaterial(imp common.ImportedMaterial, lib texture.Library, fallback texture.Builtins) Material {
	return Material{
		Name:            imp.Name,
		Albedo:          imp.Albedo,
		Emissive:        imp.Emissive,
		Smoothness:      common.Clamp(imp.Smoothness, 0, 1),
		AlbedoTexture:   loadTexture(lib, imp.AlbedoTexture, fallback.White),
		EmissiveTexture: loadTexture(lib, imp.EmissiveTexture, fallback.White),
		SpecularTexture: loadTexture(lib, imp.SpecularTexture, fallback.Black),
		NormalsTexture:  loadTexture(lib, imp.NormalsTexture, fallback.Normal),
		BumpTexture:     loadTexture(lib, imp.BumpTexture, fallback.Black),
	}
}

// DefaultMaterial is used for submeshes whose material index is out of range.
func DefaultMaterial(fallback texture.Builtins) Material {
	return Material{
		Name:            "default",
		Albedo:          [3]float32{1, 1, 1},
		AlbedoTexture:   fallback.White,
		EmissiveTexture: fallback.White,
		SpecularTexture: fallback.Black,
		NormalsTexture:  fallback.Normal,
		BumpTexture:     fallback.Black,
	}
}

func loadTexture(lib texture.Library, t *common.ImportedTexture, fallback uint32) uint32 {
	if t == nil {
		return fallback
	}
	var idx uint32 = texture.NotFound
	switch {
	case t.Path != "":
		idx, _ = lib.Load(t.Path)
	case len(t.Data) > 0:
		idx, _ = lib.LoadBytes(t.Key(), t.Data)
	}
	return texture.Or(idx, fallback)
}
