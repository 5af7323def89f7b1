// Package model holds the geometry and material data the renderer draws: meshes split into
// submeshes sharing one vertex and one index buffer, the materials they reference, and the
// plain import structures the loader backends produce.
package model

import (
	"github.com/Carmen-Shannon/oxy-sandbox/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Shader locations fed by the interleaved vertex attributes.
const (
	LocationPosition  uint32 = 0
	LocationNormal    uint32 = 1
	LocationUV        uint32 = 2
	LocationTangent   uint32 = 3
	LocationBitangent uint32 = 4
)

// --- Import Types ---

// ImportedModel is the format-independent result of a loader backend.
type ImportedModel struct {
	// Name is the model identifier.
	Name string

	// Meshes holds one entry per drawable range sharing a single material.
	Meshes []ImportedMesh

	// Materials are the materials referenced by ImportedMesh.MaterialIndex.
	Materials []common.ImportedMaterial
}

// ImportedMesh is one submesh worth of de-interleaved vertex streams.
// Optional streams are empty when the source does not provide them.
type ImportedMesh struct {
	// Name is the mesh identifier.
	Name string

	// Positions holds 3 floats per vertex and is required.
	Positions []float32

	// Normals holds 3 floats per vertex.
	Normals []float32

	// UVs holds 2 floats per vertex.
	UVs []float32

	// Tangents holds 3 floats per vertex.
	Tangents []float32

	// Bitangents holds 3 floats per vertex.
	Bitangents []float32

	// Indices are triangle list indices local to this mesh.
	Indices []uint32

	// MaterialIndex references ImportedModel.Materials.
	MaterialIndex int
}

// VertexCount returns the number of vertices described by Positions.
func (m ImportedMesh) VertexCount() int {
	return len(m.Positions) / 3
}

// --- Engine Types ---

// Material is a resolved material. Texture fields are indices into the texture library
// and always point at a valid texture, using the built-in fallbacks when the source had none.
type Material struct {
	Name       string
	Albedo     mgl32.Vec3
	Emissive   mgl32.Vec3
	Smoothness float32

	AlbedoTexture   uint32
	EmissiveTexture uint32
	SpecularTexture uint32
	NormalsTexture  uint32
	BumpTexture     uint32
}

// Model ties a mesh to the materials of its submeshes.
type Model struct {
	// MeshIndex is the index of the mesh in the engine's mesh list.
	MeshIndex uint32

	// MaterialIndices holds one engine material index per submesh, in submesh order.
	MaterialIndices []uint32
}
