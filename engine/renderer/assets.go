package renderer

import (
	"github.com/Carmen-Shannon/oxy-sandbox/engine/model"
)

// Assets is the uploaded geometry and resolved materials a frame draws from.
// Scene objects reference Models by index.
type Assets struct {
	// Quad is the embedded quad drawn in ModeTexturedQuad.
	Quad *model.Mesh
	// QuadTexture is the texture library index drawn on the quad.
	QuadTexture uint32

	Meshes    []*model.Mesh
	Models    []model.Model
	Materials []model.Material

	// Default is used for submeshes whose material index is out of range.
	Default model.Material
}

// material returns the material of submesh i of m.
func (a *Assets) material(m model.Model, i int) model.Material {
	if i < len(m.MaterialIndices) {
		if idx := int(m.MaterialIndices[i]); idx < len(a.Materials) {
			return a.Materials[idx]
		}
	}
	return a.Default
}

// mesh returns the mesh drawn for model index idx, or nil.
func (a *Assets) mesh(idx uint32) (*model.Mesh, model.Model) {
	if int(idx) >= len(a.Models) {
		return nil, model.Model{}
	}
	m := a.Models[idx]
	if int(m.MeshIndex) >= len(a.Meshes) {
		return nil, m
	}
	return a.Meshes[m.MeshIndex], m
}
