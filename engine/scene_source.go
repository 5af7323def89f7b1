package engine

import (
	"log"
	"math"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-sandbox/engine/loader"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/model"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/linkage"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/texture"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/scene"
	"github.com/cockroachdb/errors"
)

// noMaterial marks a submesh whose imported material index is out of range; it draws with the default material.
const noMaterial = math.MaxUint32

// SceneSource builds scenes and their uploaded assets from a scene file.
type SceneSource struct {
	// Path is the YAML scene file.
	Path string
	// AssetDir is the directory model paths in the scene file are relative to.
	AssetDir string

	Loader   loader.Loader
	Textures texture.Library
	Builtins texture.Builtins
	Buffers  model.BufferBackend

	// Progress receives texture preload progress, may be nil.
	Progress func(done, total int)
}

// Load reads the scene file, imports and uploads its models and builds the scene.
//
// Parameters:
//   - aspect: the viewport aspect ratio for the scene camera
//
// Returns:
//   - scene.Scene: the populated scene
//   - *renderer.Assets: the uploaded meshes and resolved materials
//   - error: a scene file, import or upload error; nothing stays uploaded on failure
func (s *SceneSource) Load(aspect float32) (scene.Scene, *renderer.Assets, error) {
	file, err := scene.LoadFile(s.Path)
	if err != nil {
		return nil, nil, err
	}
	assets, models, err := s.Assets(file)
	if err != nil {
		return nil, nil, err
	}
	sc, err := file.Build(models, aspect)
	if err != nil {
		s.Destroy(assets, nil)
		return nil, nil, err
	}
	return sc, assets, nil
}

// Assets imports every model of file, preloads the textures its materials reference and
// uploads one mesh per model. Model i of the file becomes mesh i and model index i.
//
// Parameters:
//   - file: the parsed scene file
//
// Returns:
//   - *renderer.Assets: the uploaded assets, including the textured quad
//   - map[string]uint32: model index by scene file model name
//   - error: the first import or upload error
func (s *SceneSource) Assets(file *scene.File) (*renderer.Assets, map[string]uint32, error) {
	paths := make([]string, len(file.Models))
	for i, m := range file.Models {
		paths[i] = filepath.Join(s.AssetDir, m.Path)
	}
	imported, err := s.Loader.LoadAll(paths)
	if err != nil {
		return nil, nil, errors.Wrap(err, "engine: import models")
	}

	s.Textures.Preload(texturePaths(imported), s.Progress)

	assets := &renderer.Assets{
		QuadTexture: s.Builtins.Dice,
		Default:     model.DefaultMaterial(s.Builtins),
	}
	quad, err := model.NewMesh("quad", model.Quad())
	if err == nil {
		err = quad.Upload(s.Buffers)
	}
	if err != nil {
		return nil, nil, errors.Wrap(err, "engine: upload quad")
	}
	assets.Quad = quad

	models := make(map[string]uint32, len(file.Models))
	for i, m := range file.Models {
		imp := imported[i]
		mesh, err := model.NewMesh(m.Name, imp.Meshes...)
		if err == nil {
			err = mesh.Upload(s.Buffers)
		}
		if err != nil {
			s.Destroy(assets, nil)
			return nil, nil, errors.Wrapf(err, "engine: model %s", m.Name)
		}

		base := uint32(len(assets.Materials))
		for _, mat := range imp.Materials {
			assets.Materials = append(assets.Materials, model.ResolveMaterial(mat, s.Textures, s.Builtins))
		}
		indices := make([]uint32, len(imp.Meshes))
		for j, im := range imp.Meshes {
			indices[j] = noMaterial
			if im.MaterialIndex >= 0 && im.MaterialIndex < len(imp.Materials) {
				indices[j] = base + uint32(im.MaterialIndex)
			}
		}

		models[m.Name] = uint32(len(assets.Models))
		assets.Meshes = append(assets.Meshes, mesh)
		assets.Models = append(assets.Models, model.Model{MeshIndex: uint32(i), MaterialIndices: indices})
	}
	log.Printf("[Engine] uploaded %d model(s), %d material(s), %d texture(s)", len(assets.Meshes), len(assets.Materials), s.Textures.Len())
	return assets, models, nil
}

// Destroy releases the buffers of every mesh in assets and their linkages in cache.
//
// Parameters:
//   - assets: the assets to release, may be nil
//   - cache: the linkage cache holding the meshes' pipelines, may be nil
func (s *SceneSource) Destroy(assets *renderer.Assets, cache linkage.Cache) {
	if assets == nil {
		return
	}
	if assets.Quad != nil {
		assets.Quad.Destroy(s.Buffers, cache)
	}
	for _, m := range assets.Meshes {
		m.Destroy(s.Buffers, cache)
	}
	assets.Quad, assets.Meshes = nil, nil
}

// texturePaths lists each file referenced by the models' materials once, in first-seen order.
func texturePaths(models []*model.ImportedModel) []string {
	seen := make(map[string]bool)
	var paths []string
	for _, m := range models {
		for _, mat := range m.Materials {
			for _, t := range mat.Textures() {
				if t != nil && t.Path != "" && !seen[t.Path] {
					seen[t.Path] = true
					paths = append(paths, t.Path)
				}
			}
		}
	}
	return paths
}
