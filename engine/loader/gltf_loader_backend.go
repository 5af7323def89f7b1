package loader

import (
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-sandbox/engine/model"
	"github.com/cockroachdb/errors"
)

// gltfLoaderBackendImpl imports .gltf and .glb files.
type gltfLoaderBackendImpl struct{}

var _ loaderBackend = &gltfLoaderBackendImpl{}

// newGLTFLoaderBackend creates a new glTF loader backend.
func newGLTFLoaderBackend() loaderBackend {
	return &gltfLoaderBackendImpl{}
}

func (b *gltfLoaderBackendImpl) Extensions() []string {
	return []string{".gltf", ".glb"}
}

func (b *gltfLoaderBackendImpl) Load(path string) (*model.ImportedModel, error) {
	parser := newGLTFParser()
	if err := parser.Parse(path); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return importGLTF(parser, path)
}

// importGLTF extracts meshes and materials from a parsed document.
func importGLTF(parser gltfParser, source string) (*model.ImportedModel, error) {
	doc := parser.Document()
	if doc == nil {
		return nil, errors.New("gltf: no document after parsing")
	}

	meshes, err := newGLTFMeshExtractor(parser).ExtractAllMeshes()
	if err != nil {
		return nil, errors.Wrap(err, "mesh extraction failed")
	}
	materials, err := newGLTFMaterialExtractor(parser, source).ExtractAllMaterials()
	if err != nil {
		return nil, errors.Wrap(err, "material extraction failed")
	}

	return &model.ImportedModel{
		Name:      gltfModelName(doc, source),
		Meshes:    meshes,
		Materials: materials,
	}, nil
}

// gltfModelName uses the default scene name, falling back to the file name without extension.
func gltfModelName(doc *gltfDocument, source string) string {
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		if name := doc.Scenes[*doc.Scene].Name; name != "" {
			return name
		}
	}
	if source != "" {
		base := filepath.Base(source)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	return "unnamed_model"
}
