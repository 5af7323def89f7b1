package loader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-sandbox/common"
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
)

// gltfMaterialExtractorImpl is the implementation of the gltfMaterialExtractor interface.
type gltfMaterialExtractorImpl struct {
	parser gltfParser
	// source prefixes the names of embedded images so they stay unique across models.
	source string
}

// gltfMaterialExtractor converts glTF materials into imported materials.
type gltfMaterialExtractor interface {
	// ExtractAllMaterials extracts every material in document order.
	//
	// Returns:
	//   - []common.ImportedMaterial: the materials
	//   - error: error if a referenced texture or image is invalid
	ExtractAllMaterials() ([]common.ImportedMaterial, error)
}

var _ gltfMaterialExtractor = &gltfMaterialExtractorImpl{}

func newGLTFMaterialExtractor(parser gltfParser, source string) gltfMaterialExtractor {
	return &gltfMaterialExtractorImpl{parser: parser, source: source}
}

func (e *gltfMaterialExtractorImpl) ExtractAllMaterials() ([]common.ImportedMaterial, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errors.New("gltf: no document loaded")
	}
	out := make([]common.ImportedMaterial, len(doc.Materials))
	for i := range doc.Materials {
		mat, err := e.extractMaterial(&doc.Materials[i])
		if err != nil {
			return nil, errors.Wrapf(err, "material %d", i)
		}
		out[i] = mat
	}
	return out, nil
}

// gltfTextureSlot pairs a texture reference with the material field it fills.
type gltfTextureSlot struct {
	info *gltfTextureInfo
	dst  **common.ImportedTexture
	role string
}

// extractMaterial maps the metallic-roughness model onto albedo, emissive and smoothness.
// Smoothness is 1 - roughness; the metallic-roughness map stands in for the specular map.
func (e *gltfMaterialExtractorImpl) extractMaterial(mat *gltfMaterial) (common.ImportedMaterial, error) {
	result := common.ImportedMaterial{
		Name:   mat.Name,
		Albedo: mgl32.Vec3{1, 1, 1},
	}
	roughness := float32(1)

	textures := []gltfTextureSlot{
		{mat.NormalTexture, &result.NormalsTexture, "normals"},
		{mat.EmissiveTexture, &result.EmissiveTexture, "emissive"},
	}

	if pbr := mat.PbrMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			c := *pbr.BaseColorFactor
			result.Albedo = mgl32.Vec3{c[0], c[1], c[2]}
		}
		if pbr.RoughnessFactor != nil {
			roughness = *pbr.RoughnessFactor
		}
		textures = append(textures,
			gltfTextureSlot{pbr.BaseColorTexture, &result.AlbedoTexture, "albedo"},
			gltfTextureSlot{pbr.MetallicRoughnessTexture, &result.SpecularTexture, "specular"},
		)
	}
	if mat.EmissiveFactor != nil {
		result.Emissive = mgl32.Vec3(*mat.EmissiveFactor)
	}
	result.Smoothness = common.Clamp(1-roughness, 0, 1)

	for _, t := range textures {
		if t.info == nil {
			continue
		}
		tex, err := e.loadTexture(t.info.Index)
		if err != nil {
			return common.ImportedMaterial{}, errors.Wrapf(err, "material %q: %s texture", mat.Name, t.role)
		}
		*t.dst = tex
	}
	return result, nil
}

// loadTexture resolves a texture index. External images become paths relative to the
// document, embedded images (buffer views and data URIs) carry their bytes.
func (e *gltfMaterialExtractorImpl) loadTexture(textureIndex int) (*common.ImportedTexture, error) {
	doc := e.parser.Document()
	if textureIndex < 0 || textureIndex >= len(doc.Textures) {
		return nil, errors.Newf("texture index %d out of range", textureIndex)
	}
	tex := &doc.Textures[textureIndex]
	if tex.Source == nil {
		return nil, nil
	}
	imageIndex := *tex.Source
	if imageIndex < 0 || imageIndex >= len(doc.Images) {
		return nil, errors.Newf("image index %d out of range", imageIndex)
	}
	img := &doc.Images[imageIndex]

	name := img.Name
	if name == "" {
		name = fmt.Sprintf("image%d", imageIndex)
	}
	result := &common.ImportedTexture{
		Name:     e.source + "#" + name,
		MimeType: img.MimeType,
	}

	switch {
	case img.BufferView != nil:
		data, err := e.parser.ReadBufferView(*img.BufferView)
		if err != nil {
			return nil, errors.Wrap(err, "image buffer view")
		}
		result.Data = data
	case strings.HasPrefix(img.URI, "data:"):
		data, mimeType, err := decodeDataURI(img.URI)
		if err != nil {
			return nil, errors.Wrap(err, "image data URI")
		}
		result.Data = data
		result.MimeType = common.Coalesce(result.MimeType, mimeType)
	case img.URI != "":
		result.Path = filepath.Join(e.parser.BaseDir(), filepath.FromSlash(img.URI))
	default:
		return nil, nil
	}
	return result, nil
}
