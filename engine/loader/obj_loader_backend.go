package loader

import (
	"bufio"
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-sandbox/common"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/model"
	"github.com/cockroachdb/errors"
	"github.com/g3n/engine/loader/obj"
	"github.com/go-gl/mathgl/mgl32"
)

// objShininessScale maps the MTL specular exponent onto smoothness.
const objShininessScale = 256

// objLoaderBackendImpl imports Wavefront .obj files with their .mtl material library.
type objLoaderBackendImpl struct{}

var _ loaderBackend = &objLoaderBackendImpl{}

// newOBJLoaderBackend creates a new OBJ loader backend.
func newOBJLoaderBackend() loaderBackend {
	return &objLoaderBackendImpl{}
}

func (b *objLoaderBackendImpl) Extensions() []string {
	return []string{".obj"}
}

func (b *objLoaderBackendImpl) Load(path string) (*model.ImportedModel, error) {
	objData, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "obj: read file")
	}
	dir := filepath.Dir(path)

	// Without a library every face gets the default material.
	var mtl []byte
	if mtlPath := objMaterialLibrary(objData, path); mtlPath != "" {
		if data, err := os.ReadFile(mtlPath); err == nil {
			mtl = data
		} else {
			log.Printf("[Loader] obj: material library %s unreadable: %v", mtlPath, err)
		}
	}

	dec, err := obj.DecodeReader(bytes.NewReader(objData), bytes.NewReader(mtl))
	if err != nil {
		return nil, errors.Wrapf(err, "obj: decode %s", path)
	}

	base := filepath.Base(path)
	imported := &model.ImportedModel{Name: strings.TrimSuffix(base, filepath.Ext(base))}
	materialIndex := make(map[string]int)
	materialFor := func(name string) int {
		if idx, ok := materialIndex[name]; ok {
			return idx
		}
		idx := len(imported.Materials)
		materialIndex[name] = idx
		var decoded *obj.Material
		if mtl != nil {
			decoded = dec.Materials[name]
		}
		imported.Materials = append(imported.Materials, objMaterial(decoded, name, dir))
		return idx
	}

	for _, object := range dec.Objects {
		// One submesh per material used by the object, in order of first use.
		var order []string
		groups := make(map[string][]obj.Face)
		for _, face := range object.Faces {
			if len(face.Vertices) < 3 {
				continue
			}
			if _, ok := groups[face.Material]; !ok {
				order = append(order, face.Material)
			}
			groups[face.Material] = append(groups[face.Material], face)
		}
		for _, matName := range order {
			im, err := objSubmesh(dec, groups[matName])
			if err != nil {
				return nil, errors.Wrapf(err, "obj: object %q", object.Name)
			}
			im.Name = object.Name
			if len(order) > 1 {
				im.Name = object.Name + ":" + matName
			}
			im.MaterialIndex = materialFor(matName)
			imported.Meshes = append(imported.Meshes, im)
		}
	}
	if len(imported.Meshes) == 0 {
		return nil, errors.Newf("obj: %s has no faces", path)
	}
	return imported, nil
}

// objVertexKey identifies a unique position, uv and normal combination.
type objVertexKey struct {
	position, uv, normal int
}

// objSubmesh triangulates faces as fans and de-duplicates their vertices. Uvs and normals are
// only kept when every corner of every face references one.
func objSubmesh(dec *obj.Decoder, faces []obj.Face) (model.ImportedMesh, error) {
	hasUV := objAllValid(faces, func(f obj.Face) []int { return f.Uvs }, len(dec.Uvs)/2)
	hasNormal := objAllValid(faces, func(f obj.Face) []int { return f.Normals }, len(dec.Normals)/3)

	var im model.ImportedMesh
	seen := make(map[objVertexKey]uint32)
	add := func(f obj.Face, corner int) error {
		key := objVertexKey{position: f.Vertices[corner], uv: -1, normal: -1}
		if hasUV {
			key.uv = f.Uvs[corner]
		}
		if hasNormal {
			key.normal = f.Normals[corner]
		}
		if idx, ok := seen[key]; ok {
			im.Indices = append(im.Indices, idx)
			return nil
		}

		if key.position < 0 || (key.position+1)*3 > len(dec.Vertices) {
			return errors.Newf("vertex index %d out of range", key.position)
		}
		im.Positions = append(im.Positions, dec.Vertices[key.position*3:key.position*3+3]...)
		if hasUV {
			if key.uv < 0 || (key.uv+1)*2 > len(dec.Uvs) {
				return errors.Newf("uv index %d out of range", key.uv)
			}
			im.UVs = append(im.UVs, dec.Uvs[key.uv*2:key.uv*2+2]...)
		}
		if hasNormal {
			if key.normal < 0 || (key.normal+1)*3 > len(dec.Normals) {
				return errors.Newf("normal index %d out of range", key.normal)
			}
			im.Normals = append(im.Normals, dec.Normals[key.normal*3:key.normal*3+3]...)
		}

		idx := uint32(len(seen))
		seen[key] = idx
		im.Indices = append(im.Indices, idx)
		return nil
	}

	for _, f := range faces {
		for i := 2; i < len(f.Vertices); i++ {
			for _, corner := range [3]int{0, i - 1, i} {
				if err := add(f, corner); err != nil {
					return model.ImportedMesh{}, err
				}
			}
		}
	}

	if !hasNormal {
		im.Normals = generateNormals(im.Positions, im.Indices)
	}
	if hasUV {
		im.Tangents, im.Bitangents = generateTangents(im.Positions, im.Normals, im.UVs, im.Indices)
	}
	return im, nil
}

// objAllValid reports whether every corner of every face has an index below count.
// Missing references are stored by the decoder as an out of range sentinel.
func objAllValid(faces []obj.Face, field func(obj.Face) []int, count int) bool {
	if count == 0 {
		return false
	}
	for _, f := range faces {
		indices := field(f)
		if len(indices) < len(f.Vertices) {
			return false
		}
		for _, idx := range indices[:len(f.Vertices)] {
			if idx < 0 || idx >= count {
				return false
			}
		}
	}
	return true
}

// objMaterial converts a decoded MTL material. A nil material yields a white default.
func objMaterial(m *obj.Material, name, dir string) common.ImportedMaterial {
	if m == nil {
		return common.ImportedMaterial{Name: name, Albedo: mgl32.Vec3{1, 1, 1}}
	}
	result := common.ImportedMaterial{
		Name:       common.Coalesce(m.Name, name),
		Albedo:     mgl32.Vec3{m.Diffuse.R, m.Diffuse.G, m.Diffuse.B},
		Emissive:   mgl32.Vec3{m.Emissive.R, m.Emissive.G, m.Emissive.B},
		Smoothness: common.Clamp(m.Shininess/objShininessScale, 0, 1),
	}
	if m.MapKd != "" {
		result.AlbedoTexture = &common.ImportedTexture{
			Name: "albedo",
			Path: filepath.Join(dir, filepath.FromSlash(m.MapKd)),
		}
	}
	return result
}

// objMaterialLibrary finds the material library named by the first mtllib statement,
// falling back to the .mtl file next to the model.
func objMaterialLibrary(objData []byte, path string) string {
	scanner := bufio.NewScanner(bytes.NewReader(objData))
	for scanner.Scan() {
		if lib, ok := strings.CutPrefix(strings.TrimSpace(scanner.Text()), "mtllib "); ok {
			return filepath.Join(filepath.Dir(path), strings.TrimSpace(lib))
		}
	}
	fallback := strings.TrimSuffix(path, filepath.Ext(path)) + ".mtl"
	if _, err := os.Stat(fallback); err == nil {
		return fallback
	}
	return ""
}
