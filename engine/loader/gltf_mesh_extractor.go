package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-sandbox/engine/model"
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
)

// gltfMeshExtractorImpl is the implementation of the gltfMeshExtractor interface.
type gltfMeshExtractorImpl struct {
	parser gltfParser
}

// gltfMeshExtractor converts glTF primitives into imported meshes, one per primitive.
type gltfMeshExtractor interface {
	// ExtractAllMeshes extracts every primitive of every mesh, flattened in document order.
	//
	// Returns:
	//   - []model.ImportedMesh: one ImportedMesh per primitive
	//   - error: error if a primitive cannot be read
	ExtractAllMeshes() ([]model.ImportedMesh, error)
}

var _ gltfMeshExtractor = &gltfMeshExtractorImpl{}

func newGLTFMeshExtractor(parser gltfParser) gltfMeshExtractor {
	return &gltfMeshExtractorImpl{parser: parser}
}

func (e *gltfMeshExtractorImpl) ExtractAllMeshes() ([]model.ImportedMesh, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errors.New("gltf: no document loaded")
	}

	var out []model.ImportedMesh
	for meshIdx := range doc.Meshes {
		mesh := &doc.Meshes[meshIdx]
		for primIdx := range mesh.Primitives {
			im, err := e.extractPrimitive(&mesh.Primitives[primIdx], mesh.Name, meshIdx, primIdx)
			if err != nil {
				return nil, errors.Wrapf(err, "mesh %d primitive %d", meshIdx, primIdx)
			}
			out = append(out, im)
		}
	}
	return out, nil
}

func (e *gltfMeshExtractorImpl) extractPrimitive(prim *gltfPrimitive, meshName string, meshIdx, primIdx int) (model.ImportedMesh, error) {
	if prim.Mode != nil && *prim.Mode != gltfPrimitiveModeTriangles {
		return model.ImportedMesh{}, errors.Newf("unsupported primitive mode %d, only triangles are supported", *prim.Mode)
	}

	posAccessor, ok := prim.Attributes["POSITION"]
	if !ok {
		return model.ImportedMesh{}, errors.New("primitive has no POSITION attribute")
	}

	var im model.ImportedMesh
	var err error
	if im.Positions, err = e.parser.ReadFloats(posAccessor, 3); err != nil {
		return model.ImportedMesh{}, errors.Wrap(err, "positions")
	}
	n := im.VertexCount()

	if acc, ok := prim.Attributes["NORMAL"]; ok {
		if im.Normals, err = e.parser.ReadFloats(acc, 3); err != nil {
			return model.ImportedMesh{}, errors.Wrap(err, "normals")
		}
	}
	if acc, ok := prim.Attributes["TEXCOORD_0"]; ok {
		if im.UVs, err = e.parser.ReadFloats(acc, 2); err != nil {
			return model.ImportedMesh{}, errors.Wrap(err, "texcoords")
		}
		// glTF puts the uv origin at the top left, textures are stored bottom-up.
		for i := 1; i < len(im.UVs); i += 2 {
			im.UVs[i] = 1 - im.UVs[i]
		}
	}

	if prim.Indices != nil {
		if im.Indices, err = e.parser.ReadIndices(*prim.Indices); err != nil {
			return model.ImportedMesh{}, errors.Wrap(err, "indices")
		}
	} else {
		im.Indices = make([]uint32, n)
		for i := range im.Indices {
			im.Indices[i] = uint32(i)
		}
	}

	if len(im.Normals) == 0 {
		im.Normals = generateNormals(im.Positions, im.Indices)
	}

	if acc, ok := prim.Attributes["TANGENT"]; ok {
		tangents, err := e.parser.ReadFloats(acc, 4)
		if err != nil {
			return model.ImportedMesh{}, errors.Wrap(err, "tangents")
		}
		im.Tangents, im.Bitangents = splitTangents(im.Normals, tangents)
	} else if len(im.UVs) > 0 {
		im.Tangents, im.Bitangents = generateTangents(im.Positions, im.Normals, im.UVs, im.Indices)
	}

	if prim.Material != nil {
		im.MaterialIndex = *prim.Material
	}
	im.Name = meshName
	if im.Name == "" {
		im.Name = fmt.Sprintf("mesh_%d", meshIdx)
	}
	if primIdx > 0 {
		im.Name = fmt.Sprintf("%s_prim%d", im.Name, primIdx)
	}
	return im, nil
}

func vec3At(s []float32, i int) mgl32.Vec3 {
	return mgl32.Vec3{s[i*3], s[i*3+1], s[i*3+2]}
}

func putVec3(s []float32, i int, v mgl32.Vec3) {
	s[i*3], s[i*3+1], s[i*3+2] = v[0], v[1], v[2]
}

// generateNormals computes smooth area-weighted vertex normals from the triangles.
// Vertices touched by no triangle get the up vector.
func generateNormals(positions []float32, indices []uint32) []float32 {
	n := len(positions) / 3
	accum := make([]mgl32.Vec3, n)
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := int(indices[i]), int(indices[i+1]), int(indices[i+2])
		if i0 >= n || i1 >= n || i2 >= n {
			continue
		}
		p0 := vec3At(positions, i0)
		face := vec3At(positions, i1).Sub(p0).Cross(vec3At(positions, i2).Sub(p0))
		accum[i0] = accum[i0].Add(face)
		accum[i1] = accum[i1].Add(face)
		accum[i2] = accum[i2].Add(face)
	}

	out := make([]float32, n*3)
	for i, a := range accum {
		if a.Len() < 1e-6 {
			putVec3(out, i, mgl32.Vec3{0, 1, 0})
			continue
		}
		putVec3(out, i, a.Normalize())
	}
	return out
}

// generateTangents derives per-vertex tangents and bitangents from the uv gradients of each
// triangle, orthonormalized against the vertex normal.
func generateTangents(positions, normals, uvs []float32, indices []uint32) ([]float32, []float32) {
	n := len(positions) / 3
	tan := make([]mgl32.Vec3, n)
	btan := make([]mgl32.Vec3, n)

	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := int(indices[i]), int(indices[i+1]), int(indices[i+2])
		if i0 >= n || i1 >= n || i2 >= n {
			continue
		}
		p0 := vec3At(positions, i0)
		edge1 := vec3At(positions, i1).Sub(p0)
		edge2 := vec3At(positions, i2).Sub(p0)

		du1, dv1 := uvs[i1*2]-uvs[i0*2], uvs[i1*2+1]-uvs[i0*2+1]
		du2, dv2 := uvs[i2*2]-uvs[i0*2], uvs[i2*2+1]-uvs[i0*2+1]
		det := du1*dv2 - dv1*du2
		if det == 0 {
			continue
		}
		r := 1 / det
		t := edge1.Mul(dv2 * r).Sub(edge2.Mul(dv1 * r))
		b := edge2.Mul(du1 * r).Sub(edge1.Mul(du2 * r))
		for _, idx := range [3]int{i0, i1, i2} {
			tan[idx] = tan[idx].Add(t)
			btan[idx] = btan[idx].Add(b)
		}
	}

	tangents := make([]float32, n*3)
	bitangents := make([]float32, n*3)
	for i := 0; i < n; i++ {
		normal := vec3At(normals, i)
		ortho := tan[i].Sub(normal.Mul(normal.Dot(tan[i])))
		if ortho.Len() < 1e-6 {
			ortho = perpendicular(normal)
		} else {
			ortho = ortho.Normalize()
		}
		bitangent := normal.Cross(ortho)
		if bitangent.Dot(btan[i]) < 0 {
			bitangent = bitangent.Mul(-1)
		}
		putVec3(tangents, i, ortho)
		putVec3(bitangents, i, bitangent)
	}
	return tangents, bitangents
}

// splitTangents turns glTF vec4 tangents into tangent and bitangent streams,
// the w component carrying the bitangent sign.
func splitTangents(normals, tangents4 []float32) ([]float32, []float32) {
	n := len(tangents4) / 4
	tangents := make([]float32, n*3)
	bitangents := make([]float32, n*3)
	for i := 0; i < n; i++ {
		t := mgl32.Vec3{tangents4[i*4], tangents4[i*4+1], tangents4[i*4+2]}
		putVec3(tangents, i, t)
		if i*3+2 < len(normals) {
			putVec3(bitangents, i, vec3At(normals, i).Cross(t).Mul(tangents4[i*4+3]))
		}
	}
	return tangents, bitangents
}

// perpendicular returns a unit vector orthogonal to n.
func perpendicular(n mgl32.Vec3) mgl32.Vec3 {
	axis := mgl32.Vec3{1, 0, 0}
	if n[0] > 0.9 || n[0] < -0.9 {
		axis = mgl32.Vec3{0, 1, 0}
	}
	return axis.Sub(n.Mul(n.Dot(axis))).Normalize()
}
