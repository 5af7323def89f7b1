package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-sandbox/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func float32Ptr(v float32) *float32 { return &v }

// triangleBuffer packs positions (36 bytes), uvs (24 bytes) and uint16 indices (6 bytes, padded to 8).
func triangleBuffer() []byte {
	var buf bytes.Buffer
	floats := []float32{
		0, 0, 0, 1, 0, 0, 0, 1, 0,
		0, 0, 1, 0, 0, 1,
	}
	buf.Write(common.SliceToBytes(floats))
	_ = binary.Write(&buf, binary.LittleEndian, []uint16{0, 1, 2, 0})
	return buf.Bytes()
}

// triangleDocument describes one textured triangle. The buffer has no URI when bin is nil.
func triangleDocument(bin []byte) gltfDocument {
	buffer := gltfBuffer{ByteLength: 68}
	if bin != nil {
		buffer.URI = "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(bin)
	}
	return gltfDocument{
		Asset:  gltfAsset{Version: "2.0"},
		Scene:  intPtr(0),
		Scenes: []gltfScene{{Name: "triangle_scene"}},
		Meshes: []gltfMesh{{
			Name: "tri",
			Primitives: []gltfPrimitive{{
				Attributes: map[string]int{"POSITION": 0, "TEXCOORD_0": 1},
				Indices:    intPtr(2),
				Material:   intPtr(0),
			}},
		}},
		Accessors: []gltfAccessor{
			{BufferView: intPtr(0), ComponentType: gltfComponentTypeFloat, Count: 3, Type: gltfAccessorTypeVec3},
			{BufferView: intPtr(1), ComponentType: gltfComponentTypeFloat, Count: 3, Type: gltfAccessorTypeVec2},
			{BufferView: intPtr(2), ComponentType: gltfComponentTypeUnsignedShort, Count: 3, Type: gltfAccessorTypeScalar},
		},
		BufferViews: []gltfBufferView{
			{Buffer: 0, ByteOffset: 0, ByteLength: 36},
			{Buffer: 0, ByteOffset: 36, ByteLength: 24},
			{Buffer: 0, ByteOffset: 60, ByteLength: 6},
		},
		Buffers: []gltfBuffer{buffer},
		Materials: []gltfMaterial{{
			Name: "paint",
			PbrMetallicRoughness: &gltfPbrMetallicRoughness{
				BaseColorFactor:  &[4]float32{0.5, 0.25, 1, 1},
				RoughnessFactor:  float32Ptr(0.25),
				BaseColorTexture: &gltfTextureInfo{Index: 0},
			},
		}},
		Textures: []gltfTexture{{Source: intPtr(0)}},
		Images:   []gltfImage{{URI: "data:image/png;base64,AAAA"}},
	}
}

func writeGLTF(t *testing.T, doc gltfDocument) string {
	t.Helper()
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "triangle.gltf")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestGLTFBackend_LoadTriangle(t *testing.T) {
	path := writeGLTF(t, triangleDocument(triangleBuffer()))

	m, err := newGLTFLoaderBackend().Load(path)
	require.NoError(t, err)

	assert.Equal(t, "triangle_scene", m.Name)
	require.Len(t, m.Meshes, 1)
	mesh := m.Meshes[0]
	assert.Equal(t, "tri", mesh.Name)
	assert.Equal(t, 3, mesh.VertexCount())
	assert.Equal(t, []uint32{0, 1, 2}, mesh.Indices)
	// v is flipped into bottom-up texture space.
	assert.Equal(t, []float32{0, 1, 1, 1, 0, 0}, mesh.UVs)
	assert.InDeltaSlice(t, []float32{0, 0, 1, 0, 0, 1, 0, 0, 1}, mesh.Normals, 1e-6)
	assert.Len(t, mesh.Tangents, 9)
	assert.Len(t, mesh.Bitangents, 9)

	require.Len(t, m.Materials, 1)
	mat := m.Materials[0]
	assert.Equal(t, "paint", mat.Name)
	assert.InDelta(t, 0.5, mat.Albedo[0], 1e-6)
	assert.InDelta(t, 0.25, mat.Albedo[1], 1e-6)
	assert.InDelta(t, 0.75, mat.Smoothness, 1e-6)
	require.NotNil(t, mat.AlbedoTexture)
	assert.Equal(t, path+"#image0", mat.AlbedoTexture.Name)
	assert.Equal(t, "image/png", mat.AlbedoTexture.MimeType)
	assert.Equal(t, []byte{0, 0, 0}, mat.AlbedoTexture.Data)
	assert.Equal(t, "embedded:"+path+"#image0", mat.AlbedoTexture.Key())
	assert.Nil(t, mat.NormalsTexture)
}

func TestGLTFBackend_ExternalImagePathIsRelativeToModel(t *testing.T) {
	doc := triangleDocument(triangleBuffer())
	doc.Images = []gltfImage{{URI: "textures/albedo.png"}}
	path := writeGLTF(t, doc)

	m, err := newGLTFLoaderBackend().Load(path)
	require.NoError(t, err)
	require.NotNil(t, m.Materials[0].AlbedoTexture)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "textures", "albedo.png"), m.Materials[0].AlbedoTexture.Path)
}

func TestGLTFBackend_GeneratesIndicesWhenAbsent(t *testing.T) {
	doc := triangleDocument(triangleBuffer())
	doc.Meshes[0].Primitives[0].Indices = nil
	doc.Meshes[0].Name = ""
	doc.Scene = nil

	m, err := newGLTFLoaderBackend().Load(writeGLTF(t, doc))
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 2}, m.Meshes[0].Indices)
	assert.Equal(t, "mesh_0", m.Meshes[0].Name)
	assert.Equal(t, "triangle", m.Name)
}

func TestGLTFBackend_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*gltfDocument)
	}{
		{"wrong version", func(d *gltfDocument) { d.Asset.Version = "1.0" }},
		{"no position", func(d *gltfDocument) { d.Meshes[0].Primitives[0].Attributes = map[string]int{"TEXCOORD_0": 1} }},
		{"lines", func(d *gltfDocument) { d.Meshes[0].Primitives[0].Mode = intPtr(1) }},
		{"accessor past buffer", func(d *gltfDocument) { d.Accessors[0].Count = 30 }},
		{"wrong component count", func(d *gltfDocument) { d.Accessors[1].Type = gltfAccessorTypeVec3 }},
		{"texture out of range", func(d *gltfDocument) { d.Textures = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := triangleDocument(triangleBuffer())
			tt.mutate(&doc)
			_, err := newGLTFLoaderBackend().Load(writeGLTF(t, doc))
			assert.Error(t, err)
		})
	}
}

func TestGLTFParser_GLB(t *testing.T) {
	doc := triangleDocument(nil)
	jsonData, err := json.Marshal(doc)
	require.NoError(t, err)
	for len(jsonData)%4 != 0 {
		jsonData = append(jsonData, ' ')
	}
	bin := triangleBuffer()

	var glb bytes.Buffer
	total := uint32(12 + 8 + len(jsonData) + 8 + len(bin))
	require.NoError(t, binary.Write(&glb, binary.LittleEndian, gltfGLBHeader{Magic: gltfGLBMagic, Version: gltfGLBVersion, Length: total}))
	require.NoError(t, binary.Write(&glb, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(jsonData)), ChunkType: gltfGLBChunkJSON}))
	glb.Write(jsonData)
	require.NoError(t, binary.Write(&glb, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(bin)), ChunkType: gltfGLBChunkBIN}))
	glb.Write(bin)

	parser := newGLTFParser()
	require.NoError(t, parser.ParseBytes(glb.Bytes(), "models"))
	assert.Equal(t, "models", parser.BaseDir())

	positions, err := parser.ReadFloats(0, 3)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, positions)

	m, err := importGLTF(parser, "models/tri.glb")
	require.NoError(t, err)
	assert.Equal(t, "triangle_scene", m.Name)
	assert.Len(t, m.Meshes, 1)
}

func TestGLTFParser_NormalizedComponents(t *testing.T) {
	assert.InDelta(t, 1.0, decodeComponent([]byte{0xff}, gltfComponentTypeUnsignedByte), 1e-6)
	assert.InDelta(t, -1.0, decodeComponent([]byte{0x80}, gltfComponentTypeByte), 1e-6)
	assert.InDelta(t, 1.0, decodeComponent([]byte{0xff, 0xff}, gltfComponentTypeUnsignedShort), 1e-6)
}

func TestDecodeDataURI(t *testing.T) {
	data, mime, err := decodeDataURI("data:text/plain;base64,aGk=")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", mime)
	assert.Equal(t, []byte("hi"), data)

	_, _, err = decodeDataURI("data:text/plain,hi")
	assert.ErrorIs(t, err, errInvalidDataURI)
}
