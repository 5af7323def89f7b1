package model

import (
	"github.com/Carmen-Shannon/oxy-sandbox/common"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/linkage"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer/vertex_layout"
	"github.com/cockroachdb/errors"
)

var (
	// ErrMalformedSubmesh is returned when vertex streams or indices are inconsistent.
	ErrMalformedSubmesh = errors.New("model: malformed submesh")

	// ErrOutOfBounds is returned when a submesh range does not lie within its mesh's shared buffers.
	ErrOutOfBounds = errors.New("model: submesh range out of bounds")
)

// Submesh is one drawable range of a Mesh. Its layout is fixed at creation.
type Submesh struct {
	Name     string
	Layout   vertex_layout.VertexBufferLayout
	Vertices []float32
	Indices  []uint32

	// VertexOffset is the byte offset of Vertices in the mesh's vertex buffer.
	VertexOffset uint64
	// IndexOffset is the byte offset of Indices in the mesh's index buffer.
	IndexOffset uint64

	linkages linkage.Set
}

var _ linkage.Bindable = &Submesh{}

func (s *Submesh) VertexLayout() vertex_layout.VertexBufferLayout {
	return s.Layout
}

func (s *Submesh) VertexBaseOffset() uint64 {
	return s.VertexOffset
}

func (s *Submesh) Linkages() *linkage.Set {
	return &s.linkages
}

// VertexCount returns the number of vertex records.
func (s *Submesh) VertexCount() int {
	if s.Layout.Stride == 0 {
		return 0
	}
	return int(uint64(len(s.Vertices)*4) / s.Layout.Stride)
}

// IndexCount returns the number of indices.
func (s *Submesh) IndexCount() uint32 {
	return uint32(len(s.Indices))
}

// VertexSize returns the byte length of the vertex data.
func (s *Submesh) VertexSize() uint64 {
	return uint64(len(s.Vertices)) * 4
}

// IndexSize returns the byte length of the index data.
func (s *Submesh) IndexSize() uint64 {
	return uint64(len(s.Indices)) * 4
}

type vertexStream struct {
	location   uint32
	components int
	data       []float32
}

// NewSubmesh interleaves the streams of an imported mesh. Position feeds location 0; normals,
// uvs, tangents and bitangents feed locations 1 to 4 when present. Missing indices are
// generated as a sequential triangle list.
//
// Parameters:
//   - im: the imported mesh
//
// Returns:
//   - *Submesh: the submesh with offsets unset until its mesh is packed
//   - error: ErrMalformedSubmesh if the streams disagree on the vertex count or an index is out of range
func NewSubmesh(im ImportedMesh) (*Submesh, error) {
	if len(im.Positions) == 0 || len(im.Positions)%3 != 0 {
		return nil, errors.Wrapf(ErrMalformedSubmesh, "%s: %d position floats", im.Name, len(im.Positions))
	}
	n := im.VertexCount()

	streams := []vertexStream{{LocationPosition, 3, im.Positions}}
	for _, s := range []vertexStream{
		{LocationNormal, 3, im.Normals},
		{LocationUV, 2, im.UVs},
		{LocationTangent, 3, im.Tangents},
		{LocationBitangent, 3, im.Bitangents},
	} {
		if len(s.data) == 0 {
			continue
		}
		if len(s.data) != n*s.components {
			return nil, errors.Wrapf(ErrMalformedSubmesh, "%s: location %d has %d floats for %d vertices", im.Name, s.location, len(s.data), n)
		}
		streams = append(streams, s)
	}

	var layout vertex_layout.VertexBufferLayout
	floats := 0
	for _, s := range streams {
		layout.Attributes = append(layout.Attributes, vertex_layout.VertexAttribute{
			Location:       s.location,
			ComponentCount: uint32(s.components),
			Offset:         uint64(floats * 4),
		})
		floats += s.components
	}
	layout.Stride = uint64(floats * 4)

	vertices := make([]float32, 0, n*floats)
	for v := 0; v < n; v++ {
		for _, s := range streams {
			vertices = append(vertices, s.data[v*s.components:(v+1)*s.components]...)
		}
	}

	indices := im.Indices
	if len(indices) == 0 {
		indices = make([]uint32, n)
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	for _, idx := range indices {
		if int(idx) >= n {
			return nil, errors.Wrapf(ErrMalformedSubmesh, "%s: index %d exceeds %d vertices", im.Name, idx, n)
		}
	}

	return &Submesh{
		Name:     im.Name,
		Layout:   layout,
		Vertices: vertices,
		Indices:  indices,
	}, nil
}

// Mesh is an ordered list of submeshes sharing one vertex buffer and one index buffer.
type Mesh struct {
	Name      string
	Submeshes []*Submesh

	// VertexBuffer and IndexBuffer are the backend handles, nil until Upload.
	VertexBuffer any
	IndexBuffer  any

	// VertexSize and IndexSize are the packed byte lengths of the shared buffers.
	VertexSize uint64
	IndexSize  uint64
}

// NewMesh builds a mesh from imported meshes and packs it.
//
// Parameters:
//   - name: the mesh identifier
//   - meshes: one imported mesh per submesh
//
// Returns:
//   - *Mesh: the packed mesh
//   - error: ErrMalformedSubmesh if any imported mesh is invalid
func NewMesh(name string, meshes ...ImportedMesh) (*Mesh, error) {
	m := &Mesh{Name: name}
	for i, im := range meshes {
		s, err := NewSubmesh(im)
		if err != nil {
			return nil, errors.Wrapf(err, "mesh %s: submesh %d", name, i)
		}
		m.Submeshes = append(m.Submeshes, s)
	}
	if _, _, err := m.Pack(); err != nil {
		return nil, err
	}
	return m, nil
}

// Pack assigns every submesh its offsets into the shared buffers and concatenates their data.
//
// Returns:
//   - []byte: the shared vertex buffer contents
//   - []byte: the shared index buffer contents
//   - error: ErrOutOfBounds or ErrMalformedSubmesh from Validate
func (m *Mesh) Pack() ([]byte, []byte, error) {
	var vertexSize, indexSize uint64
	for _, s := range m.Submeshes {
		s.VertexOffset = vertexSize
		s.IndexOffset = indexSize
		vertexSize += s.VertexSize()
		indexSize += s.IndexSize()
	}
	m.VertexSize, m.IndexSize = vertexSize, indexSize

	if err := m.Validate(); err != nil {
		return nil, nil, err
	}

	vertexData := make([]byte, 0, vertexSize)
	indexData := make([]byte, 0, indexSize)
	for _, s := range m.Submeshes {
		vertexData = append(vertexData, common.SliceToBytes(s.Vertices)...)
		indexData = append(indexData, common.SliceToBytes(s.Indices)...)
	}
	return vertexData, indexData, nil
}

// Validate checks that every submesh range lies within the shared buffers and that
// the vertex data holds whole records.
//
// Returns:
//   - error: the first violation found, nil for a consistent mesh
func (m *Mesh) Validate() error {
	for i, s := range m.Submeshes {
		if s.Layout.Stride == 0 || s.VertexSize()%s.Layout.Stride != 0 {
			return errors.Wrapf(ErrMalformedSubmesh, "mesh %s: submesh %d: %d bytes with stride %d", m.Name, i, s.VertexSize(), s.Layout.Stride)
		}
		if s.VertexOffset%4 != 0 || s.VertexOffset+s.VertexSize() > m.VertexSize {
			return errors.Wrapf(ErrOutOfBounds, "mesh %s: submesh %d: vertex range [%d, %d) in %d bytes",
				m.Name, i, s.VertexOffset, s.VertexOffset+s.VertexSize(), m.VertexSize)
		}
		if s.IndexOffset%4 != 0 || s.IndexOffset+s.IndexSize() > m.IndexSize {
			return errors.Wrapf(ErrOutOfBounds, "mesh %s: submesh %d: index range [%d, %d) in %d bytes",
				m.Name, i, s.IndexOffset, s.IndexOffset+s.IndexSize(), m.IndexSize)
		}
	}
	return nil
}

// Upload packs the mesh and creates its shared buffers.
//
// Parameters:
//   - b: the buffer backend
//
// Returns:
//   - error: the pack or backend error; no buffer is kept on failure
func (m *Mesh) Upload(b BufferBackend) error {
	vertexData, indexData, err := m.Pack()
	if err != nil {
		return err
	}
	vb, err := b.CreateVertexBuffer(m.Name+" Vertex Buffer", vertexData)
	if err != nil {
		return errors.Wrapf(err, "mesh %s: vertex buffer", m.Name)
	}
	ib, err := b.CreateIndexBuffer(m.Name+" Index Buffer", indexData)
	if err != nil {
		b.Release(vb)
		return errors.Wrapf(err, "mesh %s: index buffer", m.Name)
	}
	m.VertexBuffer, m.IndexBuffer = vb, ib
	return nil
}

// Destroy releases the shared buffers and the linkage objects of every submesh.
//
// Parameters:
//   - b: the backend that created the buffers
//   - cache: the linkage cache holding the submeshes' objects, may be nil
func (m *Mesh) Destroy(b BufferBackend, cache linkage.Cache) {
	if cache != nil {
		for _, s := range m.Submeshes {
			cache.Forget(s)
		}
	}
	if m.VertexBuffer != nil {
		b.Release(m.VertexBuffer)
	}
	if m.IndexBuffer != nil {
		b.Release(m.IndexBuffer)
	}
	m.VertexBuffer, m.IndexBuffer = nil, nil
}
