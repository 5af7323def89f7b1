package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	errInvalidGLTFVersion = errors.New("invalid glTF version: must be 2.x")
	errInvalidGLBMagic    = errors.New("invalid GLB magic number")
	errInvalidGLBVersion  = errors.New("invalid GLB version: must be 2")
	errMissingJSONChunk   = errors.New("GLB file missing JSON chunk")
	errInvalidDataURI     = errors.New("invalid data URI")
	errBufferSizeMismatch = errors.New("buffer size mismatch")
	errAccessorBounds     = errors.New("accessor reads past its buffer")
)

// gltfParserImpl is the implementation of the gltfParser interface.
type gltfParserImpl struct {
	baseDir        string
	document       *gltfDocument
	glbBinaryChunk []byte
}

// gltfParser loads a glTF or GLB document and reads typed accessor data from it.
type gltfParser interface {
	// Parse loads a .gltf or .glb file. GLB is detected by extension or magic number.
	//
	// Parameters:
	//   - path: the file path
	//
	// Returns:
	//   - error: error if the file cannot be read or is not valid glTF 2
	Parse(path string) error

	// ParseBytes parses an in-memory document. Relative URIs resolve against baseDir.
	ParseBytes(data []byte, baseDir string) error

	// Document returns the parsed document, nil before a successful parse.
	Document() *gltfDocument

	// BaseDir returns the directory relative URIs resolve against.
	BaseDir() string

	// ReadFloats reads a float accessor with the given component count, flattened.
	// Normalized integer accessors are converted to floats.
	//
	// Parameters:
	//   - accessorIndex: the accessor
	//   - components: the expected component count, 2 for VEC2 and so on
	//
	// Returns:
	//   - []float32: count*components floats
	//   - error: error if the accessor has another shape or reads out of bounds
	ReadFloats(accessorIndex, components int) ([]float32, error)

	// ReadIndices reads a SCALAR accessor of unsigned bytes, shorts or ints.
	ReadIndices(accessorIndex int) ([]uint32, error)

	// ReadBufferView returns a copy of a buffer view.
	ReadBufferView(bufferViewIndex int) ([]byte, error)
}

var _ gltfParser = &gltfParserImpl{}

func newGLTFParser() gltfParser {
	return &gltfParserImpl{}
}

func (p *gltfParserImpl) Document() *gltfDocument {
	return p.document
}

func (p *gltfParserImpl) BaseDir() string {
	return p.baseDir
}

func (p *gltfParserImpl) Parse(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "gltf: read file")
	}
	if strings.EqualFold(filepath.Ext(path), ".glb") {
		return p.parseGLB(data, filepath.Dir(path))
	}
	return p.ParseBytes(data, filepath.Dir(path))
}

func (p *gltfParserImpl) ParseBytes(data []byte, baseDir string) error {
	if len(data) >= 4 && binary.LittleEndian.Uint32(data[:4]) == gltfGLBMagic {
		return p.parseGLB(data, baseDir)
	}
	p.baseDir = baseDir
	return p.parseJSON(data)
}

func (p *gltfParserImpl) parseJSON(data []byte) error {
	var doc gltfDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return errors.Wrap(err, "gltf: parse JSON")
	}
	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return errors.Wrapf(errInvalidGLTFVersion, "got %q", doc.Asset.Version)
	}
	if err := p.loadBuffers(&doc); err != nil {
		return errors.Wrap(err, "gltf: load buffers")
	}
	p.document = &doc
	return nil
}

// parseGLB parses a GLB container.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#glb-file-format-specification
func (p *gltfParserImpl) parseGLB(data []byte, baseDir string) error {
	p.baseDir = baseDir
	if len(data) < 12 {
		return errors.New("gltf: GLB file too small")
	}
	r := bytes.NewReader(data)

	var header gltfGLBHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return errors.Wrap(err, "gltf: read GLB header")
	}
	if header.Magic != gltfGLBMagic {
		return errInvalidGLBMagic
	}
	if header.Version != gltfGLBVersion {
		return errInvalidGLBVersion
	}

	var jsonData []byte
	for {
		var chunk gltfGLBChunkHeader
		if err := binary.Read(r, binary.LittleEndian, &chunk); err != nil {
			if err == io.EOF {
				break
			}
			return errors.Wrap(err, "gltf: read chunk header")
		}
		body := make([]byte, chunk.ChunkLength)
		if _, err := io.ReadFull(r, body); err != nil {
			return errors.Wrap(err, "gltf: read chunk")
		}
		switch chunk.ChunkType {
		case gltfGLBChunkJSON:
			jsonData = body
		case gltfGLBChunkBIN:
			p.glbBinaryChunk = body
		}
	}
	if jsonData == nil {
		return errMissingJSONChunk
	}
	return p.parseJSON(jsonData)
}

func (p *gltfParserImpl) loadBuffers(doc *gltfDocument) error {
	for i := range doc.Buffers {
		buf := &doc.Buffers[i]
		switch {
		case buf.URI == "" && i == 0 && p.glbBinaryChunk != nil:
			buf.Data = p.glbBinaryChunk
		case buf.URI == "":
			return errors.Newf("buffer %d has no URI and no GLB binary chunk", i)
		case strings.HasPrefix(buf.URI, "data:"):
			data, _, err := decodeDataURI(buf.URI)
			if err != nil {
				return errors.Wrapf(err, "buffer %d", i)
			}
			buf.Data = data
		default:
			data, err := os.ReadFile(filepath.Join(p.baseDir, buf.URI))
			if err != nil {
				return errors.Wrapf(err, "buffer %d: %s", i, buf.URI)
			}
			buf.Data = data
		}
		if len(buf.Data) < buf.ByteLength {
			return errors.Wrapf(errBufferSizeMismatch, "buffer %d: %d < %d bytes", i, len(buf.Data), buf.ByteLength)
		}
	}
	return nil
}

// decodeDataURI decodes a base64 data URI of the form data:[<mediatype>];base64,<data>.
func decodeDataURI(uri string) ([]byte, string, error) {
	header, encoded, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, "", errInvalidDataURI
	}
	mimeType, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return nil, "", errors.Wrapf(errInvalidDataURI, "unsupported encoding %q", header)
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", errors.Wrap(err, "decode base64")
	}
	return data, mimeType, nil
}

// elements returns the raw bytes of every accessor element, honoring the view's byte stride.
func (p *gltfParserImpl) elements(accessorIndex int) (*gltfAccessor, [][]byte, error) {
	if p.document == nil {
		return nil, nil, errors.New("gltf: no document loaded")
	}
	doc := p.document
	if accessorIndex < 0 || accessorIndex >= len(doc.Accessors) {
		return nil, nil, errors.Newf("gltf: accessor %d out of range", accessorIndex)
	}
	acc := &doc.Accessors[accessorIndex]
	if acc.Sparse != nil {
		return nil, nil, errors.Newf("gltf: accessor %d: sparse accessors are not supported", accessorIndex)
	}
	if acc.BufferView == nil || *acc.BufferView >= len(doc.BufferViews) {
		return nil, nil, errors.Newf("gltf: accessor %d has no buffer view", accessorIndex)
	}
	bv := &doc.BufferViews[*acc.BufferView]
	if bv.Buffer >= len(doc.Buffers) {
		return nil, nil, errors.Newf("gltf: buffer view %d: buffer %d out of range", *acc.BufferView, bv.Buffer)
	}
	data := doc.Buffers[bv.Buffer].Data

	elementSize := componentSize(acc.ComponentType) * componentCount(acc.Type)
	if elementSize == 0 {
		return nil, nil, errors.Newf("gltf: accessor %d: unsupported type %s/%d", accessorIndex, acc.Type, acc.ComponentType)
	}
	stride := elementSize
	if bv.ByteStride != nil && *bv.ByteStride > 0 {
		stride = *bv.ByteStride
	}

	start := bv.ByteOffset + acc.ByteOffset
	out := make([][]byte, acc.Count)
	for i := range out {
		off := start + i*stride
		if off+elementSize > len(data) {
			return nil, nil, errors.Wrapf(errAccessorBounds, "accessor %d element %d", accessorIndex, i)
		}
		out[i] = data[off : off+elementSize]
	}
	return acc, out, nil
}

func (p *gltfParserImpl) ReadFloats(accessorIndex, components int) ([]float32, error) {
	acc, elems, err := p.elements(accessorIndex)
	if err != nil {
		return nil, err
	}
	if componentCount(acc.Type) != components {
		return nil, errors.Newf("gltf: accessor %d is %s, want %d components", accessorIndex, acc.Type, components)
	}
	if acc.ComponentType != gltfComponentTypeFloat && !acc.Normalized {
		return nil, errors.Newf("gltf: accessor %d: component type %d is neither float nor normalized", accessorIndex, acc.ComponentType)
	}

	size := componentSize(acc.ComponentType)
	out := make([]float32, 0, len(elems)*components)
	for _, e := range elems {
		for c := 0; c < components; c++ {
			out = append(out, decodeComponent(e[c*size:], acc.ComponentType))
		}
	}
	return out, nil
}

// decodeComponent reads one component, mapping normalized integers to [0, 1] or [-1, 1].
func decodeComponent(b []byte, componentType int) float32 {
	switch componentType {
	case gltfComponentTypeFloat:
		return math.Float32frombits(binary.LittleEndian.Uint32(b))
	case gltfComponentTypeUnsignedByte:
		return float32(b[0]) / 255
	case gltfComponentTypeByte:
		return max(float32(int8(b[0]))/127, -1)
	case gltfComponentTypeUnsignedShort:
		return float32(binary.LittleEndian.Uint16(b)) / 65535
	case gltfComponentTypeShort:
		return max(float32(int16(binary.LittleEndian.Uint16(b)))/32767, -1)
	default:
		return 0
	}
}

func (p *gltfParserImpl) ReadIndices(accessorIndex int) ([]uint32, error) {
	acc, elems, err := p.elements(accessorIndex)
	if err != nil {
		return nil, err
	}
	if acc.Type != gltfAccessorTypeScalar {
		return nil, errors.Newf("gltf: index accessor %d is %s, want SCALAR", accessorIndex, acc.Type)
	}
	out := make([]uint32, len(elems))
	for i, e := range elems {
		switch acc.ComponentType {
		case gltfComponentTypeUnsignedByte:
			out[i] = uint32(e[0])
		case gltfComponentTypeUnsignedShort:
			out[i] = uint32(binary.LittleEndian.Uint16(e))
		case gltfComponentTypeUnsignedInt:
			out[i] = binary.LittleEndian.Uint32(e)
		default:
			return nil, errors.Newf("gltf: unsupported index component type %d", acc.ComponentType)
		}
	}
	return out, nil
}

func (p *gltfParserImpl) ReadBufferView(bufferViewIndex int) ([]byte, error) {
	doc := p.document
	if doc == nil || bufferViewIndex < 0 || bufferViewIndex >= len(doc.BufferViews) {
		return nil, errors.Newf("gltf: buffer view %d out of range", bufferViewIndex)
	}
	bv := &doc.BufferViews[bufferViewIndex]
	if bv.Buffer >= len(doc.Buffers) {
		return nil, errors.Newf("gltf: buffer %d out of range", bv.Buffer)
	}
	data := doc.Buffers[bv.Buffer].Data
	end := bv.ByteOffset + bv.ByteLength
	if end > len(data) {
		return nil, errors.Wrapf(errBufferSizeMismatch, "buffer view %d ends at %d of %d", bufferViewIndex, end, len(data))
	}
	return bytes.Clone(data[bv.ByteOffset:end]), nil
}

func componentSize(componentType int) int {
	switch componentType {
	case gltfComponentTypeByte, gltfComponentTypeUnsignedByte:
		return 1
	case gltfComponentTypeShort, gltfComponentTypeUnsignedShort:
		return 2
	case gltfComponentTypeUnsignedInt, gltfComponentTypeFloat:
		return 4
	default:
		return 0
	}
}

func componentCount(accessorType string) int {
	switch accessorType {
	case gltfAccessorTypeScalar:
		return 1
	case gltfAccessorTypeVec2:
		return 2
	case gltfAccessorTypeVec3:
		return 3
	case gltfAccessorTypeVec4:
		return 4
	default:
		return 0
	}
}
