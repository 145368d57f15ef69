// Package geometry turns glTF accessors into flat vertex and index arrays
// ready for upload.
package geometry

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/gltfviewer/internal/asset"
	"github.com/Faultbox/gltfviewer/internal/engine/gpu"
)

// Extraction errors.
var (
	ErrMissingPosition     = errors.New("primitive has no POSITION attribute")
	ErrUnsupportedAccessor = errors.New("unsupported accessor format")
	ErrOutOfRange          = errors.New("accessor reads outside its data")
	ErrNoBufferView        = errors.New("accessor has no buffer view")
)

// Error ties an extraction failure to the primitive that caused it.
type Error struct {
	Mesh      int
	Primitive int
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("mesh %d primitive %d: %v", e.Mesh, e.Primitive, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Primitive is the extracted, device-ready form of one glTF primitive.
type Primitive struct {
	Mesh  int // source mesh index
	Index int // primitive index within the mesh

	Positions  []float32 // x,y,z per vertex
	Indices    []uint32
	HasIndices bool

	Mode     asset.PrimitiveMode
	Topology gpu.Topology
	Color    mgl32.Vec4
	Bounds   Bounds
}

// VertexCount returns the number of vertices.
func (p *Primitive) VertexCount() int {
	return len(p.Positions) / 3
}

// IndexCount returns the number of indices.
func (p *Primitive) IndexCount() int {
	return len(p.Indices)
}

// TopologyFor maps a glTF mode to a draw topology. The triangle family
// maps to itself and every other mode is drawn as triangles.
func TopologyFor(mode asset.PrimitiveMode) gpu.Topology {
	switch mode {
	case asset.ModeTriangleStrip:
		return gpu.TopologyTriangleStrip
	case asset.ModeTriangleFan:
		return gpu.TopologyTriangleFan
	default:
		return gpu.TopologyTriangles
	}
}

// ExtractMesh extracts every primitive of a mesh, stopping at the first failure.
func ExtractMesh(doc *asset.Document, mesh int) ([]*Primitive, error) {
	if mesh < 0 || mesh >= len(doc.Meshes) {
		return nil, &Error{Mesh: mesh, Primitive: -1, Err: ErrOutOfRange}
	}
	prims := make([]*Primitive, 0, len(doc.Meshes[mesh].Primitives))
	for i := range doc.Meshes[mesh].Primitives {
		p, err := ExtractPrimitive(doc, mesh, i)
		if err != nil {
			return nil, err
		}
		prims = append(prims, p)
	}
	return prims, nil
}

// ExtractPrimitive reads the positions and optional indices of one primitive.
func ExtractPrimitive(doc *asset.Document, mesh, index int) (*Primitive, error) {
	fail := func(err error) (*Primitive, error) {
		return nil, &Error{Mesh: mesh, Primitive: index, Err: err}
	}

	if mesh < 0 || mesh >= len(doc.Meshes) || index < 0 || index >= len(doc.Meshes[mesh].Primitives) {
		return fail(ErrOutOfRange)
	}
	src := &doc.Meshes[mesh].Primitives[index]

	posIdx, ok := src.Attributes[asset.AttributePosition]
	if !ok {
		return fail(ErrMissingPosition)
	}
	positions, err := readPositions(doc, posIdx)
	if err != nil {
		return fail(err)
	}

	p := &Primitive{
		Mesh:      mesh,
		Index:     index,
		Positions: positions,
		Mode:      src.Mode,
		Topology:  TopologyFor(src.Mode),
		Color:     doc.MaterialColor(src.Material),
		Bounds:    BoundsOf(positions),
	}

	if src.Indices >= 0 {
		indices, err := readIndices(doc, src.Indices)
		if err != nil {
			return fail(err)
		}
		if err := checkIndices(indices, p.VertexCount()); err != nil {
			return fail(err)
		}
		p.Indices = indices
		p.HasIndices = true
	}

	return p, nil
}

func readPositions(doc *asset.Document, idx int) ([]float32, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, fmt.Errorf("%w: position accessor %d", ErrOutOfRange, idx)
	}
	a := &doc.Accessors[idx]
	if a.Type != asset.AccessorVec3 || a.ComponentType != asset.ComponentFloat {
		return nil, fmt.Errorf("%w: POSITION is %s/%s, want VEC3/FLOAT", ErrUnsupportedAccessor, a.Type, a.ComponentType)
	}

	data, stride, err := accessorData(doc, a)
	if err != nil {
		return nil, err
	}

	out := make([]float32, 0, a.Count*3)
	for i := 0; i < a.Count; i++ {
		off := i * stride
		for c := 0; c < 3; c++ {
			bits := binary.LittleEndian.Uint32(data[off+4*c:])
			out = append(out, math.Float32frombits(bits))
		}
	}
	return out, nil
}

func readIndices(doc *asset.Document, idx int) ([]uint32, error) {
	if idx < 0 || idx >= len(doc.Accessors) {
		return nil, fmt.Errorf("%w: index accessor %d", ErrOutOfRange, idx)
	}
	a := &doc.Accessors[idx]
	if a.Type != asset.AccessorScalar {
		return nil, fmt.Errorf("%w: indices are %s, want SCALAR", ErrUnsupportedAccessor, a.Type)
	}

	var read func([]byte) uint32
	switch a.ComponentType {
	case asset.ComponentUbyte:
		read = func(b []byte) uint32 { return uint32(b[0]) }
	case asset.ComponentUshort:
		read = func(b []byte) uint32 { return uint32(binary.LittleEndian.Uint16(b)) }
	case asset.ComponentUint:
		read = binary.LittleEndian.Uint32
	default:
		return nil, fmt.Errorf("%w: index component %s", ErrUnsupportedAccessor, a.ComponentType)
	}

	data, stride, err := accessorData(doc, a)
	if err != nil {
		return nil, err
	}

	out := make([]uint32, a.Count)
	for i := range out {
		out[i] = read(data[i*stride:])
	}
	return out, nil
}

// checkIndices rejects any index that does not name a vertex.
func checkIndices(indices []uint32, vertices int) error {
	for i, v := range indices {
		if uint64(v) >= uint64(vertices) {
			return fmt.Errorf("%w: index %d is %d, primitive has %d vertices", ErrOutOfRange, i, v, vertices)
		}
	}
	return nil
}

// accessorData returns the bytes an accessor reads, starting at its first
// element, and the distance between elements. The returned slice is
// bounds-checked for every element.
func accessorData(doc *asset.Document, a *asset.Accessor) ([]byte, int, error) {
	if a.BufferView < 0 {
		return nil, 0, ErrNoBufferView
	}
	if a.BufferView >= len(doc.BufferViews) {
		return nil, 0, fmt.Errorf("%w: buffer view %d", ErrOutOfRange, a.BufferView)
	}
	bv := &doc.BufferViews[a.BufferView]
	if bv.Buffer < 0 || bv.Buffer >= len(doc.Buffers) {
		return nil, 0, fmt.Errorf("%w: buffer %d", ErrOutOfRange, bv.Buffer)
	}
	buf := doc.Buffers[bv.Buffer].Data
	if bv.ByteOffset < 0 || bv.ByteLength < 0 || bv.ByteOffset+bv.ByteLength > len(buf) {
		return nil, 0, fmt.Errorf("%w: buffer view %d exceeds buffer", ErrOutOfRange, a.BufferView)
	}
	view := buf[bv.ByteOffset : bv.ByteOffset+bv.ByteLength]

	elem := a.ElementSize()
	stride := bv.ByteStride
	if stride == 0 {
		stride = elem
	}
	if stride < elem {
		return nil, 0, fmt.Errorf("%w: stride %d below element size %d", ErrUnsupportedAccessor, stride, elem)
	}

	if a.Count < 0 || a.ByteOffset < 0 {
		return nil, 0, fmt.Errorf("%w: count %d offset %d", ErrOutOfRange, a.Count, a.ByteOffset)
	}
	if a.Count == 0 {
		return nil, stride, nil
	}
	end := a.ByteOffset + (a.Count-1)*stride + elem
	if end > len(view) {
		return nil, 0, fmt.Errorf("%w: needs %d bytes, view has %d", ErrOutOfRange, end, len(view))
	}
	return view[a.ByteOffset:end], stride, nil
}
