// Package asset loads glTF scene documents and checks their referential integrity.
package asset

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// AccessorType is the element shape of an accessor.
type AccessorType int

const (
	AccessorScalar AccessorType = iota
	AccessorVec2
	AccessorVec3
	AccessorVec4
	AccessorMat2
	AccessorMat3
	AccessorMat4
)

// Components returns the number of components per element.
func (t AccessorType) Components() int {
	switch t {
	case AccessorScalar:
		return 1
	case AccessorVec2:
		return 2
	case AccessorVec3:
		return 3
	case AccessorVec4, AccessorMat2:
		return 4
	case AccessorMat3:
		return 9
	case AccessorMat4:
		return 16
	default:
		return 0
	}
}

// String returns the glTF type name.
func (t AccessorType) String() string {
	switch t {
	case AccessorScalar:
		return "SCALAR"
	case AccessorVec2:
		return "VEC2"
	case AccessorVec3:
		return "VEC3"
	case AccessorVec4:
		return "VEC4"
	case AccessorMat2:
		return "MAT2"
	case AccessorMat3:
		return "MAT3"
	case AccessorMat4:
		return "MAT4"
	default:
		return fmt.Sprintf("Unknown(%d)", int(t))
	}
}

// ComponentType is the numeric type of an accessor component.
// Values are the glTF/GL enum codes.
type ComponentType int

const (
	ComponentByte   ComponentType = 5120
	ComponentUbyte  ComponentType = 5121
	ComponentShort  ComponentType = 5122
	ComponentUshort ComponentType = 5123
	ComponentUint   ComponentType = 5125
	ComponentFloat  ComponentType = 5126
)

// Size returns the component size in bytes.
func (c ComponentType) Size() int {
	switch c {
	case ComponentByte, ComponentUbyte:
		return 1
	case ComponentShort, ComponentUshort:
		return 2
	case ComponentUint, ComponentFloat:
		return 4
	default:
		return 0
	}
}

// String returns a short type name.
func (c ComponentType) String() string {
	switch c {
	case ComponentByte:
		return "BYTE"
	case ComponentUbyte:
		return "UNSIGNED_BYTE"
	case ComponentShort:
		return "SHORT"
	case ComponentUshort:
		return "UNSIGNED_SHORT"
	case ComponentUint:
		return "UNSIGNED_INT"
	case ComponentFloat:
		return "FLOAT"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// PrimitiveMode is the drawing mode of a primitive. Values follow glTF.
type PrimitiveMode int

const (
	ModePoints        PrimitiveMode = 0
	ModeLines         PrimitiveMode = 1
	ModeLineLoop      PrimitiveMode = 2
	ModeLineStrip     PrimitiveMode = 3
	ModeTriangles     PrimitiveMode = 4
	ModeTriangleStrip PrimitiveMode = 5
	ModeTriangleFan   PrimitiveMode = 6
)

// String returns the glTF mode name.
func (m PrimitiveMode) String() string {
	switch m {
	case ModePoints:
		return "POINTS"
	case ModeLines:
		return "LINES"
	case ModeLineLoop:
		return "LINE_LOOP"
	case ModeLineStrip:
		return "LINE_STRIP"
	case ModeTriangles:
		return "TRIANGLES"
	case ModeTriangleStrip:
		return "TRIANGLE_STRIP"
	case ModeTriangleFan:
		return "TRIANGLE_FAN"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// AttributePosition is the semantic name of the vertex position attribute.
const AttributePosition = "POSITION"

// Info is the asset header.
type Info struct {
	Version   string
	Generator string
	Copyright string
}

// Scene lists root node indices.
type Scene struct {
	Name  string
	Nodes []int
}

// Node is one element of the scene hierarchy.
// Mesh is -1 when the node carries no mesh.
type Node struct {
	Name        string
	Mesh        int
	Children    []int
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3
	Matrix      mgl32.Mat4
	HasMatrix   bool
}

// LocalMatrix returns the node transform relative to its parent.
// An explicit matrix wins over TRS.
func (n *Node) LocalMatrix() mgl32.Mat4 {
	if n.HasMatrix {
		return n.Matrix
	}
	t := mgl32.Translate3D(n.Translation.X(), n.Translation.Y(), n.Translation.Z())
	r := n.Rotation.Normalize().Mat4()
	s := mgl32.Scale3D(n.Scale.X(), n.Scale.Y(), n.Scale.Z())
	return t.Mul4(r).Mul4(s)
}

// Mesh is a named list of primitives.
type Mesh struct {
	Name       string
	Primitives []Primitive
}

// Primitive is one drawable unit of a mesh.
// Indices and Material are -1 when absent.
type Primitive struct {
	Mode       PrimitiveMode
	Attributes map[string]int
	Indices    int
	Material   int
}

// Accessor describes how to read typed elements from a buffer view.
// BufferView is -1 for accessors without backing data.
type Accessor struct {
	Name          string
	Type          AccessorType
	ComponentType ComponentType
	Count         int
	ByteOffset    int
	BufferView    int
	Normalized    bool
	Min           []float64
	Max           []float64
}

// ElementSize returns the packed size of one element in bytes.
func (a *Accessor) ElementSize() int {
	return a.Type.Components() * a.ComponentType.Size()
}

// BufferView is a byte range of a buffer.
type BufferView struct {
	Name       string
	Buffer     int
	ByteOffset int
	ByteLength int
	ByteStride int
	Target     int
}

// Buffer holds raw bytes. URI is empty for the GLB binary chunk.
type Buffer struct {
	Name string
	URI  string
	Data []byte
}

// Material keeps only what the viewer draws with: a flat base color.
type Material struct {
	Name      string
	BaseColor mgl32.Vec4
}

// Document is the in-memory scene graph. It is read-only after load.
// DefaultScene is -1 when the file does not name one.
type Document struct {
	Path         string
	Asset        Info
	DefaultScene int
	Scenes       []Scene
	Nodes        []Node
	Meshes       []Mesh
	Accessors    []Accessor
	BufferViews  []BufferView
	Buffers      []Buffer
	Materials    []Material

	// Counts of features the viewer parses but ignores.
	Animations int
	Skins      int
	Textures   int
	Images     int
}

// DefaultColor is the base color used when a primitive has no material.
var DefaultColor = mgl32.Vec4{1, 1, 1, 1}

// MaterialColor returns the base color of a material, or DefaultColor when
// the index is absent or out of range.
func (d *Document) MaterialColor(index int) mgl32.Vec4 {
	if index < 0 || index >= len(d.Materials) {
		return DefaultColor
	}
	return d.Materials[index].BaseColor
}

// SceneIndex returns the scene to display: the default scene if set,
// otherwise the first one. Returns -1 when there are no scenes.
func (d *Document) SceneIndex() int {
	if len(d.Scenes) == 0 {
		return -1
	}
	if d.DefaultScene >= 0 && d.DefaultScene < len(d.Scenes) {
		return d.DefaultScene
	}
	return 0
}

// PrimitiveCount returns the number of primitives across all meshes.
func (d *Document) PrimitiveCount() int {
	n := 0
	for i := range d.Meshes {
		n += len(d.Meshes[i].Primitives)
	}
	return n
}
