package asset

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
)

// FromGLTF converts a glTF document built in code into the viewer's
// model. Optional references that are absent become -1, and a zero scale
// is read as unset.
func FromGLTF(src *gltf.Document) *Document {
	return convertDocument(src, false)
}

// fromDecoded converts a document produced by the glTF decoder, which has
// already filled transform defaults. A zero scale there was written by
// the author and is kept.
func fromDecoded(src *gltf.Document) *Document {
	return convertDocument(src, true)
}

func convertDocument(src *gltf.Document, decoded bool) *Document {
	doc := &Document{
		Asset: Info{
			Version:   src.Asset.Version,
			Generator: src.Asset.Generator,
			Copyright: src.Asset.Copyright,
		},
		DefaultScene: optIndex(src.Scene),
		Animations:   len(src.Animations),
		Skins:        len(src.Skins),
		Textures:     len(src.Textures),
		Images:       len(src.Images),
	}

	doc.Scenes = make([]Scene, len(src.Scenes))
	for i, s := range src.Scenes {
		if s == nil {
			continue
		}
		doc.Scenes[i] = Scene{Name: s.Name, Nodes: append([]int(nil), s.Nodes...)}
	}

	doc.Nodes = make([]Node, len(src.Nodes))
	for i, n := range src.Nodes {
		if n == nil {
			doc.Nodes[i] = Node{Mesh: -1, Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}}
			continue
		}
		doc.Nodes[i] = convertNode(n, decoded)
	}

	doc.Meshes = make([]Mesh, len(src.Meshes))
	for i, m := range src.Meshes {
		if m == nil {
			continue
		}
		mesh := Mesh{Name: m.Name, Primitives: make([]Primitive, 0, len(m.Primitives))}
		for _, p := range m.Primitives {
			if p == nil {
				continue
			}
			attrs := make(map[string]int, len(p.Attributes))
			for name, idx := range p.Attributes {
				attrs[name] = idx
			}
			mesh.Primitives = append(mesh.Primitives, Primitive{
				Mode:       convertMode(p.Mode),
				Attributes: attrs,
				Indices:    optIndex(p.Indices),
				Material:   optIndex(p.Material),
			})
		}
		doc.Meshes[i] = mesh
	}

	doc.Accessors = make([]Accessor, len(src.Accessors))
	for i, a := range src.Accessors {
		if a == nil {
			doc.Accessors[i] = Accessor{BufferView: -1}
			continue
		}
		doc.Accessors[i] = Accessor{
			Name:          a.Name,
			Type:          convertAccessorType(a.Type),
			ComponentType: convertComponentType(a.ComponentType),
			Count:         a.Count,
			ByteOffset:    a.ByteOffset,
			BufferView:    optIndex(a.BufferView),
			Normalized:    a.Normalized,
			Min:           append([]float64(nil), a.Min...),
			Max:           append([]float64(nil), a.Max...),
		}
	}

	doc.BufferViews = make([]BufferView, len(src.BufferViews))
	for i, bv := range src.BufferViews {
		if bv == nil {
			continue
		}
		doc.BufferViews[i] = BufferView{
			Name:       bv.Name,
			Buffer:     bv.Buffer,
			ByteOffset: bv.ByteOffset,
			ByteLength: bv.ByteLength,
			ByteStride: bv.ByteStride,
			Target:     int(bv.Target),
		}
	}

	doc.Buffers = make([]Buffer, len(src.Buffers))
	for i, b := range src.Buffers {
		if b == nil {
			continue
		}
		doc.Buffers[i] = Buffer{Name: b.Name, URI: b.URI, Data: b.Data}
	}

	doc.Materials = make([]Material, len(src.Materials))
	for i, m := range src.Materials {
		color := DefaultColor
		if m != nil && m.PBRMetallicRoughness != nil && m.PBRMetallicRoughness.BaseColorFactor != nil {
			f := m.PBRMetallicRoughness.BaseColorFactor
			color = mgl32.Vec4{float32(f[0]), float32(f[1]), float32(f[2]), float32(f[3])}
		}
		name := ""
		if m != nil {
			name = m.Name
		}
		doc.Materials[i] = Material{Name: name, BaseColor: color}
	}

	return doc
}

func convertNode(n *gltf.Node, decoded bool) Node {
	node := Node{
		Name:     n.Name,
		Mesh:     optIndex(n.Mesh),
		Children: append([]int(nil), n.Children...),
	}

	node.Translation = mgl32.Vec3{float32(n.Translation[0]), float32(n.Translation[1]), float32(n.Translation[2])}

	// A zero quaternion is not a rotation, whoever wrote it.
	r := n.Rotation
	if r == [4]float64{} {
		node.Rotation = mgl32.QuatIdent()
	} else {
		node.Rotation = mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}
	}

	s := n.Scale
	if s == [3]float64{} && !decoded {
		node.Scale = mgl32.Vec3{1, 1, 1}
	} else {
		node.Scale = mgl32.Vec3{float32(s[0]), float32(s[1]), float32(s[2])}
	}

	if n.Matrix != [16]float64{} && n.Matrix != identityMatrix {
		// glTF matrices are column-major, like mgl32.
		for i, v := range n.Matrix {
			node.Matrix[i] = float32(v)
		}
		node.HasMatrix = true
	}
	return node
}

var identityMatrix = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

func optIndex(p *int) int {
	if p == nil {
		return -1
	}
	return *p
}

func convertMode(m gltf.PrimitiveMode) PrimitiveMode {
	switch m {
	case gltf.PrimitivePoints:
		return ModePoints
	case gltf.PrimitiveLines:
		return ModeLines
	case gltf.PrimitiveLineLoop:
		return ModeLineLoop
	case gltf.PrimitiveLineStrip:
		return ModeLineStrip
	case gltf.PrimitiveTriangleStrip:
		return ModeTriangleStrip
	case gltf.PrimitiveTriangleFan:
		return ModeTriangleFan
	default:
		return ModeTriangles
	}
}

func convertAccessorType(t gltf.AccessorType) AccessorType {
	switch t {
	case gltf.AccessorVec2:
		return AccessorVec2
	case gltf.AccessorVec3:
		return AccessorVec3
	case gltf.AccessorVec4:
		return AccessorVec4
	case gltf.AccessorMat2:
		return AccessorMat2
	case gltf.AccessorMat3:
		return AccessorMat3
	case gltf.AccessorMat4:
		return AccessorMat4
	default:
		return AccessorScalar
	}
}

func convertComponentType(c gltf.ComponentType) ComponentType {
	switch c {
	case gltf.ComponentByte:
		return ComponentByte
	case gltf.ComponentUbyte:
		return ComponentUbyte
	case gltf.ComponentShort:
		return ComponentShort
	case gltf.ComponentUshort:
		return ComponentUshort
	case gltf.ComponentUint:
		return ComponentUint
	default:
		return ComponentFloat
	}
}
