// Package assettest builds small glTF documents for tests.
package assettest

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/gltfviewer/internal/asset"
)

// TrianglePositions are the vertices of the unit triangle used by fixtures.
var TrianglePositions = []float32{
	0, 0, 0,
	1, 0, 0,
	0, 1, 0,
}

// Floats packs values little-endian.
func Floats(values []float32) []byte {
	out := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(v))
	}
	return out
}

// Uint16s packs values little-endian.
func Uint16s(values []uint16) []byte {
	out := make([]byte, 2*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint16(out[2*i:], v)
	}
	return out
}

// Node returns a node with identity transform.
func Node(mesh int, children ...int) asset.Node {
	return asset.Node{
		Mesh:     mesh,
		Children: children,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// Triangle returns a valid single-triangle document: one scene, one node,
// one mesh, one non-indexed TRIANGLES primitive of three vertices.
func Triangle() *asset.Document {
	data := Floats(TrianglePositions)
	return &asset.Document{
		Asset:        asset.Info{Version: "2.0"},
		DefaultScene: 0,
		Scenes:       []asset.Scene{{Nodes: []int{0}}},
		Nodes:        []asset.Node{Node(0)},
		Meshes: []asset.Mesh{{
			Name: "triangle",
			Primitives: []asset.Primitive{{
				Mode:       asset.ModeTriangles,
				Attributes: map[string]int{asset.AttributePosition: 0},
				Indices:    -1,
				Material:   -1,
			}},
		}},
		Accessors: []asset.Accessor{{
			Type:          asset.AccessorVec3,
			ComponentType: asset.ComponentFloat,
			Count:         3,
			BufferView:    0,
			Min:           []float64{0, 0, 0},
			Max:           []float64{1, 1, 0},
		}},
		BufferViews: []asset.BufferView{{Buffer: 0, ByteLength: len(data)}},
		Buffers:     []asset.Buffer{{Data: data}},
	}
}

// IndexedQuad returns a valid document with four vertices and six
// UNSIGNED_SHORT indices sharing one buffer, plus a red material.
func IndexedQuad() *asset.Document {
	pos := Floats([]float32{
		-1, -1, 0,
		1, -1, 0,
		1, 1, 0,
		-1, 1, 0,
	})
	idx := Uint16s([]uint16{0, 1, 2, 0, 2, 3})
	data := append(append([]byte{}, pos...), idx...)

	return &asset.Document{
		Asset:        asset.Info{Version: "2.0"},
		DefaultScene: 0,
		Scenes:       []asset.Scene{{Nodes: []int{0}}},
		Nodes:        []asset.Node{Node(0)},
		Meshes: []asset.Mesh{{
			Name: "quad",
			Primitives: []asset.Primitive{{
				Mode:       asset.ModeTriangles,
				Attributes: map[string]int{asset.AttributePosition: 0},
				Indices:    1,
				Material:   0,
			}},
		}},
		Accessors: []asset.Accessor{
			{Type: asset.AccessorVec3, ComponentType: asset.ComponentFloat, Count: 4, BufferView: 0},
			{Type: asset.AccessorScalar, ComponentType: asset.ComponentUshort, Count: 6, BufferView: 1},
		},
		BufferViews: []asset.BufferView{
			{Buffer: 0, ByteOffset: 0, ByteLength: len(pos)},
			{Buffer: 0, ByteOffset: len(pos), ByteLength: len(idx)},
		},
		Buffers:   []asset.Buffer{{Data: data}},
		Materials: []asset.Material{{Name: "red", BaseColor: mgl32.Vec4{1, 0, 0, 1}}},
	}
}

// TriangleJSON returns a text glTF document for the unit triangle with its
// buffer embedded as a data URI.
func TriangleJSON() string {
	data := Floats(TrianglePositions)
	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(data)
	return fmt.Sprintf(`{
  "asset": {"version": "2.0", "generator": "assettest"},
  "scene": 0,
  "scenes": [{"name": "main", "nodes": [0]}],
  "nodes": [{"name": "root", "mesh": 0}],
  "meshes": [{"name": "triangle", "primitives": [{"attributes": {"POSITION": 0}, "mode": 4}]}],
  "accessors": [{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3",
                 "min": [0, 0, 0], "max": [1, 1, 0]}],
  "bufferViews": [{"buffer": 0, "byteOffset": 0, "byteLength": %d}],
  "buffers": [{"byteLength": %d, "uri": %q}]
}`, len(data), len(data), uri)
}

// TriangleGLB returns the unit triangle as a binary container: a JSON
// chunk followed by a BIN chunk holding the positions.
func TriangleGLB() []byte {
	bin := Floats(TrianglePositions)
	js := []byte(fmt.Sprintf(`{"asset":{"version":"2.0"},"scene":0,"scenes":[{"nodes":[0]}],`+
		`"nodes":[{"mesh":0}],"meshes":[{"primitives":[{"attributes":{"POSITION":0}}]}],`+
		`"accessors":[{"bufferView":0,"componentType":5126,"count":3,"type":"VEC3"}],`+
		`"bufferViews":[{"buffer":0,"byteLength":%d}],"buffers":[{"byteLength":%d}]}`, len(bin), len(bin)))
	for len(js)%4 != 0 {
		js = append(js, ' ')
	}

	total := 12 + 8 + len(js) + 8 + len(bin)
	out := make([]byte, 0, total)
	out = append(out, "glTF"...)
	out = binary.LittleEndian.AppendUint32(out, 2)
	out = binary.LittleEndian.AppendUint32(out, uint32(total))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(js)))
	out = binary.LittleEndian.AppendUint32(out, 0x4E4F534A) // JSON
	out = append(out, js...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(bin)))
	out = binary.LittleEndian.AppendUint32(out, 0x004E4942) // BIN
	out = append(out, bin...)
	return out
}

// WriteFile writes content to dir/name and returns the path.
func WriteFile(tb testing.TB, dir, name, content string) string {
	tb.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		tb.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteTriangle writes the text triangle document into dir.
func WriteTriangle(tb testing.TB, dir string) string {
	tb.Helper()
	return WriteFile(tb, dir, "triangle.gltf", TriangleJSON())
}
