// Package scene turns a validated glTF document into device resources and
// a draw list.
package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/gltfviewer/internal/asset"
	"github.com/Faultbox/gltfviewer/internal/engine/geometry"
)

// DrawItem is one placement of a record in the world.
type DrawItem struct {
	Record *MeshRecord
	Model  mgl32.Mat4
}

// Scene is a loaded document ready to draw.
type Scene struct {
	Document *asset.Document
	Records  []*MeshRecord
	Items    []DrawItem
	Bounds   geometry.Bounds // world space
}

// Vertices returns the number of vertices submitted per frame.
func (s *Scene) Vertices() int {
	n := 0
	for _, it := range s.Items {
		if it.Record.HasIndices {
			n += int(it.Record.IndexCount)
		} else {
			n += int(it.Record.VertexCount)
		}
	}
	return n
}

// Build runs the full pipeline for doc: validation, extraction of every
// mesh, upload and draw list construction. The new resources replace the
// pool's live set only when every step succeeds; on error the pool still
// holds the previous scene.
func Build(doc *asset.Document, pool *ResourcePool) (*Scene, error) {
	if err := doc.Validate().Err(); err != nil {
		return nil, err
	}

	var prims []*geometry.Primitive
	for m := range doc.Meshes {
		ps, err := geometry.ExtractMesh(doc, m)
		if err != nil {
			return nil, fmt.Errorf("extract: %w", err)
		}
		prims = append(prims, ps...)
	}

	records, err := pool.Upload(prims)
	if err != nil {
		return nil, err
	}

	items, bounds, err := drawList(doc, records)
	if err != nil {
		pool.Discard(records)
		return nil, err
	}

	pool.Replace(records)
	pool.log.Info("scene built",
		zap.Int("primitives", len(prims)),
		zap.Int("records", len(records)),
		zap.Int("drawItems", len(items)),
	)

	return &Scene{
		Document: doc,
		Records:  records,
		Items:    items,
		Bounds:   bounds,
	}, nil
}

// drawList places records by walking the display scene. If the walk
// places nothing, every record is drawn once at the origin.
func drawList(doc *asset.Document, records []*MeshRecord) ([]DrawItem, geometry.Bounds, error) {
	byMesh := make(map[int][]*MeshRecord)
	for _, rec := range records {
		byMesh[rec.Mesh] = append(byMesh[rec.Mesh], rec)
	}

	var items []DrawItem
	bounds := geometry.EmptyBounds()

	if idx := doc.SceneIndex(); idx >= 0 {
		err := doc.Walk(idx, func(_ int, node *asset.Node, world mgl32.Mat4, _ int) error {
			if node.Mesh < 0 {
				return nil
			}
			for _, rec := range byMesh[node.Mesh] {
				items = append(items, DrawItem{Record: rec, Model: world})
				bounds = bounds.Union(rec.Bounds.Transform(world))
			}
			return nil
		})
		if err != nil {
			return nil, bounds, fmt.Errorf("walk scene %d: %w", idx, err)
		}
	}

	if len(items) == 0 {
		for _, rec := range records {
			items = append(items, DrawItem{Record: rec, Model: mgl32.Ident4()})
			bounds = bounds.Union(rec.Bounds)
		}
	}
	return items, bounds, nil
}
