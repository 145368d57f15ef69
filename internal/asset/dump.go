package asset

import (
	"go.uber.org/zap"
)

// LogSummary writes one line with the document's counts.
func (d *Document) LogSummary(log *zap.Logger) {
	log.Info("document loaded",
		zap.String("path", d.Path),
		zap.String("version", d.Asset.Version),
		zap.String("generator", d.Asset.Generator),
		zap.Int("scenes", len(d.Scenes)),
		zap.Int("nodes", len(d.Nodes)),
		zap.Int("meshes", len(d.Meshes)),
		zap.Int("primitives", d.PrimitiveCount()),
		zap.Int("accessors", len(d.Accessors)),
		zap.Int("bufferViews", len(d.BufferViews)),
		zap.Int("buffers", len(d.Buffers)),
		zap.Int("materials", len(d.Materials)),
	)
}

// LogStructure dumps the scene hierarchy, meshes, materials and buffer
// views at debug level.
func (d *Document) LogStructure(log *zap.Logger) {
	if !log.Core().Enabled(zap.DebugLevel) {
		return
	}

	for si, s := range d.Scenes {
		log.Debug("scene", zap.Int("index", si), zap.String("name", s.Name),
			zap.Ints("roots", s.Nodes), zap.Bool("default", si == d.SceneIndex()))
		for _, root := range s.Nodes {
			d.logNode(log, root, 1, map[int]bool{})
		}
	}

	for mi, m := range d.Meshes {
		log.Debug("mesh", zap.Int("index", mi), zap.String("name", m.Name),
			zap.Int("primitives", len(m.Primitives)))
		for pi, p := range m.Primitives {
			log.Debug("  primitive",
				zap.Int("index", pi),
				zap.Stringer("mode", p.Mode),
				zap.Int("indices", p.Indices),
				zap.Int("material", p.Material),
				zap.Any("attributes", p.Attributes),
			)
			if pos, ok := p.Attributes[AttributePosition]; ok {
				d.logAccessor(log, "    position", pos)
			}
			if p.Indices >= 0 {
				d.logAccessor(log, "    indices", p.Indices)
			}
		}
	}

	for i, m := range d.Materials {
		log.Debug("material", zap.Int("index", i), zap.String("name", m.Name),
			zap.Float32s("baseColor", m.BaseColor[:]))
	}

	for i, bv := range d.BufferViews {
		log.Debug("buffer view",
			zap.Int("index", i),
			zap.Int("buffer", bv.Buffer),
			zap.Int("offset", bv.ByteOffset),
			zap.Int("length", bv.ByteLength),
			zap.Int("stride", bv.ByteStride),
			zap.Int("target", bv.Target),
		)
	}
}

func (d *Document) logNode(log *zap.Logger, idx, depth int, seen map[int]bool) {
	if idx < 0 || idx >= len(d.Nodes) || seen[idx] {
		return
	}
	seen[idx] = true
	n := &d.Nodes[idx]
	log.Debug("node",
		zap.Int("index", idx),
		zap.String("name", n.Name),
		zap.Int("depth", depth),
		zap.Int("mesh", n.Mesh),
		zap.Int("children", len(n.Children)),
		zap.Bool("matrix", n.HasMatrix),
	)
	for _, c := range n.Children {
		d.logNode(log, c, depth+1, seen)
	}
}

func (d *Document) logAccessor(log *zap.Logger, label string, idx int) {
	if idx < 0 || idx >= len(d.Accessors) {
		log.Debug(label, zap.Int("accessor", idx), zap.Bool("missing", true))
		return
	}
	a := &d.Accessors[idx]
	log.Debug(label,
		zap.Int("accessor", idx),
		zap.Stringer("type", a.Type),
		zap.Stringer("component", a.ComponentType),
		zap.Int("count", a.Count),
		zap.Int("bufferView", a.BufferView),
		zap.Int("offset", a.ByteOffset),
		zap.Float64s("min", a.Min),
		zap.Float64s("max", a.Max),
	)
}
