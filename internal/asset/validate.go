package asset

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ErrInvalidDocument is returned when a document fails validation and is
// therefore not handed to extraction.
var ErrInvalidDocument = errors.New("invalid document")

// ValidationReport collects every problem found by Validate.
type ValidationReport struct {
	Diagnostics []string
}

// Valid reports whether no problems were found.
func (r *ValidationReport) Valid() bool {
	return len(r.Diagnostics) == 0
}

// Err returns nil for a valid report, otherwise an error wrapping
// ErrInvalidDocument that lists the diagnostics.
func (r *ValidationReport) Err() error {
	if r.Valid() {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(r.Diagnostics, "; "))
}

func (r *ValidationReport) addf(format string, args ...any) {
	r.Diagnostics = append(r.Diagnostics, fmt.Sprintf(format, args...))
}

// Validate checks that every cross-reference resolves and that the
// document can be extracted. It never stops at the first problem.
func (d *Document) Validate() *ValidationReport {
	r := &ValidationReport{}

	if len(d.Scenes) == 0 {
		r.addf("document has no scenes")
	}
	if d.DefaultScene >= len(d.Scenes) || d.DefaultScene < -1 {
		r.addf("default scene %d out of range (%d scenes)", d.DefaultScene, len(d.Scenes))
	}

	d.validateNodes(r)
	d.validateBuffers(r)
	d.validateMeshes(r)

	return r
}

func (d *Document) validateNodes(r *ValidationReport) {
	for si, s := range d.Scenes {
		for _, n := range s.Nodes {
			if n < 0 || n >= len(d.Nodes) {
				r.addf("scene %d: root node %d out of range", si, n)
			}
		}
	}

	parent := make([]int, len(d.Nodes))
	for i := range parent {
		parent[i] = -1
	}
	for ni, n := range d.Nodes {
		if n.Mesh < -1 || n.Mesh >= len(d.Meshes) {
			r.addf("node %d: mesh %d out of range", ni, n.Mesh)
		}
		for _, c := range n.Children {
			if c < 0 || c >= len(d.Nodes) {
				r.addf("node %d: child %d out of range", ni, c)
				continue
			}
			if c == ni {
				r.addf("node %d: is its own child", ni)
				continue
			}
			if parent[c] >= 0 && parent[c] != ni {
				r.addf("node %d: has more than one parent (%d and %d)", c, parent[c], ni)
				continue
			}
			parent[c] = ni
		}
	}

	for si, s := range d.Scenes {
		for _, n := range s.Nodes {
			if n >= 0 && n < len(d.Nodes) && parent[n] >= 0 {
				r.addf("scene %d: root node %d has a parent (%d)", si, n, parent[n])
			}
		}
	}

	// With single parents, a cycle is a chain of parents that returns to its start.
	for start := range d.Nodes {
		seen := 0
		for p := parent[start]; p >= 0; p = parent[p] {
			if p == start {
				r.addf("node %d: part of a cycle", start)
				break
			}
			seen++
			if seen > len(d.Nodes) {
				break
			}
		}
	}
}

func (d *Document) validateBuffers(r *ValidationReport) {
	for bi, bv := range d.BufferViews {
		if bv.Buffer < 0 || bv.Buffer >= len(d.Buffers) {
			r.addf("buffer view %d: buffer %d out of range", bi, bv.Buffer)
			continue
		}
		size := len(d.Buffers[bv.Buffer].Data)
		if bv.ByteOffset < 0 || bv.ByteLength < 0 || bv.ByteOffset+bv.ByteLength > size {
			r.addf("buffer view %d: bytes [%d, %d) exceed buffer %d length %d",
				bi, bv.ByteOffset, bv.ByteOffset+bv.ByteLength, bv.Buffer, size)
		}
	}

	for ai, a := range d.Accessors {
		if a.BufferView < -1 || a.BufferView >= len(d.BufferViews) {
			r.addf("accessor %d: buffer view %d out of range", ai, a.BufferView)
		}
		if a.Count < 0 {
			r.addf("accessor %d: negative count %d", ai, a.Count)
		}
	}
}

func (d *Document) validateMeshes(r *ValidationReport) {
	for mi, m := range d.Meshes {
		for pi, p := range m.Primitives {
			if _, ok := p.Attributes[AttributePosition]; !ok {
				r.addf("mesh %d primitive %d: missing %s attribute", mi, pi, AttributePosition)
			}
			for _, name := range slices.Sorted(maps.Keys(p.Attributes)) {
				idx := p.Attributes[name]
				if idx < 0 || idx >= len(d.Accessors) {
					r.addf("mesh %d primitive %d: attribute %s accessor %d out of range", mi, pi, name, idx)
				}
			}
			if p.Indices >= len(d.Accessors) || p.Indices < -1 {
				r.addf("mesh %d primitive %d: index accessor %d out of range", mi, pi, p.Indices)
			}
			if p.Material >= len(d.Materials) || p.Material < -1 {
				r.addf("mesh %d primitive %d: material %d out of range", mi, pi, p.Material)
			}
		}
	}
}
