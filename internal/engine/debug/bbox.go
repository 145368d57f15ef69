// Package debug provides debug visualization and capture utilities.
package debug

import "github.com/go-gl/mathgl/mgl32"

// BoxLineVertexCount is the number of vertices in a box outline (12 edges × 2).
const BoxLineVertexCount = 24

// BoxLines returns line-list vertices outlining the axis-aligned box
// [lo, hi], format [x, y, z] per vertex.
func BoxLines(lo, hi mgl32.Vec3) []float32 {
	minX, minY, minZ := lo.X(), lo.Y(), lo.Z()
	maxX, maxY, maxZ := hi.X(), hi.Y(), hi.Z()
	return []float32{
		// Bottom face
		minX, minY, minZ, maxX, minY, minZ,
		maxX, minY, minZ, maxX, minY, maxZ,
		maxX, minY, maxZ, minX, minY, maxZ,
		minX, minY, maxZ, minX, minY, minZ,
		// Top face
		minX, maxY, minZ, maxX, maxY, minZ,
		maxX, maxY, minZ, maxX, maxY, maxZ,
		maxX, maxY, maxZ, minX, maxY, maxZ,
		minX, maxY, maxZ, minX, maxY, minZ,
		// Vertical edges
		minX, minY, minZ, minX, maxY, minZ,
		maxX, minY, minZ, maxX, maxY, minZ,
		maxX, minY, maxZ, maxX, maxY, maxZ,
		minX, minY, maxZ, minX, maxY, maxZ,
	}
}

// PaddedBoxLines outlines [lo, hi] grown by padding on every side.
// Inverted input corners are swapped first.
func PaddedBoxLines(lo, hi mgl32.Vec3, padding float32) []float32 {
	for i := 0; i < 3; i++ {
		if lo[i] > hi[i] {
			lo[i], hi[i] = hi[i], lo[i]
		}
		lo[i] -= padding
		hi[i] += padding
	}
	return BoxLines(lo, hi)
}
