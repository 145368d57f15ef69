// Package gpu abstracts the graphics calls the viewer makes so the
// scene pipeline can run against OpenGL or a recording fake.
package gpu

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Handle names a device object (vertex array, buffer or program).
// Zero is never a valid handle.
type Handle uint32

// Topology is the primitive assembly mode of a draw call.
type Topology int

const (
	TopologyTriangles Topology = iota
	TopologyTriangleStrip
	TopologyTriangleFan
	TopologyLines // debug overlays only
)

// String returns the topology name.
func (t Topology) String() string {
	switch t {
	case TopologyTriangles:
		return "triangles"
	case TopologyTriangleStrip:
		return "triangle-strip"
	case TopologyTriangleFan:
		return "triangle-fan"
	case TopologyLines:
		return "lines"
	default:
		return fmt.Sprintf("Unknown(%d)", int(t))
	}
}

// Attribute is one float vertex attribute within an interleaved buffer.
type Attribute struct {
	Slot       uint32 // shader input location
	Components int32  // floats per vertex
	Offset     int    // byte offset within a vertex
}

// Layout describes how vertices are laid out in a vertex buffer.
type Layout struct {
	Stride     int32 // bytes per vertex
	Attributes []Attribute
}

// PositionLayout is one 3-float position attribute at slot 0.
var PositionLayout = Layout{
	Stride:     12,
	Attributes: []Attribute{{Slot: 0, Components: 3, Offset: 0}},
}

// PositionColorLayout interleaves a 3-float position at slot 0 with a
// 3-float color at slot 1.
var PositionColorLayout = Layout{
	Stride: 24,
	Attributes: []Attribute{
		{Slot: 0, Components: 3, Offset: 0},
		{Slot: 1, Components: 3, Offset: 12},
	},
}

// Device is the set of graphics operations used by the scene pool and
// the frame renderer. All calls must come from the thread that owns the
// graphics context.
type Device interface {
	CreateVertexArray() (Handle, error)
	// CreateVertexBuffer uploads data into a new buffer and records layout
	// on the vertex array vao.
	CreateVertexBuffer(vao Handle, data []float32, layout Layout) (Handle, error)
	// CreateIndexBuffer uploads 32-bit indices and binds them to vao.
	CreateIndexBuffer(vao Handle, indices []uint32) (Handle, error)
	DeleteBuffer(h Handle)
	DeleteVertexArray(h Handle)

	CreateProgram(vertexSrc, fragmentSrc string) (Handle, error)
	DeleteProgram(h Handle)
	UseProgram(h Handle)
	SetUniformMat4(program Handle, name string, m mgl32.Mat4)
	SetUniformVec4(program Handle, name string, v mgl32.Vec4)

	Viewport(x, y, width, height int32)
	Clear(color mgl32.Vec4)
	SetWireframe(on bool)
	BindVertexArray(h Handle)
	DrawArrays(t Topology, count int32)
	DrawElements(t Topology, count int32)

	// ReadPixels returns RGBA rows bottom-up, as the device stores them.
	ReadPixels(x, y, width, height int32) ([]byte, error)
}

// DeviceError reports a failed device operation.
type DeviceError struct {
	Op   string
	Code uint32
	Err  error
}

func (e *DeviceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gpu: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("gpu: %s failed (error 0x%04X)", e.Op, e.Code)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}
