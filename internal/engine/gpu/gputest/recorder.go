// Package gputest provides a recording gpu.Device for tests that run
// without a graphics context.
package gputest

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/gltfviewer/internal/engine/gpu"
)

// Call is one recorded device call.
type Call struct {
	Op       string
	Handle   gpu.Handle
	Topology gpu.Topology
	Count    int32
	On       bool
}

func (c Call) String() string {
	return fmt.Sprintf("%s(%d)", c.Op, c.Handle)
}

// Recorder implements gpu.Device in memory. It hands out increasing
// handles, tracks which objects are alive and records every call.
type Recorder struct {
	Calls []Call

	VertexArrays map[gpu.Handle]bool
	Buffers      map[gpu.Handle]bool
	Programs     map[gpu.Handle]bool

	VertexData map[gpu.Handle][]float32
	IndexData  map[gpu.Handle][]uint32
	Layouts    map[gpu.Handle]gpu.Layout

	// Last value set per uniform name
	Mat4s map[string]mgl32.Mat4
	Vec4s map[string]mgl32.Vec4

	Program   gpu.Handle
	Wireframe bool
	ClearedTo mgl32.Vec4
	Width     int32
	Height    int32

	// Fail, when set, is consulted before every allocating call. A
	// non-nil return makes the call fail with that error.
	Fail func(op string, n int) error

	opCount map[string]int
	next    gpu.Handle
}

var _ gpu.Device = (*Recorder)(nil)

// New returns an empty recorder.
func New() *Recorder {
	return &Recorder{
		VertexArrays: make(map[gpu.Handle]bool),
		Buffers:      make(map[gpu.Handle]bool),
		Programs:     make(map[gpu.Handle]bool),
		VertexData:   make(map[gpu.Handle][]float32),
		IndexData:    make(map[gpu.Handle][]uint32),
		Layouts:      make(map[gpu.Handle]gpu.Layout),
		Mat4s:        make(map[string]mgl32.Mat4),
		Vec4s:        make(map[string]mgl32.Vec4),
		opCount:      make(map[string]int),
	}
}

// FailNth makes the nth call (1-based) of op fail.
func FailNth(op string, nth int) func(string, int) error {
	return func(o string, n int) error {
		if o == op && n == nth {
			return &gpu.DeviceError{Op: op, Code: 0x0505} // GL_OUT_OF_MEMORY
		}
		return nil
	}
}

func (r *Recorder) record(c Call) {
	r.Calls = append(r.Calls, c)
}

func (r *Recorder) allocate(op string) (gpu.Handle, error) {
	r.opCount[op]++
	if r.Fail != nil {
		if err := r.Fail(op, r.opCount[op]); err != nil {
			r.record(Call{Op: op + "!"})
			return 0, err
		}
	}
	r.next++
	r.record(Call{Op: op, Handle: r.next})
	return r.next, nil
}

func (r *Recorder) CreateVertexArray() (gpu.Handle, error) {
	h, err := r.allocate("CreateVertexArray")
	if err != nil {
		return 0, err
	}
	r.VertexArrays[h] = true
	return h, nil
}

func (r *Recorder) CreateVertexBuffer(vao gpu.Handle, data []float32, layout gpu.Layout) (gpu.Handle, error) {
	if !r.VertexArrays[vao] {
		return 0, fmt.Errorf("gputest: vertex buffer on unknown vertex array %d", vao)
	}
	h, err := r.allocate("CreateVertexBuffer")
	if err != nil {
		return 0, err
	}
	r.Buffers[h] = true
	r.VertexData[h] = append([]float32(nil), data...)
	r.Layouts[h] = layout
	return h, nil
}

func (r *Recorder) CreateIndexBuffer(vao gpu.Handle, indices []uint32) (gpu.Handle, error) {
	if !r.VertexArrays[vao] {
		return 0, fmt.Errorf("gputest: index buffer on unknown vertex array %d", vao)
	}
	h, err := r.allocate("CreateIndexBuffer")
	if err != nil {
		return 0, err
	}
	r.Buffers[h] = true
	r.IndexData[h] = append([]uint32(nil), indices...)
	return h, nil
}

func (r *Recorder) DeleteBuffer(h gpu.Handle) {
	r.record(Call{Op: "DeleteBuffer", Handle: h})
	delete(r.Buffers, h)
}

func (r *Recorder) DeleteVertexArray(h gpu.Handle) {
	r.record(Call{Op: "DeleteVertexArray", Handle: h})
	delete(r.VertexArrays, h)
}

func (r *Recorder) CreateProgram(vertexSrc, fragmentSrc string) (gpu.Handle, error) {
	if vertexSrc == "" || fragmentSrc == "" {
		return 0, &gpu.DeviceError{Op: "create program", Err: fmt.Errorf("empty source")}
	}
	h, err := r.allocate("CreateProgram")
	if err != nil {
		return 0, err
	}
	r.Programs[h] = true
	return h, nil
}

func (r *Recorder) DeleteProgram(h gpu.Handle) {
	r.record(Call{Op: "DeleteProgram", Handle: h})
	delete(r.Programs, h)
}

func (r *Recorder) UseProgram(h gpu.Handle) {
	r.record(Call{Op: "UseProgram", Handle: h})
	r.Program = h
}

func (r *Recorder) SetUniformMat4(program gpu.Handle, name string, m mgl32.Mat4) {
	r.Mat4s[name] = m
}

func (r *Recorder) SetUniformVec4(program gpu.Handle, name string, v mgl32.Vec4) {
	r.Vec4s[name] = v
}

func (r *Recorder) Viewport(x, y, width, height int32) {
	r.record(Call{Op: "Viewport"})
	r.Width, r.Height = width, height
}

func (r *Recorder) Clear(color mgl32.Vec4) {
	r.record(Call{Op: "Clear"})
	r.ClearedTo = color
}

func (r *Recorder) SetWireframe(on bool) {
	r.record(Call{Op: "SetWireframe", On: on})
	r.Wireframe = on
}

func (r *Recorder) BindVertexArray(h gpu.Handle) {
	r.record(Call{Op: "BindVertexArray", Handle: h})
}

func (r *Recorder) DrawArrays(t gpu.Topology, count int32) {
	r.record(Call{Op: "DrawArrays", Topology: t, Count: count})
}

func (r *Recorder) DrawElements(t gpu.Topology, count int32) {
	r.record(Call{Op: "DrawElements", Topology: t, Count: count})
}

// ReadPixels returns a width×height RGBA image whose rows are filled
// with their row index, so vertical flips are observable.
func (r *Recorder) ReadPixels(x, y, width, height int32) ([]byte, error) {
	r.record(Call{Op: "ReadPixels"})
	if width <= 0 || height <= 0 {
		return nil, &gpu.DeviceError{Op: "read pixels", Err: fmt.Errorf("invalid size %dx%d", width, height)}
	}
	out := make([]byte, int(width)*int(height)*4)
	for row := 0; row < int(height); row++ {
		for i := 0; i < int(width)*4; i++ {
			out[row*int(width)*4+i] = byte(row)
		}
	}
	return out, nil
}

// Ops returns the names of the recorded calls in order.
func (r *Recorder) Ops() []string {
	ops := make([]string, len(r.Calls))
	for i, c := range r.Calls {
		ops[i] = c.Op
	}
	return ops
}

// Draws returns only the draw calls.
func (r *Recorder) Draws() []Call {
	var draws []Call
	for _, c := range r.Calls {
		if c.Op == "DrawArrays" || c.Op == "DrawElements" {
			draws = append(draws, c)
		}
	}
	return draws
}

// Deletes returns the delete calls in order.
func (r *Recorder) Deletes() []Call {
	var out []Call
	for _, c := range r.Calls {
		switch c.Op {
		case "DeleteBuffer", "DeleteVertexArray", "DeleteProgram":
			out = append(out, c)
		}
	}
	return out
}

// Live returns how many vertex arrays and buffers are allocated.
func (r *Recorder) Live() int {
	return len(r.VertexArrays) + len(r.Buffers)
}

// ResetCalls forgets recorded calls but keeps live objects.
func (r *Recorder) ResetCalls() {
	r.Calls = nil
}
