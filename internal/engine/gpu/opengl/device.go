// Package opengl implements gpu.Device on an OpenGL 4.1 core context.
package opengl

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/gltfviewer/internal/engine/gpu"
	"github.com/Faultbox/gltfviewer/internal/engine/shader"
	"github.com/Faultbox/gltfviewer/internal/logger"
)

// Device issues gpu.Device calls to the current OpenGL context.
type Device struct {
	uniforms map[gpu.Handle]map[string]int32
	log      *zap.Logger
}

var _ gpu.Device = (*Device)(nil)

// New loads the OpenGL function pointers and sets default state.
// IMPORTANT: Must be called AFTER the OpenGL context is created!
func New() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	d := &Device{
		uniforms: make(map[gpu.Handle]map[string]int32),
		log:      logger.Named("gpu"),
	}

	d.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
		zap.String("glsl", gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	return d, nil
}

// check turns a pending GL error into a DeviceError.
func check(op string) error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		// Drain the queue so the next check starts clean
		for gl.GetError() != gl.NO_ERROR {
		}
		return &gpu.DeviceError{Op: op, Code: code}
	}
	return nil
}

func (d *Device) CreateVertexArray() (gpu.Handle, error) {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	if vao == 0 {
		return 0, &gpu.DeviceError{Op: "create vertex array", Code: gl.GetError()}
	}
	return gpu.Handle(vao), check("create vertex array")
}

func (d *Device) CreateVertexBuffer(vao gpu.Handle, data []float32, layout gpu.Layout) (gpu.Handle, error) {
	if len(data) == 0 {
		return 0, &gpu.DeviceError{Op: "create vertex buffer", Err: fmt.Errorf("no vertex data")}
	}

	var vbo uint32
	gl.GenBuffers(1, &vbo)
	if vbo == 0 {
		return 0, &gpu.DeviceError{Op: "create vertex buffer", Code: gl.GetError()}
	}

	gl.BindVertexArray(uint32(vao))
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)

	for _, a := range layout.Attributes {
		gl.VertexAttribPointerWithOffset(a.Slot, a.Components, gl.FLOAT, false, layout.Stride, uintptr(a.Offset))
		gl.EnableVertexAttribArray(a.Slot)
	}
	gl.BindVertexArray(0)

	if err := check("upload vertex buffer"); err != nil {
		gl.DeleteBuffers(1, &vbo)
		return 0, err
	}
	return gpu.Handle(vbo), nil
}

func (d *Device) CreateIndexBuffer(vao gpu.Handle, indices []uint32) (gpu.Handle, error) {
	if len(indices) == 0 {
		return 0, &gpu.DeviceError{Op: "create index buffer", Err: fmt.Errorf("no indices")}
	}

	var ebo uint32
	gl.GenBuffers(1, &ebo)
	if ebo == 0 {
		return 0, &gpu.DeviceError{Op: "create index buffer", Code: gl.GetError()}
	}

	// The element binding is vertex array state, so bind the VAO first.
	gl.BindVertexArray(uint32(vao))
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)
	gl.BindVertexArray(0)

	if err := check("upload index buffer"); err != nil {
		gl.DeleteBuffers(1, &ebo)
		return 0, err
	}
	return gpu.Handle(ebo), nil
}

func (d *Device) DeleteBuffer(h gpu.Handle) {
	if h == 0 {
		return
	}
	id := uint32(h)
	gl.DeleteBuffers(1, &id)
}

func (d *Device) DeleteVertexArray(h gpu.Handle) {
	if h == 0 {
		return
	}
	id := uint32(h)
	gl.DeleteVertexArrays(1, &id)
}

func (d *Device) CreateProgram(vertexSrc, fragmentSrc string) (gpu.Handle, error) {
	program, err := shader.CompileProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return 0, &gpu.DeviceError{Op: "create program", Err: err}
	}
	d.log.Debug("shader program created", zap.Uint32("program", program))
	return gpu.Handle(program), nil
}

func (d *Device) DeleteProgram(h gpu.Handle) {
	if h == 0 {
		return
	}
	delete(d.uniforms, h)
	gl.DeleteProgram(uint32(h))
}

func (d *Device) UseProgram(h gpu.Handle) {
	gl.UseProgram(uint32(h))
}

// location looks up and caches a uniform location. Missing uniforms
// cache as -1, which GL ignores on upload.
func (d *Device) location(program gpu.Handle, name string) int32 {
	locs, ok := d.uniforms[program]
	if !ok {
		locs = make(map[string]int32)
		d.uniforms[program] = locs
	}
	loc, ok := locs[name]
	if !ok {
		loc = shader.GetUniform(uint32(program), name)
		locs[name] = loc
		if loc < 0 {
			d.log.Debug("uniform not active", zap.Uint32("program", uint32(program)), zap.String("name", name))
		}
	}
	return loc
}

func (d *Device) SetUniformMat4(program gpu.Handle, name string, m mgl32.Mat4) {
	gl.UniformMatrix4fv(d.location(program, name), 1, false, &m[0])
}

func (d *Device) SetUniformVec4(program gpu.Handle, name string, v mgl32.Vec4) {
	gl.Uniform4f(d.location(program, name), v[0], v[1], v[2], v[3])
}

func (d *Device) Viewport(x, y, width, height int32) {
	gl.Viewport(x, y, width, height)
}

func (d *Device) Clear(color mgl32.Vec4) {
	gl.ClearColor(color[0], color[1], color[2], color[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (d *Device) SetWireframe(on bool) {
	if on {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
}

func (d *Device) BindVertexArray(h gpu.Handle) {
	gl.BindVertexArray(uint32(h))
}

func glMode(t gpu.Topology) uint32 {
	switch t {
	case gpu.TopologyTriangleStrip:
		return gl.TRIANGLE_STRIP
	case gpu.TopologyTriangleFan:
		return gl.TRIANGLE_FAN
	case gpu.TopologyLines:
		return gl.LINES
	default:
		return gl.TRIANGLES
	}
}

func (d *Device) DrawArrays(t gpu.Topology, count int32) {
	gl.DrawArrays(glMode(t), 0, count)
}

func (d *Device) DrawElements(t gpu.Topology, count int32) {
	gl.DrawElementsWithOffset(glMode(t), count, gl.UNSIGNED_INT, 0)
}

func (d *Device) ReadPixels(x, y, width, height int32) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, &gpu.DeviceError{Op: "read pixels", Err: fmt.Errorf("invalid size %dx%d", width, height)}
	}
	pixels := make([]byte, int(width)*int(height)*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(x, y, width, height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	if err := check("read pixels"); err != nil {
		return nil, err
	}
	return pixels, nil
}
