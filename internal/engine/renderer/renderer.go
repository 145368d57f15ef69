// Package renderer draws the demo triangle or the loaded scene each frame.
package renderer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/gltfviewer/internal/engine/camera"
	"github.com/Faultbox/gltfviewer/internal/engine/debug"
	"github.com/Faultbox/gltfviewer/internal/engine/gpu"
	"github.com/Faultbox/gltfviewer/internal/engine/scene"
	"github.com/Faultbox/gltfviewer/internal/logger"
)

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	Wireframe  bool
	ClearColor mgl32.Vec4
}

// FrameStats describes the work submitted in one frame.
type FrameStats struct {
	DrawCalls int
	Vertices  int
}

// BoundsColor is the color of the scene bounds overlay.
var BoundsColor = mgl32.Vec4{1, 0.85, 0.2, 1}

// BoundsPadding grows the outline past the scene by this fraction of its
// largest side, so the lines do not z-fight the faces they enclose.
const BoundsPadding = 0.01

// demoTriangle interleaves position and color.
var demoTriangle = []float32{
	-0.5, -0.5, 0.0, 1.0, 0.0, 0.0,
	0.5, -0.5, 0.0, 0.0, 1.0, 0.0,
	0.0, 0.5, 0.0, 0.0, 0.0, 1.0,
}

// Renderer issues the draw calls for a frame.
type Renderer struct {
	dev    gpu.Device
	config Config
	log    *zap.Logger

	sceneProgram gpu.Handle
	demoProgram  gpu.Handle
	demoVAO      gpu.Handle
	demoVBO      gpu.Handle

	// Outline of the current scene's bounds
	boundsVAO gpu.Handle
	boundsVBO gpu.Handle

	camera     *camera.Camera
	scene      *scene.Scene
	demo       bool
	wireframe  bool
	showBounds bool
}

// New creates a renderer on dev. It must be called after the graphics
// context exists.
func New(dev gpu.Device, cfg Config) (*Renderer, error) {
	r := &Renderer{
		dev:       dev,
		config:    cfg,
		log:       logger.Named("renderer"),
		demo:      true,
		wireframe: cfg.Wireframe,
	}

	var err error
	r.sceneProgram, err = dev.CreateProgram(SceneVertex, SceneFragment)
	if err != nil {
		return nil, fmt.Errorf("scene program: %w", err)
	}
	r.demoProgram, err = dev.CreateProgram(DemoVertex, DemoFragment)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("demo program: %w", err)
	}
	if err := r.createTriangle(); err != nil {
		r.Close()
		return nil, fmt.Errorf("demo triangle: %w", err)
	}

	r.Resize(cfg.Width, cfg.Height)
	return r, nil
}

func (r *Renderer) createTriangle() error {
	vao, err := r.dev.CreateVertexArray()
	if err != nil {
		return err
	}
	r.demoVAO = vao

	vbo, err := r.dev.CreateVertexBuffer(vao, demoTriangle, gpu.PositionColorLayout)
	if err != nil {
		return err
	}
	r.demoVBO = vbo
	return nil
}

// Close releases the programs and the demo triangle. Scene buffers belong
// to the resource pool.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	r.releaseBounds()
	if r.demoVBO != 0 {
		r.dev.DeleteBuffer(r.demoVBO)
		r.demoVBO = 0
	}
	if r.demoVAO != 0 {
		r.dev.DeleteVertexArray(r.demoVAO)
		r.demoVAO = 0
	}
	if r.demoProgram != 0 {
		r.dev.DeleteProgram(r.demoProgram)
		r.demoProgram = 0
	}
	if r.sceneProgram != 0 {
		r.dev.DeleteProgram(r.sceneProgram)
		r.sceneProgram = 0
	}
}

// Resize updates the viewport.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	r.dev.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Size returns the viewport size.
func (r *Renderer) Size() (int, int) {
	return r.config.Width, r.config.Height
}

// SetCamera sets the camera used for view and projection. With nil the
// renderer uses a fixed view of the origin.
func (r *Renderer) SetCamera(c *camera.Camera) {
	r.camera = c
}

// SetScene switches to drawing s. A nil scene returns to demo mode.
func (r *Renderer) SetScene(s *scene.Scene) {
	r.scene = s
	r.demo = s == nil

	r.releaseBounds()
	if s != nil && !s.Bounds.Empty() {
		if err := r.uploadBounds(s); err != nil {
			r.log.Warn("bounds overlay unavailable", zap.Error(err))
		}
	}
}

func (r *Renderer) uploadBounds(s *scene.Scene) error {
	vao, err := r.dev.CreateVertexArray()
	if err != nil {
		return err
	}
	size := s.Bounds.Max.Sub(s.Bounds.Min)
	pad := BoundsPadding * max(size.X(), size.Y(), size.Z())
	lines := debug.PaddedBoxLines(s.Bounds.Min, s.Bounds.Max, pad)
	vbo, err := r.dev.CreateVertexBuffer(vao, lines, gpu.PositionLayout)
	if err != nil {
		r.dev.DeleteVertexArray(vao)
		return err
	}
	r.boundsVAO, r.boundsVBO = vao, vbo
	return nil
}

func (r *Renderer) releaseBounds() {
	if r.boundsVBO != 0 {
		r.dev.DeleteBuffer(r.boundsVBO)
		r.boundsVBO = 0
	}
	if r.boundsVAO != 0 {
		r.dev.DeleteVertexArray(r.boundsVAO)
		r.boundsVAO = 0
	}
}

// ToggleBounds flips the scene bounds overlay and returns the new state.
func (r *Renderer) ToggleBounds() bool {
	r.showBounds = !r.showBounds
	return r.showBounds
}

// Scene returns the scene being drawn, if any.
func (r *Renderer) Scene() *scene.Scene {
	return r.scene
}

// SetDemoMode forces the demo triangle on or off. Turning it off without
// a scene draws nothing.
func (r *Renderer) SetDemoMode(on bool) {
	r.demo = on
}

// DemoMode reports whether the demo triangle is drawn.
func (r *Renderer) DemoMode() bool {
	return r.demo
}

// SetWireframe selects line or filled rasterization for scene frames.
func (r *Renderer) SetWireframe(on bool) {
	r.wireframe = on
}

// ToggleWireframe flips the rasterization mode and returns the new state.
func (r *Renderer) ToggleWireframe() bool {
	r.wireframe = !r.wireframe
	return r.wireframe
}

// Wireframe reports whether scene frames draw in wireframe.
func (r *Renderer) Wireframe() bool {
	return r.wireframe
}

// matrices returns view and projection for this frame.
func (r *Renderer) matrices() (view, proj mgl32.Mat4) {
	if r.camera != nil {
		return r.camera.ViewMatrix(), r.camera.ProjectionMatrix()
	}

	aspect := float32(camera.DefaultAspectRatio)
	if r.config.Width > 0 && r.config.Height > 0 {
		aspect = float32(r.config.Width) / float32(r.config.Height)
	}
	view = mgl32.LookAtV(camera.DefaultPosition, camera.DefaultTarget, mgl32.Vec3{0, 1, 0})
	proj = mgl32.Perspective(camera.DefaultFOV, aspect, camera.DefaultNear, camera.DefaultFar)
	return view, proj
}

// Render draws one frame. Swapping buffers is left to the window.
func (r *Renderer) Render() FrameStats {
	r.dev.Clear(r.config.ClearColor)
	view, proj := r.matrices()

	var stats FrameStats
	switch {
	case r.demo:
		stats = r.renderDemo(view, proj)
	case r.scene != nil:
		stats = r.renderScene(view, proj)
	}
	return stats
}

func (r *Renderer) setMatrices(program gpu.Handle, model, view, proj mgl32.Mat4) {
	r.dev.SetUniformMat4(program, UniformModel, model)
	r.dev.SetUniformMat4(program, UniformView, view)
	r.dev.SetUniformMat4(program, UniformProjection, proj)
	r.dev.SetUniformMat4(program, UniformMVP, proj.Mul4(view).Mul4(model))
}

func (r *Renderer) renderDemo(view, proj mgl32.Mat4) FrameStats {
	r.dev.UseProgram(r.demoProgram)
	r.setMatrices(r.demoProgram, mgl32.Ident4(), view, proj)

	r.dev.BindVertexArray(r.demoVAO)
	r.dev.DrawArrays(gpu.TopologyTriangles, 3)
	r.dev.BindVertexArray(0)
	return FrameStats{DrawCalls: 1, Vertices: 3}
}

func (r *Renderer) renderScene(view, proj mgl32.Mat4) FrameStats {
	var stats FrameStats
	if len(r.scene.Items) == 0 {
		return stats
	}

	r.dev.UseProgram(r.sceneProgram)
	if r.wireframe {
		r.dev.SetWireframe(true)
	}

	for _, item := range r.scene.Items {
		rec := item.Record
		r.setMatrices(r.sceneProgram, item.Model, view, proj)
		r.dev.SetUniformVec4(r.sceneProgram, UniformColor, rec.Color)

		r.dev.BindVertexArray(rec.VertexArray)
		if rec.HasIndices {
			r.dev.DrawElements(rec.Topology, rec.IndexCount)
			stats.Vertices += int(rec.IndexCount)
		} else {
			r.dev.DrawArrays(rec.Topology, rec.VertexCount)
			stats.Vertices += int(rec.VertexCount)
		}
		stats.DrawCalls++
	}

	if r.showBounds && r.boundsVAO != 0 {
		r.setMatrices(r.sceneProgram, mgl32.Ident4(), view, proj)
		r.dev.SetUniformVec4(r.sceneProgram, UniformColor, BoundsColor)
		r.dev.BindVertexArray(r.boundsVAO)
		r.dev.DrawArrays(gpu.TopologyLines, debug.BoxLineVertexCount)
		stats.DrawCalls++
		stats.Vertices += debug.BoxLineVertexCount
	}
	r.dev.BindVertexArray(0)

	// Leave the device filled whatever the mode was.
	r.dev.SetWireframe(false)
	return stats
}
