// Package viewer ties the window host, camera, scene pipeline and
// renderer into the interactive model viewer.
package viewer

import (
	"fmt"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/gltfviewer/internal/asset"
	"github.com/Faultbox/gltfviewer/internal/config"
	"github.com/Faultbox/gltfviewer/internal/engine/camera"
	"github.com/Faultbox/gltfviewer/internal/engine/debug"
	"github.com/Faultbox/gltfviewer/internal/engine/gpu"
	"github.com/Faultbox/gltfviewer/internal/engine/input"
	"github.com/Faultbox/gltfviewer/internal/engine/renderer"
	"github.com/Faultbox/gltfviewer/internal/engine/scene"
	"github.com/Faultbox/gltfviewer/internal/logger"
)

func log() *zap.Logger {
	return logger.Named("viewer")
}

// Host is the window the viewer runs in.
type Host interface {
	PollEvents(dst []input.Event) []input.Event
	SwapBuffers()
	Size() (int, int)
	SetTitle(title string)
	VSync() bool
	Delay(ms uint32)
}

// DialogFunc asks the user for a model file. It returns "" when the user
// cancels. It runs on its own goroutine.
type DialogFunc func(startDir string) (string, error)

// statsInterval is how many frames pass between frame stat log lines.
const statsInterval = 600

type dialogResult struct {
	path string
	err  error
}

// App owns every piece of viewer state. All methods must be called from
// the render thread.
type App struct {
	cfg  *config.Config
	host Host
	dev  gpu.Device
	log  *zap.Logger

	camera   *camera.Camera
	renderer *renderer.Renderer
	pool     *scene.ResourcePool
	shots    *debug.ScreenshotCapture

	scene *scene.Scene
	doc   *asset.Document
	path  string

	keys    input.KeyState
	events  []input.Event
	running bool
	frames  uint64

	watcher *Watcher

	openDialog DialogFunc
	dialogs    chan dialogResult
	dialogOpen bool

	screenshotPending bool
}

// New creates the viewer on an existing host and device. It starts in
// demo mode.
func New(cfg *config.Config, host Host, dev gpu.Device, openDialog DialogFunc) (*App, error) {
	width, height := host.Size()

	cam := camera.NewDefault()
	cam.SetPerspective(mgl32.DegToRad(cfg.Camera.FOVDegrees), aspect(width, height), cfg.Camera.Near, cfg.Camera.Far)

	rend, err := renderer.New(dev, renderer.Config{
		Width:      width,
		Height:     height,
		Wireframe:  cfg.Render.Wireframe,
		ClearColor: mgl32.Vec4(cfg.Render.ClearColor),
	})
	if err != nil {
		return nil, fmt.Errorf("creating renderer: %w", err)
	}
	rend.SetCamera(cam)

	return &App{
		cfg:        cfg,
		host:       host,
		dev:        dev,
		log:        log(),
		camera:     cam,
		renderer:   rend,
		pool:       scene.NewResourcePool(dev),
		shots:      debug.NewScreenshotCapture(cfg.Viewer.ScreenshotDir, "gltfviewer", cfg.Viewer.ScreenshotFormat),
		running:    true,
		openDialog: openDialog,
		dialogs:    make(chan dialogResult, 1),
	}, nil
}

func aspect(width, height int) float32 {
	if width <= 0 || height <= 0 {
		return camera.DefaultAspectRatio
	}
	return float32(width) / float32(height)
}

// Open loads the startup model. An empty path, or one that fails to
// load, leaves the viewer in demo mode.
func (a *App) Open(path string) {
	if path == "" {
		a.log.Info("no model given, running demo")
		return
	}
	if err := a.LoadScene(path); err != nil {
		a.log.Error("cannot load model, running demo", zap.Error(err))
	}
}

// LoadScene checks, parses, validates and uploads the model at path and
// makes it the displayed scene. On any failure the previous scene (or
// the demo) stays on screen and the error is returned.
func (a *App) LoadScene(path string) error {
	abs, err := CheckPath(path)
	if err != nil {
		return err
	}

	doc, warnings, err := asset.Load(abs)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		a.log.Warn("model warning", zap.String("path", abs), zap.String("warning", w))
	}
	doc.LogSummary(a.log)
	doc.LogStructure(a.log)

	s, err := scene.Build(doc, a.pool)
	if err != nil {
		return fmt.Errorf("%s: %w", abs, err)
	}

	a.scene = s
	a.doc = doc
	a.path = abs
	a.renderer.SetScene(s)

	if a.cfg.Camera.FitOnLoad {
		a.fitCamera()
	}
	if a.cfg.Viewer.WatchFile {
		a.watch(abs)
	}
	a.host.SetTitle(fmt.Sprintf("%s - %s", filepath.Base(abs), a.cfg.Window.Title))

	a.log.Info("model loaded",
		zap.String("path", abs),
		zap.Int("drawItems", len(s.Items)),
		zap.Int("vertices", s.Vertices()),
	)
	return nil
}

// Reload loads the current file again.
func (a *App) Reload() error {
	if a.path == "" {
		return nil
	}
	return a.LoadScene(a.path)
}

func (a *App) watch(path string) {
	if a.watcher != nil && a.watcher.Path() == path {
		return
	}
	if a.watcher != nil {
		a.watcher.Close()
		a.watcher = nil
	}
	w, err := NewWatcher(path, DefaultDebounce)
	if err != nil {
		a.log.Warn("hot reload unavailable", zap.Error(err))
		return
	}
	a.watcher = w
}

func (a *App) fitCamera() {
	if a.scene == nil {
		return
	}
	b := a.scene.Bounds
	if !a.camera.FitToBoundingBox(b.Min, b.Max, a.cfg.Camera.FitPadding) {
		a.log.Warn("scene has no extent, using default view")
	}
	a.log.Debug("camera fitted", a.camera.Describe()...)
}

// HandleEvent applies one input event.
func (a *App) HandleEvent(e input.Event) {
	a.keys.Apply(e)

	switch e.Type {
	case input.EventQuit:
		a.running = false

	case input.EventFocusLost:
		a.keys.Reset()

	case input.EventWindowResize:
		a.camera.SetAspectRatio(aspect(e.Width, e.Height))
		a.renderer.Resize(e.Width, e.Height)

	case input.EventKeyDown:
		if !e.Repeat {
			a.handleKey(e.Key)
		}

	case input.EventMouseMove:
		if a.keys.ButtonDown(input.ButtonLeft) {
			s := a.cfg.Camera.MouseSensitivity
			a.camera.AddYaw(-float32(e.DeltaX) * s)
			a.camera.AddPitch(-float32(e.DeltaY) * s)
		}

	case input.EventDropFile:
		if err := a.LoadScene(e.Path); err != nil {
			a.log.Error("cannot load dropped file", zap.Error(err))
		}
	}
}

func (a *App) handleKey(k input.Key) {
	switch k {
	case input.KeyEscape:
		a.running = false
	case input.KeyF:
		a.fitCamera()
	case input.KeyTab:
		a.log.Info("wireframe", zap.Bool("on", a.renderer.ToggleWireframe()))
	case input.KeyB:
		a.log.Info("bounds overlay", zap.Bool("on", a.renderer.ToggleBounds()))
	case input.KeyP:
		a.camera.ToggleProjection()
		a.log.Info("projection", zap.Stringer("mode", a.camera.Projection()))
	case input.KeyO:
		a.startDialog()
	case input.KeyR:
		if err := a.Reload(); err != nil {
			a.log.Error("reload failed", zap.Error(err))
		}
	case input.KeyF12:
		a.screenshotPending = true
	}
}

func (a *App) startDialog() {
	if a.openDialog == nil || a.dialogOpen {
		return
	}
	a.dialogOpen = true

	dir := ""
	if a.path != "" {
		dir = filepath.Dir(a.path)
	}
	open := a.openDialog
	go func() {
		path, err := open(dir)
		a.dialogs <- dialogResult{path: path, err: err}
	}()
}

// applyMovement moves the camera for every held movement key.
func (a *App) applyMovement() {
	speed := a.cfg.Camera.MoveSpeed
	if a.keys.Down(input.KeyW) {
		a.camera.MoveForward(speed)
	}
	if a.keys.Down(input.KeyS) {
		a.camera.MoveBackward(speed)
	}
	if a.keys.Down(input.KeyA) {
		a.camera.MoveLeft(speed)
	}
	if a.keys.Down(input.KeyD) {
		a.camera.MoveRight(speed)
	}
	if a.keys.Down(input.KeyQ) {
		a.camera.MoveUp(speed)
	}
	if a.keys.Down(input.KeyE) {
		a.camera.MoveDown(speed)
	}
}

// drainRequests handles file dialog results and hot reloads. Loading
// happens here, on the render thread.
func (a *App) drainRequests() {
	select {
	case res := <-a.dialogs:
		a.dialogOpen = false
		switch {
		case res.err != nil:
			a.log.Error("file dialog failed", zap.Error(res.err))
		case res.path != "":
			if err := a.LoadScene(res.path); err != nil {
				a.log.Error("cannot load selected file", zap.Error(err))
			}
		}
	default:
	}

	if a.watcher == nil {
		return
	}
	select {
	case path := <-a.watcher.Reloads():
		a.log.Info("model changed on disk, reloading")
		if err := a.LoadScene(path); err != nil {
			a.log.Error("hot reload failed, keeping previous scene", zap.Error(err))
		}
	default:
	}
}

// Frame runs one loop iteration. It returns false once the viewer
// should exit.
func (a *App) Frame() bool {
	a.events = a.host.PollEvents(a.events[:0])
	for _, e := range a.events {
		a.HandleEvent(e)
	}
	if !a.running {
		return false
	}

	a.applyMovement()
	a.drainRequests()

	stats := a.renderer.Render()
	if a.screenshotPending {
		a.screenshotPending = false
		a.screenshot()
	}
	a.host.SwapBuffers()

	a.frames++
	if a.frames%statsInterval == 0 {
		a.log.Debug("frame stats",
			zap.Uint64("frame", a.frames),
			zap.Int("drawCalls", stats.DrawCalls),
			zap.Int("vertices", stats.Vertices),
		)
	}

	if !a.host.VSync() {
		a.host.Delay(1)
	}
	return true
}

func (a *App) screenshot() {
	width, height := a.renderer.Size()
	path, err := a.shots.Capture(a.dev, width, height)
	if err != nil {
		a.log.Error("screenshot failed", zap.Error(err))
		return
	}
	a.log.Info("screenshot saved", zap.String("path", path))
}

// Run loops until the user quits.
func (a *App) Run() {
	for a.Frame() {
	}
}

// Close releases device resources and stops the watcher.
func (a *App) Close() {
	if a.watcher != nil {
		a.watcher.Close()
		a.watcher = nil
	}
	a.renderer.SetScene(nil)
	a.pool.Release()
	a.renderer.Close()
}

// Camera returns the viewer camera.
func (a *App) Camera() *camera.Camera { return a.camera }

// Renderer returns the frame renderer.
func (a *App) Renderer() *renderer.Renderer { return a.renderer }

// Scene returns the displayed scene, nil in demo mode.
func (a *App) Scene() *scene.Scene { return a.scene }

// Document returns the loaded document, nil in demo mode.
func (a *App) Document() *asset.Document { return a.doc }

// Path returns the loaded file, "" in demo mode.
func (a *App) Path() string { return a.path }

// Running reports whether the loop should continue.
func (a *App) Running() bool { return a.running }
