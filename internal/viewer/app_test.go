package viewer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/gltfviewer/internal/asset"
	"github.com/Faultbox/gltfviewer/internal/asset/assettest"
	"github.com/Faultbox/gltfviewer/internal/config"
	"github.com/Faultbox/gltfviewer/internal/engine/camera"
	"github.com/Faultbox/gltfviewer/internal/engine/gpu/gputest"
	"github.com/Faultbox/gltfviewer/internal/engine/input"
)

type fakeHost struct {
	queued []input.Event
	width  int
	height int
	title  string
	swaps  int
	delays int
}

func (h *fakeHost) PollEvents(dst []input.Event) []input.Event {
	dst = append(dst, h.queued...)
	h.queued = nil
	return dst
}

func (h *fakeHost) SwapBuffers()          { h.swaps++ }
func (h *fakeHost) Size() (int, int)      { return h.width, h.height }
func (h *fakeHost) SetTitle(title string) { h.title = title }
func (h *fakeHost) VSync() bool           { return false }
func (h *fakeHost) Delay(uint32)          { h.delays++ }

func (h *fakeHost) push(events ...input.Event) {
	h.queued = append(h.queued, events...)
}

func keyDown(k input.Key) input.Event { return input.Event{Type: input.EventKeyDown, Key: k} }
func keyUp(k input.Key) input.Event   { return input.Event{Type: input.EventKeyUp, Key: k} }

func newApp(t *testing.T, mutate func(*config.Config)) (*App, *fakeHost, *gputest.Recorder) {
	t.Helper()
	cfg := config.Default()
	cfg.Viewer.ScreenshotDir = t.TempDir()
	if mutate != nil {
		mutate(cfg)
	}

	host := &fakeHost{width: 800, height: 600}
	dev := gputest.New()
	app, err := New(cfg, host, dev, nil)
	require.NoError(t, err)
	t.Cleanup(app.Close)
	return app, host, dev
}

func TestDemoFrame(t *testing.T) {
	app, host, dev := newApp(t, nil)
	app.Open("")

	assert.Nil(t, app.Scene())
	assert.True(t, app.Renderer().DemoMode())

	dev.ResetCalls()
	assert.True(t, app.Frame())
	assert.Equal(t, 1, host.swaps)
	assert.Equal(t, 1, host.delays)

	draws := dev.Draws()
	require.Len(t, draws, 1)
	assert.Equal(t, int32(3), draws[0].Count)
}

func TestCameraFromConfig(t *testing.T) {
	app, _, _ := newApp(t, func(c *config.Config) {
		c.Camera.FOVDegrees = 60
		c.Camera.Near = 0.5
		c.Camera.Far = 50
	})

	cam := app.Camera()
	assert.InDelta(t, mgl32.DegToRad(60), cam.FOV(), 1e-6)
	assert.InDelta(t, 800.0/600.0, cam.AspectRatio(), 1e-6)
	assert.Equal(t, float32(0.5), cam.Near())
	assert.Equal(t, float32(50), cam.Far())
}

func TestLoadScene(t *testing.T) {
	app, host, dev := newApp(t, nil)
	path := assettest.WriteTriangle(t, t.TempDir())

	app.Open(path)
	require.NotNil(t, app.Scene())
	assert.Equal(t, path, app.Path())
	assert.NotNil(t, app.Document())
	assert.False(t, app.Renderer().DemoMode())
	assert.Contains(t, host.title, "triangle.gltf")

	// Fitted to the triangle instead of the default (0,0,3)
	assert.NotEqual(t, camera.DefaultPosition, app.Camera().Position())

	dev.ResetCalls()
	app.Frame()
	draws := dev.Draws()
	require.Len(t, draws, 1)
	assert.Equal(t, "DrawArrays", draws[0].Op)
}

func TestLoadBinaryScene(t *testing.T) {
	app, _, _ := newApp(t, nil)
	path := filepath.Join(t.TempDir(), "triangle.glb")
	require.NoError(t, os.WriteFile(path, assettest.TriangleGLB(), 0644))

	require.NoError(t, app.LoadScene(path))
	assert.Equal(t, 3, app.Scene().Vertices())
}

func TestBadStartupFileRunsDemo(t *testing.T) {
	app, _, _ := newApp(t, nil)
	dir := t.TempDir()

	app.Open(filepath.Join(dir, "missing.gltf"))
	assert.Nil(t, app.Scene())
	assert.True(t, app.Renderer().DemoMode())

	bad := assettest.WriteFile(t, dir, "bad.gltf", "{ not json")
	app.Open(bad)
	assert.Nil(t, app.Scene())
	assert.True(t, app.Renderer().DemoMode())
}

func TestFailedLoadKeepsPreviousScene(t *testing.T) {
	app, _, dev := newApp(t, nil)
	dir := t.TempDir()
	good := assettest.WriteTriangle(t, dir)
	require.NoError(t, app.LoadScene(good))
	before := app.Scene()
	live := dev.Live()

	// Parses, but the accessor points past its buffer view
	broken := assettest.WriteFile(t, dir, "broken.gltf",
		`{"asset":{"version":"2.0"},"scenes":[{"nodes":[0]}],"nodes":[{"mesh":0}],`+
			`"meshes":[{"primitives":[{"attributes":{"POSITION":0}}]}],`+
			`"accessors":[{"bufferView":3,"componentType":5126,"count":3,"type":"VEC3"}],`+
			`"bufferViews":[],"buffers":[]}`)
	err := app.LoadScene(broken)
	require.Error(t, err)

	assert.Same(t, before, app.Scene())
	assert.Equal(t, good, app.Path())
	assert.Equal(t, live, dev.Live())
	assert.False(t, app.Renderer().DemoMode())
}

func TestFailedLoadReportsValidation(t *testing.T) {
	app, _, _ := newApp(t, nil)
	path := assettest.WriteFile(t, t.TempDir(), "noscene.gltf",
		`{"asset":{"version":"2.0"},"meshes":[],"accessors":[]}`)
	err := app.LoadScene(path)
	assert.ErrorIs(t, err, asset.ErrInvalidDocument)
}

func TestMovementKeys(t *testing.T) {
	app, host, _ := newApp(t, func(c *config.Config) { c.Camera.MoveSpeed = 0.5 })
	cam := app.Camera()
	start := cam.Position()
	forward := cam.Forward()

	host.push(keyDown(input.KeyW))
	app.Frame()
	app.Frame()
	host.push(keyUp(input.KeyW))
	app.Frame()

	moved := cam.Position().Sub(start)
	assert.True(t, moved.ApproxEqualThreshold(forward.Mul(1.0), 1e-5), "two frames of W: %v", moved)

	start = cam.Position()
	host.push(keyDown(input.KeyQ), keyDown(input.KeyE))
	app.Frame()
	assert.True(t, cam.Position().ApproxEqualThreshold(start, 1e-5), "Q and E cancel")
}

func TestFocusLossReleasesKeys(t *testing.T) {
	app, host, _ := newApp(t, nil)
	cam := app.Camera()

	host.push(keyDown(input.KeyW), input.Event{Type: input.EventMouseDown, Button: input.ButtonLeft})
	app.Frame()
	host.push(input.Event{Type: input.EventFocusLost})
	app.Frame()

	start, yaw := cam.Position(), cam.Yaw()
	host.push(input.Event{Type: input.EventMouseMove, DeltaX: 30})
	app.Frame()
	app.Frame()
	assert.Equal(t, start, cam.Position(), "W is no longer held")
	assert.Equal(t, yaw, cam.Yaw(), "the drag ended with the focus")
}

func TestMouseDragRotates(t *testing.T) {
	app, host, _ := newApp(t, nil)
	cam := app.Camera()
	yaw, pitch := cam.Yaw(), cam.Pitch()

	// Motion without a button does nothing
	host.push(input.Event{Type: input.EventMouseMove, DeltaX: 50, DeltaY: 50})
	app.Frame()
	assert.Equal(t, yaw, cam.Yaw())

	host.push(
		input.Event{Type: input.EventMouseDown, Button: input.ButtonLeft},
		input.Event{Type: input.EventMouseMove, DeltaX: 10, DeltaY: -4},
		input.Event{Type: input.EventMouseUp, Button: input.ButtonLeft},
	)
	app.Frame()

	s := config.Default().Camera.MouseSensitivity
	assert.InDelta(t, yaw-10*s, cam.Yaw(), 1e-6)
	assert.InDelta(t, pitch+4*s, cam.Pitch(), 1e-6)
}

func TestToggles(t *testing.T) {
	app, host, _ := newApp(t, nil)
	wire := app.Renderer().Wireframe()

	host.push(keyDown(input.KeyTab), keyDown(input.KeyP))
	app.Frame()
	assert.Equal(t, !wire, app.Renderer().Wireframe())
	assert.Equal(t, camera.Orthographic, app.Camera().Projection())

	// Auto-repeat does not toggle again
	host.push(input.Event{Type: input.EventKeyDown, Key: input.KeyTab, Repeat: true})
	app.Frame()
	assert.Equal(t, !wire, app.Renderer().Wireframe())
}

func TestResize(t *testing.T) {
	app, host, dev := newApp(t, nil)

	host.push(input.Event{Type: input.EventWindowResize, Width: 1000, Height: 500})
	app.Frame()

	assert.InDelta(t, 2.0, app.Camera().AspectRatio(), 1e-6)
	assert.Equal(t, int32(1000), dev.Width)
	assert.Equal(t, int32(500), dev.Height)
}

func TestQuit(t *testing.T) {
	app, host, _ := newApp(t, nil)
	host.push(keyDown(input.KeyEscape))
	assert.False(t, app.Frame())
	assert.False(t, app.Running())

	app2, host2, _ := newApp(t, nil)
	host2.push(input.Event{Type: input.EventQuit})
	app2.Run()
	assert.Zero(t, host2.swaps)
}

func TestDropFile(t *testing.T) {
	app, host, _ := newApp(t, nil)
	path := assettest.WriteTriangle(t, t.TempDir())

	host.push(input.Event{Type: input.EventDropFile, Path: path})
	app.Frame()
	assert.NotNil(t, app.Scene())
}

func TestReloadKey(t *testing.T) {
	app, host, _ := newApp(t, nil)
	path := assettest.WriteTriangle(t, t.TempDir())
	require.NoError(t, app.LoadScene(path))
	first := app.Scene()

	host.push(keyDown(input.KeyR))
	app.Frame()
	assert.NotSame(t, first, app.Scene())
	assert.Equal(t, path, app.Path())
}

func TestScreenshotKey(t *testing.T) {
	dir := t.TempDir()
	app, host, _ := newApp(t, func(c *config.Config) { c.Viewer.ScreenshotDir = dir })

	host.push(keyDown(input.KeyF12))
	app.Frame()

	files, err := filepath.Glob(filepath.Join(dir, "gltfviewer_*.png"))
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestOpenDialog(t *testing.T) {
	path := assettest.WriteTriangle(t, t.TempDir())

	cfg := config.Default()
	host := &fakeHost{width: 640, height: 480}
	calls := 0
	app, err := New(cfg, host, gputest.New(), func(string) (string, error) {
		calls++
		return path, nil
	})
	require.NoError(t, err)
	defer app.Close()

	host.push(keyDown(input.KeyO))
	for i := 0; i < 200 && app.Scene() == nil; i++ {
		app.Frame()
		time.Sleep(5 * time.Millisecond)
	}
	require.NotNil(t, app.Scene())
	assert.Equal(t, 1, calls)
	assert.False(t, app.dialogOpen)
}

func TestOpenDialogCancelAndError(t *testing.T) {
	results := make(chan error, 2)
	results <- nil
	results <- errors.New("no display")

	cfg := config.Default()
	host := &fakeHost{width: 640, height: 480}
	app, err := New(cfg, host, gputest.New(), func(string) (string, error) {
		return "", <-results
	})
	require.NoError(t, err)
	defer app.Close()

	for round := 0; round < 2; round++ {
		host.push(keyDown(input.KeyO))
		app.Frame()
		for i := 0; i < 200 && app.dialogOpen; i++ {
			time.Sleep(5 * time.Millisecond)
			app.Frame()
		}
		assert.False(t, app.dialogOpen)
		assert.Nil(t, app.Scene())
	}
}

func TestHotReload(t *testing.T) {
	app, _, _ := newApp(t, func(c *config.Config) { c.Viewer.WatchFile = true })
	path := assettest.WriteTriangle(t, t.TempDir())
	require.NoError(t, app.LoadScene(path))
	require.NotNil(t, app.watcher)
	first := app.Scene()

	require.NoError(t, os.WriteFile(path, []byte(assettest.TriangleJSON()), 0644))

	deadline := time.Now().Add(5 * time.Second)
	for app.Scene() == first && time.Now().Before(deadline) {
		app.Frame()
		time.Sleep(10 * time.Millisecond)
	}
	assert.NotSame(t, first, app.Scene())
}
