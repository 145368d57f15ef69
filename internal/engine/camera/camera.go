// Package camera provides the first-person viewer camera.
//
// The camera is a yaw/pitch state machine. Orientation is stored as two
// angles and the forward/right/up basis is always rebuilt from them; the
// view and projection matrices are cached behind dirty flags.
//
// The basis is right-handed in world space: right = forward × worldUp and
// up = right × forward, so right × up equals -forward. That is the +Z
// axis of GL view space, which points back at the viewer.
package camera

import (
	"errors"
	"fmt"
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Projection selects how the camera projects the scene.
type Projection int

const (
	Perspective Projection = iota
	Orthographic
)

// String returns the projection name.
func (p Projection) String() string {
	switch p {
	case Perspective:
		return "perspective"
	case Orthographic:
		return "orthographic"
	default:
		return fmt.Sprintf("Unknown(%d)", int(p))
	}
}

// Defaults used by NewDefault and FitToBounds.
const (
	DefaultFOV         = gomath.Pi / 4 // 45 degrees
	DefaultAspectRatio = 16.0 / 9.0
	DefaultNear        = 0.1
	DefaultFar         = 100.0
	DefaultFitPadding  = 1.2
)

// MaxPitch is the pitch limit in radians (89 degrees).
const MaxPitch = 89 * gomath.Pi / 180

// DefaultPosition and DefaultTarget place the camera when nothing better is known.
var (
	DefaultPosition = mgl32.Vec3{0, 0, 3}
	DefaultTarget   = mgl32.Vec3{0, 0, 0}
)

// ErrDegenerateDirection is returned when a look direction has no length
// or is not finite. The previous orientation is kept.
var ErrDegenerateDirection = errors.New("camera: degenerate look direction")

// Camera holds position, orientation and projection state.
type Camera struct {
	position mgl32.Vec3
	worldUp  mgl32.Vec3
	yaw      float32 // radians, 0 looks down +X
	pitch    float32 // radians, clamped to ±MaxPitch

	// Derived from yaw/pitch, never set directly
	forward mgl32.Vec3
	right   mgl32.Vec3
	up      mgl32.Vec3

	projection Projection
	fov        float32 // vertical, radians
	aspect     float32
	near, far  float32

	orthoLeft, orthoRight float32
	orthoBottom, orthoTop float32

	// Distance to the last target, used when switching projection
	focus float32

	view      mgl32.Mat4
	proj      mgl32.Mat4
	viewDirty bool
	projDirty bool
}

// NewDefault creates a camera at (0,0,3) looking at the origin with a 45°
// perspective projection.
func NewDefault() *Camera {
	return New(DefaultPosition, DefaultTarget, mgl32.Vec3{0, 1, 0})
}

// New creates a perspective camera at position looking at target.
// A zero or non-finite up vector falls back to +Y. If target equals
// position the camera looks down -Z.
func New(position, target, up mgl32.Vec3) *Camera {
	if !finite(up) || up.Len() < 1e-6 {
		up = mgl32.Vec3{0, 1, 0}
	}
	c := &Camera{
		position:    position,
		worldUp:     up.Normalize(),
		yaw:         -gomath.Pi / 2,
		projection:  Perspective,
		fov:         DefaultFOV,
		aspect:      DefaultAspectRatio,
		near:        DefaultNear,
		far:         DefaultFar,
		orthoLeft:   -1,
		orthoRight:  1,
		orthoBottom: -1,
		orthoTop:    1,
		focus:       DefaultPosition.Len(),
		right:       mgl32.Vec3{1, 0, 0},
		viewDirty:   true,
		projDirty:   true,
	}
	c.updateBasis()
	_ = c.SetTarget(target)
	c.refreshView()
	c.refreshProjection()
	return c
}

// ClampPitch limits p to ±89° in radians. It is idempotent.
func ClampPitch(p float32) float32 {
	if p > MaxPitch {
		return MaxPitch
	}
	if p < -MaxPitch {
		return -MaxPitch
	}
	return p
}

// SetPosition moves the camera without changing its orientation.
func (c *Camera) SetPosition(pos mgl32.Vec3) {
	c.position = pos
	c.viewDirty = true
}

// SetTarget turns the camera to face target. It inverts the basis
// formula so Forward afterwards points at target (within the pitch clamp).
func (c *Camera) SetTarget(target mgl32.Vec3) error {
	dir := target.Sub(c.position)
	length := dir.Len()
	if !finite(dir) || length < 1e-6 {
		return ErrDegenerateDirection
	}
	dir = dir.Mul(1 / length)

	horizontal := float32(gomath.Hypot(float64(dir.X()), float64(dir.Z())))
	if horizontal > 1e-6 {
		c.yaw = float32(gomath.Atan2(float64(dir.Z()), float64(dir.X())))
	}
	c.pitch = ClampPitch(float32(gomath.Atan2(float64(dir.Y()), float64(horizontal))))
	c.focus = length

	c.updateBasis()
	c.viewDirty = true
	return nil
}

// MoveForward moves along the forward vector. Negative distances move back.
func (c *Camera) MoveForward(distance float32) {
	c.translate(c.forward.Mul(distance))
}

// MoveBackward moves against the forward vector.
func (c *Camera) MoveBackward(distance float32) {
	c.translate(c.forward.Mul(-distance))
}

// MoveRight moves along the right vector.
func (c *Camera) MoveRight(distance float32) {
	c.translate(c.right.Mul(distance))
}

// MoveLeft moves against the right vector.
func (c *Camera) MoveLeft(distance float32) {
	c.translate(c.right.Mul(-distance))
}

// MoveUp moves along the camera's up vector.
func (c *Camera) MoveUp(distance float32) {
	c.translate(c.up.Mul(distance))
}

// MoveDown moves against the camera's up vector.
func (c *Camera) MoveDown(distance float32) {
	c.translate(c.up.Mul(-distance))
}

func (c *Camera) translate(delta mgl32.Vec3) {
	c.position = c.position.Add(delta)
	c.viewDirty = true
	c.refreshView()
}

// SetYaw sets the yaw angle in radians.
func (c *Camera) SetYaw(yaw float32) {
	c.SetYawPitch(yaw, c.pitch)
}

// SetPitch sets the pitch angle in radians, clamped to ±89°.
func (c *Camera) SetPitch(pitch float32) {
	c.SetYawPitch(c.yaw, pitch)
}

// SetYawPitch sets both angles at once.
func (c *Camera) SetYawPitch(yaw, pitch float32) {
	c.yaw = yaw
	c.pitch = ClampPitch(pitch)
	c.updateBasis()
	c.viewDirty = true
}

// AddYaw rotates horizontally by delta radians.
func (c *Camera) AddYaw(delta float32) {
	c.SetYawPitch(c.yaw+delta, c.pitch)
}

// AddPitch rotates vertically by delta radians.
func (c *Camera) AddPitch(delta float32) {
	c.SetYawPitch(c.yaw, c.pitch+delta)
}

// updateBasis rebuilds forward/right/up from yaw and pitch.
func (c *Camera) updateBasis() {
	cy, sy := gomath.Cos(float64(c.yaw)), gomath.Sin(float64(c.yaw))
	cp, sp := gomath.Cos(float64(c.pitch)), gomath.Sin(float64(c.pitch))

	c.forward = mgl32.Vec3{float32(cy * cp), float32(sp), float32(sy * cp)}.Normalize()

	right := c.forward.Cross(c.worldUp)
	if right.Len() > 1e-6 {
		c.right = right.Normalize()
	}
	c.up = c.right.Cross(c.forward).Normalize()
}

// SetPerspective switches to perspective projection. fov is vertical, in radians.
func (c *Camera) SetPerspective(fov, aspect, near, far float32) {
	c.projection = Perspective
	c.fov = fov
	c.aspect = aspect
	c.near = near
	c.far = far
	c.projDirty = true
	c.refreshProjection()
}

// SetOrthographic switches to a box projection. The matrix is rebuilt on
// the next read.
func (c *Camera) SetOrthographic(left, right, bottom, top, near, far float32) {
	c.projection = Orthographic
	c.orthoLeft = left
	c.orthoRight = right
	c.orthoBottom = bottom
	c.orthoTop = top
	c.near = near
	c.far = far
	c.projDirty = true
}

// SetAspectRatio updates the perspective aspect. It does nothing in
// orthographic mode or for a non-positive aspect.
func (c *Camera) SetAspectRatio(aspect float32) {
	if c.projection != Perspective || !(aspect > 0) || gomath.IsInf(float64(aspect), 0) {
		return
	}
	c.aspect = aspect
	c.projDirty = true
	c.refreshProjection()
}

// ToggleProjection switches between perspective and an orthographic box
// that frames the current focus distance at the same apparent size.
func (c *Camera) ToggleProjection() {
	if c.projection == Orthographic {
		c.SetPerspective(c.fov, c.aspect, c.near, c.far)
		return
	}
	halfH := c.focus * float32(gomath.Tan(float64(c.fov)/2))
	halfW := halfH * c.aspect
	c.SetOrthographic(-halfW, halfW, -halfH, halfH, c.near, c.far)
}

// refreshView rebuilds the view matrix if stale and returns it.
func (c *Camera) refreshView() mgl32.Mat4 {
	if c.viewDirty {
		c.view = mgl32.LookAtV(c.position, c.position.Add(c.forward), c.up)
		c.viewDirty = false
	}
	return c.view
}

// refreshProjection rebuilds the projection matrix if stale and returns it.
func (c *Camera) refreshProjection() mgl32.Mat4 {
	if c.projDirty {
		switch c.projection {
		case Orthographic:
			c.proj = mgl32.Ortho(c.orthoLeft, c.orthoRight, c.orthoBottom, c.orthoTop, c.near, c.far)
		default:
			c.proj = mgl32.Perspective(c.fov, c.aspect, c.near, c.far)
		}
		c.projDirty = false
	}
	return c.proj
}

// ViewMatrix returns the world-to-view transform.
func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return c.refreshView()
}

// ProjectionMatrix returns the view-to-clip transform.
func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	return c.refreshProjection()
}

// ViewProjectionMatrix returns projection × view. The product is not
// cached; callers reusing it within a frame should keep their own copy.
func (c *Camera) ViewProjectionMatrix() mgl32.Mat4 {
	return c.refreshProjection().Mul4(c.refreshView())
}

// FitToBounds frames the box with the default padding.
func (c *Camera) FitToBounds(lo, hi mgl32.Vec3) bool {
	return c.FitToBoundingBox(lo, hi, DefaultFitPadding)
}

// FitToBoundingBox places the camera on the (1,1,1) diagonal of the box
// center, far enough to see the whole box, and adjusts the clip planes.
// A box with no extent resets the camera to DefaultPosition looking at
// DefaultTarget and returns false.
func (c *Camera) FitToBoundingBox(lo, hi mgl32.Vec3, padding float32) bool {
	if !(padding > 0) {
		padding = DefaultFitPadding
	}

	center := lo.Add(hi).Mul(0.5)
	size := hi.Sub(lo)
	extent := max(size.X(), size.Y(), size.Z())

	if !(extent > 0) || !finite(center) || gomath.IsInf(float64(extent), 0) {
		c.position = DefaultPosition
		_ = c.SetTarget(DefaultTarget)
		c.viewDirty = true
		return false
	}

	padded := extent * padding
	var distance float32
	if c.projection == Perspective {
		distance = padded / (2 * float32(gomath.Tan(float64(c.fov)/2)))
		if distance < extent/2 {
			distance = extent / 2
		}
	} else {
		distance = padded
	}

	diagonal := mgl32.Vec3{1, 1, 1}.Normalize()
	c.position = center.Add(diagonal.Mul(distance))
	_ = c.SetTarget(center)

	near := max(0.01, distance-padded)
	far := distance + padded*2
	if c.projection == Perspective {
		c.SetPerspective(c.fov, c.aspect, near, far)
	} else {
		c.SetOrthographic(-padded, padded, -padded, padded, near, far)
	}
	c.refreshView()
	return true
}

// Position returns the camera position.
func (c *Camera) Position() mgl32.Vec3 { return c.position }

// Forward returns the unit look direction.
func (c *Camera) Forward() mgl32.Vec3 { return c.forward }

// Right returns the unit right vector.
func (c *Camera) Right() mgl32.Vec3 { return c.right }

// Up returns the camera's unit up vector.
func (c *Camera) Up() mgl32.Vec3 { return c.up }

// WorldUp returns the fixed reference up vector.
func (c *Camera) WorldUp() mgl32.Vec3 { return c.worldUp }

// Target returns the point one focus distance in front of the camera.
func (c *Camera) Target() mgl32.Vec3 { return c.position.Add(c.forward.Mul(c.focus)) }

// Yaw returns the yaw angle in radians.
func (c *Camera) Yaw() float32 { return c.yaw }

// Pitch returns the pitch angle in radians.
func (c *Camera) Pitch() float32 { return c.pitch }

// Projection returns the active projection mode.
func (c *Camera) Projection() Projection { return c.projection }

// FOV returns the vertical field of view in radians.
func (c *Camera) FOV() float32 { return c.fov }

// AspectRatio returns the perspective aspect ratio.
func (c *Camera) AspectRatio() float32 { return c.aspect }

// Near returns the near clip distance.
func (c *Camera) Near() float32 { return c.near }

// Far returns the far clip distance.
func (c *Camera) Far() float32 { return c.far }

// OrthoBounds returns left, right, bottom, top of the orthographic box.
func (c *Camera) OrthoBounds() (left, right, bottom, top float32) {
	return c.orthoLeft, c.orthoRight, c.orthoBottom, c.orthoTop
}

// Describe returns the camera state as log fields.
func (c *Camera) Describe() []zap.Field {
	view := c.ViewMatrix()
	proj := c.ProjectionMatrix()
	return []zap.Field{
		zap.Float32s("position", c.position[:]),
		zap.Float32s("forward", c.forward[:]),
		zap.Float32s("right", c.right[:]),
		zap.Float32s("up", c.up[:]),
		zap.Float32("yawDeg", mgl32.RadToDeg(c.yaw)),
		zap.Float32("pitchDeg", mgl32.RadToDeg(c.pitch)),
		zap.Stringer("projection", c.projection),
		zap.Float32("fovDeg", mgl32.RadToDeg(c.fov)),
		zap.Float32("aspect", c.aspect),
		zap.Float32("near", c.near),
		zap.Float32("far", c.far),
		zap.Bool("matricesFinite", finiteMat(view) && finiteMat(proj)),
	}
}

func finite(v mgl32.Vec3) bool {
	for _, x := range v {
		if gomath.IsNaN(float64(x)) || gomath.IsInf(float64(x), 0) {
			return false
		}
	}
	return true
}

func finiteMat(m mgl32.Mat4) bool {
	for _, x := range m {
		if gomath.IsNaN(float64(x)) || gomath.IsInf(float64(x), 0) {
			return false
		}
	}
	return true
}
