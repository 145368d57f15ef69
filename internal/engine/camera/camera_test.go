package camera

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-4

func assertVec(t *testing.T, want, got mgl32.Vec3, msg string) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], eps, "%s: component %d of %v", msg, i, got)
	}
}

func TestNewDefault(t *testing.T) {
	c := NewDefault()

	assertVec(t, mgl32.Vec3{0, 0, 3}, c.Position(), "position")
	assertVec(t, mgl32.Vec3{0, 0, -1}, c.Forward(), "forward")
	assertVec(t, mgl32.Vec3{1, 0, 0}, c.Right(), "right")
	assertVec(t, mgl32.Vec3{0, 1, 0}, c.Up(), "up")
	assertVec(t, mgl32.Vec3{0, 0, 0}, c.Target(), "target")
	assert.Equal(t, Perspective, c.Projection())
	assert.InDelta(t, gomath.Pi/4, c.FOV(), eps)
	assert.InDelta(t, 16.0/9.0, c.AspectRatio(), eps)
	assert.InDelta(t, 0.1, c.Near(), eps)
	assert.InDelta(t, 100, c.Far(), eps)

	// Origin sits straight ahead at -3 in view space
	p := c.ViewMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, -3, p.Z(), eps)
}

func checkBasis(t *testing.T, c *Camera) {
	t.Helper()
	f, r, u := c.Forward(), c.Right(), c.Up()
	assert.InDelta(t, 1, f.Len(), eps, "forward length")
	assert.InDelta(t, 1, r.Len(), eps, "right length")
	assert.InDelta(t, 1, u.Len(), eps, "up length")
	assert.InDelta(t, 0, f.Dot(r), eps, "forward·right")
	assert.InDelta(t, 0, f.Dot(u), eps, "forward·up")
	assert.InDelta(t, 0, r.Dot(u), eps, "right·up")
	// right × up points back at the viewer, as in GL view space
	assert.InDelta(t, -1, r.Cross(u).Dot(f), eps, "handedness")
}

func TestBasisOrthonormal(t *testing.T) {
	c := NewDefault()
	for yawDeg := float32(-360); yawDeg <= 360; yawDeg += 15 {
		for pitchDeg := float32(-89); pitchDeg <= 89; pitchDeg += 8.9 {
			c.SetYawPitch(mgl32.DegToRad(yawDeg), mgl32.DegToRad(pitchDeg))
			checkBasis(t, c)
			if t.Failed() {
				t.Fatalf("basis broke at yaw=%v pitch=%v", yawDeg, pitchDeg)
			}
		}
	}
}

func TestBasisWithTiltedWorldUp(t *testing.T) {
	c := New(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{}, mgl32.Vec3{0.1, 1, 0})
	for yawDeg := float32(0); yawDeg < 360; yawDeg += 30 {
		c.SetYawPitch(mgl32.DegToRad(yawDeg), mgl32.DegToRad(20))
		checkBasis(t, c)
	}
}

func TestClampPitch(t *testing.T) {
	limit := float32(MaxPitch)
	assert.InDelta(t, mgl32.DegToRad(89), limit, 1e-6)
	for _, in := range []float32{-10, -2, -limit, -0.5, 0, 0.5, limit, 1.56, 2, 10} {
		once := ClampPitch(in)
		assert.Equal(t, once, ClampPitch(once), "idempotent for %v", in)
		assert.LessOrEqual(t, once, limit)
		assert.GreaterOrEqual(t, once, -limit)
	}

	c := NewDefault()
	c.AddPitch(5)
	assert.Equal(t, limit, c.Pitch())
	c.SetPitch(-5)
	assert.Equal(t, -limit, c.Pitch())
}

func TestViewMatrixCached(t *testing.T) {
	c := NewDefault()
	c.AddYaw(0.3)
	c.AddPitch(-0.2)

	first := c.ViewMatrix()
	second := c.ViewMatrix()
	assert.Equal(t, first, second)
	assert.False(t, c.viewDirty)

	c.SetPosition(mgl32.Vec3{1, 2, 3})
	assert.True(t, c.viewDirty)
	assert.NotEqual(t, first, c.ViewMatrix())
	assert.False(t, c.viewDirty)
}

func TestSetTargetRoundTrip(t *testing.T) {
	pos := mgl32.Vec3{1, -2, 0.5}
	for yawDeg := float32(-180); yawDeg < 180; yawDeg += 20 {
		for pitchDeg := float32(-85); pitchDeg <= 85; pitchDeg += 17 {
			y, p := mgl32.DegToRad(yawDeg), mgl32.DegToRad(pitchDeg)
			dir := mgl32.Vec3{
				float32(gomath.Cos(float64(y)) * gomath.Cos(float64(p))),
				float32(gomath.Sin(float64(p))),
				float32(gomath.Sin(float64(y)) * gomath.Cos(float64(p))),
			}
			for _, d := range []float32{0.5, 7} {
				c := New(pos, pos.Add(dir.Mul(d)), mgl32.Vec3{0, 1, 0})
				assertVec(t, dir, c.Forward(), "forward")
				assertVec(t, pos.Add(dir.Mul(d)), c.Target(), "target")
			}
		}
	}
}

func TestSetTargetDegenerate(t *testing.T) {
	c := NewDefault()
	c.SetYawPitch(0.7, 0.2)
	before := c.Forward()

	err := c.SetTarget(c.Position())
	assert.True(t, errors.Is(err, ErrDegenerateDirection))
	assert.Equal(t, before, c.Forward())

	nan := float32(gomath.NaN())
	assert.ErrorIs(t, c.SetTarget(mgl32.Vec3{nan, 0, 0}), ErrDegenerateDirection)
	assert.Equal(t, before, c.Forward())
	checkBasis(t, c)
}

func TestSetTargetStraightUpClampsPitch(t *testing.T) {
	c := NewDefault()
	require.NoError(t, c.SetTarget(mgl32.Vec3{0, 10, 3}))
	assert.InDelta(t, mgl32.DegToRad(89), c.Pitch(), eps)
	checkBasis(t, c)
}

func TestMovement(t *testing.T) {
	tests := []struct {
		name string
		move func(*Camera, float32)
		want mgl32.Vec3
	}{
		{"forward", (*Camera).MoveForward, mgl32.Vec3{0, 0, 1}},
		{"backward", (*Camera).MoveBackward, mgl32.Vec3{0, 0, 5}},
		{"left", (*Camera).MoveLeft, mgl32.Vec3{-2, 0, 3}},
		{"right", (*Camera).MoveRight, mgl32.Vec3{2, 0, 3}},
		{"up", (*Camera).MoveUp, mgl32.Vec3{0, 2, 3}},
		{"down", (*Camera).MoveDown, mgl32.Vec3{0, -2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewDefault()
			tt.move(c, 2)
			assertVec(t, tt.want, c.Position(), "position")
			// Moves rebuild the view right away
			assert.False(t, c.viewDirty)
		})
	}
}

func TestNegativeDistanceReverses(t *testing.T) {
	a, b := NewDefault(), NewDefault()
	a.MoveForward(-1.5)
	b.MoveBackward(1.5)
	assertVec(t, b.Position(), a.Position(), "position")

	a.MoveLeft(-0.5)
	b.MoveRight(0.5)
	assertVec(t, b.Position(), a.Position(), "position")
}

func TestProjectionModes(t *testing.T) {
	c := NewDefault()

	c.SetPerspective(mgl32.DegToRad(60), 2, 0.5, 50)
	assert.False(t, c.projDirty, "perspective is rebuilt immediately")
	assert.Equal(t, mgl32.Perspective(mgl32.DegToRad(60), 2, 0.5, 50), c.ProjectionMatrix())

	c.SetOrthographic(-2, 2, -1, 1, 0.1, 10)
	assert.True(t, c.projDirty, "orthographic is rebuilt lazily")
	assert.Equal(t, mgl32.Ortho(-2, 2, -1, 1, 0.1, 10), c.ProjectionMatrix())
	assert.False(t, c.projDirty)
}

func TestSetAspectRatio(t *testing.T) {
	c := NewDefault()
	c.SetAspectRatio(4.0 / 3.0)
	assert.InDelta(t, 4.0/3.0, c.AspectRatio(), eps)

	c.SetAspectRatio(0)
	assert.InDelta(t, 4.0/3.0, c.AspectRatio(), eps)

	c.SetOrthographic(-1, 1, -1, 1, 0.1, 10)
	before := c.ProjectionMatrix()
	c.SetAspectRatio(3)
	assert.InDelta(t, 4.0/3.0, c.AspectRatio(), eps)
	assert.Equal(t, before, c.ProjectionMatrix())
}

func TestViewProjection(t *testing.T) {
	c := NewDefault()
	c.AddYaw(0.4)
	want := c.ProjectionMatrix().Mul4(c.ViewMatrix())
	assert.Equal(t, want, c.ViewProjectionMatrix())
}

func TestToggleProjection(t *testing.T) {
	c := NewDefault()
	c.ToggleProjection()
	require.Equal(t, Orthographic, c.Projection())

	l, r, b, top := c.OrthoBounds()
	halfH := 3 * float32(gomath.Tan(gomath.Pi/8))
	assert.InDelta(t, halfH, top, eps)
	assert.InDelta(t, -halfH, b, eps)
	assert.InDelta(t, halfH*16/9, r, eps)
	assert.InDelta(t, -r, l, eps)

	c.ToggleProjection()
	assert.Equal(t, Perspective, c.Projection())
	assert.InDelta(t, gomath.Pi/4, c.FOV(), eps)
}

func TestFitToUnitCube(t *testing.T) {
	c := NewDefault()
	ok := c.FitToBounds(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1})
	require.True(t, ok)

	extent := float32(2)
	distance := c.Position().Len()
	want := extent * DefaultFitPadding / (2 * float32(gomath.Tan(gomath.Pi/8)))
	assert.InDelta(t, want, distance, eps)
	assert.GreaterOrEqual(t, distance, extent/2)
	assert.Less(t, c.Near(), c.Far())

	// On the (1,1,1) diagonal, looking back at the center
	diag := mgl32.Vec3{1, 1, 1}.Normalize()
	assertVec(t, diag.Mul(distance), c.Position(), "position")
	assertVec(t, diag.Mul(-1), c.Forward(), "forward")

	assert.InDelta(t, distance-extent*DefaultFitPadding, c.Near(), eps)
	assert.InDelta(t, distance+extent*DefaultFitPadding*2, c.Far(), eps)
}

func TestFitOffCenter(t *testing.T) {
	c := NewDefault()
	require.True(t, c.FitToBoundingBox(mgl32.Vec3{10, 0, 0}, mgl32.Vec3{12, 1, 0.5}, 2))
	assertVec(t, mgl32.Vec3{11, 0.5, 0.25}, c.Target(), "target")
}

func TestFitNearFloor(t *testing.T) {
	c := NewDefault()
	// A wide FOV pushes the distance under extent/2 and near under 0.01
	c.SetPerspective(mgl32.DegToRad(170), 1, 0.1, 100)
	require.True(t, c.FitToBoundingBox(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, 1))

	assert.InDelta(t, 0.5, c.Position().Sub(mgl32.Vec3{0.5, 0.5, 0.5}).Len(), eps)
	assert.InDelta(t, 0.01, c.Near(), eps)
}

func TestFitOrthographic(t *testing.T) {
	c := NewDefault()
	c.SetOrthographic(-1, 1, -1, 1, 0.1, 10)
	require.True(t, c.FitToBoundingBox(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1}, 1.5))

	assert.Equal(t, Orthographic, c.Projection())
	assert.InDelta(t, 3, c.Position().Len(), eps)
	l, r, b, top := c.OrthoBounds()
	assert.Equal(t, [4]float32{-3, 3, -3, 3}, [4]float32{l, r, b, top})
	assert.Less(t, c.Near(), c.Far())
}

func TestFitZeroExtent(t *testing.T) {
	c := NewDefault()
	c.SetPosition(mgl32.Vec3{7, 7, 7})
	c.AddYaw(1)

	p := mgl32.Vec3{4, 5, 6}
	assert.NotPanics(t, func() {
		assert.False(t, c.FitToBounds(p, p))
	})

	assertVec(t, mgl32.Vec3{0, 0, 3}, c.Position(), "position")
	assertVec(t, mgl32.Vec3{0, 0, 0}, c.Target(), "target")
	assertVec(t, mgl32.Vec3{0, 0, -1}, c.Forward(), "forward")
}

func TestDescribe(t *testing.T) {
	fields := NewDefault().Describe()
	keys := make(map[string]bool, len(fields))
	for _, f := range fields {
		keys[f.Key] = true
	}
	for _, k := range []string{"position", "forward", "projection", "matricesFinite"} {
		assert.True(t, keys[k], "missing %s", k)
	}
}
