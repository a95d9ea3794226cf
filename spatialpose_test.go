package tetrapose

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func testPoses() (a, b SpatialPose) {
	a.Set(mgl32.Vec3{1, 2, 3}, mgl32.QuatRotate(0.3, mgl32.Vec3{0, 1, 0}), mgl32.Vec3{2, 2, 2})
	b.Set(mgl32.Vec3{-1, 0.5, 4}, QuatFromEuler(0.2, 0.4, -0.1, EulerOrderXYZ), mgl32.Vec3{1, 3, 0.5})
	return a, b
}

func TestSpatialPoseConcatDeconcat(t *testing.T) {

	base, pose := testPoses()

	var delta, out SpatialPose
	delta.Deconcat(pose, base)
	out.Concat(base, delta)

	if !out.ApproxEqual(pose, testThreshold) {
		t.Fatal("concatenating the deconcatenated delta onto the base didn't give the pose back:", out, pose)
	}

	// With rotations around a single axis, the order of operations doesn't matter, so the delta can be removed again.
	base.Rotation = mgl32.QuatRotate(0.5, mgl32.Vec3{0, 0, 1})
	pose.Rotation = mgl32.QuatRotate(-1.2, mgl32.Vec3{0, 0, 1})

	var combined SpatialPose
	combined.Concat(base, pose)
	out.Deconcat(combined, base)

	if !out.ApproxEqual(pose, testThreshold) {
		t.Fatal("deconcat didn't remove the base from a commuting pose:", out, pose)
	}

}

func TestSpatialPoseInvert(t *testing.T) {

	pose, _ := testPoses()

	var inv, out SpatialPose
	inv.Invert(pose)
	out.Concat(pose, inv)

	if !out.ApproxEqual(NewSpatialPose(), testThreshold) {
		t.Fatal("a pose concatenated with its inverse should be identity, got", out)
	}

	pose.Scale = mgl32.Vec3{0, 2, 4}
	inv.Invert(pose)

	if inv.Scale != (mgl32.Vec3{0, 0.5, 0.25}) {
		t.Fatal("inverting a zero scale axis should leave it at zero, got", inv.Scale)
	}

}

func TestSpatialPoseLerp(t *testing.T) {

	a, b := testPoses()
	var out SpatialPose

	out.Lerp(a, b, 0)
	if out != a {
		t.Fatal("lerp at 0 should return the first pose exactly")
	}

	out.Lerp(a, b, 1)
	if out != b {
		t.Fatal("lerp at 1 should return the second pose exactly")
	}

	out.Lerp(a, a, 0.37)
	if !out.ApproxEqual(a, testThreshold) {
		t.Fatal("lerping a pose with itself should give the same pose, got", out)
	}

	out.Lerp(a, b, 0.5)
	if !vecNear(out.Translation, mgl32.Vec3{0, 1.25, 3.5}) {
		t.Fatal("lerp midpoint translation is wrong:", out.Translation)
	}

	// Receiver aliasing an input
	a.Lerp(a, b, 1)
	if a != b {
		t.Fatal("lerp into one of its own inputs failed")
	}

}

func TestSpatialPoseNearest(t *testing.T) {

	a, b := testPoses()
	var out SpatialPose

	out.Nearest(a, b, 0.49)
	if out != a {
		t.Fatal("nearest below 0.5 should pick the first pose")
	}

	out.Nearest(a, b, 0.5)
	if out != b {
		t.Fatal("nearest at 0.5 should pick the second pose")
	}

}

func TestSpatialPoseCubic(t *testing.T) {

	a, b := testPoses()
	var out SpatialPose

	out.Cubic(a, a, b, b, 0)
	if out != a {
		t.Fatal("cubic at 0 should return the segment's start exactly")
	}

	out.Cubic(a, a, b, b, 1)
	if out != b {
		t.Fatal("cubic at 1 should return the segment's end exactly")
	}

	// Evenly spaced control points along a line stay on the line.
	var before, p0, p1, after SpatialPose
	before.Reset()
	p0.Reset()
	p1.Reset()
	after.Reset()
	before.Translation = mgl32.Vec3{-1, 0, 0}
	p1.Translation = mgl32.Vec3{1, 0, 0}
	after.Translation = mgl32.Vec3{2, 0, 0}

	out.Cubic(before, p0, p1, after, 0.25)
	if !vecNear(out.Translation, mgl32.Vec3{0.25, 0, 0}) {
		t.Fatal("cubic of linear control points should be linear, got", out.Translation)
	}

}

func TestSpatialPoseAttenuateAndTriangular(t *testing.T) {

	a, b := testPoses()
	var out SpatialPose

	out.Attenuate(a, 1)
	if out != NewSpatialPose() {
		t.Fatal("attenuating fully should give identity, got", out)
	}

	out.Attenuate(a, 0)
	if out != a {
		t.Fatal("attenuating by 0 should leave the pose alone")
	}

	c := NewSpatialPose()

	out.Triangular(a, b, c, 0, 0)
	if !out.ApproxEqual(a, testThreshold) {
		t.Fatal("triangular blend with u = v = 0 should give the first pose, got", out)
	}

	out.Triangular(a, b, c, 0, 1)
	if !out.ApproxEqual(c, testThreshold) {
		t.Fatal("triangular blend with v = 1 should give the third pose, got", out)
	}

}

func TestSpatialPoseConvertRestore(t *testing.T) {

	pose, _ := testPoses()
	pose.Scale = mgl32.Vec3{1, 3, 0.5}
	pose.Convert(ChannelAll, EulerOrderXYZ)

	restored := SpatialPose{Transform: pose.Transform}
	restored.Restore()

	if !restored.ApproxEqual(pose, testThreshold) {
		t.Fatal("restoring a converted pose should give back its components:", restored, pose)
	}

	pose.Translation = mgl32.Vec3{1, 2, 3}
	pose.Convert(ChannelTranslateX|ChannelRotation|ChannelScale, EulerOrderXYZ)

	if pos := pose.Transform.Col(3).Vec3(); !vecNear(pos, mgl32.Vec3{1, 0, 0}) {
		t.Fatal("disabled translation channels should count as 0, got", pos)
	}

	pose.Rotation = QuatFromEuler(0.5, 0, 0.25, EulerOrderXYZ)
	pose.Scale = mgl32.Vec3{1, 1, 1}
	pose.Convert(ChannelRotateZ, EulerOrderXYZ)

	masked := SpatialPose{Transform: pose.Transform}
	masked.Restore()

	if e := masked.Euler(EulerOrderXYZ); !vecNear(e, mgl32.Vec3{0, 0, 0.25}) {
		t.Fatal("only the Z rotation channel should remain, got", e)
	}

}

func TestChannelString(t *testing.T) {

	if s := (ChannelTranslateX | ChannelRotateY).String(); s != "tx|ry" {
		t.Fatal("unexpected channel string", s)
	}

	if s := ChannelNone.String(); s != "none" {
		t.Fatal("unexpected channel string", s)
	}

	if !ChannelAll.Has(ChannelScale) || ChannelRotation.Any(ChannelTranslation) {
		t.Fatal("channel masks overlap incorrectly")
	}

}

func TestEulerRoundTrip(t *testing.T) {

	angles := []mgl32.Vec3{
		{0.3, -0.5, 1.1},
		{0, 0, 0},
		{-1, 0.2, -2.5},
	}

	for _, order := range []EulerOrder{EulerOrderXYZ, EulerOrderZYX} {
		for i, a := range angles {
			q := QuatFromEuler(a[0], a[1], a[2], order)
			if e := QuatToEuler(q, order); !vecNear(e, a) {
				t.Fatal("failed on angles #", i, "in order", order, ": got", e)
			}
		}
	}

	// A single-axis rotation is the same in either order.
	x := QuatFromEuler(math.Pi/3, 0, 0, EulerOrderZYX)
	if !quatNear(x, mgl32.QuatRotate(math.Pi/3, mgl32.Vec3{1, 0, 0})) {
		t.Fatal("single axis Euler rotation doesn't match the axis-angle rotation")
	}

}

func BenchmarkSpatialPoseLerp(b *testing.B) {

	b.ReportAllocs()

	p0, p1 := testPoses()
	var out SpatialPose

	for i := 0; i < b.N; i++ {
		out.Lerp(p0, p1, 0.3)
	}

}

func BenchmarkSpatialPoseConvert(b *testing.B) {

	b.ReportAllocs()

	pose, _ := testPoses()

	for i := 0; i < b.N; i++ {
		pose.Convert(ChannelAll, EulerOrderXYZ)
	}

}
