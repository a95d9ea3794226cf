package tetrapose

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestHierarchyPoseMismatch(t *testing.T) {

	a := NewHierarchyPose(3)
	b := NewHierarchyPose(2)

	if err := a.Lerp(a, b, 0.5); !errors.Is(err, ErrConfiguration) {
		t.Fatal("blending poses of different sizes should fail, got", err)
	}

	if err := a.Copy(b); !errors.Is(err, ErrConfiguration) {
		t.Fatal("copying poses of different sizes should fail, got", err)
	}

	if a.ApproxEqual(b, testThreshold) {
		t.Fatal("poses of different sizes can't be equal")
	}

}

func TestHierarchyPoseBlends(t *testing.T) {

	a := NewHierarchyPose(2)
	a[0].Translation = mgl32.Vec3{1, 0, 0}
	a[1].Rotation = mgl32.QuatRotate(0.5, mgl32.Vec3{0, 1, 0})

	b := NewHierarchyPose(2)
	b[0].Translation = mgl32.Vec3{3, 0, 0}

	out := NewHierarchyPose(2)

	if err := out.BiLinear([4]HierarchyPose{a, a, a, a}, 0.3, 0.8, 0.5); err != nil {
		t.Fatal(err)
	}
	if !out.ApproxEqual(a, testThreshold) {
		t.Fatal("a bilinear blend of identical poses should give that pose")
	}

	if err := out.BiLinear([4]HierarchyPose{a, b, a, b}, 0.5, 0.5, 0.25); err != nil {
		t.Fatal(err)
	}
	if !vecNear(out[0].Translation, mgl32.Vec3{2, 0, 0}) {
		t.Fatal("bilinear blend translation is wrong:", out[0].Translation)
	}

	if err := out.BiNearest([4]HierarchyPose{a, b, b, a}, 0.2, 0.2, 0.7); err != nil {
		t.Fatal(err)
	}
	if !out.ApproxEqual(b, testThreshold) {
		t.Fatal("binearest picked the wrong pose")
	}

	var sixteen [16]HierarchyPose
	for i := range sixteen {
		sixteen[i] = a
	}
	if err := out.BiCubic(sixteen, [5]float32{0.1, 0.2, 0.3, 0.4, 0.5}); err != nil {
		t.Fatal(err)
	}
	if !out.ApproxEqual(a, testThreshold) {
		t.Fatal("a bicubic blend of identical poses should give that pose")
	}

	// Receiver aliasing an input
	if err := a.Concat(a, b); err != nil {
		t.Fatal(err)
	}
	if !vecNear(a[0].Translation, mgl32.Vec3{4, 0, 0}) {
		t.Fatal("concat into its own input is wrong:", a[0].Translation)
	}

}

func TestHierarchyPoseInvertConcat(t *testing.T) {

	a := NewHierarchyPose(2)
	a[0].Set(mgl32.Vec3{1, 2, 3}, mgl32.QuatRotate(0.7, mgl32.Vec3{1, 0, 0}), mgl32.Vec3{2, 1, 4})
	a[1].Set(mgl32.Vec3{0, -1, 0}, mgl32.QuatRotate(-0.2, mgl32.Vec3{0, 0, 1}), mgl32.Vec3{1, 1, 1})

	inv := NewHierarchyPose(2)
	if err := inv.Invert(a); err != nil {
		t.Fatal(err)
	}

	out := NewHierarchyPose(2)
	if err := out.Concat(a, inv); err != nil {
		t.Fatal(err)
	}

	if !out.ApproxEqual(NewHierarchyPose(2), testThreshold) {
		t.Fatal("concatenating a pose with its inverse should give identity")
	}

}

func BenchmarkHierarchyPoseLerp(b *testing.B) {

	b.ReportAllocs()

	p0 := NewHierarchyPose(64)
	p1 := NewHierarchyPose(64)
	for i := range p1 {
		p1[i].Rotation = mgl32.QuatRotate(float32(i)*0.01, mgl32.Vec3{0, 1, 0})
	}
	out := NewHierarchyPose(64)

	for i := 0; i < b.N; i++ {
		out.Lerp(p0, p1, 0.5)
	}

}
